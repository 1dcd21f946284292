package risk

// Model holds the coefficients of the proportional-hazards risk score.
// Values are copied into an Estimator, so a Model can be shared freely.
type Model struct {
	Age              float64 // per year
	Male             float64
	SystolicBP       float64 // per mmHg
	TotalCholesterol float64 // per mmol/L
	HDL              float64 // per mmol/L
	Smoking          float64
	Diabetes         float64
	EGFRPer10        float64 // applied to eGFR/10
	LogCRP           float64 // applied to ln(CRP+1)
	Vascular         float64 // per affected territory
	Offset           float64 // subtracted from the linear predictor
	BaselineSurvival float64 // 10-year survival at lp == Offset
}

// SMARTModel returns the coefficients of the SMART recurrent-event score.
func SMARTModel() Model {
	return Model{
		Age:              0.064,
		Male:             0.34,
		SystolicBP:       0.02,
		TotalCholesterol: 0.25,
		HDL:              -0.25,
		Smoking:          0.44,
		Diabetes:         0.51,
		EGFRPer10:        -0.2,
		LogCRP:           0.25,
		Vascular:         0.4,
		Offset:           5.8,
		BaselineSurvival: 0.900,
	}
}
