package risk

import (
	"math"

	"SmartCVD/internal/domain/models"
	domsvc "SmartCVD/internal/domain/service"
	"SmartCVD/pkg/util"
)

// Estimator converts a patient profile into 10- and 5-year event probabilities.
type Estimator struct {
	model Model
}

// NewEstimator builds an estimator over the given coefficients.
func NewEstimator(m Model) *Estimator {
	return &Estimator{model: m}
}

// Estimate returns both horizons, each rounded half-up to one decimal.
func (e *Estimator) Estimate(p models.PatientProfile) (models.RiskEstimate, error) {
	r10, err := e.TenYear(p)
	if err != nil {
		return models.RiskEstimate{}, err
	}
	r5, err := ConvertFiveYear(r10)
	if err != nil {
		return models.RiskEstimate{}, err
	}
	return models.RiskEstimate{TenYear: r10, FiveYear: r5}, nil
}

// TenYear returns 1 - S0^exp(lp - offset) as a percentage rounded to one decimal.
func (e *Estimator) TenYear(p models.PatientProfile) (float64, error) {
	if err := validateProfile(p); err != nil {
		return 0, err
	}
	lp := e.LinearPredictor(p)
	r10 := 1 - math.Pow(e.model.BaselineSurvival, math.Exp(lp-e.model.Offset))
	return util.RoundHalfUp(r10*100, 1), nil
}

// LinearPredictor returns the unrounded score for an already validated profile.
func (e *Estimator) LinearPredictor(p models.PatientProfile) float64 {
	m := e.model
	return m.Age*float64(p.Age) +
		m.Male*indicator(p.Sex == models.SexMale) +
		m.SystolicBP*p.SystolicBP +
		m.TotalCholesterol*p.TotalCholesterol +
		m.HDL*p.HDL +
		m.Smoking*indicator(p.Smoker) +
		m.Diabetes*indicator(p.Diabetes) +
		m.EGFRPer10*(p.EGFR/10) +
		m.LogCRP*math.Log(p.CRP+1) +
		m.Vascular*float64(p.VascularTerritories)
}

// ConvertFiveYear maps a 10-year percentage to 5 years with 1 - (1 - p)^0.5.
func ConvertFiveYear(r10 float64) (float64, error) {
	if err := models.RequireFinite("ten_year", r10); err != nil {
		return 0, err
	}
	if r10 < 0 || r10 > 100 {
		return 0, models.InvalidInput("ten_year", r10, "must be within 0-100")
	}
	p := r10 / 100
	return util.RoundHalfUp((1-math.Sqrt(1-p))*100, 1), nil
}

func validateProfile(p models.PatientProfile) error {
	fields := []struct {
		name string
		v    float64
	}{
		{"sbp", p.SystolicBP},
		{"total_cholesterol", p.TotalCholesterol},
		{"hdl", p.HDL},
		{"egfr", p.EGFR},
		{"crp", p.CRP},
	}
	for _, f := range fields {
		if err := models.RequireFinite(f.name, f.v); err != nil {
			return err
		}
	}
	// ln(crp+1) must be defined even if the tag ranges are relaxed.
	if p.CRP <= -1 {
		return models.InvalidInput("crp", p.CRP, "must be greater than -1")
	}
	return models.Validate(p)
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

var _ domsvc.RiskEstimator = (*Estimator)(nil)
