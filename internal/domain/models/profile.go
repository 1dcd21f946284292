package models

import "strings"

// Sex is the biological sex used for risk calibration.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// ParseSex accepts "male"/"female" (and m/f) case-insensitively.
func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return SexMale, nil
	case "female", "f":
		return SexFemale, nil
	default:
		return "", InvalidInput("sex", s, "must be one of: male, female")
	}
}

// PatientProfile holds the risk factors of one patient for one calculation.
type PatientProfile struct {
	Age                 int     `json:"age" validate:"gte=30,lte=90"`
	Sex                 Sex     `json:"sex" validate:"oneof=male female"`
	SystolicBP          float64 `json:"sbp" validate:"gte=80,lte=220"`             // mmHg
	TotalCholesterol    float64 `json:"total_cholesterol" validate:"gte=2,lte=10"` // mmol/L
	HDL                 float64 `json:"hdl" validate:"gte=0.5,lte=3"`              // mmol/L
	Smoker              bool    `json:"smoker"`
	Diabetes            bool    `json:"diabetes"`
	EGFR                float64 `json:"egfr" validate:"gte=15,lte=120"` // mL/min/1.73m²
	CRP                 float64 `json:"crp" validate:"gt=-1,lte=20"`    // mg/L, ln(crp+1) must be defined
	VascularTerritories int     `json:"vascular_territories" validate:"gte=0,lte=3"`
}

// VascularHistory lists the arterial territories with established disease.
type VascularHistory struct {
	Coronary        bool `json:"coronary"`
	Cerebrovascular bool `json:"cerebrovascular"`
	Peripheral      bool `json:"peripheral"`
}

// Count returns the number of affected territories (0-3).
func (v VascularHistory) Count() int {
	n := 0
	for _, b := range []bool{v.Coronary, v.Cerebrovascular, v.Peripheral} {
		if b {
			n++
		}
	}
	return n
}

// Labs are the measurements that gate eligibility but do not enter the risk score.
type Labs struct {
	Triglycerides float64 `json:"triglycerides" validate:"gte=0.3,lte=5"` // fasting, mmol/L
	HbA1c         float64 `json:"hba1c" validate:"gte=4,lte=14"`          // %
	WeightKg      float64 `json:"weight_kg" validate:"gte=40,lte=200"`
	HeightCm      float64 `json:"height_cm" validate:"gte=140,lte=210"`
}

// BMI returns weight / height² in kg/m².
func (l Labs) BMI() float64 {
	if l.HeightCm <= 0 {
		return 0
	}
	m := l.HeightCm / 100
	return l.WeightKg / (m * m)
}
