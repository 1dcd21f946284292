package models

// Requests for the calculator HTTP endpoints.

type AssessmentRequest struct {
	Profile PatientProfile   `json:"profile"`
	Labs    Labs             `json:"labs"`
	Therapy TherapySelection `json:"therapy"`
}

type LDLRequest struct {
	BaselineLDL float64  `json:"baseline_ldl" validate:"gte=0.5,lte=6"`
	Statin      string   `json:"statin" default:"none" validate:"required"`
	Ezetimibe   bool     `json:"ezetimibe"`
	AddOns      []string `json:"add_ons,omitempty" validate:"unique,dive,required"`
}

type EligibilityRequest struct {
	AdjustedLDL   float64 `json:"adjusted_ldl" validate:"gte=0,lte=20"`
	Triglycerides float64 `json:"triglycerides" validate:"gte=0,lte=20"`
	Smoker        bool    `json:"smoker"`
	BMI           float64 `json:"bmi" validate:"gte=0,lte=100"`
}
