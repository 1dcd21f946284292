package models

// StatinNone selects no statin.
const StatinNone = "none"

// TherapyKind classifies a lipid-lowering therapy.
type TherapyKind string

const (
	TherapyStatin    TherapyKind = "statin"
	TherapyEzetimibe TherapyKind = "ezetimibe"
	TherapyAddOn     TherapyKind = "add_on"
)

// TherapySelection is the lipid therapy and intervention choice for one patient.
type TherapySelection struct {
	BaselineLDL   float64  `json:"baseline_ldl" validate:"gte=0.5,lte=6"` // mmol/L
	Statin        string   `json:"statin" default:"none" validate:"required"`
	Ezetimibe     bool     `json:"ezetimibe"`
	AddOns        []string `json:"add_ons,omitempty" validate:"unique,dive,required"`
	Interventions []string `json:"interventions,omitempty" validate:"unique,dive,required"`
	TargetSBP     float64  `json:"target_sbp,omitempty" validate:"omitempty,gte=80,lte=220"` // mmHg
}

// LDLOutcome is the anticipated LDL-C along the therapy chain.
type LDLOutcome struct {
	Baseline            float64 `json:"baseline"`
	AfterCurrentTherapy float64 `json:"after_current_therapy"`
	AfterAddOns         float64 `json:"after_add_ons"`
	AddOnsOffered       bool    `json:"add_ons_offered"`
}
