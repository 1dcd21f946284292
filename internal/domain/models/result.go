package models

import "time"

// Horizon selects the ARR column applied in a projection.
type Horizon string

const (
	HorizonTenYear  Horizon = "ten_year" // 10-year baseline, lifetime ARR column
	HorizonFiveYear Horizon = "five_year"
)

// ProjectionMode selects how post-intervention risk is derived.
type ProjectionMode string

const (
	// ProjectionSummed subtracts the selected interventions' ARR constants.
	ProjectionSummed ProjectionMode = "summed"
	// ProjectionFlat subtracts a fixed amount regardless of selection.
	ProjectionFlat ProjectionMode = "flat"
)

// RiskEstimate is the baseline model output, percentages rounded to one decimal.
type RiskEstimate struct {
	TenYear  float64 `json:"ten_year"`
	FiveYear float64 `json:"five_year"`
}

// AppliedIntervention is one selected intervention with its ARR for the horizon.
type AppliedIntervention struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	ARR  float64 `json:"arr"`
}

// RiskResult is the post-intervention projection.
type RiskResult struct {
	Horizon          Horizon               `json:"horizon"`
	Mode             ProjectionMode        `json:"mode"`
	Baseline         float64               `json:"baseline"`          // %, display-capped
	PostIntervention float64               `json:"post_intervention"` // %
	ARR              float64               `json:"arr"`               // percentage points
	RRR              float64               `json:"rrr"`               // %, capped at 75
	Applied          []AppliedIntervention `json:"applied,omitempty"`
}

// Treatments names the selected therapies grouped as the report shows them.
type Treatments struct {
	Current   []string `json:"current,omitempty"`
	AddOns    []string `json:"add_ons,omitempty"`
	Lifestyle []string `json:"lifestyle,omitempty"`
	Other     []string `json:"other,omitempty"`
}

// Projections holds one RiskResult per horizon.
type Projections struct {
	TenYear  RiskResult `json:"ten_year"`
	FiveYear RiskResult `json:"five_year"`
}

// Report is the complete output of one assessment.
type Report struct {
	ID          string                `json:"id"`
	CreatedAt   time.Time             `json:"created_at"`
	Profile     PatientProfile        `json:"profile"`
	Labs        Labs                  `json:"labs"`
	BMI         float64               `json:"bmi"`
	Therapy     TherapySelection      `json:"therapy"`
	Risk        RiskEstimate          `json:"risk"`
	LDL         LDLOutcome            `json:"ldl"`
	Treatments  Treatments            `json:"treatments"`
	Eligibility []EligibilityDecision `json:"eligibility"`
	Projections Projections           `json:"projections"`
	// AtTargetSBP re-estimates baseline risk with the systolic target, when one is set.
	AtTargetSBP *RiskEstimate `json:"at_target_sbp,omitempty"`
}

// AssessmentEvent is the de-identified summary emitted after an assessment.
type AssessmentEvent struct {
	ReportID      string    `json:"report_id"`
	CreatedAt     time.Time `json:"created_at"`
	TenYear       float64   `json:"ten_year"`
	FiveYear      float64   `json:"five_year"`
	PostTenYear   float64   `json:"post_ten_year"`
	Interventions []string  `json:"interventions,omitempty"`
	AddOns        []string  `json:"add_ons,omitempty"`
}
