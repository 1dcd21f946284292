package models

// InterventionCategory groups interventions the way the report columns do.
type InterventionCategory string

const (
	CategoryLifestyle InterventionCategory = "lifestyle"
	CategoryOther     InterventionCategory = "other"
)

// Intervention is a catalog entry with fixed absolute risk reductions (percentage points).
type Intervention struct {
	ID          string               `yaml:"id" json:"id" validate:"required"`
	Name        string               `yaml:"name" json:"name" validate:"required"`
	Category    InterventionCategory `yaml:"category" json:"category" default:"other" validate:"oneof=lifestyle other"`
	ARRLifetime float64              `yaml:"arr_lifetime" json:"arr_lifetime" validate:"gte=0,lte=100"`
	ARR5yr      float64              `yaml:"arr_5yr" json:"arr_5yr" validate:"gte=0,lte=100"`
	Citation    string               `yaml:"citation" json:"citation,omitempty" validate:"omitempty,url"`
	Eligibility Eligibility          `yaml:"eligibility" json:"eligibility"`
}

// ARR returns the reduction for the given horizon.
func (i Intervention) ARR(h Horizon) float64 {
	if h == HorizonFiveYear {
		return i.ARR5yr
	}
	return i.ARRLifetime
}

// LipidTherapy is a catalog entry with a fixed percentage LDL-C reduction.
type LipidTherapy struct {
	ID           string      `yaml:"id" json:"id" validate:"required"`
	Name         string      `yaml:"name" json:"name" validate:"required"`
	Kind         TherapyKind `yaml:"kind" json:"kind" validate:"oneof=statin ezetimibe add_on"`
	ReductionPct float64     `yaml:"reduction_pct" json:"reduction_pct" validate:"gt=0,lt=100"`
	Citation     string      `yaml:"citation" json:"citation,omitempty"`
	Eligibility  Eligibility `yaml:"eligibility" json:"eligibility"`
}

// CatalogView is the read-only listing served to callers.
type CatalogView struct {
	Interventions []Intervention `json:"interventions"`
	Therapies     []LipidTherapy `json:"therapies"`
}
