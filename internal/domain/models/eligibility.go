package models

import "fmt"

// EligibilityRule names the predicate gating a catalog entry.
type EligibilityRule string

const (
	RuleAlways             EligibilityRule = "always"
	RuleCurrentSmoker      EligibilityRule = "current_smoker"
	RuleBMIAtLeast         EligibilityRule = "bmi_at_least"
	RuleTriglyceridesAbove EligibilityRule = "triglycerides_above"
	RuleLDLAbove           EligibilityRule = "ldl_above"
)

// Eligibility is an explicit predicate evaluated before a selection is allowed.
type Eligibility struct {
	Rule      EligibilityRule `yaml:"rule" json:"rule" default:"always" validate:"oneof=always current_smoker bmi_at_least triglycerides_above ldl_above"`
	Threshold float64         `yaml:"threshold" json:"threshold,omitempty"`
}

// EligibilityContext carries the patient values the predicates read.
type EligibilityContext struct {
	AdjustedLDL   float64 `json:"adjusted_ldl"` // after statin/ezetimibe
	Triglycerides float64 `json:"triglycerides"`
	Smoker        bool    `json:"smoker"`
	BMI           float64 `json:"bmi"`
}

// Evaluate reports whether the predicate holds; reason explains a refusal.
func (e Eligibility) Evaluate(c EligibilityContext) (bool, string) {
	switch e.Rule {
	case RuleAlways, "":
		return true, ""
	case RuleCurrentSmoker:
		if c.Smoker {
			return true, ""
		}
		return false, "benefit only if current smoker"
	case RuleBMIAtLeast:
		if c.BMI >= e.Threshold {
			return true, ""
		}
		return false, fmt.Sprintf("only if BMI >= %g kg/m²", e.Threshold)
	case RuleTriglyceridesAbove:
		if c.Triglycerides > e.Threshold {
			return true, ""
		}
		return false, fmt.Sprintf("only if TG > %g mmol/L", e.Threshold)
	case RuleLDLAbove:
		if c.AdjustedLDL > e.Threshold {
			return true, ""
		}
		return false, fmt.Sprintf("only if LDL-C > %g mmol/L after current therapy", e.Threshold)
	default:
		return false, fmt.Sprintf("unknown eligibility rule %q", e.Rule)
	}
}

// EligibilityDecision is the evaluated predicate for one catalog entry.
type EligibilityDecision struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Kind     string `json:"kind"` // "intervention" or "add_on"
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}
