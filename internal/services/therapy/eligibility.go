package therapy

import "SmartCVD/internal/domain/models"

const (
	kindIntervention = "intervention"
	kindAddOn        = "add_on"
)

// Eligibility evaluates every intervention, then every add-on therapy, in catalog order.
func (a *Adjustor) Eligibility(ec models.EligibilityContext) []models.EligibilityDecision {
	ivs := a.catalog.Interventions()
	addOns := a.catalog.Therapies(models.TherapyAddOn)

	out := make([]models.EligibilityDecision, 0, len(ivs)+len(addOns))
	for _, iv := range ivs {
		ok, why := iv.Eligibility.Evaluate(ec)
		out = append(out, models.EligibilityDecision{ID: iv.ID, Name: iv.Name, Kind: kindIntervention, Eligible: ok, Reason: why})
	}
	for _, th := range addOns {
		ok, why := th.Eligibility.Evaluate(ec)
		out = append(out, models.EligibilityDecision{ID: th.ID, Name: th.Name, Kind: kindAddOn, Eligible: ok, Reason: why})
	}
	return out
}
