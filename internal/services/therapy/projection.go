package therapy

import (
	"math"

	"SmartCVD/internal/domain/models"
	"SmartCVD/pkg/util"
)

// ProjectRisk derives post-intervention risk from a baseline percentage.
//
// The baseline is capped at BaselineCap. In ProjectionSummed mode the selected
// interventions' ARR for the horizon are subtracted; ProjectionFlat subtracts a
// fixed amount. Post-intervention risk never drops below 0 and RRR never exceeds RRRCap.
func (a *Adjustor) ProjectRisk(baseline float64, horizon models.Horizon, interventions []string, ec models.EligibilityContext) (models.RiskResult, error) {
	if err := models.RequireFinite("baseline", baseline); err != nil {
		return models.RiskResult{}, err
	}
	if baseline < 0 || baseline > 100 {
		return models.RiskResult{}, models.InvalidInput("baseline", baseline, "must be within 0-100")
	}
	switch horizon {
	case models.HorizonTenYear, models.HorizonFiveYear:
	default:
		return models.RiskResult{}, models.InvalidInput("horizon", horizon, "must be one of: ten_year, five_year")
	}

	applied, err := a.selectInterventions(horizon, interventions, ec)
	if err != nil {
		return models.RiskResult{}, err
	}

	capped := math.Min(baseline, BaselineCap)
	var reduction float64
	if a.mode == models.ProjectionFlat {
		reduction = a.flatReduction
	} else {
		for _, ai := range applied {
			reduction += ai.ARR
		}
	}

	post := util.RoundHalfUp(math.Max(capped-reduction, 0), 1)
	arr := util.RoundHalfUp(capped-post, 1)
	var rrr float64
	if capped > 0 {
		rrr = util.RoundHalfUp(math.Min(arr/capped*100, RRRCap), 1)
	}

	return models.RiskResult{
		Horizon:          horizon,
		Mode:             a.mode,
		Baseline:         capped,
		PostIntervention: post,
		ARR:              arr,
		RRR:              rrr,
		Applied:          applied,
	}, nil
}

func (a *Adjustor) selectInterventions(h models.Horizon, ids []string, ec models.EligibilityContext) ([]models.AppliedIntervention, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	out := make([]models.AppliedIntervention, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, models.InvalidInput("interventions", id, "selected more than once")
		}
		seen[id] = struct{}{}

		iv, ok := a.catalog.Intervention(id)
		if !ok {
			return nil, models.InvalidInput("interventions", id, "unknown intervention")
		}
		if ok, why := iv.Eligibility.Evaluate(ec); !ok {
			return nil, models.InvalidInput("interventions", id, why)
		}
		out = append(out, models.AppliedIntervention{ID: iv.ID, Name: iv.Name, ARR: iv.ARR(h)})
	}
	return out, nil
}
