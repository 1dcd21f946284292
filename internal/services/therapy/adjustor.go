package therapy

import (
	"fmt"

	"SmartCVD/internal/domain/models"
	domsvc "SmartCVD/internal/domain/service"
	"SmartCVD/internal/services/catalog"
)

const (
	// LDLFloor is the lowest anticipated LDL-C reported, in mmol/L.
	LDLFloor = 1.0
	// BaselineCap is the ceiling applied to a baseline risk before projection.
	BaselineCap = 85.0
	// RRRCap bounds the relative risk reduction.
	RRRCap = 75.0
	// FlatReduction is the fixed reduction of ProjectionFlat, in percentage points.
	FlatReduction = 10.0

	minBaselineLDL = 0.5
	maxBaselineLDL = 6.0
)

// Adjustor applies lipid therapies and risk-reducing interventions from a catalog.
type Adjustor struct {
	catalog       *catalog.Catalog
	mode          models.ProjectionMode
	flatReduction float64
}

// Option configures an Adjustor.
type Option func(*Adjustor)

// WithProjectionMode selects how ProjectRisk derives post-intervention risk.
func WithProjectionMode(m models.ProjectionMode) Option {
	return func(a *Adjustor) {
		if m != "" {
			a.mode = m
		}
	}
}

// WithFlatReduction overrides the reduction used by ProjectionFlat.
func WithFlatReduction(pp float64) Option {
	return func(a *Adjustor) {
		if pp > 0 {
			a.flatReduction = pp
		}
	}
}

// NewAdjustor builds an Adjustor over c. The catalog is read-only and shared.
func NewAdjustor(c *catalog.Catalog, opts ...Option) (*Adjustor, error) {
	if c == nil {
		return nil, fmt.Errorf("therapy: nil catalog")
	}
	a := &Adjustor{catalog: c, mode: models.ProjectionSummed, flatReduction: FlatReduction}
	for _, opt := range opts {
		opt(a)
	}
	switch a.mode {
	case models.ProjectionSummed, models.ProjectionFlat:
	default:
		return nil, fmt.Errorf("therapy: unknown projection mode %q", a.mode)
	}
	return a, nil
}

// Mode returns the configured projection mode.
func (a *Adjustor) Mode() models.ProjectionMode { return a.mode }

// AdjustLDL applies the statin then ezetimibe to baselineLDL, floored at LDLFloor.
func (a *Adjustor) AdjustLDL(baselineLDL float64, statin string, ezetimibe bool) (float64, error) {
	if err := models.RequireFinite("baseline_ldl", baselineLDL); err != nil {
		return 0, err
	}
	if baselineLDL < minBaselineLDL || baselineLDL > maxBaselineLDL {
		return 0, models.InvalidInput("baseline_ldl", baselineLDL, fmt.Sprintf("must be within %g-%g mmol/L", minBaselineLDL, maxBaselineLDL))
	}

	ldl := baselineLDL
	if statin != "" && statin != models.StatinNone {
		th, ok := a.catalog.Therapy(statin)
		if !ok || th.Kind != models.TherapyStatin {
			return 0, models.InvalidInput("statin", statin, "unknown statin")
		}
		ldl = reduce(ldl, th.ReductionPct)
	}
	if ezetimibe {
		ldl = reduce(ldl, a.catalog.Ezetimibe().ReductionPct)
	}
	return floor(ldl), nil
}

// AdjustLDLWithAddOns applies eligible add-on therapies on top of ec.AdjustedLDL.
// Eligibility is judged against the value before any add-on.
func (a *Adjustor) AdjustLDLWithAddOns(ec models.EligibilityContext, addOns []string) (float64, error) {
	if err := models.RequireFinite("adjusted_ldl", ec.AdjustedLDL); err != nil {
		return 0, err
	}
	if ec.AdjustedLDL <= 0 {
		return 0, models.InvalidInput("adjusted_ldl", ec.AdjustedLDL, "must be greater than 0")
	}

	ldl := ec.AdjustedLDL
	seen := make(map[string]struct{}, len(addOns))
	for _, id := range addOns {
		if _, dup := seen[id]; dup {
			return 0, models.InvalidInput("add_ons", id, "selected more than once")
		}
		seen[id] = struct{}{}

		th, ok := a.catalog.Therapy(id)
		if !ok || th.Kind != models.TherapyAddOn {
			return 0, models.InvalidInput("add_ons", id, "unknown add-on therapy")
		}
		if ok, why := th.Eligibility.Evaluate(ec); !ok {
			return 0, models.InvalidInput("add_ons", id, why)
		}
		ldl = reduce(ldl, th.ReductionPct)
	}
	return floor(ldl), nil
}

func reduce(ldl, pct float64) float64 {
	return ldl * (1 - pct/100)
}

func floor(ldl float64) float64 {
	if ldl < LDLFloor {
		return LDLFloor
	}
	return ldl
}

var _ domsvc.TherapyAdjustor = (*Adjustor)(nil)
