package therapy

import (
	"math"
	"testing"

	"SmartCVD/internal/domain/models"
	"SmartCVD/internal/services/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdjustor(t *testing.T, opts ...Option) *Adjustor {
	t.Helper()
	a, err := NewAdjustor(catalog.Default(), opts...)
	require.NoError(t, err)
	return a
}

func TestNewAdjustor(t *testing.T) {
	_, err := NewAdjustor(nil)
	assert.Error(t, err)

	_, err = NewAdjustor(catalog.Default(), WithProjectionMode("average"))
	assert.Error(t, err)

	a := newAdjustor(t)
	assert.Equal(t, models.ProjectionSummed, a.Mode())
}

func TestAdjustLDL(t *testing.T) {
	a := newAdjustor(t)

	cases := []struct {
		name      string
		baseline  float64
		statin    string
		ezetimibe bool
		want      float64
	}{
		{"no therapy", 3.5, models.StatinNone, false, 3.5},
		{"empty statin means none", 3.5, "", false, 3.5},
		{"atorvastatin", 3.5, "atorvastatin-80", false, 1.75},
		{"rosuvastatin and ezetimibe", 3.5, "rosuvastatin-20", true, 1.26},
		{"ezetimibe only", 4.0, models.StatinNone, true, 3.2},
		{"floor", 1.0, "rosuvastatin-20", true, 1.0},
		{"floor from above", 2.0, "rosuvastatin-20", true, 1.0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := a.AdjustLDL(c.baseline, c.statin, c.ezetimibe)
			require.NoError(t, err)
			assert.InDelta(t, c.want, got, 1e-9)
		})
	}
}

func TestAdjustLDLInvalid(t *testing.T) {
	a := newAdjustor(t)

	for _, statin := range []string{"simvastatin-40", "ezetimibe", "pcsk9-inhibitor"} {
		_, err := a.AdjustLDL(3.5, statin, false)
		assert.ErrorIs(t, err, models.ErrInvalidInput, statin)
	}
	for _, ldl := range []float64{0.4, 6.1, math.NaN(), math.Inf(1)} {
		_, err := a.AdjustLDL(ldl, models.StatinNone, false)
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	}
}

func TestAdjustLDLMonotonic(t *testing.T) {
	a := newAdjustor(t)
	for ldl := 0.5; ldl <= 6.0; ldl += 0.25 {
		none, err := a.AdjustLDL(ldl, models.StatinNone, false)
		require.NoError(t, err)
		ator, err := a.AdjustLDL(ldl, "atorvastatin-80", false)
		require.NoError(t, err)
		rosu, err := a.AdjustLDL(ldl, "rosuvastatin-20", false)
		require.NoError(t, err)
		both, err := a.AdjustLDL(ldl, "rosuvastatin-20", true)
		require.NoError(t, err)

		assert.LessOrEqual(t, ator, none)
		assert.LessOrEqual(t, rosu, ator)
		assert.LessOrEqual(t, both, rosu)
		assert.GreaterOrEqual(t, both, LDLFloor)
	}
}

func TestAdjustLDLWithAddOns(t *testing.T) {
	a := newAdjustor(t)

	t.Run("gated out below 1.8", func(t *testing.T) {
		ec := models.EligibilityContext{AdjustedLDL: 1.26}
		for _, id := range []string{"pcsk9-inhibitor", "inclisiran"} {
			_, err := a.AdjustLDLWithAddOns(ec, []string{id})
			require.Error(t, err)
			var ie *models.InvalidInputError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, "add_ons", ie.Field)
			assert.Contains(t, ie.Reason, "1.8")
		}
	})

	t.Run("exactly 1.8 is not above", func(t *testing.T) {
		_, err := a.AdjustLDLWithAddOns(models.EligibilityContext{AdjustedLDL: 1.8}, []string{"pcsk9-inhibitor"})
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})

	t.Run("bempedoic acid always allowed", func(t *testing.T) {
		got, err := a.AdjustLDLWithAddOns(models.EligibilityContext{AdjustedLDL: 1.26}, []string{"bempedoic-acid"})
		require.NoError(t, err)
		assert.InDelta(t, 1.0332, got, 1e-9)
	})

	t.Run("pcsk9 above gate", func(t *testing.T) {
		got, err := a.AdjustLDLWithAddOns(models.EligibilityContext{AdjustedLDL: 3.0}, []string{"pcsk9-inhibitor"})
		require.NoError(t, err)
		assert.InDelta(t, 1.2, got, 1e-9)
	})

	t.Run("combined add-ons floored", func(t *testing.T) {
		got, err := a.AdjustLDLWithAddOns(models.EligibilityContext{AdjustedLDL: 3.0}, []string{"pcsk9-inhibitor", "inclisiran"})
		require.NoError(t, err)
		assert.Equal(t, LDLFloor, got)
	})

	t.Run("no add-ons is identity", func(t *testing.T) {
		got, err := a.AdjustLDLWithAddOns(models.EligibilityContext{AdjustedLDL: 2.4}, nil)
		require.NoError(t, err)
		assert.Equal(t, 2.4, got)
	})

	t.Run("rejects statins and duplicates", func(t *testing.T) {
		ec := models.EligibilityContext{AdjustedLDL: 3.0}
		_, err := a.AdjustLDLWithAddOns(ec, []string{"atorvastatin-80"})
		assert.ErrorIs(t, err, models.ErrInvalidInput)
		_, err = a.AdjustLDLWithAddOns(ec, []string{"inclisiran", "inclisiran"})
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})
}

func TestEligibility(t *testing.T) {
	a := newAdjustor(t)

	decisions := a.Eligibility(models.EligibilityContext{AdjustedLDL: 1.26, Triglycerides: 1.2, BMI: 26})
	require.Len(t, decisions, 13)

	byID := make(map[string]models.EligibilityDecision, len(decisions))
	for _, d := range decisions {
		byID[d.ID] = d
	}

	for _, id := range []string{"smoking-cessation", "semaglutide", "icosapent-ethyl", "pcsk9-inhibitor", "inclisiran"} {
		assert.False(t, byID[id].Eligible, id)
		assert.NotEmpty(t, byID[id].Reason, id)
	}
	for _, id := range []string{"antiplatelet", "mediterranean-diet", "bempedoic-acid"} {
		assert.True(t, byID[id].Eligible, id)
		assert.Empty(t, byID[id].Reason, id)
	}
	assert.Equal(t, "add_on", byID["inclisiran"].Kind)
	assert.Equal(t, "intervention", decisions[0].Kind)

	open := a.Eligibility(models.EligibilityContext{AdjustedLDL: 2.5, Triglycerides: 1.71, Smoker: true, BMI: 30})
	for _, d := range open {
		assert.True(t, d.Eligible, d.ID)
	}
}
