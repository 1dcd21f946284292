package risk

import (
	"math"
	"testing"

	"SmartCVD/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func referenceProfile() models.PatientProfile {
	return models.PatientProfile{
		Age:                 60,
		Sex:                 models.SexMale,
		SystolicBP:          145,
		TotalCholesterol:    5.0,
		HDL:                 1.0,
		EGFR:                80,
		CRP:                 2.0,
		VascularTerritories: 0,
	}
}

func TestEstimate(t *testing.T) {
	e := NewEstimator(SMARTModel())

	cases := []struct {
		name    string
		profile func() models.PatientProfile
		tenYear float64
		five    float64
	}{
		{"reference male", referenceProfile, 23.9, 12.8},
		{"reference female", func() models.PatientProfile {
			p := referenceProfile()
			p.Sex = models.SexFemale
			return p
		}, 17.7, 9.3},
		{"lowest risk", func() models.PatientProfile {
			return models.PatientProfile{Age: 30, Sex: models.SexFemale, SystolicBP: 80, TotalCholesterol: 2, HDL: 3, EGFR: 120, CRP: 0.1}
		}, 0.1, 0.1},
		{"saturated", func() models.PatientProfile {
			return models.PatientProfile{Age: 90, Sex: models.SexMale, SystolicBP: 220, TotalCholesterol: 10, HDL: 0.5,
				Smoker: true, Diabetes: true, EGFR: 15, CRP: 20, VascularTerritories: 3}
		}, 100.0, 100.0},
		{"smoker with one territory", func() models.PatientProfile {
			return models.PatientProfile{Age: 55, Sex: models.SexFemale, SystolicBP: 130, TotalCholesterol: 5.5, HDL: 1.4,
				Smoker: true, EGFR: 90, CRP: 1.0, VascularTerritories: 1}
		}, 16.8, 8.8},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := e.Estimate(c.profile())
			require.NoError(t, err)
			assert.Equal(t, c.tenYear, got.TenYear)
			assert.Equal(t, c.five, got.FiveYear)
		})
	}
}

func TestLinearPredictor(t *testing.T) {
	e := NewEstimator(SMARTModel())
	assert.InDelta(t, 6.754653, e.LinearPredictor(referenceProfile()), 1e-6)
}

func TestEstimateMonotonic(t *testing.T) {
	e := NewEstimator(SMARTModel())
	base, err := e.TenYear(referenceProfile())
	require.NoError(t, err)

	worse := []func(p *models.PatientProfile){
		func(p *models.PatientProfile) { p.Age += 10 },
		func(p *models.PatientProfile) { p.SystolicBP += 20 },
		func(p *models.PatientProfile) { p.TotalCholesterol += 1 },
		func(p *models.PatientProfile) { p.HDL -= 0.3 },
		func(p *models.PatientProfile) { p.Smoker = true },
		func(p *models.PatientProfile) { p.Diabetes = true },
		func(p *models.PatientProfile) { p.EGFR -= 30 },
		func(p *models.PatientProfile) { p.CRP += 5 },
		func(p *models.PatientProfile) { p.VascularTerritories = 2 },
	}
	for i, mutate := range worse {
		p := referenceProfile()
		mutate(&p)
		got, err := e.TenYear(p)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, base, "mutation %d lowered risk", i)
	}
}

func TestEstimateBounds(t *testing.T) {
	e := NewEstimator(SMARTModel())
	for age := 30; age <= 90; age += 5 {
		for v := 0; v <= 3; v++ {
			p := referenceProfile()
			p.Age = age
			p.VascularTerritories = v
			got, err := e.Estimate(p)
			require.NoError(t, err)
			assert.True(t, got.TenYear >= 0 && got.TenYear <= 100, "ten-year %v", got.TenYear)
			assert.LessOrEqual(t, got.FiveYear, got.TenYear)
		}
	}
}

func TestEstimateInvalidInput(t *testing.T) {
	e := NewEstimator(SMARTModel())

	cases := []struct {
		name   string
		mutate func(p *models.PatientProfile)
		field  string
	}{
		{"nan sbp", func(p *models.PatientProfile) { p.SystolicBP = math.NaN() }, "sbp"},
		{"inf hdl", func(p *models.PatientProfile) { p.HDL = math.Inf(1) }, "hdl"},
		{"crp below log domain", func(p *models.PatientProfile) { p.CRP = -1 }, "crp"},
		{"age too low", func(p *models.PatientProfile) { p.Age = 29 }, "age"},
		{"unknown sex", func(p *models.PatientProfile) { p.Sex = "other" }, "sex"},
		{"too many territories", func(p *models.PatientProfile) { p.VascularTerritories = 4 }, "vascular_territories"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := referenceProfile()
			c.mutate(&p)
			_, err := e.Estimate(p)
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrInvalidInput)

			var ie *models.InvalidInputError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, c.field, ie.Field)
		})
	}
}

func TestConvertFiveYear(t *testing.T) {
	got, err := ConvertFiveYear(23.9)
	require.NoError(t, err)
	assert.Equal(t, 12.8, got)

	got, err = ConvertFiveYear(0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	got, err = ConvertFiveYear(100)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got)

	_, err = ConvertFiveYear(100.1)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = ConvertFiveYear(math.NaN())
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestConvertFiveYearMonotonic(t *testing.T) {
	prev := -1.0
	for i := 0; i <= 1000; i++ {
		r10 := float64(i) / 10
		got, err := ConvertFiveYear(r10)
		require.NoError(t, err, r10)
		assert.GreaterOrEqual(t, got, prev, "r10 %.1f", r10)
		assert.LessOrEqual(t, got, r10, "r10 %.1f", r10)
		prev = got
	}
}
