package service

import "SmartCVD/internal/domain/models"

// RiskEstimator converts a patient profile into baseline event probabilities.
type RiskEstimator interface {
	Estimate(p models.PatientProfile) (models.RiskEstimate, error)
}

// TherapyAdjustor computes anticipated LDL-C, eligibility and post-intervention risk.
type TherapyAdjustor interface {
	AdjustLDL(baselineLDL float64, statin string, ezetimibe bool) (float64, error)
	AdjustLDLWithAddOns(ec models.EligibilityContext, addOns []string) (float64, error)
	Eligibility(ec models.EligibilityContext) []models.EligibilityDecision
	ProjectRisk(baseline float64, horizon models.Horizon, interventions []string, ec models.EligibilityContext) (models.RiskResult, error)
}
