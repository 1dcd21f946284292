package catalog

import "SmartCVD/internal/domain/models"

func defaultInterventions() []models.Intervention {
	return []models.Intervention{
		{ID: "smoking-cessation", Name: "Smoking cessation", Category: models.CategoryLifestyle, ARRLifetime: 17, ARR5yr: 5,
			Citation: "https://pubmed.ncbi.nlm.nih.gov/PMID1", Eligibility: models.Eligibility{Rule: models.RuleCurrentSmoker}},
		{ID: "antiplatelet", Name: "Antiplatelet (ASA or clopidogrel)", Category: models.CategoryOther, ARRLifetime: 6, ARR5yr: 2,
			Citation: "https://pubmed.ncbi.nlm.nih.gov/PMID2", Eligibility: models.Eligibility{Rule: models.RuleAlways}},
		{ID: "weight-loss", Name: "Weight loss to ideal BMI", Category: models.CategoryLifestyle, ARRLifetime: 10, ARR5yr: 3,
			Citation: "https://pubmed.ncbi.nlm.nih.gov/PMID3", Eligibility: models.Eligibility{Rule: models.RuleAlways}},
		{ID: "empagliflozin", Name: "Empagliflozin", Category: models.CategoryOther, ARRLifetime: 6, ARR5yr: 2,
			Citation: "https://pubmed.ncbi.nlm.nih.gov/PMID4", Eligibility: models.Eligibility{Rule: models.RuleAlways}},
		{ID: "icosapent-ethyl", Name: "Icosapent ethyl", Category: models.CategoryOther, ARRLifetime: 5, ARR5yr: 2,
			Citation: "https://pubmed.ncbi.nlm.nih.gov/PMID5", Eligibility: models.Eligibility{Rule: models.RuleTriglyceridesAbove, Threshold: 1.7}},
		{ID: "mediterranean-diet", Name: "Mediterranean diet", Category: models.CategoryLifestyle, ARRLifetime: 9, ARR5yr: 3,
			Citation: "https://pubmed.ncbi.nlm.nih.gov/PMID6", Eligibility: models.Eligibility{Rule: models.RuleAlways}},
		{ID: "physical-activity", Name: "Physical activity", Category: models.CategoryLifestyle, ARRLifetime: 9, ARR5yr: 3,
			Citation: "https://pubmed.ncbi.nlm.nih.gov/PMID7", Eligibility: models.Eligibility{Rule: models.RuleAlways}},
		{ID: "alcohol-moderation", Name: "Alcohol moderation", Category: models.CategoryLifestyle, ARRLifetime: 5, ARR5yr: 2,
			Citation: "https://pubmed.ncbi.nlm.nih.gov/PMID8", Eligibility: models.Eligibility{Rule: models.RuleAlways}},
		{ID: "stress-reduction", Name: "Stress reduction", Category: models.CategoryLifestyle, ARRLifetime: 3, ARR5yr: 1,
			Citation: "https://pubmed.ncbi.nlm.nih.gov/PMID9", Eligibility: models.Eligibility{Rule: models.RuleAlways}},
		{ID: "semaglutide", Name: "Semaglutide", Category: models.CategoryLifestyle, ARRLifetime: 4, ARR5yr: 1,
			Citation: "https://pubmed.ncbi.nlm.nih.gov/STEP", Eligibility: models.Eligibility{Rule: models.RuleBMIAtLeast, Threshold: 30}},
	}
}

func defaultTherapies() []models.LipidTherapy {
	ldlGate := models.Eligibility{Rule: models.RuleLDLAbove, Threshold: 1.8}
	return []models.LipidTherapy{
		{ID: "atorvastatin-80", Name: "Atorvastatin 80 mg", Kind: models.TherapyStatin, ReductionPct: 50,
			Citation: "CTT meta-analysis, Lancet 2010"},
		{ID: "rosuvastatin-20", Name: "Rosuvastatin 20 mg", Kind: models.TherapyStatin, ReductionPct: 55,
			Citation: "CTT meta-analysis, Lancet 2010"},
		{ID: "ezetimibe", Name: "Ezetimibe", Kind: models.TherapyEzetimibe, ReductionPct: 20,
			Citation: "IMPROVE-IT, NEJM 2015"},
		{ID: "bempedoic-acid", Name: "Bempedoic acid", Kind: models.TherapyAddOn, ReductionPct: 18,
			Citation: "CLEAR Outcomes, Lancet 2023"},
		{ID: "pcsk9-inhibitor", Name: "PCSK9 inhibitor", Kind: models.TherapyAddOn, ReductionPct: 60,
			Citation: "FOURIER/ODYSSEY", Eligibility: ldlGate},
		{ID: "inclisiran", Name: "Inclisiran (siRNA)", Kind: models.TherapyAddOn, ReductionPct: 40,
			Citation: "ORION-10", Eligibility: ldlGate},
	}
}
