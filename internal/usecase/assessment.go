package usecase

import (
	"context"
	"errors"
	"time"

	"SmartCVD/internal/domain/models"
	domrepo "SmartCVD/internal/domain/repository"
	domsvc "SmartCVD/internal/domain/service"
	"SmartCVD/internal/services/catalog"
	applogger "SmartCVD/pkg/logger"
	"SmartCVD/pkg/util"

	"github.com/google/uuid"
)

// AssessmentService runs the full calculation for one patient. It holds no
// per-request state and is safe for concurrent use.
type AssessmentService struct {
	estimator domsvc.RiskEstimator
	adjustor  domsvc.TherapyAdjustor
	catalog   *catalog.Catalog
	metrics   domrepo.Metrics
	events    domrepo.EventPublisher
	topic     string
	log       *applogger.Logger
	now       func() time.Time
	newID     func() string
}

// AssessmentOption configures an AssessmentService.
type AssessmentOption func(*AssessmentService)

// WithMetrics records estimates, selections and failures.
func WithMetrics(m domrepo.Metrics) AssessmentOption {
	return func(s *AssessmentService) { s.metrics = m }
}

// WithEvents publishes an AssessmentEvent to topic after each assessment.
func WithEvents(p domrepo.EventPublisher, topic string) AssessmentOption {
	return func(s *AssessmentService) {
		s.events = p
		s.topic = topic
	}
}

// WithLogger sets the service logger.
func WithLogger(l *applogger.Logger) AssessmentOption {
	return func(s *AssessmentService) { s.log = l }
}

func NewAssessmentService(est domsvc.RiskEstimator, adj domsvc.TherapyAdjustor, cat *catalog.Catalog, opts ...AssessmentOption) *AssessmentService {
	s := &AssessmentService{
		estimator: est,
		adjustor:  adj,
		catalog:   cat,
		metrics:   nopMetrics{},
		log:       applogger.NewNop(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog lists the interventions and lipid therapies on offer.
func (s *AssessmentService) Catalog() models.CatalogView {
	return s.catalog.View()
}

// Estimate returns the baseline 10- and 5-year risk for a profile.
func (s *AssessmentService) Estimate(ctx context.Context, p models.PatientProfile) (models.RiskEstimate, error) {
	if err := ctx.Err(); err != nil {
		return models.RiskEstimate{}, err
	}
	start := time.Now()
	est, err := s.estimator.Estimate(p)
	if err != nil {
		s.fail("estimate", err)
		return models.RiskEstimate{}, err
	}
	s.metrics.RecordEstimate(est.TenYear)
	s.metrics.RecordLatency("estimate", time.Since(start).Seconds())
	return est, nil
}

// AdjustLDL applies current therapy then any add-ons.
func (s *AssessmentService) AdjustLDL(ctx context.Context, req models.LDLRequest) (models.LDLOutcome, error) {
	if err := ctx.Err(); err != nil {
		return models.LDLOutcome{}, err
	}
	out, err := s.adjustLDL(req.BaselineLDL, req.Statin, req.Ezetimibe, req.AddOns, models.EligibilityContext{})
	if err != nil {
		s.fail("ldl", err)
		return models.LDLOutcome{}, err
	}
	return out.LDLOutcome, nil
}

// Eligibility evaluates every intervention and add-on for the given context.
func (s *AssessmentService) Eligibility(ctx context.Context, req models.EligibilityRequest) ([]models.EligibilityDecision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ec := models.EligibilityContext{
		AdjustedLDL:   req.AdjustedLDL,
		Triglycerides: req.Triglycerides,
		Smoker:        req.Smoker,
		BMI:           req.BMI,
	}
	return s.adjustor.Eligibility(ec), nil
}

// Assess runs estimate, LDL adjustment, eligibility and both projections.
func (s *AssessmentService) Assess(ctx context.Context, req models.AssessmentRequest) (*models.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	rep, err := s.assess(req)
	if err != nil {
		s.fail("assess", err)
		return nil, err
	}

	s.metrics.RecordEstimate(rep.Risk.TenYear)
	for _, id := range req.Therapy.Interventions {
		s.metrics.RecordIntervention(id)
	}
	for _, id := range req.Therapy.AddOns {
		s.metrics.RecordIntervention(id)
	}
	s.metrics.RecordLatency("assess", time.Since(start).Seconds())
	s.log.Debug("assessment computed",
		applogger.String("report_id", rep.ID),
		applogger.Float64("ten_year", rep.Risk.TenYear),
		applogger.Float64("post_ten_year", rep.Projections.TenYear.PostIntervention),
	)
	s.publish(ctx, rep)
	return rep, nil
}

func (s *AssessmentService) assess(req models.AssessmentRequest) (*models.Report, error) {
	th := req.Therapy
	if th.Statin == "" {
		th.Statin = models.StatinNone
	}
	if err := models.Validate(req.Labs); err != nil {
		return nil, prefixField("labs", err)
	}
	if err := models.Validate(th); err != nil {
		return nil, prefixField("therapy", err)
	}

	risk, err := s.estimator.Estimate(req.Profile)
	if err != nil {
		return nil, prefixField("profile", err)
	}

	bmi := req.Labs.BMI()
	ec := models.EligibilityContext{
		Triglycerides: req.Labs.Triglycerides,
		Smoker:        req.Profile.Smoker,
		BMI:           bmi,
	}
	ldl, err := s.adjustLDL(th.BaselineLDL, th.Statin, th.Ezetimibe, th.AddOns, ec)
	if err != nil {
		return nil, prefixField("therapy", err)
	}
	ec.AdjustedLDL = ldl.rawAdjusted

	tenYear, err := s.adjustor.ProjectRisk(risk.TenYear, models.HorizonTenYear, th.Interventions, ec)
	if err != nil {
		return nil, prefixField("therapy", err)
	}
	fiveYear, err := s.adjustor.ProjectRisk(risk.FiveYear, models.HorizonFiveYear, th.Interventions, ec)
	if err != nil {
		return nil, prefixField("therapy", err)
	}

	rep := &models.Report{
		ID:          s.newID(),
		CreatedAt:   s.now().UTC(),
		Profile:     req.Profile,
		Labs:        req.Labs,
		BMI:         util.RoundHalfUp(bmi, 1),
		Therapy:     th,
		Risk:        risk,
		LDL:         ldl.LDLOutcome,
		Treatments:  s.treatments(th),
		Eligibility: s.adjustor.Eligibility(ec),
		Projections: models.Projections{TenYear: tenYear, FiveYear: fiveYear},
	}

	if th.TargetSBP > 0 {
		p := req.Profile
		p.SystolicBP = th.TargetSBP
		atTarget, err := s.estimator.Estimate(p)
		if err != nil {
			return nil, prefixField("therapy", err)
		}
		rep.AtTargetSBP = &atTarget
	}
	return rep, nil
}

type ldlResult struct {
	models.LDLOutcome
	rawAdjusted float64
}

func (s *AssessmentService) adjustLDL(baseline float64, statin string, eze bool, addOns []string, ec models.EligibilityContext) (ldlResult, error) {
	adjusted, err := s.adjustor.AdjustLDL(baseline, statin, eze)
	if err != nil {
		return ldlResult{}, err
	}
	ec.AdjustedLDL = adjusted
	final, err := s.adjustor.AdjustLDLWithAddOns(ec, addOns)
	if err != nil {
		return ldlResult{}, err
	}
	return ldlResult{
		LDLOutcome: models.LDLOutcome{
			Baseline:            baseline,
			AfterCurrentTherapy: util.RoundHalfUp(adjusted, 2),
			AfterAddOns:         util.RoundHalfUp(final, 2),
			AddOnsOffered:       s.ldlGatedAddOnsOpen(ec),
		},
		rawAdjusted: adjusted,
	}, nil
}

// ldlGatedAddOnsOpen reports whether any add-on gated on LDL-C is available.
func (s *AssessmentService) ldlGatedAddOnsOpen(ec models.EligibilityContext) bool {
	for _, th := range s.catalog.Therapies(models.TherapyAddOn) {
		if th.Eligibility.Rule != models.RuleLDLAbove {
			continue
		}
		if ok, _ := th.Eligibility.Evaluate(ec); ok {
			return true
		}
	}
	return false
}

func (s *AssessmentService) treatments(th models.TherapySelection) models.Treatments {
	var t models.Treatments
	if lt, ok := s.catalog.Therapy(th.Statin); ok {
		t.Current = append(t.Current, lt.Name)
	}
	if th.Ezetimibe {
		t.Current = append(t.Current, s.catalog.Ezetimibe().Name)
	}
	for _, id := range th.AddOns {
		if lt, ok := s.catalog.Therapy(id); ok {
			t.AddOns = append(t.AddOns, lt.Name)
		}
	}
	for _, id := range th.Interventions {
		iv, ok := s.catalog.Intervention(id)
		if !ok {
			continue
		}
		if iv.Category == models.CategoryLifestyle {
			t.Lifestyle = append(t.Lifestyle, iv.Name)
		} else {
			t.Other = append(t.Other, iv.Name)
		}
	}
	return t
}

func (s *AssessmentService) publish(ctx context.Context, rep *models.Report) {
	if s.events == nil || s.topic == "" {
		return
	}
	ev := models.AssessmentEvent{
		ReportID:      rep.ID,
		CreatedAt:     rep.CreatedAt,
		TenYear:       rep.Risk.TenYear,
		FiveYear:      rep.Risk.FiveYear,
		PostTenYear:   rep.Projections.TenYear.PostIntervention,
		Interventions: rep.Therapy.Interventions,
		AddOns:        rep.Therapy.AddOns,
	}
	if err := s.events.PublishMessage(ctx, s.topic, ev); err != nil {
		s.metrics.RecordError("publish")
		s.log.Warn("assessment event not published",
			applogger.String("report_id", rep.ID),
			applogger.Error(err),
		)
	}
}

func (s *AssessmentService) fail(op string, err error) {
	if errors.Is(err, models.ErrInvalidInput) {
		s.metrics.RecordError("invalid_input")
		s.log.Debug("rejected input", applogger.String("op", op), applogger.Error(err))
		return
	}
	s.metrics.RecordError(op)
	s.log.Error("calculation failed", applogger.String("op", op), applogger.Error(err))
}

// prefixField qualifies an InvalidInputError field with the request section.
func prefixField(section string, err error) error {
	var ie *models.InvalidInputError
	if errors.As(err, &ie) && ie.Field != "" {
		return models.InvalidInput(section+"."+ie.Field, ie.Value, ie.Reason)
	}
	return err
}

type nopMetrics struct{}

func (nopMetrics) RecordEstimate(float64)        {}
func (nopMetrics) RecordIntervention(string)     {}
func (nopMetrics) RecordError(string)            {}
func (nopMetrics) RecordLatency(string, float64) {}
