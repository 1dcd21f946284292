package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	models "SmartCVD/internal/domain/models"
	domrepo "SmartCVD/internal/domain/repository"
	"SmartCVD/internal/service/cache"
	"SmartCVD/internal/service/ratelimit"
	"SmartCVD/internal/services/export"
	"SmartCVD/internal/usecase"
	xhttp "SmartCVD/pkg/http"
	xlogger "SmartCVD/pkg/logger"

	"github.com/labstack/echo/v4"
)

// HandlerConfig tunes the optional parts of AssessmentEchoHandler.
type HandlerConfig struct {
	CacheTTL       time.Duration
	RateLimit      bool
	RateCapacity   float64
	RateRefill     float64
	LiveMaxRPS     int
	LiveReadLimit  int64
	LivePingPeriod time.Duration
	// AllowedOrigins limits browser origins on the live endpoint; empty allows any.
	AllowedOrigins []string
}

// AssessmentEchoHandler serves the calculator over HTTP.
type AssessmentEchoHandler struct {
	logger  *xlogger.Logger
	svc     *usecase.AssessmentService
	cache   domrepo.ReportCache
	limiter *ratelimit.Limiter
	metrics domrepo.Metrics
	cfg     HandlerConfig
}

// NewAssessmentEchoHandler wires the handler. cache, limiter and metrics may be nil.
func NewAssessmentEchoHandler(logger *xlogger.Logger, svc *usecase.AssessmentService, c domrepo.ReportCache,
	limiter *ratelimit.Limiter, metrics domrepo.Metrics, cfg HandlerConfig) *AssessmentEchoHandler {
	if cfg.LiveReadLimit <= 0 {
		cfg.LiveReadLimit = 64 << 10
	}
	if cfg.LivePingPeriod <= 0 {
		cfg.LivePingPeriod = 30 * time.Second
	}
	return &AssessmentEchoHandler{logger: logger, svc: svc, cache: c, limiter: limiter, metrics: metrics, cfg: cfg}
}

func (h *AssessmentEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	if h.limiter != nil && h.cfg.RateLimit {
		g.Use(h.limiter.Middleware(h.cfg.RateCapacity, h.cfg.RateRefill))
	}
	g.GET("/catalog", h.Catalog)
	g.POST("/risk/estimate", h.Estimate)
	g.POST("/therapy/ldl", h.AdjustLDL)
	g.POST("/eligibility", h.Eligibility)
	g.POST("/assessments", h.Assess)
	g.POST("/assessments/export", h.Export)
	g.GET("/assessments/live", h.Live)
}

func (h *AssessmentEchoHandler) Catalog(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=300")
	return xhttp.SuccessResponse(c, h.svc.Catalog())
}

func (h *AssessmentEchoHandler) Estimate(c echo.Context) error {
	req := &models.PatientProfile{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.svc.Estimate(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "estimate", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AssessmentEchoHandler) AdjustLDL(c echo.Context) error {
	req := &models.LDLRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.svc.AdjustLDL(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "ldl", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AssessmentEchoHandler) Eligibility(c echo.Context) error {
	req := &models.EligibilityRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.svc.Eligibility(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "eligibility", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AssessmentEchoHandler) Assess(c echo.Context) error {
	req := &models.AssessmentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	key := h.cacheKey("assess", req)
	if key != "" {
		if b, ok, err := h.cache.GetBytes(key); err != nil {
			h.logger.Warn("assessment cache read failed", xlogger.Error(err))
		} else if ok {
			c.Response().Header().Set("X-Cache", "HIT")
			return c.JSONBlob(http.StatusOK, b)
		}
	}

	rep, err := h.svc.Assess(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "assess", err)
	}

	if key != "" {
		body, err := json.Marshal(xhttp.APIResponse{Status: http.StatusOK, Message: http.StatusText(http.StatusOK), Data: rep})
		if err == nil {
			if err := h.cache.SetBytes(key, body, h.cfg.CacheTTL); err != nil {
				h.logger.Warn("assessment cache write failed", xlogger.Error(err))
			}
		}
		c.Response().Header().Set("X-Cache", "MISS")
	}
	return xhttp.SuccessResponse(c, rep)
}

func (h *AssessmentEchoHandler) Export(c echo.Context) error {
	format, err := export.ParseFormat(defaultString(c.QueryParam("format"), string(export.FormatCSV)))
	if err != nil {
		return h.fail(c, "export", err)
	}
	req := &models.AssessmentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rep, err := h.svc.Assess(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "export", err)
	}
	body, err := export.Render(format, rep)
	if err != nil {
		return h.fail(c, "export", err)
	}
	return xhttp.AttachmentResponse(c, format.ContentType(), format.Filename(), body)
}

// cacheKey returns "" when caching is off or the request cannot be encoded.
func (h *AssessmentEchoHandler) cacheKey(ns string, req interface{}) string {
	if h.cache == nil || h.cfg.CacheTTL <= 0 {
		return ""
	}
	b, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	return cache.Key(ns, b)
}

// fail maps calculator errors onto the API envelope.
func (h *AssessmentEchoHandler) fail(c echo.Context, op string, err error) error {
	var ie *models.InvalidInputError
	switch {
	case errors.As(err, &ie):
		appErr := xhttp.NewAppError("ERR_INVALID_INPUT", ie.Field, ie.Error(), http.StatusBadRequest).
			WithParam("reason", ie.Reason).
			WithParam("value", fmt.Sprint(ie.Value))
		return xhttp.AppErrorResponse(c, appErr)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_UNAVAILABLE", "", "request cancelled", http.StatusServiceUnavailable).WithError(err))
	default:
		h.logger.Error(op+" usecase error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
