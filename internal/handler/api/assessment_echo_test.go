package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	models "SmartCVD/internal/domain/models"
	domrepo "SmartCVD/internal/domain/repository"
	"SmartCVD/internal/service/cache"
	"SmartCVD/internal/service/ratelimit"
	"SmartCVD/internal/services/catalog"
	"SmartCVD/internal/services/risk"
	"SmartCVD/internal/services/therapy"
	"SmartCVD/internal/usecase"
	xhttp "SmartCVD/pkg/http"
	xlogger "SmartCVD/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const assessmentBody = `{
  "profile": {"age": 60, "sex": "male", "sbp": 145, "total_cholesterol": 5.0, "hdl": 1.0,
              "smoker": false, "diabetes": false, "egfr": 80, "crp": 2.0, "vascular_territories": 0},
  "labs": {"triglycerides": 1.2, "hba1c": 7.0, "weight_kg": 75, "height_cm": 170},
  "therapy": {"baseline_ldl": 3.5, "statin": "rosuvastatin-20", "ezetimibe": true,
              "interventions": ["antiplatelet", "mediterranean-diet"]}
}`

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type apiError struct {
	Code  string `json:"code"`
	Field string `json:"field"`
}

func newTestServer(t *testing.T, c *cache.TTLCache, limiter *ratelimit.Limiter, cfg HandlerConfig) *xhttp.Server {
	t.Helper()
	cat := catalog.Default()
	adj, err := therapy.NewAdjustor(cat)
	require.NoError(t, err)
	svc := usecase.NewAssessmentService(risk.NewEstimator(risk.SMARTModel()), adj, cat)

	var rc domrepo.ReportCache
	if c != nil {
		rc = c
	}
	h := NewAssessmentEchoHandler(xlogger.NewNop(), svc, rc, limiter, nil, cfg)
	return xhttp.NewServer(h, xhttp.WithMetrics(false, ""))
}

func do(t *testing.T, s *xhttp.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func TestCatalog(t *testing.T) {
	s := newTestServer(t, nil, nil, HandlerConfig{})
	rec := do(t, s, http.MethodGet, "/api/catalog", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view models.CatalogView
	decode(t, rec, &view)
	assert.Len(t, view.Interventions, 10)
	assert.Len(t, view.Therapies, 6)
}

func TestEstimate(t *testing.T) {
	s := newTestServer(t, nil, nil, HandlerConfig{})

	body := `{"age":60,"sex":"male","sbp":145,"total_cholesterol":5.0,"hdl":1.0,"egfr":80,"crp":2.0}`
	rec := do(t, s, http.MethodPost, "/api/risk/estimate", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var est models.RiskEstimate
	decode(t, rec, &est)
	assert.Equal(t, models.RiskEstimate{TenYear: 23.9, FiveYear: 12.8}, est)

	rec = do(t, s, http.MethodPost, "/api/risk/estimate", strings.Replace(body, `"age":60`, `"age":20`, 1))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var errs []apiError
	env := decode(t, rec, &errs)
	assert.Equal(t, http.StatusBadRequest, env.Status)
	require.NotEmpty(t, errs)
	assert.Equal(t, "ERR_GTE", errs[0].Code)
	assert.Equal(t, "age", errs[0].Field)
}

func TestAdjustLDL(t *testing.T) {
	s := newTestServer(t, nil, nil, HandlerConfig{})

	rec := do(t, s, http.MethodPost, "/api/therapy/ldl", `{"baseline_ldl":3.5,"statin":"rosuvastatin-20","ezetimibe":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var out models.LDLOutcome
	decode(t, rec, &out)
	assert.Equal(t, 1.26, out.AfterCurrentTherapy)
	assert.False(t, out.AddOnsOffered)

	rec = do(t, s, http.MethodPost, "/api/therapy/ldl", `{"baseline_ldl":3.5,"statin":"rosuvastatin-20","ezetimibe":true,"add_ons":["pcsk9-inhibitor"]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var errs []apiError
	decode(t, rec, &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR_INVALID_INPUT", errs[0].Code)
	assert.Equal(t, "add_ons", errs[0].Field)

	rec = do(t, s, http.MethodPost, "/api/therapy/ldl", `{"baseline_ldl":3.5,"statin":"cerivastatin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEligibilityEndpoint(t *testing.T) {
	s := newTestServer(t, nil, nil, HandlerConfig{})
	rec := do(t, s, http.MethodPost, "/api/eligibility", `{"adjusted_ldl":1.26,"triglycerides":2.0,"smoker":true,"bmi":24}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var decisions []models.EligibilityDecision
	decode(t, rec, &decisions)
	byID := map[string]bool{}
	for _, d := range decisions {
		byID[d.ID] = d.Eligible
	}
	assert.True(t, byID["smoking-cessation"])
	assert.True(t, byID["icosapent-ethyl"])
	assert.False(t, byID["semaglutide"])
	assert.False(t, byID["pcsk9-inhibitor"])
}

func TestAssessAndCache(t *testing.T) {
	s := newTestServer(t, cache.NewTTLCache(), nil, HandlerConfig{CacheTTL: time.Minute})

	first := do(t, s, http.MethodPost, "/api/assessments", assessmentBody)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	var rep models.Report
	decode(t, first, &rep)
	assert.Equal(t, 23.9, rep.Risk.TenYear)
	assert.Equal(t, 8.9, rep.Projections.TenYear.PostIntervention)
	assert.Equal(t, 7.8, rep.Projections.FiveYear.PostIntervention)
	assert.NotEmpty(t, rep.ID)

	second := do(t, s, http.MethodPost, "/api/assessments", assessmentBody)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	var cached models.Report
	decode(t, second, &cached)
	assert.Equal(t, rep.ID, cached.ID)
}

func TestAssessInvalidIntervention(t *testing.T) {
	s := newTestServer(t, nil, nil, HandlerConfig{})
	body := strings.Replace(assessmentBody, `"antiplatelet"`, `"smoking-cessation"`, 1)

	rec := do(t, s, http.MethodPost, "/api/assessments", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var errs []apiError
	decode(t, rec, &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, "therapy.interventions", errs[0].Field)
}

func TestExport(t *testing.T) {
	s := newTestServer(t, nil, nil, HandlerConfig{})

	rec := do(t, s, http.MethodPost, "/api/assessments/export", assessmentBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "cvd_report.csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Age,Sex,"))

	rec = do(t, s, http.MethodPost, "/api/assessments/export?format=xlsx", assessmentBody)
	require.Equal(t, http.StatusOK, rec.Code)
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Summary", "P2")
	require.NoError(t, err)
	assert.Equal(t, "23.9", v)

	rec = do(t, s, http.MethodPost, "/api/assessments/export?format=pdf", assessmentBody)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, nil, ratelimit.New(), HandlerConfig{RateLimit: true, RateCapacity: 1, RateRefill: 0.001})

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/catalog", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, s, http.MethodGet, "/api/catalog", "").Code)
	// health checks are not rate limited
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/healthz", "").Code)
}

func TestLive(t *testing.T) {
	s := newTestServer(t, nil, nil, HandlerConfig{})
	ts := httptest.NewServer(s.Echo())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/assessments/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(assessmentBody)))
	var f models.LiveFrame
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, models.FrameReport, f.Type)
	assert.Equal(t, uint64(1), f.Seq)
	require.NotNil(t, f.Report)
	assert.Equal(t, 23.9, f.Report.Risk.TenYear)

	bad := strings.Replace(assessmentBody, `"age": 60`, `"age": 95`, 1)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(bad)))
	f = models.LiveFrame{}
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, models.FrameError, f.Type)
	assert.Equal(t, uint64(2), f.Seq)
	require.NotNil(t, f.Error)
	assert.Equal(t, "profile.age", f.Error.Field)
}

func TestLiveOrigin(t *testing.T) {
	s := newTestServer(t, nil, nil, HandlerConfig{AllowedOrigins: []string{"https://app.example.org"}})
	ts := httptest.NewServer(s.Echo())
	defer ts.Close()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/assessments/live"

	tests := []struct {
		name   string
		origin string
		ok     bool
	}{
		{"no origin header", "", true},
		{"configured origin", "https://app.example.org", true},
		{"same host", ts.URL, true},
		{"foreign origin", "https://evil.example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.origin != "" {
				h.Set("Origin", tt.origin)
			}
			conn, resp, err := websocket.DefaultDialer.Dial(url, h)
			if !tt.ok {
				require.ErrorIs(t, err, websocket.ErrBadHandshake)
				require.NotNil(t, resp)
				assert.Equal(t, http.StatusForbidden, resp.StatusCode)
				return
			}
			require.NoError(t, err)
			defer conn.Close()
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(assessmentBody)))
			var f models.LiveFrame
			require.NoError(t, conn.ReadJSON(&f))
			assert.Equal(t, models.FrameReport, f.Type)
		})
	}
}
