package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"SmartCVD/internal/domain/models"
	"SmartCVD/internal/handler/api"
	"SmartCVD/internal/services/catalog"
	"SmartCVD/internal/services/risk"
	"SmartCVD/internal/services/therapy"
	"SmartCVD/internal/usecase"
	xhttp "SmartCVD/pkg/http"
	applogger "SmartCVD/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const requestJSON = `{
  "profile": {"age": 60, "sex": "male", "sbp": 145, "total_cholesterol": 5.0, "hdl": 1.0,
              "egfr": 80, "crp": 2.0},
  "labs": {"triglycerides": 1.2, "hba1c": 7.0, "weight_kg": 75, "height_cm": 170},
  "therapy": {"baseline_ldl": 3.5, "statin": "rosuvastatin-20", "ezetimibe": true,
              "interventions": ["antiplatelet", "mediterranean-diet"]}
}`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// testServer serves the calculator API with the live throttle of the default config.
func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	return testServerWith(t, api.HandlerConfig{LiveMaxRPS: 10})
}

func testServerWith(t *testing.T, cfg api.HandlerConfig) *httptest.Server {
	t.Helper()
	cat := catalog.Default()
	adj, err := therapy.NewAdjustor(cat)
	require.NoError(t, err)
	svc := usecase.NewAssessmentService(risk.NewEstimator(risk.SMARTModel()), adj, cat)
	h := api.NewAssessmentEchoHandler(applogger.NewNop(), svc, nil, nil, nil, cfg)
	ts := httptest.NewServer(xhttp.NewServer(h, xhttp.WithMetrics(false, "")).Echo())
	t.Cleanup(ts.Close)
	return ts
}

var referenceFlags = []string{
	"--age", "60", "--sex", "male", "--sbp", "145", "--tc", "5", "--hdl", "1",
	"--egfr", "80", "--crp", "2",
}

func TestEstimateCmd(t *testing.T) {
	out, err := run(t, append([]string{"estimate"}, referenceFlags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "23.9%")
	assert.Contains(t, out, "12.8%")

	out, err = run(t, append([]string{"estimate", "--json"}, referenceFlags...)...)
	require.NoError(t, err)
	var est models.RiskEstimate
	require.NoError(t, json.Unmarshal([]byte(out), &est))
	assert.Equal(t, models.RiskEstimate{TenYear: 23.9, FiveYear: 12.8}, est)
}

func TestEstimateCmdErrors(t *testing.T) {
	_, err := run(t, "estimate", "--age", "60")
	assert.Error(t, err)

	flags := append([]string{}, referenceFlags...)
	flags[1] = "20"
	_, err = run(t, append([]string{"estimate"}, flags...)...)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Contains(t, err.Error(), "age")

	flags = append([]string{}, referenceFlags...)
	flags[3] = "x"
	_, err = run(t, append([]string{"estimate"}, flags...)...)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestLDLCmd(t *testing.T) {
	out, err := run(t, "ldl", "--json", "--baseline", "3.5", "--statin", "rosuvastatin-20", "--ezetimibe")
	require.NoError(t, err)
	var ldl models.LDLOutcome
	require.NoError(t, json.Unmarshal([]byte(out), &ldl))
	assert.Equal(t, 1.26, ldl.AfterCurrentTherapy)

	out, err = run(t, "ldl", "--baseline", "4", "--statin", "atorvastatin-80", "--add-on", "bempedoic-acid")
	require.NoError(t, err)
	assert.Contains(t, out, "2.00")
	assert.Contains(t, out, "1.64")

	_, err = run(t, "ldl", "--baseline", "3.5", "--statin", "rosuvastatin-20", "--ezetimibe", "--add-on", "pcsk9-inhibitor")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestCatalogCmd(t *testing.T) {
	out, err := run(t, "catalog", "--json")
	require.NoError(t, err)
	var view models.CatalogView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Len(t, view.Interventions, 10)
	assert.Len(t, view.Therapies, 6)

	out, err = run(t, "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "smoking-cessation")
	assert.Contains(t, out, "Inclisiran (siRNA)")

	_, err = run(t, "catalog", "--catalog", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestAssessCmdLocal(t *testing.T) {
	path := writeFile(t, "req.json", requestJSON)

	out, err := run(t, "assess", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "8.9%")
	assert.Contains(t, out, "Mediterranean diet")

	out, err = run(t, "assess", "--json", "--mode", "flat", "--file", path)
	require.NoError(t, err)
	var rep models.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, models.ProjectionFlat, rep.Projections.TenYear.Mode)
	assert.Equal(t, 13.9, rep.Projections.TenYear.PostIntervention)

	_, err = run(t, "assess", "--mode", "median", "--file", path)
	assert.Error(t, err)
}

func TestAssessCmdExport(t *testing.T) {
	path := writeFile(t, "req.json", requestJSON)
	csvPath := filepath.Join(t.TempDir(), "out.csv")

	out, err := run(t, "assess", "--file", path, "--export", "csv", "--out", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, csvPath)

	b, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "Age,Sex,"))

	_, err = run(t, "assess", "--file", path, "--export", "pdf")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestAssessCmdRemote(t *testing.T) {
	ts := testServer(t)
	path := writeFile(t, "req.json", requestJSON)

	out, err := run(t, "assess", "--json", "--server", ts.URL, "--file", path)
	require.NoError(t, err)
	var rep models.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 23.9, rep.Risk.TenYear)
	assert.Equal(t, 8.9, rep.Projections.TenYear.PostIntervention)

	xlsxPath := filepath.Join(t.TempDir(), "out.xlsx")
	_, err = run(t, "assess", "--server", ts.URL, "--file", path, "--export", "xlsx", "--out", xlsxPath)
	require.NoError(t, err)
	b, err := os.ReadFile(xlsxPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("PK")))

	bad := writeFile(t, "bad.json", strings.Replace(requestJSON, `"age": 60`, `"age": 95`, 1))
	_, err = run(t, "assess", "--server", ts.URL, "--file", bad)
	var se *xhttp.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 400, se.Code)
}

func TestLiveCmd(t *testing.T) {
	ts := testServer(t)
	bad := strings.Replace(requestJSON, `"age": 60`, `"age": 95`, 1)
	path := writeFile(t, "reqs.json", "["+requestJSON+","+bad+"]")

	out, err := run(t, "live", "--server", ts.URL, "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "#1 report")
	assert.Contains(t, out, "23.9%")
	assert.Contains(t, out, "#2")
	assert.Contains(t, out, "ERR_INVALID_INPUT")
	assert.Contains(t, out, "profile.age")
}

func TestLiveCmdPacesRequests(t *testing.T) {
	ts := testServer(t)
	path := writeFile(t, "reqs.json", "["+requestJSON+","+requestJSON+","+requestJSON+"]")

	for _, rate := range []string{"5", "50"} {
		out, err := run(t, "live", "--server", ts.URL, "--file", path, "--rate", rate)
		require.NoError(t, err, rate)
		assert.Contains(t, out, "#1 report", rate)
		assert.Contains(t, out, "#2 report", rate)
		assert.Contains(t, out, "#3 report", rate)
		assert.NotContains(t, out, "throttled", rate)
	}

	_, err := run(t, "live", "--server", ts.URL, "--file", path, "--rate", "0")
	assert.Error(t, err)
}

func TestLiveURL(t *testing.T) {
	assert.Equal(t, "ws://localhost:8080/api/assessments/live", liveURL("http://localhost:8080/"))
	assert.Equal(t, "wss://cvd.example.org/api/assessments/live", liveURL("https://cvd.example.org"))
}

func TestReadRequests(t *testing.T) {
	reqs, err := readRequests(strings.NewReader(requestJSON), "-")
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, 60, reqs[0].Profile.Age)

	reqs, err = readRequests(strings.NewReader("["+requestJSON+","+requestJSON+"]"), "-")
	require.NoError(t, err)
	assert.Len(t, reqs, 2)

	_, err = readRequests(strings.NewReader("{"), "-")
	assert.Error(t, err)
}
