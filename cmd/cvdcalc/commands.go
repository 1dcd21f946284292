package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"SmartCVD/internal/domain/models"
	"SmartCVD/internal/services/export"
	xhttp "SmartCVD/pkg/http"

	"github.com/spf13/cobra"
)

func newEstimateCmd(o *options) *cobra.Command {
	var (
		p   models.PatientProfile
		sex string
	)
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate baseline 10- and 5-year risk for one patient",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := models.ParseSex(sex)
			if err != nil {
				return err
			}
			p.Sex = s
			svc, err := o.service()
			if err != nil {
				return err
			}
			est, err := svc.Estimate(cmd.Context(), p)
			if err != nil {
				return err
			}
			if o.jsonOut {
				return writeJSON(cmd.OutOrStdout(), est)
			}
			printEstimate(cmd.OutOrStdout(), est)
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&p.Age, "age", 0, "age in years (30-90)")
	f.StringVar(&sex, "sex", "", "male or female")
	f.Float64Var(&p.SystolicBP, "sbp", 0, "systolic blood pressure, mmHg")
	f.Float64Var(&p.TotalCholesterol, "tc", 0, "total cholesterol, mmol/L")
	f.Float64Var(&p.HDL, "hdl", 0, "HDL cholesterol, mmol/L")
	f.BoolVar(&p.Smoker, "smoker", false, "current smoker")
	f.BoolVar(&p.Diabetes, "diabetes", false, "diabetes mellitus")
	f.Float64Var(&p.EGFR, "egfr", 0, "eGFR, mL/min/1.73m²")
	f.Float64Var(&p.CRP, "crp", 0, "hs-CRP, mg/L")
	f.IntVar(&p.VascularTerritories, "vasc", 0, "number of affected vascular territories (0-3)")
	for _, name := range []string{"age", "sex", "sbp", "tc", "hdl", "egfr"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newLDLCmd(o *options) *cobra.Command {
	req := models.LDLRequest{}
	cmd := &cobra.Command{
		Use:   "ldl",
		Short: "Project LDL-C under statin, ezetimibe and add-on therapy",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := o.service()
			if err != nil {
				return err
			}
			out, err := svc.AdjustLDL(cmd.Context(), req)
			if err != nil {
				return err
			}
			if o.jsonOut {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			printLDL(cmd.OutOrStdout(), out)
			return nil
		},
	}
	f := cmd.Flags()
	f.Float64Var(&req.BaselineLDL, "baseline", 0, "untreated LDL-C, mmol/L")
	f.StringVar(&req.Statin, "statin", models.StatinNone, "statin catalog id")
	f.BoolVar(&req.Ezetimibe, "ezetimibe", false, "add ezetimibe")
	f.StringSliceVar(&req.AddOns, "add-on", nil, "add-on therapy catalog id (repeatable)")
	_ = cmd.MarkFlagRequired("baseline")
	return cmd
}

func newCatalogCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List interventions and lipid therapies",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := o.service()
			if err != nil {
				return err
			}
			view := svc.Catalog()
			if o.jsonOut {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			printCatalog(cmd.OutOrStdout(), view)
			return nil
		},
	}
}

func newAssessCmd(o *options) *cobra.Command {
	var (
		file    string
		server  string
		format  string
		outPath string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Run a full assessment from a JSON request",
		Long: `Run a full assessment from a JSON request file ("-" reads stdin).
With --server the request is sent to a running SmartCVD API instead of being
computed in process. With --export the report is written as CSV or XLSX.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readRequest(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if format != "" {
				f, err := export.ParseFormat(format)
				if err != nil {
					return err
				}
				if outPath == "" {
					outPath = f.Filename()
				}
				var body []byte
				if server != "" {
					body, err = remoteExport(ctx, server, f, req)
				} else {
					body, err = localExport(ctx, o, f, req)
				}
				if err != nil {
					return err
				}
				if err := os.WriteFile(outPath, body, 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outPath)
				return nil
			}

			var rep *models.Report
			if server != "" {
				rep, err = remoteAssess(ctx, server, req)
			} else {
				rep, err = localAssess(ctx, o, req)
			}
			if err != nil {
				return err
			}
			if o.jsonOut {
				return writeJSON(cmd.OutOrStdout(), rep)
			}
			printReport(cmd.OutOrStdout(), rep)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&file, "file", "f", "", "assessment request JSON file, - for stdin")
	f.StringVar(&server, "server", "", "SmartCVD API base URL, e.g. http://localhost:8080")
	f.StringVar(&format, "export", "", "export format: csv or xlsx")
	f.StringVarP(&outPath, "out", "o", "", "export file path (default cvd_report.<format>)")
	f.DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func localAssess(ctx context.Context, o *options, req models.AssessmentRequest) (*models.Report, error) {
	svc, err := o.service()
	if err != nil {
		return nil, err
	}
	return svc.Assess(ctx, req)
}

func localExport(ctx context.Context, o *options, f export.Format, req models.AssessmentRequest) ([]byte, error) {
	rep, err := localAssess(ctx, o, req)
	if err != nil {
		return nil, err
	}
	return export.Render(f, rep)
}

func remoteAssess(ctx context.Context, server string, req models.AssessmentRequest) (*models.Report, error) {
	var env struct {
		Data *models.Report `json:"data"`
	}
	err := xhttp.NewClient().SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    strings.TrimRight(server, "/") + "/api/assessments",
		Body:   req,
	}, &env)
	if err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, fmt.Errorf("empty response from %s", server)
	}
	return env.Data, nil
}

func remoteExport(ctx context.Context, server string, f export.Format, req models.AssessmentRequest) ([]byte, error) {
	var body []byte
	err := xhttp.NewClient().SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodPost,
		URL:         strings.TrimRight(server, "/") + "/api/assessments/export",
		QueryParams: map[string][]string{"format": {string(f)}},
		Body:        req,
	}, &body)
	return body, err
}

// liveURL maps an http(s) base URL onto the live endpoint.
func liveURL(server string) string {
	u := strings.TrimRight(server, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/api/assessments/live"
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}
	return b, nil
}

func readRequest(stdin io.Reader, path string) (models.AssessmentRequest, error) {
	var req models.AssessmentRequest
	b, err := readInput(stdin, path)
	if err != nil {
		return req, err
	}
	if err := json.Unmarshal(b, &req); err != nil {
		return req, fmt.Errorf("parse request: %w", err)
	}
	return req, nil
}

// readRequests accepts a single request object or an array of them.
func readRequests(stdin io.Reader, path string) ([]models.AssessmentRequest, error) {
	b, err := readInput(stdin, path)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(b))
	if strings.HasPrefix(trimmed, "[") {
		var reqs []models.AssessmentRequest
		if err := json.Unmarshal(b, &reqs); err != nil {
			return nil, fmt.Errorf("parse requests: %w", err)
		}
		return reqs, nil
	}
	var req models.AssessmentRequest
	if err := json.Unmarshal(b, &req); err != nil {
		return nil, fmt.Errorf("parse request: %w", err)
	}
	return []models.AssessmentRequest{req}, nil
}
