package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"SmartCVD/internal/domain/models"
	"SmartCVD/pkg/metrics"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#20B9B4"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2C4A54"))
	mutedStyle = lipgloss.NewStyle().Faint(true)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E74C3C"))

	bandStyles = map[string]lipgloss.Style{
		"low":       lipgloss.NewStyle().Foreground(lipgloss.Color("#2CD7C7")),
		"moderate":  lipgloss.NewStyle().Foreground(lipgloss.Color("#F4D03F")),
		"high":      lipgloss.NewStyle().Foreground(lipgloss.Color("#E67E22")),
		"very_high": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E74C3C")),
	}
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func riskCell(v float64) string {
	return bandStyles[metrics.Band(v)].Render(pct(v))
}

func row(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-24s", label)), value)
}

func printEstimate(w io.Writer, est models.RiskEstimate) {
	fmt.Fprintln(w, titleStyle.Render("Baseline risk"))
	row(w, "10-year", riskCell(est.TenYear))
	row(w, "5-year", riskCell(est.FiveYear))
}

func printLDL(w io.Writer, out models.LDLOutcome) {
	fmt.Fprintln(w, titleStyle.Render("LDL-C (mmol/L)"))
	row(w, "Baseline", fmt.Sprintf("%.2f", out.Baseline))
	row(w, "After current therapy", fmt.Sprintf("%.2f", out.AfterCurrentTherapy))
	row(w, "After add-ons", fmt.Sprintf("%.2f", out.AfterAddOns))
	if out.AddOnsOffered {
		row(w, "Add-ons", "available")
	} else {
		row(w, "Add-ons", mutedStyle.Render("not indicated"))
	}
}

func printCatalog(w io.Writer, v models.CatalogView) {
	fmt.Fprintln(w, titleStyle.Render("Interventions"))
	for _, iv := range v.Interventions {
		row(w, iv.ID, fmt.Sprintf("%s  ARR %.0f / %.0f  %s", iv.Name, iv.ARRLifetime, iv.ARR5yr, ruleText(iv.Eligibility)))
	}
	fmt.Fprintln(w, titleStyle.Render("Lipid therapies"))
	for _, th := range v.Therapies {
		row(w, th.ID, fmt.Sprintf("%s  -%.0f%%  %s", th.Name, th.ReductionPct, ruleText(th.Eligibility)))
	}
}

func ruleText(e models.Eligibility) string {
	if e.Rule == models.RuleAlways || e.Rule == "" {
		return ""
	}
	if e.Threshold != 0 {
		return mutedStyle.Render(fmt.Sprintf("[%s %g]", e.Rule, e.Threshold))
	}
	return mutedStyle.Render(fmt.Sprintf("[%s]", e.Rule))
}

func printProjection(w io.Writer, title string, r models.RiskResult) {
	fmt.Fprintln(w, titleStyle.Render(title))
	row(w, "Baseline", riskCell(r.Baseline))
	row(w, "After interventions", riskCell(r.PostIntervention))
	row(w, "ARR / RRR", fmt.Sprintf("%.1f pp / %.1f%%", r.ARR, r.RRR))
}

func printReport(w io.Writer, rep *models.Report) {
	printEstimate(w, rep.Risk)
	if rep.AtTargetSBP != nil {
		row(w, "10-year at target SBP", riskCell(rep.AtTargetSBP.TenYear))
	}
	row(w, "BMI", fmt.Sprintf("%.1f", rep.BMI))
	printLDL(w, rep.LDL)

	t := rep.Treatments
	fmt.Fprintln(w, titleStyle.Render("Treatments"))
	row(w, "Current", listOrNone(t.Current))
	row(w, "Add-ons", listOrNone(t.AddOns))
	row(w, "Lifestyle", listOrNone(t.Lifestyle))
	row(w, "Other", listOrNone(t.Other))

	printProjection(w, "10-year projection", rep.Projections.TenYear)
	printProjection(w, "5-year projection", rep.Projections.FiveYear)

	var refused []string
	for _, d := range rep.Eligibility {
		if !d.Eligible {
			refused = append(refused, fmt.Sprintf("%s (%s)", d.Name, d.Reason))
		}
	}
	if len(refused) > 0 {
		fmt.Fprintln(w, titleStyle.Render("Not eligible"))
		for _, r := range refused {
			fmt.Fprintln(w, "  "+mutedStyle.Render(r))
		}
	}
}

func printFrame(w io.Writer, f models.LiveFrame) {
	switch f.Type {
	case models.FrameReport:
		ten := f.Report.Projections.TenYear
		fmt.Fprintf(w, "#%d report  10-year %s -> %s  5-year %s\n",
			f.Seq, riskCell(ten.Baseline), riskCell(ten.PostIntervention), riskCell(f.Report.Risk.FiveYear))
	case models.FrameError:
		msg := f.Error.Message
		if f.Error.Field != "" {
			msg = f.Error.Field + ": " + msg
		}
		fmt.Fprintf(w, "#%d %s %s %s\n", f.Seq, errorStyle.Render("error"), f.Error.Code, msg)
	default:
		fmt.Fprintf(w, "#%d %s\n", f.Seq, mutedStyle.Render(f.Type))
	}
}

func listOrNone(xs []string) string {
	if len(xs) == 0 {
		return mutedStyle.Render("none")
	}
	return strings.Join(xs, ", ")
}
