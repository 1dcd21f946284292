package export

import (
	"fmt"
	"strconv"
	"strings"

	"SmartCVD/internal/domain/models"
)

// Format is a downloadable report format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" or "xlsx".
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", models.InvalidInput("format", s, "must be one of: csv, xlsx")
	}
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename is the attachment name for a report.
func (f Format) Filename() string {
	return "cvd_report." + string(f)
}

// Render encodes the report in the given format.
func Render(f Format, rep *models.Report) ([]byte, error) {
	if rep == nil {
		return nil, fmt.Errorf("export: nil report")
	}
	switch f {
	case FormatCSV:
		return CSV(rep)
	case FormatXLSX:
		return XLSX(rep)
	default:
		return nil, models.InvalidInput("format", string(f), "must be one of: csv, xlsx")
	}
}

// Columns is the summary table header shared by both formats.
var Columns = []string{
	"Age", "Sex", "Smoking", "Diabetes", "eGFR", "Vascular", "BMI", "TC", "HDL", "hs-CRP",
	"LDL0", "Pre-Tx", "Add-Tx", "Lifestyle", "Other", "Baseline%", "Final%", "ARR", "RRR",
}

// summaryRow returns the typed values under Columns, using the 10-year projection.
func summaryRow(rep *models.Report) []interface{} {
	p := rep.Profile
	proj := rep.Projections.TenYear
	return []interface{}{
		p.Age,
		sexLabel(p.Sex),
		p.Smoker,
		p.Diabetes,
		p.EGFR,
		p.VascularTerritories,
		rep.BMI,
		p.TotalCholesterol,
		p.HDL,
		p.CRP,
		rep.Therapy.BaselineLDL,
		preTreatment(rep),
		strings.Join(rep.Treatments.AddOns, "; "),
		strings.Join(rep.Treatments.Lifestyle, "; "),
		strings.Join(rep.Treatments.Other, "; "),
		proj.Baseline,
		proj.PostIntervention,
		proj.ARR,
		proj.RRR,
	}
}

// preTreatment leads with the statin label, "None" without one, then ezetimibe.
func preTreatment(rep *models.Report) string {
	statin, rest := "None", rep.Treatments.Current
	if st := rep.Therapy.Statin; st != "" && st != models.StatinNone && len(rest) > 0 {
		statin, rest = rest[0], rest[1:]
	}
	return strings.Join(append([]string{statin}, rest...), "; ")
}

func sexLabel(s models.Sex) string {
	if s == models.SexFemale {
		return "Female"
	}
	return "Male"
}

func formatCell(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprint(x)
	}
}
