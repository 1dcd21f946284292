package export

import (
	"fmt"

	"SmartCVD/internal/domain/models"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	chartSheet   = "Chart"
)

// XLSX builds a workbook with the summary table and a before/after risk chart.
func XLSX(rep *models.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeSummary(f, rep); err != nil {
		return nil, err
	}
	if err := writeChart(f, rep); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, rep *models.Report) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(summarySheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := summaryRow(rep)
	for i, v := range row {
		if b, ok := v.(bool); ok {
			row[i] = formatCell(b)
		}
	}
	if err := f.SetSheetRow(summarySheet, "A2", &row); err != nil {
		return fmt.Errorf("write summary row: %w", err)
	}

	last, err := excelize.ColumnNumberToName(len(Columns))
	if err != nil {
		return fmt.Errorf("column name: %w", err)
	}
	if err := f.SetCellStyle(summarySheet, "A1", last+"1", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if err := f.SetColWidth(summarySheet, "A", last, 12); err != nil {
		return fmt.Errorf("column width: %w", err)
	}
	if err := f.SetColWidth(summarySheet, "L", "O", 28); err != nil {
		return fmt.Errorf("column width: %w", err)
	}
	return nil
}

func writeChart(f *excelize.File, rep *models.Report) error {
	if _, err := f.NewSheet(chartSheet); err != nil {
		return fmt.Errorf("create chart sheet: %w", err)
	}
	ten := rep.Projections.TenYear
	five := rep.Projections.FiveYear
	rows := [][]interface{}{
		{"", "10-year risk %", "5-year risk %"},
		{"Before", ten.Baseline, five.Baseline},
		{"After", ten.PostIntervention, five.PostIntervention},
	}
	for i, r := range rows {
		r := r
		if err := f.SetSheetRow(chartSheet, fmt.Sprintf("A%d", i+1), &r); err != nil {
			return fmt.Errorf("write chart data: %w", err)
		}
	}

	chart := &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{
			{Name: chartSheet + "!$B$1", Categories: chartSheet + "!$A$2:$A$3", Values: chartSheet + "!$B$2:$B$3"},
			{Name: chartSheet + "!$C$1", Categories: chartSheet + "!$A$2:$A$3", Values: chartSheet + "!$C$2:$C$3"},
		},
		Title:  []excelize.RichTextRun{{Text: "Risk before vs after interventions"}},
		Legend: excelize.ChartLegend{Position: "bottom"},
		PlotArea: excelize.ChartPlotArea{
			ShowVal: true,
		},
		Dimension: excelize.ChartDimension{Width: 480, Height: 320},
	}
	if err := f.AddChart(chartSheet, "E2", chart); err != nil {
		return fmt.Errorf("add chart: %w", err)
	}
	return nil
}
