package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"SmartCVD/internal/domain/models"
)

// CSV writes the summary table as a header line and one data line.
func CSV(rep *models.Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	vals := summaryRow(rep)
	rec := make([]string, len(vals))
	for i, v := range vals {
		rec[i] = formatCell(v)
	}
	if err := w.Write(rec); err != nil {
		return nil, fmt.Errorf("write csv row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
