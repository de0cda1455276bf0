package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// RosterRow is one attendance line of a session roster export. Attendance is
// empty for entries still awaiting a decision.
type RosterRow struct {
	Student    string
	Email      string
	Mode       string
	State      string
	Attendance string
}

var rosterHeaders = []string{"student", "email", "mode", "state", "attendance"}

// CSVExporter renders attendance rosters into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// RenderRoster writes the fixed roster column set, one line per entry.
func (e *CSVExporter) RenderRoster(rows []RosterRow) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(rosterHeaders); err != nil {
		return nil, fmt.Errorf("write roster headers: %w", err)
	}
	for _, row := range rows {
		record := []string{row.Student, row.Email, row.Mode, row.State, row.Attendance}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write roster row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush roster csv: %w", err)
	}
	return buf.Bytes(), nil
}
