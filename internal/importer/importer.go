// Package importer loads legacy repair reports from the intake
// spreadsheet's CSV export into the report store.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/lediangroup/repair-board/internal/models"
	"github.com/lediangroup/repair-board/internal/store"
)

// Fixed column positions of the legacy CSV export.
const (
	colTimestamp = 0
	colReporter  = 1
	colFacility  = 3
	colLocation  = 4
	colImageURL  = 5
	colItem      = 6
	colPriority  = 7
	colEmergency = 8
	colRemarks   = 9
	colStatus    = 10
)

// Markers used by the legacy Japanese form.
const (
	anonymousAnswerMarker = "匿名で回答する"
	completionMarker      = "済"
	emergencyLabel        = "応急対応: "
	priorityLabel         = "緊急度: "
)

// BatchStore is the bulk-write slice of the report store.
type BatchStore interface {
	CreateInBatches(reports []models.Report, batchSize int) error
}

// ParseReports reads the CSV export and maps rows to reports. The header
// row is skipped and rows with fewer than five columns are ignored.
// Quoted fields may contain commas and embedded newlines.
func ParseReports(r io.Reader) ([]models.Report, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) > 0 {
		rows = rows[1:]
	}

	reports := make([]models.Report, 0, len(rows))
	for _, row := range rows {
		if len(row) < 5 {
			continue
		}
		reports = append(reports, mapRow(row))
	}
	return reports, nil
}

func mapRow(row []string) models.Report {
	reporter := field(row, colReporter)
	if reporter == anonymousAnswerMarker {
		reporter = models.AnonymousReporter
	}

	status := models.StatusOpen
	if strings.Contains(field(row, colStatus), completionMarker) {
		status = models.StatusFixed
	}

	// Priority and emergency-action columns fold into remarks as labeled
	// lines, remarks text first.
	remarks := field(row, colRemarks)
	if v := field(row, colEmergency); v != "" {
		remarks = joinLine(remarks, emergencyLabel+v)
	}
	if v := field(row, colPriority); v != "" {
		remarks = joinLine(remarks, priorityLabel+v)
	}

	return models.Report{
		Timestamp: field(row, colTimestamp),
		Reporter:  reporter,
		Facility:  field(row, colFacility),
		Location:  field(row, colLocation),
		ImageURL:  field(row, colImageURL),
		Item:      field(row, colItem),
		Remarks:   remarks,
		Status:    status,
	}
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

func joinLine(base, line string) string {
	if base == "" {
		return line
	}
	return base + "\n" + line
}

// Run parses the CSV and writes the reports in sequential batches,
// returning the number of imported reports.
func Run(r io.Reader, dst BatchStore) (int, error) {
	reports, err := ParseReports(r)
	if err != nil {
		return 0, err
	}
	if len(reports) == 0 {
		return 0, nil
	}
	if err := dst.CreateInBatches(reports, store.MaxBatchSize); err != nil {
		return 0, err
	}
	return len(reports), nil
}
