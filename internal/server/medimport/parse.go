// Package medimport reads medical billing sheets (XLSX or CSV) into
// MedicalRecords. The first row is a header; columns are matched by name.
package medimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/lawhelper/internal/server/models"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFile = errors.New("medical import accepts .xlsx or .csv files")
	ErrNoRows          = errors.New("the sheet has no data rows")
	ErrMissingColumn   = errors.New("required column is missing")
)

const (
	MaxRows           = 5000
	defaultRecordType = "medical"
)

// RowError points at the offending cell, counting rows from 1 with the
// header as row 1.
type RowError struct {
	Row    int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s: %v", e.Row, e.Column, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

const (
	colRecordType     = "record_type"
	colProvider       = "provider"
	colServiceDate    = "service_date"
	colDiagnosisCodes = "diagnosis_codes"
	colProcedureCodes = "procedure_codes"
	colTreatment      = "treatment"
	colMedications    = "medications"
	colCharged        = "charged"
	colPaid           = "paid"
	colNotes          = "notes"
)

var aliases = map[string]string{
	"type":            colRecordType,
	"provider_name":   colProvider,
	"date":            colServiceDate,
	"date_of_service": colServiceDate,
	"diagnosis":       colDiagnosisCodes,
	"icd_codes":       colDiagnosisCodes,
	"procedures":      colProcedureCodes,
	"cpt_codes":       colProcedureCodes,
	"medication":      colMedications,
	"charge":          colCharged,
	"charged_amount":  colCharged,
	"billed":          colCharged,
	"paid_amount":     colPaid,
	"payment":         colPaid,
	"note":            colNotes,
}

// Parse dispatches on the file extension.
func Parse(r io.Reader, filename string) ([]*models.MedicalRecord, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		rows, err = readXLSX(r)
	case ".csv":
		rows, err = readCSV(r)
	default:
		return nil, ErrUnsupportedFile
	}
	if err != nil {
		return nil, err
	}
	return parseRows(rows)
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoRows
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer(" ", "_", "-", "_", ".", "").Replace(h)
	if canonical, ok := aliases[h]; ok {
		return canonical
	}
	return h
}

func parseRows(rows [][]string) ([]*models.MedicalRecord, error) {
	if len(rows) < 2 {
		return nil, ErrNoRows
	}
	if len(rows)-1 > MaxRows {
		return nil, fmt.Errorf("too many rows: %d (max %d)", len(rows)-1, MaxRows)
	}

	index := map[string]int{}
	for i, h := range rows[0] {
		if name := normalizeHeader(h); name != "" {
			if _, dup := index[name]; !dup {
				index[name] = i
			}
		}
	}
	if _, ok := index[colProvider]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, colProvider)
	}

	var out []*models.MedicalRecord
	for n, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rec, err := parseRow(row, index, n+2)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if len(out) == 0 {
		return nil, ErrNoRows
	}
	return out, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseRow(row []string, index map[string]int, rowNum int) (*models.MedicalRecord, error) {
	cell := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	fail := func(col string, err error) error {
		return &RowError{Row: rowNum, Column: col, Err: err}
	}

	rec := &models.MedicalRecord{
		RecordType:     cell(colRecordType),
		ProviderName:   cell(colProvider),
		DiagnosisCodes: splitList(cell(colDiagnosisCodes)),
		ProcedureCodes: splitList(cell(colProcedureCodes)),
		Treatment:      cell(colTreatment),
		Medications:    splitList(cell(colMedications)),
		Notes:          cell(colNotes),
		RawText:        strings.Join(row, " | "),
	}
	if rec.ProviderName == "" {
		return nil, fail(colProvider, errors.New("is required"))
	}
	if rec.RecordType == "" {
		rec.RecordType = defaultRecordType
	}

	if v := cell(colServiceDate); v != "" {
		d, err := parseDate(v)
		if err != nil {
			return nil, fail(colServiceDate, err)
		}
		rec.ServiceDate = &d
	}

	var err error
	if rec.ChargedAmount, err = parseAmount(cell(colCharged)); err != nil {
		return nil, fail(colCharged, err)
	}
	if rec.PaidAmount, err = parseAmount(cell(colPaid)); err != nil {
		return nil, fail(colPaid, err)
	}
	return rec, nil
}

// splitList accepts ';', ',' or '|' separated values.
func splitList(s string) []string {
	out := []string{}
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' || r == '|' }) {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

var dateLayouts = []string{"2006-01-02", "01/02/2006", "1/2/2006", "2006/01/02", "01-02-06", "Jan 2, 2006", "2 Jan 2006"}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	// Unformatted spreadsheet cells hold the date as a serial number.
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		return excelize.ExcelDateToTime(serial, false)
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount must not be negative")
	}
	d = d.Round(2)
	if d.GreaterThanOrEqual(models.MaxAmount) {
		return decimal.Zero, fmt.Errorf("amount %s is too large", d)
	}
	return d, nil
}
