package medimport

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildXLSX(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParse_XLSX(t *testing.T) {
	buf := buildXLSX(t, [][]any{
		{"Record Type", "Provider Name", "Service Date", "Diagnosis Codes", "CPT Codes", "Treatment", "Medications", "Charged", "Paid", "Notes"},
		{"er-visit", "City Hospital", "2024-03-05", "S13.4; M54.2", "99284", "ER evaluation", "Ibuprofen, Cyclobenzaprine", "$1,250.00", "900", "ambulance"},
		{"", "", "", "", "", "", "", "", "", ""},
		{"", "PT Clinic", "", "", "97110|97140", "Physical therapy", "", "310.5", "", ""},
	})

	recs, err := Parse(buf, "billing.XLSX")
	require.NoError(t, err)
	require.Len(t, recs, 2)

	er := recs[0]
	assert.Equal(t, "er-visit", er.RecordType)
	assert.Equal(t, "City Hospital", er.ProviderName)
	require.NotNil(t, er.ServiceDate)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), *er.ServiceDate)
	assert.Equal(t, []string{"S13.4", "M54.2"}, er.DiagnosisCodes)
	assert.Equal(t, []string{"99284"}, er.ProcedureCodes)
	assert.Equal(t, []string{"Ibuprofen", "Cyclobenzaprine"}, er.Medications)
	assert.True(t, decimal.RequireFromString("1250").Equal(er.ChargedAmount))
	assert.True(t, decimal.RequireFromString("900").Equal(er.PaidAmount))
	assert.Contains(t, er.RawText, "City Hospital")

	pt := recs[1]
	assert.Equal(t, defaultRecordType, pt.RecordType)
	assert.Nil(t, pt.ServiceDate)
	assert.Equal(t, []string{"97110", "97140"}, pt.ProcedureCodes)
	assert.Equal(t, []string{}, pt.DiagnosisCodes)
	assert.True(t, decimal.Zero.Equal(pt.PaidAmount))
	assert.Equal(t, "310.5", pt.ChargedAmount.String())
}

func TestParse_CSV(t *testing.T) {
	in := "provider,date,billed,payment\n" +
		"Dr. Lee,03/15/2024,200,150\n" +
		"Imaging Center,Jan 2, 2024,\"1,000.10\",0\n"
	_, err := Parse(strings.NewReader(in), "sheet.csv")
	require.Error(t, err, "unquoted comma in date shifts the columns")

	in = "provider,date,billed,payment\n" +
		"Dr. Lee,03/15/2024,200,150\n" +
		"Imaging Center,\"Jan 2, 2024\",\"1,000.10\",0\n"
	recs, err := Parse(strings.NewReader(in), "sheet.csv")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), *recs[0].ServiceDate)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), *recs[1].ServiceDate)
	assert.Equal(t, "1000.1", recs[1].ChargedAmount.String())
}

func TestParse_RowErrors(t *testing.T) {
	tests := []struct {
		name, csv, column string
		row               int
	}{
		{"bad amount", "provider,charged\nA,12\nB,twelve\n", colCharged, 3},
		{"negative", "provider,paid\nA,-5\n", colPaid, 2},
		{"too large", "provider,charged\nA,\"$10,000,000,000\"\n", colCharged, 2},
		{"rounds over the limit", "provider,paid\nA,9999999999.999\n", colPaid, 2},
		{"bad date", "provider,service_date\nA,yesterday\n", colServiceDate, 2},
		{"missing provider", "provider,notes\n,just notes\n", colProvider, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.csv), "x.csv")
			var rowErr *RowError
			require.True(t, errors.As(err, &rowErr), "got %v", err)
			assert.Equal(t, tc.row, rowErr.Row)
			assert.Equal(t, tc.column, rowErr.Column)
		})
	}
}

func TestParse_SheetShape(t *testing.T) {
	_, err := Parse(strings.NewReader("provider\n"), "x.csv")
	assert.ErrorIs(t, err, ErrNoRows)

	_, err = Parse(strings.NewReader("provider\n , \n"), "x.csv")
	assert.ErrorIs(t, err, ErrNoRows)

	_, err = Parse(strings.NewReader("doctor,charged\nA,1\n"), "x.csv")
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = Parse(strings.NewReader("x"), "x.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFile)

	_, err = Parse(strings.NewReader("not a zip"), "x.xlsx")
	assert.Error(t, err)
}

func TestParseDate_Serial(t *testing.T) {
	d, err := parseDate("45356")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, time.March, d.Month())
	assert.Equal(t, 5, d.Day())
}
