package migrations

import (
	"io/fs"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readInit(t *testing.T) string {
	t.Helper()
	b, err := fs.ReadFile(Migrations, "00001_init.sql")
	require.NoError(t, err)
	return string(b)
}

func TestMigrations_Embedded(t *testing.T) {
	files, err := fs.Glob(Migrations, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		b, err := fs.ReadFile(Migrations, f)
		require.NoError(t, err)
		assert.Contains(t, string(b), "-- +goose Up", f)
		assert.Contains(t, string(b), "-- +goose Down", f)
	}
}

func TestInit_OwnedTablesCascadeFromAccounts(t *testing.T) {
	sql := readInit(t)
	for _, table := range []string{"sessions", "search_history", "cases", "saved_documents", "medical_records"} {
		re := regexp.MustCompile(`(?s)CREATE TABLE ` + table + ` \(.*?account_id\s+UUID NOT NULL REFERENCES accounts\(id\) ON DELETE CASCADE`)
		assert.Regexp(t, re, sql, table)
	}
}

func TestInit_CaseDeletion(t *testing.T) {
	sql := readInit(t)
	assert.Regexp(t, `case_id\s+UUID NOT NULL REFERENCES cases\(id\) ON DELETE CASCADE`, sql)
	assert.Regexp(t, `case_id\s+UUID REFERENCES cases\(id\) ON DELETE SET NULL`, sql)
}

func TestInit_MoneyIsNumeric(t *testing.T) {
	sql := readInit(t)
	assert.NotContains(t, strings.ToUpper(sql), "FLOAT")
	assert.NotContains(t, strings.ToUpper(sql), "DOUBLE PRECISION")
	assert.Equal(t, 4, strings.Count(sql, "NUMERIC(12,2)"))
}
