package models

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/lawhelper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCaseType(t *testing.T) {
	ct, err := ParseCaseType("medical-malpractice")
	require.NoError(t, err)
	assert.Equal(t, CaseTypeMedicalMalpractice, ct)

	_, err = ParseCaseType("maritime")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrorValidation))
	assert.Equal(t, "caseType", common.FieldOf(err))

	_, err = ParseCaseType("")
	assert.EqualError(t, err, "caseType: is required")
}

func TestParseCaseStatus_DefaultsToActive(t *testing.T) {
	st, err := ParseCaseStatus("")
	require.NoError(t, err)
	assert.Equal(t, CaseStatusActive, st)

	st, err = ParseCaseStatus("closed")
	require.NoError(t, err)
	assert.Equal(t, CaseStatusClosed, st)

	_, err = ParseCaseStatus("archived")
	assert.True(t, errors.Is(err, common.ErrorValidation))
}

func TestParseDocumentType(t *testing.T) {
	for _, dt := range documentTypes {
		got, err := ParseDocumentType(string(dt))
		require.NoError(t, err)
		assert.Equal(t, dt, got)
	}
	_, err := ParseDocumentType("poem")
	assert.Equal(t, "documentType", common.FieldOf(err))
}

func TestSession_Expired(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := &Session{ExpiresAt: now.Add(time.Minute)}

	assert.False(t, s.Expired(now))
	assert.True(t, s.Expired(now.Add(time.Minute)))
}
