package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldError_MatchesValidation(t *testing.T) {
	err := NewFieldError("email", "must be a valid address")

	assert.True(t, errors.Is(err, ErrorValidation))
	assert.Equal(t, "email: must be a valid address", err.Error())

	wrapped := fmt.Errorf("register: %w", err)
	assert.True(t, errors.Is(wrapped, ErrorValidation))
	assert.Equal(t, "email", FieldOf(wrapped))
}

func TestFieldError_NoField(t *testing.T) {
	err := NewFieldError("", "request body is empty")
	assert.Equal(t, "request body is empty", err.Error())
	assert.Equal(t, "", FieldOf(err))
	assert.Equal(t, "", FieldOf(ErrorNotFound))
}
