package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("unsupported split method %q", "custom")

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, `invalid input: unsupported split method "custom"`, err.Error())
}

func TestNotFound(t *testing.T) {
	err := fmt.Errorf("failed to load: %w", NotFound("expense", "abc"))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "expense not found: abc")
}

func TestValidationError(t *testing.T) {
	ve := NewValidationError()
	require.NoError(t, ve.OrNil())

	ve.Add("name", "must be at least 3 characters")
	ve.Add("email", "must be a valid email")
	ve.Add("name", "is required")

	err := ve.OrNil()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t,
		"validation failed: email: must be a valid email, name: must be at least 3 characters; is required",
		err.Error())

	wrapped := fmt.Errorf("create user: %w", err)
	got, ok := AsValidation(wrapped)
	require.True(t, ok)
	assert.Len(t, got.Fields["name"], 2)

	_, ok = AsValidation(errors.New("plain"))
	assert.False(t, ok)
}
