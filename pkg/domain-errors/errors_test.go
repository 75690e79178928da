package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	err := New(CodeNotFound, "user not found")
	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeConflict))
	assert.False(t, HasCode(errors.New("plain"), CodeNotFound))
	assert.False(t, HasCode(nil, CodeNotFound))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "failed to save user")

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.True(t, HasCode(err, CodeInternal))
	assert.Contains(t, err.Error(), "failed to save user")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeConflict, CodeOf(New(CodeConflict, "duplicate")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))

	// Outermost code wins when errors are layered.
	inner := New(CodeNotFound, "missing")
	outer := Wrap(inner, CodeInternal, "lookup failed")
	assert.Equal(t, CodeInternal, CodeOf(outer))
}

func TestNewf(t *testing.T) {
	err := Newf(CodeNotFound, "user with id '%d' doesn't exist", 42)
	assert.Equal(t, "user with id '42' doesn't exist", err.Error())
	assert.True(t, HasCode(err, CodeNotFound))
}

func TestWrappedThroughFmt(t *testing.T) {
	err := fmt.Errorf("handler: %w", New(CodeBadRequest, "invalid payload"))
	assert.True(t, HasCode(err, CodeBadRequest))
}
