// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Error construction, code stamping, wrapping, and chain queries

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/stencil/pkg/errors"
)

func TestNew(t *testing.T) {
	err := errors.New(errors.ErrNotFound, "template not found")

	assert.Equal(t, errors.ErrNotFound, err.Code)
	assert.Equal(t, "template not found", err.Message)
	assert.NotNil(t, err.Details, "details map starts initialized")
	assert.Equal(t, "[NOT_FOUND] template not found", err.Error())
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrInvalidInput, "variable %q fails pattern %s", "port", "^[0-9]+$")

	assert.Equal(t, `[INVALID_INPUT] variable "port" fails pattern ^[0-9]+$`, err.Error())
}

func TestErrorString_PerCode(t *testing.T) {
	cases := map[errors.ErrorCode]string{
		errors.ErrInvalidInput:     "INVALID_INPUT",
		errors.ErrNotFound:         "NOT_FOUND",
		errors.ErrExecutionFailure: "EXECUTION_FAILURE",
		errors.ErrInternal:         "INTERNAL",
		errors.ErrUnknown:          "UNKNOWN",
	}

	for code, label := range cases {
		err := errors.New(code, "boom")
		assert.Equal(t, fmt.Sprintf("[%s] boom", label), err.Error())
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := errors.Wrap(cause, errors.ErrExecutionFailure, "cannot write output")

	assert.Equal(t, errors.ErrExecutionFailure, err.Code)
	assert.Same(t, cause, err.Wrapped)
	assert.Equal(t, "[EXECUTION_FAILURE] cannot write output: disk full", err.Error())
	assert.ErrorIs(t, err, cause, "the chain stays visible to errors.Is")
}

func TestWrap_NilStaysNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.ErrInternal, "ignored"))
	assert.Nil(t, errors.Wrapf(nil, errors.ErrInternal, "ignored %d", 1))
}

func TestWrapf(t *testing.T) {
	cause := stderrors.New("permission denied")
	err := errors.Wrapf(cause, errors.ErrExecutionFailure, "cannot snapshot %s", "/etc/app.conf")

	assert.Equal(t, "[EXECUTION_FAILURE] cannot snapshot /etc/app.conf: permission denied", err.Error())
}

func TestDetails(t *testing.T) {
	err := errors.New(errors.ErrInvalidInput, "path escapes destination").
		WithDetail("path", "../outside").
		WithDetails(map[string]interface{}{
			"root":      "/dest",
			"operation": "write",
		})

	assert.Equal(t, "../outside", err.Details["path"])
	assert.Equal(t, "/dest", err.Details["root"])
	assert.Equal(t, "write", err.Details["operation"])

	assert.Equal(t, err.Details, errors.GetErrorDetails(err))
	assert.Nil(t, errors.GetErrorDetails(stderrors.New("plain")))
}

func TestIs_MatchesByCode(t *testing.T) {
	a := errors.New(errors.ErrNotFound, "first")
	b := errors.New(errors.ErrNotFound, "second")
	c := errors.New(errors.ErrInternal, "third")

	assert.True(t, stderrors.Is(a, b), "same code compares equal regardless of message")
	assert.False(t, stderrors.Is(a, c))
	assert.False(t, a.Is(stderrors.New("plain")))
}

func TestIsErrorCode(t *testing.T) {
	wrapped := errors.Wrap(stderrors.New("base"), errors.ErrExecutionFailure, "hook failed")
	deep := fmt.Errorf("outer: %w", wrapped)

	assert.True(t, errors.IsErrorCode(wrapped, errors.ErrExecutionFailure))
	assert.True(t, errors.IsErrorCode(deep, errors.ErrExecutionFailure),
		"codes are found through plain fmt.Errorf wrapping too")
	assert.False(t, errors.IsErrorCode(wrapped, errors.ErrNotFound))
	assert.False(t, errors.IsErrorCode(stderrors.New("plain"), errors.ErrNotFound))
	assert.False(t, errors.IsErrorCode(nil, errors.ErrNotFound))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, errors.ErrNotFound, errors.GetErrorCode(errors.New(errors.ErrNotFound, "x")))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(nil))
}

func TestChaining(t *testing.T) {
	rootCause := stderrors.New("root cause")
	readErr := errors.Wrap(rootCause, errors.ErrInternal, "cannot read manifest")
	loadErr := errors.Wrap(readErr, errors.ErrInvalidInput, "failed to load template")

	// The outermost code wins for classification.
	assert.Equal(t, errors.ErrInvalidInput, errors.GetErrorCode(loadErr))

	// The middle layer keeps its own code.
	var mid *errors.StencilError
	require.True(t, stderrors.As(loadErr.Unwrap(), &mid))
	assert.Equal(t, errors.ErrInternal, mid.Code)

	// The root cause stays reachable.
	assert.ErrorIs(t, loadErr, rootCause)
}
