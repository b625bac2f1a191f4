// Package errors_test provides unit tests for the AppError type, factory
// functions, and error-chain helpers defined in pkg/errors/errors.go.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/patent-radar/pkg/errors"
)

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"not found", errors.CodePatentNotFound, "patent US10123456B2 not found"},
		{"invalid param", errors.CodeInvalidParam, "query must not be empty"},
		{"search failed", errors.ErrCodeSearchFailed, "opensearch query failed"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail, "Detail should be empty for bare New()")
			assert.Nil(t, ae.Cause, "Cause should be nil for bare New()")
		})
	}
}

func TestNewf_FormatsMessage(t *testing.T) {
	t.Parallel()

	ae := errors.Newf(errors.ErrCodeCitationDepthInvalid, "depth must be 1..%d, got %d", 3, 9)
	require.NotNil(t, ae)
	assert.Equal(t, "depth must be 1..3, got 9", ae.Message)
}

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()

	result := errors.Wrap(nil, errors.CodeInternal, "should not matter")
	assert.Nil(t, result)
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("connection refused")
	mid := errors.Wrap(root, errors.ErrCodeDatabaseError, "query patents failed")
	top := errors.Wrap(mid, errors.ErrCodeSearchFailed, "hybrid search failed")

	require.NotNil(t, top)
	assert.Equal(t, errors.ErrCodeSearchFailed, top.Code)
	assert.True(t, stderrors.Is(top, root), "errors.Is should reach the root cause")

	var ae *errors.AppError
	require.True(t, stderrors.As(top, &ae))
	assert.Equal(t, errors.ErrCodeSearchFailed, ae.Code)
}

func TestWrap_UnknownCodePreservesOriginal(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.CodePatentNotFound, "not found")
	outer := errors.Wrap(inner, errors.CodeUnknown, "while building citation network")

	require.NotNil(t, outer)
	assert.Equal(t, errors.CodePatentNotFound, outer.Code,
		"CodeUnknown wrap should inherit the wrapped AppError's code")
}

func TestError_FormatIncludesCodeAndDetail(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodePatentNumberInvalid, "bad number").
		WithDetail("input=??1234")

	msg := ae.Error()
	assert.True(t, strings.Contains(msg, "PAT_003"), "code missing from %q", msg)
	assert.True(t, strings.Contains(msg, "bad number"), "message missing from %q", msg)
	assert.True(t, strings.Contains(msg, "input=??1234"), "detail missing from %q", msg)
}

func TestWithDetail_DoesNotMutateReceiver(t *testing.T) {
	t.Parallel()

	base := errors.New(errors.CodeInternal, "boom")
	derived := base.WithDetail("extra")

	assert.Empty(t, base.Detail)
	assert.Equal(t, "extra", derived.Detail)
}

func TestWithDetail_NilReceiver(t *testing.T) {
	t.Parallel()

	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("noop"))
}

func TestIsCode(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeEmbeddingFailed, "embedder unreachable")
	wrapped := fmt.Errorf("semantic leg: %w", inner)

	assert.True(t, errors.IsCode(wrapped, errors.ErrCodeEmbeddingFailed))
	assert.False(t, errors.IsCode(wrapped, errors.ErrCodeSearchFailed))
	assert.False(t, errors.IsCode(nil, errors.ErrCodeSearchFailed))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"generic not found", errors.NotFound("gone"), true},
		{"patent not found", errors.New(errors.CodePatentNotFound, "gone"), true},
		{"citation root not found", errors.New(errors.ErrCodeCitationRootNotFound, "gone"), true},
		{"internal", errors.Internal("boom"), false},
		{"plain error", stderrors.New("gone"), false},
		{
			"wrapped patent not found",
			errors.Wrap(errors.New(errors.CodePatentNotFound, "gone"), errors.ErrCodeCitationGraphFailed, "walk failed"),
			true,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, errors.IsNotFound(tc.err))
		})
	}
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeFeeYearInvalid,
		errors.GetCode(errors.New(errors.ErrCodeFeeYearInvalid, "bad year")))
	assert.Equal(t, errors.ErrCodeAnalyticsQueryFailed,
		errors.GetCode(fmt.Errorf("outer: %w", errors.New(errors.ErrCodeAnalyticsQueryFailed, "boom"))))
}

func TestConvenienceFactories(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeNotFound, errors.NotFound("x").Code)
	assert.Equal(t, errors.CodeInvalidParam, errors.InvalidParam("x").Code)
	assert.Equal(t, errors.CodeInternal, errors.Internal("x").Code)
	assert.Equal(t, errors.CodeConflict, errors.Conflict("x").Code)
}
