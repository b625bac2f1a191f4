package errors_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/turtacn/patent-radar/pkg/errors"
)

func TestHTTPStatusForCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code errors.ErrorCode
		want int
	}{
		{errors.ErrCodePatentNotFound, http.StatusNotFound},
		{errors.ErrCodeSearchQueryEmpty, http.StatusBadRequest},
		{errors.ErrCodeVectorUnavailable, http.StatusServiceUnavailable},
		{errors.ErrCodeCitationDepthInvalid, http.StatusBadRequest},
		{errors.ErrCodeDatabaseError, http.StatusInternalServerError},
		{errors.ErrorCode("NOPE_999"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, errors.HTTPStatusForCode(tc.code), "code %s", tc.code)
	}
}

func TestDefaultMessageForCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "patent not found", errors.DefaultMessageForCode(errors.ErrCodePatentNotFound))
	assert.Equal(t, "unknown error", errors.DefaultMessageForCode(errors.ErrorCode("NOPE_999")))
}

func TestClientServerErrorClassification(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsClientError(errors.ErrCodePatentNumberInvalid))
	assert.False(t, errors.IsServerError(errors.ErrCodePatentNumberInvalid))
	assert.True(t, errors.IsServerError(errors.ErrCodeSearchFailed))
	assert.False(t, errors.IsClientError(errors.ErrCodeSearchFailed))
}

func TestModuleForCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "PAT", errors.ModuleForCode(errors.ErrCodePatentNotFound))
	assert.Equal(t, "SRCH", errors.ModuleForCode(errors.ErrCodeSearchFailed))
	assert.Equal(t, "ANL", errors.ModuleForCode(errors.ErrCodeCPCLevelInvalid))
	assert.Equal(t, "CIT", errors.ModuleForCode(errors.ErrCodeCitationGraphFailed))
	assert.Equal(t, "LC", errors.ModuleForCode(errors.ErrCodeFeeYearInvalid))
	assert.Equal(t, "UNKNOWN", errors.ModuleForCode(errors.ErrorCode("")))
}

func TestEveryCodeHasStatusAndMessage(t *testing.T) {
	t.Parallel()

	for code := range errors.ErrorCodeHTTPStatus {
		_, ok := errors.ErrorCodeMessage[code]
		assert.True(t, ok, "code %s has a status but no default message", code)
	}
	for code := range errors.ErrorCodeMessage {
		_, ok := errors.ErrorCodeHTTPStatus[code]
		assert.True(t, ok, "code %s has a message but no HTTP status", code)
	}
}
