// Package handlers contains the gin HTTP handlers for the public API.
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/patent-radar/pkg/errors"
	"github.com/turtacn/patent-radar/pkg/types/common"
)

// errorBody is the standard error response payload.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// respondError maps an application error to its HTTP status and writes
// the structured body.  Unknown errors surface as 500 without leaking
// internals.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	body := errorBody{Code: string(code)}
	if appErr, ok := errors.AsAppError(err); ok {
		body.Message = appErr.Message
		body.Detail = appErr.Detail
	} else {
		body.Message = "internal server error"
	}

	c.AbortWithStatusJSON(status, body)
}

// parsePagination reads page and page_size query parameters, clamping
// to the service limits.
func parsePagination(c *gin.Context) common.Pagination {
	p := common.Pagination{Page: 1, PageSize: 20}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(c.Query("page_size")); err == nil && v > 0 && v <= 100 {
		p.PageSize = v
	}
	return p
}

// intQuery reads an integer query parameter, falling back on absence or
// garbage.
func intQuery(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return v
}

// floatQuery reads a float query parameter with a fallback.
func floatQuery(c *gin.Context, name string, fallback float64) float64 {
	v, err := strconv.ParseFloat(c.Query(name), 64)
	if err != nil {
		return fallback
	}
	return v
}

func atoiOrZero(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func invalidDate(v string) error {
	return errors.InvalidParam("date must be YYYY-MM-DD").WithDetail("got=" + v)
}
