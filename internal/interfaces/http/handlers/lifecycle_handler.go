package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/patent-radar/internal/application/lifecycle"
)

// LifecycleHandler serves term, expiration, and maintenance fee
// endpoints.
type LifecycleHandler struct {
	service lifecycle.Service
}

func NewLifecycleHandler(service lifecycle.Service) *LifecycleHandler {
	return &LifecycleHandler{service: service}
}

// Term handles GET /api/v1/patents/:number/term.
func (h *LifecycleHandler) Term(c *gin.Context) {
	report, err := h.service.Term(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Recompute handles POST /api/v1/patents/:number/term/recompute.
func (h *LifecycleHandler) Recompute(c *gin.Context) {
	p, err := h.service.Recompute(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Expiring handles GET /api/v1/lifecycle/expiring.
func (h *LifecycleHandler) Expiring(c *gin.Context) {
	req := lifecycle.ExpiringRequest{
		WithinDays: intQuery(c, "within_days", 365),
		CPCPrefix:  c.Query("cpc_prefix"),
		Assignee:   c.Query("assignee"),
		Pagination: parsePagination(c),
	}

	resp, err := h.service.Expiring(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Lapsed handles GET /api/v1/lifecycle/lapsed.
func (h *LifecycleHandler) Lapsed(c *gin.Context) {
	withinDays := intQuery(c, "within_days", 90)

	resp, err := h.service.RecentlyLapsed(c.Request.Context(), withinDays, parsePagination(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpcomingFees handles GET /api/v1/lifecycle/fees/upcoming.
func (h *LifecycleHandler) UpcomingFees(c *gin.Context) {
	withinDays := intQuery(c, "within_days", 180)

	fees, err := h.service.UpcomingFees(c.Request.Context(), withinDays)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": fees})
}

// Stats handles GET /api/v1/lifecycle/stats.
func (h *LifecycleHandler) Stats(c *gin.Context) {
	report, err := h.service.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// feePaymentBody is the request body for MarkFeePaid.
type feePaymentBody struct {
	PaidDate string `json:"paid_date,omitempty"` // YYYY-MM-DD, default today
}

// MarkFeePaid handles POST /api/v1/patents/:number/fees/:year/payments.
func (h *LifecycleHandler) MarkFeePaid(c *gin.Context) {
	feeYear := atoiOrZero(c.Param("year"))

	var body feePaymentBody
	// Empty bodies are fine, the payment date defaults to now.
	_ = c.ShouldBindJSON(&body)

	var when time.Time
	if body.PaidDate != "" {
		parsed, err := time.Parse("2006-01-02", body.PaidDate)
		if err != nil {
			respondError(c, invalidDate(body.PaidDate))
			return
		}
		when = parsed
	}

	if err := h.service.MarkFeePaid(c.Request.Context(), c.Param("number"), feeYear, when); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
