package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/patent-radar/internal/application/analytics"
)

// AnalyticsHandler serves the cohort analytics and white-space
// endpoints.
type AnalyticsHandler struct {
	service analytics.Service
}

func NewAnalyticsHandler(service analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// Coverage handles GET /api/v1/analytics/coverage.
func (h *AnalyticsHandler) Coverage(c *gin.Context) {
	req := analytics.CoverageRequest{
		CPCLevel:   intQuery(c, "cpc_level", 0),
		MinPatents: intQuery(c, "min_patents", 0),
		Years:      intQuery(c, "years", 0),
		Archive:    c.Query("archive") == "true",
	}

	report, err := h.service.Coverage(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// WhiteSpaces handles GET /api/v1/analytics/white-spaces.
func (h *AnalyticsHandler) WhiteSpaces(c *gin.Context) {
	req := analytics.WhiteSpaceRequest{
		CPCPrefix:   c.Query("cpc_prefix"),
		MinGapScore: floatQuery(c, "min_gap_score", 0),
		Limit:       intQuery(c, "limit", 0),
		Archive:     c.Query("archive") == "true",
	}

	report, err := h.service.WhiteSpaces(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// CrossDomain handles GET /api/v1/analytics/cross-domain.
func (h *AnalyticsHandler) CrossDomain(c *gin.Context) {
	req := analytics.CrossDomainRequest{
		SourceCPC:  c.Query("source_cpc"),
		MaxResults: intQuery(c, "max_results", 0),
		Archive:    c.Query("archive") == "true",
	}

	report, err := h.service.CrossDomain(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Sections handles GET /api/v1/analytics/sections.
func (h *AnalyticsHandler) Sections(c *gin.Context) {
	req := analytics.SectionOverviewRequest{
		Years:   intQuery(c, "years", 0),
		Archive: c.Query("archive") == "true",
	}

	report, err := h.service.SectionOverview(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
