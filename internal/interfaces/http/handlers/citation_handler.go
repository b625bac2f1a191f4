package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/patent-radar/internal/application/citation"
	ptypes "github.com/turtacn/patent-radar/pkg/types/patent"
)

// CitationHandler serves the citation graph endpoints.
type CitationHandler struct {
	service citation.Service
}

func NewCitationHandler(service citation.Service) *CitationHandler {
	return &CitationHandler{service: service}
}

// Network handles GET /api/v1/patents/:number/citations/network.
func (h *CitationHandler) Network(c *gin.Context) {
	req := citation.NetworkRequest{
		PatentNumber: c.Param("number"),
		Depth:        intQuery(c, "depth", 0),
		MaxNodes:     intQuery(c, "max_nodes", 0),
		Direction:    ptypes.CitationDirection(c.Query("direction")),
	}

	network, err := h.service.Network(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, network)
}

// Stats handles GET /api/v1/patents/:number/citations/stats.
func (h *CitationHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// MostCited handles GET /api/v1/citations/most-cited.
func (h *CitationHandler) MostCited(c *gin.Context) {
	ranked, err := h.service.MostCited(c.Request.Context(), intQuery(c, "limit", 10))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": ranked})
}
