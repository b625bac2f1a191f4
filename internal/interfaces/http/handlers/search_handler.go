package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/patent-radar/internal/application/search"
	ptypes "github.com/turtacn/patent-radar/pkg/types/patent"
)

// SearchHandler serves the hybrid search endpoint.
type SearchHandler struct {
	service search.Service
}

func NewSearchHandler(service search.Service) *SearchHandler {
	return &SearchHandler{service: service}
}

// Search handles GET /api/v1/search.
func (h *SearchHandler) Search(c *gin.Context) {
	req := ptypes.PatentSearchRequest{
		Query:      c.Query("q"),
		Mode:       ptypes.SearchMode(c.DefaultQuery("mode", string(ptypes.SearchHybrid))),
		CPCPrefix:  c.Query("cpc_prefix"),
		Pagination: parsePagination(c),
	}

	for _, s := range splitCSV(c.Query("status")) {
		req.Status = append(req.Status, ptypes.PatentStatus(s))
	}
	req.Assignees = splitCSV(c.Query("assignee"))

	resp, err := h.service.Search(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// splitCSV splits a comma-separated query value, dropping empties.
func splitCSV(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
