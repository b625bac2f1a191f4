package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	patentapp "github.com/turtacn/patent-radar/internal/application/patent"
	appErrors "github.com/turtacn/patent-radar/pkg/errors"
	ptypes "github.com/turtacn/patent-radar/pkg/types/patent"
)

// PatentHandler serves patent CRUD and ingestion endpoints.
type PatentHandler struct {
	service patentapp.Service
}

func NewPatentHandler(service patentapp.Service) *PatentHandler {
	return &PatentHandler{service: service}
}

// Ingest handles POST /api/v1/patents.
func (h *PatentHandler) Ingest(c *gin.Context) {
	var input patentapp.IngestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, appErrors.InvalidParam("request body is not valid JSON"))
		return
	}

	p, err := h.service.Ingest(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Get handles GET /api/v1/patents/:number.
func (h *PatentHandler) Get(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// List handles GET /api/v1/patents.
func (h *PatentHandler) List(c *gin.Context) {
	input := patentapp.ListInput{
		CPCPrefix:  c.Query("cpc_prefix"),
		Assignee:   c.Query("assignee"),
		Pagination: parsePagination(c),
	}
	for _, s := range splitCSV(c.Query("status")) {
		input.Status = append(input.Status, ptypes.PatentStatus(s))
	}

	result, err := h.service.List(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// BackfillEmbeddings handles POST /api/v1/patents/embeddings/backfill.
func (h *PatentHandler) BackfillEmbeddings(c *gin.Context) {
	batchSize := intQuery(c, "batch_size", 100)

	embedded, err := h.service.BackfillEmbeddings(c.Request.Context(), batchSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"embedded": embedded})
}
