// Package patent provides the application service for patent records:
// ingestion with derived lifecycle state, lookups, listing, and the
// embedding backfill pass.
package patent

import (
	"context"
	"strings"

	appcitation "github.com/turtacn/patent-radar/internal/application/citation"
	applifecycle "github.com/turtacn/patent-radar/internal/application/lifecycle"
	domain "github.com/turtacn/patent-radar/internal/domain/patent"
	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/patent-radar/pkg/errors"
	"github.com/turtacn/patent-radar/pkg/types/common"
	ptypes "github.com/turtacn/patent-radar/pkg/types/patent"
)

const defaultBackfillBatch = 100

// IngestInput is one patent record as delivered by an ingestion connector.
// Dates arrive as strings in any accepted layout.
type IngestInput struct {
	PatentNumber       string            `json:"patent_number"`
	Title              string            `json:"title"`
	Abstract           string            `json:"abstract,omitempty"`
	ClaimsText         string            `json:"claims_text,omitempty"`
	Type               domain.PatentType `json:"patent_type,omitempty"`
	Assignee           string            `json:"assignee,omitempty"`
	Inventors          []string          `json:"inventors,omitempty"`
	FilingDate         string            `json:"filing_date,omitempty"`
	GrantDate          string            `json:"grant_date,omitempty"`
	PublicationDate    string            `json:"publication_date,omitempty"`
	PTADays            int               `json:"pta_days,omitempty"`
	PTEDays            int               `json:"pte_days,omitempty"`
	TerminalDisclaimer string            `json:"terminal_disclaimer,omitempty"`
	CPCCodes           []string          `json:"cpc_codes,omitempty"`
	CitedNumbers       []string          `json:"cited_numbers,omitempty"`
}

// ListInput narrows a patent listing.
type ListInput struct {
	Status     []ptypes.PatentStatus
	CPCPrefix  string
	Assignee   string
	Pagination common.Pagination
}

// ListResult is a page of patents.
type ListResult struct {
	Items    []*domain.Patent `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// FulltextIndexer is the write side of the full-text index, implemented by
// the opensearch adapter.
type FulltextIndexer interface {
	Index(ctx context.Context, p *domain.Patent) error
	Remove(ctx context.Context, patentNumber string) error
}

// VectorIndexer is the write side of the vector index, implemented by the
// milvus adapter.
type VectorIndexer interface {
	Upsert(ctx context.Context, patentNumber string, vector []float32) error
}

// Embedder turns patent text into a dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Service is the patent application service.
type Service interface {
	// Ingest stores or refreshes a record, derives its lifecycle state,
	// records its citations, and pushes it into both search indexes.
	Ingest(ctx context.Context, input IngestInput) (*domain.Patent, error)

	Get(ctx context.Context, patentNumber string) (*domain.Patent, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)

	// BackfillEmbeddings embeds up to batchSize patents that have no vector
	// yet, returning how many were embedded.
	BackfillEmbeddings(ctx context.Context, batchSize int) (int, error)
}

// Deps carries the constructor dependencies.  Citations, Fulltext, Vector,
// Embedder, and Events are each optional; ingestion skips the corresponding
// step when one is absent.
type Deps struct {
	Patents   domain.Repository
	Lifecycle applifecycle.Service
	Citations appcitation.Service
	Fulltext  FulltextIndexer
	Vector    VectorIndexer
	Embedder  Embedder
	Events    applifecycle.EventPublisher
	Logger    logging.Logger
}

type serviceImpl struct {
	patents   domain.Repository
	lifecycle applifecycle.Service
	citations appcitation.Service
	fulltext  FulltextIndexer
	vector    VectorIndexer
	embedder  Embedder
	events    applifecycle.EventPublisher
	logger    logging.Logger
}

var _ Service = (*serviceImpl)(nil)

// NewService constructs the patent service.
func NewService(d Deps) (Service, error) {
	if d.Patents == nil || d.Lifecycle == nil {
		return nil, appErrors.Internal("patent service requires patent repository and lifecycle service")
	}
	if d.Logger == nil {
		d.Logger = logging.NewNopLogger()
	}
	return &serviceImpl{
		patents:   d.Patents,
		lifecycle: d.Lifecycle,
		citations: d.Citations,
		fulltext:  d.Fulltext,
		vector:    d.Vector,
		embedder:  d.Embedder,
		events:    d.Events,
		logger:    d.Logger.Named("patent"),
	}, nil
}

func (s *serviceImpl) Ingest(ctx context.Context, input IngestInput) (*domain.Patent, error) {
	p, err := s.buildRecord(input)
	if err != nil {
		return nil, err
	}

	if err := s.patents.Save(ctx, p); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to store patent")
	}

	p, err = s.lifecycle.Recompute(ctx, p.PatentNumber)
	if err != nil {
		return nil, err
	}

	if s.citations != nil && len(input.CitedNumbers) > 0 {
		if err := s.citations.RecordCitations(ctx, p.PatentNumber, input.CitedNumbers); err != nil {
			return nil, err
		}
	}

	if s.fulltext != nil {
		if err := s.fulltext.Index(ctx, p); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeFulltextUnavailable, "failed to index patent")
		}
	}

	// The record is complete without a vector; embedding failures leave it
	// for the backfill pass.
	s.embedRecord(ctx, p)

	if s.events != nil {
		if err := s.events.Publish(ctx, domain.EventTypeIngested, domain.NewIngestedEvent(p)); err != nil {
			s.logger.Warn("ingest event not published",
				logging.String("patent_number", p.PatentNumber), logging.Err(err))
		}
	}
	return p, nil
}

func (s *serviceImpl) Get(ctx context.Context, patentNumber string) (*domain.Patent, error) {
	number := domain.NormalizePatentNumber(patentNumber)
	if number == "" {
		return nil, appErrors.InvalidParam("patent number must not be empty")
	}
	p, err := s.patents.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, appErrors.New(appErrors.CodePatentNotFound, "patent not found").
			WithDetail("patent_number=" + number)
	}
	return p, nil
}

func (s *serviceImpl) List(ctx context.Context, input ListInput) (*ListResult, error) {
	if input.Pagination.Page == 0 {
		input.Pagination.Page = 1
	}
	if input.Pagination.PageSize == 0 {
		input.Pagination.PageSize = 20
	}
	if err := input.Pagination.Validate(); err != nil {
		return nil, appErrors.InvalidParam(err.Error())
	}

	items, total, err := s.patents.List(ctx, domain.ListFilter{
		Status:     input.Status,
		CPCPrefix:  domain.NormalizeCPCCode(input.CPCPrefix),
		Assignee:   input.Assignee,
		Pagination: input.Pagination,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "patent listing failed")
	}
	return &ListResult{
		Items:    items,
		Total:    total,
		Page:     input.Pagination.Page,
		PageSize: input.Pagination.PageSize,
	}, nil
}

func (s *serviceImpl) BackfillEmbeddings(ctx context.Context, batchSize int) (int, error) {
	if s.embedder == nil || s.vector == nil {
		return 0, appErrors.Internal("embedding backfill requires embedder and vector indexer")
	}
	if batchSize <= 0 {
		batchSize = defaultBackfillBatch
	}

	patents, err := s.patents.ListWithoutEmbedding(ctx, batchSize)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to list unembedded patents")
	}

	embedded := 0
	for _, p := range patents {
		vector, err := s.embedder.Embed(ctx, embeddingText(p))
		if err != nil {
			s.logger.Warn("embedding failed, leaving for next pass",
				logging.String("patent_number", p.PatentNumber), logging.Err(err))
			continue
		}
		if err := s.patents.SaveEmbedding(ctx, p.PatentNumber, vector); err != nil {
			return embedded, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to store embedding")
		}
		if err := s.vector.Upsert(ctx, p.PatentNumber, vector); err != nil {
			return embedded, appErrors.Wrap(err, appErrors.ErrCodeVectorUnavailable, "failed to upsert vector")
		}
		embedded++
	}
	return embedded, nil
}

func (s *serviceImpl) buildRecord(input IngestInput) (*domain.Patent, error) {
	patentType := input.Type
	if patentType == "" {
		patentType = domain.TypeUtility
	}
	p, err := domain.NewPatent(input.PatentNumber, input.Title, patentType)
	if err != nil {
		return nil, err
	}

	filing, err := domain.ParseDate(input.FilingDate)
	if err != nil {
		return nil, err
	}
	grant, err := domain.ParseDate(input.GrantDate)
	if err != nil {
		return nil, err
	}
	publication, err := domain.ParseDate(input.PublicationDate)
	if err != nil {
		return nil, err
	}
	if err := p.SetDates(filing, grant, publication); err != nil {
		return nil, err
	}

	disclaimer, err := domain.ParseDate(input.TerminalDisclaimer)
	if err != nil {
		return nil, err
	}
	p.TerminalDisclaimer = disclaimer
	p.PTADays = input.PTADays
	p.PTEDays = input.PTEDays

	p.Abstract = strings.TrimSpace(input.Abstract)
	p.ClaimsText = strings.TrimSpace(input.ClaimsText)
	p.Assignee = strings.TrimSpace(input.Assignee)
	p.Inventors = input.Inventors
	p.SetClassification(input.CPCCodes)
	return p, nil
}

// embedRecord computes and stores the record's vector, best effort.
func (s *serviceImpl) embedRecord(ctx context.Context, p *domain.Patent) {
	if s.embedder == nil || s.vector == nil {
		return
	}
	vector, err := s.embedder.Embed(ctx, embeddingText(p))
	if err != nil {
		s.logger.Warn("embedding failed during ingest",
			logging.String("patent_number", p.PatentNumber), logging.Err(err))
		return
	}
	if err := s.patents.SaveEmbedding(ctx, p.PatentNumber, vector); err != nil {
		s.logger.Warn("failed to store embedding",
			logging.String("patent_number", p.PatentNumber), logging.Err(err))
		return
	}
	if err := s.vector.Upsert(ctx, p.PatentNumber, vector); err != nil {
		s.logger.Warn("failed to upsert vector",
			logging.String("patent_number", p.PatentNumber), logging.Err(err))
		return
	}
	p.Embedding = vector
}

// embeddingText is the text the corpus vectors are computed from.
func embeddingText(p *domain.Patent) string {
	var sb strings.Builder
	sb.WriteString(p.Title)
	if p.Abstract != "" {
		sb.WriteString("\n")
		sb.WriteString(p.Abstract)
	}
	return sb.String()
}
