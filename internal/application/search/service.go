// Package search implements the hybrid patent search service: full-text and
// semantic retrieval legs merged with weighted reciprocal rank fusion.
package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/patent-radar/internal/domain/patent"
	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/patent-radar/pkg/errors"
	ptypes "github.com/turtacn/patent-radar/pkg/types/patent"
)

// oversampleFactor is how many times the requested page size each hybrid
// retrieval leg fetches, so that fusion has enough candidates to reorder.
const oversampleFactor = 3

const (
	cacheKeyPrefix = "search:v1:"
	cacheTTL       = 5 * time.Minute
)

// Result is one row of a search response.
type Result struct {
	PatentNumber    string              `json:"patent_number"`
	Title           string              `json:"title,omitempty"`
	Abstract        string              `json:"abstract,omitempty"`
	Assignee        string              `json:"assignee,omitempty"`
	Status          ptypes.PatentStatus `json:"status,omitempty"`
	Score           float64             `json:"score"`
	MatchedSemantic bool                `json:"matched_semantic"`
	MatchedFulltext bool                `json:"matched_fulltext"`
}

// Response is a fused, paginated search result.  Mode records the mode that
// actually ran, which differs from the requested mode when the semantic leg
// degraded to full-text.
type Response struct {
	Items    []Result          `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Mode     ptypes.SearchMode `json:"mode"`
}

// ProviderFilter narrows retrieval legs.  Providers apply the fields their
// backing store can express and ignore the rest; the service re-checks
// nothing, so filter fidelity follows the store.
type ProviderFilter struct {
	Status    []ptypes.PatentStatus
	CPCPrefix string
	Assignees []string
}

// FulltextProvider is the BM25 retrieval port, implemented by the opensearch
// adapter.  The returned numbers are ordered best-first.
type FulltextProvider interface {
	Search(ctx context.Context, query string, filter ProviderFilter, limit int) ([]string, error)
}

// VectorProvider is the dense retrieval port, implemented by the milvus
// adapter.  The returned numbers are ordered best-first.
type VectorProvider interface {
	Search(ctx context.Context, vector []float32, filter ProviderFilter, limit int) ([]string, error)
}

// Embedder turns query text into the dense vector space of the corpus.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CachePort is the response cache, implemented by the redis adapter.
type CachePort interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Service is the search application service.
type Service interface {
	Search(ctx context.Context, req ptypes.PatentSearchRequest) (*Response, error)
}

// Deps carries the constructor dependencies for the search service.  Cache
// is optional; everything else is required.
type Deps struct {
	Patents  patent.Repository
	Fulltext FulltextProvider
	Vector   VectorProvider
	Embedder Embedder
	Cache    CachePort
	Logger   logging.Logger
}

type serviceImpl struct {
	patents  patent.Repository
	fulltext FulltextProvider
	vector   VectorProvider
	embedder Embedder
	cache    CachePort
	logger   logging.Logger

	semanticWeight float64
}

var _ Service = (*serviceImpl)(nil)

// NewService constructs the search service.
func NewService(d Deps) (Service, error) {
	if d.Patents == nil || d.Fulltext == nil {
		return nil, appErrors.Internal("search service requires patent repository and fulltext provider")
	}
	if d.Logger == nil {
		d.Logger = logging.NewNopLogger()
	}
	return &serviceImpl{
		patents:        d.Patents,
		fulltext:       d.Fulltext,
		vector:         d.Vector,
		embedder:       d.Embedder,
		cache:          d.Cache,
		logger:         d.Logger.Named("search"),
		semanticWeight: defaultSemanticWeight,
	}, nil
}

func (s *serviceImpl) Search(ctx context.Context, req ptypes.PatentSearchRequest) (*Response, error) {
	if req.Query == "" {
		return nil, appErrors.New(appErrors.ErrCodeSearchQueryEmpty, "search query must not be empty")
	}
	if req.Mode == "" {
		req.Mode = ptypes.SearchHybrid
	}
	if !req.Mode.IsValid() {
		return nil, appErrors.New(appErrors.ErrCodeSearchModeUnsupported, "unsupported search mode").
			WithDetail("mode=" + string(req.Mode))
	}
	if req.Pagination.Page == 0 {
		req.Pagination.Page = 1
	}
	if req.Pagination.PageSize == 0 {
		req.Pagination.PageSize = 20
	}
	if err := req.Pagination.Validate(); err != nil {
		return nil, appErrors.InvalidParam(err.Error())
	}

	if cached, ok := s.cacheGet(ctx, req); ok {
		return cached, nil
	}

	filter := ProviderFilter{
		Status:    req.Status,
		CPCPrefix: req.CPCPrefix,
		Assignees: req.Assignees,
	}
	offset := req.Pagination.Offset()
	fetchLimit := offset + req.Pagination.PageSize
	if req.Mode == ptypes.SearchHybrid {
		// Fusion reorders within a fixed candidate window of three pages;
		// pages past that window come back empty rather than refetching.
		fetchLimit = req.Pagination.PageSize * oversampleFactor
	}

	hits, effectiveMode, err := s.retrieve(ctx, req.Query, req.Mode, filter, fetchLimit)
	if err != nil {
		return nil, err
	}

	total := int64(len(hits))
	hits = normalizeScores(hits)
	window := pageSlice(hits, offset, req.Pagination.PageSize)

	items, err := s.hydrate(ctx, window)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Items:    items,
		Total:    total,
		Page:     req.Pagination.Page,
		PageSize: req.Pagination.PageSize,
		Mode:     effectiveMode,
	}
	s.cacheSet(ctx, req, resp)
	return resp, nil
}

// retrieve runs the retrieval legs for the requested mode and fuses them.
func (s *serviceImpl) retrieve(ctx context.Context, query string, mode ptypes.SearchMode, filter ProviderFilter, limit int) ([]fusedHit, ptypes.SearchMode, error) {
	switch mode {
	case ptypes.SearchFulltext:
		numbers, err := s.fulltext.Search(ctx, query, filter, limit)
		if err != nil {
			return nil, mode, appErrors.Wrap(err, appErrors.ErrCodeSearchFailed, "fulltext search failed")
		}
		return fuseRRF(nil, numbers, 0), ptypes.SearchFulltext, nil

	case ptypes.SearchSemantic:
		vector, err := s.embedQuery(ctx, query)
		if err != nil {
			return nil, mode, err
		}
		numbers, err := s.vector.Search(ctx, vector, filter, limit)
		if err != nil {
			return nil, mode, appErrors.Wrap(err, appErrors.ErrCodeSearchFailed, "semantic search failed")
		}
		return fuseRRF(numbers, nil, 1), ptypes.SearchSemantic, nil

	default: // hybrid
		return s.retrieveHybrid(ctx, query, filter, limit)
	}
}

// retrieveHybrid runs both legs concurrently.  A dead semantic leg (empty
// embedded corpus, missing embedder or vector store, embedding failure, or a
// zero vector) degrades the request to full-text only rather than failing it.
func (s *serviceImpl) retrieveHybrid(ctx context.Context, query string, filter ProviderFilter, limit int) ([]fusedHit, ptypes.SearchMode, error) {
	vector, embedErr := s.hybridQueryVector(ctx, query)
	if embedErr != nil {
		s.logger.Warn("semantic leg unavailable, degrading to fulltext",
			logging.String("query", query),
			logging.Err(embedErr),
		)
		numbers, err := s.fulltext.Search(ctx, query, filter, limit)
		if err != nil {
			return nil, ptypes.SearchHybrid, appErrors.Wrap(err, appErrors.ErrCodeSearchFailed, "fulltext search failed")
		}
		return fuseRRF(nil, numbers, 0), ptypes.SearchFulltext, nil
	}

	var semantic, fulltext []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		semantic, err = s.vector.Search(gctx, vector, filter, limit)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrCodeVectorUnavailable, "vector search failed")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		fulltext, err = s.fulltext.Search(gctx, query, filter, limit)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrCodeFulltextUnavailable, "fulltext search failed")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, ptypes.SearchHybrid, appErrors.Wrap(err, appErrors.ErrCodeSearchFailed, "hybrid search failed")
	}

	return fuseRRF(semantic, fulltext, s.semanticWeight), ptypes.SearchHybrid, nil
}

// hybridQueryVector gates the semantic leg on the corpus actually holding
// embedded vectors before spending an embedding call; an empty corpus makes
// the semantic fetch pointless and the whole request delegates to full-text.
func (s *serviceImpl) hybridQueryVector(ctx context.Context, query string) ([]float32, error) {
	embedded, err := s.patents.CountEmbedded(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeVectorUnavailable, "failed to count embedded patents")
	}
	if embedded == 0 {
		return nil, appErrors.New(appErrors.ErrCodeVectorUnavailable, "corpus has no embedded patents")
	}
	return s.embedQuery(ctx, query)
}

// embedQuery produces the query vector, treating a missing embedder, a failed
// call, or a zero vector as an unavailable semantic leg.
func (s *serviceImpl) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if s.embedder == nil || s.vector == nil {
		return nil, appErrors.New(appErrors.ErrCodeVectorUnavailable, "semantic leg not configured")
	}
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeEmbeddingFailed, "failed to embed query")
	}
	if len(vector) == 0 || isZeroVector(vector) {
		return nil, appErrors.New(appErrors.ErrCodeEmbeddingFailed, "embedder returned a zero vector")
	}
	return vector, nil
}

// hydrate loads the patent records for the paged window, preserving fusion
// order.  Numbers the store no longer has stay in the result as bare hits.
func (s *serviceImpl) hydrate(ctx context.Context, window []fusedHit) ([]Result, error) {
	numbers := make([]string, len(window))
	for i, h := range window {
		numbers[i] = h.PatentNumber
	}

	records, err := s.patents.FindByNumbers(ctx, numbers)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to load search results")
	}
	byNumber := make(map[string]*patent.Patent, len(records))
	for _, r := range records {
		byNumber[r.PatentNumber] = r
	}

	items := make([]Result, 0, len(window))
	for _, h := range window {
		item := Result{
			PatentNumber:    h.PatentNumber,
			Score:           h.Score,
			MatchedSemantic: h.Semantic,
			MatchedFulltext: h.Fulltext,
		}
		if r, ok := byNumber[h.PatentNumber]; ok {
			item.Title = r.Title
			item.Abstract = r.Abstract
			item.Assignee = r.Assignee
			item.Status = r.Status
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *serviceImpl) cacheKey(req ptypes.PatentSearchRequest) string {
	payload, _ := json.Marshal(req)
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("%s%s:%s", cacheKeyPrefix, req.Mode, hex.EncodeToString(sum[:16]))
}

func (s *serviceImpl) cacheGet(ctx context.Context, req ptypes.PatentSearchRequest) (*Response, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, ok, err := s.cache.Get(ctx, s.cacheKey(req))
	if err != nil || !ok {
		return nil, false
	}
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

func (s *serviceImpl) cacheSet(ctx context.Context, req ptypes.PatentSearchRequest, resp *Response) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey(req), raw, cacheTTL); err != nil {
		s.logger.Debug("search cache write failed", logging.Err(err))
	}
}
