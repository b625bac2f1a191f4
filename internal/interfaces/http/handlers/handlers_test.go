package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patent-radar/internal/application/analytics"
	"github.com/turtacn/patent-radar/internal/application/citation"
	"github.com/turtacn/patent-radar/internal/application/lifecycle"
	patentapp "github.com/turtacn/patent-radar/internal/application/patent"
	"github.com/turtacn/patent-radar/internal/application/search"
	citdomain "github.com/turtacn/patent-radar/internal/domain/citation"
	domain "github.com/turtacn/patent-radar/internal/domain/patent"
	appErrors "github.com/turtacn/patent-radar/pkg/errors"
	"github.com/turtacn/patent-radar/pkg/types/common"
	ptypes "github.com/turtacn/patent-radar/pkg/types/patent"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// --- search ---

type stubSearchService struct {
	gotReq ptypes.PatentSearchRequest
	resp   *search.Response
	err    error
}

func (s *stubSearchService) Search(_ context.Context, req ptypes.PatentSearchRequest) (*search.Response, error) {
	s.gotReq = req
	return s.resp, s.err
}

func TestSearchHandler(t *testing.T) {
	stub := &stubSearchService{resp: &search.Response{
		Items: []search.Result{{PatentNumber: "US10123456B2", Score: 0.92}},
		Total: 1, Page: 1, PageSize: 20, Mode: ptypes.SearchHybrid,
	}}

	r := gin.New()
	r.GET("/api/v1/search", NewSearchHandler(stub).Search)

	rec := perform(r, http.MethodGet,
		"/api/v1/search?q=battery&mode=hybrid&status=active,expired&assignee=Acme&cpc_prefix=H01M&page=2&page_size=50", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "battery", stub.gotReq.Query)
	assert.Equal(t, ptypes.SearchHybrid, stub.gotReq.Mode)
	assert.Equal(t, []ptypes.PatentStatus{"active", "expired"}, stub.gotReq.Status)
	assert.Equal(t, []string{"Acme"}, stub.gotReq.Assignees)
	assert.Equal(t, "H01M", stub.gotReq.CPCPrefix)
	assert.Equal(t, 2, stub.gotReq.Pagination.Page)
	assert.Equal(t, 50, stub.gotReq.Pagination.PageSize)

	var resp search.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "US10123456B2", resp.Items[0].PatentNumber)
}

func TestSearchHandlerDefaultsMode(t *testing.T) {
	stub := &stubSearchService{resp: &search.Response{Mode: ptypes.SearchHybrid}}

	r := gin.New()
	r.GET("/api/v1/search", NewSearchHandler(stub).Search)

	perform(r, http.MethodGet, "/api/v1/search?q=battery", "")
	assert.Equal(t, ptypes.SearchHybrid, stub.gotReq.Mode)
	assert.Equal(t, 1, stub.gotReq.Pagination.Page)
	assert.Equal(t, 20, stub.gotReq.Pagination.PageSize)
}

func TestSearchHandlerEmptyQuery(t *testing.T) {
	stub := &stubSearchService{err: appErrors.New(appErrors.ErrCodeSearchQueryEmpty, "search query must not be empty")}

	r := gin.New()
	r.GET("/api/v1/search", NewSearchHandler(stub).Search)

	rec := perform(r, http.MethodGet, "/api/v1/search", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(appErrors.ErrCodeSearchQueryEmpty), body.Code)
}

// --- patents ---

type stubPatentService struct {
	gotIngest patentapp.IngestInput
	patent    *domain.Patent
	listed    *patentapp.ListResult
	embedded  int
	err       error
}

func (s *stubPatentService) Ingest(_ context.Context, in patentapp.IngestInput) (*domain.Patent, error) {
	s.gotIngest = in
	return s.patent, s.err
}
func (s *stubPatentService) Get(_ context.Context, _ string) (*domain.Patent, error) {
	return s.patent, s.err
}
func (s *stubPatentService) List(_ context.Context, _ patentapp.ListInput) (*patentapp.ListResult, error) {
	return s.listed, s.err
}
func (s *stubPatentService) BackfillEmbeddings(_ context.Context, _ int) (int, error) {
	return s.embedded, s.err
}

func TestPatentIngest(t *testing.T) {
	stub := &stubPatentService{patent: &domain.Patent{PatentNumber: "US10123456B2"}}

	r := gin.New()
	r.POST("/api/v1/patents", NewPatentHandler(stub).Ingest)

	rec := perform(r, http.MethodPost, "/api/v1/patents",
		`{"patent_number":"US 10,123,456 B2","title":"Battery","filing_date":"2015-03-10"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "US 10,123,456 B2", stub.gotIngest.PatentNumber)
	assert.Equal(t, "2015-03-10", stub.gotIngest.FilingDate)
}

func TestPatentIngestMalformedBody(t *testing.T) {
	r := gin.New()
	r.POST("/api/v1/patents", NewPatentHandler(&stubPatentService{}).Ingest)

	rec := perform(r, http.MethodPost, "/api/v1/patents", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPatentGetNotFound(t *testing.T) {
	stub := &stubPatentService{err: appErrors.New(appErrors.CodePatentNotFound, "patent not found")}

	r := gin.New()
	r.GET("/api/v1/patents/:number", NewPatentHandler(stub).Get)

	rec := perform(r, http.MethodGet, "/api/v1/patents/US99999999B9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPatentBackfill(t *testing.T) {
	stub := &stubPatentService{embedded: 42}

	r := gin.New()
	r.POST("/api/v1/patents/embeddings/backfill", NewPatentHandler(stub).BackfillEmbeddings)

	rec := perform(r, http.MethodPost, "/api/v1/patents/embeddings/backfill?batch_size=200", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"embedded":42}`, rec.Body.String())
}

// --- lifecycle ---

type stubLifecycleService struct {
	gotExpiring lifecycle.ExpiringRequest
	gotFeeYear  int
	gotWhen     time.Time
	term        *lifecycle.TermReport
	expiring    *lifecycle.ExpiringResponse
	fees        []lifecycle.UpcomingFee
	stats       *lifecycle.StatsReport
	patent      *domain.Patent
	err         error
}

func (s *stubLifecycleService) Recompute(_ context.Context, _ string) (*domain.Patent, error) {
	return s.patent, s.err
}
func (s *stubLifecycleService) Term(_ context.Context, _ string) (*lifecycle.TermReport, error) {
	return s.term, s.err
}
func (s *stubLifecycleService) Expiring(_ context.Context, req lifecycle.ExpiringRequest) (*lifecycle.ExpiringResponse, error) {
	s.gotExpiring = req
	return s.expiring, s.err
}
func (s *stubLifecycleService) RecentlyLapsed(_ context.Context, _ int, _ common.Pagination) (*lifecycle.ExpiringResponse, error) {
	return s.expiring, s.err
}
func (s *stubLifecycleService) UpcomingFees(_ context.Context, _ int) ([]lifecycle.UpcomingFee, error) {
	return s.fees, s.err
}
func (s *stubLifecycleService) Stats(_ context.Context) (*lifecycle.StatsReport, error) {
	return s.stats, s.err
}
func (s *stubLifecycleService) MarkFeePaid(_ context.Context, _ string, feeYear int, when time.Time) error {
	s.gotFeeYear = feeYear
	s.gotWhen = when
	return s.err
}

func TestLifecycleExpiring(t *testing.T) {
	stub := &stubLifecycleService{expiring: &lifecycle.ExpiringResponse{Total: 3}}

	r := gin.New()
	r.GET("/api/v1/lifecycle/expiring", NewLifecycleHandler(stub).Expiring)

	rec := perform(r, http.MethodGet, "/api/v1/lifecycle/expiring?within_days=180&cpc_prefix=H01M", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 180, stub.gotExpiring.WithinDays)
	assert.Equal(t, "H01M", stub.gotExpiring.CPCPrefix)
}

func TestLifecycleExpiringDefaultWindow(t *testing.T) {
	stub := &stubLifecycleService{expiring: &lifecycle.ExpiringResponse{}}

	r := gin.New()
	r.GET("/api/v1/lifecycle/expiring", NewLifecycleHandler(stub).Expiring)

	perform(r, http.MethodGet, "/api/v1/lifecycle/expiring", "")
	assert.Equal(t, 365, stub.gotExpiring.WithinDays)
}

func TestMarkFeePaid(t *testing.T) {
	stub := &stubLifecycleService{}

	r := gin.New()
	r.POST("/api/v1/patents/:number/fees/:year/payments", NewLifecycleHandler(stub).MarkFeePaid)

	rec := perform(r, http.MethodPost, "/api/v1/patents/US10123456B2/fees/7/payments",
		`{"paid_date":"2026-04-01"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 7, stub.gotFeeYear)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), stub.gotWhen)
}

func TestMarkFeePaidBadDate(t *testing.T) {
	r := gin.New()
	r.POST("/api/v1/patents/:number/fees/:year/payments", NewLifecycleHandler(&stubLifecycleService{}).MarkFeePaid)

	rec := perform(r, http.MethodPost, "/api/v1/patents/US10123456B2/fees/7/payments",
		`{"paid_date":"April 1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- analytics ---

type stubAnalyticsService struct {
	gotWhiteSpace analytics.WhiteSpaceRequest
	coverage      *analytics.CoverageReport
	whiteSpaces   *analytics.WhiteSpaceReport
	crossDomain   *analytics.CrossDomainReport
	sections      *analytics.SectionOverviewReport
	err           error
}

func (s *stubAnalyticsService) Coverage(_ context.Context, _ analytics.CoverageRequest) (*analytics.CoverageReport, error) {
	return s.coverage, s.err
}
func (s *stubAnalyticsService) WhiteSpaces(_ context.Context, req analytics.WhiteSpaceRequest) (*analytics.WhiteSpaceReport, error) {
	s.gotWhiteSpace = req
	return s.whiteSpaces, s.err
}
func (s *stubAnalyticsService) CrossDomain(_ context.Context, _ analytics.CrossDomainRequest) (*analytics.CrossDomainReport, error) {
	return s.crossDomain, s.err
}
func (s *stubAnalyticsService) SectionOverview(_ context.Context, _ analytics.SectionOverviewRequest) (*analytics.SectionOverviewReport, error) {
	return s.sections, s.err
}

func TestAnalyticsWhiteSpaces(t *testing.T) {
	stub := &stubAnalyticsService{whiteSpaces: &analytics.WhiteSpaceReport{}}

	r := gin.New()
	r.GET("/api/v1/analytics/white-spaces", NewAnalyticsHandler(stub).WhiteSpaces)

	rec := perform(r, http.MethodGet,
		"/api/v1/analytics/white-spaces?cpc_prefix=H01M&min_gap_score=0.7&limit=5&archive=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "H01M", stub.gotWhiteSpace.CPCPrefix)
	assert.InDelta(t, 0.7, stub.gotWhiteSpace.MinGapScore, 1e-9)
	assert.Equal(t, 5, stub.gotWhiteSpace.Limit)
	assert.True(t, stub.gotWhiteSpace.Archive)
}

func TestAnalyticsCrossDomainMissingSource(t *testing.T) {
	stub := &stubAnalyticsService{err: appErrors.InvalidParam("source_cpc is required")}

	r := gin.New()
	r.GET("/api/v1/analytics/cross-domain", NewAnalyticsHandler(stub).CrossDomain)

	rec := perform(r, http.MethodGet, "/api/v1/analytics/cross-domain", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- citations ---

type stubCitationService struct {
	gotNetwork citation.NetworkRequest
	network    *citdomain.Network
	stats      *citdomain.Stats
	ranked     []citdomain.RankedPatent
	err        error
}

func (s *stubCitationService) Network(_ context.Context, req citation.NetworkRequest) (*citdomain.Network, error) {
	s.gotNetwork = req
	return s.network, s.err
}
func (s *stubCitationService) Stats(_ context.Context, _ string) (*citdomain.Stats, error) {
	return s.stats, s.err
}
func (s *stubCitationService) MostCited(_ context.Context, _ int) ([]citdomain.RankedPatent, error) {
	return s.ranked, s.err
}
func (s *stubCitationService) RecordCitations(_ context.Context, _ string, _ []string) error {
	return s.err
}

func TestCitationNetwork(t *testing.T) {
	stub := &stubCitationService{network: &citdomain.Network{Root: "US10123456B2"}}

	r := gin.New()
	r.GET("/api/v1/patents/:number/citations/network", NewCitationHandler(stub).Network)

	rec := perform(r, http.MethodGet,
		"/api/v1/patents/US10123456B2/citations/network?depth=3&max_nodes=50&direction=both", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "US10123456B2", stub.gotNetwork.PatentNumber)
	assert.Equal(t, 3, stub.gotNetwork.Depth)
	assert.Equal(t, 50, stub.gotNetwork.MaxNodes)
}

func TestCitationNetworkRootMissing(t *testing.T) {
	stub := &stubCitationService{err: appErrors.New(appErrors.ErrCodeCitationRootNotFound, "patent is not in the graph")}

	r := gin.New()
	r.GET("/api/v1/patents/:number/citations/network", NewCitationHandler(stub).Network)

	rec := perform(r, http.MethodGet, "/api/v1/patents/US0B0/citations/network", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// --- health ---

func TestHealthReadiness(t *testing.T) {
	h := NewHealthHandler(map[string]Pinger{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return assert.AnError },
	})

	r := gin.New()
	r.GET("/readyz", h.Readiness)

	rec := perform(r, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Healthy bool              `json:"healthy"`
		Checks  map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Healthy)
	assert.Equal(t, "ok", body.Checks["postgres"])
}

func TestHealthLiveness(t *testing.T) {
	r := gin.New()
	r.GET("/healthz", NewHealthHandler(nil).Liveness)

	rec := perform(r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
