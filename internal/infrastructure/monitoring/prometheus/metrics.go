package prometheus

// AppMetrics holds the metric handles used across the service.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Ingestion
	IngestTotal    CounterVec
	IngestDuration HistogramVec

	// Search
	SearchTotal       CounterVec
	SearchDuration    HistogramVec
	SearchResultCount HistogramVec
	SearchCacheHits   CounterVec
	SearchLegFailures CounterVec
	EmbeddingDuration HistogramVec
	EmbeddingBacklog  GaugeVec

	// Lifecycle
	TermRecomputeTotal CounterVec
	FeeEventsPublished CounterVec
	ExpiringPatents    GaugeVec

	// Citation graph
	GraphQueryDuration HistogramVec
	GraphWalkNodes     HistogramVec

	// Analytics
	ReportDuration HistogramVec
	ReportArchived CounterVec

	// Infrastructure
	DBQueryDuration HistogramVec
	CacheHitsTotal  CounterVec
	CacheMissTotal  CounterVec
}

// NewAppMetrics registers every application metric on the collector.
func NewAppMetrics(c MetricsCollector) *AppMetrics {
	resultBuckets := []float64{0, 1, 5, 10, 25, 50, 100, 250, 500}
	nodeBuckets := []float64{1, 5, 10, 25, 50, 100, 250, 500}

	return &AppMetrics{
		HTTPRequestsTotal: c.RegisterCounter("http_requests_total",
			"Total HTTP requests by method, route and status.",
			"method", "route", "status"),
		HTTPRequestDuration: c.RegisterHistogram("http_request_duration_seconds",
			"HTTP request latency by method and route.", nil,
			"method", "route"),
		HTTPActiveRequests: c.RegisterGauge("http_active_requests",
			"In-flight HTTP requests by route.", "route"),

		IngestTotal: c.RegisterCounter("patent_ingest_total",
			"Ingested patents by outcome.", "outcome"),
		IngestDuration: c.RegisterHistogram("patent_ingest_duration_seconds",
			"End-to-end ingest latency.", nil),

		SearchTotal: c.RegisterCounter("search_requests_total",
			"Search requests by mode.", "mode"),
		SearchDuration: c.RegisterHistogram("search_duration_seconds",
			"Search latency by mode.", nil, "mode"),
		SearchResultCount: c.RegisterHistogram("search_result_count",
			"Result counts returned per search.", resultBuckets),
		SearchCacheHits: c.RegisterCounter("search_cache_hits_total",
			"Search responses served from cache."),
		SearchLegFailures: c.RegisterCounter("search_leg_failures_total",
			"Hybrid search legs that failed and were skipped.", "leg"),
		EmbeddingDuration: c.RegisterHistogram("embedding_duration_seconds",
			"Query embedding latency.", nil),
		EmbeddingBacklog: c.RegisterGauge("embedding_backlog",
			"Patents stored without an embedding."),

		TermRecomputeTotal: c.RegisterCounter("term_recompute_total",
			"Patent term recomputations by trigger.", "trigger"),
		FeeEventsPublished: c.RegisterCounter("fee_events_published_total",
			"Maintenance fee due events published."),
		ExpiringPatents: c.RegisterGauge("expiring_patents",
			"Active patents expiring inside the horizon.", "horizon"),

		GraphQueryDuration: c.RegisterHistogram("graph_query_duration_seconds",
			"Citation graph query latency by operation.", nil, "operation"),
		GraphWalkNodes: c.RegisterHistogram("graph_walk_nodes",
			"Nodes visited per citation network walk.", nodeBuckets),

		ReportDuration: c.RegisterHistogram("analytics_report_duration_seconds",
			"Analytics report build latency by kind.", nil, "kind"),
		ReportArchived: c.RegisterCounter("analytics_reports_archived_total",
			"Analytics reports persisted to object storage.", "kind"),

		DBQueryDuration: c.RegisterHistogram("db_query_duration_seconds",
			"Database query latency by repository.", nil, "repository"),
		CacheHitsTotal: c.RegisterCounter("cache_hits_total",
			"Cache hits by keyspace.", "keyspace"),
		CacheMissTotal: c.RegisterCounter("cache_misses_total",
			"Cache misses by keyspace.", "keyspace"),
	}
}
