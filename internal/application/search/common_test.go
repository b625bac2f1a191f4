package search

import (
	"context"
	"time"

	"github.com/turtacn/patent-radar/internal/domain/patent"
	ptypes "github.com/turtacn/patent-radar/pkg/types/patent"
)

// stubFulltext implements FulltextProvider with a function hook.
type stubFulltext struct {
	fn func(ctx context.Context, query string, filter ProviderFilter, limit int) ([]string, error)
}

func (s *stubFulltext) Search(ctx context.Context, query string, filter ProviderFilter, limit int) ([]string, error) {
	return s.fn(ctx, query, filter, limit)
}

// stubVector implements VectorProvider with a function hook.
type stubVector struct {
	fn func(ctx context.Context, vector []float32, filter ProviderFilter, limit int) ([]string, error)
}

func (s *stubVector) Search(ctx context.Context, vector []float32, filter ProviderFilter, limit int) ([]string, error) {
	return s.fn(ctx, vector, filter, limit)
}

// stubEmbedder implements Embedder with a function hook.
type stubEmbedder struct {
	fn func(ctx context.Context, text string) ([]float32, error)
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.fn(ctx, text)
}

// memoryCache is an in-process CachePort for exercising the cache path.
type memoryCache struct {
	entries map[string][]byte
	sets    int
	gets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.gets++
	raw, ok := c.entries[key]
	return raw, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.sets++
	c.entries[key] = value
	return nil
}

// stubPatentRepo implements the subset of patent.Repository the search
// service touches; the remaining methods are inert.  The embedded count
// defaults to one so the semantic leg stays open unless a test empties it.
type stubPatentRepo struct {
	byNumber map[string]*patent.Patent
	embedded int64
}

func newStubPatentRepo(patents ...*patent.Patent) *stubPatentRepo {
	repo := &stubPatentRepo{byNumber: map[string]*patent.Patent{}, embedded: 1}
	for _, p := range patents {
		repo.byNumber[p.PatentNumber] = p
	}
	return repo
}

func (r *stubPatentRepo) Save(_ context.Context, p *patent.Patent) error {
	r.byNumber[p.PatentNumber] = p
	return nil
}

func (r *stubPatentRepo) FindByNumber(_ context.Context, number string) (*patent.Patent, error) {
	if p, ok := r.byNumber[number]; ok {
		return p, nil
	}
	return nil, nil
}

func (r *stubPatentRepo) FindByNumbers(_ context.Context, numbers []string) ([]*patent.Patent, error) {
	var out []*patent.Patent
	for _, n := range numbers {
		if p, ok := r.byNumber[n]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubPatentRepo) List(_ context.Context, _ patent.ListFilter) ([]*patent.Patent, int64, error) {
	return nil, 0, nil
}

func (r *stubPatentRepo) UpdateLifecycle(_ context.Context, _ string, _ *time.Time, _ ptypes.PatentStatus) error {
	return nil
}

func (r *stubPatentRepo) ListWithoutEmbedding(_ context.Context, _ int) ([]*patent.Patent, error) {
	return nil, nil
}

func (r *stubPatentRepo) CountEmbedded(_ context.Context) (int64, error) {
	return r.embedded, nil
}

func (r *stubPatentRepo) SaveEmbedding(_ context.Context, _ string, _ []float32) error {
	return nil
}
