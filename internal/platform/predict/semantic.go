package predict

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ayushbridge/ayushbridge/internal/platform/apperr"
)

// SemanticMatch is a single embedding-search hit referencing a stored code.
type SemanticMatch struct {
	ID         string  `json:"id"`
	Similarity float64 `json:"similarity"`
}

// SemanticClient calls the embedding search service. Results for repeated
// queries are cached in-process; the cache is lazily initialized on first use
// and explicitly invalidated when embeddings are regenerated. There is no
// ambient package-level state.
type SemanticClient struct {
	http *resty.Client

	mu    sync.Mutex
	cache map[string][]SemanticMatch
}

// NewSemanticClient creates a semantic search client for the given base URL.
func NewSemanticClient(baseURL string) *SemanticClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetHeader("Accept", "application/json")
	return &SemanticClient{http: c}
}

// Search performs an embedding similarity search. vocabulary is "namaste" or
// "icd11".
func (c *SemanticClient) Search(ctx context.Context, query, vocabulary string, limit int) ([]SemanticMatch, error) {
	if limit <= 0 {
		limit = 10
	}
	// The limit is part of the key: a hit cached for a small page must
	// not serve a later request asking for more rows.
	key := vocabulary + "\x00" + query + "\x00" + strconv.Itoa(limit)

	c.mu.Lock()
	if c.cache != nil {
		if hits, ok := c.cache[key]; ok {
			c.mu.Unlock()
			return hits, nil
		}
	}
	c.mu.Unlock()

	var out struct {
		Results []SemanticMatch `json:"results"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("query", query).
		SetQueryParam("type", vocabulary).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&out).
		Get("/search")
	if err != nil {
		return nil, apperr.UpstreamUnavailable("semantic search service unreachable", err)
	}
	if resp.IsError() {
		return nil, apperr.UpstreamUnavailable("semantic search service returned "+resp.Status(), nil)
	}

	c.mu.Lock()
	if c.cache == nil {
		c.cache = make(map[string][]SemanticMatch)
	}
	c.cache[key] = out.Results
	c.mu.Unlock()

	return out.Results, nil
}

// GenerateEmbeddings asks the service to rebuild its embedding index and
// invalidates the local cache.
func (c *SemanticClient) GenerateEmbeddings(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Post("/generate")
	if err != nil {
		return apperr.UpstreamUnavailable("semantic search service unreachable", err)
	}
	if resp.IsError() {
		return apperr.UpstreamUnavailable("embedding generation failed: "+resp.Status(), nil)
	}
	c.Invalidate()
	return nil
}

// Invalidate drops all cached search results.
func (c *SemanticClient) Invalidate() {
	c.mu.Lock()
	c.cache = nil
	c.mu.Unlock()
}
