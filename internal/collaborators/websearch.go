package collaborators

import (
	"context"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/repurposectl/repurposectl/internal/cache"
	"github.com/repurposectl/repurposectl/internal/resilience"
)

// SearchHit is one web-search result snippet.
type SearchHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// WebSearchClient is the shared Patent/Web Search and Supply/EXIM Web
// Search collaborator: both are thin wrappers over the same generic
// web-search capability named in §6 ("Patent/web search"), issuing
// different queries. One client, two call sites — avoids the duplicated
// implementation the Open Question in §9 flags for the patent
// aggregator.
type WebSearchClient struct {
	http *httpClient
	res  *resilience.Client
}

type WebSearchConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func NewWebSearchClient(cfg WebSearchConfig, cac *cache.CAC, log *logrus.Logger) *WebSearchClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	var headers map[string]string
	if cfg.APIKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + cfg.APIKey}
	}
	return &WebSearchClient{
		http: newHTTPClient(cfg.BaseURL, cfg.Timeout, headers),
		res:  resilience.New(resilience.ClientConfig{Name: "web-search"}, cac, log),
	}
}

// Search issues a free-text web search query and returns up to maxResults hits.
func (c *WebSearchClient) Search(ctx context.Context, query string, maxResults int) []SearchHit {
	params := map[string]any{"q": query, "max_results": maxResults}
	empty := func() []SearchHit { return nil }
	op := func(ctx context.Context) ([]SearchHit, error) {
		q := url.Values{}
		q.Set("q", query)
		var resp struct {
			Results []SearchHit `json:"results"`
		}
		if err := c.http.getJSON(ctx, "/search", q, &resp); err != nil {
			return nil, err
		}
		if len(resp.Results) > maxResults {
			resp.Results = resp.Results[:maxResults]
		}
		return resp.Results, nil
	}
	return resilience.Fetch(ctx, c.res, "websearch/search", params, op, empty)
}
