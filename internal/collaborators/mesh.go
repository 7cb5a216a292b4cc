package collaborators

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/repurposectl/repurposectl/internal/cache"
	"github.com/repurposectl/repurposectl/internal/resilience"
)

// MeSHTerm is one MeSH descriptor match, carrying its D-number and tree codes.
type MeSHTerm struct {
	DescriptorUI string   `json:"descriptor_ui"` // e.g. "D003924" -> formatted "D003924"
	Name         string   `json:"name"`
	TreeNumbers  []string `json:"tree_numbers"`
}

// MeSHClient is the MeSH search/summary collaborator (NCBI E-utilities
// style), grounded on pkg/external/pubmed.go's two-step
// esearch+esummary idiom.
type MeSHClient struct {
	http *httpClient
	res  *resilience.Client
}

// MeSHConfig configures the MeSH collaborator base URL and optional API key.
type MeSHConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func NewMeSHClient(cfg MeSHConfig, cac *cache.CAC, log *logrus.Logger) *MeSHClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	var headers map[string]string
	if cfg.APIKey != "" {
		headers = map[string]string{"api-key": cfg.APIKey}
	}
	return &MeSHClient{
		http: newHTTPClient(cfg.BaseURL, cfg.Timeout, headers),
		res:  resilience.New(resilience.ClientConfig{Name: "mesh"}, cac, log),
	}
}

// Lookup resolves free text to the best-matching MeSH descriptor, formatted
// as a D-number ("D003924"), or "" if no result exists (§4.3 step 3).
func (c *MeSHClient) Lookup(ctx context.Context, query string) (MeSHTerm, bool) {
	params := map[string]any{"term": query}
	empty := func() MeSHTerm { return MeSHTerm{} }
	op := func(ctx context.Context) (MeSHTerm, error) {
		q := url.Values{}
		q.Set("db", "mesh")
		q.Set("term", query)
		q.Set("retmode", "json")
		var search struct {
			ESearchResult struct {
				IDList []string `json:"idlist"`
			} `json:"esearchresult"`
		}
		if err := c.http.getJSON(ctx, "/esearch.fcgi", q, &search); err != nil {
			return MeSHTerm{}, err
		}
		if len(search.ESearchResult.IDList) == 0 {
			return MeSHTerm{}, nil
		}
		id := search.ESearchResult.IDList[0]

		sq := url.Values{}
		sq.Set("db", "mesh")
		sq.Set("id", id)
		sq.Set("retmode", "json")
		var summary struct {
			Result map[string]struct {
				Name        string   `json:"ds_meshterms"`
				TreeNumbers []string `json:"ds_meshui"`
			} `json:"result"`
		}
		if err := c.http.getJSON(ctx, "/esummary.fcgi", sq, &summary); err != nil {
			return MeSHTerm{}, err
		}
		rec, ok := summary.Result[id]
		if !ok {
			return MeSHTerm{}, nil
		}
		return MeSHTerm{DescriptorUI: formatDNumber(id), Name: rec.Name, TreeNumbers: rec.TreeNumbers}, nil
	}
	term := resilience.Fetch(ctx, c.res, "mesh/lookup", params, op, empty)
	return term, term.DescriptorUI != ""
}

// formatDNumber renders a raw MeSH UID as a "D"-prefixed descriptor number.
func formatDNumber(uid string) string {
	if len(uid) > 0 && uid[0] == 'D' {
		return uid
	}
	return fmt.Sprintf("D%07s", uid)
}
