package collaborators

import (
	"context"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/repurposectl/repurposectl/internal/cache"
	"github.com/repurposectl/repurposectl/internal/resilience"
)

// PathwayClient is the Pathway DB collaborator (Reactome-style: entity ->
// pathways, pathway -> events, search) per §6.
type PathwayClient struct {
	http *httpClient
	res  *resilience.Client
}

type PathwayConfig struct {
	BaseURL string
	Timeout time.Duration
}

func NewPathwayClient(cfg PathwayConfig, cac *cache.CAC, log *logrus.Logger) *PathwayClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &PathwayClient{
		http: newHTTPClient(cfg.BaseURL, cfg.Timeout, nil),
		res:  resilience.New(resilience.ClientConfig{Name: "pathway"}, cac, log),
	}
}

// PathwaysForUniProt fetches Reactome pathway IDs for a reviewed UniProt
// accession (§4.5 step 4).
func (c *PathwayClient) PathwaysForUniProt(ctx context.Context, uniprotAccession string) []string {
	params := map[string]any{"uniprot": uniprotAccession}
	empty := func() []string { return nil }
	op := func(ctx context.Context) ([]string, error) {
		var resp []struct {
			StId string `json:"stId"`
		}
		if err := c.http.getJSON(ctx, "/ContentService/data/mapping/UniProt/"+url.PathEscape(uniprotAccession)+"/pathways", nil, &resp); err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(resp))
		for _, p := range resp {
			ids = append(ids, p.StId)
		}
		return ids, nil
	}
	return resilience.Fetch(ctx, c.res, "pathway/for-uniprot", params, op, empty)
}

// PPIClient is the Protein-Protein Interaction DB collaborator, returning a
// confidence-thresholded interaction network (§6).
type PPIClient struct {
	http *httpClient
	res  *resilience.Client
}

type PPIConfig struct {
	BaseURL           string
	MinConfidence     float64
	Timeout           time.Duration
}

func NewPPIClient(cfg PPIConfig, cac *cache.CAC, log *logrus.Logger) *PPIClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.MinConfidence == 0 {
		cfg.MinConfidence = 0.7
	}
	return &PPIClient{
		http: newHTTPClient(cfg.BaseURL, cfg.Timeout, nil),
		res:  resilience.New(resilience.ClientConfig{Name: "ppi"}, cac, log),
	}
}

// Interactors returns high-confidence interaction partners for proteinID.
func (c *PPIClient) Interactors(ctx context.Context, proteinID string, minConfidence float64) []string {
	params := map[string]any{"protein": proteinID, "min_confidence": minConfidence}
	empty := func() []string { return nil }
	op := func(ctx context.Context) ([]string, error) {
		q := url.Values{}
		q.Set("identifiers", proteinID)
		var resp []struct {
			PreferredNameB string  `json:"preferredName_B"`
			Score          float64 `json:"score"`
		}
		if err := c.http.getJSON(ctx, "/api/json/network", q, &resp); err != nil {
			return nil, err
		}
		out := make([]string, 0, len(resp))
		for _, r := range resp {
			if r.Score >= minConfidence {
				out = append(out, r.PreferredNameB)
			}
		}
		return out, nil
	}
	return resilience.Fetch(ctx, c.res, "ppi/interactors", params, op, empty)
}
