package collaborators

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/repurposectl/repurposectl/internal/cache"
	"github.com/repurposectl/repurposectl/internal/resilience"
)

// OntologyTerm is one search hit from the ontology lookup service,
// restricted to the ontologies passed to Search (the resolver passes EFO
// and MONDO, §4.3 step 1).
type OntologyTerm struct {
	IRI          string   `json:"iri"`
	Label        string   `json:"label"`
	Description  string   `json:"description"`
	OntologyID   string   `json:"ontology_id"`
	OntologyName string   `json:"ontology_name"`
	Synonyms     []string `json:"synonyms"`
	Score        float64  `json:"score"`
}

// OntologyClient is the Ontology Lookup collaborator (§6: "Ontology
// lookup (EFO/MONDO/DOID/HP search + term ancestors)"). Grounded on
// pkg/external/clinvar.go's two-step search-then-detail idiom, adapted to a
// single-step term search + a parent-fetch call.
type OntologyClient struct {
	http *httpClient
	res  *resilience.Client
}

// OntologyConfig configures the ontology lookup base URL.
type OntologyConfig struct {
	BaseURL string
	Timeout time.Duration
}

func NewOntologyClient(cfg OntologyConfig, cac *cache.CAC, log *logrus.Logger) *OntologyClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &OntologyClient{
		http: newHTTPClient(cfg.BaseURL, cfg.Timeout, nil),
		res:  resilience.New(resilience.ClientConfig{Name: "ontology"}, cac, log),
	}
}

// Search queries the ontology lookup for up to maxResults class matches
// within ontologies (e.g. []string{"efo", "mondo"}).
func (c *OntologyClient) Search(ctx context.Context, query string, ontologies []string, maxResults int) []OntologyTerm {
	params := map[string]any{"q": query, "ontologies": ontologies, "rows": maxResults}
	empty := func() []OntologyTerm { return nil }
	op := func(ctx context.Context) ([]OntologyTerm, error) {
		q := url.Values{}
		q.Set("q", query)
		q.Set("rows", strconv.Itoa(maxResults))
		for _, o := range ontologies {
			q.Add("ontology", o)
		}
		var resp struct {
			Response struct {
				Docs []OntologyTerm `json:"docs"`
			} `json:"response"`
		}
		if err := c.http.getJSON(ctx, "/api/search", q, &resp); err != nil {
			return nil, err
		}
		return resp.Response.Docs, nil
	}
	return resilience.Fetch(ctx, c.res, "ontology/search", params, op, empty)
}

// Ancestors fetches the ontology parent-term labels for iri (§4.3
// step 4: "Fetch ontology parents via the ontologies service").
func (c *OntologyClient) Ancestors(ctx context.Context, iri string) []string {
	params := map[string]any{"iri": iri}
	empty := func() []string { return nil }
	op := func(ctx context.Context) ([]string, error) {
		q := url.Values{}
		q.Set("iri", iri)
		var resp struct {
			Parents []struct {
				Label string `json:"label"`
				IRI   string `json:"iri"`
			} `json:"_embedded,omitempty"`
		}
		if err := c.http.getJSON(ctx, "/api/terms/parents", q, &resp); err != nil {
			return nil, err
		}
		labels := make([]string, 0, len(resp.Parents))
		for _, p := range resp.Parents {
			labels = append(labels, p.Label)
		}
		return labels, nil
	}
	return resilience.Fetch(ctx, c.res, "ontology/ancestors", params, op, empty)
}

// XrefClient is the ontology cross-reference collaborator (MONDO<->EFO<->DOID).
type XrefClient struct {
	http *httpClient
	res  *resilience.Client
}

func NewXrefClient(cfg OntologyConfig, cac *cache.CAC, log *logrus.Logger) *XrefClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &XrefClient{
		http: newHTTPClient(cfg.BaseURL, cfg.Timeout, nil),
		res:  resilience.New(resilience.ClientConfig{Name: "ontology-xref"}, cac, log),
	}
}

// Resolve maps a source ontology ID (e.g. a MONDO ID) to its equivalent IDs
// in other ontologies.
func (c *XrefClient) Resolve(ctx context.Context, sourceID string) map[string]string {
	params := map[string]any{"id": sourceID}
	empty := func() map[string]string { return map[string]string{} }
	op := func(ctx context.Context) (map[string]string, error) {
		q := url.Values{}
		q.Set("id", sourceID)
		var resp map[string]string
		if err := c.http.getJSON(ctx, "/api/xrefs", q, &resp); err != nil {
			return nil, err
		}
		return resp, nil
	}
	return resilience.Fetch(ctx, c.res, "ontology/xref", params, op, empty)
}
