package collaborators

import (
	"context"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/repurposectl/repurposectl/internal/cache"
	"github.com/repurposectl/repurposectl/internal/resilience"
)

// GeneDiseaseClient is the gene-disease association DB collaborator
// (DisGeNET-style), grounded on original_source/kg/target_validator.py's
// _query_disgenet.
type GeneDiseaseClient struct {
	http *httpClient
	res  *resilience.Client
}

type GeneDiseaseConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func NewGeneDiseaseClient(cfg GeneDiseaseConfig, cac *cache.CAC, log *logrus.Logger) *GeneDiseaseClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	var headers map[string]string
	if cfg.APIKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + cfg.APIKey}
	}
	return &GeneDiseaseClient{
		http: newHTTPClient(cfg.BaseURL, cfg.Timeout, headers),
		res:  resilience.New(resilience.ClientConfig{Name: "gene-disease"}, cac, log),
	}
}

// AssociationScore returns a gene-disease association score in [0,1].
func (c *GeneDiseaseClient) AssociationScore(ctx context.Context, geneSymbol, diseaseID string) float64 {
	params := map[string]any{"gene": geneSymbol, "disease": diseaseID}
	empty := func() float64 { return 0 }
	op := func(ctx context.Context) (float64, error) {
		q := url.Values{}
		q.Set("gene_symbol", geneSymbol)
		q.Set("disease", diseaseID)
		var resp struct {
			Score float64 `json:"gda_score"`
		}
		if err := c.http.getJSON(ctx, "/api/gda/summary", q, &resp); err != nil {
			return 0, err
		}
		return resp.Score, nil
	}
	return resilience.Fetch(ctx, c.res, "gene-disease/score", params, op, empty)
}

// UniProtEntry is the quality-relevant subset of a UniProt gene record.
type UniProtEntry struct {
	Reviewed           bool `json:"reviewed"`
	HasFunction        bool `json:"has_function"`
	HasDiseaseInvolvement bool `json:"has_disease_involvement"`
	Accession          string `json:"accession"`
}

// UniProtClient resolves gene-symbol -> reviewed UniProt entry quality.
type UniProtClient struct {
	http *httpClient
	res  *resilience.Client
}

type UniProtConfig struct {
	BaseURL string
	Timeout time.Duration
}

func NewUniProtClient(cfg UniProtConfig, cac *cache.CAC, log *logrus.Logger) *UniProtClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &UniProtClient{
		http: newHTTPClient(cfg.BaseURL, cfg.Timeout, nil),
		res:  resilience.New(resilience.ClientConfig{Name: "uniprot"}, cac, log),
	}
}

// Lookup queries UniProt for geneSymbol, preferring reviewed entries.
func (c *UniProtClient) Lookup(ctx context.Context, geneSymbol string) UniProtEntry {
	params := map[string]any{"gene": geneSymbol}
	empty := func() UniProtEntry { return UniProtEntry{} }
	op := func(ctx context.Context) (UniProtEntry, error) {
		q := url.Values{}
		q.Set("query", "gene:"+geneSymbol+" AND reviewed:true")
		q.Set("format", "json")
		q.Set("size", "1")
		var resp struct {
			Results []struct {
				PrimaryAccession string `json:"primaryAccession"`
				Entry struct {
					ReviewedStatus string `json:"entryType"`
				}
				CommentsPresent []string `json:"commentTypes"`
			} `json:"results"`
		}
		if err := c.http.getJSON(ctx, "/uniprotkb/search", q, &resp); err != nil {
			return UniProtEntry{}, err
		}
		if len(resp.Results) == 0 {
			return UniProtEntry{}, nil
		}
		r := resp.Results[0]
		hasFunction := containsString(r.CommentsPresent, "FUNCTION")
		hasDisease := containsString(r.CommentsPresent, "DISEASE")
		return UniProtEntry{
			Reviewed:              true,
			HasFunction:           hasFunction,
			HasDiseaseInvolvement: hasDisease,
			Accession:             r.PrimaryAccession,
		}, nil
	}
	return resilience.Fetch(ctx, c.res, "uniprot/lookup", params, op, empty)
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// GeneCharacterization is the NCBI-gene quality subset used by the
// independent-evidence validator (§4.5 step 5c).
type GeneCharacterization struct {
	GeneIDPresent bool `json:"gene_id_present"`
	HasSummary    bool `json:"has_summary"`
}

// NCBIGeneClient resolves gene-symbol -> NCBI gene record characterization.
type NCBIGeneClient struct {
	http *httpClient
	res  *resilience.Client
}

type NCBIGeneConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func NewNCBIGeneClient(cfg NCBIGeneConfig, cac *cache.CAC, log *logrus.Logger) *NCBIGeneClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &NCBIGeneClient{
		http: newHTTPClient(cfg.BaseURL, cfg.Timeout, nil),
		res:  resilience.New(resilience.ClientConfig{Name: "ncbi-gene"}, cac, log),
	}
}

func (c *NCBIGeneClient) Characterize(ctx context.Context, geneSymbol string) GeneCharacterization {
	params := map[string]any{"gene": geneSymbol}
	empty := func() GeneCharacterization { return GeneCharacterization{} }
	op := func(ctx context.Context) (GeneCharacterization, error) {
		q := url.Values{}
		q.Set("db", "gene")
		q.Set("term", geneSymbol+"[sym] AND human[orgn]")
		q.Set("retmode", "json")
		var search struct {
			ESearchResult struct {
				IDList []string `json:"idlist"`
			} `json:"esearchresult"`
		}
		if err := c.http.getJSON(ctx, "/esearch.fcgi", q, &search); err != nil {
			return GeneCharacterization{}, err
		}
		if len(search.ESearchResult.IDList) == 0 {
			return GeneCharacterization{}, nil
		}
		id := search.ESearchResult.IDList[0]
		sq := url.Values{}
		sq.Set("db", "gene")
		sq.Set("id", id)
		sq.Set("retmode", "json")
		var summary struct {
			Result map[string]struct {
				Summary string `json:"summary"`
			} `json:"result"`
		}
		if err := c.http.getJSON(ctx, "/esummary.fcgi", sq, &summary); err != nil {
			return GeneCharacterization{}, err
		}
		rec := summary.Result[id]
		return GeneCharacterization{GeneIDPresent: true, HasSummary: rec.Summary != ""}, nil
	}
	return resilience.Fetch(ctx, c.res, "ncbi-gene/characterize", params, op, empty)
}
