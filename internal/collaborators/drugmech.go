package collaborators

import (
	"context"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/repurposectl/repurposectl/internal/cache"
	"github.com/repurposectl/repurposectl/internal/resilience"
)

// Molecule is a drug-mechanism DB molecule record (ChEMBL-style).
type Molecule struct {
	ChEMBLID  string `json:"chembl_id"`
	Name      string `json:"name"`
	MoleculeType string `json:"molecule_type"`
	Oral      bool   `json:"oral"`
	MaxPhase  int    `json:"max_phase"`
}

// Mechanism is one drug-mechanism-of-action record.
type Mechanism struct {
	TargetChEMBLID    string `json:"target_chembl_id"`
	MechanismOfAction string `json:"mechanism_of_action"`
	ActionType        string `json:"action_type"`
}

// DrugMechClient is the Drug-Mechanism DB collaborator (ChEMBL-style:
// target search, mechanisms, molecule details) per §6. It is the
// "heavy collaborator" §4.2 singles out with a default 3.0s minimum
// inter-request interval.
type DrugMechClient struct {
	http *httpClient
	res  *resilience.Client
}

type DrugMechConfig struct {
	BaseURL     string
	MinInterval time.Duration
	Timeout     time.Duration
}

func NewDrugMechClient(cfg DrugMechConfig, cac *cache.CAC, log *logrus.Logger) *DrugMechClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.MinInterval == 0 {
		cfg.MinInterval = 3 * time.Second
	}
	return &DrugMechClient{
		http: newHTTPClient(cfg.BaseURL, cfg.Timeout, nil),
		res:  resilience.New(resilience.ClientConfig{Name: "drug-mechanism", MinInterval: cfg.MinInterval}, cac, log),
	}
}

// MechanismOfAction returns the mechanism-of-action string for a target
// ChEMBL ID, or "" if unknown.
func (c *DrugMechClient) MechanismOfAction(ctx context.Context, targetChEMBLID string) string {
	params := map[string]any{"target_chembl_id": targetChEMBLID}
	empty := func() string { return "" }
	op := func(ctx context.Context) (string, error) {
		q := url.Values{}
		q.Set("target_chembl_id", targetChEMBLID)
		q.Set("format", "json")
		var resp struct {
			Mechanisms []Mechanism `json:"mechanisms"`
		}
		if err := c.http.getJSON(ctx, "/chembl/api/data/mechanism", q, &resp); err != nil {
			return "", err
		}
		if len(resp.Mechanisms) == 0 {
			return "", nil
		}
		return resp.Mechanisms[0].MechanismOfAction, nil
	}
	return resilience.Fetch(ctx, c.res, "drugmech/moa", params, op, empty)
}

// MoleculeDetails fetches molecule metadata (oral formulation, max phase).
func (c *DrugMechClient) MoleculeDetails(ctx context.Context, chemblID string) Molecule {
	params := map[string]any{"chembl_id": chemblID}
	empty := func() Molecule { return Molecule{ChEMBLID: chemblID} }
	op := func(ctx context.Context) (Molecule, error) {
		var resp Molecule
		if err := c.http.getJSON(ctx, "/chembl/api/data/molecule/"+url.PathEscape(chemblID), nil, &resp); err != nil {
			return Molecule{}, err
		}
		resp.ChEMBLID = chemblID
		return resp, nil
	}
	return resilience.Fetch(ctx, c.res, "drugmech/molecule", params, op, empty)
}

// GeneDrugClient is the gene-drug interaction DB collaborator (GraphQL,
// DGIdb-style) per §6.
type GeneDrugClient struct {
	http *httpClient
	res  *resilience.Client
}

type GeneDrugConfig struct {
	BaseURL string
	Timeout time.Duration
}

func NewGeneDrugClient(cfg GeneDrugConfig, cac *cache.CAC, log *logrus.Logger) *GeneDrugClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &GeneDrugClient{
		http: newHTTPClient(cfg.BaseURL, cfg.Timeout, nil),
		res:  resilience.New(resilience.ClientConfig{Name: "gene-drug"}, cac, log),
	}
}

// InteractionsForGene returns drug names known to interact with geneSymbol,
// used as a cross-check source alongside the target-association DB.
func (c *GeneDrugClient) InteractionsForGene(ctx context.Context, geneSymbol string) []string {
	params := map[string]any{"gene": geneSymbol}
	empty := func() []string { return nil }
	op := func(ctx context.Context) ([]string, error) {
		var resp struct {
			Data struct {
				Genes struct {
					Nodes []struct {
						InteractionClaims struct {
							Nodes []struct {
								Drug struct {
									Name string `json:"name"`
								} `json:"drug"`
							} `json:"nodes"`
						} `json:"interactions"`
					} `json:"nodes"`
				} `json:"genes"`
			} `json:"data"`
		}
		req := graphqlRequest{
			Query:     geneDrugInteractionsQuery,
			Variables: map[string]any{"names": []string{geneSymbol}},
		}
		if err := c.http.postJSON(ctx, "/api/graphql", req, &resp); err != nil {
			return nil, err
		}
		var out []string
		for _, gene := range resp.Data.Genes.Nodes {
			for _, node := range gene.InteractionClaims.Nodes {
				out = append(out, node.Drug.Name)
			}
		}
		return out, nil
	}
	return resilience.Fetch(ctx, c.res, "genedrug/interactions", params, op, empty)
}

const geneDrugInteractionsQuery = `query GeneDrugInteractions($names: [String!]) {
  genes(names: $names) {
    nodes { interactions { nodes { drug { name } } } }
  }
}`
