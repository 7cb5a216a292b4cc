package collaborators

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/repurposectl/repurposectl/internal/cache"
	"github.com/repurposectl/repurposectl/internal/resilience"
)

// TargetRow is one disease-associated target row (§4.5 step 1).
type TargetRow struct {
	TargetID        string             `json:"target_id"`
	GeneSymbol      string             `json:"gene_symbol"`
	Biotype         string             `json:"biotype"`
	ProteinIDs      []string           `json:"protein_ids"`
	Tractability    []string           `json:"tractability"`
	Score           float64            `json:"score"`
	DatatypeScores  map[string]float64 `json:"datatype_scores"`
}

// KnownDrugRow is one drug known to modulate a target (§4.6 step 1).
type KnownDrugRow struct {
	DrugID                     string  `json:"drug_id"`
	DrugName                   string  `json:"drug_name"`
	DrugType                   string  `json:"drug_type"`
	Phase                      *int    `json:"phase"`
	MaximumClinicalTrialPhase  *int    `json:"maximum_clinical_trial_phase"`
	MechanismOfAction          string  `json:"mechanism_of_action"`
	Indication                 string  `json:"indication"`
}

// TargetAssocClient is the Target-Association DB collaborator, a GraphQL
// service in the shape of Open Targets (disease->targets->knownDrugs,
// target->knownDrugs) per §6.
type TargetAssocClient struct {
	http *httpClient
	res  *resilience.Client
}

type TargetAssocConfig struct {
	BaseURL string
	Timeout time.Duration
}

func NewTargetAssocClient(cfg TargetAssocConfig, cac *cache.CAC, log *logrus.Logger) *TargetAssocClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &TargetAssocClient{
		http: newHTTPClient(cfg.BaseURL, cfg.Timeout, nil),
		res:  resilience.New(resilience.ClientConfig{Name: "target-association"}, cac, log),
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// TargetsForDisease pages through disease-associated targets, page_size 100,
// hard safety cap 50,000 rows (§4.5 step 1).
func (c *TargetAssocClient) TargetsForDisease(ctx context.Context, diseaseID string) []TargetRow {
	params := map[string]any{"disease_id": diseaseID}
	empty := func() []TargetRow { return nil }
	op := func(ctx context.Context) ([]TargetRow, error) {
		const pageSize = 100
		const hardCap = 50000
		var all []TargetRow
		for offset := 0; offset < hardCap; offset += pageSize {
			var resp struct {
				Data struct {
					Disease struct {
						AssociatedTargets struct {
							Rows []TargetRow `json:"rows"`
						} `json:"associatedTargets"`
					} `json:"disease"`
				} `json:"data"`
			}
			req := graphqlRequest{
				Query: diseaseTargetsQuery,
				Variables: map[string]any{
					"efoId":     diseaseID,
					"pageIndex": offset / pageSize,
					"pageSize":  pageSize,
				},
			}
			if err := c.http.postJSON(ctx, "/graphql", req, &resp); err != nil {
				return nil, err
			}
			rows := resp.Data.Disease.AssociatedTargets.Rows
			all = append(all, rows...)
			if len(rows) < pageSize {
				break
			}
		}
		return all, nil
	}
	return resilience.Fetch(ctx, c.res, "targetassoc/targets-for-disease", params, op, empty)
}

// KnownDrugsForTarget fetches all drugs known to modulate target, size 100,
// irrespective of indication (§4.6 step 1).
func (c *TargetAssocClient) KnownDrugsForTarget(ctx context.Context, targetID string) []KnownDrugRow {
	params := map[string]any{"target_id": targetID}
	empty := func() []KnownDrugRow { return nil }
	op := func(ctx context.Context) ([]KnownDrugRow, error) {
		var resp struct {
			Data struct {
				Target struct {
					KnownDrugs struct {
						Rows []KnownDrugRow `json:"rows"`
					} `json:"knownDrugs"`
				} `json:"target"`
			} `json:"data"`
		}
		req := graphqlRequest{
			Query:     targetKnownDrugsQuery,
			Variables: map[string]any{"ensemblId": targetID, "size": 100},
		}
		if err := c.http.postJSON(ctx, "/graphql", req, &resp); err != nil {
			return nil, err
		}
		return resp.Data.Target.KnownDrugs.Rows, nil
	}
	return resilience.Fetch(ctx, c.res, "targetassoc/known-drugs", params, op, empty)
}

const diseaseTargetsQuery = `query DiseaseTargets($efoId: String!, $pageIndex: Int!, $pageSize: Int!) {
  disease(efoId: $efoId) {
    associatedTargets(page: {index: $pageIndex, size: $pageSize}) {
      rows { targetId geneSymbol biotype proteinIds tractability score datatypeScores }
    }
  }
}`

const targetKnownDrugsQuery = `query TargetKnownDrugs($ensemblId: String!, $size: Int!) {
  target(ensemblId: $ensemblId) {
    knownDrugs(size: $size) {
      rows { drugId drugName drugType phase maximumClinicalTrialPhase mechanismOfAction indication }
    }
  }
}`
