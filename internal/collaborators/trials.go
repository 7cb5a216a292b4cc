package collaborators

import (
	"context"
	"net/url"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/repurposectl/repurposectl/internal/cache"
	"github.com/repurposectl/repurposectl/internal/resilience"
)

// Study is one clinical trial study record, parsed down to the fields the
// Evidence Aggregator needs (§4.7 "Clinical Trials").
type Study struct {
	NCTID         string   `json:"nct_id"`
	Title         string   `json:"title"`
	Phase         int      `json:"phase"`
	Status        string   `json:"status"`
	LeadSponsor   string   `json:"lead_sponsor"`
	Interventions []string `json:"interventions"`
}

// TrialsClient is the Clinical-Trial Registry collaborator (v2 JSON, e.g.
// ClinicalTrials.gov) per §6.
type TrialsClient struct {
	http *httpClient
	res  *resilience.Client
}

type TrialsConfig struct {
	BaseURL string
	Timeout time.Duration
}

func NewTrialsClient(cfg TrialsConfig, cac *cache.CAC, log *logrus.Logger) *TrialsClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &TrialsClient{
		http: newHTTPClient(cfg.BaseURL, cfg.Timeout, nil),
		res:  resilience.New(resilience.ClientConfig{Name: "clinical-trials"}, cac, log),
	}
}

var phaseDigitRE = regexp.MustCompile(`(\d)`)

// SearchByDisease queries the registry for studies matching disease with
// status in {RECRUITING, ACTIVE_NOT_RECRUITING, ENROLLING_BY_INVITATION}.
func (c *TrialsClient) SearchByDisease(ctx context.Context, disease string) []Study {
	params := map[string]any{"disease": disease}
	empty := func() []Study { return nil }
	op := func(ctx context.Context) ([]Study, error) {
		q := url.Values{}
		q.Set("query.cond", disease)
		q.Set("filter.overallStatus", "RECRUITING,ACTIVE_NOT_RECRUITING,ENROLLING_BY_INVITATION")
		q.Set("pageSize", "1000")
		var resp struct {
			Studies []struct {
				ProtocolSection struct {
					IdentificationModule struct {
						NCTId      string `json:"nctId"`
						BriefTitle string `json:"briefTitle"`
					} `json:"identificationModule"`
					StatusModule struct {
						OverallStatus string `json:"overallStatus"`
					} `json:"statusModule"`
					SponsorCollaboratorsModule struct {
						LeadSponsor struct {
							Name string `json:"name"`
						} `json:"leadSponsor"`
					} `json:"sponsorCollaboratorsModule"`
					DesignModule struct {
						PhaseList struct {
							Phases []string `json:"phases"`
						} `json:"phases"`
					} `json:"designModule"`
					ArmsInterventionsModule struct {
						Interventions []struct {
							Name string `json:"name"`
						} `json:"interventions"`
					} `json:"armsInterventionsModule"`
				} `json:"protocolSection"`
			} `json:"studies"`
		}
		if err := c.http.getJSON(ctx, "/api/v2/studies", q, &resp); err != nil {
			return nil, err
		}
		out := make([]Study, 0, len(resp.Studies))
		for _, s := range resp.Studies {
			ps := s.ProtocolSection
			interventions := make([]string, 0, len(ps.ArmsInterventionsModule.Interventions))
			for _, iv := range ps.ArmsInterventionsModule.Interventions {
				interventions = append(interventions, iv.Name)
			}
			out = append(out, Study{
				NCTID:         ps.IdentificationModule.NCTId,
				Title:         ps.IdentificationModule.BriefTitle,
				Phase:         normalizePhase(ps.DesignModule.PhaseList.Phases),
				Status:        ps.StatusModule.OverallStatus,
				LeadSponsor:   ps.SponsorCollaboratorsModule.LeadSponsor.Name,
				Interventions: interventions,
			})
		}
		return out, nil
	}
	return resilience.Fetch(ctx, c.res, "trials/search", params, op, empty)
}

// normalizePhase extracts an integer clinical phase from the registry's
// phase strings (e.g. "PHASE2" -> 2), via regex as §4.7 specifies.
func normalizePhase(phases []string) int {
	for _, p := range phases {
		if m := phaseDigitRE.FindStringSubmatch(p); m != nil {
			switch m[1] {
			case "1", "2", "3", "4":
				digit := int(m[1][0] - '0')
				return digit
			}
		}
	}
	return 0
}
