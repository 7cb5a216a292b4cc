// Package report renders a completed run's final state into the
// clinician-facing Markdown report persisted by the Run Store.
//
// Grounded on original_source/kg/report_generator.py's
// generate_markdown_report (header, executive summary, per-candidate
// section with score breakdown, methodology, next-steps), translated from
// Python string-building into Go's strings.Builder idiom.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/repurposectl/repurposectl/internal/domain"
)

const reportVersion = "1.0"

// Renderer implements orchestrator.ReportRenderer.
type Renderer struct {
	now func() time.Time
}

func New() *Renderer {
	return &Renderer{now: time.Now}
}

// Render builds the Markdown report for state. It never errors: an
// incomplete or failed run still gets a well-formed report describing
// whatever made it into state (§7's "report generation must never crash the
// run" is honored one level up, by the orchestrator's fallback; Render
// itself simply has no error path over a fully-typed state).
func (r *Renderer) Render(ctx context.Context, state *domain.RouteAState) ([]byte, string, error) {
	var b strings.Builder

	diseaseID := ""
	if state.DiseaseID != nil {
		diseaseID = *state.DiseaseID
	}

	fmt.Fprintf(&b, "# Drug Repurposing Report: %s\n\n", state.Indication)
	fmt.Fprintf(&b, "**Disease ID:** %s\n", diseaseID)
	fmt.Fprintf(&b, "**Generated:** %s\n", r.now().UTC().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Report Version:** %s\n", reportVersion)
	fmt.Fprintf(&b, "**Run Status:** %s\n\n", state.Status)
	b.WriteString("---\n\n")

	writeExecutiveSummary(&b, state)
	writeTopCandidates(&b, state)
	writeMethodology(&b)
	writeNextSteps(&b, state)

	filename := fmt.Sprintf("report-%s.md", state.RunID)
	return []byte(b.String()), filename, nil
}

func writeExecutiveSummary(b *strings.Builder, state *domain.RouteAState) {
	b.WriteString("## Executive Summary\n\n")
	if state.Recommendation == nil {
		b.WriteString("No ranked recommendation was produced for this run.\n\n---\n\n")
		return
	}

	rec := state.Recommendation
	fmt.Fprintf(b, "Evaluated **%d** drug repurposing candidate(s) for %s; %d survived validation and filtering; confidence level **%s**.\n\n",
		rec.TotalCandidatesEvaluated, state.Indication, rec.CandidatesAfterFiltering, rec.ConfidenceLevel)
	if state.StrictFTO {
		b.WriteString("Strict freedom-to-operate filtering was applied: candidates with a HIGH patent-risk signal were excluded from ranking.\n\n")
	}
	b.WriteString("---\n\n")
}

func writeTopCandidates(b *strings.Builder, state *domain.RouteAState) {
	b.WriteString("## Top Candidates\n\n")
	if state.Recommendation == nil || len(state.Recommendation.RankedCandidates) == 0 {
		b.WriteString("No candidates survived ranking.\n\n---\n\n")
		return
	}

	for _, c := range state.Recommendation.RankedCandidates {
		fmt.Fprintf(b, "### %d. %s\n\n", c.Rank, c.DrugName)
		fmt.Fprintf(b, "**Drug ID:** %s\n\n", c.DrugID)
		fmt.Fprintf(b, "**Final Score:** %.1f/100  **Tier:** %s\n\n", c.FinalScore, c.Tier)
		b.WriteString("**Score Breakdown:**\n")
		fmt.Fprintf(b, "- Composite Score: %.1f/100\n", c.CompositeScore)
		fmt.Fprintf(b, "- Novelty Score: %.1f/100\n", c.NoveltyScore)
		fmt.Fprintf(b, "- Feasibility Score: %.1f/100\n\n", c.FeasibilityScore)

		if p, ok := state.PatentOutputs[c.DrugName]; ok {
			fmt.Fprintf(b, "**Patent Risk:** %s\n\n", p.RiskTier)
		}
		if e, ok := state.EximOutputs[c.DrugName]; ok {
			fmt.Fprintf(b, "**Supply Concentration:** %s\n\n", e.Signal)
		}

		b.WriteString("**Recommendation:**\n")
		fmt.Fprintf(b, "%s\n\n", c.Recommendation)
		b.WriteString("---\n\n")
	}
}

func writeMethodology(b *strings.Builder) {
	b.WriteString("## Methodology\n\n")
	b.WriteString("This report was generated using a hybrid drug discovery pipeline:\n\n")
	b.WriteString("1. **Direct Disease-Drug Query:** identified drugs with existing clinical evidence via the literature and web-intelligence aggregators\n")
	b.WriteString("2. **Target-Based Discovery:** found additional candidates through disease-associated targets and shared pathway overlap\n")
	b.WriteString("3. **Multi-Factor Scoring:** evaluated candidates on clinical phase, evidence strength, mechanism overlap, and safety profile\n")
	b.WriteString("4. **Ranking:** prioritized candidates considering novelty and feasibility, gated by freedom-to-operate and supply-chain signals\n\n")
	b.WriteString("---\n\n")
}

func writeNextSteps(b *strings.Builder, state *domain.RouteAState) {
	b.WriteString("## Recommended Next Steps\n\n")
	actions := domain.DefaultNextActions
	if state.Recommendation != nil && len(state.Recommendation.NextActions) > 0 {
		actions = state.Recommendation.NextActions
	}
	for _, a := range actions {
		fmt.Fprintf(b, "- %s\n", a)
	}
	b.WriteString("\n")
}
