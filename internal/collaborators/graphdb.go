package collaborators

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// GraphDBClient is the Graph Database collaborator named in §6
// ("Graph database for validated target/candidate/association nodes").
//
// No native graph-database driver is available; per DESIGN.md's Open
// Question resolution, the Postgres pool plays this role. Target/Candidate/
// Disease "nodes" and their edges are rows keyed by stable external IDs,
// written with MERGE-equivalent INSERT ... ON CONFLICT DO UPDATE upserts,
// satisfying the "idempotency: re-running all graph-DB writes with the same
// inputs leaves the graph identical" property.
//
// Grounded on internal/database/connection.go's pgxpool
// construction/health-check idiom.
type GraphDBClient struct {
	pool *pgxpool.Pool
	log  *logrus.Logger
}

func NewGraphDBClient(pool *pgxpool.Pool, log *logrus.Logger) *GraphDBClient {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &GraphDBClient{pool: pool, log: log}
}

// MergeTarget upserts a Target node keyed by its stable Ensembl ID.
func (g *GraphDBClient) MergeTarget(ctx context.Context, ensemblID, symbol string, compositeScore float64) error {
	if g.pool == nil {
		return nil
	}
	_, err := g.pool.Exec(ctx, `
		INSERT INTO graph_targets (ensembl_id, symbol, composite_score, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (ensembl_id) DO UPDATE
		SET symbol = EXCLUDED.symbol, composite_score = EXCLUDED.composite_score, updated_at = now()
	`, ensemblID, symbol, compositeScore)
	return err
}

// MergeTargetDiseaseEdge upserts a (Target)-ASSOCIATED_WITH-(Disease) edge
// (§4.5 step 6), score = validation_score + mechanism_score.
func (g *GraphDBClient) MergeTargetDiseaseEdge(ctx context.Context, ensemblID, diseaseID string, score float64) error {
	if g.pool == nil {
		return nil
	}
	_, err := g.pool.Exec(ctx, `
		INSERT INTO graph_target_disease_edges (ensembl_id, disease_id, score, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (ensembl_id, disease_id) DO UPDATE
		SET score = EXCLUDED.score, updated_at = now()
	`, ensemblID, diseaseID, score)
	return err
}

// MergeCandidate upserts a RepurposingCandidate node keyed by drug_id + target.
func (g *GraphDBClient) MergeCandidate(ctx context.Context, drugID, targetEnsemblID string, mechanisticConfidence float64) error {
	if g.pool == nil {
		return nil
	}
	_, err := g.pool.Exec(ctx, `
		INSERT INTO graph_candidates (drug_id, ensembl_id, mechanistic_confidence, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (drug_id, ensembl_id) DO UPDATE
		SET mechanistic_confidence = EXCLUDED.mechanistic_confidence, updated_at = now()
	`, drugID, targetEnsemblID, mechanisticConfidence)
	return err
}

// Health checks the graph-DB connection.
func (g *GraphDBClient) Health(ctx context.Context) error {
	if g.pool == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return g.pool.Ping(ctx)
}
