package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// GeneIndex is the append-only gene-symbol -> Ensembl-ID cache shared across
// a run's concurrent target/drug fan-out (§5, §4.6). It is safe for
// concurrent readers and occasional writers: an in-process LRU front serves
// hot reads, backed by Redis so the mapping survives across process
// restarts and is shared across concurrently running pipelines.
//
// Grounded on pkg/external/cache.go's Redis wiring, repurposed
// here for a narrower, append-only mapping rather than general API response
// caching (which the file-based CAC already covers).
type GeneIndex struct {
	front *lru.Cache[string, string]
	redis *redis.Client
	log   *logrus.Logger
}

// NewGeneIndex constructs a GeneIndex. redisClient may be nil, in which case
// the index degrades to an in-process-only LRU (used by the server command
// when the configured Redis URL cannot be parsed).
func NewGeneIndex(redisClient *redis.Client, log *logrus.Logger) (*GeneIndex, error) {
	front, err := lru.New[string, string](4096)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &GeneIndex{front: front, redis: redisClient, log: log}, nil
}

// Lookup returns the Ensembl ID for geneSymbol if known.
func (g *GeneIndex) Lookup(ctx context.Context, geneSymbol string) (string, bool) {
	if v, ok := g.front.Get(geneSymbol); ok {
		return v, true
	}
	if g.redis == nil {
		return "", false
	}
	v, err := g.redis.Get(ctx, geneIndexKey(geneSymbol)).Result()
	if err != nil {
		if err != redis.Nil {
			g.log.WithError(err).WithField("gene_symbol", geneSymbol).Debug("gene index redis lookup failed")
		}
		return "", false
	}
	g.front.Add(geneSymbol, v)
	return v, true
}

// Store records the geneSymbol -> ensemblID mapping. The map is append-only:
// callers should only ever write a value once resolved, never delete.
func (g *GeneIndex) Store(ctx context.Context, geneSymbol, ensemblID string) {
	g.front.Add(geneSymbol, ensemblID)
	if g.redis == nil {
		return
	}
	if err := g.redis.Set(ctx, geneIndexKey(geneSymbol), ensemblID, 30*24*time.Hour).Err(); err != nil {
		g.log.WithError(err).WithField("gene_symbol", geneSymbol).Debug("gene index redis store failed")
	}
}

func geneIndexKey(geneSymbol string) string {
	return "geneindex:" + geneSymbol
}
