// Package cache implements the Content-Addressed Cache (CAC): a file-based
// store keyed by the canonical hash of {endpoint, params}, used by every
// external collaborator call (§4.1).
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// entry is the on-disk envelope every cached payload is wrapped in.
type entry struct {
	Data json.RawMessage `json:"data"`
}

// CAC is a file-based content-addressed cache. Reads are advisory: a miss or
// a read error never fails the caller. Writes are best-effort: a write
// failure is logged, not propagated.
type CAC struct {
	root string
	log  *logrus.Logger
}

// New constructs a CAC rooted at dir, creating it if necessary.
func New(dir string, log *logrus.Logger) (*CAC, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache root: %w", err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CAC{root: dir, log: log}, nil
}

// Key computes the hex digest of a canonicalized, key-sorted JSON encoding
// of {endpoint, params}. Key order in params never affects the result:
// Key(e, {"a":1,"b":2}) == Key(e, {"b":2,"a":1}). encoding/json already
// marshals map keys in sorted order, which is sufficient canonicalization
// here since params values are themselves JSON-marshalable primitives,
// slices, or nested maps.
func Key(endpoint string, params map[string]any) string {
	canonical, _ := json.Marshal(struct {
		Endpoint string         `json:"endpoint"`
		Params   map[string]any `json:"params"`
	}{Endpoint: endpoint, Params: params})
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

func (c *CAC) path(key string) string {
	return filepath.Join(c.root, key+".json")
}

// Get returns the cached payload for (endpoint, params), or (nil, false) on
// a miss or any read error.
func (c *CAC) Get(endpoint string, params map[string]any) (json.RawMessage, bool) {
	key := Key(endpoint, params)
	raw, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache entry unreadable, treating as miss")
		return nil, false
	}
	return e.Data, true
}

// Put stores payload for (endpoint, params). Errors are logged, not returned.
func (c *CAC) Put(endpoint string, params map[string]any, payload json.RawMessage) {
	key := Key(endpoint, params)
	buf, err := json.Marshal(entry{Data: payload})
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("failed to encode cache entry")
		return
	}
	if err := os.WriteFile(c.path(key), buf, 0o644); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("failed to write cache entry")
	}
}
