package collaborators

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/repurposectl/repurposectl/internal/cache"
	"github.com/repurposectl/repurposectl/internal/resilience"
)

// LLMClient is the optional LLM text generator collaborator (prompt ->
// JSON), per §6. The core must tolerate missing/invalid responses:
// callers treat output as untrusted, parsing leniently (extract the first
// balanced '{...}') and falling back to deterministic templates on failure
// (§9 design note). No third-party LLM SDK appears anywhere in the
// example pack, so this client speaks plain HTTP+JSON against a
// configurable, provider-agnostic endpoint rather than importing a vendor
// SDK (documented in DESIGN.md).
type LLMClient struct {
	http    *httpClient
	res     *resilience.Client
	enabled bool
}

type LLMConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func NewLLMClient(cfg LLMConfig, cac *cache.CAC, log *logrus.Logger) *LLMClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	var headers map[string]string
	if cfg.APIKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + cfg.APIKey}
	}
	return &LLMClient{
		http:    newHTTPClient(cfg.BaseURL, cfg.Timeout, headers),
		res:     resilience.New(resilience.ClientConfig{Name: "llm"}, cac, log),
		enabled: cfg.BaseURL != "",
	}
}

// Enabled reports whether an LLM endpoint is configured.
func (c *LLMClient) Enabled() bool { return c.enabled }

// Generate sends prompt and attempts to parse the first balanced JSON object
// in the response into out. It returns false if the LLM is disabled, the
// call fails, or the response cannot be parsed — callers must fall back to
// a deterministic template in every such case.
func (c *LLMClient) Generate(ctx context.Context, prompt string, out any) bool {
	if !c.enabled {
		return false
	}
	promptSum := sha256.Sum256([]byte(prompt))
	params := map[string]any{"prompt_hash": hex.EncodeToString(promptSum[:])}
	empty := func() string { return "" }
	op := func(ctx context.Context) (string, error) {
		var resp struct {
			Text string `json:"text"`
		}
		req := map[string]any{"prompt": prompt}
		if err := c.http.postJSON(ctx, "/generate", req, &resp); err != nil {
			return "", err
		}
		return resp.Text, nil
	}
	text := resilience.Fetch(ctx, c.res, "llm/generate", params, op, empty)
	if text == "" {
		return false
	}
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return false
	}
	if err := json.NewDecoder(strings.NewReader(text[start:])).Decode(out); err != nil {
		return false
	}
	return true
}
