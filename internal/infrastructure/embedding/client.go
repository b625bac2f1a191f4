// Package embedding calls an external text-embedding service over HTTP.
// The service exposes a single POST /embed endpoint that maps text to a
// dense float vector.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	patentapp "github.com/turtacn/patent-radar/internal/application/patent"
	"github.com/turtacn/patent-radar/internal/application/search"
	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/patent-radar/pkg/errors"
)

// Config holds embedding service settings.
type Config struct {
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

const (
	defaultBaseURL = "http://localhost:8100"
	defaultModel   = "patent-minilm-768"
	defaultTimeout = 15 * time.Second

	// maxInputRunes caps the text sent to the model service. Patent
	// abstracts fit comfortably; full claims text gets truncated.
	maxInputRunes = 8192
)

type embedRequest struct {
	Model string `json:"model"`
	Text  string `json:"text"`
}

type embedResponse struct {
	Vector []float32 `json:"vector"`
}

// Client implements the Embedder port used by the search and patent
// application services.
type Client struct {
	baseURL string
	model   string
	http    *http.Client
	logger  logging.Logger
}

var (
	_ search.Embedder    = (*Client)(nil)
	_ patentapp.Embedder = (*Client)(nil)
)

// NewClient builds an embedding client with defaults applied.
func NewClient(cfg Config, log logging.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  log.Named("embedding"),
	}
}

// Embed maps text to a dense vector via the model service.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, appErrors.New(appErrors.ErrCodeEmbeddingFailed, "embedding input is empty")
	}
	if runes := []rune(text); len(runes) > maxInputRunes {
		text = string(runes[:maxInputRunes])
	}

	body, err := json.Marshal(embedRequest{Model: c.model, Text: text})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "embedding request marshal failed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeEmbeddingFailed, "embedding request build failed")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeEmbeddingFailed, "embedding service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, appErrors.New(appErrors.ErrCodeEmbeddingFailed,
			fmt.Sprintf("embedding service returned %d: %s", resp.StatusCode, snippet))
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "embedding response decode failed")
	}
	if len(out.Vector) == 0 {
		return nil, appErrors.New(appErrors.ErrCodeEmbeddingFailed, "embedding service returned empty vector")
	}
	return out.Vector, nil
}
