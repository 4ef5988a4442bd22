// Package rationale phrases predictions through an external LLM service.
// The call is strictly best-effort: a single attempt with a bounded
// timeout, no retries, and callers fall back to canned templates on any
// failure.
package rationale

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/depapp/rock-paper-scissors/internal/engine"
	"github.com/depapp/rock-paper-scissors/internal/models"
)

// ErrMissingAPIKey is returned when neither the per-call key nor the
// server-wide key is configured.
var ErrMissingAPIKey = errors.New("rationale: no api key available")

const (
	defaultBaseURL = "https://api.anthropic.com/v1"
	defaultModel   = "claude-3-5-haiku-latest"
	apiVersion     = "2023-06-01"
)

const systemPrompt = "You are a cocky but charming rock-paper-scissors AI. " +
	"Explain in about 40 words, in character, why you predict the player's next throw. " +
	"Reply with the explanation only."

// Config configures the rationale client.
type Config struct {
	BaseURL string
	Model   string
	// APIKey is the server-wide key, used when a request carries no
	// per-caller key. May be empty.
	APIKey  string
	Timeout time.Duration
}

// Client talks to an Anthropic-style messages endpoint. A circuit
// breaker sheds calls to a dead upstream so predictions degrade to the
// templates immediately instead of burning the per-call timeout.
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.SugaredLogger
}

var _ engine.RationaleGenerator = (*Client)(nil)

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}

	sugar := logger.Sugar()
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "rationale-api",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			sugar.Infow("Rationale circuit breaker state changed", "circuit", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		breaker:    breaker,
		logger:     sugar,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate performs one generation attempt. apiKey is the per-caller
// credential; when empty the server-wide key is used instead.
func (c *Client) Generate(ctx context.Context, apiKey string, req engine.RationaleRequest) (string, error) {
	key := apiKey
	if key == "" {
		key = c.apiKey
	}
	if key == "" {
		return "", ErrMissingAPIKey
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.send(ctx, key, buildPrompt(req))
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *Client) send(ctx context.Context, key, prompt string) (string, error) {
	body, err := json.Marshal(apiRequest{
		Model:     c.model,
		MaxTokens: 120,
		System:    systemPrompt,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", key)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("rationale API status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("rationale API status %d", resp.StatusCode)
	}

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	for _, block := range out.Content {
		if block.Type == "text" && block.Text != "" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", errors.New("rationale API returned no text content")
}

func buildPrompt(req engine.RationaleRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Predicted next throw: %s (detected pattern: %s).\n", req.Prediction, req.PatternType)

	if len(req.LastMoves) > 0 {
		recent := make([]string, 0, len(req.LastMoves))
		for _, s := range req.LastMoves {
			recent = append(recent, string(s))
		}
		fmt.Fprintf(&b, "Recent throws, oldest first: %s.\n", strings.Join(recent, ", "))
	}

	counts := make([]string, 0, len(models.SymbolOrder))
	for _, s := range models.SymbolOrder {
		counts = append(counts, fmt.Sprintf("%s=%d", s, req.Frequencies[s]))
	}
	fmt.Fprintf(&b, "Throw counts: %s.\n", strings.Join(counts, ", "))
	fmt.Fprintf(&b, "Randomness score: %.0f/100.", req.RandomnessScore)
	return b.String()
}
