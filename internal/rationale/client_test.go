package rationale

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/depapp/rock-paper-scissors/internal/engine"
	"github.com/depapp/rock-paper-scissors/internal/models"
)

func testRequest() engine.RationaleRequest {
	return engine.RationaleRequest{
		Prediction:  models.Rock,
		PatternType: models.PatternFrequency,
		LastMoves:   []models.Symbol{models.Rock, models.Rock, models.Paper},
		Frequencies: map[models.Symbol]int{
			models.Rock:     2,
			models.Paper:    1,
			models.Scissors: 0,
		},
		RandomnessScore: 45.6,
	}
}

func newTestClient(baseURL, serverKey string) *Client {
	return New(Config{
		BaseURL: baseURL,
		Model:   "test-model",
		APIKey:  serverKey,
		Timeout: 2 * time.Second,
	}, zap.NewNop())
}

func TestGenerate_Success(t *testing.T) {
	var gotKey, gotVersion, gotPath string
	var gotBody apiRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"  your rock habit betrays you  "}]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "server-key")
	got, err := c.Generate(context.Background(), "", testRequest())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if got != "your rock habit betrays you" {
		t.Errorf("text = %q, want trimmed response text", got)
	}
	if gotKey != "server-key" {
		t.Errorf("x-api-key = %q, want server-key", gotKey)
	}
	if gotVersion != "2023-06-01" {
		t.Errorf("anthropic-version = %q", gotVersion)
	}
	if gotPath != "/messages" {
		t.Errorf("path = %q, want /messages", gotPath)
	}
	if gotBody.Model != "test-model" {
		t.Errorf("model = %q, want test-model", gotBody.Model)
	}
	if len(gotBody.Messages) != 1 || !strings.Contains(gotBody.Messages[0].Content, "rock") {
		t.Errorf("prompt missing prediction context: %+v", gotBody.Messages)
	}
}

func TestGenerate_PerCallKeyOverridesServerKey(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "server-key")
	if _, err := c.Generate(context.Background(), "caller-key", testRequest()); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if gotKey != "caller-key" {
		t.Errorf("x-api-key = %q, want caller-key", gotKey)
	}
}

func TestGenerate_MissingKey(t *testing.T) {
	c := newTestClient("http://localhost:0", "")

	_, err := c.Generate(context.Background(), "", testRequest())
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("error = %v, want ErrMissingAPIKey", err)
	}
}

func TestGenerate_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "k")
	_, err := c.Generate(context.Background(), "", testRequest())
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
	if !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "slow down") {
		t.Errorf("error = %v, want status and upstream message", err)
	}
}

func TestGenerate_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(`{"content":[{"type":"text","text":"too late"}]}`))
	}))
	defer srv.Close()
	defer close(release)

	c := New(Config{
		BaseURL: srv.URL,
		APIKey:  "k",
		Timeout: 50 * time.Millisecond,
	}, zap.NewNop())

	start := time.Now()
	_, err := c.Generate(context.Background(), "", testRequest())
	if err == nil {
		t.Fatal("expected error when the upstream outlives the client timeout")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Generate took %v, must fail at the configured timeout", elapsed)
	}
}

func TestGenerate_NoTextContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "k")
	if _, err := c.Generate(context.Background(), "", testRequest()); err == nil {
		t.Fatal("expected error for empty content")
	}
}

func TestGenerate_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "k")
	for i := 0; i < 10; i++ {
		if _, err := c.Generate(context.Background(), "", testRequest()); err == nil {
			t.Fatal("expected failure")
		}
	}

	// The breaker trips after 4 consecutive failures and sheds the rest
	// without touching the upstream.
	if calls > 4 {
		t.Errorf("upstream saw %d calls, want at most 4 before the circuit opens", calls)
	}
}
