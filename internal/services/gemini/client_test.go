package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"namearchive/internal/config"
	"namearchive/internal/namestore"
)

func testConfig(baseURL string) config.Gemini {
	return config.Gemini{
		APIKey:         "test",
		BaseURL:        baseURL,
		Model:          "demo-model",
		TimeoutSeconds: 5,
		MaxAttempts:    3,
	}
}

func modelResponse(t *testing.T, w http.ResponseWriter, text string) {
	t.Helper()
	payload := map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func TestValidateName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test" {
			t.Fatalf("missing api key in query: %s", r.URL.RawQuery)
		}
		modelResponse(t, w, `{"isValidName":false,"reason":"not a plausible name"}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	verdict, err := client.ValidateName(context.Background(), "Zzxqplm")
	if err != nil {
		t.Fatalf("ValidateName: %v", err)
	}
	if verdict.Admissible {
		t.Fatal("expected inadmissible verdict")
	}
	if verdict.Reason != "not a plausible name" {
		t.Fatalf("unexpected reason %q", verdict.Reason)
	}
}

func TestValidateNameCodeFence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		modelResponse(t, w, "```json\n{\"isValidName\":true,\"reason\":\"common name\"}\n```")
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	verdict, err := client.ValidateName(context.Background(), "Emma")
	if err != nil {
		t.Fatalf("ValidateName: %v", err)
	}
	if !verdict.Admissible {
		t.Fatal("expected admissible verdict")
	}
}

func TestGenerateAnchorsSanitizesOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		modelResponse(t, w, `{"points":{"1900":0,"1950":500.4,"2026":300,"1850":999,"2300":7,"1980":-12}}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	anchors, err := client.GenerateAnchors(context.Background(), "Aiden2")
	if err != nil {
		t.Fatalf("GenerateAnchors: %v", err)
	}

	want := namestore.AnchorSet{1900: 0, 1950: 500, 2026: 300, 1980: 0}
	if len(anchors) != len(want) {
		t.Fatalf("unexpected anchors %v", anchors)
	}
	for year, value := range want {
		if anchors[year] != value {
			t.Fatalf("anchor %d = %d, want %d", year, anchors[year], value)
		}
	}
}

func TestGenerateAnchorsBackfillsBoundaries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		modelResponse(t, w, `{"points":{"1940":120,"1990":80}}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	anchors, err := client.GenerateAnchors(context.Background(), "Mira")
	if err != nil {
		t.Fatalf("GenerateAnchors: %v", err)
	}
	if anchors[namestore.YearStart] != 120 {
		t.Fatalf("start boundary should copy the earliest year, got %d", anchors[namestore.YearStart])
	}
	if anchors[namestore.YearEnd] != 80 {
		t.Fatalf("end boundary should copy the latest year, got %d", anchors[namestore.YearEnd])
	}
}

func TestGenerateAnchorsEmptyPointsYieldZeroBoundaries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		modelResponse(t, w, `{"points":{}}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	anchors, err := client.GenerateAnchors(context.Background(), "Mira")
	if err != nil {
		t.Fatalf("GenerateAnchors: %v", err)
	}
	if anchors[namestore.YearStart] != 0 || anchors[namestore.YearEnd] != 0 {
		t.Fatalf("expected zero boundaries, got %v", anchors)
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		modelResponse(t, w, `{"isValidName":true,"reason":"ok"}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), WithSleeper(func(time.Duration) {}))
	verdict, err := client.ValidateName(context.Background(), "Emma")
	if err != nil {
		t.Fatalf("ValidateName: %v", err)
	}
	if !verdict.Admissible {
		t.Fatal("expected admissible verdict after retries")
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestRateLimitExhaustsToSentinel(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), WithSleeper(func(time.Duration) {}))
	_, err := client.ValidateName(context.Background(), "Emma")
	if !errors.Is(err, ErrUpstreamRateLimited) {
		t.Fatalf("expected ErrUpstreamRateLimited, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected retry budget to be spent, got %d attempts", calls.Load())
	}
}

func TestTimeoutExhaustsRetryBudget(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(testConfig(server.URL),
		WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}),
		WithSleeper(func(time.Duration) {}))

	_, err := client.ValidateName(context.Background(), "Emma")
	if !errors.Is(err, ErrUpstreamTimeout) {
		t.Fatalf("expected ErrUpstreamTimeout, got %v", err)
	}
	// Every per-attempt timeout must count against the retry budget, not end
	// the call early.
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestCallerCancellationStopsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := NewClient(testConfig(server.URL), WithSleeper(func(time.Duration) { cancel() }))

	_, err := client.ValidateName(ctx, "Emma")
	if err == nil {
		t.Fatal("expected an error after cancellation")
	}
	if calls.Load() != 1 {
		t.Fatalf("cancelled context must stop retries, got %d attempts", calls.Load())
	}
}

func TestClientErrorDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), WithSleeper(func(time.Duration) {}))
	_, err := client.ValidateName(context.Background(), "Emma")
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("client errors must not retry, got %d attempts", calls.Load())
	}
}

func TestMalformedContentDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		modelResponse(t, w, "sorry, I cannot help with that")
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), WithSleeper(func(time.Duration) {}))
	_, err := client.ValidateName(context.Background(), "Emma")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("malformed output must not retry, got %d attempts", calls.Load())
	}
}
