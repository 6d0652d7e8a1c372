package registry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testConfig(baseURL string) *Config {
	return NewConfig(
		WithBaseURL(baseURL),
		WithMaxRetries(3),
		WithRateLimitDelay(time.Millisecond),
		WithTransientDelay(time.Millisecond),
		WithSlowSourceDelay(10*time.Millisecond),
	)
}

func TestListProductCodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lecive-pripravky" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("obdobi") != "2025.07" {
			t.Errorf("Unexpected period %s", r.URL.Query().Get("obdobi"))
		}
		// Upstream mixes stringly and numeric codes.
		w.Write([]byte(`["0254045", 94648, "0094649"]`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	codes, err := client.ListProductCodes(context.Background())
	if err != nil {
		t.Fatalf("Failed to list codes: %v", err)
	}
	if len(codes) != 3 {
		t.Fatalf("Expected 3 codes, got %d", len(codes))
	}
	if codes[0] != "0254045" || codes[1] != "94648" {
		t.Fatalf("Expected codes preserved in order, got %v", codes)
	}
}

func TestListProductCodesUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	_, err = client.ListProductCodes(context.Background())
	if !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatalf("Expected ErrCatalogUnavailable, got %v", err)
	}
}

func TestGetProductDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lecive-pripravky/0254045" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"kodSUKL": 254045,
			"nazev": "PARALEN",
			"sila": "500MG",
			"registracniCislo": "07/098/72-C",
			"ATCkod": "N02BE01",
			"dddMnozstvi": 3,
			"ochrannePrvky": null
		}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	product, err := client.GetProductDetail(context.Background(), "0254045")
	if err != nil {
		t.Fatalf("Failed to get detail: %v", err)
	}
	if product == nil {
		t.Fatal("Expected a product")
	}
	if product.Code != "0254045" {
		t.Fatalf("Expected requested code, got %s", product.Code)
	}
	if product.Name != "PARALEN" {
		t.Fatalf("Expected PARALEN, got %s", product.Name)
	}
	if product.DDDAmount != "3" {
		t.Fatalf("Expected numeric field normalized to string, got %q", product.DDDAmount)
	}
	if product.SafetyFeatures != "" {
		t.Fatalf("Expected null field normalized to empty, got %q", product.SafetyFeatures)
	}
}

func TestGetProductDetailEmptyPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	product, err := client.GetProductDetail(context.Background(), "0254045")
	if err != nil {
		t.Fatalf("Expected empty payload to be soft, got %v", err)
	}
	if product != nil {
		t.Fatal("Expected nil product for empty payload")
	}
}

func TestGetProductDetailProtocolFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	_, err = client.GetProductDetail(context.Background(), "0254045")
	if !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatalf("Expected ErrCatalogUnavailable, got %v", err)
	}
}

func TestDownloadDocument(t *testing.T) {
	payload := []byte("%PDF-1.4 fake spc payload")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dokumenty/0254045/spc" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Write(payload)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	data, err := client.DownloadDocument(context.Background(), "0254045", "spc", false)
	if err != nil {
		t.Fatalf("Failed to download: %v", err)
	}
	if string(data) != string(payload) {
		t.Fatal("Expected payload to round-trip")
	}
}

func TestDownloadDocumentRateLimitExhaustion(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	data, err := client.DownloadDocument(context.Background(), "0254045", "spc", false)
	if err != nil {
		t.Fatalf("Expected exhausted rate limiting to be soft, got %v", err)
	}
	if len(data) != 0 {
		t.Fatal("Expected empty bytes after exhausted retries")
	}
	if got := attempts.Load(); got != 3 {
		t.Fatalf("Expected exactly 3 attempts, got %d", got)
	}
}

func TestDownloadDocumentFatalStatus(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	_, err = client.DownloadDocument(context.Background(), "0254045", "spc", false)
	if !errors.Is(err, ErrDocumentFetch) {
		t.Fatalf("Expected ErrDocumentFetch, got %v", err)
	}
	if got := attempts.Load(); got != 1 {
		t.Fatalf("Expected a single attempt for a fatal status, got %d", got)
	}
}

func TestDownloadDocumentTransientRecovery(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("payload"))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	data, err := client.DownloadDocument(context.Background(), "0254045", "spc", false)
	if err != nil {
		t.Fatalf("Failed to download: %v", err)
	}
	if string(data) != "payload" {
		t.Fatal("Expected payload after transient recovery")
	}
	if got := attempts.Load(); got != 3 {
		t.Fatalf("Expected 3 attempts, got %d", got)
	}
}

func TestDownloadDocumentSlowSourceDelay(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("payload"))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	start := time.Now()
	if _, err := client.DownloadDocument(context.Background(), "0254045", "spc", true); err != nil {
		t.Fatalf("Failed to download: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Fatalf("Expected slow-source pre-delay, elapsed %v", elapsed)
	}
}
