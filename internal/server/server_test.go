package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/NivBraz/wordcheck-service/internal/config"
	"github.com/NivBraz/wordcheck-service/internal/logging"
	"github.com/NivBraz/wordcheck-service/internal/metrics"
	"github.com/NivBraz/wordcheck-service/internal/models"
	"github.com/NivBraz/wordcheck-service/pkg/wordbank"
)

// testServer builds a server over the vocabulary ["cat", "DOG", " Bird "].
func testServer(t *testing.T) *Server {
	t.Helper()

	wb, err := wordbank.New([]string{"cat", "DOG", " Bird "})
	if err != nil {
		t.Fatalf("Failed to build word bank: %v", err)
	}

	reg := prometheus.NewRegistry()

	srv, err := New(Deps{
		Config:     config.Default().Server,
		Logger:     logging.Discard(),
		Vocabulary: wb,
		Metrics:    metrics.MustNewMetrics(reg),
		Gatherer:   reg,
	})
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	return srv
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func validatePath(word string) string {
	return "/api/validate?" + url.Values{"word": {word}}.Encode()
}

func TestNew_RequiresDeps(t *testing.T) {
	wb, err := wordbank.New([]string{"cat"})
	if err != nil {
		t.Fatalf("Failed to build word bank: %v", err)
	}

	if _, err := New(Deps{Logger: logging.Discard()}); err == nil {
		t.Error("Expected error without vocabulary")
	}
	if _, err := New(Deps{Vocabulary: wb}); err == nil {
		t.Error("Expected error without logger")
	}
}

func TestHandleValidate(t *testing.T) {
	srv := testServer(t)

	tests := []struct {
		name   string
		target string
		want   bool
	}{
		{"lowercase member", validatePath("cat"), true},
		{"uppercase member", validatePath("CAT"), true},
		{"padded member", validatePath("  cat  "), true},
		{"trimmed source entry", validatePath("bird"), true},
		{"non member", validatePath("fish"), false},
		{"missing parameter", "/api/validate", false},
		{"empty parameter", "/api/validate?word=", false},
		{"whitespace parameter", validatePath("   "), false},
		{"repeated parameter uses first", "/api/validate?word=dog&word=fish", true},
		{"unicode", validatePath("ñandú"), false},
		{"unrelated parameter", "/api/validate?w=cat", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, srv.Handler(), tt.target)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}

			var body models.ValidateResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON body: %v", err)
			}
			if body.Valid != tt.want {
				t.Errorf("valid = %v, want %v", body.Valid, tt.want)
			}
		})
	}
}

func TestHandleValidate_WireFormat(t *testing.T) {
	srv := testServer(t)

	rec := get(t, srv.Handler(), validatePath("cat"))

	if got := strings.TrimSpace(rec.Body.String()); got != `{"valid":true}` {
		t.Errorf("body = %s, want {\"valid\":true}", got)
	}
}

func TestHandleValidate_CountsLookups(t *testing.T) {
	srv := testServer(t)
	h := srv.Handler()

	get(t, h, validatePath("cat"))
	get(t, h, validatePath("fish"))
	get(t, h, validatePath("fish"))

	body := get(t, h, "/metrics").Body.String()
	for _, want := range []string{
		`wordcheck_lookups_total{result="hit"} 1`,
		`wordcheck_lookups_total{result="miss"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}

func TestHandleWords(t *testing.T) {
	srv := testServer(t)

	rec := get(t, srv.Handler(), "/api/words")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var words []string
	if err := json.Unmarshal(rec.Body.Bytes(), &words); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	sort.Strings(words)
	if want := []string{"BIRD", "CAT", "DOG"}; !reflect.DeepEqual(words, want) {
		t.Errorf("words = %q, want %q", words, want)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := testServer(t)

	rec := get(t, srv.Handler(), "/healthz")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body models.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Status != "ok" || body.Words != 3 {
		t.Errorf("health = %+v, want status ok with 3 words", body)
	}
}

func TestCORS(t *testing.T) {
	srv := testServer(t)

	for _, target := range []string{validatePath("cat"), "/api/words"} {
		t.Run(target, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, target, nil)
			req.Header.Set("Origin", "http://game.example")
			rec := httptest.NewRecorder()

			srv.Handler().ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
				t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
			}
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/validate", nil)
	req.Header.Set("Origin", "http://127.0.0.1:8000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code >= 300 {
		t.Errorf("status = %d, want 2xx", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodGet) {
		t.Errorf("Access-Control-Allow-Methods = %q, want GET", got)
	}
}

func TestRequestID(t *testing.T) {
	srv := testServer(t)

	t.Run("generated", func(t *testing.T) {
		rec := get(t, srv.Handler(), "/api/words")
		if got := rec.Header().Get("X-Request-ID"); len(got) != 36 {
			t.Errorf("X-Request-ID = %q, want a UUID", got)
		}
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/words", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
			t.Errorf("X-Request-ID = %q, want abc-123", got)
		}
	})

	t.Run("oversized replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/words", nil)
		req.Header.Set("X-Request-ID", strings.Repeat("x", maxRequestIDLength+1))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if got := rec.Header().Get("X-Request-ID"); len(got) != 36 {
			t.Errorf("X-Request-ID = %q, want a UUID", got)
		}
	})
}

func TestUnknownRouteAndMethod(t *testing.T) {
	srv := testServer(t)

	if rec := get(t, srv.Handler(), "/api/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/words", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	srv := testServer(t)

	h := srv.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := get(t, h, "/")

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	var body models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Code != ErrCodeInternal {
		t.Errorf("code = %q, want %q", body.Code, ErrCodeInternal)
	}
}

func TestRequestMetrics(t *testing.T) {
	srv := testServer(t)
	h := srv.Handler()

	get(t, h, "/api/words")
	get(t, h, "/api/words")

	body := get(t, h, "/metrics").Body.String()
	want := `wordcheck_http_requests_total{method="GET",route="/api/words",status="200"} 2`
	if !strings.Contains(body, want) {
		t.Errorf("metrics output missing %s", want)
	}
}

func TestConcurrentRequests(t *testing.T) {
	srv := testServer(t)
	h := srv.Handler()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/validate?word=dog", nil))
				if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "true") {
					t.Errorf("unexpected response %d %s", rec.Code, rec.Body.String())
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestServe_Shutdown(t *testing.T) {
	srv := testServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/validate?word=cat")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}

	var body models.ValidateResponse
	err = json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if !body.Valid {
		t.Error("expected cat to be valid")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
