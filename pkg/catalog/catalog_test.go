package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abrezinsky/heatroll/internal/logger"
)

func testLogger() logger.Logger {
	return logger.NewWithWriter(io.Discard, slog.LevelError, logger.FormatText)
}

// catalogServer serves a token endpoint and an image endpoint. Tokens are
// numbered so tests can tell a refresh from a cached token.
type catalogServer struct {
	*httptest.Server
	tokenCalls atomic.Int32
	imageCalls atomic.Int32
	expiresIn  int
	reject     atomic.Int32 // number of image requests to answer with 401
}

func newCatalogServer(t *testing.T) *catalogServer {
	t.Helper()
	cs := &catalogServer{expiresIn: 3600}
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm failed: %v", err)
		}
		if r.Form.Get("grant_type") != "client_credentials" {
			t.Errorf("expected client_credentials grant, got %q", r.Form.Get("grant_type"))
		}
		n := cs.tokenCalls.Add(1)
		json.NewEncoder(w).Encode(TokenResponse{
			AccessToken: "token-" + string(rune('0'+n)),
			ExpiresIn:   cs.expiresIn,
			TokenType:   "bearer",
		})
	})
	mux.HandleFunc("/covers/", func(w http.ResponseWriter, r *http.Request) {
		cs.imageCalls.Add(1)
		if cs.reject.Load() > 0 {
			cs.reject.Add(-1)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path == "/covers/missing.jpg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Path == "/covers/broken.jpg" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg-bytes"))
	})
	cs.Server = httptest.NewServer(mux)
	t.Cleanup(cs.Close)
	return cs
}

func (cs *catalogServer) client() *HTTPClient {
	return NewHTTPClient(Config{
		TokenURL:     cs.URL + "/oauth2/token",
		ImageBaseURL: cs.URL + "/covers",
		ClientID:     "client",
		ClientSecret: "secret",
	}, testLogger())
}

func TestHTTPClient_FetchCover_Success(t *testing.T) {
	cs := newCatalogServer(t)
	client := cs.client()

	cover, err := client.FetchCover(context.Background(), "co1abc")
	if err != nil {
		t.Fatalf("FetchCover failed: %v", err)
	}
	if string(cover.Data) != "jpeg-bytes" {
		t.Errorf("expected jpeg-bytes, got %q", cover.Data)
	}
	if cover.ContentType != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %q", cover.ContentType)
	}
}

func TestHTTPClient_TokenCachedUntilExpiry(t *testing.T) {
	cs := newCatalogServer(t)
	client := cs.client()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	client.SetClock(func() time.Time { return now })

	for i := 0; i < 3; i++ {
		if _, err := client.FetchCover(context.Background(), "co1abc"); err != nil {
			t.Fatalf("FetchCover failed: %v", err)
		}
	}
	if got := cs.tokenCalls.Load(); got != 1 {
		t.Errorf("expected 1 token request, got %d", got)
	}

	// Past expiry minus skew
	now = now.Add(time.Hour - tokenSkew + time.Second)
	if _, err := client.FetchCover(context.Background(), "co1abc"); err != nil {
		t.Fatalf("FetchCover failed: %v", err)
	}
	if got := cs.tokenCalls.Load(); got != 2 {
		t.Errorf("expected token refresh after expiry, got %d token requests", got)
	}
}

func TestHTTPClient_UnauthorizedRefreshesOnce(t *testing.T) {
	cs := newCatalogServer(t)
	client := cs.client()
	cs.reject.Store(1)

	if _, err := client.FetchCover(context.Background(), "co1abc"); err != nil {
		t.Fatalf("FetchCover failed: %v", err)
	}
	if got := cs.tokenCalls.Load(); got != 2 {
		t.Errorf("expected 2 token requests, got %d", got)
	}
	if got := cs.imageCalls.Load(); got != 2 {
		t.Errorf("expected 2 image requests, got %d", got)
	}
}

func TestHTTPClient_UnauthorizedTwiceFails(t *testing.T) {
	cs := newCatalogServer(t)
	client := cs.client()
	cs.reject.Store(2)

	if _, err := client.FetchCover(context.Background(), "co1abc"); err == nil {
		t.Fatal("expected error after second 401")
	}
	if got := cs.imageCalls.Load(); got != 2 {
		t.Errorf("expected exactly one retry, got %d image requests", got)
	}
}

func TestHTTPClient_FetchCover_Errors(t *testing.T) {
	cs := newCatalogServer(t)
	client := cs.client()

	tests := []struct {
		name     string
		ref      string
		notFound bool
	}{
		{"empty ref", "", true},
		{"missing", "missing", true},
		{"upstream failure", "broken", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.FetchCover(context.Background(), tt.ref)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, ErrCoverNotFound); got != tt.notFound {
				t.Errorf("errors.Is(ErrCoverNotFound) = %v, want %v (err: %v)", got, tt.notFound, err)
			}
		})
	}
}

func TestHTTPClient_TokenEndpointErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"invalid json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}},
		{"empty token", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"expires_in": 100}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewHTTPClient(Config{TokenURL: server.URL, ImageBaseURL: server.URL}, testLogger())
			if _, err := client.FetchCover(context.Background(), "co1abc"); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestHTTPClient_NoTokenURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("expected no Authorization header")
		}
		w.Write([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'})
	}))
	defer server.Close()

	client := NewHTTPClient(Config{ImageBaseURL: server.URL}, testLogger())
	cover, err := client.FetchCover(context.Background(), "co1abc")
	if err != nil {
		t.Fatalf("FetchCover failed: %v", err)
	}
	if cover.ContentType != "image/png" {
		t.Errorf("expected sniffed image/png, got %q", cover.ContentType)
	}
}

func TestMockClient(t *testing.T) {
	m := NewMockClient(WithCover("co1", []byte("img"), "image/jpeg"))

	cover, err := m.FetchCover(context.Background(), "co1")
	if err != nil {
		t.Fatalf("FetchCover failed: %v", err)
	}
	if string(cover.Data) != "img" {
		t.Errorf("expected img, got %q", cover.Data)
	}
	if _, err := m.FetchCover(context.Background(), "co2"); !errors.Is(err, ErrCoverNotFound) {
		t.Errorf("expected ErrCoverNotFound, got %v", err)
	}
	if got := m.Requests(); len(got) != 2 || got[1] != "co2" {
		t.Errorf("unexpected requests: %v", got)
	}

	boom := errors.New("boom")
	m = NewMockClient(WithFetchError(boom))
	if _, err := m.FetchCover(context.Background(), "co1"); err != boom {
		t.Errorf("expected boom, got %v", err)
	}
}
