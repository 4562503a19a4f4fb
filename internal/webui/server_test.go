package webui

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kayz/osprey/internal/classify"
	"github.com/kayz/osprey/internal/services"
)

type fakeService struct{}

func (fakeService) Name() string { return "Fake" }

func (fakeService) Accepts(tag classify.Tag) bool {
	return tag.Category == classify.CategorySocial
}

func (fakeService) Search(_ context.Context, query string, tag classify.Tag) services.Result {
	return services.Result{
		Service:   "Fake",
		Query:     query,
		QueryType: tag.Subtype,
		Success:   true,
		Data:      map[string]any{"echo": query},
		Timestamp: time.Now(),
	}
}

func newTestServer() *Server {
	registry := services.NewRegistry()
	registry.Register(fakeService{})
	return NewServer(services.NewDispatcher(registry))
}

func TestStatusEndpoint(t *testing.T) {
	handler := newTestServer().Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "\"ok\":true") {
		t.Fatalf("unexpected status payload: %s", rr.Body.String())
	}
}

func TestSearchRejectsBadRequests(t *testing.T) {
	handler := newTestServer().Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"query":""}`))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty query, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"query":"x","tags":["garbage"]}`))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed tag, got %d", rr.Code)
	}
}

func startSearch(t *testing.T, handler http.Handler, payload string) searchResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/search", bytes.NewReader([]byte(payload)))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp searchResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID == "" {
		t.Fatal("expected a search id")
	}
	return resp
}

func waitForCompletion(t *testing.T, handler http.Handler, id string) services.Search {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		req := httptest.NewRequest(http.MethodGet, "/api/search/"+id, nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}

		var search services.Search
		if err := json.Unmarshal(rr.Body.Bytes(), &search); err != nil {
			t.Fatal(err)
		}
		if search.State != services.StateRunning {
			return search
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("search never settled")
	return services.Search{}
}

func TestSearchLifecycle(t *testing.T) {
	handler := newTestServer().Handler()

	resp := startSearch(t, handler, `{"query":"someone","tags":["social::username"]}`)
	search := waitForCompletion(t, handler, resp.ID)

	if search.State != services.StateCompleted {
		t.Fatalf("expected completed, got %s (%s)", search.State, search.Error)
	}
	if len(search.Results) != 1 || search.Results[0].Service != "Fake" {
		t.Fatalf("unexpected results: %+v", search.Results)
	}
}

func TestDownloadEndpoints(t *testing.T) {
	handler := newTestServer().Handler()
	resp := startSearch(t, handler, `{"query":"someone","tags":["social::username"]}`)
	waitForCompletion(t, handler, resp.ID)

	req := httptest.NewRequest(http.MethodGet, "/api/search/"+resp.ID+"/download/json", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("unexpected content type %q", ct)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/search/"+resp.ID+"/download/csv", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.HasPrefix(rr.Body.String(), "service,query,query_type") {
		t.Fatalf("unexpected CSV body: %s", rr.Body.String())
	}
}

func TestUnknownSearchID(t *testing.T) {
	handler := newTestServer().Handler()
	req := httptest.NewRequest(http.MethodGet, "/api/search/not-a-real-id", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
