package reporter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func TestSearchProjects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/projects/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["sort_order"] != "asc" {
			t.Errorf("unexpected sort_order: %v", payload["sort_order"])
		}
		if payload["limit"] != float64(BatchLimit) {
			t.Errorf("unexpected limit: %v", payload["limit"])
		}
		w.Write([]byte(`{"results":[{"appl_id":100,"project_title":"Genome study"}]}`))
	}))
	defer server.Close()

	client := NewClient(NewClientParams{BaseURL: server.URL + "/", MaxRetries: 1})
	results, err := client.SearchProjects(context.Background(), SearchRequest{SortField: "appl_id"})
	if err != nil {
		t.Fatalf("search projects: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("unexpected result count: got %d, want 1", len(results))
	}
	if results[0]["project_title"] != "Genome study" {
		t.Fatalf("unexpected result: %v", results[0])
	}
}

func TestFetchBatchesOrdersByOffset(t *testing.T) {
	var mu sync.Mutex
	offsets := make(map[int]bool)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		offset := int(payload["offset"].(float64))
		mu.Lock()
		offsets[offset] = true
		mu.Unlock()
		fmt.Fprintf(w, `{"results":[{"offset":%d}]}`, offset)
	}))
	defer server.Close()

	client := NewClient(NewClientParams{BaseURL: server.URL + "/", MaxRetries: 1})
	results, err := client.FetchBatches(context.Background(), "publications/search", SearchRequest{SortField: "appl_ids"}, 3)
	if err != nil {
		t.Fatalf("fetch batches: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("unexpected result count: got %d, want 3", len(results))
	}
	for i, result := range results {
		wantOffset := float64(i * BatchLimit)
		if result["offset"] != wantOffset {
			t.Fatalf("batch %d out of order: got offset %v, want %v", i, result["offset"], wantOffset)
		}
	}
	for i := 0; i < 3; i++ {
		if !offsets[i*BatchLimit] {
			t.Fatalf("offset %d never requested", i*BatchLimit)
		}
	}
}

func TestSearchRetriesServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	client := NewClient(NewClientParams{BaseURL: server.URL + "/", MaxRetries: 3})
	_, err := client.SearchPublications(context.Background(), SearchRequest{})
	if err != nil {
		t.Fatalf("search publications: %v", err)
	}
	if calls != 3 {
		t.Fatalf("unexpected call count: got %d, want 3", calls)
	}
}
