package fetch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/depview/pkg/cache"
	derrors "github.com/matzehuels/depview/pkg/errors"
	"github.com/matzehuels/depview/pkg/graph"
	"github.com/matzehuels/depview/pkg/httputil"
	"github.com/matzehuels/depview/pkg/layout"
)

var fastRetry = WithBackoff(httputil.Backoff{Attempts: 3, Delay: time.Millisecond})

func testServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, WithHTTPClient(srv.Client()), fastRetry)
	if err != nil {
		t.Fatal(err)
	}
	return srv, c
}

func TestClientNeighborhood(t *testing.T) {
	var gotPath, gotQuery string
	_, c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		json.NewEncoder(w).Encode(graph.Document{
			Nodes: []graph.Node{{ID: "a b", Caption: "a b", Root: true}, {ID: "c", Caption: "c"}},
			Edges: []graph.Edge{{Source: "a b", Target: "c", Type: graph.TypeRequires}},
		})
	})

	doc, found, err := c.Neighborhood(context.Background(), Request{Label: "a b", Requires: 2, RequiredBy: 0, Layout: layout.KindTree})
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if gotPath != "/graph/present/a b" {
		t.Errorf("path = %q", gotPath)
	}
	for _, want := range []string{"requires=2", "required_by=0", "layout=tree"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %s", gotQuery, want)
		}
	}
	if root, _ := doc.RootID(); root != "a b" {
		t.Errorf("root = %q", root)
	}
}

func TestClientNeighborhoodNotFound(t *testing.T) {
	_, c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"nodes":[],"edges":[]}`, http.StatusNotFound)
	})
	_, found, err := c.Neighborhood(context.Background(), Request{Label: "Z"})
	if err != nil || found {
		t.Errorf("found=%v err=%v, want not found without error", found, err)
	}
}

func TestClientDetailNotFound(t *testing.T) {
	_, c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"label":"Z","found":false}`))
	})
	d, err := c.Detail(context.Background(), "Z")
	if err != nil {
		t.Fatalf("not-found detail returned error: %v", err)
	}
	if d.Found || d.Label != "Z" || d.Requires == nil || d.RequiredBy == nil {
		t.Errorf("Detail = %+v", d)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	_, c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(graph.Detail{Label: "A", Found: true, Requires: []graph.Ref{}, RequiredBy: []graph.Ref{}})
	})
	d, err := c.Detail(context.Background(), "A")
	if err != nil || !d.Found {
		t.Fatalf("Detail = %+v, %v", d, err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestClientFetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"persistent 5xx", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"client error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadRequest) }},
		{"bad json", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("{")) }},
		{"dangling edge", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"nodes":[{"_id":"A","caption":"A"}],"edges":[{"_source":"A","_target":"X","type":"sw:requires"}]}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := testServer(t, tt.handler)
			_, _, err := c.Neighborhood(context.Background(), Request{Label: "A"})
			if !derrors.Is(err, derrors.ErrCodeFetch) {
				t.Errorf("err = %v, want FETCH_ERROR", err)
			}
		})
	}
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, _ := NewClient(url, fastRetry)
	_, err := c.Detail(context.Background(), "A")
	if !derrors.Is(err, derrors.ErrCodeFetch) {
		t.Errorf("err = %v, want FETCH_ERROR", err)
	}
}

func TestClientCaches(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(graph.Detail{Label: "A", Found: true, Requires: []graph.Ref{}, RequiredBy: []graph.Ref{}})
	}))
	defer srv.Close()

	store, _ := cache.NewMemoryCache(16)
	c, _ := NewClient(srv.URL, WithHTTPClient(srv.Client()), WithCache(store, time.Minute))

	for i := 0; i < 3; i++ {
		if _, err := c.Detail(context.Background(), "A"); err != nil {
			t.Fatal(err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("server called %d times, want 1", calls.Load())
	}
}

func TestClientRevalidatesTaggedEntries(t *testing.T) {
	var (
		mu    sync.Mutex
		tag   = `"v1"`
		dep   = "B"
		full  int
		calls int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		w.Header().Set("ETag", tag)
		if r.Header.Get("If-None-Match") == tag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		full++
		json.NewEncoder(w).Encode(graph.Detail{Label: "A", Found: true, Requires: []graph.Ref{{Label: dep}}, RequiredBy: []graph.Ref{}})
	}))
	defer srv.Close()

	store, _ := cache.NewMemoryCache(16)
	c, _ := NewClient(srv.URL, WithHTTPClient(srv.Client()), WithCache(store, time.Minute))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := c.Detail(ctx, "A")
		if err != nil || d.Requires[0].Label != "B" {
			t.Fatalf("Detail = %+v, %v", d, err)
		}
	}
	mu.Lock()
	if calls != 3 || full != 1 {
		t.Errorf("calls = %d, full responses = %d; want 3 and 1", calls, full)
	}
	tag, dep = `"v2"`, "Q"
	mu.Unlock()
	d, err := c.Detail(ctx, "A")
	if err != nil || d.Requires[0].Label != "Q" {
		t.Errorf("after change: Detail = %+v, %v", d, err)
	}
	mu.Lock()
	defer mu.Unlock()
	if full != 2 {
		t.Errorf("full responses = %d, want 2", full)
	}
}

func TestClientDropsEntryOnNotFound(t *testing.T) {
	var gone atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gone.Load() {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"nodes":[],"edges":[]}`))
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte(`{"nodes":[{"_id":"A","caption":"A","root":true}],"edges":[]}`))
	}))
	defer srv.Close()

	store, _ := cache.NewMemoryCache(16)
	c, _ := NewClient(srv.URL, WithHTTPClient(srv.Client()), WithCache(store, time.Minute))
	ctx := context.Background()

	if _, found, err := c.Neighborhood(ctx, Request{Label: "A"}); err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if store.Len() != 1 {
		t.Fatalf("cache holds %d entries, want 1", store.Len())
	}
	gone.Store(true)
	if _, found, err := c.Neighborhood(ctx, Request{Label: "A"}); err != nil || found {
		t.Errorf("found=%v err=%v, want not found", found, err)
	}
	if store.Len() != 0 {
		t.Errorf("cache holds %d entries after 404", store.Len())
	}
}

func TestNewClientValidatesURL(t *testing.T) {
	if _, err := NewClient("ftp://example.com"); err == nil {
		t.Error("expected error for non-http URL")
	}
}
