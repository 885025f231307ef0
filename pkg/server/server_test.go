package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/depview/pkg/cache"
	"github.com/matzehuels/depview/pkg/fetch"
	"github.com/matzehuels/depview/pkg/graph"
	"github.com/matzehuels/depview/pkg/layout"
	"github.com/matzehuels/depview/pkg/model"
	"github.com/matzehuels/depview/pkg/observability/prom"
)

func chainGraph() model.ExternalGraph {
	var g model.ExternalGraph
	for _, n := range []string{"A", "B", "C"} {
		g.AddNode(n, nil)
	}
	g.AddEdge("", "A", "B")
	g.AddEdge("", "B", "C")
	return g
}

func newTestServer(t *testing.T, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	m, err := model.FromExternal(chainGraph())
	if err != nil {
		t.Fatal(err)
	}
	if opts.Steps == 0 {
		opts.Steps = 20
	}
	s := New(m, "fp1", opts)
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return s, ts
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, body
}

func TestPresent(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	resp, body := get(t, ts.URL+"/graph/present/B?requires=1&required_by=1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var doc graph.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Nodes) != 3 || len(doc.Edges) != 2 {
		t.Errorf("doc = %+v", doc)
	}
	if root, _ := doc.RootID(); root != "B" {
		t.Errorf("root = %q", root)
	}
}

func TestPresentErrors(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/graph/present/Z", http.StatusNotFound, ""},
		{"/graph/present/A?requires=x", http.StatusBadRequest, "INVALID_INPUT"},
		{"/graph/present/A?required_by=-1", http.StatusBadRequest, "INVALID_INPUT"},
		{"/graph/present/A?layout=radial", http.StatusBadRequest, "INVALID_LAYOUT"},
	}
	for _, tt := range tests {
		resp, body := get(t, ts.URL+tt.path)
		if resp.StatusCode != tt.status {
			t.Errorf("%s: status = %d, want %d", tt.path, resp.StatusCode, tt.status)
		}
		if tt.code != "" && !strings.Contains(string(body), tt.code) {
			t.Errorf("%s: body %s missing %s", tt.path, body, tt.code)
		}
	}
}

func TestPresentCached(t *testing.T) {
	store, _ := cache.NewMemoryCache(16)
	_, ts := newTestServer(t, Options{Cache: store})

	get(t, ts.URL+"/graph/present/A?requires=1")
	get(t, ts.URL+"/graph/present/A?requires=1")
	get(t, ts.URL+"/graph/present/Z")
	if store.Len() != 1 {
		t.Errorf("cache holds %d entries, want 1", store.Len())
	}
}

func TestInfo(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	resp, body := get(t, ts.URL+"/info/B")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var d graph.Detail
	json.Unmarshal(body, &d)
	if !d.Found || len(d.Requires) != 1 || d.Requires[0].Label != "C" || len(d.RequiredBy) != 1 {
		t.Errorf("detail = %+v", d)
	}

	resp, body = get(t, ts.URL+"/info/Z")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown status = %d", resp.StatusCode)
	}
	d = graph.Detail{}
	if err := json.Unmarshal(body, &d); err != nil || d.Found || d.Label != "Z" {
		t.Errorf("unknown body = %s", body)
	}
}

func TestClientAgainstServer(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	c, err := fetch.NewClient(ts.URL, fetch.WithHTTPClient(ts.Client()))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	doc, found, err := c.Neighborhood(ctx, fetch.Request{Label: "B", Requires: 1, RequiredBy: 1, Layout: layout.KindTree})
	if err != nil || !found || len(doc.Nodes) != 3 {
		t.Errorf("Neighborhood = %+v, %v, %v", doc, found, err)
	}
	if _, found, err := c.Neighborhood(ctx, fetch.Request{Label: "Z"}); err != nil || found {
		t.Errorf("unknown: found=%v err=%v", found, err)
	}
	d, err := c.Detail(ctx, "Z")
	if err != nil || d.Found {
		t.Errorf("Detail(Z) = %+v, %v", d, err)
	}
}

func TestPresentEntityTag(t *testing.T) {
	s, ts := newTestServer(t, Options{})

	resp, _ := get(t, ts.URL+"/graph/present/A")
	if tag := resp.Header.Get("ETag"); tag != `"fp1"` {
		t.Fatalf("ETag = %q", tag)
	}

	conditional := func(path, tag string) int {
		req, _ := http.NewRequest(http.MethodGet, ts.URL+path, nil)
		req.Header.Set("If-None-Match", tag)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}
	if got := conditional("/graph/present/A", `"fp1"`); got != http.StatusNotModified {
		t.Errorf("present status = %d, want 304", got)
	}
	if got := conditional("/info/A", `"fp1"`); got != http.StatusNotModified {
		t.Errorf("info status = %d, want 304", got)
	}
	if got := conditional("/info/Z", `"fp1"`); got != http.StatusNotFound {
		t.Errorf("unknown info status = %d, want 404", got)
	}

	var g model.ExternalGraph
	g.AddNode("A", nil)
	if err := s.Import(g, "fp2"); err != nil {
		t.Fatal(err)
	}
	if got := conditional("/graph/present/A", `"fp1"`); got != http.StatusOK {
		t.Errorf("after import: status = %d, want 200", got)
	}
}

func TestCachingClientSeesImport(t *testing.T) {
	s, ts := newTestServer(t, Options{})
	store, _ := cache.NewMemoryCache(16)
	c, err := fetch.NewClient(ts.URL, fetch.WithHTTPClient(ts.Client()), fetch.WithCache(store, time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	req := fetch.Request{Label: "A", Requires: 1, Layout: layout.KindTree}

	ids := func() []string {
		t.Helper()
		doc, found, err := c.Neighborhood(ctx, req)
		if err != nil || !found {
			t.Fatalf("Neighborhood: found=%v err=%v", found, err)
		}
		var out []string
		for _, n := range doc.Nodes {
			out = append(out, n.ID)
		}
		return out
	}

	if got := ids(); !slices.Equal(got, []string{"A", "B"}) {
		t.Fatalf("before import: %v", got)
	}
	if got := ids(); !slices.Equal(got, []string{"A", "B"}) {
		t.Fatalf("cached: %v", got)
	}

	var g model.ExternalGraph
	g.AddNode("A", nil)
	g.AddNode("Q", nil)
	g.AddEdge("", "A", "Q")
	if err := s.Import(g, "fp2"); err != nil {
		t.Fatal(err)
	}

	if got := ids(); !slices.Equal(got, []string{"A", "Q"}) {
		t.Errorf("after import: %v, want [A Q]", got)
	}
	d, err := c.Detail(ctx, "A")
	if err != nil || len(d.Requires) != 1 || d.Requires[0].Label != "Q" {
		t.Errorf("Detail = %+v, %v", d, err)
	}
}

func TestSVG(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	resp, body := get(t, ts.URL+"/svg/A?requires=2&required_by=0&layout=tree&style=outline")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %q", ct)
	}
	for _, id := range []string{`id="node-A"`, `id="node-B"`, `id="node-C"`, "stroke-dasharray"} {
		if !strings.Contains(string(body), id) {
			t.Errorf("svg missing %s", id)
		}
	}

	resp, _ = get(t, ts.URL+"/svg/A?requires=1&required_by=1&layout=tree")
	if resp.Header.Get("X-Depview-Warning") == "" {
		t.Error("degraded layout warning header missing")
	}
	resp, _ = get(t, ts.URL+"/svg/Z")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown svg status = %d", resp.StatusCode)
	}
}

func TestMetrics(t *testing.T) {
	m := prom.New(nil)
	_, ts := newTestServer(t, Options{Metrics: m})
	resp, body := get(t, ts.URL+"/metrics")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "depview_") {
		t.Errorf("metrics status=%d body=%.200s", resp.StatusCode, body)
	}
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

// readUntil reads messages until match returns true.
func readUntil(t *testing.T, conn *websocket.Conn, match func(wsOutbound) bool) []wsOutbound {
	t.Helper()
	var seen []wsOutbound
	for {
		var out wsOutbound
		if err := conn.ReadJSON(&out); err != nil {
			t.Fatalf("read: %v (seen %d messages)", err, len(seen))
		}
		seen = append(seen, out)
		if match(out) {
			return seen
		}
	}
}

func TestWebSocketSession(t *testing.T) {
	s, ts := newTestServer(t, Options{Layout: layout.KindTree, Requires: 2})
	conn := dialWS(t, ts)

	readUntil(t, conn, func(o wsOutbound) bool { return o.Type == "ready" })
	if s.Sessions() != 1 {
		t.Errorf("sessions = %d", s.Sessions())
	}

	conn.WriteJSON(wsInbound{Type: "show", Label: "A"})
	msgs := readUntil(t, conn, func(o wsOutbound) bool { return o.Type == "frame" && o.Terminal })

	created := map[string]bool{}
	for _, m := range msgs {
		if m.Type == "op" && m.Op.Kind == "create" && m.Op.Element == "node" {
			created[m.Op.Key] = true
		}
	}
	for _, k := range []string{"A", "B", "C"} {
		if !created[k] {
			t.Errorf("no create op for %s", k)
		}
	}
	if last := msgs[len(msgs)-1]; last.State != "rendered" || last.Label != "A" {
		t.Errorf("terminal frame = %+v", last)
	}

	conn.WriteJSON(wsInbound{Type: "info", Label: "Z"})
	msgs = readUntil(t, conn, func(o wsOutbound) bool { return o.Type == "detail" })
	if d := msgs[len(msgs)-1]; !d.NotFound || d.Detail == nil || d.Detail.Label != "Z" {
		t.Errorf("detail = %+v", d)
	}

	conn.WriteJSON(wsInbound{Type: "layout", Layout: "radial"})
	msgs = readUntil(t, conn, func(o wsOutbound) bool { return o.Type == "error" })
	if msgs[len(msgs)-1].Code != "INVALID_LAYOUT" {
		t.Errorf("error = %+v", msgs[len(msgs)-1])
	}

	conn.WriteJSON(wsInbound{Type: "ping"})
	readUntil(t, conn, func(o wsOutbound) bool { return o.Type == "pong" })
}

func TestImportResetsSessions(t *testing.T) {
	s, ts := newTestServer(t, Options{Layout: layout.KindTree, Requires: 2})
	conn := dialWS(t, ts)
	readUntil(t, conn, func(o wsOutbound) bool { return o.Type == "ready" })

	conn.WriteJSON(wsInbound{Type: "show", Label: "A"})
	readUntil(t, conn, func(o wsOutbound) bool { return o.Type == "frame" && o.Terminal })

	var g model.ExternalGraph
	g.AddNode("X", nil)
	g.AddNode("Y", nil)
	g.AddEdge("", "X", "Y")
	if err := s.Import(g, "fp2"); err != nil {
		t.Fatal(err)
	}

	removed := 0
	readUntil(t, conn, func(o wsOutbound) bool {
		if o.Type == "op" && o.Op.Kind == "remove" {
			removed++
		}
		return removed == 5
	})

	resp, _ := get(t, ts.URL+"/info/X")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("new model not served: %d", resp.StatusCode)
	}

	var bad model.ExternalGraph
	bad.AddNode("P", nil)
	bad.AddEdge("", "P", "missing")
	if err := s.Import(bad, "fp3"); err == nil {
		t.Error("import with dangling edge succeeded")
	}
	if resp, _ := get(t, ts.URL+"/info/X"); resp.StatusCode != http.StatusOK {
		t.Error("failed import replaced the model")
	}
}
