package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/depview/pkg/cache"
	derrors "github.com/matzehuels/depview/pkg/errors"
	dio "github.com/matzehuels/depview/pkg/io"
	"github.com/matzehuels/depview/pkg/server"
)

const sampleGraph = `{
  "nodes": {"web": {"label": "Web UI"}, "api": {}, "db": {}},
  "edges": {
    "web -> api": [{"edge": ["web", "api"]}],
    "api -> db": [{"edge": ["api", "db"]}]
  }
}`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// runCLI executes the root command with a config file holding cfg and
// returns everything written to the status output.
func runCLI(t *testing.T, cfg string, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	prev := out
	out = &buf
	defer func() { out = prev }()

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(append([]string{"--config", writeTemp(t, "config.toml", cfg)}, args...))
	root.SetOut(&buf)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestImportCommand(t *testing.T) {
	graph := writeTemp(t, "deps.json", sampleGraph)
	dot := filepath.Join(t.TempDir(), "deps.dot")

	got, err := runCLI(t, "", "import", graph, "-o", dot)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "3 components · 2 relations · 1 root") {
		t.Errorf("output = %q", got)
	}
	data, err := os.ReadFile(dot)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "digraph") {
		t.Errorf("dot output = %q", data)
	}
}

func TestImportCommandRejectsUnknownEndpoint(t *testing.T) {
	graph := writeTemp(t, "bad.json", `{"nodes": {"a": {}}, "edges": {"a -> b": [{"edge": ["a", "b"]}]}}`)
	_, err := runCLI(t, "", "import", graph)
	if !derrors.Is(err, derrors.ErrCodeImport) {
		t.Errorf("err = %v, want import error", err)
	}
}

func TestShowCommand(t *testing.T) {
	graph := writeTemp(t, "deps.json", sampleGraph)
	svgPath := filepath.Join(t.TempDir(), "api.svg")

	got, err := runCLI(t, "", "show", "-g", graph, "--layout", "tree", "--required-by", "0", "api", "-o", svgPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "cannot show both") {
		t.Errorf("unexpected degraded warning: %q", got)
	}
	svg, err := os.ReadFile(svgPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`id="node-api"`, `id="node-db"`, "<svg"} {
		if !strings.Contains(string(svg), want) {
			t.Errorf("svg missing %s", want)
		}
	}
	if strings.Contains(string(svg), `id="node-web"`) {
		t.Error("svg contains web although required-by is 0")
	}
}

func TestShowCommandDegradedWarning(t *testing.T) {
	graph := writeTemp(t, "deps.json", sampleGraph)
	got, err := runCLI(t, "[view]\nlayout = \"cluster\"\n", "show", "-g", graph, "api", "-o", filepath.Join(t.TempDir(), "a.svg"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "cannot show both 'requires' and 'required-by' when cluster layout is used") {
		t.Errorf("output = %q", got)
	}
}

func TestShowCommandUnknownComponent(t *testing.T) {
	graph := writeTemp(t, "deps.json", sampleGraph)
	_, err := runCLI(t, "", "show", "-g", graph, "nope", "-o", filepath.Join(t.TempDir(), "x.svg"))
	if err == nil || !strings.Contains(err.Error(), `"nope" not found`) {
		t.Errorf("err = %v", err)
	}
}

func TestShowCommandNeedsSource(t *testing.T) {
	_, err := runCLI(t, "", "show", "api")
	if err == nil || !strings.Contains(err.Error(), "no graph") {
		t.Errorf("err = %v", err)
	}
}

func TestInfoCommand(t *testing.T) {
	graph := writeTemp(t, "deps.json", sampleGraph)
	got, err := runCLI(t, "", "info", "--plain", "-g", graph, "api")
	if err != nil {
		t.Fatal(err)
	}
	want := "api\nRequires:\n  - db\nRequired by:\n  - web\n"
	if got != want {
		t.Errorf("info output:\n%q\nwant:\n%q", got, want)
	}
}

func TestInfoCommandRemote(t *testing.T) {
	m, fp, err := dio.Load(context.Background(), writeTemp(t, "deps.json", sampleGraph))
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(server.New(m, fp, server.Options{}))
	defer ts.Close()

	cfg := "[cache]\nbackend = \"memory\"\n"
	got, err := runCLI(t, cfg, "info", "--plain", "--remote", ts.URL, "db")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Requires:\n  none\n") || !strings.Contains(got, "  - api\n") {
		t.Errorf("info output = %q", got)
	}

	got, err = runCLI(t, cfg, "info", "--plain", "--remote", ts.URL, "ghost")
	if err == nil {
		t.Error("expected error for unknown component")
	}
	if !strings.Contains(got, "ghost (unknown component)") {
		t.Errorf("info output = %q", got)
	}
}

func TestCacheClearCommand(t *testing.T) {
	dir := t.TempDir()
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	fc.Set(ctx, "nb:1", []byte("{}"), 0)
	fc.Set(ctx, "info:1", []byte("{}"), 0)

	cfg := "[cache]\nbackend = \"file\"\ndir = \"" + filepath.ToSlash(dir) + "\"\n"
	got, err := runCLI(t, cfg, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Cleared 2 cached entries") {
		t.Errorf("output = %q", got)
	}
	if _, hit, _ := fc.Get(ctx, "nb:1"); hit {
		t.Error("entry survived clear")
	}

	got, err = runCLI(t, cfg, "cache", "path")
	if err != nil || strings.TrimSpace(got) != filepath.ToSlash(dir) {
		t.Errorf("cache path = %q, %v", got, err)
	}
}

func TestConfigCommand(t *testing.T) {
	got, err := runCLI(t, "[view]\nlayout = \"tree\"\n", "config")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, `layout = "tree"`) || !strings.Contains(got, "[cache]") {
		t.Errorf("config output = %q", got)
	}
}

func TestBadConfig(t *testing.T) {
	_, err := runCLI(t, "[view]\nlayout = \"radial\"\n", "config")
	if !derrors.Is(err, derrors.ErrCodeInvalidLayout) {
		t.Errorf("err = %v", err)
	}
}

func TestReload(t *testing.T) {
	path := writeTemp(t, "deps.json", sampleGraph)
	ctx := context.Background()
	m, fp, err := dio.Load(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	srv := server.New(m, fp, server.Options{})
	logger := newLogger(io.Discard, LogInfo)

	status := func(label string) int {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/info/"+label, nil))
		return rec.Code
	}
	if status("cache") != http.StatusNotFound {
		t.Fatal("cache should not exist yet")
	}

	os.WriteFile(path, []byte(`{"nodes": {"api": {}, "cache": {}}, "edges": {"x": [{"edge": ["api", "cache"]}]}}`), 0o644)
	if err := reload(ctx, srv, path, logger); err != nil {
		t.Fatal(err)
	}
	if status("cache") != http.StatusOK || status("web") != http.StatusNotFound {
		t.Error("reload did not replace the graph")
	}

	os.WriteFile(path, []byte(`{"nodes": {"a": {}}, "edges": {"x": [{"edge": ["a", "zzz"]}]}}`), 0o644)
	if err := reload(ctx, srv, path, logger); err == nil {
		t.Fatal("expected reload error")
	}
	if status("cache") != http.StatusOK {
		t.Error("failed reload replaced the graph")
	}
}

func TestImportCommandReportsCycles(t *testing.T) {
	graph := writeTemp(t, "cyclic.json", `{
  "nodes": {"a": {}, "b": {}},
  "edges": {"ab": [{"edge": ["a", "b"]}], "ba": [{"edge": ["b", "a"]}]}
}`)
	got, err := runCLI(t, "", "import", graph)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "requires cycle: 1 relation skipped by rooted layouts") || !strings.Contains(got, "b -> a") {
		t.Errorf("output = %q", got)
	}
}
