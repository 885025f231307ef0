package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func exerciseCache(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "absent"); err != nil || hit {
		t.Fatalf("Get(absent) hit=%v err=%v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v1"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v1" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v2"), time.Hour); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if data, _, _ := c.Get(ctx, "k"); string(data) != "v2" {
		t.Errorf("after overwrite got %q", data)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	exerciseCache(t, c)

	ctx := context.Background()
	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	n, err := c.Clear()
	if err != nil || n != 2 {
		t.Errorf("Clear = %d, %v; want 2", n, err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
}

func TestFileCacheExpired(t *testing.T) {
	c, _ := NewFileCache(t.TempDir())
	ctx := context.Background()
	_ = c.Set(ctx, "k", []byte("v"), time.Nanosecond)
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}
}

func TestMemoryCache(t *testing.T) {
	c, err := NewMemoryCache(0)
	if err != nil {
		t.Fatal(err)
	}
	exerciseCache(t, c)
}

func TestMemoryCacheEviction(t *testing.T) {
	ctx := context.Background()
	c, _ := NewMemoryCache(2)
	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	_, _, _ = c.Get(ctx, "a")
	_ = c.Set(ctx, "c", []byte("3"), 0)

	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Error("least recently used entry not evicted")
	}
	if _, hit, _ := c.Get(ctx, "a"); !hit {
		t.Error("recently used entry evicted")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d", c.Len())
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c, _ := NewMemoryCache(8)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "k", []byte("v"), time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("fresh entry missed")
	}
	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}
	if c.Len() != 0 {
		t.Error("expired entry not removed")
	}
}

func TestMemoryCacheCopies(t *testing.T) {
	ctx := context.Background()
	c, _ := NewMemoryCache(8)
	buf := []byte("abc")
	_ = c.Set(ctx, "k", buf, 0)
	buf[0] = 'x'
	got, _, _ := c.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored data aliased caller buffer: %q", got)
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c, _ := NewMemoryCache(8)

	type doc struct{ Label string }
	var out doc
	if err := GetJSON(ctx, c, "k", &out); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("GetJSON on empty = %v, want ErrCacheMiss", err)
	}
	if err := SetJSON(ctx, c, "k", doc{Label: "A"}, 0); err != nil {
		t.Fatal(err)
	}
	if err := GetJSON(ctx, c, "k", &out); err != nil || out.Label != "A" {
		t.Errorf("GetJSON = %+v, %v", out, err)
	}

	_ = c.Set(ctx, "bad", []byte("{"), 0)
	if err := GetJSON(ctx, c, "bad", &out); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("corrupt entry: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "bad"); hit {
		t.Error("corrupt entry not deleted")
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	c, _ := NewMemoryCache(8)
	calls := 0
	fetch := func(context.Context) ([]byte, error) {
		calls++
		return []byte("doc"), nil
	}

	data, hit, err := Load(ctx, c, "k", 0, fetch)
	if err != nil || hit || string(data) != "doc" {
		t.Fatalf("first Load = %q, %v, %v", data, hit, err)
	}
	data, hit, err = Load(ctx, c, "k", 0, fetch)
	if err != nil || !hit || string(data) != "doc" {
		t.Fatalf("second Load = %q, %v, %v", data, hit, err)
	}
	if calls != 1 {
		t.Errorf("fetch called %d times", calls)
	}

	_, _, err = Load(ctx, c, "other", 0, func(context.Context) ([]byte, error) {
		return nil, ErrNotFound
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("fetch error not propagated: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "other"); hit {
		t.Error("failed fetch was cached")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		opts    Options
		want    string
		wantErr bool
	}{
		{Options{}, "*cache.NullCache", false},
		{Options{Backend: BackendMemory}, "*cache.MemoryCache", false},
		{Options{Backend: BackendFile, Dir: t.TempDir()}, "*cache.FileCache", false},
		{Options{Backend: BackendFile}, "", true},
		{Options{Backend: "tape"}, "", true},
	}
	for _, tt := range tests {
		c, err := Open(ctx, tt.opts)
		if (err != nil) != tt.wantErr {
			t.Errorf("Open(%+v) err = %v", tt.opts, err)
			continue
		}
		if err == nil {
			if got := typeName(c); got != tt.want {
				t.Errorf("Open(%+v) = %s, want %s", tt.opts, got, tt.want)
			}
			c.Close()
		}
	}
}

func typeName(c Cache) string {
	switch c.(type) {
	case *NullCache:
		return "*cache.NullCache"
	case *MemoryCache:
		return "*cache.MemoryCache"
	case *FileCache:
		return "*cache.FileCache"
	case *RedisCache:
		return "*cache.RedisCache"
	}
	return "?"
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash not deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs collide")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.HTTPKey("info", "A"); got != "http:info:A" {
		t.Errorf("HTTPKey = %s", got)
	}

	base := NeighborhoodKeyOpts{Requires: 1, RequiredBy: 1, Layout: "force"}
	nk := k.NeighborhoodKey("g1", "A", base)
	if !strings.HasPrefix(nk, "nb:") {
		t.Errorf("NeighborhoodKey = %s", nk)
	}
	variants := []NeighborhoodKeyOpts{
		{Requires: 2, RequiredBy: 1, Layout: "force"},
		{Requires: 1, RequiredBy: 0, Layout: "force"},
		{Requires: 1, RequiredBy: 1, Layout: "tree"},
	}
	for _, v := range variants {
		if k.NeighborhoodKey("g1", "A", v) == nk {
			t.Errorf("opts %+v collide with %+v", v, base)
		}
	}
	if k.NeighborhoodKey("g2", "A", base) == nk {
		t.Error("graph fingerprint ignored")
	}
	if k.DetailKey("g1", "A") == k.DetailKey("g1", "B") {
		t.Error("DetailKey ignores label")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "up:1:")
	if got := scoped.HTTPKey("info", "A"); got != "up:1:http:info:A" {
		t.Errorf("HTTPKey = %s", got)
	}
	if got := scoped.DetailKey("g", "A"); !strings.HasPrefix(got, "up:1:info:") {
		t.Errorf("DetailKey = %s", got)
	}
	if got := scoped.NeighborhoodKey("g", "A", NeighborhoodKeyOpts{}); !strings.HasPrefix(got, "up:1:nb:") {
		t.Errorf("NeighborhoodKey = %s", got)
	}

	if got := NewScopedKeyer(nil, "p:").HTTPKey("x", "y"); got != "p:http:x:y" {
		t.Errorf("nil inner: %s", got)
	}
}
