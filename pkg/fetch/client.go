package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/depview/pkg/cache"
	derrors "github.com/matzehuels/depview/pkg/errors"
	"github.com/matzehuels/depview/pkg/graph"
	"github.com/matzehuels/depview/pkg/httputil"
	"github.com/matzehuels/depview/pkg/observability"
)

const (
	httpTimeout     = 10 * time.Second
	defaultCacheTTL = 5 * time.Minute
)

// Client fetches documents from a depview server.
type Client struct {
	base    string
	http    *http.Client
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	backoff httputil.Backoff
	headers map[string]string
}

type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithCache stores successful responses in store for ttl.
func WithCache(store cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = store
		c.ttl = ttl
	}
}

func WithKeyer(k cache.Keyer) Option { return func(c *Client) { c.keyer = k } }

func WithBackoff(b httputil.Backoff) Option { return func(c *Client) { c.backoff = b } }

// WithHeaders adds headers to every request.
func WithHeaders(h map[string]string) Option { return func(c *Client) { c.headers = h } }

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if err := derrors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	base := strings.TrimRight(baseURL, "/")
	c := &Client{
		base:    base,
		http:    &http.Client{Timeout: httpTimeout},
		cache:   cache.NewNullCache(),
		ttl:     defaultCacheTTL,
		backoff: httputil.DefaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.keyer == nil {
		c.keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), "upstream:"+base+":")
	}
	return c, nil
}

// entry is a cached response body with the ETag it was served with.
type entry struct {
	ETag string          `json:"etag,omitempty"`
	Body json.RawMessage `json:"body"`
}

type response struct {
	body   []byte
	status int
	etag   string
}

// Neighborhood fetches GET /graph/present/{label}. A 404 response means
// the focus is unknown.
func (c *Client) Neighborhood(ctx context.Context, req Request) (graph.Document, bool, error) {
	if err := req.Validate(); err != nil {
		return graph.Document{}, false, err
	}
	key := c.keyer.NeighborhoodKey("", req.Label, cache.NeighborhoodKeyOpts{
		Requires:   req.Requires,
		RequiredBy: req.RequiredBy,
		Layout:     req.Layout.String(),
	})

	q := url.Values{}
	q.Set("requires", strconv.Itoa(req.Requires))
	q.Set("required_by", strconv.Itoa(req.RequiredBy))
	q.Set("layout", req.Layout.String())
	path := "/graph/present/" + url.PathEscape(req.Label) + "?" + q.Encode()

	var doc graph.Document
	found, err := c.fetchCached(ctx, "nb", key, path, func(body []byte) (err error) {
		doc, err = graph.ReadDocument(bytes.NewReader(body))
		return err
	})
	if err != nil {
		return graph.Document{}, false, derrors.Fetch(err, "neighborhood %q", req.Label)
	}
	return doc, found, nil
}

// Detail fetches GET /info/{label}. A 404 response decodes to a Detail
// with Found == false.
func (c *Client) Detail(ctx context.Context, label string) (graph.Detail, error) {
	if err := derrors.ValidateLabel(label); err != nil {
		return graph.Detail{}, err
	}
	key := c.keyer.DetailKey("", label)

	var d graph.Detail
	found, err := c.fetchCached(ctx, "info", key, "/info/"+url.PathEscape(label), func(body []byte) (err error) {
		d, err = graph.ReadDetail(bytes.NewReader(body))
		return err
	})
	if err != nil {
		return graph.Detail{}, derrors.Fetch(err, "detail %q", label)
	}
	if !found {
		return notFoundDetail(label), nil
	}
	return d, nil
}

// fetchCached loads path through the cache entry under key and passes the
// body to decode. A cached entry that carries an ETag is revalidated with
// If-None-Match; one without is served until it expires. found is false
// for a 404, which also drops the entry.
func (c *Client) fetchCached(ctx context.Context, keyType, key, path string, decode func([]byte) error) (found bool, err error) {
	var cached entry
	hit := cache.GetJSON(ctx, c.cache, key, &cached) == nil && len(cached.Body) > 0
	if hit && cached.ETag == "" {
		if err := decode(cached.Body); err == nil {
			observability.Cache().OnCacheHit(ctx, keyType)
			return true, nil
		}
		hit = false
	}
	if !hit {
		cached = entry{}
	}

	resp, err := c.get(ctx, path, cached.ETag)
	if err != nil {
		return false, err
	}
	switch resp.status {
	case http.StatusNotFound:
		observability.Cache().OnCacheMiss(ctx, keyType)
		if hit {
			_ = c.cache.Delete(ctx, key)
		}
		return false, nil
	case http.StatusNotModified:
		if !hit {
			return false, fmt.Errorf("%w: unexpected status 304", httputil.ErrNetwork)
		}
		if err := decode(cached.Body); err != nil {
			return false, err
		}
		observability.Cache().OnCacheHit(ctx, keyType)
		return true, nil
	}

	observability.Cache().OnCacheMiss(ctx, keyType)
	if err := decode(resp.body); err != nil {
		return false, err
	}
	c.store(ctx, keyType, key, entry{ETag: resp.etag, Body: resp.body})
	return true, nil
}

func (c *Client) store(ctx context.Context, keyType, key string, e entry) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, keyType, len(data))
	}
}

// get performs a GET with retries, sending etag as If-None-Match when set.
// It returns the response for 200, 304 and 404; every other outcome is an
// error.
func (c *Client) get(ctx context.Context, path, etag string) (response, error) {
	var resp response
	err := c.backoff.Retry(ctx, func() error {
		var err error
		resp, err = c.do(ctx, path, etag)
		return err
	})
	return resp, err
}

func (c *Client) do(ctx context.Context, path, etag string) (response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return response{}, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	host, route := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, http.MethodGet, host, route)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, http.MethodGet, host, route, err)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return response{}, err
		}
		return response{}, httputil.Retryable(fmt.Errorf("%w: %v", httputil.ErrNetwork, err))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, http.MethodGet, host, route, resp.StatusCode, time.Since(start))

	out := response{status: resp.StatusCode, etag: resp.Header.Get("ETag")}
	if err := checkStatus(resp.StatusCode); err != nil {
		return out, err
	}
	if out.body, err = io.ReadAll(resp.Body); err != nil {
		return out, httputil.Retryable(fmt.Errorf("%w: read body: %v", httputil.ErrNetwork, err))
	}
	return out, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK, code == http.StatusNotModified, code == http.StatusNotFound:
		return nil
	case code >= 500:
		return httputil.Retryable(fmt.Errorf("%w: status %d", httputil.ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", httputil.ErrNetwork, code)
	}
}

var _ Fetcher = (*Client)(nil)
