package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/depview/pkg/cache"
	derrors "github.com/matzehuels/depview/pkg/errors"
	"github.com/matzehuels/depview/pkg/fetch"
	"github.com/matzehuels/depview/pkg/graph"
	"github.com/matzehuels/depview/pkg/layout"
	"github.com/matzehuels/depview/pkg/model"
	"github.com/matzehuels/depview/pkg/observability"
	"github.com/matzehuels/depview/pkg/render/sink"
	"github.com/matzehuels/depview/pkg/view"
)

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handlePresent(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var (
		body        []byte
		hit         bool
		tag         string
		notModified bool
	)
	s.readModel(func(m *model.Model, fp string) {
		tag = entityTag(fp)
		if notModified = tag != "" && r.Header.Get("If-None-Match") == tag; notModified {
			return
		}
		key := s.keyer.NeighborhoodKey(fp, req.Label, cache.NeighborhoodKeyOpts{
			Requires:   req.Requires,
			RequiredBy: req.RequiredBy,
			Layout:     req.Layout.String(),
		})
		body, hit, err = cache.Load(r.Context(), s.opts.Cache, key, s.opts.CacheTTL, func(context.Context) ([]byte, error) {
			doc, ok := graph.Present(m, req.Label, req.Requires, req.RequiredBy)
			if !ok {
				return nil, cache.ErrNotFound
			}
			var buf bytes.Buffer
			if err := graph.WriteDocument(doc, &buf); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		})
	})
	if notModified {
		writeNotModified(w, tag)
		return
	}
	s.recordCache(r.Context(), "nb", hit, len(body))
	switch {
	case errors.Is(err, cache.ErrNotFound):
		writeJSON(w, http.StatusNotFound, graph.Document{Nodes: []graph.Node{}, Edges: []graph.Edge{}})
	case err != nil:
		writeError(w, err)
	default:
		setEntityTag(w, tag)
		writeRaw(w, http.StatusOK, body)
	}
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "label")
	if err := derrors.ValidateLabel(label); err != nil {
		writeError(w, err)
		return
	}

	var (
		d   graph.Detail
		tag string
	)
	s.readModel(func(m *model.Model, fp string) {
		d = graph.Describe(m, label)
		tag = entityTag(fp)
	})
	if !d.Found {
		writeJSON(w, http.StatusNotFound, d)
		return
	}
	if tag != "" && r.Header.Get("If-None-Match") == tag {
		writeNotModified(w, tag)
		return
	}
	setEntityTag(w, tag)
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	m, _ := s.snapshot()
	p := view.New(fetch.NewLocal(m), view.Options{
		Canvas:     s.opts.Canvas,
		Layout:     req.Layout,
		Requires:   req.Requires,
		RequiredBy: req.RequiredBy,
		Steps:      s.opts.Steps,
		Logger:     s.logger,
	})
	defer p.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	frame, err := p.Wait(ctx, p.ShowComponent(ctx, req.Label))
	switch {
	case err != nil:
		writeError(w, derrors.Wrap(derrors.ErrCodeTimeout, err, "render %q", req.Label))
		return
	case frame.NotFound:
		writeError(w, derrors.New(derrors.ErrCodeNotFound, "unknown component %q", req.Label))
		return
	case frame.Err != nil:
		writeError(w, frame.Err)
		return
	}
	if frame.Warning != "" {
		w.Header().Set("X-Depview-Warning", frame.Warning)
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(sink.RenderSVG(p.Scene(), sink.WithStyle(sink.StyleByName(r.URL.Query().Get("style")))))
}

// parseRequest reads the label path parameter and the neighborhood query.
func (s *Server) parseRequest(r *http.Request) (fetch.Request, error) {
	q := r.URL.Query()
	req := fetch.Request{
		Label:      chi.URLParam(r, "label"),
		Requires:   s.opts.Requires,
		RequiredBy: s.opts.RequiredBy,
		Layout:     s.opts.Layout,
	}
	var err error
	if req.Requires, err = intParam(q.Get("requires"), req.Requires); err != nil {
		return req, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "requires")
	}
	if req.RequiredBy, err = intParam(q.Get("required_by"), req.RequiredBy); err != nil {
		return req, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "required_by")
	}
	if v := q.Get("layout"); v != "" {
		if req.Layout, err = layout.ParseKind(v); err != nil {
			return req, err
		}
	}
	return req, req.Validate()
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func (s *Server) recordCache(ctx context.Context, keyType string, hit bool, size int) {
	hooks := observability.Cache()
	if hit {
		hooks.OnCacheHit(ctx, keyType)
		return
	}
	hooks.OnCacheMiss(ctx, keyType)
	if size > 0 {
		hooks.OnCacheSet(ctx, keyType, size)
	}
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Code    derrors.Code `json:"code"`
	Message string       `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeRaw(w, status, append(data, '\n'))
}

// entityTag is the ETag for documents derived from the model with
// fingerprint fp. An empty fingerprint yields no tag.
func entityTag(fp string) string {
	if fp == "" {
		return ""
	}
	return `"` + fp + `"`
}

func setEntityTag(w http.ResponseWriter, tag string) {
	if tag != "" {
		w.Header().Set("ETag", tag)
	}
}

func writeNotModified(w http.ResponseWriter, tag string) {
	setEntityTag(w, tag)
	w.WriteHeader(http.StatusNotModified)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, err error) {
	code := derrors.GetCode(err)
	if code == "" {
		code = derrors.ErrCodeInternal
	}
	writeJSON(w, statusFor(code), errorBody{Code: code, Message: derrors.UserMessage(err)})
}

func statusFor(code derrors.Code) int {
	switch code {
	case derrors.ErrCodeInvalidInput, derrors.ErrCodeInvalidLabel, derrors.ErrCodeInvalidLayout, derrors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case derrors.ErrCodeNotFound:
		return http.StatusNotFound
	case derrors.ErrCodeLayout:
		return http.StatusUnprocessableEntity
	case derrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case derrors.ErrCodeFetch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
