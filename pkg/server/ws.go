package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	derrors "github.com/matzehuels/depview/pkg/errors"
	"github.com/matzehuels/depview/pkg/fetch"
	"github.com/matzehuels/depview/pkg/graph"
	"github.com/matzehuels/depview/pkg/layout"
	"github.com/matzehuels/depview/pkg/render"
	"github.com/matzehuels/depview/pkg/view"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// wsInbound is a client command.
type wsInbound struct {
	Type       string `json:"type"`
	Label      string `json:"label,omitempty"`
	Layout     string `json:"layout,omitempty"`
	Requires   *int   `json:"requires,omitempty"`
	RequiredBy *int   `json:"required_by,omitempty"`
}

// wsOutbound is a server message: a scene op, a pane frame, a detail or
// an error.
type wsOutbound struct {
	Type     string        `json:"type"`
	Op       *render.Op    `json:"op,omitempty"`
	Seq      uint64        `json:"seq,omitempty"`
	Label    string        `json:"label,omitempty"`
	State    string        `json:"state,omitempty"`
	Warning  string        `json:"warning,omitempty"`
	NotFound bool          `json:"not_found,omitempty"`
	Steps    int           `json:"steps,omitempty"`
	Terminal bool          `json:"terminal,omitempty"`
	Detail   *graph.Detail `json:"detail,omitempty"`
	Code     string        `json:"code,omitempty"`
	Message  string        `json:"message,omitempty"`
}

// handleWS runs one pane per connection. Commands:
//
//	{"type":"show","label":"B"}
//	{"type":"layout","layout":"tree"}
//	{"type":"depth","requires":1,"required_by":0}
//	{"type":"info","label":"B"}
//	{"type":"ping"}
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		s.logger.Warn("ws set read deadline", "err", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	writeCh := make(chan wsOutbound, 256)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(wsPingEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					cancel()
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	push := func(out wsOutbound) {
		select {
		case writeCh <- out:
		case <-ctx.Done():
		}
	}

	m, _ := s.snapshot()
	local := fetch.NewLocal(m)
	pane := view.New(local, view.Options{
		Canvas:     s.opts.Canvas,
		Layout:     s.opts.Layout,
		Requires:   s.opts.Requires,
		RequiredBy: s.opts.RequiredBy,
		Steps:      s.opts.Steps,
		Logger:     s.logger,
	})
	s.addSession(pane)
	defer func() {
		s.removeSession(pane)
		cancel()
		pane.Close()
		<-writerDone
	}()

	cancelOps := pane.Scene().Subscribe(func(op render.Op) {
		push(wsOutbound{Type: "op", Op: &op})
	})
	defer cancelOps()
	cancelFrames := pane.Subscribe(func(f view.Frame) {
		out := wsOutbound{
			Type:     "frame",
			Seq:      f.Seq,
			Label:    f.Label,
			State:    f.State.String(),
			Warning:  f.Warning,
			NotFound: f.NotFound,
			Steps:    f.Steps,
			Terminal: f.Terminal,
		}
		if f.Err != nil {
			out.Code = string(derrors.GetCode(f.Err))
			out.Message = derrors.UserMessage(f.Err)
		}
		push(out)
	})
	defer cancelFrames()

	push(wsOutbound{Type: "ready"})

	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("ws read", "err", err)
			}
			return
		}

		switch strings.TrimSpace(in.Type) {
		case "ping":
			push(wsOutbound{Type: "pong"})
		case "show":
			if err := derrors.ValidateLabel(in.Label); err != nil {
				push(errorOut(err))
				continue
			}
			seq := pane.ShowComponent(ctx, in.Label)
			push(wsOutbound{Type: "accepted", Seq: seq, Label: in.Label})
		case "layout":
			k, err := layout.ParseKind(in.Layout)
			if err != nil {
				push(errorOut(err))
				continue
			}
			pane.SetLayout(k)
		case "depth":
			req, reqBy := s.opts.Requires, s.opts.RequiredBy
			if in.Requires != nil {
				req = *in.Requires
			}
			if in.RequiredBy != nil {
				reqBy = *in.RequiredBy
			}
			if err := errors.Join(derrors.ValidateDepth("requires", req), derrors.ValidateDepth("required_by", reqBy)); err != nil {
				push(errorOut(err))
				continue
			}
			pane.SetDepth(req, reqBy)
		case "info":
			d, err := local.Detail(ctx, in.Label)
			if err != nil {
				push(errorOut(err))
				continue
			}
			push(wsOutbound{Type: "detail", Label: d.Label, NotFound: !d.Found, Detail: &d})
		default:
			push(wsOutbound{
				Type:    "error",
				Code:    string(derrors.ErrCodeUnsupported),
				Message: "unsupported type: " + in.Type,
			})
		}
	}
}

func errorOut(err error) wsOutbound {
	code := derrors.GetCode(err)
	if code == "" {
		code = derrors.ErrCodeInternal
	}
	return wsOutbound{Type: "error", Code: string(code), Message: derrors.UserMessage(err)}
}
