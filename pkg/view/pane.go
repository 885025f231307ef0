package view

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depview/pkg/fetch"
	"github.com/matzehuels/depview/pkg/graph"
	"github.com/matzehuels/depview/pkg/layout"
	"github.com/matzehuels/depview/pkg/observability"
	"github.com/matzehuels/depview/pkg/render"
)

// LoadingKey identifies the loading indicator text element.
const LoadingKey = "loading"

// DefaultBatch is the number of force steps run per loop turn.
const DefaultBatch = 10

// Options configure a Pane.
type Options struct {
	Canvas     render.Canvas
	Layout     layout.Kind
	Requires   int
	RequiredBy int
	// Steps is the force step budget; Batch the steps per loop turn.
	Steps  int
	Batch  int
	Params layout.Params
	Logger *log.Logger
}

// SetDefaults fills zero fields.
func (o *Options) SetDefaults() {
	if o.Canvas == (render.Canvas{}) {
		o.Canvas = render.DefaultCanvas()
	}
	if o.Steps <= 0 {
		o.Steps = layout.DefaultSteps
	}
	if o.Batch <= 0 {
		o.Batch = DefaultBatch
	}
	if o.Params == (layout.Params{}) {
		o.Params = layout.DefaultParams()
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// Pane is one visualization pane. Its methods are safe for concurrent use.
type Pane struct {
	fetcher fetch.Fetcher
	logger  *log.Logger
	scene   *render.Scene
	binder  *render.Binder

	issued atomic.Uint64
	stale  atomic.Uint64

	qmu   sync.Mutex
	queue []func()
	wake  chan struct{}
	quit  chan struct{}
	done  chan struct{}
	once  sync.Once

	smu      sync.Mutex
	status   Status
	terminal Frame
	subs     map[int]func(Frame)
	nextSub  int
	changed  chan struct{}

	// Loop-owned.
	opts      Options
	positions layout.Positions
}

// New creates a pane and starts its event loop. Call Close to stop it.
func New(f fetch.Fetcher, opts Options) *Pane {
	opts.SetDefaults()
	scene := render.NewScene(opts.Canvas)
	p := &Pane{
		fetcher: f,
		logger:  opts.Logger,
		scene:   scene,
		binder:  render.NewBinder(scene),
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		subs:    make(map[int]func(Frame)),
		changed: make(chan struct{}),
		opts:    opts,
	}
	go p.loop()
	return p
}

// Scene returns the pane's scene. Read it freely; only the pane mutates it.
func (p *Pane) Scene() *render.Scene { return p.scene }

// Status returns the current state.
func (p *Pane) Status() Status {
	p.smu.Lock()
	defer p.smu.Unlock()
	s := p.status
	s.Stale = p.stale.Load()
	return s
}

// Subscribe registers fn for every frame. fn runs on the event loop and
// must not block or call Wait.
func (p *Pane) Subscribe(fn func(Frame)) (cancel func()) {
	p.smu.Lock()
	defer p.smu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	return func() {
		p.smu.Lock()
		defer p.smu.Unlock()
		delete(p.subs, id)
	}
}

// ShowComponent requests the neighborhood of label and returns the request
// sequence number.
func (p *Pane) ShowComponent(ctx context.Context, label string) uint64 {
	seq := p.issued.Add(1)
	p.post(func() { p.begin(ctx, seq, label) })
	return seq
}

// SetLayout changes the strategy for subsequent requests.
func (p *Pane) SetLayout(k layout.Kind) {
	p.post(func() { p.opts.Layout = k })
}

// SetDepth changes the neighborhood bounds for subsequent requests.
func (p *Pane) SetDepth(requires, requiredBy int) {
	p.post(func() {
		p.opts.Requires = requires
		p.opts.RequiredBy = requiredBy
	})
}

// Reset tears down every element and forgets all positions. In-flight
// requests are discarded. It blocks until the loop has applied it and is
// meant to follow a model import.
func (p *Pane) Reset() {
	p.issued.Add(1)
	applied := make(chan struct{})
	p.post(func() {
		p.binder.Reset()
		p.scene.Clear()
		p.positions = nil
		p.setStatus(StateIdle, "", p.issued.Load())
		close(applied)
	})
	select {
	case <-applied:
	case <-p.done:
	}
}

// Wait blocks until request seq finishes and returns its terminal frame.
// It returns ErrStale if a newer request superseded seq.
func (p *Pane) Wait(ctx context.Context, seq uint64) (Frame, error) {
	for {
		p.smu.Lock()
		term, changed := p.terminal, p.changed
		p.smu.Unlock()

		switch {
		case term.Seq == seq:
			return term, nil
		case term.Seq > seq || p.issued.Load() > seq:
			return Frame{}, ErrStale
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return Frame{}, ctx.Err()
		case <-p.done:
			return Frame{}, ErrClosed
		}
	}
}

// Close stops the event loop. Pending work is dropped.
func (p *Pane) Close() error {
	p.once.Do(func() { close(p.quit) })
	<-p.done
	return nil
}

// =============================================================================
// Event loop
// =============================================================================

func (p *Pane) post(fn func()) {
	p.qmu.Lock()
	p.queue = append(p.queue, fn)
	p.qmu.Unlock()
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Pane) loop() {
	defer close(p.done)
	for {
		select {
		case <-p.quit:
			return
		case <-p.wake:
		}
		for {
			p.qmu.Lock()
			if len(p.queue) == 0 {
				p.qmu.Unlock()
				break
			}
			fn := p.queue[0]
			p.queue = p.queue[1:]
			p.qmu.Unlock()

			select {
			case <-p.quit:
				return
			default:
			}
			fn()
		}
	}
}

func (p *Pane) isStale(seq uint64) bool { return seq != p.issued.Load() }

func (p *Pane) discard(ctx context.Context, seq uint64, label string) {
	p.stale.Add(1)
	observability.View().OnStale(ctx, label, seq)
	p.logger.Debug("discarding stale result", "label", label, "seq", seq)
}

func (p *Pane) setStatus(s State, label string, seq uint64) {
	p.smu.Lock()
	p.status = Status{State: s, Label: label, Seq: seq}
	p.smu.Unlock()
}

func (p *Pane) publish(f Frame) {
	p.smu.Lock()
	p.status = Status{State: f.State, Label: f.Label, Seq: f.Seq}
	if f.Terminal {
		p.terminal = f
		close(p.changed)
		p.changed = make(chan struct{})
	}
	subs := make([]func(Frame), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.smu.Unlock()

	for _, fn := range subs {
		fn(f)
	}
}

// =============================================================================
// Request flow
// =============================================================================

type request struct {
	ctx   context.Context
	seq   uint64
	req   fetch.Request
	start time.Time
}

func (p *Pane) begin(ctx context.Context, seq uint64, label string) {
	if p.isStale(seq) {
		p.discard(ctx, seq, label)
		return
	}
	r := request{
		ctx: ctx,
		seq: seq,
		req: fetch.Request{
			Label:      label,
			Requires:   p.opts.Requires,
			RequiredBy: p.opts.RequiredBy,
			Layout:     p.opts.Layout,
		},
		start: time.Now(),
	}

	observability.View().OnShowStart(ctx, label, seq)
	p.scene.ShowText(LoadingKey, "Loading "+label, p.opts.Canvas.Center())
	p.publish(Frame{Seq: seq, Label: label, State: StateLoading})

	go func() {
		doc, found, err := p.fetcher.Neighborhood(ctx, r.req)
		p.post(func() { p.fetched(r, doc, found, err) })
	}()
}

func (p *Pane) fetched(r request, doc graph.Document, found bool, err error) {
	label := r.req.Label
	if p.isStale(r.seq) {
		p.discard(r.ctx, r.seq, label)
		return
	}

	switch {
	case err != nil:
		p.logger.Error("fetch failed", "label", label, "err", err)
		p.fail(r, Frame{Err: err})
		return
	case !found:
		p.logger.Warn("unknown component", "label", label)
		p.fail(r, Frame{NotFound: true})
		return
	}

	in := layout.Input{
		Nodes:  make([]layout.Node, 0, len(doc.Nodes)),
		Edges:  make([]layout.Edge, 0, len(doc.Edges)),
		Bounds: p.opts.Canvas.Inner(),
		Prior:  p.positions,
	}
	for _, n := range doc.Nodes {
		in.Nodes = append(in.Nodes, layout.Node{ID: n.ID, Root: n.Root})
	}
	for _, e := range doc.Edges {
		in.Edges = append(in.Edges, layout.Edge{From: e.Source, To: e.Target})
	}

	kind := p.opts.Layout
	var warning string
	if kind.Rooted() {
		dir, degraded := layout.SelectDirection(r.req.Requires, r.req.RequiredBy)
		in.Direction = dir
		if degraded {
			warning = layout.DegradedWarning(kind)
			p.logger.Warn(warning, "label", label)
		}
	}

	captions := make(map[string]string, len(doc.Nodes))
	for _, n := range doc.Nodes {
		captions[n.ID] = n.Caption
	}

	if kind == layout.KindForce {
		p.startForce(r, in, captions)
		return
	}

	hooks := observability.View()
	hooks.OnLayoutStart(r.ctx, kind.String(), len(in.Nodes))
	layoutStart := time.Now()
	res, err := layout.Compute(kind, in)
	hooks.OnLayoutComplete(r.ctx, kind.String(), time.Since(layoutStart), err)
	if err != nil {
		p.logger.Error("layout failed", "label", label, "layout", kind, "err", err)
		p.fail(r, Frame{Err: err, Warning: warning})
		return
	}
	if len(res.Unplaced) > 0 {
		p.logger.Debug("nodes unreachable from root", "label", label, "count", len(res.Unplaced))
	}

	unplaced := make(map[string]bool, len(res.Unplaced))
	for _, id := range res.Unplaced {
		unplaced[id] = true
	}
	nodes := make([]render.NodeDatum, 0, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if !unplaced[n.ID] {
			nodes = append(nodes, render.NodeDatum{ID: n.ID, Caption: n.Caption})
		}
	}
	diff := p.bind(r, nodes, res.Links, res.Positions)
	p.finish(r, Frame{Diff: diff, Warning: warning})
}

// fail returns the pane to Idle without touching bound elements.
func (p *Pane) fail(r request, f Frame) {
	p.scene.HideText(LoadingKey)
	f.Seq, f.Label, f.State, f.Terminal = r.seq, r.req.Label, StateIdle, true
	observability.View().OnShowComplete(r.ctx, r.req.Label, r.seq, StateIdle.String(), time.Since(r.start), f.Err)
	p.publish(f)
}

func (p *Pane) finish(r request, f Frame) {
	f.Seq, f.Label, f.State, f.Terminal = r.seq, r.req.Label, StateRendered, true
	observability.View().OnShowComplete(r.ctx, r.req.Label, r.seq, StateRendered.String(), time.Since(r.start), nil)
	p.publish(f)
}

func (p *Pane) bind(r request, nodes []render.NodeDatum, links []layout.Edge, pos layout.Positions) render.Diff {
	edges := make([]render.EdgeDatum, 0, len(links))
	for _, e := range links {
		edges = append(edges, render.EdgeDatum{Source: e.From, Target: e.To})
	}
	diff := p.binder.Bind(nodes, edges)
	p.scene.HideText(LoadingKey)
	p.binder.Reposition(pos)
	p.positions = pos
	observability.View().OnBind(r.ctx, len(diff.Created), len(diff.Kept), len(diff.Removed))
	return diff
}

// =============================================================================
// Force driver
// =============================================================================

type forceRun struct {
	request
	sim   *layout.Simulation
	state layout.State
	diff  render.Diff
}

func (p *Pane) startForce(r request, in layout.Input, captions map[string]string) {
	observability.View().OnLayoutStart(r.ctx, layout.KindForce.String(), len(in.Nodes))
	sim := layout.NewSimulation(in, p.opts.Params)
	st := sim.Init(in.Prior)

	nodes := make([]render.NodeDatum, 0, len(in.Nodes))
	for _, id := range sim.IDs() {
		nodes = append(nodes, render.NodeDatum{ID: id, Caption: captions[id]})
	}
	run := &forceRun{request: r, sim: sim, state: st}
	run.diff = p.bind(r, nodes, sim.Edges(), sim.Positions(st))
	p.publish(Frame{Seq: r.seq, Label: r.req.Label, State: StateRendered, Diff: run.diff})
	p.stepForce(run)
}

func (p *Pane) stepForce(run *forceRun) {
	if p.isStale(run.seq) {
		observability.View().OnLayoutComplete(run.ctx, layout.KindForce.String(), time.Since(run.start), context.Canceled)
		p.discard(run.ctx, run.seq, run.req.Label)
		return
	}
	for i := 0; i < p.opts.Batch && run.state.Step < p.opts.Steps; i++ {
		run.state = run.sim.Step(run.state)
	}
	pos := run.sim.Positions(run.state)
	p.binder.Reposition(pos)
	p.positions = pos

	if run.state.Step >= p.opts.Steps {
		observability.View().OnLayoutComplete(run.ctx, layout.KindForce.String(), time.Since(run.start), nil)
		p.finish(run.request, Frame{Diff: run.diff, Steps: run.state.Step})
		return
	}
	p.publish(Frame{Seq: run.seq, Label: run.req.Label, State: StateRendered, Steps: run.state.Step})
	p.post(func() { p.stepForce(run) })
}
