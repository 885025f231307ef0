package cli

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/depview/pkg/fetch"
	"github.com/matzehuels/depview/pkg/layout"
	"github.com/matzehuels/depview/pkg/panel"
	"github.com/matzehuels/depview/pkg/render"
	"github.com/matzehuels/depview/pkg/view"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	panelBorderStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// =============================================================================
// Messages
// =============================================================================

type frameMsg view.Frame

type detailMsg struct {
	label  string
	detail panel.Detail
	err    error
}

// waitFrame delivers the next pane frame to the program.
func waitFrame(frames <-chan view.Frame) tea.Cmd {
	return func() tea.Msg {
		f, ok := <-frames
		if !ok {
			return nil
		}
		return frameMsg(f)
	}
}

func fetchDetail(ctx context.Context, f fetch.Fetcher, label string) tea.Cmd {
	return func() tea.Msg {
		doc, err := f.Detail(ctx, label)
		return detailMsg{label: label, detail: panel.FromDocument(doc), err: err}
	}
}

// =============================================================================
// BrowseModel - Interactive neighborhood browser
// =============================================================================

// BrowseModel is the bubbletea model for the interactive browser. The
// pane owns the diagram; the model mirrors its node labels for selection
// and plots its scene as text.
type BrowseModel struct {
	ctx     context.Context
	pane    *view.Pane
	fetcher fetch.Fetcher
	frames  <-chan view.Frame

	Focus      string
	Layout     layout.Kind
	Requires   int
	RequiredBy int

	Labels []string
	Cursor int
	Frame  view.Frame
	Detail *panel.Detail
	Err    error

	Width  int
	Height int
}

// NewBrowseModel creates a browser over pane. frames must receive every
// frame the pane publishes.
func NewBrowseModel(ctx context.Context, pane *view.Pane, f fetch.Fetcher, frames <-chan view.Frame, opts view.Options, focus string) BrowseModel {
	return BrowseModel{
		ctx:        ctx,
		pane:       pane,
		fetcher:    f,
		frames:     frames,
		Focus:      focus,
		Layout:     opts.Layout,
		Requires:   opts.Requires,
		RequiredBy: opts.RequiredBy,
		Width:      100,
		Height:     30,
	}
}

func (m BrowseModel) Init() tea.Cmd {
	m.pane.ShowComponent(m.ctx, m.Focus)
	return waitFrame(m.frames)
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
	case frameMsg:
		return m.handleFrame(view.Frame(msg))
	case detailMsg:
		if msg.label == m.Focus {
			if msg.err != nil {
				m.Err = msg.err
			} else {
				m.Detail = &msg.detail
			}
		}
	}
	return m, nil
}

func (m BrowseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Labels)-1 {
			m.Cursor++
		}
	case "enter":
		if m.Cursor < len(m.Labels) {
			m.show(m.Labels[m.Cursor])
		}
	case "l":
		m.Layout = (m.Layout + 1) % 3
		m.pane.SetLayout(m.Layout)
		m.show(m.Focus)
	case "+", "=":
		m.Requires = min(m.Requires+1, 64)
		m.RequiredBy = min(m.RequiredBy+1, 64)
		m.pane.SetDepth(m.Requires, m.RequiredBy)
		m.show(m.Focus)
	case "-":
		m.Requires = max(m.Requires-1, 0)
		m.RequiredBy = max(m.RequiredBy-1, 0)
		m.pane.SetDepth(m.Requires, m.RequiredBy)
		m.show(m.Focus)
	}
	return m, nil
}

func (m *BrowseModel) show(label string) {
	m.Focus = label
	m.Detail = nil
	m.Err = nil
	m.pane.ShowComponent(m.ctx, label)
}

func (m BrowseModel) handleFrame(f view.Frame) (tea.Model, tea.Cmd) {
	m.Frame = f
	cmds := []tea.Cmd{waitFrame(m.frames)}
	if f.Label != m.Focus {
		return m, tea.Batch(cmds...)
	}

	m.Labels = nil
	for _, e := range m.pane.Scene().Elements() {
		if e.Kind == render.KindNode {
			m.Labels = append(m.Labels, e.Key)
		}
	}
	if i := slices.Index(m.Labels, m.Focus); i >= 0 && f.Terminal {
		m.Cursor = i
	}
	m.Cursor = min(m.Cursor, max(len(m.Labels)-1, 0))

	if f.Terminal {
		m.Err = f.Err
		if f.State == view.StateRendered || f.NotFound {
			cmds = append(cmds, fetchDetail(m.ctx, m.fetcher, m.Focus))
		}
	}
	return m, tea.Batch(cmds...)
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("depview"))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %s · %s · requires %d · required by %d · %s",
		m.Focus, m.Layout, m.Requires, m.RequiredBy, m.Frame.State)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ select  ⏎ focus  l layout  +/- depth  q quit"))
	b.WriteString("\n\n")

	plotW := max(m.Width*2/3-4, 20)
	plotH := max(m.Height-8, 8)
	plot := panelBorderStyle.Render(plotScene(m.pane.Scene(), plotW, plotH, m.Focus))

	side := m.sidebar()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, plot, " ", side))
	b.WriteString("\n")

	if m.Frame.Warning != "" {
		b.WriteString(StyleWarning.Render(iconWarning + " " + m.Frame.Warning))
		b.WriteString("\n")
	}
	if m.Err != nil {
		b.WriteString(styleIconError.Render(iconError + " " + m.Err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

func (m BrowseModel) sidebar() string {
	var b strings.Builder
	for i, label := range m.Labels {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := cursor + label
		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case label == m.Focus:
			b.WriteString(StyleHighlight.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if m.Detail != nil {
		b.WriteString(panel.TerminalTheme().Format(*m.Detail))
	}
	return panelBorderStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// =============================================================================
// Scene Plot
// =============================================================================

// plotScene draws the scene on a w×h character grid: edges as dots, nodes
// as bullets followed by their label, text elements centred.
func plotScene(scene *render.Scene, w, h int, focus string) string {
	grid := make([][]rune, h)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", w))
	}
	inner := scene.Canvas().Inner()
	cell := func(x, y float64) (int, int) {
		col := int(math.Round(x / math.Max(inner.Width, 1) * float64(w-1)))
		row := int(math.Round(y / math.Max(inner.Height, 1) * float64(h-1)))
		return min(max(col, 0), w-1), min(max(row, 0), h-1)
	}
	put := func(col, row int, r rune) {
		if row >= 0 && row < h && col >= 0 && col < w {
			grid[row][col] = r
		}
	}
	write := func(col, row int, s string) {
		for i, r := range []rune(s) {
			put(col+i, row, r)
		}
	}

	elements := scene.Elements()
	for _, e := range elements {
		if e.Kind != render.KindEdge {
			continue
		}
		c1, r1 := cell(e.Line.X1, e.Line.Y1)
		c2, r2 := cell(e.Line.X2, e.Line.Y2)
		n := max(abs(c2-c1), abs(r2-r1))
		for i := 1; i < n; i++ {
			t := float64(i) / float64(n)
			put(c1+int(math.Round(t*float64(c2-c1))), r1+int(math.Round(t*float64(r2-r1))), '·')
		}
	}
	for _, e := range elements {
		col, row := cell(e.Transform.X, e.Transform.Y)
		switch e.Kind {
		case render.KindNode:
			glyph := '●'
			if e.Key == focus {
				glyph = '◉'
			}
			put(col, row, glyph)
			write(col+1, row, e.Text)
		case render.KindText:
			write(col-len([]rune(e.Text))/2, row, e.Text)
		}
	}

	lines := make([]string, h)
	for i, r := range grid {
		lines[i] = string(r)
	}
	return strings.Join(lines, "\n")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
