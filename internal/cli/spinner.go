package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

// Spinner animates a status line on stderr until stopped or until its
// parent context ends.
type Spinner struct {
	w      io.Writer
	parent context.Context

	mu      sync.Mutex
	message string
	width   int

	stop     chan struct{}
	stopOnce sync.Once
	finished chan struct{}
}

func newSpinner(ctx context.Context, message string) *Spinner {
	return &Spinner{
		w:        os.Stderr,
		parent:   ctx,
		message:  message,
		stop:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	go s.run()
}

func (s *Spinner) run() {
	defer close(s.finished)
	tick := time.NewTicker(80 * time.Millisecond)
	defer tick.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-s.parent.Done():
			return
		case <-s.stop:
			return
		case <-tick.C:
			s.draw(spinnerFrames[frame%len(spinnerFrames)])
		}
	}
}

func (s *Spinner) draw(frame rune) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := fmt.Sprintf("%s %s", styleIconSpinner.Render(string(frame)), StyleDim.Render(s.message))
	fmt.Fprintf(s.w, "\r%s", line)
	s.width = max(s.width, len([]rune(s.message))+2)
}

// SetMessage replaces the text shown next to the spinner.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop ends the animation and erases the line. It is idempotent.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.finished

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
		s.width = 0
	}
}

// Cancelled reports whether the parent context ended.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}
