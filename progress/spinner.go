package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ASCII frames keep the spinner readable on terminals without good
// Unicode support.
const spinnerFrames = `|/-\`

const spinnerInterval = 120 * time.Millisecond

// Spinner animates an indeterminate status line by redrawing it in place on
// a fixed interval. The line is erased when the spinner stops.
type Spinner struct {
	out    io.Writer
	prefix string

	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
	started atomic.Bool
}

// NewSpinner creates a stopped spinner with the given line prefix.
func NewSpinner(out io.Writer, prefix string) *Spinner {
	return &Spinner{
		out:    out,
		prefix: prefix,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the animation goroutine. Calling Start twice is a bug.
func (s *Spinner) Start() {
	s.started.Store(true)
	go s.run()
}

// Stop signals the animation to halt and waits for the status line to be
// erased. Safe to call multiple times and from multiple goroutines; only
// the first call after Start has any effect.
func (s *Spinner) Stop() {
	if !s.started.Load() {
		return
	}
	s.once.Do(func() {
		close(s.stop)
		<-s.done
	})
}

func (s *Spinner) run() {
	defer close(s.done)

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	frame := 0
	fmt.Fprintf(s.out, "\r%s %c", s.prefix, spinnerFrames[frame])

	for {
		select {
		case <-s.stop:
			fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len(s.prefix)+2))
			return
		case <-ticker.C:
			frame = (frame + 1) % len(spinnerFrames)
			fmt.Fprintf(s.out, "\r%s %c", s.prefix, spinnerFrames[frame])
		}
	}
}
