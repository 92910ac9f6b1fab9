package progress

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/baslie/yandex-reviews-to-md/utils"
)

// Reporter receives discrete progress events from a long-running operation.
// Implementations are best-effort display code: they must never fail the
// operation that feeds them.
type Reporter interface {
	// Stage announces a phase that has no measurable progress yet.
	Stage(name string)
	// Progress reports the current 1-based item index. The total may be
	// revised upward between calls.
	Progress(current, total int)
	// Done tears down any live rendering. Safe to call more than once.
	Done()
}

// Console renders progress to the terminal. Depending on verbosity and
// terminal capability it shows a determinate bar, an animated spinner, or
// periodic log lines.
type Console struct {
	logger  *utils.Logger
	out     io.Writer
	label   string
	verbose bool
	rich    bool

	mu        sync.Mutex
	startup   *Spinner
	bar       *Bar
	spin      *Spinner
	lastTotal int
	closed    bool
}

// NewConsole builds a Console reporter labelled with the operation name.
// Rich (bar) mode is used when stdout is a terminal and verbose mode is off;
// without a terminal the fallback is an indeterminate spinner; verbose mode
// replaces widgets with log lines.
func NewConsole(logger *utils.Logger, verbose bool, label string) *Console {
	return &Console{
		logger:  logger,
		out:     os.Stdout,
		label:   label,
		verbose: verbose,
		rich:    !verbose && isatty.IsTerminal(os.Stdout.Fd()),
	}
}

// Stage starts an indeterminate spinner labelled with the stage name. In
// verbose mode it logs the stage instead.
func (c *Console) Stage(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	if c.verbose {
		c.logger.Info("%s...", name)
		return
	}

	if c.startup != nil {
		c.startup.Stop()
	}
	c.startup = NewSpinner(c.out, name)
	c.startup.Start()
}

// Progress applies one fetch progress event. The first event tears down the
// startup spinner exactly once.
func (c *Console) Progress(current, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.stopStartupLocked()

	switch {
	case c.verbose:
		if shouldLogProgress(current, total, c.lastTotal) {
			c.logger.Info("[progress] %s: %d/%d", c.label, current, total)
		}
	case c.rich:
		if c.bar == nil {
			c.bar = NewBar(c.out, c.label)
		}
		c.bar.Update(current, total)
	default:
		if c.spin == nil {
			c.spin = NewSpinner(c.out, c.label+"...")
			c.spin.Start()
		}
	}

	c.lastTotal = total
}

// Done stops any live animation and finishes the bar line. Idempotent.
func (c *Console) Done() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	c.stopStartupLocked()
	if c.spin != nil {
		c.spin.Stop()
	}
	if c.bar != nil {
		c.bar.Finish()
	}
}

// shouldLogProgress gates verbose output to every 25th item, the final item,
// and genuine total revisions. The first event seeds the total without
// forcing a line of its own.
func shouldLogProgress(current, total, lastTotal int) bool {
	if current%25 == 0 || current == total {
		return true
	}
	return lastTotal != 0 && total != lastTotal
}

func (c *Console) stopStartupLocked() {
	if c.startup != nil {
		c.startup.Stop()
		c.startup = nil
	}
}
