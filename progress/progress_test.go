package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/baslie/yandex-reviews-to-md/utils"
)

func TestSpinnerStopErasesLine(t *testing.T) {
	var buf bytes.Buffer

	s := NewSpinner(&buf, "Loading")
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Loading") {
		t.Errorf("spinner output %q does not contain the prefix", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("spinner output %q does not end with a line erase", out)
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var buf bytes.Buffer

	s := NewSpinner(&buf, "Loading")
	s.Start()
	s.Stop()

	done := make(chan struct{})
	go func() {
		s.Stop() // second stop must be a no-op, not a deadlock
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second Stop() blocked")
	}
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	s := NewSpinner(&bytes.Buffer{}, "Loading")
	s.Stop() // must not block waiting for a goroutine that never ran
}

func TestSpinnerConcurrentStops(t *testing.T) {
	var buf bytes.Buffer

	s := NewSpinner(&buf, "Loading")
	s.Start()

	done := make(chan struct{}, 2)
	for i := 0; i < 2; i++ {
		go func() {
			s.Stop()
			done <- struct{}{}
		}()
	}

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("concurrent Stop() blocked")
		}
	}
}

func newTestConsole(verbose bool) (*Console, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	c := NewConsole(utils.NewLogger(verbose), verbose, "Fetching reviews")
	c.out = buf
	return c, buf
}

func TestConsoleStartupSpinnerTornDownOnFirstEvent(t *testing.T) {
	c, _ := newTestConsole(false)
	c.rich = true

	c.Stage("Starting browser and loading page")
	if c.startup == nil {
		t.Fatal("Stage() did not start the startup spinner")
	}

	c.Progress(1, 10)
	if c.startup != nil {
		t.Error("first Progress() did not tear down the startup spinner")
	}
	if c.bar == nil {
		t.Error("rich mode did not create the bar lazily on the first event")
	}

	c.Done()
}

func TestConsoleBarHandlesTotalRevision(t *testing.T) {
	c, buf := newTestConsole(false)
	c.rich = true

	c.Progress(1, 10)
	c.Progress(5, 25)

	if c.bar.total != 25 {
		t.Errorf("bar total = %d; want 25 after revision", c.bar.total)
	}
	if c.bar.current != 5 {
		t.Errorf("bar current = %d; want 5", c.bar.current)
	}
	if !strings.Contains(buf.String(), "5/25") {
		t.Errorf("bar output %q does not show revised counters", buf.String())
	}

	c.Done()
}

func TestConsolePlainModeUsesSpinner(t *testing.T) {
	c, _ := newTestConsole(false)
	c.rich = false

	c.Progress(1, 10)
	if c.spin == nil {
		t.Fatal("plain mode did not start the fallback spinner")
	}
	if c.bar != nil {
		t.Error("plain mode must not create a bar")
	}

	c.Done()
}

func TestConsoleVerboseModeSkipsWidgets(t *testing.T) {
	c, _ := newTestConsole(true)

	c.Stage("Starting browser and loading page")
	c.Progress(1, 10)
	c.Progress(25, 100)

	if c.startup != nil || c.bar != nil || c.spin != nil {
		t.Error("verbose mode must render log lines only")
	}

	c.Done()
}

func TestConsoleDoneIsIdempotent(t *testing.T) {
	c, _ := newTestConsole(false)
	c.rich = false

	c.Stage("Starting browser and loading page")
	c.Progress(1, 10)

	c.Done()
	c.Done()

	// Events after teardown are ignored.
	c.Progress(2, 10)
	if c.bar != nil {
		t.Error("Progress after Done() created a widget")
	}
}

func TestShouldLogProgress(t *testing.T) {
	tests := []struct {
		name                      string
		current, total, lastTotal int
		want                      bool
	}{
		{"first event seeds total silently", 1, 100, 0, false},
		{"every 25th item", 25, 100, 100, true},
		{"ordinary item", 7, 100, 100, false},
		{"final item", 100, 100, 100, true},
		{"total revised upward", 26, 120, 100, true},
		{"single item batch", 1, 1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldLogProgress(tt.current, tt.total, tt.lastTotal); got != tt.want {
				t.Errorf("shouldLogProgress(%d, %d, %d) = %v; want %v",
					tt.current, tt.total, tt.lastTotal, got, tt.want)
			}
		})
	}
}

func TestBarClampsCurrentToTotal(t *testing.T) {
	var buf bytes.Buffer
	b := NewBar(&buf, "Formatting")

	b.Update(12, 10)
	if b.current != 10 {
		t.Errorf("bar current = %d; want clamp to total 10", b.current)
	}
}
