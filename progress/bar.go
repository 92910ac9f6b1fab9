package progress

import (
	"fmt"
	"io"

	barmodel "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

var barLabelStyle = lipgloss.NewStyle().Bold(true)

// Bar renders a determinate progress bar on a single overwritten line. It is
// created lazily, on the first progress event, because the total is unknown
// before that. A total revision mid-run simply re-scales the next frame.
type Bar struct {
	out     io.Writer
	label   string
	model   barmodel.Model
	current int
	total   int
}

// NewBar creates a bar with the given label.
func NewBar(out io.Writer, label string) *Bar {
	m := barmodel.New(
		barmodel.WithDefaultGradient(),
		barmodel.WithWidth(36),
		barmodel.WithoutPercentage(),
	)
	return &Bar{out: out, label: barLabelStyle.Render(label), model: m}
}

// Update redraws the bar for the given counters.
func (b *Bar) Update(current, total int) {
	if total < 1 {
		total = 1
	}
	if current > total {
		current = total
	}
	b.current, b.total = current, total

	fmt.Fprintf(b.out, "\r%s %s %d/%d ",
		b.label, b.model.ViewAs(float64(current)/float64(total)), current, total)
}

// Finish terminates the bar line. Nothing is drawn if Update never ran.
func (b *Bar) Finish() {
	if b.total == 0 {
		return
	}
	fmt.Fprintln(b.out)
}
