// Package gui renders launcher state on a terminal.
package gui

import (
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

const (
	Available   = "Connected"
	Unavailable = "Disconnected"

	barWidth = 40
)

var (
	greenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	redStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
)

// Console receives launcher events and prints them to w.
type Console struct {
	mu         sync.Mutex
	w          io.Writer
	bar        progress.Model
	inProgress bool
}

// New creates a console frontend writing to w
func New(w io.Writer) *Console {
	return &Console{
		w: w,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(barWidth),
			progress.WithoutPercentage(),
		),
	}
}

// SetConnected shows the result of the status probe.
func (c *Console) SetConnected(ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.endLine()
	if ok {
		fmt.Fprintln(c.w, greenStyle.Render(Available))
		return
	}
	fmt.Fprintln(c.w, redStyle.Render(Unavailable))
}

// SetProgress redraws the progress line. It is safe to call from the download loop.
func (c *Console) SetProgress(percent float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ratio := percent / 100
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		ratio = 0
	}
	fmt.Fprintf(c.w, "\r%s %s", c.bar.ViewAs(ratio), FormatPercent(percent))
	c.inProgress = true
}

// SetPatchText prints a status message below any progress line.
func (c *Console) SetPatchText(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.endLine()
	fmt.Fprintln(c.w, value)
}

func (c *Console) endLine() {
	if !c.inProgress {
		return
	}
	fmt.Fprintln(c.w)
	c.inProgress = false
}

// FormatPercent rounds to one decimal, e.g. "42.5%".
func FormatPercent(percent float64) string {
	return fmt.Sprintf("%.1f%%", math.Round(percent*10)/10)
}
