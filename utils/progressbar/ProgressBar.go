// Package progressbar provides a terminal progress bar for tracking
// the progress of long-running experiments
package progressbar

import (
	"fmt"
	"strings"
	"time"
)

// ProgressBar is a progress bar that is drawn to the terminal window.
// The bar must be managed manually: Increment should be called once
// per unit of work, and Display should be called whenever the drawn
// bar should be refreshed.
type ProgressBar struct {
	width           float64
	maxProgress     float64
	currentProgress float64
	bar             strings.Builder
	startTime       time.Time
}

// NewProgressBar returns a new ProgressBar that is width characters
// wide and reaches 100% after max calls to Increment
func NewProgressBar(width, max int) *ProgressBar {
	return &ProgressBar{
		width:       float64(width),
		maxProgress: float64(max),
		startTime:   time.Now(),
	}
}

// Increment advances the internal progress counter by a single unit
// of work. The counter saturates once max units have been recorded.
func (p *ProgressBar) Increment() {
	if p.currentProgress < p.maxProgress {
		p.currentProgress++
	}
}

// Display draws the progress bar to the terminal, overwriting any
// previously drawn bar. It may be called repeatedly as progress is
// made to redraw the bar in-place.
func (p *ProgressBar) Display() {
	p.bar.Reset()
	p.bar.WriteString("|")

	filled := p.currentProgress / p.maxProgress * p.width
	for i := 0.0; i < filled; i++ {
		p.bar.WriteString("█")
	}
	for i := filled; i < p.width; i++ {
		p.bar.WriteString(" ")
	}
	fmt.Fprintf(&p.bar, "| [%.2f%% | elapsed: %v]",
		p.currentProgress/p.maxProgress*100,
		time.Since(p.startTime).Truncate(time.Second))

	fmt.Printf("\n\033[1A\033[K%v", p.bar.String())
}

// Close finishes the progress bar, moving the cursor past the drawn
// bar so that later output appears on its own line
func (p *ProgressBar) Close() {
	fmt.Println()
}
