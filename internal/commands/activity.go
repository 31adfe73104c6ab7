package commands

import (
	"fmt"
	"io"
	"sync"
	"time"

	bspinner "github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

const (
	hideCursor = "\033[?25l"
	showCursor = "\033[?25h"
	clearLine  = "\r\033[K"
)

var (
	activityStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7aa2f7")).Bold(true)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#c0caf5"))
	elapsedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89"))
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a")).Bold(true)
)

// activity animates a single status line on w while a query is in flight.
// It uses the same frames as the interface spinner.
type activity struct {
	w       io.Writer
	label   string
	frames  bspinner.Spinner
	started time.Time

	quit     chan struct{}
	finished chan struct{}
	once     sync.Once
}

func startActivity(w io.Writer, label string) *activity {
	a := &activity{
		w:        w,
		label:    label,
		frames:   bspinner.Points,
		started:  time.Now(),
		quit:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	go a.loop()
	return a
}

func (a *activity) loop() {
	defer close(a.finished)

	tick := time.NewTicker(a.frames.FPS)
	defer tick.Stop()

	fmt.Fprint(a.w, hideCursor)
	for i := 0; ; i++ {
		a.draw(i)
		select {
		case <-a.quit:
			fmt.Fprint(a.w, clearLine+showCursor)
			return
		case <-tick.C:
		}
	}
}

func (a *activity) draw(i int) {
	frame := a.frames.Frames[i%len(a.frames.Frames)]
	elapsed := time.Since(a.started).Truncate(100 * time.Millisecond)
	fmt.Fprintf(a.w, "%s%s %s %s", clearLine,
		activityStyle.Render(frame),
		labelStyle.Render(a.label),
		elapsedStyle.Render(elapsed.String()))
}

// stop ends the animation and restores the cursor. Safe to call repeatedly.
func (a *activity) stop() {
	a.once.Do(func() { close(a.quit) })
	<-a.finished
}

// done stops the animation and leaves a completion line naming model.
func (a *activity) done(model string) {
	a.stop()
	fmt.Fprintf(a.w, "%s %s\n", doneStyle.Render("✓"), doneStyle.Render(model))
}
