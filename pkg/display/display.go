// Package display live-renders progress to a terminal by repeatedly
// asking a Displayer to redraw and flushing the result in place.
package display

import (
	"bytes"
	"io"
	"sync"
	"time"

	"github.com/gosuri/uilive"
)

// Displayer writes its current state to w and reports whether there is
// more to display. It returns false once the underlying work is done.
type Displayer interface {
	Display(w io.Writer) bool
}

// Display drives a Displayer on a fixed interval, overwriting its
// previous output in place via uilive.
type Display struct {
	live     *uilive.Writer
	interval time.Duration
	updater  Displayer
	buffer   *bytes.Buffer
	done     chan struct{}
	wg       sync.WaitGroup
}

// New returns a Display that redraws updater's output every interval
// until Close is called.
func New(updater Displayer, interval time.Duration) *Display {
	return &Display{
		live:     uilive.New(),
		interval: interval,
		updater:  updater,
		buffer:   bytes.NewBuffer(nil),
		done:     make(chan struct{}),
	}
}

func (d *Display) redraw() bool {
	d.buffer.Reset()
	more := d.updater.Display(d.buffer)
	_, _ = io.Copy(d.live, d.buffer)
	_ = d.live.Flush()
	return more
}

// Run redraws on d.interval until the Displayer reports it has nothing
// more to show or Close is called. Run blocks; call it from its own
// goroutine.
func (d *Display) Run() {
	d.wg.Add(1)
	defer d.wg.Done()
	for {
		if !d.redraw() {
			return
		}
		select {
		case <-d.done:
			return
		case <-time.After(d.interval):
		}
	}
}

// Close stops Run, waits for it to return, and draws one final frame
// so the last state is never left stale on screen.
func (d *Display) Close() {
	close(d.done)
	d.wg.Wait()
	d.redraw()
}
