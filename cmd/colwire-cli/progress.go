package main

import (
	"fmt"
	"io"
	"time"

	"github.com/alecthomas/units"
	"github.com/paulbellamy/ratecounter"

	colwire "github.com/colwire/colwire-go"
	"github.com/colwire/colwire-go/pkg/display"
)

// sessionProgress adapts Session.LastProgress into a display.Displayer,
// rendering the counters spec.md §4.7 calls out as the Session's
// observable side effects: rows/bytes read so far against the server's
// declared total, and a trailing bytes/sec rate.
type sessionProgress struct {
	sess      *colwire.Session
	done      <-chan struct{}
	rate      *ratecounter.RateCounter
	lastBytes units.Bytes
}

func (p *sessionProgress) Display(w io.Writer) bool {
	prog := p.sess.LastProgress()
	readBytes := units.Bytes(prog.Bytes)
	p.rate.Incr(int64(readBytes) - int64(p.lastBytes))
	p.lastBytes = readBytes
	rate := units.Bytes(p.rate.Rate())
	if prog.TotalRows == 0 {
		fmt.Fprintf(w, "rows %d  %s %s/s\n", prog.Rows, readBytes.Abbrev(), rate.Abbrev())
	} else {
		fmt.Fprintf(w, "rows %d/%d  %s %s/s\n", prog.Rows, prog.TotalRows, readBytes.Abbrev(), rate.Abbrev())
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// startProgress renders sess's progress in place every 200ms until the
// returned stop func runs. Callers defer stop() around the call whose
// progress they want shown.
func startProgress(sess *colwire.Session) (stop func()) {
	done := make(chan struct{})
	d := display.New(&sessionProgress{
		sess: sess,
		done: done,
		rate: ratecounter.NewRateCounter(time.Second),
	}, 200*time.Millisecond)
	go d.Run()
	return func() {
		close(done)
		d.Close()
	}
}
