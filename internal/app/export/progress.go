package export

import (
	"io"
	"os"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Progress renders row counters on a terminal. The zero value and a
// disabled Progress hand out bars that do nothing.
type Progress struct {
	container *mpb.Progress
}

// Bar tracks one export. A nil *Bar is valid and ignores every call.
type Bar struct {
	bar *mpb.Bar
}

// NewProgress draws to w when enabled; w defaults to stderr.
func NewProgress(enabled bool, w io.Writer) *Progress {
	if !enabled {
		return &Progress{}
	}
	if w == nil {
		w = os.Stderr
	}
	return &Progress{container: mpb.New(mpb.WithOutput(w), mpb.WithRefreshRate(150*time.Millisecond))}
}

func (p *Progress) Bar(total int, label string) *Bar {
	if p.container == nil {
		return nil
	}
	return &Bar{bar: p.container.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name(label, decor.WCSyncSpaceR),
			decor.CountersNoUnit("%d/%d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.Percentage(decor.WCSyncSpace), "done"),
		),
	)}
}

// Wait blocks until every bar has finished rendering.
func (p *Progress) Wait() {
	if p.container != nil {
		p.container.Wait()
	}
}

func (b *Bar) Increment() {
	if b != nil {
		b.bar.Increment()
	}
}

// Done completes the bar at its current count.
func (b *Bar) Done() {
	if b != nil {
		b.bar.SetTotal(-1, true)
	}
}

// Interactive reports whether progress output should be drawn: always when
// forced, otherwise only if stderr is a terminal.
func Interactive(forced bool) bool {
	if forced {
		return true
	}
	stat, err := os.Stderr.Stat()
	return err == nil && stat.Mode()&os.ModeCharDevice != 0
}
