package main

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"dcpkit/internal/convert"
	"dcpkit/internal/logging"
)

// frameProgress reports finished frames through a progress bar on a terminal
// and through sampled log lines everywhere else.
type frameProgress struct {
	total  int
	done   atomic.Int64
	bar    *progressbar.ProgressBar
	logger *slog.Logger

	mu      sync.Mutex
	sampler *logging.ProgressSampler
}

func newFrameProgress(w io.Writer, total int, logger *slog.Logger) *frameProgress {
	p := &frameProgress{total: total, logger: logger}
	if isTerminal(w) {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("j2k"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("frames"),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
		return p
	}
	p.sampler = logging.NewProgressSampler(10)
	return p
}

// FrameFinished implements convert.Observer.
func (p *frameProgress) FrameFinished(ev convert.FrameEvent) {
	if ev.Outcome == convert.FrameFailed {
		return
	}
	done := int(p.done.Add(1))
	if p.bar != nil {
		_ = p.bar.Add(1)
		return
	}
	p.mu.Lock()
	emit := p.sampler.ShouldLog(done, p.total)
	p.mu.Unlock()
	if emit && p.logger != nil {
		p.logger.Info("conversion progress",
			logging.Int("done", done),
			logging.Int("total", p.total),
			logging.Frame(ev.Frame),
		)
	}
}

func (p *frameProgress) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
