package core

import (
	"context"
	"sync"
	"time"

	"pkt.systems/pslog"
)

// Poller runs a repeating refresh cycle: one immediate run on Start, then
// one run per interval until Stop.
type Poller struct {
	interval time.Duration
	run      func(context.Context)
	logger   pslog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller constructs a poller invoking run every interval.
func NewPoller(interval time.Duration, run func(context.Context), logger pslog.Logger) *Poller {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Poller{interval: interval, run: run, logger: logger}
}

// Start launches the polling loop. Calling Start on a running poller is a
// no-op.
func (p *Poller) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	done := make(chan struct{})
	p.done = done
	p.mu.Unlock()
	p.logger.Debug("poller started", "interval", p.interval)
	go p.loop(loopCtx, done)
}

// Stop cancels the loop and waits for it to exit. Stop is idempotent.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.cancel = nil
	p.done = nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.logger.Debug("poller stopped")
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	p.run(ctx)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.run(ctx)
		}
	}
}
