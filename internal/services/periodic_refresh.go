package services

import (
	"context"
	"log"
	"runtime/debug"
	"sync"
	"time"

	"github.com/dpup/prefab/errors"
	"github.com/dpup/prefab/logging"
)

// Refresher is refreshed on every tick
type Refresher interface {
	RefreshWatched(ctx context.Context) (refreshed, failed int)
}

// PeriodicRefreshService keeps watched forecasts warm so hikers are served
// from cache
type PeriodicRefreshService struct {
	refresher Refresher
	interval  time.Duration
	timeout   time.Duration

	mu       sync.Mutex
	stopChan chan struct{}
	running  bool
	done     chan struct{}
}

// NewPeriodicRefreshService creates a new periodic refresh service. timeout
// bounds each refresh pass.
func NewPeriodicRefreshService(refresher Refresher, interval, timeout time.Duration) *PeriodicRefreshService {
	return &PeriodicRefreshService{
		refresher: refresher,
		interval:  interval,
		timeout:   timeout,
	}
}

// StartPeriodicRefresh refreshes immediately and then every interval until
// ctx is done or Stop is called
func (p *PeriodicRefreshService) StartPeriodicRefresh(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil
	}
	p.running = true
	p.stopChan = make(chan struct{})
	p.done = make(chan struct{})

	log.Printf("Starting periodic weather refresh every %v", p.interval)
	go p.refreshLoop(logging.EnsureLogger(ctx), p.stopChan, p.done)
	return nil
}

// Stop halts the refresh loop and waits for it to exit
func (p *PeriodicRefreshService) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopChan)
	done := p.done
	p.mu.Unlock()

	<-done
	log.Printf("Stopped periodic refresh service")
}

// IsRunning returns whether periodic refresh is active
func (p *PeriodicRefreshService) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *PeriodicRefreshService) refreshLoop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			err, _ := errors.ParseStack(debug.Stack())
			skipFrames := 3
			numFrames := 5
			logging.Errorw(ctx, "Periodic refresh: recovered from panic",
				"error", r, "error.stack_trace", err.MinimalStack(skipFrames, numFrames))
		}
	}()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Periodic refresh stopping due to context cancellation")
			return
		case <-stop:
			return
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

func (p *PeriodicRefreshService) refresh(ctx context.Context) {
	refreshCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	refreshed, failed := p.refresher.RefreshWatched(refreshCtx)
	logging.Infow(ctx, "Periodic refresh completed", "refreshed", refreshed, "failed", failed)
}
