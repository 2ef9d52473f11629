package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bnema/mouseswipe/internal/gesture"
	"github.com/bnema/mouseswipe/internal/input"
	"github.com/bnema/mouseswipe/internal/logger"
	"golang.org/x/sync/errgroup"
)

// DefaultPollInterval is how often the watcher counts input devices
const DefaultPollInterval = 5 * time.Second

// ErrScanFailed is returned by Run when the input directory cannot be read
var ErrScanFailed = errors.New("device scan failed")

// Source enumerates physical mice and watches for new devices
type Source interface {
	// Scan returns the attachable mice and the total number of input devices
	Scan() ([]input.Device, int, error)
	// WaitForMore returns nil once more than baseline input devices exist
	WaitForMore(ctx context.Context, baseline int, interval time.Duration) error
}

// Options tune the restart loop
type Options struct {
	PollInterval time.Duration
	// RestartDelay is waited between cycles. Zero restarts immediately.
	RestartDelay time.Duration
}

// Supervisor runs scan/run/cancel cycles until its context ends
type Supervisor struct {
	source    Source
	templates []gesture.Template
	emitter   Applier
	opts      Options

	cycles atomic.Int64
}

// NewSupervisor creates a supervisor. templates are cloned per device on every cycle.
func NewSupervisor(source Source, templates []gesture.Template, emitter Applier, opts Options) *Supervisor {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	return &Supervisor{
		source:    source,
		templates: templates,
		emitter:   emitter,
		opts:      opts,
	}
}

// Cycles returns how many cycles have been started
func (s *Supervisor) Cycles() int64 {
	return s.cycles.Load()
}

// Run loops over cycles until ctx is cancelled, then returns nil. It only
// returns an error when the first scan fails; later scan failures are
// retried every poll interval.
func (s *Supervisor) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		cycle := s.cycles.Add(1)
		err := s.RunCycle(ctx)

		if ctx.Err() != nil {
			logger.Info("Gesture engine stopped", "cycles", cycle)
			return nil
		}
		if errors.Is(err, ErrScanFailed) {
			if cycle == 1 {
				return err
			}
			logger.Warn("Device scan failed, retrying", "cycle", cycle, "error", err)
			if !sleepCtx(ctx, s.opts.PollInterval) {
				return nil
			}
			continue
		}

		if errors.Is(err, ErrTopologyChanged) {
			logger.Info("New input device detected, restarting", "cycle", cycle)
		} else {
			logger.Info("Restarting gesture engine", "cycle", cycle, "reason", err)
		}

		if s.opts.RestartDelay > 0 && !sleepCtx(ctx, s.opts.RestartDelay) {
			return nil
		}
	}
}

// sleepCtx waits for d and reports false if ctx ended first
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// RunCycle scans, runs one session per mouse plus the topology watcher, and
// returns the error that ended the cycle once every device is released.
func (s *Supervisor) RunCycle(ctx context.Context) error {
	devices, total, err := s.source.Scan()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrScanFailed, err)
	}

	if len(devices) == 0 {
		logger.Warn("No mice found, waiting for a new device")
	} else {
		logger.Infof("Running gesture engine on %d of %d input devices", len(devices), total)
	}

	g, gctx := errgroup.WithContext(ctx)

	sessions := make([]*Session, 0, len(devices))
	for _, dev := range devices {
		sess := New(dev, s.templates, s.emitter)
		sessions = append(sessions, sess)
		g.Go(func() error {
			return sess.Run(gctx)
		})
	}

	// Members never return nil, so any exit cancels the rest.
	g.Go(func() error {
		if err := s.source.WaitForMore(gctx, total, s.opts.PollInterval); err != nil {
			return fmt.Errorf("topology watcher stopped: %w", err)
		}
		return ErrTopologyChanged
	})

	err = g.Wait()

	for _, sess := range sessions {
		sess.Close()
	}
	logger.Debug("Cycle ended", "reason", err)
	return err
}
