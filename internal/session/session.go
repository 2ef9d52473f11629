// Package session runs the gesture engine: one Session per grabbed mouse and
// a Supervisor that restarts the whole set whenever the device topology grows.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bnema/mouseswipe/internal/gesture"
	"github.com/bnema/mouseswipe/internal/input"
	"github.com/bnema/mouseswipe/internal/keys"
	"github.com/bnema/mouseswipe/internal/logger"
)

var (
	// ErrSessionEnded is returned by Session.Run whenever it stops
	ErrSessionEnded = errors.New("device session ended")
	// ErrTopologyChanged ends a cycle when a new input device appears
	ErrTopologyChanged = errors.New("input device topology changed")
)

// Applier writes the decisions for one raw event to the virtual device
type Applier interface {
	Apply(decisions []gesture.Decision) error
}

// Session binds one physical device to its own gesture state
type Session struct {
	device     input.Device
	classifier *gesture.Classifier
	emitter    Applier

	mu        sync.Mutex
	grabbed   bool
	closeOnce sync.Once
}

// New creates a session with buttons freshly built from templates
func New(device input.Device, templates []gesture.Template, emitter Applier) *Session {
	return &Session{
		device:     device,
		classifier: gesture.NewClassifier(gesture.NewButtons(templates)),
		emitter:    emitter,
	}
}

// Device returns the physical device of this session
func (s *Session) Device() input.Device {
	return s.device
}

// Run grabs the device and processes its events until the device fails or
// ctx is cancelled. It always returns a non-nil error wrapping
// ErrSessionEnded, and the device is released and closed on return.
func (s *Session) Run(ctx context.Context) error {
	defer s.Close()

	if err := s.grab(); err != nil {
		return fmt.Errorf("%w: %w", ErrSessionEnded, err)
	}

	// Closing the device is the only way to unblock a pending read.
	stop := context.AfterFunc(ctx, s.Close)
	defer stop()

	logger.Info("Session started", "device", s.device.Name(), "path", s.device.Path())

	for {
		events, err := s.device.ReadEvents()
		// After cancellation the grab is gone and the OS already saw this batch.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %w", ErrSessionEnded, ctxErr)
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSessionEnded, err)
		}

		for _, ev := range events {
			if err := s.handle(ev); err != nil {
				return fmt.Errorf("%w: %w", ErrSessionEnded, err)
			}
		}
	}
}

func (s *Session) handle(ev gesture.Event) error {
	decisions := s.classifier.Classify(ev)
	for _, d := range decisions {
		if d.Action == gesture.EmitKeySequence {
			logger.Debug("Gesture", "device", s.device.Name(), "verdict", d.Verdict, "keys", keys.Names(d.Keys))
		}
	}
	return s.emitter.Apply(decisions)
}

func (s *Session) grab() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.device.Grab(); err != nil {
		return err
	}
	s.grabbed = true
	return nil
}

// Close releases the grab (best effort) and closes the device, once
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		grabbed := s.grabbed
		s.grabbed = false
		s.mu.Unlock()

		if grabbed {
			// An unplugged device cannot be ungrabbed.
			if err := s.device.Release(); err != nil {
				logger.Debugf("Release of %s failed: %v", s.device.Path(), err)
			}
		}
		if err := s.device.Close(); err != nil {
			logger.Debugf("Close of %s failed: %v", s.device.Path(), err)
		}
	})
}
