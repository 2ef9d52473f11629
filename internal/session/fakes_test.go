package session

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/bnema/mouseswipe/internal/gesture"
	"github.com/bnema/mouseswipe/internal/input"
	"github.com/holoplot/go-evdev"
)

var errRemoved = errors.New("no such device")

// fakeDevice delivers batches pushed on events; closing events simulates unplug
type fakeDevice struct {
	name    string
	events  chan []gesture.Event
	closed  chan struct{}
	grabErr error

	mu       sync.Mutex
	grabs    int
	releases int
	closes   int
	once     sync.Once
}

func newFakeDevice(name string) *fakeDevice {
	return &fakeDevice{
		name:   name,
		events: make(chan []gesture.Event),
		closed: make(chan struct{}),
	}
}

func (d *fakeDevice) Name() string { return d.name }
func (d *fakeDevice) Path() string { return "/dev/input/" + d.name }

func (d *fakeDevice) Grab() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.grabErr != nil {
		return d.grabErr
	}
	d.grabs++
	return nil
}

func (d *fakeDevice) Release() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.releases++
	return errRemoved
}

func (d *fakeDevice) ReadEvents() ([]gesture.Event, error) {
	select {
	case <-d.closed:
		return nil, os.ErrClosed
	case evs, ok := <-d.events:
		if !ok {
			return nil, errRemoved
		}
		return evs, nil
	}
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	d.closes++
	d.mu.Unlock()
	d.once.Do(func() { close(d.closed) })
	return nil
}

// send blocks until the session has read the batch, then until it has
// processed it and is back waiting for the next read
func (d *fakeDevice) send(evs ...gesture.Event) {
	d.events <- evs
	d.events <- nil
}

func (d *fakeDevice) counts() (grabs, releases, closes int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.grabs, d.releases, d.closes
}

// fakeSource hands out one device set per Scan and reports a topology
// change whenever grow is signalled
type fakeSource struct {
	mu      sync.Mutex
	sets    [][]*fakeDevice
	totals  []int
	scans   int
	scanErr error
	// failAt fails the scan attempts with these 1-based numbers
	failAt   map[int]error
	attempts int

	scanned chan int
	grow    chan struct{}
}

func newFakeSource(sets ...[]*fakeDevice) *fakeSource {
	s := &fakeSource{
		sets:    sets,
		scanned: make(chan int, 16),
		grow:    make(chan struct{}, 1),
	}
	for _, set := range sets {
		s.totals = append(s.totals, len(set))
	}
	return s
}

func (s *fakeSource) Scan() ([]input.Device, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts++
	if s.scanErr != nil {
		return nil, 0, s.scanErr
	}
	if err, ok := s.failAt[s.attempts]; ok {
		return nil, 0, err
	}

	i := s.scans
	if i >= len(s.sets) {
		i = len(s.sets) - 1
	}
	s.scans++

	var devices []input.Device
	for _, d := range s.sets[i] {
		devices = append(devices, d)
	}
	s.scanned <- s.scans
	return devices, s.totals[i], nil
}

func (s *fakeSource) WaitForMore(ctx context.Context, baseline int, interval time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.grow:
		return nil
	}
}

type write struct {
	Type  evdev.EvType
	Code  evdev.EvCode
	Value int32
}

type recordingSink struct {
	mu     sync.Mutex
	writes []write
}

func (s *recordingSink) Write(typ evdev.EvType, code evdev.EvCode, value int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, write{typ, code, value})
	return nil
}

func (s *recordingSink) Sync() error {
	return s.Write(evdev.EV_SYN, evdev.SYN_REPORT, 0)
}

func (s *recordingSink) keyDowns() []evdev.EvCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	var codes []evdev.EvCode
	for _, w := range s.writes {
		if w.Type == evdev.EV_KEY && w.Value == 1 {
			codes = append(codes, w.Code)
		}
	}
	return codes
}

func (s *recordingSink) recorded() []write {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]write(nil), s.writes...)
}

func key(code evdev.EvCode, value int32) gesture.Event {
	return gesture.Event{Type: evdev.EV_KEY, Code: code, Value: value}
}

func rel(code evdev.EvCode, value int32) gesture.Event {
	return gesture.Event{Type: evdev.EV_REL, Code: code, Value: value}
}

func sideSwipeTemplates() []gesture.Template {
	return []gesture.Template{{
		Button:     evdev.BTN_SIDE,
		Delta:      20,
		Click:      []evdev.EvCode{evdev.KEY_LEFTMETA},
		SwipeLeft:  []evdev.EvCode{evdev.KEY_LEFTCTRL, evdev.KEY_LEFT},
		SwipeRight: []evdev.EvCode{evdev.KEY_LEFTCTRL, evdev.KEY_RIGHT},
	}}
}
