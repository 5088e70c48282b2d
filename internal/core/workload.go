package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Stage is a kind of CPU or memory heavy work. Each stage has its own slot
// budget so a burst of PNG downloads cannot starve uploads, and the other
// way round.
type Stage int

const (
	StageLoad   Stage = iota // parsing an upload, pasted text or query result
	StageDraw                // building a scene from a table
	StageRaster              // encoding a scene as SVG or PNG
	numStages
)

func (s Stage) String() string {
	switch s {
	case StageLoad:
		return "load"
	case StageDraw:
		return "draw"
	case StageRaster:
		return "raster"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Defaults applied to zero WorkloadConfig fields.
const (
	DefaultMaxLoads   = 5
	DefaultMaxDraws   = 8
	DefaultMaxRasters = 2
	DefaultSlotWait   = 10 * time.Second
)

// ErrBusy is matched by every BusyError.
var ErrBusy = errors.New("server busy")

// BusyError reports that no slot of Stage freed up within Wait.
type BusyError struct {
	Stage Stage
	Wait  time.Duration
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("server busy: no %s slot free after %s", e.Stage, e.Wait)
}

func (e *BusyError) Is(target error) bool { return target == ErrBusy }

// WorkloadConfig sets the slot budget of each stage.
type WorkloadConfig struct {
	MaxLoads   int
	MaxDraws   int
	MaxRasters int
	Wait       time.Duration
}

// Workload hands out per-stage slots and tracks work in flight so shutdown
// can wait for it.
type Workload struct {
	slots [numStages]chan struct{}
	wait  time.Duration

	mu      sync.Mutex
	active  [numStages]int
	drained chan struct{} // closed while nothing is in flight
}

// NewWorkload creates a Workload with cfg's budgets.
func NewWorkload(cfg WorkloadConfig) *Workload {
	budget := func(n, def int) int {
		if n <= 0 {
			return def
		}
		return n
	}
	if cfg.Wait <= 0 {
		cfg.Wait = DefaultSlotWait
	}

	w := &Workload{wait: cfg.Wait, drained: make(chan struct{})}
	close(w.drained)
	w.slots[StageLoad] = make(chan struct{}, budget(cfg.MaxLoads, DefaultMaxLoads))
	w.slots[StageDraw] = make(chan struct{}, budget(cfg.MaxDraws, DefaultMaxDraws))
	w.slots[StageRaster] = make(chan struct{}, budget(cfg.MaxRasters, DefaultMaxRasters))
	return w
}

// Acquire takes a slot of stage, waiting at most the configured time. The
// returned release func gives the slot back; calling it more than once is a
// no-op.
func (w *Workload) Acquire(ctx context.Context, stage Stage) (release func(), err error) {
	if stage < 0 || stage >= numStages {
		return nil, fmt.Errorf("acquire: unknown %s", stage)
	}
	slots := w.slots[stage]

	timer := time.NewTimer(w.wait)
	defer timer.Stop()

	select {
	case slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, &BusyError{Stage: stage, Wait: w.wait}
	}

	w.mu.Lock()
	if w.inFlight() == 0 {
		w.drained = make(chan struct{})
	}
	w.active[stage]++
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slots
			w.mu.Lock()
			w.active[stage]--
			if w.inFlight() == 0 {
				close(w.drained)
			}
			w.mu.Unlock()
		})
	}, nil
}

// Do runs fn while holding a slot of stage.
func (w *Workload) Do(ctx context.Context, stage Stage, fn func() error) error {
	release, err := w.Acquire(ctx, stage)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

// inFlight requires w.mu.
func (w *Workload) inFlight() int {
	n := 0
	for _, a := range w.active {
		n += a
	}
	return n
}

// Drain blocks until no slot of any stage is held, or ctx ends.
func (w *Workload) Drain(ctx context.Context) error {
	w.mu.Lock()
	drained := w.drained
	w.mu.Unlock()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StageStatus is the slot usage of one stage.
type StageStatus struct {
	Active   int `json:"active"`
	Capacity int `json:"capacity"`
}

// WorkloadStatus is a snapshot of every stage.
type WorkloadStatus struct {
	Load   StageStatus `json:"load"`
	Draw   StageStatus `json:"draw"`
	Raster StageStatus `json:"raster"`
}

// InFlight is the number of slots held across all stages.
func (s WorkloadStatus) InFlight() int {
	return s.Load.Active + s.Draw.Active + s.Raster.Active
}

// Status reports current slot usage.
func (w *Workload) Status() WorkloadStatus {
	w.mu.Lock()
	defer w.mu.Unlock()

	at := func(s Stage) StageStatus {
		return StageStatus{Active: w.active[s], Capacity: cap(w.slots[s])}
	}
	return WorkloadStatus{Load: at(StageLoad), Draw: at(StageDraw), Raster: at(StageRaster)}
}
