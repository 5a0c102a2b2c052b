// Operation tracking for --debug runs: timing, heap growth, Mat leaks and hangs
package debug

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

const (
	DefaultSlowThreshold = 5 * time.Second
	DefaultHangThreshold = 30 * time.Second
)

// Tracker logs the cost of each operation it is asked to watch. A disabled
// tracker hands out no-op operations.
type Tracker struct {
	enabled       bool
	logger        logrus.FieldLogger
	slowThreshold time.Duration
	hangThreshold time.Duration

	mu     sync.Mutex
	active map[string]int
}

func NewTracker(logger logrus.FieldLogger, enabled bool) *Tracker {
	return &Tracker{
		enabled:       enabled,
		logger:        logger,
		slowThreshold: DefaultSlowThreshold,
		hangThreshold: DefaultHangThreshold,
		active:        make(map[string]int),
	}
}

// SetThresholds changes when an operation is reported as slow or hung
func (t *Tracker) SetThresholds(slow, hang time.Duration) {
	t.slowThreshold = slow
	t.hangThreshold = hang
}

func (t *Tracker) Enabled() bool {
	return t.enabled
}

// Active returns how many operations with name have started and not ended
func (t *Tracker) Active(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active[name]
}

// Operation is one tracked unit of work; End must be called exactly once
type Operation struct {
	tracker  *Tracker
	name     string
	start    time.Time
	memAlloc uint64
	matCount int
	cancel   context.CancelFunc
	once     sync.Once

	// Duration is set by End
	Duration time.Duration
}

// Start begins tracking name. While it runs, a watcher warns once if it
// exceeds the hang threshold.
func (t *Tracker) Start(name string) *Operation {
	op := &Operation{tracker: t, name: name, start: time.Now()}
	if !t.enabled {
		return op
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	op.memAlloc = m.Alloc
	op.matCount = gocv.MatProfile.Count()

	t.mu.Lock()
	t.active[name]++
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), t.hangThreshold)
	op.cancel = cancel
	go t.monitor(ctx, op)

	t.logger.WithFields(logrus.Fields{
		"operation":  name,
		"mats":       op.matCount,
		"mem_mb":     toMB(int64(m.Alloc)),
		"goroutines": runtime.NumGoroutine(),
	}).Debug("Operation started")
	return op
}

func (t *Tracker) monitor(ctx context.Context, op *Operation) {
	<-ctx.Done()
	if ctx.Err() == context.DeadlineExceeded {
		t.logger.WithFields(logrus.Fields{
			"operation": op.name,
			"running":   time.Since(op.start).String(),
		}).Warn("Operation may be hung")
	}
}

// End stops tracking and logs what the operation cost
func (op *Operation) End() {
	op.once.Do(func() {
		op.Duration = time.Since(op.start)
		t := op.tracker
		if !t.enabled {
			return
		}
		op.cancel()

		t.mu.Lock()
		if t.active[op.name]--; t.active[op.name] <= 0 {
			delete(t.active, op.name)
		}
		t.mu.Unlock()

		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		matDelta := gocv.MatProfile.Count() - op.matCount

		log := t.logger.WithFields(logrus.Fields{
			"operation":    op.name,
			"duration_ms":  op.Duration.Milliseconds(),
			"mat_delta":    matDelta,
			"mem_delta_mb": toMB(int64(m.Alloc) - int64(op.memAlloc)),
		})
		log.Debug("Operation finished")

		if op.Duration > t.slowThreshold {
			log.Warn("Slow operation")
		}
		if matDelta > 0 {
			log.Warn("Operation left Mats open")
		}
	})
}

func toMB(bytes int64) float64 {
	return float64(bytes) / 1024 / 1024
}
