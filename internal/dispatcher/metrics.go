package dispatcher

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dshills/magicshell/internal/dispatcher/handler"
)

// Outcome classifies a finished dispatch.
type Outcome uint8

const (
	// OutcomeOK is a magic that ran and returned normally.
	OutcomeOK Outcome = iota
	// OutcomeFault is an invocation fault: usage error, handler error or
	// panic. It terminates the chain.
	OutcomeFault
	// OutcomeNotFound is a magic that did not resolve.
	OutcomeNotFound
	// OutcomeCancelled is a magic a hook refused to run.
	OutcomeCancelled
	// OutcomeSkipped is a dispatch on a terminated chain.
	OutcomeSkipped
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeFault:
		return "fault"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// OutcomeOf classifies result.
func OutcomeOf(result handler.Result) Outcome {
	if result.IsOK() {
		return OutcomeOK
	}
	switch {
	case errors.Is(result.Error, ErrNotFound):
		return OutcomeNotFound
	case errors.Is(result.Error, ErrCancelled):
		return OutcomeCancelled
	case errors.Is(result.Error, ErrChainTerminated):
		return OutcomeSkipped
	default:
		return OutcomeFault
	}
}

// Metrics collects dispatch statistics per magic and per outcome.
type Metrics struct {
	mu sync.RWMutex

	// magics is keyed by the "<kind>_<name>" spelling of the magic key.
	magics   map[string]*MagicMetrics
	outcomes map[Outcome]uint64
	kinds    map[handler.Kind]uint64

	dispatches uint64
	panics     uint64
	fallbacks  uint64
	duration   time.Duration
}

// MagicMetrics holds the statistics of one magic.
type MagicMetrics struct {
	Name          string
	DispatchCount uint64
	ErrorCount    uint64
	FaultCount    uint64
	PanicCount    uint64
	FallbackCount uint64
	TotalDuration time.Duration
	MinDuration   time.Duration
	MaxDuration   time.Duration
	LastOutcome   Outcome
	LastDispatch  time.Time
}

// NewMetrics creates an empty collector.
func NewMetrics() *Metrics {
	return &Metrics{
		magics:   make(map[string]*MagicMetrics),
		outcomes: make(map[Outcome]uint64),
		kinds:    make(map[handler.Kind]uint64),
	}
}

// Record records a finished dispatch of the magic key.
func (m *Metrics) Record(key handler.Key, duration time.Duration, result handler.Result) {
	outcome := OutcomeOf(result)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.dispatches++
	m.duration += duration
	m.outcomes[outcome]++
	m.kinds[key.Kind.Normalize()]++

	mm := m.magicLocked(key.String())
	if mm.DispatchCount == 0 || duration < mm.MinDuration {
		mm.MinDuration = duration
	}
	if duration > mm.MaxDuration {
		mm.MaxDuration = duration
	}
	mm.DispatchCount++
	mm.TotalDuration += duration
	mm.LastOutcome = outcome
	mm.LastDispatch = time.Now()

	if outcome != OutcomeOK {
		mm.ErrorCount++
	}
	if outcome == OutcomeFault {
		mm.FaultCount++
	}
}

// RecordPanic records a recovered panic of a handler or of a hook running
// for the magic.
func (m *Metrics) RecordPanic(magic string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panics++
	m.magicLocked(magic).PanicCount++
}

// RecordFallback records a call that fell back to the raw argument string.
func (m *Metrics) RecordFallback(magic string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbacks++
	m.magicLocked(magic).FallbackCount++
}

func (m *Metrics) magicLocked(magic string) *MagicMetrics {
	mm := m.magics[magic]
	if mm == nil {
		mm = &MagicMetrics{Name: magic}
		m.magics[magic] = mm
	}
	return mm
}

// TotalDispatches returns the number of dispatches.
func (m *Metrics) TotalDispatches() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dispatches
}

// TotalErrors returns the number of dispatches that did not end OK.
func (m *Metrics) TotalErrors() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dispatches - m.outcomes[OutcomeOK]
}

// Outcomes returns the number of dispatches that ended with o.
func (m *Metrics) Outcomes(o Outcome) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.outcomes[o]
}

// KindDispatches returns the number of dispatches of magics of kind.
// Sticky dispatches count as cell dispatches.
func (m *Metrics) KindDispatches(kind handler.Kind) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.kinds[kind.Normalize()]
}

// TotalPanics returns the number of recovered panics.
func (m *Metrics) TotalPanics() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.panics
}

// TotalFallbacks returns the number of raw-string fallbacks.
func (m *Metrics) TotalFallbacks() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fallbacks
}

// AverageDuration returns the mean dispatch duration.
func (m *Metrics) AverageDuration() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.dispatches == 0 {
		return 0
	}
	return m.duration / time.Duration(m.dispatches)
}

// MagicStats returns a copy of the statistics of magic, or nil.
func (m *Metrics) MagicStats(magic string) *MagicMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mm := m.magics[magic]
	if mm == nil {
		return nil
	}
	c := *mm
	return &c
}

// TopMagics returns the n most dispatched magics, most dispatched first.
func (m *Metrics) TopMagics(n int) []*MagicMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]*MagicMetrics, 0, len(m.magics))
	for _, mm := range m.magics {
		c := *mm
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].DispatchCount != all[j].DispatchCount {
			return all[i].DispatchCount > all[j].DispatchCount
		}
		return all[i].Name < all[j].Name
	})
	if n > len(all) {
		n = len(all)
	}
	return all[:n]
}

// Reset clears every statistic.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.magics = make(map[string]*MagicMetrics)
	m.outcomes = make(map[Outcome]uint64)
	m.kinds = make(map[handler.Kind]uint64)
	m.dispatches = 0
	m.panics = 0
	m.fallbacks = 0
	m.duration = 0
}

// MetricsSnapshot is a point-in-time copy of the global counters.
type MetricsSnapshot struct {
	TotalDispatches uint64
	TotalErrors     uint64
	Faults          uint64
	NotFound        uint64
	Cancelled       uint64
	TotalPanics     uint64
	TotalFallbacks  uint64
	TotalDuration   time.Duration
	AverageDuration time.Duration
	MagicCount      int
	Timestamp       time.Time
}

// Snapshot returns the current global counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := MetricsSnapshot{
		TotalDispatches: m.dispatches,
		TotalErrors:     m.dispatches - m.outcomes[OutcomeOK],
		Faults:          m.outcomes[OutcomeFault],
		NotFound:        m.outcomes[OutcomeNotFound],
		Cancelled:       m.outcomes[OutcomeCancelled],
		TotalPanics:     m.panics,
		TotalFallbacks:  m.fallbacks,
		TotalDuration:   m.duration,
		MagicCount:      len(m.magics),
		Timestamp:       time.Now(),
	}
	if m.dispatches > 0 {
		s.AverageDuration = m.duration / time.Duration(m.dispatches)
	}
	return s
}

// AverageDuration returns the mean duration of this magic.
func (mm *MagicMetrics) AverageDuration() time.Duration {
	if mm.DispatchCount == 0 {
		return 0
	}
	return mm.TotalDuration / time.Duration(mm.DispatchCount)
}

// ErrorRate returns the share of dispatches that did not end OK, in
// percent.
func (mm *MagicMetrics) ErrorRate() float64 {
	if mm.DispatchCount == 0 {
		return 0
	}
	return float64(mm.ErrorCount) / float64(mm.DispatchCount) * 100
}
