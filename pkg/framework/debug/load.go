package debug

import (
	"fmt"
	"sync/atomic"
	"time"
)

// CallbackLoad tracks how much of each block's time budget the audio
// callback uses. Record is lock-free and allocation-free so it can run on
// the audio thread; Report and Reset belong to other goroutines.
type CallbackLoad struct {
	count    atomic.Uint64
	totalNs  atomic.Uint64
	lastNs   atomic.Uint64
	maxNs    atomic.Uint64
	budgetNs atomic.Uint64
	overruns atomic.Uint64
}

// LoadStats is a point-in-time view of a CallbackLoad.
type LoadStats struct {
	Callbacks uint64
	Last      time.Duration
	Max       time.Duration
	Average   time.Duration
	Budget    time.Duration
	Overruns  uint64
}

// CPULoad returns the average callback time as a percentage of the budget.
func (s LoadStats) CPULoad() float64 {
	if s.Budget <= 0 {
		return 0
	}
	return float64(s.Average) / float64(s.Budget) * 100.0
}

// String formats the stats for a log line.
func (s LoadStats) String() string {
	return fmt.Sprintf("callbacks=%d avg=%v max=%v budget=%v load=%.1f%% overruns=%d",
		s.Callbacks, s.Average, s.Max, s.Budget, s.CPULoad(), s.Overruns)
}

// SetBudget sets the time available per callback from the block size.
func (c *CallbackLoad) SetBudget(sampleRate float64, blockSize int) {
	if sampleRate <= 0 || blockSize <= 0 {
		c.budgetNs.Store(0)
		return
	}
	c.budgetNs.Store(uint64(float64(blockSize) / sampleRate * float64(time.Second)))
}

// Record adds one callback duration.
func (c *CallbackLoad) Record(elapsed time.Duration) {
	ns := uint64(elapsed)
	if elapsed < 0 {
		ns = 0
	}
	c.count.Add(1)
	c.totalNs.Add(ns)
	c.lastNs.Store(ns)
	for {
		cur := c.maxNs.Load()
		if ns <= cur || c.maxNs.CompareAndSwap(cur, ns) {
			break
		}
	}
	if budget := c.budgetNs.Load(); budget > 0 && ns > budget {
		c.overruns.Add(1)
	}
}

// Stats returns the current statistics.
func (c *CallbackLoad) Stats() LoadStats {
	s := LoadStats{
		Callbacks: c.count.Load(),
		Last:      time.Duration(c.lastNs.Load()),
		Max:       time.Duration(c.maxNs.Load()),
		Budget:    time.Duration(c.budgetNs.Load()),
		Overruns:  c.overruns.Load(),
	}
	if s.Callbacks > 0 {
		s.Average = time.Duration(c.totalNs.Load() / s.Callbacks)
	}
	return s
}

// Reset clears the counters but keeps the budget.
func (c *CallbackLoad) Reset() {
	c.count.Store(0)
	c.totalNs.Store(0)
	c.lastNs.Store(0)
	c.maxNs.Store(0)
	c.overruns.Store(0)
}
