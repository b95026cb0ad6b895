package core

import (
	"sync"
	"time"
)

const AVG_COUNT uint8 = 30

// BuildMetrics keeps a rolling average over the last AVG_COUNT pipeline
// layout builds, plus totals.
type BuildMetrics struct {
	mu       sync.Mutex
	counter  uint8
	samples  uint8
	times    [AVG_COUNT]time.Duration
	builds   int
	failures int
}

func NewBuildMetrics() *BuildMetrics {
	return &BuildMetrics{}
}

// Record adds one build. Failed builds are counted but do not feed the
// average.
func (m *BuildMetrics) Record(elapsed time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.failures++
		return
	}
	m.builds++
	m.times[m.counter] = elapsed
	m.counter = (m.counter + 1) % AVG_COUNT
	if m.samples < AVG_COUNT {
		m.samples++
	}
}

func (m *BuildMetrics) Average() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.samples == 0 {
		return 0
	}
	var total time.Duration
	for i := uint8(0); i < m.samples; i++ {
		total += m.times[i]
	}
	return total / time.Duration(m.samples)
}

func (m *BuildMetrics) Builds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.builds
}

func (m *BuildMetrics) Failures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures
}
