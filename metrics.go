package firegate

import "sync/atomic"

// MetricID identifies one counter in the registry.
type MetricID uint16

const (
	MetricAdmissionAllowed MetricID = iota
	MetricAdmissionDenied
	MetricPublicBypass
	MetricAuthSuccess
	MetricAuthRejected
	MetricForbidden
	MetricLoginSuccess
	MetricLoginFailure
	MetricTokenIssued
	MetricUserCreated
	MetricUserDuplicate
	MetricAdminSeeded

	metricCount
)

// Metrics is a fixed-size atomic counter registry. Increments are wait-free
// and snapshots copy the whole registry at once.
type Metrics struct {
	counters [metricCount]atomic.Uint64
}

func newMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || id >= metricCount {
		return
	}
	m.counters[id].Add(1)
}

// MetricsSnapshot is a point-in-time copy of every counter.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	snapshot := MetricsSnapshot{
		Counters: make(map[MetricID]uint64, metricCount),
	}
	if m == nil {
		return snapshot
	}
	for id := MetricID(0); id < metricCount; id++ {
		snapshot.Counters[id] = m.counters[id].Load()
	}
	return snapshot
}
