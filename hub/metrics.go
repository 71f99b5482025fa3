package hub

import "sync/atomic"

type MetricsSnapshot struct {
	AttachedConsumers int64
	SurfaceEvents     int64
	DamageEvents      int64
	EmptyResolves     int64
	BackendErrors     int64
}

type Metrics struct {
	attachedConsumers atomic.Int64
	surfaceEvents     atomic.Int64
	damageEvents      atomic.Int64
	emptyResolves     atomic.Int64
	backendErrors     atomic.Int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) RecordAttached(delta int) {
	m.attachedConsumers.Add(int64(delta))
}

func (m *Metrics) RecordSurfaceEvent(delta int) {
	m.surfaceEvents.Add(int64(delta))
}

func (m *Metrics) RecordDamageEvent(delta int) {
	m.damageEvents.Add(int64(delta))
}

func (m *Metrics) RecordEmptyResolve(delta int) {
	m.emptyResolves.Add(int64(delta))
}

func (m *Metrics) RecordBackendError(delta int) {
	m.backendErrors.Add(int64(delta))
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		AttachedConsumers: m.attachedConsumers.Load(),
		SurfaceEvents:     m.surfaceEvents.Load(),
		DamageEvents:      m.damageEvents.Load(),
		EmptyResolves:     m.emptyResolves.Load(),
		BackendErrors:     m.backendErrors.Load(),
	}
}
