package core

import (
	"fmt"
	"io"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/huangsam/contacts/schema"
)

var durationBuckets = metrics.ExponentialBuckets(1e-3, 5, 6)

// Metrics counts remote calls, snapshot reads and operation durations.
// A nil *Metrics records nothing.
type Metrics struct {
	set *metrics.Set
}

// NewMetrics returns metrics backed by a fresh set.
func NewMetrics() *Metrics {
	return &Metrics{set: metrics.NewSet()}
}

// WritePrometheus writes every metric in Prometheus text exposition format.
func (m *Metrics) WritePrometheus(w io.Writer) {
	if m == nil {
		return
	}
	m.set.WritePrometheus(w)
}

// RemoteCalls returns how many remote calls op has made with the given outcome.
func (m *Metrics) RemoteCalls(op schema.Operation, outcome string) uint64 {
	if m == nil {
		return 0
	}
	return m.set.GetOrCreateCounter(remoteCallsName(op, outcome)).Get()
}

// SnapshotReads returns how many snapshot reads ended with result ("hit" or "miss").
func (m *Metrics) SnapshotReads(result string) uint64 {
	if m == nil {
		return 0
	}
	return m.set.GetOrCreateCounter(snapshotReadsName(result)).Get()
}

func (m *Metrics) remoteCall(op schema.Operation, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.set.GetOrCreateCounter(remoteCallsName(op, outcome)).Inc()
}

func (m *Metrics) snapshotRead(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.set.GetOrCreateCounter(snapshotReadsName(result)).Inc()
}

func (m *Metrics) observe(op schema.Operation, start time.Time) {
	if m == nil {
		return
	}
	name := fmt.Sprintf(`contacts_operation_duration_seconds{op=%q}`, op)
	m.set.GetOrCreatePrometheusHistogramExt(name, durationBuckets).UpdateDuration(start)
}

func remoteCallsName(op schema.Operation, outcome string) string {
	return fmt.Sprintf(`contacts_remote_calls_total{op=%q,outcome=%q}`, op, outcome)
}

func snapshotReadsName(result string) string {
	return fmt.Sprintf(`contacts_snapshot_reads_total{result=%q}`, result)
}
