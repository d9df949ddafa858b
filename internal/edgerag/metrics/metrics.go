// Package metrics provides business metrics for the edge-rag service.
package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics tracks service-level counters with atomic operations.
type Metrics struct {
	ragRequests      atomic.Int64
	ragErrors        atomic.Int64
	retrieveRequests atomic.Int64
	insertRequests   atomic.Int64
	setRequests      atomic.Int64
	askRequests      atomic.Int64

	limiterAllowed atomic.Int64
	limiterDenied  atomic.Int64
	limiterErrors  atomic.Int64

	logWrites   atomic.Int64
	logFailures atomic.Int64

	generateCalls    atomic.Int64
	generateDuration atomic.Int64 // cumulative milliseconds
}

// New creates a new Metrics instance.
func New() *Metrics {
	return &Metrics{}
}

// IncRagRequest increments the answer pipeline request counter.
func (m *Metrics) IncRagRequest() { m.ragRequests.Add(1) }

// IncRagError increments the answer pipeline error counter.
func (m *Metrics) IncRagError() { m.ragErrors.Add(1) }

// IncRetrieveRequest increments the retrieve counter.
func (m *Metrics) IncRetrieveRequest() { m.retrieveRequests.Add(1) }

// IncInsertRequest increments the batch insert counter.
func (m *Metrics) IncInsertRequest() { m.insertRequests.Add(1) }

// IncSetRequest increments the single-fact insert counter.
func (m *Metrics) IncSetRequest() { m.setRequests.Add(1) }

// IncAskRequest increments the simple QA counter.
func (m *Metrics) IncAskRequest() { m.askRequests.Add(1) }

// IncLimiterAllowed increments the limiter admit counter.
func (m *Metrics) IncLimiterAllowed() { m.limiterAllowed.Add(1) }

// IncLimiterDenied increments the limiter deny counter.
func (m *Metrics) IncLimiterDenied() { m.limiterDenied.Add(1) }

// IncLimiterError increments the limiter store error counter.
func (m *Metrics) IncLimiterError() { m.limiterErrors.Add(1) }

// IncLogWrite increments the request log write counter.
func (m *Metrics) IncLogWrite() { m.logWrites.Add(1) }

// IncLogFailure increments the request log failure counter.
func (m *Metrics) IncLogFailure() { m.logFailures.Add(1) }

// ObserveGenerate records one generation call and its duration.
func (m *Metrics) ObserveGenerate(d time.Duration) {
	m.generateCalls.Add(1)
	m.generateDuration.Add(d.Milliseconds())
}

// Snapshot is a point-in-time view of all counters.
type Snapshot struct {
	RagRequests      int64 `json:"rag_requests"`
	RagErrors        int64 `json:"rag_errors"`
	RetrieveRequests int64 `json:"retrieve_requests"`
	InsertRequests   int64 `json:"insert_requests"`
	SetRequests      int64 `json:"set_requests"`
	AskRequests      int64 `json:"ask_requests"`

	LimiterAllowed int64 `json:"limiter_allowed"`
	LimiterDenied  int64 `json:"limiter_denied"`
	LimiterErrors  int64 `json:"limiter_errors"`

	LogWrites   int64 `json:"log_writes"`
	LogFailures int64 `json:"log_failures"`

	GenerateCalls      int64 `json:"generate_calls"`
	GenerateDurationMs int64 `json:"generate_duration_ms"`
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		RagRequests:        m.ragRequests.Load(),
		RagErrors:          m.ragErrors.Load(),
		RetrieveRequests:   m.retrieveRequests.Load(),
		InsertRequests:     m.insertRequests.Load(),
		SetRequests:        m.setRequests.Load(),
		AskRequests:        m.askRequests.Load(),
		LimiterAllowed:     m.limiterAllowed.Load(),
		LimiterDenied:      m.limiterDenied.Load(),
		LimiterErrors:      m.limiterErrors.Load(),
		LogWrites:          m.logWrites.Load(),
		LogFailures:        m.logFailures.Load(),
		GenerateCalls:      m.generateCalls.Load(),
		GenerateDurationMs: m.generateDuration.Load(),
	}
}
