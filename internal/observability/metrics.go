package observability

import "sync"

// Metrics provides basic in-memory counters for the bot. Silent recoveries
// (timestamp fallbacks, transport failures) are counted here so data-quality
// issues stay visible without interrupting the flow.
type Metrics struct {
	mu                 sync.Mutex
	eventCount         map[string]int64
	errorCount         map[string]int64
	updateCount        int64
	timestampFallbacks int64
	transportFailures  int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		eventCount: make(map[string]int64),
		errorCount: make(map[string]int64),
	}
}

// RecordUpdate counts one processed transport update.
func (m *Metrics) RecordUpdate() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCount++
}

// RecordEvent counts a published domain event by type.
func (m *Metrics) RecordEvent(eventType string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventCount[eventType]++
}

// RecordError counts a surfaced error by code.
func (m *Metrics) RecordError(code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[code]++
}

// RecordTimestampFallback counts one malformed timestamp replaced by "now".
func (m *Metrics) RecordTimestampFallback() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timestampFallbacks++
}

// RecordTransportFailure counts one failed delivery to a participant.
func (m *Metrics) RecordTransportFailure() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transportFailures++
}

// Snapshot returns a copy of all counters for the ops endpoint.
func (m *Metrics) Snapshot() map[string]any {
	if m == nil {
		return map[string]any{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	events := make(map[string]int64, len(m.eventCount))
	for k, v := range m.eventCount {
		events[k] = v
	}
	errs := make(map[string]int64, len(m.errorCount))
	for k, v := range m.errorCount {
		errs[k] = v
	}
	return map[string]any{
		"updates":             m.updateCount,
		"events":              events,
		"errors":              errs,
		"timestamp_fallbacks": m.timestampFallbacks,
		"transport_failures":  m.transportFailures,
	}
}

// TimestampFallbacks returns the fallback counter value.
func (m *Metrics) TimestampFallbacks() int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timestampFallbacks
}
