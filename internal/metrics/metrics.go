package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/dennisdiepolder/eduvoice/internal/types"
)

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Call metrics
	CallsInitiatedTotal int64
	CallsConnectedTotal int64
	CallsCompletedTotal int64
	CallsFailedTotal    int64

	// Dialogue metrics
	TurnsProcessedTotal       int64
	InterpreterFallbacksTotal int64
	InterpreterTimeoutsTotal  int64

	// Outcome metrics
	RetriesScheduledTotal   int64
	CallbacksScheduledTotal int64
	HandoffsStartedTotal    int64
	HandoffsFailedTotal     int64
	LeadsUnreachableTotal   int64

	// Webhook metrics
	WebhookEventsTotal int64
	WebhookErrorsTotal int64

	// WebSocket metrics
	WebSocketConnectionsTotal    int64
	WebSocketDisconnectionsTotal int64
	WebSocketMessagesTotal       int64
	WebSocketErrorsTotal         int64
	activeConnections            int64

	// Broadcast metrics
	BroadcastCyclesTotal  int64
	BroadcastErrorsTotal  int64
	lastBroadcastDuration time.Duration

	// Active call distribution
	callsByState map[types.CallState]int
	activeCalls  int

	// HTTP metrics
	httpRequestsTotal    map[string]map[int]int64 // endpoint -> status -> count
	httpRequestDurations map[string][]float64     // endpoint -> durations

	// Timing
	startTime time.Time
}

// Global metrics instance
var instance *Metrics
var once sync.Once

// Get returns the singleton metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			callsByState:         make(map[types.CallState]int),
			httpRequestsTotal:    make(map[string]map[int]int64),
			httpRequestDurations: make(map[string][]float64),
			startTime:            time.Now(),
		}
	})
	return instance
}

func (m *Metrics) RecordCallInitiated() {
	m.mu.Lock()
	m.CallsInitiatedTotal++
	m.mu.Unlock()
}

func (m *Metrics) RecordCallConnected() {
	m.mu.Lock()
	m.CallsConnectedTotal++
	m.mu.Unlock()
}

func (m *Metrics) RecordCallCompleted() {
	m.mu.Lock()
	m.CallsCompletedTotal++
	m.mu.Unlock()
}

func (m *Metrics) RecordCallFailed() {
	m.mu.Lock()
	m.CallsFailedTotal++
	m.mu.Unlock()
}

func (m *Metrics) RecordTurnProcessed() {
	m.mu.Lock()
	m.TurnsProcessedTotal++
	m.mu.Unlock()
}

func (m *Metrics) RecordInterpreterFallback() {
	m.mu.Lock()
	m.InterpreterFallbacksTotal++
	m.mu.Unlock()
}

func (m *Metrics) RecordInterpreterTimeout() {
	m.mu.Lock()
	m.InterpreterTimeoutsTotal++
	m.mu.Unlock()
}

func (m *Metrics) RecordRetryScheduled() {
	m.mu.Lock()
	m.RetriesScheduledTotal++
	m.mu.Unlock()
}

func (m *Metrics) RecordCallbackScheduled() {
	m.mu.Lock()
	m.CallbacksScheduledTotal++
	m.mu.Unlock()
}

func (m *Metrics) RecordHandoffStarted() {
	m.mu.Lock()
	m.HandoffsStartedTotal++
	m.mu.Unlock()
}

func (m *Metrics) RecordHandoffFailed() {
	m.mu.Lock()
	m.HandoffsFailedTotal++
	m.mu.Unlock()
}

func (m *Metrics) RecordLeadUnreachable() {
	m.mu.Lock()
	m.LeadsUnreachableTotal++
	m.mu.Unlock()
}

func (m *Metrics) RecordWebhookEvent() {
	m.mu.Lock()
	m.WebhookEventsTotal++
	m.mu.Unlock()
}

func (m *Metrics) RecordWebhookError() {
	m.mu.Lock()
	m.WebhookErrorsTotal++
	m.mu.Unlock()
}

// RecordWebSocketConnect increments connection counters
func (m *Metrics) RecordWebSocketConnect() {
	m.mu.Lock()
	m.WebSocketConnectionsTotal++
	m.activeConnections++
	m.mu.Unlock()
}

// RecordWebSocketDisconnect increments disconnection counter
func (m *Metrics) RecordWebSocketDisconnect() {
	m.mu.Lock()
	m.WebSocketDisconnectionsTotal++
	m.activeConnections--
	m.mu.Unlock()
}

// RecordWebSocketMessage increments message counter
func (m *Metrics) RecordWebSocketMessage() {
	m.mu.Lock()
	m.WebSocketMessagesTotal++
	m.mu.Unlock()
}

// RecordWebSocketError increments WebSocket error counter
func (m *Metrics) RecordWebSocketError() {
	m.mu.Lock()
	m.WebSocketErrorsTotal++
	m.mu.Unlock()
}

// RecordBroadcastCycle records one monitor broadcast cycle
func (m *Metrics) RecordBroadcastCycle(duration time.Duration) {
	m.mu.Lock()
	m.BroadcastCyclesTotal++
	m.lastBroadcastDuration = duration
	m.mu.Unlock()
}

// RecordBroadcastError increments the broadcast error counter
func (m *Metrics) RecordBroadcastError() {
	m.mu.Lock()
	m.BroadcastErrorsTotal++
	m.mu.Unlock()
}

// UpdateCallStats updates the active-call distribution metrics
func (m *Metrics) UpdateCallStats(calls []types.CallSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callsByState = make(map[types.CallState]int)
	m.activeCalls = len(calls)
	for _, call := range calls {
		m.callsByState[call.CallState]++
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(endpoint string, statusCode int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.httpRequestsTotal[endpoint] == nil {
		m.httpRequestsTotal[endpoint] = make(map[int]int64)
	}
	m.httpRequestsTotal[endpoint][statusCode]++

	// Keep last 100 durations for percentile calculation
	if len(m.httpRequestDurations[endpoint]) >= 100 {
		m.httpRequestDurations[endpoint] = m.httpRequestDurations[endpoint][1:]
	}
	m.httpRequestDurations[endpoint] = append(m.httpRequestDurations[endpoint], duration.Seconds())
}

// GetActiveConnections returns current WebSocket connections
func (m *Metrics) GetActiveConnections() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeConnections
}

// Snapshot returns the counters for the stats endpoint
func (m *Metrics) Snapshot() map[string]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]int64{
		"calls_initiated":       m.CallsInitiatedTotal,
		"calls_connected":       m.CallsConnectedTotal,
		"calls_completed":       m.CallsCompletedTotal,
		"calls_failed":          m.CallsFailedTotal,
		"turns_processed":       m.TurnsProcessedTotal,
		"interpreter_fallbacks": m.InterpreterFallbacksTotal,
		"interpreter_timeouts":  m.InterpreterTimeoutsTotal,
		"retries_scheduled":     m.RetriesScheduledTotal,
		"callbacks_scheduled":   m.CallbacksScheduledTotal,
		"handoffs_started":      m.HandoffsStartedTotal,
		"handoffs_failed":       m.HandoffsFailedTotal,
		"leads_unreachable":     m.LeadsUnreachableTotal,
		"active_calls":          int64(m.activeCalls),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		// Helper to write metric
		write := func(name string, value interface{}, labels ...string) {
			labelStr := ""
			if len(labels) > 0 {
				labelStr = "{"
				for i := 0; i < len(labels); i += 2 {
					if i > 0 {
						labelStr += ","
					}
					labelStr += labels[i] + "=\"" + labels[i+1] + "\""
				}
				labelStr += "}"
			}

			switch v := value.(type) {
			case int:
				w.Write([]byte(name + labelStr + " " + strconv.Itoa(v) + "\n"))
			case int64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatInt(v, 10) + "\n"))
			case float64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatFloat(v, 'f', 6, 64) + "\n"))
			}
		}

		// System metrics
		write("eduvoice_uptime_seconds", time.Since(m.startTime).Seconds())

		// Call metrics
		write("eduvoice_calls_initiated_total", m.CallsInitiatedTotal)
		write("eduvoice_calls_connected_total", m.CallsConnectedTotal)
		write("eduvoice_calls_completed_total", m.CallsCompletedTotal)
		write("eduvoice_calls_failed_total", m.CallsFailedTotal)
		write("eduvoice_active_calls", m.activeCalls)

		// Dialogue metrics
		write("eduvoice_turns_processed_total", m.TurnsProcessedTotal)
		write("eduvoice_interpreter_fallbacks_total", m.InterpreterFallbacksTotal)
		write("eduvoice_interpreter_timeouts_total", m.InterpreterTimeoutsTotal)

		// Outcome metrics
		write("eduvoice_retries_scheduled_total", m.RetriesScheduledTotal)
		write("eduvoice_callbacks_scheduled_total", m.CallbacksScheduledTotal)
		write("eduvoice_handoffs_started_total", m.HandoffsStartedTotal)
		write("eduvoice_handoffs_failed_total", m.HandoffsFailedTotal)
		write("eduvoice_leads_unreachable_total", m.LeadsUnreachableTotal)

		// Webhook metrics
		write("eduvoice_webhook_events_total", m.WebhookEventsTotal)
		write("eduvoice_webhook_errors_total", m.WebhookErrorsTotal)

		// WebSocket metrics
		write("eduvoice_websocket_connections_total", m.WebSocketConnectionsTotal)
		write("eduvoice_websocket_disconnections_total", m.WebSocketDisconnectionsTotal)
		write("eduvoice_websocket_active_connections", m.activeConnections)
		write("eduvoice_websocket_messages_total", m.WebSocketMessagesTotal)
		write("eduvoice_websocket_errors_total", m.WebSocketErrorsTotal)

		// Broadcast metrics
		write("eduvoice_broadcast_cycles_total", m.BroadcastCyclesTotal)
		write("eduvoice_broadcast_errors_total", m.BroadcastErrorsTotal)
		write("eduvoice_broadcast_duration_seconds", m.lastBroadcastDuration.Seconds())

		// Calls by state
		for state, count := range m.callsByState {
			write("eduvoice_calls_by_state", count, "state", string(state))
		}

		// HTTP metrics
		for endpoint, statusCodes := range m.httpRequestsTotal {
			for status, count := range statusCodes {
				write("eduvoice_http_requests_total", count, "endpoint", endpoint, "status", strconv.Itoa(status))
			}
		}
	}
}
