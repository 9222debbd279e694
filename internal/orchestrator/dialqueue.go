package orchestrator

import (
	"sync"
	"time"
)

// dialQueue is the FIFO of calls waiting for dial capacity. It holds call IDs
// only; the engine owns the sessions.
type dialQueue struct {
	waiting []string
	mu      sync.Mutex
}

func newDialQueue() *dialQueue {
	return &dialQueue{
		waiting: make([]string, 0, 64),
	}
}

// Enqueue appends a call to the back of the queue
func (q *dialQueue) Enqueue(callID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.waiting = append(q.waiting, callID)
}

// DequeueNext pops the call that has waited longest
func (q *dialQueue) DequeueNext() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.waiting) == 0 {
		return "", false
	}
	callID := q.waiting[0]
	q.waiting = q.waiting[1:]
	return callID, true
}

// Remove drops a specific call from the queue (force-ended before dialing)
func (q *dialQueue) Remove(callID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, id := range q.waiting {
		if id == callID {
			q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of waiting calls
func (q *dialQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}

// Wipe clears the queue and reports how many calls were dropped
func (q *dialQueue) Wipe() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	dropped := q.waiting
	q.waiting = make([]string, 0, 64)
	return dropped
}

// AnswerThreshold is the dial-to-connect window counted as answered in time
const AnswerThreshold = 30 * time.Second

// answerWindow bounds the rolling sample the answer rate is computed over
const answerWindow = 100

// answerTracker tracks the share of dial attempts answered within the
// threshold over a rolling window of outcomes. Unanswered dials (no_answer,
// busy, failed) count against the rate.
type answerTracker struct {
	outcomes [answerWindow]bool
	next     int
	filled   int
	mu       sync.Mutex
}

// RecordOutcome records one finished dial attempt
func (t *answerTracker) RecordOutcome(answeredWithin bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.outcomes[t.next] = answeredWithin
	t.next = (t.next + 1) % answerWindow
	if t.filled < answerWindow {
		t.filled++
	}
}

// Rate returns the current answer rate as a percentage. With no samples yet
// the rate is 100, matching an untested service level.
func (t *answerTracker) Rate() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.filled == 0 {
		return 100.0
	}
	answered := 0
	for i := 0; i < t.filled; i++ {
		if t.outcomes[i] {
			answered++
		}
	}
	return float64(answered) / float64(t.filled) * 100.0
}
