package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/dennisdiepolder/eduvoice/internal/metrics"
	"github.com/dennisdiepolder/eduvoice/internal/types"
)

// MaxRetries bounds redial attempts per lead; the fourth failure is terminal
const MaxRetries = 3

// retryDelays holds the backoff for retry attempts 1, 2 and 3
var retryDelays = [MaxRetries]time.Duration{
	1 * time.Hour,
	6 * time.Hour,
	24 * time.Hour,
}

// scheduleRetry applies the retry policy after a failed outbound attempt.
// Callers hold the session lock.
func (e *Engine) scheduleRetry(s *session) {
	call := s.call
	if call.RetryCount >= MaxRetries {
		e.markUnreachable(s)
		return
	}

	attempt := call.RetryCount + 1
	due := time.Now().Add(retryDelays[call.RetryCount])
	call.RetryAt = &due

	task := e.newDeferredTask(call, types.TaskRetryDial, due, attempt)
	if err := e.store.SaveDeferredTask(task); err != nil {
		e.logger.Error().Err(err).Str("call_id", call.CallID).Msg("failed to save retry task")
		return
	}

	metrics.Get().RecordRetryScheduled()
	e.publish(types.EventRetryScheduled, s, due.Format(time.RFC3339))
	e.logger.Info().
		Str("call_id", call.CallID).
		Str("lead_id", call.LeadID).
		Int("attempt", attempt).
		Time("due_at", due).
		Msg("retry scheduled")
}

// markUnreachable retires the lead after the retry budget is spent
func (e *Engine) markUnreachable(s *session) {
	s.outcome = "unreachable"
	e.updateLeadStatus(s.call.LeadID, types.LeadUnreachable)
	metrics.Get().RecordLeadUnreachable()
	e.publish(types.EventLeadUnreachable, s, "")

	ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
	defer cancel()
	msg := fmt.Sprintf("Lead unreachable after %d retry attempts", MaxRetries)
	if err := e.crm.NotifyFollowUp(ctx, s.call.LeadID, "crm", msg); err != nil {
		e.logger.Warn().Err(err).Str("lead_id", s.call.LeadID).Msg("unreachable notification failed")
	}

	e.logger.Warn().
		Str("call_id", s.call.CallID).
		Str("lead_id", s.call.LeadID).
		Msg("lead marked unreachable")
}

// taskKeyLayout keeps a fixed-width fraction so the lexicographic sort-key
// order of a partition is exactly due order.
const taskKeyLayout = "2006-01-02T15:04:05.000000000Z07:00"

// newDeferredTask builds a durable dial task. The sort key starts with the
// due time so partition order is due order.
func (e *Engine) newDeferredTask(call *types.Call, kind string, due time.Time, attempt int) types.DeferredTask {
	taskID := types.NewTaskID()
	return types.DeferredTask{
		DueDate:   due.Format(dateLayout),
		TaskKey:   due.Format(taskKeyLayout) + "#" + taskID,
		TaskID:    taskID,
		Kind:      kind,
		DueAt:     due.Format(time.RFC3339),
		CallID:    call.CallID,
		LeadID:    call.LeadID,
		Phone:     call.Phone,
		Language:  string(call.Language),
		Attempt:   attempt,
		CreatedAt: time.Now().Format(time.RFC3339),
	}
}

func (e *Engine) schedulerLoop(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.SchedulerTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info().Msg("scheduler loop stopped")
			return
		case <-ticker.C:
			e.schedulerTick()
		}
	}
}

// schedulerTick fires due deferred tasks and sweeps expired conversation
// contexts. Today's partition holds the normal due work; yesterday's catches
// tasks missed across a restart near midnight.
func (e *Engine) schedulerTick() {
	now := time.Now()

	// the in-process context store needs an eager sweep for calls that died
	// without a clean end; the redis store expires keys by TTL on its own
	if sweeper, ok := e.convos.(interface{ Sweep(now time.Time) int }); ok {
		if removed := sweeper.Sweep(now); removed > 0 {
			e.logger.Debug().Int("removed", removed).Msg("swept expired conversation contexts")
		}
	}

	dates := []string{
		now.Format(dateLayout),
		now.AddDate(0, 0, -1).Format(dateLayout),
	}

	for _, date := range dates {
		tasks, err := e.store.GetDeferredTasks(date)
		if err != nil {
			e.logger.Error().Err(err).Str("due_date", date).Msg("failed to query deferred tasks")
			continue
		}
		for _, task := range tasks {
			due, err := time.Parse(time.RFC3339, task.DueAt)
			if err != nil {
				e.logger.Error().Err(err).Str("task_id", task.TaskID).Msg("unparseable task due time, dropping")
				e.deleteTask(task)
				continue
			}
			if due.After(now) {
				// partition is in due order; the rest is not due yet
				break
			}
			e.dispatchTask(task)
		}
	}
}

// dispatchTask executes one due task and consumes its row. A task whose lead
// has since converted or gone unreachable is cancelled instead of dialed.
func (e *Engine) dispatchTask(task types.DeferredTask) {
	lead, err := e.store.GetLead(task.LeadID)
	if err != nil {
		e.logger.Error().Err(err).Str("task_id", task.TaskID).Msg("failed to load lead for task")
		return // retried next tick
	}
	if lead == nil {
		e.logger.Warn().Str("task_id", task.TaskID).Str("lead_id", task.LeadID).Msg("task lead no longer exists, dropping")
		e.deleteTask(task)
		return
	}

	switch types.LeadStatus(lead.Status) {
	case types.LeadQualified, types.LeadHandoff, types.LeadConverted, types.LeadUnreachable:
		e.logger.Info().
			Str("task_id", task.TaskID).
			Str("lead_id", task.LeadID).
			Str("lead_status", lead.Status).
			Msg("task cancelled, lead already settled")
		e.deleteTask(task)
		return
	}

	if e.sessionByLead(task.LeadID) != nil {
		e.logger.Debug().Str("task_id", task.TaskID).Str("lead_id", task.LeadID).Msg("lead already on a call, task deferred")
		return // retried next tick
	}

	retryCount := 0
	if task.Kind == types.TaskRetryDial {
		retryCount = task.Attempt
	}
	if task.Kind == types.TaskCallbackDial {
		e.completeCallback(task)
	}

	call := e.startOutbound(lead, retryCount)
	e.deleteTask(task)
	e.logger.Info().
		Str("task_id", task.TaskID).
		Str("kind", task.Kind).
		Str("call_id", call.CallID).
		Msg("deferred task dispatched")
}

func (e *Engine) deleteTask(task types.DeferredTask) {
	if err := e.store.DeleteDeferredTask(task.DueDate, task.TaskKey); err != nil {
		e.logger.Error().Err(err).Str("task_id", task.TaskID).Msg("failed to delete deferred task")
	}
}

// completeCallback marks the matching callback record as honored
func (e *Engine) completeCallback(task types.DeferredTask) {
	callbacks, err := e.store.GetCallbacks(task.LeadID)
	if err != nil {
		e.logger.Warn().Err(err).Str("lead_id", task.LeadID).Msg("failed to load callbacks")
		return
	}
	for _, cb := range callbacks {
		if cb.Status == types.CallbackScheduled && cb.ScheduledAt == task.DueAt {
			cb.Status = types.CallbackCompleted
			if err := e.store.SaveCallback(cb); err != nil {
				e.logger.Warn().Err(err).Str("callback_id", cb.CallbackID).Msg("failed to complete callback")
			}
			return
		}
	}
}
