// Package aggregator assembles the per-second monitor frame: active-call
// snapshots, the events of the last tick and the rolling answer rate, fanned
// out to every monitor websocket client.
package aggregator

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	"github.com/dennisdiepolder/eduvoice/internal/alerts"
	"github.com/dennisdiepolder/eduvoice/internal/cache"
	"github.com/dennisdiepolder/eduvoice/internal/metrics"
	"github.com/dennisdiepolder/eduvoice/internal/types"
	"github.com/dennisdiepolder/eduvoice/internal/websocket"
)

// engineStats is the slice of the orchestrator the broadcaster reads
type engineStats interface {
	AnswerRate() float64
}

// Aggregator drains engine events and broadcasts monitor frames
type Aggregator struct {
	events  *cache.EventCache
	tracker *cache.LiveCallTracker
	engine  engineStats
	hub     *websocket.Hub
	logger  zerolog.Logger
}

// NewAggregator creates a new aggregator
func NewAggregator(events *cache.EventCache, tracker *cache.LiveCallTracker, engine engineStats, hub *websocket.Hub, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		events:  events,
		tracker: tracker,
		engine:  engine,
		hub:     hub,
		logger:  logger.With().Str("component", "aggregator").Logger(),
	}
}

// Start begins broadcasting monitor frames every second
func (a *Aggregator) Start(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	m := metrics.Get()
	a.logger.Info().Msg("aggregator started")

	for {
		select {
		case <-ctx.Done():
			a.logger.Info().Msg("aggregator stopped")
			return

		case <-ticker.C:
			cycleStart := time.Now()

			events := a.events.GetAndClear()
			calls := a.tracker.GetAll()
			m.UpdateCallStats(calls)

			// An idle engine with no listeners has nothing to say
			if len(calls) == 0 && len(events) == 0 {
				continue
			}
			if a.hub.ClientCount() == 0 {
				continue
			}

			alerts.CheckCallAlerts(calls)

			frame := types.MonitorFrame{
				Type:        "call_overview",
				Timestamp:   time.Now(),
				ActiveCalls: len(calls),
				AnswerRate:  a.engine.AnswerRate(),
				Calls:       calls,
				Events:      events,
			}

			data, err := sonic.Marshal(frame)
			if err != nil {
				a.logger.Error().Err(err).Msg("failed to marshal monitor frame")
				m.RecordBroadcastError()
				continue
			}
			a.hub.Broadcast(data)
			m.RecordBroadcastCycle(time.Since(cycleStart))

			a.logger.Debug().
				Int("active_calls", len(calls)).
				Int("events", len(events)).
				Int("clients", a.hub.ClientCount()).
				Msg("monitor frame broadcast")
		}
	}
}
