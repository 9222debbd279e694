package storage

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dennisdiepolder/eduvoice/internal/types"
)

// Store defines the persistence interface for call records, leads, deferred
// tasks and callbacks. Read methods return nil slices (or a nil pointer)
// when nothing matches.
type Store interface {
	SaveCallRecord(record types.CallRecord) error
	GetCallRecords(dateKey string) ([]types.CallRecord, error)
	GetLeadCallsByDate(leadID, dateKey string) ([]types.CallRecord, error)

	SaveLead(record types.LeadRecord) error
	GetLead(leadID string) (*types.LeadRecord, error)
	ListLeads() ([]types.LeadRecord, error)

	SaveHandoff(record types.HandoffRecord) error
	GetHandoffs(leadID string) ([]types.HandoffRecord, error)

	SaveDeferredTask(task types.DeferredTask) error
	GetDeferredTasks(dueDate string) ([]types.DeferredTask, error)
	DeleteDeferredTask(dueDate, taskKey string) error

	SaveCallback(cb types.CallbackRecord) error
	GetCallbacks(leadID string) ([]types.CallbackRecord, error)

	TruncateAll() error
}

// NewStore creates the appropriate store based on configuration
func NewStore(ctx context.Context, logger zerolog.Logger) (Store, error) {
	cfg := LoadDynamoConfig()

	switch cfg.Mode {
	case DynamoModeLocal, DynamoModeAWS:
		return NewDynamoDBStore(ctx, cfg, logger)
	default:
		logger.Info().Msg("DynamoDB disabled (DYNAMO_MODE=memory), using in-process store")
		return NewMemoryStore(), nil
	}
}
