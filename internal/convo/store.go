// Package convo stores in-flight conversation contexts keyed by call ID.
// A context not touched for the retention window is no longer resumable;
// callers start a fresh one rather than reuse stale answers.
package convo

import (
	"context"
	"errors"

	"github.com/dennisdiepolder/eduvoice/internal/types"
)

var (
	// ErrNotFound means no context exists for the call ID
	ErrNotFound = errors.New("conversation context not found")
	// ErrExpired means the context existed but sat idle past the retention window
	ErrExpired = errors.New("conversation context expired")
)

// Store is the conversation context contract. Implementations must treat an
// expired context as unavailable: Get and Touch report ErrExpired (or
// ErrNotFound for backends where expiry physically removes the entry).
type Store interface {
	Get(ctx context.Context, callID string) (*types.ConversationContext, error)
	Save(ctx context.Context, c *types.ConversationContext) error
	Touch(ctx context.Context, callID string) error
	Delete(ctx context.Context, callID string) error
}
