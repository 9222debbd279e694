package types

import (
	"strings"

	"github.com/google/uuid"
)

func shortID(prefix string) string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return prefix + "_" + hex[:12]
}

// NewCallID mints a call identifier (call_<hex12>)
func NewCallID() string { return shortID("call") }

// NewLeadID mints a lead identifier (lead_<hex12>)
func NewLeadID() string { return shortID("lead") }

// NewCallbackID mints a callback identifier (callback_<hex12>)
func NewCallbackID() string { return shortID("callback") }

// NewHandoffID mints a handoff identifier (handoff_<hex12>)
func NewHandoffID() string { return shortID("handoff") }

// NewTaskID mints a deferred-task identifier (task_<hex12>)
func NewTaskID() string { return shortID("task") }
