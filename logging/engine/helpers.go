// Package engine publishes internal-error events: invariant violations
// that fail-stop a room (spec.md §7 category 6). Nothing here is retried
// silently.
package engine

import (
	"context"

	"clashfront/server/logging"
)

const EventInvariantViolation logging.EventType = "engine.invariant_violation"

type InvariantViolationPayload struct {
	Invariant string `json:"invariant"`
	Detail    string `json:"detail"`
}

func InvariantViolation(ctx context.Context, pub logging.Publisher, tick uint64, room logging.EntityRef, payload InvariantViolationPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventInvariantViolation,
		Tick:     tick,
		Actor:    room,
		Severity: logging.SeverityError,
		Category: logging.CategoryEngine,
		Payload:  payload,
	})
}
