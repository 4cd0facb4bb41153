// Package cheat publishes anti-cheat observations. The monitor that calls
// these helpers never mutates game state — it only reports (spec.md §4.E).
package cheat

import (
	"context"

	"clashfront/server/logging"
)

const EventSuspicious logging.EventType = "cheat.observed"

// Severity mirrors spec.md §4.E's two-tier scale, distinct from
// logging.Severity so a "confirmed" cheat event can still be logged at
// SeverityWarn/SeverityError depending on deployment policy.
type Severity string

const (
	SeveritySuspicious Severity = "suspicious"
	SeverityConfirmed  Severity = "confirmed"
)

type ObservationPayload struct {
	Rule     string  `json:"rule"`
	Severity Severity `json:"severity"`
	Detail   string  `json:"detail,omitempty"`
	Value    float64 `json:"value,omitempty"`
	Expected float64 `json:"expected,omitempty"`
}

// Observed publishes one anti-cheat finding. Confirmed events log at
// SeverityWarn; suspicious ones at SeverityDebug so they do not flood the
// console sink during normal play.
func Observed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ObservationPayload) {
	if pub == nil {
		return
	}
	severity := logging.SeverityDebug
	if payload.Severity == SeverityConfirmed {
		severity = logging.SeverityWarn
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSuspicious,
		Tick:     tick,
		Actor:    actor,
		Severity: severity,
		Category: logging.CategoryCheat,
		Payload:  payload,
	})
}
