// Package network publishes structured events for the transport layer:
// malformed frames, disconnects, and action-rejected replies.
package network

import (
	"context"

	"clashfront/server/logging"
)

const (
	EventMalformedFrame   logging.EventType = "network.malformed_frame"
	EventDisconnected     logging.EventType = "network.disconnected"
	EventActionRejected   logging.EventType = "network.action_rejected"
	EventCommandDuplicate logging.EventType = "network.command_duplicate"
)

type MalformedFramePayload struct {
	Reason string `json:"reason"`
}

type DisconnectedPayload struct {
	Reason string `json:"reason"`
}

type ActionRejectedPayload struct {
	ActionType string `json:"actionType"`
	Reason     string `json:"reason"`
}

func publish(ctx context.Context, pub logging.Publisher, evt logging.EventType, actor logging.EntityRef, severity logging.Severity, payload any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     evt,
		Actor:    actor,
		Severity: severity,
		Category: logging.CategoryNetwork,
		Payload:  payload,
	})
}

func MalformedFrame(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload MalformedFramePayload) {
	publish(ctx, pub, EventMalformedFrame, actor, logging.SeverityWarn, payload)
}

func Disconnected(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload DisconnectedPayload) {
	publish(ctx, pub, EventDisconnected, actor, logging.SeverityInfo, payload)
}

func ActionRejected(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload ActionRejectedPayload) {
	publish(ctx, pub, EventActionRejected, actor, logging.SeverityDebug, payload)
}
