// Package lifecycle publishes structured events for room and player
// lifecycle transitions: create, join, leave, ready, start, end.
package lifecycle

import (
	"context"

	"clashfront/server/logging"
)

const (
	EventRoomCreated    logging.EventType = "lifecycle.room_created"
	EventPlayerJoined   logging.EventType = "lifecycle.player_joined"
	EventPlayerLeft     logging.EventType = "lifecycle.player_left"
	EventPlayerPromoted logging.EventType = "lifecycle.player_promoted"
	EventGraceStarted   logging.EventType = "lifecycle.grace_started"
	EventGraceExpired   logging.EventType = "lifecycle.grace_expired"
	EventMatchStarted   logging.EventType = "lifecycle.match_started"
	EventMatchEnded     logging.EventType = "lifecycle.match_ended"
	EventRoomSwept      logging.EventType = "lifecycle.room_swept"
	EventRoomPaused     logging.EventType = "lifecycle.room_paused"
	EventRoomResumed    logging.EventType = "lifecycle.room_resumed"
)

type RoomCreatedPayload struct {
	Seed       string `json:"seed"`
	Difficulty string `json:"difficulty"`
}

type PlayerJoinedPayload struct {
	Team string `json:"team"`
}

type PlayerLeftPayload struct {
	Reason string `json:"reason"`
}

type PlayerPromotedPayload struct {
	NewTeam string `json:"newTeam"`
}

type MatchEndedPayload struct {
	WinnerID string `json:"winnerId,omitempty"`
	Reason   string `json:"reason"`
}

func publish(ctx context.Context, pub logging.Publisher, evt logging.EventType, actor logging.EntityRef, severity logging.Severity, payload any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     evt,
		Actor:    actor,
		Severity: severity,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}

func RoomCreated(ctx context.Context, pub logging.Publisher, room logging.EntityRef, payload RoomCreatedPayload) {
	publish(ctx, pub, EventRoomCreated, room, logging.SeverityInfo, payload)
}

func PlayerJoined(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload PlayerJoinedPayload) {
	publish(ctx, pub, EventPlayerJoined, actor, logging.SeverityInfo, payload)
}

func PlayerLeft(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload PlayerLeftPayload) {
	publish(ctx, pub, EventPlayerLeft, actor, logging.SeverityInfo, payload)
}

func PlayerPromoted(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload PlayerPromotedPayload) {
	publish(ctx, pub, EventPlayerPromoted, actor, logging.SeverityInfo, payload)
}

func GraceStarted(ctx context.Context, pub logging.Publisher, actor logging.EntityRef) {
	publish(ctx, pub, EventGraceStarted, actor, logging.SeverityInfo, nil)
}

func GraceExpired(ctx context.Context, pub logging.Publisher, actor logging.EntityRef) {
	publish(ctx, pub, EventGraceExpired, actor, logging.SeverityWarn, nil)
}

func MatchStarted(ctx context.Context, pub logging.Publisher, room logging.EntityRef) {
	publish(ctx, pub, EventMatchStarted, room, logging.SeverityInfo, nil)
}

func MatchEnded(ctx context.Context, pub logging.Publisher, room logging.EntityRef, payload MatchEndedPayload) {
	publish(ctx, pub, EventMatchEnded, room, logging.SeverityInfo, payload)
}

func RoomSwept(ctx context.Context, pub logging.Publisher, room logging.EntityRef) {
	publish(ctx, pub, EventRoomSwept, room, logging.SeverityInfo, nil)
}

func RoomPaused(ctx context.Context, pub logging.Publisher, room logging.EntityRef) {
	publish(ctx, pub, EventRoomPaused, room, logging.SeverityInfo, nil)
}

func RoomResumed(ctx context.Context, pub logging.Publisher, room logging.EntityRef) {
	publish(ctx, pub, EventRoomResumed, room, logging.SeverityInfo, nil)
}
