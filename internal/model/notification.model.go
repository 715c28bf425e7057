package model

import "time"

type NotificationKind string

const (
	NotificationReservation NotificationKind = "reservation"
	NotificationRevenue     NotificationKind = "revenue"
)

// NotificationJob is what travels over the notification stream. The message
// text is composed by the consumer so the producing request stays short.
type NotificationJob struct {
	ID         string           `json:"id"`
	Kind       NotificationKind `json:"kind"`
	EntityID   int64            `json:"entity_id"`
	EnqueuedAt time.Time        `json:"enqueued_at"`
}

type NotificationOutcome string

const (
	NotificationSent    NotificationOutcome = "sent"
	NotificationSkipped NotificationOutcome = "skipped"
	NotificationFailed  NotificationOutcome = "failed"
)
