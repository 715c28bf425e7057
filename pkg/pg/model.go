package pg

import (
	"context"
	"time"
)

type actorContextKey string

const actorKey actorContextKey = "actor"

// Audit is embedded by entities that record who created and last touched them.
type Audit struct {
	CreatedBy *int64    `gorm:"column:created_by"`
	UpdatedBy *int64    `gorm:"column:updated_by"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func WithActor(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, actorKey, userID)
}

// Actor returns the id of the authenticated user bound to ctx, nil for
// anonymous callers.
func Actor(ctx context.Context) *int64 {
	id, ok := ctx.Value(actorKey).(int64)
	if !ok {
		return nil
	}
	return &id
}

func (a *Audit) Stamp(ctx context.Context, creating bool) {
	actor := Actor(ctx)
	if creating {
		a.CreatedBy = actor
	}
	a.UpdatedBy = actor
}
