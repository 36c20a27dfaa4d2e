package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Events persists domain events for the event bus.
type Events struct {
	DB DBTX
}

// Insert stores a domain event and returns it with generated fields set.
func (r Events) Insert(ctx context.Context, topic, aggregateID string, payload []byte) (DomainEvent, error) {
	ev := DomainEvent{
		ID:          uuid.NewString(),
		Topic:       topic,
		AggregateID: aggregateID,
		Payload:     payload,
	}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO domain_events (id, topic, aggregate_id, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING occurred_at`,
		ev.ID, ev.Topic, ev.AggregateID, ev.Payload,
	).Scan(&ev.OccurredAt)
	if err != nil {
		return DomainEvent{}, fmt.Errorf("insert domain event: %w", err)
	}
	return ev, nil
}
