// Package events publishes domain events emitted by successful mutations.
package events

import (
	"context"
	"encoding/json"
	"time"

	"service-crm/internal/logger"
)

// Event types.
const (
	ContactCreated       = "contact.created"
	ContactUpdated       = "contact.updated"
	ContactDeleted       = "contact.deleted"
	LeadCreated          = "lead.created"
	LeadUpdated          = "lead.updated"
	LeadStageChanged     = "lead.stage_changed"
	LeadDeleted          = "lead.deleted"
	TaskCreated          = "task.created"
	TaskUpdated          = "task.updated"
	TaskDeleted          = "task.deleted"
	CommunicationCreated = "communication.created"
	CommunicationUpdated = "communication.updated"
	CommunicationDeleted = "communication.deleted"
	UserRegistered       = "user.registered"
)

type Event struct {
	Type       string    `json:"type"`
	OwnerID    int64     `json:"owner_id"`
	EntityID   int64     `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data,omitempty"`
}

func New(eventType string, ownerID, entityID int64, data any) Event {
	return Event{
		Type:       eventType,
		OwnerID:    ownerID,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events to whoever listens. Callers treat delivery as
// best effort: a failed publish never undoes the mutation.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// LogPublisher only logs events. It is used when no broker is configured.
type LogPublisher struct {
	Log logger.Logger
}

func NewLogPublisher(log logger.Logger) *LogPublisher {
	if log == nil {
		log = logger.NewNop()
	}
	return &LogPublisher{Log: log}
}

func (p *LogPublisher) Publish(_ context.Context, e Event) error {
	p.Log.Debug("event %s owner=%d entity=%d", e.Type, e.OwnerID, e.EntityID)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
