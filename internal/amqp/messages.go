package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Entities and operations carried by RecordChangeMessage.
const (
	EntityTransaction = "transaction"
	EntityGoal        = "goal"

	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// RecordChangeMessage tells the mirror worker that one record changed.
// It carries only the coordinates of the change; the worker fetches the
// current row from the database, so a stale or duplicated delivery
// converges on the latest state.
type RecordChangeMessage struct {
	EventID    string    `json:"event_id"`
	Entity     string    `json:"entity"`
	Op         string    `json:"op"`
	Owner      string    `json:"owner"`
	ID         int64     `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewRecordChangeMessage(entity, op, owner string, id int64) *RecordChangeMessage {
	return &RecordChangeMessage{
		EventID:    uuid.NewString(),
		Entity:     entity,
		Op:         op,
		Owner:      owner,
		ID:         id,
		OccurredAt: time.Now().UTC(),
	}
}

func (m *RecordChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordChangeMessageFromJSON(data []byte) (*RecordChangeMessage, error) {
	var msg RecordChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
