package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/natillera-ledger/internal/domain/movement"
	"github.com/natillera-ledger/internal/domain/shared"
)

// Message stores a movement event until it is published to the movement topic
type Message struct {
	ID            int64               `json:"id"`
	EventID       uuid.UUID           `json:"event_id"`
	MemberID      int64               `json:"member_id"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

func NewMessage(event *movement.Event) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	return &Message{
		EventID:   event.EventID,
		MemberID:  event.MemberID,
		Payload:   payload,
		Status:    shared.OutboxStatusPending,
		Attempts:  0,
		CreatedAt: time.Now(),
	}, nil
}

// RetriesExhausted reports whether the attempt that just failed was the last one allowed
func (m *Message) RetriesExhausted(maxAttempts int) bool {
	return m.Attempts+1 >= maxAttempts
}

// Event decodes the movement event from the payload
func (m *Message) Event() (*movement.Event, error) {
	var event movement.Event
	if err := json.Unmarshal(m.Payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
