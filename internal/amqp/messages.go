package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// TransactionCreatedMessage announces a new ledger row. It carries only
// the keys needed to load the row back; consumers read the rest from storage.
type TransactionCreatedMessage struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionCreatedMessage(id, sessionID string) *TransactionCreatedMessage {
	return &TransactionCreatedMessage{
		ID:        id,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
	}
}

func (m *TransactionCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionCreatedMessageFromJSON decodes a message and rejects payloads without an id.
func TransactionCreatedMessageFromJSON(data []byte) (*TransactionCreatedMessage, error) {
	var msg TransactionCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, errors.New("message has no transaction id")
	}
	return &msg, nil
}
