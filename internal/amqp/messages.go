package amqp

import (
	"encoding/json"
	"time"
)

const (
	EntityEntry = "entry"
	EntityRule  = "rule"

	ChangeCreated  = "created"
	ChangeDeleted  = "deleted"
	ChangeExcluded = "excluded"
)

// LedgerChangeMessage announces that a ledger record changed. It carries only
// identity, not payload: consumers that need the record fetch it from the
// store; the server's own consumer only uses it to drop cached results.
type LedgerChangeMessage struct {
	Entity    string    `json:"entity"` // "entry" or "rule"
	ID        string    `json:"id"`
	Change    string    `json:"change"` // "created", "deleted" or "excluded"
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerChangeMessage creates a change message stamped with the current time.
func NewLedgerChangeMessage(entity, id, change string) *LedgerChangeMessage {
	return &LedgerChangeMessage{
		Entity:    entity,
		ID:        id,
		Change:    change,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *LedgerChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangeMessageFromJSON creates a message from JSON bytes.
func LedgerChangeMessageFromJSON(data []byte) (*LedgerChangeMessage, error) {
	var msg LedgerChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
