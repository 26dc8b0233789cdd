package amqp

import (
	"testing"
	"time"
)

func TestNewLedgerChangeMessage(t *testing.T) {
	msg := NewLedgerChangeMessage(EntityEntry, "42", ChangeCreated)

	if msg.Entity != EntityEntry || msg.ID != "42" || msg.Change != ChangeCreated {
		t.Errorf("message fields off: %+v", msg)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestLedgerChangeMessage_JSON(t *testing.T) {
	timestamp := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := &LedgerChangeMessage{
		Entity:    EntityRule,
		ID:        "rent",
		Change:    ChangeExcluded,
		Timestamp: timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := LedgerChangeMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("LedgerChangeMessageFromJSON() error = %v", err)
	}

	if parsed.Entity != msg.Entity || parsed.ID != msg.ID || parsed.Change != msg.Change {
		t.Errorf("parsed = %+v, want %+v", parsed, msg)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestLedgerChangeMessage_InvalidJSON(t *testing.T) {
	invalidJSON := []byte(`{"entity": 7}`)

	if _, err := LedgerChangeMessageFromJSON(invalidJSON); err == nil {
		t.Error("LedgerChangeMessageFromJSON() should fail with invalid JSON")
	}
}
