package amqp

import (
	"testing"
	"time"
)

func TestNewTransactionEvent(t *testing.T) {
	ev := NewTransactionEvent(EventCreated, 42)

	if ev.Kind != EventCreated {
		t.Errorf("Kind = %q, want %q", ev.Kind, EventCreated)
	}
	if ev.ID != 42 {
		t.Errorf("ID = %d, want 42", ev.ID)
	}
	if ev.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(ev.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestTransactionEventJSON(t *testing.T) {
	timestamp := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ev := &TransactionEvent{Kind: EventUpdated, ID: 7, Timestamp: timestamp}

	body, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := TransactionEventFromJSON(body)
	if err != nil {
		t.Fatalf("TransactionEventFromJSON() error = %v", err)
	}

	if parsed.Kind != ev.Kind {
		t.Errorf("Kind = %q, want %q", parsed.Kind, ev.Kind)
	}
	if parsed.ID != ev.ID {
		t.Errorf("ID = %d, want %d", parsed.ID, ev.ID)
	}
	if !parsed.Timestamp.Equal(ev.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", parsed.Timestamp, ev.Timestamp)
	}
}

func TestTransactionEventFromJSONRejects(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"kind": "created", "id": "x"}`},
		{"unknown kind", `{"kind": "archived", "id": 1}`},
		{"empty kind", `{"id": 1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := TransactionEventFromJSON([]byte(tc.body)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
