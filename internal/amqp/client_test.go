package amqp

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeAck struct {
	acked, nacked, requeued bool
}

func (f *fakeAck) Ack(bool) error { f.acked = true; return nil }
func (f *fakeAck) Nack(_ bool, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func TestSettle(t *testing.T) {
	valid := []byte(`{"id":"6f9619ff-8b86-d011-b42d-00c04fc964ff","session_id":"s1","timestamp":"2025-01-01T12:00:00Z"}`)

	tests := []struct {
		name       string
		body       []byte
		handlerErr error
		wantAck    bool
		wantNack   bool
		wantQueue  bool
	}{
		{name: "handled", body: valid, wantAck: true},
		{name: "handler error requeues", body: valid, handlerErr: errors.New("sheet unavailable"), wantNack: true, wantQueue: true},
		{name: "malformed json dropped", body: []byte(`{"id": 12`), wantNack: true},
		{name: "missing id dropped", body: []byte(`{"session_id":"s1"}`), wantNack: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAck{}
			var got *TransactionCreatedMessage
			settle(context.Background(), tt.body, ack, func(_ context.Context, m *TransactionCreatedMessage) error {
				got = m
				return tt.handlerErr
			})

			if ack.acked != tt.wantAck || ack.nacked != tt.wantNack || ack.requeued != tt.wantQueue {
				t.Errorf("settle() ack=%v nack=%v requeue=%v, want %v %v %v",
					ack.acked, ack.nacked, ack.requeued, tt.wantAck, tt.wantNack, tt.wantQueue)
			}
			if tt.wantAck && (got == nil || got.SessionID != "s1") {
				t.Errorf("handler received %+v", got)
			}
		})
	}
}

func TestNewTransactionCreatedMessage(t *testing.T) {
	msg := NewTransactionCreatedMessage("abc", "s1")

	if msg.ID != "abc" || msg.SessionID != "s1" {
		t.Errorf("NewTransactionCreatedMessage() = %+v", msg)
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("NewTransactionCreatedMessage() Timestamp should be recent")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	parsed, err := TransactionCreatedMessageFromJSON(body)
	if err != nil {
		t.Fatalf("TransactionCreatedMessageFromJSON() error = %v", err)
	}
	if parsed.ID != msg.ID || !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("parsed = %+v, want %+v", parsed, msg)
	}
}
