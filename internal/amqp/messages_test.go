package amqp

import (
	"testing"
	"time"
)

func TestBudgetRefreshedMessageRoundTrip(t *testing.T) {
	msg := &BudgetRefreshedMessage{
		UserID:   "user-123",
		SyncedAt: time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC),
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := BudgetRefreshedMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.UserID != msg.UserID {
		t.Errorf("userId = %s, want %s", got.UserID, msg.UserID)
	}
	if !got.SyncedAt.Equal(msg.SyncedAt) {
		t.Errorf("syncedAt = %v, want %v", got.SyncedAt, msg.SyncedAt)
	}
}

func TestBudgetRefreshedMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := BudgetRefreshedMessageFromJSON([]byte("{not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestNewBudgetRefreshedMessageStampsTime(t *testing.T) {
	before := time.Now()
	msg := NewBudgetRefreshedMessage("u1")
	if msg.SyncedAt.Before(before) {
		t.Error("syncedAt not stamped")
	}
	if msg.UserID != "u1" {
		t.Errorf("userId = %s", msg.UserID)
	}
}
