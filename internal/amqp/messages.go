package amqp

import (
	"encoding/json"
	"time"
)

// BudgetRefreshedMessage signals that the sync proxy finished pulling
// fresh budgeting-service data for a user. Consumers drop any cached
// runway results for that user; the next request recomputes.
type BudgetRefreshedMessage struct {
	UserID   string    `json:"userId"`
	SyncedAt time.Time `json:"syncedAt"`
}

// NewBudgetRefreshedMessage stamps a refresh event with the current time.
func NewBudgetRefreshedMessage(userID string) *BudgetRefreshedMessage {
	return &BudgetRefreshedMessage{
		UserID:   userID,
		SyncedAt: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *BudgetRefreshedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetRefreshedMessageFromJSON decodes a message from JSON bytes.
func BudgetRefreshedMessageFromJSON(data []byte) (*BudgetRefreshedMessage, error) {
	var msg BudgetRefreshedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
