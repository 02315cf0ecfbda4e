// Package redisdoc persists the scenario as a JSON document in Redis
// and uses pub/sub for the live cross-device feed. This is the
// authenticated-mode backend: one document per user, last writer wins.
package redisdoc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/philgetzen/my-finance-dashboard-sub003/internal/core"
)

type Store struct {
	client *redis.Client
	userID string
}

// New connects to Redis at addr and scopes the store to one user's
// document.
func New(addr, userID string) *Store {
	return &Store{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		userID: userID,
	}
}

// document is the persisted layout: the scenario plus its write time.
type document struct {
	Scenario  core.Scenario `json:"scenario"`
	UpdatedAt string        `json:"updatedAt"`
}

func (s *Store) key() string {
	return "scenario:" + s.userID
}

// The pub/sub channel mirrors the document key, so every session
// watching this user sees every write, including its own.
func (s *Store) channel() string {
	return "scenario:" + s.userID + ":updates"
}

func (s *Store) Load(ctx context.Context) (core.Scenario, bool, error) {
	payload, err := s.client.Get(ctx, s.key()).Result()
	if errors.Is(err, redis.Nil) {
		return core.Scenario{}, false, nil
	}
	if err != nil {
		return core.Scenario{}, false, fmt.Errorf("load scenario document: %w", err)
	}

	var doc document
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return core.Scenario{}, false, fmt.Errorf("decode scenario document: %w", err)
	}
	return doc.Scenario, true, nil
}

func (s *Store) Save(ctx context.Context, sc core.Scenario, updatedAt time.Time) error {
	doc := document{
		Scenario:  sc,
		UpdatedAt: updatedAt.UTC().Format(time.RFC3339),
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode scenario document: %w", err)
	}

	if err := s.client.Set(ctx, s.key(), payload, 0).Err(); err != nil {
		return fmt.Errorf("save scenario document: %w", err)
	}
	if err := s.client.Publish(ctx, s.channel(), payload).Err(); err != nil {
		// The write landed; other devices just miss the live nudge and
		// will see it on their next load.
		slog.WarnContext(ctx, "Scenario update publish failed", "error", err)
	}
	return nil
}

func (s *Store) Watch(ctx context.Context) (<-chan core.Scenario, error) {
	sub := s.client.Subscribe(ctx, s.channel())
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("subscribe to scenario updates: %w", err)
	}

	out := make(chan core.Scenario, 8)
	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var doc document
				if err := json.Unmarshal([]byte(msg.Payload), &doc); err != nil {
					slog.Warn("Discarding malformed scenario snapshot", "error", err)
					continue
				}
				select {
				case out <- doc.Scenario:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
