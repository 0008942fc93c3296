package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"debatehub/internal/model"
)

// SessionCache stores resumable progression snapshots in Redis. The live
// in-memory session is authoritative; the snapshot lets a respondent resume
// after a disconnect or a server restart.
type SessionCache interface {
	SetSnapshot(ctx context.Context, snapshot *model.SessionSnapshot) error
	GetSnapshot(ctx context.Context, sessionID string) (*model.SessionSnapshot, error)
	Delete(ctx context.Context, sessionID string) error
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache creates a new session cache
func NewSessionCache(client *redis.Client) SessionCache {
	return &sessionCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *sessionCache) key(sessionID string) string {
	return fmt.Sprintf("session:%s:state", sessionID)
}

func (c *sessionCache) SetSnapshot(ctx context.Context, snapshot *model.SessionSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(snapshot.SessionID), data, c.ttl).Err()
}

func (c *sessionCache) GetSnapshot(ctx context.Context, sessionID string) (*model.SessionSnapshot, error) {
	data, err := c.client.Get(ctx, c.key(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snapshot model.SessionSnapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (c *sessionCache) Delete(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, c.key(sessionID)).Err()
}
