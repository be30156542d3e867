package repository

import (
	"context"
	"errors"
	"time"

	"github.com/tnqbao/gau-attachment-service/entity"
	"github.com/tnqbao/gau-attachment-service/infra"
)

// SessionRegistry enforces the staging session state machine:
// Empty -> Staging -> {Accepted | Rejected}. The registry is a TTL-bound
// coordination cache, not a durable record; the staged blobs themselves
// remain the source of truth.
type SessionRegistry interface {
	// Begin moves a session into Staging on first use. It fails with
	// entity.ErrSessionTerminated when the session was already accepted or
	// rejected.
	Begin(ctx context.Context, sessionID string) error
	// Terminate records the terminal state of a session.
	Terminate(ctx context.Context, sessionID string, state entity.SessionState) error
	// State reports the current session state; entity.SessionEmpty when the
	// session is unknown or expired.
	State(ctx context.Context, sessionID string) (entity.SessionState, error)
}

const (
	sessionKeyPrefix = "attachment:session:"
	sessionTTL       = 24 * time.Hour
)

type RedisSessionRegistry struct {
	redis *infra.RedisClient
}

func NewRedisSessionRegistry(redis *infra.RedisClient) *RedisSessionRegistry {
	return &RedisSessionRegistry{redis: redis}
}

func (r *RedisSessionRegistry) Begin(ctx context.Context, sessionID string) error {
	key := sessionKeyPrefix + sessionID

	ok, err := r.redis.SetNX(ctx, key, string(entity.SessionStaging), sessionTTL)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	state, err := r.State(ctx, sessionID)
	if err != nil {
		return err
	}
	if state.Terminal() {
		return entity.ErrSessionTerminated
	}

	// Still staging; keep the session alive for the ongoing edit.
	return r.redis.Expire(ctx, key, sessionTTL)
}

func (r *RedisSessionRegistry) Terminate(ctx context.Context, sessionID string, state entity.SessionState) error {
	return r.redis.Set(ctx, sessionKeyPrefix+sessionID, string(state), sessionTTL)
}

func (r *RedisSessionRegistry) State(ctx context.Context, sessionID string) (entity.SessionState, error) {
	var raw string
	err := r.redis.Get(ctx, sessionKeyPrefix+sessionID, &raw)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return entity.SessionEmpty, nil
		}
		return entity.SessionEmpty, err
	}
	return entity.SessionState(raw), nil
}
