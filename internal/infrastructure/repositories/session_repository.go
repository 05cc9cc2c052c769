package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/you/clinicsvc/domain"
)

// SessionRepositoryImpl implements domain.SessionRepository using Redis.
// Every session id is also kept in a per-user set so that all sessions of an
// account can be revoked at once.
type SessionRepositoryImpl struct {
	client     *redis.Client
	prefix     string
	userPrefix string
	ttl        time.Duration
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(client *redis.Client, ttl time.Duration) domain.SessionRepository {
	return &SessionRepositoryImpl{
		client:     client,
		prefix:     "clinic:session:",
		userPrefix: "clinic:user_sessions:",
		ttl:        ttl,
	}
}

// Create implements domain.SessionRepository. The index set lives as long as
// the newest session in it.
func (r *SessionRepositoryImpl) Create(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	index := r.userPrefix + session.UserID
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.prefix+session.ID, data, r.ttl)
		pipe.SAdd(ctx, index, session.ID)
		pipe.Expire(ctx, index, r.ttl)
		return nil
	})
	if err != nil {
		return domain.NewStorageError("sessions.create", err)
	}
	return nil
}

// FindByID implements domain.SessionRepository
func (r *SessionRepositoryImpl) FindByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	key := r.prefix + sessionID
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, domain.NewStorageError("sessions.find", err)
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if session.ExpiresAt.Before(time.Now()) {
		r.client.Del(ctx, key)
		return nil, domain.ErrSessionExpired
	}

	return &session, nil
}

// Delete implements domain.SessionRepository
func (r *SessionRepositoryImpl) Delete(ctx context.Context, sessionID string) error {
	key := r.prefix + sessionID
	data, err := r.client.Get(ctx, key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return nil
	case err != nil:
		return domain.NewStorageError("sessions.delete", err)
	}

	var session domain.Session
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if json.Unmarshal([]byte(data), &session) == nil && session.UserID != "" {
			pipe.SRem(ctx, r.userPrefix+session.UserID, sessionID)
		}
		return nil
	})
	if err != nil {
		return domain.NewStorageError("sessions.delete", err)
	}
	return nil
}

// DeleteByUser implements domain.SessionRepository. Ids of sessions that
// already expired are dropped along with the live ones.
func (r *SessionRepositoryImpl) DeleteByUser(ctx context.Context, userID string) error {
	index := r.userPrefix + userID
	ids, err := r.client.SMembers(ctx, index).Result()
	if err != nil {
		return domain.NewStorageError("sessions.delete_by_user", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, r.prefix+id)
	}
	keys = append(keys, index)
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return domain.NewStorageError("sessions.delete_by_user", err)
	}
	return nil
}
