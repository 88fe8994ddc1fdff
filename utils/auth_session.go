// File: agenda/utils/auth_session.go
package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrSessionNotFound means the token was revoked or its session expired.
var ErrSessionNotFound = errors.New("session not found")

// AuthSession is the server-side record of a PIN login, keyed by token hash.
type AuthSession struct {
	Subject   string    `json:"subject"`
	Role      string    `json:"role"`
	IP        string    `json:"ip,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	LastSeen  time.Time `json:"lastSeen"`
}

// SessionStore keeps PIN sessions in the auth Redis DB with a sliding TTL.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) TTL() time.Duration { return s.ttl }

func sessionKey(tokenHash string) string {
	return AuthCachePrefix + tokenHash
}

// subjectKey indexes the token hashes issued to one role/subject pair.
func subjectKey(role, subject string) string {
	return AuthCachePrefix + "subject:" + role + ":" + subject
}

// Save stores the session for tokenHash.
func (s *SessionStore) Save(ctx context.Context, tokenHash string, session AuthSession) error {
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.LastSeen = now
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal auth session: %w", err)
	}
	index := subjectKey(session.Role, session.Subject)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(tokenHash), data, s.ttl)
		pipe.SAdd(ctx, index, tokenHash)
		pipe.Expire(ctx, index, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save auth session: %w", err)
	}
	return nil
}

// Touch loads the session and refreshes its TTL.
func (s *SessionStore) Touch(ctx context.Context, tokenHash string) (*AuthSession, error) {
	data, err := s.client.Get(ctx, sessionKey(tokenHash)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read auth session: %w", err)
	}
	var session AuthSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal auth session: %w", err)
	}
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Expire(ctx, sessionKey(tokenHash), s.ttl)
		pipe.Expire(ctx, subjectKey(session.Role, session.Subject), s.ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to refresh auth session: %w", err)
	}
	return &session, nil
}

// Delete revokes the session.
func (s *SessionStore) Delete(ctx context.Context, tokenHash string) error {
	return s.client.Del(ctx, sessionKey(tokenHash)).Err()
}

// DeleteSubject revokes every session issued to subject under role.
func (s *SessionStore) DeleteSubject(ctx context.Context, role, subject string) error {
	index := subjectKey(role, subject)
	hashes, err := s.client.SMembers(ctx, index).Result()
	if err != nil {
		return fmt.Errorf("failed to list sessions of %s: %w", subject, err)
	}
	keys := make([]string, 0, len(hashes)+1)
	for _, h := range hashes {
		keys = append(keys, sessionKey(h))
	}
	keys = append(keys, index)
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to revoke sessions of %s: %w", subject, err)
	}
	return nil
}
