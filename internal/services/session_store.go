package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/yungbote/pylearn-backend/internal/data/repos"
	"github.com/yungbote/pylearn-backend/internal/domain/session"
	"github.com/yungbote/pylearn-backend/internal/platform/dbctx"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
)

// SessionStore persists per-session state. Load returns defaults for unknown sessions.
type SessionStore interface {
	Load(ctx context.Context, sid uuid.UUID) (session.State, error)
	Save(ctx context.Context, sid uuid.UUID, st session.State) error
	Delete(ctx context.Context, sid uuid.UUID) error
}

func decodeState(raw []byte) (session.State, error) {
	st := session.Defaults()
	if len(raw) == 0 {
		return st, nil
	}
	if err := json.Unmarshal(raw, &st); err != nil {
		return session.Defaults(), fmt.Errorf("decode session state: %w", err)
	}
	st.Normalize()
	return st, nil
}

// ---------- database ----------

type dbSessionStore struct {
	log  *logger.Logger
	repo repos.UserSessionStateRepo
}

func NewDBSessionStore(log *logger.Logger, repo repos.UserSessionStateRepo) SessionStore {
	return &dbSessionStore{log: log.With("service", "DBSessionStore"), repo: repo}
}

func (s *dbSessionStore) Load(ctx context.Context, sid uuid.UUID) (session.State, error) {
	row, err := s.repo.GetBySessionID(dbctx.Context{Ctx: ctx}, sid)
	if err != nil {
		return session.Defaults(), err
	}
	if row == nil {
		return session.Defaults(), nil
	}
	return decodeState(row.State)
}

func (s *dbSessionStore) Save(ctx context.Context, sid uuid.UUID, st session.State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	var userID *uuid.UUID
	if id := st.UserID(); id != uuid.Nil {
		userID = &id
	}
	return s.repo.Upsert(dbctx.Context{Ctx: ctx}, sid, userID, raw)
}

func (s *dbSessionStore) Delete(ctx context.Context, sid uuid.UUID) error {
	return s.repo.Delete(dbctx.Context{Ctx: ctx}, sid)
}

// ---------- redis ----------

type redisSessionStore struct {
	log    *logger.Logger
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisSessionStore(log *logger.Logger, rdb redis.UniversalClient, ttl time.Duration) SessionStore {
	return &redisSessionStore{
		log:    log.With("service", "RedisSessionStore"),
		rdb:    rdb,
		prefix: "pylearn:session:",
		ttl:    ttl,
	}
}

func (s *redisSessionStore) key(sid uuid.UUID) string { return s.prefix + sid.String() }

func (s *redisSessionStore) Load(ctx context.Context, sid uuid.UUID) (session.State, error) {
	raw, err := s.rdb.Get(ctx, s.key(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return session.Defaults(), nil
	}
	if err != nil {
		return session.Defaults(), fmt.Errorf("redis get session: %w", err)
	}
	return decodeState(raw)
}

// Save refreshes the TTL, so sessions expire after ttl of inactivity.
func (s *redisSessionStore) Save(ctx context.Context, sid uuid.UUID, st session.State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key(sid), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (s *redisSessionStore) Delete(ctx context.Context, sid uuid.UUID) error {
	return s.rdb.Del(ctx, s.key(sid)).Err()
}

// ---------- memory ----------

type memoryEntry struct {
	raw     []byte
	expires time.Time
}

type memorySessionStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemorySessionStore keeps encoded state in process memory. ttl <= 0 disables expiry.
func NewMemorySessionStore(ttl time.Duration) SessionStore {
	return &memorySessionStore{entries: map[uuid.UUID]memoryEntry{}, ttl: ttl, now: time.Now}
}

func (s *memorySessionStore) Load(ctx context.Context, sid uuid.UUID) (session.State, error) {
	s.mu.Lock()
	e, ok := s.entries[sid]
	if ok && s.ttl > 0 && s.now().After(e.expires) {
		delete(s.entries, sid)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return session.Defaults(), nil
	}
	return decodeState(e.raw)
}

func (s *memorySessionStore) Save(ctx context.Context, sid uuid.UUID, st session.State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.entries[sid] = memoryEntry{raw: raw, expires: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *memorySessionStore) Delete(ctx context.Context, sid uuid.UUID) error {
	s.mu.Lock()
	delete(s.entries, sid)
	s.mu.Unlock()
	return nil
}
