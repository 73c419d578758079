// Package sessionstore persists the game session to two independent sinks:
// a fast ephemeral Redis blob under a fixed key (reload recovery, read once
// at engine start) and a durable Postgres document (external visibility,
// never read back during a live game). Writes ride the event bus and are
// best-effort: failures are logged, gameplay is never blocked.
package sessionstore

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/edoxia/crayons/internal/domain"
	"github.com/edoxia/crayons/internal/event"
)

const defaultTTL = 12 * time.Hour

type Config struct {
	EventBus *event.Bus
	Redis    redis.UniversalClient
	DB       *pgxpool.Pool
	// Prefix namespaces the fixed cache key, e.g. "crayons".
	Prefix string
	// TTL bounds how long an abandoned session survives in the cache.
	TTL time.Duration
}

type Store struct {
	redis  redis.UniversalClient
	db     *pgxpool.Pool
	prefix string
	ttl    time.Duration
}

func NewStore(c Config) *Store {
	s := &Store{
		redis:  c.Redis,
		db:     c.DB,
		prefix: c.Prefix,
		ttl:    c.TTL,
	}
	if s.ttl <= 0 {
		s.ttl = defaultTTL
	}

	if c.EventBus != nil {
		c.EventBus.Subscribe(domain.EventNameSessionChanged, func(ctx context.Context, e event.Event) error {
			sess := e.(domain.EventSessionChanged).Session
			return s.Save(ctx, &sess)
		})
	}

	return s
}

// Save writes both sinks. Sink failures are reported for logging but carry
// no gameplay consequence; the in-memory session stays authoritative.
func (s *Store) Save(ctx context.Context, sess *domain.GameSession) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("sessionstore: marshal session: %w", err)
	}

	var eg errgroup.Group
	eg.Go(func() error {
		if err := s.saveEphemeral(ctx, b); err != nil {
			return fmt.Errorf("ephemeral: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		if err := s.saveDurable(ctx, sess.SessionID, b); err != nil {
			return fmt.Errorf("durable: %w", err)
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return fmt.Errorf("sessionstore: save: %w", err)
	}
	return nil
}

func (s *Store) saveEphemeral(ctx context.Context, blob []byte) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Set(ctx, s.cacheKey(), blob, s.ttl).Err()
}

func (s *Store) saveDurable(ctx context.Context, sessionID string, blob []byte) error {
	if s.db == nil {
		return nil
	}

	// Merge into the existing document rather than replacing it, so fields
	// written by other portal modules survive engine updates.
	const stmt = `
INSERT INTO game_sessions (session_key, session_id, state, update_time)
VALUES ($1, $2, $3, now())
ON CONFLICT (session_key) DO UPDATE
SET session_id = EXCLUDED.session_id,
    state = game_sessions.state || EXCLUDED.state,
    update_time = EXCLUDED.update_time;`

	_, err := s.db.Exec(ctx, stmt, s.cacheKey(), sessionID, blob)
	return err
}

// Load reads the ephemeral sink once, at engine start. A missing key is a
// clean cold start (nil, nil). A corrupt or partial blob never fails the
// engine: whatever decodes is kept and normalized, the rest defaults.
func (s *Store) Load(ctx context.Context) (*domain.GameSession, error) {
	if s.redis == nil {
		return nil, nil
	}

	b, err := s.redis.Get(ctx, s.cacheKey()).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sessionstore: load: %w", err)
	}

	var sess domain.GameSession
	if err := json.Unmarshal(b, &sess); err != nil {
		slog.WarnContext(ctx, "sessionstore: discarding corrupt session blob", "error", err)
		return nil, nil
	}

	sess.Normalize()
	return &sess, nil
}

// Clear drops the ephemeral blob, e.g. when a finished session is archived.
func (s *Store) Clear(ctx context.Context) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Del(ctx, s.cacheKey()).Err()
}

func (s *Store) cacheKey() string {
	return fmt.Sprintf("%s:session", s.prefix)
}
