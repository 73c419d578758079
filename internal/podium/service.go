// Package podium records the one-time results written when a game reaches
// FINISHED and serves the ranked podium view.
package podium

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/edoxia/crayons/internal/domain"
	"github.com/edoxia/crayons/internal/errors"
	"github.com/edoxia/crayons/internal/event"
)

type Config struct {
	EventBus *event.Bus
	Redis    redis.UniversalClient
	DB       *pgxpool.Pool
	Prefix   string
}

type Service struct {
	redis  redis.UniversalClient
	db     *pgxpool.Pool
	prefix string
}

func NewService(c Config) *Service {
	s := &Service{
		redis:  c.Redis,
		db:     c.DB,
		prefix: c.Prefix,
	}

	if c.EventBus != nil {
		c.EventBus.Subscribe(domain.EventNameGameFinished, func(ctx context.Context, e event.Event) error {
			return s.RecordResults(ctx, e.(domain.EventGameFinished).Results)
		})
	}

	return s
}

// RecordResults archives the final standings: one sorted set for the podium
// view and one durable row per team. Entries arrive already ranked.
func (s *Service) RecordResults(ctx context.Context, r domain.Results) error {
	if s.redis != nil {
		zs := make([]redis.Z, 0, len(r.Entries))
		for _, e := range r.Entries {
			zs = append(zs, redis.Z{
				Score:  float64(e.Score),
				Member: e.TeamName,
			})
		}
		if err := s.redis.ZAdd(ctx, s.podiumKey(r.SessionID), zs...).Err(); err != nil {
			return fmt.Errorf("podium: zadd: %w", err)
		}
	}

	if s.db != nil {
		const stmt = `
INSERT INTO game_results (session_id, rank, team_name, score, players, finish_time)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (session_id, rank) DO NOTHING;`

		for rank, e := range r.Entries {
			if _, err := s.db.Exec(ctx, stmt, r.SessionID, rank+1, e.TeamName, e.Score, e.Players, r.FinishTime); err != nil {
				return fmt.Errorf("podium: insert result: %w", err)
			}
		}
	}

	return nil
}

type GetPodiumRequest struct {
	SessionID string
}

// GetPodium returns the recorded standings for a finished session, best
// score first.
func (s *Service) GetPodium(ctx context.Context, req GetPodiumRequest) (*domain.Results, error) {
	res, err := s.redis.ZRevRangeWithScores(ctx, s.podiumKey(req.SessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("podium: get: %w", err)
	}

	if len(res) == 0 {
		return nil, errors.New(errors.CodeNotFound,
			errors.WithMessagef("podium not found: session=%s", req.SessionID))
	}

	entries := make([]domain.ResultEntry, 0, len(res))
	for _, z := range res {
		entries = append(entries, domain.ResultEntry{
			TeamName: z.Member.(string),
			Score:    int(z.Score),
		})
	}

	return &domain.Results{
		SessionID: req.SessionID,
		Entries:   entries,
	}, nil
}

func (s *Service) podiumKey(session string) string {
	return fmt.Sprintf("%s:%s:podium", s.prefix, session)
}
