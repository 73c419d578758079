package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/edoxia/crayons/internal/api"
	"github.com/edoxia/crayons/internal/event"
	"github.com/edoxia/crayons/internal/game"
	"github.com/edoxia/crayons/internal/joker"
	"github.com/edoxia/crayons/internal/podium"
	"github.com/edoxia/crayons/internal/question"
	"github.com/edoxia/crayons/internal/reveal"
	"github.com/edoxia/crayons/internal/scoring"
	"github.com/edoxia/crayons/internal/sessionstore"
	"github.com/edoxia/crayons/internal/telemetry"
)

type Config struct {
	HTTP struct {
		Port int32
	}

	Redis struct {
		Cache struct {
			Addrs  []string
			Pass   string
			Prefix string
		}

		Pubsub struct {
			Addrs  []string
			Pass   string
			Prefix string
		}
	}

	Postgres struct {
		Addr string
		User string
		Pass string
		Name string
	}

	Game struct {
		PointsPerCorrect int
	}
}

type Server struct {
	c Config

	eb *event.Bus

	infra struct {
		redis struct {
			cache  redis.UniversalClient
			pubsub redis.UniversalClient
		}

		postgres *pgxpool.Pool
	}

	service struct {
		questions *question.Service
		store     *sessionstore.Store
		podium    *podium.Service
		game      *game.Controller
	}

	http *http.Server
}

func Init(c Config) (*Server, error) {
	s := &Server{c: c}

	s.eb = event.NewBus()

	if err := s.initInfra(); err != nil {
		return nil, fmt.Errorf("server: init infra: %w", err)
	}

	if err := s.initService(); err != nil {
		return nil, fmt.Errorf("server: init service: %w", err)
	}

	s.initAPI()
	return s, nil
}

func (s *Server) initInfra() error {
	if err := s.initRedis(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	if err := s.initPostgres(); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}

	return nil
}

func (s *Server) initRedis() error {
	connect := func(addrs []string, pass string) (redis.UniversalClient, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		r := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    addrs,
			Password: pass,
		})

		if err := telemetry.MonitorRedis(r); err != nil {
			return nil, err
		}

		if err := r.Ping(ctx).Err(); err != nil {
			return nil, err
		}

		return r, nil
	}

	var err error
	s.infra.redis.cache, err = connect(s.c.Redis.Cache.Addrs, s.c.Redis.Cache.Pass)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	s.infra.redis.pubsub, err = connect(s.c.Redis.Pubsub.Addrs, s.c.Redis.Pubsub.Pass)
	if err != nil {
		return fmt.Errorf("pubsub: %w", err)
	}

	return nil
}

func (s *Server) initPostgres() (err error) {
	// Postgres is optional: without it the engine runs on the demo question
	// set and the ephemeral cache alone.
	if s.c.Postgres.Addr == "" {
		slog.Info("server: no postgres configured, running cache-only")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cc, err := pgxpool.ParseConfig(fmt.Sprintf("postgres://%s:%s@%s/%s",
		s.c.Postgres.User, s.c.Postgres.Pass, s.c.Postgres.Addr, s.c.Postgres.Name))
	if err != nil {
		return err
	}

	db, err := pgxpool.NewWithConfig(ctx, cc)
	if err != nil {
		return err
	}

	if err := db.Ping(ctx); err != nil {
		return err
	}

	s.infra.postgres = db
	return nil
}

func (s *Server) initService() error {
	s.service.questions = question.NewService(question.Config{
		DB: s.infra.postgres,
	})

	s.service.store = sessionstore.NewStore(sessionstore.Config{
		EventBus: s.eb,
		Redis:    s.infra.redis.cache,
		DB:       s.infra.postgres,
		Prefix:   s.c.Redis.Cache.Prefix,
	})

	s.service.podium = podium.NewService(podium.Config{
		EventBus: s.eb,
		Redis:    s.infra.redis.cache,
		DB:       s.infra.postgres,
		Prefix:   s.c.Redis.Cache.Prefix,
	})

	cues := game.BusCues{Bus: s.eb}
	s.service.game = game.NewController(game.Config{
		EventBus:  s.eb,
		Questions: s.service.questions,
		Store:     s.service.store,
		Jokers:    joker.NewSystem(joker.Config{}),
		Cues:      cues,
		Sequencer: reveal.NewSequencer(reveal.Config{
			Cues: cues,
			Scoring: scoring.NewService(scoring.Config{
				PointsPerCorrect: s.c.Game.PointsPerCorrect,
			}),
		}),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.service.game.Resume(ctx)
}

func (s *Server) initAPI() {
	e := gin.New()
	e.GET("/metrics", gin.WrapH(promhttp.Handler()))
	pprof.Register(e, "/debug/pprof")
	e.Use(gin.Recovery(), telemetry.RequestLogger())

	api.New(api.Config{
		Router:       e,
		EventBus:     s.eb,
		Game:         s.service.game,
		Podium:       s.service.podium,
		Redis:        s.infra.redis.pubsub,
		PubsubPrefix: s.c.Redis.Pubsub.Prefix,
	})

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.c.HTTP.Port),
		Handler:           e,
		ReadHeaderTimeout: 60 * time.Second,
	}
}

func (s *Server) Start() {
	ctx := context.TODO()

	slog.InfoContext(ctx, fmt.Sprintf("server: HTTP listening on port %d", s.c.HTTP.Port))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.ErrorContext(ctx, "server: shutdown with error", "error", err)
	}
}

func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "server: shutdown HTTP failed", "error", err)
	}

	s.eb.Stop()

	slog.InfoContext(ctx, "server: shutdown completed")
}
