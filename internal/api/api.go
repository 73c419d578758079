// Package api is the operator console surface: a small JSON API driving the
// game controller, plus the Redis pub/sub fan-out that lets display devices
// follow the session and its audio cues read-only.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/edoxia/crayons/internal/domain"
	"github.com/edoxia/crayons/internal/errors"
	"github.com/edoxia/crayons/internal/event"
	"github.com/edoxia/crayons/internal/game"
	"github.com/edoxia/crayons/internal/podium"
	"github.com/edoxia/crayons/internal/telemetry"
)

type Config struct {
	Router       *gin.Engine
	EventBus     *event.Bus
	Game         *game.Controller
	Podium       *podium.Service
	Redis        Redis
	PubsubPrefix string
}

type Redis interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

type API struct {
	game   *game.Controller
	podium *podium.Service

	redis  Redis
	prefix string
}

func New(c Config) *API {
	a := &API{
		game:   c.Game,
		podium: c.Podium,
		redis:  c.Redis,
		prefix: c.PubsubPrefix,
	}

	// Operator console routes
	v1 := c.Router.Group("/v1")
	v1.GET("/session", a.GetSession)
	v1.PUT("/session/roster", a.UpdateRoster)
	v1.POST("/session/start", a.StartGame)
	v1.POST("/session/end", a.EndGame)
	v1.POST("/session/new", a.ResetSession)
	v1.POST("/session/buzzer-gate", a.AcknowledgeBuzzerGate)
	v1.POST("/turn/option", a.SelectOption)
	v1.POST("/turn/buzzer-team", a.SetBuzzerTeam)
	v1.POST("/turn/joker", a.UseJoker)
	v1.POST("/turn/joker/dismiss", a.DismissJoker)
	v1.POST("/turn/suspense", a.LaunchSuspense)
	v1.POST("/turn/reveal", a.Reveal)
	v1.POST("/turn/decision", a.AdminDecision)
	v1.POST("/turn/advance", a.AdvanceTurn)
	v1.GET("/podium/:session_id", a.GetPodium)

	// Presentation fan-out
	c.EventBus.Subscribe(domain.EventNameSessionChanged, func(ctx context.Context, e event.Event) error {
		return a.PublishSessionChanged(ctx, e.(domain.EventSessionChanged))
	})
	c.EventBus.Subscribe(domain.EventNameCueEmitted, func(ctx context.Context, e event.Event) error {
		return a.PublishCue(ctx, e.(domain.EventCueEmitted))
	})

	return a
}

func (a *API) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, a.game.Snapshot())
}

type UpdateRosterRequest struct {
	Teams []RosterTeam `json:"teams" binding:"required"`
}

type RosterTeam struct {
	Name    string   `json:"name" binding:"required"`
	Color   string   `json:"color"`
	Players []string `json:"players"`
}

func (a *API) UpdateRoster(c *gin.Context) {
	var req UpdateRosterRequest
	if !a.bind(c, &req) {
		return
	}

	teams := make([]game.TeamSetup, 0, len(req.Teams))
	for _, t := range req.Teams {
		teams = append(teams, game.TeamSetup{
			Name:    t.Name,
			Color:   t.Color,
			Players: t.Players,
		})
	}

	a.run(c, "update_roster", func(ctx context.Context) error {
		return a.game.UpdateRoster(ctx, teams)
	})
}

type StartGameRequest struct {
	QuestionCount int `json:"question_count" binding:"required,gt=0"`
}

func (a *API) StartGame(c *gin.Context) {
	var req StartGameRequest
	if !a.bind(c, &req) {
		return
	}

	a.run(c, "start_game", func(ctx context.Context) error {
		return a.game.StartGame(ctx, req.QuestionCount)
	})
}

func (a *API) EndGame(c *gin.Context) {
	a.run(c, "end_game", a.game.EndGameNow)
}

func (a *API) ResetSession(c *gin.Context) {
	a.run(c, "reset_session", a.game.ResetSession)
}

func (a *API) AcknowledgeBuzzerGate(c *gin.Context) {
	a.run(c, "buzzer_gate", a.game.AcknowledgeBuzzerGate)
}

type SelectOptionRequest struct {
	Index *int `json:"index" binding:"required"`
}

func (a *API) SelectOption(c *gin.Context) {
	var req SelectOptionRequest
	if !a.bind(c, &req) {
		return
	}

	a.run(c, "select_option", func(ctx context.Context) error {
		return a.game.SelectOption(ctx, *req.Index)
	})
}

type SetBuzzerTeamRequest struct {
	TeamIndex *int `json:"team_index" binding:"required"`
}

func (a *API) SetBuzzerTeam(c *gin.Context) {
	var req SetBuzzerTeamRequest
	if !a.bind(c, &req) {
		return
	}

	a.run(c, "set_buzzer_team", func(ctx context.Context) error {
		return a.game.SetBuzzerTeam(ctx, *req.TeamIndex)
	})
}

type UseJokerRequest struct {
	Joker domain.JokerKind `json:"joker" binding:"required"`
}

func (a *API) UseJoker(c *gin.Context) {
	var req UseJokerRequest
	if !a.bind(c, &req) {
		return
	}

	a.run(c, "use_joker", func(ctx context.Context) error {
		return a.game.UseJoker(ctx, req.Joker)
	})
}

func (a *API) DismissJoker(c *gin.Context) {
	a.run(c, "dismiss_joker", a.game.DismissJoker)
}

func (a *API) LaunchSuspense(c *gin.Context) {
	a.run(c, "launch_suspense", a.game.LaunchSuspense)
}

func (a *API) Reveal(c *gin.Context) {
	a.run(c, "reveal", a.game.Reveal)
}

type AdminDecisionRequest struct {
	IsCorrect *bool `json:"is_correct" binding:"required"`
}

func (a *API) AdminDecision(c *gin.Context) {
	var req AdminDecisionRequest
	if !a.bind(c, &req) {
		return
	}

	a.run(c, "admin_decision", func(ctx context.Context) error {
		return a.game.AdminDecision(ctx, *req.IsCorrect)
	})
}

func (a *API) AdvanceTurn(c *gin.Context) {
	a.run(c, "advance_turn", a.game.AdvanceTurn)
}

func (a *API) GetPodium(c *gin.Context) {
	r, err := a.podium.GetPodium(c.Request.Context(), podium.GetPodiumRequest{
		SessionID: c.Param("session_id"),
	})
	if err != nil {
		a.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, r)
}

// run executes a controller operation, counts it, and answers with the
// fresh session snapshot so the console never needs a follow-up GET.
func (a *API) run(c *gin.Context, op string, f func(ctx context.Context) error) {
	err := f(c.Request.Context())
	telemetry.CountOperation(op, err)
	if err != nil {
		a.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, a.game.Snapshot())
}

func (a *API) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		a.abort(c, errors.New(errors.CodeInvalidArgument, errors.WithCause(err)))
		return false
	}
	return true
}

func (a *API) abort(c *gin.Context, err error) {
	e := errors.Convert(err)
	c.JSON(e.HTTPStatusCode(), e)
}
