// Package game hosts the trivia-show controller: the single host-of-truth
// process sequencing teams and players through the question bank. It owns
// the session phase machine, turn advancement, the cancellable pre-reveal
// timer and the buzzer-mode gate, and publishes every mutation for the
// fire-and-forget persistence and presentation subscribers.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/edoxia/crayons/internal/domain"
	"github.com/edoxia/crayons/internal/errors"
	"github.com/edoxia/crayons/internal/event"
	"github.com/edoxia/crayons/internal/joker"
	"github.com/edoxia/crayons/internal/question"
	"github.com/edoxia/crayons/internal/reveal"
	"github.com/edoxia/crayons/internal/sessionstore"
	"github.com/edoxia/crayons/internal/turnqueue"
)

type Config struct {
	EventBus  *event.Bus
	Questions *question.Service
	Sequencer *reveal.Sequencer
	Jokers    *joker.System
	Store     *sessionstore.Store
	Cues      reveal.CueEmitter

	// PreRevealDelay overrides the fixed reveal delay; tests shorten it.
	PreRevealDelay time.Duration
}

// Controller drives one game session at a time. The single-operator model
// means no contention on the game itself; the mutex only serializes the
// HTTP transport against the pre-reveal timer callback.
type Controller struct {
	eb    *event.Bus
	bank  *question.Service
	seq   *reveal.Sequencer
	jok   *joker.System
	store *sessionstore.Store
	cues  reveal.CueEmitter
	delay time.Duration

	mu      sync.Mutex
	sess    *domain.GameSession
	deck    *question.Deck
	pending *time.Timer
}

func NewController(c Config) *Controller {
	ctrl := &Controller{
		eb:    c.EventBus,
		bank:  c.Questions,
		seq:   c.Sequencer,
		jok:   c.Jokers,
		store: c.Store,
		cues:  c.Cues,
		delay: c.PreRevealDelay,
	}
	if ctrl.delay <= 0 {
		ctrl.delay = reveal.PreRevealDelay
	}
	return ctrl
}

// Resume loads the ephemeral blob written by a previous run. A PLAYING
// session picks up at the exact phase, step and turn it was persisted at; a
// reload mid-PRE_REVEAL re-arms the reveal timer for a full delay. Without
// a blob the controller starts a fresh SETUP session.
func (c *Controller) Resume(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.store.Load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "game: resume load failed, starting fresh", "error", err)
	}
	if sess == nil {
		return c.freshSessionLocked()
	}

	c.sess = sess
	if sess.Phase == domain.PhasePlaying {
		c.deck = question.NewDeck(c.bank.ListQuestions(ctx), nil)
		if sess.Step == domain.StepPreReveal {
			c.armPreRevealLocked()
		}
		slog.InfoContext(ctx, "game: resumed session",
			"session", sess.SessionID,
			"step", sess.Step,
			"turn", sess.CurrentTurnIndex,
		)
	}
	return nil
}

func (c *Controller) freshSessionLocked() error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("game: generate session ID: %w", err)
	}
	c.sess = domain.NewSession(id.String())
	c.deck = nil
	return nil
}

// Snapshot returns a deep copy of the current session.
func (c *Controller) Snapshot() *domain.GameSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.Clone()
}

// TeamSetup is one roster entry for the SETUP phase.
type TeamSetup struct {
	Name    string
	Color   string
	Players []string
}

// UpdateRoster replaces the roster. SETUP only: once the queue is built the
// teams are fixed for the whole game.
func (c *Controller) UpdateRoster(ctx context.Context, teams []TeamSetup) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess.Phase != domain.PhaseSetup {
		return errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("roster can only change during setup"))
	}

	roster := make([]domain.Team, 0, len(teams))
	for _, t := range teams {
		if t.Name == "" {
			return errors.New(errors.CodeInvalidArgument,
				errors.WithMessagef("team name must not be empty"))
		}
		roster = append(roster, domain.Team{
			ID:      uuid.New().String(),
			Name:    t.Name,
			Color:   t.Color,
			Players: append([]string(nil), t.Players...),
			Jokers:  domain.AllJokers(),
		})
	}

	c.sess.Teams = roster
	c.persistLocked(ctx)
	return nil
}

// StartGame builds the turn queue, deals the first question and enters
// PLAYING. Rejected while any roster problem would leave the queue empty;
// no state changes on rejection.
func (c *Controller) StartGame(ctx context.Context, questionCount int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess := c.sess
	if !sess.Phase.CanTransition(domain.PhasePlaying) {
		return errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("cannot start a game from phase %s", sess.Phase))
	}

	queue, err := turnqueue.Build(sess.Teams, questionCount)
	if err != nil {
		return err
	}

	c.deck = question.NewDeck(c.bank.ListQuestions(ctx), nil)

	sess.Phase = domain.PhasePlaying
	sess.TurnQueue = queue
	sess.MaxLevel = len(queue)
	sess.Level = 0
	sess.CurrentTurnIndex = 0
	c.dealLocked()

	c.persistLocked(ctx)
	return nil
}

// SelectOption records the current player's pick.
func (c *Controller) SelectOption(ctx context.Context, index int) error {
	return c.mutate(ctx, func() error {
		return c.seq.SelectOption(c.sess, index)
	})
}

// SetBuzzerTeam names the fastest team on the open buzzer turn.
func (c *Controller) SetBuzzerTeam(ctx context.Context, teamIndex int) error {
	return c.mutate(ctx, func() error {
		return c.seq.SetBuzzerTeam(c.sess, teamIndex)
	})
}

// UseJoker consumes a one-time power-up for the answering team.
func (c *Controller) UseJoker(ctx context.Context, kind domain.JokerKind) error {
	return c.mutate(ctx, func() error {
		return c.jok.Invoke(c.sess, kind)
	})
}

// DismissJoker closes the call/public modal.
func (c *Controller) DismissJoker(ctx context.Context) error {
	return c.mutate(ctx, func() error {
		return c.jok.Dismiss(c.sess)
	})
}

// LaunchSuspense locks the answer in and starts the tension loop.
func (c *Controller) LaunchSuspense(ctx context.Context) error {
	return c.mutate(ctx, func() error {
		return c.seq.LaunchSuspense(ctx, c.sess)
	})
}

// Reveal starts the answer reveal. Stored-answer questions flash through
// the fixed PRE_REVEAL delay before scoring; oral questions wait for the
// adjudicator instead.
func (c *Controller) Reveal(ctx context.Context) error {
	return c.mutate(ctx, func() error {
		timed, err := c.seq.BeginReveal(ctx, c.sess)
		if err != nil {
			return err
		}
		if timed {
			c.armPreRevealLocked()
		}
		return nil
	})
}

// armPreRevealLocked schedules the PRE_REVEAL -> REVEAL transition. The
// turn index is captured so a timer that outlives its turn (advance, abort,
// new game) finds the check failing and does nothing.
func (c *Controller) armPreRevealLocked() {
	c.cancelPreRevealLocked()

	turn := c.sess.CurrentTurnIndex
	sessID := c.sess.SessionID
	c.pending = time.AfterFunc(c.delay, func() {
		c.completePreReveal(turn, sessID)
	})
}

func (c *Controller) cancelPreRevealLocked() {
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

func (c *Controller) completePreReveal(turn int, sessID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess := c.sess
	if sess.SessionID != sessID || sess.Phase != domain.PhasePlaying ||
		sess.Step != domain.StepPreReveal || sess.CurrentTurnIndex != turn {
		// Stale timer; the game moved on.
		return
	}

	ctx := context.Background()
	if err := c.seq.CompletePreReveal(ctx, sess); err != nil {
		slog.ErrorContext(ctx, "game: complete pre-reveal failed", "error", err)
		return
	}
	c.pending = nil
	c.persistLocked(ctx)
}

// AdminDecision resolves an oral question with the adjudicator's verdict.
func (c *Controller) AdminDecision(ctx context.Context, isCorrect bool) error {
	return c.mutate(ctx, func() error {
		return c.seq.AdminDecision(ctx, c.sess, isCorrect)
	})
}

// AdvanceTurn moves to the next queue entry with a fresh question, or
// finishes the game at the end of the queue. Valid only once the current
// turn has revealed. Entering the buzzer segment for the first time pauses
// behind the one-time operator gate instead of dealing immediately.
func (c *Controller) AdvanceTurn(ctx context.Context) error {
	return c.mutate(ctx, func() error {
		sess := c.sess
		if sess.Phase != domain.PhasePlaying || sess.Step != domain.StepReveal {
			return errors.New(errors.CodeFailedPrecondition,
				errors.WithMessagef("cannot advance before the reveal"))
		}

		c.cancelPreRevealLocked()

		if sess.CurrentTurnIndex == len(sess.TurnQueue)-1 {
			c.finishLocked(ctx)
			return nil
		}

		leaving := sess.TurnQueue[sess.CurrentTurnIndex]
		entering := sess.TurnQueue[sess.CurrentTurnIndex+1]

		sess.CurrentTurnIndex++
		c.resetTurnLocked()

		if entering.Kind == domain.TurnBuzzer && leaving.Kind == domain.TurnPlayer && !sess.BuzzerGateSeen {
			// Deliberate UX checkpoint before the open turns begin.
			sess.BuzzerGatePending = true
			sess.BuzzerGateSeen = true
			sess.CurrentQuestion = nil
			return nil
		}

		c.dealLocked()
		return nil
	})
}

// AcknowledgeBuzzerGate releases the buzzer-mode checkpoint and deals the
// pending question.
func (c *Controller) AcknowledgeBuzzerGate(ctx context.Context) error {
	return c.mutate(ctx, func() error {
		if !c.sess.BuzzerGatePending {
			return errors.New(errors.CodeFailedPrecondition,
				errors.WithMessagef("no buzzer gate pending"))
		}
		c.sess.BuzzerGatePending = false
		c.dealLocked()
		return nil
	})
}

// EndGameNow is the operator abort: the game finishes from wherever it is,
// pending reveal timer cancelled, looping audio stopped, scores frozen.
func (c *Controller) EndGameNow(ctx context.Context) error {
	return c.mutate(ctx, func() error {
		if c.sess.Phase != domain.PhasePlaying {
			return errors.New(errors.CodeFailedPrecondition,
				errors.WithMessagef("no game in progress"))
		}
		c.cues.Emit(ctx, c.sess.SessionID, reveal.CueSuspenseLoopStop)
		c.finishLocked(ctx)
		return nil
	})
}

// ResetSession discards a finished (or never started) session and opens a
// fresh SETUP one. The only way forward from FINISHED.
func (c *Controller) ResetSession(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess.Phase == domain.PhasePlaying {
		return errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("end the current game before starting a new one"))
	}

	c.cancelPreRevealLocked()
	if err := c.freshSessionLocked(); err != nil {
		return err
	}
	c.persistLocked(ctx)
	return nil
}

func (c *Controller) finishLocked(ctx context.Context) {
	c.cancelPreRevealLocked()
	c.sess.Phase = domain.PhaseFinished

	c.eb.Publish(ctx, domain.EventGameFinished{Results: c.resultsLocked()})
}

func (c *Controller) resultsLocked() domain.Results {
	sess := c.sess
	entries := make([]domain.ResultEntry, 0, len(sess.Teams))
	for _, t := range sess.Teams {
		entries = append(entries, domain.ResultEntry{
			TeamName: t.Name,
			Score:    t.Score,
			Players:  append([]string(nil), t.Players...),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	return domain.Results{
		SessionID:  sess.SessionID,
		Entries:    entries,
		FinishTime: time.Now(),
	}
}

// resetTurnLocked clears the per-turn fields for a new queue entry.
func (c *Controller) resetTurnLocked() {
	sess := c.sess
	sess.Step = domain.StepQuestion
	sess.SelectedOption = nil
	sess.HiddenOptions = nil
	sess.BuzzerTeamIndex = nil
	sess.ActiveJoker = nil
}

func (c *Controller) dealLocked() {
	q := c.deck.Deal()
	c.sess.CurrentQuestion = &q
}

// mutate runs op under the lock and persists the session if it succeeded.
// Validation failures leave the session untouched and unpersisted.
func (c *Controller) mutate(ctx context.Context, op func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := op(); err != nil {
		return err
	}

	c.persistLocked(ctx)
	return nil
}

// persistLocked publishes the session snapshot; the store and presentation
// fan-out subscribers pick it up asynchronously. Gameplay never waits on
// persistence.
func (c *Controller) persistLocked(ctx context.Context) {
	c.sess.UpdateTime = time.Now()
	c.eb.Publish(ctx, domain.EventSessionChanged{Session: *c.sess.Clone()})
}
