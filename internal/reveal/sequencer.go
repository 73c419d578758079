// Package reveal drives the per-turn answer protocol: question, suspense,
// the timed pre-reveal flash for stored-answer questions or the admin
// adjudication for oral ones, then the terminal reveal with scoring.
package reveal

import (
	"context"
	"time"

	"github.com/edoxia/crayons/internal/domain"
	"github.com/edoxia/crayons/internal/errors"
	"github.com/edoxia/crayons/internal/scoring"
)

// Audio cues emitted at step transitions. Playback is an external concern.
const (
	CueSuspenseLoopStart = "suspense-loop-start"
	CueSuspenseLoopStop  = "suspense-loop-stop"
	CueCorrect           = "correct"
	CueIncorrect         = "incorrect"
)

// PreRevealDelay is the fixed flashing delay between the operator asking
// for the reveal and the answer actually showing.
const PreRevealDelay = 2500 * time.Millisecond

// CueEmitter receives named audio cues for the presentation layer.
type CueEmitter interface {
	Emit(ctx context.Context, sessionID, cue string)
}

type Config struct {
	Cues    CueEmitter
	Scoring *scoring.Service
}

type Sequencer struct {
	cues    CueEmitter
	scoring *scoring.Service
}

func NewSequencer(c Config) *Sequencer {
	return &Sequencer{
		cues:    c.Cues,
		scoring: c.Scoring,
	}
}

// SelectOption records the answering player's choice. Only meaningful for
// MCQ/TF questions while the question is still open, and never an option
// hidden by the 50:50 joker.
func (s *Sequencer) SelectOption(sess *domain.GameSession, index int) error {
	if sess.Phase != domain.PhasePlaying || sess.Step != domain.StepQuestion {
		return errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("cannot select an option at step %s", sess.Step))
	}
	q := sess.CurrentQuestion
	if q == nil || q.Kind != domain.QuestionMCQ {
		return errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("no multiple choice question in play"))
	}
	if index < 0 || index >= len(q.Options) {
		return errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("option index %d out of range", index))
	}
	for _, h := range sess.HiddenOptions {
		if h == index {
			return errors.New(errors.CodeFailedPrecondition,
				errors.WithMessagef("option %d was eliminated by the 50:50", index))
		}
	}

	sess.SelectedOption = &index
	return nil
}

// SetBuzzerTeam names the fastest team on an open buzzer turn.
func (s *Sequencer) SetBuzzerTeam(sess *domain.GameSession, teamIndex int) error {
	if sess.Phase != domain.PhasePlaying || sess.Step != domain.StepQuestion {
		return errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("cannot set the buzzer team at step %s", sess.Step))
	}
	t, ok := sess.CurrentTurn()
	if !ok || t.Kind != domain.TurnBuzzer {
		return errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("current turn is not a buzzer turn"))
	}
	if teamIndex < 0 || teamIndex >= len(sess.Teams) {
		return errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("team index %d out of range", teamIndex))
	}

	sess.BuzzerTeamIndex = &teamIndex
	return nil
}

// LaunchSuspense moves the turn into the suspense state and starts the
// audio loop. Refused while the answer is incomplete: an MCQ/TF question
// needs a selected option, a buzzer turn needs its team named.
func (s *Sequencer) LaunchSuspense(ctx context.Context, sess *domain.GameSession) error {
	if sess.Phase != domain.PhasePlaying || !sess.Step.CanTransition(domain.StepSuspense) {
		return errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("cannot launch suspense at step %s", sess.Step))
	}
	q := sess.CurrentQuestion
	if q == nil {
		return errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("no question in play"))
	}
	if q.Kind == domain.QuestionMCQ && sess.SelectedOption == nil {
		return errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("no option selected"))
	}
	if t, ok := sess.CurrentTurn(); ok && t.Kind == domain.TurnBuzzer && sess.BuzzerTeamIndex == nil {
		return errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("no team named for the buzzer turn"))
	}

	sess.Step = domain.StepSuspense
	s.cues.Emit(ctx, sess.SessionID, CueSuspenseLoopStart)
	return nil
}

// BeginReveal leaves the suspense state. For an MCQ/TF question it enters
// the timed pre-reveal flash and reports timed=true; the caller owns the
// delay and must call CompletePreReveal when it elapses. For an oral
// question it enters admin adjudication immediately.
func (s *Sequencer) BeginReveal(ctx context.Context, sess *domain.GameSession) (timed bool, err error) {
	if sess.Phase != domain.PhasePlaying || sess.Step != domain.StepSuspense {
		return false, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("cannot reveal at step %s", sess.Step))
	}

	if sess.CurrentQuestion.Kind == domain.QuestionOral {
		sess.Step = domain.StepAwaitingAdmin
		s.cues.Emit(ctx, sess.SessionID, CueSuspenseLoopStop)
		return false, nil
	}

	sess.Step = domain.StepPreReveal
	return true, nil
}

// CompletePreReveal finishes the timed flash: the selection is compared to
// the stored answer and the outcome scored. The suspense guard guarantees
// a selection exists by the time we get here.
func (s *Sequencer) CompletePreReveal(ctx context.Context, sess *domain.GameSession) error {
	if sess.Phase != domain.PhasePlaying || sess.Step != domain.StepPreReveal {
		return errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("cannot complete reveal at step %s", sess.Step))
	}

	correct := sess.SelectedOption != nil &&
		*sess.SelectedOption == sess.CurrentQuestion.CorrectIndex
	s.cues.Emit(ctx, sess.SessionID, CueSuspenseLoopStop)
	return s.finish(ctx, sess, correct)
}

// AdminDecision resolves an oral question with the adjudicator's verdict.
func (s *Sequencer) AdminDecision(ctx context.Context, sess *domain.GameSession, isCorrect bool) error {
	if sess.Phase != domain.PhasePlaying || sess.Step != domain.StepAwaitingAdmin {
		return errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("no adjudication pending at step %s", sess.Step))
	}

	return s.finish(ctx, sess, isCorrect)
}

func (s *Sequencer) finish(ctx context.Context, sess *domain.GameSession, correct bool) error {
	ti, ok := sess.AnsweringTeam()
	if !ok {
		return errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("no answering team for the current turn"))
	}

	if err := s.scoring.ApplyResult(sess, ti, correct); err != nil {
		return err
	}
	sess.Step = domain.StepReveal

	if correct {
		s.cues.Emit(ctx, sess.SessionID, CueCorrect)
	} else {
		s.cues.Emit(ctx, sess.SessionID, CueIncorrect)
	}
	return nil
}
