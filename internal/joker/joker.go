// Package joker implements the one-time per-team power-ups: the 50:50
// option eliminator and the two presentation-only pauses (call a friend,
// ask the public).
package joker

import (
	"math/rand/v2"

	"github.com/edoxia/crayons/internal/domain"
	"github.com/edoxia/crayons/internal/errors"
)

type Config struct {
	// Rand drives the 50:50 wrong-option pick. Defaults to math/rand/v2
	// global source; tests inject a seeded one.
	Rand *rand.Rand
}

type System struct {
	intN func(n int) int
}

func NewSystem(c Config) *System {
	s := &System{intN: rand.IntN}
	if c.Rand != nil {
		s.intN = c.Rand.IntN
	}
	return s
}

// Invoke consumes a joker for the team answering the current turn. Only
// valid during the QUESTION step; a buzzer turn must already have its team
// assigned. Consumption is irrevocable for the rest of the session.
func (j *System) Invoke(sess *domain.GameSession, kind domain.JokerKind) error {
	if !kind.Valid() {
		return errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("unknown joker %q", kind))
	}
	if sess.Phase != domain.PhasePlaying || sess.Step != domain.StepQuestion {
		return errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("jokers can only be used while the question is open"))
	}
	if sess.ActiveJoker != nil {
		return errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("joker %q is already active", *sess.ActiveJoker))
	}

	ti, ok := sess.AnsweringTeam()
	if !ok {
		// Uniform with launchSuspense: an unassigned buzzer turn has no
		// owning team to charge the joker to.
		return errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("no answering team for the current turn"))
	}

	team := &sess.Teams[ti]
	if !team.Jokers[kind] {
		return errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("team %q already used joker %q", team.Name, kind))
	}

	switch kind {
	case domain.JokerFiftyFifty:
		if err := j.applyFiftyFifty(sess); err != nil {
			return err
		}
	case domain.JokerCall, domain.JokerPublic:
		k := kind
		sess.ActiveJoker = &k
	}

	delete(team.Jokers, kind)
	return nil
}

// Dismiss closes the modal of a call/public joker. The pause has no effect
// on game data beyond the already-consumed flag.
func (j *System) Dismiss(sess *domain.GameSession) error {
	if sess.ActiveJoker == nil {
		return errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("no joker modal to dismiss"))
	}
	sess.ActiveJoker = nil
	return nil
}

// applyFiftyFifty hides two wrong options, picked uniformly at random. The
// correct option is never hidden. Inapplicable to oral questions and to
// questions with only two options.
func (j *System) applyFiftyFifty(sess *domain.GameSession) error {
	q := sess.CurrentQuestion
	if q == nil || q.Kind != domain.QuestionMCQ {
		return errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("50:50 needs a multiple choice question"))
	}
	if len(q.Options) <= 2 {
		return errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("50:50 needs more than two options"))
	}

	wrong := make([]int, 0, len(q.Options)-1)
	for i := range q.Options {
		if i != q.CorrectIndex {
			wrong = append(wrong, i)
		}
	}

	// Partial Fisher-Yates: draw two distinct wrong indices.
	for i := 0; i < 2; i++ {
		k := i + j.intN(len(wrong)-i)
		wrong[i], wrong[k] = wrong[k], wrong[i]
	}
	sess.HiddenOptions = append(sess.HiddenOptions, wrong[0], wrong[1])

	// An already-selected wrong option may just have been hidden; the
	// selection must be made again from what is left.
	if sel := sess.SelectedOption; sel != nil && (*sel == wrong[0] || *sel == wrong[1]) {
		sess.SelectedOption = nil
	}

	return nil
}
