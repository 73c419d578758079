package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edoxia/crayons/internal/domain"
)

func TestPhaseTransitions(t *testing.T) {
	require.True(t, domain.PhaseSetup.CanTransition(domain.PhasePlaying))
	require.True(t, domain.PhasePlaying.CanTransition(domain.PhaseFinished))

	require.False(t, domain.PhaseSetup.CanTransition(domain.PhaseFinished))
	require.False(t, domain.PhaseFinished.CanTransition(domain.PhasePlaying), "FINISHED is terminal")
	require.False(t, domain.PhaseFinished.CanTransition(domain.PhaseSetup))
}

func TestStepTransitions(t *testing.T) {
	require.True(t, domain.StepQuestion.CanTransition(domain.StepSuspense))
	require.True(t, domain.StepSuspense.CanTransition(domain.StepPreReveal))
	require.True(t, domain.StepSuspense.CanTransition(domain.StepAwaitingAdmin))
	require.True(t, domain.StepPreReveal.CanTransition(domain.StepReveal))
	require.True(t, domain.StepAwaitingAdmin.CanTransition(domain.StepReveal))

	require.False(t, domain.StepQuestion.CanTransition(domain.StepReveal), "no skipping the protocol")
	require.False(t, domain.StepReveal.CanTransition(domain.StepQuestion), "REVEAL ends the turn")
	require.False(t, domain.StepPreReveal.CanTransition(domain.StepAwaitingAdmin))
}

func TestAnsweringTeam(t *testing.T) {
	sess := &domain.GameSession{
		Phase: domain.PhasePlaying,
		Teams: []domain.Team{{Name: "A"}, {Name: "B"}},
		TurnQueue: []domain.TurnQueueEntry{
			{Kind: domain.TurnPlayer, TeamIndex: 1, PlayerIndex: 0},
			{Kind: domain.TurnBuzzer},
		},
	}

	ti, ok := sess.AnsweringTeam()
	require.True(t, ok)
	require.Equal(t, 1, ti, "a named turn belongs to its own team")

	sess.CurrentTurnIndex = 1
	_, ok = sess.AnsweringTeam()
	require.False(t, ok, "an unassigned buzzer turn has no answering team")

	team := 0
	sess.BuzzerTeamIndex = &team
	ti, ok = sess.AnsweringTeam()
	require.True(t, ok)
	require.Equal(t, 0, ti)
}

func TestClone_IsDeep(t *testing.T) {
	selected := 1
	sess := &domain.GameSession{
		Teams: []domain.Team{
			{Name: "A", Players: []string{"P1"}, Jokers: domain.AllJokers()},
		},
		TurnQueue:       []domain.TurnQueueEntry{{Kind: domain.TurnBuzzer}},
		HiddenOptions:   []int{0},
		SelectedOption:  &selected,
		CurrentQuestion: &domain.Question{Options: []string{"a", "b"}},
	}

	c := sess.Clone()
	c.Teams[0].Players[0] = "changed"
	delete(c.Teams[0].Jokers, domain.JokerCall)
	c.HiddenOptions[0] = 9
	*c.SelectedOption = 9
	c.CurrentQuestion.Options[0] = "changed"

	require.Equal(t, "P1", sess.Teams[0].Players[0])
	require.True(t, sess.Teams[0].Jokers[domain.JokerCall])
	require.Equal(t, 0, sess.HiddenOptions[0])
	require.Equal(t, 1, *sess.SelectedOption)
	require.Equal(t, "a", sess.CurrentQuestion.Options[0])
}

func TestNormalize(t *testing.T) {
	tests := map[string]struct {
		sess   domain.GameSession
		assert func(t *testing.T, s *domain.GameSession)
	}{
		"invalid enums default": {
			sess: domain.GameSession{Phase: "bogus", Step: "bogus"},
			assert: func(t *testing.T, s *domain.GameSession) {
				require.Equal(t, domain.PhaseSetup, s.Phase)
				require.Equal(t, domain.StepQuestion, s.Step)
			},
		},

		"level clamped to bounds": {
			sess: domain.GameSession{Phase: domain.PhaseSetup, Step: domain.StepQuestion, Level: -2, MaxLevel: 3},
			assert: func(t *testing.T, s *domain.GameSession) {
				require.Equal(t, 0, s.Level)
			},
		},

		"playing past the queue end finishes": {
			sess: domain.GameSession{
				Phase:            domain.PhasePlaying,
				Step:             domain.StepReveal,
				TurnQueue:        []domain.TurnQueueEntry{{Kind: domain.TurnBuzzer}},
				CurrentTurnIndex: 7,
			},
			assert: func(t *testing.T, s *domain.GameSession) {
				require.Equal(t, domain.PhaseFinished, s.Phase)
				require.Equal(t, 0, s.CurrentTurnIndex)
			},
		},

		"turn input without a question is dropped": {
			sess: func() domain.GameSession {
				sel := 0
				return domain.GameSession{
					Phase:             domain.PhasePlaying,
					Step:              domain.StepPreReveal,
					TurnQueue:         []domain.TurnQueueEntry{{Kind: domain.TurnBuzzer}},
					SelectedOption:    &sel,
					HiddenOptions:     []int{1, 3},
					BuzzerGatePending: true,
				}
			}(),
			assert: func(t *testing.T, s *domain.GameSession) {
				require.Equal(t, domain.StepQuestion, s.Step, "no reveal without a question")
				require.Nil(t, s.SelectedOption)
				require.Empty(t, s.HiddenOptions)
				require.True(t, s.BuzzerGatePending)
			},
		},

		"playing with no queue falls back to setup": {
			sess: domain.GameSession{Phase: domain.PhasePlaying, Step: domain.StepQuestion},
			assert: func(t *testing.T, s *domain.GameSession) {
				require.Equal(t, domain.PhaseSetup, s.Phase)
			},
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s := tt.sess
			s.Normalize()
			tt.assert(t, &s)
		})
	}
}
