package reveal_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edoxia/crayons/internal/domain"
	"github.com/edoxia/crayons/internal/reveal"
	"github.com/edoxia/crayons/internal/scoring"
)

type cueRecorder struct {
	cues []string
}

func (r *cueRecorder) Emit(_ context.Context, _ string, cue string) {
	r.cues = append(r.cues, cue)
}

func makeSequencer() (*reveal.Sequencer, *cueRecorder) {
	rec := &cueRecorder{}
	return reveal.NewSequencer(reveal.Config{
		Cues:    rec,
		Scoring: scoring.NewService(scoring.Config{PointsPerCorrect: 10}),
	}), rec
}

func mcqSession() *domain.GameSession {
	return &domain.GameSession{
		Phase: domain.PhasePlaying,
		Step:  domain.StepQuestion,
		Teams: []domain.Team{
			{Name: "Rouges", Players: []string{"P1"}},
			{Name: "Bleus", Players: []string{"Q1"}},
		},
		TurnQueue: []domain.TurnQueueEntry{
			{Kind: domain.TurnPlayer, TeamIndex: 0, PlayerIndex: 0},
		},
		CurrentQuestion: &domain.Question{
			Kind:         domain.QuestionMCQ,
			Options:      []string{"a", "b", "c", "d"},
			CorrectIndex: 1,
		},
		Level:    3,
		MaxLevel: 5,
	}
}

func oralSession() *domain.GameSession {
	s := mcqSession()
	s.CurrentQuestion = &domain.Question{Kind: domain.QuestionOral, Text: "Epelle ..."}
	return s
}

func TestMCQFlow_CorrectAnswer(t *testing.T) {
	ctx := context.Background()
	seq, rec := makeSequencer()
	sess := mcqSession()

	require.NoError(t, seq.SelectOption(sess, 1))
	require.NoError(t, seq.LaunchSuspense(ctx, sess))
	require.Equal(t, domain.StepSuspense, sess.Step)
	require.Equal(t, []string{reveal.CueSuspenseLoopStart}, rec.cues)

	timed, err := seq.BeginReveal(ctx, sess)
	require.NoError(t, err)
	require.True(t, timed, "stored-answer questions go through the timed flash")
	require.Equal(t, domain.StepPreReveal, sess.Step)

	require.NoError(t, seq.CompletePreReveal(ctx, sess))
	require.Equal(t, domain.StepReveal, sess.Step)
	require.Equal(t, 4, sess.Level)
	require.Equal(t, 10, sess.Teams[0].Score)
	require.Equal(t, []string{
		reveal.CueSuspenseLoopStart,
		reveal.CueSuspenseLoopStop,
		reveal.CueCorrect,
	}, rec.cues)
}

func TestMCQFlow_IncorrectAnswer(t *testing.T) {
	ctx := context.Background()
	seq, rec := makeSequencer()
	sess := mcqSession()

	require.NoError(t, seq.SelectOption(sess, 3))
	require.NoError(t, seq.LaunchSuspense(ctx, sess))
	_, err := seq.BeginReveal(ctx, sess)
	require.NoError(t, err)
	require.NoError(t, seq.CompletePreReveal(ctx, sess))

	require.Equal(t, domain.StepReveal, sess.Step)
	require.Equal(t, 2, sess.Level)
	require.Equal(t, 0, sess.Teams[0].Score)
	require.Contains(t, rec.cues, reveal.CueIncorrect)
}

func TestOralFlow_AdminDecision(t *testing.T) {
	ctx := context.Background()
	seq, rec := makeSequencer()
	sess := oralSession()
	sess.Level = 1

	require.NoError(t, seq.LaunchSuspense(ctx, sess), "oral questions need no selection")

	timed, err := seq.BeginReveal(ctx, sess)
	require.NoError(t, err)
	require.False(t, timed, "oral questions wait for the adjudicator, no timer")
	require.Equal(t, domain.StepAwaitingAdmin, sess.Step)
	require.Contains(t, rec.cues, reveal.CueSuspenseLoopStop)

	require.NoError(t, seq.AdminDecision(ctx, sess, false))
	require.Equal(t, domain.StepReveal, sess.Step)
	require.Equal(t, 0, sess.Level)
	require.Equal(t, 0, sess.Teams[0].Score, "an incorrect oral answer never touches the score")
	require.Contains(t, rec.cues, reveal.CueIncorrect)
}

func TestLaunchSuspense_Guards(t *testing.T) {
	ctx := context.Background()

	t.Run("no option selected", func(t *testing.T) {
		seq, rec := makeSequencer()
		sess := mcqSession()

		require.Error(t, seq.LaunchSuspense(ctx, sess))
		require.Equal(t, domain.StepQuestion, sess.Step, "a rejected launch must not change the step")
		require.Empty(t, rec.cues)
	})

	t.Run("buzzer turn without a named team", func(t *testing.T) {
		seq, _ := makeSequencer()
		sess := mcqSession()
		sess.TurnQueue = []domain.TurnQueueEntry{{Kind: domain.TurnBuzzer}}
		require.NoError(t, seq.SelectOption(sess, 1))

		require.Error(t, seq.LaunchSuspense(ctx, sess))
		require.Equal(t, domain.StepQuestion, sess.Step)

		team := 1
		sess.BuzzerTeamIndex = &team
		require.NoError(t, seq.LaunchSuspense(ctx, sess))
	})
}

func TestSelectOption_Guards(t *testing.T) {
	seq, _ := makeSequencer()
	sess := mcqSession()

	require.Error(t, seq.SelectOption(sess, 4), "out of range")
	require.Error(t, seq.SelectOption(sess, -1))

	sess.HiddenOptions = []int{0, 3}
	require.Error(t, seq.SelectOption(sess, 0), "eliminated by the 50:50")
	require.NoError(t, seq.SelectOption(sess, 1))

	sess.Step = domain.StepSuspense
	require.Error(t, seq.SelectOption(sess, 1), "no input once suspense started")
}

func TestBuzzerScoring_GoesToNamedTeam(t *testing.T) {
	ctx := context.Background()
	seq, _ := makeSequencer()
	sess := mcqSession()
	sess.TurnQueue = []domain.TurnQueueEntry{{Kind: domain.TurnBuzzer}}

	require.NoError(t, seq.SelectOption(sess, 1))
	require.NoError(t, seq.SetBuzzerTeam(sess, 1))
	require.NoError(t, seq.LaunchSuspense(ctx, sess))
	_, err := seq.BeginReveal(ctx, sess)
	require.NoError(t, err)
	require.NoError(t, seq.CompletePreReveal(ctx, sess))

	require.Equal(t, 0, sess.Teams[0].Score)
	require.Equal(t, 10, sess.Teams[1].Score, "the fastest team scores the buzzer turn")
}
