package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edoxia/crayons/internal/domain"
	"github.com/edoxia/crayons/internal/scoring"
)

func session(level, maxLevel int, scores ...int) *domain.GameSession {
	s := &domain.GameSession{Level: level, MaxLevel: maxLevel}
	for _, sc := range scores {
		s.Teams = append(s.Teams, domain.Team{Score: sc})
	}
	return s
}

func TestApplyResult(t *testing.T) {
	svc := scoring.NewService(scoring.Config{PointsPerCorrect: 10})

	tests := map[string]struct {
		sess      *domain.GameSession
		team      int
		correct   bool
		wantLevel int
		wantScore int
	}{
		"correct raises level and score": {
			sess: session(3, 5, 0), team: 0, correct: true,
			wantLevel: 4, wantScore: 10,
		},
		"correct at the ceiling keeps level clamped": {
			sess: session(5, 5, 20), team: 0, correct: true,
			wantLevel: 5, wantScore: 30,
		},
		"incorrect lowers level, score untouched": {
			sess: session(3, 5, 10), team: 0, correct: false,
			wantLevel: 2, wantScore: 10,
		},
		"incorrect at the floor keeps level at zero": {
			sess: session(0, 5, 10), team: 0, correct: false,
			wantLevel: 0, wantScore: 10,
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := svc.ApplyResult(tt.sess, tt.team, tt.correct)
			require.NoError(t, err)
			require.Equal(t, tt.wantLevel, tt.sess.Level)
			require.Equal(t, tt.wantScore, tt.sess.Teams[tt.team].Score)
		})
	}
}

func TestApplyResult_LevelStaysBounded(t *testing.T) {
	svc := scoring.NewService(scoring.Config{})
	sess := session(0, 3, 0, 0)

	// Arbitrary win/lose walk: the level must never leave [0, MaxLevel].
	outcomes := []bool{true, true, true, true, true, false, false, false, false, false, true, false, true}
	for _, correct := range outcomes {
		require.NoError(t, svc.ApplyResult(sess, 0, correct))
		require.GreaterOrEqual(t, sess.Level, 0)
		require.LessOrEqual(t, sess.Level, sess.MaxLevel)
	}
}

func TestApplyResult_BadTeamIndex(t *testing.T) {
	svc := scoring.NewService(scoring.Config{})
	sess := session(1, 3, 0)

	require.Error(t, svc.ApplyResult(sess, 1, true))
	require.Error(t, svc.ApplyResult(sess, -1, true))
	require.Equal(t, 1, sess.Level, "a rejected call must not mutate state")
}
