// Package scoring applies answer outcomes to the session. It is the only
// writer of team scores and of the shared progression level.
package scoring

import (
	"github.com/edoxia/crayons/internal/domain"
	"github.com/edoxia/crayons/internal/errors"
)

const defaultPointsPerCorrect = 10

type Config struct {
	// PointsPerCorrect is the fixed score increment for a correct answer.
	PointsPerCorrect int
}

type Service struct {
	points int
}

func NewService(c Config) *Service {
	if c.PointsPerCorrect <= 0 {
		c.PointsPerCorrect = defaultPointsPerCorrect
	}
	return &Service{points: c.PointsPerCorrect}
}

// ApplyResult records a turn outcome for the given team: a correct answer
// adds the fixed increment and raises the level, an incorrect one lowers
// the level and leaves the score alone. Level is clamped to [0, MaxLevel].
func (s *Service) ApplyResult(sess *domain.GameSession, teamIndex int, isCorrect bool) error {
	if teamIndex < 0 || teamIndex >= len(sess.Teams) {
		return errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("team index %d out of range", teamIndex))
	}

	if isCorrect {
		sess.Teams[teamIndex].Score += s.points
		if sess.Level < sess.MaxLevel {
			sess.Level++
		}
		return nil
	}

	if sess.Level > 0 {
		sess.Level--
	}
	return nil
}
