// Package turnqueue builds the ordered sequence of turns for a game: one
// round-robin pass per player index across teams in declared order, padded
// with open buzzer turns until every question has a slot.
package turnqueue

import (
	"github.com/edoxia/crayons/internal/domain"
	"github.com/edoxia/crayons/internal/errors"
)

// Build returns the turn queue for the given rosters. The queue length
// always equals totalQuestionCount: shorter round-robins are padded with
// buzzer turns, longer ones are cut at the question count. The queue is
// immutable for the whole game; MaxLevel is set to its length by the caller.
func Build(teams []domain.Team, totalQuestionCount int) ([]domain.TurnQueueEntry, error) {
	if totalQuestionCount <= 0 {
		return nil, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("question count must be positive, got %d", totalQuestionCount))
	}

	longest := 0
	for _, t := range teams {
		if len(t.Players) > longest {
			longest = len(t.Players)
		}
	}
	if longest == 0 {
		return nil, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("no team has any player"))
	}

	queue := make([]domain.TurnQueueEntry, 0, totalQuestionCount)
	for i := 0; i < longest; i++ {
		for ti, t := range teams {
			if i >= len(t.Players) {
				// Teams with fewer players contribute nothing once exhausted.
				continue
			}
			queue = append(queue, domain.TurnQueueEntry{
				Kind:        domain.TurnPlayer,
				TeamIndex:   ti,
				PlayerIndex: i,
			})
		}
	}

	if len(queue) > totalQuestionCount {
		queue = queue[:totalQuestionCount]
	}
	for len(queue) < totalQuestionCount {
		queue = append(queue, domain.TurnQueueEntry{Kind: domain.TurnBuzzer})
	}

	return queue, nil
}
