package game

import (
	"context"

	"github.com/edoxia/crayons/internal/domain"
	"github.com/edoxia/crayons/internal/event"
)

// BusCues emits audio cues onto the event bus, where the presentation
// fan-out (and nothing in the engine) consumes them.
type BusCues struct {
	Bus *event.Bus
}

func (b BusCues) Emit(ctx context.Context, sessionID, cue string) {
	b.Bus.Publish(ctx, domain.EventCueEmitted{
		SessionID: sessionID,
		Cue:       cue,
	})
}
