package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/edoxia/crayons/internal/domain"
)

type Notification struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// PublishSessionChanged pushes the session snapshot to the display channel.
func (a *API) PublishSessionChanged(ctx context.Context, e domain.EventSessionChanged) error {
	return a.publishNotification(ctx, "session", e.Name(), e.Session)
}

// PublishCue pushes an audio cue to the sound channel. The engine only
// names the cue; the presentation device owns playback.
func (a *API) PublishCue(ctx context.Context, e domain.EventCueEmitted) error {
	return a.publishNotification(ctx, "cues", e.Name(), map[string]string{
		"session_id": e.SessionID,
		"cue":        e.Cue,
	})
}

func (a *API) publishNotification(ctx context.Context, channel, event string, data any) error {
	n := Notification{
		Event: event,
		Data:  data,
	}

	b, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("pubsub: marshal %s: %v", event, err)
	}

	return a.redis.Publish(ctx, fmt.Sprintf("%s:%s", a.prefix, channel), b).Err()
}
