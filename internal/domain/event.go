package domain

const (
	EventNameSessionChanged = "session.changed"
	EventNameGameFinished   = "game.finished"
	EventNameCueEmitted     = "cue.emitted"
)

// EventSessionChanged carries a snapshot of the session after a mutating
// operation. Session is a deep copy, safe to hold across goroutines.
type EventSessionChanged struct {
	Session GameSession
}

func (EventSessionChanged) Name() string { return EventNameSessionChanged }

type EventGameFinished struct {
	Results Results
}

func (EventGameFinished) Name() string { return EventNameGameFinished }

// EventCueEmitted is an audio cue for the presentation layer. Playback is
// external; the engine only names the cue.
type EventCueEmitted struct {
	SessionID string
	Cue       string
}

func (EventCueEmitted) Name() string { return EventNameCueEmitted }
