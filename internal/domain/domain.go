package domain

import "time"

// Phase is the lifecycle of a whole game session.
type Phase string

const (
	PhaseSetup    Phase = "SETUP"
	PhasePlaying  Phase = "PLAYING"
	PhaseFinished Phase = "FINISHED"
)

var phaseTransitions = map[Phase][]Phase{
	PhaseSetup:   {PhasePlaying},
	PhasePlaying: {PhaseFinished},
	// FINISHED is terminal. A new game starts from a fresh session.
}

func (p Phase) CanTransition(to Phase) bool {
	for _, n := range phaseTransitions[p] {
		if n == to {
			return true
		}
	}
	return false
}

func (p Phase) Valid() bool {
	switch p {
	case PhaseSetup, PhasePlaying, PhaseFinished:
		return true
	}
	return false
}

// Step is the answer-reveal protocol within a single turn.
//
// MCQ/TF:  QUESTION -> SUSPENSE -> PRE_REVEAL -> REVEAL
// Oral:    QUESTION -> SUSPENSE -> AWAITING_ADMIN -> REVEAL
type Step string

const (
	StepQuestion      Step = "QUESTION"
	StepSuspense      Step = "SUSPENSE"
	StepPreReveal     Step = "PRE_REVEAL"
	StepReveal        Step = "REVEAL"
	StepAwaitingAdmin Step = "AWAITING_ADMIN"
)

var stepTransitions = map[Step][]Step{
	StepQuestion:      {StepSuspense},
	StepSuspense:      {StepPreReveal, StepAwaitingAdmin},
	StepPreReveal:     {StepReveal},
	StepAwaitingAdmin: {StepReveal},
	// REVEAL is terminal for the turn; advancing resets to QUESTION.
}

func (s Step) CanTransition(to Step) bool {
	for _, n := range stepTransitions[s] {
		if n == to {
			return true
		}
	}
	return false
}

func (s Step) Valid() bool {
	switch s {
	case StepQuestion, StepSuspense, StepPreReveal, StepReveal, StepAwaitingAdmin:
		return true
	}
	return false
}

// JokerKind identifies a one-time per-team power-up.
type JokerKind string

const (
	JokerFiftyFifty JokerKind = "5050"
	JokerCall       JokerKind = "call"
	JokerPublic     JokerKind = "public"
)

func (k JokerKind) Valid() bool {
	switch k {
	case JokerFiftyFifty, JokerCall, JokerPublic:
		return true
	}
	return false
}

// AllJokers is the full set every team starts a session with.
func AllJokers() map[JokerKind]bool {
	return map[JokerKind]bool{
		JokerFiftyFifty: true,
		JokerCall:       true,
		JokerPublic:     true,
	}
}

// Team is a competing team. Score is only written by the scoring package,
// Jokers only shrinks through the joker package.
type Team struct {
	ID      string             `json:"id"`
	Name    string             `json:"name"`
	Color   string             `json:"color"`
	Score   int                `json:"score"`
	Players []string           `json:"players"`
	Jokers  map[JokerKind]bool `json:"jokers"`
}

// QuestionKind distinguishes stored-answer questions from orally adjudicated ones.
type QuestionKind string

const (
	// QuestionMCQ covers multiple choice and true/false (two options).
	QuestionMCQ QuestionKind = "mcq"
	// QuestionOral has no stored options; a human adjudicates correctness.
	QuestionOral QuestionKind = "oral"
)

type Question struct {
	QuestionID   string       `json:"question_id"`
	Kind         QuestionKind `json:"kind"`
	Text         string       `json:"text"`
	Options      []string     `json:"options,omitempty"`
	CorrectIndex int          `json:"correct_index"`
}

// TurnKind distinguishes named-player turns from open buzzer turns.
type TurnKind string

const (
	TurnPlayer TurnKind = "player"
	TurnBuzzer TurnKind = "buzzer"
)

// TurnQueueEntry is one slot of the turn queue. Immutable once built.
// For buzzer turns the indices are meaningless and left at zero.
type TurnQueueEntry struct {
	Kind        TurnKind `json:"kind"`
	TeamIndex   int      `json:"team_index"`
	PlayerIndex int      `json:"player_index"`
}

// GameSession is the sole unit of persistence: everything needed to resume
// a game mid-turn after a reload lives here.
type GameSession struct {
	SessionID string `json:"session_id"`

	Phase Phase `json:"phase"`
	Step  Step  `json:"step"`

	Level    int `json:"level"`
	MaxLevel int `json:"max_level"`

	Teams            []Team           `json:"teams"`
	TurnQueue        []TurnQueueEntry `json:"turn_queue"`
	CurrentTurnIndex int              `json:"current_turn_index"`

	CurrentQuestion *Question  `json:"current_question,omitempty"`
	SelectedOption  *int       `json:"selected_option,omitempty"`
	HiddenOptions   []int      `json:"hidden_options,omitempty"`
	BuzzerTeamIndex *int       `json:"buzzer_team_index,omitempty"`
	ActiveJoker     *JokerKind `json:"active_joker,omitempty"`

	// BuzzerGatePending blocks question dealing until the operator
	// acknowledges that buzzer mode is starting. BuzzerGateSeen makes the
	// gate one-time per session.
	BuzzerGatePending bool `json:"buzzer_gate_pending,omitempty"`
	BuzzerGateSeen    bool `json:"buzzer_gate_seen,omitempty"`

	UpdateTime time.Time `json:"update_time"`
}

// NewSession returns an empty SETUP session.
func NewSession(id string) *GameSession {
	return &GameSession{
		SessionID: id,
		Phase:     PhaseSetup,
		Step:      StepQuestion,
	}
}

// CurrentTurn returns the active queue entry, or false outside PLAYING.
func (s *GameSession) CurrentTurn() (TurnQueueEntry, bool) {
	if s.Phase != PhasePlaying || s.CurrentTurnIndex >= len(s.TurnQueue) {
		return TurnQueueEntry{}, false
	}
	return s.TurnQueue[s.CurrentTurnIndex], true
}

// AnsweringTeam resolves which team the current turn belongs to: the
// buzzer-selected team on a buzzer turn, the turn's own team otherwise.
func (s *GameSession) AnsweringTeam() (int, bool) {
	t, ok := s.CurrentTurn()
	if !ok {
		return 0, false
	}
	if t.Kind == TurnBuzzer {
		if s.BuzzerTeamIndex == nil {
			return 0, false
		}
		return *s.BuzzerTeamIndex, true
	}
	return t.TeamIndex, true
}

// Clone deep-copies the session so async consumers never share slices or
// maps with the live state.
func (s *GameSession) Clone() *GameSession {
	c := *s

	c.Teams = make([]Team, len(s.Teams))
	for i, t := range s.Teams {
		c.Teams[i] = t
		c.Teams[i].Players = append([]string(nil), t.Players...)
		c.Teams[i].Jokers = make(map[JokerKind]bool, len(t.Jokers))
		for k, v := range t.Jokers {
			c.Teams[i].Jokers[k] = v
		}
	}

	c.TurnQueue = append([]TurnQueueEntry(nil), s.TurnQueue...)
	c.HiddenOptions = append([]int(nil), s.HiddenOptions...)

	if s.CurrentQuestion != nil {
		q := *s.CurrentQuestion
		q.Options = append([]string(nil), s.CurrentQuestion.Options...)
		c.CurrentQuestion = &q
	}
	if s.SelectedOption != nil {
		v := *s.SelectedOption
		c.SelectedOption = &v
	}
	if s.BuzzerTeamIndex != nil {
		v := *s.BuzzerTeamIndex
		c.BuzzerTeamIndex = &v
	}
	if s.ActiveJoker != nil {
		v := *s.ActiveJoker
		c.ActiveJoker = &v
	}

	return &c
}

// Normalize repairs a session loaded from a possibly partial blob, field by
// field, so a resume never crashes the engine. Structurally valid fields are
// kept, the rest fall back to safe defaults.
func (s *GameSession) Normalize() {
	if !s.Phase.Valid() {
		s.Phase = PhaseSetup
	}
	if !s.Step.Valid() {
		s.Step = StepQuestion
	}

	for i := range s.Teams {
		if s.Teams[i].Score < 0 {
			s.Teams[i].Score = 0
		}
		if s.Teams[i].Jokers == nil {
			s.Teams[i].Jokers = map[JokerKind]bool{}
		}
		for k := range s.Teams[i].Jokers {
			if !k.Valid() {
				delete(s.Teams[i].Jokers, k)
			}
		}
	}

	if s.MaxLevel < 0 {
		s.MaxLevel = 0
	}
	if s.Level < 0 {
		s.Level = 0
	}
	if s.Level > s.MaxLevel {
		s.Level = s.MaxLevel
	}

	if s.CurrentTurnIndex < 0 {
		s.CurrentTurnIndex = 0
	}
	if s.Phase == PhasePlaying && s.CurrentTurnIndex >= len(s.TurnQueue) {
		// A playing session must sit on a valid turn.
		if len(s.TurnQueue) == 0 {
			s.Phase = PhaseSetup
			s.CurrentTurnIndex = 0
		} else {
			s.Phase = PhaseFinished
			s.CurrentTurnIndex = len(s.TurnQueue) - 1
		}
	}

	if s.SelectedOption != nil && s.CurrentQuestion != nil {
		if *s.SelectedOption < 0 || *s.SelectedOption >= len(s.CurrentQuestion.Options) {
			s.SelectedOption = nil
		}
	}
	if s.BuzzerTeamIndex != nil && (*s.BuzzerTeamIndex < 0 || *s.BuzzerTeamIndex >= len(s.Teams)) {
		s.BuzzerTeamIndex = nil
	}
	if s.ActiveJoker != nil && !s.ActiveJoker.Valid() {
		s.ActiveJoker = nil
	}
	if s.CurrentQuestion == nil {
		// No question in flight: nothing can be selected or hidden, and a
		// playing turn restarts at QUESTION. A pending buzzer gate sits at
		// QUESTION too, with nothing dealt yet.
		s.SelectedOption = nil
		s.HiddenOptions = nil
		if s.Phase == PhasePlaying {
			s.Step = StepQuestion
		}
	}
}

// Results is the one-time record written at FINISHED, ranked by score
// descending, consumed by the podium view.
type Results struct {
	SessionID  string        `json:"session_id"`
	Entries    []ResultEntry `json:"entries"`
	FinishTime time.Time     `json:"finish_time"`
}

type ResultEntry struct {
	TeamName string   `json:"team_name"`
	Score    int      `json:"score"`
	Players  []string `json:"players"`
}
