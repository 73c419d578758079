// Package question supplies question records to the engine. The bank is
// read-only during play; when no database is configured or the table is
// empty it falls back to a small built-in demo set so a game can always run.
package question

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edoxia/crayons/internal/domain"
)

type Config struct {
	DB *pgxpool.Pool
}

type Service struct {
	db *pgxpool.Pool
}

func NewService(c Config) *Service {
	return &Service{db: c.DB}
}

// ListQuestions returns every question in the bank, demo set included as a
// fallback. A database failure degrades to the demo set rather than
// blocking the game.
func (s *Service) ListQuestions(ctx context.Context) []domain.Question {
	if s.db == nil {
		return demoQuestions()
	}

	const stmt = `
SELECT question_id, kind, question, options, correct_index
FROM questions
ORDER BY question_id;`

	rows, err := s.db.Query(ctx, stmt)
	if err != nil {
		slog.WarnContext(ctx, "question: query bank failed, using demo set", "error", err)
		return demoQuestions()
	}

	qs, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (domain.Question, error) {
		var (
			q    domain.Question
			kind string
		)
		if err := r.Scan(&q.QuestionID, &kind, &q.Text, &q.Options, &q.CorrectIndex); err != nil {
			return domain.Question{}, err
		}
		q.Kind = domain.QuestionKind(kind)
		return q, nil
	})
	if err != nil {
		slog.WarnContext(ctx, "question: scan bank failed, using demo set", "error", err)
		return demoQuestions()
	}

	if len(qs) == 0 {
		return demoQuestions()
	}

	return qs
}

// Deck deals questions without repeats, reshuffling once exhausted.
type Deck struct {
	questions []domain.Question
	order     []int
	next      int
	shuffle   func(n int, swap func(i, j int))
}

// NewDeck shuffles the given questions into a dealing order. r may be nil,
// in which case the global source is used.
func NewDeck(questions []domain.Question, r *rand.Rand) *Deck {
	d := &Deck{
		questions: questions,
		order:     make([]int, len(questions)),
		shuffle:   rand.Shuffle,
	}
	if r != nil {
		d.shuffle = r.Shuffle
	}
	for i := range d.order {
		d.order[i] = i
	}
	d.reshuffle()
	return d
}

func (d *Deck) reshuffle() {
	d.shuffle(len(d.order), func(i, j int) {
		d.order[i], d.order[j] = d.order[j], d.order[i]
	})
	d.next = 0
}

// Deal returns the next question, reshuffling when the deck runs out.
func (d *Deck) Deal() domain.Question {
	if len(d.questions) == 0 {
		// Callers build decks from ListQuestions, which never returns empty.
		return domain.Question{}
	}
	if d.next >= len(d.order) {
		d.reshuffle()
	}
	q := d.questions[d.order[d.next]]
	d.next++
	return q
}

// demoQuestions is the built-in fallback set, in the spirit of the show:
// short school questions an animator can run without any setup.
func demoQuestions() []domain.Question {
	return []domain.Question{
		{
			QuestionID:   "demo-1",
			Kind:         domain.QuestionMCQ,
			Text:         "Combien font 7 x 8 ?",
			Options:      []string{"54", "56", "64", "48"},
			CorrectIndex: 1,
		},
		{
			QuestionID:   "demo-2",
			Kind:         domain.QuestionMCQ,
			Text:         "Quelle est la capitale de la France ?",
			Options:      []string{"Lyon", "Marseille", "Paris", "Bordeaux"},
			CorrectIndex: 2,
		},
		{
			QuestionID:   "demo-3",
			Kind:         domain.QuestionMCQ,
			Text:         "Le mot \"chaussure\" est un nom commun.",
			Options:      []string{"Vrai", "Faux"},
			CorrectIndex: 0,
		},
		{
			QuestionID:   "demo-4",
			Kind:         domain.QuestionMCQ,
			Text:         "Combien de cotes a un hexagone ?",
			Options:      []string{"5", "6", "7", "8"},
			CorrectIndex: 1,
		},
		{
			QuestionID: "demo-5",
			Kind:       domain.QuestionOral,
			Text:       "Recite la table de 3 jusqu'a 3 x 10.",
		},
		{
			QuestionID: "demo-6",
			Kind:       domain.QuestionOral,
			Text:       "Epelle le mot \"bibliotheque\".",
		},
	}
}
