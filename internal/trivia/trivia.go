// Package trivia builds a short quiz from the user's first Wrapped snapshot.
//
// A [Game] is not safe for concurrent use; the TUI drives it from its update loop.
package trivia

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/shared"
)

// TimeLimit is how long the player has to answer each question.
const TimeLimit = 10 * time.Second

// maxOptions caps the answers offered per question.
const maxOptions = 4

// ErrNoData is returned when the history holds nothing to ask about.
var ErrNoData = fmt.Errorf("%w: no wrapped data for trivia", shared.ErrPreconditionNotMet)

// Question is a single multiple-choice prompt.
type Question struct {
	Prompt  string
	Answer  string
	Options []string
}

// Correct reports whether choice is the answer.
func (q Question) Correct(choice string) bool {
	return choice != "" && choice == q.Answer
}

// Game tracks progress through a fixed list of questions.
type Game struct {
	source    models.Snapshot
	rng       *rand.Rand
	questions []Question
	index     int
	score     int
	selected  string
	over      bool
}

// Option configures a [Game].
type Option func(*Game)

// WithRand sets the source used to shuffle options.
func WithRand(r *rand.Rand) Option {
	return func(g *Game) { g.rng = r }
}

// NewGame builds a game from history[0], the snapshot the quiz is always about.
func NewGame(history []models.Snapshot, opts ...Option) (*Game, error) {
	if len(history) == 0 {
		return nil, ErrNoData
	}

	g := &Game{source: history[0]}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	g.questions = BuildQuestions(g.source, g.shuffle)
	if len(g.questions) == 0 {
		return nil, ErrNoData
	}
	return g, nil
}

func (g *Game) shuffle(s []string) {
	g.rng.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}

// BuildQuestions generates the quiz for snap.
//
// The first question asks for the top artist among the first four artists. Each of those artists with
// a known top song then gets a "most listened to" question, offered against the other top songs.
// Questions with fewer than two options are skipped.
func BuildQuestions(snap models.Snapshot, shuffle func([]string)) []Question {
	var questions []Question

	top := snap.Artists
	if len(top) > maxOptions {
		top = top[:maxOptions]
	}

	names := make([]string, 0, len(top))
	for _, a := range top {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	if len(top) > 0 && top[0].Name != "" && len(names) >= 2 {
		shuffle(names)
		questions = append(questions, Question{
			Prompt:  "Who was your top artist of the year?",
			Answer:  top[0].Name,
			Options: names,
		})
	}

	var songs []string
	seen := map[string]bool{}
	for _, a := range top {
		if a.TopSong != "" && !seen[a.TopSong] {
			seen[a.TopSong] = true
			songs = append(songs, a.TopSong)
		}
	}
	if len(songs) < 2 {
		return questions
	}

	for _, a := range top {
		if a.Name == "" || a.TopSong == "" {
			continue
		}
		options := append([]string(nil), songs...)
		shuffle(options)
		questions = append(questions, Question{
			Prompt:  fmt.Sprintf("Which %s song did you listen to the most?", a.Name),
			Answer:  a.TopSong,
			Options: options,
		})
	}
	return questions
}

// Current returns the question being asked; ok is false once the game is over.
func (g *Game) Current() (q Question, ok bool) {
	if g.over {
		return Question{}, false
	}
	return g.questions[g.index], true
}

// Index is the zero-based position of the current question.
func (g *Game) Index() int { return g.index }

// Len is the number of questions.
func (g *Game) Len() int { return len(g.questions) }

// Score is the number of correct answers so far.
func (g *Game) Score() int { return g.score }

// Over reports whether every question has been answered.
func (g *Game) Over() bool { return g.over }

// Selected is the pending choice for the current question.
func (g *Game) Selected() string { return g.selected }

// Select marks choice as the pending answer. It must be one of the current options.
func (g *Game) Select(choice string) error {
	q, ok := g.Current()
	if !ok {
		return fmt.Errorf("%w: game is over", shared.ErrInvalidInput)
	}
	for _, opt := range q.Options {
		if opt == choice {
			g.selected = choice
			return nil
		}
	}
	return fmt.Errorf("%w: %q is not an option", shared.ErrInvalidArgument, choice)
}

// Submit scores the pending choice and moves to the next question. It also serves as the timeout
// action, in which case an empty choice scores nothing. Returns whether the answer was correct.
func (g *Game) Submit() bool {
	q, ok := g.Current()
	if !ok {
		return false
	}

	correct := q.Correct(g.selected)
	if correct {
		g.score++
	}
	g.selected = ""

	if g.index == len(g.questions)-1 {
		g.over = true
	} else {
		g.index++
	}
	return correct
}

// Restart resets score and progress and reshuffles the options.
func (g *Game) Restart() {
	g.questions = BuildQuestions(g.source, g.shuffle)
	g.index = 0
	g.score = 0
	g.selected = ""
	g.over = false
}
