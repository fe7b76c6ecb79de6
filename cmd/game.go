package main

import (
	"bufio"
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/wrapped/internal/trivia"
)

const triviaTimeLimit = trivia.TimeLimit

// Game plays one trivia round on stdin. Each answer is the option number followed by enter; a question left
// unanswered when its time runs out scores nothing.
func (r *Runner) Game(ctx context.Context, cmd *cli.Command) error {
	result, err := r.loadHome(ctx, false)
	if err != nil {
		return err
	}

	game, err := trivia.NewGame(result.Snapshots)
	if err != nil {
		return err
	}

	limit := cmd.Duration("time-limit")
	if limit <= 0 {
		limit = triviaTimeLimit
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r.input)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	r.writePlainHeader("Wrapped Trivia")
	r.writePlain("%d questions, %s each. Answer with the option number.\n", game.Len(), limit)

	for !game.Over() {
		q, _ := game.Current()
		r.writePlainln("Question %d/%d: %s", game.Index()+1, game.Len(), q.Prompt)
		for i, opt := range q.Options {
			r.writePlain("  %d. %s\n", i+1, opt)
		}

		answered, open, err := r.askQuestion(ctx, game, q, lines, limit)
		if err != nil {
			return err
		}
		if !open {
			r.writePlain("Input closed, ending the round\n")
			for !game.Over() {
				game.Submit()
			}
			break
		}
		if !answered {
			r.writePlain("⏰ Time's up! The answer was %s\n", q.Answer)
			game.Submit()
			continue
		}
		if game.Submit() {
			r.writePlain("✓ Correct!\n")
		} else {
			r.writePlain("✗ Wrong, the answer was %s\n", q.Answer)
		}
	}

	r.writePlainln("Game Over! You scored %d/%d", game.Score(), game.Len())
	return nil
}

// askQuestion waits for a valid option number until the time limit. open is false once input is exhausted.
func (r *Runner) askQuestion(
	ctx context.Context,
	game *trivia.Game,
	q trivia.Question,
	lines <-chan string,
	limit time.Duration,
) (answered, open bool, err error) {
	timer := time.NewTimer(limit)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return false, false, ctx.Err()
		case <-timer.C:
			return false, true, nil
		case line, ok := <-lines:
			if !ok {
				return false, false, nil
			}
			n, convErr := strconv.Atoi(line)
			if convErr != nil || n < 1 || n > len(q.Options) {
				r.writePlain("Choose a number from 1 to %d\n", len(q.Options))
				continue
			}
			if err := game.Select(q.Options[n-1]); err != nil {
				return false, true, err
			}
			return true, true, nil
		}
	}
}
