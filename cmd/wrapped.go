package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	figure "github.com/common-nighthawk/go-figure"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/session"
	"github.com/desertthunder/wrapped/internal/shared"
	"github.com/desertthunder/wrapped/internal/tasks"
)

// homeOutput is the JSON shape of `home`.
type homeOutput struct {
	Profile      *models.Profile   `json:"profile"`
	Snapshots    []models.Snapshot `json:"snapshots"`
	HistoryError string            `json:"history_error,omitempty"`
}

// Home prints the dashboard: banner, profile, link state and the Wrapped carousel as a list.
func (r *Runner) Home(ctx context.Context, cmd *cli.Command) error {
	asJSON := cmd.Bool("json")

	result, err := r.loadHome(ctx, !asJSON)
	if err != nil {
		return err
	}

	if asJSON {
		out := homeOutput{Profile: result.Profile, Snapshots: result.Snapshots}
		if result.HistoryErr != nil {
			out.HistoryError = result.HistoryErr.Error()
		}
		return r.writeJSON(out, true)
	}

	r.writePlain("\n%s\n", figure.NewFigure("Wrapped", "", true).String())
	r.writePlain("Welcome, %s\n", result.Profile.Username)
	if result.Linked() {
		r.writePlain("Spotify: ✓ Linked\n\n")
	} else {
		r.writePlain("Spotify: ✗ Not linked (run 'wrapped spotify link' to generate new Wrapped)\n\n")
	}

	r.writePlainHeader("Your Wrapped")
	r.printSnapshots(result.Snapshots)
	return nil
}

// WrappedList prints the Wrapped history.
func (r *Runner) WrappedList(ctx context.Context, cmd *cli.Command) error {
	result, err := r.loadHome(ctx, false)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result.Snapshots, true)
	}
	r.printSnapshots(result.Snapshots)
	return nil
}

// WrappedGenerate generates one snapshot per requested term. Several terms run concurrently.
func (r *Runner) WrappedGenerate(ctx context.Context, cmd *cli.Command) error {
	terms, err := parseTerms(cmd.StringSlice("term"), cmd.Bool("all"))
	if err != nil {
		return err
	}

	if _, err := r.loadHome(ctx, false); err != nil {
		return err
	}
	if !r.controller.CanGenerate() {
		return fmt.Errorf("%w (run 'wrapped spotify link' first)", shared.ErrNotLinked)
	}

	asJSON := cmd.Bool("json")

	if len(terms) == 1 {
		r.logger.Info("generating wrapped", "term", terms[0])
		snap, err := r.collection.Generate(ctx, terms[0])
		if err != nil {
			return fmt.Errorf("failed to generate %s: %w", terms[0].Title(), err)
		}
		if asJSON {
			return r.writeJSON(snap, true)
		}
		return r.writePlain("✓ Generated %s (%s, %d artists)\n", snap.Title, snap.ID, len(snap.Artists))
	}

	var prog chan tasks.ProgressUpdate
	wait := func() {}
	if !asJSON {
		prog, wait = r.streamProgress()
	}

	result, err := r.engine.GenerateMany(ctx, prog, terms, tasks.GenerateOpts{
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	})
	wait()
	if err != nil {
		return err
	}

	if asJSON {
		return r.writeJSON(generatedSnapshots(result), true)
	}

	r.writePlainln("✓ Generated %d/%d Wrapped", result.Succeeded, result.Total)
	for _, res := range result.Results {
		if res.Error != nil {
			r.writePlain("  ✗ %s: %v\n", res.Term.Title(), res.Error)
			continue
		}
		r.writePlain("  ✓ %s (%s, %d artists)\n", res.Snapshot.Title, res.Snapshot.ID, len(res.Snapshot.Artists))
	}

	if result.Failed > 0 {
		return fmt.Errorf("%w: %d of %d terms failed", shared.ErrRequestFailed, result.Failed, result.Total)
	}
	return nil
}

// WrappedShow prints a snapshot artist by artist.
func (r *Runner) WrappedShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: snapshot id", shared.ErrMissingArgument)
	}

	if _, err := r.loadHome(ctx, false); err != nil {
		return err
	}
	if r.controller.Visit(session.DetailRoute(id)) == session.RouteLogin {
		return shared.ErrNotAuthenticated
	}

	snap, err := r.collection.Get(id)
	if err != nil {
		return err
	}

	if cmd.Bool("open") {
		return r.openPreview(snap)
	}

	snap = r.fillTracks(ctx, snap)
	if cmd.Bool("json") {
		return r.writeJSON(snap, true)
	}

	r.writePlainHeader(snap.Title)
	r.writePlain("ID: %s\n", snap.ID)
	r.writePlain("Visibility: %s\n", visibility(snap.Public))
	if snap.CoverImageURL != "" {
		r.writePlain("Cover: %s\n", snap.CoverImageURL)
	}

	r.writePlainln("Artists (%d)", len(snap.Artists))
	for i, a := range snap.Artists {
		if a.TopSong != "" {
			r.writePlain("%2d. %s (most listened to: %s)\n", i+1, a.Name, a.TopSong)
		} else {
			r.writePlain("%2d. %s\n", i+1, a.Name)
		}
		if len(a.Genres) > 0 {
			r.writePlain("    Genres: %s\n", strings.Join(a.Genres, ", "))
		}
		if a.PreviewURL != "" {
			r.writePlain("    Preview: %s\n", a.PreviewURL)
		}
	}

	if len(snap.Tracks) > 0 {
		r.writePlainln("Tracks (%d)", len(snap.Tracks))
		for i, t := range snap.Tracks {
			r.writePlain("%2d. %s - %s\n", i+1, t.Name, strings.Join(t.Artists, ", "))
		}
	}
	return nil
}

// fillTracks fetches the top tracks for a term snapshot that carries none. Failures leave the
// snapshot as it was.
func (r *Runner) fillTracks(ctx context.Context, snap models.Snapshot) models.Snapshot {
	if len(snap.Tracks) > 0 || !r.controller.CanGenerate() {
		return snap
	}
	term, ok := termForTitle(snap.Title)
	if !ok {
		return snap
	}

	tracks, err := r.backend.UserTracks(ctx, term)
	if err != nil {
		r.logger.Warn("could not load top tracks", "term", term, "error", err)
		return snap
	}
	snap.Tracks = tracks
	return snap
}

// termForTitle matches titles like "Long-Term Wrapped" or "Long Term Wrapped".
func termForTitle(title string) (models.Term, bool) {
	norm := func(s string) string {
		return strings.ToLower(strings.Join(strings.Fields(strings.ReplaceAll(s, "-", " ")), " "))
	}
	want := norm(title)
	for _, t := range models.Terms() {
		if norm(t.Title()) == want {
			return t, true
		}
	}
	return "", false
}

// WrappedDelete deletes a snapshot on the backend.
func (r *Runner) WrappedDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: snapshot id", shared.ErrMissingArgument)
	}

	if err := r.collection.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", id, err)
	}
	return r.writePlain("✓ Deleted snapshot %s\n", id)
}

// WrappedPublish makes a snapshot public.
func (r *Runner) WrappedPublish(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: snapshot id", shared.ErrMissingArgument)
	}

	if err := r.collection.Publish(ctx, id); err != nil {
		return fmt.Errorf("failed to publish snapshot %s: %w", id, err)
	}
	return r.writePlain("✓ Snapshot %s is now public\n", id)
}

// WrappedPublic lists snapshots other users have published.
func (r *Runner) WrappedPublic(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	snapshots, err := r.collection.Public(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(snapshots, true)
	}

	r.writePlainHeader("Public Wrapped")
	r.printSnapshots(snapshots)
	return nil
}

// openPreview opens the top artist's song preview in the browser.
func (r *Runner) openPreview(snap models.Snapshot) error {
	top, ok := snap.TopArtist()
	if !ok || top.PreviewURL == "" {
		return fmt.Errorf("%w: %s has no song preview", shared.ErrPreconditionNotMet, snap.Title)
	}
	if err := r.openURL(top.PreviewURL); err != nil {
		return err
	}
	return r.writePlain("✓ Opened preview of %s\n", top.TopSong)
}

func (r *Runner) printSnapshots(snapshots []models.Snapshot) {
	if len(snapshots) == 0 {
		r.writePlain("No Wrapped yet.\n")
		return
	}

	for i, s := range snapshots {
		line := fmt.Sprintf("%d. %s [%s] %d artists", i+1, s.Title, s.ID, len(s.Artists))
		if top, ok := s.TopArtist(); ok {
			line += ", top: " + top.Name
		}
		if s.Public {
			line += " (public)"
		}
		r.writePlain("%s\n", line)
	}
}

// parseTerms validates --term values. --all selects every term.
func parseTerms(raw []string, all bool) ([]models.Term, error) {
	if all {
		return models.Terms(), nil
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: --term or --all", shared.ErrMissingArgument)
	}

	seen := map[models.Term]bool{}
	terms := []models.Term{}
	errs := []error{}
	for _, s := range raw {
		for _, part := range strings.Split(s, ",") {
			t, err := models.ParseTerm(strings.TrimSpace(part))
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if !seen[t] {
				seen[t] = true
				terms = append(terms, t)
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return terms, nil
}

func generatedSnapshots(result *tasks.BulkGenerateResult) []models.Snapshot {
	out := []models.Snapshot{}
	for _, res := range result.Results {
		if res.Snapshot != nil {
			out = append(out, *res.Snapshot)
		}
	}
	return out
}

func visibility(public bool) string {
	if public {
		return "Public"
	}
	return "Private"
}
