package tasks

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/shared"
)

// Session is the part of the session controller the engine drives.
type Session interface {
	EnterHome(ctx context.Context) (*models.Profile, error)
	CanGenerate() bool
}

// Snapshots is the Wrapped collection the engine loads and grows.
type Snapshots interface {
	LoadHistory(ctx context.Context) error
	Replace(snapshots []models.Snapshot)
	Snapshots() []models.Snapshot
	Generate(ctx context.Context, term models.Term) (*models.Snapshot, error)
}

// HomeResult contains everything the home screen renders after mounting.
type HomeResult struct {
	Profile    *models.Profile   // Signed-in user
	Snapshots  []models.Snapshot // Wrapped history in backend order (empty when HistoryErr is set)
	HistoryErr error             // History failure; the home screen still renders
}

// Linked reports whether the profile has a linked Spotify account.
func (r *HomeResult) Linked() bool {
	return r.Profile != nil && r.Profile.SpotifyLinked
}

// WrappedEngine sequences the multi-request operations behind the home screen.
type WrappedEngine struct {
	session   Session
	snapshots Snapshots
	logger    *log.Logger
}

// NewWrappedEngine creates a [WrappedEngine]. A nil logger discards output.
func NewWrappedEngine(session Session, snapshots Snapshots, logger *log.Logger) *WrappedEngine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &WrappedEngine{session: session, snapshots: snapshots, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *WrappedEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// LoadHome mounts the home screen: profile first, then history.
//
// A profile failure is returned and the history is never requested. A history failure is logged,
// leaves the collection empty and is reported in [HomeResult.HistoryErr].
func (e *WrappedEngine) LoadHome(ctx context.Context, prog chan<- ProgressUpdate) (*HomeResult, error) {
	if e.session == nil || e.snapshots == nil {
		return nil, fmt.Errorf("%w: engine not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(prog, fetchProfileUpdate(1, 2))
	profile, err := e.session.EnterHome(ctx)
	if err != nil {
		return nil, err
	}
	e.sendProgress(prog, profileLoadedUpdate(1, 2, profile))

	result := &HomeResult{Profile: profile}

	e.sendProgress(prog, fetchHistoryUpdate(2, 2))
	if err := e.snapshots.LoadHistory(ctx); err != nil {
		e.logger.Error("failed to load wrapped history", "error", err)
		e.snapshots.Replace(nil)
		result.HistoryErr = err
		result.Snapshots = []models.Snapshot{}
		e.sendProgress(prog, historyFailedUpdate(2, 2, err))
		return result, nil
	}

	result.Snapshots = e.snapshots.Snapshots()
	e.sendProgress(prog, historyLoadedUpdate(2, 2, result.Snapshots))
	return result, nil
}
