// Package wrapped holds the ordered, in-memory collection of Wrapped snapshots.
//
// History loads replace the collection wholesale; generation appends to the end. Deletion is done on
// the backend and is only reflected after the next history load.
package wrapped

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/services"
	"github.com/desertthunder/wrapped/internal/session"
	"github.com/desertthunder/wrapped/internal/shared"
)

// PlaceholderImage is the cover used when a generated snapshot carries no image.
const PlaceholderImage = "https://via.placeholder.com/300"

// Backend is the subset of the backend client used by the [Collection].
type Backend interface {
	WrappedHistory(ctx context.Context) ([]models.Snapshot, error)
	WrappedData(ctx context.Context, term models.Term) (*services.GeneratedWrapped, error)
	DeleteSnapshot(ctx context.Context, id string) error
	MakePublic(ctx context.Context, id string) error
	PublicHistories(ctx context.Context) ([]models.Snapshot, error)
}

// Gate reports whether generation is allowed; satisfied by [session.Controller].
type Gate interface {
	CanGenerate() bool
}

// Collection is the client's ordered snapshot list. It is safe for concurrent use.
type Collection struct {
	mu          sync.RWMutex
	snapshots   []models.Snapshot
	backend     Backend
	gate        Gate
	nav         session.Navigator
	placeholder string
	newID       func() string
	logger      *log.Logger
}

// Option configures a [Collection].
type Option func(*Collection)

// WithPlaceholder overrides [PlaceholderImage].
func WithPlaceholder(url string) Option {
	return func(c *Collection) {
		if url != "" {
			c.placeholder = url
		}
	}
}

// WithIDGenerator replaces [shared.GenerateID] for generated snapshot ids.
func WithIDGenerator(fn func() string) Option {
	return func(c *Collection) { c.newID = fn }
}

// WithLogger sets the collection's logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Collection) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCollection creates an empty [Collection].
func NewCollection(backend Backend, gate Gate, nav session.Navigator, opts ...Option) *Collection {
	c := &Collection{
		backend:     backend,
		gate:        gate,
		nav:         nav,
		placeholder: PlaceholderImage,
		newID:       shared.GenerateID,
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadHistory replaces the collection with the backend's history, in the order returned.
func (c *Collection) LoadHistory(ctx context.Context) error {
	history, err := c.backend.WrappedHistory(ctx)
	if err != nil {
		return err
	}
	c.Replace(history)
	c.logger.Debug("history loaded", "count", len(history))
	return nil
}

// Replace sets the collection wholesale.
func (c *Collection) Replace(snapshots []models.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots = append([]models.Snapshot(nil), snapshots...)
}

// Generate requests a new snapshot for term and appends it.
//
// Without a linked account it returns [shared.ErrPreconditionNotMet] and makes no request.
func (c *Collection) Generate(ctx context.Context, term models.Term) (*models.Snapshot, error) {
	if !c.gate.CanGenerate() {
		return nil, shared.ErrNotLinked
	}

	data, err := c.backend.WrappedData(ctx, term)
	if err != nil {
		return nil, err
	}

	snap := models.Snapshot{
		ID:            c.newID(),
		Title:         term.Title(),
		CoverImageURL: c.cover(data),
		Artists:       data.Artists,
		Tracks:        data.Tracks,
		Raw:           data.Raw,
	}

	c.mu.Lock()
	c.snapshots = append(c.snapshots, snap)
	c.mu.Unlock()

	c.logger.Info("snapshot generated", "term", term, "id", snap.ID, "artists", len(snap.Artists))
	return &snap, nil
}

// cover picks the top-level image, then the first artist's image, then the placeholder.
func (c *Collection) cover(data *services.GeneratedWrapped) string {
	if len(data.Images) > 0 && data.Images[0] != "" {
		return data.Images[0]
	}
	if len(data.Artists) > 0 && data.Artists[0].ImageURL != "" {
		return data.Artists[0].ImageURL
	}
	return c.placeholder
}

// Delete removes a snapshot on the backend and navigates home. The local collection is unchanged.
func (c *Collection) Delete(ctx context.Context, id string) error {
	if err := c.backend.DeleteSnapshot(ctx, id); err != nil {
		return err
	}
	c.logger.Info("snapshot deleted", "id", id)
	c.nav.Navigate(session.RouteHome)
	return nil
}

// Publish makes a snapshot public on the backend and marks the local copy public.
func (c *Collection) Publish(ctx context.Context, id string) error {
	if err := c.backend.MakePublic(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.snapshots {
		if c.snapshots[i].ID == id {
			c.snapshots[i].Public = true
		}
	}
	c.mu.Unlock()
	return nil
}

// Public lists snapshots other users have published. It does not modify the collection.
func (c *Collection) Public(ctx context.Context) ([]models.Snapshot, error) {
	return c.backend.PublicHistories(ctx)
}

// Snapshots returns a copy of the collection in order.
func (c *Collection) Snapshots() []models.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Snapshot(nil), c.snapshots...)
}

// Get returns the snapshot with id.
func (c *Collection) Get(id string) (models.Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.snapshots {
		if s.ID == id {
			return s, nil
		}
	}
	return models.Snapshot{}, fmt.Errorf("%w: %s", shared.ErrSnapshotNotFound, id)
}

// At returns the snapshot at index i.
func (c *Collection) At(i int) (models.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i < 0 || i >= len(c.snapshots) {
		return models.Snapshot{}, false
	}
	return c.snapshots[i], true
}

// Len returns the number of snapshots.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snapshots)
}
