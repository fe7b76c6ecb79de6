package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/desertthunder/wrapped/internal/shared"
)

// Model defines the base interface for persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Credentials is the token pair held by the token store.
//
// A non-empty AccessToken is the only signal that a session exists; the client never inspects
// expiry or signature.
type Credentials struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
}

// Valid reports whether an access token is present.
func (c *Credentials) Valid() bool {
	return c != nil && c.AccessToken != ""
}

// OAuth2 converts the credentials into a bearer [oauth2.Token].
func (c Credentials) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    "Bearer",
	}
}

// Profile is the signed-in user as reported by the backend.
type Profile struct {
	Username      string `json:"username"`
	Email         string `json:"email"`
	SpotifyLinked bool   `json:"spotify_linked"`
}

// RegisterRequest is the body of an account registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate reports missing registration fields.
func (r RegisterRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.Username) == "":
		return fmt.Errorf("%w: username", shared.ErrMissingArgument)
	case strings.TrimSpace(r.Email) == "":
		return fmt.Errorf("%w: email", shared.ErrMissingArgument)
	case r.Password == "":
		return fmt.Errorf("%w: password", shared.ErrMissingArgument)
	case !strings.Contains(r.Email, "@"):
		return fmt.Errorf("%w: email %q", shared.ErrInvalidArgument, r.Email)
	}
	return nil
}

// Artist is one ranked entry of a snapshot.
type Artist struct {
	Name        string   `json:"name"`
	ImageURL    string   `json:"image_url,omitempty"`
	TopSong     string   `json:"top_song,omitempty"`
	TopSongID   string   `json:"top_song_id,omitempty"`
	Description string   `json:"description,omitempty"`
	PreviewURL  string   `json:"preview_url,omitempty"`
	Genres      []string `json:"genres,omitempty"`
}

// Track is one ranked song of a snapshot.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists,omitempty"`
	Album      string   `json:"album,omitempty"`
	PreviewURL string   `json:"preview_url,omitempty"`
}

// Snapshot is a single Wrapped summary, either loaded from history or freshly generated.
type Snapshot struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	CoverImageURL string          `json:"image"`
	Artists       []Artist        `json:"artists"`
	Tracks        []Track         `json:"tracks,omitempty"`
	Public        bool            `json:"public,omitempty"`
	Raw           json.RawMessage `json:"-"`
}

// TopArtist returns the first ranked artist, if any.
func (s Snapshot) TopArtist() (Artist, bool) {
	if len(s.Artists) == 0 {
		return Artist{}, false
	}
	return s.Artists[0], true
}

// Term selects the listening window a snapshot is generated for.
type Term string

const (
	TermShort     Term = "short"
	TermMedium    Term = "medium"
	TermLong      Term = "long"
	TermChristmas Term = "christmas"
	TermHalloween Term = "halloween"
)

// Terms lists every supported [Term] in menu order.
func Terms() []Term {
	return []Term{TermShort, TermMedium, TermLong, TermChristmas, TermHalloween}
}

// ParseTerm converts user input into a [Term].
func ParseTerm(s string) (Term, error) {
	t := Term(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Terms() {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown term %q (want one of short, medium, long, christmas, halloween)", shared.ErrInvalidArgument, s)
}

// Title returns the display title of a snapshot generated for the term, e.g. "Short-Term Wrapped".
func (t Term) Title() string {
	s := string(t)
	if s == "" {
		return "-Term Wrapped"
	}
	return strings.ToUpper(s[:1]) + s[1:] + "-Term Wrapped"
}

func (t Term) String() string { return string(t) }

// ExportRecord is a file written from a snapshot.
type ExportRecord struct {
	id         string
	SnapshotID string
	Title      string
	Format     string
	Path       string
	createdAt  time.Time
}

// NewExportRecord creates an [ExportRecord] stamped with the current time.
func NewExportRecord(snapshotID, title, format, path string) *ExportRecord {
	return &ExportRecord{
		SnapshotID: snapshotID,
		Title:      title,
		Format:     format,
		Path:       path,
		createdAt:  time.Now().UTC(),
	}
}

func (e *ExportRecord) ID() string               { return e.id }
func (e *ExportRecord) SetID(id string)          { e.id = id }
func (e *ExportRecord) CreatedAt() time.Time     { return e.createdAt }
func (e *ExportRecord) SetCreatedAt(t time.Time) { e.createdAt = t }

// Validate checks that the record points at a snapshot and a file.
func (e *ExportRecord) Validate() error {
	switch {
	case e.SnapshotID == "":
		return fmt.Errorf("%w: snapshot id is required", shared.ErrInvalidInput)
	case e.Format == "":
		return fmt.Errorf("%w: format is required", shared.ErrInvalidInput)
	case e.Path == "":
		return fmt.Errorf("%w: path is required", shared.ErrInvalidInput)
	}
	return nil
}
