// package services implements the HTTP client side of the Wrapped backend
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/shared"
)

// Backend exposes one typed method per backend endpoint.
type Backend struct {
	gw *Gateway
}

// NewBackend creates a [Backend] on top of gw.
func NewBackend(gw *Gateway) *Backend {
	return &Backend{gw: gw}
}

// Gateway returns the underlying [Gateway].
func (b *Backend) Gateway() *Gateway { return b.gw }

// Login exchanges username and password for a token pair.
func (b *Backend) Login(ctx context.Context, username, password string) (*models.Credentials, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", shared.ErrMissingArgument)
	}

	body := map[string]string{"username": username, "password": password}
	resp, err := b.gw.CallPublic(ctx, http.MethodPost, "login/", body)
	if err != nil {
		return nil, err
	}

	var creds models.Credentials
	if err := resp.Decode(&creds); err != nil {
		return nil, err
	}
	if creds.AccessToken == "" {
		return nil, fmt.Errorf("%w: login response carried no access token", shared.ErrInvalidResponse)
	}
	return &creds, nil
}

// Register creates an account. It does not sign the user in.
func (b *Backend) Register(ctx context.Context, req models.RegisterRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	_, err := b.gw.CallPublic(ctx, http.MethodPost, "register/", req)
	return err
}

// Profile fetches the signed-in user.
func (b *Backend) Profile(ctx context.Context) (*models.Profile, error) {
	resp, err := b.gw.Call(ctx, http.MethodGet, "profile/", nil)
	if err != nil {
		return nil, err
	}

	var p models.Profile
	if err := resp.Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// WrappedHistory fetches stored snapshots in backend order.
func (b *Backend) WrappedHistory(ctx context.Context) ([]models.Snapshot, error) {
	resp, err := b.gw.Call(ctx, http.MethodGet, "spotify/wrapped-history/", nil)
	if err != nil {
		return nil, err
	}
	return DecodeHistory(resp.Body)
}

// WrappedData requests a fresh summary for term.
func (b *Backend) WrappedData(ctx context.Context, term models.Term) (*GeneratedWrapped, error) {
	resp, err := b.gw.Call(ctx, http.MethodGet, "spotify/wrapped-data/"+url.PathEscape(term.String())+"/", nil)
	if err != nil {
		return nil, err
	}
	return DecodeGenerated(resp.Body)
}

// UserTracks fetches the user's top tracks for term.
func (b *Backend) UserTracks(ctx context.Context, term models.Term) ([]models.Track, error) {
	resp, err := b.gw.Call(ctx, http.MethodGet, "spotify/user-tracks/"+url.PathEscape(term.String())+"/", nil)
	if err != nil {
		return nil, err
	}
	return decodeTrackList(resp.Body)
}

// AuthURL fetches the provider authorization URL, with bearer auth when a session exists.
func (b *Backend) AuthURL(ctx context.Context) (string, error) {
	resp, err := b.gw.Call(ctx, http.MethodGet, "spotify/auth-url/", nil)
	if errors.Is(err, shared.ErrNotAuthenticated) {
		resp, err = b.gw.CallPublic(ctx, http.MethodGet, "spotify/auth-url/", nil)
	}
	if err != nil {
		return "", err
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := resp.Decode(&out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", fmt.Errorf("%w: auth-url response carried no url", shared.ErrInvalidResponse)
	}
	return out.URL, nil
}

// ExchangeCode posts the authorization code to the backend.
//
// The returned credentials are nil unless the backend answered with a new token pair.
func (b *Backend) ExchangeCode(ctx context.Context, code string) (*models.Credentials, error) {
	resp, err := b.gw.Call(ctx, http.MethodPost, "spotify/callback/", map[string]string{"code": code})
	if err != nil {
		return nil, err
	}

	var out struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if resp.IsJSON {
		if err := resp.Decode(&out); err != nil {
			return nil, err
		}
	}
	if out.AccessToken == "" {
		return nil, nil
	}
	return &models.Credentials{AccessToken: out.AccessToken, RefreshToken: out.RefreshToken}, nil
}

// LinkCheck reports whether the backend holds a provider token for the user.
func (b *Backend) LinkCheck(ctx context.Context) (bool, error) {
	resp, err := b.gw.Call(ctx, http.MethodGet, "spotify/link-check/", nil)
	if err != nil {
		return false, err
	}

	var out struct {
		Linked bool `json:"linked"`
	}
	if err := resp.Decode(&out); err != nil {
		return false, err
	}
	return out.Linked, nil
}

// DeleteAccount removes the signed-in user's account.
func (b *Backend) DeleteAccount(ctx context.Context) error {
	_, err := b.gw.Call(ctx, http.MethodDelete, "users/delete/", nil)
	return err
}

// DeleteSnapshot removes a stored snapshot.
func (b *Backend) DeleteSnapshot(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: snapshot id", shared.ErrMissingArgument)
	}
	_, err := b.gw.Call(ctx, http.MethodDelete, "wrapped-history/"+url.PathEscape(id)+"/delete/", nil)
	return err
}

// MakePublic publishes a stored snapshot.
func (b *Backend) MakePublic(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: snapshot id", shared.ErrMissingArgument)
	}
	_, err := b.gw.Call(ctx, http.MethodPost, "wrapped/make-public/"+url.PathEscape(id)+"/", map[string]any{})
	return err
}

// PublicHistories lists snapshots other users have published. No credentials are sent.
func (b *Backend) PublicHistories(ctx context.Context) ([]models.Snapshot, error) {
	resp, err := b.gw.CallPublic(ctx, http.MethodGet, "public_histories/", nil)
	if err != nil {
		return nil, err
	}
	return DecodeHistory(resp.Body)
}
