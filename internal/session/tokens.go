package session

import (
	"fmt"

	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/shared"
)

// Persisted storage keys.
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
	ThemeKey        = "theme"
)

// Storage is a string key/value store shared by every reader in the process.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	SetMany(values map[string]string) error
	Remove(keys ...string) error
}

// TokenStore persists the access/refresh token pair. Every read goes to storage.
type TokenStore struct {
	storage Storage
}

// NewTokenStore creates a [TokenStore] backed by storage.
func NewTokenStore(storage Storage) *TokenStore {
	return &TokenStore{storage: storage}
}

// Set replaces both tokens.
func (s *TokenStore) Set(c models.Credentials) error {
	if c.AccessToken == "" {
		return fmt.Errorf("%w: access token is empty", shared.ErrInvalidInput)
	}

	err := s.storage.SetMany(map[string]string{
		AccessTokenKey:  c.AccessToken,
		RefreshTokenKey: c.RefreshToken,
	})
	if err != nil {
		return fmt.Errorf("failed to store tokens: %w", err)
	}
	return nil
}

// Get returns the stored credentials, or nil when no access token is stored.
func (s *TokenStore) Get() (*models.Credentials, error) {
	access, ok, err := s.storage.Get(AccessTokenKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read access token: %w", err)
	}
	if !ok || access == "" {
		return nil, nil
	}

	refresh, _, err := s.storage.Get(RefreshTokenKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read refresh token: %w", err)
	}
	return &models.Credentials{AccessToken: access, RefreshToken: refresh}, nil
}

// Clear removes both tokens.
func (s *TokenStore) Clear() error {
	if err := s.storage.Remove(AccessTokenKey, RefreshTokenKey); err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	return nil
}

// HasSession reports whether an access token is stored. Read errors count as no session.
func (s *TokenStore) HasSession() bool {
	c, err := s.Get()
	return err == nil && c.Valid()
}
