package linking_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/wrapped/internal/linking"
	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/session"
	"github.com/desertthunder/wrapped/internal/shared"
	tu "github.com/desertthunder/wrapped/internal/testing"
)

type fakeBackend struct {
	authURL     string
	authErr     error
	creds       *models.Credentials
	exchangeErr error
	delay       time.Duration
	codes       []string
}

func (f *fakeBackend) AuthURL(ctx context.Context) (string, error) {
	return f.authURL, f.authErr
}

func (f *fakeBackend) ExchangeCode(ctx context.Context, code string) (*models.Credentials, error) {
	f.codes = append(f.codes, code)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.creds, f.exchangeErr
}

type fixture struct {
	storage *tu.MemoryStorage
	tokens  *session.TokenStore
	backend *fakeBackend
	history *session.History
	opened  []string
	flow    *linking.Flow
}

func newFixture(t *testing.T, signedIn bool, opts ...linking.Option) *fixture {
	t.Helper()
	f := &fixture{
		storage: tu.NewMemoryStorage(),
		backend: &fakeBackend{authURL: "https://accounts.spotify.com/authorize?client_id=x"},
		history: session.NewHistory(),
	}
	f.tokens = session.NewTokenStore(f.storage)
	if signedIn {
		require.NoError(t, f.tokens.Set(models.Credentials{AccessToken: "old-a", RefreshToken: "old-r"}))
	}

	opts = append([]linking.Option{linking.WithBrowser(func(u string) error {
		f.opened = append(f.opened, u)
		return nil
	})}, opts...)
	f.flow = linking.NewFlow(f.backend, f.tokens, f.history, opts...)
	return f
}

func TestBegin(t *testing.T) {
	t.Run("opens the authorization url", func(t *testing.T) {
		f := newFixture(t, true)

		u, err := f.flow.Begin(context.Background())
		require.NoError(t, err)
		assert.Equal(t, f.backend.authURL, u)
		assert.Equal(t, []string{f.backend.authURL}, f.opened)
		assert.Equal(t, linking.AwaitingProviderAuthorization, f.flow.Phase())
	})

	t.Run("browser failure is not fatal", func(t *testing.T) {
		f := newFixture(t, true, linking.WithBrowser(func(string) error { return errors.New("no display") }))

		u, err := f.flow.Begin(context.Background())
		require.NoError(t, err)
		assert.NotEmpty(t, u)
		assert.Equal(t, linking.AwaitingProviderAuthorization, f.flow.Phase())
	})

	t.Run("auth url failure", func(t *testing.T) {
		f := newFixture(t, true)
		f.backend.authErr = errors.New("503")

		_, err := f.flow.Begin(context.Background())
		require.ErrorIs(t, err, shared.ErrLinkFailed)
		assert.Equal(t, linking.Failed, f.flow.Phase())
		assert.Empty(t, f.opened)
	})
}

func TestHandleCallback(t *testing.T) {
	ctx := context.Background()

	t.Run("provider error leaves tokens untouched", func(t *testing.T) {
		f := newFixture(t, true)
		before := f.storage.Snapshot()

		res := f.flow.HandleCallback(ctx, url.Values{"error": {"access_denied"}})

		require.ErrorIs(t, res.Err, shared.ErrLinkFailed)
		assert.Equal(t, linking.Failed, res.Phase)
		assert.Equal(t, session.RouteLogin, res.Route)
		assert.Equal(t, session.RouteLogin, f.history.Current())
		assert.Equal(t, before, f.storage.Snapshot())
		assert.Empty(t, f.backend.codes)
	})

	t.Run("missing code", func(t *testing.T) {
		f := newFixture(t, true)

		res := f.flow.HandleCallback(ctx, url.Values{})

		require.ErrorIs(t, res.Err, shared.ErrLinkFailed)
		assert.Equal(t, linking.Failed, f.flow.Phase())
		assert.Empty(t, f.backend.codes)
	})

	t.Run("missing session makes no exchange", func(t *testing.T) {
		f := newFixture(t, false)

		res := f.flow.HandleCallback(ctx, url.Values{"code": {"abc"}})

		require.ErrorIs(t, res.Err, shared.ErrNotAuthenticated)
		assert.Equal(t, session.RouteLogin, res.Route)
		assert.Empty(t, f.backend.codes)
	})

	t.Run("code with returned tokens replaces both", func(t *testing.T) {
		f := newFixture(t, true)
		f.backend.creds = &models.Credentials{AccessToken: "new-a", RefreshToken: "new-r"}

		res := f.flow.HandleCallback(ctx, url.Values{"code": {"abc"}})

		require.NoError(t, res.Err)
		assert.Equal(t, linking.Linked, res.Phase)
		assert.Equal(t, session.RouteHome, f.history.Current())
		assert.Equal(t, []string{"abc"}, f.backend.codes)
		assert.Equal(t, map[string]string{"accessToken": "new-a", "refreshToken": "new-r"}, f.storage.Snapshot())
	})

	t.Run("code without returned tokens keeps session", func(t *testing.T) {
		f := newFixture(t, true)

		res := f.flow.HandleCallback(ctx, url.Values{"code": {"abc"}})

		require.NoError(t, res.Err)
		assert.Equal(t, linking.Linked, f.flow.Phase())
		assert.Equal(t, "old-a", f.storage.Snapshot()["accessToken"])
	})

	t.Run("exchange failure leaves tokens untouched", func(t *testing.T) {
		f := newFixture(t, true)
		f.backend.exchangeErr = errors.New("invalid grant")
		before := f.storage.Snapshot()

		res := f.flow.HandleCallback(ctx, url.Values{"code": {"abc"}})

		require.ErrorIs(t, res.Err, shared.ErrLinkFailed)
		assert.Equal(t, linking.Failed, res.Phase)
		assert.Equal(t, session.RouteLogin, f.history.Current())
		assert.Equal(t, before, f.storage.Snapshot())
	})

	t.Run("repeated code is not exchanged twice", func(t *testing.T) {
		f := newFixture(t, true)

		first := f.flow.HandleCallback(ctx, url.Values{"code": {"abc"}})
		second := f.flow.HandleCallback(ctx, url.Values{"code": {"abc"}})

		require.NoError(t, first.Err)
		assert.Equal(t, first, second)
		assert.Len(t, f.backend.codes, 1)
	})
}

func TestHandleCallbackURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "full url", raw: "http://127.0.0.1:3000/callback?code=abc"},
		{name: "bare query", raw: "code=abc"},
		{name: "error url", raw: "http://127.0.0.1:3000/callback?error=access_denied", wantErr: shared.ErrLinkFailed},
		{name: "empty", raw: "", wantErr: shared.ErrInvalidArgument},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, true)
			res := f.flow.HandleCallbackURL(context.Background(), tc.raw)
			if tc.wantErr != nil {
				require.ErrorIs(t, res.Err, tc.wantErr)
				return
			}
			require.NoError(t, res.Err)
			assert.Equal(t, []string{"abc"}, f.backend.codes)
		})
	}
}

func TestListen(t *testing.T) {
	t.Run("handles one callback", func(t *testing.T) {
		addrCh := make(chan string, 1)
		f := newFixture(t, true, linking.WithReady(func(addr string) { addrCh <- addr }))

		done := make(chan linking.Result, 1)
		go func() {
			done <- f.flow.Listen(context.Background(), "127.0.0.1:0", 5*time.Second)
		}()

		addr := <-addrCh
		resp, err := http.Get("http://" + addr + "/callback?code=abc")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		res := <-done
		require.NoError(t, res.Err)
		assert.Equal(t, linking.Linked, res.Phase)
	})

	t.Run("exchange outlasting the timeout completes", func(t *testing.T) {
		addrCh := make(chan string, 1)
		f := newFixture(t, true, linking.WithReady(func(addr string) { addrCh <- addr }))
		f.backend.creds = &models.Credentials{AccessToken: "new-a", RefreshToken: "new-r"}
		f.backend.delay = 300 * time.Millisecond

		done := make(chan linking.Result, 1)
		go func() {
			done <- f.flow.Listen(context.Background(), "127.0.0.1:0", 100*time.Millisecond)
		}()

		addr := <-addrCh
		resp, err := http.Get("http://" + addr + "/callback?code=slow")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		res := <-done
		require.NoError(t, res.Err)
		assert.Equal(t, linking.Linked, res.Phase)
		assert.Equal(t, linking.Linked, f.flow.Phase())
		assert.Equal(t, session.RouteHome, f.history.Current())

		creds, err := f.tokens.Get()
		require.NoError(t, err)
		assert.Equal(t, "new-a", creds.AccessToken)
	})

	t.Run("times out", func(t *testing.T) {
		f := newFixture(t, true)

		res := f.flow.Listen(context.Background(), "127.0.0.1:0", 20*time.Millisecond)

		require.ErrorIs(t, res.Err, shared.ErrTimeout)
		assert.Equal(t, linking.Failed, res.Phase)
	})

	t.Run("canceled", func(t *testing.T) {
		f := newFixture(t, true)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res := f.flow.Listen(ctx, "127.0.0.1:0", time.Second)

		require.ErrorIs(t, res.Err, context.Canceled)
	})
}
