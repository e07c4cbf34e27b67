package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/memory/v2"
	"github.com/khanghh/guildgate/internal/middlewares"
	"github.com/khanghh/guildgate/internal/oauth"
	"github.com/khanghh/guildgate/internal/render"
	"github.com/khanghh/guildgate/internal/store"
	"github.com/khanghh/guildgate/model"
	"github.com/stretchr/testify/require"
)

type fakeOAuthProvider struct {
	exchangeErr error
	identifyErr error
	token       *oauth.OAuthToken
	userInfo    *oauth.UserInfo
}

func (f *fakeOAuthProvider) AuthCodeURL(state string) string {
	return "https://discord.com/oauth2/authorize?state=" + state
}

func (f *fakeOAuthProvider) ExchangeCode(ctx context.Context, code string) (*oauth.OAuthToken, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.token, nil
}

func (f *fakeOAuthProvider) Identify(ctx context.Context, token *oauth.OAuthToken) (*oauth.UserInfo, error) {
	if f.identifyErr != nil {
		return nil, f.identifyErr
	}
	return f.userInfo, nil
}

type fakeTokenStore struct {
	upserts []*model.AuthorizedUser
	err     error
}

func (f *fakeTokenStore) Upsert(ctx context.Context, user *model.AuthorizedUser) error {
	if f.err != nil {
		return f.err
	}
	f.upserts = append(f.upserts, user)
	return nil
}

func newTestApp(handler *AuthHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:        render.NewHtmlEngine(""),
		ErrorHandler: middlewares.ErrorHandler,
	})
	app.Get("/", handler.GetHome)
	app.Get("/callback", handler.GetCallback)
	return app
}

func newStateStore() *store.StateStore {
	return store.NewStateStore(memory.New(), time.Minute)
}

func TestGetHome(t *testing.T) {
	handler := NewAuthHandler(&fakeOAuthProvider{}, &fakeTokenStore{}, newStateStore())
	app := newTestApp(handler)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	require.Contains(t, string(body), "https://discord.com/oauth2/authorize?state=")
}

func TestGetCallback_MissingCode(t *testing.T) {
	users := &fakeTokenStore{}
	handler := NewAuthHandler(&fakeOAuthProvider{}, users, newStateStore())
	app := newTestApp(handler)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/callback", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Empty(t, users.upserts, "no store mutation on failure")
}

func TestGetCallback_ExchangeFailed(t *testing.T) {
	users := &fakeTokenStore{}
	provider := &fakeOAuthProvider{exchangeErr: &oauth.ExchangeError{StatusCode: 400, Body: "invalid_grant"}}
	handler := NewAuthHandler(provider, users, newStateStore())
	app := newTestApp(handler)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/callback?code=bad", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Empty(t, users.upserts)
}

func TestGetCallback_InvalidState(t *testing.T) {
	users := &fakeTokenStore{}
	handler := NewAuthHandler(&fakeOAuthProvider{}, users, newStateStore())
	app := newTestApp(handler)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/callback?code=abc&state=unknown", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Empty(t, users.upserts)
}

func TestGetCallback_StorageFailed(t *testing.T) {
	users := &fakeTokenStore{err: errors.New("connection refused")}
	provider := &fakeOAuthProvider{
		token:    &oauth.OAuthToken{AccessToken: "at1", RefreshToken: "rt1"},
		userInfo: &oauth.UserInfo{ID: "42", Username: "tester"},
	}
	handler := NewAuthHandler(provider, users, newStateStore())
	app := newTestApp(handler)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/callback?code=abc", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestGetCallback_Success(t *testing.T) {
	users := &fakeTokenStore{}
	provider := &fakeOAuthProvider{
		token:    &oauth.OAuthToken{AccessToken: "at1", RefreshToken: "rt1"},
		userInfo: &oauth.UserInfo{ID: "42", Username: "tester"},
	}
	states := newStateStore()
	handler := NewAuthHandler(provider, users, states)
	app := newTestApp(handler)

	state, err := states.NewState()
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/callback?code=abc&state="+state, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, users.upserts, 1, "exactly one store mutation per successful call")
	require.Equal(t, &model.AuthorizedUser{UserID: "42", AccessToken: "at1", RefreshToken: "rt1"}, users.upserts[0])

	body, _ := io.ReadAll(resp.Body)
	require.Contains(t, string(body), "on the list")
}
