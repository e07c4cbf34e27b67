package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	discordOAuthScopeIdentify   = "identify"
	discordOAuthScopeGuildsJoin = "guilds.join"

	discordUserInfoURL = "https://discord.com/api/users/@me"
)

type DiscordOAuthProvider struct {
	oauth2.Config
	userInfoURL string
	timeout     time.Duration
}

func (p *DiscordOAuthProvider) AuthCodeURL(state string) string {
	return p.Config.AuthCodeURL(state)
}

func (p *DiscordOAuthProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	token, err := p.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, &ExchangeError{
				StatusCode: retrieveErr.Response.StatusCode,
				Body:       string(retrieveErr.Body),
			}
		}
		return nil, err
	}
	return token, nil
}

func (p *DiscordOAuthProvider) Refresh(ctx context.Context, refreshToken string) string {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	src := p.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		slog.Debug("Token refresh failed", "error", err)
		return ""
	}
	return token.AccessToken
}

func (p *DiscordOAuthProvider) Identify(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	var discordUser struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Avatar   string `json:"avatar"`
	}
	resp, err := p.Client(ctx, token).Get(p.userInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info request failed with status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&discordUser); err != nil {
		return nil, err
	}
	return &UserInfo{
		ID:       discordUser.ID,
		Username: discordUser.Username,
		Avatar:   discordUser.Avatar,
	}, nil
}

func NewDiscordOAuthProvider(clientId, clientSecret, redirectURL string, timeout time.Duration) *DiscordOAuthProvider {
	return &DiscordOAuthProvider{
		Config: oauth2.Config{
			ClientID:     clientId,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				discordOAuthScopeIdentify,
				discordOAuthScopeGuildsJoin,
			},
			Endpoint: endpoints.Discord,
		},
		userInfoURL: discordUserInfoURL,
		timeout:     timeout,
	}
}
