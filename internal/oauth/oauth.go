package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

type OAuthToken = oauth2.Token

// UserInfo is the identity resolved from the provider's user endpoint.
type UserInfo struct {
	ID       string
	Username string
	Avatar   string
}

// ExchangeError is returned when the token endpoint rejects an
// authorization-code grant. Body carries the upstream response for diagnostics.
type ExchangeError struct {
	StatusCode int
	Body       string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed with status %d: %s", e.StatusCode, e.Body)
}

type OAuthProvider interface {
	// AuthCodeURL builds the upstream authorization URL for the entry page.
	AuthCodeURL(state string) string
	// ExchangeCode performs the authorization-code grant.
	ExchangeCode(ctx context.Context, code string) (*OAuthToken, error)
	// Refresh performs the refresh-token grant. It returns an empty string on
	// any non-success response; retry policy belongs to the caller.
	Refresh(ctx context.Context, refreshToken string) string
	// Identify resolves the authenticated user's identity with their token.
	Identify(ctx context.Context, token *OAuthToken) (*UserInfo, error)
}
