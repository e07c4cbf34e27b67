package handlers

import (
	"context"

	"github.com/khanghh/guildgate/internal/member"
	"github.com/khanghh/guildgate/internal/oauth"
	"github.com/khanghh/guildgate/model"
)

type UserStore interface {
	Upsert(ctx context.Context, user *model.AuthorizedUser) error
}

type OAuthProvider interface {
	AuthCodeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*oauth.OAuthToken, error)
	Identify(ctx context.Context, token *oauth.OAuthToken) (*oauth.UserInfo, error)
}

type MemberOperator interface {
	JoinAll(ctx context.Context, guildID string) (member.Report, error)
}

type InteractionFollowup interface {
	FollowupMessage(ctx context.Context, applicationID string, interactionToken string, content string, ephemeral bool) error
}
