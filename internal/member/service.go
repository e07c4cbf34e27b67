// Package member implements the bulk membership pass over the stored token
// pairs and the periodic token refresh task.
package member

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/khanghh/guildgate/model"
)

type UserStore interface {
	All(ctx context.Context) ([]*model.AuthorizedUser, error)
	UpdateAccessToken(ctx context.Context, userID string, accessToken string) error
}

type GuildClient interface {
	CheckGuildAccess(ctx context.Context, guildID string) error
	AddGuildMember(ctx context.Context, guildID string, userID string, accessToken string) error
}

type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) string
}

// Report aggregates the outcome of one full membership pass.
type Report struct {
	Added  int
	Failed int
}

type Service struct {
	users       UserStore
	guilds      GuildClient
	refresher   TokenRefresher
	addInterval time.Duration
}

// JoinAll attempts to add every stored user to the guild. Each user gets one
// add attempt and, on failure, one refresh-and-retry; further failures are
// only counted. Attempts are paced by addInterval to stay under upstream rate
// limits. A storage outage degrades to ErrNoAuthorizedUsers.
func (s *Service) JoinAll(ctx context.Context, guildID string) (Report, error) {
	if _, err := strconv.ParseUint(guildID, 10, 64); err != nil {
		return Report{}, ErrInvalidGuildID
	}
	if err := s.guilds.CheckGuildAccess(ctx, guildID); err != nil {
		return Report{}, err
	}

	users, err := s.users.All(ctx)
	if err != nil {
		slog.Error("Could not list authorized users", "error", err)
		users = nil
	}
	if len(users) == 0 {
		return Report{}, ErrNoAuthorizedUsers
	}

	var report Report
	for _, user := range users {
		if s.addUser(ctx, guildID, user) {
			report.Added++
		} else {
			report.Failed++
		}
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		case <-time.After(s.addInterval):
		}
	}
	slog.Info("Membership pass completed", "guild", guildID, "added", report.Added, "failed", report.Failed)
	return report, nil
}

func (s *Service) addUser(ctx context.Context, guildID string, user *model.AuthorizedUser) bool {
	err := s.guilds.AddGuildMember(ctx, guildID, user.UserID, user.AccessToken)
	if err == nil {
		return true
	}
	slog.Debug("Member add failed, refreshing token", "user", user.UserID, "error", err)

	accessToken := s.refresher.Refresh(ctx, user.RefreshToken)
	if accessToken == "" {
		return false
	}
	if err := s.guilds.AddGuildMember(ctx, guildID, user.UserID, accessToken); err != nil {
		slog.Debug("Member add retry failed", "user", user.UserID, "error", err)
		return false
	}
	if err := s.users.UpdateAccessToken(ctx, user.UserID, accessToken); err != nil {
		slog.Error("Could not persist refreshed access token", "user", user.UserID, "error", err)
	}
	return true
}

func NewService(users UserStore, guilds GuildClient, refresher TokenRefresher, addInterval time.Duration) *Service {
	return &Service{
		users:       users,
		guilds:      guilds,
		refresher:   refresher,
		addInterval: addInterval,
	}
}
