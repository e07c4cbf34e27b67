package member

import (
	"context"
	"log/slog"
	"time"
)

// Refresher proactively refreshes every stored refresh token once per
// interval so access tokens stay usable between membership passes.
type Refresher struct {
	users     UserStore
	exchanger TokenRefresher
	interval  time.Duration
}

// Run drives refresh cycles until ctx is cancelled. Errors inside a cycle are
// logged and never terminate the loop.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refreshAll(ctx)
		}
	}
}

func (r *Refresher) refreshAll(ctx context.Context) {
	users, err := r.users.All(ctx)
	if err != nil {
		slog.Error("Could not list authorized users", "error", err)
		return
	}
	refreshed := 0
	for _, user := range users {
		if user.RefreshToken == "" {
			continue
		}
		accessToken := r.exchanger.Refresh(ctx, user.RefreshToken)
		if accessToken == "" {
			slog.Warn("Token refresh failed", "user", user.UserID)
			continue
		}
		if err := r.users.UpdateAccessToken(ctx, user.UserID, accessToken); err != nil {
			slog.Error("Could not persist refreshed access token", "user", user.UserID, "error", err)
			continue
		}
		refreshed++
	}
	slog.Info("Token refresh cycle completed", "total", len(users), "refreshed", refreshed)
}

func NewRefresher(users UserStore, exchanger TokenRefresher, interval time.Duration) *Refresher {
	return &Refresher{
		users:     users,
		exchanger: exchanger,
		interval:  interval,
	}
}
