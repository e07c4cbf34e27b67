package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/guildgate/internal/render"
	"github.com/khanghh/guildgate/internal/store"
	"github.com/khanghh/guildgate/model"
)

type AuthHandler struct {
	provider OAuthProvider
	users    UserStore
	states   *store.StateStore
}

func NewAuthHandler(provider OAuthProvider, users UserStore, states *store.StateStore) *AuthHandler {
	return &AuthHandler{
		provider: provider,
		users:    users,
		states:   states,
	}
}

func (h *AuthHandler) GetHome(ctx *fiber.Ctx) error {
	state, err := h.states.NewState()
	if err != nil {
		return err
	}
	return render.RenderHome(ctx, render.HomePageData{
		AuthorizeURL: h.provider.AuthCodeURL(state),
	})
}

// GetCallback completes the authorization-code flow: exchange the code,
// resolve the user's identity, and upsert the token pair. Exactly one store
// mutation happens per successful call, none on any failure path.
func (h *AuthHandler) GetCallback(ctx *fiber.Ctx) error {
	code := ctx.Query("code")
	if code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "No authorization code provided.")
	}
	if state := ctx.Query("state"); state != "" && !h.states.Consume(state) {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid or expired state.")
	}

	token, err := h.provider.ExchangeCode(ctx.Context(), code)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Token exchange failed.")
	}
	userInfo, err := h.provider.Identify(ctx.Context(), token)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not resolve user identity.")
	}

	user := model.AuthorizedUser{
		UserID:       userInfo.ID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if err := h.users.Upsert(ctx.Context(), &user); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not save authorization.")
	}
	return render.RenderAuthorized(ctx, render.AuthorizedPageData{Username: userInfo.Username})
}
