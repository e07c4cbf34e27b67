package handlers

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/guildgate/internal/discord"
	"github.com/khanghh/guildgate/internal/member"
)

const (
	joinCommandName     = "join"
	serverIdOptionName  = "server_id"
	headerSignature     = "X-Signature-Ed25519"
	headerSignTimestamp = "X-Signature-Timestamp"
)

// InteractionHandler serves Discord's interactions webhook. Command work runs
// detached from the request on rootCtx, so a long membership pass never
// blocks the webhook and stops with the process.
type InteractionHandler struct {
	rootCtx   context.Context
	publicKey ed25519.PublicKey
	operator  MemberOperator
	followup  InteractionFollowup
}

func NewInteractionHandler(rootCtx context.Context, publicKey ed25519.PublicKey, operator MemberOperator, followup InteractionFollowup) *InteractionHandler {
	return &InteractionHandler{
		rootCtx:   rootCtx,
		publicKey: publicKey,
		operator:  operator,
		followup:  followup,
	}
}

func verifySignature(publicKey ed25519.PublicKey, signatureHex string, timestamp string, body []byte) bool {
	signature, err := hex.DecodeString(signatureHex)
	if err != nil || len(signature) != ed25519.SignatureSize {
		return false
	}
	msg := make([]byte, 0, len(timestamp)+len(body))
	msg = append(msg, timestamp...)
	msg = append(msg, body...)
	return ed25519.Verify(publicKey, msg, signature)
}

func (h *InteractionHandler) PostInteraction(ctx *fiber.Ctx) error {
	body := ctx.Body()
	signature := ctx.Get(headerSignature)
	timestamp := ctx.Get(headerSignTimestamp)
	if !verifySignature(h.publicKey, signature, timestamp, body) {
		return ctx.Status(fiber.StatusUnauthorized).SendString("invalid request signature")
	}

	var interaction discord.Interaction
	if err := json.Unmarshal(body, &interaction); err != nil {
		return ctx.Status(fiber.StatusBadRequest).SendString("malformed interaction payload")
	}
	switch interaction.Type {
	case discord.InteractionTypePing:
		return ctx.JSON(discord.InteractionResponse{Type: discord.ResponseTypePong})
	case discord.InteractionTypeCommand:
		return h.handleCommand(ctx, &interaction)
	default:
		return ctx.Status(fiber.StatusBadRequest).SendString("unsupported interaction type")
	}
}

func (h *InteractionHandler) handleCommand(ctx *fiber.Ctx, interaction *discord.Interaction) error {
	if interaction.Data.Name != joinCommandName {
		return ctx.Status(fiber.StatusBadRequest).SendString("unknown command")
	}
	guildID := interaction.Data.OptionValue(serverIdOptionName)
	go h.runJoin(interaction.ApplicationID, interaction.Token, guildID)
	return ctx.JSON(discord.InteractionResponse{
		Type: discord.ResponseTypeDeferredMessage,
		Data: &discord.InteractionCallbackData{Flags: discord.MessageFlagEphemeral},
	})
}

func (h *InteractionHandler) runJoin(applicationID string, interactionToken string, guildID string) {
	report, err := h.operator.JoinAll(h.rootCtx, guildID)
	content := joinResultMessage(report, err)
	if err := h.followup.FollowupMessage(h.rootCtx, applicationID, interactionToken, content, true); err != nil {
		slog.Error("Could not send interaction followup", "error", err)
	}
}

func joinResultMessage(report member.Report, err error) string {
	switch {
	case err == nil:
		return fmt.Sprintf("Added: %d | Failed: %d", report.Added, report.Failed)
	case errors.Is(err, member.ErrInvalidGuildID):
		return "Invalid server ID."
	case errors.Is(err, discord.ErrGuildNotFound), errors.Is(err, discord.ErrMissingPermission):
		return "Bot not in server or missing perms."
	case errors.Is(err, member.ErrNoAuthorizedUsers):
		return "No authorized users."
	default:
		return "Something went wrong. Try again later."
	}
}
