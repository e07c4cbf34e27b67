package middlewares

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/guildgate/internal/render"
)

func ErrorHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Something went wrong."
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}
	slog.Error("Request failed", "path", ctx.Path(), "code", code, "error", err)
	switch code {
	case fiber.StatusBadRequest:
		return render.RenderBadRequestError(ctx, message)
	default:
		return render.RenderInternalServerError(ctx, message)
	}
}
