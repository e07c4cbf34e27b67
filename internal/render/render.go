package render

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var globalVars fiber.Map

func InitValues(data fiber.Map) {
	globalVars = data
}

func NewHtmlEngine(templateDir string) fiber.Views {
	if templateDir != "" {
		return html.NewFileSystem(http.Dir(templateDir), ".html")
	}
	renderFS, _ := fs.Sub(templateFS, "templates")
	return html.NewFileSystem(http.FS(renderFS), ".html")
}

func RenderHome(ctx *fiber.Ctx, data HomePageData) error {
	return ctx.Render("home", fiber.Map{
		"siteName":     globalVars["siteName"],
		"authorizeURL": data.AuthorizeURL,
	})
}

func RenderAuthorized(ctx *fiber.Ctx, data AuthorizedPageData) error {
	return ctx.Render("authorized", fiber.Map{
		"siteName": globalVars["siteName"],
		"username": data.Username,
	})
}

func RenderBadRequestError(ctx *fiber.Ctx, message string) error {
	return ctx.Status(fiber.StatusBadRequest).Render("error", fiber.Map{
		"siteName": globalVars["siteName"],
		"message":  message,
	})
}

func RenderInternalServerError(ctx *fiber.Ctx, message string) error {
	return ctx.Status(fiber.StatusInternalServerError).Render("error", fiber.Map{
		"siteName": globalVars["siteName"],
		"message":  message,
	})
}
