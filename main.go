package main

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/memory/v2"
	fredis "github.com/gofiber/storage/redis/v3"
	"github.com/khanghh/guildgate/config"
	"github.com/khanghh/guildgate/internal/discord"
	"github.com/khanghh/guildgate/internal/handlers"
	"github.com/khanghh/guildgate/internal/member"
	"github.com/khanghh/guildgate/internal/middlewares"
	"github.com/khanghh/guildgate/internal/oauth"
	"github.com/khanghh/guildgate/internal/render"
	"github.com/khanghh/guildgate/internal/repository"
	"github.com/khanghh/guildgate/internal/store"
	"github.com/khanghh/guildgate/model"
	"github.com/khanghh/guildgate/params"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	app       *cli.App
	gitCommit string
	gitDate   string
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "YAML config file",
		Value: "config.yaml",
	}
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable debug logging",
	}
)

func init() {
	app = cli.NewApp()
	app.EnableBashCompletion = true
	app.Usage = "Discord guild membership service"
	app.Flags = []cli.Flag{
		configFileFlag,
		debugFlag,
	}
	app.Commands = []*cli.Command{
		{
			Name: "version",
			Action: func(ctx *cli.Context) error {
				fmt.Println(params.VersionWithCommit(gitCommit, gitDate))
				return nil
			},
		},
	}
	app.Action = run
}

func initLogger(debug bool) {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

func initDatabase(cfg config.PostgresConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.ConnStr), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Second)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}
	if err := db.AutoMigrate(model.Models...); err != nil {
		return nil, err
	}
	return db, nil
}

func initStateStorage(redisURL string) fiber.Storage {
	if redisURL != "" {
		return fredis.New(fredis.Config{URL: redisURL})
	}
	return memory.New(memory.Config{GCInterval: 10 * time.Second})
}

func run(ctx *cli.Context) error {
	cfg, err := config.LoadConfig(ctx.String(configFileFlag.Name))
	if err != nil {
		slog.Error("Could not load config file.", "error", err)
		return err
	}
	initLogger(cfg.Debug || ctx.IsSet(debugFlag.Name))

	publicKey, err := hex.DecodeString(cfg.Discord.InteractionsPublicKey)
	if err != nil || len(publicKey) != ed25519.PublicKeySize {
		return fmt.Errorf("invalid interactions public key")
	}

	db, err := initDatabase(cfg.Postgres)
	if err != nil {
		slog.Error("Could not initialize database.", "error", err)
		return err
	}

	userRepo := repository.NewUserRepository(db)
	oauthProvider := oauth.NewDiscordOAuthProvider(cfg.Discord.ClientID, cfg.Discord.ClientSecret, cfg.Discord.RedirectURL, cfg.RequestTimeout)
	botClient := discord.NewClient(cfg.Discord.BotToken, cfg.RequestTimeout)
	stateStore := store.NewStateStore(initStateStorage(cfg.RedisURL), cfg.StateTTL)
	operator := member.NewService(userRepo, botClient, oauthProvider, cfg.MemberAddInterval)
	refresher := member.NewRefresher(userRepo, oauthProvider, cfg.RefreshInterval)

	rootCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	render.InitValues(fiber.Map{"siteName": cfg.SiteName})
	router := fiber.New(fiber.Config{
		Views:        render.NewHtmlEngine(""),
		BodyLimit:    params.ServerBodyLimit,
		IdleTimeout:  params.ServerIdleTimeout,
		ReadTimeout:  params.ServerReadTimeout,
		WriteTimeout: params.ServerWriteTimeout,
		ErrorHandler: middlewares.ErrorHandler,
	})

	authHandler := handlers.NewAuthHandler(oauthProvider, userRepo, stateStore)
	interactionHandler := handlers.NewInteractionHandler(rootCtx, ed25519.PublicKey(publicKey), operator, botClient)

	router.Get("/", authHandler.GetHome)
	router.Get("/callback", authHandler.GetCallback)
	router.Post("/interactions", interactionHandler.PostInteraction)

	go refresher.Run(rootCtx)
	go func() {
		<-rootCtx.Done()
		if err := router.ShutdownWithTimeout(5 * time.Second); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting guildgate server", "address", cfg.ListenAddr)
	return router.Listen(cfg.ListenAddr)
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
