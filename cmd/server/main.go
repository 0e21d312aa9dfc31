package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/daybook-app/daybook/internal/config"
	"github.com/daybook-app/daybook/internal/database"
	"github.com/daybook-app/daybook/internal/handler"
	"github.com/daybook-app/daybook/internal/queue"
	"github.com/daybook-app/daybook/internal/repository"
	"github.com/daybook-app/daybook/internal/router"
	"github.com/daybook-app/daybook/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("database open failed", zap.Error(err))
	}
	if err := database.EnsureSchema(db); err != nil {
		logger.Fatal("schema bootstrap failed", zap.Error(err))
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, shared-note cache disabled")
	}

	users := repository.NewUserRepo(db)
	tags := repository.NewTagRepo(db)
	todos := repository.NewTodoRepo(db, tags)
	notes := repository.NewNoteRepo(db, tags)

	renderCache := service.NewRenderCache(rdb)
	mailer := service.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	publisher := queue.NewPublisher(cfg.AMQPURL, logger)

	// OTP mail delivery runs off the broker so request handling never
	// waits on SMTP.
	go queue.NewConsumer(cfg.AMQPURL, mailer, logger).Run()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	router.Register(e, router.Handlers{
		Auth:    handler.NewAuthHandler(cfg, users, publisher, logger),
		Todos:   handler.NewTodoHandler(todos, logger),
		Notes:   handler.NewNoteHandler(cfg, notes, renderCache, logger),
		Search:  handler.NewSearchHandler(todos, notes),
		Export:  handler.NewExportHandler(todos, notes),
		Shared:  handler.NewSharedHandler(notes, renderCache, logger),
		Profile: handler.NewProfileHandler(cfg, users, logger),
	}, users)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
