package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pdf2tsv/config"
	"pdf2tsv/internal/api/convert"
	"pdf2tsv/internal/api/healthcheck"
	"pdf2tsv/internal/api/ingest"
	"pdf2tsv/internal/api/retriever"
	"pdf2tsv/internal/api/upload"
	coreingest "pdf2tsv/internal/core/ingest"
	"pdf2tsv/internal/database"
	"pdf2tsv/internal/middleware"
	"pdf2tsv/pkg/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the yaml config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to load .env: %v", err)
	}
	if err := config.Init(*configPath); err != nil {
		logger.Fatal(err, "failed to load config")
	}
	if err := logger.SetLevel(string(config.Cfg.LogLevel)); err != nil {
		logger.Warn("invalid log level %q: %v", config.Cfg.LogLevel, err)
	}

	if err := database.Migrate(); err != nil {
		logger.Error(err, "database migration failed; continuing without schema check")
	}

	// Milvus may take tens of seconds to boot
	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if cli, err := coreingest.ConnectMilvus(startCtx, 5, 5*time.Second, 2*time.Second); err != nil {
		logger.Error(err, "milvus connect error")
	} else {
		cli.Close()
		logger.Info("milvus ok")
	}
	cancel()

	app := fiber.New(fiber.Config{
		AppName:   config.Cfg.Server.AppName,
		BodyLimit: config.Cfg.Server.BodyLimit,
	})
	middleware.Register(app)

	// routes
	healthcheck.RegisterRoutes(app)
	convert.RegisterRoutes(app)
	upload.RegisterRoutes(app)
	ingest.RegisterRoutes(app)
	retriever.RegisterRoutes(app)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logger.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error(err, "shutdown error")
		}
	}()

	addr := fmt.Sprintf(":%d", config.Cfg.Server.Port)
	if err := app.Listen(addr); err != nil {
		logger.Error(err, "server error")
	}
}
