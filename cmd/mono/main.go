package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/vancomm/taskbingo-server/internal/app"
	"github.com/vancomm/taskbingo-server/internal/config"
)

func main() {
	envErr := godotenv.Load()
	logger := config.NewLogger()
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn("unable to load .env file", slog.Any("error", envErr))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := app.New(logger)
	if err := a.Start(ctx); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
