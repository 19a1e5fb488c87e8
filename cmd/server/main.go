package main

import (
	"log/slog"
	"os"
	"strings"

	"enrollment-api/internal/app"
	"enrollment-api/internal/logger"
)

func main() {
	production := strings.EqualFold(os.Getenv("APP_ENV"), "production")
	logger.Setup(production, slog.LevelInfo)

	application, err := app.New()
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}
