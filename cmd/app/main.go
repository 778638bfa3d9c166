package main

import (
	"context"
	"fmt"
	"os"

	"fyne.io/fyne/v2/app"
	"github.com/ryanhaynes01/Individual-Project/internal/bootstrap"
	"github.com/ryanhaynes01/Individual-Project/internal/infra/config"
	"github.com/ryanhaynes01/Individual-Project/internal/ui"
	"github.com/ryanhaynes01/Individual-Project/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	fyneApp := app.NewWithID("io.github.ryanhaynes01.v2f")
	window := fyneApp.NewWindow(ui.WindowTitle)

	local, err := bootstrap.NewLocal(context.Background(), cfg, ui.NewDialogNotifier(window), log)
	if err != nil {
		log.Fatal("startup failed", zap.Error(err))
	}
	defer local.Close()

	log.Info("starting desktop app",
		zap.String("source_dir", local.Sources.SourceDir()),
		zap.String("output_dir", local.Paths.Resolve(cfg.OutputDir)),
	)

	ui.NewApp(fyneApp, window, ui.Deps{
		Sources:    local.Sources,
		Converter:  local.Converter,
		OutputRoot: local.Paths.Resolve(cfg.OutputDir),
		Logger:     log,
	}).ShowAndRun()

	log.Info("desktop app stopped")
}
