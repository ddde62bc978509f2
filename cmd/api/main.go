package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"taskBoard/internal/app"
	"taskBoard/internal/config"
	"taskBoard/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg).Init(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer a.Shutdown()

	if err := a.Run(ctx); err != nil {
		logger.Error("Server: Ошибка работы", err)
		a.Shutdown()
		os.Exit(1)
	}
}
