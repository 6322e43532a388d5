package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Belphemur/CaptionExport/internal/cli"
	"github.com/Belphemur/CaptionExport/internal/config"
)

func main() {
	logger := config.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.RunServer(ctx, config.GetConfig()); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}
