package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"bancho"
	"bancho/internal/config"
)

func buildLogger(disabled bool) *zap.SugaredLogger {
	if disabled {
		return zap.NewNop().Sugar()
	}
	logger, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

func main() {
	opts := parseFlags(os.Args[1:])
	if opts.configPath != "" {
		cfg := config.Default()
		if data, err := os.ReadFile(opts.configPath); err == nil {
			if json.Unmarshal(data, &cfg) != nil {
				cfg = config.Default()
			}
		}
		opts = opts.applyConfig(cfg)
	}

	log := buildLogger(opts.disableLogging)
	defer log.Sync()

	gameOpts := opts.toGameOptions()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	interrupted := false
	onInterrupt := func() bool {
		if interrupted {
			return true
		}
		select {
		case <-ctx.Done():
			interrupted = true
			return true
		default:
			return false
		}
	}

	game := bancho.NewGame(gameOpts, log)
	if err := game.Run(ctx, onInterrupt); err != nil {
		log.Errorw("exiting", "error", err)
		os.Exit(1)
	}
}
