package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/viralforge/order-gateway/internal/app/bootstrap"
)

func main() {
	configPath := flag.String("config", "configs/default.yaml", "path to the configuration file")
	flag.Parse()

	ctx := context.Background()
	runtime, err := bootstrap.NewRuntime(ctx, *configPath)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}

	if err := runtime.Run(ctx); err != nil {
		slog.Error("runtime exited with error", "error", err)
		os.Exit(1)
	}
}
