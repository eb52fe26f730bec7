package main

import (
	"context"
	"log"

	"github.com/opsconsole/bluegreen-manager/internal/config"
)

func main() {
	cfg := config.Load()
	if err := cfg.SetupLogger(); err != nil {
		log.Fatalf("failed to set up logger: %v", err)
	}

	srv, err := cfg.NewServer(context.Background())
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}

	if err := srv.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
