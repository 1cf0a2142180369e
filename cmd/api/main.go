package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"agora/internal/app/bootstrap"
)

//go:generate swag init -g main.go -d .,../../contexts/governance/voting-core/adapters/http,../../contexts/governance/voting-core/transport/http -o ../../internal/platform/httpserver/docs

// @title Agora Voting API
// @version 1.0
// @description Anonymous, verifiable article voting. Votes are client-side commitments; the server never sees a passphrase.
// @BasePath /

// API process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring (ports + adapters + use cases).
// 3) Start HTTP server.
func main() {
	log.Println("agora api starting")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildAPI(ctx)
	if err != nil {
		log.Fatalf("bootstrap api failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("api shutdown close failed: %v", err)
		}
	}()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("agora api stopped with error: %v", err)
	}
}
