// Command main is the entry point for the Postboard backend server.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postboard/internal/config"
	"postboard/internal/observability"
	"postboard/internal/server"
)

// @title Postboard API
// @version 1.0
// @description Anonymous community blogging API with posts, comments, engagement and moderation
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@postboard.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:5000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the admin JWT.

const shutdownGrace = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("postboard: %v", err)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	stopTracing, err := observability.InitTracing(observability.FromConfig(cfg))
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-sigCtx.Done()
		log.Println("signal received, draining connections")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
		if err := stopTracing(ctx); err != nil {
			log.Printf("tracer shutdown: %v", err)
		}
	}()

	if err := srv.Start(); err != nil {
		return err
	}
	<-stopped
	return nil
}
