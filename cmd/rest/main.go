package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notesheet/internal/bootstrap"
	"notesheet/internal/config"
	"notesheet/internal/server"
	"notesheet/internal/tracer"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(cfg)
	if err != nil {
		log.Panicf("Unable to bootstrap container: %v", err)
	}
	defer container.Close()

	shutdownTracer := tracer.InitTracer(cfg.Tracing, container.Logger)
	defer func() { _ = shutdownTracer(context.Background()) }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Load the stored snapshot (migrating legacy data if needed)
	if _, err := container.NotebookService.Load(ctx); err != nil {
		log.Panicf("Unable to load notebooks: %v", err)
	}

	// 4. Start Background Services
	go container.WebSocketHub.Run(ctx)
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(ctx); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()
	container.EditorService.Start(ctx)

	if version := cfg.Offline.CacheVersion; version != "" {
		go func() {
			if _, err := container.OfflineLifecycle.Deploy(ctx, version); err != nil {
				container.Logger.Warn("Main", "Offline cache deploy failed", map[string]interface{}{
					"version": version,
					"error":   err.Error(),
				})
			}
		}()
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	select {
	case err := <-errCh:
		log.Printf("Server stopped: %v", err)
	case <-ctx.Done():
		log.Println("Shutting down...")
	}

	// 6. Flush pending edits before exit
	container.EditorService.Stop()
	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := container.EditorService.Save(saveCtx, nil); err != nil {
		log.Printf("Final save failed: %v", err)
	}
	if err := srv.Shutdown(saveCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
