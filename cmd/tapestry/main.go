package main

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tapestry-labs/tapestry/internal/capture"
	"github.com/tapestry-labs/tapestry/internal/chapters"
	"github.com/tapestry-labs/tapestry/internal/config"
	"github.com/tapestry-labs/tapestry/internal/httpapi"
	"github.com/tapestry-labs/tapestry/internal/hub"
	"github.com/tapestry-labs/tapestry/internal/library"
	"github.com/tapestry-labs/tapestry/internal/observability"
	"github.com/tapestry-labs/tapestry/internal/prompts"
	"github.com/tapestry-labs/tapestry/internal/scribe"
	"github.com/tapestry-labs/tapestry/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	st, err := store.NewStore(ctx, cfg.DatabaseURL, cfg.DataDir)
	if err != nil {
		log.Fatalf("store init failed: %v", err)
	}
	defer st.Close()

	lib := library.New(st, metrics)
	lib.Hydrate(ctx)
	log.Printf("library hydrated: %d memories", lib.MemoryCount())

	sc := scribe.New(scribe.Config{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
	}, metrics)
	if !sc.Configured() {
		log.Printf("scribe unconfigured: generation uses fixed fallback passages")
	}

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	deck := prompts.NewDeck(rand.New(rand.NewSource(seed)))

	sessions := capture.NewManager(deck, lib, metrics, cfg.CaptureInactivityTimeout)
	sessions.SetExpireHook(func(s *capture.Session) {
		log.Printf("capture session %s expired in state %s", s.ID, s.State)
		metrics.ObserveCaptureEvent("expired")
	})

	view := hub.NewView(lib, cfg.PageSize)
	assembly := chapters.New(lib, sc)

	api := httpapi.New(cfg, sessions, view, assembly, lib, sc, metrics)
	lib.SetNotify(api.Events().Publish)

	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	sessions.StartJanitor(runCtx, time.Minute)

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	// Let background introduction generation finish writing to the store.
	assembly.WaitIdle()

	log.Printf("shutdown complete")
}
