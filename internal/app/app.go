package app

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"campusconnect/internal/sweep"
	"campusconnect/pkg/api"
	"campusconnect/pkg/api/handlers"
	"campusconnect/pkg/assistant"
	"campusconnect/pkg/banner"
	"campusconnect/pkg/config"
	"campusconnect/pkg/convo"
	"campusconnect/pkg/identity"
	"campusconnect/pkg/logger"
	"campusconnect/pkg/stories"
	"campusconnect/pkg/store"
	"campusconnect/pkg/telemetry"
	"campusconnect/pkg/undo"
)

// App encapsulates the server components and lifecycle.
type App struct {
	eff     config.EffectiveConfigResult
	version string

	convo   *convo.Store
	stories *stories.Store
	undo    *undo.Controller
	roster  *identity.Roster

	srv *http.Server
}

// New initializes stores and controllers. The persistence mirror is
// optional: when the DB cannot be opened the core keeps working in
// memory-only mode instead of refusing to start.
func New(eff config.EffectiveConfigResult, version string) (*App, error) {
	_ = godotenv.Load(".env")
	cfg := eff.Config

	var convoPersister convo.Persister
	var storyPersister stories.Persister
	if err := store.Open(eff.DBPath); err != nil {
		logger.Error("store_open_failed_memory_only", "path", eff.DBPath, "error", err)
	} else {
		convoPersister = store.Conversations{}
		storyPersister = store.Stories{}
		telemetry.RegisterDBSize(store.DiskUsage)
	}

	ctrl := undo.New(cfg.Undo.Grace.Duration())

	var replier convo.Replier
	if key := os.Getenv(cfg.Assistant.APIKeyEnv); key != "" {
		replier = assistant.NewOpenAI(key, cfg.Assistant.Model)
		logger.Info("assistant_replier", "mode", "openai", "model", cfg.Assistant.Model)
	} else {
		replier = assistant.NewScripted()
		logger.Info("assistant_replier", "mode", "scripted")
	}

	cs, err := convo.New(convo.Options{
		Persister:    convoPersister,
		Replier:      replier,
		Suppressor:   ctrl,
		AssistantID:  cfg.Assistant.ID,
		ReplyRPS:     cfg.Assistant.RPS,
		ReplyBurst:   cfg.Assistant.Burst,
		ReplyTimeout: cfg.Assistant.Timeout.Duration(),
	})
	if err != nil {
		return nil, err
	}
	ss, err := stories.New(stories.Options{
		Persister:  storyPersister,
		Suppressor: ctrl,
	})
	if err != nil {
		return nil, err
	}

	a := &App{
		eff:     eff,
		version: version,
		convo:   cs,
		stories: ss,
		undo:    ctrl,
		roster:  identity.NewRoster(cfg.Assistant.ID),
	}
	return a, nil
}

// Run starts the sweeper and the HTTP server, and blocks until ctx is
// canceled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	banner.Print(a.eff.Addr, a.eff.DBPath, a.eff.Source, a.version)

	cancelSweep, err := sweep.Start(ctx, a.eff.Config.Sweep, a.stories)
	if err != nil {
		return err
	}
	defer cancelSweep()

	root := http.NewServeMux()
	root.Handle("/metrics", promhttp.Handler())
	root.Handle("/docs/", httpSwagger.WrapHandler)
	root.Handle("/", api.Handler(handlers.Deps{
		Convo:     a.convo,
		Stories:   a.stories,
		Undo:      a.undo,
		Roster:    a.roster,
		LongPress: a.eff.Config.Undo.LongPress.Duration(),
	}))

	a.srv = &http.Server{Addr: a.eff.Addr, Handler: root}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http_listening", "addr", a.eff.Addr)
		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.stop()
		return nil
	case err := <-errCh:
		a.stop()
		return err
	}
}

// stop tears the view down: pending timers are cancelled so no callback
// mutates state after the owning context is gone.
func (a *App) stop() {
	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if a.srv != nil {
		_ = a.srv.Shutdown(shCtx)
	}
	a.undo.Close()
	if err := store.Close(); err != nil {
		logger.Error("store_close_failed", "error", err)
	}
}
