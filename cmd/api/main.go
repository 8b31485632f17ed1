package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	adapterHTTP "github.com/comitanigiacomo/kanso-tracker/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-tracker/internal/bootstrap"
	"github.com/comitanigiacomo/kanso-tracker/internal/config"
	"github.com/comitanigiacomo/kanso-tracker/internal/logger"
)

func main() {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		// The logger is not configured yet.
		os.Stderr.WriteString("Critical: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		os.Stderr.WriteString("Critical: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	app, err := bootstrap.New(cfg, log, bootstrap.Options{})
	if err != nil {
		log.Fatal("failed to wire tracker", zap.Error(err))
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	if err := app.Start(startCtx); err != nil {
		cancelStart()
		log.Fatal("failed to start tracker", zap.Error(err))
	}
	cancelStart()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(app, startTime),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("kanso tracker listening", zap.String("addr", "http://localhost:"+cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("critical server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("stop signal received, shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced server shutdown", zap.Error(err))
	}
	if err := app.Shutdown(ctx); err != nil {
		log.Error("tracker shutdown incomplete", zap.Error(err))
	}

	log.Info("server stopped gracefully")
}

func newRouter(app *bootstrap.App, startTime time.Time) *gin.Engine {
	var flusher adapterHTTP.Flusher
	if app.Saver != nil {
		flusher = app.Saver
	}

	return adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:      adapterHTTP.NewAuthHandler(app.Auth),
		HabitHandler:     adapterHTTP.NewHabitHandler(app.Tracker),
		EntryHandler:     adapterHTTP.NewEntryHandler(app.Tracker),
		StatsHandler:     adapterHTTP.NewStatsHandler(app.Tracker),
		DataHandler:      adapterHTTP.NewDataHandler(app.Tracker),
		InstagramHandler: adapterHTTP.NewInstagramHandler(app.Instagram),
		NoteHandler:      adapterHTTP.NewNoteHandler(app.Notes),
		SyncHandler:      adapterHTTP.NewSyncHandler(app.Store, flusher),
		AuthService:      app.Auth,
		TokenService:     app.Tokens,
		SyncStore:        app.Store,
		DB:               app.DB,
		Redis:            app.Redis,
		Logger:           app.Logger,
		StartTime:        startTime,
	})
}
