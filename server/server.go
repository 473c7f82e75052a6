package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/DJCodeOne/freshwax-sub002/cache"
	"github.com/DJCodeOne/freshwax-sub002/config"
	"github.com/DJCodeOne/freshwax-sub002/core/artwork"
	"github.com/DJCodeOne/freshwax-sub002/core/audio"
	"github.com/DJCodeOne/freshwax-sub002/core/catalog"
	"github.com/DJCodeOne/freshwax-sub002/core/notify"
	"github.com/DJCodeOne/freshwax-sub002/core/pipeline"
	"github.com/DJCodeOne/freshwax-sub002/core/submission"
	"github.com/DJCodeOne/freshwax-sub002/db"
	"github.com/DJCodeOne/freshwax-sub002/logger"
	"github.com/DJCodeOne/freshwax-sub002/repository"
	"github.com/DJCodeOne/freshwax-sub002/storage"
)

// BuildOrchestrator wires every pipeline component from configuration. Shared
// between the HTTP server and the one-shot CLI command.
func BuildOrchestrator(cfg *config.Config) (*pipeline.Orchestrator, *storage.Store, error) {
	store, err := storage.NewStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	if err := db.ConnectGormDB(cfg); err != nil {
		return nil, nil, err
	}
	if err := db.MigrateCatalog(); err != nil {
		return nil, nil, err
	}

	// Redis backs the per-submission lease only; without it, processing still
	// works but concurrent runs of the same submission are not fenced.
	if err := db.ConnectRedis(cfg); err != nil {
		logger.Warn("Redis unavailable, submission leases disabled", logger.ErrorField(err))
	}
	locker := cache.NewSubmissionLocker(db.RedisClient)

	parser := submission.NewParser(store)
	artworkProc := artwork.NewProcessor(store, cfg.PlaceholderArtURL)
	trackProc := audio.NewProcessor(store)
	writer := catalog.NewWriter(repository.NewGormReleaseRepository(db.GormDB), catalog.StandardDefaults())
	notifier := notify.NewService(cfg)

	orchestrator := pipeline.NewOrchestrator(
		parser,
		artworkProc,
		trackProc,
		writer,
		notifier,
		store,
		locker,
		func() *audio.Engine { return audio.NewEngine(cfg.FFmpegPath) },
	)
	return orchestrator, store, nil
}

// Start initializes and starts the HTTP server, blocking until shutdown.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.InfoLevel,
		OutputPath: "logs/freshwax.log",
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})

	orchestrator, store, err := BuildOrchestrator(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize pipeline", logger.ErrorField(err))
	}
	defer db.CloseGormDB()
	defer db.CloseRedis()

	apiHandler := NewAPIHandler(orchestrator, store)

	router := mux.NewRouter()

	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	router.HandleFunc("/health", apiHandler.HealthHandler).Methods(http.MethodGet)
	router.HandleFunc("/submissions", apiHandler.ListSubmissionsHandler).Methods(http.MethodGet)
	router.HandleFunc("/process", apiHandler.ProcessHandler).Methods(http.MethodPost)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
		// Transcoding a full release takes a while; the write timeout bounds
		// the synchronous /process call.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("Server stopped")
}
