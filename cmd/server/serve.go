package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yukikurage/taskboard/internal/notify"
	"github.com/yukikurage/taskboard/internal/repository"
	"github.com/yukikurage/taskboard/internal/server"
	"github.com/yukikurage/taskboard/internal/services"
	"github.com/yukikurage/taskboard/internal/worker"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reminder worker",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, *configDir)
		},
	}
}

func serve(ctx context.Context, configDir string) error {
	cfg, log, err := setup(configDir)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	gin.SetMode(cfg.GinMode)

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	sinks := []notify.Sink{notify.NewLogSink(log)}
	if b.redis != nil && cfg.NotifyChannel != "" {
		sinks = append(sinks, notify.NewRedisSink(b.redis, cfg.NotifyChannel))
	}
	dispatcher := notify.NewDispatcher(log, sinks...)
	defer dispatcher.Wait()

	roster := services.NewRoster(repository.NewUserRepository(b.store), repository.NewTeamRepository(b.store), log)
	if err := roster.Load(ctx); err != nil {
		return err
	}
	taskService := services.NewTaskService(repository.NewTaskRepository(b.store), roster, dispatcher, log)
	if err := taskService.Load(ctx); err != nil {
		return err
	}

	var extractor services.Extractor = services.HeuristicExtractor{}
	if cfg.OpenAIAPIKey != "" {
		extractor = services.NewOpenAIExtractor(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}

	svc := server.Services{
		Auth:      services.NewAuthService(roster, taskService),
		Teams:     services.NewTeamService(roster, taskService),
		Tasks:     taskService,
		Board:     services.NewBoardService(taskService, roster, repository.NewPreferenceRepository(b.store), log),
		Converter: services.NewMessageConverter(extractor, taskService, roster, log),
	}

	sessionStore, err := newSessionStore(cfg)
	if err != nil {
		return err
	}

	// The worker notifies through the dispatcher, so it has to be joined
	// before dispatcher.Wait runs.
	workerCtx, stopWorker := context.WithCancel(ctx)
	reminders := worker.NewReminderWorker(taskService, dispatcher, log, cfg.ReminderInterval)
	go reminders.Start(workerCtx)
	defer func() {
		stopWorker()
		<-reminders.Done()
	}()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.NewRouter(log, sessionStore, svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
