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
	"github.com/spf13/pflag"

	"github.com/cultivated-hq/pulse-service/internal/handlers"
	"github.com/cultivated-hq/pulse-service/internal/services"
	"github.com/cultivated-hq/pulse-service/internal/utils"
)

type ServeFlags struct {
	ListenAddr      string
	NoScheduler     bool
	ShutdownTimeout time.Duration
}

func NewServeFlags() *ServeFlags {
	return &ServeFlags{ShutdownTimeout: 15 * time.Second}
}

func (f *ServeFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.ListenAddr, "listen", f.ListenAddr, "Address to listen on; defaults to :$PORT")
	fs.BoolVar(&f.NoScheduler, "no-scheduler", f.NoScheduler, "Do not process expired sessions in the background")
	fs.DurationVar(&f.ShutdownTimeout, "shutdown-timeout", f.ShutdownTimeout, "Time allowed for in-flight requests on shutdown")
}

func NewServeCommand() *cobra.Command {
	f := NewServeFlags()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the expiry scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, f)
		},
	}

	f.BindFlags(cmd.Flags())
	return cmd
}

func runServe(ctx context.Context, f *ServeFlags) error {
	app, err := newApplication(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	cfg := app.cfg
	logger := app.logger

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authenticator, err := cfg.Auth.CreateAuthenticator(logger)
	if err != nil {
		return err
	}

	hm := handlers.NewHandlerManager(app.services, authenticator, utils.NewSlogLogger(logger), handlers.RouteOptions{
		SubmitRateLimit: cfg.SubmitRateLimit,
	})

	addr := f.ListenAddr
	if addr == "" {
		addr = ":" + cfg.Port
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           handlers.NewRouter(hm),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var schedulerDone <-chan struct{}
	if cfg.Scheduler.Enabled && !f.NoScheduler {
		scheduler := services.NewScheduler(app.services.Report(), logger, services.SchedulerConfig{
			Interval:     cfg.Scheduler.Interval,
			BatchLimit:   cfg.Scheduler.BatchLimit,
			ArchiveAfter: cfg.Scheduler.ArchiveAfter,
		})
		schedulerDone = scheduler.Start(ctx)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), f.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	if schedulerDone != nil {
		<-schedulerDone
	}

	return nil
}
