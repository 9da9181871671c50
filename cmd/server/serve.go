package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/printstudio/internal/draft"
	"github.com/printstudio/internal/handler"
	"github.com/printstudio/internal/logger"
	"github.com/printstudio/internal/metrics"
	"github.com/printstudio/internal/router"
	"github.com/printstudio/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.GinMode)

	a, err := bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterCollectors(reg)

	sweeper := draft.NewSweeper(a.drafts, cfg.DraftTTL)
	if err := sweeper.Start(cfg.DraftSweepSchedule); err != nil {
		return err
	}
	defer sweeper.Stop()

	sync := service.NewSyncService(a.drafts, a.content, a.content)
	media := service.NewMediaService(cfg.UploadDir, cfg.UploadURLPath)
	api := handler.NewAPI(a.content, sync, a.auth, media)

	// 设置并运行 Gin 服务器
	r, err := router.SetupRouter(cfg, api, reg)
	if err != nil {
		return err
	}
	srv := &http.Server{Addr: cfg.ListenAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("[server] listening on %s", cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Infof("[server] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
