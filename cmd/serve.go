package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kasuboski/catalogz/pkg/logger"
	"github.com/kasuboski/catalogz/pkg/manager"
	"github.com/kasuboski/catalogz/server"
	"go.uber.org/zap"

	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the catalog server",
	Long:  `start the catalog api server and the scheduled reconciliation jobs`,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logger.WithCtx(ctx, log)

		cfg, m := setupWithMetrics(ctx)

		scheduler := manager.NewScheduler(cfg.Manager, m.Executors())
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := scheduler.Run(ctx); err != nil {
				log.Error("scheduler stopped", zap.Error(err))
			}
		}()

		srv := server.New(log, m, server.WithJobs(scheduler))
		err := srv.Serve(ctx, cfg.Server.Port)
		if err != nil {
			log.Error("server stopped", zap.Error(err))
		}

		stop()
		<-done
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
