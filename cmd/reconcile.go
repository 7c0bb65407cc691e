package cmd

import (
	"context"
	"strconv"

	"github.com/kasuboski/catalogz/pkg/logger"
	"github.com/kasuboski/catalogz/pkg/manager"
	"go.uber.org/zap"

	"github.com/spf13/cobra"
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile series with the upstream episode guide",
	Long:  `Reconcile the episodes of matched series with their upstream episode guide`,
}

var reconcileSeriesCmd = &cobra.Command{
	Use:   "series <id>",
	Short: "Reconcile one series",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()
		ctx := logger.WithCtx(context.Background(), log)

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			log.Fatal("invalid series id", zap.String("id", args[0]))
		}

		_, m := setup(ctx)

		report, err := m.ReconcileSeries(ctx, id)
		if err != nil {
			log.Fatal("failed to reconcile series", zap.Int64("series", id), zap.Error(err))
		}

		printReconcileReports([]manager.ReconcileReport{report})
	},
}

var reconcileAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Reconcile every matched series",
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()
		ctx := logger.WithCtx(context.Background(), log)

		_, m := setup(ctx)

		log.Info("Starting series reconciliation")

		reports, err := m.ReconcileAllSeries(ctx)
		if err != nil {
			log.Fatal("failed to reconcile series", zap.Error(err))
		}

		printReconcileReports(reports)
	},
}

func printReconcileReports(reports []manager.ReconcileReport) {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, []string{
			strconv.FormatInt(r.SeriesID, 10),
			itoa(r.Added),
			itoa(r.Updated),
			itoa(r.Renumbered),
			itoa(r.Overrides),
			itoa(r.Retired),
			itoa(r.Unchanged),
		})
	}

	printTable([]string{"Series", "Added", "Updated", "Renumbered", "Overrides", "Retired", "Unchanged"}, rows, 1, 2, 3, 4, 5, 6, 7)
}

func init() {
	reconcileCmd.AddCommand(reconcileSeriesCmd)
	reconcileCmd.AddCommand(reconcileAllCmd)
	rootCmd.AddCommand(reconcileCmd)
}
