package cmd

import (
	"context"
	"fmt"

	"github.com/kasuboski/catalogz/pkg/logger"
	"go.uber.org/zap"

	"github.com/spf13/cobra"
)

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "Manage duplicate episodes",
}

var duplicatesResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Collapse episodes that share a season and episode number",
	Long:  `Collapse live episodes of a series that share a season and episode number into one survivor, moving their recordings`,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()
		ctx := logger.WithCtx(context.Background(), log)

		_, m := setup(ctx)

		report, err := m.ResolveDuplicates(ctx)
		if err != nil {
			log.Fatal("failed to resolve duplicates", zap.Error(err))
		}

		printTable(
			[]string{"Groups", "Resolved", "Unresolved", "Failed", "Flagged", "Retired", "Relinked", "Writes"},
			[][]string{{
				itoa(report.Groups),
				itoa(report.Resolved),
				itoa(report.Unresolved),
				itoa(report.Failed),
				itoa(report.Flagged),
				itoa(report.Retired),
				itoa(report.Relinked),
				itoa(report.Writes),
			}},
			1, 2, 3, 4, 5, 6, 7, 8,
		)

		if len(report.UnresolvedGroups) == 0 {
			return
		}

		rows := make([][]string, 0, len(report.UnresolvedGroups))
		for _, g := range report.UnresolvedGroups {
			rows = append(rows, []string{
				fmt.Sprint(g.SeriesID),
				fmt.Sprintf("S%02dE%02d", g.SeasonNumber, g.EpisodeNumber),
			})
		}
		printTable([]string{"Series", "Unresolved Episode"}, rows, 1)
	},
}

func init() {
	duplicatesCmd.AddCommand(duplicatesResolveCmd)
	rootCmd.AddCommand(duplicatesCmd)
}
