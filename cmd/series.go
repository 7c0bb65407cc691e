package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kasuboski/catalogz/pkg/logger"
	"github.com/kasuboski/catalogz/pkg/manager"
	"github.com/kasuboski/catalogz/pkg/storage"
	"go.uber.org/zap"

	"github.com/spf13/cobra"
)

var (
	includeRetired   bool
	seriesExternalID string
	seriesAlias      string
)

var seriesCmd = &cobra.Command{
	Use:   "series",
	Short: "Manage catalog series",
}

var seriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List series in the catalog",
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()
		ctx := logger.WithCtx(context.Background(), log)

		_, m := setup(ctx)

		series, err := m.ListSeries(ctx, includeRetired)
		if err != nil {
			log.Fatal("failed to list series", zap.Error(err))
		}

		printSeries(series...)
	},
}

var seriesAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a series to the catalog",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()
		ctx := logger.WithCtx(context.Background(), log)

		_, m := setup(ctx)

		request := manager.AddSeriesRequest{Title: strings.Join(args, " ")}
		if seriesExternalID != "" {
			request.ExternalID = &seriesExternalID
		}
		if seriesAlias != "" {
			request.Alias = &seriesAlias
		}

		series, err := m.AddSeries(ctx, request)
		if err != nil {
			log.Fatal("failed to add series", zap.Error(err))
		}

		printSeries(series)
	},
}

var seriesMatchCmd = &cobra.Command{
	Use:   "match <id> <external id>",
	Short: "Match a series to its upstream guide entry",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()
		ctx := logger.WithCtx(context.Background(), log)

		id := parseSeriesID(args[0])
		_, m := setup(ctx)

		series, err := m.MatchSeries(ctx, id, args[1])
		if err != nil {
			log.Fatal("failed to match series", zap.Int64("series", id), zap.Error(err))
		}

		printSeries(series)
	},
}

var seriesMergeCmd = &cobra.Command{
	Use:   "merge <duplicate id> <base id>",
	Short: "Merge a duplicate series into a base series",
	Long:  `Move every episode and recording of the duplicate series onto the base series and retire the duplicate`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()
		ctx := logger.WithCtx(context.Background(), log)

		duplicateID := parseSeriesID(args[0])
		baseID := parseSeriesID(args[1])
		_, m := setup(ctx)

		report, err := m.MergeSeries(ctx, duplicateID, baseID)
		if err != nil {
			log.Fatal("failed to merge series", zap.Int64("duplicate", duplicateID), zap.Int64("base", baseID), zap.Error(err))
		}

		carried := "-"
		if len(report.Carried) > 0 {
			carried = strings.Join(report.Carried, ", ")
		}
		printTable(
			[]string{"Duplicate", "Base", "Matched", "Created", "Relinked", "Carried"},
			[][]string{{
				strconv.FormatInt(report.DuplicateID, 10),
				strconv.FormatInt(report.BaseID, 10),
				itoa(report.Matched),
				itoa(report.Created),
				itoa(report.Relinked),
				carried,
			}},
			1, 2, 3, 4, 5,
		)
	},
}

func parseSeriesID(arg string) int64 {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		logger.Get().Fatal("invalid series id", zap.String("id", arg))
	}
	return id
}

func printSeries(series ...*storage.Series) {
	rows := make([][]string, 0, len(series))
	for _, s := range series {
		rows = append(rows, []string{
			fmt.Sprint(s.ID),
			s.Title,
			orDash(s.DisplayAlias),
			orDash(s.ExternalID),
			string(s.Status()),
			strconv.FormatBool(s.Retired),
			relativeTime(s.LastSync),
		})
	}

	printTable([]string{"ID", "Title", "Alias", "External ID", "Status", "Retired", "Last Sync"}, rows, 1)
}

func init() {
	seriesListCmd.Flags().BoolVar(&includeRetired, "all", false, "include retired series")
	seriesAddCmd.Flags().StringVar(&seriesExternalID, "external-id", "", "upstream guide id, marks the series matched")
	seriesAddCmd.Flags().StringVar(&seriesAlias, "alias", "", "alternate title used to match recordings")

	seriesCmd.AddCommand(seriesListCmd)
	seriesCmd.AddCommand(seriesAddCmd)
	seriesCmd.AddCommand(seriesMatchCmd)
	seriesCmd.AddCommand(seriesMergeCmd)
	rootCmd.AddCommand(seriesCmd)
}
