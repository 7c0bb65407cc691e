package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/kasuboski/catalogz/pkg/library"
	"github.com/kasuboski/catalogz/pkg/logger"
	"go.uber.org/zap"

	"github.com/spf13/cobra"
)

var recordingsCmd = &cobra.Command{
	Use:   "recordings",
	Short: "Manage recordings in the library",
}

var recordingsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import new recordings from the library into the catalog",
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()
		ctx := logger.WithCtx(context.Background(), log)

		_, m := setup(ctx)

		report, err := m.ImportRecordings(ctx)
		if err != nil {
			log.Fatal("failed to import recordings", zap.Error(err))
		}

		printTable(
			[]string{"Found", "Imported", "Skipped", "New Series", "New Episodes"},
			[][]string{{
				itoa(report.Found),
				itoa(report.Imported),
				itoa(report.Skipped),
				itoa(report.CreatedSeries),
				itoa(report.CreatedEpisodes),
			}},
			1, 2, 3, 4, 5,
		)
	},
}

var recordingsListCmd = &cobra.Command{
	Use:   "list <dir>",
	Short: "List recordings found in a library directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()
		ctx := logger.WithCtx(context.Background(), log)

		root, err := filepath.Abs(args[0])
		if err != nil {
			log.Fatal("invalid directory", zap.String("dir", args[0]), zap.Error(err))
		}

		lib := library.New(os.DirFS(root), root)
		files, err := lib.FindRecordings(ctx)
		if err != nil {
			log.Fatal("failed to find recordings", zap.Error(err))
		}

		rows := make([][]string, 0, len(files))
		for _, f := range files {
			episode := "-"
			if f.Numbered() {
				episode = fmt.Sprintf("S%02dE%02d", f.SeasonNumber, f.EpisodeNumber)
			}
			rows = append(rows, []string{
				f.SeriesTitle,
				episode,
				f.EpisodeTitle,
				humanize.Time(f.CapturedAt),
				humanize.Bytes(uint64(max(f.Size, 0))),
				f.RelativePath,
			})
		}

		printTable([]string{"Series", "Episode", "Title", "Captured", "Size", "Path"}, rows, 5)
	},
}

func init() {
	recordingsCmd.AddCommand(recordingsImportCmd)
	recordingsCmd.AddCommand(recordingsListCmd)
	rootCmd.AddCommand(recordingsCmd)
}
