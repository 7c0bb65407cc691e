package cmd

import (
	"os"
	"strings"
	"time"

	mhttp "github.com/kasuboski/catalogz/pkg/http"
	"github.com/kasuboski/catalogz/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	logLevel string
	jsonLog  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "catalogz",
	Short: "catalogz cli",
	Long:  `catalogz keeps a recorded tv catalog in line with an upstream episode guide`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		opts := logger.OptionsFromEnv()
		if cmd.Flags().Changed("log-level") {
			opts.Level = logLevel
		}
		if jsonLog {
			opts.JSON = true
		}
		logger.Configure(opts)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "log as json")
}

const (
	defaultReconcileTicker = time.Hour * 6
	defaultDuplicateTicker = time.Hour * 24
	defaultImportTicker    = time.Minute * 30
)

func initConfig() {
	viper.SetConfigFile(cfgFile)

	viper.SetEnvPrefix("CATALOGZ")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", ""))
	viper.AutomaticEnv()

	viper.SetDefault("guide.scheme", "https")
	viper.SetDefault("guide.host", "")
	viper.SetDefault("guide.apiKey", "")
	viper.SetDefault("guide.backoff", mhttp.DefaultBaseBackoff)
	viper.SetDefault("guide.maxRetries", mhttp.DefaultMaxRetries)
	viper.SetDefault("guide.timeout", time.Second*30)

	viper.SetDefault("server.port", 8080)

	viper.SetDefault("library.recordings", "")

	viper.SetDefault("storage.filePath", "catalogz.sqlite")

	viper.SetDefault("manager.lockDir", "")
	viper.SetDefault("manager.retireOrphanedEpisodes", false)
	viper.SetDefault("manager.titleMatchThreshold", 0.8)
	viper.SetDefault("manager.jobs.seriesReconcile", defaultReconcileTicker)
	viper.SetDefault("manager.jobs.duplicateResolve", defaultDuplicateTicker)
	viper.SetDefault("manager.jobs.recordingImport", defaultImportTicker)
}
