package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Guide   Guide   `json:"guide" yaml:"guide" mapstructure:"guide"`
	Library Library `json:"library" yaml:"library" mapstructure:"library"`
	Storage Storage `json:"storage" yaml:"storage" mapstructure:"storage"`
	Server  Server  `json:"server" yaml:"server" mapstructure:"server"`
	Manager Manager `json:"manager" yaml:"manager" mapstructure:"manager"`
}

// Guide configures the upstream episode guide service
type Guide struct {
	Scheme      string        `json:"scheme" yaml:"scheme" mapstructure:"scheme"`
	Host        string        `json:"host" yaml:"host" mapstructure:"host"`
	APIKey      string        `json:"apiKey" yaml:"apiKey" mapstructure:"apiKey"`
	BaseBackoff time.Duration `json:"backoff" yaml:"backoff" mapstructure:"backoff"`
	MaxRetries  int           `json:"maxRetries" yaml:"maxRetries" mapstructure:"maxRetries"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

type Server struct {
	Port int `json:"port" yaml:"port" mapstructure:"port"`
}

type Library struct {
	RecordingsDir string `json:"recordings" yaml:"recordings" mapstructure:"recordings"`
}

// Storage configuration is assumed to be for sqlite database only currently
type Storage struct {
	FilePath string `json:"filePath" yaml:"filePath" mapstructure:"filePath"`
}

// Manager houses configuration related to the manager and reconciliation
type Manager struct {
	Jobs Jobs `json:"jobs" yaml:"jobs" mapstructure:"jobs"`
	// LockDir enables cross process series locks when set
	LockDir string `json:"lockDir" yaml:"lockDir" mapstructure:"lockDir"`
	// RetireOrphanedEpisodes retires canonical episodes that left the upstream guide
	// and have no recordings
	RetireOrphanedEpisodes bool `json:"retireOrphanedEpisodes" yaml:"retireOrphanedEpisodes" mapstructure:"retireOrphanedEpisodes"`
	// TitleMatchThreshold is the minimum similarity, between 0 and 1, for a recording
	// title to identify an episode
	TitleMatchThreshold float64 `json:"titleMatchThreshold" yaml:"titleMatchThreshold" mapstructure:"titleMatchThreshold"`
}

// Jobs intervals. A zero or negative interval disables the job.
type Jobs struct {
	SeriesReconcile  time.Duration `json:"seriesReconcile" yaml:"seriesReconcile" mapstructure:"seriesReconcile"`
	DuplicateResolve time.Duration `json:"duplicateResolve" yaml:"duplicateResolve" mapstructure:"duplicateResolve"`
	RecordingImport  time.Duration `json:"recordingImport" yaml:"recordingImport" mapstructure:"recordingImport"`
}

type ConfigUnmarshaler interface {
	ReadInConfig() error
	Unmarshal(any, ...viper.DecoderConfigOption) error
	ConfigFileUsed() string
}

// New reads a new configuration
func New(cu ConfigUnmarshaler) (Config, error) {
	var c Config

	if cu.ConfigFileUsed() != "" {
		err := cu.ReadInConfig()
		if err != nil {
			return c, err
		}
	}

	err := cu.Unmarshal(&c)
	return c, err
}
