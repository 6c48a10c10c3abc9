package main

import (
	"github.com/spf13/cobra"

	"github.com/Halleck45/OpenPronounce/internal/config"
	"github.com/Halleck45/OpenPronounce/pkg/logger"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce"
)

// Global flags
var (
	configPath string
	dbPath     string
	tempDir    string
	sampleRate int
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "openpronounce",
	Short: "Score English pronunciation from the command line",
	Long: `OpenPronounce compares a spoken recording with the text it should say:
it transcribes the audio, aligns expected and heard phonemes, flags
mispronounced words and composes a score between 0 and 100.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetLevel(logger.DEBUG)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the SQLite history database (env: OPENPRONOUNCE_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&tempDir, "temp", "", "directory for temporary audio files (env: OPENPRONOUNCE_TEMP_DIR)")
	rootCmd.PersistentFlags().IntVar(&sampleRate, "rate", 0, "audio sample rate for processing (default 16000)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(scoreCmd, transcribeCmd, phonemesCmd, historyCmd, showCmd, deleteCmd, spectrogramCmd)
}

// loadConfig reads the configuration file and environment, then applies
// the global flags that were set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Storage.DBPath = dbPath
	}
	if flags.Changed("temp") {
		cfg.Audio.TempDir = tempDir
	}
	if flags.Changed("rate") {
		cfg.Audio.SampleRate = sampleRate
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, config.Validate(cfg)
}

// newService builds the service for a command. Tests replace it.
var newService = func(cfg *config.Config) (pronounce.Service, error) {
	opts, err := cfg.ServiceOptions()
	if err != nil {
		return nil, err
	}
	return pronounce.NewService(opts...)
}

func serviceFor(cmd *cobra.Command) (pronounce.Service, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return newService(cfg)
}
