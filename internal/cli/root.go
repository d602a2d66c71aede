package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/intentbot/internal/logger"
	"github.com/ppiankov/intentbot/internal/model"
)

// version is set at build time with -ldflags "-X .../internal/cli.version=..."
var version = "dev"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "intentbot",
	Short: "intentbot - intent-classification chatbot",
	Long: `intentbot answers messages by classifying them into intents learned from a
JSON corpus and replying with the intent's canned response.

On every start it loads the newest saved model, or trains one from the
corpus if there is none. A training batch dropped next to the corpus is
merged into it, the originals are archived and the model is retrained.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command; commands that block stop when ctx is done
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of intentbot.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "intentbot %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.intentbot/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("data-dir", "", "directory holding the corpus and training batch")
	rootCmd.PersistentFlags().String("models-dir", "", "directory holding model artifacts")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("paths.data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("paths.models_dir", rootCmd.PersistentFlags().Lookup("models-dir"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	registerDefaults(model.DefaultConfig())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".intentbot"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match INTENTBOT_*, e.g. INTENTBOT_PATHS_DATA_DIR
	viper.SetEnvPrefix("INTENTBOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// registerDefaults makes every key known to viper so env vars can override
// keys the config file does not mention.
func registerDefaults(cfg *model.Config) {
	viper.SetDefault("paths.data_dir", cfg.Paths.DataDir)
	viper.SetDefault("paths.models_dir", cfg.Paths.ModelsDir)
	viper.SetDefault("paths.corpus_file", cfg.Paths.CorpusFile)
	viper.SetDefault("paths.training_file", cfg.Paths.TrainingFile)
	viper.SetDefault("paths.training_archive_dir", cfg.Paths.TrainingArchiveDir)
	viper.SetDefault("paths.corpus_archive_dir", cfg.Paths.CorpusArchiveDir)
	viper.SetDefault("classifier.fold_accents", cfg.Classifier.FoldAccents)
	viper.SetDefault("classifier.min_token_length", cfg.Classifier.MinTokenLength)
	viper.SetDefault("classifier.tfidf", cfg.Classifier.TfIdf)
	viper.SetDefault("chat.exit_keyword", cfg.Chat.ExitKeyword)
	viper.SetDefault("chat.greeting", cfg.Chat.Greeting)
	viper.SetDefault("chat.farewell", cfg.Chat.Farewell)
	viper.SetDefault("chat.cache_ttl", cfg.Chat.CacheTTL)
	viper.SetDefault("chat.watch_training", cfg.Chat.WatchTraining)
	viper.SetDefault("evaluate.concurrency", cfg.Evaluate.Concurrency)
	viper.SetDefault("log.level", cfg.Log.Level)
	viper.SetDefault("log.file", cfg.Log.File)
}

// loadConfig builds the effective configuration from defaults, the config
// file, env vars and flags.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setupLogging applies the configured level. With toFile set, output goes to
// log.file so it does not interleave with a full-screen UI; the returned
// func closes that file.
func setupLogging(cfg *model.Config, toFile bool) (func(), error) {
	lvl := cfg.Log.Level
	if verbose {
		lvl = "debug"
	}
	logger.SetLevel(lvl)

	if !toFile {
		return func() {}, nil
	}
	if cfg.Log.File == "" {
		logger.SetOutput(io.Discard)
		return func() {}, nil
	}

	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(f)
	return func() {
		logger.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}
