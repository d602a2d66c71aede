package model

import (
	"path/filepath"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the complete intentbot configuration
type Config struct {
	Paths      PathsConfig      `yaml:"paths" mapstructure:"paths"`
	Classifier ClassifierConfig `yaml:"classifier" mapstructure:"classifier"`
	Chat       ChatConfig       `yaml:"chat" mapstructure:"chat"`
	Evaluate   EvaluateConfig   `yaml:"evaluate" mapstructure:"evaluate"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// PathsConfig locates the corpus, the pending training batch, models and archives
type PathsConfig struct {
	DataDir            string `yaml:"data_dir" mapstructure:"data_dir" validate:"required"`
	ModelsDir          string `yaml:"models_dir" mapstructure:"models_dir" validate:"required"`
	CorpusFile         string `yaml:"corpus_file" mapstructure:"corpus_file" validate:"required"`                         // Name inside DataDir
	TrainingFile       string `yaml:"training_file" mapstructure:"training_file" validate:"required,nefield=CorpusFile"` // Name inside DataDir
	TrainingArchiveDir string `yaml:"training_archive_dir" mapstructure:"training_archive_dir"` // Empty = DataDir/old_training_files
	CorpusArchiveDir   string `yaml:"corpus_archive_dir" mapstructure:"corpus_archive_dir"`     // Empty = DataDir/old_intents_files
}

// ClassifierConfig tunes tokenization
type ClassifierConfig struct {
	FoldAccents    bool `yaml:"fold_accents" mapstructure:"fold_accents"`
	MinTokenLength int  `yaml:"min_token_length" mapstructure:"min_token_length" validate:"gte=0"`
	TfIdf          bool `yaml:"tfidf" mapstructure:"tfidf"`
}

// ChatConfig controls the conversation surface
type ChatConfig struct {
	ExitKeyword   string        `yaml:"exit_keyword" mapstructure:"exit_keyword" validate:"required"`
	Greeting      string        `yaml:"greeting" mapstructure:"greeting"`
	Farewell      string        `yaml:"farewell" mapstructure:"farewell"`
	CacheTTL      time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl" validate:"gte=0"` // 0 disables the prediction cache
	WatchTraining bool          `yaml:"watch_training" mapstructure:"watch_training"`
}

// EvaluateConfig controls batch evaluation
type EvaluateConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency" validate:"gte=0"` // 0 means one worker
}

// LogConfig controls logging
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level" validate:"omitempty,oneof=panic fatal error warn warning info debug trace"`
	File  string `yaml:"file" mapstructure:"file"` // Used while the chat UI owns the terminal
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			DataDir:      "data",
			ModelsDir:    "models",
			CorpusFile:   "intents.json",
			TrainingFile: "intents_train.json",
		},
		Classifier: ClassifierConfig{
			FoldAccents:    true,
			MinTokenLength: 2,
		},
		Chat: ChatConfig{
			ExitKeyword:   "exit",
			Greeting:      "¡Hola! Soy un chatbot.\n¿Cómo puedo ayudarte?",
			Farewell:      "Gracias por conversar. ¡Hasta luego!",
			CacheTTL:      10 * time.Minute,
			WatchTraining: true,
		},
		Evaluate: EvaluateConfig{
			Concurrency: runtime.NumCPU(),
		},
		Log: LogConfig{
			Level: "info",
			File:  "intentbot.log",
		},
	}
}

// CorpusPath is the primary corpus file
func (p PathsConfig) CorpusPath() string {
	return filepath.Join(p.DataDir, p.CorpusFile)
}

// TrainingPath is the pending training batch file
func (p PathsConfig) TrainingPath() string {
	return filepath.Join(p.DataDir, p.TrainingFile)
}

// TrainingArchive is where consumed training batches are moved
func (p PathsConfig) TrainingArchive() string {
	if p.TrainingArchiveDir != "" {
		return p.TrainingArchiveDir
	}
	return filepath.Join(p.DataDir, "old_training_files")
}

// CorpusArchive is where superseded corpus snapshots are moved
func (p PathsConfig) CorpusArchive() string {
	if p.CorpusArchiveDir != "" {
		return p.CorpusArchiveDir
	}
	return filepath.Join(p.DataDir, "old_intents_files")
}

var configValidator = validator.New()

// Validate checks the configuration for values no command can work with
func (c *Config) Validate() error {
	return configValidator.Struct(c)
}
