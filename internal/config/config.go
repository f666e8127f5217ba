// Package config loads the application configuration: the store layout,
// voice and speech settings, and guidance pacing. Configuration lives in
// a project-local .aisleguide/config.yaml, falling back to
// ~/.config/aisleguide/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/aisleguide/internal/grid"
)

// Duration wraps time.Duration so YAML can carry values like "10s".
type Duration time.Duration

// D returns the underlying time.Duration.
func (d Duration) D() time.Duration { return time.Duration(d) }

// UnmarshalYAML parses "1.5s"-style strings.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration back in string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// ProductConfig places one named product on the floor.
type ProductConfig struct {
	Name        string    `yaml:"name"`
	Cell        grid.Cell `yaml:"cell"`
	Aisle       string    `yaml:"aisle,omitempty"`
	Suggestions []string  `yaml:"suggestions,omitempty"`
}

// StoreConfig describes the floor. Layout rows are written top-down;
// 'O', '0' or '#' mark shelving.
type StoreConfig struct {
	Name     string          `yaml:"name"`
	Layout   []string        `yaml:"layout"`
	Start    grid.Cell       `yaml:"start"`
	Products []ProductConfig `yaml:"products"`
}

// VoiceConfig controls speech synthesis and artifact cleanup.
type VoiceConfig struct {
	Enabled         bool     `yaml:"enabled"`
	Endpoint        string   `yaml:"endpoint"`
	Locale          string   `yaml:"locale"`
	PlaybackTimeout Duration `yaml:"playback_timeout"`
	DeleteGrace     Duration `yaml:"delete_grace"`
	DeleteBackoff   Duration `yaml:"delete_backoff"`
	DeleteRetries   int      `yaml:"delete_retries"`
}

// SpeechConfig controls how command phrases are acquired.
type SpeechConfig struct {
	// Input selects the phrase source: "typed" or "mic".
	Input string `yaml:"input"`
	// ModelPath points at the vosk model directory (mic input only).
	ModelPath string `yaml:"model_path"`
	// ListenWindow bounds a typed-input wait before re-prompting.
	ListenWindow Duration `yaml:"listen_window"`
	// PhraseLimit is how long a single spoken capture runs.
	PhraseLimit Duration `yaml:"phrase_limit"`
}

// GuidanceConfig paces the guidance loop.
type GuidanceConfig struct {
	StepPause   Duration `yaml:"step_pause"`
	ExitPhrases []string `yaml:"exit_phrases"`
}

// PhrasesConfig overrides individual spoken phrases. Empty fields keep
// the built-in defaults. Templates keep their %s verbs: Greeting takes
// the store name, NoRoute and Arrival the product name, PathStart the
// product name and aisle, Prompt and Suggest a spoken list.
type PhrasesConfig struct {
	Greeting      string `yaml:"greeting,omitempty"`
	Prompt        string `yaml:"prompt,omitempty"`
	NotFound      string `yaml:"not_found,omitempty"`
	NotUnderstood string `yaml:"not_understood,omitempty"`
	NoRoute       string `yaml:"no_route,omitempty"`
	PathStart     string `yaml:"path_start,omitempty"`
	Arrival       string `yaml:"arrival,omitempty"`
	Suggest       string `yaml:"suggest,omitempty"`
	Farewell      string `yaml:"farewell,omitempty"`
}

// Config is the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Voice    VoiceConfig    `yaml:"voice"`
	Speech   SpeechConfig   `yaml:"speech"`
	Guidance GuidanceConfig `yaml:"guidance"`
	Phrases  PhrasesConfig  `yaml:"phrases,omitempty"`
	LogLevel string         `yaml:"log_level"`
}

// Default returns the configuration used when no file exists: a small
// demo store with three products.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Name: "Demo Market",
			Layout: []string{
				"......",
				".OO.O.",
				"......",
				".OO.O.",
				"......",
			},
			Start: grid.Cell{X: 0, Y: 0},
			Products: []ProductConfig{
				{Name: "rice", Cell: grid.Cell{X: 2, Y: 3}, Suggestions: []string{"beans", "oil"}},
				{Name: "milk", Cell: grid.Cell{X: 5, Y: 1}, Suggestions: []string{"chocolate", "coffee"}},
				{Name: "bread", Cell: grid.Cell{X: 1, Y: 4}, Suggestions: []string{"cheese", "butter"}},
			},
		},
		Voice: VoiceConfig{
			Enabled:         true,
			Endpoint:        "http://localhost:5002/api/synthesize",
			Locale:          "en-US-JennyNeural",
			PlaybackTimeout: Duration(10 * time.Second),
			DeleteGrace:     Duration(time.Second),
			DeleteBackoff:   Duration(time.Second),
			DeleteRetries:   3,
		},
		Speech: SpeechConfig{
			Input:        "typed",
			ListenWindow: Duration(10 * time.Second),
			PhraseLimit:  Duration(5 * time.Second),
		},
		Guidance: GuidanceConfig{
			StepPause:   Duration(time.Second),
			ExitPhrases: []string{"exit", "quit", "goodbye"},
		},
		LogLevel: "debug",
	}
}

// Load reads the YAML file at path over the defaults and validates the
// result. A missing file is not an error: defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, cfg.Validate()
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the parts a bad config file could break.
func (c Config) Validate() error {
	m, err := c.BuildMap()
	if err != nil {
		return err
	}
	if !m.InBounds(c.Store.Start) {
		return fmt.Errorf("start cell %s out of bounds", c.Store.Start)
	}
	if c.Speech.Input != "typed" && c.Speech.Input != "mic" {
		return fmt.Errorf("speech.input must be \"typed\" or \"mic\", got %q", c.Speech.Input)
	}
	if c.Speech.Input == "mic" && c.Speech.ModelPath == "" {
		return fmt.Errorf("speech.model_path is required for mic input")
	}
	if len(c.Guidance.ExitPhrases) == 0 {
		return fmt.Errorf("guidance.exit_phrases must not be empty")
	}
	return nil
}

// BuildMap constructs the immutable store map from the layout rows and
// product table.
func (c Config) BuildMap() (*grid.Map, error) {
	width, height, obstacles, err := grid.ParseLayout(c.Store.Layout)
	if err != nil {
		return nil, fmt.Errorf("store layout: %w", err)
	}

	products := make([]grid.Product, len(c.Store.Products))
	for i, p := range c.Store.Products {
		products[i] = grid.Product{
			Name:        p.Name,
			Cell:        p.Cell,
			Aisle:       p.Aisle,
			Suggestions: p.Suggestions,
		}
	}

	m, err := grid.New(width, height, obstacles, products)
	if err != nil {
		return nil, fmt.Errorf("store map: %w", err)
	}
	return m, nil
}

// localConfigPath is the project-local config location.
const localConfigPath = ".aisleguide/config.yaml"

// Path resolves the config file location: the explicit path when given,
// the project-local file when present, else the user config directory.
func Path(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(localConfigPath); err == nil {
		return localConfigPath
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "aisleguide", "config.yaml")
}

// LogPath stores the log alongside the config file.
func LogPath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), "aisleguide.log")
}

// WriteDefaultConfig writes the default configuration to path, creating
// parent directories. Fails if the file already exists.
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshaling default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
