// Package cmd wires configuration, logging, audio, speech input, and the
// guidance engine together behind the CLI.
package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/aisleguide/internal/audio"
	"github.com/zjrosen/aisleguide/internal/command"
	"github.com/zjrosen/aisleguide/internal/config"
	"github.com/zjrosen/aisleguide/internal/guide"
	"github.com/zjrosen/aisleguide/internal/log"
	"github.com/zjrosen/aisleguide/internal/pubsub"
	"github.com/zjrosen/aisleguide/internal/speech"
	"github.com/zjrosen/aisleguide/internal/tts"
	"github.com/zjrosen/aisleguide/internal/ui/mapview"
)

var (
	flagNoUI  bool
	flagTyped bool
)

var rootCmd = &cobra.Command{
	Use:   "aisleguide",
	Short: "Voice-guided in-store navigation",
	Long: `aisleguide guides a shopper through a store with spoken directions.
Ask for a product by name and it plans a route across the floor map and
speaks one cue per step until you arrive.`,
	RunE: runRoot,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to the config file")
	rootCmd.Flags().BoolVar(&flagNoUI, "no-ui", false, "run headless, reading commands from stdin")
	rootCmd.Flags().BoolVar(&flagTyped, "typed", false, "force typed input even when a microphone is configured")
	rootCmd.Flags().String("log-level", "", "minimum log level (debug, info, warn, error)")

	viper.SetEnvPrefix("AISLEGUIDE")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("log_level", rootCmd.Flags().Lookup("log-level"))
}

func runRoot(cmd *cobra.Command, args []string) error {
	configPath := config.Path(viper.GetString("config"))
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	cleanup, err := log.Init(config.LogPath(configPath))
	if err != nil {
		return fmt.Errorf("initializing log: %w", err)
	}
	defer cleanup()

	if lvl := viper.GetString("log_level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	log.SetMinLevel(log.ParseLevel(cfg.LogLevel))
	log.Info(log.CatConfig, "config loaded", "path", configPath, "store", cfg.Store.Name)

	m, err := cfg.BuildMap()
	if err != nil {
		return err
	}

	// SIGINT/SIGTERM stop the engine the same way a quit key does.
	signalCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(signalCtx)
	defer cancel()

	var synth tts.Synthesizer = tts.Noop{}
	if cfg.Voice.Enabled {
		synth = tts.NewHTTPClient(cfg.Voice.Endpoint, cfg.Voice.Locale, os.TempDir())
	}

	audioCfg := audio.DefaultConfig()
	audioCfg.PlaybackTimeout = cfg.Voice.PlaybackTimeout.D()
	audioCfg.DeleteGrace = cfg.Voice.DeleteGrace.D()
	audioCfg.DeleteBackoff = cfg.Voice.DeleteBackoff.D()
	audioCfg.DeleteRetries = cfg.Voice.DeleteRetries
	sequencer := audio.New(synth, audio.NewSystemPlayer(), audioCfg)
	defer sequencer.Shutdown()

	source, typed, err := buildSource(cfg)
	if err != nil {
		return err
	}
	defer source.Close()

	broker := pubsub.NewBroker[any]()
	defer broker.Shutdown()

	controller := guide.New(guide.Config{
		Map:       m,
		StoreName: cfg.Store.Name,
		Start:     cfg.Store.Start,
		StepPause: cfg.Guidance.StepPause.D(),
		Phrases:   buildPhrases(cfg.Phrases),
	},
		source,
		command.NewInterpreter(m.ProductNames(), cfg.Guidance.ExitPhrases),
		sequencer,
		broker,
	)

	engineDone := make(chan error, 1)
	go func() { engineDone <- controller.Run(ctx) }()

	if flagNoUI {
		return runHeadless(cancel, typed, engineDone)
	}

	program := tea.NewProgram(mapview.New(mapview.Config{
		Ctx:       ctx,
		Cancel:    cancel,
		Broker:    broker,
		Map:       m,
		StoreName: cfg.Store.Name,
		Start:     cfg.Store.Start,
		Typed:     typed,
	}), tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		cancel()
		<-engineDone
		return fmt.Errorf("running ui: %w", err)
	}

	cancel()
	if err := <-engineDone; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// buildPhrases overlays non-empty config overrides on the defaults.
func buildPhrases(overrides config.PhrasesConfig) guide.Phrases {
	phrases := guide.DefaultPhrases()
	override := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	override(&phrases.Greeting, overrides.Greeting)
	override(&phrases.Prompt, overrides.Prompt)
	override(&phrases.NotFound, overrides.NotFound)
	override(&phrases.NotUnderstood, overrides.NotUnderstood)
	override(&phrases.NoRoute, overrides.NoRoute)
	override(&phrases.PathStart, overrides.PathStart)
	override(&phrases.Arrival, overrides.Arrival)
	override(&phrases.Suggest, overrides.Suggest)
	override(&phrases.Farewell, overrides.Farewell)
	return phrases
}

// buildSource picks the configured phrase source. The typed source is
// returned separately so the UI (or stdin pump) can feed it.
func buildSource(cfg config.Config) (speech.Source, *speech.Typed, error) {
	if cfg.Speech.Input == "mic" && !flagTyped {
		recognizer, err := speech.NewVosk(cfg.Speech.ModelPath)
		if err != nil {
			return nil, nil, fmt.Errorf("loading speech model: %w", err)
		}
		mic, err := speech.NewMic(recognizer, cfg.Speech.PhraseLimit.D())
		if err != nil {
			recognizer.Close()
			return nil, nil, fmt.Errorf("opening microphone: %w", err)
		}
		return mic, nil, nil
	}

	typed := speech.NewTyped(cfg.Speech.ListenWindow.D())
	return typed, typed, nil
}

// runHeadless pumps stdin lines into the typed source until the engine
// exits or input closes.
func runHeadless(cancel context.CancelFunc, typed *speech.Typed, engineDone <-chan error) error {
	if typed != nil {
		go func() {
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				typed.Submit(scanner.Text())
			}
			// Stdin closed: treat it like a quit.
			cancel()
		}()
	}

	err := <-engineDone
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
