package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/drift/audio"
	"github.com/lixenwraith/drift/config"
	"github.com/lixenwraith/drift/content"
	"github.com/lixenwraith/drift/host"
)

const defaultConfigPath = "drift.toml"

type options struct {
	configPath string
	debug      bool
	noAudio    bool
	word       string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:          "drift [content-dir]",
		Short:        "Markdown sections as draggable, self-settling tiles",
		Long:         `Drift reveals the markdown files of a content directory as tiles in the terminal, in a rhythm spelled out in morse. Tiles can be dragged and flung; after a quiet period they settle back into columns.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "TOML settings file, defaults apply when missing")
	flags.BoolVar(&opts.debug, "debug", false, "write debug logs to "+logDir+"/"+logFileName)
	flags.BoolVar(&opts.noAudio, "no-audio", false, "disable sound cues")
	flags.StringVarP(&opts.word, "word", "w", "", "word whose morse code orders the reveal")

	return cmd
}

// resolveConfig loads settings and applies command line overrides
func resolveConfig(opts options, args []string) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if len(args) == 1 {
		cfg.Content.Dir = args[0]
	}
	if opts.word != "" {
		cfg.Content.Word = opts.word
	}
	if opts.noAudio {
		cfg.Audio.Enabled = false
	}
	return cfg, nil
}

func run(ctx context.Context, opts options, args []string) error {
	cfg, err := resolveConfig(opts, args)
	if err != nil {
		return err
	}

	logger, logFile := setupLogging(opts.debug)
	if logFile != nil {
		defer logFile.Close()
	}

	manager := content.NewManager(cfg.Content.Dir, logger)
	tiles := manager.Build(cfg.Content.Word)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	defer screen.Fini()

	// Panic recovery: restore the terminal even if the main goroutine crashes
	host.SetCrashScreen(screen)
	defer func() {
		if r := recover(); r != nil {
			host.HandleCrash(r)
		}
	}()

	var sound *audio.SoundManager
	if cfg.Audio.Enabled {
		sound = audio.NewSoundManager(cfg.Audio.Volume)
		if err := sound.Initialize(); err != nil {
			logger.Warn("audio unavailable, continuing without sound", "error", err)
			sound = nil
		} else {
			defer sound.Cleanup()
		}
	}

	app, err := host.NewApp(screen, cfg, tiles,
		host.WithAppLogger(logger),
		host.WithSound(sound),
		host.WithResolver(manager.Path),
	)
	if err != nil {
		return err
	}

	logger.Info("drift started", "dir", cfg.Content.Dir, "tiles", len(tiles), "word", cfg.Content.Word)
	return app.Run(ctx)
}
