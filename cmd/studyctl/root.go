package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/phrazzld/studykit/internal/config"
	"github.com/phrazzld/studykit/internal/generation"
	"github.com/phrazzld/studykit/internal/platform/gemini"
	"github.com/phrazzld/studykit/internal/platform/logger"
	"github.com/phrazzld/studykit/internal/platform/memory"
	"github.com/phrazzld/studykit/internal/service"
	"github.com/phrazzld/studykit/internal/synthesis"
	"github.com/spf13/cobra"
)

// deps builds the pieces that reach outside the process.
type deps struct {
	loadConfig     func(path string) (*config.Config, error)
	newSynthesizer func(ctx context.Context, cfg config.LLMConfig, log *slog.Logger) (service.Synthesizer, error)
	newListener    func(ctx context.Context, cfg config.RedisConfig, log *slog.Logger) (listener, error)
}

func defaultDeps() deps {
	return deps{
		loadConfig: config.LoadFile,
		newSynthesizer: func(ctx context.Context, cfg config.LLMConfig, log *slog.Logger) (service.Synthesizer, error) {
			endpoint, err := gemini.NewEndpoint(ctx, log, cfg)
			if err != nil {
				return nil, err
			}
			client, err := generation.NewClient(endpoint, log,
				generation.WithMaxAttempts(cfg.MaxAttempts),
				generation.WithInitialBackoff(cfg.InitialBackoff))
			if err != nil {
				return nil, err
			}
			return synthesis.New(client, log)
		},
		newListener: newRedisListener,
	}
}

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd(d deps) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "studyctl",
		Short: "Summarize notes and study them as quizzes or flashcards",
		Long: `studyctl runs the study core against an in-memory store.

Each command takes a text file or an image (.png, .jpg, .jpeg, .webp, .gif).
Configuration is read like the server's: config.yaml and STUDYKIT_* variables.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ./config.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "error", "log level written to stderr")

	root.AddCommand(
		newSummarizeCmd(d, opts),
		newStudyCmd(d, opts, "quiz", "Generate a quiz from FILE and take it"),
		newStudyCmd(d, opts, "flashcards", "Generate flashcards from FILE and review them"),
		newWatchCmd(d, opts),
	)
	return root
}

// setup loads configuration and a stderr logger for one command run.
func setup(d deps, opts *rootOptions) (*config.Config, *slog.Logger, error) {
	cfg, err := d.loadConfig(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	level, err := logger.ParseLevel(opts.logLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(os.Stderr, level), nil
}

// newStudy builds a study service over a fresh in-memory store. Summaries
// are requested explicitly, so no event emitter is wired.
func newStudy(ctx context.Context, d deps, opts *rootOptions) (*service.StudyService, error) {
	cfg, log, err := setup(d, opts)
	if err != nil {
		return nil, err
	}
	synth, err := d.newSynthesizer(ctx, cfg.LLM, log)
	if err != nil {
		return nil, fmt.Errorf("initialize synthesizer: %w", err)
	}
	mem := memory.New()
	return service.NewStudyService(mem, mem, synth, log)
}
