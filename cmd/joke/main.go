package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"joke-cli/internal/analytics"
	"joke-cli/internal/apperr"
	"joke-cli/internal/config"
	"joke-cli/internal/display"
	"joke-cli/internal/generator"
	"joke-cli/internal/joke"
	"joke-cli/internal/llm"
	"joke-cli/internal/logging"
	"joke-cli/internal/session"
	"joke-cli/internal/storage"
)

const version = "1.0.0"

type options struct {
	category   string
	profile    string
	provider   string
	model      string
	configPath string
	noFeedback bool
	stats      bool
	jsonOut    bool
	verbose    bool
}

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	opts   options
	cfg    *config.Config
	logger *zap.Logger

	// newSource builds the joke source once configuration is known.
	newSource func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (session.JokeSource, error)
}

func main() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not read .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := newApp(os.Stdin, os.Stdout, os.Stderr).execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:     stdin,
		stdout:    stdout,
		stderr:    stderr,
		logger:    zap.NewNop(),
		newSource: modelSource,
	}
}

func modelSource(ctx context.Context, cfg *config.Config, logger *zap.Logger) (session.JokeSource, error) {
	strategies, err := llm.NewFactory(cfg).Strategies(ctx, cfg.Provider)
	if err != nil {
		return nil, err
	}
	logger.Debug("call strategies ready",
		zap.String("provider", string(cfg.Provider)),
		zap.String("model", cfg.Model()),
		zap.Int("strategies", len(strategies)))
	return generator.FromConfig(strategies, cfg, logger), nil
}

// execute runs the command line and returns the process exit code.
func (a *app) execute(ctx context.Context, args []string) int {
	cmd := a.rootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(a.stdin)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	err := cmd.ExecuteContext(ctx)
	defer a.logger.Sync() //nolint:errcheck

	if err == nil {
		return apperr.ExitSuccess
	}
	if ctx.Err() != nil {
		fmt.Fprintln(a.stderr, "\nOperation cancelled by user.")
		return apperr.ExitUserCancelled
	}
	a.logger.Debug("command failed", zap.Error(err), zap.Stringer("kind", apperr.KindOf(err)))
	display.New(a.stderr).Error(err)
	return apperr.ExitCode(err)
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "joke",
		Short: "Generate a joke with an LLM and rate it",
		Long: `joke asks a hosted language model for a joke, shows it and lets you rate it.
Ratings are kept in ~/.joke_cli and summarized with --stats.

Categories: general, programming, dad-jokes, puns, clean (default: random).`,
		Example: `  joke
  joke --category programming
  joke -c puns --no-feedback
  joke --stats
  joke --provider openai --model gpt-4o-mini`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return apperr.New(apperr.KindInvalidInput, "parse arguments", fmt.Sprintf("unexpected argument %q", args[0]))
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.opts.stats {
				return a.runStats()
			}
			return a.runJoke(cmd.Context())
		},
	}
	cmd.SetVersionTemplate("joke {{.Version}}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperr.Wrap(apperr.KindInvalidInput, "parse flags", err)
	})

	f := cmd.Flags()
	f.StringVarP(&a.opts.category, "category", "c", "", "joke category: general, programming, dad-jokes, puns, clean")
	f.StringVarP(&a.opts.profile, "profile", "p", "", "AWS profile to use for credentials")
	f.BoolVar(&a.opts.noFeedback, "no-feedback", false, "skip the rating prompt")
	f.BoolVarP(&a.opts.stats, "stats", "s", false, "show feedback statistics instead of a joke")
	f.BoolVar(&a.opts.jsonOut, "json", false, "print statistics as JSON (with --stats)")
	f.StringVar(&a.opts.provider, "provider", "", "model provider: bedrock, openai, yandex, gemini")
	f.StringVar(&a.opts.model, "model", "", "model id (defaults per provider)")
	f.StringVar(&a.opts.configPath, "config", "", "path to a YAML config file")
	f.BoolVarP(&a.opts.verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

// setup checks flag combinations, then layers flags over the loaded configuration.
func (a *app) setup() error {
	if a.opts.stats && a.opts.category != "" {
		return apperr.New(apperr.KindInvalidInput, "parse flags", "--stats cannot be combined with --category")
	}
	if a.opts.stats && a.opts.noFeedback {
		return apperr.New(apperr.KindInvalidInput, "parse flags", "--stats cannot be combined with --no-feedback")
	}
	if a.opts.jsonOut && !a.opts.stats {
		return apperr.New(apperr.KindInvalidInput, "parse flags", "--json only applies to --stats")
	}

	cfg, err := config.Load(a.opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.opts.provider != "" {
		cfg.Provider = config.Provider(a.opts.provider)
	}
	if a.opts.model != "" {
		cfg.ModelID = a.opts.model
	}
	if a.opts.profile != "" {
		cfg.AWSProfile = a.opts.profile
	}
	if a.opts.verbose {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return apperr.Wrap(apperr.KindInvalidInput, "config", err)
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.Debug, cfg.LogFilePath)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.logger = logger
	return nil
}

func (a *app) openStore() (storage.Recorder, func(), error) {
	switch a.cfg.StoreBackend {
	case config.BackendSQLite:
		r, err := storage.NewSQLiteRecorder(a.cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { _ = r.Close() }, nil
	default:
		r, err := storage.NewFileRecorder(a.cfg.StorePath)
		if err != nil {
			return nil, nil, err
		}
		a.logger.Debug("feedback store", zap.String("path", r.Path()))
		return r, func() {}, nil
	}
}

func (a *app) runStats() error {
	store, closeStore, err := a.openStore()
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, "open feedback store", err)
	}
	defer closeStore()

	records, err := store.ReadAll()
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, "read feedback", err)
	}
	report := analytics.Analyze(records)

	if a.opts.jsonOut {
		out, err := report.ToJSON()
		if err != nil {
			return fmt.Errorf("encode statistics: %w", err)
		}
		fmt.Fprintln(a.stdout, out)
		return nil
	}
	display.New(a.stdout).Report(report)
	return nil
}

func (a *app) runJoke(ctx context.Context) error {
	category, err := joke.ParseCategory(a.opts.category)
	if err != nil {
		return apperr.Wrap(apperr.KindInvalidInput, "parse category", err)
	}

	source, err := a.newSource(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}

	feedback := !a.opts.noFeedback
	var store storage.Recorder
	if feedback {
		s, closeStore, err := a.openStore()
		if err != nil {
			a.logger.Warn("feedback store unavailable", zap.Error(err))
			display.New(a.stderr).Warning("feedback is disabled: " + err.Error())
			feedback = false
		} else {
			defer closeStore()
			store = s
		}
	}

	ctrl := session.New(source, store, a.stdin, a.stdout, a.logger, session.Options{
		Feedback:         feedback,
		MaxRatingPrompts: a.cfg.MaxRatingPrompts,
	})
	_, err = ctrl.Run(ctx, category)
	return err
}
