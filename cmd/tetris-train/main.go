package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/plus3/tetrisrl/session"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// envPrefix namespaces the environment variables that override flag defaults.
const envPrefix = "TETRISRL_"

type options struct {
	seed      uint64
	episodes  int
	frames    int
	realtime  bool
	duration  time.Duration
	window    int
	showBoard bool
	logLevel  string
	logFormat string
	envFile   string
	cfg       session.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{cfg: session.DefaultConfig()}

	cmd := &cobra.Command{
		Use:   "tetris-train",
		Short: "Train a TD(0) agent to play the falling-block puzzle",
		Long: `tetris-train runs a headless training session: the agent places every
piece, learns from replayed plays after each decision and starts a new game
whenever the board tops out. A report is printed when the run ends.

Flag defaults can be overridden with TETRISRL_* environment variables, for
example TETRISRL_EPISODES=50, optionally loaded from a .env file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnvFile(opts.envFile); err != nil {
				return err
			}
			return applyEnv(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.Uint64Var(&opts.seed, "seed", 1, "seed for every random draw in the run")
	f.IntVar(&opts.episodes, "episodes", 10, "number of games to train on")
	f.IntVar(&opts.frames, "frames", 0, "stop after this many frames instead of counting episodes")
	f.BoolVar(&opts.realtime, "realtime", false, "pace frames on the wall clock at the frame delta")
	f.DurationVar(&opts.duration, "duration", 0, "stop a realtime run after this long (0 runs until interrupted)")
	f.IntVar(&opts.window, "window", 10, "number of recent episodes averaged in the report")
	f.BoolVar(&opts.showBoard, "board", false, "include the final board in the report")
	f.StringVar(&opts.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	f.StringVar(&opts.logFormat, "log-format", "text", "log format (text or json)")
	f.StringVar(&opts.envFile, "env-file", ".env", "optional file of TETRISRL_* variables")

	f.Float64Var(&opts.cfg.FrameDelta, "frame-delta", opts.cfg.FrameDelta, "simulated seconds per frame")
	f.Float64Var(&opts.cfg.Agent.LearningRate, "learning-rate", opts.cfg.Agent.LearningRate, "initial learning rate")
	f.Float64Var(&opts.cfg.Agent.DiscountFactor, "discount", opts.cfg.Agent.DiscountFactor, "discount factor")
	f.Float64Var(&opts.cfg.Agent.ExplorationRate, "exploration", opts.cfg.Agent.ExplorationRate, "initial exploration rate")
	f.IntVar(&opts.cfg.Agent.BatchSize, "batch-size", opts.cfg.Agent.BatchSize, "replay batch size")
	f.IntVar(&opts.cfg.Agent.TargetSyncInterval, "target-sync", opts.cfg.Agent.TargetSyncInterval, "training steps between target network syncs")
	f.IntVar(&opts.cfg.Agent.HiddenSize, "hidden", opts.cfg.Agent.HiddenSize, "width of both hidden layers")
	f.Float64Var(&opts.cfg.Agent.ErrorClip, "error-clip", opts.cfg.Agent.ErrorClip, "largest TD error magnitude used in an update (0 disables)")
	f.Float64Var(&opts.cfg.Agent.GradientClip, "gradient-clip", opts.cfg.Agent.GradientClip, "largest gradient norm used in an update (0 disables)")

	return cmd
}

// loadEnvFile reads path into the environment. A missing file is not an
// error; variables already set win.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// applyEnv sets every flag the user did not pass from its TETRISRL_ variable,
// so --batch-size falls back to TETRISRL_BATCH_SIZE.
func applyEnv(flags *pflag.FlagSet) error {
	var errs []error
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			return
		}
		name := envPrefix + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		v, ok := os.LookupEnv(name)
		if !ok {
			return
		}
		if err := f.Value.Set(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	})
	return errors.Join(errs...)
}

func newLogger(level, format string) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	log.SetLevel(lvl)

	switch format {
	case "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return log, nil
}

func run(ctx context.Context, opts *options) error {
	log, err := newLogger(opts.logLevel, opts.logFormat)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	s, err := session.New(opts.cfg, rng, session.WithLogger(log))
	if err != nil {
		return err
	}

	entry := log.WithField("run", s.ID().String())
	entry.WithFields(logrus.Fields{
		"seed":     opts.seed,
		"episodes": opts.episodes,
		"frames":   opts.frames,
		"realtime": opts.realtime,
	}).Info("starting training")

	start := time.Now()
	switch {
	case opts.realtime:
		if opts.duration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.duration)
			defer cancel()
		}
		s.RunRealtime(ctx, time.Duration(opts.cfg.FrameDelta*float64(time.Second)))
	case opts.frames > 0:
		err = s.RunFrames(ctx, opts.frames)
	default:
		err = s.RunEpisodes(ctx, opts.episodes)
	}
	if errors.Is(err, context.Canceled) {
		entry.Warn("training interrupted")
	} else if err != nil {
		return err
	}

	report := NewReport(s, opts.seed, opts.window, time.Since(start))
	if !opts.showBoard {
		report.Board = ""
	}
	entry.WithField("elapsed", report.Elapsed.String()).Info("training finished")

	fmt.Println("--- Training Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		return fmt.Errorf("generating report: %w", err)
	}
	fmt.Println("--- End of Report ---")
	return nil
}
