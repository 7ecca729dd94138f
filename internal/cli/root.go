// Package cli builds the nbharness command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"nbharness/internal/config"
	"nbharness/internal/datagen"
	"nbharness/internal/harness"
	"nbharness/internal/inference"
	"nbharness/internal/mockserver"
	"nbharness/internal/notebook"
)

// Execute runs the CLI and returns a process exit code.
func Execute() int {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	return 0
}

func buildRootCmd() *cobra.Command {
	var cfgPath string
	var logLevel string
	cfg := config.Config{}
	log := zerolog.Nop()

	root := &cobra.Command{
		Use:           "nbharness",
		Short:         "Run example notebooks against synthetic data and a live inference server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file (yaml|json|toml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug|info|warn|error (defaults NBHARNESS_LOG_LEVEL or info)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cfgPath != "" {
			loaded, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		cfg = config.ApplyDefaults(cfg)
		log = newLogger(cfg.LogLevel)
		return nil
	}

	// extract
	var extractOut string
	extractCmd := &cobra.Command{
		Use:   "extract <notebook.ipynb>",
		Short: "Extract the runnable script from a notebook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := notebook.Load(args[0])
			if err != nil {
				return err
			}
			script := notebook.ExtractScript(doc, nil)
			if extractOut == "" {
				fmt.Println(script)
				return nil
			}
			return os.WriteFile(extractOut, []byte(script), 0o644)
		},
	}
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", "Write the script to a file instead of stdout")
	root.AddCommand(extractCmd)

	// run
	var scratch string
	var envPairs []string
	runCmd := &cobra.Command{
		Use:   "run <notebook.ipynb>",
		Short: "Extract a notebook and execute it in a scratch directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := scratch
			if dir == "" {
				d, err := os.MkdirTemp("", "nbharness-*")
				if err != nil {
					return err
				}
				defer os.RemoveAll(d)
				dir = d
			}
			env, err := parseEnvPairs(envPairs)
			if err != nil {
				return err
			}
			rc := notebook.RunConfig{Interpreter: cfg.Interpreter, Env: env, Logger: log}
			return notebook.RunNotebook(cmd.Context(), dir, args[0], nil, rc)
		},
	}
	runCmd.Flags().StringVar(&scratch, "scratch", "", "Scratch directory (defaults to a temp dir removed afterwards)")
	runCmd.Flags().StringArrayVar(&envPairs, "env", nil, "Extra env var for the script, K=V (repeatable)")
	root.AddCommand(runCmd)

	// datagen
	var schemaPath, outDir string
	var rows int
	var seed int64
	datagenCmd := &cobra.Command{
		Use:   "datagen",
		Short: "Generate a synthetic dataset from a schema file",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := datagen.LoadSchema(schemaPath)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			path := filepath.Join(outDir, "dataset_0.csv")
			if err := datagen.New(seed).WriteDataset(path, rows, schema); err != nil {
				return err
			}
			log.Info().Str("path", path).Int("rows", rows).Msg("dataset written")
			return nil
		},
	}
	datagenCmd.Flags().StringVar(&schemaPath, "schema", "", "Schema file (yaml|json|toml)")
	datagenCmd.Flags().IntVar(&rows, "rows", 1000, "Number of rows to generate")
	datagenCmd.Flags().StringVar(&outDir, "out", ".", "Output directory")
	datagenCmd.Flags().Int64Var(&seed, "seed", 1, "Generator seed")
	_ = datagenCmd.MarkFlagRequired("schema")
	root.AddCommand(datagenCmd)

	// server wait
	var waitURL string
	var waitAttempts int
	var waitInterval time.Duration
	serverCmd := &cobra.Command{Use: "server", Short: "Inference server helpers"}
	serverWait := &cobra.Command{
		Use:   "wait",
		Short: "Poll a running server until it reports ready",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := inference.NewClient(waitURL)
			if err := inference.WaitReady(cmd.Context(), client, waitAttempts, waitInterval); err != nil {
				return err
			}
			log.Info().Str("url", waitURL).Msg("server ready")
			return nil
		},
	}
	serverWait.Flags().StringVar(&waitURL, "url", "http://127.0.0.1:8000", "Server base URL")
	serverWait.Flags().IntVar(&waitAttempts, "attempts", 60, "Readiness attempts")
	serverWait.Flags().DurationVar(&waitInterval, "interval", time.Second, "Interval between attempts")
	serverCmd.AddCommand(serverWait)
	root.AddCommand(serverCmd)

	// mock serve
	var mockAddr string
	var readyAfter time.Duration
	mockCmd := &cobra.Command{Use: "mock", Short: "Stand-in inference server"}
	mockServe := &cobra.Command{
		Use:   "serve",
		Short: "Serve the mock inference API until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return mockserver.Serve(ctx, mockAddr, mockserver.Options{ReadyAfter: readyAfter, Logger: log})
		},
	}
	mockServe.Flags().StringVar(&mockAddr, "addr", ":8000", "Listen address")
	mockServe.Flags().DurationVar(&readyAfter, "ready-after", 0, "Delay before the server reports ready")
	mockCmd.AddCommand(mockServe)
	root.AddCommand(mockCmd)

	// scenario group
	var scenarioScratch string
	var schedulerAddr string
	scenarioCmd := &cobra.Command{Use: "scenario", Short: "Run end-to-end example scenarios"}
	scenarioCmd.PersistentFlags().StringVar(&scenarioScratch, "scratch", "", "Scratch directory (defaults to a temp dir removed afterwards)")
	scenarioMovielens := &cobra.Command{
		Use:   "movielens",
		Short: "Synthetic movielens data, ETL + training notebooks, optional live inference",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withScratch(scenarioScratch, func(dir string) error {
				return harness.New(cfg, log).RunMovieLensExample(cmd.Context(), dir)
			})
		},
	}
	scenarioCluster := &cobra.Command{
		Use:   "cluster",
		Short: "Multi-worker toy notebook against an existing scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withScratch(scenarioScratch, func(dir string) error {
				return harness.New(cfg, log).RunClusterExample(cmd.Context(), dir, schedulerAddr)
			})
		},
	}
	scenarioCluster.Flags().StringVar(&schedulerAddr, "scheduler", "tcp://127.0.0.1:8786", "Scheduler address the notebook attaches to")
	scenarioCmd.AddCommand(scenarioMovielens, scenarioCluster)
	root.AddCommand(scenarioCmd)

	root.SetContext(context.Background())
	return root
}

func withScratch(dir string, fn func(string) error) error {
	if dir != "" {
		return fn(dir)
	}
	d, err := os.MkdirTemp("", "nbharness-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(d)
	return fn(d)
}

func parseEnvPairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	env := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid env pair %q, want K=V", p)
		}
		env[k] = v
	}
	return env, nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
