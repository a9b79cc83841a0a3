package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/zen-systems/askcmd/pkg/adapter"
	"github.com/zen-systems/askcmd/pkg/config"
	"github.com/zen-systems/askcmd/pkg/executor"
	"github.com/zen-systems/askcmd/pkg/runner"
	"github.com/zen-systems/askcmd/pkg/shellctx"
	"github.com/zen-systems/askcmd/pkg/ui"
)

var (
	configFile string
	verbose    bool
	logger     = zap.NewNop()

	// exitCode is set by commands that finish without an error but must
	// still report failure, such as a generated command exiting non-zero.
	exitCode int
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		ui.NewPrinter(os.Stderr).Error(err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "askcmd",
		Short: "Turn a plain-language request into a shell command",
		Long: `askcmd asks an LLM for exactly one shell command that accomplishes
your request, using the current directory, its files, git status and OS as
context. The command is shown and only runs after you confirm it.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "path to config file (default ~/.askcmd/config.yaml)")

	root.AddCommand(askCmd())
	root.AddCommand(modelsCmd())
	root.AddCommand(contextCmd())

	return root
}

func askCmd() *cobra.Command {
	var (
		adapterFlag string
		modelFlag   string
		temperature float64
		maxTokens   int
		yes         bool
	)

	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Generate a shell command for a request and offer to run it",
		Long: `Sends the request together with the local shell context to the
configured adapter (or --adapter). If that adapter has no API key or cannot be
initialized, the fallback adapter is used instead.

The suggested command runs only after confirmation, unless --yes is given.`,
		Example: `  askcmd ask "list files"
  askcmd ask -a claude -t 0 "find the five largest files here"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			printer := ui.NewPrinter(cmd.OutOrStdout())
			r, err := runner.New(runner.Options{
				Config: cfg,
				Factory: func(name config.AdapterName, ov adapter.Overrides) (adapter.Adapter, error) {
					return adapter.New(name, cfg, ov, adapter.WithLogger(logger))
				},
				Gatherer:  shellctx.NewGatherer(shellctx.WithLogger(logger)),
				Executor:  executor.New(executor.WithStdout(cmd.OutOrStdout())),
				Confirmer: ui.NewConfirmer(),
				Reporter:  printer,
				Logger:    logger,
			})
			if err != nil {
				return err
			}

			req := runner.Request{
				Prompt:  args[0],
				Adapter: config.AdapterName(adapterFlag),
				Model:   modelFlag,
				Yes:     yes,
				Verbose: verbose,
			}
			if cmd.Flags().Changed("temperature") {
				req.Temperature = &temperature
			}
			if cmd.Flags().Changed("max-tokens") {
				req.MaxTokens = &maxTokens
			}

			outcome, err := r.Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			exitCode = runner.ExitCode(outcome, nil)
			return nil
		},
	}

	cmd.Flags().StringVarP(&adapterFlag, "adapter", "a", "", "adapter to use (deepseek, openai, gemini, claude)")
	cmd.Flags().StringVarP(&modelFlag, "model", "m", "", "model override for the selected adapter")
	cmd.Flags().Float64VarP(&temperature, "temperature", "t", config.DefaultTemperature, "sampling temperature (0-2)")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", config.DefaultMaxTokens, "maximum tokens in the response")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "execute without asking for confirmation")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show context, prompt and adapter in use")

	return cmd
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List adapters, their models and whether they are ready",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			ui.NewPrinter(cmd.OutOrStdout()).Models(modelRows(cfg))
			return nil
		},
	}
}

func modelRows(cfg *config.Config) []ui.ModelRow {
	rows := make([]ui.ModelRow, 0, len(config.AdapterNames))
	for _, name := range config.AdapterNames {
		rows = append(rows, ui.ModelRow{
			Adapter:  name,
			Model:    cfg.Model(name),
			BaseURL:  cfg.BaseURL(name),
			Aliases:  cfg.Aliases.List(name),
			Ready:    cfg.HasAdapter(name),
			Default:  name == cfg.DefaultAdapter,
			Fallback: name == cfg.FallbackAdapter,
		})
	}
	return rows
}

func contextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "context",
		Short: "Show the shell context that would be sent with a request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g := shellctx.NewGatherer(shellctx.WithLogger(logger))
			ui.NewPrinter(cmd.OutOrStdout()).Context(g.Gather(cmd.Context()))
			return nil
		},
	}
}

func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	if configFile != "" {
		return config.LoadFile(configFile)
	}
	return config.Load()
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	cfg.DisableStacktrace = true
	cfg.Sampling = nil
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}
