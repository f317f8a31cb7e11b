package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leofalp/pitchlens/core/cost"
	"github.com/leofalp/pitchlens/core/engine"
	"github.com/leofalp/pitchlens/internal/config"
	"github.com/leofalp/pitchlens/internal/utils"
	"github.com/leofalp/pitchlens/patterns/pitch"
	"github.com/leofalp/pitchlens/providers/ai"
	"github.com/leofalp/pitchlens/providers/ai/mistral"
	"github.com/leofalp/pitchlens/providers/observability"
	"github.com/leofalp/pitchlens/providers/observability/slogobs"
)

// app holds the state shared by the subcommands of one invocation.
type app struct {
	configPath string
	envFile    string
	logLevel   string

	cfg *config.Config
	obs *slogobs.Observer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "pitchlens",
		Short:         "Analyse and generate startup pitches with LLM and speech providers",
		Long:          "pitchlens scores startup pitches (text, audio or video), drafts new pitches for a topic and narrates the results. Malformed model output is repaired or replaced by defaults, so every command returns a complete JSON document.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	root.AddCommand(
		a.analyzeCmd(),
		a.analyzeMediaCmd(),
		a.transcribeCmd(),
		a.generateCmd(),
		a.batchCmd(),
	)
	return root
}

func (a *app) init(logOutput io.Writer) error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
		if err := config.Validate(cfg); err != nil {
			return err
		}
	}

	a.cfg = cfg
	a.obs = cfg.Log.Observer(slogobs.WithOutput(logOutput))
	return nil
}

// signalContext cancels on SIGINT and SIGTERM, which aborts pending backoffs.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
}

func (a *app) engine() *engine.Engine {
	return engine.New(a.cfg.Mistral.Provider(),
		engine.WithPolicy(a.cfg.Retry.Policy()),
		engine.WithObserver(a.obs),
	)
}

func (a *app) analyzer() *pitch.Analyzer {
	return pitch.NewAnalyzer(a.engine(),
		pitch.WithTranscriber(a.cfg.ElevenLabs.Provider()),
		pitch.WithTranscriptionPolicy(a.cfg.Retry.Policy()),
		pitch.WithAnalyzerObserver(a.obs),
		pitch.WithAnalysisModel(a.cfg.Mistral.Model),
	)
}

func (a *app) narrator() *pitch.Narrator {
	return pitch.NewNarrator(a.cfg.ElevenLabs.Provider(), a.cfg.Retry.Policy(), a.cfg.ElevenLabs.Voice)
}

// withOverview attaches a usage accumulator and logs the totals once the
// command is done.
func (a *app) withOverview(ctx context.Context) (context.Context, func()) {
	ov := &ai.Overview{}
	ctx = ai.ContextWithOverview(ctx, ov)
	return ctx, func() {
		usage := ov.TotalUsage()
		estimate := cost.Estimate(ov.UsageByModel(), mistral.Pricing)
		attrs := []observability.Attribute{
			observability.Int("llm.requests", ov.Requests()),
			observability.Int(observability.AttrLLMTokensTotal, usage.TotalTokens),
			observability.Float64("llm.cost.usd", estimate.TotalCost),
		}
		if len(estimate.Unpriced) > 0 {
			attrs = append(attrs, observability.String("llm.cost.unpriced", strings.Join(estimate.Unpriced, ",")))
		}
		a.obs.Info(ctx, "llm usage", attrs...)
	}
}

func writeJSON(w io.Writer, v any) error {
	_, err := fmt.Fprintln(w, utils.JSONToString(v, true))
	return err
}
