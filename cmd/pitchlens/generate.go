package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leofalp/pitchlens/internal/utils"
	"github.com/leofalp/pitchlens/patterns/pitch"
	"github.com/leofalp/pitchlens/providers/observability"
)

func (a *app) generateCmd() *cobra.Command {
	var (
		outDir    string
		noNarrate bool
	)

	cmd := &cobra.Command{
		Use:   "generate <topic>",
		Short: "Draft a pitch for a topic, format it as a slide and narrate it",
		Long:  "Writes pitch.json, slide.md and pitch.mp3 to the output directory and prints a summary.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()
			ctx, report := a.withOverview(ctx)
			defer report()

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}

			generated, err := pitch.NewGenerator(a.engine()).Generate(ctx, args[0])
			if err != nil {
				return err
			}

			files := map[string]string{}
			write := func(name string, data []byte) error {
				path := filepath.Join(outDir, name)
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", name, err)
				}
				files[name] = path
				return nil
			}

			if err := write("pitch.json", []byte(utils.JSONToString(generated, true)+"\n")); err != nil {
				return err
			}

			presenter := pitch.NewPresenter(a.cfg.Mistral.Provider(), a.cfg.Retry.Policy(), a.obs)
			slide, _ := presenter.Format(ctx, generated)
			if err := write("slide.md", []byte(slide+"\n")); err != nil {
				return err
			}

			if !noNarrate {
				audio, err := a.narrator().NarratePitch(ctx, generated)
				if err != nil {
					a.obs.Warn(ctx, "narration skipped", observability.Error(err))
				} else if err := write("pitch.mp3", audio.Data); err != nil {
					return err
				}
			}

			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"topic":     generated.Topic,
				"stage":     generated.Stage,
				"degraded":  generated.Degraded,
				"truncated": generated.Truncated,
				"pitch":     generated,
				"files":     files,
			})
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "output", "output directory")
	cmd.Flags().BoolVar(&noNarrate, "no-narrate", false, "skip the MP3 narration")
	return cmd
}
