package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leofalp/pitchlens/patterns/pitch"
)

func (a *app) batchCmd() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "batch <pitches.yaml>",
		Short: "Score a list of text pitches concurrently",
		Long: `Reads a YAML list of pitches and analyses them with bounded concurrency.
A failed pitch is reported in its result and does not stop the others.

  - id: p-1
    title: EcoCharge
    industry: CleanTech
    pitchType: text
    pitch: Solar chargers for urban commuters.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()
			ctx, report := a.withOverview(ctx)
			defer report()

			pitches, err := readPitches(args[0])
			if err != nil {
				return err
			}
			if workers <= 0 {
				workers = a.cfg.Batch.Workers
			}

			results := a.analyzer().AnalyzeAll(ctx, pitches, workers)

			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
				}
			}
			if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d pitches failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent analyses (default from config)")
	return cmd
}

func readPitches(path string) ([]pitch.Pitch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pitches: %w", err)
	}
	var pitches []pitch.Pitch
	if err := yaml.Unmarshal(data, &pitches); err != nil {
		return nil, fmt.Errorf("parse pitches %q: %w", path, err)
	}
	for i := range pitches {
		k, err := pitch.ParseKind(string(pitches[i].Kind))
		if err != nil {
			return nil, fmt.Errorf("pitches[%d]: %w", i, err)
		}
		if k.Spoken() {
			return nil, fmt.Errorf("pitches[%d]: batch only accepts text pitches, use analyze-media for %s", i, k)
		}
		pitches[i].Kind = k
	}
	return pitches, nil
}
