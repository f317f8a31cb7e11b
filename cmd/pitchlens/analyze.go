package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leofalp/pitchlens/patterns/pitch"
	"github.com/leofalp/pitchlens/providers/observability"
	"github.com/leofalp/pitchlens/providers/webfetch"
)

func (a *app) analyzeCmd() *cobra.Command {
	var (
		meta        pitchFlags
		kind        string
		content     string
		contentFile string
		url         string
		narrate     string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score a pitch given as text, a file or a web page",
		Example: `  pitchlens analyze --title "EcoCharge" --content "Solar chargers for commuters"
  pitchlens analyze --title "EcoCharge" --url ecocharge.example --narrate feedback.mp3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()
			ctx, report := a.withOverview(ctx)
			defer report()

			p := meta.pitch()
			k, err := pitch.ParseKind(kind)
			if err != nil {
				return err
			}
			p.Kind = k

			switch {
			case content != "":
				p.Content = content
			case contentFile != "":
				data, err := os.ReadFile(contentFile)
				if err != nil {
					return fmt.Errorf("read content: %w", err)
				}
				p.Content = string(data)
			case url != "":
				page, err := webfetch.New().Fetch(ctx, url)
				if err != nil {
					return err
				}
				p.Content = page.Markdown
			default:
				return errors.New("one of --content, --content-file or --url is required")
			}

			analysis, err := a.analyzer().Analyze(ctx, p)
			if err != nil {
				return err
			}

			if narrate != "" {
				audio, err := a.narrator().NarrateAnalysis(ctx, analysis)
				if err != nil {
					a.obs.Warn(ctx, "narration skipped", observability.Error(err))
				} else if err := os.WriteFile(narrate, audio.Data, 0o644); err != nil {
					return fmt.Errorf("write narration: %w", err)
				}
			}

			return writeJSON(cmd.OutOrStdout(), analysis)
		},
	}

	meta.register(cmd)
	fs := cmd.Flags()
	fs.StringVar(&kind, "kind", "text", "content kind: text, audio or video")
	fs.StringVar(&content, "content", "", "pitch content")
	fs.StringVar(&contentFile, "content-file", "", "read pitch content from a file")
	fs.StringVar(&url, "url", "", "fetch pitch content from a web page")
	fs.StringVar(&narrate, "narrate", "", "write a spoken version of the feedback to this MP3 file")
	cmd.MarkFlagsMutuallyExclusive("content", "content-file", "url")
	return cmd
}

func (a *app) analyzeMediaCmd() *cobra.Command {
	var meta pitchFlags

	cmd := &cobra.Command{
		Use:   "analyze-media <file>",
		Short: "Transcribe an audio or video pitch and score it",
		Long:  "Transcribes the recording with the speech provider and analyses the transcript. Supported: .mp3 .wav (audio) and .mp4 .avi .mov .mkv .webm .flv .wmv (video).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()
			ctx, report := a.withOverview(ctx)
			defer report()

			analysis, err := a.analyzer().AnalyzeMedia(ctx, meta.pitch(), mediaFile(args[0]))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), analysis)
		},
	}
	meta.register(cmd)
	return cmd
}
