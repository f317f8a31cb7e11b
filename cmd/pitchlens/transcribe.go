package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leofalp/pitchlens/patterns/pitch"
)

func mediaFile(path string) pitch.Media {
	return pitch.Media{
		FileName: filepath.Base(path),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

func (a *app) transcribeCmd() *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "transcribe <file>",
		Short: "Transcribe an audio or video pitch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()

			if _, err := pitch.MediaKind(args[0]); err != nil {
				return err
			}
			text, degraded, err := a.analyzer().Transcribe(ctx, mediaFile(args[0]), language)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"file":          args[0],
				"transcription": text,
				"degraded":      degraded,
			})
		},
	}
	cmd.Flags().StringVar(&language, "language", pitch.DefaultLanguage, "ISO 639-3 language code")
	return cmd
}
