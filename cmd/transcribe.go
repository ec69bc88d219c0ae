package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parley-ai/parley/internal/config"
)

func newTranscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Turn an audio recording into text",
		Long: `Transcribe uploads an audio file to the configured transcription
service and prints the recognized text. The same text can be sent as a chat
prompt from inside a session with /voice.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			text, err := newTranscriber(cfg).TranscribeFile(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("transcribing %s: %w", args[0], err)
			}
			fmt.Println(text)
			return nil
		},
	}
}
