package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/narravox/tts-studio/internal/pipeline"
	"github.com/narravox/tts-studio/internal/script"
	"github.com/narravox/tts-studio/internal/synth"
)

// scriptFileSegment is one entry in the script JSON file passed to generate
type scriptFileSegment struct {
	Text       string `json:"text"`
	VoiceID    string `json:"voice_id"`
	VoiceLabel string `json:"voice_label,omitempty"`
}

func newGenerateCmd() *cobra.Command {
	var user string
	var merge bool
	var bundle bool
	var noQuota bool

	cmd := &cobra.Command{
		Use:   "generate <script.json>",
		Short: "Synthesize a script of segments into audio clips",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStudio(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			sess, err := loadScriptFile(args[0], user)
			if err != nil {
				return err
			}

			opts := pipeline.Options{Merge: merge, Bundle: bundle, EnforceQuota: !noQuota}
			progress := func(ev synth.Event) {
				if ev.Status == synth.StatusSynthesizing {
					fmt.Printf("segment %d/%d...\n", ev.Position, ev.Total)
				}
			}

			result, err := st.pipe.Run(cmd.Context(), sess, opts, progress)
			if err != nil {
				var valErr *pipeline.ValidationError
				if errors.As(err, &valErr) {
					return fmt.Errorf("invalid segments at positions %v: each segment needs text and a voice", valErr.Positions)
				}
				return err
			}

			for _, c := range result.Clips {
				fmt.Printf("segment %d -> %s (%d bytes)\n", c.Ordinal, c.Path, c.Bytes)
			}
			for _, e := range result.Errors {
				fmt.Fprintf(os.Stderr, "warning: %s\n", e.Error())
			}
			if result.ArtifactPath != "" {
				fmt.Printf("%s artifact: %s\n", result.ArtifactType, result.ArtifactPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "local", "User ID to account usage against")
	cmd.Flags().BoolVar(&merge, "merge", false, "Concatenate clips into one stream (archive fallback)")
	cmd.Flags().BoolVar(&bundle, "bundle", false, "Package clips into a zip archive")
	cmd.Flags().BoolVar(&noQuota, "no-quota", false, "Skip the generation quota check")

	return cmd
}

func loadScriptFile(path, userID string) (*script.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script file: %w", err)
	}

	var entries []scriptFileSegment
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse script file: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("script file has no segments")
	}

	sess := script.NewSession(userID)
	sess.Script.Segments = sess.Script.Segments[:0]
	for _, e := range entries {
		seg := sess.Script.Append()
		seg.Text = e.Text
		label := e.VoiceLabel
		if label == "" {
			label = e.VoiceID
		}
		seg.SetVoice(e.VoiceID, label)
	}
	return sess, nil
}
