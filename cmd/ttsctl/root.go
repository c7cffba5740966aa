package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/narravox/tts-studio/internal/audio"
	"github.com/narravox/tts-studio/internal/config"
	"github.com/narravox/tts-studio/internal/elevenlabs"
	"github.com/narravox/tts-studio/internal/observability"
	"github.com/narravox/tts-studio/internal/pipeline"
	"github.com/narravox/tts-studio/internal/quota"
	"github.com/narravox/tts-studio/internal/store"
	"github.com/narravox/tts-studio/internal/synth"
	"github.com/narravox/tts-studio/internal/voiceclone"
	"github.com/narravox/tts-studio/internal/voices"
)

// studio bundles the assembled components shared by every subcommand
type studio struct {
	cfg     *config.Config
	store   *store.Store
	pipe    *pipeline.Pipeline
	cloner  *voiceclone.Coordinator
	catalog *voices.Catalog
}

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ttsctl",
		Short:        "Multi-speaker TTS authoring from the command line",
		SilenceUsage: true,
	}

	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newVoicesCmd())
	cmd.AddCommand(newUsageCmd())
	cmd.AddCommand(newHistoryCmd())

	return cmd
}

// openStudio loads configuration and wires the pipeline components. The
// caller must Close the returned studio.
func openStudio(ctx context.Context) (*studio, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)

	st, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open usage store: %w", err)
	}

	client := elevenlabs.NewClient(cfg)

	sink, err := audio.NewSink(cfg.OutputsDir)
	if err != nil {
		st.Close()
		return nil, err
	}
	assembler, err := audio.NewAssembler(cfg.OutputsDir, cfg.MergeGap())
	if err != nil {
		st.Close()
		return nil, err
	}

	guard := quota.NewGuard(st, cfg.MaxVoicesPerUser, cfg.MaxGenerationsPerUser)
	batch := synth.NewBatchSynthesizer(client, st, sink, cfg.OutputFormat, cfg.SynthesisCallTimeout())

	cloner, err := voiceclone.NewCoordinator(client, st, guard, cfg.SamplesDir, cfg.CloneCallTimeout())
	if err != nil {
		st.Close()
		return nil, err
	}

	return &studio{
		cfg:     cfg,
		store:   st,
		pipe:    pipeline.New(guard, batch, assembler),
		cloner:  cloner,
		catalog: voices.NewCatalog(client, cfg.VoiceFetchAttempts, cfg.VoiceFetchCallTimeout()),
	}, nil
}

func (s *studio) Close() error {
	return s.store.Close()
}
