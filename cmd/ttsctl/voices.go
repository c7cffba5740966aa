package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/narravox/tts-studio/internal/voiceclone"
)

func newVoicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voices",
		Short: "Manage provider voices",
	}

	cmd.AddCommand(newVoicesListCmd())
	cmd.AddCommand(newVoicesCloneCmd())
	cmd.AddCommand(newVoicesDeleteCmd())

	return cmd
}

func newVoicesListCmd() *cobra.Command {
	var user string
	var mine bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List voices available on the provider account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := openStudio(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			if mine {
				records, err := st.store.ListVoices(cmd.Context(), user)
				if err != nil {
					return err
				}
				if len(records) == 0 {
					fmt.Println("no cloned voices")
					return nil
				}
				for _, rec := range records {
					fmt.Printf("%-24s %-24s %s\n", rec.VoiceName, rec.VoiceID, rec.CreatedAt.Format("2006-01-02 15:04"))
				}
				return nil
			}

			voices := st.catalog.Refresh(cmd.Context())
			if len(voices) == 0 {
				fmt.Println("no voices available")
				return nil
			}
			for _, v := range voices {
				fmt.Printf("%-24s %s\n", v.Name, v.VoiceID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&mine, "mine", false, "List only this user's cloned voices from the usage store")
	cmd.Flags().StringVar(&user, "user", "local", "User ID to list cloned voices for")

	return cmd
}

func newVoicesCloneCmd() *cobra.Command {
	var user string
	var name string

	cmd := &cobra.Command{
		Use:   "clone <sample.mp3|sample.wav>",
		Short: "Create an instant voice clone from an audio sample",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStudio(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			sample, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open sample: %w", err)
			}
			defer sample.Close()

			result := st.cloner.Clone(cmd.Context(), user, sample, args[0], name)
			switch result.Outcome {
			case voiceclone.OutcomeSuccess:
				fmt.Printf("created voice %s\n", result.VoiceID)
				return nil
			case voiceclone.OutcomeDenied:
				return fmt.Errorf("denied: %s", result.Reason)
			default:
				return fmt.Errorf("clone failed: %s", result.Reason)
			}
		},
	}

	cmd.Flags().StringVar(&user, "user", "local", "User ID to account usage against")
	cmd.Flags().StringVar(&name, "name", "", "Voice name (a generated name is used when blank)")

	return cmd
}

func newVoicesDeleteCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "delete <voice-id>",
		Short: "Delete a cloned voice from the provider and the usage store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStudio(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.cloner.Remove(cmd.Context(), user, args[0]); err != nil {
				return err
			}
			fmt.Printf("deleted voice %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "local", "User ID the voice belongs to")

	return cmd
}
