package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUsageCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show remaining voice and generation allowance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := openStudio(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			voicesUsed, err := st.store.CountVoices(cmd.Context(), user)
			if err != nil {
				return err
			}
			generationsUsed, err := st.store.CountGenerations(cmd.Context(), user)
			if err != nil {
				return err
			}

			fmt.Printf("voices:      %d / %d\n", voicesUsed, st.cfg.MaxVoicesPerUser)
			fmt.Printf("generations: %d / %d\n", generationsUsed, st.cfg.MaxGenerationsPerUser)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "local", "User ID to report usage for")

	return cmd
}

func newHistoryCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the user's generation history, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := openStudio(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			records, err := st.store.ListGenerations(cmd.Context(), user)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("no generations yet")
				return nil
			}
			for _, rec := range records {
				text := rec.Text
				if len(text) > 60 {
					text = text[:57] + "..."
				}
				fmt.Printf("%s  %-16s %s\n", rec.CreatedAt.Format("2006-01-02 15:04"), rec.VoiceLabel, text)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "local", "User ID to show history for")

	return cmd
}
