package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/readme-sync/internal/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history [repository]",
	Short: "List recorded pull and push attempts",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := viper.GetString("journal")
		if path == "" {
			return errors.New("sync history is disabled (--journal is empty)")
		}
		limit, _ := cmd.Flags().GetInt("limit")
		asYAML, _ := cmd.Flags().GetBool("yaml")

		j, err := journal.Open(path)
		if err != nil {
			return err
		}
		defer j.Close()

		events, err := j.List(cmd.Context(), journal.Filter{
			Repository: optionalRepository(args),
			Limit:      limit,
		})
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if asYAML {
			return journal.ExportYAML(w, events)
		}
		if len(events) == 0 {
			fmt.Fprintln(w, "no sync history")
			return nil
		}
		for _, ev := range events {
			fmt.Fprintf(w, "%s  %-7s %-8s %s/%s", ev.At.Local().Format(time.DateTime), ev.Action, ev.Outcome, ev.Username, ev.Repository)
			if ev.StatusCode != 0 {
				fmt.Fprintf(w, "  HTTP %d", ev.StatusCode)
			}
			if ev.SHAAfter != "" {
				fmt.Fprintf(w, "  sha %s", ev.SHAAfter)
			}
			if ev.Message != "" {
				fmt.Fprintf(w, "  (%s)", ev.Message)
			}
			fmt.Fprintln(w)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of events to show")
	historyCmd.Flags().Bool("yaml", false, "print events as YAML")

	rootCmd.AddCommand(historyCmd)
}
