package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/abhisek/gameiq/internal/ledger"
	"github.com/abhisek/gameiq/internal/report"
)

var usageCmd = &cobra.Command{
	Use:   "usage <user-id>",
	Short: "Show a user's AI spend for the current month",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		var l *ledger.Ledger
		return withServices(cmd, func(ctx context.Context) error {
			sum, err := l.Summary(ctx, args[0], limit)
			if err != nil {
				return err
			}
			return report.Usage(cmd.OutOrStdout(), sum)
		}, &l)
	},
}

func init() {
	usageCmd.Flags().Int("limit", 10, "Number of recent calls to list")
}
