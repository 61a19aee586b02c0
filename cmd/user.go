package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/gameiq/internal/store"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userSetTierCmd = &cobra.Command{
	Use:   "set-tier <user-id> <NONE|BASIC|PREMIUM>",
	Short: "Create a user or change their subscription tier",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tier, ok := store.ParseTier(args[1])
		if !ok {
			return fmt.Errorf("unknown tier %q (want NONE, BASIC or PREMIUM)", args[1])
		}
		name, _ := cmd.Flags().GetString("name")

		var s *store.Store
		return withServices(cmd, func(ctx context.Context) error {
			if err := s.UpsertUser(ctx, store.User{ID: args[0], DisplayName: name, Tier: tier}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now on tier %s\n", args[0], tier)
			return nil
		}, &s)
	},
}

func init() {
	userSetTierCmd.Flags().String("name", "", "Display name")
	userCmd.AddCommand(userSetTierCmd)
}
