package main

import (
	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user <username>",
	Short: "Show a profile and its follower counts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := bv.Client.GetUser(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		counts, err := bv.Client.FollowCounts(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"user": user, "follow": counts})
	},
}

var followCmd = &cobra.Command{
	Use:   "follow <username>",
	Short: "Follow a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return bv.Client.Follow(cmd.Context(), args[0])
	},
}

var unfollowCmd = &cobra.Command{
	Use:   "unfollow <username>",
	Short: "Stop following a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return bv.Client.Unfollow(cmd.Context(), args[0])
	},
}

func init() {
	userCmd.AddCommand(followCmd, unfollowCmd)
}
