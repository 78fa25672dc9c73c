package main

import (
	"github.com/spf13/cobra"

	"github.com/bookverse/bookverse/internal/models"
)

var shelfCmd = &cobra.Command{
	Use:   "shelf",
	Short: "Manage reading shelves",
}

var shelfListCmd = &cobra.Command{
	Use:   "list",
	Short: "List shelves",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := bv.Shelves.List(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(list)
	},
}

var shelfMoveCmd = &cobra.Command{
	Use:   "move <book-id> <from-shelf> <to-shelf>",
	Short: "Move a book between shelves",
	Long: `Move a book between shelves.

The move removes the book from the first shelf and then adds it to the
second. If the add fails the book is left off both shelves.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return bv.Shelves.Move(cmd.Context(), models.ID(args[0]), args[1], args[2])
	},
}

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "List notifications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := bv.Notifications.List(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(list)
	},
}

var dismissCmd = &cobra.Command{
	Use:   "dismiss <notification-id>...",
	Short: "Dismiss notifications",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, id := range args {
			if err := bv.Notifications.Dismiss(cmd.Context(), models.ID(id)); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	shelfCmd.AddCommand(shelfListCmd, shelfMoveCmd)
	notificationsCmd.AddCommand(dismissCmd)
}
