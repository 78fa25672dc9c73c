// Command bvctl drives the BookVerse client core from a terminal.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bookverse/bookverse/internal/apiclient"
	"github.com/bookverse/bookverse/internal/app"
	"github.com/bookverse/bookverse/internal/search"
	"github.com/bookverse/bookverse/pkg/config"
	"github.com/bookverse/bookverse/pkg/logging"
)

var (
	cfg     *config.Config
	bv      *app.App
	results = make(chan search.Result, 1)
)

var rootCmd = &cobra.Command{
	Use:           "bvctl",
	Short:         "BookVerse client command line",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if err := logging.InitLogger(&cfg.Logging); err != nil {
			return err
		}
		bv, err = app.New(cmd.Context(), cfg, func(r search.Result) { results <- r })
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if bv == nil {
			return nil
		}
		return bv.Close()
	},
}

func main() {
	rootCmd.AddCommand(feedCmd, postCmd, commentCmd, likeCmd, searchCmd, shelfCmd, notificationsCmd, userCmd, adminCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", apiclient.UserMessage(err))
		fmt.Fprintln(os.Stderr, "  ", err)
		stop()
		os.Exit(1)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
