package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bookverse/bookverse/internal/search"
)

var (
	searchMode string
	searchLive bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search books, users or authors",
	Long: `Search books, users or authors.

With --live, each line read from stdin is treated as the current contents
of the search box; a search runs once input pauses for the debounce delay.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := search.ParseMode(searchMode)
		if err != nil {
			return err
		}
		if searchLive {
			return liveSearch(cmd, mode)
		}
		if len(args) == 0 {
			return fmt.Errorf("a query is required")
		}
		res, err := bv.Search.Search(cmd.Context(), search.Query{Mode: mode, Text: strings.Join(args, " ")})
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

func liveSearch(cmd *cobra.Command, mode search.Mode) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	// set once stdin is exhausted, to let the last search finish
	var timeout <-chan time.Time
	for {
		select {
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		case line, ok := <-lines:
			if !ok {
				lines = nil
				timeout = time.After(2 * search.MaxDelay)
				continue
			}
			bv.Search.Type(search.Query{Mode: mode, Text: line})
		case <-timeout:
			return nil
		case res := <-results:
			if res.Err != nil {
				fmt.Fprintln(os.Stderr, "search failed:", res.Err)
				continue
			}
			if err := printJSON(res); err != nil {
				return err
			}
			if lines == nil {
				return nil
			}
		}
	}
}

func init() {
	searchCmd.Flags().StringVar(&searchMode, "mode", string(search.ModeBooks), "books, users or authors")
	searchCmd.Flags().BoolVar(&searchLive, "live", false, "read keystrokes from stdin and search as you type")
}
