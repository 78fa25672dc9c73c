package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bookverse/bookverse/internal/apiclient"
	"github.com/bookverse/bookverse/internal/models"
)

// adminOps erases the record type of an apiclient.AdminResource so the
// commands can pick a collection by name.
type adminOps struct {
	list   func(ctx context.Context, q apiclient.ListQuery) (any, error)
	delete func(ctx context.Context, id models.ID) error
}

func opsFor[T any](r apiclient.AdminResource[T]) adminOps {
	return adminOps{
		list: func(ctx context.Context, q apiclient.ListQuery) (any, error) {
			return r.List(ctx, q)
		},
		delete: r.Delete,
	}
}

func adminResource(name string) (adminOps, error) {
	c := bv.Client
	resources := map[string]adminOps{
		"books":   opsFor(c.AdminBooks()),
		"authors": opsFor(c.AdminAuthors()),
		"genres":  opsFor(c.AdminGenres()),
		"users":   opsFor(c.AdminUsers()),
		"reviews": opsFor(c.AdminReviews()),
		"quotes":  opsFor(c.AdminQuotes()),
	}
	ops, ok := resources[strings.ToLower(name)]
	if !ok {
		names := make([]string, 0, len(resources))
		for n := range resources {
			names = append(names, n)
		}
		sort.Strings(names)
		return adminOps{}, fmt.Errorf("unknown resource %q (want one of %s)", name, strings.Join(names, ", "))
	}
	return ops, nil
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Catalog administration and moderation",
}

var adminListCmd = &cobra.Command{
	Use:   "list <resource>",
	Short: "List books, authors, genres, users, reviews or quotes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ops, err := adminResource(args[0])
		if err != nil {
			return err
		}
		search, _ := cmd.Flags().GetString("search")
		page, _ := cmd.Flags().GetInt("page")
		res, err := ops.list(cmd.Context(), apiclient.ListQuery{Search: search, Page: page})
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var adminDeleteCmd = &cobra.Command{
	Use:   "delete <resource> <id>",
	Short: "Delete a record, e.g. moderate a review or quote",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ops, err := adminResource(args[0])
		if err != nil {
			return err
		}
		return ops.delete(cmd.Context(), models.ID(args[1]))
	},
}

func init() {
	adminListCmd.Flags().String("search", "", "Filter by text")
	adminListCmd.Flags().Int("page", 1, "Page number")
	adminCmd.AddCommand(adminListCmd, adminDeleteCmd)
}
