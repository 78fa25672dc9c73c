package apiclient

import (
	"context"
	"fmt"

	"github.com/bookverse/bookverse/internal/normalize"
)

// maxWalkPages stops a page walk against a server that never returns a
// short page.
const maxWalkPages = 1000

// PageFetcher fetches one 1-based page
type PageFetcher[T any] func(ctx context.Context, page, pageSize int) (normalize.Result[T], error)

// WalkPages fetches pages until a short page, the reported total, or
// maxWalkPages is reached, and returns every item seen.
func WalkPages[T any](ctx context.Context, pageSize int, fetch PageFetcher[T]) ([]T, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive")
	}

	var all []T
	for page := 1; page <= maxWalkPages; page++ {
		if err := ctx.Err(); err != nil {
			return all, err
		}
		res, err := fetch(ctx, page, pageSize)
		if err != nil {
			return all, fmt.Errorf("fetch page %d: %w", page, err)
		}
		all = append(all, res.Items...)

		total := 0
		if res.HasTotal {
			total = res.TotalCount
		}
		if !normalize.HasNextPage(len(res.Items), pageSize, page, total) {
			return all, nil
		}
	}
	return all, nil
}
