package github

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/prresolver/internal/domain/model"
)

const (
	// defaultPerPage is the REST page size and the GraphQL connection size.
	defaultPerPage = 100
	// defaultMaxPages bounds every pagination loop.
	defaultMaxPages = 1000
	// recentRunsLimit is the page size for the single page of workflow runs.
	recentRunsLimit = 30
)

// offsetFetch requests one page (1-based) of a page-numbered REST resource.
type offsetFetch[T any] func(ctx context.Context, page, perPage int) ([]T, error)

// paginateOffset walks a page-numbered resource until a page comes back empty or
// shorter than perPage, and returns every item in upstream order. It fails with
// ErrPaginationExceeded instead of requesting more than maxPages pages.
func paginateOffset[T any](ctx context.Context, perPage, maxPages int, fetch offsetFetch[T]) ([]T, error) {
	all := []T{}

	for page := 1; ; page++ {
		if page > maxPages {
			return nil, fmt.Errorf("%w: more than %d pages", model.ErrPaginationExceeded, maxPages)
		}

		items, err := fetch(ctx, page, perPage)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)

		if len(items) < perPage {
			return all, nil
		}
	}
}

// cursorPage is one page of a cursor-paginated connection.
type cursorPage[T any] struct {
	Items       []T
	HasNextPage bool
	EndCursor   string
}

// cursorFetch requests the page after cursor; a nil cursor requests the first page.
type cursorFetch[T any] func(ctx context.Context, cursor *string) (cursorPage[T], error)

// paginateCursor follows endCursor while hasNextPage is true and returns every
// item in upstream order. entity names the connection in error messages.
func paginateCursor[T any](ctx context.Context, entity string, maxPages int, fetch cursorFetch[T]) ([]T, error) {
	all := []T{}
	var cursor *string

	for pages := 1; ; pages++ {
		if pages > maxPages {
			return nil, fmt.Errorf("%w: %s: more than %d pages", model.ErrPaginationExceeded, entity, maxPages)
		}

		page, err := fetch(ctx, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)

		if !page.HasNextPage {
			return all, nil
		}
		if page.EndCursor == "" {
			return nil, &model.MalformedResponseError{Entity: entity, Field: "pageInfo.endCursor"}
		}

		next := page.EndCursor
		cursor = &next
	}
}
