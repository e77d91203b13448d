package github

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/prresolver/internal/domain/model"
)

// fakeOffsetSource serves total items split into pages and counts requests.
type fakeOffsetSource struct {
	total    int
	requests int
}

func (s *fakeOffsetSource) fetch(_ context.Context, page, perPage int) ([]int, error) {
	s.requests++
	start := (page - 1) * perPage
	if start >= s.total {
		return []int{}, nil
	}
	end := min(start+perPage, s.total)
	items := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		items = append(items, i)
	}
	return items, nil
}

func TestPaginateOffset_RequestCount(t *testing.T) {
	tests := []struct {
		total        int
		perPage      int
		wantRequests int
	}{
		{total: 0, perPage: 100, wantRequests: 1},
		{total: 1, perPage: 100, wantRequests: 1},
		{total: 99, perPage: 100, wantRequests: 1},
		{total: 100, perPage: 100, wantRequests: 2},
		{total: 150, perPage: 100, wantRequests: 2},
		{total: 200, perPage: 100, wantRequests: 3},
		{total: 250, perPage: 100, wantRequests: 3},
		{total: 7, perPage: 3, wantRequests: 3},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d items per %d", tt.total, tt.perPage), func(t *testing.T) {
			src := &fakeOffsetSource{total: tt.total}

			items, err := paginateOffset(context.Background(), tt.perPage, defaultMaxPages, src.fetch)

			require.NoError(t, err)
			assert.Equal(t, tt.wantRequests, src.requests)
			require.Len(t, items, tt.total)
			for i, v := range items {
				assert.Equal(t, i, v, "items must keep upstream order without duplicates")
			}
		})
	}
}

func TestPaginateOffset_EndlessFullPages(t *testing.T) {
	requests := 0
	fetch := func(_ context.Context, _, perPage int) ([]int, error) {
		requests++
		return make([]int, perPage), nil
	}

	_, err := paginateOffset(context.Background(), 2, 5, fetch)

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrPaginationExceeded)
	assert.Equal(t, 5, requests)
}

func TestPaginateOffset_FetchError(t *testing.T) {
	boom := errors.New("boom")
	fetch := func(_ context.Context, page, perPage int) ([]int, error) {
		if page == 2 {
			return nil, boom
		}
		return make([]int, perPage), nil
	}

	items, err := paginateOffset(context.Background(), 10, defaultMaxPages, fetch)

	assert.Nil(t, items, "no partial results on error")
	assert.ErrorIs(t, err, boom)
}

func TestPaginateCursor_FollowsCursors(t *testing.T) {
	pages := map[string]cursorPage[string]{
		"":   {Items: []string{"a", "b"}, HasNextPage: true, EndCursor: "c1"},
		"c1": {Items: []string{"c"}, HasNextPage: true, EndCursor: "c2"},
		"c2": {Items: []string{"d", "e"}, HasNextPage: false, EndCursor: "c3"},
	}
	var seen []string
	fetch := func(_ context.Context, cursor *string) (cursorPage[string], error) {
		key := ""
		if cursor != nil {
			key = *cursor
		}
		seen = append(seen, key)
		return pages[key], nil
	}

	items, err := paginateCursor(context.Background(), "reviewThreads", defaultMaxPages, fetch)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, items)
	assert.Equal(t, []string{"", "c1", "c2"}, seen, "exactly one request per page")
}

func TestPaginateCursor_EndlessHasNextPage(t *testing.T) {
	requests := 0
	fetch := func(_ context.Context, _ *string) (cursorPage[int], error) {
		requests++
		return cursorPage[int]{Items: []int{requests}, HasNextPage: true, EndCursor: "same"}, nil
	}

	_, err := paginateCursor(context.Background(), "reviewThreads", 10, fetch)

	assert.ErrorIs(t, err, model.ErrPaginationExceeded)
	assert.Equal(t, 10, requests)
}

func TestPaginateCursor_MissingEndCursor(t *testing.T) {
	fetch := func(_ context.Context, _ *string) (cursorPage[int], error) {
		return cursorPage[int]{Items: []int{1}, HasNextPage: true}, nil
	}

	_, err := paginateCursor(context.Background(), "reviewThreads", defaultMaxPages, fetch)

	var malformed *model.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "reviewThreads", malformed.Entity)
	assert.Equal(t, "pageInfo.endCursor", malformed.Field)
}
