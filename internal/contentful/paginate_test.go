package contentful

import (
	"context"
	"errors"
	"testing"

	"github.com/kapu/contentful-constructor-go/internal/domain"
)

type fakeCall struct {
	limit int
	skip  int
}

func makeEntries(n int) []*domain.RawEntry {
	entries := make([]*domain.RawEntry, n)
	for i := range entries {
		entries[i] = &domain.RawEntry{Sys: domain.Sys{ID: "entry"}}
	}
	return entries
}

func pagedFetcher(total int, pageSizes []int, calls *[]fakeCall) FetchPageFunc {
	page := 0
	return func(ctx context.Context, limit, skip int) (*domain.Page, error) {
		*calls = append(*calls, fakeCall{limit: limit, skip: skip})
		size := 0
		if page < len(pageSizes) {
			size = pageSizes[page]
		}
		page++
		return &domain.Page{Total: total, Items: makeEntries(size)}, nil
	}
}

func TestCollectAllDrainsToReportedTotal(t *testing.T) {
	var calls []fakeCall
	fetch := pagedFetcher(160, []int{50, 50, 50, 10}, &calls)

	entries, err := CollectAll(context.Background(), fetch, 50)
	if err != nil {
		t.Fatalf("CollectAll failed: %v", err)
	}

	if len(entries) != 160 {
		t.Errorf("collected %d entries, want 160", len(entries))
	}
	if len(calls) != 4 {
		t.Fatalf("fetch called %d times, want 4", len(calls))
	}
	for i, wantSkip := range []int{0, 50, 100, 150} {
		if calls[i].skip != wantSkip {
			t.Errorf("call %d skip = %d, want %d", i, calls[i].skip, wantSkip)
		}
		if calls[i].limit != 50 {
			t.Errorf("call %d limit = %d, want 50", i, calls[i].limit)
		}
	}
}

func TestCollectAllStopsOnShortPage(t *testing.T) {
	// Source over-reports total; the empty page must still terminate the loop.
	var calls []fakeCall
	fetch := pagedFetcher(100, []int{50, 0}, &calls)

	entries, err := CollectAll(context.Background(), fetch, 50)
	if err != nil {
		t.Fatalf("CollectAll failed: %v", err)
	}

	if len(entries) != 50 {
		t.Errorf("collected %d entries, want 50", len(entries))
	}
	if len(calls) != 2 {
		t.Errorf("fetch called %d times, want 2", len(calls))
	}
}

func TestCollectAllEmptySource(t *testing.T) {
	var calls []fakeCall
	fetch := pagedFetcher(0, []int{0}, &calls)

	entries, err := CollectAll(context.Background(), fetch, 50)
	if err != nil {
		t.Fatalf("CollectAll failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("collected %d entries, want 0", len(entries))
	}
	if len(calls) != 1 {
		t.Errorf("fetch called %d times, want 1", len(calls))
	}
}

func TestCollectAllPropagatesFetchError(t *testing.T) {
	boom := errors.New("source unavailable")
	calls := 0
	fetch := func(ctx context.Context, limit, skip int) (*domain.Page, error) {
		calls++
		if calls == 2 {
			return nil, boom
		}
		return &domain.Page{Total: 100, Items: makeEntries(50)}, nil
	}

	_, err := CollectAll(context.Background(), fetch, 50)
	if !errors.Is(err, boom) {
		t.Fatalf("expected fetch error to propagate unmodified, got %v", err)
	}
}
