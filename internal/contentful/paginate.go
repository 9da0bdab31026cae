package contentful

import (
	"context"

	"github.com/kapu/contentful-constructor-go/internal/domain"
)

// FetchPageFunc fetches one page of entries at the given offset.
type FetchPageFunc func(ctx context.Context, limit, skip int) (*domain.Page, error)

// CollectAll drains a paginated content source into a flat slice, preserving
// source order. The total reported by the FIRST page is the one source of
// truth for the run; pages are fetched strictly sequentially because the
// stopping condition depends on it.
//
// Termination: accumulated >= reported total, or an empty page (guards
// against a source that under-reports total). Any fetch error aborts the
// whole collection unmodified; a partially paginated batch is never returned.
func CollectAll(ctx context.Context, fetchPage FetchPageFunc, pageSize int) ([]*domain.RawEntry, error) {
	all := make([]*domain.RawEntry, 0)
	total := 0
	skip := 0

	for {
		page, err := fetchPage(ctx, pageSize, skip)
		if err != nil {
			return nil, err
		}

		if skip == 0 {
			total = page.Total
		}

		all = append(all, page.Items...)

		if len(all) >= total || len(page.Items) == 0 {
			break
		}
		skip += pageSize
	}

	return all, nil
}
