package indexer

import (
	"context"

	"github.com/kapu/contentful-constructor-go/internal/contentful"
	"github.com/kapu/contentful-constructor-go/internal/domain"
)

// ShowcaseIndexer indexes project showcase entries. Showcases carry their
// image under featuredImage, unlike the other content types.
type ShowcaseIndexer struct {
	client *contentful.Client
}

func NewShowcaseIndexer(client *contentful.Client) *ShowcaseIndexer {
	return &ShowcaseIndexer{client: client}
}

func (i *ShowcaseIndexer) ID() string {
	return "projectShowcase"
}

func (i *ShowcaseIndexer) FetchPage(ctx context.Context, limit, skip int) (*domain.Page, error) {
	return i.client.FetchShowcasePage(ctx, limit, skip)
}

func (i *ShowcaseIndexer) Normalize(e *domain.RawEntry, locale domain.Locale) *domain.NormalizedEntry {
	return normalizeEntry(e, locale, e.FeaturedImage)
}

func (i *ShowcaseIndexer) Map(n *domain.NormalizedEntry) *domain.CatalogItem {
	return mapEntry(n, domain.ItemTypeShowcase, false)
}
