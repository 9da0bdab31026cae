package indexer

import (
	"context"

	"github.com/kapu/contentful-constructor-go/internal/contentful"
	"github.com/kapu/contentful-constructor-go/internal/domain"
)

// BuyingGuideIndexer indexes buying guide entries.
type BuyingGuideIndexer struct {
	client *contentful.Client
}

func NewBuyingGuideIndexer(client *contentful.Client) *BuyingGuideIndexer {
	return &BuyingGuideIndexer{client: client}
}

func (i *BuyingGuideIndexer) ID() string {
	return "buyingGuide"
}

func (i *BuyingGuideIndexer) FetchPage(ctx context.Context, limit, skip int) (*domain.Page, error) {
	return i.client.FetchBuyingGuidePage(ctx, limit, skip)
}

func (i *BuyingGuideIndexer) Normalize(e *domain.RawEntry, locale domain.Locale) *domain.NormalizedEntry {
	return normalizeEntry(e, locale, e.Image)
}

func (i *BuyingGuideIndexer) Map(n *domain.NormalizedEntry) *domain.CatalogItem {
	return mapEntry(n, domain.ItemTypeBuyingGuide, false)
}
