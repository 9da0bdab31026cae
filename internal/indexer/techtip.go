package indexer

import (
	"context"

	"github.com/kapu/contentful-constructor-go/internal/contentful"
	"github.com/kapu/contentful-constructor-go/internal/domain"
)

// TechTipIndexer indexes tech tip entries. Tech tips are the only content
// type whose catalog payload carries the source locale tag.
type TechTipIndexer struct {
	client *contentful.Client
}

func NewTechTipIndexer(client *contentful.Client) *TechTipIndexer {
	return &TechTipIndexer{client: client}
}

func (i *TechTipIndexer) ID() string {
	return "techTip"
}

func (i *TechTipIndexer) FetchPage(ctx context.Context, limit, skip int) (*domain.Page, error) {
	return i.client.FetchTechTipPage(ctx, limit, skip)
}

func (i *TechTipIndexer) Normalize(e *domain.RawEntry, locale domain.Locale) *domain.NormalizedEntry {
	return normalizeEntry(e, locale, e.Image)
}

func (i *TechTipIndexer) Map(n *domain.NormalizedEntry) *domain.CatalogItem {
	return mapEntry(n, domain.ItemTypeTechTip, true)
}
