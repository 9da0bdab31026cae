package indexer

import (
	"context"

	"github.com/kapu/contentful-constructor-go/internal/constants"
	"github.com/kapu/contentful-constructor-go/internal/domain"
	"github.com/kapu/contentful-constructor-go/internal/util"
)

// Indexer bundles the three per-content-type capabilities the pipeline needs:
// fetching one page of bilingual raw entries, projecting an entry to a single
// locale, and mapping the projection to a catalog item.
type Indexer interface {
	// ID returns the canonical content-type key.
	ID() string
	// FetchPage retrieves one page of raw entries carrying both locales.
	FetchPage(ctx context.Context, limit, skip int) (*domain.Page, error)
	// Normalize projects a bilingual entry to a single locale. Pure, no I/O.
	Normalize(e *domain.RawEntry, locale domain.Locale) *domain.NormalizedEntry
	// Map converts a normalized entry to a catalog item. Pure, no I/O.
	Map(n *domain.NormalizedEntry) *domain.CatalogItem
}

// pickLocalized resolves one localized field: the locale-specific alias wins
// when non-empty, otherwise the default value. Absence stays absent.
func pickLocalized(localized, fallback string) string {
	if localized != "" {
		return localized
	}
	return fallback
}

func pickRichText(localized, fallback *domain.RichTextField) *domain.RichTextNode {
	if localized != nil && localized.JSON != nil {
		return localized.JSON
	}
	if fallback != nil {
		return fallback.JSON
	}
	return nil
}

// normalizeEntry implements the shared locale-resolution policy. The per-type
// indexers differ only in which image field the source model uses.
func normalizeEntry(e *domain.RawEntry, locale domain.Locale, image *domain.ImageRef) *domain.NormalizedEntry {
	n := &domain.NormalizedEntry{
		SysID:    e.Sys.ID,
		Image:    image,
		Metadata: e.Metadata,
		Locale:   locale,
	}

	if locale == domain.LocaleFR {
		n.Title = pickLocalized(e.TitleFR, e.Title)
		n.Slug = pickLocalized(e.SlugFR, e.Slug)
		n.Description = pickRichText(e.DescriptionFR, e.Description)
		n.SummaryHTML = e.SummaryFR
	} else {
		n.Title = pickLocalized(e.TitleEN, e.Title)
		n.Slug = pickLocalized(e.SlugEN, e.Slug)
		n.Description = pickRichText(e.DescriptionEN, e.Description)
		n.SummaryHTML = e.SummaryEN
	}

	return n
}

// mapEntry implements the shared catalog-item mapping. id prefers slug, then
// the raw identifier, then a slugified title; name falls back through title
// and id to "untitled".
func mapEntry(n *domain.NormalizedEntry, contentType string, withLocale bool) *domain.CatalogItem {
	id := n.Slug
	if id == "" {
		id = n.SysID
	}
	if id == "" {
		id = util.Slugify(n.Title)
	}

	name := n.Title
	if name == "" {
		name = id
	}
	if name == "" {
		name = "untitled"
	}

	desc := FlattenRichText(n.Description, constants.MapperConfig.MaxDescription)
	if desc == "" && n.SummaryHTML != "" {
		desc = FlattenHTML(n.SummaryHTML, constants.MapperConfig.MaxDescription)
	}

	var imageURL, imageAlt string
	if n.Image != nil {
		if n.Image.Image != nil {
			imageURL = n.Image.Image.URL
		}
		imageAlt = n.Image.AltText
		if imageAlt == "" {
			imageAlt = n.Image.Title
		}
	}

	categories := make([]string, 0)
	concepts := make([]string, 0)
	if n.Metadata != nil {
		for _, tag := range n.Metadata.Tags {
			if tag.Name != "" {
				categories = append(categories, tag.Name)
			}
		}
		for _, concept := range n.Metadata.Concepts {
			if concept.ID != "" {
				concepts = append(concepts, concept.ID)
			}
		}
	}

	data := &domain.ItemData{
		ContentType: contentType,
		Description: desc,
		ImageURL:    imageURL,
		ImageAlt:    imageAlt,
		Categories:  categories,
		Concepts:    concepts,
		Slug:        n.Slug,
	}
	if withLocale {
		data.Locale = n.Locale.Tag()
	}

	return &domain.CatalogItem{
		ID:   id,
		Name: name,
		Data: data,
	}
}
