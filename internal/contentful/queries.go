package contentful

import (
	"context"
	"encoding/json"

	"github.com/kapu/contentful-constructor-go/internal/constants"
	"github.com/kapu/contentful-constructor-go/internal/domain"
	"github.com/kapu/contentful-constructor-go/pkg/errors"
)

// Every query requests BOTH locale variants of each localized field under
// aliased keys so one fetch serves both locale fan-outs. Sort order is fixed
// to most-recently-published first for all content types.

const showcaseQuery = `
query ShowcasePage($limit: Int!, $skip: Int!, $localeEn: String!, $localeFr: String!) {
  projectShowcaseCollection(limit: $limit, skip: $skip, order: [sys_publishedAt_DESC]) {
    total
    items {
      sys { id }
      title_en: title(locale: $localeEn)
      title_fr: title(locale: $localeFr)
      slug_en: slug(locale: $localeEn)
      slug_fr: slug(locale: $localeFr)
      description_en: description(locale: $localeEn) { json }
      description_fr: description(locale: $localeFr) { json }
      summary_en: summary(locale: $localeEn)
      summary_fr: summary(locale: $localeFr)
      featuredImage { __typename altText title image { url } }
      contentfulMetadata { concepts { id } tags { id name } }
    }
  }
}`

const techTipQuery = `
query TechTipPage($limit: Int!, $skip: Int!, $localeEn: String!, $localeFr: String!) {
  techTipsCollection(limit: $limit, skip: $skip, order: [sys_publishedAt_DESC]) {
    total
    items {
      sys { id }
      title_en: title(locale: $localeEn)
      title_fr: title(locale: $localeFr)
      slug_en: slug(locale: $localeEn)
      slug_fr: slug(locale: $localeFr)
      description_en: description(locale: $localeEn) { json }
      description_fr: description(locale: $localeFr) { json }
      summary_en: summary(locale: $localeEn)
      summary_fr: summary(locale: $localeFr)
      image { __typename altText title image { url } }
      contentfulMetadata { concepts { id } tags { id name } }
    }
  }
}`

const buyingGuideQuery = `
query BuyingGuidePage($limit: Int!, $skip: Int!, $localeEn: String!, $localeFr: String!) {
  buyingGuideCollection(limit: $limit, skip: $skip, order: [sys_publishedAt_DESC]) {
    total
    items {
      sys { id }
      title_en: title(locale: $localeEn)
      title_fr: title(locale: $localeFr)
      slug_en: slug(locale: $localeEn)
      slug_fr: slug(locale: $localeFr)
      description_en: description(locale: $localeEn) { json }
      description_fr: description(locale: $localeFr) { json }
      summary_en: summary(locale: $localeEn)
      summary_fr: summary(locale: $localeFr)
      image { __typename altText title image { url } }
      contentfulMetadata { concepts { id } tags { id name } }
    }
  }
}`

// FetchShowcasePage retrieves one page of project showcases.
func (c *Client) FetchShowcasePage(ctx context.Context, limit, skip int) (*domain.Page, error) {
	return c.fetchCollectionPage(ctx, showcaseQuery, "projectShowcaseCollection", limit, skip)
}

// FetchTechTipPage retrieves one page of tech tips.
func (c *Client) FetchTechTipPage(ctx context.Context, limit, skip int) (*domain.Page, error) {
	return c.fetchCollectionPage(ctx, techTipQuery, "techTipsCollection", limit, skip)
}

// FetchBuyingGuidePage retrieves one page of buying guides.
func (c *Client) FetchBuyingGuidePage(ctx context.Context, limit, skip int) (*domain.Page, error) {
	return c.fetchCollectionPage(ctx, buyingGuideQuery, "buyingGuideCollection", limit, skip)
}

func (c *Client) fetchCollectionPage(ctx context.Context, query, collection string, limit, skip int) (*domain.Page, error) {
	variables := map[string]any{
		"limit":    limit,
		"skip":     skip,
		"localeEn": constants.ContentfulConfig.LocaleEN,
		"localeFr": constants.ContentfulConfig.LocaleFR,
	}

	data, err := c.Query(ctx, query, variables)
	if err != nil {
		return nil, err
	}

	var payload map[string]*domain.Page
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, errors.NewAPIError("failed to decode collection page", 502, map[string]any{
			"collection": collection,
		}).WithCause(err)
	}

	page := payload[collection]
	if page == nil {
		page = &domain.Page{}
	}
	if page.Items == nil {
		page.Items = []*domain.RawEntry{}
	}
	return page, nil
}
