package indexer

import (
	"github.com/kapu/contentful-constructor-go/internal/contentful"
	"github.com/kapu/contentful-constructor-go/internal/util"
)

// DefaultContentType is returned for unresolved lookups. Falling back instead
// of failing is an "always produce something" policy inherited from the
// operator workflow; it can mask typo'd content-type ids, so Resolve also
// reports whether the match was exact.
const DefaultContentType = "projectShowcase"

// Registry maps content-type ids (with alias and casing normalization) to the
// fixed set of indexers.
type Registry struct {
	indexers map[string]Indexer
}

// NewRegistry builds the closed registry over the three supported content
// types.
func NewRegistry(client *contentful.Client) *Registry {
	r := &Registry{indexers: make(map[string]Indexer)}
	for _, idx := range []Indexer{
		NewShowcaseIndexer(client),
		NewTechTipIndexer(client),
		NewBuyingGuideIndexer(client),
	} {
		r.indexers[idx.ID()] = idx
	}
	return r
}

// CanonicalContentType maps a raw content-type id to its canonical key.
// Whitespace, hyphens and underscores are stripped and casing ignored, so
// plural and snake_case aliases all resolve. The second return reports
// whether the id matched a known content type.
func CanonicalContentType(id string) (string, bool) {
	switch util.NormalizeKey(id) {
	case "projectshowcase", "projectshowcases":
		return "projectShowcase", true
	case "techtip", "techtips":
		return "techTip", true
	case "buyingguide", "buyingguides":
		return "buyingGuide", true
	default:
		return "", false
	}
}

// Resolve returns the indexer for a content-type id. Unknown ids resolve to
// the default content type with exact=false.
func (r *Registry) Resolve(contentTypeID string) (idx Indexer, exact bool) {
	if key, ok := CanonicalContentType(contentTypeID); ok {
		return r.indexers[key], true
	}
	return r.indexers[DefaultContentType], false
}

// ContentTypes lists the canonical keys of all registered indexers.
func (r *Registry) ContentTypes() []string {
	keys := make([]string, 0, len(r.indexers))
	for key := range r.indexers {
		keys = append(keys, key)
	}
	return keys
}
