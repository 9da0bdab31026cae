package domain

// Content-type discriminators carried in ItemData. They distinguish the three
// entry kinds sharing one destination index section.
const (
	ItemTypeShowcase    = "showcase"
	ItemTypeTechTip     = "techTip"
	ItemTypeBuyingGuide = "buyingGuide"
)

// CatalogItem is the canonical unit sent to the destination index. ID must be
// non-empty and unique within the batch for one locale/section; collisions
// overwrite last-wins on the destination since uploads are full replaces.
type CatalogItem struct {
	ID             string    `json:"id"`
	Name           string    `json:"name,omitempty"`
	SuggestedScore float64   `json:"suggested_score,omitempty"`
	Data           *ItemData `json:"data,omitempty"`
}

// ItemData is the metadata payload attached to a catalog item. ContentType is
// the discriminator; Locale is set only for content types that carry it.
type ItemData struct {
	ContentType string   `json:"contentType"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
	ImageAlt    string   `json:"image_alt"`
	Categories  []string `json:"categories"`
	Concepts    []string `json:"concepts"`
	Slug        string   `json:"slug"`
	Locale      string   `json:"locale,omitempty"`
}
