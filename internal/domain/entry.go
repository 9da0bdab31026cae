package domain

// Locale identifies one of the two supported content locales.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleFR Locale = "fr"
)

// Tag returns the CMS locale code carried in catalog item payloads.
func (l Locale) Tag() string {
	if l == LocaleFR {
		return "fr"
	}
	return "en-US"
}

// Sys carries the CMS system metadata for an entry. The id is stable across
// runs and acts as the fallback primary key.
type Sys struct {
	ID string `json:"id"`
}

// RichTextNode is one node of a CMS rich-text document. Text leaves have
// NodeType "text" and a Value; every other node only contributes children.
type RichTextNode struct {
	NodeType string          `json:"nodeType"`
	Value    string          `json:"value,omitempty"`
	Content  []*RichTextNode `json:"content,omitempty"`
}

// RichTextField wraps the rich-text document as delivered by the GraphQL API.
type RichTextField struct {
	JSON *RichTextNode `json:"json,omitempty"`
}

type ImageFile struct {
	URL string `json:"url"`
}

type ImageRef struct {
	Typename string     `json:"__typename,omitempty"`
	AltText  string     `json:"altText,omitempty"`
	Title    string     `json:"title,omitempty"`
	Image    *ImageFile `json:"image,omitempty"`
}

type MetadataTag struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type MetadataConcept struct {
	ID string `json:"id,omitempty"`
}

type EntryMetadata struct {
	Tags     []MetadataTag     `json:"tags,omitempty"`
	Concepts []MetadataConcept `json:"concepts,omitempty"`
}

// RawEntry is a CMS record carrying BOTH locale variants of every localized
// field under aliased keys, exactly as the GraphQL queries request them.
// Read-only; fetched fresh on every run and never persisted.
type RawEntry struct {
	Sys Sys `json:"sys"`

	Title   string `json:"title,omitempty"`
	TitleEN string `json:"title_en,omitempty"`
	TitleFR string `json:"title_fr,omitempty"`

	Slug   string `json:"slug,omitempty"`
	SlugEN string `json:"slug_en,omitempty"`
	SlugFR string `json:"slug_fr,omitempty"`

	Description   *RichTextField `json:"description,omitempty"`
	DescriptionEN *RichTextField `json:"description_en,omitempty"`
	DescriptionFR *RichTextField `json:"description_fr,omitempty"`

	// Legacy long-text summary; may contain HTML markup. Used only when the
	// rich-text description is absent.
	SummaryEN string `json:"summary_en,omitempty"`
	SummaryFR string `json:"summary_fr,omitempty"`

	Image         *ImageRef `json:"image,omitempty"`
	FeaturedImage *ImageRef `json:"featuredImage,omitempty"`

	Metadata *EntryMetadata `json:"contentfulMetadata,omitempty"`
}

// NormalizedEntry is a RawEntry projected to a single locale. Localized
// fields are resolved to one value; missing fields stay empty and the mapper
// supplies fallbacks.
type NormalizedEntry struct {
	SysID       string
	Title       string
	Slug        string
	Description *RichTextNode
	SummaryHTML string
	Image       *ImageRef
	Metadata    *EntryMetadata
	Locale      Locale
}

// Page is one page of entries from the content source together with the
// total reported by the source.
type Page struct {
	Total int         `json:"total"`
	Items []*RawEntry `json:"items"`
}
