package store

// Content types recognized by the engine. The storage layer treats these as
// opaque classifiers; only the two-tier read path special-cases html (blob
// always needed for display) and drawio (text payload is the compressed
// diagram descriptor, kept even in preview mode).
const (
	TypeText   = "text"
	TypeHTML   = "html"
	TypeImage  = "image"
	TypeSVG    = "svg+xml"
	TypeDrawio = "drawio"
	TypeColor  = "color"
)

// DefaultGroupName is the name of the always-present group that cannot be
// deleted.
const DefaultGroupName = "Default"

// Group is a named bucket of items. Position defines the user-visible
// ordering; newly created groups sort last.
type Group struct {
	ID       int64
	Name     string
	Position int64
}

// Item is one clipboard entry.
// All timestamps are unix seconds. ContentText is the canonical textual
// representation and is never empty-by-accident: even binary types carry a
// textual form used for search and dedup (empty string when truly absent).
type Item struct {
	ID          int64
	ContentType string
	ContentText string

	// ContentBlob is the optional binary payload (raw HTML bytes, image
	// bytes, SVG bytes). In preview-mode listings it is suppressed unless
	// still needed; see HasFullContent.
	ContentBlob []byte

	// PreviewText and PreviewBlob are derived, possibly-absent lightweight
	// renderings for list display.
	PreviewText *string
	PreviewBlob []byte

	// ContentLength is the length of the stored content text, available even
	// when a preview-mode listing substituted the text itself.
	ContentLength int64

	CreatedAt  int64
	LastUsedAt *int64

	Pinned bool
	// PinnedAt is non-nil iff Pinned is true.
	PinnedAt *int64

	GroupID int64

	// HasFullContent reports whether ContentText/ContentBlob carry the full
	// payload. Preview-mode listings set it false for items whose blob was
	// suppressed; callers must re-fetch via Get before operations that need
	// full fidelity.
	HasFullContent bool
}

// DisplayText returns the textual content to render in a list row, falling
// back to the preview when the main text is empty.
func (it *Item) DisplayText() string {
	if it.ContentText != "" {
		return it.ContentText
	}
	if it.PreviewText != nil {
		return *it.PreviewText
	}
	return ""
}

// CreateItemInput carries the fields for inserting a new item. Items are
// always inserted unpinned.
type CreateItemInput struct {
	ContentType string
	ContentText string
	ContentBlob []byte
	PreviewText *string
	PreviewBlob []byte

	// CreatedAt is the capture timestamp in unix seconds. If zero, the
	// storage layer uses the current time.
	CreatedAt int64

	GroupID int64
}

// ListItemsQuery selects and shapes the items returned by ItemStore.List.
type ListItemsQuery struct {
	// GroupID restricts the listing to one group; nil means all groups (the
	// "All" virtual view).
	GroupID *int64

	// Search, when non-empty, restricts to items whose content text contains
	// the substring. Richer filtering is a caller concern.
	Search string

	// PreviewsOnly substitutes lightweight fields to keep list refreshes
	// cheap: preview text replaces content text (except for drawio items),
	// and blobs are suppressed unless no preview exists yet or the type is
	// html.
	PreviewsOnly bool
}

// Subitem is a small tagged annotation attached to an item, such as an
// extracted URL, a file path, or a translation result.
type Subitem struct {
	ID     int64
	ItemID int64
	Text   string

	// Icons is an ordered list of icon identifiers.
	Icons []string

	// Tag classifies the subitem ("url", "file", "translate", "note"). Tags
	// other than "note" are single-slot: a replace operation clears the tag
	// before inserting fresh.
	Tag string

	CreatedAt int64
}
