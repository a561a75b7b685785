package history

import (
	"encoding/json"
	"strings"

	"github.com/yiblet/clipvault/internal/store"
)

// labelLimit caps the single-line label length produced for list rows.
const labelLimit = 160

// Label renders a one-line display label for an item, prefixed by a marker
// for non-text content types.
func Label(item *store.Item) string {
	switch item.ContentType {
	case store.TypeImage:
		return "[IMG]"
	case store.TypeSVG:
		return "[SVG]"
	case store.TypeDrawio:
		return "[DRAWIO]"
	case store.TypeHTML:
		text := flattenText(item.DisplayText())
		if text == "" {
			return "[HTML]"
		}
		return "[HTML] " + TruncateLabel(text, labelLimit)
	case store.TypeColor:
		return "[COLOR] " + colorLabel(item.ContentText)
	default:
		text := flattenText(item.DisplayText())
		if text == "" {
			return "[Empty]"
		}
		return TruncateLabel(text, labelLimit)
	}
}

// colorLabel extracts a display string from a color item's JSON payload
// ({"hex": "#FF00FF", "text": "..."}), degrading to the raw text.
func colorLabel(raw string) string {
	var payload struct {
		Hex  string `json:"hex"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err == nil {
		if text := strings.TrimSpace(payload.Text); text != "" {
			return text
		}
		if hex := strings.TrimSpace(payload.Hex); hex != "" {
			return hex
		}
	}
	if clean := strings.TrimSpace(raw); clean != "" {
		return clean
	}
	return "[COLOR]"
}

// flattenText collapses newlines so a label stays on one line.
func flattenText(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
}

// TruncateLabel ensures a label is at most limit characters, appending "..."
// when truncation happens.
func TruncateLabel(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
