package history

import (
	"regexp"
	"strconv"
	"strings"
)

// maxScanSubitems caps how many URLs or file paths one capture can spawn.
const maxScanSubitems = 20

var urlPattern = regexp.MustCompile(
	`(?i)(?:(?:https?://)|(?:www\.))[\w\-._~:/?#\[\]@!$&'()*+,;=%]+`,
)

// pathPattern matches Windows drive paths with an upper-case drive letter,
// stopping before trailing :line(:col) suffixes from compiler output.
var pathPattern = regexp.MustCompile(
	`[A-Z]:[\\/][^\s<>"|*?:]+(?:[\\/][^\s<>"|*?:]+)*`,
)

// NormalizeURL lowercases the scheme, defaults a missing scheme to http and
// strips a trailing slash so near-identical links dedupe.
func NormalizeURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(u), "www.") {
		u = "http://" + u
	}

	lower := strings.ToLower(u)
	switch {
	case strings.HasPrefix(lower, "http://"):
		u = "http://" + u[len("http://"):]
	case strings.HasPrefix(lower, "https://"):
		u = "https://" + u[len("https://"):]
	default:
		u = "http://" + u
	}

	return strings.TrimSuffix(u, "/")
}

// ExtractURLs finds distinct normalized URLs in text, preserving first-seen
// order, up to maxScanSubitems.
func ExtractURLs(text string) []string {
	if text == "" {
		return nil
	}

	var urls []string
	seen := make(map[string]bool)
	for _, match := range urlPattern.FindAllString(text, -1) {
		url := NormalizeURL(match)
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		urls = append(urls, url)
		if len(urls) >= maxScanSubitems {
			break
		}
	}
	return urls
}

// ExtractFilePaths finds distinct absolute file paths in text, preserving
// first-seen order, up to maxScanSubitems.
func ExtractFilePaths(text string) []string {
	if text == "" {
		return nil
	}

	var paths []string
	seen := make(map[string]bool)
	for _, match := range pathPattern.FindAllString(text, -1) {
		path := strings.Trim(strings.TrimSpace(match), `"'`)
		if path == "" || strings.HasPrefix(strings.ToLower(path), "http://") ||
			strings.HasPrefix(strings.ToLower(path), "https://") {
			continue
		}
		path = strings.TrimRight(path, ".,;)")
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		paths = append(paths, path)
		if len(paths) >= maxScanSubitems {
			break
		}
	}
	return paths
}

var (
	hexColorPattern = regexp.MustCompile(`^#?([0-9a-fA-F]{6})([0-9a-fA-F]{2})?$`)
	rgbColorPattern = regexp.MustCompile(
		`(?i)^rgb\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*\)$`,
	)
	rgbaColorPattern = regexp.MustCompile(
		`(?i)^rgba\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*([0-9]*\.?[0-9]+)\s*\)$`,
	)
)

// ParseColorText recognizes hex (#RRGGBB with optional alpha), rgb() and
// rgba() color notations, returning the normalized form and true on a match.
// Used by capture callers to classify plain text as a color item.
func ParseColorText(text string) (string, bool) {
	value := strings.TrimSpace(text)
	if value == "" {
		return "", false
	}

	if m := hexColorPattern.FindStringSubmatch(value); m != nil {
		return "#" + strings.ToUpper(m[1]+m[2]), true
	}
	if m := rgbColorPattern.FindStringSubmatch(value); m != nil {
		channels, ok := parseChannels(m[1:])
		if !ok {
			return "", false
		}
		return "rgb(" + channels + ")", true
	}
	if m := rgbaColorPattern.FindStringSubmatch(value); m != nil {
		channels, ok := parseChannels(m[1:4])
		if !ok {
			return "", false
		}
		alpha, ok := normalizeAlpha(m[4])
		if !ok {
			return "", false
		}
		return "rgba(" + channels + ", " + alpha + ")", true
	}
	return "", false
}

// parseChannels validates 0-255 color channels and renders them comma-joined
// without leading zeros.
func parseChannels(parts []string) (string, bool) {
	rendered := make([]string, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n > 255 {
			return "", false
		}
		rendered[i] = strconv.Itoa(n)
	}
	return strings.Join(rendered, ", "), true
}

// normalizeAlpha accepts a 0-1 float or a 0-255 integer alpha component and
// renders it as a 0-1 value with at most three decimals.
func normalizeAlpha(raw string) (string, bool) {
	var alpha float64
	if strings.Contains(raw, ".") {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return "", false
		}
		alpha = f
	} else {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return "", false
		}
		if n > 1 {
			alpha = float64(n) / 255
		} else {
			alpha = float64(n)
		}
	}
	if alpha < 0 || alpha > 1 {
		return "", false
	}

	s := strconv.FormatFloat(alpha, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s, true
}
