package history

import (
	"reflect"
	"strconv"
	"testing"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain http", "http://example.com", "http://example.com"},
		{"uppercase scheme", "HTTP://Example.com/Path", "http://Example.com/Path"},
		{"https kept", "HTTPS://example.com", "https://example.com"},
		{"www gets scheme", "www.example.com", "http://www.example.com"},
		{"bare host gets scheme", "example.com", "http://example.com"},
		{"trailing slash stripped", "https://example.com/", "https://example.com"},
		{"path trailing slash stripped", "https://example.com/docs/", "https://example.com/docs"},
		{"surrounding space trimmed", "  https://example.com  ", "https://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeURL(tt.input); got != tt.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractURLs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"no urls", "plain text without links", nil},
		{
			"single url",
			"read https://go.dev/doc/effective_go today",
			[]string{"https://go.dev/doc/effective_go"},
		},
		{
			"www without scheme",
			"visit www.example.com now",
			[]string{"http://www.example.com"},
		},
		{
			"duplicates collapse",
			"https://a.dev https://a.dev/ HTTPS://a.dev",
			[]string{"https://a.dev"},
		},
		{
			"order preserved",
			"first https://b.dev then https://a.dev",
			[]string{"https://b.dev", "https://a.dev"},
		},
		{
			"query and fragment survive",
			"https://example.com/search?q=go#top",
			[]string{"https://example.com/search?q=go#top"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractURLs(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractURLs(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractURLs_Cap(t *testing.T) {
	text := ""
	for i := 0; i < 30; i++ {
		text += "https://example.com/page" + strconv.Itoa(i) + " "
	}
	urls := ExtractURLs(text)
	if len(urls) != maxScanSubitems {
		t.Errorf("expected cap of %d urls, got %d", maxScanSubitems, len(urls))
	}
}

func TestExtractFilePaths(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"no paths", "nothing here", nil},
		{
			"backslash path",
			`open C:\Users\dev\notes.txt please`,
			[]string{`C:\Users\dev\notes.txt`},
		},
		{
			"forward slash path",
			"built at D:/projects/app/dist",
			[]string{"D:/projects/app/dist"},
		},
		{
			"trailing punctuation stripped",
			`see C:\logs\app.log, then retry`,
			[]string{`C:\logs\app.log`},
		},
		{
			"duplicates collapse",
			`C:\a\b.txt and C:\a\b.txt again`,
			[]string{`C:\a\b.txt`},
		},
		{
			"lowercase drive ignored",
			`c:\not\matched`,
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractFilePaths(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractFilePaths(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseColorText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"hex with hash", "#ff00ff", "#FF00FF", true},
		{"hex without hash", "ff00ff", "#FF00FF", true},
		{"hex with alpha", "#ff00ff80", "#FF00FF80", true},
		{"hex uppercased as is", "#AABBCC", "#AABBCC", true},
		{"short hex rejected", "#fff", "", false},
		{"rgb", "rgb(255, 0, 128)", "rgb(255, 0, 128)", true},
		{"rgb tight spacing", "rgb(1,2,3)", "rgb(1, 2, 3)", true},
		{"rgb case insensitive", "RGB(10, 20, 30)", "rgb(10, 20, 30)", true},
		{"rgb channel overflow", "rgb(300, 0, 0)", "", false},
		{"rgb channel 256 rejected", "rgb(0, 256, 0)", "", false},
		{"rgb channel 255 allowed", "rgb(0, 255, 0)", "rgb(0, 255, 0)", true},
		{"rgb leading zeros normalized", "rgb(007, 08, 0)", "rgb(7, 8, 0)", true},
		{"rgba float alpha", "rgba(255, 0, 0, 0.5)", "rgba(255, 0, 0, 0.5)", true},
		{"rgba alpha trailing zeros trimmed", "rgba(1, 2, 3, 0.250)", "rgba(1, 2, 3, 0.25)", true},
		{"rgba integer alpha rescaled", "rgba(1, 2, 3, 128)", "rgba(1, 2, 3, 0.502)", true},
		{"rgba unit alpha", "rgba(1, 2, 3, 1)", "rgba(1, 2, 3, 1)", true},
		{"rgba alpha overflow", "rgba(1, 2, 3, 1.5)", "", false},
		{"rgba channel overflow", "rgba(300, 0, 0, 0.5)", "", false},
		{"surrounding space trimmed", "  #123456  ", "#123456", true},
		{"plain text", "not a color", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseColorText(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseColorText(%q) = (%q, %v), want (%q, %v)",
					tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}
