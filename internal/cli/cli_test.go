package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// setupTestCLI builds a CLI over a temp database and captures its output.
func setupTestCLI(t *testing.T) (*CLI, *bytes.Buffer, func()) {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	configPath := filepath.Join(tmpDir, "config.yaml")

	c, err := NewWithArgs(&Args{
		DBPath:     &dbPath,
		ConfigPath: &configPath,
	})
	if err != nil {
		t.Fatalf("failed to create CLI: %v", err)
	}

	out := &bytes.Buffer{}
	c.out = out

	cleanup := func() {
		c.Close()
	}
	return c, out, cleanup
}

// writeContentFile creates a file to feed `item add`, avoiding stdin.
func writeContentFile(t *testing.T, content string) *string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "content.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write content file: %v", err)
	}
	return &path
}

func TestCLI_GroupAddAndList(t *testing.T) {
	c, out, cleanup := setupTestCLI(t)
	defer cleanup()

	err := c.Execute(&Args{Group: &GroupCmd{Add: &GroupAddCmd{Name: "Work"}}})
	if err != nil {
		t.Fatalf("group add error = %v", err)
	}
	if !strings.Contains(out.String(), "Work") {
		t.Errorf("output missing group name: %q", out.String())
	}

	out.Reset()
	if err := c.Execute(&Args{Group: &GroupCmd{List: &GroupListCmd{}}}); err != nil {
		t.Fatalf("group list error = %v", err)
	}
	listing := out.String()
	if !strings.Contains(listing, "Default") || !strings.Contains(listing, "Work") {
		t.Errorf("listing missing groups: %q", listing)
	}
	// The destination marker sits on the Default group until `group use`.
	if !strings.Contains(listing, "Default *") {
		t.Errorf("expected destination marker on Default: %q", listing)
	}
}

func TestCLI_GroupAddDuplicateMessage(t *testing.T) {
	c, _, cleanup := setupTestCLI(t)
	defer cleanup()

	if err := c.Execute(&Args{Group: &GroupCmd{Add: &GroupAddCmd{Name: "Work"}}}); err != nil {
		t.Fatalf("group add error = %v", err)
	}
	err := c.Execute(&Args{Group: &GroupCmd{Add: &GroupAddCmd{Name: "Work"}}})
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected friendly duplicate error, got %v", err)
	}
}

func TestCLI_GroupRmDefaultMessage(t *testing.T) {
	c, _, cleanup := setupTestCLI(t)
	defer cleanup()

	err := c.Execute(&Args{Group: &GroupCmd{Rm: &GroupRmCmd{ID: 1}}})
	if err == nil || !strings.Contains(err.Error(), "cannot be deleted") {
		t.Errorf("expected default-group error, got %v", err)
	}
}

func TestCLI_ItemAddListShow(t *testing.T) {
	c, out, cleanup := setupTestCLI(t)
	defer cleanup()

	file := writeContentFile(t, "captured text\n")
	if err := c.Execute(&Args{Item: &ItemCmd{Add: &ItemAddCmd{File: file}}}); err != nil {
		t.Fatalf("item add error = %v", err)
	}
	if !strings.Contains(out.String(), "Stored item") {
		t.Errorf("unexpected add output: %q", out.String())
	}

	out.Reset()
	if err := c.Execute(&Args{Item: &ItemCmd{List: &ItemListCmd{All: true}}}); err != nil {
		t.Fatalf("item list error = %v", err)
	}
	if !strings.Contains(out.String(), "captured text") {
		t.Errorf("listing missing item: %q", out.String())
	}

	out.Reset()
	if err := c.Execute(&Args{Item: &ItemCmd{Show: &ItemShowCmd{ID: 1}}}); err != nil {
		t.Fatalf("item show error = %v", err)
	}
	shown := out.String()
	if !strings.Contains(shown, "Type:    text") || !strings.Contains(shown, "captured text") {
		t.Errorf("unexpected show output: %q", shown)
	}
}

func TestCLI_ItemAddDetectsColor(t *testing.T) {
	c, out, cleanup := setupTestCLI(t)
	defer cleanup()

	file := writeContentFile(t, "#ff00ff\n")
	if err := c.Execute(&Args{Item: &ItemCmd{Add: &ItemAddCmd{File: file}}}); err != nil {
		t.Fatalf("item add error = %v", err)
	}

	out.Reset()
	if err := c.Execute(&Args{Item: &ItemCmd{Show: &ItemShowCmd{ID: 1}}}); err != nil {
		t.Fatalf("item show error = %v", err)
	}
	if !strings.Contains(out.String(), "Type:    color") {
		t.Errorf("expected color auto-detection, got %q", out.String())
	}
}

func TestCLI_ItemPinUnpin(t *testing.T) {
	c, out, cleanup := setupTestCLI(t)
	defer cleanup()

	file := writeContentFile(t, "pin me")
	if err := c.Execute(&Args{Item: &ItemCmd{Add: &ItemAddCmd{File: file}}}); err != nil {
		t.Fatalf("item add error = %v", err)
	}

	if err := c.Execute(&Args{Item: &ItemCmd{Pin: &ItemPinCmd{ID: 1}}}); err != nil {
		t.Fatalf("item pin error = %v", err)
	}

	out.Reset()
	if err := c.Execute(&Args{Item: &ItemCmd{List: &ItemListCmd{All: true}}}); err != nil {
		t.Fatalf("item list error = %v", err)
	}
	if !strings.Contains(out.String(), "pin") {
		t.Errorf("expected pin marker in listing: %q", out.String())
	}

	if err := c.Execute(&Args{Item: &ItemCmd{Unpin: &ItemUnpinCmd{ID: 1}}}); err != nil {
		t.Fatalf("item unpin error = %v", err)
	}
}

func TestCLI_ItemShowMissing(t *testing.T) {
	c, _, cleanup := setupTestCLI(t)
	defer cleanup()

	err := c.Execute(&Args{Item: &ItemCmd{Show: &ItemShowCmd{ID: 999}}})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestCLI_SubReplaceAndList(t *testing.T) {
	c, out, cleanup := setupTestCLI(t)
	defer cleanup()

	file := writeContentFile(t, "bonjour")
	if err := c.Execute(&Args{Item: &ItemCmd{Add: &ItemAddCmd{File: file}}}); err != nil {
		t.Fatalf("item add error = %v", err)
	}

	replace := func(text string) {
		t.Helper()
		err := c.Execute(&Args{Sub: &SubCmd{Replace: &SubReplaceCmd{
			ItemID: 1, Text: text, Tag: "translate",
		}}})
		if err != nil {
			t.Fatalf("sub replace error = %v", err)
		}
	}
	replace("hello")
	replace("good day")

	out.Reset()
	if err := c.Execute(&Args{Sub: &SubCmd{List: &SubListCmd{ItemID: 1}}}); err != nil {
		t.Fatalf("sub list error = %v", err)
	}
	listing := out.String()
	if strings.Contains(listing, "hello") {
		t.Errorf("replaced subitem still listed: %q", listing)
	}
	if !strings.Contains(listing, "good day") {
		t.Errorf("replacement missing: %q", listing)
	}
}

func TestCLI_SettingGetSet(t *testing.T) {
	c, out, cleanup := setupTestCLI(t)
	defer cleanup()

	err := c.Execute(&Args{Setting: &SettingCmd{Get: &SettingGetCmd{
		Key: "missing", Default: "fallback",
	}}})
	if err != nil {
		t.Fatalf("setting get error = %v", err)
	}
	if strings.TrimSpace(out.String()) != "fallback" {
		t.Errorf("expected fallback, got %q", out.String())
	}

	if err := c.Execute(&Args{Setting: &SettingCmd{Set: &SettingSetCmd{
		Key: "current_group_id", Value: "1",
	}}}); err != nil {
		t.Fatalf("setting set error = %v", err)
	}

	out.Reset()
	if err := c.Execute(&Args{Setting: &SettingCmd{Get: &SettingGetCmd{
		Key: "current_group_id",
	}}}); err != nil {
		t.Fatalf("setting get error = %v", err)
	}
	if strings.TrimSpace(out.String()) != "1" {
		t.Errorf("expected 1, got %q", out.String())
	}
}

func TestCLI_NoCommand(t *testing.T) {
	c, _, cleanup := setupTestCLI(t)
	defer cleanup()

	if err := c.Execute(&Args{}); err == nil {
		t.Error("expected error for missing command")
	}
}

func TestArgs_Validate(t *testing.T) {
	groupID := int64(1)

	tests := []struct {
		name    string
		args    *Args
		wantErr bool
	}{
		{"empty args", &Args{}, false},
		{
			"all and group conflict",
			&Args{Item: &ItemCmd{List: &ItemListCmd{All: true, Group: &groupID}}},
			true,
		},
		{
			"all alone",
			&Args{Item: &ItemCmd{List: &ItemListCmd{All: true}}},
			false,
		},
		{
			"valid content type",
			&Args{Item: &ItemCmd{Add: &ItemAddCmd{Type: "svg+xml"}}},
			false,
		},
		{
			"unknown content type",
			&Args{Item: &ItemCmd{Add: &ItemAddCmd{Type: "spreadsheet"}}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.args.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
