package memstore

import (
	"errors"
	"testing"

	"github.com/yiblet/clipvault/internal/store"
)

func addTestItem(t *testing.T, m *MemoryStore, groupID int64, text string, createdAt int64) int64 {
	t.Helper()

	id, err := m.Items().Create(&store.CreateItemInput{
		ContentType: store.TypeText,
		ContentText: text,
		CreatedAt:   createdAt,
		GroupID:     groupID,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return id
}

func TestNewMemoryStore(t *testing.T) {
	m := NewMemoryStore(300)

	groups, err := m.Groups().List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(groups) != 1 || groups[0].Name != store.DefaultGroupName {
		t.Fatalf("expected a single Default group, got %+v", groups)
	}
	if groups[0].ID != 1 {
		t.Errorf("Default group id = %d, want 1", groups[0].ID)
	}
}

func TestMemoryGroupStore_DuplicateName(t *testing.T) {
	m := NewMemoryStore(300)

	id, err := m.Groups().Create("Work")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := m.Groups().Create("Work"); !errors.Is(err, store.ErrDuplicateName) {
		t.Errorf("Create duplicate: expected ErrDuplicateName, got %v", err)
	}
	if err := m.Groups().Rename(id, store.DefaultGroupName); !errors.Is(err, store.ErrDuplicateName) {
		t.Errorf("Rename duplicate: expected ErrDuplicateName, got %v", err)
	}

	// Renaming to its own current name is allowed.
	if err := m.Groups().Rename(id, "Work"); err != nil {
		t.Errorf("Rename to own name: error = %v, want nil", err)
	}
}

func TestMemoryGroupStore_DeleteDefaultRefused(t *testing.T) {
	m := NewMemoryStore(300)

	if err := m.Groups().Delete(1); !errors.Is(err, store.ErrDefaultGroup) {
		t.Errorf("expected ErrDefaultGroup, got %v", err)
	}
}

func TestMemoryGroupStore_DeleteCascades(t *testing.T) {
	m := NewMemoryStore(300)

	groupID, err := m.Groups().Create("Scratch")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	itemID := addTestItem(t, m, groupID, "doomed", 1000)
	if _, err := m.Subitems().Create(itemID, "https://example.com", nil, "url"); err != nil {
		t.Fatalf("Create() subitem error = %v", err)
	}

	if err := m.Groups().Delete(groupID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	item, err := m.Items().Get(itemID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if item != nil {
		t.Error("expected item to be deleted with its group")
	}
	subs, err := m.Subitems().List(itemID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("expected no orphan subitems, got %d", len(subs))
	}
}

func TestMemoryGroupStore_UpdatePositions(t *testing.T) {
	m := NewMemoryStore(300)

	workID, _ := m.Groups().Create("Work")
	homeID, _ := m.Groups().Create("Home")

	if err := m.Groups().UpdatePositions([]int64{homeID, workID, 1}); err != nil {
		t.Fatalf("UpdatePositions() error = %v", err)
	}

	groups, err := m.Groups().List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []int64{homeID, workID, 1}
	for i, group := range groups {
		if group.ID != want[i] {
			t.Errorf("position %d: expected group %d, got %d", i, want[i], group.ID)
		}
	}
}

func TestMemoryItemStore_Ordering(t *testing.T) {
	m := NewMemoryStore(300)
	groupID := int64(1)

	a := addTestItem(t, m, groupID, "a", 1000)
	b := addTestItem(t, m, groupID, "b", 2000)
	c := addTestItem(t, m, groupID, "c", 3000)
	d := addTestItem(t, m, groupID, "d", 4000)

	if err := m.Items().SetPinned(a, true); err != nil {
		t.Fatalf("SetPinned() error = %v", err)
	}
	if err := m.Items().SetPinned(b, true); err != nil {
		t.Fatalf("SetPinned() error = %v", err)
	}
	if err := m.Items().TouchLastUsed(c, 9000); err != nil {
		t.Fatalf("TouchLastUsed() error = %v", err)
	}

	items, err := m.Items().List(&store.ListItemsQuery{GroupID: &groupID})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []int64{a, b, c, d}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i, item := range items {
		if item.ID != want[i] {
			t.Errorf("position %d: expected item %d, got %d", i, want[i], item.ID)
		}
	}
}

func TestMemoryItemStore_SearchFilter(t *testing.T) {
	m := NewMemoryStore(300)

	addTestItem(t, m, 1, "alpha beta", 1000)
	match := addTestItem(t, m, 1, "beta gamma", 2000)

	items, err := m.Items().List(&store.ListItemsQuery{Search: "beta g"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 1 || items[0].ID != match {
		t.Fatalf("expected only item %d to match, got %d items", match, len(items))
	}
}

func TestMemoryItemStore_PreviewShape(t *testing.T) {
	m := NewMemoryStore(300)
	groupID := int64(1)
	previewText := "small"

	tests := []struct {
		name        string
		contentType string
		contentText string
		contentBlob []byte
		previewText *string
		previewBlob []byte

		wantText    string
		wantBlob    bool
		wantHasFull bool
	}{
		{
			name:        "text with preview substitutes text",
			contentType: store.TypeText,
			contentText: "full text payload",
			previewText: &previewText,
			previewBlob: []byte("png"),
			wantText:    "small",
			wantBlob:    false,
			wantHasFull: false,
		},
		{
			name:        "text without preview keeps full content",
			contentType: store.TypeText,
			contentText: "unpreviewable",
			wantText:    "unpreviewable",
			wantBlob:    false,
			wantHasFull: true,
		},
		{
			name:        "html always keeps blob and full flag",
			contentType: store.TypeHTML,
			contentText: "rendered text",
			contentBlob: []byte("<b>raw</b>"),
			previewText: &previewText,
			previewBlob: []byte("png"),
			wantText:    "small",
			wantBlob:    true,
			wantHasFull: true,
		},
		{
			name:        "drawio keeps descriptor text",
			contentType: store.TypeDrawio,
			contentText: "compressed-descriptor",
			contentBlob: []byte("png-export"),
			previewText: &previewText,
			previewBlob: []byte("png"),
			wantText:    "compressed-descriptor",
			wantBlob:    false,
			wantHasFull: false,
		},
		{
			name:        "image without preview keeps blob for lazy build",
			contentType: store.TypeImage,
			contentBlob: []byte("jpeg-bytes"),
			wantText:    "",
			wantBlob:    true,
			wantHasFull: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := m.Items().Create(&store.CreateItemInput{
				ContentType: tt.contentType,
				ContentText: tt.contentText,
				ContentBlob: tt.contentBlob,
				PreviewText: tt.previewText,
				PreviewBlob: tt.previewBlob,
				CreatedAt:   1000,
				GroupID:     groupID,
			})
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			items, err := m.Items().List(&store.ListItemsQuery{
				GroupID:      &groupID,
				PreviewsOnly: true,
			})
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}

			var got *store.Item
			for _, item := range items {
				if item.ID == id {
					got = item
				}
			}
			if got == nil {
				t.Fatalf("item %d missing from listing", id)
			}

			if got.ContentText != tt.wantText {
				t.Errorf("ContentText = %q, want %q", got.ContentText, tt.wantText)
			}
			if (len(got.ContentBlob) > 0) != tt.wantBlob {
				t.Errorf("ContentBlob present = %v, want %v", len(got.ContentBlob) > 0, tt.wantBlob)
			}
			if got.HasFullContent != tt.wantHasFull {
				t.Errorf("HasFullContent = %v, want %v", got.HasFullContent, tt.wantHasFull)
			}
		})
	}
}

func TestMemoryItemStore_Latest(t *testing.T) {
	m := NewMemoryStore(300)

	latest, err := m.Items().Latest(1)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest != nil {
		t.Error("expected nil latest for empty group")
	}

	old := addTestItem(t, m, 1, "old", 1000)
	addTestItem(t, m, 1, "new", 2000)
	if err := m.Items().TouchLastUsed(old, 5000); err != nil {
		t.Fatalf("TouchLastUsed() error = %v", err)
	}

	latest, err = m.Items().Latest(1)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest == nil || latest.ID != old {
		t.Errorf("expected latest = %d, got %+v", old, latest)
	}
}

func TestMemoryRetention_ScenarioA(t *testing.T) {
	m := NewMemoryStore(2)

	a := addTestItem(t, m, 1, "A", 1000)
	b := addTestItem(t, m, 1, "B", 2000)
	c := addTestItem(t, m, 1, "C", 3000)

	groupID := int64(1)
	items, err := m.Items().List(&store.ListItemsQuery{GroupID: &groupID})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items after pruning, got %d", len(items))
	}
	if items[0].ID != c || items[1].ID != b {
		t.Errorf("expected survivors [C B], got [%d %d]", items[0].ID, items[1].ID)
	}

	gone, _ := m.Items().Get(a)
	if gone != nil {
		t.Error("expected A to be evicted")
	}
}

func TestMemoryRetention_ScenarioB(t *testing.T) {
	m := NewMemoryStore(2)

	a := addTestItem(t, m, 1, "A", 1000)
	b := addTestItem(t, m, 1, "B", 2000)
	if err := m.Items().SetPinned(a, true); err != nil {
		t.Fatalf("SetPinned() error = %v", err)
	}
	c := addTestItem(t, m, 1, "C", 3000)
	d := addTestItem(t, m, 1, "D", 4000)

	groupID := int64(1)
	items, err := m.Items().List(&store.ListItemsQuery{GroupID: &groupID})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	survivors := make(map[int64]bool)
	for _, item := range items {
		survivors[item.ID] = true
	}
	if !survivors[a] {
		t.Error("pinned A must survive")
	}
	if survivors[b] {
		t.Error("unpinned B must be evicted")
	}
	if !survivors[c] || !survivors[d] {
		t.Error("C and D fill the unpinned cap and must survive")
	}
}

func TestMemoryRetention_CapDisabled(t *testing.T) {
	m := NewMemoryStore(0)

	for i := int64(0); i < 10; i++ {
		addTestItem(t, m, 1, "item", 1000+i)
	}

	groupID := int64(1)
	items, err := m.Items().List(&store.ListItemsQuery{GroupID: &groupID})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 10 {
		t.Errorf("expected all 10 items retained with cap disabled, got %d", len(items))
	}
}

func TestMemorySubitemStore_TagReplace(t *testing.T) {
	m := NewMemoryStore(300)

	itemID := addTestItem(t, m, 1, "source", 1000)
	if _, err := m.Subitems().Create(itemID, "first", nil, "Translate"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := m.Subitems().DeleteByTag(itemID, "translate"); err != nil {
		t.Fatalf("DeleteByTag() error = %v", err)
	}
	if _, err := m.Subitems().Create(itemID, "second", nil, "translate"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	subs, err := m.Subitems().List(itemID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(subs) != 1 || subs[0].Text != "second" {
		t.Fatalf("expected sole subitem with second text, got %+v", subs)
	}
}

func TestMemorySubitemStore_NegativeIDDeleteIsNoop(t *testing.T) {
	m := NewMemoryStore(300)

	if err := m.Subitems().Delete(-1); err != nil {
		t.Errorf("Delete(-1) error = %v, want nil", err)
	}
}

func TestMemorySettingStore_Upsert(t *testing.T) {
	m := NewMemoryStore(300)

	value, err := m.Settings().Get("missing", "fallback")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if value != "fallback" {
		t.Errorf("expected fallback, got %q", value)
	}

	if err := m.Settings().Set("k", "1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := m.Settings().Set("k", "2"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	value, _ = m.Settings().Get("k", "")
	if value != "2" {
		t.Errorf("expected last write 2, got %q", value)
	}
}

func TestMemoryStore_ImplementsStore(t *testing.T) {
	var _ store.Store = NewMemoryStore(300)
}
