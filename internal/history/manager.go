// Package history layers clipboard business logic on top of the store
// interfaces: capture-time dedup, subitem scanning, tag-replace semantics
// and the persisted group selection state.
package history

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yiblet/clipvault/internal/store"
)

// Settings keys for the persisted group selection.
const (
	SettingDestinationGroup = "destination_group_id"
	SettingCurrentGroup     = "current_group_id"
)

// Subitem tags produced by the capture scanners and note/replace operations.
const (
	TagURL  = "url"
	TagFile = "file"
	TagNote = "note"
)

// Manager coordinates captures and group state over a store.
type Manager struct {
	store store.Store
}

// NewManager creates a manager over the given store.
func NewManager(s store.Store) *Manager {
	return &Manager{store: s}
}

// Store exposes the underlying store for direct reads.
func (m *Manager) Store() store.Store {
	return m.store
}

// Close releases store resources.
func (m *Manager) Close() error {
	return m.store.Close()
}

// CaptureInput describes one classified clipboard snapshot.
type CaptureInput struct {
	ContentType string
	ContentText string
	ContentBlob []byte
	PreviewText *string
	PreviewBlob []byte

	// GroupID is the destination group. Zero means the configured
	// destination group (falling back to Default).
	GroupID int64
}

// Capture stores a clipboard snapshot, deduplicating against the freshest
// item of the destination group: an identical unpinned duplicate is replaced
// by the new capture, while an identical pinned duplicate suppresses the
// capture and its id is returned instead. URL and file-path subitems are
// scanned out of the text content.
func (m *Manager) Capture(input *CaptureInput) (int64, error) {
	groupID := input.GroupID
	if groupID == 0 {
		var err error
		groupID, err = m.DestinationGroupID()
		if err != nil {
			return 0, err
		}
	}

	latest, err := m.store.Items().Latest(groupID)
	if err != nil {
		return 0, err
	}
	if latest != nil &&
		latest.ContentType == input.ContentType &&
		latest.ContentText == input.ContentText &&
		bytes.Equal(latest.ContentBlob, input.ContentBlob) {
		if latest.Pinned {
			return latest.ID, nil
		}
		if err := m.store.Items().Delete(latest.ID); err != nil {
			return 0, err
		}
	}

	id, err := m.store.Items().Create(&store.CreateItemInput{
		ContentType: input.ContentType,
		ContentText: input.ContentText,
		ContentBlob: input.ContentBlob,
		PreviewText: input.PreviewText,
		PreviewBlob: input.PreviewBlob,
		CreatedAt:   time.Now().Unix(),
		GroupID:     groupID,
	})
	if err != nil {
		return 0, err
	}

	// Scanner misses must not fail the capture.
	_ = m.scanSubitems(id, input.ContentText)

	return id, nil
}

// scanSubitems extracts URL and file-path subitems from captured text.
func (m *Manager) scanSubitems(itemID int64, text string) error {
	existing, err := m.store.Subitems().List(itemID)
	if err != nil {
		return err
	}

	seenURLs := make(map[string]bool)
	seenFiles := make(map[string]bool)
	for _, sub := range existing {
		switch {
		case strings.EqualFold(sub.Tag, TagURL):
			seenURLs[NormalizeURL(sub.Text)] = true
		case strings.EqualFold(sub.Tag, TagFile):
			seenFiles[sub.Text] = true
		}
	}

	for _, url := range ExtractURLs(text) {
		if seenURLs[url] {
			continue
		}
		if _, err := m.store.Subitems().Create(itemID, url, []string{}, TagURL); err != nil {
			return err
		}
	}
	for _, path := range ExtractFilePaths(text) {
		if seenFiles[path] {
			continue
		}
		if _, err := m.store.Subitems().Create(itemID, path, []string{}, TagFile); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceSubitem clears all subitems of the tag on the item, then inserts a
// fresh one. Single-slot semantics for operation results such as
// translations.
func (m *Manager) ReplaceSubitem(itemID int64, text, tag string) (int64, error) {
	if err := m.store.Subitems().DeleteByTag(itemID, tag); err != nil {
		return 0, err
	}
	return m.store.Subitems().Create(itemID, text, nil, tag)
}

// AddNote appends a note subitem. Notes accumulate rather than replace.
func (m *Manager) AddNote(itemID int64, text string) (int64, error) {
	return m.store.Subitems().Create(itemID, text, nil, TagNote)
}

// PromoteSubitem creates a new text item from subitem text in the given
// group (zero means the destination group).
func (m *Manager) PromoteSubitem(text string, groupID int64) (int64, error) {
	if text == "" {
		return 0, fmt.Errorf("cannot promote empty subitem text")
	}
	return m.Capture(&CaptureInput{
		ContentType: store.TypeText,
		ContentText: text,
		GroupID:     groupID,
	})
}

// Touch marks an item as just used, moving it to the top of the unpinned
// ordering.
func (m *Manager) Touch(itemID int64) error {
	return m.store.Items().TouchLastUsed(itemID, time.Now().Unix())
}

// IsDefaultGroup reports whether the id names the Default group.
func (m *Manager) IsDefaultGroup(groupID int64) (bool, error) {
	group, err := m.store.Groups().GetByName(store.DefaultGroupName)
	if err != nil {
		return false, err
	}
	return group != nil && group.ID == groupID, nil
}

// DefaultGroupID returns the id of the Default group, creating it if it went
// missing.
func (m *Manager) DefaultGroupID() (int64, error) {
	group, err := m.store.Groups().GetByName(store.DefaultGroupName)
	if err != nil {
		return 0, err
	}
	if group != nil {
		return group.ID, nil
	}
	return m.store.Groups().Create(store.DefaultGroupName)
}

// DeleteGroup removes a group after checking it is not Default.
func (m *Manager) DeleteGroup(groupID int64) error {
	isDefault, err := m.IsDefaultGroup(groupID)
	if err != nil {
		return err
	}
	if isDefault {
		return store.ErrDefaultGroup
	}
	return m.store.Groups().Delete(groupID)
}

// DestinationGroupID returns the group new captures land in. A missing or
// stale setting falls back to the Default group and is re-persisted.
func (m *Manager) DestinationGroupID() (int64, error) {
	raw, err := m.store.Settings().Get(SettingDestinationGroup, "")
	if err != nil {
		return 0, err
	}

	gid, parseErr := strconv.ParseInt(raw, 10, 64)
	valid := parseErr == nil
	if valid {
		valid, err = m.store.Groups().Exists(gid)
		if err != nil {
			return 0, err
		}
	}
	if !valid {
		gid, err = m.DefaultGroupID()
		if err != nil {
			return 0, err
		}
		if err := m.store.Settings().Set(SettingDestinationGroup, strconv.FormatInt(gid, 10)); err != nil {
			return 0, err
		}
	}
	return gid, nil
}

// SetDestinationGroup persists the capture destination. Unknown groups are
// rejected.
func (m *Manager) SetDestinationGroup(groupID int64) error {
	exists, err := m.store.Groups().Exists(groupID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("group %d does not exist", groupID)
	}
	return m.store.Settings().Set(SettingDestinationGroup, strconv.FormatInt(groupID, 10))
}

// CurrentGroupID returns the persisted display selection; nil selects the
// "All" view. A stale id degrades to nil.
func (m *Manager) CurrentGroupID() (*int64, error) {
	raw, err := m.store.Settings().Get(SettingCurrentGroup, "")
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	gid, parseErr := strconv.ParseInt(raw, 10, 64)
	if parseErr != nil {
		return nil, nil
	}
	exists, err := m.store.Groups().Exists(gid)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return &gid, nil
}

// SetCurrentGroup persists the display selection; nil selects the "All"
// view.
func (m *Manager) SetCurrentGroup(groupID *int64) error {
	if groupID == nil {
		return m.store.Settings().Set(SettingCurrentGroup, "")
	}
	return m.store.Settings().Set(SettingCurrentGroup, strconv.FormatInt(*groupID, 10))
}
