// Package memstore provides an in-memory implementation of the store
// interfaces. It mirrors the SQLite store's semantics, including display
// ordering and retention pruning, and is designed for fast unit testing.
// Data is not persisted and exists only for the lifetime of the process.
package memstore

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yiblet/clipvault/internal/store"
)

// MemoryStore is an in-memory implementation of store.Store.
type MemoryStore struct {
	mu sync.RWMutex

	groups   map[int64]*store.Group
	items    map[int64]*store.Item
	subitems map[int64]*store.Subitem
	settings map[string]string

	nextGroupID   int64
	nextItemID    int64
	nextSubitemID int64

	maxItemsPerGroup int
}

// NewMemoryStore creates a new in-memory store with the given per-group cap.
// A non-positive cap disables pruning. The Default group is created up front.
func NewMemoryStore(maxItemsPerGroup int) *MemoryStore {
	m := &MemoryStore{
		groups:           make(map[int64]*store.Group),
		items:            make(map[int64]*store.Item),
		subitems:         make(map[int64]*store.Subitem),
		settings:         make(map[string]string),
		nextGroupID:      1,
		nextItemID:       1,
		nextSubitemID:    1,
		maxItemsPerGroup: maxItemsPerGroup,
	}
	m.groups[m.nextGroupID] = &store.Group{
		ID:       m.nextGroupID,
		Name:     store.DefaultGroupName,
		Position: 1,
	}
	m.nextGroupID++
	return m
}

// Groups returns the group store.
func (m *MemoryStore) Groups() store.GroupStore { return &memoryGroupStore{m} }

// Items returns the item store.
func (m *MemoryStore) Items() store.ItemStore { return &memoryItemStore{m} }

// Subitems returns the subitem store.
func (m *MemoryStore) Subitems() store.SubitemStore { return &memorySubitemStore{m} }

// Settings returns the setting store.
func (m *MemoryStore) Settings() store.SettingStore { return &memorySettingStore{m} }

// Close releases resources (no-op for memory store).
func (m *MemoryStore) Close() error { return nil }

// freshness is the last-used-or-created ranking shared by the unpinned
// display order and retention pruning.
func freshness(it *store.Item) int64 {
	if it.LastUsedAt != nil {
		return *it.LastUsedAt
	}
	return it.CreatedAt
}

func pinStamp(it *store.Item) int64 {
	if it.PinnedAt != nil {
		return *it.PinnedAt
	}
	return it.CreatedAt
}

// sortDisplay orders items per the listing contract: pinned first (oldest
// pin first, id ascending ties), then unpinned freshest-first (id descending
// ties).
func sortDisplay(items []*store.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Pinned != b.Pinned {
			return a.Pinned
		}
		if a.Pinned {
			if pinStamp(a) != pinStamp(b) {
				return pinStamp(a) < pinStamp(b)
			}
			return a.ID < b.ID
		}
		if freshness(a) != freshness(b) {
			return freshness(a) > freshness(b)
		}
		return a.ID > b.ID
	})
}

// pruneGroup evicts stale unpinned items past the cap. Callers must hold
// m.mu for writing.
func (m *MemoryStore) pruneGroup(groupID int64) {
	limit := m.maxItemsPerGroup
	if limit <= 0 {
		return
	}

	var unpinned []*store.Item
	for _, it := range m.items {
		if it.GroupID == groupID && !it.Pinned {
			unpinned = append(unpinned, it)
		}
	}
	if len(unpinned) <= limit {
		return
	}

	sort.Slice(unpinned, func(i, j int) bool {
		a, b := unpinned[i], unpinned[j]
		if freshness(a) != freshness(b) {
			return freshness(a) > freshness(b)
		}
		return a.ID > b.ID
	})
	for _, stale := range unpinned[limit:] {
		m.deleteItem(stale.ID)
	}
}

// deleteItem removes an item and its subitems. Callers must hold m.mu.
func (m *MemoryStore) deleteItem(id int64) {
	for sid, sub := range m.subitems {
		if sub.ItemID == id {
			delete(m.subitems, sid)
		}
	}
	delete(m.items, id)
}

func copyItem(it *store.Item) *store.Item {
	cp := *it
	return &cp
}

// memoryGroupStore implements store.GroupStore.
type memoryGroupStore struct {
	m *MemoryStore
}

func (g *memoryGroupStore) Create(name string) (int64, error) {
	g.m.mu.Lock()
	defer g.m.mu.Unlock()

	var maxPos int64
	for _, grp := range g.m.groups {
		if grp.Name == name {
			return 0, store.ErrDuplicateName
		}
		if grp.Position > maxPos {
			maxPos = grp.Position
		}
	}

	id := g.m.nextGroupID
	g.m.nextGroupID++
	g.m.groups[id] = &store.Group{ID: id, Name: name, Position: maxPos + 1}
	return id, nil
}

func (g *memoryGroupStore) Rename(id int64, name string) error {
	g.m.mu.Lock()
	defer g.m.mu.Unlock()

	for _, grp := range g.m.groups {
		if grp.Name == name && grp.ID != id {
			return store.ErrDuplicateName
		}
	}
	if grp, ok := g.m.groups[id]; ok {
		grp.Name = name
	}
	return nil
}

func (g *memoryGroupStore) Delete(id int64) error {
	g.m.mu.Lock()
	defer g.m.mu.Unlock()

	grp, ok := g.m.groups[id]
	if !ok {
		return nil
	}
	if grp.Name == store.DefaultGroupName {
		return store.ErrDefaultGroup
	}

	for iid, it := range g.m.items {
		if it.GroupID == id {
			g.m.deleteItem(iid)
		}
	}
	delete(g.m.groups, id)
	return nil
}

func (g *memoryGroupStore) List() ([]*store.Group, error) {
	g.m.mu.RLock()
	defer g.m.mu.RUnlock()

	groups := make([]*store.Group, 0, len(g.m.groups))
	for _, grp := range g.m.groups {
		cp := *grp
		groups = append(groups, &cp)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Position != groups[j].Position {
			return groups[i].Position < groups[j].Position
		}
		return groups[i].ID < groups[j].ID
	})
	return groups, nil
}

func (g *memoryGroupStore) UpdatePositions(orderedIDs []int64) error {
	g.m.mu.Lock()
	defer g.m.mu.Unlock()

	for idx, id := range orderedIDs {
		if grp, ok := g.m.groups[id]; ok {
			grp.Position = int64(idx + 1)
		}
	}
	return nil
}

func (g *memoryGroupStore) Get(id int64) (*store.Group, error) {
	g.m.mu.RLock()
	defer g.m.mu.RUnlock()

	grp, ok := g.m.groups[id]
	if !ok {
		return nil, nil
	}
	cp := *grp
	return &cp, nil
}

func (g *memoryGroupStore) GetByName(name string) (*store.Group, error) {
	g.m.mu.RLock()
	defer g.m.mu.RUnlock()

	for _, grp := range g.m.groups {
		if grp.Name == name {
			cp := *grp
			return &cp, nil
		}
	}
	return nil, nil
}

func (g *memoryGroupStore) Exists(id int64) (bool, error) {
	g.m.mu.RLock()
	defer g.m.mu.RUnlock()

	_, ok := g.m.groups[id]
	return ok, nil
}

// memoryItemStore implements store.ItemStore.
type memoryItemStore struct {
	m *MemoryStore
}

func (i *memoryItemStore) Create(input *store.CreateItemInput) (int64, error) {
	i.m.mu.Lock()
	defer i.m.mu.Unlock()

	createdAt := input.CreatedAt
	if createdAt == 0 {
		createdAt = time.Now().Unix()
	}
	contentType := input.ContentType
	if contentType == "" {
		contentType = store.TypeText
	}

	id := i.m.nextItemID
	i.m.nextItemID++
	i.m.items[id] = &store.Item{
		ID:             id,
		ContentType:    contentType,
		ContentText:    input.ContentText,
		ContentBlob:    input.ContentBlob,
		PreviewText:    input.PreviewText,
		PreviewBlob:    input.PreviewBlob,
		ContentLength:  int64(len(input.ContentText)),
		CreatedAt:      createdAt,
		GroupID:        input.GroupID,
		HasFullContent: true,
	}

	i.m.pruneGroup(input.GroupID)
	return id, nil
}

func (i *memoryItemStore) List(query *store.ListItemsQuery) ([]*store.Item, error) {
	i.m.mu.RLock()
	defer i.m.mu.RUnlock()

	if query == nil {
		query = &store.ListItemsQuery{}
	}

	var items []*store.Item
	for _, it := range i.m.items {
		if query.GroupID != nil && it.GroupID != *query.GroupID {
			continue
		}
		if query.Search != "" && !strings.Contains(it.ContentText, query.Search) {
			continue
		}
		if query.PreviewsOnly {
			items = append(items, previewShape(it))
		} else {
			items = append(items, copyItem(it))
		}
	}
	sortDisplay(items)
	return items, nil
}

// previewShape applies the lightweight substitutions of a previews-only
// listing to a copy of the item.
func previewShape(it *store.Item) *store.Item {
	cp := *it

	if it.ContentType != store.TypeDrawio && it.PreviewText != nil {
		cp.ContentText = *it.PreviewText
	}

	switch {
	case it.ContentType == store.TypeHTML:
		// keep blob
	case it.PreviewBlob == nil:
		// no preview yet, blob needed to build one
	default:
		cp.ContentBlob = nil
	}

	cp.HasFullContent = it.ContentType == store.TypeHTML ||
		(it.PreviewBlob == nil && it.PreviewText == nil)
	return &cp
}

func (i *memoryItemStore) Get(id int64) (*store.Item, error) {
	i.m.mu.RLock()
	defer i.m.mu.RUnlock()

	it, ok := i.m.items[id]
	if !ok {
		return nil, nil
	}
	return copyItem(it), nil
}

func (i *memoryItemStore) Latest(groupID int64) (*store.Item, error) {
	i.m.mu.RLock()
	defer i.m.mu.RUnlock()

	var latest *store.Item
	for _, it := range i.m.items {
		if it.GroupID != groupID {
			continue
		}
		if latest == nil || freshness(it) > freshness(latest) ||
			(freshness(it) == freshness(latest) && it.ID > latest.ID) {
			latest = it
		}
	}
	if latest == nil {
		return nil, nil
	}
	return copyItem(latest), nil
}

func (i *memoryItemStore) SetPinned(id int64, pinned bool) error {
	i.m.mu.Lock()
	defer i.m.mu.Unlock()

	it, ok := i.m.items[id]
	if !ok {
		return nil
	}

	it.Pinned = pinned
	if pinned {
		now := time.Now().Unix()
		it.PinnedAt = &now
	} else {
		it.PinnedAt = nil
		i.m.pruneGroup(it.GroupID)
	}
	return nil
}

func (i *memoryItemStore) TouchLastUsed(id int64, ts int64) error {
	i.m.mu.Lock()
	defer i.m.mu.Unlock()

	it, ok := i.m.items[id]
	if !ok {
		return nil
	}
	if ts == 0 {
		ts = time.Now().Unix()
	}
	it.LastUsedAt = &ts
	return nil
}

func (i *memoryItemStore) MoveToGroup(id int64, groupID int64) error {
	i.m.mu.Lock()
	defer i.m.mu.Unlock()

	if it, ok := i.m.items[id]; ok {
		it.GroupID = groupID
	}
	i.m.pruneGroup(groupID)
	return nil
}

func (i *memoryItemStore) Delete(id int64) error {
	i.m.mu.Lock()
	defer i.m.mu.Unlock()

	i.m.deleteItem(id)
	return nil
}

func (i *memoryItemStore) UpdatePreview(id int64, previewText *string, previewBlob []byte) error {
	i.m.mu.Lock()
	defer i.m.mu.Unlock()

	if it, ok := i.m.items[id]; ok {
		it.PreviewText = previewText
		it.PreviewBlob = previewBlob
	}
	return nil
}

// memorySubitemStore implements store.SubitemStore.
type memorySubitemStore struct {
	m *MemoryStore
}

func (s *memorySubitemStore) Create(itemID int64, text string, icons []string, tag string) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	id := s.m.nextSubitemID
	s.m.nextSubitemID++
	s.m.subitems[id] = &store.Subitem{
		ID:        id,
		ItemID:    itemID,
		Text:      text,
		Icons:     append([]string(nil), icons...),
		Tag:       tag,
		CreatedAt: time.Now().Unix(),
	}
	return id, nil
}

func (s *memorySubitemStore) Delete(id int64) error {
	if id < 0 {
		return nil
	}

	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	delete(s.m.subitems, id)
	return nil
}

func (s *memorySubitemStore) DeleteByTag(itemID int64, tag string) error {
	if tag == "" {
		return nil
	}

	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	for id, sub := range s.m.subitems {
		if sub.ItemID == itemID && strings.EqualFold(sub.Tag, tag) {
			delete(s.m.subitems, id)
		}
	}
	return nil
}

func (s *memorySubitemStore) List(itemID int64) ([]*store.Subitem, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	var subs []*store.Subitem
	for _, sub := range s.m.subitems {
		if sub.ItemID == itemID {
			cp := *sub
			subs = append(subs, &cp)
		}
	}
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].CreatedAt != subs[j].CreatedAt {
			return subs[i].CreatedAt < subs[j].CreatedAt
		}
		return subs[i].ID < subs[j].ID
	})
	return subs, nil
}

// memorySettingStore implements store.SettingStore.
type memorySettingStore struct {
	m *MemoryStore
}

func (s *memorySettingStore) Get(key, def string) (string, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	if value, ok := s.m.settings[key]; ok {
		return value, nil
	}
	return def, nil
}

func (s *memorySettingStore) Set(key, value string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	s.m.settings[key] = value
	return nil
}
