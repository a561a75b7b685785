// Package dbstore provides the SQLite-backed implementation of the store
// interfaces. A single on-disk database file holds groups, items, subitems
// and settings; writes are serialized through one mutex and retention pruning
// runs synchronously inside the mutating operation that triggered it.
package dbstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yiblet/clipvault/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// displayOrder is the shared ordering contract for item listings: pinned
// items first (oldest pin first, id ascending on ties), then unpinned items
// by descending last-used-or-created time (id descending on ties).
const displayOrder = `
	pinned DESC,
	CASE WHEN pinned = 1 THEN COALESCE(pinned_at, created_at) END ASC,
	CASE WHEN pinned = 1 THEN id END ASC,
	CASE WHEN pinned = 0 THEN COALESCE(last_used_at, created_at) END DESC,
	CASE WHEN pinned = 0 THEN id END DESC`

// freshnessOrder ranks unpinned items for retention pruning. It matches the
// unpinned half of displayOrder so pruning evicts exactly the rows a listing
// would show last.
const freshnessOrder = "COALESCE(last_used_at, created_at) DESC, id DESC"

// SQLiteStore is a SQLite-backed implementation of store.Store
type SQLiteStore struct {
	db     *gorm.DB
	dbPath string

	// maxItemsPerGroup caps the unpinned items retained per group. A
	// non-positive value disables pruning entirely.
	maxItemsPerGroup int

	// mu serializes all writes. Pruning is invoked as a plain call while the
	// mutating operation still holds the lock, so no re-entrancy is needed.
	mu sync.Mutex
}

// NewSQLiteStore creates a new SQLite-backed store at the specified path.
// It enables WAL mode and foreign keys, migrates the schema additively,
// backfills derived columns and ensures the Default group exists.
func NewSQLiteStore(dbPath string, maxItemsPerGroup int) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	// WAL keeps readers consistent while each write commits per statement.
	if err := db.Exec("PRAGMA journal_mode = WAL").Error; err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := db.AutoMigrate(&GroupModel{}, &ItemModel{}, &SubitemModel{}, &SettingModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	if err := backfill(db); err != nil {
		return nil, fmt.Errorf("failed to backfill schema: %w", err)
	}

	s := &SQLiteStore{
		db:               db,
		dbPath:           dbPath,
		maxItemsPerGroup: maxItemsPerGroup,
	}

	if err := s.ensureDefaultGroup(); err != nil {
		return nil, fmt.Errorf("failed to init default group: %w", err)
	}

	return s, nil
}

// backfill populates derived columns on rows written by older schema
// versions. Additive only; rows created by the current schema are untouched.
func backfill(db *gorm.DB) error {
	stmts := []string{
		"UPDATE groups SET position = id WHERE position IS NULL",
		"UPDATE items SET content_text = '' WHERE content_text IS NULL",
		// Rows pinned before pinned_at existed keep their pin order by
		// falling back to creation time.
		"UPDATE items SET pinned_at = created_at WHERE pinned = 1 AND pinned_at IS NULL",
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) ensureDefaultGroup() error {
	group, err := s.Groups().GetByName(store.DefaultGroupName)
	if err != nil {
		return err
	}
	if group != nil {
		return nil
	}
	_, err = s.Groups().Create(store.DefaultGroupName)
	return err
}

// Groups returns the group store
func (s *SQLiteStore) Groups() store.GroupStore {
	return &sqliteGroupStore{s: s}
}

// Items returns the item store
func (s *SQLiteStore) Items() store.ItemStore {
	return &sqliteItemStore{s: s}
}

// Subitems returns the subitem store
func (s *SQLiteStore) Subitems() store.SubitemStore {
	return &sqliteSubitemStore{s: s}
}

// Settings returns the setting store
func (s *SQLiteStore) Settings() store.SettingStore {
	return &sqliteSettingStore{s: s}
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// pruneGroup evicts the stalest unpinned items of a group past the cap.
// Pinned items never count against the cap and are never evicted here.
// Callers must hold s.mu.
func (s *SQLiteStore) pruneGroup(groupID int64) error {
	limit := s.maxItemsPerGroup
	if limit <= 0 {
		return nil
	}

	var ids []int64
	err := s.db.Model(&ItemModel{}).
		Where("group_id = ? AND pinned = ?", groupID, false).
		Order(freshnessOrder).
		Pluck("id", &ids).Error
	if err != nil {
		return fmt.Errorf("failed to rank group %d for pruning: %w", groupID, err)
	}
	if len(ids) <= limit {
		return nil
	}

	for _, staleID := range ids[limit:] {
		if err := s.deleteItem(staleID); err != nil {
			return err
		}
	}
	return nil
}

// deleteItem removes an item and its subitems. Callers must hold s.mu.
func (s *SQLiteStore) deleteItem(id int64) error {
	if err := s.db.Where("item_id = ?", id).Delete(&SubitemModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete subitems of item %d: %w", id, err)
	}
	if err := s.db.Delete(&ItemModel{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete item %d: %w", id, err)
	}
	return nil
}

// sqliteGroupStore implements store.GroupStore
type sqliteGroupStore struct {
	s *SQLiteStore
}

// Create inserts a group positioned after all existing ones.
func (g *sqliteGroupStore) Create(name string) (int64, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()

	var next int64
	err := g.s.db.Model(&GroupModel{}).
		Select("COALESCE(MAX(position), 0) + 1").
		Scan(&next).Error
	if err != nil {
		return 0, fmt.Errorf("failed to allocate group position: %w", err)
	}

	group := &GroupModel{Name: name, Position: next}
	if err := g.s.db.Create(group).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, fmt.Errorf("create group %q: %w", name, store.ErrDuplicateName)
		}
		return 0, fmt.Errorf("failed to create group: %w", err)
	}
	return group.ID, nil
}

// Rename updates a group's name in place.
func (g *sqliteGroupStore) Rename(id int64, name string) error {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()

	err := g.s.db.Model(&GroupModel{}).Where("id = ?", id).Update("name", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("rename group %d to %q: %w", id, name, store.ErrDuplicateName)
		}
		return fmt.Errorf("failed to rename group: %w", err)
	}
	return nil
}

// Delete removes a group with its items and subitems. The Default group is
// refused.
func (g *sqliteGroupStore) Delete(id int64) error {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()

	var group GroupModel
	if err := g.s.db.First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load group %d: %w", id, err)
	}
	if group.Name == store.DefaultGroupName {
		return store.ErrDefaultGroup
	}

	err := g.s.db.
		Exec("DELETE FROM subitems WHERE item_id IN (SELECT id FROM items WHERE group_id = ?)", id).Error
	if err != nil {
		return fmt.Errorf("failed to delete subitems of group %d: %w", id, err)
	}
	if err := g.s.db.Where("group_id = ?", id).Delete(&ItemModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete items of group %d: %w", id, err)
	}
	if err := g.s.db.Delete(&GroupModel{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete group %d: %w", id, err)
	}
	return nil
}

// List returns all groups in user order.
func (g *sqliteGroupStore) List() ([]*store.Group, error) {
	var models []*GroupModel
	if err := g.s.db.Order("position ASC, id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	groups := make([]*store.Group, len(models))
	for i, model := range models {
		groups[i] = model.ToGroup()
	}
	return groups, nil
}

// UpdatePositions reassigns positions following the supplied drag order.
// Groups not listed keep their stale positions; reorder callers pass the
// complete set.
func (g *sqliteGroupStore) UpdatePositions(orderedIDs []int64) error {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()

	for idx, id := range orderedIDs {
		err := g.s.db.Model(&GroupModel{}).
			Where("id = ?", id).
			Update("position", idx+1).Error
		if err != nil {
			return fmt.Errorf("failed to update position of group %d: %w", id, err)
		}
	}
	return nil
}

// Get retrieves a group by id, (nil, nil) when absent.
func (g *sqliteGroupStore) Get(id int64) (*store.Group, error) {
	var model GroupModel
	if err := g.s.db.First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group %d: %w", id, err)
	}
	return model.ToGroup(), nil
}

// GetByName retrieves a group by name, (nil, nil) when absent.
func (g *sqliteGroupStore) GetByName(name string) (*store.Group, error) {
	var model GroupModel
	if err := g.s.db.First(&model, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group %q: %w", name, err)
	}
	return model.ToGroup(), nil
}

// Exists reports whether the group id is present.
func (g *sqliteGroupStore) Exists(id int64) (bool, error) {
	group, err := g.Get(id)
	if err != nil {
		return false, err
	}
	return group != nil, nil
}

// sqliteItemStore implements store.ItemStore
type sqliteItemStore struct {
	s *SQLiteStore
}

// Create inserts an unpinned item and prunes the owning group. A prune
// failure is swallowed: the insert already committed and a failed cleanup
// must never block the caller's next capture.
func (i *sqliteItemStore) Create(input *store.CreateItemInput) (int64, error) {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()

	createdAt := input.CreatedAt
	if createdAt == 0 {
		createdAt = time.Now().Unix()
	}
	contentType := input.ContentType
	if contentType == "" {
		contentType = store.TypeText
	}

	item := &ItemModel{
		ContentType: contentType,
		ContentText: input.ContentText,
		ContentBlob: input.ContentBlob,
		PreviewText: input.PreviewText,
		PreviewBlob: input.PreviewBlob,
		CreatedAt:   createdAt,
		Pinned:      false,
		PinnedAt:    nil,
		GroupID:     input.GroupID,
	}
	if err := i.s.db.Create(item).Error; err != nil {
		return 0, fmt.Errorf("failed to create item: %w", err)
	}

	_ = i.s.pruneGroup(input.GroupID)
	return item.ID, nil
}

// itemRow is the scan target for listing queries whose text/blob columns are
// computed expressions rather than raw table columns.
type itemRow struct {
	ID             int64
	ContentType    string
	ContentText    *string
	ContentBlob    []byte
	PreviewText    *string
	PreviewBlob    []byte
	ContentLength  int64
	CreatedAt      int64
	LastUsedAt     *int64
	Pinned         bool
	PinnedAt       *int64
	GroupID        int64
	HasFullContent bool
}

func (r *itemRow) toItem() *store.Item {
	text := ""
	if r.ContentText != nil {
		text = *r.ContentText
	}
	return &store.Item{
		ID:             r.ID,
		ContentType:    r.ContentType,
		ContentText:    text,
		ContentBlob:    r.ContentBlob,
		PreviewText:    r.PreviewText,
		PreviewBlob:    r.PreviewBlob,
		ContentLength:  r.ContentLength,
		CreatedAt:      r.CreatedAt,
		LastUsedAt:     r.LastUsedAt,
		Pinned:         r.Pinned,
		PinnedAt:       r.PinnedAt,
		GroupID:        r.GroupID,
		HasFullContent: r.HasFullContent,
	}
}

// fullColumns selects full content for every row.
const fullColumns = `
	id, content_type,
	content_text,
	content_blob,
	preview_text, preview_blob,
	COALESCE(LENGTH(content_text), 0) AS content_length,
	created_at, last_used_at, pinned, pinned_at, group_id,
	1 AS has_full_content`

// previewColumns substitutes lightweight fields for list rendering. Drawio
// items keep their full text (the compressed diagram descriptor is needed to
// regenerate previews) and html items keep their blob (needed to derive
// background color and raw markup). Rows without any preview keep the blob
// so one can be built lazily.
const previewColumns = `
	id, content_type,
	CASE WHEN content_type = 'drawio' THEN content_text
	     ELSE COALESCE(preview_text, content_text) END AS content_text,
	CASE WHEN content_type = 'html' THEN content_blob
	     WHEN preview_blob IS NULL THEN content_blob
	     ELSE NULL END AS content_blob,
	preview_text, preview_blob,
	COALESCE(LENGTH(content_text), 0) AS content_length,
	created_at, last_used_at, pinned, pinned_at, group_id,
	CASE WHEN content_type = 'html' THEN 1
	     WHEN preview_blob IS NULL AND preview_text IS NULL THEN 1
	     ELSE 0 END AS has_full_content`

// List returns items in display order, optionally filtered by group and
// content substring.
func (i *sqliteItemStore) List(query *store.ListItemsQuery) ([]*store.Item, error) {
	if query == nil {
		query = &store.ListItemsQuery{}
	}

	columns := fullColumns
	if query.PreviewsOnly {
		columns = previewColumns
	}

	tx := i.s.db.Model(&ItemModel{}).Select(columns)
	if query.GroupID != nil {
		tx = tx.Where("group_id = ?", *query.GroupID)
	}
	if query.Search != "" {
		tx = tx.Where("content_text LIKE ?", "%"+query.Search+"%")
	}

	var rows []*itemRow
	if err := tx.Order(displayOrder).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	items := make([]*store.Item, len(rows))
	for idx, row := range rows {
		items[idx] = row.toItem()
	}
	return items, nil
}

// Get retrieves a single item with full content, (nil, nil) when absent.
func (i *sqliteItemStore) Get(id int64) (*store.Item, error) {
	var model ItemModel
	if err := i.s.db.First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get item %d: %w", id, err)
	}
	return model.ToItem(), nil
}

// Latest returns the freshest item of a group with full content.
func (i *sqliteItemStore) Latest(groupID int64) (*store.Item, error) {
	var model ItemModel
	err := i.s.db.
		Where("group_id = ?", groupID).
		Order("COALESCE(last_used_at, created_at) DESC, id DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest item of group %d: %w", groupID, err)
	}
	return model.ToItem(), nil
}

// SetPinned pins or unpins an item. Unpinning returns the item to the
// eviction pool, so the group is re-pruned.
func (i *sqliteItemStore) SetPinned(id int64, pinned bool) error {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()

	var model ItemModel
	if err := i.s.db.Select("id", "group_id").First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load item %d: %w", id, err)
	}

	var pinnedAt *int64
	if pinned {
		now := time.Now().Unix()
		pinnedAt = &now
	}
	err := i.s.db.Model(&ItemModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"pinned": pinned, "pinned_at": pinnedAt}).Error
	if err != nil {
		return fmt.Errorf("failed to set pinned on item %d: %w", id, err)
	}

	if !pinned {
		_ = i.s.pruneGroup(model.GroupID)
	}
	return nil
}

// TouchLastUsed stamps the item as just used. A zero ts means now.
func (i *sqliteItemStore) TouchLastUsed(id int64, ts int64) error {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()

	if ts == 0 {
		ts = time.Now().Unix()
	}
	err := i.s.db.Model(&ItemModel{}).
		Where("id = ?", id).
		Update("last_used_at", ts).Error
	if err != nil {
		return fmt.Errorf("failed to touch item %d: %w", id, err)
	}
	return nil
}

// MoveToGroup transfers ownership and prunes the destination group.
func (i *sqliteItemStore) MoveToGroup(id int64, groupID int64) error {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()

	err := i.s.db.Model(&ItemModel{}).
		Where("id = ?", id).
		Update("group_id", groupID).Error
	if err != nil {
		return fmt.Errorf("failed to move item %d: %w", id, err)
	}

	_ = i.s.pruneGroup(groupID)
	return nil
}

// Delete removes an item and its subitems.
func (i *sqliteItemStore) Delete(id int64) error {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()
	return i.s.deleteItem(id)
}

// UpdatePreview overwrites only the preview fields.
func (i *sqliteItemStore) UpdatePreview(id int64, previewText *string, previewBlob []byte) error {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()

	err := i.s.db.Model(&ItemModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"preview_text": previewText,
			"preview_blob": previewBlob,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update preview of item %d: %w", id, err)
	}
	return nil
}

// sqliteSubitemStore implements store.SubitemStore
type sqliteSubitemStore struct {
	s *SQLiteStore
}

// Create appends a subitem to an item.
func (su *sqliteSubitemStore) Create(itemID int64, text string, icons []string, tag string) (int64, error) {
	su.s.mu.Lock()
	defer su.s.mu.Unlock()

	if icons == nil {
		icons = []string{}
	}
	iconsJSON, err := json.Marshal(icons)
	if err != nil {
		return 0, fmt.Errorf("failed to encode icons: %w", err)
	}

	model := &SubitemModel{
		ItemID:    itemID,
		Text:      text,
		Icons:     string(iconsJSON),
		Tag:       tag,
		CreatedAt: time.Now().Unix(),
	}
	if err := su.s.db.Create(model).Error; err != nil {
		return 0, fmt.Errorf("failed to create subitem: %w", err)
	}
	return model.ID, nil
}

// Delete removes a subitem. Negative ids are ephemeral and never stored.
func (su *sqliteSubitemStore) Delete(id int64) error {
	if id < 0 {
		return nil
	}

	su.s.mu.Lock()
	defer su.s.mu.Unlock()

	if err := su.s.db.Delete(&SubitemModel{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete subitem %d: %w", id, err)
	}
	return nil
}

// DeleteByTag clears all subitems of an item carrying the tag.
func (su *sqliteSubitemStore) DeleteByTag(itemID int64, tag string) error {
	if tag == "" {
		return nil
	}

	su.s.mu.Lock()
	defer su.s.mu.Unlock()

	err := su.s.db.
		Where("item_id = ? AND LOWER(tag) = LOWER(?)", itemID, tag).
		Delete(&SubitemModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete subitems of item %d by tag %q: %w", itemID, tag, err)
	}
	return nil
}

// List returns an item's subitems in creation order.
func (su *sqliteSubitemStore) List(itemID int64) ([]*store.Subitem, error) {
	var models []*SubitemModel
	err := su.s.db.
		Where("item_id = ?", itemID).
		Order("created_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list subitems of item %d: %w", itemID, err)
	}

	subitems := make([]*store.Subitem, len(models))
	for i, model := range models {
		subitems[i] = model.ToSubitem()
	}
	return subitems, nil
}

// sqliteSettingStore implements store.SettingStore
type sqliteSettingStore struct {
	s *SQLiteStore
}

// Get retrieves a setting value, falling back to def when absent.
func (se *sqliteSettingStore) Get(key, def string) (string, error) {
	var model SettingModel
	if err := se.s.db.First(&model, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return def, nil
		}
		return "", fmt.Errorf("failed to get setting %q: %w", key, err)
	}
	return model.Value, nil
}

// Set upserts a setting, last write wins.
func (se *sqliteSettingStore) Set(key, value string) error {
	se.s.mu.Lock()
	defer se.s.mu.Unlock()

	err := se.s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&SettingModel{Key: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("failed to set setting %q: %w", key, err)
	}
	return nil
}
