package dbstore

import (
	"encoding/json"

	"github.com/yiblet/clipvault/internal/store"
)

// GroupModel represents a group in the database.
type GroupModel struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Name     string `gorm:"not null;uniqueIndex"`
	Position int64
}

// TableName returns the table name for GroupModel
func (GroupModel) TableName() string {
	return "groups"
}

// ToGroup converts the GORM model to a store.Group
func (m *GroupModel) ToGroup() *store.Group {
	return &store.Group{
		ID:       m.ID,
		Name:     m.Name,
		Position: m.Position,
	}
}

// ItemModel represents a clipboard item in the database.
// All timestamps are unix seconds. PinnedAt is non-NULL iff Pinned is set.
type ItemModel struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"`
	ContentType string  `gorm:"not null;default:text"`
	ContentText string  `gorm:"not null;default:''"`
	ContentBlob []byte  `gorm:"type:blob"`
	PreviewText *string `gorm:"type:text"`
	PreviewBlob []byte  `gorm:"type:blob"`
	CreatedAt   int64   `gorm:"not null;index:idx_items_pinned_time,priority:3;index:idx_items_last_used,priority:2"`
	LastUsedAt  *int64  `gorm:"index:idx_items_last_used,priority:1"`
	Pinned      bool    `gorm:"not null;default:false;index:idx_items_pinned_time,priority:1"`
	PinnedAt    *int64  `gorm:"index:idx_items_pinned_time,priority:2"`
	GroupID     int64   `gorm:"not null;index"`

	Subitems []SubitemModel `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for ItemModel
func (ItemModel) TableName() string {
	return "items"
}

// ToItem converts the GORM model to a store.Item carrying full content.
func (m *ItemModel) ToItem() *store.Item {
	return &store.Item{
		ID:             m.ID,
		ContentType:    m.ContentType,
		ContentText:    m.ContentText,
		ContentBlob:    m.ContentBlob,
		PreviewText:    m.PreviewText,
		PreviewBlob:    m.PreviewBlob,
		ContentLength:  int64(len(m.ContentText)),
		CreatedAt:      m.CreatedAt,
		LastUsedAt:     m.LastUsedAt,
		Pinned:         m.Pinned,
		PinnedAt:       m.PinnedAt,
		GroupID:        m.GroupID,
		HasFullContent: true,
	}
}

// SubitemModel represents a tagged annotation attached to an item.
// Icons are stored as a JSON-encoded string array.
type SubitemModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	ItemID    int64  `gorm:"not null;index"`
	Text      string `gorm:"not null"`
	Icons     string `gorm:"type:text"`
	Tag       string
	CreatedAt int64 `gorm:"not null"`
}

// TableName returns the table name for SubitemModel
func (SubitemModel) TableName() string {
	return "subitems"
}

// ToSubitem converts the GORM model to a store.Subitem, decoding the icon
// list. Undecodable icon payloads degrade to an empty list.
func (m *SubitemModel) ToSubitem() *store.Subitem {
	var icons []string
	if m.Icons != "" {
		if err := json.Unmarshal([]byte(m.Icons), &icons); err != nil {
			icons = nil
		}
	}
	return &store.Subitem{
		ID:        m.ID,
		ItemID:    m.ItemID,
		Text:      m.Text,
		Icons:     icons,
		Tag:       m.Tag,
		CreatedAt: m.CreatedAt,
	}
}

// SettingModel represents a key/value setting pair.
type SettingModel struct {
	Key   string `gorm:"primaryKey;size:100"`
	Value string `gorm:"type:text"`
}

// TableName returns the table name for SettingModel
func (SettingModel) TableName() string {
	return "settings"
}
