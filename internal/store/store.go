// Package store defines the storage interfaces for clipvault's persistence
// layer. It provides abstractions for groups (named buckets of clipboard
// items), items, subitems (tagged annotations), and flat key/value settings.
package store

// GroupStore manages group persistence.
// Groups partition items into named, user-ordered buckets. Exactly one group
// named "Default" exists at all times; implementations create it on open and
// refuse to delete it.
type GroupStore interface {
	// Create inserts a new group. The new group's position is one past the
	// current maximum so it sorts last. Returns ErrDuplicateName if a group
	// with that name already exists.
	Create(name string) (int64, error)

	// Rename changes a group's name in place. Returns ErrDuplicateName if
	// another group already holds the name. Renaming a missing group is a
	// no-op.
	Rename(id int64, name string) error

	// Delete removes a group, cascading deletion of its items and their
	// subitems. Returns ErrDefaultGroup for the Default group. Deleting a
	// missing group is a no-op.
	Delete(id int64) error

	// List returns all groups ordered by position ascending, ties broken by
	// id ascending.
	List() ([]*Group, error)

	// UpdatePositions reassigns position = index+1 for each id in the given
	// order. Groups omitted from the list keep their stale positions.
	UpdatePositions(orderedIDs []int64) error

	// Get retrieves a group by id. Returns (nil, nil) if absent.
	Get(id int64) (*Group, error)

	// GetByName retrieves a group by its exact name. Returns (nil, nil) if
	// absent.
	GetByName(name string) (*Group, error)

	// Exists reports whether a group with the given id exists.
	Exists(id int64) (bool, error)
}

// ItemStore manages clipboard item persistence.
type ItemStore interface {
	// Create inserts a new unpinned item and then prunes the owning group's
	// unpinned items down to the configured cap. Returns the new item's id
	// even when pruning could immediately evict it.
	Create(input *CreateItemInput) (int64, error)

	// List returns items matching the query in display order: pinned items
	// first (oldest pin first, id ascending on ties), then unpinned items by
	// descending last-used-or-created time (id descending on ties).
	// With query.PreviewsOnly set, lightweight preview fields are substituted
	// for full content; see ListItemsQuery.
	List(query *ListItemsQuery) ([]*Item, error)

	// Get retrieves a single item with full content. Returns (nil, nil) if
	// absent.
	Get(id int64) (*Item, error)

	// Latest returns the freshest item of a group by last-used-or-created
	// time, with full content. Returns (nil, nil) for an empty group.
	Latest(groupID int64) (*Item, error)

	// SetPinned pins or unpins an item, stamping or clearing pinned_at.
	// Unpinning re-triggers retention pruning on the item's group. Pinning a
	// missing item is a no-op.
	SetPinned(id int64, pinned bool) error

	// TouchLastUsed updates an item's last_used_at timestamp (unix seconds),
	// re-sorting it to the top of the unpinned ordering.
	TouchLastUsed(id int64, ts int64) error

	// MoveToGroup transfers an item to another group and prunes the
	// destination group.
	MoveToGroup(id int64, groupID int64) error

	// Delete removes an item and its subitems. Deleting a missing item is a
	// no-op.
	Delete(id int64) error

	// UpdatePreview replaces only the preview fields of an item. Ordering
	// and last_used_at are untouched.
	UpdatePreview(id int64, previewText *string, previewBlob []byte) error
}

// SubitemStore manages tagged annotations attached to items.
type SubitemStore interface {
	// Create appends a subitem to an item.
	Create(itemID int64, text string, icons []string, tag string) (int64, error)

	// Delete removes a subitem by id. Negative ids identify ephemeral
	// plugin-generated subitems that never touch the store; deleting one is
	// a no-op.
	Delete(id int64) error

	// DeleteByTag removes all subitems of an item with the given tag
	// (case-insensitive). An empty tag is a no-op. Used for clear-then-insert
	// replace semantics on single-slot tags.
	DeleteByTag(itemID int64, tag string) error

	// List returns an item's subitems in creation order.
	List(itemID int64) ([]*Subitem, error)
}

// SettingStore manages flat key/value settings with last-write-wins upserts.
type SettingStore interface {
	// Get retrieves a setting, returning def when the key is absent.
	Get(key, def string) (string, error)

	// Set stores a setting, overwriting any previous value.
	Set(key, value string) error
}

// Store combines all stores over a single database.
// Implementations manage their lifecycle as a single unit.
type Store interface {
	Groups() GroupStore
	Items() ItemStore
	Subitems() SubitemStore
	Settings() SettingStore

	// Close releases the underlying database handle. Safe to call once at
	// process shutdown.
	Close() error
}
