// Package cli implements the clipvault command-line interface over the
// storage engine.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/yiblet/clipvault/internal/config"
	"github.com/yiblet/clipvault/internal/history"
	"github.com/yiblet/clipvault/internal/store"
	"github.com/yiblet/clipvault/internal/store/dbstore"
)

// CLI handles the command-line interface
type CLI struct {
	manager *history.Manager
	store   store.Store
	out     io.Writer
}

// New creates a new CLI instance
func New() (*CLI, error) {
	return NewWithArgs(nil)
}

// NewWithArgs creates a new CLI instance, resolving the database path from
// flags, config file and defaults in that order.
func NewWithArgs(args *Args) (*CLI, error) {
	var configManager *config.Manager
	var err error
	if args != nil && args.ConfigPath != nil {
		configManager = config.NewManagerWithPath(*args.ConfigPath)
	} else {
		configManager, err = config.NewManager()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := configManager.Load()
	if err != nil {
		return nil, err
	}

	var dbPath string
	switch {
	case args != nil && args.DBPath != nil:
		dbPath = *args.DBPath
	case cfg.HistoryLocation != "":
		dbPath = cfg.HistoryLocation
	default:
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		dbPath = filepath.Join(homeDir, ".config", "clipvault", "clipvault.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	sqliteStore, err := dbstore.NewSQLiteStore(dbPath, cfg.MaxItemsPerGroup)
	if err != nil {
		return nil, fmt.Errorf("failed to create database store: %w", err)
	}

	return &CLI{
		manager: history.NewManager(sqliteStore),
		store:   sqliteStore,
		out:     os.Stdout,
	}, nil
}

// Close releases store resources.
func (c *CLI) Close() error {
	return c.manager.Close()
}

// Execute runs the CLI command based on parsed arguments
func (c *CLI) Execute(args *Args) error {
	if err := args.Validate(); err != nil {
		return err
	}

	switch {
	case args.Group != nil:
		return c.executeGroup(args.Group)
	case args.Item != nil:
		return c.executeItem(args.Item)
	case args.Sub != nil:
		return c.executeSub(args.Sub)
	case args.Setting != nil:
		return c.executeSetting(args.Setting)
	default:
		return fmt.Errorf("no command specified")
	}
}

func (c *CLI) executeGroup(cmd *GroupCmd) error {
	switch {
	case cmd.List != nil:
		return c.listGroups()
	case cmd.Add != nil:
		id, err := c.store.Groups().Create(cmd.Add.Name)
		if err != nil {
			if errors.Is(err, store.ErrDuplicateName) {
				return fmt.Errorf("group %q already exists", cmd.Add.Name)
			}
			return err
		}
		fmt.Fprintf(c.out, "Created group %d (%s)\n", id, cmd.Add.Name)
		return nil
	case cmd.Rename != nil:
		err := c.store.Groups().Rename(cmd.Rename.ID, cmd.Rename.Name)
		if err != nil {
			if errors.Is(err, store.ErrDuplicateName) {
				return fmt.Errorf("group %q already exists", cmd.Rename.Name)
			}
			return err
		}
		fmt.Fprintf(c.out, "Renamed group %d to %s\n", cmd.Rename.ID, cmd.Rename.Name)
		return nil
	case cmd.Rm != nil:
		err := c.manager.DeleteGroup(cmd.Rm.ID)
		if err != nil {
			if errors.Is(err, store.ErrDefaultGroup) {
				return fmt.Errorf("the Default group cannot be deleted")
			}
			return err
		}
		fmt.Fprintf(c.out, "Deleted group %d\n", cmd.Rm.ID)
		return nil
	case cmd.Order != nil:
		if err := c.store.Groups().UpdatePositions(cmd.Order.IDs); err != nil {
			return err
		}
		return c.listGroups()
	case cmd.Use != nil:
		if err := c.manager.SetDestinationGroup(cmd.Use.ID); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "New items will be stored in group %d\n", cmd.Use.ID)
		return nil
	default:
		return fmt.Errorf("no group subcommand specified")
	}
}

func (c *CLI) listGroups() error {
	groups, err := c.store.Groups().List()
	if err != nil {
		return err
	}

	destID, err := c.manager.DestinationGroupID()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPOS\tNAME")
	for _, group := range groups {
		marker := ""
		if group.ID == destID {
			marker = " *"
		}
		fmt.Fprintf(w, "%d\t%d\t%s%s\n", group.ID, group.Position, group.Name, marker)
	}
	return w.Flush()
}

func (c *CLI) executeItem(cmd *ItemCmd) error {
	switch {
	case cmd.List != nil:
		return c.listItems(cmd.List)
	case cmd.Add != nil:
		return c.addItem(cmd.Add)
	case cmd.Show != nil:
		return c.showItem(cmd.Show.ID)
	case cmd.Pin != nil:
		if err := c.store.Items().SetPinned(cmd.Pin.ID, true); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Pinned item %d\n", cmd.Pin.ID)
		return nil
	case cmd.Unpin != nil:
		if err := c.store.Items().SetPinned(cmd.Unpin.ID, false); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Unpinned item %d\n", cmd.Unpin.ID)
		return nil
	case cmd.Touch != nil:
		if err := c.manager.Touch(cmd.Touch.ID); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Touched item %d\n", cmd.Touch.ID)
		return nil
	case cmd.Mv != nil:
		if err := c.store.Items().MoveToGroup(cmd.Mv.ID, cmd.Mv.Group); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Moved item %d to group %d\n", cmd.Mv.ID, cmd.Mv.Group)
		return nil
	case cmd.Rm != nil:
		if err := c.store.Items().Delete(cmd.Rm.ID); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Deleted item %d\n", cmd.Rm.ID)
		return nil
	default:
		return fmt.Errorf("no item subcommand specified")
	}
}

func (c *CLI) listItems(cmd *ItemListCmd) error {
	query := &store.ListItemsQuery{
		Search:       cmd.Search,
		PreviewsOnly: cmd.Previews,
	}
	switch {
	case cmd.All:
		// all groups
	case cmd.Group != nil:
		query.GroupID = cmd.Group
	default:
		// fall back to the persisted display selection
		current, err := c.manager.CurrentGroupID()
		if err != nil {
			return err
		}
		query.GroupID = current
	}

	items, err := c.store.Items().List(query)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tGROUP\tPIN\tUSED\tLABEL")
	for _, item := range items {
		pin := ""
		if item.Pinned {
			pin = "pin"
		}
		used := item.CreatedAt
		if item.LastUsedAt != nil {
			used = *item.LastUsedAt
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n",
			item.ID, item.GroupID, pin,
			time.Unix(used, 0).Format("2006-01-02 15:04:05"),
			history.Label(item))
	}
	return w.Flush()
}

func (c *CLI) addItem(cmd *ItemAddCmd) error {
	var content []byte
	var err error
	if cmd.File != nil {
		content, err = os.ReadFile(*cmd.File)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
	} else {
		content, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	}

	text := strings.TrimRight(string(content), "\n")
	contentType := cmd.Type
	if contentType == "" {
		contentType = store.TypeText
		if _, ok := history.ParseColorText(text); ok {
			contentType = store.TypeColor
		}
	}

	var groupID int64
	if cmd.Group != nil {
		groupID = *cmd.Group
	}

	input := &history.CaptureInput{
		ContentType: contentType,
		ContentText: text,
		GroupID:     groupID,
	}
	// Binary-ish types carry the raw bytes alongside the textual form.
	switch contentType {
	case store.TypeHTML, store.TypeImage, store.TypeSVG:
		input.ContentBlob = content
	}

	id, err := c.manager.Capture(input)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Stored item %d\n", id)
	return nil
}

func (c *CLI) showItem(id int64) error {
	item, err := c.store.Items().Get(id)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("item not found: %d", id)
	}

	fmt.Fprintf(c.out, "ID:      %d\n", item.ID)
	fmt.Fprintf(c.out, "Type:    %s\n", item.ContentType)
	fmt.Fprintf(c.out, "Group:   %d\n", item.GroupID)
	fmt.Fprintf(c.out, "Created: %s\n", time.Unix(item.CreatedAt, 0).Format(time.RFC3339))
	if item.LastUsedAt != nil {
		fmt.Fprintf(c.out, "Used:    %s\n", time.Unix(*item.LastUsedAt, 0).Format(time.RFC3339))
	}
	if item.Pinned && item.PinnedAt != nil {
		fmt.Fprintf(c.out, "Pinned:  %s\n", time.Unix(*item.PinnedAt, 0).Format(time.RFC3339))
	}
	if len(item.ContentBlob) > 0 {
		fmt.Fprintf(c.out, "Blob:    %d bytes\n", len(item.ContentBlob))
	}
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, item.ContentText)
	return nil
}

func (c *CLI) executeSub(cmd *SubCmd) error {
	switch {
	case cmd.List != nil:
		subs, err := c.store.Subitems().List(cmd.List.ItemID)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTAG\tTEXT")
		for _, sub := range subs {
			fmt.Fprintf(w, "%d\t%s\t%s\n", sub.ID, sub.Tag, history.TruncateLabel(sub.Text, 120))
		}
		return w.Flush()
	case cmd.Add != nil:
		id, err := c.store.Subitems().Create(cmd.Add.ItemID, cmd.Add.Text, cmd.Add.Icons, cmd.Add.Tag)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Added subitem %d to item %d\n", id, cmd.Add.ItemID)
		return nil
	case cmd.Replace != nil:
		id, err := c.manager.ReplaceSubitem(cmd.Replace.ItemID, cmd.Replace.Text, cmd.Replace.Tag)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Replaced %q subitems of item %d with subitem %d\n",
			cmd.Replace.Tag, cmd.Replace.ItemID, id)
		return nil
	case cmd.Rm != nil:
		if err := c.store.Subitems().Delete(cmd.Rm.ID); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Deleted subitem %d\n", cmd.Rm.ID)
		return nil
	default:
		return fmt.Errorf("no sub subcommand specified")
	}
}

func (c *CLI) executeSetting(cmd *SettingCmd) error {
	switch {
	case cmd.Get != nil:
		value, err := c.store.Settings().Get(cmd.Get.Key, cmd.Get.Default)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, value)
		return nil
	case cmd.Set != nil:
		if err := c.store.Settings().Set(cmd.Set.Key, cmd.Set.Value); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Set %s\n", cmd.Set.Key)
		return nil
	default:
		return fmt.Errorf("no setting subcommand specified")
	}
}
