package cli

import (
	"fmt"
)

// Args represents the top-level command structure
type Args struct {
	Group   *GroupCmd   `arg:"subcommand:group" help:"Manage item groups"`
	Item    *ItemCmd    `arg:"subcommand:item" help:"Manage clipboard items"`
	Sub     *SubCmd     `arg:"subcommand:sub" help:"Manage item subitems"`
	Setting *SettingCmd `arg:"subcommand:setting" help:"Read or write raw settings"`

	DBPath     *string `arg:"--db" help:"Database file path (default: ~/.config/clipvault/clipvault.db)"`
	ConfigPath *string `arg:"--config" help:"Config file path (default: ~/.config/clipvault/config.yaml)"`
}

// GroupCmd groups the group-management subcommands
type GroupCmd struct {
	List   *GroupListCmd   `arg:"subcommand:list" help:"List groups in display order"`
	Add    *GroupAddCmd    `arg:"subcommand:add" help:"Create a group"`
	Rename *GroupRenameCmd `arg:"subcommand:rename" help:"Rename a group"`
	Rm     *GroupRmCmd     `arg:"subcommand:rm" help:"Delete a group and its items"`
	Order  *GroupOrderCmd  `arg:"subcommand:order" help:"Reorder groups"`
	Use    *GroupUseCmd    `arg:"subcommand:use" help:"Set the destination group for new items"`
}

type GroupListCmd struct{}

type GroupAddCmd struct {
	Name string `arg:"positional,required" help:"Group name (must be unique)"`
}

type GroupRenameCmd struct {
	ID   int64  `arg:"positional,required" help:"Group id"`
	Name string `arg:"positional,required" help:"New group name"`
}

type GroupRmCmd struct {
	ID int64 `arg:"positional,required" help:"Group id"`
}

type GroupOrderCmd struct {
	IDs []int64 `arg:"positional,required" help:"Group ids in the desired order"`
}

type GroupUseCmd struct {
	ID int64 `arg:"positional,required" help:"Group id"`
}

// ItemCmd groups the item-management subcommands
type ItemCmd struct {
	List  *ItemListCmd  `arg:"subcommand:list" help:"List items in display order"`
	Add   *ItemAddCmd   `arg:"subcommand:add" help:"Capture a new item"`
	Show  *ItemShowCmd  `arg:"subcommand:show" help:"Print an item's full content"`
	Pin   *ItemPinCmd   `arg:"subcommand:pin" help:"Pin an item (exempt from retention)"`
	Unpin *ItemUnpinCmd `arg:"subcommand:unpin" help:"Unpin an item"`
	Touch *ItemTouchCmd `arg:"subcommand:touch" help:"Mark an item as just used"`
	Mv    *ItemMvCmd    `arg:"subcommand:mv" help:"Move an item to another group"`
	Rm    *ItemRmCmd    `arg:"subcommand:rm" help:"Delete an item"`
}

type ItemListCmd struct {
	Group    *int64 `arg:"-g,--group" help:"Restrict to one group id"`
	All      bool   `arg:"--all" help:"List across all groups"`
	Search   string `arg:"-s,--search" help:"Filter by content substring (case-sensitive)"`
	Previews bool   `arg:"--previews" help:"Preview mode: substitute lightweight fields"`
}

type ItemAddCmd struct {
	File  *string `arg:"positional" help:"File to read content from (stdin if omitted)"`
	Type  string  `arg:"-t,--type" help:"Content type (text, html, image, svg+xml, drawio, color); auto-detected if omitted"`
	Group *int64  `arg:"-g,--group" help:"Destination group id (configured destination if omitted)"`
}

type ItemShowCmd struct {
	ID int64 `arg:"positional,required" help:"Item id"`
}

type ItemPinCmd struct {
	ID int64 `arg:"positional,required" help:"Item id"`
}

type ItemUnpinCmd struct {
	ID int64 `arg:"positional,required" help:"Item id"`
}

type ItemTouchCmd struct {
	ID int64 `arg:"positional,required" help:"Item id"`
}

type ItemMvCmd struct {
	ID    int64 `arg:"positional,required" help:"Item id"`
	Group int64 `arg:"positional,required" help:"Destination group id"`
}

type ItemRmCmd struct {
	ID int64 `arg:"positional,required" help:"Item id"`
}

// SubCmd groups the subitem-management subcommands
type SubCmd struct {
	List    *SubListCmd    `arg:"subcommand:list" help:"List an item's subitems"`
	Add     *SubAddCmd     `arg:"subcommand:add" help:"Attach a subitem to an item"`
	Replace *SubReplaceCmd `arg:"subcommand:replace" help:"Replace all subitems of a tag with fresh text"`
	Rm      *SubRmCmd      `arg:"subcommand:rm" help:"Delete a subitem"`
}

type SubListCmd struct {
	ItemID int64 `arg:"positional,required" help:"Item id"`
}

type SubAddCmd struct {
	ItemID int64    `arg:"positional,required" help:"Item id"`
	Text   string   `arg:"positional,required" help:"Subitem text"`
	Tag    string   `arg:"--tag" help:"Subitem tag (url, file, note, ...)"`
	Icons  []string `arg:"--icons" help:"Icon identifiers"`
}

type SubReplaceCmd struct {
	ItemID int64  `arg:"positional,required" help:"Item id"`
	Text   string `arg:"positional,required" help:"Replacement text"`
	Tag    string `arg:"--tag,required" help:"Tag to replace"`
}

type SubRmCmd struct {
	ID int64 `arg:"positional,required" help:"Subitem id"`
}

// SettingCmd groups the raw settings subcommands
type SettingCmd struct {
	Get *SettingGetCmd `arg:"subcommand:get" help:"Read a setting"`
	Set *SettingSetCmd `arg:"subcommand:set" help:"Write a setting"`
}

type SettingGetCmd struct {
	Key     string `arg:"positional,required" help:"Setting key"`
	Default string `arg:"--default" help:"Value to print when the key is absent"`
}

type SettingSetCmd struct {
	Key   string `arg:"positional,required" help:"Setting key"`
	Value string `arg:"positional,required" help:"Setting value"`
}

// Description returns the program description
func (Args) Description() string {
	return "clipvault - persistent clipboard history storage with per-group retention"
}

// Version returns the program version
func (Args) Version() string {
	return "clipvault 0.1.0"
}

// Epilogue returns additional help text
func (Args) Epilogue() string {
	return `Examples:
  # Groups
  clipvault group list
  clipvault group add Work
  clipvault group use 2                # new items land in group 2

  # Items
  echo "hello" | clipvault item add    # capture from stdin
  clipvault item list --all --previews
  clipvault item pin 7                 # exempt from retention pruning
  clipvault item mv 7 2                # move item 7 into group 2

  # Subitems
  clipvault sub replace 7 "bonjour" --tag translate
  clipvault sub list 7

For more information, visit: https://github.com/yiblet/clipvault`
}

// Validate performs validation on the parsed arguments
func (args *Args) Validate() error {
	if args.Item != nil && args.Item.List != nil {
		if args.Item.List.All && args.Item.List.Group != nil {
			return fmt.Errorf("cannot specify both --all and --group")
		}
	}
	if args.Item != nil && args.Item.Add != nil {
		if err := validateContentType(args.Item.Add.Type); err != nil {
			return err
		}
	}
	return nil
}

func validateContentType(contentType string) error {
	switch contentType {
	case "", "text", "html", "image", "svg+xml", "drawio", "color":
		return nil
	default:
		return fmt.Errorf("unknown content type: %s", contentType)
	}
}
