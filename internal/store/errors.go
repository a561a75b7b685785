package store

import "errors"

// ErrDuplicateName is returned when creating or renaming a group to a name
// that another group already holds. Surfaced distinctly so callers can show
// "already exists" instead of a generic failure.
var ErrDuplicateName = errors.New("group name already exists")

// ErrDefaultGroup is returned when attempting to delete the Default group.
var ErrDefaultGroup = errors.New("default group cannot be deleted")
