package domain

import "time"

const (
	// InboxName is the name given to a lazily created default project.
	InboxName = "Inbox"
	// InboxIcon is the icon of the default project.
	InboxIcon = "inbox"
	// DefaultIcon replaces any icon outside the supported set.
	DefaultIcon = "folder"
)

// Icons is the fixed set of project icon symbols, in display order.
var Icons = []string{
	"inbox",
	"folder",
	"briefcase",
	"home",
	"shopping-cart",
	"heart",
	"star",
	"bookmark",
	"calendar",
	"file-text",
	"book",
	"coffee",
	"laptop",
	"music",
	"gamepad-2",
	"dumbbell",
	"plane",
	"graduation-cap",
}

// IsValidIcon reports whether icon is in the supported set.
func IsValidIcon(icon string) bool {
	for _, known := range Icons {
		if icon == known {
			return true
		}
	}
	return false
}

// NormalizeIcon returns icon when supported and DefaultIcon otherwise.
func NormalizeIcon(icon string) string {
	if IsValidIcon(icon) {
		return icon
	}
	return DefaultIcon
}

// Project represents a named grouping of tasks.
type Project struct {
	ID        string
	Name      string
	Icon      string
	UserID    string
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProject creates a non-default project, normalizing the icon.
func NewProject(name, icon, userID string) Project {
	return Project{
		Name:   name,
		Icon:   NormalizeIcon(icon),
		UserID: userID,
	}
}

// NewInbox creates the default project for userID.
func NewInbox(userID string) Project {
	return Project{
		Name:      InboxName,
		Icon:      InboxIcon,
		UserID:    userID,
		IsDefault: true,
	}
}

// IsValid checks if the project has the fields every stored project carries.
func (p Project) IsValid() bool {
	return p.Name != "" && p.UserID != ""
}

// String returns the project name for display purposes.
func (p Project) String() string {
	return p.Name
}
