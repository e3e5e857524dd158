package models

import "time"

// DefaultPermissionCategory is used when a permission is stored without a category.
const DefaultPermissionCategory = "General"

// Permission represents a named access right, e.g. "process_sales".
// Category is a free-text label used to group permissions on screen and for bulk toggling.
// It is not a referential entity: "general" and "General" are two different groups.
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey"`
	// Name is the unique permission identifier (charset [A-Za-z0-9_]).
	Name string `gorm:"unique;size:100;not null"`
	// Description provides a human-readable explanation of what this permission grants.
	Description string `gorm:"size:255"`
	// Category groups permissions for display and bulk toggling.
	Category string `gorm:"size:100;not null;default:'General';index"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the permission was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Permission model.
func (Permission) TableName() string {
	return "permissions"
}
