package models

// MenuSection is a top-level navigation section of the back office.
type MenuSection struct {
	// ID is the unique identifier for the section.
	ID uint `gorm:"primaryKey"`
	// SectionKey is the stable identifier (lowercase and underscores), e.g. "inventory".
	SectionKey string `gorm:"unique;size:100;not null"`
	// SectionName is the label shown in the navigation.
	SectionName string `gorm:"size:100;not null"`
	// SectionIcon is the icon class rendered next to the label.
	SectionIcon string `gorm:"size:100"`
	// SectionDescription is shown on the assignment screen.
	SectionDescription string `gorm:"size:255"`
	// SortOrder orders sections ascending in the navigation.
	SortOrder int `gorm:"default:0"`
	// IsActive hides the section for everyone when false.
	IsActive bool `gorm:"default:true"`
}

// TableName specifies the database table name for the MenuSection model.
func (MenuSection) TableName() string {
	return "menu_sections"
}
