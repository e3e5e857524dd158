package models

// RoleMenuAccess stores whether a role sees a menu section and whether it is highlighted.
// A missing row resolves to "not visible". A stored row never has IsPriority without IsVisible.
type RoleMenuAccess struct {
	// RoleID is the ID of the role.
	RoleID uint `gorm:"primaryKey;column:role_id;autoIncrement:false"`
	// MenuSectionID is the ID of the menu section.
	MenuSectionID uint `gorm:"primaryKey;column:menu_section_id;autoIncrement:false"`
	// IsVisible shows the section in the role's navigation.
	IsVisible bool `gorm:"default:false"`
	// IsPriority expands and highlights the section in the role's navigation.
	IsPriority bool `gorm:"default:false"`
	// Role is the associated role (removed with it).
	Role Role `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
	// MenuSection is the associated section (removed with it).
	MenuSection MenuSection `gorm:"foreignKey:MenuSectionID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for the RoleMenuAccess model.
func (RoleMenuAccess) TableName() string {
	return "role_menu_access"
}
