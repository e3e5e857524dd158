package models

// RolePermission is a grant: the row's existence means the role holds the permission.
// There is no "denied" state. The pair is unique and removed when either parent is deleted.
type RolePermission struct {
	// RoleID is the ID of the role in this grant.
	RoleID uint `gorm:"primaryKey;column:role_id;autoIncrement:false"`
	// PermissionID is the ID of the permission in this grant.
	PermissionID uint `gorm:"primaryKey;column:permission_id;autoIncrement:false"`
	// Role is the associated role (loaded via foreign key).
	Role Role `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
	// Permission is the associated permission (loaded via foreign key).
	Permission Permission `gorm:"foreignKey:PermissionID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for the RolePermission model.
func (RolePermission) TableName() string {
	return "role_permissions"
}
