// Package dbtest provides a migrated in-memory store for package tests.
package dbtest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/possuite/backoffice/internal/db/conn"
	"github.com/possuite/backoffice/internal/db/models"
)

// New creates an in-memory SQLite database with the full schema.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := conn.OpenSQLite("file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err, "failed to create test database")
	require.NoError(t, conn.Migrate(db), "failed to migrate test database")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

// Role inserts a role and returns it.
func Role(t *testing.T, db *gorm.DB, name string, superAdmin bool) models.Role {
	t.Helper()

	role := models.Role{Name: name, IsSuperAdmin: superAdmin}
	require.NoError(t, db.Create(&role).Error)

	return role
}

// Permission inserts a permission and returns it.
func Permission(t *testing.T, db *gorm.DB, name, category string) models.Permission {
	t.Helper()

	perm := models.Permission{Name: name, Category: category}
	require.NoError(t, db.Create(&perm).Error)

	return perm
}

// Grant inserts role_permissions rows.
func Grant(t *testing.T, db *gorm.DB, roleID uint, permissionIDs ...uint) {
	t.Helper()

	for _, id := range permissionIDs {
		require.NoError(t, db.Create(&models.RolePermission{RoleID: roleID, PermissionID: id}).Error)
	}
}

// Section inserts an active menu section and returns it.
func Section(t *testing.T, db *gorm.DB, key string, sortOrder int) models.MenuSection {
	t.Helper()

	section := models.MenuSection{
		SectionKey:  key,
		SectionName: key,
		SortOrder:   sortOrder,
		IsActive:    true,
	}
	require.NoError(t, db.Create(&section).Error)

	return section
}

// User inserts an active user with the given role.
func User(t *testing.T, db *gorm.DB, username string, roleID uint) models.User {
	t.Helper()

	user := models.User{Username: username, Active: true, RoleID: roleID}
	require.NoError(t, db.Create(&user).Error)

	return user
}
