package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/possuite/backoffice/internal/db/dbtest"
	"github.com/possuite/backoffice/internal/db/models"
)

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("process_sales"))
	assert.True(t, ValidName("View2"))
	assert.False(t, ValidName("process sales"))
	assert.False(t, ValidName("void-sales"))
	assert.False(t, ValidName(""))
}

func TestCreate(t *testing.T) {
	testCases := []struct {
		name          string
		dbParam       bool
		permName      string
		category      string
		expectedError error
		expectedCat   string
	}{
		{name: "nil database", permName: "x", expectedError: ErrDBNil},
		{name: "empty name", dbParam: true, permName: "  ", expectedError: ErrPermissionNameEmpty},
		{name: "invalid name", dbParam: true, permName: "void sales", expectedError: ErrPermissionNameInvalid},
		{name: "default category", dbParam: true, permName: "view_reports", expectedCat: models.DefaultPermissionCategory},
		{name: "explicit category", dbParam: true, permName: "void_sales", category: " Sales ", expectedCat: "Sales"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var db *gorm.DB
			if tc.dbParam {
				db = dbtest.New(t)
			}

			perm, err := Create(db, tc.permName, "desc", tc.category)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, perm)

				return
			}

			require.NoError(t, err)
			assert.NotZero(t, perm.ID)
			assert.Equal(t, tc.expectedCat, perm.Category)
		})
	}
}

func TestCreateDuplicate(t *testing.T) {
	db := dbtest.New(t)

	_, err := Create(db, "process_sales", "", "Sales")
	require.NoError(t, err)

	_, err = Create(db, "process_sales", "", "Sales")
	require.ErrorIs(t, err, ErrPermissionAlreadyExists)
}

func TestGetAndGetByName(t *testing.T) {
	db := dbtest.New(t)
	perm := dbtest.Permission(t, db, "view_inventory", "Inventory")

	got, err := Get(db, perm.ID)
	require.NoError(t, err)
	assert.Equal(t, "view_inventory", got.Name)

	got, err = GetByName(db, "view_inventory")
	require.NoError(t, err)
	assert.Equal(t, perm.ID, got.ID)

	_, err = Get(db, 999)
	require.ErrorIs(t, err, ErrPermissionNotFound)

	_, err = GetByName(db, "missing")
	require.ErrorIs(t, err, ErrPermissionNotFound)

	_, err = GetByName(db, "")
	require.ErrorIs(t, err, ErrPermissionNameEmpty)

	_, err = Get(nil, 1)
	require.ErrorIs(t, err, ErrDBNil)
}

func TestListCategoriesGrouped(t *testing.T) {
	db := dbtest.New(t)
	dbtest.Permission(t, db, "void_sales", "Sales")
	dbtest.Permission(t, db, "view_inventory", "Inventory")
	dbtest.Permission(t, db, "process_sales", "Sales")
	dbtest.Permission(t, db, "odd_case", "sales")

	perms, err := List(db)
	require.NoError(t, err)
	require.Len(t, perms, 4)
	assert.Equal(t, "view_inventory", perms[0].Name)
	assert.Equal(t, "process_sales", perms[1].Name)
	assert.Equal(t, "void_sales", perms[2].Name)

	sales, err := ListByCategory(db, "Sales")
	require.NoError(t, err)
	require.Len(t, sales, 2, "category match is case-sensitive")

	categories, err := Categories(db)
	require.NoError(t, err)
	assert.Equal(t, []string{"Inventory", "Sales", "sales"}, categories)

	groups := Grouped(perms)
	require.Len(t, groups, 3)
	assert.Equal(t, "Inventory", groups[0].Category)
	assert.Equal(t, "Sales", groups[1].Category)
	assert.Len(t, groups[1].Permissions, 2)

	assert.Empty(t, Grouped(nil))
}

func TestUpdate(t *testing.T) {
	db := dbtest.New(t)
	perm := dbtest.Permission(t, db, "view_reports", "Finance")

	updated, err := Update(db, perm.ID, "Open the reports screen", "")
	require.NoError(t, err)
	assert.Equal(t, "view_reports", updated.Name)
	assert.Equal(t, models.DefaultPermissionCategory, updated.Category)
	assert.Equal(t, "Open the reports screen", updated.Description)

	_, err = Update(db, 999, "", "")
	require.ErrorIs(t, err, ErrPermissionNotFound)
}

func TestDelete(t *testing.T) {
	db := dbtest.New(t)
	role := dbtest.Role(t, db, "Cashier", false)
	perm := dbtest.Permission(t, db, "process_sales", "Sales")
	dbtest.Grant(t, db, role.ID, perm.ID)

	require.NoError(t, Delete(db, perm.ID))

	var grants int64
	require.NoError(t, db.Model(&models.RolePermission{}).Count(&grants).Error)
	assert.Zero(t, grants)

	require.ErrorIs(t, Delete(db, perm.ID), ErrPermissionNotFound)
	require.ErrorIs(t, Delete(nil, perm.ID), ErrDBNil)
}
