package rbac_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/possuite/backoffice/internal/auth"
	"github.com/possuite/backoffice/internal/db/controller/activity"
	"github.com/possuite/backoffice/internal/db/dbtest"
	"github.com/possuite/backoffice/internal/db/models"
	"github.com/possuite/backoffice/internal/rbac"
)

func TestTogglePermissionParity(t *testing.T) {
	f := newFixture(t)
	role := dbtest.Role(t, f.db, "Cashier", false)
	perm := dbtest.Permission(t, f.db, auth.PermVoidSales, auth.CategorySales)

	for i := 1; i <= 5; i++ {
		change, err := f.svc.TogglePermission(f.ctx, root, role.ID, perm.ID)
		require.NoError(t, err)

		odd := i%2 == 1
		assert.Equal(t, odd, change.Granted, "after %d toggles", i)
		assert.Equal(t, !odd, change.Previous)
		assert.Equal(t, auth.PermVoidSales, change.Permission)

		has, err := f.svc.HasGrant(f.ctx, role.ID, perm.ID)
		require.NoError(t, err)
		assert.Equal(t, odd, has)
	}

	// one audit row per toggle, newest first
	entries, err := activity.List(f.db, 0)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, "Granted permission void_sales to Cashier", entries[0].Action)
	assert.Equal(t, "Revoked permission void_sales from Cashier", entries[1].Action)
}

func TestSetGrantIsIdempotent(t *testing.T) {
	f := newFixture(t)
	role := dbtest.Role(t, f.db, "Cashier", false)
	perm := dbtest.Permission(t, f.db, auth.PermApplyDiscounts, auth.CategorySales)

	change, err := f.svc.SetGrant(f.ctx, root, role.ID, perm.ID, true)
	require.NoError(t, err)
	assert.True(t, change.Changed())
	assert.False(t, change.Previous)
	assert.True(t, change.Granted)

	// a double submit keeps the state and writes nothing
	change, err = f.svc.SetGrant(f.ctx, root, role.ID, perm.ID, true)
	require.NoError(t, err)
	assert.False(t, change.Changed())
	assert.True(t, change.Previous)

	assert.Equal(t, int64(1), f.count(t, &models.RolePermission{}))
	assert.Equal(t, int64(1), f.count(t, &models.ActivityLog{}))

	change, err = f.svc.SetGrant(f.ctx, root, role.ID, perm.ID, false)
	require.NoError(t, err)
	assert.True(t, change.Changed())
	assert.False(t, change.Granted)

	change, err = f.svc.SetGrant(f.ctx, root, role.ID, perm.ID, false)
	require.NoError(t, err)
	assert.False(t, change.Changed())
	assert.Zero(t, f.count(t, &models.RolePermission{}))
}

func TestToggleErrors(t *testing.T) {
	f := newFixture(t)
	role := dbtest.Role(t, f.db, "Cashier", false)
	perm := dbtest.Permission(t, f.db, auth.PermVoidSales, auth.CategorySales)

	_, err := f.svc.TogglePermission(f.ctx, root, 999, perm.ID)
	require.ErrorIs(t, err, rbac.ErrRoleNotFound)

	_, err = f.svc.TogglePermission(f.ctx, root, role.ID, 999)
	require.ErrorIs(t, err, rbac.ErrPermissionNotFound)

	_, err = f.svc.TogglePermission(f.ctx, cashier, role.ID, perm.ID)
	require.ErrorIs(t, err, rbac.ErrForbidden)

	assert.Zero(t, f.count(t, &models.ActivityLog{}))
}

func TestToggleCategoryFromFull(t *testing.T) {
	f := newFixture(t)
	role := dbtest.Role(t, f.db, "Cashier", false)
	a := dbtest.Permission(t, f.db, auth.PermProcessSales, auth.CategorySales)
	b := dbtest.Permission(t, f.db, auth.PermVoidSales, auth.CategorySales)
	other := dbtest.Permission(t, f.db, auth.PermViewInventory, auth.CategoryInventory)
	dbtest.Grant(t, f.db, role.ID, a.ID, b.ID, other.ID)

	// fully granted: revoke all
	change, err := f.svc.ToggleCategory(f.ctx, root, role.ID, auth.CategorySales)
	require.NoError(t, err)
	assert.False(t, change.Granted)
	assert.Equal(t, 2, change.Affected)
	assert.Equal(t, []uint{other.ID}, f.grantedIDs(t, role.ID), "other categories are untouched")

	// from empty: grant all, never a no-op
	change, err = f.svc.ToggleCategory(f.ctx, root, role.ID, auth.CategorySales)
	require.NoError(t, err)
	assert.True(t, change.Granted)
	assert.ElementsMatch(t, []uint{a.ID, b.ID, other.ID}, f.grantedIDs(t, role.ID))

	entries, err := activity.List(f.db, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Granted all 2 Sales permissions to Cashier", entries[0].Action)
	assert.Equal(t, "Revoked all 2 Sales permissions from Cashier", entries[1].Action)
}

func TestToggleCategoryFromPartial(t *testing.T) {
	f := newFixture(t)
	role := dbtest.Role(t, f.db, "Stock Clerk", false)

	var ids []uint
	for _, name := range []string{"view_inventory", "manage_inventory", "manage_suppliers", "view_expiry"} {
		ids = append(ids, dbtest.Permission(t, f.db, name, auth.CategoryInventory).ID)
	}

	partials := [][]uint{
		{ids[0]},
		{ids[1], ids[3]},
		{ids[0], ids[1], ids[2]},
	}

	for _, granted := range partials {
		require.NoError(t, f.db.Where("role_id = ?", role.ID).Delete(&models.RolePermission{}).Error)
		dbtest.Grant(t, f.db, role.ID, granted...)

		before := len(f.grantedIDs(t, role.ID))

		change, err := f.svc.ToggleCategory(f.ctx, root, role.ID, auth.CategoryInventory)
		require.NoError(t, err)
		assert.True(t, change.Granted)

		after := f.grantedIDs(t, role.ID)
		assert.ElementsMatch(t, ids, after, "partial state is normalized to fully granted")
		assert.GreaterOrEqual(t, len(after), before)
	}
}

func TestToggleCategoryRollsBackOnAuditFailure(t *testing.T) {
	f := newFixture(t)
	role := dbtest.Role(t, f.db, "Stock Clerk", false)
	p1 := dbtest.Permission(t, f.db, "view_inventory", auth.CategoryInventory)
	dbtest.Permission(t, f.db, "manage_inventory", auth.CategoryInventory)
	dbtest.Grant(t, f.db, role.ID, p1.ID)

	require.NoError(t, f.db.Migrator().DropTable(&models.ActivityLog{}))

	_, err := f.svc.ToggleCategory(f.ctx, root, role.ID, auth.CategoryInventory)
	require.Error(t, err)
	assert.Equal(t, []uint{p1.ID}, f.grantedIDs(t, role.ID))
}

func TestToggleCategoryEmptyAndCase(t *testing.T) {
	f := newFixture(t)
	role := dbtest.Role(t, f.db, "Cashier", false)
	dbtest.Permission(t, f.db, "odd_perm", "general")

	_, err := f.svc.ToggleCategory(f.ctx, root, role.ID, "Nonexistent")
	require.ErrorIs(t, err, rbac.ErrEmptyCategory)

	// category labels match exactly
	_, err = f.svc.ToggleCategory(f.ctx, root, role.ID, "General")
	require.ErrorIs(t, err, rbac.ErrEmptyCategory)

	change, err := f.svc.ToggleCategory(f.ctx, root, role.ID, "general")
	require.NoError(t, err)
	assert.True(t, change.Granted)

	_, err = f.svc.ToggleCategory(f.ctx, root, 999, "general")
	require.ErrorIs(t, err, rbac.ErrRoleNotFound)
}

func TestSetCategory(t *testing.T) {
	f := newFixture(t)
	role := dbtest.Role(t, f.db, "Bookkeeper", false)
	a := dbtest.Permission(t, f.db, auth.PermManageExpenses, auth.CategoryFinance)
	b := dbtest.Permission(t, f.db, auth.PermViewReports, auth.CategoryFinance)
	dbtest.Grant(t, f.db, role.ID, a.ID)

	change, err := f.svc.SetCategory(f.ctx, root, role.ID, auth.CategoryFinance, true)
	require.NoError(t, err)
	assert.True(t, change.Granted)
	assert.ElementsMatch(t, []uint{a.ID, b.ID}, f.grantedIDs(t, role.ID))

	// target state repeats cleanly
	_, err = f.svc.SetCategory(f.ctx, root, role.ID, auth.CategoryFinance, true)
	require.NoError(t, err)
	assert.Len(t, f.grantedIDs(t, role.ID), 2)

	_, err = f.svc.SetCategory(f.ctx, root, role.ID, auth.CategoryFinance, false)
	require.NoError(t, err)
	assert.Empty(t, f.grantedIDs(t, role.ID))
}
