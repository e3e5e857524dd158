package permissions_test

import (
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/possuite/backoffice/internal/auth"
	"github.com/possuite/backoffice/internal/db/dbtest"
	"github.com/possuite/backoffice/internal/db/models"
	"github.com/possuite/backoffice/internal/rbac"
	"github.com/possuite/backoffice/internal/web/handler/admin/role"
	"github.com/possuite/backoffice/internal/web/handler/admin/role/permissions"
	"github.com/possuite/backoffice/internal/web/handler/handlertest"
)

type fixture struct {
	db      *gorm.DB
	cashier models.Role
	sales   models.Permission
	voids   models.Permission
	path    string
	actor   *auth.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := dbtest.New(t)
	cashier := dbtest.Role(t, db, "Cashier", false)

	return &fixture{
		db:      db,
		cashier: cashier,
		sales:   dbtest.Permission(t, db, auth.PermProcessSales, auth.CategorySales),
		voids:   dbtest.Permission(t, db, auth.PermVoidSales, auth.CategorySales),
		path:    role.Path + "/" + strconv.FormatUint(uint64(cashier.ID), 10) + "/permissions",
		actor:   handlertest.Actor(1, cashier.ID, auth.PermManageRoles),
	}
}

func post(t *testing.T, app *fiber.App, path string, form url.Values) (int, permissions.Response) {
	t.Helper()

	resp := handlertest.PostForm(t, app, path, form)

	var out permissions.Response
	require.NoError(t, json.Unmarshal([]byte(handlertest.Body(t, resp)), &out))

	return resp.StatusCode, out
}

func (f *fixture) granted(t *testing.T, permID uint) bool {
	t.Helper()

	ok, err := rbac.NewService(f.db).HasGrant(t.Context(), f.cashier.ID, permID)
	require.NoError(t, err)

	return ok
}

func TestGet(t *testing.T) {
	f := newFixture(t)
	app := handlertest.Init(t, &permissions.Service{}, f.db, f.actor)

	resp := handlertest.Get(t, app, f.path)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, permissions.TemplateName, handlertest.Body(t, resp))
}

func TestTogglePermissionFlips(t *testing.T) {
	f := newFixture(t)
	app := handlertest.Init(t, &permissions.Service{}, f.db, f.actor)

	form := url.Values{
		"action":        {permissions.ActionTogglePermission},
		"permission_id": {strconv.FormatUint(uint64(f.sales.ID), 10)},
	}

	for i := 1; i <= 3; i++ {
		status, out := post(t, app, f.path, form)
		require.Equal(t, http.StatusOK, status)
		assert.True(t, out.Success)
		assert.Equal(t, i%2 == 1, out.Granted)
		assert.Equal(t, i%2 == 1, f.granted(t, f.sales.ID))
	}
}

func TestSetGrantTargetState(t *testing.T) {
	f := newFixture(t)
	app := handlertest.Init(t, &permissions.Service{}, f.db, f.actor)

	form := url.Values{
		"action":        {permissions.ActionTogglePermission},
		"permission_id": {strconv.FormatUint(uint64(f.sales.ID), 10)},
		"granted":       {"1"},
	}

	// a double submit leaves the grant in place
	for range 2 {
		status, out := post(t, app, f.path, form)
		require.Equal(t, http.StatusOK, status)
		assert.True(t, out.Granted)
	}

	assert.True(t, f.granted(t, f.sales.ID))

	var audits int64
	require.NoError(t, f.db.Model(&models.ActivityLog{}).Count(&audits).Error)
	assert.Equal(t, int64(1), audits)
}

func TestToggleCategory(t *testing.T) {
	f := newFixture(t)
	dbtest.Grant(t, f.db, f.cashier.ID, f.sales.ID)

	app := handlertest.Init(t, &permissions.Service{}, f.db, f.actor)

	form := url.Values{
		"action":   {permissions.ActionToggleCategory},
		"category": {auth.CategorySales},
	}

	// partial grant ends fully granted
	status, out := post(t, app, f.path, form)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, out.Granted)
	assert.True(t, f.granted(t, f.sales.ID))
	assert.True(t, f.granted(t, f.voids.ID))

	// fully granted revokes all
	status, out = post(t, app, f.path, form)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, out.Granted)
	assert.False(t, f.granted(t, f.sales.ID))
	assert.False(t, f.granted(t, f.voids.ID))
}

func TestPostFailures(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		path   string
		form   url.Values
		status int
	}{
		{
			name:   "unknown action",
			path:   f.path,
			form:   url.Values{"action": {"drop_table"}},
			status: http.StatusBadRequest,
		},
		{
			name:   "empty category",
			path:   f.path,
			form:   url.Values{"action": {permissions.ActionToggleCategory}, "category": {"Nothing"}},
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown permission",
			path:   f.path,
			form:   url.Values{"action": {permissions.ActionTogglePermission}, "permission_id": {"9999"}},
			status: http.StatusNotFound,
		},
		{
			name:   "bad target state",
			path:   f.path,
			form:   url.Values{"action": {permissions.ActionTogglePermission}, "permission_id": {"1"}, "granted": {"maybe"}},
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown role",
			path:   role.Path + "/9999/permissions",
			form:   url.Values{"action": {permissions.ActionTogglePermission}, "permission_id": {"1"}},
			status: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := handlertest.Init(t, &permissions.Service{}, f.db, f.actor)

			status, out := post(t, app, tt.path, tt.form)
			assert.Equal(t, tt.status, status)
			assert.False(t, out.Success)
			assert.NotEmpty(t, out.Message)
		})
	}
}

func TestPostNeedsManageRoles(t *testing.T) {
	f := newFixture(t)
	app := handlertest.Init(t, &permissions.Service{}, f.db, handlertest.Actor(2, f.cashier.ID, auth.PermViewRoles))

	status, out := post(t, app, f.path, url.Values{
		"action":        {permissions.ActionTogglePermission},
		"permission_id": {strconv.FormatUint(uint64(f.sales.ID), 10)},
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.False(t, out.Success)
	assert.False(t, f.granted(t, f.sales.ID))
}
