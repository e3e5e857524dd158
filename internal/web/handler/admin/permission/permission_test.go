package permission_test

import (
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/possuite/backoffice/internal/auth"
	permctl "github.com/possuite/backoffice/internal/db/controller/permission"
	"github.com/possuite/backoffice/internal/db/dbtest"
	"github.com/possuite/backoffice/internal/db/models"
	"github.com/possuite/backoffice/internal/web/handler/admin/permission"
	"github.com/possuite/backoffice/internal/web/handler/handlertest"
)

func TestList(t *testing.T) {
	db := dbtest.New(t)
	r := dbtest.Role(t, db, "Admin", true)
	dbtest.Permission(t, db, auth.PermProcessSales, auth.CategorySales)

	app := handlertest.Init(t, &permission.Service{}, db, handlertest.Actor(1, r.ID, auth.PermManagePermissions))

	resp := handlertest.Get(t, app, permission.Path)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, permission.TemplateList, handlertest.Body(t, resp))
}

func TestCreate(t *testing.T) {
	db := dbtest.New(t)
	r := dbtest.Role(t, db, "Admin", true)
	dbtest.Permission(t, db, auth.PermProcessSales, auth.CategorySales)

	tests := []struct {
		name   string
		form   url.Values
		status int
		body   string
	}{
		{
			name:   "created with default category",
			form:   url.Values{"name": {"issue_refunds"}},
			status: http.StatusFound,
		},
		{
			name:   "invalid charset",
			form:   url.Values{"name": {"issue-refunds"}},
			status: http.StatusBadRequest,
			body:   permission.TemplateList + "|" + permctl.ErrPermissionNameInvalid.Error(),
		},
		{
			name:   "duplicate",
			form:   url.Values{"name": {auth.PermProcessSales}},
			status: http.StatusBadRequest,
			body:   permission.TemplateList + "|" + permctl.ErrPermissionAlreadyExists.Error(),
		},
		{
			name:   "missing name",
			form:   url.Values{"category": {"Sales"}},
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := handlertest.Init(t, &permission.Service{}, db, handlertest.Actor(1, r.ID, auth.PermManageRoles))

			resp := handlertest.PostForm(t, app, permission.Path, tt.form)
			assert.Equal(t, tt.status, resp.StatusCode)

			if tt.body != "" {
				assert.Equal(t, tt.body, handlertest.Body(t, resp))
			}
		})
	}

	created, err := permctl.GetByName(db, "issue_refunds")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPermissionCategory, created.Category)

	var audits int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Count(&audits).Error)
	assert.Equal(t, int64(1), audits)
}

func TestUpdateAndDelete(t *testing.T) {
	db := dbtest.New(t)
	r := dbtest.Role(t, db, "Admin", true)
	p := dbtest.Permission(t, db, "issue_refunds", "")
	dbtest.Grant(t, db, r.ID, p.ID)

	app := handlertest.Init(t, &permission.Service{}, db, handlertest.Actor(1, r.ID, auth.PermManagePermissions))
	path := permission.Path + "/" + strconv.FormatUint(uint64(p.ID), 10)

	resp := handlertest.PostForm(t, app, path, url.Values{"description": {"Refund a sale"}, "category": {"Sales"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)

	updated, err := permctl.Get(db, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sales", updated.Category)
	assert.Equal(t, "issue_refunds", updated.Name)

	resp = handlertest.PostForm(t, app, path+"/delete", url.Values{})
	require.Equal(t, http.StatusFound, resp.StatusCode)

	_, err = permctl.Get(db, p.ID)
	require.ErrorIs(t, err, permctl.ErrPermissionNotFound)

	var grants int64
	require.NoError(t, db.Model(&models.RolePermission{}).Count(&grants).Error)
	assert.Zero(t, grants)

	resp = handlertest.PostForm(t, app, path+"/delete", url.Values{})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDenied(t *testing.T) {
	db := dbtest.New(t)
	r := dbtest.Role(t, db, "Cashier", false)

	app := handlertest.Init(t, &permission.Service{}, db, handlertest.Actor(1, r.ID, auth.PermViewRoles))

	resp := handlertest.PostForm(t, app, permission.Path, url.Values{"name": {"issue_refunds"}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, auth.DeniedRedirect, resp.Header.Get("Location"))
}
