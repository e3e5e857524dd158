package profile_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/possuite/backoffice/internal/auth"
	"github.com/possuite/backoffice/internal/db/dbtest"
	"github.com/possuite/backoffice/internal/web/handler/handlertest"
	"github.com/possuite/backoffice/internal/web/handler/profile"
)

func TestChangePassword(t *testing.T) {
	db := dbtest.New(t)
	r := dbtest.Role(t, db, "Cashier", false)
	provider := auth.NewLocalProvider(db)

	u, err := provider.CreateUser("bob", "", "old-password", "Bob", "", r.ID)
	require.NoError(t, err)

	actor := handlertest.Actor(u.ID, r.ID, auth.PermProcessSales)

	tests := []struct {
		name   string
		form   url.Values
		status int
		body   string
	}{
		{
			name:   "too short",
			form:   url.Values{"current_password": {"old-password"}, "new_password": {"short"}, "confirm_password": {"short"}},
			status: http.StatusBadRequest,
			body:   profile.TemplateName + "|" + profile.ErrPasswordTooShort.Error(),
		},
		{
			name:   "mismatch",
			form:   url.Values{"current_password": {"old-password"}, "new_password": {"new-password"}, "confirm_password": {"new-passw0rd"}},
			status: http.StatusBadRequest,
			body:   profile.TemplateName + "|" + profile.ErrPasswordMismatch.Error(),
		},
		{
			name:   "wrong current",
			form:   url.Values{"current_password": {"guess"}, "new_password": {"new-password"}, "confirm_password": {"new-password"}},
			status: http.StatusBadRequest,
		},
		{
			name:   "changed",
			form:   url.Values{"current_password": {"old-password"}, "new_password": {"new-password"}, "confirm_password": {"new-password"}},
			status: http.StatusFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := handlertest.Init(t, &profile.Service{}, db, actor)

			resp := handlertest.PostForm(t, app, profile.Path+"/password", tt.form)
			assert.Equal(t, tt.status, resp.StatusCode)

			if tt.body != "" {
				assert.Equal(t, tt.body, handlertest.Body(t, resp))
			}
		})
	}

	_, err = provider.Authenticate("bob", "new-password")
	require.NoError(t, err)

	app := handlertest.Init(t, &profile.Service{}, db, actor)
	resp := handlertest.Get(t, app, profile.Path)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, profile.TemplateName, handlertest.Body(t, resp))
}
