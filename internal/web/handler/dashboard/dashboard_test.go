package dashboard_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/possuite/backoffice/internal/auth"
	"github.com/possuite/backoffice/internal/db/controller/activity"
	"github.com/possuite/backoffice/internal/db/dbtest"
	"github.com/possuite/backoffice/internal/web/handler/dashboard"
	"github.com/possuite/backoffice/internal/web/handler/handlertest"
)

func TestGet(t *testing.T) {
	db := dbtest.New(t)
	role := dbtest.Role(t, db, "Cashier", false)
	require.NoError(t, activity.Record(db, 1, "Logged in", nil))

	tests := []struct {
		name   string
		actor  *auth.Context
		status int
		body   string
	}{
		{name: "anonymous", status: http.StatusFound},
		{name: "own activity", actor: handlertest.Actor(1, role.ID), status: http.StatusOK, body: dashboard.TemplateName},
		{name: "all activity", actor: handlertest.Actor(2, role.ID, auth.PermViewActivity), status: http.StatusOK, body: dashboard.TemplateName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := handlertest.Init(t, &dashboard.Service{}, db, tt.actor)

			resp := handlertest.Get(t, app, dashboard.Path)
			assert.Equal(t, tt.status, resp.StatusCode)

			if tt.body != "" {
				assert.Equal(t, tt.body, handlertest.Body(t, resp))
			}
		})
	}
}
