package rbac_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/possuite/backoffice/internal/auth"
	"github.com/possuite/backoffice/internal/db/dbtest"
	"github.com/possuite/backoffice/internal/rbac"
)

var (
	root    = &auth.Context{UserID: 1, RoleID: 1, RoleName: "Admin", SuperAdmin: true}
	cashier = &auth.Context{UserID: 9, RoleID: 5, Permissions: auth.NewPermissionSet(auth.PermProcessSales)}
)

type fixture struct {
	db  *gorm.DB
	svc *rbac.Service
	ctx context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := dbtest.New(t)

	return &fixture{db: db, svc: rbac.NewService(db), ctx: context.Background()}
}

func (f *fixture) count(t *testing.T, model any, where ...any) int64 {
	t.Helper()

	var n int64

	q := f.db.Model(model)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}

	require.NoError(t, q.Count(&n).Error)

	return n
}

func (f *fixture) grantedIDs(t *testing.T, roleID uint) []uint {
	t.Helper()

	ids, err := f.svc.RolePermissionIDs(f.ctx, roleID)
	require.NoError(t, err)

	return ids
}
