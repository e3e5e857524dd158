package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/possuite/backoffice/internal/db/dbtest"
	"github.com/possuite/backoffice/internal/db/models"
)

func TestRecord(t *testing.T) {
	db := dbtest.New(t)

	type grant struct {
		RoleID       uint `json:"role_id"`
		PermissionID uint `json:"permission_id"`
	}

	require.NoError(t, Record(db, 7, "Granted permission process_sales to Cashier", grant{RoleID: 2, PermissionID: 5}))
	require.NoError(t, Record(db, 0, "Seeded defaults", nil))

	entries, err := List(db, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// newest first
	assert.Equal(t, "Seeded defaults", entries[0].Action)
	assert.Equal(t, "{}", entries[0].Details)

	var decoded grant
	require.NoError(t, Decode(&entries[1], &decoded))
	assert.Equal(t, grant{RoleID: 2, PermissionID: 5}, decoded)
	assert.Equal(t, uint64(7), entries[1].UserID)
}

func TestRecordUnencodable(t *testing.T) {
	db := dbtest.New(t)

	err := Record(db, 1, "bad", map[string]any{"ch": make(chan int)})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListLimitAndUser(t *testing.T) {
	db := dbtest.New(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, Record(db, uint64(i%2), "action", nil))
	}

	entries, err := List(db, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	mine, err := ListForUser(db, 1, 10)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	for _, e := range mine {
		assert.Equal(t, uint64(1), e.UserID)
	}
}

func TestListForRole(t *testing.T) {
	db := dbtest.New(t)

	type details struct {
		RoleID uint   `json:"role_id"`
		Name   string `json:"name"`
	}

	require.NoError(t, Record(db, 1, "Created role A", details{RoleID: 1, Name: "A"}))
	require.NoError(t, Record(db, 1, "Created role L", details{RoleID: 12, Name: "L"}))
	require.NoError(t, Record(db, 1, "Updated role A", details{RoleID: 1, Name: "A"}))
	require.NoError(t, Record(db, 1, "Logged in", nil))

	entries, err := ListForRole(db, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Updated role A", entries[0].Action)
	assert.Equal(t, "Created role A", entries[1].Action)
}

func TestNilDB(t *testing.T) {
	require.ErrorIs(t, Record(nil, 1, "x", nil), ErrDBNil)

	_, err := List(nil, 1)
	require.ErrorIs(t, err, ErrDBNil)
}

func TestDecodeEmpty(t *testing.T) {
	var out map[string]any
	require.NoError(t, Decode(&models.ActivityLog{}, &out))
	assert.Nil(t, out)
}
