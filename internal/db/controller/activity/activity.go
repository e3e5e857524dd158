// Package activity records and reads the back-office audit trail.
package activity

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"gorm.io/gorm"

	"github.com/possuite/backoffice/internal/db/models"
)

// DefaultLimit bounds List when the caller passes a non-positive limit.
const DefaultLimit = 50

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// Record writes one audit entry. Details is marshaled to JSON; nil stores "{}".
// Pass the transaction handle to make the entry part of the audited change.
func Record(db *gorm.DB, userID uint64, action string, details any) error {
	if db == nil {
		return ErrDBNil
	}

	payload := []byte("{}")

	if details != nil {
		var err error
		if payload, err = json.Marshal(details); err != nil {
			return fmt.Errorf("failed to encode activity details: %w", err)
		}
	}

	entry := models.ActivityLog{
		UserID:  userID,
		Action:  action,
		Details: string(payload),
	}

	if err := db.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to write activity log: %w", err)
	}

	return nil
}

// List returns the newest audit entries first.
func List(db *gorm.DB, limit int) ([]models.ActivityLog, error) {
	return list(db, limit, nil)
}

// ListForUser returns the newest audit entries of one acting user.
func ListForUser(db *gorm.DB, userID uint64, limit int) ([]models.ActivityLog, error) {
	return list(db, limit, func(q *gorm.DB) *gorm.DB {
		return q.Where("user_id = ?", userID)
	})
}

// ListForRole returns the newest audit entries about one role.
// Role entries carry role_id as the first field of their details.
func ListForRole(db *gorm.DB, roleID uint, limit int) ([]models.ActivityLog, error) {
	return list(db, limit, func(q *gorm.DB) *gorm.DB {
		return q.Where("details LIKE ?", fmt.Sprintf(`{"role_id":%d,%%`, roleID))
	})
}

// Decode unmarshals the details document of an entry into out.
func Decode(entry *models.ActivityLog, out any) error {
	if entry.Details == "" {
		return nil
	}

	return json.Unmarshal([]byte(entry.Details), out)
}

func list(db *gorm.DB, limit int, scope func(*gorm.DB) *gorm.DB) ([]models.ActivityLog, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if limit <= 0 {
		limit = DefaultLimit
	}

	query := db.Order("created_at DESC, id DESC").Limit(limit)
	if scope != nil {
		query = scope(query)
	}

	var entries []models.ActivityLog
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}

	return entries, nil
}
