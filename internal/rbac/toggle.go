package rbac

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/possuite/backoffice/internal/auth"
	"github.com/possuite/backoffice/internal/db/controller/activity"
	"github.com/possuite/backoffice/internal/db/controller/permission"
	"github.com/possuite/backoffice/internal/db/models"
)

// GrantChange is the outcome of a single grant operation.
type GrantChange struct {
	Permission string
	Previous   bool
	Granted    bool
}

// Changed reports whether the operation altered the store.
func (g GrantChange) Changed() bool {
	return g.Previous != g.Granted
}

// CategoryChange is the outcome of a category bulk operation.
type CategoryChange struct {
	Category string
	Granted  bool
	// Affected is the number of permissions in the category.
	Affected int
}

type grantDetails struct {
	RoleID         uint   `json:"role_id"`
	PermissionID   uint   `json:"permission_id"`
	PermissionName string `json:"permission_name"`
	Granted        bool   `json:"granted"`
}

type categoryDetails struct {
	RoleID   uint   `json:"role_id"`
	Category string `json:"category"`
	Granted  bool   `json:"granted"`
	Count    int    `json:"count"`
}

// TogglePermission flips the grant of permID to roleID.
func (s *Service) TogglePermission(ctx context.Context, actor *auth.Context, roleID, permID uint) (GrantChange, error) {
	return s.setGrant(ctx, actor, roleID, permID, nil)
}

// SetGrant moves the grant of permID to roleID into the target state.
// Repeating a call is a no-op that writes nothing.
func (s *Service) SetGrant(ctx context.Context, actor *auth.Context, roleID, permID uint, granted bool) (GrantChange, error) {
	return s.setGrant(ctx, actor, roleID, permID, &granted)
}

// setGrant flips the grant when target is nil.
func (s *Service) setGrant(ctx context.Context, actor *auth.Context, roleID, permID uint, target *bool) (GrantChange, error) {
	var change GrantChange

	if err := authorize(actor, auth.PermManageRoles); err != nil {
		return change, err
	}

	err := s.tx(ctx, func(tx *gorm.DB) error {
		role, err := findRole(tx, roleID)
		if err != nil {
			return err
		}

		perm, err := findPermission(tx, permID)
		if err != nil {
			return err
		}

		var count int64

		err = tx.Model(&models.RolePermission{}).
			Where("role_id = ? AND permission_id = ?", roleID, permID).
			Count(&count).Error
		if err != nil {
			return err
		}

		change = GrantChange{Permission: perm.Name, Previous: count > 0, Granted: count == 0}
		if target != nil {
			change.Granted = *target
		}

		if !change.Changed() {
			return nil
		}

		action := fmt.Sprintf("Revoked permission %s from %s", perm.Name, role.Name)

		if change.Granted {
			action = fmt.Sprintf("Granted permission %s to %s", perm.Name, role.Name)
			err = tx.Omit(clause.Associations).
				Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.RolePermission{RoleID: roleID, PermissionID: permID}).Error
		} else {
			err = tx.Where("role_id = ? AND permission_id = ?", roleID, permID).
				Delete(&models.RolePermission{}).Error
		}

		if err != nil {
			return fmt.Errorf("failed to change grant: %w", err)
		}

		return activity.Record(tx, actor.UserID, action, grantDetails{
			RoleID:         roleID,
			PermissionID:   permID,
			PermissionName: perm.Name,
			Granted:        change.Granted,
		})
	})
	if err != nil {
		return GrantChange{}, err
	}

	if change.Changed() {
		if change.Granted {
			countChange(opGrant)
		} else {
			countChange(opRevoke)
		}
	}

	return change, nil
}

// ToggleCategory revokes every permission of category from roleID when all of them are granted.
// Otherwise it grants the whole category, so a partial state always ends fully granted.
func (s *Service) ToggleCategory(ctx context.Context, actor *auth.Context, roleID uint, category string) (CategoryChange, error) {
	return s.setCategory(ctx, actor, roleID, category, nil)
}

// SetCategory grants or revokes every permission of category for roleID.
func (s *Service) SetCategory(
	ctx context.Context, actor *auth.Context, roleID uint, category string, granted bool,
) (CategoryChange, error) {
	return s.setCategory(ctx, actor, roleID, category, &granted)
}

func (s *Service) setCategory(
	ctx context.Context, actor *auth.Context, roleID uint, category string, target *bool,
) (CategoryChange, error) {
	change := CategoryChange{Category: category}

	if err := authorize(actor, auth.PermManageRoles); err != nil {
		return change, err
	}

	err := s.tx(ctx, func(tx *gorm.DB) error {
		role, err := findRole(tx, roleID)
		if err != nil {
			return err
		}

		perms, err := permission.ListByCategory(tx, category)
		if err != nil {
			return err
		}

		if len(perms) == 0 {
			return ErrEmptyCategory
		}

		ids := make([]uint, 0, len(perms))
		for i := range perms {
			ids = append(ids, perms[i].ID)
		}

		if target != nil {
			change.Granted = *target
		} else {
			var granted int64

			err = tx.Model(&models.RolePermission{}).
				Where("role_id = ? AND permission_id IN ?", roleID, ids).
				Count(&granted).Error
			if err != nil {
				return err
			}

			change.Granted = granted != int64(len(ids))
		}

		change.Affected = len(ids)

		err = tx.Where("role_id = ? AND permission_id IN ?", roleID, ids).
			Delete(&models.RolePermission{}).Error
		if err != nil {
			return fmt.Errorf("failed to clear category grants: %w", err)
		}

		action := fmt.Sprintf("Revoked all %d %s permissions from %s", len(ids), category, role.Name)

		if change.Granted {
			action = fmt.Sprintf("Granted all %d %s permissions to %s", len(ids), category, role.Name)

			if err = insertGrants(tx, roleID, ids); err != nil {
				return err
			}
		}

		return activity.Record(tx, actor.UserID, action, categoryDetails{
			RoleID:   roleID,
			Category: category,
			Granted:  change.Granted,
			Count:    len(ids),
		})
	})
	if err != nil {
		return CategoryChange{Category: category}, err
	}

	if change.Granted {
		countChange(opCategoryGrant)
	} else {
		countChange(opCategoryRevoke)
	}

	return change, nil
}

// HasGrant reports whether roleID holds permID.
func (s *Service) HasGrant(ctx context.Context, roleID, permID uint) (bool, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return false, err
	}

	var count int64

	err = db.Model(&models.RolePermission{}).
		Where("role_id = ? AND permission_id = ?", roleID, permID).
		Count(&count).Error

	return count > 0, err
}
