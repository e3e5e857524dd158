package rbac

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/possuite/backoffice/internal/auth"
	"github.com/possuite/backoffice/internal/db/controller/activity"
	"github.com/possuite/backoffice/internal/db/models"
)

// CreateRoleInput is a new role with its grants and menu access.
type CreateRoleInput struct {
	RoleInput
	// MenuAccess is keyed by menu section id.
	MenuAccess map[uint]MenuAccess
}

// RoleSummary is a role row of the role list.
type RoleSummary struct {
	models.Role
	UserCount       int64
	PermissionCount int64
}

// Deletable reports whether the delete action is offered for the role.
func (r *RoleSummary) Deletable() bool {
	return r.UserCount == 0 && !r.IsSuperAdmin
}

type roleDetails struct {
	RoleID        uint   `json:"role_id"`
	Name          string `json:"name"`
	PermissionIDs []uint `json:"permission_ids,omitempty"`
	SectionIDs    []uint `json:"section_ids,omitempty"`
}

// CreateRole validates and stores a role, its grants and its menu access.
// Nothing is written when any check fails.
func (s *Service) CreateRole(ctx context.Context, actor *auth.Context, in CreateRoleInput) (*models.Role, error) {
	if err := authorize(actor, auth.PermManageRoles); err != nil {
		return nil, err
	}

	problems := s.check(&in.RoleInput)

	var role models.Role

	err := s.tx(ctx, func(tx *gorm.DB) error {
		if err := checkNameFree(tx, in.Name, 0, problems); err != nil {
			return err
		}

		if err := checkPermissionIDs(tx, in.PermissionIDs, problems); err != nil {
			return err
		}

		sectionIDs := sortedKeys(in.MenuAccess)
		if err := checkSectionIDs(tx, sectionIDs, problems); err != nil {
			return err
		}

		if err := problems.err(); err != nil {
			return err
		}

		role = models.Role{Name: in.Name, Description: in.Description}
		if err := tx.Create(&role).Error; err != nil {
			return fmt.Errorf("failed to insert role: %w", err)
		}

		if err := insertGrants(tx, role.ID, in.PermissionIDs); err != nil {
			return err
		}

		if err := insertMenuAccess(tx, role.ID, in.MenuAccess); err != nil {
			return err
		}

		return activity.Record(tx, actor.UserID, "Created role "+role.Name, roleDetails{
			RoleID:        role.ID,
			Name:          role.Name,
			PermissionIDs: in.PermissionIDs,
			SectionIDs:    sectionIDs,
		})
	})
	if err != nil {
		return nil, err
	}

	countChange(opReplace)

	return &role, nil
}

// EditRole updates name and description and replaces the role's grants with in.PermissionIDs.
// Menu access is left untouched.
func (s *Service) EditRole(ctx context.Context, actor *auth.Context, roleID uint, in RoleInput) error {
	if err := authorize(actor, auth.PermManageRoles); err != nil {
		return err
	}

	problems := s.check(&in)

	err := s.tx(ctx, func(tx *gorm.DB) error {
		role, err := findRole(tx, roleID)
		if err != nil {
			return err
		}

		if err = checkNameFree(tx, in.Name, roleID, problems); err != nil {
			return err
		}

		if err = checkPermissionIDs(tx, in.PermissionIDs, problems); err != nil {
			return err
		}

		if err = problems.err(); err != nil {
			return err
		}

		role.Name = in.Name
		role.Description = in.Description

		if err = tx.Omit(clause.Associations).Save(role).Error; err != nil {
			return fmt.Errorf("failed to update role: %w", err)
		}

		if err = tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
			return fmt.Errorf("failed to clear grants: %w", err)
		}

		if err = insertGrants(tx, roleID, in.PermissionIDs); err != nil {
			return err
		}

		return activity.Record(tx, actor.UserID, "Updated role "+role.Name, roleDetails{
			RoleID:        role.ID,
			Name:          role.Name,
			PermissionIDs: in.PermissionIDs,
		})
	})
	if err != nil {
		return err
	}

	countChange(opReplace)

	return nil
}

// DeleteRole removes a role with its grants and menu access.
// Roles held by users and super-admin roles are refused.
func (s *Service) DeleteRole(ctx context.Context, actor *auth.Context, roleID uint) error {
	if err := authorize(actor, auth.PermManageRoles); err != nil {
		return err
	}

	return s.tx(ctx, func(tx *gorm.DB) error {
		role, err := findRole(tx, roleID)
		if err != nil {
			return err
		}

		if role.IsSuperAdmin {
			return ErrSuperAdminRole
		}

		var users int64
		if err = tx.Model(&models.User{}).Where("role_id = ?", roleID).Count(&users).Error; err != nil {
			return err
		}

		if users > 0 {
			return ErrRoleInUse
		}

		if err = tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}

		if err = tx.Where("role_id = ?", roleID).Delete(&models.RoleMenuAccess{}).Error; err != nil {
			return err
		}

		if err = tx.Delete(&models.Role{}, roleID).Error; err != nil {
			return fmt.Errorf("failed to delete role: %w", err)
		}

		return activity.Record(tx, actor.UserID, "Deleted role "+role.Name, roleDetails{
			RoleID: role.ID,
			Name:   role.Name,
		})
	})
}

// GetRole returns a role by id.
func (s *Service) GetRole(ctx context.Context, roleID uint) (*models.Role, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	return findRole(db, roleID)
}

// ListRoles returns every role by name with its user and grant counts.
func (s *Service) ListRoles(ctx context.Context) ([]RoleSummary, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var roles []RoleSummary

	err = db.Model(&models.Role{}).
		Select("roles.*, " +
			"(SELECT COUNT(*) FROM users WHERE users.role_id = roles.id) AS user_count, " +
			"(SELECT COUNT(*) FROM role_permissions WHERE role_permissions.role_id = roles.id) AS permission_count").
		Order("roles.name ASC").
		Scan(&roles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	return roles, nil
}

// RolePermissionIDs returns the ids of the permissions granted to roleID, ascending.
func (s *Service) RolePermissionIDs(ctx context.Context, roleID uint) ([]uint, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var ids []uint

	err = db.Model(&models.RolePermission{}).
		Where("role_id = ?", roleID).
		Order("permission_id ASC").
		Pluck("permission_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load grants: %w", err)
	}

	return ids, nil
}

// RoleUsers returns the users holding roleID.
func (s *Service) RoleUsers(ctx context.Context, roleID uint) ([]models.User, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var users []models.User
	if err = db.Where("role_id = ?", roleID).Order("username ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load role users: %w", err)
	}

	return users, nil
}

// checkNameFree adds a problem when another role already uses name. The match is case-sensitive.
func checkNameFree(tx *gorm.DB, name string, exceptID uint, problems *ValidationError) error {
	if name == "" {
		return nil
	}

	var count int64

	query := tx.Model(&models.Role{}).Where("name = ?", name)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}

	if err := query.Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		problems.add(MsgRoleNameTaken)
	}

	return nil
}

// checkPermissionIDs adds a problem unless every id resolves to a permission.
func checkPermissionIDs(tx *gorm.DB, ids []uint, problems *ValidationError) error {
	if len(ids) == 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&models.Permission{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}

	if count != int64(len(ids)) {
		problems.add(MsgInvalidPermissions)
	}

	return nil
}

func checkSectionIDs(tx *gorm.DB, ids []uint, problems *ValidationError) error {
	if len(ids) == 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&models.MenuSection{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}

	if count != int64(len(ids)) {
		problems.add(MsgInvalidSections)
	}

	return nil
}

func insertGrants(tx *gorm.DB, roleID uint, permIDs []uint) error {
	if len(permIDs) == 0 {
		return nil
	}

	grants := make([]models.RolePermission, 0, len(permIDs))
	for _, id := range permIDs {
		grants = append(grants, models.RolePermission{RoleID: roleID, PermissionID: id})
	}

	if err := tx.Omit(clause.Associations).Create(&grants).Error; err != nil {
		return fmt.Errorf("failed to insert grants: %w", err)
	}

	return nil
}

func insertMenuAccess(tx *gorm.DB, roleID uint, access map[uint]MenuAccess) error {
	if len(access) == 0 {
		return nil
	}

	rows := make([]models.RoleMenuAccess, 0, len(access))

	for _, sectionID := range sortedKeys(access) {
		a := access[sectionID].normalized()
		rows = append(rows, models.RoleMenuAccess{
			RoleID:        roleID,
			MenuSectionID: sectionID,
			IsVisible:     a.Visible,
			IsPriority:    a.Priority,
		})
	}

	if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to insert menu access: %w", err)
	}

	return nil
}

func sortedKeys(m map[uint]MenuAccess) []uint {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return keys
}
