package rbac

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/possuite/backoffice/internal/auth"
	"github.com/possuite/backoffice/internal/db/controller/activity"
	"github.com/possuite/backoffice/internal/db/controller/menusection"
	"github.com/possuite/backoffice/internal/db/models"
)

// VisibleSection is an active menu section the role sees.
type VisibleSection struct {
	models.MenuSection
	Priority bool
}

type menuDetails struct {
	RoleID      uint                `json:"role_id"`
	Name        string              `json:"name"`
	Assignments map[uint]MenuAccess `json:"assignments"`
}

// MenuPerms are the permissions that open the menu screens.
var MenuPerms = []string{auth.PermManageMenu, auth.PermManageRoles, auth.PermManageUsers} //nolint:gochecknoglobals

// AssignMenu replaces the menu access of roleID with assignments, keyed by section id.
// Sections left out resolve to hidden. Priority on a hidden section is dropped.
func (s *Service) AssignMenu(ctx context.Context, actor *auth.Context, roleID uint, assignments map[uint]MenuAccess) error {
	if err := authorize(actor, MenuPerms...); err != nil {
		return err
	}

	err := s.tx(ctx, func(tx *gorm.DB) error {
		role, err := findRole(tx, roleID)
		if err != nil {
			return err
		}

		if role.IsSuperAdmin {
			return ErrSuperAdminRole
		}

		problems := &ValidationError{}
		if err = checkSectionIDs(tx, sortedKeys(assignments), problems); err != nil {
			return err
		}

		if err = problems.err(); err != nil {
			return err
		}

		if err = tx.Where("role_id = ?", roleID).Delete(&models.RoleMenuAccess{}).Error; err != nil {
			return fmt.Errorf("failed to clear menu access: %w", err)
		}

		if err = insertMenuAccess(tx, roleID, assignments); err != nil {
			return err
		}

		stored := make(map[uint]MenuAccess, len(assignments))
		for id, a := range assignments {
			stored[id] = a.normalized()
		}

		return activity.Record(tx, actor.UserID, "Updated menu access of "+role.Name, menuDetails{
			RoleID:      role.ID,
			Name:        role.Name,
			Assignments: stored,
		})
	})
	if err != nil {
		return err
	}

	countChange(opMenuAssign)

	return nil
}

// MenuAccess returns the stored access rows of roleID keyed by section id.
func (s *Service) MenuAccess(ctx context.Context, roleID uint) (map[uint]MenuAccess, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var rows []models.RoleMenuAccess
	if err = db.Where("role_id = ?", roleID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load menu access: %w", err)
	}

	out := make(map[uint]MenuAccess, len(rows))
	for _, row := range rows {
		out[row.MenuSectionID] = MenuAccess{Visible: row.IsVisible, Priority: row.IsPriority}
	}

	return out, nil
}

// VisibleSections resolves the navigation of roleID in sort order.
// Super-admin roles see every active section, flagged by any stored priority. Other roles
// see the active sections they have a visible row for.
func (s *Service) VisibleSections(ctx context.Context, roleID uint) ([]VisibleSection, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	role, err := findRole(db, roleID)
	if err != nil {
		return nil, err
	}

	sections, err := menusection.List(db, true)
	if err != nil {
		return nil, err
	}

	access, err := s.MenuAccess(ctx, roleID)
	if err != nil {
		return nil, err
	}

	out := make([]VisibleSection, 0, len(sections))

	for i := range sections {
		a, ok := access[sections[i].ID]

		switch {
		case role.IsSuperAdmin:
			out = append(out, VisibleSection{MenuSection: sections[i], Priority: ok && a.Priority})
		case ok && a.Visible:
			out = append(out, VisibleSection{MenuSection: sections[i], Priority: a.Priority})
		}
	}

	return out, nil
}

// AssignableRoles lists the roles whose menu access can be edited, by name.
// Super-admin roles always see everything and are left out.
func (s *Service) AssignableRoles(ctx context.Context) ([]models.Role, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var roles []models.Role
	if err = db.Where("is_super_admin = ?", false).Order("name ASC").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("failed to list assignable roles: %w", err)
	}

	return roles, nil
}
