package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/possuite/backoffice/internal/db/models"
)

// Service resolves permissions from the authorization store.
type Service struct {
	db *gorm.DB
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// LoadPermissionsForRole returns the names granted to roleID.
// Role 0 resolves to the empty set without touching the database.
func (s *Service) LoadPermissionsForRole(ctx context.Context, roleID uint) (PermissionSet, error) {
	if roleID == 0 {
		return PermissionSet{}, nil
	}

	if s.db == nil {
		return nil, ErrDBNil
	}

	var names []string

	err := s.db.WithContext(ctx).Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Pluck("permissions.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load role permissions: %w", err)
	}

	return NewPermissionSet(names...), nil
}

// Resolve builds the auth context of userID from the current store state.
// Inactive users are rejected with ErrUserAccountDisabled.
func (s *Service) Resolve(ctx context.Context, userID uint64) (*Context, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	var user models.User
	if err := s.db.WithContext(ctx).Preload("Role").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	if user.Role.ID == 0 {
		return nil, ErrRoleNotFound
	}

	perms, err := s.LoadPermissionsForRole(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}

	return &Context{
		UserID:      user.ID,
		Username:    user.Username,
		RoleID:      user.Role.ID,
		RoleName:    user.Role.Name,
		SuperAdmin:  user.Role.IsSuperAdmin,
		Permissions: perms,
	}, nil
}

// HasPermission resolves userID and checks perm, applying the super-admin bypass.
func (s *Service) HasPermission(ctx context.Context, userID uint64, perm string) (bool, error) {
	a, err := s.Resolve(ctx, userID)
	if err != nil {
		return false, err
	}

	return a.Can(perm), nil
}
