// Package rbac implements the role administration operations of the back office:
// role lifecycle, grant toggling, category bulk toggling and menu assignment.
//
// Every mutation runs in one transaction and writes its audit entry inside it.
package rbac

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/possuite/backoffice/internal/auth"
	"github.com/possuite/backoffice/internal/db/models"
)

// Service mutates and queries the authorization store.
type Service struct {
	db       *gorm.DB
	validate *validator.Validate
}

// NewService creates the service.
func NewService(db *gorm.DB) *Service {
	return &Service{
		db:       db,
		validate: newValidator(),
	}
}

// authorize fails with ErrForbidden unless actor holds at least one of perms.
func authorize(actor *auth.Context, perms ...string) error {
	if !actor.Authenticated() {
		return ErrForbidden
	}

	for _, perm := range perms {
		if actor.Can(perm) {
			return nil
		}
	}

	return ErrForbidden
}

func (s *Service) tx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s.db == nil {
		return ErrDBNil
	}

	return s.db.WithContext(ctx).Transaction(fn)
}

func (s *Service) conn(ctx context.Context) (*gorm.DB, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	return s.db.WithContext(ctx), nil
}

func findRole(tx *gorm.DB, roleID uint) (*models.Role, error) {
	var role models.Role
	if err := tx.First(&role, roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}

		return nil, err
	}

	return &role, nil
}

func findPermission(tx *gorm.DB, permID uint) (*models.Permission, error) {
	var perm models.Permission
	if err := tx.First(&perm, permID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPermissionNotFound
		}

		return nil, err
	}

	return &perm, nil
}
