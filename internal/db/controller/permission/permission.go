// Package permission provides CRUD operations for RBAC permissions.
package permission

import (
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/possuite/backoffice/internal/db/models"
)

const (
	nameQueryPattern     = "name = ?"
	categoryQueryPattern = "category = ?"
	orderByCategoryName  = "category ASC, name ASC"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrPermissionNotFound is returned when a permission is not found.
	ErrPermissionNotFound = errors.New("permission not found")
	// ErrPermissionNameEmpty is returned when a permission is created without a name.
	ErrPermissionNameEmpty = errors.New("permission name cannot be empty")
	// ErrPermissionNameInvalid is returned when a permission name contains characters outside [A-Za-z0-9_].
	ErrPermissionNameInvalid = errors.New("permission name may only contain letters, digits and underscores")
	// ErrPermissionAlreadyExists is returned when a permission with the same name already exists.
	ErrPermissionAlreadyExists = errors.New("permission already exists")
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidName reports whether name is an acceptable permission name.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// Get retrieves a permission by its ID.
func Get(db *gorm.DB, id uint) (*models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var perm models.Permission
	if err := db.First(&perm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPermissionNotFound
		}

		return nil, err
	}

	return &perm, nil
}

// GetByName retrieves a permission by its unique name.
func GetByName(db *gorm.DB, name string) (*models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrPermissionNameEmpty
	}

	var perm models.Permission
	if err := db.Where(nameQueryPattern, name).First(&perm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPermissionNotFound
		}

		return nil, err
	}

	return &perm, nil
}

// List retrieves all permissions ordered by category and name.
func List(db *gorm.DB) ([]models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var perms []models.Permission
	if err := db.Order(orderByCategoryName).Find(&perms).Error; err != nil {
		return nil, err
	}

	return perms, nil
}

// ListByCategory retrieves the permissions of a single category.
// The category is matched exactly, including case.
func ListByCategory(db *gorm.DB, category string) ([]models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var perms []models.Permission
	if err := db.Where(categoryQueryPattern, category).Order("name ASC").Find(&perms).Error; err != nil {
		return nil, err
	}

	return perms, nil
}

// Categories returns the distinct category labels in use, sorted.
func Categories(db *gorm.DB) ([]string, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var categories []string
	if err := db.Model(&models.Permission{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error; err != nil {
		return nil, err
	}

	return categories, nil
}

// Group is a category label together with its permissions.
type Group struct {
	Category    string
	Permissions []models.Permission
}

// Grouped buckets an ordered permission list by category, keeping the input order.
func Grouped(perms []models.Permission) []Group {
	groups := make([]Group, 0)
	index := make(map[string]int)

	for i := range perms {
		pos, ok := index[perms[i].Category]
		if !ok {
			pos = len(groups)
			index[perms[i].Category] = pos
			groups = append(groups, Group{Category: perms[i].Category})
		}

		groups[pos].Permissions = append(groups[pos].Permissions, perms[i])
	}

	return groups
}

// Create creates a new permission. An empty category is stored as models.DefaultPermissionCategory.
func Create(db *gorm.DB, name, description, category string) (*models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrPermissionNameEmpty
	}

	if !ValidName(name) {
		return nil, ErrPermissionNameInvalid
	}

	var existing models.Permission

	err := db.Where(nameQueryPattern, name).First(&existing).Error
	if err == nil {
		return nil, ErrPermissionAlreadyExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	perm := &models.Permission{
		Name:        name,
		Description: strings.TrimSpace(description),
		Category:    normalizeCategory(category),
	}

	if err = db.Create(perm).Error; err != nil {
		return nil, err
	}

	return perm, nil
}

// Update changes the description and category of an existing permission.
// The name is immutable because screens and checks refer to it.
func Update(db *gorm.DB, id uint, description, category string) (*models.Permission, error) {
	perm, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	perm.Description = strings.TrimSpace(description)
	perm.Category = normalizeCategory(category)

	if err = db.Save(perm).Error; err != nil {
		return nil, err
	}

	return perm, nil
}

// Delete removes a permission and every grant of it.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("permission_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Permission{}, id)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrPermissionNotFound
		}

		return nil
	})
}

func normalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return models.DefaultPermissionCategory
	}

	return category
}
