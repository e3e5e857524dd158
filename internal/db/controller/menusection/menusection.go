// Package menusection provides CRUD operations for navigation menu sections.
package menusection

import (
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/possuite/backoffice/internal/db/models"
)

const orderBySortOrder = "sort_order ASC, id ASC"

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrSectionNotFound is returned when a menu section is not found.
	ErrSectionNotFound = errors.New("menu section not found")
	// ErrSectionKeyInvalid is returned when a key is empty or not lowercase letters, digits and underscores.
	ErrSectionKeyInvalid = errors.New("section key may only contain lowercase letters, digits and underscores")
	// ErrSectionNameEmpty is returned when a section is saved without a display name.
	ErrSectionNameEmpty = errors.New("section name cannot be empty")
	// ErrSectionAlreadyExists is returned when the section key is already taken.
	ErrSectionAlreadyExists = errors.New("menu section already exists")
)

var keyPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// Get retrieves a menu section by its ID.
func Get(db *gorm.DB, id uint) (*models.MenuSection, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var section models.MenuSection
	if err := db.First(&section, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}

		return nil, err
	}

	return &section, nil
}

// List retrieves menu sections in navigation order, optionally only the active ones.
func List(db *gorm.DB, activeOnly bool) ([]models.MenuSection, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	query := db.Order(orderBySortOrder)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var sections []models.MenuSection
	if err := query.Find(&sections).Error; err != nil {
		return nil, err
	}

	return sections, nil
}

// Create stores a new active menu section.
func Create(db *gorm.DB, section *models.MenuSection) error {
	if db == nil {
		return ErrDBNil
	}

	if err := validate(section); err != nil {
		return err
	}

	var count int64
	if err := db.Model(&models.MenuSection{}).Where("section_key = ?", section.SectionKey).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return ErrSectionAlreadyExists
	}

	section.ID = 0
	section.IsActive = true

	return db.Create(section).Error
}

// Update saves the editable fields of a section. The key is immutable.
func Update(db *gorm.DB, id uint, name, icon, description string, sortOrder int) (*models.MenuSection, error) {
	section, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	section.SectionName = strings.TrimSpace(name)
	section.SectionIcon = strings.TrimSpace(icon)
	section.SectionDescription = strings.TrimSpace(description)
	section.SortOrder = sortOrder

	if section.SectionName == "" {
		return nil, ErrSectionNameEmpty
	}

	if err = db.Save(section).Error; err != nil {
		return nil, err
	}

	return section, nil
}

// SetActive activates or deactivates a section.
func SetActive(db *gorm.DB, id uint, active bool) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Model(&models.MenuSection{}).Where("id = ?", id).Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrSectionNotFound
	}

	return nil
}

func validate(section *models.MenuSection) error {
	section.SectionKey = strings.TrimSpace(section.SectionKey)
	section.SectionName = strings.TrimSpace(section.SectionName)

	if !keyPattern.MatchString(section.SectionKey) {
		return ErrSectionKeyInvalid
	}

	if section.SectionName == "" {
		return ErrSectionNameEmpty
	}

	return nil
}
