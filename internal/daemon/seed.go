package daemon

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/possuite/backoffice/internal/auth"
	"github.com/possuite/backoffice/internal/config"
	"github.com/possuite/backoffice/internal/db/controller/activity"
	"github.com/possuite/backoffice/internal/db/models"
)

// AdminRoleName is the super-admin role created on a fresh store.
const AdminRoleName = "Admin"

// legacyAdminNames are role names that bypassed every check by name alone.
// They are flagged as super admin so the bypass depends on the flag only.
var legacyAdminNames = []string{"Admin", "admin", "Administrator", "administrator"} //nolint:gochecknoglobals

// defaultSections are the navigation sections of a fresh store.
var defaultSections = []models.MenuSection{ //nolint:gochecknoglobals
	{SectionKey: "dashboard", SectionName: "Dashboard", SectionIcon: "icon-home", SectionDescription: "Overview and recent activity", SortOrder: 10},
	{SectionKey: "sales", SectionName: "Sales", SectionIcon: "icon-cart", SectionDescription: "Register and sales history", SortOrder: 20},
	{SectionKey: "inventory", SectionName: "Inventory", SectionIcon: "icon-box", SectionDescription: "Products, stock and suppliers", SortOrder: 30},
	{SectionKey: "expiry", SectionName: "Expiry Tracking", SectionIcon: "icon-clock", SectionDescription: "Batches close to expiry", SortOrder: 40},
	{SectionKey: "finance", SectionName: "Finance", SectionIcon: "icon-wallet", SectionDescription: "Expenses and reports", SortOrder: 50},
	{SectionKey: "administration", SectionName: "Administration", SectionIcon: "icon-shield", SectionDescription: "Users, roles and menu access", SortOrder: 90},
}

type seedDetails struct {
	RoleID   uint   `json:"role_id"`
	Username string `json:"username"`
}

// Seed writes the default permissions, menu sections and the super-admin role.
// The admin account is only created while the users table is empty. Running it again changes nothing.
func Seed(db *gorm.DB, s config.Seed) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := seedPermissions(tx); err != nil {
			return err
		}

		if err := seedSections(tx); err != nil {
			return err
		}

		err := tx.Model(&models.Role{}).
			Where("name IN ? AND is_super_admin = ?", legacyAdminNames, false).
			Update("is_super_admin", true).Error
		if err != nil {
			return fmt.Errorf("failed to flag legacy admin roles: %w", err)
		}

		admin := models.Role{
			Name:         AdminRoleName,
			Description:  "Full access to every back-office screen",
			IsSuperAdmin: true,
		}

		if err = tx.Where("name = ?", AdminRoleName).FirstOrCreate(&admin).Error; err != nil {
			return fmt.Errorf("failed to seed admin role: %w", err)
		}

		if err = grantEverything(tx, admin.ID); err != nil {
			return err
		}

		return seedAdminUser(tx, s, admin.ID)
	})
}

func seedPermissions(tx *gorm.DB) error {
	for _, def := range auth.Catalog() {
		perm := models.Permission{Name: def.Name}

		err := tx.Where("name = ?", def.Name).
			Attrs(models.Permission{Category: def.Category, Description: def.Description}).
			FirstOrCreate(&perm).Error
		if err != nil {
			return fmt.Errorf("failed to seed permission %s: %w", def.Name, err)
		}
	}

	return nil
}

func seedSections(tx *gorm.DB) error {
	for i := range defaultSections {
		section := defaultSections[i]

		err := tx.Where("section_key = ?", section.SectionKey).
			Attrs(section).
			FirstOrCreate(&models.MenuSection{}).Error
		if err != nil {
			return fmt.Errorf("failed to seed menu section %s: %w", section.SectionKey, err)
		}
	}

	return nil
}

// grantEverything keeps the admin role's grants and menu complete, so it still
// looks right if the super-admin flag is ever cleared.
func grantEverything(tx *gorm.DB, roleID uint) error {
	var permIDs []uint
	if err := tx.Model(&models.Permission{}).Pluck("id", &permIDs).Error; err != nil {
		return fmt.Errorf("failed to list permissions: %w", err)
	}

	grants := make([]models.RolePermission, 0, len(permIDs))
	for _, id := range permIDs {
		grants = append(grants, models.RolePermission{RoleID: roleID, PermissionID: id})
	}

	if len(grants) > 0 {
		err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&grants).Error
		if err != nil {
			return fmt.Errorf("failed to seed admin grants: %w", err)
		}
	}

	var sectionIDs []uint
	if err := tx.Model(&models.MenuSection{}).Pluck("id", &sectionIDs).Error; err != nil {
		return fmt.Errorf("failed to list menu sections: %w", err)
	}

	access := make([]models.RoleMenuAccess, 0, len(sectionIDs))
	for _, id := range sectionIDs {
		access = append(access, models.RoleMenuAccess{RoleID: roleID, MenuSectionID: id, IsVisible: true})
	}

	if len(access) == 0 {
		return nil
	}

	err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&access).Error
	if err != nil {
		return fmt.Errorf("failed to seed admin menu access: %w", err)
	}

	return nil
}

func seedAdminUser(tx *gorm.DB, s config.Seed, roleID uint) error {
	var count int64
	if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}

	if count > 0 {
		return nil
	}

	if s.AdminUsername == "" || s.AdminPassword == "" {
		log.Warn().Msg("no users and no seed credentials configured: nobody can sign in")
		return nil
	}

	user, err := auth.NewLocalProvider(tx).CreateUser(s.AdminUsername, "", s.AdminPassword, "", "", roleID)
	if err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	log.Warn().Str("username", user.Username).Msg("initial admin account created, change its password after the first login")

	return activity.Record(tx, 0, "Seeded initial admin account "+user.Username, seedDetails{
		RoleID:   roleID,
		Username: user.Username,
	})
}
