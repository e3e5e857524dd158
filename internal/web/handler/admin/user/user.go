// Package user provides handlers for managing back-office users and their role in the admin area.
package user

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/possuite/backoffice/internal/auth"
	"github.com/possuite/backoffice/internal/db/controller/activity"
	"github.com/possuite/backoffice/internal/db/models"
	"github.com/possuite/backoffice/internal/rbac"
	"github.com/possuite/backoffice/internal/web/handler"
	"github.com/possuite/backoffice/internal/web/navigation"
)

const (
	// Path is the base path for user management.
	Path = handler.RootPath + "admin/user"

	// TemplateList is the template for listing users.
	TemplateList = "admin/user/list"
	// TemplateForm is the template for creating/updating a user.
	TemplateForm = "admin/user/form"

	// DefaultPageSize for pagination.
	DefaultPageSize = 25
	maxPageSize     = 100
)

var (
	// ErrSelfDelete is returned when users try to delete their own account.
	ErrSelfDelete = errors.New("you cannot delete your own account")
	// ErrSuperAdminOnly is returned when a non super admin assigns or removes super-admin accounts.
	ErrSuperAdminOnly = errors.New("only super administrators can manage super-admin accounts")
	// ErrUnknownRole is returned when the selected role does not exist.
	ErrUnknownRole = errors.New("select an existing role")
	// ErrInvalidForm is returned when the form fails validation.
	ErrInvalidForm = errors.New("please correct the highlighted errors")
)

// Form is the submitted user form. Password is optional on update.
type Form struct {
	Username  string `form:"username"  validate:"required,min=3,max=100"`
	Email     string `form:"email"     validate:"omitempty,email,max=255"`
	FirstName string `form:"firstname" validate:"max=100"`
	LastName  string `form:"lastname"  validate:"max=100"`
	Password  string `form:"password"  validate:"omitempty,min=8,max=128"`
	Active    bool   `form:"active"`
	RoleID    uint   `form:"role_id"   validate:"required"`
}

type userDetails struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	RoleID   uint   `json:"assigned_role_id"`
	Active   bool   `json:"active"`
}

// Service provides CRUD operations for users.
type Service struct {
	db        *gorm.DB
	rbac      *rbac.Service
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if err := deps.Check(app); err != nil {
		return err
	}

	s.db = deps.DB
	s.rbac = deps.RBAC
	s.validator = validator.New()

	manage := auth.RequirePermission(auth.PermManageUsers)

	// Routes
	app.Get(Path, manage, s.List)
	app.Get(Path+"/new", manage, s.New)
	app.Post(Path, manage, s.Create)
	app.Get(Path+"/:id<int>/edit", manage, s.Edit)
	app.Post(Path+"/:id<int>", manage, s.Update)
	app.Post(Path+"/:id<int>/delete", manage, s.Delete)

	return nil
}

func (s *Service) nav(c *fiber.Ctx, title, url string, active bool) *navigation.Context {
	nav := handler.Navigation(c, s.rbac, title, navigation.SectionAdministration, "user").
		AddBreadcrumb("Administration", "#", false).
		AddBreadcrumb("Users", Path, active && url == Path)

	if url != Path {
		nav.AddBreadcrumb(title, url, active)
	}

	return nav
}

// List shows users with simple pagination and search.
func (s *Service) List(c *fiber.Ctx) error {
	return s.renderList(c, fiber.StatusOK, "")
}

func (s *Service) renderList(c *fiber.Ctx, status int, msg string) error {
	nav := s.nav(c, "Users", Path, true)

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	pageSize := c.QueryInt("pageSize", DefaultPageSize)
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = DefaultPageSize
	}

	search := strings.TrimSpace(c.Query("search", ""))

	var (
		users      []models.User
		totalCount int64
		tx         = s.db.WithContext(c.UserContext()).Model(&models.User{})
	)

	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		tx = tx.Where(
			"LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			like,
			like,
			like,
			like,
		)
	}

	fail := func(err error) error {
		log.Error().Err(err).Msg("query users failed")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, handler.Page(c, nav, fiber.Map{
			"Error":  handler.GenericErrorMsg,
			"Search": search,
		}), handler.BaseLayout)
	}

	if err := tx.Count(&totalCount).Error; err != nil {
		return fail(err)
	}

	totalPages := int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	if totalPages == 0 {
		totalPages = 1
	}

	if page > totalPages {
		page = totalPages
	}

	offset := (page - 1) * pageSize
	if err := tx.Preload("Role").Order("username ASC").Limit(pageSize).Offset(offset).Find(&users).Error; err != nil {
		return fail(err)
	}

	data := fiber.Map{
		"Users":      users,
		"Search":     search,
		"Page":       page,
		"PageSize":   pageSize,
		"TotalItems": totalCount,
		"TotalPages": totalPages,
		"HasPrev":    page > 1,
		"HasNext":    page < totalPages,
		"PrevPage":   page - 1,
		"NextPage":   page + 1,
	}

	if msg != "" {
		data["Error"] = msg
	}

	return c.Status(status).Render(TemplateList, handler.Page(c, nav, data), handler.BaseLayout)
}

// New shows the creation form.
func (s *Service) New(c *fiber.Ctx) error {
	return s.renderForm(c, fiber.StatusOK, nil, Form{Active: true}, "")
}

// Create creates a new local user holding the selected role.
func (s *Service) Create(c *fiber.Ctx) error {
	var in Form
	if err := c.BodyParser(&in); err != nil {
		return s.renderForm(c, fiber.StatusBadRequest, nil, in, ErrInvalidForm.Error())
	}

	in.Username = strings.TrimSpace(in.Username)

	if err := s.validator.Struct(in); err != nil || in.Password == "" {
		return s.renderForm(c, fiber.StatusBadRequest, nil, in, ErrInvalidForm.Error())
	}

	actor := auth.FromCtx(c)

	var created *models.User

	err := s.db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		role, err := assignableRole(tx, actor, in.RoleID)
		if err != nil {
			return err
		}

		created, err = auth.NewLocalProvider(tx).CreateUser(in.Username, in.Email, in.Password, in.FirstName, in.LastName, role.ID)
		if err != nil {
			return err
		}

		if !in.Active {
			if err = tx.Model(created).Update("active", false).Error; err != nil {
				return err
			}
		}

		return activity.Record(tx, actor.UserID, "Created user "+created.Username+" with role "+role.Name, userDetails{
			UserID:   created.ID,
			Username: created.Username,
			RoleID:   role.ID,
			Active:   in.Active,
		})
	})
	if err != nil {
		return s.renderForm(c, statusOf(err), nil, in, message(err))
	}

	log.Info().Uint64("user_id", created.ID).Uint("role_id", in.RoleID).Msg("user created")

	return c.Redirect(Path)
}

// Edit shows the edit form for a user.
func (s *Service) Edit(c *fiber.Ctx) error {
	user, ok := s.load(c)
	if !ok {
		return c.Redirect(Path)
	}

	return s.renderForm(c, fiber.StatusOK, user, Form{
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Active:    user.Active,
		RoleID:    user.RoleID,
	}, "")
}

// Update saves a user. The role change takes effect on the user's next request.
func (s *Service) Update(c *fiber.Ctx) error {
	user, ok := s.load(c)
	if !ok {
		return c.Redirect(Path)
	}

	var in Form
	if err := c.BodyParser(&in); err != nil {
		return s.renderForm(c, fiber.StatusBadRequest, user, in, ErrInvalidForm.Error())
	}

	in.Username = strings.TrimSpace(in.Username)

	if err := s.validator.Struct(in); err != nil {
		return s.renderForm(c, fiber.StatusBadRequest, user, in, ErrInvalidForm.Error())
	}

	actor := auth.FromCtx(c)

	err := s.db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if user.Role.IsSuperAdmin && !actor.SuperAdmin {
			return ErrSuperAdminOnly
		}

		role, err := assignableRole(tx, actor, in.RoleID)
		if err != nil {
			return err
		}

		var taken int64
		if err = tx.Model(&models.User{}).Where("username = ? AND id <> ?", in.Username, user.ID).Count(&taken).Error; err != nil {
			return err
		}

		if taken > 0 {
			return auth.ErrUserNameOrEmailExists
		}

		updates := map[string]any{
			"username":   in.Username,
			"email":      in.Email,
			"first_name": in.FirstName,
			"last_name":  in.LastName,
			"active":     in.Active,
			"role_id":    role.ID,
		}

		if in.Password != "" {
			updates["password"] = models.HashPassword(in.Password)
		}

		if err = tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			return err
		}

		action := "Updated user " + in.Username
		if role.ID != user.RoleID {
			action = "Assigned role " + role.Name + " to user " + in.Username
		}

		return activity.Record(tx, actor.UserID, action, userDetails{
			UserID:   user.ID,
			Username: in.Username,
			RoleID:   role.ID,
			Active:   in.Active,
		})
	})
	if err != nil {
		return s.renderForm(c, statusOf(err), user, in, message(err))
	}

	log.Info().Uint64("user_id", user.ID).Uint("role_id", in.RoleID).Msg("user updated")

	return c.Redirect(Path)
}

// Delete removes a user.
func (s *Service) Delete(c *fiber.Ctx) error {
	user, ok := s.load(c)
	if !ok {
		return c.Redirect(Path)
	}

	actor := auth.FromCtx(c)

	err := s.db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		// Prevent a user (including admin) from deleting themselves
		if user.ID == actor.UserID {
			return ErrSelfDelete
		}

		if user.Role.IsSuperAdmin && !actor.SuperAdmin {
			return ErrSuperAdminOnly
		}

		if err := tx.Delete(&models.User{}, user.ID).Error; err != nil {
			return err
		}

		return activity.Record(tx, actor.UserID, "Deleted user "+user.Username, userDetails{
			UserID:   user.ID,
			Username: user.Username,
			RoleID:   user.RoleID,
		})
	})
	if err != nil {
		return s.renderList(c, statusOf(err), message(err))
	}

	log.Info().Uint64("user_id", user.ID).Msg("user deleted")

	return c.Redirect(Path)
}

// load returns the user named by the id parameter with its role.
func (s *Service) load(c *fiber.Ctx) (*models.User, bool) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return nil, false
	}

	var user models.User
	if err := s.db.WithContext(c.UserContext()).Preload("Role").First(&user, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error().Err(err).Uint("user_id", id).Msg("failed to load user")
		}

		return nil, false
	}

	return &user, true
}

func (s *Service) renderForm(c *fiber.Ctx, status int, user *models.User, values Form, msg string) error {
	title, url := "New User", Path+"/new"
	if user != nil {
		title, url = "Edit User", Path+"/"+strconv.FormatUint(user.ID, 10)+"/edit"
	}

	nav := s.nav(c, title, url, true)
	data := fiber.Map{
		"User":     user,
		"IsCreate": user == nil,
		"Values":   values,
	}

	var roles []models.Role
	if err := s.db.WithContext(c.UserContext()).Order("name ASC").Find(&roles).Error; err != nil {
		log.Error().Err(err).Msg("failed to load roles")

		msg = handler.GenericErrorMsg
		status = fiber.StatusInternalServerError
	}

	data["Roles"] = roles

	if msg != "" {
		data["Error"] = msg
	}

	return c.Status(status).Render(TemplateForm, handler.Page(c, nav, data), handler.BaseLayout)
}

// assignableRole loads roleID. Super-admin roles are only handed out by super admins.
func assignableRole(tx *gorm.DB, actor *auth.Context, roleID uint) (*models.Role, error) {
	var role models.Role
	if err := tx.First(&role, roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownRole
		}

		return nil, err
	}

	if role.IsSuperAdmin && !actor.SuperAdmin {
		return nil, ErrSuperAdminOnly
	}

	return &role, nil
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrSuperAdminOnly):
		return fiber.StatusForbidden
	case errors.Is(err, ErrSelfDelete), errors.Is(err, ErrUnknownRole),
		errors.Is(err, auth.ErrUserNameOrEmailExists):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func message(err error) string {
	if statusOf(err) != fiber.StatusInternalServerError {
		return err.Error()
	}

	return handler.ErrorMessage(err)
}
