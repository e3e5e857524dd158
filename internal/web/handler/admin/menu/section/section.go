// Package section provides the menu section screen: list, create, edit and activate.
package section

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/possuite/backoffice/internal/auth"
	"github.com/possuite/backoffice/internal/db/controller/activity"
	"github.com/possuite/backoffice/internal/db/controller/menusection"
	"github.com/possuite/backoffice/internal/db/models"
	"github.com/possuite/backoffice/internal/rbac"
	"github.com/possuite/backoffice/internal/web/handler"
	"github.com/possuite/backoffice/internal/web/navigation"
)

const (
	// Path is the base path of the menu section screen.
	Path = handler.RootPath + "admin/menu/section"

	// TemplateList is the template of the menu section screen.
	TemplateList = "admin/menu/sections"
)

// Form is a submitted menu section.
type Form struct {
	Key         string `form:"section_key"         validate:"omitempty,max=100"`
	Name        string `form:"section_name"        validate:"required,max=100"`
	Icon        string `form:"section_icon"        validate:"max=100"`
	Description string `form:"section_description" validate:"max=255"`
	SortOrder   int    `form:"sort_order"          validate:"min=0"`
}

type sectionDetails struct {
	SectionID uint   `json:"section_id"`
	Key       string `json:"section_key"`
	Active    bool   `json:"active"`
}

// Service provides the menu section screen.
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

	guard := auth.RequireAnyPermission(rbac.MenuPerms...)

	app.Get(Path, guard, s.List)
	app.Post(Path, guard, s.Create)
	app.Post(Path+"/:id<int>", guard, s.Update)
	app.Post(Path+"/:id<int>/active", guard, s.SetActive)

	return nil
}

// List shows every section, inactive ones included.
func (s *Service) List(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, Form{}, "")
}

// Create adds a new active section.
func (s *Service) Create(c *fiber.Ctx) error {
	var in Form
	if err := c.BodyParser(&in); err != nil {
		return s.render(c, fiber.StatusBadRequest, in, "Invalid form data")
	}

	if err := s.validator.Struct(in); err != nil {
		return s.render(c, fiber.StatusBadRequest, in, "Section name is required and the sort order cannot be negative")
	}

	section := models.MenuSection{
		SectionKey:         in.Key,
		SectionName:        in.Name,
		SectionIcon:        in.Icon,
		SectionDescription: in.Description,
		SortOrder:          in.SortOrder,
	}

	actor := auth.FromCtx(c)

	err := s.db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := menusection.Create(tx, &section); err != nil {
			return err
		}

		return activity.Record(tx, actor.UserID, "Created menu section "+section.SectionKey, sectionDetails{
			SectionID: section.ID,
			Key:       section.SectionKey,
			Active:    true,
		})
	})
	if err != nil {
		return s.render(c, statusOf(err), in, message(err))
	}

	log.Info().Str("section_key", section.SectionKey).Uint64("user_id", actor.UserID).Msg("menu section created")

	return c.Redirect(Path + "?notice=section_created")
}

// Update saves the label, icon, description and sort order of a section.
func (s *Service) Update(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return c.Redirect(Path)
	}

	var in Form
	if err := c.BodyParser(&in); err != nil {
		return s.render(c, fiber.StatusBadRequest, Form{}, "Invalid form data")
	}

	if err := s.validator.Struct(in); err != nil {
		return s.render(c, fiber.StatusBadRequest, Form{}, "Section name is required and the sort order cannot be negative")
	}

	actor := auth.FromCtx(c)

	err := s.db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		section, err := menusection.Update(tx, id, in.Name, in.Icon, in.Description, in.SortOrder)
		if err != nil {
			return err
		}

		return activity.Record(tx, actor.UserID, "Updated menu section "+section.SectionKey, sectionDetails{
			SectionID: section.ID,
			Key:       section.SectionKey,
			Active:    section.IsActive,
		})
	})
	if err != nil {
		return s.render(c, statusOf(err), Form{}, message(err))
	}

	return c.Redirect(Path + "?notice=section_updated")
}

// SetActive activates (active=1) or deactivates (active=0) a section for every role.
func (s *Service) SetActive(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return c.Redirect(Path)
	}

	active := c.FormValue("active") == "1"
	actor := auth.FromCtx(c)

	err := s.db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		section, err := menusection.Get(tx, id)
		if err != nil {
			return err
		}

		if err = menusection.SetActive(tx, id, active); err != nil {
			return err
		}

		action := "Deactivated menu section " + section.SectionKey
		if active {
			action = "Activated menu section " + section.SectionKey
		}

		return activity.Record(tx, actor.UserID, action, sectionDetails{
			SectionID: section.ID,
			Key:       section.SectionKey,
			Active:    active,
		})
	})
	if err != nil {
		return s.render(c, statusOf(err), Form{}, message(err))
	}

	log.Info().Uint("section_id", id).Bool("active", active).Msg("menu section status changed")

	return c.Redirect(Path + "?notice=section_updated")
}

func (s *Service) render(c *fiber.Ctx, status int, values Form, msg string) error {
	nav := handler.Navigation(c, s.rbac, "Menu Sections", navigation.SectionAdministration, "section").
		AddBreadcrumb("Administration", "#", false).
		AddBreadcrumb("Menu Sections", Path, true)

	sections, err := menusection.List(s.db.WithContext(c.UserContext()), false)
	if err != nil {
		log.Error().Err(err).Msg("failed to load menu sections")

		msg = handler.GenericErrorMsg
		status = fiber.StatusInternalServerError
	}

	data := fiber.Map{
		"Sections": sections,
		"Values":   values,
	}

	if msg != "" {
		data["Error"] = msg
	}

	return c.Status(status).Render(TemplateList, handler.Page(c, nav, data), handler.BaseLayout)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, menusection.ErrSectionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, menusection.ErrSectionKeyInvalid),
		errors.Is(err, menusection.ErrSectionNameEmpty),
		errors.Is(err, menusection.ErrSectionAlreadyExists):
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
