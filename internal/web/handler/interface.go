package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/possuite/backoffice/internal/auth"
	"github.com/possuite/backoffice/internal/config"
	"github.com/possuite/backoffice/internal/rbac"
)

// ErrNilDependency is returned by Init when the app or a dependency is missing.
var ErrNilDependency = errors.New(ErrNilACDFatalLogMsg)

// Deps are the shared dependencies handed to every handler.
type Deps struct {
	Cfg  *config.Config
	DB   *gorm.DB
	Auth *auth.Service
	RBAC *rbac.Service
}

// NewDeps builds the services on top of db.
func NewDeps(cfg *config.Config, db *gorm.DB) *Deps {
	return &Deps{
		Cfg:  cfg,
		DB:   db,
		Auth: auth.NewService(db),
		RBAC: rbac.NewService(db),
	}
}

// Check returns ErrNilDependency when app or one of the dependencies is nil.
func (d *Deps) Check(app *fiber.App) error {
	if app == nil || d == nil || d.Cfg == nil || d.DB == nil || d.Auth == nil || d.RBAC == nil {
		return ErrNilDependency
	}

	return nil
}

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, deps *Deps) error
}
