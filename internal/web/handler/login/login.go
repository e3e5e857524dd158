package login

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/possuite/backoffice/internal/auth"
	"github.com/possuite/backoffice/internal/config"
	"github.com/possuite/backoffice/internal/db/controller/activity"
	"github.com/possuite/backoffice/internal/web/handler"
	"github.com/possuite/backoffice/internal/web/session"
)

const (
	// Path is the path to the login page.
	Path = handler.RootPath + "login"

	// TemplateName is the name of the login template.
	TemplateName = "login"
)

// Form is the submitted login form.
type Form struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// Service is the login handler service.
type Service struct {
	cfg      *config.Config
	deps     *handler.Deps
	provider *auth.LocalProvider
}

// Handler is the login handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if err := deps.Check(app); err != nil {
		return err
	}

	s.cfg = deps.Cfg
	s.deps = deps
	s.provider = auth.NewLocalProvider(deps.DB)

	// register routes
	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Post(handler.RouterRootPath, s.Post)
	})

	return nil
}

// Get handles the login page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	return c.Render(TemplateName, fiber.Map{
		"Title": s.cfg.Title,
	})
}

// Post handles the login form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	form := new(Form)

	if err := c.BodyParser(form); err != nil {
		return s.fail(c, "", ErrInvalidFormData)
	}

	form.Username = strings.TrimSpace(form.Username)
	if form.Username == "" || form.Password == "" {
		return s.fail(c, form.Username, ErrInvalidCredentials)
	}

	user, err := s.provider.Authenticate(form.Username, form.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrInvalidPassword):
			return s.fail(c, form.Username, ErrInvalidCredentials)
		case errors.Is(err, auth.ErrUserAccountDisabled):
			return s.fail(c, form.Username, ErrAccountDisabled)
		default:
			log.Error().Err(err).Str("username", form.Username).Msg("login lookup failed")
			return s.fail(c, form.Username, ErrInternalServerError)
		}
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")
		return s.fail(c, form.Username, ErrInternalServerError)
	}

	userSession := &session.Data{UserID: user.ID, CreatedAt: time.Now()}

	if err = userSession.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return s.fail(c, form.Username, ErrInternalServerError)
	}

	if err = activity.Record(s.deps.DB, user.ID, "Logged in", nil); err != nil {
		log.Warn().Err(err).Uint64("user_id", user.ID).Msg("failed to record login")
	}

	// set login cookie
	cookieSettings := &fiber.Cookie{
		Name:     session.CookieName,
		Value:    sessionID,
		MaxAge:   int(s.cfg.Webserver.Session.ExpiryTime.Seconds()),
		Secure:   true,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}

	if s.cfg.DevMode {
		cookieSettings.Secure = false
	}

	c.Cookie(cookieSettings)

	log.Info().Uint64("user_id", user.ID).Str("username", user.Username).Msg("user logged in")

	return c.Redirect(handler.HomePath)
}

func (s *Service) fail(c *fiber.Ctx, username string, err error) error {
	return c.Render(TemplateName, fiber.Map{
		"Title":    s.cfg.Title,
		"Username": username,
		"Error":    err.Error(),
	})
}
