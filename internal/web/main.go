// Package web assembles the back-office HTTP service: views, middleware and every screen handler.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/possuite/backoffice/internal/auth"
	"github.com/possuite/backoffice/internal/config"
	fiberlogger "github.com/possuite/backoffice/internal/logger/adapter/fiber"
	"github.com/possuite/backoffice/internal/web/handler"
	"github.com/possuite/backoffice/internal/web/handler/admin/menu/assignment"
	"github.com/possuite/backoffice/internal/web/handler/admin/menu/section"
	"github.com/possuite/backoffice/internal/web/handler/admin/permission"
	"github.com/possuite/backoffice/internal/web/handler/admin/role"
	"github.com/possuite/backoffice/internal/web/handler/admin/role/form"
	"github.com/possuite/backoffice/internal/web/handler/admin/role/permissions"
	"github.com/possuite/backoffice/internal/web/handler/admin/user"
	"github.com/possuite/backoffice/internal/web/handler/dashboard"
	"github.com/possuite/backoffice/internal/web/handler/login"
	"github.com/possuite/backoffice/internal/web/handler/logout"
	"github.com/possuite/backoffice/internal/web/handler/profile"
	authmiddleware "github.com/possuite/backoffice/internal/web/middleware/auth"
)

const (
	// MetricsPath serves the prometheus registry.
	MetricsPath = "/metrics"
	// CheckAlivePath answers 200 while the service accepts traffic and 503 while it drains.
	CheckAlivePath = "/checkalive"

	readBufferSize = 8192
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown blocks until SIGINT or SIGTERM and then stops the http server gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this instance from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		if err := s.App.Shutdown(); err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: readBufferSize,
			AppName:        appName(cfg),
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			JSONEncoder:    json.Marshal,
			JSONDecoder:    json.Unmarshal,
			Views:          newViews(cfg),
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	skipURIs := []string{MetricsPath}
	if cfg.Log.DisableCheckAlive {
		skipURIs = append(skipURIs, CheckAlivePath)
	}

	app.Use(fiberlogger.New(fiberlogger.Config{
		Log:      cfg.Log,
		UserID:   currentUserID,
		SkipURIs: skipURIs,
	}))

	// serve embedded static files
	app.Use("/static",
		filesystem.New(
			filesystem.Config{
				Root:       http.FS(embeddedStaticFiles),
				PathPrefix: "static",
				Browse:     cfg.Webserver.BrowseStatic,
			},
		),
	)

	service := &Service{
		cfg: cfg,
		App: app,
	}
	service.alive.Store(true)

	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))
	app.Get(CheckAlivePath, service.checkAlive)

	deps := handler.NewDeps(cfg, db)

	// resolves the caller's role and grants for every request
	app.Use(authmiddleware.New(deps.Auth))

	handlers := []handler.Service{
		&login.Handler,
		&logout.Handler,
		&dashboard.Handler,
		&profile.Handler,
		&role.Handler,
		&form.Handler,
		&permissions.Handler,
		&permission.Handler,
		&assignment.Handler,
		&section.Handler,
		&user.Handler,
	}

	for _, h := range handlers {
		if err := h.Init(app, deps); err != nil {
			log.Fatal().Err(err).Msg("failed to init handler")
		}
	}

	app.Get(handler.RootPath, func(c *fiber.Ctx) error {
		return c.Redirect(handler.HomePath)
	})

	return service
}

func (s *Service) checkAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendString("OK")
}

func newViews(cfg *config.Config) *html.Engine {
	templateEngine := html.NewFileSystem(http.FS(templateEmbedFS{embeddedTemplates}), ".gohtml")

	// in debug mode, use local filesystem for templates
	if cfg.DevMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.ShouldReload = true

		log.Warn().Msg("debug mode enabled: using local filesystem for templates")
	}

	templateEngine.AddFunc("iterate", func(count int) []int {
		result := make([]int, count)
		for i := range result {
			result[i] = i
		}

		return result
	})
	templateEngine.AddFunc("add", func(a, b int) int {
		return a + b
	})

	return templateEngine
}

func appName(cfg *config.Config) string {
	if cfg.Title != "" {
		return cfg.Title
	}

	return "POS Back Office"
}

func currentUserID(c *fiber.Ctx) uint64 {
	if a := auth.FromCtx(c); a != nil {
		return a.UserID
	}

	return 0
}
