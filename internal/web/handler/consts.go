package handler

const (
	// BaseLayout is the default path for layout templates.
	BaseLayout = "layouts/base"

	// RootPath is the root path the route group.
	RootPath = "/"

	// RouterRootPath is the root of a route group registered with app.Route.
	RouterRootPath = "/"

	// HomePath is the landing page after login and on denied access.
	HomePath = RootPath + "dashboard"

	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"

	// GenericErrorMsg replaces database and unexpected errors on rendered pages.
	GenericErrorMsg = "An unexpected error occurred, please try again"
)
