package handler

const (
	// BaseLayout is the default path for layout templates.
	BaseLayout = "layouts/base"

	// RootPath is the root path the route group.
	RootPath = "/"

	// RouterRootPath is the root of a route group.
	RouterRootPath = "/"

	// StoresPath is where users pick the store they work on.
	StoresPath = RootPath + "stores"

	// ErrNilACDFatalLogMsg is used if app, cfg or db is missing.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"
)
