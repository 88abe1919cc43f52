package handlers

import (
	"github.com/abrezinsky/heatroll/internal/auth"
	"github.com/abrezinsky/heatroll/internal/logger"
	"github.com/abrezinsky/heatroll/internal/services"
	"github.com/abrezinsky/heatroll/internal/websocket"
)

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Heat    services.HeatServicer
	Ledger  services.LedgerServicer
	Catalog services.CatalogServicer
	Auth    *auth.Auth
	Hub     *websocket.Hub
	Log     HTTPLogger
	errLog  logger.Logger
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// New creates a new Handlers instance with all dependencies
func New(
	heat services.HeatServicer,
	ledger services.LedgerServicer,
	catalog services.CatalogServicer,
	adminAuth *auth.Auth,
	hub *websocket.Hub,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Heat:    heat,
		Ledger:  ledger,
		Catalog: catalog,
		Auth:    adminAuth,
		Hub:     hub,
		Log:     log,
		errLog:  log,
	}
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// NewForTesting creates a Handlers instance with a known admin password and
// HTTP request logging disabled.
func NewForTesting(
	heat services.HeatServicer,
	ledger services.LedgerServicer,
	catalog services.CatalogServicer,
	hub *websocket.Hub,
) *Handlers {
	return &Handlers{
		Heat:    heat,
		Ledger:  ledger,
		Catalog: catalog,
		Auth:    auth.New("test-password"),
		Hub:     hub,
		Log:     NoopHTTPLogger{},
	}
}
