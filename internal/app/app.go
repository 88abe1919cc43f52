package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"github.com/abrezinsky/heatroll/internal/auth"
	"github.com/abrezinsky/heatroll/internal/config"
	"github.com/abrezinsky/heatroll/internal/engine"
	"github.com/abrezinsky/heatroll/internal/handlers"
	"github.com/abrezinsky/heatroll/internal/logger"
	"github.com/abrezinsky/heatroll/internal/repository"
	"github.com/abrezinsky/heatroll/internal/services"
	"github.com/abrezinsky/heatroll/internal/websocket"
	"github.com/abrezinsky/heatroll/pkg/catalog"
)

const shutdownTimeout = 10 * time.Second

// App holds all application dependencies
type App struct {
	cfg       config.Config
	log       logger.Logger
	handlers  *handlers.Handlers
	repo      *repository.Repository
	hub       *websocket.Hub
	baseURL   string
	cancelHub context.CancelFunc
}

// New creates and initializes a new application instance. A nil client
// selects the HTTP catalog client when catalog.token_url or
// catalog.image_base_url is configured and an empty mock otherwise.
func New(cfg config.Config, log logger.Logger, client catalog.Client, adminAuth *auth.Auth) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	repo, err := repository.New(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	if client == nil {
		client = newCatalogClient(cfg.Catalog, log)
	}

	baseURL := cfg.BaseURL()
	if cfg.Server.BaseURL == "" {
		baseURL = defaultBaseURL(realNetworkProvider{}, cfg.Server.Port)
	}

	// Initialize services
	heatService := services.NewHeatService(log, repo, loc, baseURL)
	resolver := services.NewEligibilityResolver(log)
	ledgerService := services.NewLedgerService(log, repo, heatService, resolver, engine.NewRand(cfg.Engine.Seed), cfg.Engine.WheelSize)
	catalogService := services.NewCatalogService(log, repo, client, loc)

	ctx, cancel := context.WithCancel(context.Background())
	hub := websocket.New(log)
	hub.Start(ctx)
	ledgerService.SetBroadcaster(hub)

	h := handlers.New(heatService, ledgerService, catalogService, adminAuth, hub, log)

	return &App{
		cfg:       cfg,
		log:       log,
		handlers:  h,
		repo:      repo,
		hub:       hub,
		baseURL:   baseURL,
		cancelHub: cancel,
	}, nil
}

func newCatalogClient(cfg config.CatalogConfig, log logger.Logger) catalog.Client {
	if cfg.TokenURL == "" && cfg.ImageBaseURL == "" {
		log.Info("No catalog configured, covers fall back to the placeholder")
		return catalog.NewMockClient()
	}
	return catalog.NewHTTPClient(catalog.Config{
		TokenURL:     cfg.TokenURL,
		ImageBaseURL: cfg.ImageBaseURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	}, log)
}

// Handler returns the router wrapped in response compression. WebSocket
// upgrades bypass the compressor.
func (a *App) Handler() http.Handler {
	router := a.handlers.Router()
	compressed := gzhttp.GzipHandler(router)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isWebSocketUpgrade(r) {
			router.ServeHTTP(w, r)
			return
		}
		compressed.ServeHTTP(w, r)
	})
}

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// BaseURL returns the public URL used for QR links
func (a *App) BaseURL() string {
	return a.baseURL
}

// Close stops the websocket hub and closes the database
func (a *App) Close() error {
	if a.cancelHub != nil {
		a.cancelHub()
	}
	return a.repo.Close()
}

// Run serves HTTP on the configured port until ctx is cancelled, then shuts
// the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		a.log.Info("Server starting", "url", a.baseURL)
		a.log.Info("Admin API", "url", a.baseURL+"/api/admin")
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.log.Info("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// defaultBaseURL builds a LAN-reachable URL so QR codes work from phones
func defaultBaseURL(provider networkProvider, port int) string {
	return fmt.Sprintf("http://%s:%d", getPreferredIP(provider), port)
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

// realInterface wraps a real net.Interface
type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider is an interface for getting network interfaces (for testing)
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

// realNetworkProvider implements networkProvider using actual net package
type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the best IPv4 address for LAN access, preferring
// private ranges. Falls back to localhost.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP
	for _, iface := range ifaces {
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.To4() == nil || ip.IsLoopback() {
				continue
			}
			candidates = append(candidates, ip)
		}
	}

	for _, ip := range candidates {
		if ip.IsPrivate() {
			return ip.String()
		}
	}
	if len(candidates) > 0 {
		return candidates[0].String()
	}
	return "localhost"
}
