package app

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/gymscore/internal/auth"
	"github.com/abrezinsky/gymscore/internal/config"
	"github.com/abrezinsky/gymscore/internal/handlers"
	"github.com/abrezinsky/gymscore/internal/logger"
	"github.com/abrezinsky/gymscore/internal/repository"
	"github.com/abrezinsky/gymscore/internal/services"
	"github.com/abrezinsky/gymscore/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

// App holds all application dependencies
type App struct {
	log      logger.Logger
	cfg      *config.Config
	handlers *handlers.Handlers
	repo     *repository.Repository
	users    *services.UserService
	hub      *websocket.Hub

	mu     sync.Mutex
	server *http.Server
}

// New creates and initializes a new application instance
func New(log logger.Logger, cfg *config.Config, templatesFS, staticFS fs.FS) (*App, error) {
	repo, err := repository.New(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// Initialize services
	rosterService := services.NewRosterService(log, repo)
	competitionService := services.NewCompetitionService(log, repo)
	scoringService := services.NewScoringService(log, repo)
	leaderboardService := services.NewLeaderboardService(log, repo)
	resultsService := services.NewResultsService(log, repo, leaderboardService)
	userService := services.NewUserService(log, repo)

	// Spectators get a snapshot of the live board on connect
	hub := websocket.New(log, leaderboardService)
	hub.Start()
	scoringService.SetBroadcaster(hub)
	competitionService.SetBroadcaster(hub)

	h, err := handlers.New(
		scoringService,
		leaderboardService,
		competitionService,
		rosterService,
		resultsService,
		userService,
		templatesFS,
		handlers.NewStaticServer(staticFS),
		auth.NewSessions(cfg.SecretKey),
		hub,
		log,
	)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}
	h.BaseURL = cfg.BaseURL
	h.CORSOrigins = cfg.CORSOrigins

	return &App{
		log:      log,
		cfg:      cfg,
		handlers: h,
		repo:     repo,
		users:    userService,
		hub:      hub,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// BootstrapAdmin makes sure the configured admin account exists. When no
// password is configured one is generated; the returned password is empty
// unless a new account was created.
func (a *App) BootstrapAdmin(ctx context.Context) (string, error) {
	password := a.cfg.AdminPassword
	if password == "" {
		password = auth.GeneratePassword()
	}
	created, err := a.users.EnsureAdmin(ctx, a.cfg.AdminUser, password)
	if err != nil {
		return "", fmt.Errorf("bootstrap admin %q: %w", a.cfg.AdminUser, err)
	}
	if !created {
		return "", nil
	}
	return password, nil
}

// BaseURL returns the address spectators should use to reach the server
func (a *App) BaseURL() string {
	return a.handlers.BaseURL
}

// Run starts the HTTP server and blocks until it stops. A server stopped
// through Shutdown returns nil.
func (a *App) Run(addr string) error {
	a.setDefaultBaseURL(addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.mu.Lock()
	a.server = server
	a.mu.Unlock()

	a.log.Info("Server starting", "url", a.handlers.BaseURL)
	a.log.Info("Live board", "url", a.handlers.BaseURL+"/live")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	server := a.server
	a.mu.Unlock()
	if server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return server.Shutdown(ctx)
}

// Close releases the database
func (a *App) Close() error {
	return a.repo.Close()
}

// setDefaultBaseURL derives the base URL from the LAN address when none is
// configured or the configured one points at localhost (useless in a QR code)
func (a *App) setDefaultBaseURL(addr string) {
	existing := a.handlers.BaseURL
	if existing != "" && !strings.Contains(existing, "localhost") {
		return
	}
	_, port, err := net.SplitHostPort(addr)
	if err != nil || port == "" || port == "0" {
		port = fmt.Sprint(a.cfg.Port)
	}
	a.handlers.BaseURL = fmt.Sprintf("http://%s:%s", getPreferredIP(realNetworkProvider{}), port)
	a.log.Info("Default base URL set", "url", a.handlers.BaseURL)
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

// getPreferredIP returns the best IP address for LAN access.
// Prefers private network addresses (192.168.x.x, 10.x.x.x, 172.16-31.x.x).
// Falls back to localhost if no suitable address is found.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP

	for _, iface := range ifaces {
		// Skip down, loopback, and point-to-point interfaces
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

			// Only consider IPv4 addresses
			if ip == nil || ip.To4() == nil {
				continue
			}

			// Skip loopback
			if ip.IsLoopback() {
				continue
			}

			candidates = append(candidates, ip)
		}
	}

	// Prefer private network addresses
	for _, ip := range candidates {
		ipStr := ip.String()
		if strings.HasPrefix(ipStr, "192.168.") ||
			strings.HasPrefix(ipStr, "10.") ||
			isPrivate172(ip) {
			return ipStr
		}
	}

	// Fall back to any non-loopback if no private address found
	if len(candidates) > 0 {
		return candidates[0].String()
	}

	return "localhost"
}

// isPrivate172 checks if IP is in 172.16.0.0/12 range
func isPrivate172(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		return ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31
	}
	return false
}
