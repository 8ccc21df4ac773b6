package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abrezinsky/gymscore/internal/app"
	"github.com/abrezinsky/gymscore/internal/browser"
	"github.com/abrezinsky/gymscore/internal/config"
	"github.com/abrezinsky/gymscore/internal/logger"
	"github.com/abrezinsky/gymscore/web"
)

var (
	version = "dev"
)

const usage = `GymScore - Gymnastics Competition Scoring

Usage:
  gymscore [options]

Options:
  -port int        HTTP server port (default 8081)
  -db string       SQLite path or postgres:// URL (default "gymscore.db")
  -secret str      Session signing key (random per run if not set)
  -adminuser str   Bootstrap admin username (default "admin")
  -adminpw str     Bootstrap admin password (auto-generated if not set)
  -baseurl str     Public base URL used in the live QR code
  -loglevel str    Log level: debug, info, warn, error (default "info")
  -logfile str     Also write JSON logs to this rotating file
  -debug           Debug logging and HTTP request logging
  -open            Open the live board in a browser on start
  -version         Show version and exit

Every option can also be set as a GYMSCORE_* environment variable
or in a .env file, e.g. GYMSCORE_DATABASE_URL=postgres://...

Examples:
  gymscore                                # Run on port 8081 with gymscore.db
  gymscore -port 8080 -db /data/meet.db   # Custom port and database
  gymscore -adminpw secret123 -open       # Fixed admin password, open browser
`

func main() {
	cfg, err := config.Load(os.Args[1:], ".env")
	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n\n%s", err, usage)
		os.Exit(2)
	}

	if cfg.ShowVersion {
		fmt.Printf("gymscore %s\n", version)
		os.Exit(0)
	}

	appLog := logger.NewWithOptions(logger.ParseLevel(cfg.EffectiveLogLevel()), logger.FileOptions{
		Path:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   true,
	})
	defer appLog.Close()

	if cfg.Debug {
		appLog.EnableHTTPLogging()
	}
	if cfg.SecretGenerated {
		appLog.Warn("No secret key configured; sessions will not survive a restart")
	}

	a, err := app.New(appLog, cfg, web.GetTemplatesFS(), web.GetStaticFS())
	if err != nil {
		log.Fatal("Failed to initialize application: ", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	password, err := a.BootstrapAdmin(ctx)
	if err != nil {
		log.Fatal(err)
	}
	if password != "" {
		appLog.Info("Admin account created", "username", cfg.AdminUser, "password", password)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Run(cfg.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		appLog.Info("Shutting down")
		return a.Shutdown(context.Background())
	})

	if cfg.OpenBrowser {
		// Give the listener a moment before the browser hits it
		time.Sleep(100 * time.Millisecond)
		liveURL := fmt.Sprintf("http://localhost:%d/live", cfg.Port)
		if err := browser.Open(liveURL); err != nil {
			appLog.Warn("Could not open browser", "url", liveURL, "error", err)
		}
	}

	if err := g.Wait(); err != nil {
		appLog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
