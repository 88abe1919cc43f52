package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/abrezinsky/heatroll/internal/app"
	"github.com/abrezinsky/heatroll/internal/auth"
	"github.com/abrezinsky/heatroll/internal/config"
	"github.com/abrezinsky/heatroll/internal/logger"
)

var (
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (optional)")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	adminPw := flag.String("adminpw", "", "Admin password (auto-generated if not set)")
	logLevel := flag.String("loglevel", "", "Log level: debug, info, warn, error (overrides config)")
	httpLog := flag.Bool("httplog", false, "Log every HTTP request")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `heatroll - weekly game draw server

Usage:
  heatroll [options]

Options:
  -config string  YAML config file
  -port int       HTTP server port (default 8081)
  -db string      SQLite database path (default "heatroll.db")
  -adminpw str    Admin password (auto-generated if not set)
  -loglevel str   Log level: debug, info, warn, error (default "info")
  -httplog        Log every HTTP request
  -version        Show version and exit
  -help           Show this help message

Examples:
  heatroll                              # Run on port 8081 with heatroll.db
  heatroll -config /etc/heatroll.yaml   # Use a config file
  heatroll -port 8080 -db /data/h.db    # Override port and database
  heatroll -adminpw secret123           # Use specific admin password

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("heatroll %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	appLog := logger.NewWithWriter(os.Stderr, logger.ParseLevel(cfg.Log.Level), cfg.Log.Format)
	if *httpLog {
		appLog.EnableHTTPLogging()
	}

	// Setup admin authentication
	password := *adminPw
	if password == "" {
		password = auth.GeneratePassword()
	}
	adminAuth := auth.New(password)

	a, err := app.New(cfg, appLog, nil, adminAuth)
	if err != nil {
		appLog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	appLog.Info("Admin password", "password", password)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		appLog.Error("Server error", "error", err)
		os.Exit(1)
	}
}
