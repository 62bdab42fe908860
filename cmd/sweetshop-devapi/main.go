// Command sweetshop-devapi serves a local stand-in for the sweet shop REST
// API backed by SQLite.
package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/sweetshop/internal/api"
	"github.com/erazemk/sweetshop/internal/config"
	"github.com/erazemk/sweetshop/internal/db"
	"github.com/erazemk/sweetshop/internal/logging"
	"github.com/erazemk/sweetshop/internal/model"
	"github.com/erazemk/sweetshop/internal/store"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("sweetshop-devapi", flag.ContinueOnError)

	var addr string
	fs.StringVar(&addr, "addr", ":3001", "")
	fs.StringVar(&addr, "a", ":3001", "")

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "")

	fs.StringVar(&cfg.AdminEmail, "email", cfg.AdminEmail, "")
	fs.StringVar(&cfg.AdminEmail, "e", cfg.AdminEmail, "")

	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	fs.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")

	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "")

	fs.Usage = func() {
		fmt.Fprintf(os.Stdout, `Usage: sweetshop-devapi [flags]

Flags:
  -a, -addr <host:port>   listen address (default: :3001)
  -d, -db <path>          SQLite database path (default: %s)
  -e, -email <email>      admin email when none exists (default: %s)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -debug                  log at debug level
  -h, -help               show this help and exit
`, config.Defaults.DBPath, config.Defaults.AdminEmail)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	closeLog, err := logging.Setup(cfg.LogPath, cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// Ensure schema exists (idempotent).
	if err := db.EnsureSchema(database); err != nil {
		slog.Error("failed to ensure database schema", "error", err)
		os.Exit(1)
	}

	slog.Info("database ready", "path", cfg.DBPath)

	// Seed an admin account when there is none.
	ctx := context.Background()
	admins, err := store.CountAdmins(ctx, database)
	if err != nil {
		slog.Error("failed to count admins", "error", err)
		os.Exit(1)
	}
	if admins == 0 {
		password, err := seedAdmin(ctx, database, cfg.AdminEmail)
		if err != nil {
			slog.Error("failed to create admin account", "error", err)
			os.Exit(1)
		}
		printSeedResult(cfg.AdminEmail, password)
	}

	// Load JWT secret from database (auto-generated on first run).
	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		slog.Error("failed to get JWT secret", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           api.LoggingMiddleware(api.NewRouter(database, jwtSecret)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("dev API started", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped, closing database")
}

// seedAdmin creates an admin account with a random password.
func seedAdmin(ctx context.Context, database *sql.DB, email string) (string, error) {
	password, err := generatePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	if _, err := store.CreateUser(ctx, database, email, "Admin", string(hash), model.RoleAdmin); err != nil {
		return "", fmt.Errorf("creating admin user: %w", err)
	}
	return password, nil
}

// printSeedResult prints the new admin credentials to stdout.
func printSeedResult(email, password string) {
	fmt.Println("Admin account created:")
	fmt.Printf("  Email:    %s\n", email)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println()
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
