// Command migration applies the league night schema with golang-migrate.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"

	"github.com/riskibarqy/league-night/internal/platform/logging"
)

const migrationAppName = "league-night-migration"

var defaultMigrationDirs = []string{"./db/migrations", "/app/db/migrations"}

type command func(m *migrate.Migrate, args []string, logger *logging.Logger) error

var commands = map[string]command{
	"up":      runUp,
	"down":    runDown,
	"version": runVersion,
	"force":   runForce,
	"goto":    runGoto,
}

func main() {
	logger := logging.New(true, logging.LevelInfo)
	defer func() { _ = logger.Sync() }()

	if err := run(os.Args[1:], logger); err != nil {
		var usage usageError
		if errors.As(err, &usage) {
			printUsage()
			os.Exit(2)
		}
		logger.Error("migration failed", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

type usageError struct{ reason string }

func (e usageError) Error() string { return e.reason }

func run(args []string, logger *logging.Logger) error {
	if len(args) == 0 {
		return usageError{reason: "missing command"}
	}
	cmd, ok := commands[strings.ToLower(strings.TrimSpace(args[0]))]
	if !ok {
		return usageError{reason: "unknown command " + args[0]}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
	if dbURL == "" {
		return errors.New("DB_URL is required")
	}

	dir, err := resolveMigrationsDir(os.Getenv("MIGRATIONS_DIR"), os.Getenv("MIGRATIONS_PATH"))
	if err != nil {
		return err
	}
	source := "file://" + filepath.ToSlash(dir)

	m, err := migrate.New(source, withApplicationName(dbURL, migrationAppName))
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if err := errors.Join(srcErr, dbErr); err != nil {
			logger.Warn("close migrator", "error", err)
		}
	}()

	logger.Info("migration source", "dir", dir)
	return cmd(m, args[1:], logger)
}

func runUp(m *migrate.Migrate, _ []string, logger *logging.Logger) error {
	return report(m.Up(), logger, "migrations applied")
}

func runDown(m *migrate.Migrate, args []string, logger *logging.Logger) error {
	steps := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil || n <= 0 {
			return fmt.Errorf("down steps must be a positive integer, got %q", args[0])
		}
		steps = n
	}
	return report(m.Steps(-steps), logger, "migrations rolled back", "steps", steps)
}

func runVersion(m *migrate.Migrate, _ []string, _ *logging.Logger) error {
	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		fmt.Println("version: none\ndirty: false")
		return nil
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	}
	fmt.Printf("version: %d\ndirty: %t\n", version, dirty)
	return nil
}

func runForce(m *migrate.Migrate, args []string, logger *logging.Logger) error {
	version, err := versionArg(args)
	if err != nil {
		return err
	}
	if err := m.Force(int(version)); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	logger.Info("version forced", "version", version)
	return nil
}

func runGoto(m *migrate.Migrate, args []string, logger *logging.Logger) error {
	version, err := versionArg(args)
	if err != nil {
		return err
	}
	return report(m.Migrate(uint(version)), logger, "migrated", "version", version)
}

// versionArg reads a non-negative version that fits in an int.
func versionArg(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, errors.New("a version argument is required")
	}
	version, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, strconv.IntSize)
	if err != nil || version < 0 {
		return 0, fmt.Errorf("invalid version %q", args[0])
	}
	return version, nil
}

// report treats ErrNoChange as success.
func report(err error, logger *logging.Logger, msg string, kv ...any) error {
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration changes")
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info(msg, kv...)
	return nil
}

func resolveMigrationsDir(overrides ...string) (string, error) {
	candidates := append(overrides, defaultMigrationDirs...)
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs, nil
		}
	}
	return "", fmt.Errorf("no migrations directory found, set MIGRATIONS_DIR or use one of %s", strings.Join(defaultMigrationDirs, ", "))
}

// withApplicationName labels the session in pg_stat_activity unless the URL
// already names an application. golang-migrate only accepts URL DSNs.
func withApplicationName(raw, name string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return raw
	}
	q := u.Query()
	if q.Get("application_name") != "" {
		return raw
	}
	q.Set("application_name", name)
	u.RawQuery = q.Encode()
	return u.String()
}

func printUsage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	bin := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <%s> [args]\n", bin, strings.Join(names, "|"))
	fmt.Fprintf(os.Stderr, "  %s up\n  %s down 1\n  %s version\n  %s force 1776297600\n  %s goto 1776297600\n", bin, bin, bin, bin, bin)
}
