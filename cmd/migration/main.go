package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/golang-migrate/migrate/v4"

	"github.com/myusername/cricket-commentary-scraper/internal/config"
	"github.com/myusername/cricket-commentary-scraper/internal/logging"
	"github.com/myusername/cricket-commentary-scraper/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	config.LoadEnvFile()
	log := logging.New(logging.FormatConsole, logging.LevelInfo)
	defer func() { _ = log.Sync() }()

	dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
	if dbURL == "" {
		fatal(log, "DB_URL is required", nil)
	}
	driver := strings.ToLower(strings.TrimSpace(os.Getenv("DB_DRIVER")))
	if driver == "" {
		driver = store.DriverPostgres
	}

	m, err := store.NewMigrator(driver, dbURL)
	if err != nil {
		fatal(log, "create migrator", err)
	}
	defer closeMigrator(log, m)

	cmd := strings.ToLower(strings.TrimSpace(os.Args[1]))
	switch cmd {
	case "up":
		handleMigrationErr(log, m.Up())
		log.Info("migrations applied", "driver", driver)
	case "down":
		steps, err := parseSteps(os.Args[2:])
		if err != nil {
			fatal(log, "parse steps", err)
		}
		handleMigrationErr(log, m.Steps(-steps))
		log.Info("rolled back migrations", "steps", steps)
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("version: none")
			fmt.Println("dirty: false")
			return
		}
		if err != nil {
			fatal(log, "read version", err)
		}
		fmt.Printf("version: %d\n", version)
		fmt.Printf("dirty: %t\n", dirty)
	case "force":
		if len(os.Args) < 3 {
			fatal(log, "force requires a version argument", nil)
		}
		version, err := parseVersion(os.Args[2])
		if err != nil {
			fatal(log, "parse version", err)
		}
		if err := m.Force(version); err != nil {
			fatal(log, "force version", err)
		}
		log.Info("forced version", "version", version)
	default:
		printUsage()
		os.Exit(2)
	}
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}

	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, errors.Wrapf(err, "invalid down steps %q", args[0])
	}
	if steps <= 0 {
		return 0, errors.New("down steps must be > 0")
	}
	return steps, nil
}

func parseVersion(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.Wrapf(err, "invalid version %q", raw)
	}
	if value < 0 {
		return 0, errors.New("version must be >= 0")
	}
	return value, nil
}

func handleMigrationErr(log *logging.Logger, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("no migration changes")
		return
	}
	fatal(log, "migrate", err)
}

func closeMigrator(log *logging.Logger, m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		log.Warn("close migration source", "error", srcErr)
	}
	if dbErr != nil {
		log.Warn("close migration database", "error", dbErr)
	}
}

func fatal(log *logging.Logger, msg string, err error) {
	if err != nil {
		log.Error(msg, "error", err)
	} else {
		log.Error(msg)
	}
	_ = log.Sync()
	os.Exit(1)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: migration <up|down [n]|version|force <version>>")
	fmt.Fprintln(os.Stderr, "env: DB_URL (required), DB_DRIVER (postgres|pgx|sqlite, default postgres)")
}
