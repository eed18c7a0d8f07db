// Command migrate applies the embedded postgres migrations.
//
//	migrate up [N]     apply all (or N) pending migrations
//	migrate down [N]   roll back N migrations (default 1)
//	migrate version    print the current version
//	migrate force V    mark version V as clean after a failed run
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"

	"carteira/internal/config"
	"carteira/internal/database"
	"carteira/internal/logger"
)

const usage = "usage: migrate <up|down|version|force> [N]"

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(os.Args[1:]); err != nil {
		logger.Get().Fatalf("Migration error: %v", err)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.DBDriver != database.DriverPostgres {
		return fmt.Errorf("DB_DRIVER=%s is migrated from the models at startup; nothing to do", cfg.DBDriver)
	}

	m, err := database.NewMigrator(database.NewConfig(cfg))
	if err != nil {
		return err
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if err := errors.Join(srcErr, dbErr); err != nil {
			logger.Get().Warnw("Migrator close error", "error", err)
		}
	}()

	log := logger.Get()
	switch args[0] {
	case "up":
		n, err := count(args, 0)
		if err != nil {
			return err
		}
		if n == 0 {
			err = m.Up()
		} else {
			err = m.Steps(n)
		}
		if ignoreNoChange(err) != nil {
			return fmt.Errorf("migration up failed: %w", err)
		}

	case "down":
		n, err := count(args, 1)
		if err != nil {
			return err
		}
		if err := ignoreNoChange(m.Steps(-n)); err != nil {
			return fmt.Errorf("migration down failed: %w", err)
		}

	case "force":
		v, err := count(args, -1)
		if err != nil || v < 0 {
			return errors.New("usage: migrate force <version>")
		}
		if err := m.Force(v); err != nil {
			return fmt.Errorf("force failed: %w", err)
		}

	case "version":
	default:
		return fmt.Errorf("unknown command %q; %s", args[0], usage)
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		log.Info("No migrations applied")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get version: %w", err)
	}
	log.Infow("Schema version", "version", version, "dirty", dirty)
	return nil
}

// count parses the optional numeric argument after the command.
func count(args []string, fallback int) (int, error) {
	if len(args) < 2 {
		return fallback, nil
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("invalid count %q: %w", args[1], err)
	}
	return n, nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
