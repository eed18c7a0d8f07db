// Command ledgerctl inspects and maintains the carteira ledger from the
// shell: balance audits, repairs, listings and manual entries.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"carteira/internal/config"
	"carteira/internal/database"
	"carteira/internal/events"
	"carteira/internal/logger"
	"carteira/internal/uuid"
	"carteira/internal/validator"
)

// app carries the per-invocation configuration shared by all subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string
	out     io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Inspect and maintain the carteira ledger",
		Long: `ledgerctl talks to the carteira database directly. Settings come from
flags, CARTEIRA_* environment variables or a ledgerctl.yaml file, in that
order, and fall back to the API server's own environment.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.out = cmd.OutOrStdout()
			return a.initConfig()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./ledgerctl.yaml)")
	flags.String("db-driver", "", "database driver (postgres, sqlite)")
	flags.String("sqlite-path", "", "sqlite database file")
	flags.String("user", "", "user id to operate on")
	_ = a.v.BindPFlag("db.driver", flags.Lookup("db-driver"))
	_ = a.v.BindPFlag("db.sqlite_path", flags.Lookup("sqlite-path"))
	_ = a.v.BindPFlag("user", flags.Lookup("user"))

	root.AddCommand(a.verifyCmd())
	root.AddCommand(a.repairCmd())
	root.AddCommand(a.accountsCmd())
	root.AddCommand(a.listCmd())
	root.AddCommand(a.addCmd())
	return root
}

func main() {
	logger.Init(os.Getenv("ENV"))
	validator.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	logger.Sync()

	if err != nil {
		os.Exit(1)
	}
}

func (a *app) initConfig() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.AddConfigPath(".")
		a.v.SetConfigName("ledgerctl")
		a.v.SetConfigType("yaml")
	}

	a.v.SetEnvPrefix("CARTEIRA")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// settings layers viper values over the API server's configuration.
func (a *app) settings() (*config.Config, *database.Config, error) {
	base, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	db := database.NewConfig(base)
	a.override(&db.Driver, "db.driver")
	a.override(&db.Host, "db.host")
	a.override(&db.Port, "db.port")
	a.override(&db.User, "db.user")
	a.override(&db.Password, "db.password")
	a.override(&db.DBName, "db.name")
	a.override(&db.SSLMode, "db.sslmode")
	a.override(&db.SQLitePath, "db.sqlite_path")
	db.Driver = strings.ToLower(db.Driver)

	a.override(&base.AMQPURL, "amqp.url")
	a.override(&base.AMQPExchange, "amqp.exchange")
	return base, db, nil
}

func (a *app) override(dst *string, key string) {
	if v := a.v.GetString(key); v != "" {
		*dst = v
	}
}

// withDB opens the database and the event publisher for the duration of fn.
func (a *app) withDB(fn func(db *gorm.DB, publisher events.Publisher) error) error {
	base, dbConfig, err := a.settings()
	if err != nil {
		return err
	}

	manager, err := database.NewManager(dbConfig)
	if err != nil {
		return err
	}
	defer func() {
		if err := manager.Close(); err != nil {
			logger.Get().Warnw("Database close error", "error", err)
		}
	}()
	if dbConfig.Driver == database.DriverSQLite {
		if err := manager.RunMigrations(); err != nil {
			return err
		}
	}

	publisher, err := events.FromConfig(base.AMQPURL, base.AMQPExchange)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Get().Warnw("Event publisher close error", "error", err)
		}
	}()

	return fn(manager.DB(), publisher)
}

// user returns the --user value; empty is allowed only when optional.
func (a *app) user(required bool) (string, error) {
	id := a.v.GetString("user")
	if id == "" {
		if required {
			return "", errors.New("--user is required")
		}
		return "", nil
	}
	canonical, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("invalid --user %q: %w", id, err)
	}
	return canonical, nil
}
