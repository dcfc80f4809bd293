package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/pos-backend/pkg/config"
	"github.com/angelmondragon/pos-backend/pkg/db"
	"github.com/angelmondragon/pos-backend/pkg/logger"
	"github.com/angelmondragon/pos-backend/pkg/migrate"
)

var errUnknownCommand = errors.New("unknown command")

type options struct {
	command string
	dir     string
	name    string
	version string
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.command, "cmd", "up", "up|down|status|version|create|validate")
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "migrations directory")
	flag.StringVar(&opts.name, "name", "", "migration name, for create")
	flag.StringVar(&opts.version, "version", "", "target version YYYYMMDDHHMMSS, for version")
	flag.Parse()

	cfg, err := config.Load()
	exitOnErr(context.Background(), logg, "failed to load config", err)

	logg = logger.New(loggerOptions(cfg))
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": opts.command,
		"dir": opts.dir,
	})

	if handled, err := runOffline(opts); handled {
		exitOnErr(ctx, logg, "migration command failed", err)
		return
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	exitOnErr(ctx, logg, "failed to bootstrap database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	exitOnErr(ctx, logg, "failed to extract sql.DB", err)

	if err := runOnline(ctx, sqlDB, opts); err != nil {
		_ = dbClient.Close()
		exitOnErr(ctx, logg, "migration command failed", err)
	}
	logg.Info(ctx, "migration command completed")
}

func loggerOptions(cfg *config.Config) logger.Options {
	return logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	}
}

// runOffline handles the commands that only touch the migrations directory.
func runOffline(opts options) (bool, error) {
	switch opts.command {
	case "create":
		if opts.name == "" {
			return true, errors.New("-name is required for create")
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
		if err != nil {
			return true, err
		}
		fmt.Println("created migration:", path)
		return true, nil
	case "validate":
		if err := migrate.ValidateDir(opts.dir); err != nil {
			return true, err
		}
		fmt.Println("migrations are valid")
		return true, nil
	}
	return false, nil
}

func runOnline(ctx context.Context, sqlDB *sql.DB, opts options) error {
	switch opts.command {
	case "up", "down", "status":
		return migrate.Run(ctx, sqlDB, opts.dir, opts.command)
	case "version":
		if opts.version == "" {
			return errors.New("-version is required for version")
		}
		return migrate.MigrateToVersion(ctx, sqlDB, opts.dir, opts.version)
	}
	return fmt.Errorf("%w %q", errUnknownCommand, opts.command)
}

func exitOnErr(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, msg, err)
	os.Exit(1)
}
