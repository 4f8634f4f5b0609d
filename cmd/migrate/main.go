package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/ManuelReschke/ChapterFox/internal/pkg/env"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/logger"
)

func main() {
	// Load environment variables from .env file
	env.SetupEnvFile()
	log := logger.New(env.GetEnv("APP_ENV", "dev"), env.GetEnv("LOG_LEVEL", "info")).
		With().Str("cmd", "migrate").Logger()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	dbURL := fmt.Sprintf("mysql://%s:%s@tcp(%s:%s)/%s?multiStatements=true",
		env.GetEnv("DB_USER", "chapterfox"),
		env.GetEnv("DB_PASSWORD", "chapterfox"),
		env.GetEnv("DB_HOST", "db"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", "chapterfox_db"),
	)

	log.Info().
		Str("user", env.GetEnv("DB_USER", "chapterfox")).
		Str("host", env.GetEnv("DB_HOST", "db")).
		Str("port", env.GetEnv("DB_PORT", "3306")).
		Str("database", env.GetEnv("DB_NAME", "chapterfox_db")).
		Msg("Connecting to database")

	m, err := migrate.New(
		"file://"+env.GetEnv("MIGRATIONS_DIR", "migrations"),
		dbURL,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize migrations")
	}

	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			log.Error().AnErr("source", sourceErr).AnErr("db", dbErr).Msg("Failed to close migration resources")
		}
	}()

	switch command {
	case "up":
		err := m.Up()
		switch {
		case errors.Is(err, migrate.ErrNoChange):
			log.Info().Msg("No changes: database is up to date")
		case err != nil:
			log.Fatal().Err(err).Msg("Failed to run migrations")
		default:
			log.Info().Msg("Migrations applied")
		}

	case "down":
		// roll back the last migration only
		if err := m.Steps(-1); err != nil {
			log.Fatal().Err(err).Msg("Failed to roll back the last migration")
		}
		log.Info().Msg("Rolled back the last migration")

	case "goto":
		if len(os.Args) < 3 {
			log.Fatal().Msg("Please provide a version number")
		}
		version, err := strconv.ParseUint(os.Args[2], 10, 64)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid version number")
		}

		err = m.Migrate(uint(version))
		switch {
		case errors.Is(err, migrate.ErrNoChange):
			log.Info().Uint64("version", version).Msg("No changes: database is already at this version")
		case err != nil:
			log.Fatal().Err(err).Uint64("version", version).Msg("Failed to migrate")
		default:
			log.Info().Uint64("version", version).Msg("Migrated")
		}

	case "status":
		version, dirty, err := m.Version()
		switch {
		case errors.Is(err, migrate.ErrNilVersion):
			log.Info().Msg("No migrations applied yet")
		case err != nil:
			log.Fatal().Err(err).Msg("Failed to read migration version")
		default:
			log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Current migration version")
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: go run cmd/migrate/main.go [command]")
	fmt.Println("Commands:")
	fmt.Println("  up     - apply all pending migrations")
	fmt.Println("  down   - roll back the last migration")
	fmt.Println("  goto N - migrate to version N")
	fmt.Println("  status - show the current migration version")
}
