package main

import (
	"errors"
	"flag"
	"fmt"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/ifb/ocorrencias-backend/internal/config"
	"github.com/ifb/ocorrencias-backend/internal/logger"
	"github.com/rs/zerolog"
)

func main() {
	var migrationDir string
	flag.StringVar(&migrationDir, "path", "migrations", "Path to migration files")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(logger.Options{Level: cfg.LogLevel, Format: "pretty", Service: "migrate"})

	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is not set")
	}

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		return
	}

	m, err := migrate.New("file://"+migrationDir, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("path", migrationDir).Msg("Migration failed to initialize")
	}
	defer m.Close()
	m.Log = migrateLogger{log}

	switch args[0] {
	case "up":
		check(log, "up", m.Up())
	case "down":
		// Without a count only the last migration is reverted.
		n := 1
		if len(args) > 1 {
			if args[1] == "all" {
				check(log, "down", m.Down())
				break
			}
			n = atoi(log, args[1])
		}
		check(log, "down", m.Steps(-n))
	case "steps":
		if len(args) < 2 {
			log.Fatal().Msg("steps requires a count argument")
		}
		check(log, "steps", m.Steps(atoi(log, args[1])))
	case "version":
		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			log.Fatal().Err(err).Msg("Version failed")
		}
		fmt.Printf("Version: %d, Dirty: %t\n", version, dirty)
	case "force":
		if len(args) < 2 {
			log.Fatal().Msg("force requires version argument")
		}
		v := atoi(log, args[1])
		if err := m.Force(v); err != nil {
			log.Fatal().Err(err).Msg("Force failed")
		}
		fmt.Printf("Forced version to %d\n", v)
	default:
		printUsage()
	}
}

func check(log zerolog.Logger, op string, err error) {
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal().Err(err).Str("op", op).Msg("Migration failed")
	}
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Str("op", op).Msg("No change")
		return
	}
	log.Info().Str("op", op).Msg("Migrated successfully")
}

func atoi(log zerolog.Logger, s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		log.Fatal().Str("value", s).Msg("Invalid number")
	}
	return v
}

// migrateLogger adapts zerolog to migrate.Logger.
type migrateLogger struct {
	log zerolog.Logger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.log.Info().Msgf(format, v...)
}

func (l migrateLogger) Verbose() bool {
	return l.log.GetLevel() <= zerolog.DebugLevel
}

func printUsage() {
	fmt.Println("Usage: migrate [flags] <command>")
	fmt.Println("Commands: up, down [n|all], steps <n>, version, force <version>")
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
