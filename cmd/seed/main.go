// Command seed provisions the six default branch accounts on a fresh
// database. Running it against an already-seeded database is a no-op.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/prestamos/vales-gateway/internal/config"
	"github.com/prestamos/vales-gateway/internal/repository"
	"github.com/prestamos/vales-gateway/internal/services"
	"github.com/prestamos/vales-gateway/pkg/pg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultBranchCount = 6

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := config.Load(argContainsEnvPath()); err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	db, err := pg.CreateReadWrite(writeConf, writeConf, false)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to pg")
	}

	if err := pg.Migrate(writeConf, config.Get().MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	branchRepo := repository.NewBranchRepository(db)
	branchService := services.NewBranchService(branchRepo)

	ctx := context.Background()

	count, err := branchRepo.Count(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to count branches")
	}
	if count > 0 {
		log.Info().Int64("branches", count).Msg("Database already seeded, nothing to do")
		return
	}

	for i := 1; i <= defaultBranchCount; i++ {
		nombre := fmt.Sprintf("Local %d", i)
		usuario := fmt.Sprintf("local%d", i)

		branch, err := branchService.Register(ctx, nombre, usuario, usuario)
		if err != nil {
			log.Fatal().Err(err).Str("usuario", usuario).Msg("Failed to register branch")
		}
		log.Info().
			Int64("id", branch.ID).
			Str("nombre", branch.Nombre).
			Str("usuario", branch.Usuario).
			Msg("Branch created")
	}

	log.Info().Int("branches", defaultBranchCount).Msg("Seeding complete")
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				log.Error().Err(err).Msg("Failed to open the passed env file")
				return ""
			}
			return s[1]
		}
	}
	return ""
}
