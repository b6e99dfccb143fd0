package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ifb/ocorrencias-backend/internal/config"
	"github.com/ifb/ocorrencias-backend/internal/database"
	"github.com/ifb/ocorrencias-backend/internal/logger"
	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/repository"
	"github.com/ifb/ocorrencias-backend/internal/service"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(logger.Options{Level: cfg.LogLevel, Format: "pretty", Service: "seed-defaults"})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	roleRepo := repository.NewRoleRepository(pool)
	servidorRepo := repository.NewServidorRepository(pool)
	cadastroService := service.NewCadastroService(
		repository.NewCampusRepository(pool), servidorRepo, repository.NewCatalogoRepository(pool), log,
	)
	// Seeding meal windows never touches the live feed, so Redis stays nil.
	refeitorioService := service.NewRefeitorioService(
		repository.NewRefeitorioRepository(pool), repository.NewEstudanteRepository(pool), servidorRepo, nil, log,
	)

	fmt.Println("=== Carga inicial ===")

	// Roles
	codes := make([]string, 0, len(model.AllPermissions))
	for _, p := range model.AllPermissions {
		codes = append(codes, string(p))
	}
	if _, err := roleRepo.EnsurePermissions(ctx, codes); err != nil {
		log.Fatal().Err(err).Msg("Failed to insert permissions")
	}
	for _, r := range model.DefaultRoles {
		_, err := roleRepo.GetRoleIDByName(ctx, r.Name)
		if err == nil {
			fmt.Printf("Papel %s já existe.\n", r.Name)
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			log.Fatal().Err(err).Str("role", r.Name).Msg("Failed to look up role")
		}
		perms := make([]string, 0, len(r.Permissions))
		for _, p := range r.Permissions {
			perms = append(perms, string(p))
		}
		id, err := roleRepo.CreateRole(ctx, r.Name, perms)
		if err != nil {
			log.Fatal().Err(err).Str("role", r.Name).Msg("Failed to create role")
		}
		fmt.Printf("Papel %s criado (ID %d).\n", r.Name, id)
	}

	// Quick occurrence kinds
	n, err := cadastroService.SeedTiposRapidos(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed quick occurrence kinds")
	}
	fmt.Printf("%d tipos de ocorrência rápida criados.\n", n)

	// Meal windows
	n, err = refeitorioService.SeedConfigs(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed meal windows")
	}
	fmt.Printf("%d refeições configuradas.\n", n)

	fmt.Println("\nCarga inicial concluída.")
}
