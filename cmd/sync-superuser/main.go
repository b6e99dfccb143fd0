package main

import (
	"context"
	"fmt"

	"github.com/ifb/ocorrencias-backend/internal/config"
	"github.com/ifb/ocorrencias-backend/internal/database"
	"github.com/ifb/ocorrencias-backend/internal/logger"
	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/repository"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(logger.Options{Level: cfg.LogLevel, Format: "pretty", Service: "sync-superuser"})

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	roleRepo := repository.NewRoleRepository(pool)

	fmt.Println("=== Sincronizar permissões do Administrador ===")

	// 1. Make sure every permission known to the code exists in the database.
	codes := make([]string, 0, len(model.AllPermissions))
	for _, p := range model.AllPermissions {
		codes = append(codes, string(p))
	}
	added, err := roleRepo.EnsurePermissions(ctx, codes)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to insert missing permissions")
	}
	if added > 0 {
		fmt.Printf("%d permissões novas cadastradas.\n", added)
	}

	// 2. Resolve the administrator role.
	roleID, err := roleRepo.GetRoleIDByName(ctx, model.RoleAdministrador)
	if err != nil {
		log.Fatal().Err(err).Msg("Administrador role not found, run the migrations first")
	}

	// 3. Replace its grants with the full set.
	perms, err := roleRepo.ListPermissions(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list permissions")
	}
	all := make([]string, 0, len(perms))
	for _, p := range perms {
		all = append(all, p.Code)
	}
	if err := roleRepo.SetPermissions(ctx, roleID, all); err != nil {
		log.Fatal().Err(err).Int("role_id", roleID).Msg("Failed to assign permissions")
	}

	fmt.Printf("\nPronto! O papel %s (ID %d) tem agora %d permissões.\n", model.RoleAdministrador, roleID, len(all))
}
