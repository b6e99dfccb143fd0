package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/ifb/ocorrencias-backend/internal/config"
	"github.com/ifb/ocorrencias-backend/internal/database"
	"github.com/ifb/ocorrencias-backend/internal/logger"
	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/repository"
	"github.com/ifb/ocorrencias-backend/internal/service"
	"github.com/ifb/ocorrencias-backend/internal/validator"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(logger.Options{Level: cfg.LogLevel, Format: "pretty", Service: "create-admin"})
	validator.Setup()

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Services ───────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	servidorRepo := repository.NewServidorRepository(pool)
	// Only password hashing is used here, so no Redis client is needed.
	authService := service.NewAuthService(cfg, nil, usuarioRepo, servidorRepo, roleRepo, log)
	usuarioService := service.NewUsuarioService(usuarioRepo, roleRepo, authService, log)
	cadastroService := service.NewCadastroService(
		repository.NewCampusRepository(pool), servidorRepo, repository.NewCatalogoRepository(pool), log,
	)

	roleID, err := roleRepo.GetRoleIDByName(ctx, model.RoleAdministrador)
	if err != nil {
		log.Fatal().Err(err).Msg("Administrador role not found, run the migrations first")
	}

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)
	prompt := func(label string) string {
		fmt.Print(label)
		s, _ := reader.ReadString('\n')
		return strings.TrimSpace(s)
	}

	fmt.Println("=== Criar administrador ===")

	req := model.CreateUsuarioRequest{
		Username:    prompt("Username: "),
		Email:       prompt("Email: "),
		Nome:        prompt("Nome completo: "),
		RoleID:      roleID,
		IsSuperuser: true,
	}

	fmt.Print("Senha: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Println("Erro ao ler a senha")
		return
	}
	req.Password = string(bytePassword)

	if fields := validator.Struct(req); fields != nil {
		for f, msg := range fields {
			fmt.Printf("  %s: %s\n", f, msg)
		}
		return
	}

	// Optional staff profile; without it the account cannot act as a servidor.
	siape := prompt("SIAPE (vazio para pular): ")

	// ─── Logic ─────────────────────────────────────────────────────────
	u, err := usuarioService.Create(ctx, req)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create usuario")
	}
	fmt.Printf("\nUsuário '%s' criado com ID %d.\n", u.Username, u.ID)

	if siape == "" {
		return
	}
	s, err := cadastroService.CreateServidor(ctx, model.ServidorRequest{
		UsuarioID:                 &u.ID,
		Siape:                     siape,
		Nome:                      u.Nome,
		Email:                     u.Email,
		Coordenacao:               model.CoordenacaoDG,
		MembroComissaoDisciplinar: true,
		PodeRegistrarAtendimento:  true,
		PodeVisualizarFichaAluno:  true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create servidor profile")
	}
	fmt.Printf("Servidor SIAPE %s vinculado (ID %d).\n", s.Siape, s.ID)
}
