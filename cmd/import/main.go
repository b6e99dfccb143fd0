package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ifb/ocorrencias-backend/internal/config"
	"github.com/ifb/ocorrencias-backend/internal/database"
	"github.com/ifb/ocorrencias-backend/internal/importer"
	"github.com/ifb/ocorrencias-backend/internal/logger"
	"github.com/ifb/ocorrencias-backend/internal/notify"
	"github.com/ifb/ocorrencias-backend/internal/repository"
	"github.com/ifb/ocorrencias-backend/internal/service"
)

func main() {
	var (
		kind       string
		path       string
		campusID   int
		servidorID int
	)
	flag.StringVar(&kind, "tipo", "", "estudantes, responsaveis, servidores, disciplinas or rapidas")
	flag.StringVar(&path, "arquivo", "", "Path to the .xlsx or .csv file")
	flag.IntVar(&campusID, "campus", 0, "Campus ID assigned to imported servidores")
	flag.IntVar(&servidorID, "servidor", 0, "Servidor ID recorded as author of imported rapidas")
	flag.Parse()

	if kind == "" || path == "" {
		printUsage()
		os.Exit(2)
	}
	if kind == "rapidas" && servidorID == 0 {
		fmt.Println("rapidas requires -servidor")
		os.Exit(2)
	}

	cfg := config.Load()
	log := logger.Setup(logger.Options{Level: cfg.LogLevel, Format: "pretty", Service: "import"})

	rows, err := importer.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("arquivo", path).Msg("Failed to read import file")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// Imported rapidas refresh the monthly alerts, which notify through Redis.
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	usuarioRepo := repository.NewUsuarioRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	servidorRepo := repository.NewServidorRepository(pool)
	estudanteRepo := repository.NewEstudanteRepository(pool)
	responsavelRepo := repository.NewResponsavelRepository(pool)
	catalogoRepo := repository.NewCatalogoRepository(pool)
	rapidaRepo := repository.NewOcorrenciaRapidaRepository(pool)
	alertaRepo := repository.NewAlertaRepository(pool)

	queue := notify.NewQueue(rdb)
	authService := service.NewAuthService(cfg, rdb, usuarioRepo, servidorRepo, roleRepo, log)
	notificacaoService := service.NewNotificacaoService(repository.NewNotificacaoRepository(pool), rdb, queue, cfg, log)
	alertaService := service.NewAlertaService(service.AlertaDeps{
		Alertas:      alertaRepo,
		Rapidas:      rapidaRepo,
		Estudantes:   estudanteRepo,
		Tipos:        catalogoRepo,
		Servidores:   servidorRepo,
		Responsaveis: responsavelRepo,
		Notificador:  notificacaoService,
		Queue:        queue,
		BaseURL:      cfg.PublicBaseURL,
	}, log)
	rapidaService := service.NewRapidaService(
		rapidaRepo, catalogoRepo, estudanteRepo, responsavelRepo, alertaService, queue, log,
	)

	imp := importer.New(importer.Deps{
		Estudantes:   estudanteRepo,
		Responsaveis: responsavelRepo,
		Servidores:   servidorRepo,
		Usuarios:     usuarioRepo,
		Roles:        roleRepo,
		Campi:        repository.NewCampusRepository(pool),
		Catalogo:     catalogoRepo,
		Pedagogico:   repository.NewPedagogicoRepository(pool),
		RapidasRepo:  rapidaRepo,
		Rapidas:      rapidaService,
		Hasher:       authService,
	}, log)

	var res *importer.Result
	switch kind {
	case "estudantes":
		res = imp.ImportEstudantes(ctx, rows)
	case "responsaveis":
		res = imp.ImportResponsaveis(ctx, rows)
	case "servidores":
		var campus *int
		if campusID > 0 {
			campus = &campusID
		}
		res = imp.ImportServidores(ctx, rows, campus)
	case "disciplinas":
		res = imp.ImportDisciplinas(ctx, rows)
	case "rapidas":
		res = imp.ImportRapidas(ctx, rows, servidorID)
	default:
		printUsage()
		os.Exit(2)
	}

	fmt.Printf("\nLinhas: %d | criados: %d | atualizados: %d | ignorados: %d | erros: %d\n",
		res.Total, res.Criados, res.Atualizados, res.Ignorados, len(res.Erros))
	for _, e := range res.Erros {
		fmt.Printf("  linha %d: %s\n", e.Line, e.Message)
	}
}

func printUsage() {
	fmt.Println("Usage: import -tipo <tipo> -arquivo <arquivo> [-campus id] [-servidor id]")
	fmt.Println("Tipos: estudantes, responsaveis, servidores, disciplinas, rapidas")
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
