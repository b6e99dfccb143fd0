package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ifb/ocorrencias-backend/internal/config"
	"github.com/ifb/ocorrencias-backend/internal/database"
	"github.com/ifb/ocorrencias-backend/internal/drive"
	"github.com/ifb/ocorrencias-backend/internal/handler"
	"github.com/ifb/ocorrencias-backend/internal/logger"
	"github.com/ifb/ocorrencias-backend/internal/notify"
	"github.com/ifb/ocorrencias-backend/internal/repository"
	"github.com/ifb/ocorrencias-backend/internal/router"
	"github.com/ifb/ocorrencias-backend/internal/service"
	"github.com/ifb/ocorrencias-backend/internal/validator"
	"github.com/ifb/ocorrencias-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(logger.Options{
		Level:        cfg.LogLevel,
		Format:       cfg.LogFormat,
		Service:      "server",
		RollbarToken: cfg.RollbarToken,
		Environment:  cfg.Environment,
	})
	defer logger.Flush()
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Ocorrências Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	campusRepo := repository.NewCampusRepository(pool)
	servidorRepo := repository.NewServidorRepository(pool)
	catalogoRepo := repository.NewCatalogoRepository(pool)
	estudanteRepo := repository.NewEstudanteRepository(pool)
	responsavelRepo := repository.NewResponsavelRepository(pool)
	ocorrenciaRepo := repository.NewOcorrenciaRepository(pool)
	rapidaRepo := repository.NewOcorrenciaRapidaRepository(pool)
	alertaRepo := repository.NewAlertaRepository(pool)
	notificacaoRepo := repository.NewNotificacaoRepository(pool)
	atendimentoRepo := repository.NewAtendimentoRepository(pool)
	refeitorioRepo := repository.NewRefeitorioRepository(pool)
	pedagogicoRepo := repository.NewPedagogicoRepository(pool)
	napneRepo := repository.NewNapneRepository(pool)
	projetoRepo := repository.NewProjetoRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)

	// ─── Outbound Delivery ─────────────────────────────────────────────
	queue := notify.NewQueue(rdb)
	dispatcher := notify.NewDispatcher(notify.NewMailer(cfg, log), notify.NewSMSSender(cfg))

	fetcher, err := drive.NewFetcher(ctx, cfg.GoogleCredentialsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Drive client")
	}

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb, usuarioRepo, servidorRepo, roleRepo, log)
	usuarioService := service.NewUsuarioService(usuarioRepo, roleRepo, authService, log)
	roleService := service.NewRoleService(roleRepo)
	cadastroService := service.NewCadastroService(campusRepo, servidorRepo, catalogoRepo, log)
	mediaService := service.NewMediaService(cfg)
	fotoService := service.NewFotoService(fetcher, rdb, cfg, log)
	notificacaoService := service.NewNotificacaoService(notificacaoRepo, rdb, queue, cfg, log)
	estudanteService := service.NewEstudanteService(
		estudanteRepo, responsavelRepo, ocorrenciaRepo, rapidaRepo, atendimentoRepo, mediaService, log,
	)
	ocorrenciaService := service.NewOcorrenciaService(
		cfg, ocorrenciaRepo, estudanteRepo, responsavelRepo, servidorRepo, catalogoRepo,
		notificacaoService, queue, log,
	)
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
	limiteService := service.NewLimiteService(alertaRepo)
	rapidaService := service.NewRapidaService(
		rapidaRepo, catalogoRepo, estudanteRepo, responsavelRepo, alertaService, queue, log,
	)
	documentoService := service.NewDocumentoService(cfg, ocorrenciaRepo, rapidaRepo, estudanteRepo, catalogoRepo, log)
	atendimentoService := service.NewAtendimentoService(atendimentoRepo, log)
	refeitorioService := service.NewRefeitorioService(refeitorioRepo, estudanteRepo, servidorRepo, rdb, log)
	pedagogicoService := service.NewPedagogicoService(
		pedagogicoRepo, estudanteRepo, responsavelRepo, ocorrenciaRepo, rapidaRepo, atendimentoRepo, napneRepo, log,
	)
	napneService := service.NewNapneService(napneRepo, log)
	projetoService := service.NewProjetoService(projetoRepo, queue, log)
	dashboardService := service.NewDashboardService(dashboardRepo, ocorrenciaRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Usuario:     handler.NewUsuarioHandler(usuarioService),
		Role:        handler.NewRoleHandler(roleService),
		Cadastro:    handler.NewCadastroHandler(cadastroService),
		Estudante:   handler.NewEstudanteHandler(estudanteService),
		Ocorrencia:  handler.NewOcorrenciaHandler(ocorrenciaService, documentoService, mediaService),
		Rapida:      handler.NewRapidaHandler(rapidaService, limiteService, documentoService),
		Notificacao: handler.NewNotificacaoHandler(notificacaoService),
		Atendimento: handler.NewAtendimentoHandler(atendimentoService),
		Refeitorio:  handler.NewRefeitorioHandler(refeitorioService),
		Pedagogico:  handler.NewPedagogicoHandler(pedagogicoService),
		Napne:       handler.NewNapneHandler(napneService),
		Projeto:     handler.NewProjetoHandler(projetoService),
		Dashboard:   handler.NewDashboardHandler(dashboardService),
		Media:       handler.NewMediaHandler(fotoService),
		Monitor:     handler.NewMonitorHandler(refeitorioService, log),
		WS:          handler.NewWSHandler(notificacaoService, log, cfg.AllowedOrigins),
		System:      handler.NewSystemHandler(pool, rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	deliveryWorker := worker.NewDeliveryWorker(rdb, dispatcher, cfg.DeliveryMaxAttempts, log)
	deliveryDone := make(chan struct{})
	go func() {
		defer close(deliveryDone)
		deliveryWorker.Start(workerCtx)
	}()

	var scheduler *worker.Scheduler
	if cfg.SchedulerEnabled {
		scheduler, err = worker.NewScheduler(cfg.CronRelatorios, cfg.CronPrazosDefesa, projetoService, ocorrenciaService, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid scheduler configuration")
		}
		scheduler.Start()
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Let running cron jobs finish, then stop the delivery loop.
	if scheduler != nil {
		scheduler.Stop()
	}
	workerCancel()
	select {
	case <-deliveryDone:
	case <-time.After(5 * time.Second):
		log.Warn().Msg("Delivery worker did not stop in time")
	}

	log.Info().Msg("Shutdown complete")
}
