package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ifb/ocorrencias-backend/internal/config"
	"github.com/ifb/ocorrencias-backend/internal/database"
	"github.com/ifb/ocorrencias-backend/internal/logger"
	"github.com/ifb/ocorrencias-backend/internal/notify"
	"github.com/ifb/ocorrencias-backend/internal/repository"
	"github.com/ifb/ocorrencias-backend/internal/service"
)

// Runs the project report check once, for hosts that schedule it with the
// system cron instead of the in-process scheduler.
func main() {
	cfg := config.Load()
	log := logger.Setup(logger.Options{
		Level:        cfg.LogLevel,
		Format:       cfg.LogFormat,
		Service:      "verificar-relatorios",
		RollbarToken: cfg.RollbarToken,
		Environment:  cfg.Environment,
	})
	defer logger.Flush()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	projetos := service.NewProjetoService(repository.NewProjetoRepository(pool), notify.NewQueue(rdb), log)

	res, err := projetos.VerificarRelatorios(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Report check failed")
		return
	}
	fmt.Printf("Alertas criados: %d | emails enfileirados: %d\n", res.AlertasCriados, res.EmailsEnviados)
}
