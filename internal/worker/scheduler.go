package worker

import (
	"context"
	"time"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const jobTimeout = 4 * time.Minute

type relatorioChecker interface {
	VerificarRelatorios(ctx context.Context) (*model.ResultadoVerificacao, error)
}

type prazoReminder interface {
	LembrarPrazos(ctx context.Context, hoje model.Date) (int, error)
}

// Scheduler runs the daily jobs. A run still in progress makes the next
// tick of the same job a no-op.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// NewScheduler registers the project report check and the defence deadline
// reminders on their cron specs.
func NewScheduler(relatoriosSpec, prazosSpec string, relatorios relatorioChecker, prazos prazoReminder, log zerolog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		log:  log.With().Str("component", "scheduler").Logger(),
	}

	if _, err := s.cron.AddFunc(relatoriosSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		res, err := relatorios.VerificarRelatorios(ctx)
		if err != nil {
			s.log.Error().Err(err).Msg("Report check failed")
			return
		}
		s.log.Info().Int("alertas", res.AlertasCriados).Int("emails", res.EmailsEnviados).Msg("Report check done")
	}); err != nil {
		return nil, err
	}

	if _, err := s.cron.AddFunc(prazosSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		n, err := prazos.LembrarPrazos(ctx, model.Today())
		if err != nil {
			s.log.Error().Err(err).Msg("Deadline reminders failed")
			return
		}
		s.log.Info().Int("processos", n).Msg("Deadline reminders sent")
	}); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
