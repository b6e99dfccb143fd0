package service

import (
	"context"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/notify"
	"github.com/rs/zerolog"
)

// Aviso is a message to the guardians of a student.
type Aviso struct {
	Assunto string
	// Email builds the email body for one guardian.
	Email func(est *model.Estudante, r *model.Responsavel) string
	// SMS builds the text message; nil disables SMS.
	SMS func(est *model.Estudante) string
}

type estudanteLister interface {
	ListByIDs(ctx context.Context, ids []int) ([]model.Estudante, error)
}

// avisador queues guardian notices on the channels each guardian prefers.
type avisador struct {
	estudantes   estudanteLister
	responsaveis responsavelLister
	queue        notify.Enqueuer
	log          zerolog.Logger
}

// avisar never fails: every problem is logged and the next guardian is tried.
func (a *avisador) avisar(ctx context.Context, estudanteIDs []int, aviso Aviso) {
	ests, err := a.estudantes.ListByIDs(ctx, estudanteIDs)
	if err != nil {
		a.log.Error().Err(err).Msg("Failed to load estudantes for aviso")
		return
	}
	for i := range ests {
		est := &ests[i]
		resps, err := a.responsaveis.ListByEstudante(ctx, est.ID)
		if err != nil {
			a.log.Error().Err(err).Int("estudante_id", est.ID).Msg("Failed to load responsaveis")
			continue
		}
		for j := range resps {
			r := &resps[j]
			if r.PreferenciaContato.WantsEmail() && r.Email != "" && aviso.Email != nil {
				err := a.queue.EnqueueEmail(ctx, notify.Email{
					To:      []string{r.Email},
					Subject: aviso.Assunto,
					Text:    aviso.Email(est, r),
				})
				if err != nil {
					a.log.Error().Err(err).Int("responsavel_id", r.ID).Msg("Failed to queue responsavel email")
				}
			}
			if r.PreferenciaContato.WantsSMS() && r.Celular != "" && aviso.SMS != nil {
				if err := a.queue.EnqueueSMS(ctx, r.Celular, aviso.SMS(est)); err != nil {
					a.log.Error().Err(err).Int("responsavel_id", r.ID).Msg("Failed to queue responsavel SMS")
				}
			}
		}
	}
}
