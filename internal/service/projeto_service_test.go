package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/notify"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRelatorioStore struct {
	projetos []model.Projeto
	alertas  map[string]bool
}

func (f *fakeRelatorioStore) ListAtivosComRelatorio(context.Context) ([]model.Projeto, error) {
	return f.projetos, nil
}

func (f *fakeRelatorioStore) EnsureAlerta(_ context.Context, a *model.AlertaRelatorio) (bool, error) {
	key := fmt.Sprintf("%d/%s/%s", a.ProjetoID, a.Tipo, a.DataAlerta)
	if f.alertas[key] {
		return false, nil
	}
	f.alertas[key] = true
	return true, nil
}

type recordingQueue struct{ emails []notify.Email }

func (q *recordingQueue) EnqueueEmail(_ context.Context, msg notify.Email) error {
	q.emails = append(q.emails, msg)
	return nil
}

func (q *recordingQueue) EnqueueSMS(context.Context, string, string) error { return nil }

func projetoCom(id int, proximo model.Date, email string) model.Projeto {
	return model.Projeto{
		ID:               id,
		Titulo:           fmt.Sprintf("Projeto %d", id),
		NumeroProcesso:   "23104.000001/2026-01",
		CoordenadorNome:  "Prof. Lima",
		CoordenadorEmail: email,
		Situacao:         model.ProjetoAtivo,
		ProximoRelatorio: &proximo,
	}
}

func TestVerificarRelatorios(t *testing.T) {
	hoje := model.NewDate(time.Date(2026, 8, 10, 0, 0, 0, 0, time.Local))
	store := &fakeRelatorioStore{
		alertas: map[string]bool{},
		projetos: []model.Projeto{
			projetoCom(1, hoje.AddDays(-3), "lima@ifb.edu.br"),
			projetoCom(2, hoje.AddDays(DiasAvisoRelatorio), "lima@ifb.edu.br"),
			projetoCom(3, hoje.AddDays(DiasAvisoRelatorio+1), "lima@ifb.edu.br"),
			projetoCom(4, hoje, ""),
			{ID: 5, Situacao: model.ProjetoAtivo},
		},
	}
	queue := &recordingQueue{}
	v := NewVerificadorRelatorios(store, queue, zerolog.Nop())

	res, err := v.Verificar(context.Background(), hoje)
	require.NoError(t, err)
	assert.Equal(t, 3, res.AlertasCriados)
	assert.Equal(t, 2, res.EmailsEnviados)

	assert.True(t, store.alertas[fmt.Sprintf("1/%s/%s", model.AlertaRelatorioVencido, hoje)])
	assert.True(t, store.alertas[fmt.Sprintf("2/%s/%s", model.AlertaRelatorioProximo, hoje)])
	assert.True(t, store.alertas[fmt.Sprintf("4/%s/%s", model.AlertaRelatorioProximo, hoje)])

	require.Len(t, queue.emails, 2)
	assert.Contains(t, queue.emails[0].Subject, "VENCIDO")
	assert.Contains(t, queue.emails[0].Text, "Projeto 1")
	assert.Contains(t, queue.emails[1].Subject, "Lembrete")
}

func TestVerificarRelatorios_SameDayRunIsIdempotent(t *testing.T) {
	hoje := model.NewDate(time.Date(2026, 8, 10, 0, 0, 0, 0, time.Local))
	store := &fakeRelatorioStore{
		alertas:  map[string]bool{},
		projetos: []model.Projeto{projetoCom(1, hoje.AddDays(-1), "lima@ifb.edu.br")},
	}
	queue := &recordingQueue{}
	v := NewVerificadorRelatorios(store, queue, zerolog.Nop())

	_, err := v.Verificar(context.Background(), hoje)
	require.NoError(t, err)
	res, err := v.Verificar(context.Background(), hoje)
	require.NoError(t, err)

	assert.Zero(t, res.AlertasCriados)
	assert.Len(t, queue.emails, 1)

	res, err = v.Verificar(context.Background(), hoje.AddDays(1))
	require.NoError(t, err)
	assert.Equal(t, 1, res.AlertasCriados)
}
