package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/notify"
	"github.com/ifb/ocorrencias-backend/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAlertaStore struct {
	cfg     *model.ConfiguracaoLimite
	alertas map[string]*model.AlertaLimite
	nextID  int
	marked  map[int][3]bool
	// raceWith is inserted by a concurrent writer right before InsertAlerta.
	raceWith *model.AlertaLimite
}

func newFakeAlertaStore(cfg *model.ConfiguracaoLimite) *fakeAlertaStore {
	return &fakeAlertaStore{cfg: cfg, alertas: map[string]*model.AlertaLimite{}, marked: map[int][3]bool{}}
}

func chaveKey(estudanteID, tipoID int, mes model.Date) string {
	return fmt.Sprintf("%d/%d/%s", estudanteID, tipoID, mes.MonthStart())
}

func (f *fakeAlertaStore) GetConfiguracaoAtiva(_ context.Context, tipoID int) (*model.ConfiguracaoLimite, error) {
	if f.cfg == nil || !f.cfg.Ativo || f.cfg.TipoOcorrenciaID != tipoID {
		return nil, repository.ErrNotFound
	}
	return f.cfg, nil
}

func (f *fakeAlertaStore) GetAlerta(_ context.Context, k model.AlertaChave) (*model.AlertaLimite, error) {
	a, ok := f.alertas[chaveKey(k.EstudanteID, k.TipoID, k.Mes)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAlertaStore) InsertAlerta(_ context.Context, a *model.AlertaLimite) (bool, error) {
	if f.raceWith != nil {
		f.nextID++
		f.raceWith.ID = f.nextID
		f.alertas[chaveKey(f.raceWith.EstudanteID, f.raceWith.TipoOcorrenciaID, f.raceWith.MesReferencia)] = f.raceWith
		f.raceWith = nil
	}
	key := chaveKey(a.EstudanteID, a.TipoOcorrenciaID, a.MesReferencia)
	if _, ok := f.alertas[key]; ok {
		return false, nil
	}
	f.nextID++
	a.ID = f.nextID
	cp := *a
	f.alertas[key] = &cp
	return true, nil
}

func (f *fakeAlertaStore) byID(id int) *model.AlertaLimite {
	for _, a := range f.alertas {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (f *fakeAlertaStore) UpdateQuantidade(_ context.Context, id, quantidade int) error {
	a := f.byID(id)
	if a == nil {
		return repository.ErrNotFound
	}
	a.QuantidadeOcorrencias = quantidade
	return nil
}

func (f *fakeAlertaStore) DeleteAlerta(_ context.Context, id int) error {
	for k, a := range f.alertas {
		if a.ID == id {
			delete(f.alertas, k)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeAlertaStore) MarkCanais(_ context.Context, id int, sistema, emailCoordenacao, emailResponsaveis bool) error {
	f.marked[id] = [3]bool{sistema, emailCoordenacao, emailResponsaveis}
	return nil
}

type fakeRapidaCounter struct{ n int }

func (f *fakeRapidaCounter) Count(context.Context, int, int, model.Date, model.Date) (int, error) {
	return f.n, nil
}

type fakeEstudantes struct{}

func (fakeEstudantes) GetByID(_ context.Context, id int) (*model.Estudante, error) {
	return &model.Estudante{ID: id, Nome: "Ana Souza", MatriculaSGA: "2024001", TurmaNome: "1A"}, nil
}

type fakeTipos struct{}

func (fakeTipos) GetTiposRapidosByIDs(_ context.Context, ids []int) ([]model.TipoOcorrenciaRapida, error) {
	return []model.TipoOcorrenciaRapida{{ID: ids[0], Codigo: "ATRASO", Descricao: "Atraso"}}, nil
}

type fakeDestinatarios struct{ list []model.Destinatario }

func (f fakeDestinatarios) ListDestinatariosByCoordenacoes(context.Context, []model.Coordenacao) ([]model.Destinatario, error) {
	return f.list, nil
}

type fakeResponsaveis struct{ list []model.Responsavel }

func (f fakeResponsaveis) ListByEstudante(context.Context, int) ([]model.Responsavel, error) {
	return f.list, nil
}

type fakeNotificador struct{ criadas []NovaNotificacao }

func (f *fakeNotificador) Criar(_ context.Context, n NovaNotificacao) (*model.Notificacao, error) {
	f.criadas = append(f.criadas, n)
	return &model.Notificacao{ID: len(f.criadas)}, nil
}

type fakeQueue struct {
	emails []notify.Email
	sms    []string
}

func (f *fakeQueue) EnqueueEmail(_ context.Context, msg notify.Email) error {
	f.emails = append(f.emails, msg)
	return nil
}

func (f *fakeQueue) EnqueueSMS(_ context.Context, phone, body string) error {
	f.sms = append(f.sms, phone)
	return nil
}

type alertaFixture struct {
	svc     *AlertaService
	store   *fakeAlertaStore
	counter *fakeRapidaCounter
	notif   *fakeNotificador
	queue   *fakeQueue
}

func newAlertaFixture(cfg *model.ConfiguracaoLimite) *alertaFixture {
	fx := &alertaFixture{
		store:   newFakeAlertaStore(cfg),
		counter: &fakeRapidaCounter{},
		notif:   &fakeNotificador{},
		queue:   &fakeQueue{},
	}
	fx.svc = NewAlertaService(AlertaDeps{
		Alertas:    fx.store,
		Rapidas:    fx.counter,
		Estudantes: fakeEstudantes{},
		Tipos:      fakeTipos{},
		Servidores: fakeDestinatarios{list: []model.Destinatario{
			{UsuarioID: 7, ServidorID: 70, Nome: "Coord", Email: "coord@ifb.edu.br"},
		}},
		Responsaveis: fakeResponsaveis{list: []model.Responsavel{
			{ID: 1, Nome: "Mãe", Email: "mae@example.com"},
			{ID: 2, Nome: "Pai"},
		}},
		Notificador: fx.notif,
		Queue:       fx.queue,
		BaseURL:     "https://ocorrencias.ifb.edu.br",
	}, zerolog.Nop())
	return fx
}

func limiteCfg() *model.ConfiguracaoLimite {
	return &model.ConfiguracaoLimite{
		ID:                      1,
		TipoOcorrenciaID:        3,
		LimiteMensal:            3,
		Ativo:                   true,
		CoordenacoesNotificar:   []model.Coordenacao{model.CoordenacaoCDAE},
		GerarNotificacaoSistema: true,
		GerarEmailCoordenacao:   true,
		GerarEmailResponsaveis:  true,
	}
}

func mes() model.Date {
	return model.NewDate(time.Date(2026, 3, 17, 0, 0, 0, 0, time.Local))
}

func chave() model.AlertaChave {
	return model.AlertaChave{EstudanteID: 10, TipoID: 3, Mes: mes()}
}

func TestAlerta_BelowLimitCreatesNothing(t *testing.T) {
	fx := newAlertaFixture(limiteCfg())
	fx.counter.n = 2

	require.NoError(t, fx.svc.Recalcular(context.Background(), []model.AlertaChave{chave()}))
	assert.Empty(t, fx.store.alertas)
	assert.Empty(t, fx.notif.criadas)
	assert.Empty(t, fx.queue.emails)
}

func TestAlerta_ReachingLimitFiresEveryChannelOnce(t *testing.T) {
	fx := newAlertaFixture(limiteCfg())
	fx.counter.n = 3

	require.NoError(t, fx.svc.Recalcular(context.Background(), []model.AlertaChave{chave()}))
	require.Len(t, fx.store.alertas, 1)

	a, err := fx.store.GetAlerta(context.Background(), chave())
	require.NoError(t, err)
	assert.Equal(t, 3, a.QuantidadeOcorrencias)
	assert.Equal(t, mes().MonthStart().String(), a.MesReferencia.String())

	require.Len(t, fx.notif.criadas, 1)
	assert.Equal(t, 7, fx.notif.criadas[0].Destinatario.UsuarioID)
	assert.Equal(t, model.NotificacaoAlerta, fx.notif.criadas[0].Tipo)
	assert.Contains(t, fx.notif.criadas[0].Mensagem, "Ana Souza")

	// One coordenacao email plus one per responsavel with an address.
	require.Len(t, fx.queue.emails, 2)
	assert.Equal(t, []string{"coord@ifb.edu.br"}, fx.queue.emails[0].To)
	assert.Contains(t, fx.queue.emails[0].Text, "/estudantes/10")
	assert.Equal(t, []string{"mae@example.com"}, fx.queue.emails[1].To)

	assert.Equal(t, [3]bool{true, true, true}, fx.store.marked[a.ID])
}

func TestAlerta_GrowingCountUpdatesWithoutNotifyingAgain(t *testing.T) {
	fx := newAlertaFixture(limiteCfg())
	fx.counter.n = 3
	require.NoError(t, fx.svc.Recalcular(context.Background(), []model.AlertaChave{chave()}))

	fx.counter.n = 5
	require.NoError(t, fx.svc.Recalcular(context.Background(), []model.AlertaChave{chave()}))

	a, err := fx.store.GetAlerta(context.Background(), chave())
	require.NoError(t, err)
	assert.Equal(t, 5, a.QuantidadeOcorrencias)
	assert.Len(t, fx.notif.criadas, 1)
	assert.Len(t, fx.queue.emails, 2)
}

func TestAlerta_DroppingBelowLimitRemovesAlert(t *testing.T) {
	fx := newAlertaFixture(limiteCfg())
	fx.counter.n = 4
	require.NoError(t, fx.svc.Recalcular(context.Background(), []model.AlertaChave{chave()}))
	require.Len(t, fx.store.alertas, 1)

	fx.counter.n = 2
	require.NoError(t, fx.svc.Recalcular(context.Background(), []model.AlertaChave{chave()}))
	assert.Empty(t, fx.store.alertas)
}

func TestAlerta_InactiveConfigIsSkipped(t *testing.T) {
	cfg := limiteCfg()
	cfg.Ativo = false
	fx := newAlertaFixture(cfg)
	fx.counter.n = 10

	require.NoError(t, fx.svc.Recalcular(context.Background(), []model.AlertaChave{chave()}))
	assert.Empty(t, fx.store.alertas)
}

func TestAlerta_ConcurrentInsertDoesNotNotifyTwice(t *testing.T) {
	fx := newAlertaFixture(limiteCfg())
	fx.counter.n = 4
	fx.store.raceWith = &model.AlertaLimite{
		EstudanteID:           10,
		TipoOcorrenciaID:      3,
		MesReferencia:         mes().MonthStart(),
		QuantidadeOcorrencias: 3,
	}

	require.NoError(t, fx.svc.Recalcular(context.Background(), []model.AlertaChave{chave()}))
	require.Len(t, fx.store.alertas, 1)
	a, err := fx.store.GetAlerta(context.Background(), chave())
	require.NoError(t, err)
	assert.Equal(t, 4, a.QuantidadeOcorrencias)
	assert.Empty(t, fx.notif.criadas)
	assert.Empty(t, fx.queue.emails)
}

func TestAlerta_NoChannelsEnabled(t *testing.T) {
	cfg := limiteCfg()
	cfg.GerarNotificacaoSistema = false
	cfg.GerarEmailCoordenacao = false
	cfg.GerarEmailResponsaveis = false
	fx := newAlertaFixture(cfg)
	fx.counter.n = 3

	require.NoError(t, fx.svc.Recalcular(context.Background(), []model.AlertaChave{chave()}))
	assert.Len(t, fx.store.alertas, 1)
	assert.Empty(t, fx.store.marked)
}
