package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRefeitorioStore struct {
	configs   []model.ConfigRefeitorio
	bloqueios []model.BloqueioAcesso
	registros []*model.RegistroRefeicao
}

func (f *fakeRefeitorioStore) ListConfigs(context.Context, bool) ([]model.ConfigRefeitorio, error) {
	return f.configs, nil
}

func (f *fakeRefeitorioStore) ListBloqueiosPessoa(context.Context, model.Pessoa) ([]model.BloqueioAcesso, error) {
	return f.bloqueios, nil
}

func (f *fakeRefeitorioStore) UltimoRegistro(_ context.Context, p model.Pessoa, tipo model.TipoRefeicao, desde time.Time) (*model.RegistroRefeicao, error) {
	for i := len(f.registros) - 1; i >= 0; i-- {
		r := f.registros[i]
		if r.TipoRefeicao == tipo && !r.DataHora.Before(desde) && samePessoa(r, p) {
			return r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func samePessoa(r *model.RegistroRefeicao, p model.Pessoa) bool {
	if p.EstudanteID != nil {
		return r.EstudanteID != nil && *r.EstudanteID == *p.EstudanteID
	}
	return r.ServidorID != nil && p.ServidorID != nil && *r.ServidorID == *p.ServidorID
}

func (f *fakeRefeitorioStore) CreateRegistro(_ context.Context, reg *model.RegistroRefeicao) error {
	reg.ID = len(f.registros) + 1
	f.registros = append(f.registros, reg)
	return nil
}

type fakeMatriculas map[string]*model.Estudante

func (f fakeMatriculas) GetByMatricula(_ context.Context, m string) (*model.Estudante, error) {
	if e, ok := f[m]; ok {
		return e, nil
	}
	return nil, repository.ErrNotFound
}

type fakeSiapes map[string]*model.Servidor

func (f fakeSiapes) GetBySiape(_ context.Context, s string) (*model.Servidor, error) {
	if sv, ok := f[s]; ok {
		return sv, nil
	}
	return nil, repository.ErrNotFound
}

func newCheckin(store *fakeRefeitorioStore, now time.Time) *Checkin {
	return &Checkin{
		store:      store,
		estudantes: fakeMatriculas{"2024001": {ID: 1, Nome: "Ana Souza"}},
		servidores: fakeSiapes{"1234567": {ID: 5, Nome: "Carlos Lima"}},
		now:        func() time.Time { return now },
		log:        zerolog.Nop(),
	}
}

func almoco() []model.ConfigRefeitorio {
	return []model.ConfigRefeitorio{
		{ID: 1, Nome: model.RefeicaoCafe, HorarioInicio: "06:30", HorarioFim: "08:30", Ativo: true, IntervaloMinimoHoras: 3},
		{ID: 2, Nome: model.RefeicaoAlmoco, HorarioInicio: "11:00", HorarioFim: "14:00", Ativo: true, IntervaloMinimoHoras: 3},
	}
}

func at(hour, min int) time.Time {
	return time.Date(2026, 4, 14, hour, min, 0, 0, time.Local)
}

func checkinErr(t *testing.T, err error) *CheckinError {
	t.Helper()
	var ce *CheckinError
	require.True(t, errors.As(err, &ce), "expected *CheckinError, got %v", err)
	return ce
}

func TestCheckin_EstudanteInsideWindow(t *testing.T) {
	store := &fakeRefeitorioStore{configs: almoco()}
	c := newCheckin(store, at(12, 15))

	res, err := c.Registrar(context.Background(), " 2024001 ", "10.0.0.9")
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", res.Nome)
	assert.Equal(t, model.RefeicaoAlmoco, res.TipoRefeicao)
	assert.Equal(t, "12:15", res.Horario)

	require.Len(t, store.registros, 1)
	reg := store.registros[0]
	require.NotNil(t, reg.EstudanteID)
	assert.Equal(t, 1, *reg.EstudanteID)
	assert.Nil(t, reg.ServidorID)
	assert.Equal(t, "2024001", reg.CodigoBarrasUsado)
	assert.Equal(t, "10.0.0.9", reg.IPAcesso)
}

func TestCheckin_ServidorBySiape(t *testing.T) {
	store := &fakeRefeitorioStore{configs: almoco()}
	c := newCheckin(store, at(7, 0))

	res, err := c.Registrar(context.Background(), "1234567", "")
	require.NoError(t, err)
	assert.Equal(t, model.RefeicaoCafe, res.TipoRefeicao)
	require.NotNil(t, store.registros[0].ServidorID)
	assert.Equal(t, 5, *store.registros[0].ServidorID)
}

func TestCheckin_EmptyCode(t *testing.T) {
	c := newCheckin(&fakeRefeitorioStore{configs: almoco()}, at(12, 0))
	_, err := c.Registrar(context.Background(), "   ", "")
	assert.ErrorIs(t, err, ErrCheckinCodigoVazio)
}

func TestCheckin_UnknownCode(t *testing.T) {
	c := newCheckin(&fakeRefeitorioStore{configs: almoco()}, at(12, 0))
	_, err := c.Registrar(context.Background(), "999", "")
	assert.ErrorIs(t, err, ErrCheckinNaoCadastrado)
	assert.Contains(t, checkinErr(t, err).Detalhes, "999")
}

func TestCheckin_OutsideEveryWindow(t *testing.T) {
	store := &fakeRefeitorioStore{configs: almoco()}
	c := newCheckin(store, at(9, 45))

	_, err := c.Registrar(context.Background(), "2024001", "")
	assert.ErrorIs(t, err, ErrCheckinForaDoHorario)
	assert.Equal(t, "Ana Souza", checkinErr(t, err).Nome)
	assert.Empty(t, store.registros)
}

func TestCheckin_InactiveWindowIgnored(t *testing.T) {
	configs := almoco()
	configs[1].Ativo = false
	c := newCheckin(&fakeRefeitorioStore{configs: configs}, at(12, 0))

	_, err := c.Registrar(context.Background(), "2024001", "")
	assert.ErrorIs(t, err, ErrCheckinForaDoHorario)
}

func TestCheckin_BlockedPerson(t *testing.T) {
	store := &fakeRefeitorioStore{
		configs: almoco(),
		bloqueios: []model.BloqueioAcesso{
			{Ativo: true, Motivo: "Uso indevido", DataInicio: model.NewDate(at(0, 0).AddDate(0, 0, -1))},
		},
	}
	c := newCheckin(store, at(12, 0))

	_, err := c.Registrar(context.Background(), "2024001", "")
	assert.ErrorIs(t, err, ErrCheckinBloqueado)
	ce := checkinErr(t, err)
	assert.Equal(t, "ACESSO BLOQUEADO", ce.Mensagem)
	assert.Equal(t, "Uso indevido", ce.Detalhes)
	assert.Empty(t, store.registros)
}

func TestCheckin_ExpiredBlockDoesNotApply(t *testing.T) {
	fim := model.NewDate(at(0, 0).AddDate(0, 0, -1))
	store := &fakeRefeitorioStore{
		configs: almoco(),
		bloqueios: []model.BloqueioAcesso{
			{Ativo: true, Motivo: "Antigo", DataInicio: model.NewDate(at(0, 0).AddDate(0, -1, 0)), DataFim: &fim},
		},
	}
	c := newCheckin(store, at(12, 0))

	_, err := c.Registrar(context.Background(), "2024001", "")
	require.NoError(t, err)
}

func TestCheckin_RepeatWithinInterval(t *testing.T) {
	store := &fakeRefeitorioStore{configs: almoco()}

	_, err := newCheckin(store, at(11, 10)).Registrar(context.Background(), "2024001", "")
	require.NoError(t, err)

	_, err = newCheckin(store, at(13, 50)).Registrar(context.Background(), "2024001", "")
	assert.ErrorIs(t, err, ErrCheckinJaRealizado)
	assert.Len(t, store.registros, 1)
}

func TestCheckin_DifferentMealAllowed(t *testing.T) {
	store := &fakeRefeitorioStore{configs: almoco()}

	_, err := newCheckin(store, at(8, 0)).Registrar(context.Background(), "2024001", "")
	require.NoError(t, err)
	_, err = newCheckin(store, at(11, 30)).Registrar(context.Background(), "2024001", "")
	require.NoError(t, err)
	assert.Len(t, store.registros, 2)
}

func TestConfigFromRequest(t *testing.T) {
	c, err := configFromRequest(&model.ConfigRefeitorio{}, model.ConfigRefeitorioRequest{
		Nome:          model.RefeicaoAlmoco,
		HorarioInicio: "11:00:00",
		HorarioFim:    "14:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "11:00", c.HorarioInicio)
	assert.Equal(t, "14:00", c.HorarioFim)
	assert.True(t, c.Ativo)
	assert.Equal(t, 3, c.IntervaloMinimoHoras)
	assert.True(t, c.Contains("12:30"))
}

func TestConfigFromRequest_RejectsInvertedWindow(t *testing.T) {
	_, err := configFromRequest(&model.ConfigRefeitorio{}, model.ConfigRefeitorioRequest{
		Nome:          model.RefeicaoAlmoco,
		HorarioInicio: "14:00",
		HorarioFim:    "11:00",
	})
	assert.ErrorIs(t, err, ErrJanelaInvertida)

	_, err = configFromRequest(&model.ConfigRefeitorio{}, model.ConfigRefeitorioRequest{
		Nome:          model.RefeicaoAlmoco,
		HorarioInicio: "25:00",
		HorarioFim:    "26:00",
	})
	assert.ErrorIs(t, err, model.ErrInvalidDate)
}
