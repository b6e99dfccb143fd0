package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStatus_Table(t *testing.T) {
	cases := []struct {
		from   OcorrenciaStatus
		action FlowAction
		to     OcorrenciaStatus
		ok     bool
	}{
		{StatusRegistrada, ActionIniciarAnalise, StatusEmAnalise, true},
		{StatusEmAnalise, ActionDesignarComissao, StatusComissaoDesignada, true},
		{StatusComissaoDesignada, ActionNotificarEstudante, StatusEstudanteNotificado, true},
		{StatusRegistrada, ActionNotificarEstudante, StatusEstudanteNotificado, true},
		{StatusEstudanteNotificado, ActionAguardarDefesa, StatusAguardandoDefesa, true},
		{StatusAguardandoDefesa, ActionRegistrarDefesa, StatusDefesaApresentada, true},
		{StatusDefesaApresentada, ActionIniciarJulgamento, StatusEmJulgamento, true},
		{StatusAguardandoDefesa, ActionIniciarJulgamento, StatusEmJulgamento, true},
		{StatusEmJulgamento, ActionAplicarSancao, StatusSancaoAplicada, true},
		{StatusSancaoAplicada, ActionAbrirRecurso, StatusEmRecurso, true},
		{StatusSancaoAplicada, ActionFinalizar, StatusFinalizada, true},
		{StatusEmRecurso, ActionFinalizar, StatusFinalizada, true},
		{StatusRegistrada, ActionFinalizar, StatusFinalizada, true},
		{StatusFinalizada, ActionArquivar, StatusArquivada, true},
		{StatusEmJulgamento, ActionArquivar, StatusArquivada, true},

		{StatusRegistrada, ActionAplicarSancao, StatusRegistrada, false},
		{StatusEmAnalise, ActionIniciarAnalise, StatusEmAnalise, false},
		{StatusFinalizada, ActionAbrirRecurso, StatusFinalizada, false},
		{StatusEmJulgamento, ActionRegistrarDefesa, StatusEmJulgamento, false},
		{StatusRegistrada, FlowAction("reabrir"), StatusRegistrada, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"/"+string(tc.action), func(t *testing.T) {
			got, ok := NextStatus(tc.from, tc.action)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.to, got)
		})
	}
}

func TestAvailableActions(t *testing.T) {
	assert.Equal(t,
		[]FlowAction{ActionIniciarAnalise, ActionNotificarEstudante, ActionFinalizar, ActionArquivar},
		AvailableActions(StatusRegistrada))
	assert.Equal(t,
		[]FlowAction{ActionAbrirRecurso, ActionFinalizar, ActionArquivar},
		AvailableActions(StatusSancaoAplicada))
	assert.Equal(t, []FlowAction{ActionArquivar}, AvailableActions(StatusArquivada))
}

func TestApply_NotificarSetsPrazo(t *testing.T) {
	hoje := NewDate(time.Date(2026, 5, 4, 15, 0, 0, 0, time.Local))
	o := &Ocorrencia{Status: StatusComissaoDesignada}

	require.NoError(t, o.Apply(ActionNotificarEstudante, hoje, 5))
	assert.Equal(t, StatusEstudanteNotificado, o.Status)
	require.NotNil(t, o.PrazoDefesa)
	assert.Equal(t, "2026-05-09", o.PrazoDefesa.String())
}

func TestApply_RegistrarDefesaStampsDate(t *testing.T) {
	hoje := NewDate(time.Date(2026, 5, 7, 0, 0, 0, 0, time.Local))
	o := &Ocorrencia{Status: StatusAguardandoDefesa}

	require.NoError(t, o.Apply(ActionRegistrarDefesa, hoje, 5))
	assert.Equal(t, StatusDefesaApresentada, o.Status)
	require.NotNil(t, o.DataDefesa)
	assert.Equal(t, "2026-05-07", o.DataDefesa.String())
}

func TestApply_RejectedLeavesOcorrenciaUntouched(t *testing.T) {
	o := &Ocorrencia{Status: StatusRegistrada}

	err := o.Apply(ActionAplicarSancao, Today(), 5)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusRegistrada, o.Status)
	assert.Nil(t, o.PrazoDefesa)

	err = o.Apply(FlowAction("pular"), Today(), 5)
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Equal(t, StatusRegistrada, o.Status)
}

func TestOcorrenciaStatus_Helpers(t *testing.T) {
	assert.Equal(t, "Em Análise", StatusEmAnalise.Label())
	assert.Equal(t, "X", OcorrenciaStatus("X").Label())
	assert.True(t, StatusEmRecurso.Valid())
	assert.False(t, OcorrenciaStatus("").Valid())
	assert.True(t, StatusFinalizada.Closed())
	assert.True(t, StatusArquivada.Closed())
	assert.False(t, StatusSancaoAplicada.Closed())
	assert.Len(t, AllOcorrenciaStatus, 11)
}
