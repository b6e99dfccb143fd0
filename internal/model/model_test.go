package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) Date {
	return NewDate(time.Date(y, m, d, 0, 0, 0, 0, time.Local))
}

func TestDate_ParseAndJSON(t *testing.T) {
	d, err := ParseDate("2026-02-28")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-28", d.String())
	assert.Equal(t, "28/02/2026", d.BR())

	b, err := json.Marshal(struct {
		D Date `json:"d"`
	}{d})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2026-02-28"}`, string(b))

	var out struct {
		D Date `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2026-03-01"}`), &out))
	assert.Equal(t, "2026-03-01", out.D.String())

	_, err = ParseDate("28/02/2026")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestParseBRDate(t *testing.T) {
	for _, s := range []string{"05/03/2026", "5/3/2026", "05/03/26", "2026-03-05"} {
		d, err := ParseBRDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, "2026-03-05", d.String(), s)
	}
	_, err := ParseBRDate("março")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDate_MonthBounds(t *testing.T) {
	d := day(2026, 12, 17)
	assert.Equal(t, "2026-12-01", d.MonthStart().String())
	assert.Equal(t, "2027-01-01", d.NextMonthStart().String())
	assert.True(t, day(2026, 1, 1).Before(d))
	assert.True(t, d.Equal(day(2026, 12, 17)))
}

func TestParseHorario(t *testing.T) {
	h, err := ParseHorario("07:05:59")
	require.NoError(t, err)
	assert.Equal(t, "07:05", h)

	_, err = ParseHorario("25:00")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestChavesAfetadas_DeduplicatesPerMonth(t *testing.T) {
	a := &OcorrenciaRapida{Data: day(2026, 4, 3), EstudanteIDs: []int{1, 2}, TipoIDs: []int{9}}
	b := &OcorrenciaRapida{Data: day(2026, 4, 20), EstudanteIDs: []int{1}, TipoIDs: []int{9, 10}}
	c := &OcorrenciaRapida{Data: day(2026, 5, 1), EstudanteIDs: []int{1}, TipoIDs: []int{9}}

	keys := ChavesAfetadas(a, nil, b, c)
	require.Len(t, keys, 4)
	assert.Equal(t, 1, keys[0].EstudanteID)
	assert.Equal(t, 2, keys[1].EstudanteID)
	assert.Equal(t, 10, keys[2].TipoID)
	assert.Equal(t, "2026-04-01", keys[2].Mes.String())
	assert.Equal(t, "2026-05-01", keys[3].Mes.String())
}

func TestDescricaoPadrao(t *testing.T) {
	assert.Equal(t, "Atraso; Sem uniforme", DescricaoPadrao([]TipoOcorrenciaRapida{
		{Descricao: "Atraso"}, {Descricao: "Sem uniforme"},
	}))
	assert.Equal(t, "", DescricaoPadrao(nil))
}

func TestConfigRefeitorio_ContainsBounds(t *testing.T) {
	c := ConfigRefeitorio{HorarioInicio: "11:00", HorarioFim: "14:00"}
	assert.True(t, c.Contains("11:00"))
	assert.True(t, c.Contains("14:00"))
	assert.False(t, c.Contains("10:59"))
	assert.False(t, c.Contains("14:01"))
}

func TestBloqueio_VigenteEm(t *testing.T) {
	fim := day(2026, 6, 10)
	b := BloqueioAcesso{Ativo: true, DataInicio: day(2026, 6, 1), DataFim: &fim}

	assert.False(t, b.VigenteEm(day(2026, 5, 31)))
	assert.True(t, b.VigenteEm(day(2026, 6, 1)))
	assert.True(t, b.VigenteEm(day(2026, 6, 10)))
	assert.False(t, b.VigenteEm(day(2026, 6, 11)))

	b.DataFim = nil
	assert.True(t, b.VigenteEm(day(2030, 1, 1)))

	b.Ativo = false
	assert.False(t, b.VigenteEm(day(2026, 6, 5)))
}

func TestFichaNAPNE_AdicionarObservacaoLaudo(t *testing.T) {
	f := &FichaNAPNE{}
	when := time.Date(2026, 3, 2, 9, 30, 0, 0, time.Local)

	f.AdicionarObservacaoLaudo("primeiro laudo", when)
	assert.Equal(t, "primeiro laudo", f.ObservacaoLaudoAtual)
	assert.Empty(t, f.ObservacoesLaudosHistorico)

	f.AdicionarObservacaoLaudo("laudo revisado", when.Add(24*time.Hour))
	assert.Equal(t, "laudo revisado", f.ObservacaoLaudoAtual)
	assert.Equal(t, "\n[03/03/2026 09:30] primeiro laudo", f.ObservacoesLaudosHistorico)
}

func TestProjeto_RelatorioDates(t *testing.T) {
	p := &Projeto{DataInicio: day(2026, 1, 10), PeriodicidadeRelatorio: 2, Situacao: ProjetoAtivo}
	p.CalcularProximoRelatorio()
	require.NotNil(t, p.ProximoRelatorio)
	assert.Equal(t, "2026-03-11", p.ProximoRelatorio.String())

	assert.False(t, p.RelatorioAtrasado(day(2026, 3, 11)))
	assert.True(t, p.RelatorioAtrasado(day(2026, 3, 12)))

	p.RegistrarRelatorio(day(2026, 3, 12))
	assert.Equal(t, "2026-03-12", p.DataUltimoRelatorio.String())
	assert.Equal(t, "2026-05-11", p.ProximoRelatorio.String())

	p.Situacao = ProjetoFinalizado
	assert.False(t, p.RelatorioAtrasado(day(2027, 1, 1)))
}

func TestSemestreAtual(t *testing.T) {
	assert.Equal(t, "2026.1", SemestreAtual(time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026.2", SemestreAtual(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)))
}

func TestEstudante_Foto(t *testing.T) {
	assert.Equal(t, "abc123", DriveFileID("https://drive.google.com/open?id=abc123&usp=sharing"))
	assert.Equal(t, "", DriveFileID("https://example.com/foto.jpg"))

	e := &Estudante{FotoURL: "https://drive.google.com/open?id=abc123"}
	assert.Equal(t, "/api/v1/fotos/drive?id=abc123", e.FotoProxyURL())

	e = &Estudante{Foto: "estudantes/1.jpg"}
	assert.Equal(t, "/uploads/estudantes/1.jpg", e.FotoProxyURL())

	assert.Equal(t, "", (&Estudante{}).FotoProxyURL())
}

func TestIniciais(t *testing.T) {
	assert.Equal(t, "AS", Iniciais("ana maria souza"))
	assert.Equal(t, "É", Iniciais("érica"))
	assert.Equal(t, "", Iniciais("  "))
}

func TestCalcularNivelAlerta(t *testing.T) {
	assert.Equal(t, NivelAlto, CalcularNivelAlerta(1, 1))
	assert.Equal(t, NivelMedio, CalcularNivelAlerta(4, 0))
	assert.Equal(t, NivelBaixo, CalcularNivelAlerta(3, 0))
}

func TestEffectivePermissions(t *testing.T) {
	perms := EffectivePermissions([]string{"ocorrencias:read"}, &Usuario{}, &Servidor{
		MembroComissaoDisciplinar: true,
		PodeVisualizarFichaAluno:  true,
		Coordenacao:               CoordenacaoNAPNE,
	})
	assert.Equal(t, []string{"ficha:read", "napne:write", "ocorrencias:flow", "ocorrencias:read"}, perms)

	all := EffectivePermissions(nil, &Usuario{IsSuperuser: true}, nil)
	assert.Len(t, all, len(AllPermissions))

	assert.Contains(t, EffectivePermissions(nil, nil, &Servidor{Coordenacao: CoordenacaoDG}), "projetos:manage")
	assert.Empty(t, EffectivePermissions(nil, nil, nil))
}
