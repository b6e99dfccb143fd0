package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		"Matrícula SGA":         "matricula_sga",
		"  Situação no Curso  ": "situacao_no_curso",
		"email":                 "email",
		"Ano/Turmas":            "ano_turmas",
		"Data de Nascimento":    "data_de_nascimento",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeHeader(in), in)
	}
}

func TestReadCSV_DetectsSemicolon(t *testing.T) {
	data := "\xef\xbb\xbfData;Tipo;Estudante;Turma\n10/03/2025;Atraso;Ana Souza;1A\n;;;\n11/03/2025;Uso de Celular;Bruno Lima;1B\n"
	rows, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "Ana Souza", rows[0].Get("estudante"))
	assert.Equal(t, 4, rows[1].Line)
	assert.Equal(t, "1B", rows[1].Get("turma"))
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptySheet)
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Matrícula", "Nome", "Turma"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"2024001", "Ana Souza", "1A"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	rows, err := ReadXLSX(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2024001", rows[0].Get("matricula_sga", "matricula"))
	assert.Equal(t, "Ana Souza", rows[0].Get("nome"))
}

func row(line int, kv ...string) Row {
	r := Row{Line: line, Values: map[string]string{}}
	for i := 0; i+1 < len(kv); i += 2 {
		r.Values[NormalizeHeader(kv[i])] = kv[i+1]
	}
	return r
}

func TestParseEstudantes(t *testing.T) {
	recs, errs := ParseEstudantes([]Row{
		row(2, "Matrícula", "2024001", "Nome", "Ana Souza", "Data de Nascimento", "05/04/2008", "Data de Ingresso", "01/02/2024", "Turma", "1A", "Email Acadêmico", "ANA@IFB.EDU.BR"),
		row(3, "Matrícula", "", "Nome", "Sem Matricula"),
		row(4, "Matrícula", "2024003", "Nome", "Caio", "Situação", "desconhecida"),
		row(5, "Matrícula", "2024004", "Nome", "Duda", "Situação", "trancado"),
	})

	require.Len(t, recs, 2)
	assert.Equal(t, "2024001", recs[0].Estudante.MatriculaSGA)
	assert.Equal(t, "ana@ifb.edu.br", recs[0].Estudante.Email)
	assert.Equal(t, "1A", recs[0].Turma)
	require.NotNil(t, recs[0].Estudante.DataNascimento)
	assert.Equal(t, "2008-04-05", recs[0].Estudante.DataNascimento.String())
	require.NotNil(t, recs[0].Estudante.DataIngresso)
	assert.Equal(t, "2024-02-01", recs[0].Estudante.DataIngresso.String())
	assert.Equal(t, model.SituacaoAtivo, recs[0].Estudante.Situacao)
	assert.Equal(t, model.SituacaoTrancado, recs[1].Estudante.Situacao)

	require.Len(t, errs, 2)
	assert.Equal(t, 3, errs[0].Line)
	assert.Equal(t, 4, errs[1].Line)
}

func TestParseResponsaveis(t *testing.T) {
	recs, errs := ParseResponsaveis([]Row{
		row(2, "matricula", "2024001", "nome", "Maria", "celular", "(61) 99999-8888", "tipo_vinculo", "mae"),
		row(3, "matricula", "2024002", "nome", "João", "celular", "12"),
		row(4, "matricula", "2024003", "nome", "José", "tipo_vinculo", "AVO"),
	})

	require.Len(t, recs, 1)
	assert.Equal(t, "61999998888", recs[0].Responsavel.Celular)
	assert.Equal(t, model.VinculoMae, recs[0].Responsavel.TipoVinculo)
	assert.Equal(t, model.ContatoEmail, recs[0].Responsavel.PreferenciaContato)

	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Message, "celular")
	assert.Contains(t, errs[1].Message, "vínculo")
}

func TestParseServidores(t *testing.T) {
	recs, errs := ParseServidores([]Row{
		row(2, "usuario", "1234567", "Nome", "Carla", "email", "Carla@IFB.edu.br", "coordenacao", "cdpd", "comissao_disciplinar", "TRUE", "ficha_aluno", "false", "senha", "segredo123"),
		row(3, "siape", "7654321", "nome", "Paulo", "email", "p@ifb.edu.br", "coordenacao", "XYZ"),
	})

	require.Len(t, recs, 1)
	s := recs[0].Servidor
	assert.Equal(t, "1234567", s.Siape)
	assert.Equal(t, "carla@ifb.edu.br", s.Email)
	assert.Equal(t, model.CoordenacaoCDPD, s.Coordenacao)
	assert.True(t, s.MembroComissaoDisciplinar)
	assert.False(t, s.PodeVisualizarFichaAluno)
	assert.Equal(t, "segredo123", recs[0].Senha)

	require.Len(t, errs, 1)
	assert.Equal(t, 3, errs[0].Line)
}

func TestParseDisciplinas(t *testing.T) {
	recs, errs := ParseDisciplinas([]Row{
		row(2, "codigo", "MAT1", "nome", "Matemática I", "carga_horaria", "80", "curso", "TPAV"),
		row(3, "codigo", "FIS1", "nome", "Física I", "carga_horaria", "oitenta"),
	})
	require.Len(t, recs, 1)
	assert.Equal(t, 80, recs[0].Disciplina.CargaHoraria)
	assert.Equal(t, "TPAV", recs[0].Curso)
	require.Len(t, errs, 1)
}

func TestTipoCodigo(t *testing.T) {
	assert.Equal(t, "ATRASO", TipoCodigo("Atraso (Após 07h45m)"))
	assert.Equal(t, "UNIFORME", TipoCodigo("Sem Uniforme"))
	assert.Equal(t, "AUSENCIA", TipoCodigo("Fora de sala de aula sem autorização"))
	assert.Equal(t, "BIBLIO", TipoCodigo("BIBLIO"))
	assert.Equal(t, "UNIFORME_RETIRADA", TipoCodigo("uniforme_retirada"))
}

func TestParseRapidas(t *testing.T) {
	recs, errs := ParseRapidas([]Row{
		row(2, "data", "10/03/2025", "tipo", "Uso de Celular", "estudante", "Ana Souza", "turma", "1A"),
		row(3, "data", "", "tipo", "Atraso", "estudante", "Bruno"),
		row(4, "data", "31/02/2025", "tipo", "Atraso", "estudante", "Bruno"),
		row(5, "data", "10/03/2025", "tipo", "Atraso", "matricula", "2024001", "horario", "07:50"),
	})

	require.Len(t, recs, 2)
	assert.Equal(t, "CELULAR", recs[0].Tipo)
	assert.Equal(t, "2025-03-10", recs[0].Data.String())
	assert.Equal(t, "00:00", recs[0].Horario)
	assert.Equal(t, "07:50", recs[1].Horario)
	assert.Equal(t, "2024001", recs[1].Matricula)

	require.Len(t, errs, 2)
	assert.Equal(t, 3, errs[0].Line)
	assert.Equal(t, 4, errs[1].Line)
}
