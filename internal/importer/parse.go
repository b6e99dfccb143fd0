package importer

import (
	"strconv"
	"strings"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/validator"
)

// ─── Estudantes ────────────────────────────────────────────────────────

// EstudanteRecord is a parsed student row. Turma is resolved by name on import.
type EstudanteRecord struct {
	Line      int
	Estudante model.Estudante
	Turma     string
}

func ParseEstudantes(rows []Row) ([]EstudanteRecord, []RowError) {
	var out []EstudanteRecord
	var errs []RowError
	for _, r := range rows {
		matricula := r.Get("matricula_sga", "matricula")
		nome := r.Get("nome")
		if matricula == "" || nome == "" {
			errs = append(errs, rowErr(r, "matrícula e nome são obrigatórios"))
			continue
		}

		e := model.Estudante{
			MatriculaSGA: matricula,
			Nome:         nome,
			CPF:          r.Get("cpf"),
			Email:        strings.ToLower(r.Get("email", "email_academico", "email_google_classroom", "email_pessoal")),
			Logradouro:   r.Get("logradouro", "endereco"),
			Bairro:       r.Get("bairro"),
			Cidade:       r.Get("cidade"),
			UF:           strings.ToUpper(r.Get("uf")),
			CEP:          r.Get("cep"),
			Situacao:     model.SituacaoAtivo,
			FotoURL:      r.Get("foto_url", "link_foto"),
		}

		if s := r.Get("situacao", "situacao_no_curso"); s != "" {
			sit := model.SituacaoEstudante(strings.ToUpper(s))
			if !validSituacao(sit) {
				errs = append(errs, rowErr(r, "situação inválida: %q", s))
				continue
			}
			e.Situacao = sit
		}
		if s := r.Get("data_nascimento", "data_de_nascimento"); s != "" {
			d, err := model.ParseBRDate(s)
			if err != nil {
				errs = append(errs, rowErr(r, "data de nascimento inválida: %q", s))
				continue
			}
			e.DataNascimento = &d
		}
		if s := r.Get("data_ingresso", "data_de_ingresso"); s != "" {
			d, err := model.ParseBRDate(s)
			if err != nil {
				errs = append(errs, rowErr(r, "data de ingresso inválida: %q", s))
				continue
			}
			e.DataIngresso = &d
		}

		out = append(out, EstudanteRecord{Line: r.Line, Estudante: e, Turma: r.Get("turma")})
	}
	return out, errs
}

func validSituacao(s model.SituacaoEstudante) bool {
	switch s {
	case model.SituacaoAtivo, model.SituacaoInativo, model.SituacaoTrancado,
		model.SituacaoEvadido, model.SituacaoFormado, model.SituacaoTransferido:
		return true
	}
	return false
}

// ─── Responsáveis ──────────────────────────────────────────────────────

// ResponsavelRecord is a guardian row linked to a student by matrícula.
type ResponsavelRecord struct {
	Line        int
	Matricula   string
	Responsavel model.Responsavel
}

func ParseResponsaveis(rows []Row) ([]ResponsavelRecord, []RowError) {
	var out []ResponsavelRecord
	var errs []RowError
	for _, r := range rows {
		matricula := r.Get("matricula_sga", "matricula")
		nome := r.Get("nome", "nome_responsavel", "responsavel")
		if matricula == "" || nome == "" {
			errs = append(errs, rowErr(r, "matrícula e nome do responsável são obrigatórios"))
			continue
		}

		celular := onlyPhoneDigits(r.Get("celular", "telefone", "contato"))
		if celular != "" && !validator.ValidCelular(celular) {
			errs = append(errs, rowErr(r, "celular inválido: %q", celular))
			continue
		}

		vinculo := model.TipoVinculo(strings.ToUpper(r.Get("tipo_vinculo", "vinculo")))
		switch vinculo {
		case model.VinculoPai, model.VinculoMae, model.VinculoTutor, model.VinculoOutro:
		case "":
			vinculo = model.VinculoOutro
		default:
			errs = append(errs, rowErr(r, "tipo de vínculo inválido: %q", vinculo))
			continue
		}

		pref := model.PreferenciaContato(strings.ToUpper(r.Get("preferencia_contato", "preferencia")))
		switch pref {
		case model.ContatoEmail, model.ContatoCelular, model.ContatoWhatsapp:
		case "":
			pref = model.ContatoEmail
		default:
			errs = append(errs, rowErr(r, "preferência de contato inválida: %q", pref))
			continue
		}

		out = append(out, ResponsavelRecord{
			Line:      r.Line,
			Matricula: matricula,
			Responsavel: model.Responsavel{
				Nome:               nome,
				Email:              strings.ToLower(r.Get("email")),
				Celular:            celular,
				Endereco:           r.Get("endereco"),
				TipoVinculo:        vinculo,
				PreferenciaContato: pref,
			},
		})
	}
	return out, errs
}

// onlyPhoneDigits keeps the digits of a phone number and a leading "+".
func onlyPhoneDigits(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	var b strings.Builder
	if strings.HasPrefix(s, "+") {
		b.WriteByte('+')
	}
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ─── Servidores ────────────────────────────────────────────────────────

// ServidorRecord is a staff row. A non-empty Senha also creates a login.
type ServidorRecord struct {
	Line     int
	Servidor model.Servidor
	Senha    string
}

func ParseServidores(rows []Row) ([]ServidorRecord, []RowError) {
	var out []ServidorRecord
	var errs []RowError
	for _, r := range rows {
		siape := r.Get("siape", "usuario")
		nome := r.Get("nome")
		email := strings.ToLower(r.Get("email"))
		if siape == "" || nome == "" || email == "" {
			errs = append(errs, rowErr(r, "siape, nome e email são obrigatórios"))
			continue
		}

		coord := model.Coordenacao(strings.ToUpper(r.Get("coordenacao")))
		if coord == "" {
			coord = model.CoordenacaoDocente
		}
		if !coord.Valid() {
			errs = append(errs, rowErr(r, "coordenação inválida: %q", coord))
			continue
		}

		out = append(out, ServidorRecord{
			Line: r.Line,
			Servidor: model.Servidor{
				Siape:                     siape,
				Nome:                      nome,
				Email:                     email,
				Funcao:                    r.Get("funcao"),
				Coordenacao:               coord,
				MembroComissaoDisciplinar: parseBool(r.Get("comissao_disciplinar", "membro_comissao_disciplinar")),
				PodeRegistrarAtendimento:  parseBool(r.Get("registrar_atendimento", "pode_registrar_atendimento")),
				PodeVisualizarFichaAluno:  parseBool(r.Get("ficha_aluno", "pode_visualizar_ficha_aluno")),
				Ativo:                     true,
			},
			Senha: r.Get("senha"),
		})
	}
	return out, errs
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "sim", "s", "x", "verdadeiro":
		return true
	}
	return false
}

// ─── Disciplinas ───────────────────────────────────────────────────────

// DisciplinaRecord is a subject row. Curso is resolved by its código on import.
type DisciplinaRecord struct {
	Line       int
	Disciplina model.Disciplina
	Curso      string
}

func ParseDisciplinas(rows []Row) ([]DisciplinaRecord, []RowError) {
	var out []DisciplinaRecord
	var errs []RowError
	for _, r := range rows {
		codigo := r.Get("codigo")
		nome := r.Get("nome", "disciplina")
		if codigo == "" || nome == "" {
			errs = append(errs, rowErr(r, "código e nome são obrigatórios"))
			continue
		}

		carga := 0
		if s := r.Get("carga_horaria"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				errs = append(errs, rowErr(r, "carga horária inválida: %q", s))
				continue
			}
			carga = n
		}

		out = append(out, DisciplinaRecord{
			Line: r.Line,
			Disciplina: model.Disciplina{
				Codigo:       codigo,
				Nome:         nome,
				CargaHoraria: carga,
				Ementa:       r.Get("ementa"),
				Ativa:        true,
			},
			Curso: r.Get("curso", "codigo_curso"),
		})
	}
	return out, errs
}

// ─── Ocorrências rápidas ───────────────────────────────────────────────

// RapidaRecord is one quick occurrence row for a single student.
type RapidaRecord struct {
	Line      int
	Data      model.Date
	Horario   string
	Tipo      string
	Matricula string
	Nome      string
	Turma     string
}

// tipoAliases maps spreadsheet labels to quick occurrence codes.
var tipoAliases = map[string]string{
	"atraso_apos_07h45m":                   "ATRASO",
	"atraso_no_retorno_do_intervalo":       "ATRASO",
	"atraso":                               "ATRASO",
	"sem_uniforme":                         "UNIFORME",
	"uniforme":                             "UNIFORME",
	"retirou_uniforme_apos_entrada":        "UNIFORME_RETIRADA",
	"uso_de_celular":                       "CELULAR",
	"celular":                              "CELULAR",
	"fora_de_sala_de_aula_sem_autorizacao": "AUSENCIA",
}

// TipoCodigo maps a spreadsheet label to a quick occurrence code. Unknown
// labels are returned upper-cased so they can match a code directly.
func TipoCodigo(label string) string {
	key := NormalizeHeader(label)
	if c, ok := tipoAliases[key]; ok {
		return c
	}
	return strings.ToUpper(key)
}

func ParseRapidas(rows []Row) ([]RapidaRecord, []RowError) {
	var out []RapidaRecord
	var errs []RowError
	for _, r := range rows {
		dataStr := r.Get("data")
		tipo := r.Get("tipo", "tipo_ocorrencia", "tipo_de_ocorrencia")
		matricula := r.Get("matricula_sga", "matricula")
		nome := r.Get("estudante", "nome", "nome_estudante")

		switch {
		case dataStr == "":
			errs = append(errs, rowErr(r, "data vazia"))
			continue
		case tipo == "":
			errs = append(errs, rowErr(r, "tipo de ocorrência vazio"))
			continue
		case matricula == "" && nome == "":
			errs = append(errs, rowErr(r, "informe a matrícula ou o nome do estudante"))
			continue
		}

		data, err := model.ParseBRDate(dataStr)
		if err != nil {
			errs = append(errs, rowErr(r, "data inválida: %q", dataStr))
			continue
		}

		horario := "00:00"
		if h := r.Get("horario", "hora"); h != "" {
			horario, err = model.ParseHorario(h)
			if err != nil {
				errs = append(errs, rowErr(r, "horário inválido: %q", h))
				continue
			}
		}

		out = append(out, RapidaRecord{
			Line:      r.Line,
			Data:      data,
			Horario:   horario,
			Tipo:      TipoCodigo(tipo),
			Matricula: matricula,
			Nome:      nome,
			Turma:     r.Get("turma"),
		})
	}
	return out, errs
}
