package model

import (
	"net/url"
	"regexp"
	"strings"
	"time"
)

// SituacaoEstudante is the enrolment state of a student.
type SituacaoEstudante string

const (
	SituacaoAtivo       SituacaoEstudante = "ATIVO"
	SituacaoInativo     SituacaoEstudante = "INATIVO"
	SituacaoTrancado    SituacaoEstudante = "TRANCADO"
	SituacaoEvadido     SituacaoEstudante = "EVADIDO"
	SituacaoFormado     SituacaoEstudante = "FORMADO"
	SituacaoTransferido SituacaoEstudante = "TRANSFERIDO"
)

// Estudante is an enrolled student.
type Estudante struct {
	ID             int               `json:"id"`
	MatriculaSGA   string            `json:"matricula_sga"`
	Nome           string            `json:"nome"`
	CPF            string            `json:"cpf"`
	DataNascimento *Date             `json:"data_nascimento"`
	Email          string            `json:"email"`
	Logradouro     string            `json:"logradouro"`
	Bairro         string            `json:"bairro"`
	Cidade         string            `json:"cidade"`
	UF             string            `json:"uf"`
	CEP            string            `json:"cep"`
	TurmaID        *int              `json:"turma_id"`
	TurmaNome      string            `json:"turma_nome,omitempty"`
	CampusID       *int              `json:"campus_id"`
	CursoID        *int              `json:"curso_id"`
	Situacao       SituacaoEstudante `json:"situacao"`
	DataIngresso   *Date             `json:"data_ingresso"`
	Foto           string            `json:"foto"`
	FotoURL        string            `json:"foto_url"`
	ResponsavelIDs []int             `json:"responsavel_ids"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

var driveIDRegex = regexp.MustCompile(`id=([^&]+)`)

// DriveFileID extracts the Google Drive file id from a share link.
func DriveFileID(link string) string {
	m := driveIDRegex.FindStringSubmatch(link)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// FotoProxyURL returns the URL the frontend should load the photo from.
// Drive links go through the photo proxy; otherwise the uploaded file is used.
func (e *Estudante) FotoProxyURL() string {
	if id := DriveFileID(e.FotoURL); id != "" {
		return "/api/v1/fotos/drive?id=" + url.QueryEscape(id)
	}
	if e.Foto != "" {
		return "/uploads/" + strings.TrimPrefix(e.Foto, "/")
	}
	return ""
}

// Iniciais returns the initials of the first and last names.
func (e *Estudante) Iniciais() string {
	return Iniciais(e.Nome)
}

// Iniciais returns the upper-cased initials of the first and last words of nome.
func Iniciais(nome string) string {
	parts := strings.Fields(nome)
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return strings.ToUpper(firstRune(parts[0]))
	}
	return strings.ToUpper(firstRune(parts[0]) + firstRune(parts[len(parts)-1]))
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}

// EstudanteView is the JSON shape returned by the API, with derived fields.
type EstudanteView struct {
	*Estudante
	FotoProxy string `json:"foto_proxy_url"`
	Iniciais  string `json:"iniciais"`
}

// NewEstudanteView wraps e with its derived fields.
func NewEstudanteView(e *Estudante) EstudanteView {
	return EstudanteView{Estudante: e, FotoProxy: e.FotoProxyURL(), Iniciais: e.Iniciais()}
}

// NivelAlerta is the attention level shown on the class dashboard.
type NivelAlerta string

const (
	NivelAlto  NivelAlerta = "alto"
	NivelMedio NivelAlerta = "medio"
	NivelBaixo NivelAlerta = "baixo"
)

// CalcularNivelAlerta returns alto when any serious occurrence exists,
// medio for more than three occurrences and baixo otherwise.
func CalcularNivelAlerta(totalOcorrencias, graves int) NivelAlerta {
	switch {
	case graves > 0:
		return NivelAlto
	case totalOcorrencias > 3:
		return NivelMedio
	default:
		return NivelBaixo
	}
}

// EstudanteFilter narrows student listings.
type EstudanteFilter struct {
	TurmaID  *int
	CursoID  *int
	Situacao SituacaoEstudante
	Busca    string
}

// ResumoEstudanteTurma is one row of the class dashboard.
type ResumoEstudanteTurma struct {
	EstudanteID       int         `json:"estudante_id"`
	Nome              string      `json:"nome"`
	MatriculaSGA      string      `json:"matricula_sga"`
	Iniciais          string      `json:"iniciais"`
	FotoProxyURL      string      `json:"foto_proxy_url"`
	TotalOcorrencias  int         `json:"total_ocorrencias"`
	OcorrenciasGraves int         `json:"ocorrencias_graves"`
	TotalRapidas      int         `json:"total_rapidas"`
	TotalAtendimentos int         `json:"total_atendimentos"`
	NivelAlerta       NivelAlerta `json:"nivel_alerta"`
}

// RelatorioEstudante aggregates everything recorded about a student.
type RelatorioEstudante struct {
	Estudante    EstudanteView      `json:"estudante"`
	Ocorrencias  []Ocorrencia       `json:"ocorrencias"`
	Rapidas      []OcorrenciaRapida `json:"ocorrencias_rapidas"`
	Atendimentos []Atendimento      `json:"atendimentos"`
}

// EstudanteRequest is the payload for creating or updating a student.
type EstudanteRequest struct {
	MatriculaSGA   string            `json:"matricula_sga" binding:"required,min=3,max=30"`
	Nome           string            `json:"nome" binding:"required,min=2,max=200"`
	CPF            string            `json:"cpf" binding:"omitempty,max=14"`
	DataNascimento *Date             `json:"data_nascimento"`
	Email          string            `json:"email" binding:"omitempty,email,max=255"`
	Logradouro     string            `json:"logradouro" binding:"max=255"`
	Bairro         string            `json:"bairro" binding:"max=100"`
	Cidade         string            `json:"cidade" binding:"max=100"`
	UF             string            `json:"uf" binding:"omitempty,len=2"`
	CEP            string            `json:"cep" binding:"omitempty,max=9"`
	TurmaID        *int              `json:"turma_id"`
	CampusID       *int              `json:"campus_id"`
	CursoID        *int              `json:"curso_id"`
	Situacao       SituacaoEstudante `json:"situacao" binding:"omitempty,oneof=ATIVO INATIVO TRANCADO EVADIDO FORMADO TRANSFERIDO"`
	DataIngresso   *Date             `json:"data_ingresso"`
	FotoURL        string            `json:"foto_url" binding:"omitempty,url,max=500"`
}

// VincularResponsavelRequest links a guardian to a student.
type VincularResponsavelRequest struct {
	ResponsavelID int `json:"responsavel_id" binding:"required"`
}
