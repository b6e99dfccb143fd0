package model

import "time"

// DefaultCor is the badge color used when a catalog entry has none.
const DefaultCor = "#6b7280"

// TipoAtendimento is a kind of attendance record.
type TipoAtendimento struct {
	ID    int    `json:"id"`
	Nome  string `json:"nome"`
	Cor   string `json:"cor"`
	Ativo bool   `json:"ativo"`
}

// SituacaoAtendimento is the state of an attendance record.
type SituacaoAtendimento struct {
	ID    int    `json:"id"`
	Nome  string `json:"nome"`
	Cor   string `json:"cor"`
	Ativo bool   `json:"ativo"`
}

// OrigemAtendimento tells who started an attendance.
type OrigemAtendimento string

const (
	OrigemEspontaneo             OrigemAtendimento = "ESPONTANEO"
	OrigemEncaminhamento         OrigemAtendimento = "ENCAMINHAMENTO"
	OrigemSolicitacaoDocente     OrigemAtendimento = "SOLICITACAO_DOCENTE"
	OrigemSolicitacaoCoordenacao OrigemAtendimento = "SOLICITACAO_COORDENACAO"
	OrigemOutro                  OrigemAtendimento = "OUTRO"
)

// Atendimento is a meeting between a sector and one or more students.
type Atendimento struct {
	ID                    int               `json:"id"`
	Coordenacao           Coordenacao       `json:"coordenacao"`
	EstudanteIDs          []int             `json:"estudante_ids"`
	ServidorResponsavelID int               `json:"servidor_responsavel_id"`
	ServidorNome          string            `json:"servidor_responsavel_nome,omitempty"`
	Participantes         string            `json:"participantes"`
	Data                  Date              `json:"data"`
	Hora                  string            `json:"hora"`
	TipoID                *int              `json:"tipo_id"`
	TipoNome              string            `json:"tipo_nome,omitempty"`
	SituacaoID            *int              `json:"situacao_id"`
	SituacaoNome          string            `json:"situacao_nome,omitempty"`
	Origem                OrigemAtendimento `json:"origem"`
	Informacoes           string            `json:"informacoes"`
	Observacoes           string            `json:"observacoes"`
	Anexos                string            `json:"anexos"`
	PublicarFichaAluno    bool              `json:"publicar_ficha_aluno"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

// AtendimentoFilter narrows attendance listings.
type AtendimentoFilter struct {
	Coordenacao Coordenacao
	EstudanteID *int
	TipoID      *int
	SituacaoID  *int
	Inicio      *Date
	Fim         *Date
	Publicados  bool
}

type CatalogoRequest struct {
	Nome  string `json:"nome" binding:"required,min=2,max=100"`
	Cor   string `json:"cor" binding:"omitempty,hexcolor"`
	Ativo *bool  `json:"ativo"`
}

type AtendimentoRequest struct {
	Coordenacao        Coordenacao       `json:"coordenacao" binding:"required,oneof=CDPD CC CDRA NAPNE CDAE CDAE_PEDAGOGICO CDAE_ASSISTENCIA CDAE_PSICOLOGA CDBA CGEN DOCENTE DREP DG"`
	EstudanteIDs       []int             `json:"estudante_ids" binding:"required,min=1"`
	Participantes      string            `json:"participantes"`
	Data               string            `json:"data" binding:"required,isodate"`
	Hora               string            `json:"hora" binding:"required,hhmm"`
	TipoID             *int              `json:"tipo_id"`
	SituacaoID         *int              `json:"situacao_id"`
	Origem             OrigemAtendimento `json:"origem" binding:"required,oneof=ESPONTANEO ENCAMINHAMENTO SOLICITACAO_DOCENTE SOLICITACAO_COORDENACAO OUTRO"`
	Informacoes        string            `json:"informacoes" binding:"required"`
	Observacoes        string            `json:"observacoes"`
	Anexos             string            `json:"anexos" binding:"max=500"`
	PublicarFichaAluno bool              `json:"publicar_ficha_aluno"`
}
