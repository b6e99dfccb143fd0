package model

import "time"

// FichaNAPNE is the special-needs support record of a student.
type FichaNAPNE struct {
	ID                         int       `json:"id"`
	EstudanteID                int       `json:"estudante_id"`
	EstudanteNome              string    `json:"estudante_nome,omitempty"`
	TurmaID                    *int      `json:"turma_id"`
	NecessidadeEspecifica      string    `json:"necessidade_especifica"`
	Telefone                   string    `json:"telefone"`
	AtendidoPorID              *int      `json:"atendido_por_id"`
	LaudoApresentado           bool      `json:"laudo_apresentado"`
	EmailsEnviados             string    `json:"emails_enviados"`
	ObservacoesLaudosHistorico string    `json:"observacoes_laudos_historico"`
	ObservacaoLaudoAtual       string    `json:"observacao_laudo_atual"`
	DesempenhoBimestre1        string    `json:"desempenho_bimestre_1"`
	DesempenhoBimestre2        string    `json:"desempenho_bimestre_2"`
	DesempenhoBimestre3        string    `json:"desempenho_bimestre_3"`
	DesempenhoBimestre4        string    `json:"desempenho_bimestre_4"`
	ResultadoFinal             string    `json:"resultado_final"`
	CreatedAt                  time.Time `json:"created_at"`
	UpdatedAt                  time.Time `json:"updated_at"`
}

// AdicionarObservacaoLaudo archives the current report note, stamped with
// when, and makes nova the current one.
func (f *FichaNAPNE) AdicionarObservacaoLaudo(nova string, when time.Time) {
	if f.ObservacaoLaudoAtual != "" {
		f.ObservacoesLaudosHistorico += "\n[" + when.Format("02/01/2006 15:04") + "] " + f.ObservacaoLaudoAtual
	}
	f.ObservacaoLaudoAtual = nova
}

// CatalogoNAPNE is a named NAPNE catalog entry. Sigla is used by referral
// sectors and Cor by attendance states.
type CatalogoNAPNE struct {
	ID    int    `json:"id"`
	Nome  string `json:"nome"`
	Sigla string `json:"sigla,omitempty"`
	Cor   string `json:"cor,omitempty"`
	Ativo bool   `json:"ativo"`
}

// CatalogoNAPNEKind selects one of the NAPNE catalog tables.
type CatalogoNAPNEKind string

const (
	CatalogoTipoAtendimento CatalogoNAPNEKind = "tipos-atendimento"
	CatalogoNecessidade     CatalogoNAPNEKind = "necessidades"
	CatalogoSetor           CatalogoNAPNEKind = "setores"
	CatalogoStatus          CatalogoNAPNEKind = "status"
)

// Table returns the table backing the catalog.
func (k CatalogoNAPNEKind) Table() (string, bool) {
	switch k {
	case CatalogoTipoAtendimento:
		return "napne_tipos_atendimento", true
	case CatalogoNecessidade:
		return "napne_necessidades", true
	case CatalogoSetor:
		return "napne_setores", true
	case CatalogoStatus:
		return "napne_status", true
	}
	return "", false
}

// AtendimentoNAPNE is one NAPNE attendance.
type AtendimentoNAPNE struct {
	ID                 int                        `json:"id"`
	EstudanteID        int                        `json:"estudante_id"`
	EstudanteNome      string                     `json:"estudante_nome,omitempty"`
	TurmaID            *int                       `json:"turma_id"`
	Origem             string                     `json:"origem"`
	Data               Date                       `json:"data"`
	AtendidoPorID      *int                       `json:"atendido_por_id"`
	TipoID             *int                       `json:"tipo_id"`
	LaudoPrevio        bool                       `json:"laudo_previo"`
	NecessidadeIDs     []int                      `json:"necessidade_ids"`
	Detalhamento       string                     `json:"detalhamento"`
	Acoes              string                     `json:"acoes"`
	Resumo             string                     `json:"resumo"`
	PublicarFichaAluno bool                       `json:"publicar_ficha_aluno"`
	StatusID           *int                       `json:"status_id"`
	Encaminhamentos    []ObservacaoEncaminhamento `json:"encaminhamentos"`
	CreatedAt          time.Time                  `json:"created_at"`
}

// ObservacaoEncaminhamento records a referral of a NAPNE attendance to a sector.
type ObservacaoEncaminhamento struct {
	ID            int       `json:"id"`
	AtendimentoID int       `json:"atendimento_id"`
	SetorID       int       `json:"setor_id"`
	SetorNome     string    `json:"setor_nome,omitempty"`
	Observacao    string    `json:"observacao"`
	CreatedAt     time.Time `json:"created_at"`
}

type FichaNAPNERequest struct {
	EstudanteID           int    `json:"estudante_id" binding:"required"`
	TurmaID               *int   `json:"turma_id"`
	NecessidadeEspecifica string `json:"necessidade_especifica"`
	Telefone              string `json:"telefone" binding:"max=20"`
	AtendidoPorID         *int   `json:"atendido_por_id"`
	LaudoApresentado      bool   `json:"laudo_apresentado"`
	EmailsEnviados        string `json:"emails_enviados"`
	DesempenhoBimestre1   string `json:"desempenho_bimestre_1"`
	DesempenhoBimestre2   string `json:"desempenho_bimestre_2"`
	DesempenhoBimestre3   string `json:"desempenho_bimestre_3"`
	DesempenhoBimestre4   string `json:"desempenho_bimestre_4"`
	ResultadoFinal        string `json:"resultado_final"`
}

type ObservacaoLaudoRequest struct {
	Observacao string `json:"observacao" binding:"required,min=2"`
}

type CatalogoNAPNERequest struct {
	Nome  string `json:"nome" binding:"required,min=2,max=100"`
	Sigla string `json:"sigla" binding:"max=20"`
	Cor   string `json:"cor" binding:"omitempty,hexcolor"`
	Ativo *bool  `json:"ativo"`
}

type AtendimentoNAPNERequest struct {
	EstudanteID        int    `json:"estudante_id" binding:"required"`
	TurmaID            *int   `json:"turma_id"`
	Origem             string `json:"origem" binding:"max=100"`
	Data               string `json:"data" binding:"required,isodate"`
	AtendidoPorID      *int   `json:"atendido_por_id"`
	TipoID             *int   `json:"tipo_id"`
	LaudoPrevio        bool   `json:"laudo_previo"`
	NecessidadeIDs     []int  `json:"necessidade_ids"`
	Detalhamento       string `json:"detalhamento"`
	Acoes              string `json:"acoes"`
	Resumo             string `json:"resumo"`
	PublicarFichaAluno bool   `json:"publicar_ficha_aluno"`
	StatusID           *int   `json:"status_id"`
}

type EncaminhamentoRequest struct {
	SetorID    int    `json:"setor_id" binding:"required"`
	Observacao string `json:"observacao" binding:"required"`
}
