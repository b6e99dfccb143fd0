package model

import "time"

// Ocorrencia is a disciplinary occurrence and the process that follows it.
type Ocorrencia struct {
	ID                    int              `json:"id"`
	Data                  Date             `json:"data"`
	Horario               string           `json:"horario"`
	CursoID               *int             `json:"curso_id"`
	TurmaID               *int             `json:"turma_id"`
	TurmaNome             string           `json:"turma_nome,omitempty"`
	EstudanteIDs          []int            `json:"estudante_ids"`
	Testemunhas           string           `json:"testemunhas"`
	Descricao             string           `json:"descricao"`
	InfracaoID            *int             `json:"infracao_id"`
	Gravidade             Gravidade        `json:"gravidade,omitempty"`
	Evidencias            string           `json:"evidencias"`
	Status                OcorrenciaStatus `json:"status"`
	PrazoDefesa           *Date            `json:"prazo_defesa"`
	DataDefesa            *Date            `json:"data_defesa"`
	DefesaTexto           string           `json:"defesa_texto"`
	MedidaPreventiva      string           `json:"medida_preventiva"`
	SancaoID              *int             `json:"sancao_id"`
	SancaoDetalhes        string           `json:"sancao_detalhes"`
	ResponsavelRegistroID int              `json:"responsavel_registro_id"`
	ResponsavelNome       string           `json:"responsavel_registro_nome,omitempty"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// OcorrenciaDetalhe is the detail view with the related process records.
type OcorrenciaDetalhe struct {
	*Ocorrencia
	StatusLabel      string                `json:"status_label"`
	AcoesDisponiveis []FlowAction          `json:"acoes_disponiveis"`
	Estudantes       []Estudante           `json:"estudantes"`
	Comissao         *Comissao             `json:"comissao"`
	Notificacoes     []NotificacaoOficial  `json:"notificacoes_oficiais"`
	Recursos         []Recurso             `json:"recursos"`
	Documentos       []DocumentoGerado     `json:"documentos"`
	Historico        []OcorrenciaHistorico `json:"historico"`
}

// Comissao is the disciplinary committee of a single occurrence.
type Comissao struct {
	ID              int       `json:"id"`
	OcorrenciaID    int       `json:"ocorrencia_id"`
	MembroIDs       []int     `json:"membro_ids"`
	PresidenteID    *int      `json:"presidente_id"`
	DataInstauracao Date      `json:"data_instauracao"`
	DataConclusao   *Date     `json:"data_conclusao"`
	ParecerFinal    string    `json:"parecer_final"`
	CreatedAt       time.Time `json:"created_at"`
}

// TipoNotificacaoOficial classifies an official notice.
type TipoNotificacaoOficial string

const (
	NotificacaoTipoNotificacao TipoNotificacaoOficial = "NOTIFICACAO"
	NotificacaoTipoIntimacao   TipoNotificacaoOficial = "INTIMACAO"
	NotificacaoTipoComunicado  TipoNotificacaoOficial = "COMUNICADO"
)

// MeioEnvio is how an official notice was delivered.
type MeioEnvio string

const (
	MeioEmail      MeioEnvio = "EMAIL"
	MeioCorreio    MeioEnvio = "CORREIO"
	MeioPresencial MeioEnvio = "PRESENCIAL"
	MeioWhatsapp   MeioEnvio = "WHATSAPP"
)

// NotificacaoOficial is a formal notice sent about an occurrence.
// Destinatarios holds comma-separated email addresses.
type NotificacaoOficial struct {
	ID              int                    `json:"id"`
	OcorrenciaID    int                    `json:"ocorrencia_id"`
	Destinatarios   string                 `json:"destinatarios"`
	Tipo            TipoNotificacaoOficial `json:"tipo"`
	MeioEnvio       MeioEnvio              `json:"meio_envio"`
	Texto           string                 `json:"texto"`
	DataEnvio       time.Time              `json:"data_envio"`
	DataRecebimento *time.Time             `json:"data_recebimento"`
}

// ResultadoRecurso is the outcome of an appeal.
type ResultadoRecurso string

const (
	RecursoDeferido             ResultadoRecurso = "DEFERIDO"
	RecursoParcialmenteDeferido ResultadoRecurso = "PARCIALMENTE_DEFERIDO"
	RecursoIndeferido           ResultadoRecurso = "INDEFERIDO"
	RecursoPendente             ResultadoRecurso = "PENDENTE"
)

// Recurso is an appeal against an applied sanction.
type Recurso struct {
	ID           int              `json:"id"`
	OcorrenciaID int              `json:"ocorrencia_id"`
	Argumentacao string           `json:"argumentacao"`
	Parecer      string           `json:"parecer"`
	DataDecisao  *Date            `json:"data_decisao"`
	Resultado    ResultadoRecurso `json:"resultado"`
	CreatedAt    time.Time        `json:"created_at"`
}

// TipoDocumento is the kind of generated document.
type TipoDocumento string

const (
	DocumentoRegistro         TipoDocumento = "REGISTRO"
	DocumentoAtaAdvertencia   TipoDocumento = "ATA_ADVERTENCIA"
	DocumentoTermoCompromisso TipoDocumento = "TERMO_COMPROMISSO"
	DocumentoNotificacao      TipoDocumento = "NOTIFICACAO"
	DocumentoParecer          TipoDocumento = "PARECER"
	DocumentoReciboTermico    TipoDocumento = "RECIBO_TERMICO"
)

// DocumentoGerado is a PDF generated for exactly one occurrence or quick occurrence.
type DocumentoGerado struct {
	ID                 int           `json:"id"`
	OcorrenciaID       *int          `json:"ocorrencia_id"`
	OcorrenciaRapidaID *int          `json:"ocorrencia_rapida_id"`
	Tipo               TipoDocumento `json:"tipo"`
	Arquivo            string        `json:"arquivo"`
	AssinadoPorID      *int          `json:"assinado_por_id"`
	CreatedAt          time.Time     `json:"created_at"`
}

// OcorrenciaHistorico records one applied transition.
type OcorrenciaHistorico struct {
	ID             int              `json:"id"`
	OcorrenciaID   int              `json:"ocorrencia_id"`
	StatusAnterior OcorrenciaStatus `json:"status_anterior"`
	StatusNovo     OcorrenciaStatus `json:"status_novo"`
	Acao           FlowAction       `json:"acao"`
	ServidorID     *int             `json:"servidor_id"`
	ServidorNome   string           `json:"servidor_nome,omitempty"`
	Observacao     string           `json:"observacao"`
	CreatedAt      time.Time        `json:"created_at"`
}

// OcorrenciaFilter narrows occurrence listings.
type OcorrenciaFilter struct {
	Status      OcorrenciaStatus
	EstudanteID *int
	TurmaID     *int
	Inicio      *Date
	Fim         *Date
}

// ─── Requests ──────────────────────────────────────────────────────────

type OcorrenciaRequest struct {
	Data             string `json:"data" binding:"required,isodate"`
	Horario          string `json:"horario" binding:"required,hhmm"`
	CursoID          *int   `json:"curso_id"`
	TurmaID          *int   `json:"turma_id"`
	EstudanteIDs     []int  `json:"estudante_ids" binding:"required,min=1"`
	Testemunhas      string `json:"testemunhas"`
	Descricao        string `json:"descricao" binding:"required,min=5"`
	InfracaoID       *int   `json:"infracao_id"`
	Evidencias       string `json:"evidencias" binding:"max=500"`
	MedidaPreventiva string `json:"medida_preventiva"`
}

type FlowActionRequest struct {
	Observacao string `json:"observacao" binding:"max=2000"`
}

type NotificarRequest struct {
	Destinatarios []string               `json:"destinatarios" binding:"required,min=1,dive,email"`
	Tipo          TipoNotificacaoOficial `json:"tipo" binding:"required,oneof=NOTIFICACAO INTIMACAO COMUNICADO"`
	MeioEnvio     MeioEnvio              `json:"meio_envio" binding:"required,oneof=EMAIL CORREIO PRESENCIAL WHATSAPP"`
	Texto         string                 `json:"texto" binding:"required,min=5"`
}

type DefesaRequest struct {
	DefesaTexto string `json:"defesa_texto" binding:"required,min=5"`
}

type SancaoAplicarRequest struct {
	SancaoID       int    `json:"sancao_id" binding:"required"`
	SancaoDetalhes string `json:"sancao_detalhes"`
}

type ComissaoRequest struct {
	MembroIDs       []int  `json:"membro_ids" binding:"required,min=1"`
	PresidenteID    *int   `json:"presidente_id"`
	DataInstauracao string `json:"data_instauracao" binding:"omitempty,isodate"`
}

type RecursoRequest struct {
	Argumentacao string `json:"argumentacao" binding:"required,min=5"`
}

type DecidirRecursoRequest struct {
	Parecer   string           `json:"parecer" binding:"required"`
	Resultado ResultadoRecurso `json:"resultado" binding:"required,oneof=DEFERIDO PARCIALMENTE_DEFERIDO INDEFERIDO"`
}

type DocumentoRequest struct {
	Tipo TipoDocumento `json:"tipo" binding:"required,oneof=REGISTRO ATA_ADVERTENCIA TERMO_COMPROMISSO NOTIFICACAO PARECER"`
}
