package model

import "time"

// Campus is a unit of the institute.
type Campus struct {
	ID        int       `json:"id"`
	Nome      string    `json:"nome"`
	Sigla     string    `json:"sigla"`
	Ativo     bool      `json:"ativo"`
	CreatedAt time.Time `json:"created_at"`
}

// Curso is a course offered by a campus.
type Curso struct {
	ID         int       `json:"id"`
	Nome       string    `json:"nome"`
	CampusID   int       `json:"campus_id"`
	CampusNome string    `json:"campus_nome,omitempty"`
	Codigo     string    `json:"codigo"`
	Ativo      bool      `json:"ativo"`
	CreatedAt  time.Time `json:"created_at"`
}

// Turma is a class group of a course in a given year and semester.
// Semestre 0 means an annual class.
type Turma struct {
	ID        int       `json:"id"`
	Nome      string    `json:"nome"`
	CursoID   int       `json:"curso_id"`
	CursoNome string    `json:"curso_nome,omitempty"`
	Ano       int       `json:"ano"`
	Periodo   int       `json:"periodo"`
	Semestre  int       `json:"semestre"`
	Sala      string    `json:"sala"`
	Ativa     bool      `json:"ativa"`
	CreatedAt time.Time `json:"created_at"`
}

// TipoVinculo is the relationship of a guardian to the student.
type TipoVinculo string

const (
	VinculoPai   TipoVinculo = "PAI"
	VinculoMae   TipoVinculo = "MAE"
	VinculoTutor TipoVinculo = "TUTOR"
	VinculoOutro TipoVinculo = "OUTRO"
)

// PreferenciaContato is the channel a guardian wants to be reached on.
type PreferenciaContato string

const (
	ContatoEmail    PreferenciaContato = "EMAIL"
	ContatoCelular  PreferenciaContato = "CELULAR"
	ContatoWhatsapp PreferenciaContato = "WHATSAPP"
)

// WantsEmail reports whether the preference includes email delivery.
func (p PreferenciaContato) WantsEmail() bool {
	return p == ContatoEmail || p == ContatoWhatsapp
}

// WantsSMS reports whether the preference includes text messages.
func (p PreferenciaContato) WantsSMS() bool {
	return p == ContatoCelular || p == ContatoWhatsapp
}

// Responsavel is a student's guardian.
type Responsavel struct {
	ID                 int                `json:"id"`
	Nome               string             `json:"nome"`
	Email              string             `json:"email"`
	Celular            string             `json:"celular"`
	Endereco           string             `json:"endereco"`
	TipoVinculo        TipoVinculo        `json:"tipo_vinculo"`
	PreferenciaContato PreferenciaContato `json:"preferencia_contato"`
	CreatedAt          time.Time          `json:"created_at"`
}

// Coordenacao identifies the sector a staff member works in.
type Coordenacao string

const (
	CoordenacaoCDPD            Coordenacao = "CDPD"
	CoordenacaoCC              Coordenacao = "CC"
	CoordenacaoCDRA            Coordenacao = "CDRA"
	CoordenacaoNAPNE           Coordenacao = "NAPNE"
	CoordenacaoCDAE            Coordenacao = "CDAE"
	CoordenacaoCDAEPedagogico  Coordenacao = "CDAE_PEDAGOGICO"
	CoordenacaoCDAEAssistencia Coordenacao = "CDAE_ASSISTENCIA"
	CoordenacaoCDAEPsicologa   Coordenacao = "CDAE_PSICOLOGA"
	CoordenacaoCDBA            Coordenacao = "CDBA"
	CoordenacaoCGEN            Coordenacao = "CGEN"
	CoordenacaoDocente         Coordenacao = "DOCENTE"
	CoordenacaoDREP            Coordenacao = "DREP"
	CoordenacaoDG              Coordenacao = "DG"
)

// AllCoordenacoes lists every sector code.
var AllCoordenacoes = []Coordenacao{
	CoordenacaoCDPD, CoordenacaoCC, CoordenacaoCDRA, CoordenacaoNAPNE, CoordenacaoCDAE,
	CoordenacaoCDAEPedagogico, CoordenacaoCDAEAssistencia, CoordenacaoCDAEPsicologa,
	CoordenacaoCDBA, CoordenacaoCGEN, CoordenacaoDocente, CoordenacaoDREP, CoordenacaoDG,
}

// Valid reports whether c is a known sector.
func (c Coordenacao) Valid() bool {
	for _, k := range AllCoordenacoes {
		if k == c {
			return true
		}
	}
	return false
}

// Servidor is a staff member.
type Servidor struct {
	ID                        int         `json:"id"`
	UsuarioID                 *int        `json:"usuario_id"`
	Siape                     string      `json:"siape"`
	Nome                      string      `json:"nome"`
	Funcao                    string      `json:"funcao"`
	Email                     string      `json:"email"`
	CampusID                  *int        `json:"campus_id"`
	Coordenacao               Coordenacao `json:"coordenacao"`
	MembroComissaoDisciplinar bool        `json:"membro_comissao_disciplinar"`
	PodeRegistrarAtendimento  bool        `json:"pode_registrar_atendimento"`
	PodeVisualizarFichaAluno  bool        `json:"pode_visualizar_ficha_aluno"`
	Ativo                     bool        `json:"ativo"`
	CreatedAt                 time.Time   `json:"created_at"`
}

// Gravidade classifies how serious an infraction is.
type Gravidade string

const (
	GravidadeLeve       Gravidade = "LEVE"
	GravidadeMedia      Gravidade = "MEDIA"
	GravidadeGrave      Gravidade = "GRAVE"
	GravidadeGravissima Gravidade = "GRAVISSIMA"
)

// Serious reports whether the infraction is GRAVE or GRAVISSIMA.
func (g Gravidade) Serious() bool {
	return g == GravidadeGrave || g == GravidadeGravissima
}

// Infracao is an entry of the disciplinary code.
type Infracao struct {
	ID               int       `json:"id"`
	Codigo           string    `json:"codigo"`
	Descricao        string    `json:"descricao"`
	Gravidade        Gravidade `json:"gravidade"`
	ReferenciaArtigo string    `json:"referencia_artigo"`
	Ativo            bool      `json:"ativo"`
	CreatedAt        time.Time `json:"created_at"`
}

// TipoSancao names a disciplinary sanction.
type TipoSancao string

const (
	SancaoAdvertenciaVerbal  TipoSancao = "ADVERTENCIA_VERBAL"
	SancaoAdvertenciaEscrita TipoSancao = "ADVERTENCIA_ESCRITA"
	SancaoSuspensao          TipoSancao = "SUSPENSAO"
	SancaoTransferencia      TipoSancao = "TRANSFERENCIA"
	SancaoDesligamento       TipoSancao = "DESLIGAMENTO"
)

// Sancao is a sanction and the infractions it applies to.
type Sancao struct {
	ID          int        `json:"id"`
	Tipo        TipoSancao `json:"tipo"`
	Descricao   string     `json:"descricao"`
	InfracaoIDs []int      `json:"infracao_ids"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TipoOcorrenciaRapida is a kind of quick occurrence such as lateness.
type TipoOcorrenciaRapida struct {
	ID        int       `json:"id"`
	Codigo    string    `json:"codigo"`
	Descricao string    `json:"descricao"`
	Ativo     bool      `json:"ativo"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultTiposRapidos are the quick occurrence kinds seeded on a new install.
var DefaultTiposRapidos = []TipoOcorrenciaRapida{
	{Codigo: "ATRASO", Descricao: "Atraso"},
	{Codigo: "CELULAR", Descricao: "Uso de celular em sala"},
	{Codigo: "UNIFORME", Descricao: "Sem uniforme"},
	{Codigo: "UNIFORME_RETIRADA", Descricao: "Retirada do uniforme"},
	{Codigo: "RECUSA", Descricao: "Recusa em realizar atividade"},
	{Codigo: "AUSENCIA", Descricao: "Ausência em sala"},
	{Codigo: "SAIDA", Descricao: "Saída sem autorização"},
	{Codigo: "BIBLIO", Descricao: "Conduta inadequada na biblioteca"},
}

// ServidorFilter narrows servidor listings.
type ServidorFilter struct {
	Coordenacao Coordenacao
	Comissao    *bool
	Busca       string
	SoAtivos    bool
}

// ─── Requests ──────────────────────────────────────────────────────────

type CampusRequest struct {
	Nome  string `json:"nome" binding:"required,min=2,max=200"`
	Sigla string `json:"sigla" binding:"required,min=1,max=20"`
	Ativo *bool  `json:"ativo"`
}

type CursoRequest struct {
	Nome     string `json:"nome" binding:"required,min=2,max=200"`
	CampusID int    `json:"campus_id" binding:"required"`
	Codigo   string `json:"codigo" binding:"required,min=1,max=20"`
	Ativo    *bool  `json:"ativo"`
}

type TurmaRequest struct {
	Nome     string `json:"nome" binding:"required,min=1,max=50"`
	CursoID  int    `json:"curso_id" binding:"required"`
	Ano      int    `json:"ano" binding:"required,min=2000,max=2100"`
	Periodo  int    `json:"periodo" binding:"min=0,max=12"`
	Semestre int    `json:"semestre" binding:"min=0,max=2"`
	Sala     string `json:"sala" binding:"max=50"`
	Ativa    *bool  `json:"ativa"`
}

type ResponsavelRequest struct {
	Nome               string             `json:"nome" binding:"required,min=2,max=200"`
	Email              string             `json:"email" binding:"omitempty,email,max=255"`
	Celular            string             `json:"celular" binding:"omitempty,celular"`
	Endereco           string             `json:"endereco" binding:"max=500"`
	TipoVinculo        TipoVinculo        `json:"tipo_vinculo" binding:"required,oneof=PAI MAE TUTOR OUTRO"`
	PreferenciaContato PreferenciaContato `json:"preferencia_contato" binding:"required,oneof=EMAIL CELULAR WHATSAPP"`
}

type ServidorRequest struct {
	UsuarioID                 *int        `json:"usuario_id"`
	Siape                     string      `json:"siape" binding:"required,min=3,max=20"`
	Nome                      string      `json:"nome" binding:"required,min=2,max=200"`
	Funcao                    string      `json:"funcao" binding:"max=100"`
	Email                     string      `json:"email" binding:"required,email,max=255"`
	CampusID                  *int        `json:"campus_id"`
	Coordenacao               Coordenacao `json:"coordenacao" binding:"required,oneof=CDPD CC CDRA NAPNE CDAE CDAE_PEDAGOGICO CDAE_ASSISTENCIA CDAE_PSICOLOGA CDBA CGEN DOCENTE DREP DG"`
	MembroComissaoDisciplinar bool        `json:"membro_comissao_disciplinar"`
	PodeRegistrarAtendimento  bool        `json:"pode_registrar_atendimento"`
	PodeVisualizarFichaAluno  bool        `json:"pode_visualizar_ficha_aluno"`
	Ativo                     *bool       `json:"ativo"`
}

type InfracaoRequest struct {
	Codigo           string    `json:"codigo" binding:"required,min=1,max=20"`
	Descricao        string    `json:"descricao" binding:"required,min=3"`
	Gravidade        Gravidade `json:"gravidade" binding:"required,oneof=LEVE MEDIA GRAVE GRAVISSIMA"`
	ReferenciaArtigo string    `json:"referencia_artigo" binding:"max=100"`
	Ativo            *bool     `json:"ativo"`
}

type SancaoRequest struct {
	Tipo        TipoSancao `json:"tipo" binding:"required,oneof=ADVERTENCIA_VERBAL ADVERTENCIA_ESCRITA SUSPENSAO TRANSFERENCIA DESLIGAMENTO"`
	Descricao   string     `json:"descricao" binding:"required"`
	InfracaoIDs []int      `json:"infracao_ids"`
}

type TipoOcorrenciaRapidaRequest struct {
	Codigo    string `json:"codigo" binding:"required,min=2,max=30"`
	Descricao string `json:"descricao" binding:"required,min=2,max=200"`
	Ativo     *bool  `json:"ativo"`
}

// BoolOr dereferences p, falling back to def when it is nil.
func BoolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
