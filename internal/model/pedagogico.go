package model

import "time"

// Disciplina is a subject of a course.
type Disciplina struct {
	ID           int       `json:"id"`
	Nome         string    `json:"nome"`
	Codigo       string    `json:"codigo"`
	CursoID      *int      `json:"curso_id"`
	CargaHoraria int       `json:"carga_horaria"`
	Ementa       string    `json:"ementa"`
	Ativa        bool      `json:"ativa"`
	CreatedAt    time.Time `json:"created_at"`
}

// DisciplinaTurma assigns a subject and its docente to a class in a period.
type DisciplinaTurma struct {
	ID             int    `json:"id"`
	DisciplinaID   int    `json:"disciplina_id"`
	DisciplinaNome string `json:"disciplina_nome,omitempty"`
	TurmaID        int    `json:"turma_id"`
	DocenteID      *int   `json:"docente_id"`
	DocenteNome    string `json:"docente_nome,omitempty"`
	Periodo        string `json:"periodo"`
}

// ConselhoClasse is the class council held at the end of a period.
type ConselhoClasse struct {
	ID                      int       `json:"id"`
	TurmaID                 int       `json:"turma_id"`
	TurmaNome               string    `json:"turma_nome,omitempty"`
	Periodo                 string    `json:"periodo"`
	DataRealizacao          Date      `json:"data_realizacao"`
	InformacoesGerais       string    `json:"informacoes_gerais"`
	PontosPositivos         string    `json:"pontos_positivos"`
	PontosAtencao           string    `json:"pontos_atencao"`
	Encaminhamentos         string    `json:"encaminhamentos"`
	CoordenacaoCursoID      *int      `json:"coordenacao_curso_id"`
	CoordenacaoPedagogicaID *int      `json:"coordenacao_pedagogica_id"`
	DocenteIDs              []int     `json:"docente_ids"`
	CreatedAt               time.Time `json:"created_at"`
}

// InformacaoEstudanteConselho is what the council recorded about one student.
type InformacaoEstudanteConselho struct {
	ID                        int    `json:"id"`
	ConselhoID                int    `json:"conselho_id"`
	EstudanteID               int    `json:"estudante_id"`
	EstudanteNome             string `json:"estudante_nome,omitempty"`
	Observacoes               string `json:"observacoes"`
	Frequencia                string `json:"frequencia"`
	SituacaoGeral             string `json:"situacao_geral"`
	Participacao              string `json:"participacao"`
	Relacionamento            string `json:"relacionamento"`
	Dificuldades              string `json:"dificuldades"`
	Potencialidades           string `json:"potencialidades"`
	NecessitaAcompanhamento   bool   `json:"necessita_acompanhamento"`
	EncaminhamentoCDPD        bool   `json:"encaminhamento_cdpd"`
	EncaminhamentoCDAE        bool   `json:"encaminhamento_cdae"`
	EncaminhamentoNAPNE       bool   `json:"encaminhamento_napne"`
	ObservacoesEncaminhamento string `json:"observacoes_encaminhamento"`
}

// InformacaoDisciplinaConselho is a student's grade record for one subject.
type InformacaoDisciplinaConselho struct {
	ID                int      `json:"id"`
	InformacaoID      int      `json:"informacao_estudante_id"`
	DisciplinaTurmaID int      `json:"disciplina_turma_id"`
	Nota              *float64 `json:"nota"`
	Frequencia        *float64 `json:"frequencia"`
	Observacoes       string   `json:"observacoes"`
}

// ConselhoDetalhe is a council with its per-student records.
type ConselhoDetalhe struct {
	*ConselhoClasse
	Estudantes []InformacaoEstudanteConselho `json:"estudantes"`
}

// FichaAluno aggregates what a staff member with ficha access may see about a student.
type FichaAluno struct {
	Estudante         EstudanteView                 `json:"estudante"`
	Responsaveis      []Responsavel                 `json:"responsaveis"`
	Ocorrencias       []Ocorrencia                  `json:"ocorrencias"`
	Rapidas           []OcorrenciaRapida            `json:"ocorrencias_rapidas"`
	Atendimentos      []Atendimento                 `json:"atendimentos"`
	Conselhos         []InformacaoEstudanteConselho `json:"conselhos"`
	AtendimentosNAPNE []AtendimentoNAPNE            `json:"atendimentos_napne"`
}

type DisciplinaRequest struct {
	Nome         string `json:"nome" binding:"required,min=2,max=200"`
	Codigo       string `json:"codigo" binding:"required,min=1,max=30"`
	CursoID      *int   `json:"curso_id"`
	CargaHoraria int    `json:"carga_horaria" binding:"min=0,max=2000"`
	Ementa       string `json:"ementa"`
	Ativa        *bool  `json:"ativa"`
}

type DisciplinaTurmaRequest struct {
	DisciplinaID int    `json:"disciplina_id" binding:"required"`
	TurmaID      int    `json:"turma_id" binding:"required"`
	DocenteID    *int   `json:"docente_id"`
	Periodo      string `json:"periodo" binding:"required,max=20"`
}

type ConselhoRequest struct {
	TurmaID                 int    `json:"turma_id" binding:"required"`
	Periodo                 string `json:"periodo" binding:"required,max=20"`
	DataRealizacao          string `json:"data_realizacao" binding:"required,isodate"`
	InformacoesGerais       string `json:"informacoes_gerais"`
	PontosPositivos         string `json:"pontos_positivos"`
	PontosAtencao           string `json:"pontos_atencao"`
	Encaminhamentos         string `json:"encaminhamentos"`
	CoordenacaoCursoID      *int   `json:"coordenacao_curso_id"`
	CoordenacaoPedagogicaID *int   `json:"coordenacao_pedagogica_id"`
	DocenteIDs              []int  `json:"docente_ids"`
}

type InformacaoEstudanteRequest struct {
	EstudanteID               int                           `json:"estudante_id" binding:"required"`
	Observacoes               string                        `json:"observacoes"`
	Frequencia                string                        `json:"frequencia" binding:"max=50"`
	SituacaoGeral             string                        `json:"situacao_geral" binding:"max=100"`
	Participacao              string                        `json:"participacao"`
	Relacionamento            string                        `json:"relacionamento"`
	Dificuldades              string                        `json:"dificuldades"`
	Potencialidades           string                        `json:"potencialidades"`
	NecessitaAcompanhamento   bool                          `json:"necessita_acompanhamento"`
	EncaminhamentoCDPD        bool                          `json:"encaminhamento_cdpd"`
	EncaminhamentoCDAE        bool                          `json:"encaminhamento_cdae"`
	EncaminhamentoNAPNE       bool                          `json:"encaminhamento_napne"`
	ObservacoesEncaminhamento string                        `json:"observacoes_encaminhamento"`
	Disciplinas               []InformacaoDisciplinaRequest `json:"disciplinas" binding:"dive"`
}

type InformacaoDisciplinaRequest struct {
	DisciplinaTurmaID int      `json:"disciplina_turma_id" binding:"required"`
	Nota              *float64 `json:"nota" binding:"omitempty,min=0,max=10"`
	Frequencia        *float64 `json:"frequencia" binding:"omitempty,min=0,max=100"`
	Observacoes       string   `json:"observacoes"`
}
