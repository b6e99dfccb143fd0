package handler

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/ifb/ocorrencias-backend/internal/middleware"
	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/ifb/ocorrencias-backend/internal/service"
)

// Actions posted to the generic endpoint. The others carry a payload and
// have their own route.
var acoesSimples = map[model.FlowAction]bool{
	model.ActionIniciarAnalise:    true,
	model.ActionAguardarDefesa:    true,
	model.ActionIniciarJulgamento: true,
	model.ActionFinalizar:         true,
	model.ActionArquivar:          true,
}

// OcorrenciaHandler handles disciplinary occurrences and their flow.
type OcorrenciaHandler struct {
	ocorrencias *service.OcorrenciaService
	documentos  *service.DocumentoService
	media       *service.MediaService
}

// NewOcorrenciaHandler creates a new OcorrenciaHandler.
func NewOcorrenciaHandler(ocorrencias *service.OcorrenciaService, documentos *service.DocumentoService, media *service.MediaService) *OcorrenciaHandler {
	return &OcorrenciaHandler{ocorrencias: ocorrencias, documentos: documentos, media: media}
}

// ─── CRUD ──────────────────────────────────────────────────────────────

// ListOcorrencias godoc
// GET /api/v1/ocorrencias?status=&estudante_id=&turma_id=&inicio=&fim=&page=&per_page=
func (h *OcorrenciaHandler) ListOcorrencias(c *gin.Context) {
	inicio, ok := queryDate(c, "inicio")
	if !ok {
		return
	}
	fim, ok := queryDate(c, "fim")
	if !ok {
		return
	}
	of := model.OcorrenciaFilter{
		Status:      model.OcorrenciaStatus(c.Query("status")),
		EstudanteID: queryInt(c, "estudante_id"),
		TurmaID:     queryInt(c, "turma_id"),
		Inicio:      inicio,
		Fim:         fim,
	}

	page, perPage := pageQuery(c)
	items, pagination, err := h.ocorrencias.List(c.Request.Context(), of, page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, items, pagination)
}

// GetOcorrencia godoc
// GET /api/v1/ocorrencias/:id
// Returns the occurrence with committee, notices, appeals, history, documents
// and the actions available from its status.
func (h *OcorrenciaHandler) GetOcorrencia(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	d, err := h.ocorrencias.Detalhe(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, d)
}

// CreateOcorrencia godoc
// POST /api/v1/ocorrencias
func (h *OcorrenciaHandler) CreateOcorrencia(c *gin.Context) {
	var req model.OcorrenciaRequest
	if !bind(c, &req) {
		return
	}
	o, err := h.ocorrencias.Create(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, o)
}

// UpdateOcorrencia godoc
// PUT /api/v1/ocorrencias/:id
// Closed occurrences cannot be edited.
func (h *OcorrenciaHandler) UpdateOcorrencia(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.OcorrenciaRequest
	if !bind(c, &req) {
		return
	}
	o, err := h.ocorrencias.Update(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, o)
}

// GetHistorico godoc
// GET /api/v1/ocorrencias/:id/historico
func (h *OcorrenciaHandler) GetHistorico(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	items, err := h.ocorrencias.Historico(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// UploadEvidencia godoc
// POST /api/v1/ocorrencias/:id/evidencias
// Accepts multipart/form-data with field "file" (jpg, png or pdf).
func (h *OcorrenciaHandler) UploadEvidencia(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	path, err := h.media.SaveEvidencia(file, header)
	if err != nil {
		respondError(c, err)
		return
	}
	o, err := h.ocorrencias.AnexarEvidencia(c.Request.Context(), middleware.GetActor(c), id, path)
	if err != nil {
		h.media.Remove(path)
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, o)
}

// ─── Flow ──────────────────────────────────────────────────────────────

// Acao godoc
// POST /api/v1/ocorrencias/:id/acoes/:acao
// Applies a flow action that needs no payload besides an optional observation.
func (h *OcorrenciaHandler) Acao(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	acao := model.FlowAction(c.Param("acao"))
	if !acoesSimples[acao] {
		response.FailWithDetail(c, http.StatusBadRequest, response.ErrUnknownAction, string(acao))
		return
	}
	var req model.FlowActionRequest
	if c.Request.ContentLength > 0 && !bind(c, &req) {
		return
	}
	o, err := h.ocorrencias.Acao(c.Request.Context(), middleware.GetActor(c), id, acao, req.Observacao)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, o)
}

// DesignarComissao godoc
// POST /api/v1/ocorrencias/:id/comissao
func (h *OcorrenciaHandler) DesignarComissao(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.ComissaoRequest
	if !bind(c, &req) {
		return
	}
	o, err := h.ocorrencias.DesignarComissao(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, o)
}

type concluirComissaoRequest struct {
	Parecer string `json:"parecer" binding:"required,min=5"`
}

// ConcluirComissao godoc
// POST /api/v1/ocorrencias/:id/comissao/concluir
func (h *OcorrenciaHandler) ConcluirComissao(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req concluirComissaoRequest
	if !bind(c, &req) {
		return
	}
	if err := h.ocorrencias.ConcluirComissao(c.Request.Context(), middleware.GetActor(c), id, req.Parecer); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "comissao concluded"})
}

// NotificarEstudante godoc
// POST /api/v1/ocorrencias/:id/notificacoes
// Sends the official notice by email and starts the defence deadline.
func (h *OcorrenciaHandler) NotificarEstudante(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.NotificarRequest
	if !bind(c, &req) {
		return
	}
	o, err := h.ocorrencias.Notificar(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, o)
}

// ConfirmarRecebimento godoc
// POST /api/v1/ocorrencias/:id/notificacoes/:notificacao_id/recebimento
func (h *OcorrenciaHandler) ConfirmarRecebimento(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	notificacaoID, ok := paramID(c, "notificacao_id")
	if !ok {
		return
	}
	if err := h.ocorrencias.ConfirmarRecebimento(c.Request.Context(), id, notificacaoID); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "receipt confirmed"})
}

// RegistrarDefesa godoc
// POST /api/v1/ocorrencias/:id/defesa
func (h *OcorrenciaHandler) RegistrarDefesa(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.DefesaRequest
	if !bind(c, &req) {
		return
	}
	o, err := h.ocorrencias.RegistrarDefesa(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, o)
}

// AplicarSancao godoc
// POST /api/v1/ocorrencias/:id/sancao
func (h *OcorrenciaHandler) AplicarSancao(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.SancaoAplicarRequest
	if !bind(c, &req) {
		return
	}
	o, err := h.ocorrencias.AplicarSancao(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, o)
}

// AbrirRecurso godoc
// POST /api/v1/ocorrencias/:id/recursos
func (h *OcorrenciaHandler) AbrirRecurso(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.RecursoRequest
	if !bind(c, &req) {
		return
	}
	o, err := h.ocorrencias.AbrirRecurso(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, o)
}

// DecidirRecurso godoc
// POST /api/v1/ocorrencias/:id/recursos/:recurso_id/decisao
func (h *OcorrenciaHandler) DecidirRecurso(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	recursoID, ok := paramID(c, "recurso_id")
	if !ok {
		return
	}
	var req model.DecidirRecursoRequest
	if !bind(c, &req) {
		return
	}
	r, err := h.ocorrencias.DecidirRecurso(c.Request.Context(), middleware.GetActor(c), id, recursoID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, r)
}

// ─── Documents ─────────────────────────────────────────────────────────

// ListDocumentos godoc
// GET /api/v1/ocorrencias/:id/documentos
func (h *OcorrenciaHandler) ListDocumentos(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	items, err := h.documentos.List(c.Request.Context(), id, false)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// GerarDocumento godoc
// POST /api/v1/ocorrencias/:id/documentos
// Renders the PDF of the requested type signed by the acting servidor.
func (h *OcorrenciaHandler) GerarDocumento(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.DocumentoRequest
	if !bind(c, &req) {
		return
	}
	d, err := h.documentos.GerarOcorrencia(c.Request.Context(), middleware.GetActor(c), id, req.Tipo)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, d)
}

// DownloadDocumento godoc
// GET /api/v1/documentos/:id/download
func (h *OcorrenciaHandler) DownloadDocumento(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	_, path, err := h.documentos.Open(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}
