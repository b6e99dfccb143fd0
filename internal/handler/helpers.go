package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ifb/ocorrencias-backend/internal/drive"
	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/repository"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/ifb/ocorrencias-backend/internal/service"
	"github.com/ifb/ocorrencias-backend/internal/validator"
	"github.com/rs/zerolog/log"
)

type errMapping struct {
	err    error
	status int
	code   response.ErrCode
}

// errorTable maps domain errors to HTTP answers. The first match wins, so
// wrapped sentinels must come before the sentinel they wrap.
var errorTable = []errMapping{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, response.ErrInvalidCredentials},
	{service.ErrUserInactive, http.StatusForbidden, response.ErrUserInactive},
	{service.ErrTokenRevoked, http.StatusUnauthorized, response.ErrSessionRevoked},
	{service.ErrNotAllowed, http.StatusForbidden, response.ErrActionForbidden},
	{service.ErrServidorRequired, http.StatusForbidden, response.ErrServidorOnly},
	{service.ErrProtectedRole, http.StatusForbidden, response.ErrProtectedRole},
	{service.ErrUnknownPermission, http.StatusBadRequest, response.ErrValidation},
	{service.ErrSelfDeactivation, http.StatusBadRequest, response.ErrSelfDeactivation},
	{service.ErrPeriodoInvalido, http.StatusBadRequest, response.ErrInvalidPeriod},
	{service.ErrParticipacaoPeriodo, http.StatusBadRequest, response.ErrInvalidPeriod},
	{model.ErrInvalidDate, http.StatusBadRequest, response.ErrInvalidDate},

	{model.ErrInvalidTransition, http.StatusConflict, response.ErrInvalidTransition},
	{model.ErrUnknownAction, http.StatusBadRequest, response.ErrUnknownAction},
	{repository.ErrStaleStatus, http.StatusConflict, response.ErrStaleStatus},
	{service.ErrOcorrenciaClosed, http.StatusConflict, response.ErrOcorrenciaClosed},
	{service.ErrComissaoExists, http.StatusConflict, response.ErrComissaoExists},
	{service.ErrPresidenteNaoMembro, http.StatusBadRequest, response.ErrPresidente},
	{service.ErrRecursoDecidido, http.StatusConflict, response.ErrRecursoDecidido},
	{service.ErrTipoDocumentoInvalido, http.StatusBadRequest, response.ErrValidation},

	{service.ErrCheckinCodigoVazio, http.StatusBadRequest, response.ErrCodigoRequired},
	{service.ErrCheckinNaoCadastrado, http.StatusNotFound, response.ErrCodigoNotFound},
	{service.ErrCheckinBloqueado, http.StatusForbidden, response.ErrAccessBlocked},
	{service.ErrCheckinForaDoHorario, http.StatusBadRequest, response.ErrOutsideMealHours},
	{service.ErrCheckinJaRealizado, http.StatusConflict, response.ErrMealAlreadyTaken},
	{service.ErrBloqueioPessoaInvalid, http.StatusBadRequest, response.ErrValidation},
	{service.ErrJanelaInvertida, http.StatusBadRequest, response.ErrValidation},

	{service.ErrLimiteHorasExcedido, http.StatusBadRequest, response.ErrHoursExceeded},
	{service.ErrCoordenadorParticipante, http.StatusBadRequest, response.ErrCoordinatorAsMember},
	{service.ErrProjetoSemRelatorio, http.StatusBadRequest, response.ErrNoReportSchedule},

	{service.ErrCatalogoDesconhecido, http.StatusNotFound, response.ErrNotFound},
	{repository.ErrUnknownCatalogo, http.StatusNotFound, response.ErrNotFound},
	{service.ErrUnsupportedFileType, http.StatusBadRequest, response.ErrUnsupportedFile},
	{service.ErrFileTooLarge, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge},
	{service.ErrFotoIDRequired, http.StatusBadRequest, response.ErrValidation},
	{drive.ErrFileNotFound, http.StatusNotFound, response.ErrNotFound},
	{drive.ErrUpstream, http.StatusBadGateway, response.ErrUpstream},

	{repository.ErrNotFound, http.StatusNotFound, response.ErrNotFound},
	{repository.ErrDuplicate, http.StatusConflict, response.ErrConflict},
	{repository.ErrReferenced, http.StatusConflict, response.ErrDependencyExists},
	{repository.ErrInvalidRef, http.StatusBadRequest, response.ErrInvalidReference},
}

func lookupError(err error) (errMapping, bool) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return m, true
		}
	}
	return errMapping{}, false
}

// respondError writes the mapped answer for err, or 500 for anything unknown.
func respondError(c *gin.Context, err error) {
	if m, ok := lookupError(err); ok {
		response.FailWithDetail(c, m.status, m.code, err.Error())
		return
	}
	log.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled error")
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}

// paramID parses a positive integer path parameter, answering 400 otherwise.
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// queryInt reads an optional integer query parameter.
func queryInt(c *gin.Context, name string) *int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return nil
	}
	return &v
}

func pageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	return page, perPage
}

// bind decodes the JSON body, answering 400 with the field errors on failure.
func bind(c *gin.Context, dst interface{}) bool {
	if fields := validator.Bind(c, dst); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return false
	}
	return true
}

// queryDate reads an optional YYYY-MM-DD query parameter. An invalid value
// answers 400 and returns ok=false.
func queryDate(c *gin.Context, name string) (d *model.Date, ok bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := model.ParseDate(raw)
	if err != nil {
		response.FailWithDetail(c, http.StatusBadRequest, response.ErrInvalidDate, name)
		return nil, false
	}
	return &v, true
}

// queryBool reads a "true"/"1" flag.
func queryBool(c *gin.Context, name string) bool {
	v, _ := strconv.ParseBool(c.Query(name))
	return v
}

// periodo reads inicio and fim, defaulting to the current month.
func periodo(c *gin.Context) (inicio, fim model.Date, ok bool) {
	i, ok := queryDate(c, "inicio")
	if !ok {
		return
	}
	f, ok := queryDate(c, "fim")
	if !ok {
		return
	}
	hoje := model.Today()
	inicio, fim = hoje.MonthStart(), hoje
	if i != nil {
		inicio = *i
	}
	if f != nil {
		fim = *f
	}
	if fim.Before(inicio) {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPeriod)
		return inicio, fim, false
	}
	return inicio, fim, true
}

// sendFile writes a generated download.
func sendFile(c *gin.Context, contentType, filename string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}

// soAtivos reads ?ativos=, which defaults to true.
func soAtivos(c *gin.Context) bool {
	v, err := strconv.ParseBool(c.DefaultQuery("ativos", "true"))
	return err != nil || v
}
