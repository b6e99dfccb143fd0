package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/repository"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/ifb/ocorrencias-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(path, target string, h gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET(path, h)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *response.ErrorBody {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body.Error
}

func TestRespondError_MapsWrappedErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   response.ErrCode
	}{
		{fmt.Errorf("get estudante: %w", repository.ErrNotFound), http.StatusNotFound, response.ErrNotFound},
		{fmt.Errorf("update: %w", repository.ErrStaleStatus), http.StatusConflict, response.ErrStaleStatus},
		{model.ErrInvalidTransition, http.StatusConflict, response.ErrInvalidTransition},
		{&service.CheckinError{Err: service.ErrCheckinBloqueado, Detalhes: "motivo"}, http.StatusForbidden, response.ErrAccessBlocked},
		{service.ErrLimiteHorasExcedido, http.StatusBadRequest, response.ErrHoursExceeded},
		{fmt.Errorf("%w: 14:00-11:00", service.ErrJanelaInvertida), http.StatusBadRequest, response.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			w := serve("/x", "/x", func(c *gin.Context) { respondError(c, tc.err) })
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.code, decodeError(t, w).Code)
		})
	}
}

func TestRespondError_UnknownIs500(t *testing.T) {
	w := serve("/x", "/x", func(c *gin.Context) { respondError(c, errors.New("boom")) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, response.ErrInternal, body.Code)
	assert.Empty(t, body.Detail)
}

func TestParamID(t *testing.T) {
	var got int
	h := func(c *gin.Context) {
		if id, ok := paramID(c, "id"); ok {
			got = id
			c.Status(http.StatusNoContent)
		}
	}

	assert.Equal(t, http.StatusNoContent, serve("/o/:id", "/o/42", h).Code)
	assert.Equal(t, 42, got)
	assert.Equal(t, http.StatusBadRequest, serve("/o/:id", "/o/abc", h).Code)
	assert.Equal(t, http.StatusBadRequest, serve("/o/:id", "/o/0", h).Code)
}

func TestPeriodo(t *testing.T) {
	var inicio, fim model.Date
	h := func(c *gin.Context) {
		var ok bool
		if inicio, fim, ok = periodo(c); ok {
			c.Status(http.StatusNoContent)
		}
	}

	w := serve("/r", "/r?inicio=2026-03-01&fim=2026-03-31", h)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "2026-03-01", inicio.String())
	assert.Equal(t, "2026-03-31", fim.String())

	w = serve("/r", "/r", h)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, model.Today().MonthStart().String(), inicio.String())

	w = serve("/r", "/r?inicio=2026-04-01&fim=2026-03-01", h)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrInvalidPeriod, decodeError(t, w).Code)

	w = serve("/r", "/r?inicio=01/04/2026", h)
	assert.Equal(t, response.ErrInvalidDate, decodeError(t, w).Code)
}

func TestSoAtivos(t *testing.T) {
	var got bool
	h := func(c *gin.Context) { got = soAtivos(c) }

	serve("/l", "/l", h)
	assert.True(t, got)
	serve("/l", "/l?ativos=false", h)
	assert.False(t, got)
	serve("/l", "/l?ativos=talvez", h)
	assert.True(t, got)
}
