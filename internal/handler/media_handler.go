package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ifb/ocorrencias-backend/internal/service"
)

// MediaHandler serves the student photos kept on Google Drive.
type MediaHandler struct {
	fotoService *service.FotoService
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(fotoService *service.FotoService) *MediaHandler {
	return &MediaHandler{fotoService: fotoService}
}

// ProxyFoto godoc
// GET /api/v1/fotos/drive?id=<file id>&sz=<width>
// A missing id is 400, a missing file 404 and a Drive failure 502.
func (h *MediaHandler) ProxyFoto(c *gin.Context) {
	width, _ := strconv.Atoi(c.Query("sz"))

	foto, err := h.fotoService.Get(c.Request.Context(), c.Query("id"), width)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, foto.ContentType, foto.Data)
}
