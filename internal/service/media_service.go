package service

import (
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/ifb/ocorrencias-backend/internal/config"
)

// Sentinel errors for media uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

// FotoSize is the edge of the square student photo thumbnail.
const FotoSize = 400

// Allowed image MIME types.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Evidence may also be a PDF.
var allowedEvidenceTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

// MediaService handles file upload operations.
type MediaService struct {
	cfg *config.Config
}

// NewMediaService creates a new MediaService.
func NewMediaService(cfg *config.Config) *MediaService {
	return &MediaService{cfg: cfg}
}

// SaveEvidencia saves an occurrence evidence file under evidencias/ and
// returns its path relative to the upload dir.
func (s *MediaService) SaveEvidencia(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext, err := s.check(header, allowedEvidenceTypes)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(s.cfg.UploadDir, "evidencias")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	filename := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return "evidencias/" + filename, nil
}

// SaveFoto decodes an uploaded photo, crops it to a FotoSize square
// thumbnail and stores it as JPEG under fotos/.
func (s *MediaService) SaveFoto(file multipart.File, header *multipart.FileHeader) (string, error) {
	if _, err := s.check(header, allowedImageTypes); err != nil {
		return "", err
	}
	img, err := imaging.Decode(file, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedFileType, err)
	}

	dir := filepath.Join(s.cfg.UploadDir, "fotos")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	filename := uuid.New().String() + ".jpg"
	if err := imaging.Save(Thumbnail(img), filepath.Join(dir, filename), imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("save thumbnail: %w", err)
	}
	return "fotos/" + filename, nil
}

// Remove deletes a previously stored file. Missing files are ignored.
func (s *MediaService) Remove(rel string) {
	if rel == "" {
		return
	}
	_ = os.Remove(filepath.Join(s.cfg.UploadDir, filepath.Clean("/"+rel)))
}

// Thumbnail crops img around its center to a FotoSize square.
func Thumbnail(img image.Image) *image.NRGBA {
	return imaging.Fill(img, FotoSize, FotoSize, imaging.Center, imaging.Lanczos)
}

func (s *MediaService) check(header *multipart.FileHeader, allowed map[string]string) (string, error) {
	contentType := header.Header.Get("Content-Type")
	ext, ok := allowed[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s (allowed: %s)",
			ErrUnsupportedFileType, contentType, strings.Join(allowedTypes(allowed), ", "))
	}
	if header.Size > s.cfg.MaxUploadBytes {
		return "", fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.cfg.MaxUploadBytes)
	}
	return ext, nil
}

func allowedTypes(allowed map[string]string) []string {
	types := make([]string, 0, len(allowed))
	for t := range allowed {
		types = append(types, t)
	}
	return types
}
