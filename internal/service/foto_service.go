package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disintegration/imaging"
	"github.com/ifb/ocorrencias-backend/internal/config"
	"github.com/ifb/ocorrencias-backend/internal/drive"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrFotoIDRequired is returned when the proxy is called without a file id.
var ErrFotoIDRequired = errors.New("drive file id is required")

// maxFotoWidth bounds the sz parameter of the proxy.
const maxFotoWidth = 2000

// Foto is an image ready to be served.
type Foto struct {
	Data        []byte
	ContentType string
}

// FotoService proxies student photos stored on Google Drive through a Redis cache.
type FotoService struct {
	fetcher drive.Fetcher
	rdb     *redis.Client
	ttl     time.Duration
	log     zerolog.Logger
}

// NewFotoService creates a new FotoService.
func NewFotoService(fetcher drive.Fetcher, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *FotoService {
	return &FotoService{
		fetcher: fetcher,
		rdb:     rdb,
		ttl:     cfg.DriveCacheTTL,
		log:     log.With().Str("component", "foto_service").Logger(),
	}
}

// Get returns the Drive image, resized to width when width > 0.
// Errors are drive.ErrFileNotFound, drive.ErrUpstream or ErrFotoIDRequired.
func (s *FotoService) Get(ctx context.Context, fileID string, width int) (*Foto, error) {
	if fileID == "" {
		return nil, ErrFotoIDRequired
	}
	if width < 0 || width > maxFotoWidth {
		width = 0
	}

	dataKey := config.CacheKey.DriveImageKey(fileID, width)
	typeKey := config.CacheKey.DriveImageTypeKey(fileID, width)
	if vals, err := s.rdb.MGet(ctx, dataKey, typeKey).Result(); err == nil && vals[0] != nil && vals[1] != nil {
		data, _ := vals[0].(string)
		ct, _ := vals[1].(string)
		return &Foto{Data: []byte(data), ContentType: ct}, nil
	} else if err != nil {
		s.log.Warn().Err(err).Str("file_id", fileID).Msg("Failed to read photo cache")
	}

	data, ct, err := s.fetcher.Fetch(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if width > 0 {
		if resized, err := resizeJPEG(data, width); err == nil {
			data, ct = resized, "image/jpeg"
		} else {
			s.log.Warn().Err(err).Str("file_id", fileID).Msg("Failed to resize photo, serving original")
		}
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, dataKey, data, s.ttl)
	pipe.Set(ctx, typeKey, ct, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Str("file_id", fileID).Msg("Failed to cache photo")
	}
	return &Foto{Data: data, ContentType: ct}, nil
}

func resizeJPEG(data []byte, width int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
