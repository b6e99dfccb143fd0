// Package drive downloads images shared on Google Drive.
package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// MaxFileBytes caps how much of a Drive file is read.
const MaxFileBytes = 10 << 20

var (
	ErrFileNotFound = errors.New("drive file not found")
	ErrUpstream     = errors.New("drive upstream failure")
)

// Fetcher downloads the bytes of a Drive file together with its content type.
type Fetcher interface {
	Fetch(ctx context.Context, fileID string) ([]byte, string, error)
}

// NewFetcher uses the Drive API when a service account credentials file is
// given and the public export URL otherwise.
func NewFetcher(ctx context.Context, credentialsFile string) (Fetcher, error) {
	if credentialsFile == "" {
		return NewPublicFetcher(), nil
	}
	return NewAPIFetcher(ctx, credentialsFile)
}

// ─── Drive API ─────────────────────────────────────────────────────────

type APIFetcher struct {
	svc *gdrive.Service
}

func NewAPIFetcher(ctx context.Context, credentialsFile string) (*APIFetcher, error) {
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(credentialsJSON, gdrive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("configure JWT from credentials: %w", err)
	}

	svc, err := gdrive.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create drive client: %w", err)
	}
	return &APIFetcher{svc: svc}, nil
}

func (f *APIFetcher) Fetch(ctx context.Context, fileID string) ([]byte, string, error) {
	res, err := f.svc.Files.Get(fileID).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
			return nil, "", ErrFileNotFound
		}
		return nil, "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer res.Body.Close()
	return readBody(res)
}

// ─── Public export URL ─────────────────────────────────────────────────

const publicExportURL = "https://drive.google.com/uc"

type PublicFetcher struct {
	client  *http.Client
	baseURL string
}

func NewPublicFetcher() *PublicFetcher {
	return &PublicFetcher{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: publicExportURL,
	}
}

func (f *PublicFetcher) Fetch(ctx context.Context, fileID string) ([]byte, string, error) {
	u := f.baseURL + "?export=view&id=" + url.QueryEscape(fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", err
	}

	res, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return nil, "", ErrFileNotFound
	case res.StatusCode >= http.StatusBadRequest:
		return nil, "", fmt.Errorf("%w: status %d", ErrUpstream, res.StatusCode)
	}

	data, ct, err := readBody(res)
	if err != nil {
		return nil, "", err
	}
	// Private files answer 200 with the sign-in page.
	if !strings.HasPrefix(ct, "image/") {
		return nil, "", ErrFileNotFound
	}
	return data, ct, nil
}

func readBody(res *http.Response) ([]byte, string, error) {
	data, err := io.ReadAll(io.LimitReader(res.Body, MaxFileBytes))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	ct := res.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}
	return data, ct, nil
}
