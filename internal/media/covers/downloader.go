// Package covers provides cover image downloading for metadata imports.
package covers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/readloopapp/readloop-server/internal/domain"
	"github.com/readloopapp/readloop-server/internal/media/images"
)

const (
	// maxCoverSize limits download size to prevent memory exhaustion.
	maxCoverSize = 10 * 1024 * 1024 // 10MB

	// downloadTimeout is the maximum time for a cover download.
	downloadTimeout = 30 * time.Second
)

// Downloader fetches cover images from external sources and runs them
// through the image processor.
type Downloader struct {
	httpClient *http.Client
	processor  *images.Processor
	logger     *slog.Logger
}

// NewDownloader creates a new cover downloader.
func NewDownloader(processor *images.Processor, logger *slog.Logger) *Downloader {
	return &Downloader{
		httpClient: &http.Client{
			Timeout: downloadTimeout,
		},
		processor: processor,
		logger:    logger,
	}
}

// Download fetches a cover from the URL, processes it, and stores the
// derivatives for the given book ID.
func (d *Downloader) Download(ctx context.Context, bookID, url string) (*domain.CoverImage, error) {
	if url == "" {
		return nil, errors.New("empty cover URL")
	}

	downloadCtx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(downloadCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverSize))
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}

	cover, err := d.processor.Process(bookID, data)
	if err != nil {
		return nil, fmt.Errorf("process cover: %w", err)
	}

	d.logger.Info("downloaded cover",
		"book_id", bookID,
		"source", DetectSource(url),
		"size", cover.Size,
		"width", cover.Width,
		"height", cover.Height,
	)

	return cover, nil
}

// DetectSource determines the cover source from a URL.
func DetectSource(url string) string {
	switch {
	case strings.Contains(url, "openlibrary.org"):
		return "openlibrary"
	default:
		return "unknown"
	}
}
