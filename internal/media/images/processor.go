package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"log/slog"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/readloopapp/readloop-server/internal/domain"
)

const (
	// maxCoverEdge is the longest edge of a stored full-size cover.
	maxCoverEdge = 1024

	// thumbnailEdge is the longest edge of a stored thumbnail.
	thumbnailEdge = 320

	// jpegQuality balances file size against visible artifacts on covers.
	jpegQuality = 85
)

// Processor normalizes raw cover image data into stored derivatives:
// a resized full-size JPEG, a thumbnail, and a BlurHash placeholder.
type Processor struct {
	storage *Storage
	logger  *slog.Logger
}

// NewProcessor creates a new Processor instance.
func NewProcessor(storage *Storage, logger *slog.Logger) *Processor {
	return &Processor{
		storage: storage,
		logger:  logger,
	}
}

// Process decodes raw image data, stores the resized cover and thumbnail
// for the given book, and returns the resulting cover metadata.
// Accepts JPEG, PNG, GIF and WebP input; output is always JPEG.
func (p *Processor) Process(bookID string, data []byte) (*domain.CoverImage, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	full := scaleDown(img, maxCoverEdge)
	fullData, err := encodeJPEG(full)
	if err != nil {
		return nil, fmt.Errorf("encode cover: %w", err)
	}
	if err := p.storage.Save(bookID, fullData); err != nil {
		return nil, fmt.Errorf("save cover: %w", err)
	}

	thumb := scaleDown(img, thumbnailEdge)
	thumbData, err := encodeJPEG(thumb)
	if err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	if err := p.storage.SaveThumbnail(bookID, thumbData); err != nil {
		return nil, fmt.Errorf("save thumbnail: %w", err)
	}

	hash, err := ComputeBlurHash(thumb)
	if err != nil {
		p.logger.Warn("failed to compute blurhash",
			"book_id", bookID,
			"error", err,
		)
		// A cover without a placeholder is still a cover
		hash = ""
	}

	bounds := full.Bounds()
	// Paths are serve names relative to the covers directory, so clients
	// can fetch them under /covers/ without knowing the data layout.
	cover := &domain.CoverImage{
		Path:          p.storage.Filename(bookID),
		ThumbnailPath: p.storage.ThumbnailFilename(bookID),
		Blurhash:      hash,
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Size:          int64(len(fullData)),
	}

	p.logger.Info("processed cover",
		"book_id", bookID,
		"format", format,
		"width", cover.Width,
		"height", cover.Height,
		"size", cover.Size,
	)

	return cover, nil
}

// Delete removes a book's stored cover derivatives.
func (p *Processor) Delete(bookID string) error {
	return p.storage.Delete(bookID)
}

// scaleDown resizes img so its longest edge is at most maxEdge,
// preserving aspect ratio. Images already within bounds are returned as-is.
func scaleDown(img image.Image, maxEdge int) image.Image {
	bounds := img.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	if srcWidth <= maxEdge && srcHeight <= maxEdge {
		return img
	}

	var dstWidth, dstHeight int
	if srcWidth > srcHeight {
		dstWidth = maxEdge
		dstHeight = (srcHeight * maxEdge) / srcWidth
		if dstHeight < 1 {
			dstHeight = 1
		}
	} else {
		dstHeight = maxEdge
		dstWidth = (srcWidth * maxEdge) / srcHeight
		if dstWidth < 1 {
			dstWidth = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// encodeJPEG encodes an image as JPEG at the standard cover quality.
func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
