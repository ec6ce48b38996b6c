package images

import (
	"fmt"
	"image"

	"github.com/bbrks/go-blurhash"
	"golang.org/x/image/draw"
)

// blurHashEdge caps the longer edge of the image fed to the encoder.
// The hash looks the same from a thumbnail, and staying small keeps
// encoding in the millisecond range.
const blurHashEdge = 64

// ComputeBlurHash encodes a compact placeholder hash for a decoded
// image. 4x3 components give ~20-30 characters with enough detail for
// book covers.
func ComputeBlurHash(img image.Image) (string, error) {
	hash, err := blurhash.Encode(4, 3, shrinkForHash(img))
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

// shrinkForHash downscales so the longer edge is at most blurHashEdge,
// preserving aspect ratio. Nearest neighbor is plenty for hashing.
func shrinkForHash(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= blurHashEdge && h <= blurHashEdge {
		return img
	}

	if w >= h {
		h = max(h*blurHashEdge/w, 1)
		w = blurHashEdge
	} else {
		w = max(w*blurHashEdge/h, 1)
		h = blurHashEdge
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
