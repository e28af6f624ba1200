package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Fixed pipeline configuration. These are deliberately not runtime options:
// every stored image in the catalog went through the same bounds.
const (
	MaxInputSize       = 5 << 20 // 5 MiB
	MaxDimension       = 1200
	ThumbnailDimension = 300

	outputQuality    = 85
	thumbnailQuality = 80
)

var allowedFormats = map[string]struct{}{
	"jpeg": {},
	"png":  {},
	"webp": {},
	"gif":  {},
}

var (
	ErrTooLarge          = errors.New("image_too_large")
	ErrUnsupportedFormat = errors.New("unsupported_image_format")
)

var Module = fx.Provide(New)

// Service turns arbitrary uploaded bytes into a bounded, canonical JPEG. It
// holds no state beyond a logger and is safe for parallel use.
type Service struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Service {
	return &Service{log: log.Named("imaging.service")}
}

// Normalize validates, recolors, bounds, and re-encodes an upload. The input
// is fully decoded before any transform so corrupt or truncated files are
// rejected rather than partially processed. The same input always yields the
// same output bytes.
func (s *Service) Normalize(data []byte) ([]byte, error) {
	if len(data) > MaxInputSize {
		return nil, ErrTooLarge
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if _, ok := allowedFormats[format]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	canonical := scaleToFit(src, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canonical, &jpeg.Options{Quality: outputQuality}); err != nil {
		return nil, fmt.Errorf("encode normalized image: %w", err)
	}
	return buf.Bytes(), nil
}

// Thumbnail produces a small preview with the same aspect-preserving,
// never-upscale rule. A missing thumbnail is an acceptable outcome, so any
// internal failure returns the input unchanged instead of an error.
func (s *Service) Thumbnail(data []byte) []byte {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		s.log.Warn("thumbnail decode failed", zap.Error(err))
		return data
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaleToFit(src, ThumbnailDimension), &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		s.log.Warn("thumbnail encode failed", zap.Error(err))
		return data
	}
	return buf.Bytes()
}

// scaleToFit redraws src into an RGBA canvas, scaling down so the longer side
// equals max when either dimension exceeds it. Palette and alpha sources all
// land in the same canonical color model. Never upscales.
func scaleToFit(src image.Image, max int) *image.RGBA {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	targetW, targetH := width, height
	if width > max || height > max {
		if width >= height {
			targetW = max
			targetH = height * max / width
		} else {
			targetH = max
			targetW = width * max / height
		}
		if targetW < 1 {
			targetW = 1
		}
		if targetH < 1 {
			targetH = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	return dst
}
