// Package imaging inspects uploaded photos and fits oversized ones before storage.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

// Result is a normalized image ready for storage.
type Result struct {
	Data        []byte
	ContentType string
	Format      string
	Width       int
	Height      int
	Resized     bool
}

// Config for image processing
type Config struct {
	MaxDimension int // longest side after fitting (default 2048)
	Quality      int // JPEG quality 1-100 (default 85)
}

// DefaultConfig returns default processing config
func DefaultConfig() Config {
	return Config{
		MaxDimension: 2048,
		Quality:      85,
	}
}

// Processor handles image processing
type Processor struct {
	config Config
}

// NewProcessor creates image processor
func NewProcessor(config Config) *Processor {
	if config.MaxDimension <= 0 {
		config.MaxDimension = DefaultConfig().MaxDimension
	}
	if config.Quality <= 0 || config.Quality > 100 {
		config.Quality = DefaultConfig().Quality
	}
	return &Processor{config: config}
}

// Normalize reads dimensions and fits images larger than MaxDimension on either side.
// Images within bounds are returned byte for byte.
func (p *Processor) Normalize(data []byte) (*Result, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	result := &Result{
		Data:        data,
		Format:      format,
		ContentType: mimeFromFormat(format),
		Width:       cfg.Width,
		Height:      cfg.Height,
	}

	limit := p.config.MaxDimension
	if cfg.Width <= limit && cfg.Height <= limit {
		return result, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	fitted := imaging.Fit(img, limit, limit, imaging.Lanczos)

	// webp has no encoder; resized webp is stored as jpeg
	outFormat := imaging.JPEG
	if format == "png" {
		outFormat = imaging.PNG
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, outFormat, imaging.JPEGQuality(p.config.Quality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	result.Data = buf.Bytes()
	result.Width = fitted.Bounds().Dx()
	result.Height = fitted.Bounds().Dy()
	result.Resized = true
	if outFormat == imaging.PNG {
		result.Format = "png"
	} else {
		result.Format = "jpeg"
	}
	result.ContentType = mimeFromFormat(result.Format)
	return result, nil
}

func mimeFromFormat(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
