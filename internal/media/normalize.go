// Package media prepares screenshots for submission to a vision model.
package media

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

const (
	// MaxHeight is the tallest image the model reliably accepts.
	MaxHeight = 8000
	// JPEGQuality is the encoder quality used for normalized output.
	JPEGQuality = 85
	// MIMEJPEG is the type of every successfully normalized image.
	MIMEJPEG = "image/jpeg"
)

// Image is encoded image data and its MIME type.
type Image struct {
	Data     []byte
	MIMEType string
}

// Normalizer bounds image height and re-encodes to JPEG.
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger.With(zap.String("component", "media"))}
}

// Normalize flattens transparency onto white, shrinks images taller than
// MaxHeight preserving aspect ratio, and encodes as JPEG. If decoding or
// encoding fails the original bytes are returned unchanged so the run can
// continue with the raw capture.
func (n *Normalizer) Normalize(raw []byte) Image {
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		n.logger.Warn("image decode failed, using original bytes", zap.Error(err))
		return passthrough(raw)
	}

	b := img.Bounds()
	n.logger.Debug("normalizing image",
		zap.String("format", format),
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()))

	out := flatten(img)
	if b.Dy() > MaxHeight {
		width := b.Dx() * MaxHeight / b.Dy()
		if width < 1 {
			width = 1
		}
		out = imaging.Resize(out, width, MaxHeight, imaging.Lanczos)
		n.logger.Info("image resized",
			zap.Int("from_height", b.Dy()),
			zap.Int("to_width", width),
			zap.Int("to_height", MaxHeight))
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		n.logger.Warn("image encode failed, using original bytes", zap.Error(err))
		return passthrough(raw)
	}
	return Image{Data: buf.Bytes(), MIMEType: MIMEJPEG}
}

// flatten composites img over an opaque white background.
func flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

func passthrough(raw []byte) Image {
	return Image{Data: raw, MIMEType: http.DetectContentType(raw)}
}
