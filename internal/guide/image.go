package guide

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // register decoder
	"image/jpeg"
	_ "image/png" // register decoder

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register decoder

	"github.com/govguide/govguide/internal/ailink/content"
	"github.com/govguide/govguide/internal/ailink/encode"
)

// Image limits.
const (
	DefaultMaxImageBytes     = 5 << 20
	DefaultMaxImageDimension = 1024
	DefaultMaxImagePixels    = 40_000_000
	jpegQuality              = 85
)

// ErrImageTooLarge is returned when the upload exceeds the byte or pixel limit.
var ErrImageTooLarge = errors.New("image exceeds size limit")

var acceptedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ImageOptions bound accepted uploads.
type ImageOptions struct {
	MaxBytes     int
	MaxDimension int
	// MaxPixels caps width*height before the pixel buffer is allocated.
	MaxPixels int
}

func (o ImageOptions) withDefaults() ImageOptions {
	if o.MaxBytes <= 0 {
		o.MaxBytes = DefaultMaxImageBytes
	}
	if o.MaxDimension <= 0 {
		o.MaxDimension = DefaultMaxImageDimension
	}
	if o.MaxPixels <= 0 {
		o.MaxPixels = DefaultMaxImagePixels
	}
	return o
}

// PrepareImage decodes a data URL upload, downscales it so neither side
// exceeds MaxDimension, and re-encodes it as JPEG for the providers.
func PrepareImage(dataURL string, opts ImageOptions) (content.ContentBlock, error) {
	opts = opts.withDefaults()

	mediaType, payload, err := encode.SplitDataURL(dataURL)
	if err != nil {
		return content.ContentBlock{}, &ValidationError{Field: "image", Message: "image must be a base64 data URL"}
	}
	if !acceptedImageTypes[mediaType] {
		return content.ContentBlock{}, &ValidationError{Field: "image", Message: fmt.Sprintf("unsupported image type %q", mediaType)}
	}
	// Check the encoded size before allocating the decoded buffer.
	if len(payload)/4*3 > opts.MaxBytes+3 {
		return content.ContentBlock{}, ErrImageTooLarge
	}

	raw, err := encode.DecodeBase64String(payload)
	if err != nil {
		return content.ContentBlock{}, &ValidationError{Field: "image", Message: "image is not valid base64"}
	}
	if len(raw) > opts.MaxBytes {
		return content.ContentBlock{}, ErrImageTooLarge
	}

	hdr, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return content.ContentBlock{}, &ValidationError{Field: "image", Message: "image could not be decoded"}
	}
	if hdr.Width <= 0 || hdr.Height <= 0 || int64(hdr.Width)*int64(hdr.Height) > int64(opts.MaxPixels) {
		return content.ContentBlock{}, ErrImageTooLarge
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return content.ContentBlock{}, &ValidationError{Field: "image", Message: "image could not be decoded"}
	}

	out, err := downscaleJPEG(src, opts.MaxDimension)
	if err != nil {
		return content.ContentBlock{}, fmt.Errorf("encode image: %w", err)
	}
	return content.Image(content.ContentTypeJPEG, out), nil
}

func downscaleJPEG(src image.Image, maxSize int) ([]byte, error) {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, errors.New("invalid image dimensions")
	}

	scale := float64(maxSize) / float64(max(width, height))
	if scale > 1 {
		scale = 1
	}
	newW := max(int(float64(width)*scale), 1)
	newH := max(int(float64(height)*scale), 1)

	// JPEG has no alpha; flatten onto white.
	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
