package guide

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/govguide/govguide/internal/ailink/content"
	"github.com/govguide/govguide/internal/ailink/encode"
)

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.NRGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return encode.DataURL("image/png", buf.Bytes())
}

func TestPrepareImageDownscalesToJPEG(t *testing.T) {
	block, err := PrepareImage(pngDataURL(t, 2000, 500), ImageOptions{MaxDimension: 400})
	require.NoError(t, err)
	require.Equal(t, content.ContentTypeJPEG, block.Type)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(block.Data))
	require.NoError(t, err)
	require.Equal(t, 400, cfg.Width)
	require.Equal(t, 100, cfg.Height)
}

func TestPrepareImageKeepsSmallImages(t *testing.T) {
	block, err := PrepareImage(pngDataURL(t, 32, 16), ImageOptions{})
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(block.Data))
	require.NoError(t, err)
	require.Equal(t, 32, cfg.Width)
	require.Equal(t, 16, cfg.Height)
}

func TestPrepareImageRejects(t *testing.T) {
	var verr *ValidationError

	_, err := PrepareImage("https://example.com/form.png", ImageOptions{})
	require.ErrorAs(t, err, &verr)

	_, err = PrepareImage("data:application/pdf;base64,JVBERi0=", ImageOptions{})
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Message, "application/pdf")

	_, err = PrepareImage("data:image/png;base64,bm90IGFuIGltYWdl", ImageOptions{})
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Message, "decoded")

	big := "data:image/png;base64," + strings.Repeat("A", 2048)
	_, err = PrepareImage(big, ImageOptions{MaxBytes: 1024})
	require.ErrorIs(t, err, ErrImageTooLarge)
}

// pngHeader returns a PNG holding only an IHDR chunk that declares w x h.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 0, 17)
	ihdr = append(ihdr, "IHDR"...)
	ihdr = binary.BigEndian.AppendUint32(ihdr, w)
	ihdr = binary.BigEndian.AppendUint32(ihdr, h)
	ihdr = append(ihdr, 8, 0, 0, 0, 0) // 8-bit gray

	out := []byte("\x89PNG\r\n\x1a\n")
	out = binary.BigEndian.AppendUint32(out, 13)
	out = append(out, ihdr...)
	return binary.BigEndian.AppendUint32(out, crc32.ChecksumIEEE(ihdr))
}

func TestPrepareImageRejectsOversizedDimensions(t *testing.T) {
	raw := pngHeader(12000, 12000)
	cfg, err := png.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, 12000, cfg.Width)

	_, err = PrepareImage(encode.DataURL("image/png", raw), ImageOptions{})
	require.ErrorIs(t, err, ErrImageTooLarge)
}

func TestPrepareImagePixelBudget(t *testing.T) {
	_, err := PrepareImage(pngDataURL(t, 100, 100), ImageOptions{MaxPixels: 9_999})
	require.ErrorIs(t, err, ErrImageTooLarge)

	_, err = PrepareImage(pngDataURL(t, 100, 100), ImageOptions{MaxPixels: 10_000})
	require.NoError(t, err)
}
