package encode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBase64RoundTrip(t *testing.T) {
	original := []byte("hello")
	encoded := EncodeBase64String(original)
	decoded, err := DecodeBase64String(encoded)
	require.NoError(t, err)
	require.Equal(t, original, decoded)
}

func TestDataURL(t *testing.T) {
	url := DataURL("image/jpeg", []byte{0xff, 0xd8, 0xff})
	require.Equal(t, "data:image/jpeg;base64,/9j/", url)

	mediaType, data, err := ParseDataURL(url)
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", mediaType)
	require.Equal(t, []byte{0xff, 0xd8, 0xff}, data)
}

func TestParseDataURLRejectsMalformed(t *testing.T) {
	for _, in := range []string{
		"",
		"https://example.com/a.png",
		"data:image/png,plain",
		"data:image/png;base64",
	} {
		_, _, err := ParseDataURL(in)
		require.ErrorIs(t, err, ErrNotDataURL, in)
	}

	_, _, err := ParseDataURL("data:image/png;base64,!!!")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotDataURL)
}

func TestSplitDataURLNormalizesMediaType(t *testing.T) {
	mediaType, payload, err := SplitDataURL("  data:Image/PNG;base64,AAAA")
	require.NoError(t, err)
	require.Equal(t, "image/png", mediaType)
	require.Equal(t, "AAAA", payload)
}
