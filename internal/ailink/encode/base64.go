// Package encode converts binary payloads to and from the text forms the
// provider APIs accept.
package encode

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrNotDataURL is returned for strings without a base64 data URL prefix.
var ErrNotDataURL = errors.New("not a base64 data URL")

func DecodeBase64String(value string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(value)
}

func EncodeBase64String(value []byte) string {
	return base64.StdEncoding.EncodeToString(value)
}

// DataURL renders data as data:<mediaType>;base64,<payload>.
func DataURL(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + EncodeBase64String(data)
}

// SplitDataURL returns the media type and the still-encoded payload of a
// base64 data URL without decoding it.
func SplitDataURL(value string) (mediaType, payload string, err error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(value), "data:")
	if !ok {
		return "", "", ErrNotDataURL
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", ErrNotDataURL
	}
	mediaType, ok = strings.CutSuffix(header, ";base64")
	if !ok {
		return "", "", ErrNotDataURL
	}
	return strings.ToLower(strings.TrimSpace(mediaType)), payload, nil
}

// ParseDataURL decodes a base64 data URL.
func ParseDataURL(value string) (string, []byte, error) {
	mediaType, payload, err := SplitDataURL(value)
	if err != nil {
		return "", nil, err
	}
	data, err := DecodeBase64String(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URL: %w", err)
	}
	return mediaType, data, nil
}
