// Package content defines the provider-neutral message model.
package content

// ContentType represents supported content types using IANA media types.
type ContentType string

const (
	ContentTypeText ContentType = "text/plain"
	ContentTypeJPEG ContentType = "image/jpeg"
	ContentTypePNG  ContentType = "image/png"
)

// IsImage reports whether the content type is an image media type.
func (t ContentType) IsImage() bool {
	return t == ContentTypeJPEG || t == ContentTypePNG
}

// ContentBlock represents a single piece of content.
//
// Text blocks use Text. Image blocks carry the raw encoded bytes in Data;
// drivers encode them in whatever form their API expects.
type ContentBlock struct {
	Type ContentType `json:"type"`
	Text string      `json:"text,omitempty"`
	Data []byte      `json:"data,omitempty"`
}

// Message represents a chat message.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// Text returns a text block.
func Text(s string) ContentBlock {
	return ContentBlock{Type: ContentTypeText, Text: s}
}

// Image returns an image block.
func Image(mediaType ContentType, data []byte) ContentBlock {
	return ContentBlock{Type: mediaType, Data: data}
}

// UserMessage builds a user message from blocks.
func UserMessage(blocks ...ContentBlock) Message {
	return Message{Role: "user", Content: blocks}
}
