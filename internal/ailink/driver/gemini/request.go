package gemini

import (
	"fmt"
	"strings"

	"github.com/govguide/govguide/internal/ailink/content"
	"github.com/govguide/govguide/internal/ailink/driver"
	"github.com/govguide/govguide/internal/ailink/encode"
)

type generateContentRequest struct {
	SystemInstruction *geminiContent    `json:"systemInstruction,omitempty"`
	Contents          []geminiContent   `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
}

func buildGenerateRequest(req *driver.Request) (string, *generateContentRequest, error) {
	if req == nil {
		return "", nil, fmt.Errorf("request is required")
	}
	if len(req.Messages) == 0 {
		return "", nil, fmt.Errorf("messages are required")
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = DefaultModel
	}

	payload := &generateContentRequest{}
	if s := strings.TrimSpace(req.System); s != "" {
		payload.SystemInstruction = &geminiContent{Parts: []part{{Text: s}}}
	}

	for _, msg := range req.Messages {
		parts, err := convertParts(msg.Content)
		if err != nil {
			return "", nil, err
		}
		payload.Contents = append(payload.Contents, geminiContent{Role: geminiRole(msg.Role), Parts: parts})
	}

	if req.Temperature != nil || req.MaxTokens != nil {
		payload.GenerationConfig = &generationConfig{Temperature: req.Temperature, MaxOutputTokens: req.MaxTokens}
	}
	return model, payload, nil
}

func geminiRole(role string) string {
	if role == "assistant" {
		return "model"
	}
	return "user"
}

func convertParts(blocks []content.ContentBlock) ([]part, error) {
	parts := make([]part, 0, len(blocks))
	for _, block := range blocks {
		switch {
		case block.Type == content.ContentTypeText:
			parts = append(parts, part{Text: block.Text})
		case block.Type.IsImage():
			if len(block.Data) == 0 {
				return nil, fmt.Errorf("image block has no data")
			}
			parts = append(parts, part{InlineData: &inlineData{
				MimeType: string(block.Type),
				Data:     encode.EncodeBase64String(block.Data),
			}})
		default:
			return nil, fmt.Errorf("unsupported content type: %s", block.Type)
		}
	}
	return parts, nil
}
