package output

import (
	"encoding/json"

	"github.com/govguide/govguide/internal/guide"
	"github.com/govguide/govguide/internal/store"
)

// JSONFormatter renders results as JSON.
type JSONFormatter struct {
	Indent bool
}

type guideJSON struct {
	Agency   string `json:"agency"`
	Action   string `json:"action"`
	Location string `json:"location,omitempty"`
	Language string `json:"language"`
	*guide.Result
}

// FormatGuide renders a guide as the API response body plus the request echo.
func (f *JSONFormatter) FormatGuide(req guide.Request, result *guide.Result) (string, error) {
	if result == nil {
		return "", nil
	}
	return f.marshal(guideJSON{
		Agency:   req.Agency,
		Action:   req.Action,
		Location: req.Location,
		Language: req.Language,
		Result:   result,
	})
}

// FormatAgencies renders the catalog as a JSON array.
func (f *JSONFormatter) FormatAgencies(agencies []guide.Agency) (string, error) {
	if agencies == nil {
		agencies = []guide.Agency{}
	}
	return f.marshal(agencies)
}

// FormatFeedback renders stored feedback as a JSON array.
func (f *JSONFormatter) FormatFeedback(entries []store.Feedback) (string, error) {
	if entries == nil {
		entries = []store.Feedback{}
	}
	return f.marshal(entries)
}

func (f *JSONFormatter) marshal(v any) (string, error) {
	var (
		data []byte
		err  error
	)

	if f.Indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}
