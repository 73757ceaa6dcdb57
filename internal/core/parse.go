package core

import (
	"encoding/json"
	"strings"
)

// ParseModelResponse decodes the raw text returned by the model. It tries a
// strict parse first, then the span between the first '{' and the last '}',
// and finally falls back to an empty object. Unknown labels collapse to
// LabelUndetermined and a missing reply is replaced by ReplyClarification.
func ParseModelResponse(raw string, labels LabelSet) ModelResponse {
	data, ok := decodeObject(raw)
	if !ok {
		if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start >= 0 && end > start {
			data, _ = decodeObject(raw[start : end+1])
		}
	}

	resp := ModelResponse{
		Category: stringField(data, "category"),
		Reply:    stringField(data, "reply"),
	}
	if !labels.Valid(resp.Category) {
		resp.Category = LabelUndetermined
	}
	if strings.TrimSpace(resp.Reply) == "" {
		resp.Reply = ReplyClarification
	}
	return resp
}

func decodeObject(s string) (map[string]any, bool) {
	var data map[string]any
	if err := json.Unmarshal([]byte(s), &data); err != nil || data == nil {
		return nil, false
	}
	return data, true
}

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}
