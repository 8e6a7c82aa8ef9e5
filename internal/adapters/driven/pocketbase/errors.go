package pocketbase

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
)

// apiError is the error body PocketBase returns with non-2xx responses.
type apiError struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

// statusError builds a FetchError for an HTTP error response.
func statusError(status int, body []byte) *domain.FetchError {
	ferr := &domain.FetchError{
		Kind:       domain.KindForStatus(status),
		StatusCode: status,
	}

	var parsed apiError
	if len(body) > 0 && json.Unmarshal(body, &parsed) == nil {
		ferr.Message = parsed.Message
		if len(parsed.Data) > 0 {
			ferr.Data = parsed.Data
		}
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 {
		ferr.Message = text
	}

	if ferr.Message == "" {
		ferr.Message = http.StatusText(status)
	}
	if ferr.Message == "" {
		ferr.Message = string(ferr.Kind)
	}
	return ferr
}

// FieldErrors returns the per-field validation messages carried by a
// validation failure, keyed by field name.
func FieldErrors(ferr *domain.FetchError) map[string]string {
	if ferr == nil || len(ferr.Data) == 0 {
		return nil
	}
	out := make(map[string]string, len(ferr.Data))
	for field, raw := range ferr.Data {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if msg, ok := entry["message"].(string); ok {
			out[field] = msg
		}
	}
	return out
}
