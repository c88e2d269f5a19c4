package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxJSONBody caps request bodies decoded by DecodeJSON.
const MaxJSONBody = 64 << 10

var ErrBadJSON = errors.New("httpx: malformed JSON body")

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the {error, error_description} body used by every
// non-validation failure.
func WriteError(w http.ResponseWriter, code int, errCode, desc string) {
	WriteJSON(w, code, map[string]string{
		"error":             errCode,
		"error_description": desc,
	})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// DecodeJSON reads a single JSON object from the request body into v.
// Unknown fields are tolerated; trailing garbage is not.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxJSONBody))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadJSON, err)
	}
	if dec.More() {
		return ErrBadJSON
	}
	return nil
}
