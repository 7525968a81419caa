package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
)

type apiError struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, apiError{
		Status:  "error",
		Code:    code,
		Message: message,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	return dec.Decode(dst)
}

// writeDecodeError answers a body that failed to decode. A field of the
// wrong type (a number where text is expected) is an input error rather
// than malformed JSON.
func writeDecodeError(w http.ResponseWriter, err error) {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "field "+typeErr.Field+" must be a string")
		return
	}
	writeError(w, http.StatusBadRequest, "INVALID_JSON", "request body must be JSON")
}
