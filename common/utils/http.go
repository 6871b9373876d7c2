package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/LexiconIndonesia/dqaas-registration-service/common"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/models"
)

// maxBodyBytes caps request bodies decoded by DecodeJSON
const maxBodyBytes = 1 << 20

// WriteJSON writes a JSON response with the given status code and data
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// WriteError writes a JSON response with the given status code and error message
func WriteError(w http.ResponseWriter, statusCode int, errorMessage string) {
	WriteJSON(w, statusCode, models.ErrorResponse{
		Error: http.StatusText(statusCode),
		Msg:   errorMessage,
	})
}

// DecodeJSON decodes a request body into dst. Fields already set on dst are
// kept when the body omits them. Errors wrap common.ErrInvalidRegistration.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return fmt.Errorf("%w: request body is empty", common.ErrInvalidRegistration)
		}
		return fmt.Errorf("%w: malformed JSON: %v", common.ErrInvalidRegistration, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: request body must hold a single JSON object", common.ErrInvalidRegistration)
	}
	return nil
}
