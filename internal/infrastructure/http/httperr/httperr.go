// Package httperr maps domain errors onto the {success, data?, error?} JSON
// envelope used by every handler.
package httperr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shortlink-org/shop/oms/internal/domain"
)

// Envelope is the response shape every HTTP handler returns.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   *Body  `json:"error,omitempty"`
}

// Body is the {code, message} error shape.
type Body struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteData writes a successful envelope.
func WriteData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Success: true, Data: data})
}

// WriteError maps err to its domain status code and writes the error
// envelope. Unknown errors map to 500/INTERNAL without leaking details.
func WriteError(w http.ResponseWriter, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		derr = domain.ErrInternal
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(derr.Status)
	_ = json.NewEncoder(w).Encode(Envelope{
		Success: false,
		Error:   &Body{Code: string(derr.Kind), Message: derr.Message},
	})
}
