// Package response writes the uniform JSON envelope every endpoint returns.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/dom/videotube/internal/domain"
	"go.uber.org/zap"
)

// Envelope is the success body.
type Envelope struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// ErrorEnvelope is the failure body.
type ErrorEnvelope struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
	Errors     []string    `json:"errors"`
}

func JSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

func Success(w http.ResponseWriter, status int, data interface{}, message string) {
	JSON(w, status, Envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// Error classifies err and writes the error envelope. Unclassified errors
// are logged and reported as a generic 500.
func Error(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	status := domain.StatusCode(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.String("op", op), zap.Error(err))
	} else {
		log.Debug("request rejected", zap.String("op", op), zap.Int("status", status), zap.Error(err))
	}

	JSON(w, status, ErrorEnvelope{
		StatusCode: status,
		Message:    domain.Message(err),
		Success:    false,
		Errors:     []string{},
	})
}
