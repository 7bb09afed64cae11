package common

import (
	"encoding/json"
	"net/http"

	apperrors "pm-backend/pkg/errors"

	"go.uber.org/zap"
)

// DataEnvelope is the success response body: {"data": ...}
type DataEnvelope struct {
	Data interface{} `json:"data"`
}

// MessageEnvelope is the failure response body: {"message": ...}
type MessageEnvelope struct {
	Message string `json:"message"`
}

// RespondJSON sends a success response wrapped in the data envelope
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(DataEnvelope{Data: data})
}

// RespondMessage sends an error response with the given message
func RespondMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(MessageEnvelope{Message: message})
}

// RespondError maps an error to its HTTP status and message. Errors that are
// not part of the application taxonomy are logged with their cause and
// surfaced as a generic internal error so no internal detail leaks.
func RespondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		logger.Error("unclassified error", zap.Error(err))
		RespondMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	switch appErr.Type {
	case apperrors.ErrorTypeInternal, apperrors.ErrorTypeDatabase:
		logger.Error("internal error", zap.Error(appErr))
		RespondMessage(w, http.StatusInternalServerError, "Internal server error")
	default:
		RespondMessage(w, appErr.HTTPStatus, appErr.Message)
	}
}

// ParseJSONBody parses a JSON request body with a size limit
func ParseJSONBody(r *http.Request, v interface{}, maxBytes int64) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	return decoder.Decode(v)
}
