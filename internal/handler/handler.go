package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gokturkdogan/olive-oil-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Warn().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeDomainError maps a service error onto an HTTP response.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal error", logger)
		return
	}

	status := http.StatusBadRequest
	switch domainErr.Code {
	case model.ErrCodeOrderNotFound:
		status = http.StatusNotFound
	case model.ErrCodeConflict:
		status = http.StatusConflict
	case model.ErrCodeGatewayFailure:
		status = http.StatusBadGateway
	case model.ErrCodeInternalError:
		status = http.StatusInternalServerError
	}

	writeError(w, status, domainErr.Code, domainErr.Message, logger)
}

// ownerFromRequest resolves the cart owner from the request. Real
// authentication is an external concern; the engine trusts the identity
// headers its front proxy sets.
func ownerFromRequest(r *http.Request) (model.CartOwner, bool) {
	if raw := r.Header.Get("X-User-ID"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return model.CartOwner{}, false
		}
		return model.CartOwner{UserID: &userID}, true
	}

	if token := r.Header.Get("X-Guest-Token"); token != "" {
		return model.CartOwner{GuestToken: &token}, true
	}

	return model.CartOwner{}, false
}

// pathOrderID parses the {id} path segment as an order id.
func pathOrderID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue("id"))
}
