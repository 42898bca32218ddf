package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/viralforge/order-gateway/internal/domain"
)

// maxBodyBytes bounds inbound order documents. Orders past this size are
// rejected before any configuration lookup happens.
const maxBodyBytes = 10 << 20

func (h *Handler) receiveOrder(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		logHTTPOperationError(r.Context(), "receive_order", http.StatusBadRequest, "failed to read request body", err)
		writeReceiveFailure(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if len(payload) > maxBodyBytes {
		logHTTPOperationError(r.Context(), "receive_order", http.StatusRequestEntityTooLarge, "request body too large", nil)
		writeReceiveFailure(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	if len(payload) == 0 {
		logHTTPOperationError(r.Context(), "receive_order", http.StatusBadRequest, "empty request body", nil)
		writeReceiveFailure(w, http.StatusBadRequest, "empty request body")
		return
	}

	result, err := h.service.ReceiveOrder(r.Context(), payload)
	if err != nil {
		statusCode, developerMessage := mapDomainError(err)
		logHTTPOperationError(r.Context(), "receive_order", statusCode, developerMessage, err)
		writeReceiveFailure(w, statusCode, developerMessage)
		return
	}

	writeReceiveSuccess(w, fmt.Sprintf("Order staged with transaction id %s", result.TransactionID))
}

func mapDomainError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrRoutingKeyRequired):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
