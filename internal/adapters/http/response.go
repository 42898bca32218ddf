package http

import (
	"encoding/json"
	"net/http"
)

// friendlyFailure is the operator-independent message returned to the caller
// on any failure. Diagnostic detail goes to DeveloperMessage and the logs.
const friendlyFailure = "Error Occurred in receiving Order, Our IT Department is notified, Thanks for your patience"

// ReceiveResponse is the wire contract for the receive endpoint. Both the
// success and the failure path use the same envelope.
type ReceiveResponse struct {
	Success          bool   `json:"Success"`
	DeveloperMessage string `json:"DeveloperMessage"`
	FriendlyMessage  string `json:"FriendlyMessage"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeReceiveSuccess(w http.ResponseWriter, developerMessage string) {
	writeJSON(w, http.StatusOK, ReceiveResponse{
		Success:          true,
		DeveloperMessage: developerMessage,
		FriendlyMessage:  "Order received successfully",
	})
}

func writeReceiveFailure(w http.ResponseWriter, statusCode int, developerMessage string) {
	writeJSON(w, statusCode, ReceiveResponse{
		Success:          false,
		DeveloperMessage: developerMessage,
		FriendlyMessage:  friendlyFailure,
	})
}
