package common

import (
	"encoding/json"
	"net/http"
)

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"` // field -> failed validation rule
	// SigninURL is set on 401 responses so clients can send the user back to
	// the page they asked for after signing in.
	SigninURL string `json:"signin_url,omitempty"`
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Error: message})
}

// RespondWithAuthRequired rejects an unauthenticated request and records the
// requested path as the post-signin return destination.
func RespondWithAuthRequired(w http.ResponseWriter, r *http.Request, message string) {
	RespondWithJSON(w, http.StatusUnauthorized, ErrorResponse{
		Error:     message,
		SigninURL: "/signin?next=" + r.URL.EscapedPath(),
	})
}

func RespondWithValidationError(w http.ResponseWriter, details map[string]string) {
	RespondWithJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   ErrValidation.Error(),
		Details: details,
	})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
