package common

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

type ErrorResponse struct {
	Error  string       `json:"error"`
	Errors []FieldError `json:"errors,omitempty"`
}

// MessageResponse is the `{msg: ...}` body used by delete and logout.
type MessageResponse struct {
	Msg string `json:"msg"`
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Error: message})
}

// RespondWithErr writes err using the status from HTTPStatusFromError.
// Validation errors keep their field list and server errors are logged and
// replaced with GenericServerMessage.
func RespondWithErr(w http.ResponseWriter, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		RespondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: verr.Error(), Errors: verr.Fields})
		return
	}
	code := HTTPStatusFromError(err)
	if code >= http.StatusInternalServerError {
		log.Printf("ERROR: %v", err)
	}
	RespondWithError(w, code, PublicMessage(err))
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
