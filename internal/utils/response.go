package utils

import (
	"encoding/json"
	"net/http"

	"github.com/madhava-poojari/learnsphere/internal/models"
)

// WriteJSONResponse writes the standard APIResponse envelope.
func WriteJSONResponse(w http.ResponseWriter, status int, success bool, message string, data interface{}, errPayload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(models.APIResponse{
		Success: success,
		Message: message,
		Data:    data,
		Error:   errPayload,
	})
}

// ParseJSON decodes the request body into dst, rejecting unknown fields.
func ParseJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
