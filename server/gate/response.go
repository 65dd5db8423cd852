package gate

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Handler is a business handler behind the endpoint gate. body is the decoded schema
// value, or nil when the endpoint has no schema.
type Handler func(r *http.Request, body any) (*Response, error)

// Response is written as JSON. A nil Body writes only the status.
type Response struct {
	Status int
	Body   any
	Header http.Header
}

// JSON is a shorthand for a Response with a body.
func JSON(status int, body any) *Response {
	return &Response{Status: status, Body: body}
}

func writeResponse(w http.ResponseWriter, resp *Response) {
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	for k, vals := range resp.Header {
		for _, v := range vals {
			w.Header().Add(k, v)
		}
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	if resp.Body == nil {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, resp.Body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("failed to encode response")
	}
}
