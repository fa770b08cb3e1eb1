package mockserver

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrorResponse is the body of every non-200 response, in the shape the
// real Mau server uses.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Detail: msg})
}

func writeInternal(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, "internal error")
}

// ruleError is a request rejected by a room or game rule.
type ruleError struct {
	status int
	msg    string
}

func (e *ruleError) Error() string { return e.msg }

func reject(status int, msg string) error {
	return &ruleError{status: status, msg: msg}
}

// writeFailure maps a rule rejection to its status code and anything else
// to a 500.
func writeFailure(w http.ResponseWriter, err error) {
	var re *ruleError
	if errors.As(err, &re) {
		writeError(w, re.status, re.msg)
		return
	}
	writeInternal(w)
}
