package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// ErrNotFound is returned when a single-row read matches no rows.
var ErrNotFound = errors.New("row not found")

// noRowsCode is PostgREST's code for a single-object read with zero rows.
const noRowsCode = "PGRST116"

// Error carries the gateway's human-readable message verbatim.
type Error struct {
	Status  int
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// IsAuth reports whether the gateway rejected the credentials or token.
func (e *Error) IsAuth() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

type errorBody struct {
	Message          string          `json:"message"`
	Msg              string          `json:"msg"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
	Code             json.RawMessage `json:"code"`
	ErrorCode        string          `json:"error_code"`
}

func decodeError(status int, raw []byte) error {
	var body errorBody
	_ = json.Unmarshal(raw, &body)

	code := body.ErrorCode
	if code == "" && len(body.Code) > 0 {
		var s string
		if err := json.Unmarshal(body.Code, &s); err == nil {
			code = s
		}
	}

	message := firstNonEmpty(body.Message, body.Msg, body.ErrorDescription, body.Error)
	if message == "" {
		message = strings.TrimSpace(string(raw))
	}
	if message == "" {
		message = http.StatusText(status)
	}

	gwErr := &Error{Status: status, Code: code, Message: message}
	if code == noRowsCode {
		gwErr.cause = ErrNotFound
	}
	return gwErr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
