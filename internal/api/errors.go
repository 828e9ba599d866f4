package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Kind classifies a failed call.
type Kind int

const (
	// KindTransport covers network failures and timeouts alike.
	KindTransport Kind = iota + 1
	// KindStatus is a non-success HTTP status.
	KindStatus
	// KindDecode is a success status with a body that could not be read.
	KindDecode
	// KindInvalid is a call refused before any request was sent.
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is.
var (
	ErrTransport = errors.New("transport failure")
	ErrStatus    = errors.New("unsuccessful status")
	ErrDecode    = errors.New("undecodable response")
	ErrInvalid   = errors.New("invalid request")
)

// Error is returned by every Client call that fails. Message is the text a
// caller shows; it is the backend's own message when the error body matched
// the error schema.
type Error struct {
	Op        string
	Kind      Kind
	Status    int
	Message   string
	RequestID string
	Err       error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrStatus:
		return e.Kind == KindStatus
	case ErrDecode:
		return e.Kind == KindDecode
	case ErrInvalid:
		return e.Kind == KindInvalid
	}
	return false
}

// errorSchema is the only error body shape whose message is trusted.
var errorSchema = jsonschema.MustCompileString("error-response.json", `{
	"type": "object",
	"required": ["error"],
	"properties": {
		"error": {"type": "string", "minLength": 1}
	}
}`)

// backendMessage extracts the error text from a body matching errorSchema.
func backendMessage(body []byte) (string, bool) {
	var doc any
	if err := codec.Unmarshal(body, &doc); err != nil {
		return "", false
	}
	if err := errorSchema.Validate(doc); err != nil {
		return "", false
	}
	msg, ok := doc.(map[string]any)["error"].(string)
	return msg, ok
}

func statusError(op string, status int, body []byte, requestID string) *Error {
	e := &Error{Op: op, Kind: KindStatus, Status: status, RequestID: requestID}
	if msg, ok := backendMessage(body); ok {
		e.Message = msg
	} else {
		e.Message = fmt.Sprintf("%s (HTTP %d %s)", genericMessage(op), status, http.StatusText(status))
	}
	return e
}

func invalidError(op, reason string) *Error {
	return &Error{Op: op, Kind: KindInvalid, Message: genericMessage(op) + ": " + reason}
}

func genericMessage(op string) string {
	switch op {
	case OpList:
		return "Failed to fetch todos"
	case OpUpcoming:
		return "Failed to fetch upcoming todos"
	case OpCreate:
		return "Failed to add todo"
	case OpUpdate:
		return "Failed to update todo"
	case OpDelete:
		return "Failed to delete todo"
	default:
		return "Request failed"
	}
}
