package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a transport failure.
type Kind string

const (
	// KindNetwork means no response was received.
	KindNetwork Kind = "network"
	// KindTimeout means the request ceiling or the caller's deadline elapsed.
	KindTimeout Kind = "timeout"
	// KindServer means the server answered with a non-2xx status.
	KindServer Kind = "server"
	// KindMalformed means a 2xx body could not be decoded.
	KindMalformed Kind = "malformed"
)

// Error is the single error type returned by Client. It never wraps an unclassified failure.
type Error struct {
	Kind   Kind
	Method string
	Path   string
	Status int
	// Reason is the server's machine-readable reason, when it sent one.
	Reason string
	Body   []byte
	Cause  error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %s", e.Method, e.Path, e.Kind)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	} else if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// IsKind reports whether err is a gateway error of kind k.
func IsKind(err error, k Kind) bool {
	ge, ok := AsError(err)
	return ok && ge.Kind == k
}

// IsStatus reports whether err is a server error carrying one of the given statuses.
func IsStatus(err error, statuses ...int) bool {
	ge, ok := AsError(err)
	if !ok || ge.Kind != KindServer {
		return false
	}
	for _, s := range statuses {
		if ge.Status == s {
			return true
		}
	}
	return false
}

// ReasonOf returns the server-provided reason carried by err, or "".
func ReasonOf(err error) string {
	if ge, ok := AsError(err); ok {
		return ge.Reason
	}
	return ""
}

// reasonFields are checked in order for a machine-readable reason.
var reasonFields = []string{"detail", "reason", "error", "message"}

// extractReason pulls a reason string out of a JSON error body.
// FastAPI validation errors carry detail as a list of objects with a msg field.
func extractReason(body []byte) string {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return ""
	}
	for _, field := range reasonFields {
		raw, ok := doc[field]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) == nil && s != "" {
			return s
		}
		var list []struct {
			Msg string `json:"msg"`
		}
		if json.Unmarshal(raw, &list) == nil && len(list) > 0 && list[0].Msg != "" {
			return list[0].Msg
		}
	}
	return ""
}
