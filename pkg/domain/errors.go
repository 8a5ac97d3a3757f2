package domain

import (
	"errors"
	"fmt"
)

// Error codes in ManagerErrorDomain.
const (
	CodeAppNotInstalled = iota + 1
	CodeActionNotSupported
	CodeInvalidScheme
	CodeInvalidURL
	CodeMalformedResponse
)

// Error is a protocol-level failure. It is what travels in error-Code,
// errorMessage and errorDomain.
type Error struct {
	Domain  string `json:"domain"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: code %d", e.Domain, e.Code)
	}
	return fmt.Sprintf("%s (%s: code %d)", e.Message, e.Domain, e.Code)
}

// Is matches errors sharing the same domain and code, ignoring the message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Domain == t.Domain && e.Code == t.Code
}

// NewError creates an error in ManagerErrorDomain.
func NewError(code int, format string, args ...any) *Error {
	return &Error{
		Domain:  ManagerErrorDomain,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

var (
	// ErrAppNotInstalled is returned when no application handles the target scheme.
	ErrAppNotInstalled = &Error{Domain: ManagerErrorDomain, Code: CodeAppNotInstalled, Message: "app not installed"}

	// ErrActionNotSupported is reported when neither a registered action nor a delegate handles an action.
	ErrActionNotSupported = &Error{Domain: ManagerErrorDomain, Code: CodeActionNotSupported, Message: "action not supported"}

	// ErrInvalidScheme is returned when a response is requested but no callback scheme is configured.
	ErrInvalidScheme = &Error{Domain: ManagerErrorDomain, Code: CodeInvalidScheme, Message: "no callback scheme configured"}

	// ErrInvalidURL is returned when a request cannot be turned into a valid URL.
	ErrInvalidURL = &Error{Domain: ManagerErrorDomain, Code: CodeInvalidURL, Message: "invalid url"}

	// ErrMalformedResponse resolves requests whose response could not be decoded.
	ErrMalformedResponse = &Error{Domain: ManagerErrorDomain, Code: CodeMalformedResponse, Message: "malformed response"}
)

// ErrRecordNotFound is returned by journals when an id is unknown.
var ErrRecordNotFound = errors.New("pending record not found")
