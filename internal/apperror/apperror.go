// Package apperror defines the structured errors returned by the chat core.
// Every error carries a machine-readable code, a human-readable message and
// a kind that the transport layers map to their own status classes.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an error independently of any transport.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindBadRequest
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindConflict:
		return "Conflict"
	case KindBadRequest:
		return "BadRequest"
	default:
		return "Internal"
	}
}

// HTTPStatus maps the kind to an HTTP status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is the structured error returned by core operations.
type Error struct {
	Code    string
	Message string
	Kind    Kind
	// Fields holds per-field messages for validation errors.
	Fields map[string][]string
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches another *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Wrap attaches the underlying cause, kept for logs only.
func (e *Error) Wrap(cause error) *Error {
	e.cause = cause
	return e
}

// As extracts the structured error from err. Anything that is not an *Error
// is reported as an internal error with the given fallback code.
func As(err error, fallbackCode string) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(fallbackCode).Wrap(err)
}

// Codes of the chat core.
const (
	CodeChatNotFound      = "Chat.NotFound"
	CodeChatDuplicate     = "Chat.Duplicate"
	CodeUserNotFound      = "User.NotFound"
	CodeUserNotChatMember = "User.Conflict"
	CodeUserDuplicate     = "User.Duplication"
	CodeValidation        = "Validation"
)

func ChatNotFound(chatID string) *Error {
	return &Error{Code: CodeChatNotFound, Kind: KindNotFound, Message: fmt.Sprintf("Chat '%s' not found", chatID)}
}

func ChatDuplicate(participants []string) *Error {
	return &Error{
		Code:    CodeChatDuplicate,
		Kind:    KindConflict,
		Message: fmt.Sprintf("Chat with '%s' participants already exists", strings.Join(participants, ", ")),
	}
}

func UserNotFound(userID string) *Error {
	return &Error{Code: CodeUserNotFound, Kind: KindNotFound, Message: fmt.Sprintf("User '%s' not found", userID)}
}

func UserNotChatMember(userID string) *Error {
	return &Error{Code: CodeUserNotChatMember, Kind: KindConflict, Message: fmt.Sprintf("User '%s' not chat member", userID)}
}

func UserDuplicate(userID string) *Error {
	return &Error{Code: CodeUserDuplicate, Kind: KindConflict, Message: fmt.Sprintf("User '%s' already exist", userID)}
}

// Internal reports a persistence failure. The code names the failed
// operation, e.g. "ChatMessage.Create".
func Internal(code string) *Error {
	return &Error{Code: code, Kind: KindInternal, Message: "Something went wrong"}
}

// Validation reports malformed input with per-field messages.
func Validation(fields map[string][]string) *Error {
	return &Error{Code: CodeValidation, Kind: KindBadRequest, Message: "Validation errors occurred", Fields: fields}
}
