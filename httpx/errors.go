package httpx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/zenrsr/form-craft/log"
)

// Error is the request-level failure taxonomy. Every handler failure maps
// to one of the constructors below; anything unrecognized becomes an
// internal error.
type Error struct {
	Status  int               `json:"-"`
	Code    string            `json:"-"`
	Message string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

func ValidationError(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "validation_error", Message: msg}
}

// FieldValidationError carries per-field messages keyed by composite key,
// the same key scheme responses are stored under.
func FieldValidationError(fields map[string]string) *Error {
	err := ValidationError("Please fill out all required fields.")
	err.Fields = fields
	return err
}

func AuthError(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: "auth_error", Message: msg}
}

func NotFoundError(what string) *Error {
	return &Error{Status: http.StatusNotFound, Code: "not_found", Message: what + " not found."}
}

func DuplicateSubmissionError() *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Code:    "duplicate_submission",
		Message: "You have already submitted this form.",
	}
}

func ConflictError(msg string) *Error {
	return &Error{Status: http.StatusConflict, Code: "conflict", Message: msg}
}

// InternalError logs the underlying cause under its code and hides it
// behind a generic message.
func InternalError(code string, cause error) *Error {
	log.Errorf("%s: %s", code, cause)
	return &Error{
		Status:  http.StatusInternalServerError,
		Code:    code,
		Message: "An internal server error occurred.",
	}
}

// WriteError renders a failure as the JSON error body for its status.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = InternalError("internal", err)
	}
	if e.Status < http.StatusInternalServerError {
		log.Debugf("%s: %s", e.Code, e.Message)
	}
	render.Status(r, e.Status)
	render.JSON(w, r, e)
}

// LogStatus logs an error code at the given level and sends a bare
// response with the status' default text.
func LogStatus(w http.ResponseWriter, status int, level log.Level, code string) {
	log.Log(level, code)
	http.Error(w, http.StatusText(status), status)
}

// LogStatusMsg logs a code and message at the given level and sends the
// formatted message with the given status.
func LogStatusMsg(w http.ResponseWriter, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	http.Error(w, errMsg, status)
}
