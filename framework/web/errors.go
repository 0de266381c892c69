package web

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the form used for API responses from failures in the API.
type ErrorResponse struct {
	Error string `json:"error"`
	Trace string `json:"trace,omitempty"`
}

// Error is used to pass an error during the request through the
// application with web specific context.
type Error struct {
	Err    error
	Status int
}

// NewRequestError wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewRequestError(err error, status int) error {
	return &Error{err, status}
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (err *Error) Error() string {
	return err.Err.Error()
}

// QueryError is the failure of one query of an export that still responds
// 200. Handlers attach it with AddQueryError so the middlewares can log and
// report it per query.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return e.Query + ": " + e.Err.Error()
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// AddQueryError attaches a failed query to the request.
func AddQueryError(ctx *gin.Context, query string, err error) {
	_ = ctx.Error(&QueryError{Query: query, Err: err})
}

// QueryErrors returns the failed queries attached to the request.
func QueryErrors(ctx *gin.Context) []*QueryError {
	var errs []*QueryError

	for _, e := range ctx.Errors {
		var qe *QueryError
		if errors.As(e.Err, &qe) {
			errs = append(errs, qe)
		}
	}

	return errs
}

// shutdown is a type used to help with the graceful termination of the service.
type shutdown struct {
	Message string
}

// NewShutdownError returns an error that causes the framework to signal
// a graceful shutdown.
func NewShutdownError(message string) error {
	return &shutdown{message}
}

// Error is the implementation of the error interface.
func (s *shutdown) Error() string {
	return s.Message
}

// IsShutdown checks to see if the shutdown error is contained
// in the specified error value.
func IsShutdown(err error) bool {
	if _, ok := err.(*shutdown); ok {
		return true
	}

	return false
}
