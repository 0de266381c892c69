package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/doitintl/hello/mixpanel-sheets/internal"
)

// Respond sends data as JSON with statusCode and records the status for the
// middlewares. Nil data or 204 sends headers only.
func Respond(ctx *gin.Context, data interface{}, statusCode int) error {
	if v, ok := internal.DataFromContext(ctx); ok {
		v.StatusCode = statusCode
	}

	if data == nil || statusCode == http.StatusNoContent {
		ctx.Status(statusCode)
		return nil
	}

	ctx.JSON(statusCode, data)

	return nil
}

// RespondError sends err as an ErrorResponse. Request errors keep their
// status and message; anything else is a 500 whose message stays in the logs.
// The trace lets the scheduler's failure be matched to the request logs.
func RespondError(ctx *gin.Context, err error) error {
	status := http.StatusInternalServerError
	resp := ErrorResponse{
		Error: http.StatusText(status),
	}

	if webErr, ok := err.(*Error); ok {
		status = webErr.Status
		resp.Error = webErr.Err.Error()
	}

	if v, ok := internal.DataFromContext(ctx); ok {
		resp.Trace = v.TraceID
	}

	return Respond(ctx, resp, status)
}
