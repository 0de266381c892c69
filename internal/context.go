package internal

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CtxDataKey is how request values or stored/retrieved.
const CtxDataKey = "app-context"

// Data represent state for each request.
type Data struct {
	TraceID    string
	Route      string
	StatusCode int
	Now        time.Time
}

// Elapsed returns the time spent on the request so far.
func (d *Data) Elapsed() time.Duration {
	return time.Since(d.Now)
}

// Failed reports whether the response carries an error status.
func (d *Data) Failed() bool {
	return d.StatusCode >= http.StatusBadRequest
}

// ContextWithData sets a gin.Context with context data.
func ContextWithData(ctx *gin.Context, data *Data) {
	ctx.Set(CtxDataKey, data)
}

// DataFromContext retrieves data from gin.Context.
func DataFromContext(ctx *gin.Context) (*Data, bool) {
	v, ok := ctx.Value(CtxDataKey).(*Data)
	return v, ok
}
