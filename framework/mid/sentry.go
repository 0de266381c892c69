package mid

import (
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"

	"github.com/doitintl/hello/mixpanel-sheets/framework/web"
	"github.com/doitintl/hello/mixpanel-sheets/internal"
)

// Sentry event tags.
const (
	tagRoute = "route"
	tagTrace = "trace"
	tagQuery = "query"
)

func setRequestTags(ctx *gin.Context, scope *sentry.Scope) {
	if v, ok := internal.DataFromContext(ctx); ok {
		scope.SetTag(tagRoute, v.Route)
		scope.SetTag(tagTrace, v.TraceID)
	}
}

// captureError reports err to sentry, tagged with the failed query when
// query is set.
func captureError(ctx *gin.Context, err error, query string) {
	hub := sentrygin.GetHubFromContext(ctx)
	if hub == nil {
		return
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelError)
		setRequestTags(ctx, scope)

		if query != "" {
			scope.SetTag(tagQuery, query)
		}

		hub.CaptureException(err)
	})
}

// Sentry reports handler errors with a 5xx status, errors attached to an
// aborted request, and every failed query of an export that responded 200.
func Sentry() web.Middleware {
	f := func(before web.Handler) web.Handler {
		h := func(ctx *gin.Context) error {
			if err := before(ctx); err != nil {
				if webErr, ok := err.(*web.Error); !ok || webErr.Status >= http.StatusInternalServerError {
					captureError(ctx, err, "")
				}

				return err
			}

			for _, qe := range web.QueryErrors(ctx) {
				captureError(ctx, qe.Err, qe.Query)
			}

			if ctx.Writer.Status() >= http.StatusBadRequest {
				if lastErr := ctx.Errors.Last(); lastErr != nil {
					var qe *web.QueryError
					if !errors.As(lastErr.Err, &qe) {
						captureError(ctx, lastErr.Err, "")
					}
				}
			}

			return nil
		}

		return h
	}

	return f
}
