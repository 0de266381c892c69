package mid

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"

	"github.com/doitintl/hello/mixpanel-sheets/framework/web"
	"github.com/doitintl/hello/mixpanel-sheets/internal"
	"github.com/doitintl/hello/mixpanel-sheets/logger"
)

const sentryFlushTimeout = 5 * time.Second

// Panics turns a handler panic into an error, which the Errors middleware
// answers with a 500. The panic reaches sentry tagged with the route.
func Panics() web.Middleware {
	f := func(after web.Handler) web.Handler {
		h := func(ctx *gin.Context) (err error) {
			v, ok := internal.DataFromContext(ctx)
			if !ok {
				return web.NewShutdownError("web value missing from context")
			}

			defer func() {
				r := recover()
				if r == nil {
					return
				}

				err = fmt.Errorf("panic: %v", r)
				logger.FromContext(ctx).Errorf("%s %s: %s\n%s", ctx.Request.Method, v.Route, err, debug.Stack())

				if hub := sentrygin.GetHubFromContext(ctx); hub != nil {
					hub.WithScope(func(scope *sentry.Scope) {
						setRequestTags(ctx, scope)
						hub.Recover(err)
					})
					hub.Flush(sentryFlushTimeout)
				}
			}()

			return after(ctx)
		}

		return h
	}

	return f
}
