package mid

import (
	"github.com/gin-gonic/gin"

	"github.com/doitintl/hello/mixpanel-sheets/framework/web"
	"github.com/doitintl/hello/mixpanel-sheets/internal"
	"github.com/doitintl/hello/mixpanel-sheets/logger"
)

const (
	healthCheckExcludePath = "/health"
)

// Logger writes the start and the outcome of a request:
// (200) POST /tasks/mixpanel-sheets/export -> IP ADDR (latency)
// An export that answered 200 with failed queries is logged as a warning.
func Logger() web.Middleware {
	f := func(before web.Handler) web.Handler {
		h := func(ctx *gin.Context) error {
			v, ok := internal.DataFromContext(ctx)
			if !ok {
				return web.NewShutdownError("web value missing from context")
			}

			if v.Route == healthCheckExcludePath {
				return before(ctx)
			}

			log := logger.FromContext(ctx)

			log.Printf("started : %s %s -> %s", ctx.Request.Method, v.Route, ctx.Request.RemoteAddr)

			err := before(ctx)

			switch failed := web.QueryErrors(ctx); {
			case err != nil:
				log.Printf("ERROR: %s", err)
			case len(failed) > 0:
				log.Warningf("%d queries failed, first: %s", len(failed), failed[0])
			case v.Failed():
				if lastErr := ctx.Errors.Last(); lastErr != nil {
					log.Errorf("request failed: %s", lastErr)
				}
			}

			log.Printf("completed : (%d) %s %s -> %s (%s)",
				v.StatusCode, ctx.Request.Method, v.Route, ctx.Request.RemoteAddr, v.Elapsed(),
			)

			return err
		}

		return h
	}

	return f
}
