package mid

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/doitintl/hello/mixpanel-sheets/framework/web"
	"github.com/doitintl/hello/mixpanel-sheets/internal"
	"github.com/doitintl/hello/mixpanel-sheets/logger"
)

// Errors turns a handler error into an ErrorResponse. Request errors below
// 500, such as a bad export configuration, are logged as warnings.
func Errors() web.Middleware {
	f := func(before web.Handler) web.Handler {
		h := func(ctx *gin.Context) error {
			v, ok := internal.DataFromContext(ctx)
			if !ok {
				return web.NewShutdownError("web value missing from context")
			}

			err := before(ctx)
			if err == nil {
				return nil
			}

			log := logger.FromContext(ctx)

			if webErr, ok := err.(*web.Error); ok && webErr.Status < http.StatusInternalServerError {
				log.Warningf("%s %s: rejected (%d): %v", ctx.Request.Method, v.Route, webErr.Status, err)
			} else {
				log.Errorf("%s %s: %v", ctx.Request.Method, v.Route, err)
			}

			if err := web.RespondError(ctx, err); err != nil {
				return err
			}

			// the shutdown error goes back to the base handler.
			if web.IsShutdown(err) {
				return err
			}

			return nil
		}

		return h
	}

	return f
}
