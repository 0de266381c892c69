package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/doitintl/hello/mixpanel-sheets/framework/web"
)

func Health(ctx *gin.Context) error {
	return web.Respond(ctx, gin.H{"status": "ok"}, http.StatusOK)
}
