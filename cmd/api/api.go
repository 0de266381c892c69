package api

import (
	"context"
	"net/http"
	"os"

	"github.com/doitintl/hello/mixpanel-sheets/cmd/api/handlers"
	"github.com/doitintl/hello/mixpanel-sheets/framework/connection"
	"github.com/doitintl/hello/mixpanel-sheets/framework/mid"
	"github.com/doitintl/hello/mixpanel-sheets/framework/web"
	"github.com/doitintl/hello/mixpanel-sheets/logger"
)

// API constructs an api with the needed functionality.
type API struct {
	shutdown chan os.Signal
	log      *logger.Logging
	conn     *connection.Connection
}

func NewAPI(shutdown chan os.Signal, logging *logger.Logging, conn *connection.Connection) *API {
	return &API{
		shutdown,
		logging,
		conn,
	}
}

// Build builds the api endpoints with the needed middlewares, and returns http.Handler interface.
func (a *API) Build() http.Handler {
	loggerProvider := logger.FromContext

	backgroundContext := context.Background()

	// Construct the web.App which holds all routes as well as common Middleware.
	app := web.NewApp(a.shutdown, a.conn, mid.Logger(), mid.Errors(), mid.Panics(), mid.Sentry())

	mixpanelHandler := handlers.NewMixpanel(backgroundContext, loggerProvider, a.conn)

	app.Get("/health", handlers.Health)

	// SCHEDULED OR CLOUD TASKS
	tasksGroup := web.NewGroup(app, "/tasks",
		mid.AuthServiceAccount(mid.GetAllowedCloudJobsEmails()),
	)
	{
		mixpanelSheetsGroup := tasksGroup.NewSubgroup("/mixpanel-sheets")
		{
			mixpanelSheetsGroup.Post("/export", mixpanelHandler.ExportToSheets)
			mixpanelSheetsGroup.Get("/exports", mixpanelHandler.ListSheetExports)
		}
	}

	return app
}
