package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/doitintl/hello/mixpanel-sheets/drive"
	"github.com/doitintl/hello/mixpanel-sheets/framework/connection"
	"github.com/doitintl/hello/mixpanel-sheets/framework/web"
	"github.com/doitintl/hello/mixpanel-sheets/logger"
	"github.com/doitintl/hello/mixpanel-sheets/mixpanel"
	"github.com/doitintl/hello/mixpanel-sheets/mixpanel/dal"
	"github.com/doitintl/hello/mixpanel-sheets/mixpanel/exportservice"
	mxpIface "github.com/doitintl/hello/mixpanel-sheets/mixpanel/exportservice/iface"
)

type Mixpanel struct {
	loggerProvider logger.Provider
	service        mxpIface.SheetsExportServiceIface
	loadConfig     func(ctx context.Context) (*mixpanel.ExportConfig, error)
	now            func() time.Time
}

func NewMixpanel(ctx context.Context, loggerProvider logger.Provider, conn *connection.Connection) *Mixpanel {
	clientConfig, err := exportservice.LoadClientConfig()
	if err != nil {
		panic(err)
	}

	sheetsConfig, err := exportservice.LoadSheetsConfig(ctx, exportservice.SecretManagerSheetsCredentials)
	if err != nil {
		panic(err)
	}

	writer, err := drive.NewGoogleSheetsService(ctx, sheetsConfig)
	if err != nil {
		panic(err)
	}

	service := exportservice.NewSheetsExportService(
		loggerProvider,
		mixpanel.NewClient(clientConfig),
		writer,
		dal.NewExportRunsFirestore(conn.Firestore),
	)

	return &Mixpanel{
		loggerProvider: loggerProvider,
		service:        service,
		loadConfig: func(ctx context.Context) (*mixpanel.ExportConfig, error) {
			return exportservice.LoadExportConfig(ctx, exportservice.SecretManagerCredentials)
		},
		now: time.Now,
	}
}

// ExportToSheets runs every configured query and writes the results to the
// spreadsheet. Per query failures are listed in the response.
func (h *Mixpanel) ExportToSheets(ctx *gin.Context) error {
	l := h.loggerProvider(ctx)

	cfg, err := h.loadConfig(ctx)
	if err != nil {
		return translateExportError(err)
	}

	report, err := h.service.Run(ctx, cfg, h.now())
	if err != nil {
		return translateExportError(err)
	}

	if err := exportservice.ReportErr(report); err != nil {
		l.Warningf("mixpanel sheets export finished with failures: %s", err)
	}

	for _, r := range report.Results {
		if r.Failed() {
			web.AddQueryError(ctx, r.Name, r.Err)
		}
	}

	return web.Respond(ctx, report, http.StatusOK)
}

// ListSheetExports returns the last recorded outcome of every query.
func (h *Mixpanel) ListSheetExports(ctx *gin.Context) error {
	runs, err := h.service.Runs(ctx)
	if err != nil {
		return web.NewRequestError(err, http.StatusInternalServerError)
	}

	return web.Respond(ctx, runs, http.StatusOK)
}

func translateExportError(err error) error {
	if errors.Is(err, mixpanel.ErrConfig) || errors.Is(err, mixpanel.ErrDuplicateName) {
		return web.NewRequestError(err, http.StatusBadRequest)
	}

	return web.NewRequestError(err, http.StatusInternalServerError)
}
