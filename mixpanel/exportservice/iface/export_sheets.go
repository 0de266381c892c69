package iface

import (
	"context"
	"time"

	"github.com/doitintl/hello/mixpanel-sheets/mixpanel"
	"github.com/doitintl/hello/mixpanel-sheets/mixpanel/domain"
)

// ReportFetcher performs a signed GET against a Mixpanel report endpoint.
type ReportFetcher interface {
	Get(ctx context.Context, endpoint mixpanel.Endpoint, queryString string) ([]byte, error)
}

type SheetsExportServiceIface interface {
	Run(ctx context.Context, cfg *mixpanel.ExportConfig, now time.Time) (*domain.Report, error)
	Runs(ctx context.Context) ([]*domain.ExportRun, error)
}
