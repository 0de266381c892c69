package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/doitintl/hello/mixpanel-sheets/mixpanel"
	"github.com/doitintl/hello/mixpanel-sheets/mixpanel/domain"
)

type SheetsExportServiceIface struct {
	mock.Mock
}

func (m *SheetsExportServiceIface) Run(ctx context.Context, cfg *mixpanel.ExportConfig, now time.Time) (*domain.Report, error) {
	args := m.Called(ctx, cfg, now)

	var report *domain.Report
	if v := args.Get(0); v != nil {
		report = v.(*domain.Report)
	}

	return report, args.Error(1)
}

func (m *SheetsExportServiceIface) Runs(ctx context.Context) ([]*domain.ExportRun, error) {
	args := m.Called(ctx)

	var runs []*domain.ExportRun
	if v := args.Get(0); v != nil {
		runs = v.([]*domain.ExportRun)
	}

	return runs, args.Error(1)
}
