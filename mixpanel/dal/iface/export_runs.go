package iface

import (
	"context"

	"github.com/doitintl/hello/mixpanel-sheets/mixpanel/domain"
)

//go:generate mockery --name ExportRuns --output ../mocks --case=underscore
type ExportRuns interface {
	Record(ctx context.Context, run *domain.ExportRun) error
	List(ctx context.Context) ([]*domain.ExportRun, error)
}
