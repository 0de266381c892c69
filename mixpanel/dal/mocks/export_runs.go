package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/doitintl/hello/mixpanel-sheets/mixpanel/domain"
)

type ExportRuns struct {
	mock.Mock
}

func (m *ExportRuns) Record(ctx context.Context, run *domain.ExportRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *ExportRuns) List(ctx context.Context) ([]*domain.ExportRun, error) {
	args := m.Called(ctx)

	var runs []*domain.ExportRun
	if v := args.Get(0); v != nil {
		runs = v.([]*domain.ExportRun)
	}

	return runs, args.Error(1)
}
