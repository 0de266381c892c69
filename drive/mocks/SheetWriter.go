package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type SheetWriter struct {
	mock.Mock
}

func (m *SheetWriter) WriteSheet(ctx context.Context, name string, rows [][]interface{}) error {
	args := m.Called(ctx, name, rows)
	return args.Error(0)
}
