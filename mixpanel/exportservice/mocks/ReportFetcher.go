package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/doitintl/hello/mixpanel-sheets/mixpanel"
)

type ReportFetcher struct {
	mock.Mock
}

func (m *ReportFetcher) Get(ctx context.Context, endpoint mixpanel.Endpoint, queryString string) ([]byte, error) {
	args := m.Called(ctx, endpoint, queryString)

	var body []byte
	if v := args.Get(0); v != nil {
		body = v.([]byte)
	}

	return body, args.Error(1)
}
