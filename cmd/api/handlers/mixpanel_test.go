package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/doitintl/hello/mixpanel-sheets/framework/web"
	"github.com/doitintl/hello/mixpanel-sheets/logger"
	"github.com/doitintl/hello/mixpanel-sheets/mixpanel"
	"github.com/doitintl/hello/mixpanel-sheets/mixpanel/domain"
	"github.com/doitintl/hello/mixpanel-sheets/mixpanel/exportservice/mocks"
)

func TestMixpanel_ExportToSheets(t *testing.T) {
	var (
		now = time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC)
		cfg = &mixpanel.ExportConfig{APIKey: "key", APISecret: "secret", Queries: mixpanel.DefaultQueries()}

		transportErr = fmt.Errorf("%w: retention responded 502 Bad Gateway", mixpanel.ErrTransport)
	)

	type fields struct {
		service mocks.SheetsExportServiceIface
	}

	tests := []struct {
		name           string
		loadConfig     func(ctx context.Context) (*mixpanel.ExportConfig, error)
		on             func(f *fields, ctx *gin.Context)
		wantStatusCode int
		wantBody       string
		wantFailed     []string
	}{
		{
			name: "partial failure still responds ok",
			on: func(f *fields, ctx *gin.Context) {
				f.service.On("Run", ctx, cfg, now).Return(&domain.Report{Results: []domain.Result{
					{Name: "iOS Video Starts", Endpoint: mixpanel.EndpointSegmentation, Rows: 12},
					{Name: "iOS Retention Curve", Endpoint: mixpanel.EndpointRetention, Err: transportErr, Error: transportErr.Error(), ErrorKind: "transport"},
				}}, nil)
			},
			wantStatusCode: http.StatusOK,
			wantBody: `{"results":[
				{"name":"iOS Video Starts","endpoint":"segmentation","rows":12},
				{"name":"iOS Retention Curve","endpoint":"retention","rows":0,"error":"transport error: retention responded 502 Bad Gateway","errorKind":"transport"}
			]}`,
			wantFailed: []string{"iOS Retention Curve"},
		},
		{
			name: "duplicate names",
			on: func(f *fields, ctx *gin.Context) {
				f.service.On("Run", ctx, cfg, now).Return(nil, fmt.Errorf("%w: %q", mixpanel.ErrDuplicateName, "a"))
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "config load failure",
			loadConfig: func(ctx context.Context) (*mixpanel.ExportConfig, error) {
				return nil, fmt.Errorf("%w: invalid queries file", mixpanel.ErrConfig)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "unexpected failure",
			on: func(f *fields, ctx *gin.Context) {
				f.service.On("Run", ctx, cfg, now).Return(nil, errors.New("boom"))
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ctx, _ := gin.CreateTestContext(w)
			ctx.Request = httptest.NewRequest(http.MethodPost, "/tasks/mixpanel-sheets/export", nil)

			f := &fields{}
			if tt.on != nil {
				tt.on(f, ctx)
			}

			loadConfig := tt.loadConfig
			if loadConfig == nil {
				loadConfig = func(ctx context.Context) (*mixpanel.ExportConfig, error) {
					return cfg, nil
				}
			}

			h := &Mixpanel{
				loggerProvider: logger.FromContext,
				service:        &f.service,
				loadConfig:     loadConfig,
				now:            func() time.Time { return now },
			}

			err := h.ExportToSheets(ctx)
			if err == nil {
				assert.Equal(t, tt.wantStatusCode, w.Code)
				assert.JSONEq(t, tt.wantBody, w.Body.String())

				var failed []string
				for _, qe := range web.QueryErrors(ctx) {
					failed = append(failed, qe.Query)
					assert.ErrorIs(t, qe, mixpanel.ErrTransport)
				}

				assert.Equal(t, tt.wantFailed, failed)
			} else {
				var reqErr *web.Error
				if assert.ErrorAs(t, err, &reqErr) {
					assert.Equal(t, tt.wantStatusCode, reqErr.Status)
					assert.NotContains(t, reqErr.Error(), cfg.APISecret)
				}
			}

			f.service.AssertExpectations(t)
		})
	}
}

func TestMixpanel_ListSheetExports(t *testing.T) {
	now := time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name           string
		on             func(f *mocks.SheetsExportServiceIface, ctx *gin.Context)
		wantStatusCode int
	}{
		{
			name: "lists runs",
			on: func(f *mocks.SheetsExportServiceIface, ctx *gin.Context) {
				f.On("Runs", ctx).Return([]*domain.ExportRun{
					{Name: "iOS Video Starts", Endpoint: "segmentation", Status: domain.ExportStatusSuccess, Rows: 12, Timestamp: now},
				}, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "firestore failure",
			on: func(f *mocks.SheetsExportServiceIface, ctx *gin.Context) {
				f.On("Runs", ctx).Return(nil, errors.New("unavailable"))
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ctx, _ := gin.CreateTestContext(w)
			ctx.Request = httptest.NewRequest(http.MethodGet, "/mixpanel/sheet-exports", nil)

			service := &mocks.SheetsExportServiceIface{}
			tt.on(service, ctx)

			h := &Mixpanel{loggerProvider: logger.FromContext, service: service}

			err := h.ListSheetExports(ctx)
			if err == nil {
				assert.Equal(t, tt.wantStatusCode, w.Code)
				assert.Contains(t, w.Body.String(), `"name":"iOS Video Starts"`)
			} else {
				var reqErr *web.Error
				if assert.ErrorAs(t, err, &reqErr) {
					assert.Equal(t, tt.wantStatusCode, reqErr.Status)
				}
			}

			service.AssertExpectations(t)
		})
	}
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	assert.NoError(t, Health(ctx))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
