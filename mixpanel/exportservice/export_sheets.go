package exportservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/doitintl/hello/mixpanel-sheets/drive"
	"github.com/doitintl/hello/mixpanel-sheets/logger"
	"github.com/doitintl/hello/mixpanel-sheets/mixpanel"
	dalIface "github.com/doitintl/hello/mixpanel-sheets/mixpanel/dal/iface"
	"github.com/doitintl/hello/mixpanel-sheets/mixpanel/domain"
	"github.com/doitintl/hello/mixpanel-sheets/mixpanel/exportservice/iface"
)

const (
	errorPrefix = "mixpanel sheets export - "

	defaultConcurrency = 1
)

// Error kinds reported per query.
const (
	ErrorKindConfig            = "config"
	ErrorKindTransport         = "transport"
	ErrorKindMalformedResponse = "malformed_response"
	ErrorKindDuplicateName     = "duplicate_name"
	ErrorKindSheetWrite        = "sheet_write"
	ErrorKindUnknown           = "unknown"
)

type SheetsExportService struct {
	loggerProvider logger.Provider
	fetcher        iface.ReportFetcher
	writer         drive.SheetWriter
	runs           dalIface.ExportRuns
}

// NewSheetsExportService returns the query runner. runs may be nil, in which
// case outcomes are not recorded.
func NewSheetsExportService(
	loggerProvider logger.Provider,
	fetcher iface.ReportFetcher,
	writer drive.SheetWriter,
	runs dalIface.ExportRuns,
) *SheetsExportService {
	return &SheetsExportService{
		loggerProvider: loggerProvider,
		fetcher:        fetcher,
		writer:         writer,
		runs:           runs,
	}
}

// Run validates cfg and exports every query to its sheet. A query failure is
// kept in its Result and never stops the others. Only configuration errors
// abort the run, before any request is sent.
func (s *SheetsExportService) Run(ctx context.Context, cfg *mixpanel.ExportConfig, now time.Time) (*domain.Report, error) {
	l := s.loggerProvider(ctx)
	l.SetLabel(logger.LabelQueries, strconv.Itoa(len(cfg.Queries)))

	if err := cfg.Validate(now); err != nil {
		l.Errorf("%s%s", errorPrefix, err)
		return nil, err
	}

	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}

	report := &domain.Report{
		Results: make([]domain.Result, len(cfg.Queries)),
	}

	var g errgroup.Group

	g.SetLimit(concurrency)

	for i := range cfg.Queries {
		i, q := i, cfg.Queries[i]

		g.Go(func() error {
			report.Results[i] = s.runQuery(ctx, cfg, &q, now)
			return nil
		})
	}

	_ = g.Wait()

	l.Infof("%sexported %d queries, %d failed", errorPrefix, len(report.Results), report.Failed())

	return report, nil
}

func (s *SheetsExportService) runQuery(ctx context.Context, cfg *mixpanel.ExportConfig, q *mixpanel.NamedQuery, now time.Time) domain.Result {
	l := s.loggerProvider(ctx).With(map[string]string{
		logger.LabelQuery:    q.Name,
		logger.LabelEndpoint: string(q.Endpoint),
	})

	result := domain.Result{
		Name:     q.Name,
		Endpoint: q.Endpoint,
	}

	rows, err := s.exportQuery(ctx, cfg, q, now)
	if err != nil {
		result.Err = err
		result.Error = err.Error()
		result.ErrorKind = ErrorKind(err)

		l.Errorf("%squery failed (%s): %s", errorPrefix, result.ErrorKind, err)
	} else {
		result.Rows = rows

		l.Infof("%swrote %d rows", errorPrefix, rows)
	}

	s.recordRun(ctx, l, &result, now)

	return result
}

// exportQuery returns the number of data rows written to the sheet.
func (s *SheetsExportService) exportQuery(ctx context.Context, cfg *mixpanel.ExportConfig, q *mixpanel.NamedQuery, now time.Time) (int, error) {
	spec, err := q.Spec.Resolve(now)
	if err != nil {
		return 0, err
	}

	qs := mixpanel.BuildSignedQueryString(cfg.APIKey, cfg.APISecret, now.UnixMilli(), spec)

	body, err := s.fetcher.Get(ctx, q.Endpoint, qs)
	if err != nil {
		return 0, err
	}

	table, err := mixpanel.Flatten(q.Endpoint, body)
	if err != nil {
		return 0, err
	}

	if err := s.writer.WriteSheet(ctx, q.Name, table.Values()); err != nil {
		return 0, err
	}

	return len(table.Rows), nil
}

func (s *SheetsExportService) recordRun(ctx context.Context, l logger.ILogger, result *domain.Result, now time.Time) {
	if s.runs == nil {
		return
	}

	run := &domain.ExportRun{
		Name:      result.Name,
		Endpoint:  string(result.Endpoint),
		Status:    domain.ExportStatusSuccess,
		Rows:      result.Rows,
		Timestamp: now,
	}

	if result.Failed() {
		run.Status = domain.ExportStatusFailed
		run.Error = result.Error
		run.ErrorKind = result.ErrorKind
	}

	if err := s.runs.Record(ctx, run); err != nil {
		l.Warningf("%sfailed to record run: %s", errorPrefix, err)
	}
}

// Runs lists the last recorded outcome of every query.
func (s *SheetsExportService) Runs(ctx context.Context) ([]*domain.ExportRun, error) {
	if s.runs == nil {
		return []*domain.ExportRun{}, nil
	}

	return s.runs.List(ctx)
}

// ErrorKind classifies an export error.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, mixpanel.ErrDuplicateName):
		return ErrorKindDuplicateName
	case errors.Is(err, mixpanel.ErrConfig):
		return ErrorKindConfig
	case errors.Is(err, mixpanel.ErrTransport):
		return ErrorKindTransport
	case errors.Is(err, mixpanel.ErrMalformedResponse):
		return ErrorKindMalformedResponse
	case errors.Is(err, drive.ErrSheetWrite):
		return ErrorKindSheetWrite
	default:
		return ErrorKindUnknown
	}
}

// ReportErr aggregates the failures of a report, nil if every query succeeded.
func ReportErr(report *domain.Report) error {
	var result *multierror.Error

	for i := range report.Results {
		if r := &report.Results[i]; r.Failed() {
			result = multierror.Append(result, fmt.Errorf("%s: %w", r.Name, r.Err))
		}
	}

	return result.ErrorOrNil()
}
