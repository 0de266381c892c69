package exportservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/doitintl/hello/mixpanel-sheets/common"
	"github.com/doitintl/hello/mixpanel-sheets/drive"
	"github.com/doitintl/hello/mixpanel-sheets/mixpanel"
	"github.com/doitintl/hello/mixpanel-sheets/secretmanager"
)

const (
	apiKeyEnv      = "MIXPANEL_API_KEY"
	apiSecretEnv   = "MIXPANEL_API_SECRET"
	queriesFileEnv = "MIXPANEL_QUERIES_FILE"
	concurrencyEnv = "MIXPANEL_EXPORT_CONCURRENCY"
	baseURLEnv     = "MIXPANEL_BASE_URL"
	timeoutEnv     = "MIXPANEL_HTTP_TIMEOUT"
	spreadsheetEnv = "SHEETS_SPREADSHEET_ID"
	insertAtEnv    = "SHEETS_INSERT_AT"

	defaultInsertSheetsAt = 5
)

var ErrMissingSpreadsheet = errors.New("missing spreadsheet id")

type credentials struct {
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
}

// CredentialsSource returns the Mixpanel api key and secret.
type CredentialsSource func(ctx context.Context) (apiKey, apiSecret string, err error)

// SecretManagerCredentials reads the mixpanel secret.
func SecretManagerCredentials(ctx context.Context) (string, string, error) {
	var creds credentials

	if err := secretmanager.DecodeSecretLatestVersion(ctx, secretmanager.SecretMixpanel, &creds); err != nil {
		return "", "", err
	}

	return creds.APIKey, creds.APISecret, nil
}

// LoadExportConfig assembles the configuration of a run from the environment.
// Credentials missing from the environment are read from source.
func LoadExportConfig(ctx context.Context, source CredentialsSource) (*mixpanel.ExportConfig, error) {
	cfg := &mixpanel.ExportConfig{
		APIKey:    common.GetEnv(apiKeyEnv, ""),
		APISecret: common.GetEnv(apiSecretEnv, ""),
	}

	if (cfg.APIKey == "" || cfg.APISecret == "") && source != nil {
		apiKey, apiSecret, err := source(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: mixpanel credentials: %s", mixpanel.ErrConfig, err)
		}

		if cfg.APIKey == "" {
			cfg.APIKey = apiKey
		}

		if cfg.APISecret == "" {
			cfg.APISecret = apiSecret
		}
	}

	concurrency, err := common.GetEnvInt(concurrencyEnv, defaultConcurrency)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", mixpanel.ErrConfig, concurrencyEnv, err)
	}

	cfg.Concurrency = concurrency

	if path := common.GetEnv(queriesFileEnv, ""); path != "" {
		queries, err := mixpanel.LoadQueriesFile(path)
		if err != nil {
			return nil, err
		}

		cfg.Queries = queries
	} else {
		cfg.Queries = mixpanel.DefaultQueries()
	}

	return cfg, nil
}

// LoadClientConfig returns the export API client settings.
func LoadClientConfig() (*mixpanel.ClientConfig, error) {
	timeout, err := common.GetEnvDuration(timeoutEnv, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", mixpanel.ErrConfig, timeoutEnv, err)
	}

	return &mixpanel.ClientConfig{
		BaseURL: common.GetEnv(baseURLEnv, mixpanel.DefaultBaseURL),
		Timeout: timeout,
	}, nil
}

// SecretManagerSheetsCredentials reads the google-sheets service account key.
func SecretManagerSheetsCredentials(ctx context.Context) ([]byte, error) {
	return secretmanager.AccessSecretLatestVersion(ctx, secretmanager.SecretGoogleSheets)
}

// LoadSheetsConfig returns the destination spreadsheet settings. When
// credentials can not be read the application default credentials are used.
func LoadSheetsConfig(ctx context.Context, credentials func(ctx context.Context) ([]byte, error)) (*drive.Config, error) {
	config := &drive.Config{
		SpreadsheetID: common.GetEnv(spreadsheetEnv, ""),
	}

	if config.SpreadsheetID == "" {
		return nil, fmt.Errorf("%w: %w", mixpanel.ErrConfig, ErrMissingSpreadsheet)
	}

	insertAt, err := common.GetEnvInt(insertAtEnv, defaultInsertSheetsAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", mixpanel.ErrConfig, insertAtEnv, err)
	}

	config.InsertSheetsAt = int64(insertAt)

	if credentials != nil {
		if data, err := credentials(ctx); err == nil {
			config.Credentials = data
		}
	}

	return config, nil
}
