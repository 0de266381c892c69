package dal

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doitintl/hello/mixpanel-sheets/mixpanel/domain"
)

func TestExportRunDocID(t *testing.T) {
	id := ExportRunDocID("iOS Video Starts")

	assert.Equal(t, id, ExportRunDocID("iOS Video Starts"), "ids must be stable")
	assert.NotEqual(t, id, ExportRunDocID("Android Video Starts"))
	assert.NotContains(t, ExportRunDocID("Signups / Week"), "/")
	assert.Len(t, id, 36)
}

// Runs against the firestore emulator only.
func TestExportRunsFirestore(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST is not set")
	}

	ctx := context.Background()

	client, err := firestore.NewClient(ctx, "mixpanel-sheets-test")
	require.NoError(t, err)

	defer client.Close()

	d := NewExportRunsFirestore(func(ctx context.Context) *firestore.Client {
		return client
	})

	now := time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC)

	runs := []*domain.ExportRun{
		{Name: "b/retention", Endpoint: "retention", Status: domain.ExportStatusFailed, Error: "transport error", ErrorKind: "transport", Timestamp: now},
		{Name: "a", Endpoint: "segmentation", Status: domain.ExportStatusSuccess, Rows: 30, Timestamp: now},
	}

	for _, run := range runs {
		require.NoError(t, d.Record(ctx, run))
	}

	// a second record of the same query replaces the first one
	runs[1].Rows = 31
	require.NoError(t, d.Record(ctx, runs[1]))

	got, err := d.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, 31, got[0].Rows)
	assert.Equal(t, "b/retention", got[1].Name)
	assert.Equal(t, domain.ExportStatusFailed, got[1].Status)
	assert.True(t, now.Equal(got[1].Timestamp))
}
