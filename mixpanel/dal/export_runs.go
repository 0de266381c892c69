package dal

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/doitintl/hello/mixpanel-sheets/mixpanel/domain"
)

const (
	exportRunsCollection = "integrations/mixpanel/sheetExports"
)

// exportRunNamespace scopes the document ids derived from query names.
var exportRunNamespace = uuid.MustParse("9a7f3b52-6d0e-4c4f-8f3a-2b6f1c0d5e71")

type ExportRunsFirestore struct {
	firestoreClient func(ctx context.Context) *firestore.Client
}

func NewExportRunsFirestore(fs func(ctx context.Context) *firestore.Client) *ExportRunsFirestore {
	return &ExportRunsFirestore{
		firestoreClient: fs,
	}
}

// ExportRunDocID returns the document id of a query. Query names are sheet
// titles and may contain characters firestore does not allow in ids.
func ExportRunDocID(name string) string {
	return uuid.NewSHA1(exportRunNamespace, []byte(name)).String()
}

func (d *ExportRunsFirestore) Record(ctx context.Context, run *domain.ExportRun) error {
	fs := d.firestoreClient(ctx)

	_, err := fs.Collection(exportRunsCollection).Doc(ExportRunDocID(run.Name)).Set(ctx, run)

	return err
}

func (d *ExportRunsFirestore) List(ctx context.Context) ([]*domain.ExportRun, error) {
	fs := d.firestoreClient(ctx)

	iter := fs.Collection(exportRunsCollection).OrderBy("name", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	runs := make([]*domain.ExportRun, 0)

	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}

		if err != nil {
			return nil, err
		}

		var run domain.ExportRun
		if err := docSnap.DataTo(&run); err != nil {
			return nil, err
		}

		runs = append(runs, &run)
	}

	return runs, nil
}
