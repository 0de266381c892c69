package connection

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"

	"github.com/doitintl/hello/mixpanel-sheets/common"
	"github.com/doitintl/hello/mixpanel-sheets/logger"
)

var (
	ErrFirestoreInitialization = errors.New("firestore initialization error")
)

type FirestoreClient struct {
	fs *firestore.Client
}

func NewFirestore(ctx context.Context, log *logger.Logging) (*FirestoreClient, error) {
	logger := log.Logger(ctx)

	fs, err := firestore.NewClient(ctx, common.ProjectID)
	if err != nil {
		logger.Errorf("%s: %s", ErrFirestoreInitialization, err)
		return nil, ErrFirestoreInitialization
	}

	if common.FirestoreEmulatorHost != "" {
		logger.Infof("using firestore emulator: %s", common.FirestoreEmulatorHost)
	}

	return &FirestoreClient{
		fs,
	}, nil
}
