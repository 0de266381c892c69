//go:generate mockery --output=./mocks --all
package drive

import "context"

// SheetWriter persists a table of values under a named sheet.
type SheetWriter interface {
	WriteSheet(ctx context.Context, name string, rows [][]interface{}) error
}
