// Package storage persists the expense list. Every repository reads and
// writes the whole ordered sequence at once; there is no per-record access.
package storage

import (
	"context"
	"fmt"

	"expenselog/internal/core"
	applog "expenselog/internal/log"
)

// Repository is the format boundary between the session and disk.
type Repository interface {
	// Load returns the persisted records in their saved order. A missing
	// store yields an empty sequence and no error.
	Load(ctx context.Context) ([]core.Expense, error)
	// Save replaces the persisted content with records.
	Save(ctx context.Context, records []core.Expense) error
	// Location names the destination for user-facing messages.
	Location() string
}

// Header is the column layout of the flat file.
var Header = []string{"Date", "Category", "Amount", "Description"}

// RowError reports a persisted row that could not be turned into a record.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// storageLogger tags l with the storage component. A nil logger falls back
// to the process default.
func storageLogger(l *applog.Logger) *applog.Logger {
	if l == nil {
		l = applog.FromContext(context.Background())
	}
	return l.WithComponent(applog.ComponentStorage)
}
