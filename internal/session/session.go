package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"expenselog/internal/core"
	"expenselog/internal/export"
	applog "expenselog/internal/log"
	"expenselog/internal/storage"
)

// Notice titles and messages shown by the commands.
const (
	TitleInvalidInput   = "Invalid Input"
	TitleNoData         = "No Data"
	TitleSaved          = "Saved"
	TitleReloaded       = "Reloaded"
	TitleMonthlySummary = "Monthly Summary"
	TitleFailed         = "Error"

	MsgInvalidAmount   = "Please enter a valid numeric amount."
	MsgNothingToChart  = "No expenses to visualize."
	MsgNothingToReport = "No expenses available."
)

// Session owns the expense store, the rows currently shown in the table and
// the repository used by Save and Reload. Every command holds the session
// lock for its whole duration, file I/O included.
type Session struct {
	mu     sync.Mutex
	store  *Store
	table  []core.Expense
	repo   storage.Repository
	logger *applog.Logger
}

// New returns a session over records. The table starts empty.
func New(repo storage.Repository, records []core.Expense, logger *applog.Logger) *Session {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Session{
		store:  NewStore(records),
		table:  []core.Expense{},
		repo:   repo,
		logger: logger.WithComponent(applog.ComponentSession),
	}
}

// Open loads the repository and returns a session over its content.
func Open(ctx context.Context, repo storage.Repository, logger *applog.Logger) (*Session, error) {
	records, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load expenses from %s: %w", repo.Location(), err)
	}
	return New(repo, records, logger), nil
}

// Table returns a copy of the visible rows.
func (s *Session) Table() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.table...)
}

// Records returns a copy of the store content.
func (s *Session) Records() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.All()
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Len()
}

// Location names where Save writes to.
func (s *Session) Location() string {
	return s.repo.Location()
}

// Add appends the form's record to the store and to the table. An invalid
// amount leaves both untouched and hands the form back unchanged.
func (s *Session) Add(ctx context.Context, form Form) Effect {
	s.mu.Lock()
	e, err := s.store.Add(form.Date, form.Category, form.Amount, form.Description)
	if err == nil {
		s.table = append(s.table, e)
	}
	count := s.store.Len()
	s.mu.Unlock()

	if err != nil {
		s.logger.InfoContext(ctx, "Rejected expense", applog.NewFields().
			WithOperation(applog.OpAdd).
			WithError(err).
			ToSlice()...)
		eff := errorEffect(TitleInvalidInput, err)
		eff.Notice.Message = MsgInvalidAmount
		eff.Form = form
		return eff
	}

	s.logger.InfoContext(ctx, "Expense added", applog.NewFields().
		WithOperation(applog.OpAdd).
		WithExpense(e.Date, e.Category, core.FormatAmount(e.Amount)).
		WithStore(count, "").
		ToSlice()...)
	return Effect{}
}

// View replaces the table with the store content.
func (s *Session) View(ctx context.Context) Effect {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.table = s.store.All()
	s.logger.DebugContext(ctx, "Table refreshed", applog.FieldOperation, applog.OpView, applog.FieldCount, len(s.table))
	return Effect{}
}

// Visualize computes the category and month totals for the two charts.
func (s *Session) Visualize(ctx context.Context) Effect {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.store.records
	if len(records) == 0 {
		return warningEffect(TitleNoData, MsgNothingToChart)
	}

	categories, err := core.CategoryTotals(records)
	if err != nil {
		return s.failed(ctx, applog.OpVisualize, err)
	}
	months, err := core.MonthTotals(records)
	if err != nil {
		return s.failed(ctx, applog.OpVisualize, err)
	}
	return Effect{Charts: &Charts{Categories: categories, Months: months}}
}

// MonthlySummary reports one line per month, oldest first.
func (s *Session) MonthlySummary(ctx context.Context) Effect {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store.Len() == 0 {
		return warningEffect(TitleNoData, MsgNothingToReport)
	}

	months, err := core.MonthTotals(s.store.records)
	if err != nil {
		return s.failed(ctx, applog.OpSummary, err)
	}
	return infoEffect(TitleMonthlySummary, FormatMonthlySummary(months))
}

// FormatMonthlySummary renders month totals as "YYYY-MM  total" lines.
func FormatMonthlySummary(months []core.MonthTotal) string {
	var b strings.Builder
	for i, m := range months {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s  %s", m.Month, core.FormatTotal(m.Total))
	}
	return b.String()
}

// Save writes the whole store to the repository.
func (s *Session) Save(ctx context.Context) Effect {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Save(ctx, s.store.records); err != nil {
		return s.failed(ctx, applog.OpSave, err)
	}
	s.logger.InfoContext(ctx, "Expenses saved", applog.NewFields().
		WithOperation(applog.OpSave).
		WithStore(s.store.Len(), s.repo.Location()).
		ToSlice()...)
	return infoEffect(TitleSaved, "Expenses saved to "+s.repo.Location())
}

// Reload replaces the store with the repository content. The table is left
// as it is until the next View. A failed load keeps the current store.
func (s *Session) Reload(ctx context.Context) Effect {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.repo.Load(ctx)
	if err != nil {
		return s.failed(ctx, applog.OpReload, err)
	}
	s.store.ReplaceAll(records)
	s.logger.InfoContext(ctx, "Expenses reloaded", applog.NewFields().
		WithOperation(applog.OpReload).
		WithStore(len(records), s.repo.Location()).
		ToSlice()...)
	return infoEffect(TitleReloaded, fmt.Sprintf("Loaded %d expenses from %s", len(records), s.repo.Location()))
}

// Export writes the store as a workbook to w.
func (s *Session) Export(ctx context.Context, w io.Writer) error {
	s.mu.Lock()
	records := s.store.All()
	s.mu.Unlock()

	logger := s.logger.WithComponent(applog.ComponentExport)
	if err := export.WriteWorkbook(w, records); err != nil {
		logger.ErrorContext(ctx, "Export failed", applog.FieldOperation, applog.OpExport, applog.FieldError, err)
		return err
	}
	logger.InfoContext(ctx, "Expenses exported", applog.FieldOperation, applog.OpExport, applog.FieldCount, len(records))
	return nil
}

func (s *Session) failed(ctx context.Context, op string, err error) Effect {
	s.logger.ErrorContext(ctx, "Command failed", applog.NewFields().
		WithOperation(op).
		WithError(err).
		ToSlice()...)

	var dateErr *core.DateError
	if errors.As(err, &dateErr) {
		return errorEffect(TitleFailed, fmt.Errorf("cannot summarize expenses: %w", err))
	}
	return errorEffect(TitleFailed, err)
}
