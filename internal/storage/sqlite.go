package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"expenselog/internal/core"
	applog "expenselog/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteRepository stores the expense list as a snapshot table. Each save
// replaces the whole table so the row order always matches the session.
type SQLiteRepository struct {
	db     *sql.DB
	path   string
	logger *applog.Logger
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, path: dbPath, logger: storageLogger(logger)}, nil
}

// Location returns the database path.
func (r *SQLiteRepository) Location() string {
	return r.path
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load returns every stored expense ordered by position.
func (r *SQLiteRepository) Load(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT position, date, category, amount, description FROM expenses ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	records := []core.Expense{}
	for rows.Next() {
		var (
			position                            int64
			date, category, amount, description string
		)
		if err := rows.Scan(&position, &date, &category, &amount, &description); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e, err := core.NewExpense(date, category, amount, description)
		if err != nil {
			return nil, &RowError{Line: int(position), Err: fmt.Errorf("amount %q: %w", amount, err)}
		}
		records = append(records, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	r.logger.InfoContext(ctx, "Expenses loaded from SQLite", applog.NewFields().
		WithStore(len(records), r.path).
		ToSlice()...)
	return records, nil
}

// Save replaces the stored snapshot with records.
func (r *SQLiteRepository) Save(ctx context.Context, records []core.Expense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO expenses (position, date, category, amount, description) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range records {
		if _, err := stmt.ExecContext(ctx, i+1, e.Date, e.Category, core.FormatAmount(e.Amount), e.Description); err != nil {
			return fmt.Errorf("insert expense %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit expenses: %w", err)
	}

	r.logger.InfoContext(ctx, "Expenses saved to SQLite", applog.NewFields().
		WithOperation(applog.OpSave).
		WithStore(len(records), r.path).
		ToSlice()...)
	return nil
}
