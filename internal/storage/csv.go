package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"expenselog/internal/core"
	applog "expenselog/internal/log"
)

// CSVRepository keeps the expense list in a comma-separated file with a
// Date,Category,Amount,Description header.
type CSVRepository struct {
	path   string
	logger *applog.Logger
}

var _ Repository = (*CSVRepository)(nil)

func NewCSVRepository(path string, logger *applog.Logger) *CSVRepository {
	return &CSVRepository{path: path, logger: storageLogger(logger)}
}

// Location returns the file path.
func (r *CSVRepository) Location() string {
	return r.path
}

// Load reads every row of the file. Header names are matched without regard
// to case or order. Any row that cannot be read fails the whole load.
func (r *CSVRepository) Load(ctx context.Context) ([]core.Expense, error) {
	file, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.logger.DebugContext(ctx, "Expense file not found, starting empty", applog.FieldLocation, r.path)
			return []core.Expense{}, nil
		}
		return nil, fmt.Errorf("open expense file %s: %w", r.path, err)
	}
	defer file.Close()

	records, err := decodeCSV(file)
	if err != nil {
		return nil, fmt.Errorf("read expense file %s: %w", r.path, err)
	}

	r.logger.InfoContext(ctx, "Expenses loaded from CSV", applog.NewFields().
		WithStore(len(records), r.path).
		ToSlice()...)
	return records, nil
}

// Save truncates the file and writes the header followed by one row per
// record. The write is not atomic.
func (r *CSVRepository) Save(ctx context.Context, records []core.Expense) error {
	if dir := filepath.Dir(r.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create expense file directory: %w", err)
		}
	}

	file, err := os.Create(r.path)
	if err != nil {
		return fmt.Errorf("create expense file %s: %w", r.path, err)
	}

	if err := encodeCSV(file, records); err != nil {
		file.Close()
		return fmt.Errorf("write expense file %s: %w", r.path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close expense file %s: %w", r.path, err)
	}

	r.logger.InfoContext(ctx, "Expenses saved to CSV", applog.NewFields().
		WithOperation(applog.OpSave).
		WithStore(len(records), r.path).
		ToSlice()...)
	return nil
}

func encodeCSV(w io.Writer, records []core.Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, e := range records {
		row := []string{e.Date, e.Category, core.FormatAmount(e.Amount), e.Description}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func decodeCSV(rd io.Reader) ([]core.Expense, error) {
	reader := csv.NewReader(rd)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []core.Expense{}, nil
		}
		return nil, &RowError{Line: 1, Err: err}
	}

	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))] = i
	}
	cols := make([]int, len(Header))
	for i, name := range Header {
		idx, ok := colIndex[strings.ToLower(name)]
		if !ok {
			return nil, &RowError{Line: 1, Err: fmt.Errorf("missing column %q", name)}
		}
		cols[i] = idx
	}

	records := []core.Expense{}
	line := 1
	for {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &RowError{Line: line + 1, Err: err}
		}
		line, _ = reader.FieldPos(0)

		fields := make([]string, len(cols))
		for i, c := range cols {
			if c >= len(row) {
				return nil, &RowError{Line: line, Err: fmt.Errorf("expected %d fields, got %d", len(header), len(row))}
			}
			fields[i] = row[c]
		}

		e, err := core.NewExpense(fields[0], fields[1], fields[2], fields[3])
		if err != nil {
			return nil, &RowError{Line: line, Err: fmt.Errorf("amount %q: %w", fields[2], err)}
		}
		records = append(records, e)
	}
	return records, nil
}
