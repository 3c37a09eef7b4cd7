package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"expenselog/internal/core"
	applog "expenselog/internal/log"
)

func sampleRecords() []core.Expense {
	return []core.Expense{
		{Date: "2024-01-05", Category: "Food", Amount: decimal.RequireFromString("10"), Description: "groceries"},
		{Date: "2024-01-20", Category: "Food", Amount: decimal.RequireFromString("5.25"), Description: "bakery, \"fresh\" bread"},
		{Date: "2024-02-01", Category: "Travel", Amount: decimal.RequireFromString("-7"), Description: ""},
		{Date: "2024-02-01", Category: "Travel", Amount: decimal.RequireFromString("-7"), Description: ""},
		{Date: "whenever", Category: "Misc ", Amount: decimal.RequireFromString("0.1"), Description: "multi\nline"},
	}
}

func assertSameRecords(t *testing.T, got, want []core.Expense) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.Date != w.Date || g.Category != w.Category || g.Description != w.Description || !g.Amount.Equal(w.Amount) {
			t.Fatalf("record %d: expected %+v, got %+v", i, w, g)
		}
	}
}

func TestCSVRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "expenses.csv")
	repo := NewCSVRepository(path, nil)

	want := sampleRecords()
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertSameRecords(t, got, want)

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if !strings.HasPrefix(string(raw), "Date,Category,Amount,Description\n") {
		t.Fatalf("unexpected header: %q", string(raw))
	}
}

func TestCSVSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := NewCSVRepository(filepath.Join(t.TempDir(), "expenses.csv"), nil)

	if err := repo.Save(ctx, sampleRecords()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Save(ctx, sampleRecords()[:1]); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertSameRecords(t, got, sampleRecords()[:1])
}

func TestCSVLoadMissingFileIsEmpty(t *testing.T) {
	repo := NewCSVRepository(filepath.Join(t.TempDir(), "nope.csv"), nil)
	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
}

func TestCSVLoad(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantN    int
		wantLine int // 0 means success expected
	}{
		{name: "empty file", content: "", wantN: 0},
		{name: "header only", content: "Date,Category,Amount,Description\n", wantN: 0},
		{name: "reordered columns", content: "amount,DATE,Description,category\n3.5,2024-01-01,x,Food\n", wantN: 1},
		{name: "float written by other tools", content: "Date,Category,Amount,Description\n2024-01-01,Food,10.0,x\n", wantN: 1},
		{name: "bad amount", content: "Date,Category,Amount,Description\n2024-01-01,Food,10,x\n2024-01-02,Food,ten,y\n", wantLine: 3},
		{name: "short row", content: "Date,Category,Amount,Description\n2024-01-01,Food\n", wantLine: 2},
		{name: "missing column", content: "Date,Category,Description\n2024-01-01,Food,x\n", wantLine: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "expenses.csv")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			got, err := NewCSVRepository(path, nil).Load(context.Background())
			if tt.wantLine == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if len(got) != tt.wantN {
					t.Fatalf("expected %d records, got %d", tt.wantN, len(got))
				}
				return
			}
			var rowErr *RowError
			if !errors.As(err, &rowErr) {
				t.Fatalf("expected *RowError, got %v", err)
			}
			if rowErr.Line != tt.wantLine {
				t.Fatalf("expected line %d, got %d (%v)", tt.wantLine, rowErr.Line, err)
			}
		})
	}
}

func TestCSVLoadReorderedColumnsMapsFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.csv")
	content := "amount,DATE,Description,category\n3.5,2024-01-01,lunch,Food\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := NewCSVRepository(path, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []core.Expense{{Date: "2024-01-01", Category: "Food", Amount: decimal.RequireFromString("3.5"), Description: "lunch"}}
	assertSameRecords(t, got, want)
}

func TestCSVLocation(t *testing.T) {
	if NewCSVRepository("expenses.csv", nil).Location() != "expenses.csv" {
		t.Fatalf("unexpected location")
	}
}

func TestCSVLogsUnderStorageComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Output: &buf, Component: applog.ComponentBackend})
	repo := NewCSVRepository(filepath.Join(t.TempDir(), "expenses.csv"), logger)

	if err := repo.Save(context.Background(), sampleRecords()); err != nil {
		t.Fatalf("save: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"component=storage", "count=5", "operation=save"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in log output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "component=backend") {
		t.Fatalf("storage line tagged with caller component:\n%s", out)
	}
}
