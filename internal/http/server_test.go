package http

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"expenselog/internal/core"
	applog "expenselog/internal/log"
	"expenselog/internal/session"
	"expenselog/internal/storage"
)

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Output: io.Discard})
}

type fixture struct {
	srv  *Server
	sess *session.Session
	path string
}

func newFixture(t *testing.T, csv string) fixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "expenses.csv")
	if csv != "" {
		if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
			t.Fatalf("write csv: %v", err)
		}
	}
	sess, err := session.Open(context.Background(), storage.NewCSVRepository(path, quietLogger()), quietLogger())
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	srv, err := NewServer("127.0.0.1:0", sess, Options{Logger: quietLogger(), Backdrop: []byte("png")})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return fixture{srv: srv, sess: sess, path: path}
}

func (f fixture) do(t *testing.T, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rr := httptest.NewRecorder()
	f.srv.Handler.ServeHTTP(rr, req)
	return rr
}

const sampleCSV = "Date,Category,Amount,Description\n" +
	"2024-01-05,Food,10,groceries\n" +
	"2024-01-20,Food,5,bakery\n" +
	"2024-02-01,Travel,7,train\n"

func TestIndexAndHealth(t *testing.T) {
	f := newFixture(t, "")

	rr := f.do(t, http.MethodGet, "/", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("index status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"Expense Tracker", "Add Expense", "View Expenses", "Monthly Summary", "Date (YYYY-MM-DD)", "has-backdrop"} {
		if !strings.Contains(body, want) {
			t.Errorf("index body missing %q", want)
		}
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" || rr.Header().Get("X-Request-ID") == "" {
		t.Errorf("missing security headers: %v", rr.Header())
	}

	rr = f.do(t, http.MethodGet, "/healthz", nil)
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("healthz status=%d body=%q", rr.Code, rr.Body.String())
	}

	rr = f.do(t, http.MethodGet, "/static/style.css", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("static status=%d", rr.Code)
	}

	rr = f.do(t, http.MethodGet, "/nope", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestAddExpense(t *testing.T) {
	f := newFixture(t, "")

	// Wrong method
	rr := f.do(t, http.MethodGet, "/expenses", nil)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}

	// Invalid amount keeps the form and the store
	form := url.Values{"date": {"2024-03-01"}, "category": {"Books"}, "amount": {"abc"}, "description": {"novel"}}
	rr = f.do(t, http.MethodPost, "/expenses", form)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Invalid Input") || !strings.Contains(body, `value="novel"`) || !strings.Contains(body, `value="abc"`) {
		t.Fatalf("expected notice and preserved form: %s", body)
	}
	if f.sess.Len() != 0 {
		t.Fatalf("store must be unchanged")
	}

	// Success appends a row and redirects to a cleared form
	form.Set("amount", "12.5")
	rr = f.do(t, http.MethodPost, "/expenses", form)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/" {
		t.Fatalf("expected 303 to /, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	rr = f.do(t, http.MethodGet, "/", nil)
	body = rr.Body.String()
	if !strings.Contains(body, "<td>Books</td>") || !strings.Contains(body, "12.5") {
		t.Fatalf("expected new row in table: %s", body)
	}
	if strings.Contains(body, `value="novel"`) {
		t.Fatalf("form should be cleared")
	}
	if f.sess.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", f.sess.Len())
	}
}

func TestDialogMakesPageInert(t *testing.T) {
	f := newFixture(t, "")

	rr := f.do(t, http.MethodGet, "/", nil)
	if strings.Contains(rr.Body.String(), "inert") {
		t.Fatalf("page without dialog must stay interactive")
	}

	rr = f.do(t, http.MethodGet, "/visualize", nil)
	if !strings.Contains(rr.Body.String(), `<main class="window" inert>`) {
		t.Fatalf("expected inert page behind notice: %s", rr.Body.String())
	}
}

func TestNoticeDismissKeepsForm(t *testing.T) {
	f := newFixture(t, "")
	form := url.Values{"date": {"2024-03-01"}, "category": {"Books"}, "amount": {"abc"}, "description": {"novel"}}

	rr := f.do(t, http.MethodPost, "/expenses", form)
	body := rr.Body.String()
	if !strings.Contains(body, `<form method="get" action="/">`) || !strings.Contains(body, `name="amount" value="abc"`) {
		t.Fatalf("notice must dismiss through the index with the typed values: %s", body)
	}

	rr = f.do(t, http.MethodGet, "/?"+form.Encode(), nil)
	body = rr.Body.String()
	if rr.Code != http.StatusOK || strings.Contains(body, "<dialog") || strings.Contains(body, "inert") {
		t.Fatalf("dismissed page must have no dialog, got %d: %s", rr.Code, body)
	}
	if !strings.Contains(body, `id="amount" name="amount" type="text" inputmode="decimal" value="abc"`) {
		t.Fatalf("form values not refilled: %s", body)
	}
}

func TestAddEscapesUserText(t *testing.T) {
	f := newFixture(t, "")
	form := url.Values{"date": {"x"}, "category": {"<script>alert(1)</script>"}, "amount": {"1"}, "description": {""}}

	f.do(t, http.MethodPost, "/expenses", form)
	rr := f.do(t, http.MethodGet, "/", nil)
	if !strings.Contains(rr.Body.String(), "&lt;script&gt;") {
		t.Fatalf("category not rendered: %s", rr.Body.String())
	}
	if strings.Contains(rr.Body.String(), "<script>alert(1)</script>") {
		t.Fatalf("category rendered unescaped")
	}
}

func TestCrossSitePostRefused(t *testing.T) {
	f := newFixture(t, "")
	req := httptest.NewRequest(http.MethodPost, "/save", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr := httptest.NewRecorder()
	f.srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if _, err := os.Stat(f.path); !os.IsNotExist(err) {
		t.Fatalf("save must not have run")
	}
}

func TestViewShowsLoadedRecords(t *testing.T) {
	f := newFixture(t, sampleCSV)

	rr := f.do(t, http.MethodGet, "/", nil)
	if strings.Contains(rr.Body.String(), "groceries") {
		t.Fatalf("table must start empty")
	}

	rr = f.do(t, http.MethodPost, "/view", url.Values{})
	body := rr.Body.String()
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	i, j := strings.Index(body, "groceries"), strings.Index(body, "train")
	if i < 0 || j < 0 || i > j {
		t.Fatalf("expected rows in store order: %s", body)
	}
}

func TestVisualize(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		f := newFixture(t, "")
		rr := f.do(t, http.MethodGet, "/visualize", nil)
		body := rr.Body.String()
		if rr.Code != http.StatusOK || !strings.Contains(body, "No Data") || strings.Contains(body, "<svg") {
			t.Fatalf("expected warning without charts, got %d: %s", rr.Code, body)
		}
	})

	t.Run("charts", func(t *testing.T) {
		f := newFixture(t, sampleCSV)
		rr := f.do(t, http.MethodGet, "/visualize", nil)
		body := rr.Body.String()
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		for _, want := range []string{"Expense Distribution by Category", "Monthly Expenses", "68.2%", "31.8%", "2024-01", "2024-02", "#60a3bc"} {
			if !strings.Contains(body, want) {
				t.Errorf("body missing %q", want)
			}
		}
		if strings.Count(body, "<dialog") != 2 {
			t.Errorf("expected two separate chart dialogs")
		}
	})

	t.Run("bad date", func(t *testing.T) {
		f := newFixture(t, "Date,Category,Amount,Description\nsoon,Food,1,x\n")
		rr := f.do(t, http.MethodGet, "/visualize", nil)
		if rr.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "soon") {
			t.Fatalf("expected offending value in notice")
		}
	})
}

func TestMonthlySummary(t *testing.T) {
	f := newFixture(t, "")
	rr := f.do(t, http.MethodGet, "/summary", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "No expenses available.") {
		t.Fatalf("expected empty warning, got %d", rr.Code)
	}

	f = newFixture(t, sampleCSV)
	rr = f.do(t, http.MethodGet, "/summary", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "2024-01  15.00\n2024-02  7.00") {
		t.Fatalf("unexpected summary: %s", rr.Body.String())
	}
}

func TestSaveAndReload(t *testing.T) {
	f := newFixture(t, "")
	f.do(t, http.MethodPost, "/expenses", url.Values{"date": {"2024-01-05"}, "category": {"Food"}, "amount": {"10"}, "description": {"a, \"b\""}})

	rr := f.do(t, http.MethodPost, "/save", url.Values{})
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Expenses saved to") {
		t.Fatalf("save: %d %s", rr.Code, rr.Body.String())
	}
	raw, err := os.ReadFile(f.path)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if !bytes.HasPrefix(raw, []byte("Date,Category,Amount,Description\n")) {
		t.Fatalf("unexpected file: %q", raw)
	}

	// Corrupt the file: reload fails and keeps the store.
	if err := os.WriteFile(f.path, []byte("Date,Category,Amount,Description\n2024-01-05,Food,ten,x\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	rr = f.do(t, http.MethodPost, "/reload", url.Values{})
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if f.sess.Len() != 1 {
		t.Fatalf("store changed on failed reload")
	}

	if err := os.WriteFile(f.path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	rr = f.do(t, http.MethodPost, "/reload", url.Values{})
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Loaded 3 expenses") {
		t.Fatalf("reload: %d %s", rr.Code, rr.Body.String())
	}
}

func TestExport(t *testing.T) {
	f := newFixture(t, sampleCSV)
	rr := f.do(t, http.MethodGet, "/export.xlsx", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Content-Disposition"), "expenses.xlsx") {
		t.Fatalf("missing attachment header")
	}
	wb, err := excelize.OpenReader(rr.Body)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer wb.Close()
	if v, _ := wb.GetCellValue("Expenses", "D4"); v != "train" {
		t.Fatalf("unexpected cell D4: %q", v)
	}
}

func TestBackdrop(t *testing.T) {
	f := newFixture(t, "")
	rr := f.do(t, http.MethodGet, "/backdrop", nil)
	if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("backdrop: %d %v", rr.Code, rr.Header())
	}

	sess := session.New(storage.NewCSVRepository(f.path, quietLogger()), []core.Expense{}, quietLogger())
	srv, err := NewServer("127.0.0.1:0", sess, Options{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/backdrop", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without backdrop, got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if strings.Contains(rr.Body.String(), "has-backdrop") {
		t.Fatalf("backdrop class without image")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		eff  session.Effect
		want int
	}{
		{session.Effect{}, http.StatusOK},
		{session.Effect{Err: core.ErrInvalidAmount}, http.StatusUnprocessableEntity},
		{session.Effect{Err: &core.DateError{Value: "x"}}, http.StatusInternalServerError},
		{session.Effect{Err: &storage.RowError{Line: 2, Err: core.ErrInvalidAmount}}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.eff); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.eff.Err, got, tt.want)
		}
	}
}
