package http

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"expenselog/internal/chart"
	"expenselog/internal/core"
	"expenselog/internal/export"
	applog "expenselog/internal/log"
	"expenselog/internal/session"
	"expenselog/internal/storage"
)

type pageData struct {
	Form        session.Form
	Rows        []core.Expense
	Count       int
	Location    string
	Notice      *session.Notice
	Pie         *chart.Pie
	Bar         *chart.BarChart
	HasBackdrop bool
	// Blocked makes the page inert while a dialog is shown.
	Blocked bool
}

// statusFor maps a command outcome to the response status. Only a rejected
// form is the user's fault; a bad row in the file is not.
func statusFor(eff session.Effect) int {
	var rowErr *storage.RowError
	switch {
	case eff.Err == nil:
		return http.StatusOK
	case errors.As(eff.Err, &rowErr):
		return http.StatusInternalServerError
	case errors.Is(eff.Err, core.ErrInvalidAmount):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// render executes index.html for eff. The page is rendered into a buffer so a
// template failure never leaves a half-written response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, eff session.Effect) {
	data := pageData{
		Form:        eff.Form,
		Rows:        s.session.Table(),
		Count:       s.session.Len(),
		Location:    s.session.Location(),
		Notice:      eff.Notice,
		HasBackdrop: s.backdrop != nil,
	}
	if eff.Charts != nil {
		pie := chart.NewPie(eff.Charts.Categories)
		bar := chart.NewBarChart(eff.Charts.Months)
		data.Pie, data.Bar = &pie, &bar
	}
	data.Blocked = data.Notice != nil || data.Pie != nil

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentTemplate).ErrorContext(r.Context(),
			"Index template execution failed", applog.FieldError, err, applog.FieldOperation, applog.OpRender)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(statusFor(eff))
	_, _ = w.Write(buf.Bytes())
}

// handleIndex renders the page. Query values refill the entry form; a
// dismissed notice uses them to hand back what the user typed.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.render(w, r, session.Effect{Form: session.Form{
		Date:        q.Get("date"),
		Category:    q.Get("category"),
		Amount:      q.Get("amount"),
		Description: q.Get("description"),
	}})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	form, err := parseExpenseForm(w, r)
	if err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Parse form error", applog.FieldError, err)
		if errors.Is(err, errFormTooLarge) {
			http.Error(w, "form too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	eff := s.session.Add(r.Context(), form)
	if eff.Err == nil && eff.Notice == nil {
		// Redirect so a browser refresh does not post the form again.
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, r, eff)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, s.session.View(r.Context()))
}

func (s *Server) handleVisualize(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, s.session.Visualize(r.Context()))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, s.session.MonthlySummary(r.Context()))
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, s.session.Save(r.Context()))
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, s.session.Reload(r.Context()))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.session.Export(r.Context(), &buf); err != nil {
		s.render(w, r, session.Effect{
			Notice: &session.Notice{Kind: session.NoticeError, Title: session.TitleFailed, Message: err.Error()},
			Err:    err,
		})
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="expenses.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleBackdrop(w http.ResponseWriter, r *http.Request) {
	if s.backdrop == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(s.backdrop)
}
