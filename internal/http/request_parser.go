package http

import (
	"errors"
	"net/http"

	"expenselog/internal/session"
)

// Form field names used by index.html.
const (
	fieldDate        = "date"
	fieldCategory    = "category"
	fieldAmount      = "amount"
	fieldDescription = "description"
)

const maxFormBytes = 64 << 10

var errFormTooLarge = errors.New("form too large")

// parseExpenseForm reads the four input fields. Values are kept exactly as
// typed.
func parseExpenseForm(w http.ResponseWriter, r *http.Request) (session.Form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return session.Form{}, errFormTooLarge
		}
		return session.Form{}, err
	}
	return session.Form{
		Date:        r.PostForm.Get(fieldDate),
		Category:    r.PostForm.Get(fieldCategory),
		Amount:      r.PostForm.Get(fieldAmount),
		Description: r.PostForm.Get(fieldDescription),
	}, nil
}
