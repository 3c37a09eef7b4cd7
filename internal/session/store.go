// Package session holds the expense list for one running instance and the
// commands the user can issue against it.
package session

import (
	"expenselog/internal/core"
)

// Store is the ordered, in-memory list of expenses. It is not safe for
// concurrent use; Session serializes access.
type Store struct {
	records []core.Expense
}

// NewStore returns a store holding a copy of records.
func NewStore(records []core.Expense) *Store {
	s := &Store{}
	s.ReplaceAll(records)
	return s
}

// Add appends a record built from raw form values. Only the amount is
// checked; on failure the store is left untouched and the error wraps
// core.ErrInvalidAmount.
func (s *Store) Add(date, category, amount, description string) (core.Expense, error) {
	e, err := core.NewExpense(date, category, amount, description)
	if err != nil {
		return core.Expense{}, err
	}
	s.records = append(s.records, e)
	return e, nil
}

// ReplaceAll discards the current content and adopts records.
func (s *Store) ReplaceAll(records []core.Expense) {
	s.records = append(make([]core.Expense, 0, len(records)), records...)
}

// All returns a copy of the records in insertion order.
func (s *Store) All() []core.Expense {
	return append([]core.Expense(nil), s.records...)
}

func (s *Store) Len() int {
	return len(s.records)
}
