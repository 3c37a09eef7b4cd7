package session

import (
	"expenselog/internal/core"
)

// NoticeKind selects how a notice is presented.
type NoticeKind string

const (
	NoticeInfo    NoticeKind = "info"
	NoticeWarning NoticeKind = "warning"
	NoticeError   NoticeKind = "error"
)

// Notice is a blocking message the user has to dismiss.
type Notice struct {
	Kind    NoticeKind
	Title   string
	Message string
}

// Form holds the raw values of the four input fields.
type Form struct {
	Date        string
	Category    string
	Amount      string
	Description string
}

// Charts carries the aggregates behind the two charts of Visualize.
type Charts struct {
	Categories []core.CategoryTotal
	Months     []core.MonthTotal
}

// Effect is what a command asks the UI to show. Err is set when the command
// failed; the notice then describes the failure.
type Effect struct {
	Form   Form
	Notice *Notice
	Charts *Charts
	Err    error
}

func infoEffect(title, message string) Effect {
	return Effect{Notice: &Notice{Kind: NoticeInfo, Title: title, Message: message}}
}

func warningEffect(title, message string) Effect {
	return Effect{Notice: &Notice{Kind: NoticeWarning, Title: title, Message: message}}
}

func errorEffect(title string, err error) Effect {
	return Effect{
		Notice: &Notice{Kind: NoticeError, Title: title, Message: err.Error()},
		Err:    err,
	}
}
