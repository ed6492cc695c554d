package loader

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnreadableSource = errors.New("unreadable source")
	ErrEmptySource      = errors.New("source has no header row")
	ErrMissingColumn    = errors.New("missing required column")
	ErrInvalidValue     = errors.New("invalid value")
)

// LoadError reports why a dataset could not be loaded. Row is 1-based and
// counts the header, so it matches the spreadsheet row number.
type LoadError struct {
	Source string
	Row    int
	Column string
	Err    error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString("load ")
	b.WriteString(e.Source)
	if e.Row > 0 {
		fmt.Fprintf(&b, " row %d", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %q", e.Column)
	}
	b.WriteString(": ")
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
