package dataset

import (
	"fmt"
	"strings"
)

// DataFormatError reports a malformed or unparsable source row.
// Row is the 1-based data row (the header is row 0).
type DataFormatError struct {
	Source string
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *DataFormatError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "data format error in %s", e.Source)
	if e.Row > 0 {
		fmt.Fprintf(&b, " at row %d", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, ", column %q", e.Column)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " (value %q)", e.Value)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *DataFormatError) Unwrap() error { return e.Err }

// SourceNotFoundError reports a dataset path that does not resolve.
// It unwraps to fs.ErrNotExist.
type SourceNotFoundError struct {
	Path string
	Err  error
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("dataset not found: %s", e.Path)
}

func (e *SourceNotFoundError) Unwrap() error { return e.Err }
