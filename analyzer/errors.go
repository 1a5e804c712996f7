package analyzer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResult means the filters left no records. It is soft: callers
// show a "no data" state instead of failing.
var ErrEmptyResult = errors.New("no records match the selected filters")

// SchemaError reports an upload that does not have the expected shape.
// The pipeline halts on it with no partial output.
type SchemaError struct {
	Source  string
	Reason  string
	Columns []string
}

func (e *SchemaError) Error() string {
	msg := "schema error"
	if e.Source != "" {
		msg += " in " + e.Source
	}
	msg += ": " + e.Reason
	if len(e.Columns) > 0 {
		msg += fmt.Sprintf(" (columns: %s)", strings.Join(e.Columns, ", "))
	}
	return msg
}

// IsSchemaError reports whether err wraps a *SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}
