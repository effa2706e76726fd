package meta

import "fmt"

// LineError reports a line that could not be turned into a record.
// Err is one of the errs sentinels so callers can match with errors.Is.
type LineError struct {
	Err    error
	Number int // 1-based line number in the metadata section, 0 if unknown
	Line   string
	Reason string
}

func (e *LineError) Error() string {
	msg := e.Err.Error()
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.Number > 0 {
		return fmt.Sprintf("line %d: %s: %q", e.Number, msg, e.Line)
	}
	return fmt.Sprintf("%s: %q", msg, e.Line)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
