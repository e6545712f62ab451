package resolve

import "fmt"

// FormatError reports a user-supplied identifier that does not match the
// expected shape. It is never retried; the input has to be fixed.
type FormatError struct {
	Input    string
	Expected string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid identifier %q: expected %s", e.Input, e.Expected)
}

// NotFoundError reports that no matching record exists after every lookup
// strategy was exhausted. Err carries the last transport failure, if any,
// so the caller can distinguish "searched and absent" from "could not
// search".
type NotFoundError struct {
	Kind string // "build", "release"
	Key  string
	Err  error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no %s found matching %q (last error: %v)", e.Kind, e.Key, e.Err)
	}
	return fmt.Sprintf("no %s found matching %q", e.Kind, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}
