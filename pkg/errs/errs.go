package errs

import "fmt"

// ConfigurationError reports structurally unusable input: missing or
// ambiguous required columns, or a separator declaration line that could
// not be resolved. It aborts the run.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return e.Msg
}

// Configurationf builds a ConfigurationError from a format string.
func Configurationf(format string, args ...interface{}) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// ValidationError reports input that parsed cleanly but yielded nothing
// usable (empty homepage registry, empty classified URL set). It aborts
// the run.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// RowError reports a single malformed row. Row errors never abort the
// batch; they are collected, logged and counted.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// IoError reports a failed read or write of an input or output file.
// It aborts the run.
type IoError struct {
	Op   string
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IoError) Unwrap() error {
	return e.Err
}

// IO wraps err as an IoError for the given operation and path.
func IO(op, path string, err error) error {
	return &IoError{Op: op, Path: path, Err: err}
}
