package dotenv

import "fmt"

// ErrorCode is a sentinel error identified by its message.
type ErrorCode string

func (e ErrorCode) Error() string {
	return string(e)
}

const (
	// ErrMissingVariable is returned by the required fetch path when a name
	// resolves in neither layer.
	ErrMissingVariable = ErrorCode("variable is not set")
	// ErrFileNotFound is returned when a .env file is required but absent.
	ErrFileNotFound = ErrorCode("file not found")
	// ErrMalformedLine is returned by the parser for lines it cannot read.
	ErrMalformedLine = ErrorCode("malformed line")
)

// VariableError reports a variable that could not be resolved.
type VariableError struct {
	Name string
}

func (e *VariableError) Error() string {
	return fmt.Sprintf("environment variable %q: %s", e.Name, ErrMissingVariable)
}

func (e *VariableError) Unwrap() error {
	return ErrMissingVariable
}

// FileError reports a required .env file that does not exist. It matches
// both ErrFileNotFound and the underlying fs.ErrNotExist with errors.Is.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s", ErrFileNotFound, e.Path)
}

func (e *FileError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFileNotFound}
	}
	return []error{ErrFileNotFound, e.Err}
}

// ParseError reports the first line the parser rejected.
type ParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %s (%q)", e.Line, ErrMalformedLine, e.Reason, e.Text)
}

func (e *ParseError) Unwrap() error {
	return ErrMalformedLine
}
