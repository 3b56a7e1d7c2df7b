// Package ftzzerr defines the error-kind taxonomy shared by the config
// loader, CLI, and generation engine, so callers can distinguish a
// configuration mistake from a filesystem failure without string matching.
package ftzzerr

import "fmt"

// Kind classifies an Error for callers that need to pick an exit code or a
// log level without inspecting the wrapped error's type.
type Kind int

const (
	// ConfigurationError covers missing required parameters and
	// incompatible flag combinations.
	ConfigurationError Kind = iota
	// ReadConfigError signals a config file that could not be read.
	ReadConfigError
	// ParseConfigError signals a config file that could not be parsed,
	// including unknown keys.
	ParseConfigError
	// InvalidArgsError covers malformed CLI flag values.
	InvalidArgsError
	// GeneratorIOError covers any non-recovered filesystem failure during
	// generation.
	GeneratorIOError
	// MissingNumFilesError signals that no file count was supplied by
	// flags or config.
	MissingNumFilesError
)

func (k Kind) String() string {
	switch k {
	case ConfigurationError:
		return "configuration"
	case ReadConfigError:
		return "read_config"
	case ParseConfigError:
		return "parse_config"
	case InvalidArgsError:
		return "invalid_args"
	case GeneratorIOError:
		return "generator_io"
	case MissingNumFilesError:
		return "missing_num_files"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with a Kind so callers can branch on it.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error of the given kind wrapping err.
func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Newf builds an *Error of the given kind from a format string.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}
