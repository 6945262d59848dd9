package errors

import (
	"bufio"
	"fmt"
	"os"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig   Category = "config"
	CategoryScenario Category = "scenario"
	CategoryCLI      Category = "cli"
	CategoryRuntime  Category = "runtime"
)

// Location represents a position in a source file.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// OzError is a structured error with a code, source location and a hint
// for fixing it.
type OzError struct {
	// Code is a unique error identifier (e.g., "E201").
	Code string

	// Category is the error type (config, scenario, cli, runtime).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is where the error occurred, usually in a scenario file.
	Location *Location

	// Context contains surrounding source lines.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *OzError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *OzError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a source location to the error and reads the lines
// around it for display.
func (e *OzError) WithLocation(file string, line, column int) *OzError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *OzError) WithSuggestion(s string) *OzError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *OzError) WithDetail(d string) *OzError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *OzError) Wrap(err error) *OzError {
	e.Wrapped = err
	return e
}

func readContextLines(filename string, targetLine, contextSize int) []string {
	if targetLine <= 0 {
		return nil
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := max(targetLine-contextSize/2, 1)
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates an OzError from a registered error code.
func New(code string) *OzError {
	template, ok := registry[code]
	if !ok {
		return &OzError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &OzError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates an OzError with a formatted message and no code.
func Newf(category Category, format string, args ...any) *OzError {
	return &OzError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err in an OzError with the given code. Errors that are
// already OzErrors are returned unchanged.
func FromError(err error, code string) *OzError {
	if err == nil {
		return nil
	}
	if oe, ok := err.(*OzError); ok {
		return oe
	}
	return New(code).Wrap(err)
}
