package fuzzy

import "fmt"

// ConfigurationError indicates that a variable, term or rule could not be
// registered: a duplicate name, a reference to something that doesn't exist, or
// invalid shape parameters.  These surface while an engine is being built, never
// while it is computing.
type ConfigurationError struct {
	msg string
}

// NewConfigurationError returns a new ConfigurationError with the given message.
func NewConfigurationError(msg string) ConfigurationError {
	return ConfigurationError{msg: msg}
}

func (e ConfigurationError) Error() string { return e.msg }

// UnknownVariableError indicates that Compute was given an input for a variable
// the engine doesn't know about.
type UnknownVariableError struct {
	Name string
}

func (e UnknownVariableError) Error() string {
	return fmt.Sprintf("Unknown input variable: %s", e.Name)
}

// ParseError indicates that a rule expression could not be reduced to a single
// selection or a conjunction of selections.
type ParseError struct {
	msg string
}

// NewParseError returns a new ParseError with the given message.
func NewParseError(msg string) ParseError {
	return ParseError{msg: msg}
}

func (e ParseError) Error() string { return e.msg }
