package cmd

import (
	"errors"
	"fmt"
)

// Messages used for common command failures.
const (
	MessageUnknown          = "Unknown command: %v. Please check that the command exists."
	MessageParameterInvalid = "Invalid parameter: %v"
)

// Source represents a source of a command, such as the console.
type Source interface {
	// SendCommandOutput sends the output of a command to the source.
	SendCommandOutput(o *Output)
}

// Output holds the output of a command execution. It holds both messages and errors, which should be sent to the
// Source of the command.
type Output struct {
	errors   []error
	messages []string
}

// Printf formats a message and adds it to the command output.
func (o *Output) Printf(format string, a ...any) {
	o.messages = append(o.messages, fmt.Sprintf(format, a...))
}

// Print formats a message using the default formats and adds it to the command output.
func (o *Output) Print(a ...any) {
	o.messages = append(o.messages, fmt.Sprint(a...))
}

// Errorf formats an error message and adds it to the command output.
func (o *Output) Errorf(format string, a ...any) {
	o.errors = append(o.errors, fmt.Errorf(format, a...))
}

// Error adds an error to the command output. Nil errors are ignored.
func (o *Output) Error(err error) {
	if err == nil {
		return
	}
	o.errors = append(o.errors, err)
}

// Errort adds an error formatted from one of the Message constants to the output.
func (o *Output) Errort(message string, a ...any) {
	o.errors = append(o.errors, errors.New(fmt.Sprintf(message, a...)))
}

// Errors returns a list of all errors added to the command output.
func (o *Output) Errors() []error {
	return o.errors
}

// ErrorCount returns the count of errors that the command output has.
func (o *Output) ErrorCount() int {
	return len(o.errors)
}

// Messages returns a list of all messages added to the command output.
func (o *Output) Messages() []string {
	return o.messages
}

// MessageCount returns the count of messages that the command output has.
func (o *Output) MessageCount() int {
	return len(o.messages)
}
