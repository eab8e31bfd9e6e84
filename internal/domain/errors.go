// Package domain defines core types, interfaces, and errors for the lakehouse bootstrap.
package domain

import (
	"errors"
	"fmt"
)

// ConfigError indicates a missing or malformed settings document, or a missing required field.
type ConfigError struct {
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ConfigExistsError indicates a refusal to overwrite an existing settings file.
type ConfigExistsError struct {
	Path string
}

func (e *ConfigExistsError) Error() string {
	return fmt.Sprintf("%s already exists (use --force to overwrite)", e.Path)
}

// UnknownCommandError indicates a subcommand token that matches no operation.
type UnknownCommandError struct {
	Command string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q", e.Command)
}

// InvalidScaleError indicates a non-numeric or non-positive scale factor.
type InvalidScaleError struct {
	Value string
}

func (e *InvalidScaleError) Error() string {
	return fmt.Sprintf("invalid scale factor %q: must be a positive number", e.Value)
}

// StorageUnavailableError indicates the object-storage service could not be reached.
type StorageUnavailableError struct {
	Endpoint string
	Err      error
}

func (e *StorageUnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable at %s: %v", e.Endpoint, e.Err)
}

func (e *StorageUnavailableError) Unwrap() error { return e.Err }

// EngineError indicates the analytical engine rejected a statement.
// Op names the statement (e.g. "create secret"); the statement text is
// intentionally not kept since it may carry credentials.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine: %s: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

// ErrConfig creates a ConfigError with a formatted message.
func ErrConfig(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// WrapConfig creates a ConfigError carrying the underlying cause.
func WrapConfig(err error, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...), Err: err}
}

// ErrConfigExists creates a ConfigExistsError for path.
func ErrConfigExists(path string) *ConfigExistsError {
	return &ConfigExistsError{Path: path}
}

// ErrUnknownCommand creates an UnknownCommandError for the given token.
func ErrUnknownCommand(command string) *UnknownCommandError {
	return &UnknownCommandError{Command: command}
}

// ErrInvalidScale creates an InvalidScaleError for the raw value.
func ErrInvalidScale(value string) *InvalidScaleError {
	return &InvalidScaleError{Value: value}
}

// ErrStorageUnavailable creates a StorageUnavailableError.
func ErrStorageUnavailable(endpoint string, err error) *StorageUnavailableError {
	return &StorageUnavailableError{Endpoint: endpoint, Err: err}
}

// ErrEngine creates an EngineError for the named statement.
func ErrEngine(op string, err error) *EngineError {
	return &EngineError{Op: op, Err: err}
}

// Exit codes returned by the CLI.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// ExitCode maps an error to the process exit code. Usage mistakes
// (unknown command, bad scale) exit 2; every other failure exits 1.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var unknown *UnknownCommandError
	var scale *InvalidScaleError
	if errors.As(err, &unknown) || errors.As(err, &scale) {
		return ExitUsage
	}
	return ExitError
}
