// Package errors provides structured error types for jarlock.
//
// Every failure that crosses a package boundary carries a machine-readable
// [Code], so the CLI can map errors to exit codes and the registry's fallback
// search can distinguish "this adapter doesn't know the plugin" from "the
// network is down" without string matching.
//
// # Usage
//
//	err := errors.New(errors.CodeNotFound, "plugin %q not found in Modrinth", id)
//	if errors.Is(err, errors.CodeNotFound) {
//	    // try the next source
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.CodeTransport, cause, "fetching %s", url)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error category.
type Code string

const (
	// CodeInvalidID marks a malformed or empty plugin identifier.
	// Detected without network I/O.
	CodeInvalidID Code = "INVALID_ID"

	// CodeNotFound means a project, resource, or named version does not
	// exist upstream.
	CodeNotFound Code = "NOT_FOUND"

	// CodeIncompatible means a version exists but fails platform-version
	// filtering. See [IncompatibleError] for the structured variant.
	CodeIncompatible Code = "INCOMPATIBLE"

	// CodeUnsupportedSource means the manifest names a source the registry
	// doesn't recognize.
	CodeUnsupportedSource Code = "UNSUPPORTED_SOURCE"

	// CodeTransport covers network errors, non-2xx HTTP responses,
	// timeouts, and malformed JSON bodies.
	CodeTransport Code = "TRANSPORT"

	// CodeIntegrity means downloaded bytes did not match the declared
	// digest. Always fatal, never retried.
	CodeIntegrity Code = "INTEGRITY"

	// CodeState means an operation's manifest/lockfile precondition failed
	// (e.g. sync without a lockfile, import with an existing manifest).
	CodeState Code = "STATE"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
// The wrapped error's code is shadowed by the new one.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err (or anything in its chain) carries the given code.
func Is(err error, code Code) bool {
	for err != nil {
		if c, ok := err.(interface{ ErrorCode() Code }); ok && c.ErrorCode() == code {
			return true
		}
		var e *Error
		if errors.As(err, &e) {
			return e.Code == code
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if no code is attached anywhere in the chain.
func GetCode(err error) Code {
	for err != nil {
		if c, ok := err.(interface{ ErrorCode() Code }); ok {
			return c.ErrorCode()
		}
		var e *Error
		if errors.As(err, &e) {
			return e.Code
		}
		err = errors.Unwrap(err)
	}
	return ""
}

// IncompatibleError reports a version that exists upstream but is not
// compatible with the requested Minecraft version. It carries the declared
// compatible versions so callers can render an actionable message.
type IncompatibleError struct {
	PluginID   string   // adapter-specific identifier, for the message
	Version    string   // the version that was requested or selected
	Minecraft  string   // the Minecraft version that was filtered against
	Compatible []string // platform versions the candidate does support (empty = unknown)
}

// Error implements the error interface.
func (e *IncompatibleError) Error() string {
	supported := "unknown"
	if len(e.Compatible) > 0 {
		supported = strings.Join(e.Compatible, ", ")
	}
	if e.Version == "" {
		return fmt.Sprintf("no versions of plugin '%s' are compatible with Minecraft %s. Latest version supports: %s",
			e.PluginID, e.Minecraft, supported)
	}
	return fmt.Sprintf("plugin '%s' version '%s' is not compatible with Minecraft %s. Compatible versions: %s",
		e.PluginID, e.Version, e.Minecraft, supported)
}

// ErrorCode returns the code for this error type.
func (e *IncompatibleError) ErrorCode() Code {
	return CodeIncompatible
}
