// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package errors

import (
	stderrors "errors"
	"fmt"
)

// Code identifies a class of error for programmatic handling.
type Code string

const (
	// CodeValidation covers malformed or forbidden input, caught before
	// any side effect.
	CodeValidation Code = "validation"
	// CodeNotFound covers references to a process, service or tool that
	// does not exist. Routine, never fatal.
	CodeNotFound Code = "not_found"
	// CodeExternalCommand covers OS commands exiting non-zero or timing out.
	CodeExternalCommand Code = "external_command"
	// CodeTransport covers malformed RPC envelopes and transport faults.
	CodeTransport Code = "transport"
	// CodeAPI covers failures talking to the upstream LLM API.
	CodeAPI Code = "api"
)

// Error wraps an underlying error with a code and message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message == "" {
		if e.Err != nil {
			return e.Err.Error()
		}
		return string(e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new coded error with a message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a new coded error that wraps an underlying error.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the code from an error, or empty if it carries none.
func CodeOf(err error) Code {
	var coded *Error
	if stderrors.As(err, &coded) && coded != nil {
		return coded.Code
	}
	return ""
}
