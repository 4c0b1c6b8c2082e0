// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

// Package toolerr defines the error taxonomy shared by every mlvtools
// component. Each failure carries a Kind, a human-readable message and an
// optional underlying cause; errors.Is matches both the kind sentinel and
// anything in the cause chain.
package toolerr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	Syntax      Kind = iota + 1 // malformed annotation or docstring
	Consistency                 // annotations that are valid alone but conflict together
	IO                          // file could not be read or written
	Format                      // file content could not be decoded
	Config                      // invalid configuration
)

// Sentinel errors for programmatic checks via errors.Is.
var (
	ErrSyntax      = errors.New("syntax error")
	ErrConsistency = errors.New("consistency error")
	ErrIO          = errors.New("i/o error")
	ErrFormat      = errors.New("format error")
	ErrConfig      = errors.New("configuration error")
)

func (k Kind) String() string {
	switch k {
	case Syntax:
		return "syntax"
	case Consistency:
		return "consistency"
	case IO:
		return "io"
	case Format:
		return "format"
	case Config:
		return "config"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case Syntax:
		return ErrSyntax
	case Consistency:
		return ErrConsistency
	case IO:
		return ErrIO
	case Format:
		return ErrFormat
	case Config:
		return ErrConfig
	default:
		return nil
	}
}

// Error is the single error kind returned by mlvtools components.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

// Unwrap exposes both the kind sentinel and the cause.
func (e *Error) Unwrap() []error {
	var errs []error
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// New returns an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns an error of the given kind chaining cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf reports the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
