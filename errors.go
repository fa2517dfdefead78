// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jframe

import (
	"errors"
	"fmt"
)

var (
	// ErrIncomplete is reported when the input does not yet contain a
	// complete top-level value. It is not a failure: the caller should supply
	// more input and try again.
	ErrIncomplete = errors.New("incomplete value")

	// ErrUnbalanced is reported (wrapped in an *UnbalancedError) when a close
	// bracket or brace appears with no matching open token. Input in this
	// state will never complete without intervention.
	ErrUnbalanced = errors.New("unbalanced close token")

	// ErrFrameTooLarge is reported when an incomplete value exceeds the
	// configured maximum frame size.
	ErrFrameTooLarge = errors.New("frame exceeds maximum size")
)

// UnbalancedError is the concrete type of errors reporting an unmatched close
// token. It wraps ErrUnbalanced.
type UnbalancedError struct {
	Offset   int     // byte offset of the close token
	Location LineCol // line and column of the close token
	Token    byte    // the close token, '}' or ']'
}

// Error satisfies the error interface.
func (e *UnbalancedError) Error() string {
	return fmt.Sprintf("at %s: unexpected %q (offset %d)", e.Location, e.Token, e.Offset)
}

// Unwrap supports error wrapping.
func (e *UnbalancedError) Unwrap() error { return ErrUnbalanced }
