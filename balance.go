// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jframe

import "go4.org/mem"

// Balanced reports the end offset of the first complete top-level JSON object
// or array at the front of data. The offset is one past the closing token, so
// data[:end] is the complete value including any leading whitespace. Bytes
// following the value are ignored. Balanced does not modify data.
//
// If data does not yet contain a complete value, Balanced returns
// ErrIncomplete. If a close token appears before any matching open token,
// Balanced returns an error of concrete type *UnbalancedError.
//
// Only the structural bytes " \ { } [ ] are interpreted, so a top-level
// scalar (string, number, true, false, null) never completes.
func Balanced(data []byte) (int, error) { return balanced(mem.B(data), false) }

// BalancedString is as Balanced, but accepts a string.
func BalancedString(s string) (int, error) { return balanced(mem.S(s), false) }

func balanced(data mem.RO, comments bool) (int, error) {
	st := scanState{comments: comments}
	switch end, res := st.scan(data, 0); res {
	case scanDone:
		return end, nil
	case scanUnbalanced:
		return 0, unbalancedAt(data, end, 0, startOfInput)
	default:
		return 0, ErrIncomplete
	}
}

// unbalancedAt constructs an error for the close token at offset i of data.
// The base and loc arguments give the offset and location of data[0].
func unbalancedAt(data mem.RO, i, base int, loc LineCol) *UnbalancedError {
	return &UnbalancedError{
		Offset:   base + i,
		Location: loc.advance(data.SliceTo(i)),
		Token:    data.At(i),
	}
}

type scanResult int

const (
	scanMore       scanResult = iota // input exhausted, value not complete
	scanDone                         // a top-level value is complete
	scanUnbalanced                   // close token with nothing open
)

// scanState is the state of a scan for the end of a balanced value.  The zero
// value is ready for use at the start of an input.
type scanState struct {
	comments bool // treat comments as opaque

	depth    int  // open braces and brackets
	inString bool // inside a string literal
	escaped  bool // previous string byte was an unescaped backslash

	slash   bool // saw '/' outside a string (comments only)
	comment byte // '/' in a line comment, '*' in a block comment, else 0
	star    bool // previous block comment byte was '*'
}

// scan examines data from offset pos, updating the state.
//
// For scanDone, the offset is one past the closing token. For scanUnbalanced,
// the offset is that of the offending close token, and the state is left as
// it was before that token. For scanMore, the offset is data.Len().
func (s *scanState) scan(data mem.RO, pos int) (int, scanResult) {
	for i := pos; i < data.Len(); i++ {
		b := data.At(i)
		switch {
		case s.inString:
			if s.escaped {
				s.escaped = false
			} else if b == '\\' {
				s.escaped = true
			} else if b == '"' {
				s.inString = false
			}
			continue

		case s.comment == '/':
			if b == '\n' {
				s.comment = 0
			}
			continue

		case s.comment == '*':
			if s.star && b == '/' {
				s.comment = 0
			}
			s.star = b == '*'
			continue

		case s.slash:
			s.slash = false
			if b == '/' || b == '*' {
				s.comment = b
				s.star = false
				continue
			}
		}

		switch b {
		case '{', '[':
			s.depth++
		case '}', ']':
			if s.depth == 0 {
				return i, scanUnbalanced
			}
			s.depth--
			if s.depth == 0 {
				return i + 1, scanDone
			}
		case '"':
			s.inString = true
			s.escaped = false
		case '/':
			s.slash = s.comments
		}
	}
	return data.Len(), scanMore
}

// blank reports whether data consists only of JSON whitespace and, if
// comments is true, complete or unterminated comments. An unterminated block
// comment is not blank.
func blank(data mem.RO, comments bool) bool {
	for data.Len() != 0 {
		switch b := data.At(0); {
		case isSpace(b):
			data = data.SliceFrom(1)
		case comments && mem.HasPrefix(data, mem.S("//")):
			i := mem.IndexByte(data, '\n')
			if i < 0 {
				return true
			}
			data = data.SliceFrom(i + 1)
		case comments && mem.HasPrefix(data, mem.S("/*")):
			i := mem.Index(data.SliceFrom(2), mem.S("*/"))
			if i < 0 {
				return false
			}
			data = data.SliceFrom(i + 4)
		default:
			return false
		}
	}
	return true
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\r' || b == '\n' || b == '\t'
}
