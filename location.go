// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jframe

import (
	"fmt"

	"go4.org/mem"
)

// A Span describes a contiguous span of a source input.
type Span struct {
	Pos int // the start offset, 0-based
	End int // the end offset, 0-based (noninclusive)
}

// Len reports the length of the span in bytes.
func (s Span) Len() int { return s.End - s.Pos }

func (s Span) String() string { return fmt.Sprintf("%d-%d", s.Pos, s.End) }

// A LineCol describes the line number and column offset of a location in
// source text.
type LineCol struct {
	Line   int // line number, 1-based
	Column int // byte offset of column in line, 0-based
}

func (lc LineCol) String() string { return fmt.Sprintf("%d:%d", lc.Line, lc.Column) }

// startOfInput is the location of the first byte of an input.
var startOfInput = LineCol{Line: 1}

// advance returns the location reached from lc after consuming text.
func (lc LineCol) advance(text mem.RO) LineCol {
	for {
		i := mem.IndexByte(text, '\n')
		if i < 0 {
			lc.Column += text.Len()
			return lc
		}
		lc.Line++
		lc.Column = 0
		text = text.SliceFrom(i + 1)
	}
}
