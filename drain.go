// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jframe

import "go4.org/mem"

// A Frame is a single framed value.
type Frame struct {
	Span  Span   // location of Data in the input
	Data  []byte // the raw text of the value, including leading white space
	Value any    // the decoded value, if Err == nil
	Err   error  // the error from decoding Data, or nil
}

// Drain extracts, decodes, and removes complete top-level values from the
// front of *buf, calling f for each one in input order. Each value is passed
// to f whether or not it decoded successfully; a decoding failure is reported
// in the Err field of the frame and does not stop the drain. The Data field
// of the frame is only valid until f returns. Span offsets are relative to
// the start of *buf at the time of the call.
//
// When Drain returns, the consumed bytes have been removed from *buf, with any
// remaining bytes moved to the front of the same underlying array. Drain
// returns nil when the remaining input holds no complete value. If it finds
// an unmatched close token, Drain stops and returns an *UnbalancedError; in
// that case *buf begins with the bytes that could not be framed.
//
// Drain panics if buf == nil.
func Drain(buf *[]byte, opts *Options, f func(Frame)) error {
	data := *buf
	dec := opts.decoder()
	comments := opts.allowComments()

	var pos int
	loc := startOfInput
	defer func() {
		n := copy(data, data[pos:])
		*buf = data[:n]
	}()
	for {
		rest := mem.B(data[pos:])
		st := scanState{comments: comments}
		end, res := st.scan(rest, 0)
		switch res {
		case scanMore:
			return nil
		case scanUnbalanced:
			return unbalancedAt(rest, end, pos, loc)
		}

		raw := data[pos : pos+end : pos+end]
		v, err := dec(raw)
		f(Frame{
			Span:  Span{Pos: pos, End: pos + end},
			Data:  raw,
			Value: v,
			Err:   err,
		})
		loc = loc.advance(rest.SliceTo(end))
		pos += end
	}
}

// DrainAll extracts and removes complete values from the front of *buf,
// calling f with each value that decodes successfully. Values that fail to
// decode are silently discarded. DrainAll reports an error only for an
// unmatched close token, as described for Drain.
func DrainAll(buf *[]byte, f func(any)) error {
	return Drain(buf, nil, func(fr Frame) {
		if fr.Err == nil {
			f(fr.Value)
		}
	})
}
