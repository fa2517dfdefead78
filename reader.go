// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jframe

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/creachadair/jframe/decode"
	"go4.org/mem"
)

const readBlockSize = 4096

// A Reader reads a stream of concatenated JSON values from an io.Reader.
//
// A Reader is not safe for concurrent use without external synchronization.
type Reader struct {
	r   io.Reader
	fr  *Framer
	dec decode.Func

	rbuf []byte
	eof  bool
}

// NewReader constructs a Reader that consumes input from r.
func NewReader(r io.Reader, opts *Options) *Reader {
	return &Reader{
		r:    r,
		fr:   NewFramer(opts),
		dec:  opts.decoder(),
		rbuf: make([]byte, readBlockSize),
	}
}

// Next reads and returns the next complete value from the input. The Data
// field of the result is only valid until the next call to Next. A value that
// fails to decode is returned with a nil error, and the decoding error in the
// Err field of the frame.
//
// Next returns io.EOF when the input is exhausted, or an error wrapping
// io.ErrUnexpectedEOF if the input ends partway through a value. An unmatched
// close token is reported as an *UnbalancedError, and continues to be
// reported until the caller calls Skip. Other errors are from the underlying
// reader, or ErrFrameTooLarge.
func (r *Reader) Next() (Frame, error) {
	for {
		data, err := r.fr.Next()
		if err == nil {
			end := r.fr.Offset()
			v, derr := r.dec(data)
			return Frame{
				Span:  Span{Pos: end - len(data), End: end},
				Data:  data,
				Value: v,
				Err:   derr,
			}, nil
		} else if !errors.Is(err, ErrIncomplete) {
			return Frame{}, err
		}

		if r.eof {
			if r.fr.Pending() {
				return Frame{}, fmt.Errorf("at offset %d: %d bytes of incomplete value: %w",
					r.fr.Offset(), r.fr.Len(), io.ErrUnexpectedEOF)
			}
			return Frame{}, io.EOF
		}
		nr, err := r.r.Read(r.rbuf)
		r.fr.Write(r.rbuf[:nr])
		if err == io.EOF {
			r.eof = true
		} else if err != nil {
			return Frame{}, err
		}
	}
}

// Skip discards the input through an unmatched close token reported by Next,
// so that reading may continue after it. It returns the number of bytes
// discarded, or 0 if Next has not reported an *UnbalancedError.
func (r *Reader) Skip() int { return r.fr.Skip() }

// Offset reports the number of bytes of input consumed so far.
func (r *Reader) Offset() int { return r.fr.Offset() }

// Values returns an iterator over the frames of r. The iterator ends when the
// input is exhausted, or after yielding an error.
func (r *Reader) Values() iter.Seq2[Frame, error] {
	return func(yield func(Frame, error) bool) {
		for {
			fr, err := r.Next()
			if err == io.EOF {
				return
			}
			if !yield(fr, err) || err != nil {
				return
			}
		}
	}
}

// ScanFrames is a split function for a bufio.Scanner that returns each
// complete top-level value of the input as a token, including any white space
// that precedes it. It reports an *UnbalancedError for an unmatched close
// token, and io.ErrUnexpectedEOF if the input ends partway through a value.
//
// Because the scanner does not preserve state between calls, a value that
// arrives in many pieces is rescanned for each piece. Use a Reader for large
// values.
func ScanFrames(data []byte, atEOF bool) (advance int, token []byte, err error) {
	end, err := Balanced(data)
	if err == nil {
		return end, data[:end], nil
	} else if !errors.Is(err, ErrIncomplete) {
		return 0, nil, err
	}
	if atEOF {
		if blank(mem.B(data), false) {
			return len(data), nil, nil
		}
		return 0, nil, io.ErrUnexpectedEOF
	}
	return 0, nil, nil
}
