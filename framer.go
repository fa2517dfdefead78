// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jframe

import "go4.org/mem"

// A Framer locates complete top-level values in a growing buffer of
// concatenated JSON text. Write appends input, and Next extracts the next
// complete value from the front of the buffer.
//
// A Framer remembers how far it has scanned, so each input byte is examined
// once no matter how many writes it takes for a value to complete. The values
// reported are the same as would be found by calling Balanced repeatedly on
// the unconsumed input.
//
// A Framer is not safe for concurrent use without external synchronization.
type Framer struct {
	comments bool
	maxSize  int

	buf  []byte
	head int       // offset in buf of the first unconsumed byte
	pos  int       // bytes after head already scanned
	lead int       // white space bytes after head, not counted by maxSize
	st   scanState // state as of head+pos
	err  error     // sticky scan error

	base int     // stream offset of buf[head]
	loc  LineCol // location of buf[head]
}

// NewFramer constructs a new empty Framer with the given options.
func NewFramer(opts *Options) *Framer {
	return &Framer{
		comments: opts.allowComments(),
		maxSize:  opts.maxFrameSize(),
		st:       scanState{comments: opts.allowComments()},
		loc:      startOfInput,
	}
}

// Write appends p to the buffer of f. It always returns len(p), nil.
func (f *Framer) Write(p []byte) (int, error) {
	if f.head > 0 && f.head >= len(f.buf)/2 {
		n := copy(f.buf, f.buf[f.head:])
		f.buf = f.buf[:n]
		f.head = 0
	}
	f.buf = append(f.buf, p...)
	return len(p), nil
}

// Next removes and returns the next complete value from the front of the
// buffer, including any white space preceding it. The returned slice is only
// valid until the next call to Write.
//
// If no complete value is available, Next returns ErrIncomplete.  If the
// buffer has an unmatched close token, Next returns an *UnbalancedError, and
// continues to do so until Skip or Reset is called. If MaxFrameSize is set and
// the value at the front of the buffer cannot complete within that limit,
// Next reports ErrFrameTooLarge until Reset is called. White space preceding
// the value does not count toward the limit.
func (f *Framer) Next() ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	data := f.buf[f.head:]
	for f.lead < len(data) && isSpace(data[f.lead]) {
		f.lead++
	}
	limit := len(data)
	if f.maxSize > 0 && limit-f.lead > f.maxSize {
		limit = f.lead + f.maxSize
	}

	end, res := f.st.scan(mem.B(data[:limit]), f.pos)
	switch res {
	case scanDone:
		frame := data[:end:end]
		f.consume(end)
		return frame, nil

	case scanUnbalanced:
		f.pos = end
		f.err = unbalancedAt(mem.B(data), end, f.base, f.loc)
		return nil, f.err
	}
	f.pos = limit
	if f.maxSize > 0 && limit-f.lead == f.maxSize {
		f.err = ErrFrameTooLarge
		return nil, f.err
	}
	return nil, ErrIncomplete
}

// Skip discards buffered input through the unmatched close token most
// recently reported by Next, and resumes scanning after it. It returns the
// number of bytes discarded. If Next has not reported an *UnbalancedError,
// Skip does nothing and returns 0.
func (f *Framer) Skip() int {
	if _, ok := f.err.(*UnbalancedError); !ok {
		return 0
	}
	n := f.pos + 1
	f.consume(n)
	f.err = nil
	return n
}

// Reset discards all buffered input and clears any error state. Stream
// offsets and locations continue to count the discarded input.
func (f *Framer) Reset() {
	f.consume(len(f.buf) - f.head)
	f.buf = f.buf[:0]
	f.head = 0
	f.err = nil
}

// Len reports the number of unconsumed bytes in the buffer.
func (f *Framer) Len() int { return len(f.buf) - f.head }

// Buffered returns a view of the unconsumed bytes in the buffer. The slice is
// only valid until the next call to Write or Next.
func (f *Framer) Buffered() []byte { return f.buf[f.head:] }

// Offset reports the stream offset of the first unconsumed byte, that is, the
// total number of bytes consumed by Next, Skip, and Reset.
func (f *Framer) Offset() int { return f.base }

// Location reports the line and column of the first unconsumed byte.
func (f *Framer) Location() LineCol { return f.loc }

// Pending reports whether the buffer holds anything other than white space
// and (if enabled) comments.
func (f *Framer) Pending() bool { return !blank(mem.B(f.Buffered()), f.comments) }

// consume discards n bytes from the front of the buffer and resets the scan
// state to the start of a value.
func (f *Framer) consume(n int) {
	f.loc = f.loc.advance(mem.B(f.buf[f.head : f.head+n]))
	f.base += n
	f.head += n
	f.pos = 0
	f.lead = 0
	f.st = scanState{comments: f.comments}
}
