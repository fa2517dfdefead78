// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package jframe implements framing for streams of concatenated JSON values.
//
// A framed stream is a sequence of JSON objects and arrays with no delimiter
// or length prefix between them, as often sent over a socket:
//
//	{"op":"hello"}{"op":"data","n":[1,2]}  [true]
//
// Framing finds where each top-level value ends by tracking the nesting of
// braces and brackets outside string literals. It does not validate the
// syntax of the value; that is left to a decoder.
//
// # Scanning
//
// Balanced reports the end offset of the first complete value in a buffer:
//
//	end, err := jframe.Balanced(buf)
//	if err == nil {
//	   process(buf[:end])
//	}
//
// If the value is not yet complete, Balanced returns ErrIncomplete. If the
// buffer has a close token with no matching open token, Balanced returns an
// error of concrete type *UnbalancedError; such input will never complete,
// and the caller must decide whether to discard it or give up.
//
// Top-level scalars (strings, numbers, true, false, null) are not framed.
//
// # Draining
//
// Drain decodes and removes each complete value from the front of a
// caller-owned buffer, reporting each value to a callback:
//
//	err := jframe.Drain(&buf, nil, func(f jframe.Frame) {
//	   if f.Err != nil {
//	      log.Printf("Bad value at %v: %v", f.Span, f.Err)
//	   } else {
//	      log.Printf("Value: %v", f.Value)
//	   }
//	})
//
// # Incremental framing
//
// A Framer holds a buffer and remembers how much of it has been scanned, so
// that input arriving in small pieces is scanned only once:
//
//	fr := jframe.NewFramer(nil)
//	fr.Write(chunk)
//	for {
//	   data, err := fr.Next()
//	   if err != nil {
//	      break // ErrIncomplete: wait for more input
//	   }
//	   process(data)
//	}
//
// A Reader wraps a Framer around an io.Reader, and ScanFrames is a split
// function for use with a bufio.Scanner.
package jframe
