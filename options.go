// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jframe

import "github.com/creachadair/jframe/decode"

// Options control framing and decoding. A nil *Options is ready for use and
// provides default values as described.
type Options struct {
	// If true, line comments (// ...) and block comments (/* ... */) outside
	// string literals are ignored by the framer, and framed values are decoded
	// as HuJSON unless a Decoder is set.
	AllowComments bool

	// If true, the default decoder preserves numbers as decode.Number values
	// rather than converting them to float64.
	UseNumber bool

	// If positive, the maximum size in bytes of a single framed value,
	// including any leading comments but not leading white space. A value that cannot
	// complete within this many bytes is reported as ErrFrameTooLarge.
	// If zero, there is no limit.
	MaxFrameSize int

	// If set, this function is used to decode framed values. If nil, the
	// decoder is chosen from AllowComments and UseNumber.
	Decoder decode.Func
}

func (o *Options) allowComments() bool { return o != nil && o.AllowComments }

func (o *Options) maxFrameSize() int {
	if o == nil || o.MaxFrameSize < 0 {
		return 0
	}
	return o.MaxFrameSize
}

func (o *Options) decoder() decode.Func {
	if o != nil && o.Decoder != nil {
		return o.Decoder
	}
	dec := decode.JSON
	if o != nil && o.UseNumber {
		dec = decode.Numbers
	}
	if o.allowComments() {
		dec = decode.HuJSON(dec)
	}
	return dec
}
