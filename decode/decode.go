// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package decode provides decoders for framed JSON values.
//
// A decoder converts the complete bytes of a single framed value into a Go
// value. The result of decoding an object is a map[string]any, an array is
// an []any, and scalars are string, float64 (or Number), bool, and nil.
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/tailscale/hujson"
)

// A Func decodes a single JSON value from data. A Func must not retain data
// after it returns.
type Func func(data []byte) (any, error)

// Number is the type of numeric values produced by the Number decoder.
type Number = json.Number

// ErrExtraInput is reported when data contains anything other than white
// space after a decoded value.
var ErrExtraInput = errors.New("extra data after value")

// JSON decodes a standard JSON value from data. Numbers are decoded as
// float64 values.
func JSON(data []byte) (any, error) { return decodeOne(data, false) }

// Numbers decodes a standard JSON value from data. Numbers are decoded as
// Number values, preserving their original text.
func Numbers(data []byte) (any, error) { return decodeOne(data, true) }

func decodeOne(data []byte, useNumber bool) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if useNumber {
		dec.UseNumber()
	}
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, ErrExtraInput
	}
	return v, nil
}

// HuJSON returns a Func that accepts "human" JSON, which permits comments and
// trailing commas. The input is converted to standard JSON and passed to dec.
// If dec == nil, JSON is used. A line comment may end the input without a
// terminating newline.
func HuJSON(dec Func) Func {
	if dec == nil {
		dec = JSON
	}
	return func(data []byte) (any, error) {
		std, err := hujson.Standardize(append(bytes.Clone(data), '\n'))
		if err != nil {
			return nil, fmt.Errorf("standardize: %w", err)
		}
		return dec(std)
	}
}
