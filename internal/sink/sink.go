// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package sink writes decoded values to an output stream.
package sink

import (
	"fmt"
	"io"
	"sync"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// A Writer writes decoded values to an output stream, either one JSON text
// per line or as a stream of YAML documents. A Writer is safe for concurrent
// use; each value is written completely before the next begins.
type Writer struct {
	mu   sync.Mutex
	w    io.Writer
	yenc *yaml.Encoder // nil for JSON
}

// NewWriter constructs a Writer that writes to w in the given format, which
// must be "json" or "yaml".
func NewWriter(w io.Writer, format string) (*Writer, error) {
	switch format {
	case "json":
		return &Writer{w: w}, nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		return &Writer{w: w, yenc: enc}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// Write writes a single value.
func (w *Writer) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.yenc != nil {
		return w.yenc.Encode(plain(v, intOrFloat))
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.w.Write(append(data, '\n'))
	return err
}

// Close flushes any buffered output. It does not close the underlying writer.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.yenc != nil {
		return w.yenc.Close()
	}
	return nil
}

// plain returns a copy of v in which JSON numbers have been replaced by the
// result of calling num, for consumers that do not understand json.Number.
func plain(v any, num func(json.Number) any) any {
	switch t := v.(type) {
	case json.Number:
		return num(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plain(e, num)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e, num)
		}
		return out
	default:
		return v
	}
}

// intOrFloat converts n to an int64 if it is an integer in range, or
// otherwise to a float64. If neither conversion works, n is returned as a
// string.
func intOrFloat(n json.Number) any {
	if z, err := n.Int64(); err == nil {
		return z
	} else if f, err := n.Float64(); err == nil {
		return f
	}
	return string(n)
}
