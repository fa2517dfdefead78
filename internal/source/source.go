// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package source opens inputs for framing, with optional decompression.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Open opens the named file for reading, or standard input if name is "-".
// The mode selects decompression as for Wrap; in mode "auto" the method is
// chosen from the file extension.
func Open(name, mode string) (io.ReadCloser, error) {
	var f io.ReadCloser = io.NopCloser(os.Stdin)
	if name != "-" {
		var err error
		f, err = os.Open(name)
		if err != nil {
			return nil, err
		}
	}
	if mode == "auto" {
		mode = modeFor(name)
	}
	rc, err := Wrap(f, mode)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %q: %w", name, err)
	}
	return readCloser{Reader: rc, close: []io.Closer{rc, f}}, nil
}

// Wrap returns a reader that decompresses r according to mode, which is one
// of "none", "gzip", or "zstd". Closing the result does not close r.
func Wrap(r io.Reader, mode string) (io.ReadCloser, error) {
	switch mode {
	case "", "none", "auto":
		return io.NopCloser(r), nil
	case "gzip":
		return gzip.NewReader(r)
	case "zstd":
		dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("unknown decompression %q", mode)
	}
}

func modeFor(name string) string {
	switch filepath.Ext(name) {
	case ".gz":
		return "gzip"
	case ".zst":
		return "zstd"
	default:
		return "none"
	}
}

type readCloser struct {
	io.Reader
	close []io.Closer
}

func (r readCloser) Close() error {
	var errs []error
	for _, c := range r.close {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
