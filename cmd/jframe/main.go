// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Program jframe reads streams of concatenated JSON values and writes each
// value on its own line, as JSON or YAML.
//
// Usage:
//
//	jframe [flags] [file ...]
//	jframe [flags] -listen :9000
//
// With no files, jframe reads standard input. With -listen, jframe accepts TCP
// connections and frames the input from each connection separately.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/creachadair/jframe"
	"github.com/creachadair/jframe/internal/config"
	"github.com/creachadair/jframe/internal/sink"
	"github.com/creachadair/jframe/internal/source"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "jframe: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	cfg, inputs, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	log, err := cfg.NewLogger(stderr)
	if err != nil {
		return err
	}
	out, err := sink.NewWriter(stdout, cfg.Format)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close output: %w", cerr))
		}
	}()

	t := &tool{cfg: cfg, log: log, out: out}
	if cfg.Schema != "" {
		t.val, err = sink.LoadSchema(cfg.Schema)
		if err != nil {
			return err
		}
	}

	if cfg.Listen != "" {
		if len(inputs) != 0 {
			return errors.New("input files may not be combined with -listen")
		}
		var lc net.ListenConfig
		lst, err := lc.Listen(ctx, "tcp", cfg.Listen)
		if err != nil {
			return err
		}
		return t.serve(ctx, lst)
	}
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}
	var failed int
	for _, name := range inputs {
		if err := t.frameFile(name); err != nil {
			log.Error("input failed", "input", name, "err", err)
			failed++
		}
	}
	if failed != 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(inputs))
	}
	return nil
}

// parseFlags parses command-line flags. If a configuration file is named, its
// settings are loaded first, and flags set explicitly take precedence.
func parseFlags(args []string, stderr io.Writer) (*config.Config, []string, error) {
	fs := flag.NewFlagSet("jframe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: jframe [flags] [file ...]\n\nFlags:")
		fs.PrintDefaults()
	}

	flags := config.Default()
	configPath := fs.String("config", "", "Read settings from this TOML file")
	fs.BoolVar(&flags.AllowComments, "comments", flags.AllowComments, "Allow comments and trailing commas")
	fs.BoolVar(&flags.UseNumber, "use-number", flags.UseNumber, "Preserve numbers exactly")
	fs.IntVar(&flags.MaxFrameSize, "max-size", flags.MaxFrameSize, "Maximum size of a value in bytes, excluding leading white space (0 for no limit)")
	fs.BoolVar(&flags.SkipMalformed, "skip-malformed", flags.SkipMalformed, "Skip unmatched close tokens instead of failing")
	fs.StringVar(&flags.Format, "format", flags.Format, "Output format (json or yaml)")
	fs.StringVar(&flags.Schema, "schema", flags.Schema, "Validate values against this JSON Schema file")
	fs.StringVar(&flags.Decompress, "decompress", flags.Decompress, "Input decompression (none, auto, gzip, zstd)")
	fs.StringVar(&flags.Listen, "listen", flags.Listen, "Accept TCP connections at this address")
	fs.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&flags.LogFormat, "log-format", flags.LogFormat, "Log format (text or json)")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if *configPath == "" {
		return flags, fs.Args(), flags.Validate()
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, nil, err
	}
	override := map[string]func(){
		"comments":       func() { cfg.AllowComments = flags.AllowComments },
		"use-number":     func() { cfg.UseNumber = flags.UseNumber },
		"max-size":       func() { cfg.MaxFrameSize = flags.MaxFrameSize },
		"skip-malformed": func() { cfg.SkipMalformed = flags.SkipMalformed },
		"format":         func() { cfg.Format = flags.Format },
		"schema":         func() { cfg.Schema = flags.Schema },
		"decompress":     func() { cfg.Decompress = flags.Decompress },
		"listen":         func() { cfg.Listen = flags.Listen },
		"log-level":      func() { cfg.LogLevel = flags.LogLevel },
		"log-format":     func() { cfg.LogFormat = flags.LogFormat },
	}
	fs.Visit(func(f *flag.Flag) {
		if set, ok := override[f.Name]; ok {
			set()
		}
	})
	return cfg, fs.Args(), cfg.Validate()
}

type tool struct {
	cfg *config.Config
	log *slog.Logger
	out *sink.Writer
	val *sink.Validator // nil if no schema
}

func (t *tool) frameFile(name string) error {
	rc, err := source.Open(name, t.cfg.Decompress)
	if err != nil {
		return err
	}
	defer rc.Close()
	return t.frameStream(t.log.With("input", name), rc)
}

// frameStream reads values from r and writes them to the output until r is
// exhausted or an unrecoverable error occurs.
func (t *tool) frameStream(log *slog.Logger, r io.Reader) error {
	rd := jframe.NewReader(r, t.cfg.Options())
	var nvals, nbad int
	for {
		f, err := rd.Next()
		if err == io.EOF {
			log.Debug("end of input", "values", nvals, "invalid", nbad, "bytes", rd.Offset())
			return nil
		}
		var uerr *jframe.UnbalancedError
		if errors.As(err, &uerr) && t.cfg.SkipMalformed {
			n := rd.Skip()
			log.Warn("skipped malformed input", "offset", uerr.Offset, "location", uerr.Location.String(), "bytes", n)
			continue
		} else if err != nil {
			return err
		}

		if f.Err != nil {
			nbad++
			log.Warn("invalid value", "span", f.Span.String(), "err", f.Err)
			continue
		}
		if t.val != nil {
			if err := t.val.Validate(f.Value); err != nil {
				nbad++
				log.Warn("value does not match schema", "span", f.Span.String(), "err", err)
				continue
			}
		}
		if err := t.out.Write(f.Value); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		nvals++
	}
}

// serve accepts connections from lst until ctx ends, framing the input of
// each connection concurrently. Each connection has its own reader.
func (t *tool) serve(ctx context.Context, lst net.Listener) error {
	t.log.Info("listening", "addr", lst.Addr().String())
	stop := context.AfterFunc(ctx, func() { lst.Close() })
	defer stop()

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		conn, err := lst.Accept()
		if err != nil {
			if ctx.Err() != nil {
				t.log.Info("shutting down")
				return nil
			}
			return err
		}
		wg.Go(func() {
			defer conn.Close()
			stopConn := context.AfterFunc(ctx, func() { conn.Close() })
			defer stopConn()

			log := t.log.With("remote", conn.RemoteAddr().String())
			rc, err := source.Wrap(conn, t.cfg.Decompress)
			if err != nil {
				log.Error("connection failed", "err", err)
				return
			}
			defer rc.Close()

			log.Debug("connection opened")
			if err := t.frameStream(log, rc); err != nil && ctx.Err() == nil {
				log.Error("connection failed", "err", err)
				return
			}
			log.Debug("connection closed")
		})
	}
}
