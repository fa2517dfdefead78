// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jframe_test

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/creachadair/jframe"
	"github.com/google/go-cmp/cmp"
)

// naiveEnd is a direct rendition of the balance rules, used as an oracle.
// It returns the end offset of the first value, -1 if the input is
// incomplete, or -(i+2) if there is an unmatched close at offset i.
func naiveEnd(data string) int {
	var depth int
	var inString, inBackslash bool
	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			if inBackslash {
				inBackslash = false
			} else if c == '\\' {
				inBackslash = true
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '{', '[':
			depth++
		case '}', ']':
			if depth == 0 {
				return -(i + 2)
			}
			depth--
			if depth == 0 {
				return i + 1
			}
		case '"':
			inString, inBackslash = true, false
		}
	}
	return -1
}

type framing struct {
	Frames     []string
	Rest       string // unconsumed input, if not unbalanced
	Unbalanced int    // stream offset of an unmatched close, or -1
}

// rescan frames input by rescanning the remainder from offset 0 after each
// value is removed.
func rescan(input string) framing {
	var out framing
	var base int
	for {
		end := naiveEnd(input)
		if end == -1 {
			out.Rest = input
			out.Unbalanced = -1
			return out
		} else if end < -1 {
			out.Unbalanced = base + (-end - 2)
			return out
		}
		out.Frames = append(out.Frames, input[:end])
		input = input[end:]
		base += end
	}
}

// frameChunks frames input with a Framer, writing it in chunks of the given
// sizes (cycling through sizes as needed).
func frameChunks(t *testing.T, input string, sizes []int) framing {
	t.Helper()
	out := framing{Unbalanced: -1}
	fr := jframe.NewFramer(nil)
	for i := 0; len(input) != 0; i++ {
		n := min(sizes[i%len(sizes)], len(input))
		fr.Write([]byte(input[:n]))
		input = input[n:]

		for {
			data, err := fr.Next()
			var uerr *jframe.UnbalancedError
			if err == nil {
				out.Frames = append(out.Frames, string(data))
				continue
			} else if errors.As(err, &uerr) {
				out.Unbalanced = uerr.Offset
			} else if !errors.Is(err, jframe.ErrIncomplete) {
				t.Fatalf("Next: unexpected error: %v", err)
			}
			break
		}
	}
	if out.Unbalanced < 0 {
		out.Rest = string(fr.Buffered())
	}
	return out
}

var framingInputs = []string{
	``,
	`{}`,
	`{"a":1}{"b":2}`,
	`{"a":1} {"b":[2,3]} partial {"c":`,
	` [1, {"x": "}]"}] ["\"", "\\"] {"esc":"\\\"}"}`,
	`{"a":"}"}]{"b":1}`,
	`]`,
	`{"nested": [[[{"deep": [[]]}]]]}{"second": {"and": ["more"]}}`,
	"{\"unicode\":\"日本語 }\"}\n[\"ok\"]\n",
	`"scalar" 15 null {"after":"scalars"}`,
}

func TestFramerMatchesRescan(t *testing.T) {
	sizes := [][]int{{1}, {2}, {3}, {5, 1, 8}, {64}, {1 << 20}}
	for _, input := range framingInputs {
		want := rescan(input)
		for _, sz := range sizes {
			got := frameChunks(t, input, sz)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Input: %#q, chunks %v\nFraming: (-want, +got)\n%s", input, sz, diff)
			}
		}
	}
}

func TestFramerMatchesRescanRandom(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	const alphabet = `{}[]"\ a:,`
	for range 500 {
		var sb strings.Builder
		n := rng.IntN(40)
		for range n {
			sb.WriteByte(alphabet[rng.IntN(len(alphabet))])
		}
		input := sb.String()
		sizes := []int{1 + rng.IntN(6), 1 + rng.IntN(6)}

		want := rescan(input)
		got := frameChunks(t, input, sizes)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Input: %#q, chunks %v\nFraming: (-want, +got)\n%s", input, sizes, diff)
		}

		// The one-shot scanner must agree with the oracle too.
		end, err := jframe.BalancedString(input)
		if oe := naiveEnd(input); oe > 0 && (err != nil || end != oe) {
			t.Errorf("Balanced(%#q): got (%d, %v), want %d", input, end, err, oe)
		} else if oe == -1 && !errors.Is(err, jframe.ErrIncomplete) {
			t.Errorf("Balanced(%#q): got (%d, %v), want incomplete", input, end, err)
		} else if oe < -1 && !errors.Is(err, jframe.ErrUnbalanced) {
			t.Errorf("Balanced(%#q): got (%d, %v), want unbalanced", input, end, err)
		}
	}
}

func TestFramerComments(t *testing.T) {
	tests := []struct {
		input string
		want  []string
		rest  string
	}{
		{`{"a": 1 /* } */} // ]` + "\n[2]", []string{`{"a": 1 /* } */}`, " // ]\n[2]"}, ""},
		{`/*/ } */{}`, []string{`/*/ } */{}`}, ""},
		{`/**/[/***/]`, []string{`/**/[/***/]`}, ""},
		{`[1 / 2]`, []string{`[1 / 2]`}, ""},
		{`["//", "/*"]{}`, []string{`["//", "/*"]`, `{}`}, ""},
		{"{ // }\n", nil, "{ // }\n"},
		{"// {\n{}", []string{"// {\n{}"}, ""},
	}
	for _, test := range tests {
		// Write one byte at a time to exercise state across writes.
		fr := jframe.NewFramer(&jframe.Options{AllowComments: true})
		var got []string
		for i := range len(test.input) {
			fr.Write([]byte{test.input[i]})
			for {
				data, err := fr.Next()
				if err != nil {
					if !errors.Is(err, jframe.ErrIncomplete) {
						t.Fatalf("Next: unexpected error: %v", err)
					}
					break
				}
				got = append(got, string(data))
			}
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("Input: %#q\nFrames: (-want, +got)\n%s", test.input, diff)
		}
		if rest := string(fr.Buffered()); rest != test.rest {
			t.Errorf("Input: %#q\nRest: got %#q, want %#q", test.input, rest, test.rest)
		}
	}

	// Without comments enabled, a comment is ordinary text.
	fr := jframe.NewFramer(nil)
	fr.Write([]byte("{ // }\n"))
	if data, err := fr.Next(); err != nil {
		t.Errorf("Next: unexpected error: %v", err)
	} else if got := string(data); got != "{ // }" {
		t.Errorf("Next: got %#q, want %#q", got, "{ // }")
	}
}

func TestFramerMaxSize(t *testing.T) {
	fr := jframe.NewFramer(&jframe.Options{MaxFrameSize: 8})
	fr.Write([]byte(`{"a":1}{"ab":1}{"long key":true}`))

	for _, want := range []string{`{"a":1}`, `{"ab":1}`} {
		data, err := fr.Next()
		if err != nil {
			t.Fatalf("Next: unexpected error: %v", err)
		} else if got := string(data); got != want {
			t.Errorf("Next: got %#q, want %#q", got, want)
		}
	}
	for range 2 {
		if _, err := fr.Next(); !errors.Is(err, jframe.ErrFrameTooLarge) {
			t.Errorf("Next: got %v, want %v", err, jframe.ErrFrameTooLarge)
		}
	}

	fr.Reset()
	fr.Write([]byte(`[]`))
	if data, err := fr.Next(); err != nil || string(data) != `[]` {
		t.Errorf("Next after Reset: got (%#q, %v), want ([], nil)", data, err)
	}

	// White space between values does not count toward the limit.
	const spaced = "\n \n \n \n \n " + `{"a":1}`
	fr.Write([]byte(spaced))
	if data, err := fr.Next(); err != nil || string(data) != spaced {
		t.Errorf("Next: got (%#q, %v), want (%#q, nil)", data, err, spaced)
	}

	// An incomplete value within the limit is not an error.
	fr.Write([]byte(`      {"a":`))
	if _, err := fr.Next(); !errors.Is(err, jframe.ErrIncomplete) {
		t.Errorf("Next: got %v, want %v", err, jframe.ErrIncomplete)
	}
}

func TestFramerSkip(t *testing.T) {
	fr := jframe.NewFramer(nil)
	if n := fr.Skip(); n != 0 {
		t.Errorf("Skip with no error: got %d, want 0", n)
	}
	fr.Write([]byte(`]]{"a":1}  "x" ] [1]`))

	type step struct {
		Frame  string
		Offset int // of the unmatched close, if Frame == ""
		Skip   int
	}
	want := []step{
		{Offset: 0, Skip: 1},
		{Offset: 1, Skip: 1},
		{Frame: `{"a":1}`},
		{Offset: 15, Skip: 7},
		{Frame: ` [1]`},
	}
	var got []step
	for {
		data, err := fr.Next()
		var uerr *jframe.UnbalancedError
		if err == nil {
			got = append(got, step{Frame: string(data)})
		} else if errors.As(err, &uerr) {
			// The error is sticky until Skip.
			if _, err2 := fr.Next(); err2 != err {
				t.Errorf("Next after error: got %v, want %v", err2, err)
			}
			got = append(got, step{Offset: uerr.Offset, Skip: fr.Skip()})
		} else {
			break
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Steps: (-want, +got)\n%s", diff)
	}
	if fr.Len() != 0 || fr.Offset() != 20 {
		t.Errorf("After: got Len %d, Offset %d; want 0, 20", fr.Len(), fr.Offset())
	}
}

func TestFramerLocation(t *testing.T) {
	fr := jframe.NewFramer(nil)
	fr.Write([]byte("{}\n{\n}\n ]"))

	type pos struct {
		Offset int
		Loc    string
	}
	var got []pos
	for {
		_, err := fr.Next()
		if err != nil {
			var uerr *jframe.UnbalancedError
			if !errors.As(err, &uerr) {
				t.Fatalf("Next: got %v, want *UnbalancedError", err)
			}
			got = append(got, pos{uerr.Offset, uerr.Location.String()})
			break
		}
		got = append(got, pos{fr.Offset(), fr.Location().String()})
	}
	want := []pos{{2, "1:2"}, {6, "3:1"}, {8, "4:1"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Locations: (-want, +got)\n%s", diff)
	}
}

func TestFramerReset(t *testing.T) {
	fr := jframe.NewFramer(nil)
	fr.Write([]byte(`{"partial":`))
	if _, err := fr.Next(); !errors.Is(err, jframe.ErrIncomplete) {
		t.Fatalf("Next: got %v, want %v", err, jframe.ErrIncomplete)
	}
	if !fr.Pending() {
		t.Error("Pending: got false, want true")
	}
	fr.Reset()
	if fr.Len() != 0 || fr.Pending() {
		t.Errorf("After Reset: Len %d, Pending %v; want 0, false", fr.Len(), fr.Pending())
	}
	if fr.Offset() != 11 {
		t.Errorf("Offset: got %d, want 11", fr.Offset())
	}
	fr.Write([]byte(`{}`))
	if data, err := fr.Next(); err != nil || string(data) != `{}` {
		t.Errorf("Next: got (%#q, %v), want ({}, nil)", data, err)
	}
}
