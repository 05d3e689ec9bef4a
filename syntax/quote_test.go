// Copyright 2023 The Veil Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import "testing"

var quoteTests = []struct {
	q   string // quoted
	s   string // unquoted (actual string)
	std bool   // q is standard form for s
}{
	{`""`, "", true},
	{`''`, "", false},
	{`"hello"`, `hello`, true},
	{`'hello'`, `hello`, false},
	{`"quote\"here"`, `quote"here`, true},
	{`'quote"here'`, `quote"here`, false},
	{`"quote'here"`, `quote'here`, true},
	{`'quote\'here'`, `quote'here`, false},
	{`"""hello " ' world "" asdf ''' foo"""`, `hello " ' world "" asdf ''' foo`, false},
	{`"""hello
world"""`, "hello\nworld", false},
	{`"a\x41b"`, "aAb", false},
	{`"\x00\x7f"`, "\x00\x7f", true},
	{`"\n\r\t"`, "\n\r\t", true},
	{`"back\\slash"`, `back\slash`, true},
	{`"line\
cont"`, "linecont", false},
	{`"\0"`, "\x00", false},
}

func TestQuote(t *testing.T) {
	for _, tt := range quoteTests {
		if !tt.std {
			continue
		}
		q := Quote(tt.s)
		if q != tt.q {
			t.Errorf("Quote(%#q) = %s, want %s", tt.s, q, tt.q)
		}
	}
}

func TestUnquote(t *testing.T) {
	for _, tt := range quoteTests {
		s, err := unquote(tt.q)
		if s != tt.s || err != nil {
			t.Errorf("unquote(%s) = %#q, %v, want %#q, nil", tt.q, s, err, tt.s)
		}
	}
}

func TestUnquoteErrors(t *testing.T) {
	for _, tt := range []struct {
		q, want string
	}{
		{`"`, "string literal too short"},
		{`abc`, "string literal has invalid quotes"},
		{`"abc'`, "unterminated string literal"},
		{`"\z"`, `invalid escape sequence \z`},
		{`"\xf"`, `truncated escape sequence \xf`},
		{`"\xfg"`, `invalid escape sequence \xfg`},
	} {
		_, err := unquote(tt.q)
		if err == nil || err.Error() != tt.want {
			t.Errorf("unquote(%s) error = %v, want %q", tt.q, err, tt.want)
		}
	}
}

func TestQuoteRoundTrip(t *testing.T) {
	for _, s := range []string{
		"",
		"hello, world",
		"tab\tnewline\n",
		"\x00\x01\x1f\x7f",
		`'single' and "double"`,
		`back\slash`,
	} {
		q := Quote(s)
		got, err := unquote(q)
		if err != nil {
			t.Errorf("unquote(Quote(%#q)) failed: %v", s, err)
			continue
		}
		if got != s {
			t.Errorf("unquote(Quote(%#q)) = %#q", s, got)
		}
	}
}
