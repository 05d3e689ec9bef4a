// Copyright 2023 The Veil Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// Veil string literals: quoting and unquoting.

import (
	"fmt"
	"strings"
)

// unquote unquotes the quoted string, returning the actual
// string value. The string may be single- or double-quoted,
// or triple-quoted with either quote character.
func unquote(quoted string) (s string, err error) {
	if len(quoted) < 2 {
		err = fmt.Errorf("string literal too short")
		return
	}
	quote := quoted[0]
	if quote != '"' && quote != '\'' {
		err = fmt.Errorf("string literal has invalid quotes")
		return
	}
	if quoted[len(quoted)-1] != quote {
		err = fmt.Errorf("unterminated string literal")
		return
	}

	// triple quote?
	if len(quoted) >= 6 &&
		quoted[1] == quote && quoted[2] == quote &&
		strings.HasSuffix(quoted, quoted[:3]) {
		quoted = quoted[3 : len(quoted)-3]
	} else {
		quoted = quoted[1 : len(quoted)-1]
	}

	// no escapes?
	if !strings.Contains(quoted, "\\") {
		s = quoted
		return
	}

	var buf strings.Builder
	for len(quoted) > 0 {
		c := quoted[0]
		if c != '\\' {
			buf.WriteByte(c)
			quoted = quoted[1:]
			continue
		}
		if len(quoted) < 2 {
			err = fmt.Errorf("truncated escape sequence \\")
			return
		}
		switch quoted[1] {
		case '\n':
			// Ignore the escape and the line break.
			quoted = quoted[2:]

		case 'n':
			buf.WriteByte('\n')
			quoted = quoted[2:]
		case 't':
			buf.WriteByte('\t')
			quoted = quoted[2:]
		case 'r':
			buf.WriteByte('\r')
			quoted = quoted[2:]
		case '0':
			buf.WriteByte(0)
			quoted = quoted[2:]
		case '\\', '\'', '"':
			buf.WriteByte(quoted[1])
			quoted = quoted[2:]

		case 'x':
			if len(quoted) < 4 {
				err = fmt.Errorf("truncated escape sequence %s", quoted)
				return
			}
			var n int
			for _, c := range quoted[2:4] {
				var d int
				switch {
				case '0' <= c && c <= '9':
					d = int(c) - '0'
				case 'a' <= c && c <= 'f':
					d = int(c) - 'a' + 10
				case 'A' <= c && c <= 'F':
					d = int(c) - 'A' + 10
				default:
					err = fmt.Errorf("invalid escape sequence %s", quoted[:4])
					return
				}
				n = n*16 + d
			}
			buf.WriteByte(byte(n))
			quoted = quoted[4:]

		default:
			err = fmt.Errorf(`invalid escape sequence \%c`, quoted[1])
			return
		}
	}
	s = buf.String()
	return
}

// Quote returns a double-quoted veil string literal denoting s.
func Quote(s string) string {
	const hex = "0123456789abcdef"
	var buf strings.Builder
	buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if c < 0x20 || c == 0x7f {
				buf.WriteString(`\x`)
				buf.WriteByte(hex[c>>4])
				buf.WriteByte(hex[c&0xf])
			} else {
				buf.WriteByte(c)
			}
		}
	}
	buf.WriteByte('"')
	return buf.String()
}
