// Copyright 2023 The Veil Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chunkedfile supports tests that assert where in the input
// source errors are reported.
//
// A chunked file holds several test inputs separated by "---" lines.
// Within a chunk, a line containing "###" declares that processing
// the chunk must produce an error at that line; the text after the
// marker is a Go string literal holding a regular expression the
// error message must match:
//
//	x = [1] = 2 ### "cannot bind"
//	---
//	y = 1
//
// A test feeds each chunk's Source into the code under test, calls
// GotError for every error that occurred, then Done. Mismatches
// between actual and declared errors are reported through the
// Reporter, normally a *testing.T.
package chunkedfile // import "github.com/veil-lang/veil/internal/chunkedfile"

import (
	"os"
	"regexp"
	"strconv"
	"strings"
)

// A Chunk is one input from a chunked file, with its declared errors.
type Chunk struct {
	Source   string // the chunk text, padded to preserve line numbers
	filename string
	report   Reporter
	want     map[int]*regexp.Regexp // line to unmatched expectation
}

// A Reporter receives mismatch reports. *testing.T implements it.
type Reporter interface {
	Errorf(format string, args ...interface{})
}

const marker = "###"

// Read parses a chunked file.
// Each chunk's Source is padded with leading blank lines so that its
// line numbers agree with the original file, which keeps reported
// positions meaningful.
//
// Messages passed to the reporter begin with a newline so that the
// file position survives the prefix added by (*testing.T).Errorf.
func Read(filename string, report Reporter) []Chunk {
	data, err := os.ReadFile(filename)
	if err != nil {
		report.Errorf("%s", err)
		return nil
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	var chunks []Chunk
	linenum := 1
	for _, chunk := range strings.Split(text, "\n---\n") {
		src := strings.Repeat("\n", linenum-1) + chunk

		want := make(map[int]*regexp.Regexp)
		for _, line := range strings.Split(chunk, "\n") {
			if i := strings.Index(line, marker); i >= 0 {
				quoted := strings.TrimSpace(line[i+len(marker):])
				pattern, err := strconv.Unquote(quoted)
				if err != nil {
					report.Errorf("\n%s:%d: expectation is not a quoted regexp: %s", filename, linenum, quoted)
				} else if rx, err := regexp.Compile(pattern); err != nil {
					report.Errorf("\n%s:%d: %v", filename, linenum, err)
				} else {
					want[linenum] = rx
				}
			}
			linenum++
		}
		linenum++ // the --- separator line

		chunks = append(chunks, Chunk{src, filename, report, want})
	}
	return chunks
}

// GotError reports that processing the chunk produced an error at the
// given line. An error with no matching expectation, or one whose
// message does not match its expectation's pattern, is a test failure.
func (chunk *Chunk) GotError(linenum int, msg string) {
	rx, ok := chunk.want[linenum]
	if !ok {
		chunk.report.Errorf("\n%s:%d: unexpected error: %v", chunk.filename, linenum, msg)
		return
	}
	delete(chunk.want, linenum)
	if !rx.MatchString(msg) {
		chunk.report.Errorf("\n%s:%d: error %q does not match pattern %q", chunk.filename, linenum, msg, rx)
	}
}

// Done reports any declared errors that never occurred.
func (chunk *Chunk) Done() {
	for linenum, rx := range chunk.want {
		chunk.report.Errorf("\n%s:%d: expected error matching %q", chunk.filename, linenum, rx)
	}
}
