// Copyright 2023 The Veil Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package repl provides a read/obfuscate/print loop for veil.
//
// It supports readline-style command editing and interrupts through
// Control-C. Each compound statement entered at the prompt (simple
// statements on one line, or a def, class, loop, or conditional read
// line by line until its block ends) is obfuscated and the rewritten
// source is printed.
package repl // import "github.com/veil-lang/veil/repl"

import (
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/veil-lang/veil/obfuscate"
	"github.com/veil-lang/veil/syntax"
)

// REPL executes a read, obfuscate, print loop with the given options.
// It returns when the input is exhausted (Control-D).
func REPL(opts *obfuscate.Options) {
	rl, err := readline.New(">>> ")
	if err != nil {
		PrintError(err)
		return
	}
	defer rl.Close()
	for {
		if err := rep(rl, opts); err != nil {
			if err == readline.ErrInterrupt {
				fmt.Println(err)
				continue
			}
			break
		}
	}
	fmt.Println()
}

// rep reads, obfuscates, and prints one compound statement.
//
// It returns an error (possibly readline.ErrInterrupt) only if
// readline failed. Parse and rename errors are printed.
func rep(rl *readline.Instance, opts *obfuscate.Options) error {
	eof := false

	// readline returns EOF, ErrInterrupt, or a line including "\n".
	//
	// Note: during Readline calls, Control-C causes Readline to return
	// ErrInterrupt but does not generate a SIGINT.
	rl.SetPrompt(">>> ")
	readline := func() ([]byte, error) {
		line, err := rl.Readline()
		rl.SetPrompt("... ")
		if err != nil {
			if err == io.EOF {
				eof = true
			}
			return nil, err
		}
		return []byte(line + "\n"), nil
	}

	f, err := syntax.ParseCompoundStmt("<stdin>", readline)
	if err != nil {
		if eof {
			return io.EOF
		}
		PrintError(err)
		return nil
	}
	if len(f.Stmts) == 0 {
		return nil // blank line
	}

	if err := obfuscate.Tree(f, opts); err != nil {
		PrintError(err)
		return nil
	}
	fmt.Print(syntax.UnparseFile(f))
	return nil
}

// PrintError prints the error to stderr.
func PrintError(err error) {
	fmt.Fprintln(os.Stderr, err)
}
