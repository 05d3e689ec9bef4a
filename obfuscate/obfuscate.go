// Copyright 2023 The Veil Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package obfuscate applies the complete veil obfuscation pipeline:
// parse, rename identifiers, encode string literals, and print.
package obfuscate // import "github.com/veil-lang/veil/obfuscate"

import (
	"github.com/veil-lang/veil/rename"
	"github.com/veil-lang/veil/syntax"
)

// Options configure the pipeline. The zero value parses and renames
// with rename's defaults and leaves string literals alone.
type Options struct {
	Policy      rename.Policy
	Seed        int64
	AliasStyle  rename.AliasStyle
	LoopScoping rename.LoopScoping
	MaxDepth    int

	// EncodeStrings replaces each string literal with an expression
	// that decodes its hex form at run time.
	EncodeStrings bool

	// PreserveDocstrings keeps a leading string literal of a file,
	// def, or class body out of string encoding.
	PreserveDocstrings bool
}

func (opts *Options) renameOptions() *rename.Options {
	return &rename.Options{
		Policy:      opts.Policy,
		Seed:        opts.Seed,
		AliasStyle:  opts.AliasStyle,
		LoopScoping: opts.LoopScoping,
		MaxDepth:    opts.MaxDepth,
	}
}

// Source obfuscates a veil program and returns its new source text.
// The src parameter is as for syntax.Parse; opts may be nil.
func Source(filename string, src interface{}, opts *Options) ([]byte, error) {
	f, err := syntax.Parse(filename, src, 0)
	if err != nil {
		return nil, err
	}
	if err := Tree(f, opts); err != nil {
		return nil, err
	}
	return []byte(syntax.UnparseFile(f)), nil
}

// Tree obfuscates a parsed tree in place, for callers that own
// parsing and printing. On error the tree must be discarded.
func Tree(f *syntax.File, opts *Options) error {
	if opts == nil {
		opts = new(Options)
	}
	if err := rename.File(f, opts.renameOptions()); err != nil {
		return err
	}
	if opts.EncodeStrings {
		// Renaming runs first: the decoder expressions introduced
		// here use bare builtin names, which the renamer would
		// otherwise treat as unresolved loads.
		EncodeStrings(f, opts)
	}
	return nil
}
