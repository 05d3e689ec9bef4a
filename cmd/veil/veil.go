// Copyright 2023 The Veil Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The veil command obfuscates a veil source file.
//
// With a file argument or -c, it obfuscates the program and writes
// the result to stdout or the -o file. With no argument on a
// terminal, it starts a read-obfuscate-print loop (REPL); with no
// argument on a pipe, it filters stdin to stdout.
package main // import "github.com/veil-lang/veil/cmd/veil"

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"golang.org/x/term"

	"github.com/veil-lang/veil/obfuscate"
	"github.com/veil-lang/veil/rename"
	"github.com/veil-lang/veil/repl"
)

// flags
var (
	cpuprofile = flag.String("cpuprofile", "", "gather Go CPU profile in this file")
	memprofile = flag.String("memprofile", "", "gather Go memory profile in this file")
	execprog   = flag.String("c", "", "obfuscate program `prog`")
	outfile    = flag.String("o", "", "write output to `file` instead of stdout")

	policy    = flag.String("policy", "full", "rename policy: full or selective")
	seed      = flag.Int64("seed", -1, "alias generator seed; -1 picks one from the clock")
	alias     = flag.String("alias", "random", "alias style: random or hashed")
	loopscope = flag.String("loopscope", "isolated", "loop body scoping: isolated or leaking")
	maxdepth  = flag.Int("maxdepth", rename.DefaultMaxDepth, "scope nesting limit")

	keepStrings    = flag.Bool("keep-strings", false, "do not encode string literals")
	keepDocstrings = flag.Bool("keep-docstrings", false, "when encoding strings, keep leading docstring literals")
)

func main() {
	os.Exit(doMain())
}

func doMain() int {
	log.SetPrefix("veil: ")
	log.SetFlags(0)
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		check(err)
		err = pprof.StartCPUProfile(f)
		check(err)
		defer func() {
			pprof.StopCPUProfile()
			err := f.Close()
			check(err)
		}()
	}
	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		check(err)
		defer func() {
			runtime.GC()
			err := pprof.Lookup("heap").WriteTo(f, 0)
			check(err)
			err = f.Close()
			check(err)
		}()
	}

	opts, err := options()
	if err != nil {
		log.Print(err)
		return 1
	}

	switch {
	case flag.NArg() == 1 || *execprog != "":
		var (
			filename string
			src      interface{}
		)
		if *execprog != "" {
			// Obfuscate provided program.
			filename = "cmdline"
			src = *execprog
		} else {
			// Obfuscate specified file.
			filename = flag.Arg(0)
		}
		if err := obfuscateTo(filename, src, opts); err != nil {
			repl.PrintError(err)
			return 1
		}
	case flag.NArg() == 0:
		if term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Println("Welcome to veil (github.com/veil-lang/veil)")
			repl.REPL(opts)
		} else if err := obfuscateTo("<stdin>", os.Stdin, opts); err != nil {
			repl.PrintError(err)
			return 1
		}
	default:
		log.Print("want at most one veil file name")
		return 1
	}

	return 0
}

// options maps the flags onto pipeline options.
func options() (*obfuscate.Options, error) {
	opts := &obfuscate.Options{
		Seed:               *seed,
		MaxDepth:           *maxdepth,
		EncodeStrings:      !*keepStrings,
		PreserveDocstrings: *keepDocstrings,
	}
	if *seed < 0 {
		opts.Seed = time.Now().UnixNano()
	}

	switch *policy {
	case "full":
		opts.Policy = rename.Full
	case "selective":
		opts.Policy = rename.Selective
	default:
		return nil, fmt.Errorf("invalid -policy %q: want full or selective", *policy)
	}

	switch *alias {
	case "random":
		opts.AliasStyle = rename.RandomAlias
	case "hashed":
		opts.AliasStyle = rename.HashedAlias
	default:
		return nil, fmt.Errorf("invalid -alias %q: want random or hashed", *alias)
	}

	switch *loopscope {
	case "isolated":
		opts.LoopScoping = rename.IsolatedLoopScope
	case "leaking":
		opts.LoopScoping = rename.LeakingLoopScope
	default:
		return nil, fmt.Errorf("invalid -loopscope %q: want isolated or leaking", *loopscope)
	}

	return opts, nil
}

func obfuscateTo(filename string, src interface{}, opts *obfuscate.Options) error {
	out, err := obfuscate.Source(filename, src, opts)
	if err != nil {
		return err
	}
	if *outfile != "" {
		return os.WriteFile(*outfile, out, 0666)
	}
	_, err = os.Stdout.Write(out)
	return err
}

func check(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
