// Copyright 2023 The Veil Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rename

import (
	"hash/fnv"
	"regexp"
	"testing"
)

var (
	randomRx = regexp.MustCompile(`^n[0-9A-Za-z]{8}$`)
	hashedRx = regexp.MustCompile(`^_[0-9a-f]{6}[a-z]{3}$`)
)

func TestRandomAliasShape(t *testing.T) {
	g := newAliasGen(RandomAlias, 1)
	for i := 0; i < 100; i++ {
		alias, ok := g.next("x")
		if !ok {
			t.Fatal("next failed")
		}
		if !randomRx.MatchString(alias) {
			t.Fatalf("alias %q does not match %s", alias, randomRx)
		}
	}
}

func TestHashedAliasShape(t *testing.T) {
	g := newAliasGen(HashedAlias, 1)
	a1, _ := g.next("original_name")
	a2, _ := g.next("original_name")
	if !hashedRx.MatchString(a1) {
		t.Fatalf("alias %q does not match %s", a1, hashedRx)
	}
	// Same hint, same hash prefix, distinct alias.
	if a1[:7] != a2[:7] {
		t.Errorf("prefixes differ: %q vs %q", a1, a2)
	}
	if a1 == a2 {
		t.Errorf("duplicate alias %q", a1)
	}

	b, _ := g.next("another_name")
	if b[:7] == a1[:7] {
		t.Errorf("different hints share prefix: %q vs %q", a1, b)
	}
}

func TestAliasDeterminism(t *testing.T) {
	g1 := newAliasGen(RandomAlias, 42)
	g2 := newAliasGen(RandomAlias, 42)
	for i := 0; i < 50; i++ {
		a1, _ := g1.next("x")
		a2, _ := g2.next("x")
		if a1 != a2 {
			t.Fatalf("step %d: seed 42 minted %q and %q", i, a1, a2)
		}
	}
}

func TestAliasUnique(t *testing.T) {
	g := newAliasGen(RandomAlias, 0)
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		alias, ok := g.next("x")
		if !ok {
			t.Fatal("next failed")
		}
		if seen[alias] {
			t.Fatalf("duplicate alias %q", alias)
		}
		seen[alias] = true
	}
}

// TestAliasExhaustion saturates the hashed namespace for one hint:
// its suffix has only 26^3 forms, so with all of them marked used the
// generator must give up within its attempt bound.
func TestAliasExhaustion(t *testing.T) {
	g := newAliasGen(HashedAlias, 0)

	h := fnv.New32a()
	h.Write([]byte("hint"))
	prefix := string(appendHex24([]byte{'_'}, h.Sum32()))
	for a := byte('a'); a <= 'z'; a++ {
		for b := byte('a'); b <= 'z'; b++ {
			for c := byte('a'); c <= 'z'; c++ {
				g.used[prefix+string([]byte{a, b, c})] = true
			}
		}
	}

	if alias, ok := g.next("hint"); ok {
		t.Errorf("next = %q, want exhaustion", alias)
	}
	// Other hints are unaffected.
	if _, ok := g.next("other"); !ok {
		t.Error("unrelated hint also exhausted")
	}
}
