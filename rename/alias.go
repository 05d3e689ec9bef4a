// Copyright 2023 The Veil Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rename

import (
	"hash/fnv"
	"math/rand"
	"strconv"
)

// An AliasStyle selects how fresh identifiers are minted.
type AliasStyle int

const (
	// RandomAlias mints "n" followed by eight random alphanumerics.
	// The result is nine runes, longer than any keyword of the
	// language, so it can never collide with one.
	RandomAlias AliasStyle = iota

	// HashedAlias mints "_" followed by six hex digits derived from
	// the original name and three random lowercase letters. The
	// stable prefix makes aliases of the same original visually
	// related, which is useful when only imports are renamed.
	HashedAlias
)

func (s AliasStyle) String() string {
	switch s {
	case RandomAlias:
		return "random"
	case HashedAlias:
		return "hashed"
	}
	return strconv.Itoa(int(s))
}

const (
	aliasAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	aliasRandLen  = 8

	// maxMintAttempts bounds the search for an unused alias.
	// With 62^8 random names the bound is unreachable in practice,
	// but a bound turns a pathological generator into a reportable
	// error instead of a spin.
	maxMintAttempts = 1000
)

// An aliasGen mints identifiers that are unique within one run.
// It is owned by a single traversal and is not safe for concurrent use.
type aliasGen struct {
	style AliasStyle
	rng   *rand.Rand
	used  map[string]bool
}

func newAliasGen(style AliasStyle, seed int64) *aliasGen {
	return &aliasGen{
		style: style,
		rng:   rand.New(rand.NewSource(seed)),
		used:  make(map[string]bool),
	}
}

// next returns a fresh identifier, or ok=false if maxMintAttempts
// successive candidates were already in use.
// The hint is the original name; it influences only the hashed style.
func (g *aliasGen) next(hint string) (alias string, ok bool) {
	for i := 0; i < maxMintAttempts; i++ {
		var name string
		if g.style == HashedAlias {
			name = g.hashedName(hint)
		} else {
			name = g.randomName()
		}
		if !g.used[name] {
			g.used[name] = true
			return name, true
		}
	}
	return "", false
}

func (g *aliasGen) randomName() string {
	b := make([]byte, 1+aliasRandLen)
	b[0] = 'n'
	for i := 1; i < len(b); i++ {
		b[i] = aliasAlphabet[g.rng.Intn(len(aliasAlphabet))]
	}
	return string(b)
}

func (g *aliasGen) hashedName(hint string) string {
	h := fnv.New32a()
	h.Write([]byte(hint))
	b := make([]byte, 0, 10)
	b = append(b, '_')
	b = appendHex24(b, h.Sum32())
	for i := 0; i < 3; i++ {
		b = append(b, byte('a'+g.rng.Intn(26)))
	}
	return string(b)
}

// appendHex24 appends the low 24 bits of x as six hex digits.
func appendHex24(b []byte, x uint32) []byte {
	const hex = "0123456789abcdef"
	for shift := 20; shift >= 0; shift -= 4 {
		b = append(b, hex[(x>>uint(shift))&0xf])
	}
	return b
}
