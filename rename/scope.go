// Copyright 2023 The Veil Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rename

// A scopeStack models lexical nesting during a single traversal.
// Each frame maps an original name to the alias it is bound to in
// that frame; under the selective policy ordinary bindings map a name
// to itself, which records the binding for shadow checks without
// renaming anything.
type scopeStack struct {
	frames []map[string]string
}

// push creates an empty innermost frame.
func (s *scopeStack) push() {
	s.frames = append(s.frames, make(map[string]string))
}

// pop discards the innermost frame, making its bindings unreachable.
func (s *scopeStack) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

func (s *scopeStack) depth() int { return len(s.frames) }

// bind returns the alias bound to name in the innermost frame,
// binding it first if it is new. A name is bound at most once per
// frame, so mint is called at most once.
func (s *scopeStack) bind(name string, mint func() string) string {
	frame := s.frames[len(s.frames)-1]
	if alias, ok := frame[name]; ok {
		return alias
	}
	alias := mint()
	frame[name] = alias
	return alias
}

// set binds name to alias in the innermost frame, replacing any
// existing binding. It is used to redirect a name to an alias minted
// in another frame (global and nonlocal declarations).
func (s *scopeStack) set(name, alias string) {
	s.frames[len(s.frames)-1][name] = alias
}

// lookup returns the alias visible for name, scanning frames
// innermost to outermost.
func (s *scopeStack) lookup(name string) (alias string, ok bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if alias, ok := s.frames[i][name]; ok {
			return alias, true
		}
	}
	return "", false
}

// boundAnywhere reports whether name is bound in any live frame.
// The check sees only bindings recorded so far in the traversal:
// a binding later in the same frame does not retroactively shadow an
// earlier use.
func (s *scopeStack) boundAnywhere(name string) bool {
	_, ok := s.lookup(name)
	return ok
}
