package sym

// Scope holds three namespaces (ordinary, tag, typedef) nested under an
// optional parent (spec 3 "Scope", 4.4). Scopes are pushed/popped in a
// stack discipline matching lexical nesting; the compiler threads the
// current scope explicitly (SPEC_FULL.md 5) rather than through global
// mutable state.
type Scope struct {
	Parent *Scope

	ordinary map[string]*Symbol
	tags     map[string]*Type
	typedefs map[string]*Symbol
}

// NewScope creates a child scope of parent (parent may be nil for the
// global scope).
func NewScope(parent *Scope) *Scope {
	return &Scope{
		Parent:   parent,
		ordinary: make(map[string]*Symbol),
		tags:     make(map[string]*Type),
		typedefs: make(map[string]*Symbol),
	}
}

// IsGlobal reports whether this is the file (translation-unit) scope.
func (s *Scope) IsGlobal() bool { return s.Parent == nil }

// AddSymbol inserts sym into the ordinary namespace, rejecting a
// same-namespace duplicate within this single scope (shadowing a parent's
// symbol is allowed) (spec 4.4 scope_add_symbol).
func (s *Scope) AddSymbol(name string, symbol *Symbol) bool {
	if _, dup := s.ordinary[name]; dup {
		return false
	}
	s.ordinary[name] = symbol
	return true
}

// AddTypedef inserts a typedef-namespace symbol, rejecting a same-scope
// duplicate.
func (s *Scope) AddTypedef(name string, symbol *Symbol) bool {
	if _, dup := s.typedefs[name]; dup {
		return false
	}
	s.typedefs[name] = symbol
	return true
}

// AddTag inserts a struct/union/enum tag, rejecting a same-scope duplicate.
func (s *Scope) AddTag(name string, t *Type) bool {
	if _, dup := s.tags[name]; dup {
		return false
	}
	s.tags[name] = t
	return true
}

// FindSymbol searches the ordinary namespace in s, and if recursive, walks
// parents up to the global scope (spec 4.4 scope_find_symbol).
func (s *Scope) FindSymbol(name string, recursive bool) *Symbol {
	for sc := s; sc != nil; sc = sc.Parent {
		if sym, ok := sc.ordinary[name]; ok {
			return sym
		}
		if !recursive {
			return nil
		}
	}
	return nil
}

// FindTypedef searches the typedef namespace the same way as FindSymbol.
func (s *Scope) FindTypedef(name string, recursive bool) *Symbol {
	for sc := s; sc != nil; sc = sc.Parent {
		if sym, ok := sc.typedefs[name]; ok {
			return sym
		}
		if !recursive {
			return nil
		}
	}
	return nil
}

// FindTag searches the tag namespace the same way as FindSymbol.
func (s *Scope) FindTag(name string, recursive bool) *Type {
	for sc := s; sc != nil; sc = sc.Parent {
		if t, ok := sc.tags[name]; ok {
			return t
		}
		if !recursive {
			return nil
		}
	}
	return nil
}

// Ordinary exposes the ordinary namespace map read-only, for tentative-
// definition sweeps at end of translation unit.
func (s *Scope) Ordinary() map[string]*Symbol {
	return s.ordinary
}
