package internal

import (
	"strings"
)

type ScopeKind int

const (
	GlobalScope   ScopeKind = iota // the root, modules of depth 1 live here
	ModuleScope                    // a source file or a module declaration
	FunctionScope                  // a function literal
)

func (kind ScopeKind) String() string {
	switch kind {
	case GlobalScope:
		return "global"
	case ModuleScope:
		return "module"
	case FunctionScope:
		return "function"
	}
	return "unknown"
}

// Symbol is a declared name. Module is set when the name is a module, the symbols of the module
// are then the symbols of that scope.
type Symbol struct {
	Name       string
	Token      *Token
	Readonly   bool
	Primordial bool
	Owner      *Scope
	Module     *Scope
	Filename   string
}

// Scope is a node of the scope tree. Parent is nil only for the global scope.
type Scope struct {
	Name     string
	Level    int
	Kind     ScopeKind
	Parent   *Scope
	Path     []string // the module path of a module declaration
	Filename string
	symbols  map[string]*Symbol
	// cache keeps what a function scope found outside itself. A later declaration of a cached name
	// in the same function is a duplicate.
	cache map[string]*Symbol
}

func newGlobalScope() *Scope {
	return &Scope{Name: "global", Kind: GlobalScope, symbols: map[string]*Symbol{}}
}

func newScope(name string, kind ScopeKind, parent *Scope) *Scope {
	scope := &Scope{Name: name, Kind: kind, Parent: parent, Level: parent.Level + 1, symbols: map[string]*Symbol{}}
	if kind == FunctionScope {
		scope.cache = map[string]*Symbol{}
	}
	return scope
}

// ModulePath is the dotted path of a module scope, empty for files, functions and the global scope.
func (scope *Scope) ModulePath() string {
	return strings.Join(scope.Path, ".")
}

func (scope *Scope) own(name string) (*Symbol, bool) {
	symbol, ok := scope.symbols[name]
	return symbol, ok
}

// register adds symbol to the scope. Shadowing a name of an ancestor is fine, declaring it twice
// in the same scope is not, nor is declaring a name the function already used from outside.
func (scope *Scope) register(symbol *Symbol) error {
	if existing, ok := scope.symbols[symbol.Name]; ok {
		return makeSemanticError(ErrAlreadyDefined, symbol.Token, "'%s' is already defined at line %d",
			symbol.Name, existing.Token.Loc.Start.Line+1)
	}
	if existing, ok := scope.cache[symbol.Name]; ok {
		if existing.Primordial {
			return makeSemanticError(ErrAlreadyDefined, symbol.Token, "'%s' is already used as a primordial in this function",
				symbol.Name)
		}
		return makeSemanticError(ErrAlreadyDefined, symbol.Token, "'%s' is already used from line %d in this function",
			symbol.Name, existing.Token.Loc.Start.Line+1)
	}
	symbol.Owner = scope
	scope.symbols[symbol.Name] = symbol
	return nil
}

// lookup finds name in the scope, then in its ancestors, then in the primordials.
// What is found outside a function scope is cached in that scope and in every function scope
// between them.
func (scope *Scope) lookup(name string) (*Symbol, bool) {
	if symbol, ok := scope.symbols[name]; ok {
		return symbol, true
	}
	if symbol, ok := scope.cache[name]; ok {
		return symbol, true
	}
	symbol, ok := lookupPrimordial(name)
	var found *Scope
	for parent := scope.Parent; parent != nil; parent = parent.Parent {
		if own, hit := parent.symbols[name]; hit {
			symbol, ok, found = own, true, parent
			break
		}
	}
	if !ok {
		return nil, false
	}
	for current := scope; current != nil && current != found; current = current.Parent {
		if current.cache != nil {
			current.cache[name] = symbol
		}
	}
	return symbol, true
}

// lookupScope walks the segments of a module path down from scope. Every segment must name a module.
func (scope *Scope) lookupScope(path []string) (*Scope, bool) {
	current := scope
	for _, segment := range path {
		symbol, ok := current.symbols[segment]
		if !ok || symbol.Module == nil {
			return nil, false
		}
		current = symbol.Module
	}
	return current, true
}
