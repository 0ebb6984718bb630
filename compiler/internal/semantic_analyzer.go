package internal

import (
	"sort"
	"strings"
)

// Resolution is everything the analyzer learned, keyed by node.
type Resolution struct {
	// Identifiers maps every identifier reference to what it names.
	Identifiers map[*Identifier]*Symbol
	// Members maps a field access on a module, like a.b.greet, to the member it names.
	Members map[*BinaryExpression]*Symbol
	// Declarations maps the name token of var, def and parameters to their symbol.
	Declarations map[*Token]*Symbol
	// Modules maps module declarations and files to their scopes.
	Modules map[*Module]*Scope
}

func newResolution() *Resolution {
	return &Resolution{
		Identifiers:  map[*Identifier]*Symbol{},
		Members:      map[*BinaryExpression]*Symbol{},
		Declarations: map[*Token]*Symbol{},
		Modules:      map[*Module]*Scope{},
	}
}

// Analyzer resolves the names of a set of files. Modules can be declared and used across files,
// so files are analyzed together.
type Analyzer struct {
	global     *Scope
	current    *Scope
	filename   string
	resolution *Resolution
	// imports maps a file to the files it uses names of, with the first reference to each.
	imports map[string]map[string]*Token
}

// Analyze resolves every name of files and returns the first error found.
func Analyze(files ...*Module) (*Resolution, error) {
	analyzer := newAnalyzer()
	failures := analyzer.run(files)
	for _, file := range files {
		if err, ok := failures[file.Filename]; ok {
			return nil, err
		}
	}
	return analyzer.resolution, nil
}

func newAnalyzer() *Analyzer {
	global := newGlobalScope()
	return &Analyzer{
		global:     global,
		current:    global,
		resolution: newResolution(),
		imports:    map[string]map[string]*Token{},
	}
}

// run analyzes files and returns the error of every file that failed. A failed file stops being
// analyzed, the others go on. A file using names of a failed file fails too, since the output it
// would import from is never written.
func (analyzer *Analyzer) run(files []*Module) map[string]error {
	failures := map[string]error{}
	modules := sortModules(files)
	for _, module := range modules {
		if _, failed := failures[module.Filename]; failed {
			continue
		}
		if err := analyzer.declareModule(module); err != nil {
			failures[module.Filename] = withFilename(err, module.Filename)
		}
	}
	for _, module := range modules {
		if _, failed := failures[module.Filename]; failed {
			continue
		}
		if err := analyzer.analyzeModule(module); err != nil {
			failures[module.Filename] = withFilename(err, module.Filename)
		}
	}
	analyzer.failImporters(failures)
	return failures
}

// failImporters adds to failures every file importing from a failed file, until no file is left
// to add.
func (analyzer *Analyzer) failImporters(failures map[string]error) {
	for changed := true; changed; {
		changed = false
		importers := make([]string, 0, len(analyzer.imports))
		for importer := range analyzer.imports {
			importers = append(importers, importer)
		}
		sort.Strings(importers)
		for _, importer := range importers {
			if _, failed := failures[importer]; failed {
				continue
			}
			imports := analyzer.imports[importer]
			sources := make([]string, 0, len(imports))
			for source := range imports {
				sources = append(sources, source)
			}
			sort.Strings(sources)
			for _, source := range sources {
				if _, failed := failures[source]; !failed {
					continue
				}
				token := imports[source]
				err := makeSemanticError(ErrFailedImport, token, "'%s' comes from %s, which failed to compile", token.ID, source)
				failures[importer] = withFilename(err, importer)
				changed = true
				break
			}
		}
	}
}

// use records that the current file uses symbol, found at reference.
func (analyzer *Analyzer) use(symbol *Symbol, reference *Token) {
	if symbol.Primordial || symbol.Filename == "" || symbol.Filename == analyzer.filename {
		return
	}
	imports, ok := analyzer.imports[analyzer.filename]
	if !ok {
		imports = map[string]*Token{}
		analyzer.imports[analyzer.filename] = imports
	}
	if _, ok := imports[symbol.Filename]; !ok {
		imports[symbol.Filename] = reference
	}
}

// sortModules lists the files and every module declared in them, parents before children.
func sortModules(files []*Module) []*Module {
	var modules []*Module
	var collect func(module *Module)
	collect = func(module *Module) {
		modules = append(modules, module)
		for _, statement := range module.Body {
			if nested, ok := statement.(*Module); ok {
				collect(nested)
			}
		}
	}
	for _, file := range files {
		collect(file)
	}
	sort.SliceStable(modules, func(i, j int) bool {
		return modules[i].Depth() < modules[j].Depth()
	})
	return modules
}

// declareModule creates the scope of a file or module and registers its top level var and def,
// so that modules of other files can use them through a module path whatever the order of files.
// Within a file a name is only visible after its declaration, see visible.
func (analyzer *Analyzer) declareModule(module *Module) error {
	var scope *Scope
	if module.IsFile() {
		scope = newScope(module.Filename, ModuleScope, analyzer.global)
	} else {
		depth := module.Depth()
		parent, ok := analyzer.global.lookupScope(module.Path[:depth-1])
		if !ok {
			return makeSemanticError(ErrNotDefined, module.NameToken, "cannot find module '%s'",
				strings.Join(module.Path[:depth-1], "."))
		}
		scope = newScope(module.Path[depth-1], ModuleScope, parent)
		scope.Path = module.Path
		symbol := &Symbol{
			Name:     module.Path[depth-1],
			Token:    module.NameToken,
			Readonly: true,
			Module:   scope,
			Filename: module.Filename,
		}
		if err := parent.register(symbol); err != nil {
			return err
		}
	}
	scope.Filename = module.Filename
	analyzer.resolution.Modules[module] = scope
	analyzer.current = scope
	analyzer.filename = module.Filename
	defer func() { analyzer.current = analyzer.global }()
	for _, statement := range module.Body {
		var err error
		switch statement := statement.(type) {
		case *VarStatement:
			err = analyzer.declare(statement.Name, false)
		case *DefStatement:
			err = analyzer.declare(statement.Name, true)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (analyzer *Analyzer) analyzeModule(module *Module) error {
	analyzer.current = analyzer.resolution.Modules[module]
	analyzer.filename = module.Filename
	defer func() { analyzer.current = analyzer.global }()
	for _, statement := range module.Body {
		if err := Walk(analyzer, statement); err != nil {
			return err
		}
	}
	return nil
}

// declare registers name in the current scope. Declaring the same token again is a no op, module
// bodies are declared before they are walked.
func (analyzer *Analyzer) declare(name *Token, readonly bool) error {
	if existing, ok := analyzer.current.own(name.ID); ok && existing.Token == name {
		return nil
	}
	symbol := &Symbol{Name: name.ID, Token: name, Readonly: readonly, Filename: analyzer.filename}
	if err := analyzer.current.register(symbol); err != nil {
		return err
	}
	analyzer.resolution.Declarations[name] = symbol
	return nil
}

func (analyzer *Analyzer) Enter(node Node) error {
	switch node := node.(type) {
	case *Module:
		// Analyzed on its own, after its parents.
		return SkipChildren
	case *VarStatement:
		return analyzer.declare(node.Name, false)
	case *DefStatement:
		return analyzer.declare(node.Name, true)
	case *LetStatement:
		return analyzer.checkAssignment(node)
	case *Identifier:
		_, err := analyzer.resolveIdentifier(node)
		return err
	case *BinaryExpression:
		if node.Operator != "." {
			return nil
		}
		member, _, err := analyzer.resolveMember(node)
		if err != nil {
			return err
		}
		if member == node {
			return SkipChildren
		}
	case *FunctionLiteral:
		if node.Operator != "" {
			return nil
		}
		analyzer.current = newScope("function", FunctionScope, analyzer.current)
		analyzer.current.Filename = analyzer.filename
		for _, parameter := range node.Parameters {
			if err := analyzer.declare(parameter.Name, false); err != nil {
				return err
			}
		}
	}
	return nil
}

func (analyzer *Analyzer) Leave(node Node) error {
	if function, ok := node.(*FunctionLiteral); ok && function.Operator == "" {
		analyzer.current = analyzer.current.Parent
	}
	return nil
}

func (analyzer *Analyzer) resolveIdentifier(identifier *Identifier) (*Symbol, error) {
	symbol, ok := analyzer.current.lookup(identifier.Name())
	if !ok || !analyzer.visible(symbol, identifier.Token) {
		return nil, makeSemanticError(ErrNotDefined, identifier.Token, "'%s' is not defined", identifier.Name())
	}
	if symbol.Module != nil {
		return nil, makeSemanticError(ErrModuleValue, identifier.Token, "module '%s' is used as a value", identifier.Name())
	}
	analyzer.resolution.Identifiers[identifier] = symbol
	analyzer.use(symbol, identifier.Token)
	return symbol, nil
}

// resolveMember resolves a chain of field accesses starting at a module, like a.b.greet.field.
// It returns the access naming a member of the module (a.b.greet) and that member, or nil if the
// chain doesn't start at a module.
func (analyzer *Analyzer) resolveMember(expression *BinaryExpression) (*BinaryExpression, *Symbol, error) {
	var chain []*BinaryExpression
	var left Expression = expression
	for {
		dot, ok := left.(*BinaryExpression)
		if !ok || dot.Operator != "." {
			break
		}
		chain = append([]*BinaryExpression{dot}, chain...)
		left = dot.Left
	}
	root, ok := left.(*Identifier)
	if !ok {
		return nil, nil, nil
	}
	symbol, ok := analyzer.current.lookup(root.Name())
	if !ok || symbol.Module == nil {
		return nil, nil, nil
	}
	scope := symbol.Module
	path := root.Name()
	for _, dot := range chain {
		member, ok := scope.own(dot.Field.ID)
		if !ok {
			return nil, nil, makeSemanticError(ErrNotDefined, dot.Field, "module '%s' has no '%s'", path, dot.Field.ID)
		}
		if !analyzer.visible(member, dot.Field) {
			return nil, nil, makeSemanticError(ErrNotDefined, dot.Field, "'%s.%s' is used before its declaration", path, dot.Field.ID)
		}
		path += "." + dot.Field.ID
		if member.Module == nil {
			analyzer.resolution.Members[dot] = member
			analyzer.use(member, dot.Field)
			return dot, member, nil
		}
		scope = member.Module
	}
	return nil, nil, makeSemanticError(ErrModuleValue, expression.Field, "module '%s' is used as a value", path)
}

// visible reports whether symbol is declared before reference. The generated code runs a file top
// down, so a name of the same file can't be used before its declaration. Names of other files,
// modules and primordials are always visible.
func (analyzer *Analyzer) visible(symbol *Symbol, reference *Token) bool {
	if symbol.Primordial || symbol.Module != nil || symbol.Filename != analyzer.filename {
		return true
	}
	declared, used := symbol.Token.Loc.Start, reference.Loc.Start
	return declared.Line < used.Line || (declared.Line == used.Line && declared.Column <= used.Column)
}

// checkAssignment rejects assignments to def, to primordials, to modules and to bindings of
// other files. Assigning to a field or an element of any of them is fine.
func (analyzer *Analyzer) checkAssignment(statement *LetStatement) error {
	if statement.Append {
		return nil
	}
	var symbol *Symbol
	var err error
	switch target := statement.Target.(type) {
	case *Identifier:
		symbol, err = analyzer.resolveIdentifier(target)
	case *BinaryExpression:
		if target.Operator == "." {
			var member *BinaryExpression
			member, symbol, err = analyzer.resolveMember(target)
			if member != target {
				symbol = nil
			}
		}
	}
	if err != nil || symbol == nil {
		return err
	}
	if symbol.Readonly {
		return makeSemanticError(ErrAssignToConstant, statement.Token, "assignment to a constant '%s'", symbol.Name)
	}
	if symbol.Filename != analyzer.filename {
		return makeSemanticError(ErrAssignToConstant, statement.Token, "assignment to '%s' of %s", symbol.Name, symbol.Filename)
	}
	return nil
}
