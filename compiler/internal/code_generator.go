package internal

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xiaobogaga/cylon/util"
)

const DefaultRuntimePath = "./neo.runtime.js"

// Output is the generated javascript of one file and its source map.
type Output struct {
	Code      string
	SourceMap *SourceMap
}

// binaryRuntime maps the operators that are plain function calls to their runtime helper.
var binaryRuntime = map[string]string{
	"=":  "$NEO.eq",
	"≠":  "$NEO.ne",
	"<":  "$NEO.lt",
	"≥":  "$NEO.ge",
	">":  "$NEO.gt",
	"≤":  "$NEO.le",
	"~":  "$NEO.cat",
	"≈":  "$NEO.cats",
	"+":  "$NEO.add",
	"-":  "$NEO.sub",
	">>": "$NEO.max",
	"<<": "$NEO.min",
	"*":  "$NEO.mul",
	"/":  "$NEO.div",
}

// functinoRuntime maps the operators ƒ can refer to.
var functinoRuntime = map[string]string{
	"?":   "$NEO.ternary",
	"|":   "$NEO.default",
	"/\\": "$NEO.and",
	"\\/": "$NEO.or",
	"=":   "$NEO.eq",
	"≠":   "$NEO.ne",
	"<":   "$NEO.lt",
	"≥":   "$NEO.ge",
	">":   "$NEO.gt",
	"≤":   "$NEO.le",
	"~":   "$NEO.cat",
	"≈":   "$NEO.cats",
	"+":   "$NEO.add",
	"-":   "$NEO.sub",
	">>":  "$NEO.max",
	"<<":  "$NEO.min",
	"*":   "$NEO.mul",
	"/":   "$NEO.div",
	"[":   "$NEO.get",
	"(":   "$NEO.resolve",
}

var reservedWords = map[string]bool{
	"arguments": true, "await": true, "break": true, "case": true, "catch": true, "class": true,
	"const": true, "continue": true, "debugger": true, "default": true, "delete": true, "do": true,
	"else": true, "enum": true, "eval": true, "export": true, "extends": true, "false": true,
	"finally": true, "for": true, "function": true, "if": true, "implements": true, "import": true,
	"in": true, "Infinity": true, "instanceof": true, "interface": true, "let": true, "NaN": true,
	"new": true, "null": true, "package": true, "private": true, "protected": true, "public": true,
	"return": true, "static": true, "super": true, "switch": true, "this": true, "throw": true,
	"true": true, "try": true, "typeof": true, "undefined": true, "var": true, "void": true,
	"while": true, "with": true, "yield": true,
}

// suffixReplacer turns the ! and ? a neo name can end with into $ and $$. Neo names can't contain
// $, so the result can't meet another name.
var suffixReplacer = strings.NewReplacer("!", "$", "?", "$$")

// mangle makes a neo name a javascript name: reserved words get a $ in front, ! and ? become $ and $$.
func mangle(name string) string {
	if reservedWords[name] {
		return "$" + name
	}
	return suffixReplacer.Replace(name)
}

// bindingName is the javascript name of a symbol. Members of modules are flattened to top level
// names made of the module path and the name, joined by $.
func bindingName(symbol *Symbol) string {
	if symbol.Owner == nil || len(symbol.Owner.Path) == 0 {
		return mangle(symbol.Name)
	}
	segments := make([]string, 0, len(symbol.Owner.Path)+1)
	for _, segment := range append(append([]string{}, symbol.Owner.Path...), symbol.Name) {
		segments = append(segments, suffixReplacer.Replace(segment))
	}
	return strings.Join(segments, "$")
}

// numberName is the name a number literal is hoisted to.
func numberName(normalized string) string {
	return "$" + util.ReplaceBytes(normalized, "-.", '_')
}

// importPath is the path file `from` imports the output of file `to` with.
func importPath(from, to string) string {
	target := strings.TrimSuffix(to, filepath.Ext(to)) + ".js"
	relative, err := filepath.Rel(filepath.Dir(from), target)
	if err != nil {
		relative = filepath.Base(target)
	}
	relative = filepath.ToSlash(relative)
	if !strings.HasPrefix(relative, "../") {
		relative = "./" + relative
	}
	return relative
}

type generator struct {
	printer    *Printer
	resolution *Resolution
	file       *Module
	runtime    string
	numbers    map[string]string
	hoisted    []string // normalized numbers in order of appearance
	imports    map[string][]string
	imported   map[string]bool
	exports    []string
	exported   map[string]bool
}

// Generate prints file as a javascript module importing the runtime from DefaultRuntimePath.
// resolution can be nil, names are then only mangled.
func Generate(file *Module, resolution *Resolution, source string) (*Output, error) {
	return generateFile(file, resolution, source, DefaultRuntimePath)
}

func generateFile(file *Module, resolution *Resolution, source string, runtime string) (output *Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			compileError, ok := r.(*CompileError)
			if !ok {
				compileError = makeError(InternalError, ErrUnknownNodeKind, nil, "%v", r)
			}
			output, err = nil, withFilename(compileError, file.Filename)
		}
	}()
	outputName := strings.TrimSuffix(filepath.Base(file.Filename), filepath.Ext(file.Filename)) + ".js"
	sourceMap := newSourceMapBuilder(outputName, filepath.Base(file.Filename), source)
	generator := &generator{
		printer:    newPrinter(sourceMap),
		resolution: resolution,
		file:       file,
		runtime:    runtime,
		numbers:    map[string]string{},
		imports:    map[string][]string{},
		imported:   map[string]bool{},
		exported:   map[string]bool{},
	}
	generator.collect()
	generator.printFrontMatter()
	generator.printStatements(file.Body)
	generator.printExports()
	return &Output{Code: generator.printer.String(), SourceMap: sourceMap.build()}, nil
}

// collect finds the numbers to hoist and the bindings to import before anything is printed.
func (generator *generator) collect() {
	_ = Inspect(generator.file, func(node Node) error {
		switch node := node.(type) {
		case *NumberLiteral:
			normalized := node.Token.NumberText()
			if _, ok := generator.numbers[normalized]; !ok {
				generator.numbers[normalized] = numberName(normalized)
				generator.hoisted = append(generator.hoisted, normalized)
			}
		case *Identifier:
			generator.collectImport(generator.symbolOf(node))
		case *BinaryExpression:
			if generator.resolution != nil {
				generator.collectImport(generator.resolution.Members[node])
			}
		}
		return nil
	})
}

func (generator *generator) collectImport(symbol *Symbol) {
	if symbol == nil || symbol.Primordial || symbol.Owner == nil || len(symbol.Owner.Path) == 0 ||
		symbol.Filename == generator.file.Filename {
		return
	}
	name := bindingName(symbol)
	if generator.imported[name] {
		return
	}
	generator.imported[name] = true
	generator.imports[symbol.Filename] = append(generator.imports[symbol.Filename], name)
}

func (generator *generator) symbolOf(identifier *Identifier) *Symbol {
	if generator.resolution == nil {
		return nil
	}
	return generator.resolution.Identifiers[identifier]
}

func (generator *generator) printFrontMatter() {
	printer := generator.printer
	printer.Word("import")
	printer.Word("$NEO")
	printer.Word("from")
	printer.Space()
	generator.printText(generator.runtime)
	printer.Semicolon()
	printer.Newline()
	files := make([]string, 0, len(generator.imports))
	for file := range generator.imports {
		files = append(files, file)
	}
	sort.Strings(files)
	for _, file := range files {
		printer.Word("import")
		printer.Space()
		printer.Token("{")
		printer.Word(strings.Join(generator.imports[file], ", "))
		printer.Token("}")
		printer.Space()
		printer.Word("from")
		printer.Space()
		generator.printText(importPath(generator.file.Filename, file))
		printer.Semicolon()
		printer.Newline()
	}
	for _, normalized := range generator.hoisted {
		printer.Word("const")
		printer.Word(generator.numbers[normalized])
		printer.Space()
		printer.Token("=")
		printer.Space()
		printer.Word("$NEO.number")
		printer.Token("(")
		generator.printText(normalized)
		printer.Token(")")
		printer.Semicolon()
		printer.Newline()
	}
	printer.Newline()
}

func (generator *generator) printExports() {
	if len(generator.exports) == 0 {
		return
	}
	printer := generator.printer
	printer.Newline()
	printer.Word("export")
	printer.Space()
	printer.Token("{")
	printer.Word(strings.Join(generator.exports, ", "))
	printer.Token("}")
	printer.Semicolon()
	printer.Newline()
}

func (generator *generator) printStatements(block Block) {
	for _, statement := range block {
		generator.printStatement(statement)
	}
}

func (generator *generator) printStatement(statement Statement) {
	printer := generator.printer
	if module, ok := statement.(*Module); ok {
		// Modules are flattened, their bindings are already prefixed with their path.
		generator.printStatements(module.Body)
		return
	}
	printer.Mark(statement.Location(), "")
	switch statement := statement.(type) {
	case *VarStatement:
		generator.printDeclaration(statement.Name, statement.Value)
	case *DefStatement:
		generator.printDeclaration(statement.Name, statement.Value)
	case *LetStatement:
		generator.printLet(statement)
	case *IfStatement:
		generator.printIf(statement)
	case *LoopStatement:
		printer.Word("while")
		printer.Space()
		printer.Token("(")
		printer.Word("true")
		printer.Token(")")
		printer.Space()
		generator.printBlock(statement.Body)
	case *BreakStatement:
		printer.Word("break")
		printer.Semicolon()
	case *ReturnStatement:
		printer.Word("return")
		printer.NoLineTerminator()
		printer.Space()
		generator.printExpression(statement.Value)
		printer.Semicolon()
	case *FailStatement:
		printer.Word("throw")
		printer.Word("$NEO.fail")
		printer.Token("(")
		generator.printText("fail")
		printer.Token(")")
		printer.Semicolon()
	case *CallStatement:
		generator.printExpression(statement.Call)
		printer.Semicolon()
	default:
		panic(makeError(InternalError, ErrUnknownNodeKind, nil, "unknown statement kind %T", statement))
	}
	printer.Newline()
}

func (generator *generator) printDeclaration(name *Token, value Expression) {
	printer := generator.printer
	printer.Word("var")
	generator.printDeclaredName(name)
	if value != nil {
		printer.Space()
		printer.Token("=")
		printer.Space()
		generator.printExpression(value)
	}
	printer.Semicolon()
}

// printDeclaredName prints the name of a var, def or parameter. Module members are exported.
func (generator *generator) printDeclaredName(name *Token) {
	binding := mangle(name.ID)
	if generator.resolution != nil {
		if symbol, ok := generator.resolution.Declarations[name]; ok {
			binding = bindingName(symbol)
			if symbol.Owner != nil && len(symbol.Owner.Path) > 0 && !generator.exported[binding] {
				generator.exported[binding] = true
				generator.exports = append(generator.exports, binding)
			}
		}
	}
	generator.printer.Mark(name.Loc, name.ID)
	generator.printer.Word(binding)
}

func (generator *generator) printLet(statement *LetStatement) {
	printer := generator.printer
	printValue := func() {
		generator.printExpression(statement.Value)
		if statement.Pop {
			printer.Token(".")
			printer.Word("pop")
			printer.Token("(")
			printer.Token(")")
		}
	}
	target, _ := statement.Target.(*BinaryExpression)
	_, member := generator.member(target)
	switch {
	case statement.Append:
		generator.printExpression(statement.Target)
		printer.Token(".")
		printer.Word("push")
		printer.Token("(")
		printValue()
		printer.Token(")")
	case target != nil && !member && (target.Operator == "." || target.Operator == "["):
		printer.Word("$NEO.set")
		printer.Token("(")
		generator.printExpression(target.Left)
		printer.Token(",")
		printer.Space()
		if target.Operator == "." {
			printer.Mark(target.Field.Loc, "")
			generator.printText(target.Field.ID)
		} else {
			generator.printExpression(target.Right)
		}
		printer.Token(",")
		printer.Space()
		printValue()
		printer.Token(")")
	default:
		generator.printExpression(statement.Target)
		printer.Space()
		printer.Token("=")
		printer.Space()
		printValue()
	}
	printer.Semicolon()
}

func (generator *generator) printIf(statement *IfStatement) {
	printer := generator.printer
	printer.Word("if")
	printer.Space()
	printer.Token("(")
	generator.printBoolean(statement.Condition)
	printer.Token(")")
	printer.Space()
	generator.printBlock(statement.Then)
	switch {
	case statement.ElseIf != nil:
		printer.Space()
		printer.Word("else")
		printer.Space()
		printer.Mark(statement.ElseIf.Location(), "")
		generator.printIf(statement.ElseIf)
	case statement.Else != nil:
		printer.Space()
		printer.Word("else")
		printer.Space()
		generator.printBlock(statement.Else)
	}
}

func (generator *generator) printBlock(block Block) {
	printer := generator.printer
	printer.Token("{")
	printer.Newline()
	printer.Indent()
	generator.printStatements(block)
	printer.Dedent()
	printer.Token("}")
}

func (generator *generator) printExpression(expression Expression) {
	printer := generator.printer
	name := ""
	if identifier, ok := expression.(*Identifier); ok {
		name = identifier.Name()
	}
	printer.Mark(expression.Location(), name)
	switch expression := expression.(type) {
	case *Identifier:
		generator.printIdentifier(expression)
	case *NumberLiteral:
		printer.Word(generator.numbers[expression.Token.NumberText()])
	case *TextLiteral:
		generator.printText(expression.Token.Text)
	case *BinaryExpression:
		generator.printBinary(expression)
	case *ArrayLiteral:
		generator.printArray(expression)
	case *RecordLiteral:
		generator.printRecord(expression)
	case *FunctionLiteral:
		generator.printFunction(expression)
	default:
		panic(makeError(InternalError, ErrUnknownNodeKind, nil, "unknown expression kind %T", expression))
	}
}

func (generator *generator) printIdentifier(identifier *Identifier) {
	symbol := generator.symbolOf(identifier)
	if symbol == nil {
		if primordial, ok := primordials[identifier.Name()]; ok && generator.resolution == nil {
			generator.printer.Word(primordial.target)
			return
		}
		generator.printer.Word(mangle(identifier.Name()))
		return
	}
	if symbol.Primordial {
		generator.printer.Word(primordials[symbol.Name].target)
		return
	}
	generator.printer.Word(bindingName(symbol))
}

// printText prints s as a javascript string literal.
func (generator *generator) printText(s string) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(s); err != nil {
		panic(makeError(InternalError, err, nil, "can't quote %q", s))
	}
	generator.printer.Token(strings.TrimSuffix(buf.String(), "\n"))
}

// member returns the module member expression names, if it names one.
func (generator *generator) member(expression *BinaryExpression) (*Symbol, bool) {
	if expression == nil || generator.resolution == nil {
		return nil, false
	}
	symbol, ok := generator.resolution.Members[expression]
	return symbol, ok
}

func (generator *generator) printBinary(expression *BinaryExpression) {
	printer := generator.printer
	switch expression.Operator {
	case ".":
		if symbol, ok := generator.member(expression); ok {
			printer.Word(bindingName(symbol))
			return
		}
		generator.printCall("$NEO.get", func() {
			generator.printExpression(expression.Left)
			printer.Token(",")
			printer.Space()
			printer.Mark(expression.Field.Loc, "")
			generator.printText(expression.Field.ID)
		})
	case "[":
		generator.printCall("$NEO.get", func() {
			generator.printExpression(expression.Left)
			printer.Token(",")
			printer.Space()
			generator.printExpression(expression.Right)
		})
	case "(":
		generator.printExpression(expression.Left)
		printer.Token("(")
		generator.printList(expression.Arguments)
		printer.Token(")")
	case "...":
		printer.Token("...")
		generator.printExpression(expression.Left)
	case "/\\", "\\/":
		operator := "&&"
		if expression.Operator == "\\/" {
			operator = "||"
		}
		printer.Token("(")
		generator.printBoolean(expression.Left)
		printer.Space()
		printer.Token(operator)
		printer.Space()
		generator.printBoolean(expression.Right)
		printer.Token(")")
	case "?":
		printer.Token("(")
		generator.printBoolean(expression.Left)
		printer.Space()
		printer.Token("?")
		printer.Space()
		generator.printExpression(expression.Right)
		printer.Space()
		printer.Token(":")
		printer.Space()
		generator.printExpression(expression.Else)
		printer.Token(")")
	case "|":
		printer.Token("(")
		printer.Word("function")
		printer.Space()
		printer.Token("(")
		printer.Word("_0")
		printer.Token(")")
		printer.Space()
		printer.Token("{")
		printer.Word("return")
		printer.Space()
		printer.Token("(")
		printer.Word("_0")
		printer.Space()
		printer.Token("===")
		printer.Space()
		printer.Word("undefined")
		printer.Token(")")
		printer.Space()
		printer.Token("?")
		printer.Space()
		generator.printExpression(expression.Right)
		printer.Space()
		printer.Token(":")
		printer.Space()
		printer.Word("_0")
		printer.Semicolon()
		printer.Token("}")
		printer.Token("(")
		generator.printExpression(expression.Left)
		printer.Token(")")
		printer.Token(")")
	default:
		helper, ok := binaryRuntime[expression.Operator]
		if !ok {
			panic(makeError(InternalError, ErrUnknownNodeKind, expression.Token, "unknown operator %s", expression.Operator))
		}
		generator.printCall(helper, func() {
			generator.printExpression(expression.Left)
			printer.Token(",")
			printer.Space()
			generator.printExpression(expression.Right)
		})
	}
}

func (generator *generator) printCall(function string, arguments func()) {
	generator.printer.Word(function)
	generator.printer.Token("(")
	arguments()
	generator.printer.Token(")")
}

func (generator *generator) printList(expressions []Expression) {
	for i, expression := range expressions {
		if i > 0 {
			generator.printer.Token(",")
			generator.printer.Space()
		}
		generator.printExpression(expression)
	}
}

// printBoolean prints expression, asserting at run time that it is a boolean unless it surely is.
func (generator *generator) printBoolean(expression Expression) {
	if generator.isBoolean(expression) {
		generator.printExpression(expression)
		return
	}
	generator.printCall("$NEO.assert_boolean", func() {
		generator.printExpression(expression)
	})
}

// isBoolean reports whether expression always gives a boolean: true, false, a comparison, a logical
// operator, or a call of a primordial returning booleans.
func (generator *generator) isBoolean(expression Expression) bool {
	switch expression := expression.(type) {
	case *Identifier:
		return generator.isBooleanPrimordial(expression) && (expression.Name() == "true" || expression.Name() == "false")
	case *BinaryExpression:
		switch {
		case isRelational(expression.Operator), expression.Operator == "/\\", expression.Operator == "\\/":
			return true
		case expression.Operator == "(":
			callee, ok := expression.Left.(*Identifier)
			return ok && generator.isBooleanPrimordial(callee)
		}
	}
	return false
}

func (generator *generator) isBooleanPrimordial(identifier *Identifier) bool {
	symbol := generator.symbolOf(identifier)
	if symbol == nil && generator.resolution != nil {
		return false
	}
	if symbol != nil && !symbol.Primordial {
		return false
	}
	return primordials[identifier.Name()].boolean
}

func (generator *generator) printArray(array *ArrayLiteral) {
	printer := generator.printer
	printer.Token("[")
	if array.Rows != nil {
		for i, row := range array.Rows {
			if i > 0 {
				printer.Token(",")
				printer.Space()
			}
			printer.Token("[")
			generator.printList(row)
			printer.Token("]")
		}
	} else {
		generator.printList(array.Elements)
	}
	printer.Token("]")
}

// printRecord prints a record as a function filling an empty object, called at once.
func (generator *generator) printRecord(record *RecordLiteral) {
	printer := generator.printer
	if len(record.Properties) == 0 {
		printer.Word("Object.create")
		printer.Token("(")
		printer.Word("null")
		printer.Token(")")
		return
	}
	printer.Token("(")
	printer.Word("function")
	printer.Space()
	printer.Token("(")
	printer.Word("$o")
	printer.Token(")")
	printer.Space()
	printer.Token("{")
	printer.Newline()
	printer.Indent()
	for _, property := range record.Properties {
		printer.Mark(property.Key.Loc, "")
		if property.Computed != nil {
			generator.printCall("$NEO.set", func() {
				printer.Word("$o")
				printer.Token(",")
				printer.Space()
				generator.printExpression(property.Computed)
				printer.Token(",")
				printer.Space()
				generator.printExpression(property.Value)
			})
		} else {
			key := property.Key.ID
			if property.Key.Kind == TextToken {
				key = property.Key.Text
			}
			printer.Word("$o")
			printer.Token("[")
			generator.printText(key)
			printer.Token("]")
			printer.Space()
			printer.Token("=")
			printer.Space()
			generator.printExpression(property.Value)
		}
		printer.Semicolon()
		printer.Newline()
	}
	printer.Word("return")
	printer.Word("$o")
	printer.Semicolon()
	printer.Newline()
	printer.Dedent()
	printer.Token("}")
	printer.Token("(")
	printer.Word("Object.create")
	printer.Token("(")
	printer.Word("null")
	printer.Token(")")
	printer.Token(")")
	printer.Token(")")
}

func (generator *generator) printFunction(function *FunctionLiteral) {
	printer := generator.printer
	if function.Operator != "" {
		helper, ok := functinoRuntime[function.Operator]
		if !ok {
			panic(makeError(InternalError, ErrUnknownNodeKind, function.Token, "unknown functino ƒ%s", function.Operator))
		}
		printer.Word(helper)
		return
	}
	printer.Word("$NEO.stone")
	printer.Token("(")
	printer.Word("function")
	printer.Space()
	printer.Token("(")
	for i, parameter := range function.Parameters {
		if i > 0 {
			printer.Token(",")
			printer.Space()
		}
		if parameter.Variadic {
			printer.Token("...")
		}
		generator.printDeclaredName(parameter.Name)
		if parameter.Default != nil {
			printer.Space()
			printer.Token("=")
			printer.Space()
			generator.printExpression(parameter.Default)
		}
	}
	printer.Token(")")
	printer.Space()
	switch {
	case function.Expression != nil:
		printer.Token("{")
		printer.Word("return")
		printer.NoLineTerminator()
		printer.Space()
		generator.printExpression(function.Expression)
		printer.Semicolon()
		printer.Token("}")
	case function.Failure != nil:
		printer.Token("{")
		printer.Newline()
		printer.Indent()
		printer.Word("try")
		printer.Space()
		generator.printBlock(function.Body)
		printer.Space()
		printer.Word("catch")
		printer.Space()
		generator.printBlock(function.Failure)
		printer.Newline()
		printer.Dedent()
		printer.Token("}")
	default:
		generator.printBlock(function.Body)
	}
	printer.Token(")")
}
