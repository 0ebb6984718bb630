package internal

type statementKind int

const (
	varStatement    statementKind = iota // var name: value
	defStatement                         // def name: value
	letStatement                         // let lvalue: value
	ifStatement                          // if condition
	loopStatement                        // loop
	breakStatement                       // break
	returnStatement                      // return value
	failStatement                        // fail
	callStatement                        // call f(x)
	moduleStatement                      // module a.b {
)

var statementKeywords = map[string]statementKind{
	"var":    varStatement,
	"def":    defStatement,
	"let":    letStatement,
	"if":     ifStatement,
	"loop":   loopStatement,
	"break":  breakStatement,
	"return": returnStatement,
	"fail":   failStatement,
	"call":   callStatement,
	"module": moduleStatement,
}

// statements parses the statements of a block. The block ends at the end of the source, at a token
// under the indentation or at a token that is not a name. Nothing may follow a statement that disrupts.
func (parser *Parser) statements() (Block, error) {
	var block Block
	for {
		token := parser.token
		if token.IsEnd() || token.Loc.Start.Column < parser.indentation || !token.Alphameric {
			break
		}
		if err := parser.atIndentation(); err != nil {
			return nil, err
		}
		kind, ok := statementKeywords[token.ID]
		if !ok {
			return nil, makeSyntaxError(token, "expected a statement")
		}
		if err := parser.advance(""); err != nil {
			return nil, err
		}
		statement, err := parser.statement(kind, token)
		if err != nil {
			return nil, err
		}
		block = append(block, statement)
		if parser.flow.Of(statement).Disrupt {
			if !parser.token.IsEnd() && parser.token.Loc.Start.Column == parser.indentation {
				return nil, makeError(SyntaxError, ErrUnreachable, parser.token, "unreachable")
			}
			break
		}
	}
	if len(block) == 0 {
		return nil, makeSyntaxError(parser.token, "expected a statement")
	}
	return block, nil
}

func (parser *Parser) statement(kind statementKind, token *Token) (Statement, error) {
	switch kind {
	case varStatement:
		return parser.parseVar(token)
	case defStatement:
		return parser.parseDef(token)
	case letStatement:
		return parser.parseLet(token)
	case ifStatement:
		statement, err := parser.parseIf(token)
		if err != nil {
			return nil, err
		}
		return statement, nil
	case loopStatement:
		return parser.parseLoop(token)
	case breakStatement:
		return parser.parseBreak(token)
	case returnStatement:
		return parser.parseReturn(token)
	case failStatement:
		statement := &FailStatement{Token: token}
		parser.setFlow(statement, Flow{Disrupt: true})
		return statement, nil
	case callStatement:
		return parser.parseCall(token)
	case moduleStatement:
		return parser.parseModule(token)
	}
	return nil, makeSyntaxError(token, "expected a statement")
}

// declaredName reads the name after var, def or module. Only module names can have dots, so the
// segments are returned for the caller to check.
func (parser *Parser) declaredName() (*Token, []string, error) {
	name := parser.token
	if !name.Alphameric {
		return nil, nil, makeSyntaxError(name, "expected a name")
	}
	if err := parser.sameLine(); err != nil {
		return nil, nil, err
	}
	if err := parser.advance(""); err != nil {
		return nil, nil, err
	}
	path := []string{name.ID}
	for parser.token.ID == "." {
		if err := parser.sameLine(); err != nil {
			return nil, nil, err
		}
		if err := parser.advance("."); err != nil {
			return nil, nil, err
		}
		if !parser.token.Alphameric {
			return nil, nil, makeSyntaxError(parser.token, "expected a name")
		}
		if err := parser.sameLine(); err != nil {
			return nil, nil, err
		}
		path = append(path, parser.token.ID)
		if err := parser.advance(""); err != nil {
			return nil, nil, err
		}
	}
	return name, path, nil
}

func (parser *Parser) parseVar(token *Token) (Statement, error) {
	name, path, err := parser.declaredName()
	if err != nil {
		return nil, err
	}
	if len(path) > 1 {
		return nil, makeStructuralError(ErrDottedName, name, "only modules can have dots in their name")
	}
	statement := &VarStatement{Token: token, Name: name}
	if parser.token.ID == ":" {
		if err := parser.sameLine(); err != nil {
			return nil, err
		}
		if err := parser.advance(":"); err != nil {
			return nil, err
		}
		if statement.Value, err = parser.expression(0, false); err != nil {
			return nil, err
		}
	}
	return statement, nil
}

// parseDef parses a read only binding. `def a.b: module {` declares a module instead.
func (parser *Parser) parseDef(token *Token) (Statement, error) {
	name, path, err := parser.declaredName()
	if err != nil {
		return nil, err
	}
	if err := parser.sameLine(); err != nil {
		return nil, err
	}
	if err := parser.advance(":"); err != nil {
		return nil, err
	}
	if parser.token.ID == "module" && (parser.nextToken.ID == "{" || parser.nextToken.ID == "{}") {
		if err := parser.sameLine(); err != nil {
			return nil, err
		}
		if err := parser.advance("module"); err != nil {
			return nil, err
		}
		module, err := parser.parseModuleBody(token, name, path)
		if err != nil {
			return nil, err
		}
		return module, nil
	}
	if len(path) > 1 {
		return nil, makeStructuralError(ErrDottedName, name, "only modules can have dots in their name")
	}
	value, err := parser.expression(0, false)
	if err != nil {
		return nil, err
	}
	return &DefStatement{Token: token, Name: name, Value: value}, nil
}

// parseLet parses the lvalue, a name followed by fields, subscripts and calls, then the value.
// A trailing [] on the lvalue appends, on the value it pops.
func (parser *Parser) parseLet(token *Token) (Statement, error) {
	if err := parser.sameLine(); err != nil {
		return nil, err
	}
	name := parser.token
	if !name.Alphameric {
		return nil, makeSyntaxError(name, "expected a variable")
	}
	if err := parser.advance(""); err != nil {
		return nil, err
	}
	statement := &LetStatement{Token: token, Target: &Identifier{Token: name}}
	var err error
lvalue:
	for !parser.token.IsEnd() {
		if err := parser.sameLine(); err != nil {
			return nil, err
		}
		suffix := parser.token
		switch suffix.ID {
		case "[]":
			if err := parser.advance("[]"); err != nil {
				return nil, err
			}
			statement.Append = true
			break lvalue
		case ".":
			if err := parser.advance("."); err != nil {
				return nil, err
			}
			statement.Target, err = parser.parseDot(statement.Target, suffix)
		case "[":
			if err := parser.advance("["); err != nil {
				return nil, err
			}
			statement.Target, err = parser.parseSubscript(statement.Target, suffix)
		case "(":
			if err := parser.advance("("); err != nil {
				return nil, err
			}
			statement.Target, err = parser.parseInvocation(statement.Target, suffix)
		default:
			break lvalue
		}
		if err != nil {
			return nil, err
		}
	}
	if call, ok := statement.Target.(*BinaryExpression); ok && call.Operator == "(" && !statement.Append {
		return nil, makeSyntaxError(call.Token, "assignment to the result of a function")
	}
	if err := parser.advance(":"); err != nil {
		return nil, err
	}
	if statement.Value, err = parser.expression(0, false); err != nil {
		return nil, err
	}
	if parser.token.ID == "[]" && !statement.Append && isVariable(statement.Value) {
		if err := parser.sameLine(); err != nil {
			return nil, err
		}
		if err := parser.advance("[]"); err != nil {
			return nil, err
		}
		statement.Pop = true
	}
	return statement, nil
}

// parseIf parses the if block and an optional else block or else if. The statement disrupts or
// returns only if both branches do.
func (parser *Parser) parseIf(token *Token) (*IfStatement, error) {
	condition, err := parser.expression(0, false)
	if err != nil {
		return nil, err
	}
	statement := &IfStatement{Token: token, Condition: condition}
	if statement.Then, err = parser.block(); err != nil {
		return nil, err
	}
	if parser.token.IsEnd() || parser.token.Loc.Start.Column != parser.indentation || parser.token.ID != "else" {
		return statement, nil
	}
	if err := parser.advance("else"); err != nil {
		return nil, err
	}
	var otherwise Flow
	if parser.token.ID == "if" && !parser.isLineBreak() {
		ifToken := parser.token
		if err := parser.advance("if"); err != nil {
			return nil, err
		}
		if statement.ElseIf, err = parser.parseIf(ifToken); err != nil {
			return nil, err
		}
		otherwise = parser.flow.Of(statement.ElseIf)
	} else {
		if statement.Else, err = parser.block(); err != nil {
			return nil, err
		}
		otherwise = parser.flow.OfBlock(statement.Else)
	}
	then := parser.flow.OfBlock(statement.Then)
	parser.setFlow(statement, Flow{
		Disrupt: then.Disrupt && otherwise.Disrupt,
		Returns: then.Returns && otherwise.Returns,
	})
	return statement, nil
}

// block parses an indented block of an if or else.
func (parser *Parser) block() (Block, error) {
	parser.indent()
	parser.blocks++
	block, err := parser.statements()
	parser.blocks--
	parser.outdent()
	return block, err
}

// parseLoop tracks how the loop can be left. A loop no break and no return can leave is rejected,
// a loop only a return can leave disrupts and returns.
func (parser *Parser) parseLoop(token *Token) (Statement, error) {
	statement := &LoopStatement{Token: token}
	parser.loops = append(parser.loops, loopInfinite)
	body, err := parser.block()
	exit := parser.loops[len(parser.loops)-1]
	parser.loops = parser.loops[:len(parser.loops)-1]
	if err != nil {
		return nil, err
	}
	if exit == loopInfinite {
		return nil, makeStructuralError(ErrWantsBreak, token, "a loop wants a 'break'")
	}
	statement.Body = body
	if exit == loopReturn {
		parser.setFlow(statement, Flow{Disrupt: true, Returns: true})
	}
	return statement, nil
}

func (parser *Parser) parseBreak(token *Token) (Statement, error) {
	if !parser.inLoop() {
		return nil, makeStructuralError(ErrMisplaced, token, "'break' wants to be in a loop")
	}
	parser.loops[len(parser.loops)-1] = loopBreak
	statement := &BreakStatement{Token: token}
	parser.setFlow(statement, Flow{Disrupt: true})
	return statement, nil
}

func (parser *Parser) parseReturn(token *Token) (Statement, error) {
	if !parser.inFunction() {
		return nil, makeStructuralError(ErrMisplaced, token, "'return' wants to be in a function")
	}
	parser.setInfiniteLoopsToReturn()
	if parser.isLineBreak() {
		return nil, makeStructuralError(ErrMisplaced, token, "'return' wants a return value")
	}
	value, err := parser.expression(0, false)
	if err != nil {
		return nil, err
	}
	statement := &ReturnStatement{Token: token, Value: value}
	parser.setFlow(statement, Flow{Disrupt: true, Returns: true})
	return statement, nil
}

func (parser *Parser) parseCall(token *Token) (Statement, error) {
	expression, err := parser.expression(0, false)
	if err != nil {
		return nil, err
	}
	call, ok := expression.(*BinaryExpression)
	if !ok || call.Operator != "(" {
		return nil, makeSyntaxError(token, "expected a function invocation")
	}
	return &CallStatement{Token: token, Call: call}, nil
}

func (parser *Parser) parseModule(token *Token) (Statement, error) {
	name, path, err := parser.declaredName()
	if err != nil {
		return nil, err
	}
	module, err := parser.parseModuleBody(token, name, path)
	if err != nil {
		return nil, err
	}
	return module, nil
}

// parseModuleBody parses the braced body of a module. The path of the module is the path of the
// enclosing module followed by its own, possibly dotted, name.
func (parser *Parser) parseModuleBody(token *Token, name *Token, path []string) (*Module, error) {
	switch {
	case parser.inLoop():
		return nil, makeStructuralError(ErrMisplaced, token, "do not make modules in loops")
	case parser.inFunction():
		return nil, makeStructuralError(ErrMisplaced, token, "do not make modules in functions")
	case parser.blocks > 0:
		return nil, makeStructuralError(ErrMisplaced, token, "a module wants to be at the top level")
	}
	if err := parser.sameLine(); err != nil {
		return nil, err
	}
	fullPath := append(append([]string{}, parser.modulePath...), path...)
	module := &Module{Token: token, NameToken: name, Path: fullPath, Filename: parser.filename, Flow: parser.flow}
	if parser.token.ID == "{}" {
		if err := parser.advance("{}"); err != nil {
			return nil, err
		}
		return module, nil
	}
	if err := parser.advance("{"); err != nil {
		return nil, err
	}
	savedPath := parser.modulePath
	parser.modulePath = fullPath
	parser.indent()
	body, err := parser.statements()
	parser.outdent()
	parser.modulePath = savedPath
	if err != nil {
		return nil, err
	}
	if err := parser.atIndentation(); err != nil {
		return nil, err
	}
	if err := parser.advance("}"); err != nil {
		return nil, err
	}
	module.Body = body
	return module, nil
}
