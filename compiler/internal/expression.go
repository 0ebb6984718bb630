package internal

// Expressions are parsed with top down operator precedence. The left part of an expression is a
// literal, a name or a prefix form. While the next token is a suffix operator binding tighter than the
// caller's precedence, the left part is handed to that operator's parser, producing a new left part.

type suffixKind int

const (
	infixSuffix      suffixKind = iota // + - * / >> << ~ ≈ /\ \/
	relationalSuffix                   // = ≠ < > ≤ ≥
	defaultSuffix                      // a | b |
	ternarySuffix                      // a ? b ! c
	dotSuffix                          // a.b
	subscriptSuffix                    // a[b]
	invocationSuffix                   // a(b)
)

type suffixOperator struct {
	kind       suffixKind
	precedence int
}

var suffixOperators = map[string]suffixOperator{
	"|":   {kind: defaultSuffix, precedence: 111},
	"?":   {kind: ternarySuffix, precedence: 111},
	"/\\": {kind: infixSuffix, precedence: 222},
	"\\/": {kind: infixSuffix, precedence: 222},
	"=":   {kind: relationalSuffix, precedence: 333},
	"≠":   {kind: relationalSuffix, precedence: 333},
	"<":   {kind: relationalSuffix, precedence: 333},
	">":   {kind: relationalSuffix, precedence: 333},
	"≤":   {kind: relationalSuffix, precedence: 333},
	"≥":   {kind: relationalSuffix, precedence: 333},
	"~":   {kind: infixSuffix, precedence: 444},
	"≈":   {kind: infixSuffix, precedence: 444},
	"+":   {kind: infixSuffix, precedence: 555},
	"-":   {kind: infixSuffix, precedence: 555},
	"<<":  {kind: infixSuffix, precedence: 555},
	">>":  {kind: infixSuffix, precedence: 555},
	"*":   {kind: infixSuffix, precedence: 666},
	"/":   {kind: infixSuffix, precedence: 666},
	".":   {kind: dotSuffix, precedence: 777},
	"[":   {kind: subscriptSuffix, precedence: 777},
	"(":   {kind: invocationSuffix, precedence: 777},
}

// defaultRightPrecedence keeps a nested default from swallowing the closing bar.
const defaultRightPrecedence = 112

type prefixKind int

const (
	groupPrefix       prefixKind = iota // (a)
	arrayPrefix                         // [a, b]
	emptyArrayPrefix                    // []
	recordPrefix                        // {a: b}
	emptyRecordPrefix                   // {}
	functionPrefix                      // ƒ a {...}
)

var prefixOperators = map[string]prefixKind{
	"(":  groupPrefix,
	"[":  arrayPrefix,
	"[]": emptyArrayPrefix,
	"{":  recordPrefix,
	"{}": emptyRecordPrefix,
	"ƒ":  functionPrefix,
}

// functinos are the operators a function literal can refer to: ƒ+ is a function adding its two arguments.
var functinos = map[string]bool{
	"?": true, "|": true, "/\\": true, "\\/": true,
	"=": true, "≠": true, "<": true, "≥": true, ">": true, "≤": true,
	"~": true, "≈": true, "+": true, "-": true, ">>": true, "<<": true, "*": true, "/": true,
	"[": true, "(": true,
}

func isRelational(id string) bool {
	operator, ok := suffixOperators[id]
	return ok && operator.kind == relationalSuffix
}

// isVariable reports whether left can be followed by a dot or a subscript.
func isVariable(left Expression) bool {
	switch left := left.(type) {
	case *Identifier:
		return true
	case *BinaryExpression:
		return left.Operator == "." || left.Operator == "[" || left.Operator == "("
	}
	return false
}

// expression checks the layout of the first token, argumentExpression doesn't.
func (parser *Parser) expression(precedence int, open bool) (Expression, error) {
	if err := parser.lineCheck(open); err != nil {
		return nil, err
	}
	return parser.argumentExpression(precedence, open)
}

func (parser *Parser) argumentExpression(precedence int, open bool) (Expression, error) {
	var left Expression
	token := parser.token
	switch {
	case token.Kind == NumberToken:
		if err := parser.advance(""); err != nil {
			return nil, err
		}
		left = &NumberLiteral{Token: token}
	case token.Kind == TextToken:
		if err := parser.advance(""); err != nil {
			return nil, err
		}
		left = &TextLiteral{Token: token}
	case token.Alphameric:
		if token.ID == "module" && (parser.nextToken.ID == "{" || parser.nextToken.ID == "{}") {
			return nil, makeStructuralError(ErrMisplaced, token, "a module wants to be declared by 'module' or 'def'")
		}
		if err := parser.advance(""); err != nil {
			return nil, err
		}
		left = &Identifier{Token: token}
	default:
		kind, ok := prefixOperators[token.ID]
		if !ok {
			return nil, makeSyntaxError(token, "expected a variable")
		}
		if err := parser.advance(""); err != nil {
			return nil, err
		}
		var err error
		left, err = parser.parsePrefix(kind, token)
		if err != nil {
			return nil, err
		}
	}
	for {
		token = parser.token
		operator, ok := suffixOperators[token.ID]
		if token.Loc.Start.Column < parser.indentation || (!open && parser.isLineBreak()) ||
			!ok || operator.precedence <= precedence {
			break
		}
		if err := parser.lineCheck(open && parser.isLineBreak()); err != nil {
			return nil, err
		}
		if err := parser.advance(""); err != nil {
			return nil, err
		}
		var err error
		left, err = parser.parseSuffix(operator, left, token)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (parser *Parser) parsePrefix(kind prefixKind, token *Token) (Expression, error) {
	switch kind {
	case groupPrefix:
		return parser.parseGroup()
	case arrayPrefix:
		return parser.parseArray(token)
	case emptyArrayPrefix:
		return &ArrayLiteral{Token: token}, nil
	case recordPrefix:
		return parser.parseRecord(token)
	case emptyRecordPrefix:
		return &RecordLiteral{Token: token}, nil
	case functionPrefix:
		return parser.parseFunction(token)
	}
	return nil, makeSyntaxError(token, "unexpected '%s'", token.Describe())
}

func (parser *Parser) parseSuffix(operator suffixOperator, left Expression, token *Token) (Expression, error) {
	switch operator.kind {
	case infixSuffix:
		right, err := parser.expression(operator.precedence, false)
		if err != nil {
			return nil, err
		}
		return &BinaryExpression{Token: token, Operator: token.ID, Left: left, Right: right}, nil
	case relationalSuffix:
		right, err := parser.expression(operator.precedence, false)
		if err != nil {
			return nil, err
		}
		if isRelational(parser.token.ID) {
			return nil, makeSyntaxError(parser.token, "unexpected relational operator")
		}
		return &BinaryExpression{Token: token, Operator: token.ID, Left: left, Right: right}, nil
	case defaultSuffix:
		right, err := parser.expression(defaultRightPrecedence, false)
		if err != nil {
			return nil, err
		}
		if err := parser.advance("|"); err != nil {
			return nil, err
		}
		return &BinaryExpression{Token: token, Operator: "|", Left: left, Right: right}, nil
	case ternarySuffix:
		then, err := parser.expression(0, false)
		if err != nil {
			return nil, err
		}
		if err := parser.advance("!"); err != nil {
			return nil, err
		}
		otherwise, err := parser.expression(0, false)
		if err != nil {
			return nil, err
		}
		return &BinaryExpression{Token: token, Operator: "?", Left: left, Right: then, Else: otherwise}, nil
	case dotSuffix:
		return parser.parseDot(left, token)
	case subscriptSuffix:
		return parser.parseSubscript(left, token)
	case invocationSuffix:
		return parser.parseInvocation(left, token)
	}
	return nil, makeSyntaxError(token, "unexpected '%s'", token.Describe())
}

// parseGroup parses what follows '(' and returns the inner expression, parentheses leave no node.
func (parser *Parser) parseGroup() (Expression, error) {
	var result Expression
	var err error
	if parser.isLineBreak() {
		parser.indent()
		result, err = parser.expression(0, true)
		if err != nil {
			return nil, err
		}
		parser.outdent()
		if err := parser.atIndentation(); err != nil {
			return nil, err
		}
	} else {
		result, err = parser.expression(0, false)
		if err != nil {
			return nil, err
		}
		if err := parser.sameLine(); err != nil {
			return nil, err
		}
	}
	if err := parser.advance(")"); err != nil {
		return nil, err
	}
	return result, nil
}

// parseArray parses [a, b], the matrix [a, b; c, d] and the open form with one element per line.
func (parser *Parser) parseArray(token *Token) (Expression, error) {
	var rows [][]Expression
	var elements []Expression
	if !parser.isLineBreak() {
		for {
			element, err := parser.expression(0, false)
			if err != nil {
				return nil, err
			}
			if element, err = parser.ellipsis(element); err != nil {
				return nil, err
			}
			elements = append(elements, element)
			if parser.token.ID == "," {
				if err := parser.sameLine(); err != nil {
					return nil, err
				}
				if err := parser.advance(","); err != nil {
					return nil, err
				}
			} else if parser.token.ID == ";" && parser.nextToken.ID != "]" {
				if err := parser.sameLine(); err != nil {
					return nil, err
				}
				if err := parser.advance(";"); err != nil {
					return nil, err
				}
				rows = append(rows, elements)
				elements = nil
			} else {
				break
			}
		}
		if err := parser.sameLine(); err != nil {
			return nil, err
		}
	} else {
		parser.indent()
		for {
			element, err := parser.expression(0, parser.isLineBreak())
			if err != nil {
				return nil, err
			}
			if element, err = parser.ellipsis(element); err != nil {
				return nil, err
			}
			elements = append(elements, element)
			if parser.token.ID == "]" || parser.token.IsEnd() {
				break
			}
			if parser.token.ID == ";" {
				if parser.nextToken.ID == "]" {
					break
				}
				if err := parser.sameLine(); err != nil {
					return nil, err
				}
				if err := parser.advance(";"); err != nil {
					return nil, err
				}
				rows = append(rows, elements)
				elements = nil
			} else if parser.token.ID == "," || !parser.isLineBreak() {
				if err := parser.sameLine(); err != nil {
					return nil, err
				}
				if err := parser.advance(","); err != nil {
					return nil, err
				}
			}
		}
		parser.outdent()
		if err := parser.atIndentation(); err != nil {
			return nil, err
		}
	}
	if err := parser.advance("]"); err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return &ArrayLiteral{Token: token, Rows: append(rows, elements)}, nil
	}
	return &ArrayLiteral{Token: token, Elements: elements}, nil
}

// parseRecord parses the four kinds of fields: name, name: value, "text": value and [key]: value.
func (parser *Parser) parseRecord(token *Token) (Expression, error) {
	record := &RecordLiteral{Token: token}
	open := token.Loc.Start.Line != parser.token.Loc.Start.Line
	if open {
		parser.indent()
	}
	for {
		if err := parser.lineCheck(open); err != nil {
			return nil, err
		}
		property := &Property{}
		if parser.token.ID == "[" {
			property.Key = parser.token
			if err := parser.advance("["); err != nil {
				return nil, err
			}
			key, err := parser.expression(0, false)
			if err != nil {
				return nil, err
			}
			property.Computed = key
			if err := parser.advance("]"); err != nil {
				return nil, err
			}
			if property.Value, err = parser.fieldValue(); err != nil {
				return nil, err
			}
		} else {
			key := parser.token
			if err := parser.advance(""); err != nil {
				return nil, err
			}
			property.Key = key
			switch {
			case key.Alphameric && parser.token.ID != ":":
				property.Value = &Identifier{Token: key}
			case key.Alphameric || key.Kind == TextToken:
				value, err := parser.fieldValue()
				if err != nil {
					return nil, err
				}
				property.Value = value
			default:
				return nil, makeSyntaxError(key, "expected a key")
			}
		}
		record.Properties = append(record.Properties, property)
		if parser.token.Loc.Start.Column < parser.indentation || parser.token.ID == "}" {
			break
		}
		if !open {
			if err := parser.sameLine(); err != nil {
				return nil, err
			}
			if err := parser.advance(","); err != nil {
				return nil, err
			}
		}
	}
	if open {
		parser.outdent()
		if err := parser.atIndentation(); err != nil {
			return nil, err
		}
	} else if err := parser.sameLine(); err != nil {
		return nil, err
	}
	if err := parser.advance("}"); err != nil {
		return nil, err
	}
	return record, nil
}

func (parser *Parser) fieldValue() (Expression, error) {
	if err := parser.sameLine(); err != nil {
		return nil, err
	}
	if err := parser.advance(":"); err != nil {
		return nil, err
	}
	return parser.expression(0, false)
}

func (parser *Parser) parseFunction(token *Token) (Expression, error) {
	operator := parser.token
	id := operator.ID
	if id == "[]" {
		id = "["
	}
	if functinos[id] && (id != "(" || parser.nextToken.ID == ")") {
		if err := parser.advance(""); err != nil {
			return nil, err
		}
		closing := map[string]string{"(": ")", "[": "]", "?": "!", "|": "|"}[operator.ID]
		if closing != "" {
			if err := parser.sameLine(); err != nil {
				return nil, err
			}
			if err := parser.advance(closing); err != nil {
				return nil, err
			}
		}
		return &FunctionLiteral{Token: token, Operator: id}, nil
	}
	if parser.inLoop() {
		return nil, makeStructuralError(ErrMisplaced, token, "do not make functions in loops")
	}
	parser.functions++
	savedBlocks := parser.blocks
	parser.blocks = 0
	function, err := parser.parseFunctionRest(token)
	parser.functions--
	parser.blocks = savedBlocks
	if err != nil {
		return nil, err
	}
	return function, nil
}

func (parser *Parser) parseFunctionRest(token *Token) (*FunctionLiteral, error) {
	function := &FunctionLiteral{Token: token}
	var err error
	if function.Parameters, err = parser.parseParameters(); err != nil {
		return nil, err
	}
	if parser.token.ID == "(" {
		if err := parser.advance("("); err != nil {
			return nil, err
		}
		if function.Expression, err = parser.parseGroup(); err != nil {
			return nil, err
		}
		return function, nil
	}
	if err := parser.advance("{"); err != nil {
		return nil, err
	}
	parser.indent()
	if function.Body, err = parser.statements(); err != nil {
		return nil, err
	}
	if !parser.flow.OfBlock(function.Body).Returns {
		return nil, makeStructuralError(ErrMissingReturn, parser.prevToken, "missing explicit 'return'")
	}
	if parser.token.ID == "failure" {
		parser.outdent()
		if err := parser.atIndentation(); err != nil {
			return nil, err
		}
		if err := parser.advance("failure"); err != nil {
			return nil, err
		}
		parser.indent()
		if function.Failure, err = parser.statements(); err != nil {
			return nil, err
		}
		if !parser.flow.OfBlock(function.Failure).Returns {
			return nil, makeStructuralError(ErrMissingReturn, parser.prevToken, "missing explicit 'return'")
		}
	}
	parser.outdent()
	if err := parser.atIndentation(); err != nil {
		return nil, err
	}
	if err := parser.advance("}"); err != nil {
		return nil, err
	}
	return function, nil
}

// parseParameters parses name, name|default| and name... in the closed form, separated by commas,
// or in the open form, one per line.
func (parser *Parser) parseParameters() ([]*Parameter, error) {
	if !parser.token.Alphameric {
		return nil, nil
	}
	var parameters []*Parameter
	open := parser.isLineBreak()
	if open {
		parser.indent()
	}
	for {
		if err := parser.lineCheck(open); err != nil {
			return nil, err
		}
		parameter := &Parameter{Name: parser.token}
		if err := parser.advance(""); err != nil {
			return nil, err
		}
		if parser.token.ID == "..." {
			if err := parser.advance("..."); err != nil {
				return nil, err
			}
			parameter.Variadic = true
			parameters = append(parameters, parameter)
			break
		}
		if parser.token.ID == "|" {
			if err := parser.advance("|"); err != nil {
				return nil, err
			}
			value, err := parser.expression(defaultRightPrecedence, false)
			if err != nil {
				return nil, err
			}
			if err := parser.advance("|"); err != nil {
				return nil, err
			}
			parameter.Default = value
		}
		parameters = append(parameters, parameter)
		if open {
			if parser.token.ID == "," {
				return nil, makeSyntaxError(parser.token, "unexpected ','")
			}
			if !parser.token.Alphameric {
				break
			}
		} else {
			if parser.token.ID != "," {
				break
			}
			if err := parser.sameLine(); err != nil {
				return nil, err
			}
			if err := parser.advance(","); err != nil {
				return nil, err
			}
			if !parser.token.Alphameric {
				return nil, makeSyntaxError(parser.token, "expected another parameter")
			}
		}
	}
	if open {
		parser.outdent()
		if err := parser.atIndentation(); err != nil {
			return nil, err
		}
	} else if err := parser.sameLine(); err != nil {
		return nil, err
	}
	return parameters, nil
}

func (parser *Parser) parseDot(left Expression, token *Token) (Expression, error) {
	if !isVariable(left) {
		return nil, makeSyntaxError(parser.token, "expected a variable")
	}
	name := parser.token
	if !name.Alphameric {
		return nil, makeSyntaxError(name, "expected a field name")
	}
	if err := parser.sameLine(); err != nil {
		return nil, err
	}
	if err := parser.advance(""); err != nil {
		return nil, err
	}
	return &BinaryExpression{Token: token, Operator: ".", Left: left, Field: name}, nil
}

func (parser *Parser) parseSubscript(left Expression, token *Token) (Expression, error) {
	if !isVariable(left) {
		return nil, makeSyntaxError(parser.token, "expected a variable")
	}
	var subscript Expression
	var err error
	if parser.isLineBreak() {
		parser.indent()
		if subscript, err = parser.expression(0, true); err != nil {
			return nil, err
		}
		parser.outdent()
		if err := parser.atIndentation(); err != nil {
			return nil, err
		}
	} else {
		if subscript, err = parser.expression(0, false); err != nil {
			return nil, err
		}
		if err := parser.sameLine(); err != nil {
			return nil, err
		}
	}
	if err := parser.advance("]"); err != nil {
		return nil, err
	}
	return &BinaryExpression{Token: token, Operator: "[", Left: left, Right: subscript}, nil
}

// parseInvocation parses the arguments of a call. The open form lists them one per line, without commas.
// Anything can be called, (ƒ x (x))(1) included.
func (parser *Parser) parseInvocation(left Expression, token *Token) (Expression, error) {
	var arguments []Expression
	if parser.token.ID == ")" {
		if err := parser.sameLine(); err != nil {
			return nil, err
		}
	} else {
		open := parser.isLineBreak()
		if open {
			parser.indent()
		}
		for {
			if err := parser.lineCheck(open); err != nil {
				return nil, err
			}
			argument, err := parser.argumentExpression(0, false)
			if err != nil {
				return nil, err
			}
			if argument, err = parser.ellipsis(argument); err != nil {
				return nil, err
			}
			arguments = append(arguments, argument)
			if parser.token.ID == ")" || parser.token.IsEnd() {
				break
			}
			if !open {
				if err := parser.sameLine(); err != nil {
					return nil, err
				}
				if err := parser.advance(","); err != nil {
					return nil, err
				}
			}
		}
		if open {
			parser.outdent()
			if err := parser.atIndentation(); err != nil {
				return nil, err
			}
		} else if err := parser.sameLine(); err != nil {
			return nil, err
		}
	}
	if err := parser.advance(")"); err != nil {
		return nil, err
	}
	return &BinaryExpression{Token: token, Operator: "(", Left: left, Arguments: arguments}, nil
}

// ellipsis wraps left in a spread when it is followed by '...'. It is only allowed in parameter
// lists, argument lists and array literals.
func (parser *Parser) ellipsis(left Expression) (Expression, error) {
	if parser.token.ID != "..." {
		return left, nil
	}
	token := parser.token
	if err := parser.sameLine(); err != nil {
		return nil, err
	}
	if err := parser.advance("..."); err != nil {
		return nil, err
	}
	return &BinaryExpression{Token: token, Operator: "...", Left: left}, nil
}
