package internal

// In this file, we define the ast of neo. A source file parses into a Module holding statements.
// Statements are var, def, let, if, loop, break, return, fail, call and module. Expressions are
// identifiers, number and text literals, array, record and function literals, and binary expressions,
// which also cover the postfix forms: field access, subscript, invocation, spread, default and ternary.
//
// Nodes never change once parsed. What later passes learn about them lives in tables keyed by the
// node: the FlowTable built by the parser and the Resolution built by the analyzer.

type SyntaxKind int

const (
	VarStatementKind SyntaxKind = iota
	DefStatementKind
	LetStatementKind
	IfStatementKind
	LoopStatementKind
	BreakStatementKind
	ReturnStatementKind
	FailStatementKind
	CallStatementKind
	ModuleKind
	IdentifierKind
	NumberLiteralKind
	TextLiteralKind
	BinaryExpressionKind
	ArrayLiteralKind
	RecordLiteralKind
	FunctionLiteralKind
)

var syntaxKindNames = map[SyntaxKind]string{
	VarStatementKind:     "VarStatement",
	DefStatementKind:     "DefStatement",
	LetStatementKind:     "LetStatement",
	IfStatementKind:      "IfStatement",
	LoopStatementKind:    "LoopStatement",
	BreakStatementKind:   "BreakStatement",
	ReturnStatementKind:  "ReturnStatement",
	FailStatementKind:    "FailStatement",
	CallStatementKind:    "CallStatement",
	ModuleKind:           "Module",
	IdentifierKind:       "Identifier",
	NumberLiteralKind:    "NumberLiteral",
	TextLiteralKind:      "TextLiteral",
	BinaryExpressionKind: "BinaryExpression",
	ArrayLiteralKind:     "ArrayLiteral",
	RecordLiteralKind:    "RecordLiteral",
	FunctionLiteralKind:  "FunctionLiteral",
}

func (kind SyntaxKind) String() string {
	if name, ok := syntaxKindNames[kind]; ok {
		return name
	}
	return "Unknown"
}

type Node interface {
	Kind() SyntaxKind
	Location() Location
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

type Block []Statement

// Module is both a source file (Token is nil) and a module declaration. Path is the full dotted
// path of a declaration, with the enclosing modules' paths already prepended.
type Module struct {
	Token     *Token
	NameToken *Token
	Path      []string
	Body      Block
	Filename  string
	// Flow is shared by a file and every module declared in it.
	Flow FlowTable
}

func (module *Module) IsFile() bool {
	return module.Token == nil
}

// Depth is the number of segments in the module path, 0 for a file.
func (module *Module) Depth() int {
	return len(module.Path)
}

type VarStatement struct {
	Token *Token
	Name  *Token
	Value Expression // can be nil
}

type DefStatement struct {
	Token *Token
	Name  *Token
	Value Expression
}

// LetStatement assigns Value to Target. Append is `let a[]: v`, Pop is `let v: a[]`.
type LetStatement struct {
	Token  *Token
	Target Expression
	Append bool
	Value  Expression
	Pop    bool
}

type IfStatement struct {
	Token     *Token
	Condition Expression
	Then      Block
	Else      Block
	ElseIf    *IfStatement
}

type LoopStatement struct {
	Token *Token
	Body  Block
}

type BreakStatement struct {
	Token *Token
}

type ReturnStatement struct {
	Token *Token
	Value Expression
}

type FailStatement struct {
	Token *Token
}

type CallStatement struct {
	Token *Token
	Call  *BinaryExpression
}

type Identifier struct {
	Token *Token
}

func (identifier *Identifier) Name() string {
	return identifier.Token.ID
}

type NumberLiteral struct {
	Token *Token
}

type TextLiteral struct {
	Token *Token
}

// BinaryExpression covers every operator. Which fields are set depends on Operator:
//   - arithmetic, relational, /\ \/ ~ ≈: Left and Right.
//   - "|" (default): Left and Right.
//   - "?" (ternary): Left is the condition, Right the then value, Else the else value.
//   - ".": Left and Field.
//   - "[": Left and Right (the subscript).
//   - "(": Left (the callee) and Arguments.
//   - "...": Left only.
type BinaryExpression struct {
	Token     *Token
	Operator  string
	Left      Expression
	Right     Expression
	Else      Expression
	Field     *Token
	Arguments []Expression
}

// ArrayLiteral holds Elements, or Rows for a matrix written with semicolons.
type ArrayLiteral struct {
	Token    *Token
	Elements []Expression
	Rows     [][]Expression
}

type RecordLiteral struct {
	Token      *Token
	Properties []*Property
}

// Property is `name: value`, `"text": value` or `[key]: value`. Only the last one sets Computed.
// The shorthand `{name}` is parsed as `name: name`.
type Property struct {
	Key      *Token
	Computed Expression
	Value    Expression
}

// FunctionLiteral is either an operator reference (ƒ+), with only Operator set, or a function
// with a single return Expression, or with a Body and an optional Failure block.
type FunctionLiteral struct {
	Token      *Token
	Operator   string
	Parameters []*Parameter
	Expression Expression
	Body       Block
	Failure    Block
}

type Parameter struct {
	Name     *Token
	Default  Expression
	Variadic bool
}

func (module *Module) Kind() SyntaxKind               { return ModuleKind }
func (statement *VarStatement) Kind() SyntaxKind      { return VarStatementKind }
func (statement *DefStatement) Kind() SyntaxKind      { return DefStatementKind }
func (statement *LetStatement) Kind() SyntaxKind      { return LetStatementKind }
func (statement *IfStatement) Kind() SyntaxKind       { return IfStatementKind }
func (statement *LoopStatement) Kind() SyntaxKind     { return LoopStatementKind }
func (statement *BreakStatement) Kind() SyntaxKind    { return BreakStatementKind }
func (statement *ReturnStatement) Kind() SyntaxKind   { return ReturnStatementKind }
func (statement *FailStatement) Kind() SyntaxKind     { return FailStatementKind }
func (statement *CallStatement) Kind() SyntaxKind     { return CallStatementKind }
func (expression *Identifier) Kind() SyntaxKind       { return IdentifierKind }
func (expression *NumberLiteral) Kind() SyntaxKind    { return NumberLiteralKind }
func (expression *TextLiteral) Kind() SyntaxKind      { return TextLiteralKind }
func (expression *BinaryExpression) Kind() SyntaxKind { return BinaryExpressionKind }
func (expression *ArrayLiteral) Kind() SyntaxKind     { return ArrayLiteralKind }
func (expression *RecordLiteral) Kind() SyntaxKind    { return RecordLiteralKind }
func (expression *FunctionLiteral) Kind() SyntaxKind  { return FunctionLiteralKind }

func (module *Module) Location() Location {
	if module.Token == nil {
		return Location{}
	}
	return module.Token.Loc
}
func (statement *VarStatement) Location() Location      { return statement.Token.Loc }
func (statement *DefStatement) Location() Location      { return statement.Token.Loc }
func (statement *LetStatement) Location() Location      { return statement.Token.Loc }
func (statement *IfStatement) Location() Location       { return statement.Token.Loc }
func (statement *LoopStatement) Location() Location     { return statement.Token.Loc }
func (statement *BreakStatement) Location() Location    { return statement.Token.Loc }
func (statement *ReturnStatement) Location() Location   { return statement.Token.Loc }
func (statement *FailStatement) Location() Location     { return statement.Token.Loc }
func (statement *CallStatement) Location() Location     { return statement.Token.Loc }
func (expression *Identifier) Location() Location       { return expression.Token.Loc }
func (expression *NumberLiteral) Location() Location    { return expression.Token.Loc }
func (expression *TextLiteral) Location() Location      { return expression.Token.Loc }
func (expression *BinaryExpression) Location() Location { return expression.Token.Loc }
func (expression *ArrayLiteral) Location() Location     { return expression.Token.Loc }
func (expression *RecordLiteral) Location() Location    { return expression.Token.Loc }
func (expression *FunctionLiteral) Location() Location  { return expression.Token.Loc }

func (module *Module) statementNode()             {}
func (statement *VarStatement) statementNode()    {}
func (statement *DefStatement) statementNode()    {}
func (statement *LetStatement) statementNode()    {}
func (statement *IfStatement) statementNode()     {}
func (statement *LoopStatement) statementNode()   {}
func (statement *BreakStatement) statementNode()  {}
func (statement *ReturnStatement) statementNode() {}
func (statement *FailStatement) statementNode()   {}
func (statement *CallStatement) statementNode()   {}

func (expression *Identifier) expressionNode()       {}
func (expression *NumberLiteral) expressionNode()    {}
func (expression *TextLiteral) expressionNode()      {}
func (expression *BinaryExpression) expressionNode() {}
func (expression *ArrayLiteral) expressionNode()     {}
func (expression *RecordLiteral) expressionNode()    {}
func (expression *FunctionLiteral) expressionNode()  {}

// Flow is what the parser knows about how control leaves a statement.
// Disrupt: control never falls through. Returns: every path through it returns a value.
type Flow struct {
	Disrupt bool
	Returns bool
}

type FlowTable map[Statement]Flow

func (table FlowTable) Of(statement Statement) Flow {
	return table[statement]
}

// OfBlock is the flow of the last statement of block.
func (table FlowTable) OfBlock(block Block) Flow {
	if len(block) == 0 {
		return Flow{}
	}
	return table[block[len(block)-1]]
}
