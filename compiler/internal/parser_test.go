package internal

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(lines ...string) string {
	return strings.Join(lines, "\n")
}

func TestParse(t *testing.T) {
	testData := []struct {
		Content    string
		Statements int
	}{
		{Content: "", Statements: 0},
		{Content: "var x", Statements: 1},
		{Content: "var x: 1", Statements: 1},
		{Content: lines("def x: 1", "var y: x + 2 * 3"), Statements: 2},
		{Content: lines("var a: []", "let a[]: 1", "let v: a[]"), Statements: 3},
		{Content: lines("var r: {}", "let r.k: 1", "let r[\"k\"]: 2"), Statements: 3},
		{Content: "var m: [1, 2; 3, 4]", Statements: 1},
		{Content: lines("var a: [", "    1", "    2", "]"), Statements: 1},
		{Content: lines("var r: {", "    a: 1", "    b", "}"), Statements: 1},
		{Content: "var t: a ? b ! c", Statements: 1},
		{Content: "var d: a | b |", Statements: 1},
		{Content: "var f: ƒ+", Statements: 1},
		{Content: "var f: ƒ x, y|1|, z... (x)", Statements: 1},
		{Content: "var y: (ƒ x (x))(1)", Statements: 1},
		{Content: lines("def f: ƒ x {", "    return x", "}"), Statements: 1},
		{Content: lines("def f: ƒ {", "    loop", "        return 1", "}"), Statements: 1},
		{Content: lines("loop", "    break"), Statements: 1},
		{Content: lines("call f(", "    1", "    2", ")"), Statements: 1},
		{Content: lines("var x: 1", "if x = 1", "    let x: 2", "else if x = 2", "    let x: 3", "else", "    let x: 4"), Statements: 2},
		{Content: lines("module a {", "    def x: 1", "}"), Statements: 1},
		{Content: "module a.b {}", Statements: 1},
		{Content: lines("def a: module {", "    def x: 1", "}"), Statements: 1},
		{Content: "fail", Statements: 1},
		{Content: "var x: 1 # comment", Statements: 1},
	}
	for _, data := range testData {
		module, err := Parse(data.Content, "test.cy")
		require.Nil(t, err, data.Content)
		assert.True(t, module.IsFile())
		assert.Equal(t, "test.cy", module.Filename)
		assert.Len(t, module.Body, data.Statements, data.Content)
	}
}

func TestParse_Errors(t *testing.T) {
	testData := []struct {
		Content string
		Kind    ErrorKind
		Cause   error
	}{
		{Content: `var x: "abc`, Kind: LexError, Cause: ErrUnmatchedInput},
		{Content: "x: 1", Kind: SyntaxError, Cause: ErrUnexpectedToken},
		{Content: "var x: 1 +", Kind: SyntaxError, Cause: ErrUnexpectedToken},
		{Content: "let f(x): 1", Kind: SyntaxError, Cause: ErrUnexpectedToken},
		{Content: "var x: a = b = c", Kind: SyntaxError, Cause: ErrUnexpectedToken},
		{Content: "var x: a < b ≤ c", Kind: SyntaxError, Cause: ErrUnexpectedToken},
		{Content: "var x: a ≠ b > c", Kind: SyntaxError, Cause: ErrUnexpectedToken},
		{Content: "var x: {x: 1}.y", Kind: SyntaxError, Cause: ErrUnexpectedToken},
		{Content: "var x: {x: 1}[\"x\"]", Kind: SyntaxError, Cause: ErrUnexpectedToken},
		{Content: "var x: [1][0]", Kind: SyntaxError, Cause: ErrUnexpectedToken},
		{Content: lines("if true", "      var x: 1"), Kind: SyntaxError, Cause: ErrIndentation},
		{Content: lines("def f: ƒ {", "    return 1", "    var y: 2", "}"), Kind: SyntaxError, Cause: ErrUnreachable},
		{Content: lines("loop", "    fail"), Kind: StructuralError, Cause: ErrWantsBreak},
		{Content: "break", Kind: StructuralError, Cause: ErrMisplaced},
		{Content: "return 1", Kind: StructuralError, Cause: ErrMisplaced},
		{Content: lines("def f: ƒ x {", "    var y: x", "}"), Kind: StructuralError, Cause: ErrMissingReturn},
		{Content: lines("loop", "    var f: ƒ (1)", "    break"), Kind: StructuralError, Cause: ErrMisplaced},
		{Content: lines("if true", "    module m {}"), Kind: StructuralError, Cause: ErrMisplaced},
		{Content: lines("def f: ƒ {", "    module m {}", "    return 1", "}"), Kind: StructuralError, Cause: ErrMisplaced},
		{Content: "var m: module {}", Kind: StructuralError, Cause: ErrMisplaced},
		{Content: "var a.b: 1", Kind: StructuralError, Cause: ErrDottedName},
		{Content: "def a.b: 1", Kind: StructuralError, Cause: ErrDottedName},
	}
	for _, data := range testData {
		module, err := Parse(data.Content, "test.cy")
		assert.Nil(t, module, data.Content)
		require.NotNil(t, err, data.Content)
		var compileError *CompileError
		require.True(t, errors.As(err, &compileError), data.Content)
		assert.Equal(t, data.Kind, compileError.Kind, data.Content)
		assert.ErrorIs(t, err, data.Cause, data.Content)
		assert.Equal(t, "test.cy", compileError.Filename)
	}
}

func TestParse_ErrorMessage(t *testing.T) {
	_, err := Parse(lines("var x: 1", "break"), "main.cy")
	require.NotNil(t, err)
	assert.Equal(t, "main.cy:2:1: structural error: 'break' wants to be in a loop near 'break'", err.Error())
}

func TestParse_Incomplete(t *testing.T) {
	testData := []struct {
		Content    string
		Incomplete bool
	}{
		{Content: "var x: 1 +", Incomplete: true},
		{Content: "if x", Incomplete: true},
		{Content: lines("def f: ƒ x {", "    return x"), Incomplete: true},
		{Content: "var x: )", Incomplete: false},
	}
	for _, data := range testData {
		_, err := Parse(data.Content, "repl.cy")
		require.NotNil(t, err, data.Content)
		assert.Equal(t, data.Incomplete, IsIncomplete(err), data.Content)
	}
}

func TestParse_Indentation(t *testing.T) {
	module, err := Parse(lines(
		"var x: 1",
		"if x = 1",
		"    let x: 2",
		"    let x: 3",
		"let x: 4",
	), "test.cy")
	require.Nil(t, err)
	require.Len(t, module.Body, 3)
	statement, ok := module.Body[1].(*IfStatement)
	require.True(t, ok)
	assert.Len(t, statement.Then, 2)
	assert.Nil(t, statement.Else)
	assert.IsType(t, &LetStatement{}, module.Body[2])
}

func TestParse_ElseIf(t *testing.T) {
	module, err := Parse(lines(
		"var x: 1",
		"if x = 1",
		"    let x: 2",
		"else if x = 2",
		"    let x: 3",
		"else",
		"    let x: 4",
	), "test.cy")
	require.Nil(t, err)
	statement := module.Body[1].(*IfStatement)
	require.NotNil(t, statement.ElseIf)
	assert.Nil(t, statement.Else)
	assert.Len(t, statement.ElseIf.Then, 1)
	assert.Len(t, statement.ElseIf.Else, 1)
}

func TestParse_Flow(t *testing.T) {
	module, err := Parse(lines(
		"def f: ƒ x {",
		"    loop",
		"        if x",
		"            return 1",
		"        else",
		"            return 2",
		"}",
	), "test.cy")
	require.Nil(t, err)
	function := module.Body[0].(*DefStatement).Value.(*FunctionLiteral)
	loop := function.Body[0].(*LoopStatement)
	assert.Equal(t, Flow{Disrupt: true, Returns: true}, module.Flow.Of(loop))
	assert.Equal(t, Flow{Disrupt: true, Returns: true}, module.Flow.Of(loop.Body[0]))

	module, err = Parse(lines("loop", "    break"), "test.cy")
	require.Nil(t, err)
	assert.Equal(t, Flow{}, module.Flow.Of(module.Body[0]))
}

func TestParse_Expression(t *testing.T) {
	module, err := Parse("var x: a + b * c ~ d", "test.cy")
	require.Nil(t, err)
	concat := module.Body[0].(*VarStatement).Value.(*BinaryExpression)
	assert.Equal(t, "~", concat.Operator)
	add := concat.Left.(*BinaryExpression)
	assert.Equal(t, "+", add.Operator)
	assert.Equal(t, "a", add.Left.(*Identifier).Name())
	assert.Equal(t, "*", add.Right.(*BinaryExpression).Operator)

	module, err = Parse("var x: a.b[c](d, e...)", "test.cy")
	require.Nil(t, err)
	call := module.Body[0].(*VarStatement).Value.(*BinaryExpression)
	assert.Equal(t, "(", call.Operator)
	require.Len(t, call.Arguments, 2)
	assert.Equal(t, "...", call.Arguments[1].(*BinaryExpression).Operator)
	subscript := call.Left.(*BinaryExpression)
	assert.Equal(t, "[", subscript.Operator)
	dot := subscript.Left.(*BinaryExpression)
	assert.Equal(t, ".", dot.Operator)
	assert.Equal(t, "b", dot.Field.ID)

	module, err = Parse("var x: a = 1 ? b | c | ! d", "test.cy")
	require.Nil(t, err)
	ternary := module.Body[0].(*VarStatement).Value.(*BinaryExpression)
	assert.Equal(t, "?", ternary.Operator)
	assert.Equal(t, "=", ternary.Left.(*BinaryExpression).Operator)
	assert.Equal(t, "|", ternary.Right.(*BinaryExpression).Operator)
	assert.Equal(t, "d", ternary.Else.(*Identifier).Name())

	module, err = Parse("var x: (ƒ y (y))(1)", "test.cy")
	require.Nil(t, err)
	call = module.Body[0].(*VarStatement).Value.(*BinaryExpression)
	assert.Equal(t, "(", call.Operator)
	assert.IsType(t, &FunctionLiteral{}, call.Left)
	assert.Len(t, call.Arguments, 1)
}

func TestParse_Literals(t *testing.T) {
	module, err := Parse("var m: [1, 2; 3, 4]", "test.cy")
	require.Nil(t, err)
	matrix := module.Body[0].(*VarStatement).Value.(*ArrayLiteral)
	assert.Nil(t, matrix.Elements)
	require.Len(t, matrix.Rows, 2)
	assert.Len(t, matrix.Rows[1], 2)

	module, err = Parse("var r: {a, b: 1, \"c d\": 2, [k]: 3}", "test.cy")
	require.Nil(t, err)
	record := module.Body[0].(*VarStatement).Value.(*RecordLiteral)
	require.Len(t, record.Properties, 4)
	assert.Equal(t, "a", record.Properties[0].Value.(*Identifier).Name())
	assert.Equal(t, "b", record.Properties[1].Key.ID)
	assert.Equal(t, "c d", record.Properties[2].Key.Text)
	assert.Equal(t, "k", record.Properties[3].Computed.(*Identifier).Name())

	module, err = Parse("var f: ƒ x, y|1|, z... (x)", "test.cy")
	require.Nil(t, err)
	function := module.Body[0].(*VarStatement).Value.(*FunctionLiteral)
	require.Len(t, function.Parameters, 3)
	assert.NotNil(t, function.Parameters[1].Default)
	assert.True(t, function.Parameters[2].Variadic)
	assert.Equal(t, "x", function.Expression.(*Identifier).Name())

	testData := []struct {
		Content string
		Expect  string
	}{
		{Content: "var f: ƒ+", Expect: "+"},
		{Content: "var f: ƒ[]", Expect: "["},
		{Content: "var f: ƒ()", Expect: "("},
		{Content: "var f: ƒ?!", Expect: "?"},
		{Content: "var f: ƒ/\\", Expect: "/\\"},
	}
	for _, data := range testData {
		module, err := Parse(data.Content, "test.cy")
		require.Nil(t, err, data.Content)
		assert.Equal(t, data.Expect, module.Body[0].(*VarStatement).Value.(*FunctionLiteral).Operator, data.Content)
	}
}

func TestParse_Let(t *testing.T) {
	module, err := Parse(lines("var a: []", "var v", "let a[]: 1", "let v: a[]"), "test.cy")
	require.Nil(t, err)
	push := module.Body[2].(*LetStatement)
	assert.True(t, push.Append)
	assert.False(t, push.Pop)
	pop := module.Body[3].(*LetStatement)
	assert.False(t, pop.Append)
	assert.True(t, pop.Pop)
}

func TestParse_Modules(t *testing.T) {
	module, err := Parse(lines(
		"module a {",
		"    module b {",
		"        def greet: \"hi\"",
		"    }",
		"    def c.d: module {}",
		"}",
		"module e.f {}",
	), "test.cy")
	require.Nil(t, err)
	require.Len(t, module.Body, 2)
	a := module.Body[0].(*Module)
	assert.Equal(t, []string{"a"}, a.Path)
	assert.False(t, a.IsFile())
	require.Len(t, a.Body, 2)
	b := a.Body[0].(*Module)
	assert.Equal(t, []string{"a", "b"}, b.Path)
	assert.Equal(t, 2, b.Depth())
	assert.Equal(t, []string{"a", "c", "d"}, a.Body[1].(*Module).Path)
	ef := module.Body[1].(*Module)
	assert.Equal(t, []string{"e", "f"}, ef.Path)
	assert.Nil(t, ef.Body)
}
