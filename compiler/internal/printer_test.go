package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrinter_Spacing(t *testing.T) {
	testData := []struct {
		Print  func(printer *Printer)
		Expect string
	}{
		{Print: func(printer *Printer) { printer.Token("+"); printer.Token("+") }, Expect: "+ +"},
		{Print: func(printer *Printer) { printer.Token("-"); printer.Token("--") }, Expect: "- --"},
		{Print: func(printer *Printer) { printer.Token("+"); printer.Token("++") }, Expect: "+ ++"},
		{Print: func(printer *Printer) { printer.Token("!"); printer.Token("--") }, Expect: "! --"},
		{Print: func(printer *Printer) { printer.Word("1"); printer.Token("."); printer.Word("toString") }, Expect: "1 .toString"},
		{Print: func(printer *Printer) { printer.Word("$1"); printer.Token("."); printer.Word("x") }, Expect: "$1.x"},
		{Print: func(printer *Printer) { printer.Word("var"); printer.Word("x") }, Expect: "var x"},
		{Print: func(printer *Printer) { printer.Token("("); printer.Word("x"); printer.Token(")") }, Expect: "(x)"},
		{Print: func(printer *Printer) { printer.Word("x"); printer.Semicolon(); printer.Semicolon() }, Expect: "x;"},
		{Print: func(printer *Printer) { printer.Space(); printer.Word("x"); printer.Space(); printer.Space() }, Expect: "x "},
		{Print: func(printer *Printer) {
			printer.Word("a")
			printer.Newline()
			printer.Newline()
			printer.Newline()
			printer.Word("b")
		}, Expect: "a\n\nb"},
		{Print: func(printer *Printer) {
			printer.Token("{")
			printer.Newline()
			printer.Newline()
			printer.Indent()
			printer.Word("x")
			printer.Semicolon()
			printer.Newline()
			printer.Dedent()
			printer.Token("}")
		}, Expect: "{\n    x;\n}"},
	}
	for _, data := range testData {
		printer := newPrinter(nil)
		data.Print(printer)
		assert.Equal(t, data.Expect, printer.String())
	}
}

func TestPrinter_Mark(t *testing.T) {
	builder := newSourceMapBuilder("test.js", "test.cy", "")
	printer := newPrinter(builder)
	printer.Mark(Location{Start: Position{Line: 0, Column: 4}}, "x")
	printer.Word("x")
	printer.Space()
	printer.Mark(Location{Start: Position{Line: 2, Column: 6}}, "")
	printer.Word("y")
	printer.Mark(Location{Start: Position{Line: 1, Column: 0}}, "")
	printer.Word("z")

	assert.Equal(t, "x \n\ny z", printer.String())
	require.Len(t, builder.mappings, 3)
	assert.Equal(t, mapping{generatedLine: 0, generatedColumn: 0, sourceLine: 0, sourceColumn: 4, name: "x"}, builder.mappings[0])
	assert.Equal(t, mapping{generatedLine: 2, generatedColumn: 0, sourceLine: 2, sourceColumn: 6}, builder.mappings[1])
	// The output is never rewound to follow the source.
	assert.Equal(t, mapping{generatedLine: 2, generatedColumn: 2, sourceLine: 1, sourceColumn: 0}, builder.mappings[2])
}

func TestPrinter_NoLineTerminator(t *testing.T) {
	printer := newPrinter(newSourceMapBuilder("test.js", "test.cy", ""))
	printer.Word("return")
	printer.NoLineTerminator()
	printer.Space()
	printer.Mark(Location{Start: Position{Line: 3}}, "")
	printer.Word("x")
	printer.Semicolon()
	assert.Equal(t, "return x;", printer.String())

	printer.Mark(Location{Start: Position{Line: 1}}, "")
	printer.Word("y")
	assert.Equal(t, "return x;\ny", printer.String())
}

func TestPrinter_Columns(t *testing.T) {
	builder := newSourceMapBuilder("test.js", "test.cy", "")
	printer := newPrinter(builder)
	printer.Token(`"𝄞"`)
	printer.Mark(Location{Start: Position{Line: 0, Column: 9}}, "")
	printer.Word("x")
	require.Len(t, builder.mappings, 1)
	assert.Equal(t, 4, builder.mappings[0].generatedColumn)
}
