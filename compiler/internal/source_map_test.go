package internal

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-sourcemap/sourcemap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeVLQ(t *testing.T) {
	testData := []struct {
		Value  int
		Expect string
	}{
		{Value: 0, Expect: "A"},
		{Value: 1, Expect: "C"},
		{Value: -1, Expect: "D"},
		{Value: 15, Expect: "e"},
		{Value: 16, Expect: "gB"},
		{Value: 123, Expect: "2H"},
		{Value: -123, Expect: "3H"},
	}
	for _, data := range testData {
		var out strings.Builder
		encodeVLQ(&out, data.Value)
		assert.Equal(t, data.Expect, out.String(), data.Value)
	}
}

func TestSourceMapBuilder(t *testing.T) {
	builder := newSourceMapBuilder("test.js", "test.cy", "var x: 1")
	builder.add(mapping{generatedLine: 0, generatedColumn: 0, sourceLine: 0, sourceColumn: 0, name: "x"})
	builder.add(mapping{generatedLine: 0, generatedColumn: 0, sourceLine: 5, sourceColumn: 5})
	builder.add(mapping{generatedLine: 0, generatedColumn: 4, sourceLine: 0, sourceColumn: 4})
	builder.add(mapping{generatedLine: 2, generatedColumn: 2, sourceLine: 1, sourceColumn: 0, name: "y"})
	builder.add(mapping{generatedLine: 2, generatedColumn: 6, sourceLine: 1, sourceColumn: 2, name: "x"})
	sourceMap := builder.build()

	assert.Equal(t, 3, sourceMap.Version)
	assert.Equal(t, "test.js", sourceMap.File)
	assert.Equal(t, []string{"test.cy"}, sourceMap.Sources)
	assert.Equal(t, []string{"var x: 1"}, sourceMap.SourcesContent)
	assert.Equal(t, []string{"x", "y"}, sourceMap.Names)
	assert.Equal(t, "AAAAA,IAAI;;EACJC,IAAED", sourceMap.Mappings)

	content, err := sourceMap.JSON()
	require.Nil(t, err)
	var document map[string]interface{}
	require.Nil(t, json.Unmarshal(content, &document))
	assert.Equal(t, float64(3), document["version"])
	assert.Equal(t, "AAAAA,IAAI;;EACJC,IAAED", document["mappings"])
}

func TestSourceMap_Empty(t *testing.T) {
	sourceMap := newSourceMapBuilder("empty.js", "empty.cy", "").build()
	assert.Equal(t, "", sourceMap.Mappings)
	content, err := sourceMap.JSON()
	require.Nil(t, err)
	assert.Contains(t, string(content), `"names":[]`)
}

// generatedPosition finds the 1 based line and the 0 based column of the first occurrence of text
// on a line starting with prefix.
func generatedPosition(t *testing.T, code, prefix, text string) (int, int) {
	for i, line := range strings.Split(code, "\n") {
		if strings.HasPrefix(strings.TrimLeft(line, " "), prefix) {
			column := strings.Index(line, text)
			require.True(t, column >= 0, line)
			return i + 1, column
		}
	}
	require.Fail(t, "no line starts with "+prefix, code)
	return 0, 0
}

func TestSourceMap_RoundTrip(t *testing.T) {
	source := lines(
		"var x: 1",
		"var y: x",
		"def f: ƒ n {",
		"    return n + x",
		"}",
	)
	output, err := Compile("test.cy", source)
	require.Nil(t, err)
	content, err := output.SourceMap.JSON()
	require.Nil(t, err)
	consumer, err := sourcemap.Parse("", content)
	require.Nil(t, err)
	assert.Equal(t, "test.js", consumer.File())

	testData := []struct {
		Prefix string
		Text   string
		Line   int
		Column int
		Name   string
	}{
		{Prefix: "var y", Text: "y", Line: 2, Column: 4, Name: "y"},
		{Prefix: "var y", Text: "x;", Line: 2, Column: 7, Name: "x"},
		{Prefix: "var f", Text: "f", Line: 3, Column: 4, Name: "f"},
		{Prefix: "var f", Text: "n)", Line: 3, Column: 9, Name: "n"},
		{Prefix: "return", Text: "return", Line: 4, Column: 4},
		{Prefix: "return", Text: "$NEO.add", Line: 4, Column: 13},
		{Prefix: "return", Text: "n,", Line: 4, Column: 11, Name: "n"},
	}
	for _, data := range testData {
		line, column := generatedPosition(t, output.Code, data.Prefix, data.Text)
		file, name, sourceLine, sourceColumn, ok := consumer.Source(line, column)
		require.True(t, ok, data.Text)
		assert.Equal(t, "test.cy", file)
		assert.Equal(t, data.Line, sourceLine, data.Text)
		assert.Equal(t, data.Column, sourceColumn, data.Text)
		if data.Name != "" {
			assert.Equal(t, data.Name, name, data.Text)
		}
	}
}
