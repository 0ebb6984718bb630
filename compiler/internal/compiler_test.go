package internal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	output, err := Compile("main.cy", "var x: 1")
	require.Nil(t, err)
	assert.Contains(t, output.Code, "var x = $1;")
	require.NotNil(t, output.SourceMap)
	assert.Equal(t, "main.js", output.SourceMap.File)
	assert.Equal(t, []string{"main.cy"}, output.SourceMap.Sources)
	assert.Equal(t, []string{"var x: 1"}, output.SourceMap.SourcesContent)
}

func TestCompile_Errors(t *testing.T) {
	testData := []struct {
		Content string
		Kind    ErrorKind
		Cause   error
	}{
		{Content: lines("def x: 1", "let x: 2"), Kind: ScopeError, Cause: ErrAssignToConstant},
		{Content: lines("loop", "    fail"), Kind: StructuralError, Cause: ErrWantsBreak},
		{Content: "var x: \"abc", Kind: LexError, Cause: ErrUnmatchedInput},
		{Content: "var x: y", Kind: ScopeError, Cause: ErrNotDefined},
	}
	for _, data := range testData {
		output, err := Compile("main.cy", data.Content)
		assert.Nil(t, output, data.Content)
		require.NotNil(t, err, data.Content)
		var compileError *CompileError
		require.True(t, errors.As(err, &compileError), data.Content)
		assert.Equal(t, data.Kind, compileError.Kind, data.Content)
		assert.ErrorIs(t, err, data.Cause, data.Content)
	}
}

func TestCompileUnits_IsolatesFailures(t *testing.T) {
	units := []Unit{
		{Filename: "syntax.cy", Source: "var x: )"},
		{Filename: "good.cy", Source: lines("module m {", "    def one: 1", "}")},
		{Filename: "scope.cy", Source: "var x: missing"},
		{Filename: "user.cy", Source: "var two: m.one + m.one"},
	}
	results := CompileUnits(context.Background(), units, Options{Workers: 2})
	require.Len(t, results, 4)
	for i, result := range results {
		assert.Equal(t, units[i].Filename, result.Filename)
	}
	assert.ErrorIs(t, results[0].Err, ErrUnexpectedToken)
	assert.Nil(t, results[0].Output)
	assert.Nil(t, results[1].Err)
	assert.Contains(t, results[1].Output.Code, "var m$one = $1;")
	assert.ErrorIs(t, results[2].Err, ErrNotDefined)
	assert.Nil(t, results[2].Output)
	require.Nil(t, results[3].Err)
	assert.Contains(t, results[3].Output.Code, "var two = $NEO.add(m$one, m$one);")
}

func TestCompileUnits_ParentInFailedFile(t *testing.T) {
	results := CompileUnits(context.Background(), []Unit{
		{Filename: "parent.cy", Source: lines("module a {", "    def x: y", "}")},
		{Filename: "child.cy", Source: lines("module a.b {", "    def z: 1", "}")},
	}, Options{})
	assert.ErrorIs(t, results[0].Err, ErrNotDefined)
	// The parent was declared before its file failed.
	assert.Nil(t, results[1].Err)
}

func TestCompileUnits_ImportFromFailedFile(t *testing.T) {
	results := CompileUnits(context.Background(), []Unit{
		{Filename: "a.cy", Source: lines("module a {", "    def x: 1", "}", "var z: nope")},
		{Filename: "main.cy", Source: "var g: a.x"},
		{Filename: "child.cy", Source: lines("module a.b {", "    def y: x", "}")},
	}, Options{})
	assert.ErrorIs(t, results[0].Err, ErrNotDefined)
	assert.ErrorIs(t, results[1].Err, ErrFailedImport)
	assert.Nil(t, results[1].Output)
	assert.ErrorIs(t, results[2].Err, ErrFailedImport)
	assert.Nil(t, results[2].Output)

	var compileError *CompileError
	require.True(t, errors.As(results[1].Err, &compileError))
	assert.Equal(t, "main.cy:1:10: scope error: 'x' comes from a.cy, which failed to compile near 'x'", compileError.Error())
}

func TestCompileUnits_Options(t *testing.T) {
	var mutex sync.Mutex
	var logs []string
	options := Options{
		Workers:     1,
		RuntimePath: "../runtime/neo.js",
		Logf: func(format string, args ...interface{}) {
			mutex.Lock()
			defer mutex.Unlock()
			logs = append(logs, fmt.Sprintf(format, args...))
		},
	}
	results := CompileUnits(context.Background(), []Unit{{Filename: "a.cy", Source: "var x"}}, options)
	require.Nil(t, results[0].Err)
	assert.Contains(t, results[0].Output.Code, "import $NEO from \"../runtime/neo.js\";\n")
	assert.Equal(t, []string{
		"compiler: start parsing a.cy\n",
		"compiler: start analysis of 1 files\n",
		"compiler: start generating a.cy\n",
	}, logs)
}

func TestCompileUnits_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := CompileUnits(ctx, []Unit{{Filename: "a.cy", Source: "var x"}, {Filename: "b.cy", Source: "var y"}}, Options{})
	for _, result := range results {
		assert.ErrorIs(t, result.Err, context.Canceled)
		assert.Nil(t, result.Output)
	}
}

func TestCompileUnits_Concurrent(t *testing.T) {
	var units []Unit
	for i := 0; i < 16; i++ {
		units = append(units, Unit{
			Filename: fmt.Sprintf("file%d.cy", i),
			Source:   fmt.Sprintf("var x: %d\nvar y: x + %d.5", i, i),
		})
	}
	results := CompileUnits(context.Background(), units, Options{Workers: 4})
	for i, result := range results {
		require.Nil(t, result.Err, result.Filename)
		assert.Contains(t, result.Output.Code, fmt.Sprintf("const $%d = $NEO.number(\"%d\");", i, i))
		assert.Contains(t, result.Output.Code, fmt.Sprintf("const $%d_5 = $NEO.number(\"%d.5\");", i, i))
		assert.Equal(t, fmt.Sprintf("file%d.js", i), result.Output.SourceMap.File)
	}
}
