package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sanity-io/litter"
	"github.com/xiaobogaga/cylon/compiler/internal"
)

// A compiler from neo to javascript. Every .cy file under path is compiled to a .js module and a
// .js.map source map.

var (
	path        = flag.String("path", ".", "the neo file or the directory of neo files to compile")
	output      = flag.String("o", "", "the output directory, next to the sources when empty")
	workers     = flag.Int("workers", runtime.NumCPU(), "how many files are parsed or generated at once")
	writeMap    = flag.Bool("map", true, "whether write a source map for every file")
	runtimePath = flag.String("runtime", internal.DefaultRuntimePath, "the import path of the neo runtime")
	dumpAst     = flag.Bool("dump_ast", false, "whether print the ast of every file")
	dumpTokens  = flag.Bool("tokens", false, "whether print the tokens of every file")
	repl        = flag.Bool("repl", false, "start an interactive session")
	verbose     = flag.Bool("v", false, "whether print compile progress")
)

const sourceExt = ".cy"

func main() {
	flag.Parse()
	if *repl {
		os.Exit(runRepl())
	}
	os.Exit(build())
}

func build() int {
	units, root, err := readUnits(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		return 1
	}
	if *dumpTokens {
		for _, unit := range units {
			fmt.Printf("%s:\n", unit.Filename)
			litter.Dump(internal.NewTokenizer(unit.Source, true).All())
		}
	}
	options := internal.Options{Workers: *workers, RuntimePath: *runtimePath}
	if *verbose {
		options.Logf = func(format string, args ...interface{}) {
			fmt.Printf(format, args...)
		}
	}
	failed := 0
	for _, result := range internal.CompileUnits(context.Background(), units, options) {
		if result.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "Error: %+v\n", result.Err)
			continue
		}
		if *dumpAst {
			fmt.Printf("%s:\n", result.Filename)
			litter.Dump(result.Ast)
		}
		if err := save(root, result); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "Error: %s: %+v\n", result.Filename, err)
		}
	}
	if *verbose {
		fmt.Printf("compiler: %d files compiled, %d failed\n", len(units)-failed, failed)
	}
	if failed > 0 {
		return 1
	}
	return 0
}

// readUnits reads the neo files under path. Filenames are relative to the returned root, so that
// files importing each other find each other's output.
func readUnits(path string) ([]internal.Unit, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, "", err
	}
	root := path
	if !info.IsDir() {
		root = filepath.Dir(path)
	}
	var units []internal.Unit
	err = filepath.WalkDir(path, func(file string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		// Ignore not neo file
		if entry.IsDir() || filepath.Ext(file) != sourceExt {
			return nil
		}
		content, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		name, err := filepath.Rel(root, file)
		if err != nil {
			return err
		}
		units = append(units, internal.Unit{Filename: filepath.ToSlash(name), Source: string(content)})
		return nil
	})
	return units, root, err
}

func save(root string, result *internal.Result) error {
	dir := root
	if *output != "" {
		dir = *output
	}
	target := filepath.Join(dir, filepath.FromSlash(strings.TrimSuffix(result.Filename, sourceExt)+".js"))
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	code := result.Output.Code
	if *writeMap {
		content, err := result.Output.SourceMap.JSON()
		if err != nil {
			return err
		}
		if err := os.WriteFile(target+".map", content, 0666); err != nil {
			return err
		}
		code += "//# sourceMappingURL=" + filepath.Base(target) + ".map\n"
	}
	return os.WriteFile(target, []byte(code), 0666)
}
