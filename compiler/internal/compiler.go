package internal

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Options configures a batch compilation.
type Options struct {
	// Workers is how many files are parsed or generated at once, runtime.NumCPU() when not positive.
	Workers int
	// RuntimePath is where the generated modules import the runtime from, DefaultRuntimePath when empty.
	RuntimePath string
	// Logf receives progress lines, nothing is logged when nil.
	Logf func(format string, args ...interface{})
}

func (options Options) logf(format string, args ...interface{}) {
	if options.Logf != nil {
		options.Logf(format, args...)
	}
}

// Unit is a source file to compile.
type Unit struct {
	Filename string
	Source   string
}

// Result is the outcome of compiling one Unit: either Output or Err is set.
type Result struct {
	Filename string
	Ast      *Module
	Output   *Output
	Err      error
}

// Compile compiles a single source file on its own.
func Compile(filename, source string) (*Output, error) {
	results := CompileUnits(context.Background(), []Unit{{Filename: filename, Source: source}}, Options{Workers: 1})
	return results[0].Output, results[0].Err
}

// CompileUnits compiles units together, so that modules declared in one file can be used in the
// others. Files are parsed in parallel, analyzed together once every file is parsed, then generated
// in parallel. A file that fails doesn't stop the others, its Result carries the error.
// Results are in the order of units.
func CompileUnits(ctx context.Context, units []Unit, options Options) []*Result {
	if options.Workers <= 0 {
		options.Workers = runtime.NumCPU()
	}
	if options.RuntimePath == "" {
		options.RuntimePath = DefaultRuntimePath
	}
	results := make([]*Result, len(units))
	for i, unit := range units {
		results[i] = &Result{Filename: unit.Filename}
	}

	parseGroup, parseCtx := errgroup.WithContext(ctx)
	parseGroup.SetLimit(options.Workers)
	for i := range units {
		unit, result := units[i], results[i]
		parseGroup.Go(func() error {
			if err := parseCtx.Err(); err != nil {
				result.Err = err
				return nil
			}
			options.logf("compiler: start parsing %s\n", unit.Filename)
			result.Ast, result.Err = Parse(unit.Source, unit.Filename)
			return nil
		})
	}
	_ = parseGroup.Wait()

	var files []*Module
	for _, result := range results {
		if result.Err == nil {
			files = append(files, result.Ast)
		}
	}
	options.logf("compiler: start analysis of %d files\n", len(files))
	analyzer := newAnalyzer()
	failures := analyzer.run(files)
	for _, result := range results {
		if err, ok := failures[result.Filename]; ok && result.Err == nil {
			result.Err = err
		}
	}

	generateGroup, generateCtx := errgroup.WithContext(ctx)
	generateGroup.SetLimit(options.Workers)
	for i := range units {
		unit, result := units[i], results[i]
		if result.Err != nil {
			continue
		}
		generateGroup.Go(func() error {
			if err := generateCtx.Err(); err != nil {
				result.Err = err
				return nil
			}
			options.logf("compiler: start generating %s\n", unit.Filename)
			result.Output, result.Err = generateFile(result.Ast, analyzer.resolution, unit.Source, options.RuntimePath)
			return nil
		})
	}
	_ = generateGroup.Wait()
	return results
}
