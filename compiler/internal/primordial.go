package internal

// primordial describes a built in name: the javascript it compiles to, and whether calling it
// (or reading it, for true and false) always gives a boolean.
type primordial struct {
	target  string
	boolean bool
}

// primordials never change once the package is initialized, every compilation shares them.
var primordials = map[string]primordial{
	"abs":       {target: "$NEO.abs"},
	"array":     {target: "$NEO.array"},
	"array?":    {target: "Array.isArray", boolean: true},
	"boolean?":  {target: "$NEO.boolean_", boolean: true},
	"char":      {target: "$NEO.char"},
	"code":      {target: "$NEO.code"},
	"false":     {target: "false", boolean: true},
	"fraction":  {target: "$NEO.fraction"},
	"function?": {target: "$NEO.function_", boolean: true},
	"integer":   {target: "$NEO.integer"},
	"integer?":  {target: "$NEO.integer_", boolean: true},
	"length":    {target: "$NEO.length"},
	"neg":       {target: "$NEO.neg"},
	"not":       {target: "$NEO.not", boolean: true},
	"null":      {target: "undefined"},
	"number":    {target: "$NEO.make"},
	"number?":   {target: "$NEO.is_big_float", boolean: true},
	"record":    {target: "$NEO.record"},
	"record?":   {target: "$NEO.record_", boolean: true},
	"stone":     {target: "$NEO.stone"},
	"stone?":    {target: "Object.isFrozen", boolean: true},
	"text":      {target: "$NEO.text"},
	"text?":     {target: "$NEO.text_", boolean: true},
	"true":      {target: "true", boolean: true},
}

// primordialSymbols are the symbols lookups fall back to, one per primordial.
var primordialSymbols = func() map[string]*Symbol {
	symbols := make(map[string]*Symbol, len(primordials))
	for name := range primordials {
		symbols[name] = &Symbol{Name: name, Readonly: true, Primordial: true}
	}
	return symbols
}()

func lookupPrimordial(name string) (*Symbol, bool) {
	symbol, ok := primordialSymbols[name]
	return symbol, ok
}
