package internal

// A top down operator precedence parser for neo.
//
// Layout matters. Statements of a block start exactly at the block's indentation, which grows by 4
// for every nested block. Expressions are either closed, written on one line with commas, or open,
// written one item per line at the next indentation.

const indentUnit = 4

type loopStatus int

const (
	loopInfinite loopStatus = iota // no way out yet
	loopBreak                      // left by a break
	loopReturn                     // left only by a return
)

// Parser holds all the state of one parse, so parsers for different files can run concurrently.
type Parser struct {
	filename    string
	tokenizer   *Tokenizer
	prevToken   *Token
	token       *Token
	nextToken   *Token
	indentation int
	loops       []loopStatus
	functions   int // nesting depth of function literals
	blocks      int // nesting depth of if and loop blocks in the current function or module
	modulePath  []string
	flow        FlowTable
}

// Parse parses a whole source file. The returned error is a *CompileError.
func Parse(source string, filename string) (*Module, error) {
	parser := newParser(source, filename)
	module, err := parser.parseFile()
	if err != nil {
		return nil, withFilename(err, filename)
	}
	return module, nil
}

func newParser(source string, filename string) *Parser {
	return &Parser{
		filename:  filename,
		tokenizer: NewTokenizer(source, false),
		prevToken: theEnd,
		token:     theEnd,
		nextToken: theEnd,
		flow:      FlowTable{},
	}
}

func (parser *Parser) parseFile() (*Module, error) {
	// Fill the window: the first advance loads next, the second makes it current.
	if err := parser.advance(""); err != nil {
		return nil, err
	}
	if err := parser.advance(""); err != nil {
		return nil, err
	}
	module := &Module{Filename: parser.filename, Flow: parser.flow}
	if parser.token.IsEnd() {
		return module, nil
	}
	body, err := parser.statements()
	if err != nil {
		return nil, err
	}
	if !parser.token.IsEnd() {
		return nil, makeSyntaxError(parser.token, "unexpected '%s'", parser.token.Describe())
	}
	module.Body = body
	return module, nil
}

// advance shifts the token window. If id is not empty, the current token must be id.
func (parser *Parser) advance(id string) error {
	if id != "" && parser.token.ID != id {
		return makeSyntaxError(parser.token, "expected '%s'", id)
	}
	parser.prevToken = parser.token
	parser.token = parser.nextToken
	parser.nextToken = parser.tokenizer.Next()
	if parser.token.Kind == ErrorToken {
		return makeError(LexError, ErrUnmatchedInput, parser.token, "unexpected characters")
	}
	return nil
}

// isLineBreak reports whether a line break separates the previous and the current token.
// The end of the source counts as one.
func (parser *Parser) isLineBreak() bool {
	return parser.token.IsEnd() || parser.token.Loc.Start.Line != parser.prevToken.Loc.End.Line
}

func (parser *Parser) atIndentation() error {
	if parser.token.Loc.Start.Column != parser.indentation {
		return makeError(SyntaxError, ErrIndentation, parser.token, "expected at %d", parser.indentation)
	}
	return nil
}

func (parser *Parser) sameLine() error {
	if parser.isLineBreak() {
		return makeSyntaxError(parser.token, "unexpected linebreak")
	}
	return nil
}

// lineCheck expects the token at the indentation in the open form, on the same line otherwise.
func (parser *Parser) lineCheck(open bool) error {
	if open {
		return parser.atIndentation()
	}
	return parser.sameLine()
}

func (parser *Parser) indent() {
	parser.indentation += indentUnit
}

func (parser *Parser) outdent() {
	parser.indentation -= indentUnit
}

func (parser *Parser) inLoop() bool {
	return len(parser.loops) > 0
}

func (parser *Parser) inFunction() bool {
	return parser.functions > 0
}

// setInfiniteLoopsToReturn records that every loop without an exit yet can at least be left by a return.
func (parser *Parser) setInfiniteLoopsToReturn() {
	for i, status := range parser.loops {
		if status == loopInfinite {
			parser.loops[i] = loopReturn
		}
	}
}

func (parser *Parser) setFlow(statement Statement, flow Flow) {
	if flow.Disrupt || flow.Returns {
		parser.flow[statement] = flow
	}
}
