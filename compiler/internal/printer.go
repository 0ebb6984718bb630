package internal

import (
	"strings"
	"unicode/utf16"

	"github.com/xiaobogaga/cylon/util"
)

// Printer writes javascript text and knows where it is in the output, so every token can be mapped
// back to the source. Spaces, newlines and semicolons are only written when the output doesn't
// already end with them.
type Printer struct {
	out             strings.Builder
	line            int
	column          int // utf-16 code units
	indentation     int
	endsWithWord    bool
	endsWithInteger bool
	// noLineTerminator is set after return: a newline there would end the statement.
	noLineTerminator bool
	pending          *mapping
	sourceMap        *sourceMapBuilder
}

func newPrinter(sourceMap *sourceMapBuilder) *Printer {
	return &Printer{sourceMap: sourceMap}
}

func (printer *Printer) String() string {
	return printer.out.String()
}

func (printer *Printer) Indent() {
	printer.indentation++
}

func (printer *Printer) Dedent() {
	printer.indentation--
}

// Word writes a name, a keyword or a number, separated from a previous word by a space.
func (printer *Printer) Word(s string) {
	if printer.endsWithWord || (s != "" && util.IsWordByte(s[0]) && util.EndsWithWordByte(printer.out.String())) {
		printer.Space()
	}
	printer.write(s)
	printer.endsWithWord = true
	printer.endsWithInteger = util.IsInteger(s)
}

// Token writes punctuation. It keeps + + and - - apart, keeps --> from following !, and keeps a
// dot from turning an integer into a number with a fraction.
func (printer *Printer) Token(s string) {
	if s == "" {
		return
	}
	last := printer.lastByte()
	if (s == "--" && last == '!') ||
		(s[0] == '+' && last == '+') ||
		(s[0] == '-' && last == '-') ||
		(s[0] == '.' && printer.endsWithInteger) {
		printer.Space()
	}
	printer.write(s)
	printer.endsWithWord = false
	printer.endsWithInteger = false
}

func (printer *Printer) Space() {
	last := printer.lastByte()
	if last == 0 || last == ' ' || last == '\n' {
		return
	}
	printer.write(" ")
}

// Newline ends the line. It never leaves more than one blank line and no blank line right after
// an opening brace.
func (printer *Printer) Newline() {
	out := printer.out.String()
	if out == "" || strings.HasSuffix(out, "\n\n") ||
		strings.HasSuffix(out, "{\n") || strings.HasSuffix(out, ":\n") {
		return
	}
	printer.write("\n")
	printer.endsWithWord = false
	printer.endsWithInteger = false
}

func (printer *Printer) Semicolon() {
	if printer.lastByte() == ';' {
		return
	}
	printer.Token(";")
}

// NoLineTerminator forbids catching up with the source before the next token.
func (printer *Printer) NoLineTerminator() {
	printer.noLineTerminator = true
}

// Mark maps the next token written to loc. Lines are added first if the output is behind the source.
func (printer *Printer) Mark(loc Location, name string) {
	printer.catchUp(loc.Start.Line)
	printer.pending = &mapping{sourceLine: loc.Start.Line, sourceColumn: loc.Start.Column, name: name}
}

func (printer *Printer) catchUp(line int) {
	if printer.noLineTerminator {
		return
	}
	for printer.line < line {
		printer.write("\n")
		printer.endsWithWord = false
		printer.endsWithInteger = false
	}
}

func (printer *Printer) lastByte() byte {
	out := printer.out.String()
	if out == "" {
		return 0
	}
	return out[len(out)-1]
}

func (printer *Printer) write(s string) {
	if s == "" {
		return
	}
	blank := strings.TrimSpace(s) == ""
	if printer.column == 0 && s != "\n" && printer.indentation > 0 {
		printer.advance(strings.Repeat(" ", printer.indentation*indentUnit))
	}
	if !blank {
		if printer.pending != nil && printer.sourceMap != nil {
			printer.pending.generatedLine = printer.line
			printer.pending.generatedColumn = printer.column
			printer.sourceMap.add(*printer.pending)
		}
		printer.pending = nil
		printer.noLineTerminator = false
	}
	printer.advance(s)
}

func (printer *Printer) advance(s string) {
	printer.out.WriteString(s)
	for _, r := range s {
		if r == '\n' {
			printer.line++
			printer.column = 0
			continue
		}
		printer.column += utf16.RuneLen(r)
	}
}
