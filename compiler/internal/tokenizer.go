package internal

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// A line oriented tokenizer for neo.
//
// A line is a sequence of those elements, separated by any number of spaces:
// * Comment: # up to the end of the line.
// * Name: a letter, then letters, digits and underscores, then an optional ! and an optional ?.
// * Number: -1, 2.5, 6e-3. The sign is part of the number, so a - 1 needs the spaces.
// * Text: "xxx" with \n \r \" \\ and \u{XXXX} up to \u{XXXXXX} escapes.
// * Punctuator: . ... /\ \/ > >> < << [ [] { {} ( ) } ] , : ? ! ; ~ ≈ = ≠ ≤ ≥ & | + - * % ƒ $ @ ^ _ ' `
// Tabs are not whitespace.

var tokenPattern = regexp.MustCompile(
	`^(?:( +)|(#.*)|([a-zA-Z][a-zA-Z0-9_]*!?\??)|(-?\d+(?:\.\d+)?(?:e-?\d+)?)` +
		`|("(?:[^"\\]|\\(?:[nr"\\]|u\{[0-9A-F]{4,6}\}))*")` +
		`|(\.(?:\.\.)?|/\\?|\\/?|>>?|<<?|\[\]?|\{\}?|[()}\].,:?!;~≈=≠≤≥&|+\-*%ƒ$@^_'` + "`" + `]))`)

var lineBreakPattern = regexp.MustCompile(`\n|\r\n?`)

const (
	spacesGroup = iota + 1
	commentGroup
	nameGroup
	numberGroup
	textGroup
	punctuatorGroup
)

type Tokenizer struct {
	lines       []string
	currentLine int
	currentPos  int // byte offset in the current line
	comments    bool
}

// NewTokenizer returns a tokenizer over source. Comments are skipped unless comments is set.
func NewTokenizer(source string, comments bool) *Tokenizer {
	return &Tokenizer{lines: lineBreakPattern.Split(source, -1), comments: comments}
}

// Tokenize returns every token of source, without comments and without the end token.
func Tokenize(source string) []*Token {
	return NewTokenizer(source, false).All()
}

// All returns the tokens left, without the end token.
func (tokenizer *Tokenizer) All() []*Token {
	var tokens []*Token
	for token := tokenizer.Next(); !token.IsEnd(); token = tokenizer.Next() {
		tokens = append(tokens, token)
	}
	return tokens
}

// Next returns the next token. Once the lines are exhausted it returns the end token on every call.
func (tokenizer *Tokenizer) Next() *Token {
	for tokenizer.currentLine < len(tokenizer.lines) {
		line := tokenizer.lines[tokenizer.currentLine]
		if tokenizer.currentPos >= len(line) {
			tokenizer.currentLine++
			tokenizer.currentPos = 0
			continue
		}
		rest := line[tokenizer.currentPos:]
		match := tokenPattern.FindStringSubmatchIndex(rest)
		if match == nil {
			return tokenizer.makeErrorToken(len(line), rest)
		}
		startPos := tokenizer.currentPos
		tokenizer.currentPos += match[1]
		text := rest[:match[1]]
		loc := tokenizer.location(startPos, tokenizer.currentPos)
		switch {
		case matched(match, spacesGroup):
			continue
		case matched(match, commentGroup):
			if !tokenizer.comments {
				continue
			}
			return &Token{Kind: CommentToken, ID: CommentID, Loc: loc, Text: text[1:]}
		case matched(match, nameGroup):
			return &Token{Kind: IdentifierToken, ID: text, Loc: loc, Alphameric: true}
		case matched(match, numberGroup):
			number, err := decimal.NewFromString(text)
			if err != nil {
				tokenizer.currentPos = startPos
				return tokenizer.makeErrorToken(len(line), rest)
			}
			return &Token{Kind: NumberToken, ID: NumberID, Loc: loc, Number: number, Text: text}
		case matched(match, textGroup):
			value, ok := decodeText(text[1 : len(text)-1])
			if !ok {
				tokenizer.currentPos = startPos
				return tokenizer.makeErrorToken(len(line), rest)
			}
			return &Token{Kind: TextToken, ID: TextID, Loc: loc, Text: value}
		default:
			return &Token{Kind: PunctuatorToken, ID: text, Loc: loc}
		}
	}
	return theEnd
}

// makeErrorToken swallows the rest of the current line.
func (tokenizer *Tokenizer) makeErrorToken(lineEnd int, rest string) *Token {
	loc := tokenizer.location(tokenizer.currentPos, lineEnd)
	tokenizer.currentPos = lineEnd
	return &Token{Kind: ErrorToken, ID: ErrorID, Loc: loc, Text: rest}
}

func (tokenizer *Tokenizer) location(start, end int) Location {
	line := tokenizer.lines[tokenizer.currentLine]
	startColumn := utf16Length(line[:start])
	return Location{
		Start: Position{Line: tokenizer.currentLine, Column: startColumn},
		End:   Position{Line: tokenizer.currentLine, Column: startColumn + utf16Length(line[start:end])},
	}
}

func matched(match []int, group int) bool {
	return match[2*group] >= 0
}

func utf16Length(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// decodeText resolves the escapes of a text literal body. The pattern already checked their shape,
// only out of range code points can fail here.
func decodeText(body string) (string, bool) {
	if !strings.Contains(body, `\`) {
		return body, true
	}
	var builder strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			builder.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			builder.WriteByte('\n')
		case 'r':
			builder.WriteByte('\r')
		case '"', '\\':
			builder.WriteByte(body[i])
		case 'u':
			end := strings.IndexByte(body[i:], '}')
			code, err := strconv.ParseUint(body[i+2:i+end], 16, 32)
			if err != nil || !utf8.ValidRune(rune(code)) {
				return "", false
			}
			builder.WriteRune(rune(code))
			i += end
		}
	}
	return builder.String(), true
}
