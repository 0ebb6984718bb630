package internal

import (
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"
)

type TokenKind int

const (
	IdentifierToken TokenKind = iota // name, record?, stone!
	NumberToken                      // -1.5e3
	TextToken                        // "xxx"
	PunctuatorToken                  // + ≠ /\ [] ...
	CommentToken                     // # xxx
	ErrorToken                       // anything the pattern can't match
	EndToken                         // (end)
)

const (
	NumberID  = "(number)"
	TextID    = "(text)"
	CommentID = "(comment)"
	ErrorID   = "(error)"
	EndID     = "(end)"
)

type Position struct {
	Line   int
	Column int
}

type Location struct {
	Start Position
	End   Position
}

// Token is immutable once the tokenizer returns it. Lines and columns are 0 based, columns count
// utf-16 code units so that they can go into a source map untouched.
type Token struct {
	Kind       TokenKind
	ID         string
	Loc        Location
	Alphameric bool
	// Number is the normalized value of a number token.
	Number decimal.Decimal
	// Text is the literal text of a number, the decoded value of a text, the body of a comment or
	// the unmatched rest of the line of an error token.
	Text string
}

// theEnd terminates every token stream. It is compared by identity.
var theEnd = &Token{Kind: EndToken, ID: EndID}

func (token *Token) IsEnd() bool {
	return token == theEnd
}

// Describe renders the token the way it appears in the source, for diagnostics.
func (token *Token) Describe() string {
	switch token.Kind {
	case NumberToken, ErrorToken, CommentToken:
		return token.Text
	case TextToken:
		return strconv.Quote(token.Text)
	}
	return token.ID
}

// maxPlainExponent bounds the numbers written out in full by NumberText.
const maxPlainExponent = 21

// NumberText is the canonical text of a number token: 1.50 and 1.5 give 1.5, 6e-3 gives 0.006.
// Numbers further than maxPlainExponent digits from the point keep an exponent, 1e300 gives 1e300.
func (token *Token) NumberText() string {
	coefficient := token.Number.Coefficient()
	exponent := int64(token.Number.Exponent())
	if coefficient.Sign() == 0 {
		return "0"
	}
	ten := big.NewInt(10)
	quotient, remainder := new(big.Int), new(big.Int)
	for {
		quotient.QuoRem(coefficient, ten, remainder)
		if remainder.Sign() != 0 {
			break
		}
		coefficient.Set(quotient)
		exponent++
	}
	if exponent >= -maxPlainExponent && exponent <= maxPlainExponent {
		return token.Number.String()
	}
	return coefficient.String() + "e" + strconv.FormatInt(exponent, 10)
}
