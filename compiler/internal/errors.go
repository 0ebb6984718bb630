package internal

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	LexError        ErrorKind = iota // unmatched input
	SyntaxError                      // unexpected token, bad indentation, unreachable code
	StructuralError                  // a construct outside the context it needs
	ScopeError                       // duplicate or missing definitions
	InternalError                    // generator and analyzer disagree
)

func (kind ErrorKind) String() string {
	switch kind {
	case LexError:
		return "lex error"
	case SyntaxError:
		return "syntax error"
	case StructuralError:
		return "structural error"
	case ScopeError:
		return "scope error"
	case InternalError:
		return "internal error"
	}
	return "unknown error"
}

var (
	ErrUnmatchedInput   = errors.New("unmatched input")
	ErrUnexpectedToken  = errors.New("unexpected token")
	ErrIndentation      = errors.New("bad indentation")
	ErrUnreachable      = errors.New("unreachable")
	ErrMissingReturn    = errors.New("missing explicit return")
	ErrWantsBreak       = errors.New("loop wants a break")
	ErrMisplaced        = errors.New("misplaced statement")
	ErrDottedName       = errors.New("dotted name on a non module")
	ErrAlreadyDefined   = errors.New("already defined")
	ErrNotDefined       = errors.New("not defined")
	ErrAssignToConstant = errors.New("assignment to a constant")
	ErrModuleValue      = errors.New("module used as a value")
	ErrFailedImport     = errors.New("import from a failed file")
	ErrUnknownNodeKind  = errors.New("unknown node kind")
)

// CompileError is the error value every stage returns. Token is the offending token, it can be nil
// for errors that are not attached to the source.
type CompileError struct {
	Kind     ErrorKind
	Cause    error
	Token    *Token
	Filename string
	Message  string
}

func (err *CompileError) Error() string {
	near := ""
	position := ""
	if err.Token != nil {
		near = fmt.Sprintf(" near '%s'", err.Token.Describe())
		position = fmt.Sprintf("%d:%d: ", err.Token.Loc.Start.Line+1, err.Token.Loc.Start.Column+1)
	}
	file := ""
	if err.Filename != "" {
		file = err.Filename + ":"
	}
	return fmt.Sprintf("%s%s%s: %s%s", file, position, err.Kind, err.Message, near)
}

func (err *CompileError) Unwrap() error {
	return err.Cause
}

func makeError(kind ErrorKind, cause error, token *Token, format string, args ...interface{}) *CompileError {
	return &CompileError{Kind: kind, Cause: cause, Token: token, Message: fmt.Sprintf(format, args...)}
}

func makeSyntaxError(token *Token, format string, args ...interface{}) *CompileError {
	return makeError(SyntaxError, ErrUnexpectedToken, token, format, args...)
}

func makeStructuralError(cause error, token *Token, format string, args ...interface{}) *CompileError {
	return makeError(StructuralError, cause, token, format, args...)
}

func makeSemanticError(cause error, token *Token, format string, args ...interface{}) *CompileError {
	return makeError(ScopeError, cause, token, format, args...)
}

// withFilename stamps the file name on compile errors that do not carry one yet.
func withFilename(err error, filename string) error {
	var compileError *CompileError
	if errors.As(err, &compileError) && compileError.Filename == "" {
		compileError.Filename = filename
	}
	return err
}

// IsIncomplete reports whether err is a parse error at the end of the input, which more input
// could fix.
func IsIncomplete(err error) bool {
	var compileError *CompileError
	return errors.As(err, &compileError) && compileError.Token != nil && compileError.Token.IsEnd()
}
