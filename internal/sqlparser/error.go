package sqlparser

import (
	"fmt"
	"strings"
)

// ParseError reports a lexical or syntactic failure with the offending
// token and position. Parsing never guesses intent: the first
// violation aborts the parse.
type ParseError struct {
	Message  string
	Position int
	Token    string
	Expected []string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Position >= 0 {
		fmt.Fprintf(&b, " at position %d", e.Position)
	}
	if e.Token != "" {
		fmt.Fprintf(&b, " (found %q)", e.Token)
	}
	if len(e.Expected) > 0 {
		fmt.Fprintf(&b, ", expected %s", strings.Join(e.Expected, " or "))
	}
	return b.String()
}

func newParseError(tok Token, message string, expected ...string) *ParseError {
	return &ParseError{
		Message:  message,
		Position: tok.Pos,
		Token:    tok.Value,
		Expected: expected,
	}
}
