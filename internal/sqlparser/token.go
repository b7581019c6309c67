package sqlparser

import "strings"

// TokenType discriminates lexical tokens.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIllegal
	TokenIdent
	TokenNumber
	TokenString
	TokenComma
	TokenDot
	TokenLParen
	TokenRParen
	TokenPlus
	TokenMinus
	TokenAsterisk
	TokenSlash
	TokenEQ
	TokenNE
	TokenGT
	TokenLT
	TokenGE
	TokenLE
	TokenSELECT
	TokenFROM
	TokenWHERE
	TokenLIMIT
	TokenOFFSET
	TokenORDER
	TokenBY
	TokenAS
	TokenASC
	TokenDESC
	TokenAND
	TokenOR
	TokenLIKE
	TokenIN
	TokenTRUE
	TokenFALSE
)

// Token is one lexical unit with its byte position in the input.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// keywords maps upper-cased identifiers to their keyword token types.
var keywords = map[string]TokenType{
	"SELECT": TokenSELECT,
	"FROM":   TokenFROM,
	"WHERE":  TokenWHERE,
	"LIMIT":  TokenLIMIT,
	"OFFSET": TokenOFFSET,
	"ORDER":  TokenORDER,
	"BY":     TokenBY,
	"AS":     TokenAS,
	"ASC":    TokenASC,
	"DESC":   TokenDESC,
	"AND":    TokenAND,
	"OR":     TokenOR,
	"LIKE":   TokenLIKE,
	"IN":     TokenIN,
	"TRUE":   TokenTRUE,
	"FALSE":  TokenFALSE,
}

// lookupIdent resolves an identifier to a keyword token when it is
// one, preserving the original spelling in Value.
func lookupIdent(ident string) TokenType {
	if tok, ok := keywords[strings.ToUpper(ident)]; ok {
		return tok
	}
	return TokenIdent
}

// clauseBoundary reports whether a token starts a new clause (or ends
// the statement), which terminates the clause being parsed.
func clauseBoundary(t TokenType) bool {
	switch t {
	case TokenFROM, TokenWHERE, TokenLIMIT, TokenORDER, TokenEOF:
		return true
	}
	return false
}
