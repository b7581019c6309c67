package sqlparser

// Lexer walks the input byte by byte and produces tokens. It carries
// no lookahead state beyond the current character; the parser buffers
// tokens as needed.
type Lexer struct {
	input   string
	pos     int
	readPos int
	ch      byte
}

// NewLexer builds a lexer over the SQL text.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// NextToken returns the next token, TokenEOF at the end of input, or
// TokenIllegal for a byte the grammar has no use for.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()
	start := l.pos

	switch l.ch {
	case 0:
		return Token{Type: TokenEOF, Pos: start}
	case ',':
		l.readChar()
		return Token{Type: TokenComma, Value: ",", Pos: start}
	case '.':
		l.readChar()
		return Token{Type: TokenDot, Value: ".", Pos: start}
	case '(':
		l.readChar()
		return Token{Type: TokenLParen, Value: "(", Pos: start}
	case ')':
		l.readChar()
		return Token{Type: TokenRParen, Value: ")", Pos: start}
	case '+':
		l.readChar()
		return Token{Type: TokenPlus, Value: "+", Pos: start}
	case '-':
		l.readChar()
		return Token{Type: TokenMinus, Value: "-", Pos: start}
	case '*':
		l.readChar()
		return Token{Type: TokenAsterisk, Value: "*", Pos: start}
	case '/':
		l.readChar()
		return Token{Type: TokenSlash, Value: "/", Pos: start}
	case '=':
		l.readChar()
		return Token{Type: TokenEQ, Value: "=", Pos: start}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenGE, Value: ">=", Pos: start}
		}
		l.readChar()
		return Token{Type: TokenGT, Value: ">", Pos: start}
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			l.readChar()
			return Token{Type: TokenLE, Value: "<=", Pos: start}
		case '>':
			l.readChar()
			l.readChar()
			return Token{Type: TokenNE, Value: "<>", Pos: start}
		}
		l.readChar()
		return Token{Type: TokenLT, Value: "<", Pos: start}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenNE, Value: "!=", Pos: start}
		}
		l.readChar()
		return Token{Type: TokenIllegal, Value: "!", Pos: start}
	case '\'', '"':
		return l.readString(l.ch)
	}

	if isLetter(l.ch) {
		ident := l.readIdentifier()
		return Token{Type: lookupIdent(ident), Value: ident, Pos: start}
	}
	if isDigit(l.ch) {
		return Token{Type: TokenNumber, Value: l.readNumber(), Pos: start}
	}

	ch := l.ch
	l.readChar()
	return Token{Type: TokenIllegal, Value: string(ch), Pos: start}
}

// readString consumes a quoted literal, keeping the surrounding quotes
// in the token value so downstream coercion can tell strings from bare
// tokens. An unterminated literal yields TokenIllegal.
func (l *Lexer) readString(quote byte) Token {
	start := l.pos
	l.readChar()
	for l.ch != quote && l.ch != 0 {
		l.readChar()
	}
	if l.ch == 0 {
		return Token{Type: TokenIllegal, Value: l.input[start:], Pos: start}
	}
	l.readChar()
	return Token{Type: TokenString, Value: l.input[start:l.pos], Pos: start}
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readNumber() string {
	start := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
