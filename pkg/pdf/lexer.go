package pdf

import (
	"bytes"
	"fmt"
	"strconv"
)

// TokenType represents the type of a content stream token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenNumber
	TokenString
	TokenHexString
	TokenName
	TokenKeyword
	TokenArrayStart
	TokenArrayEnd
	TokenDictStart
	TokenDictEnd
	// TokenArray is produced by the parser, never by the lexer
	TokenArray
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenNumber:
		return "Number"
	case TokenString:
		return "String"
	case TokenHexString:
		return "HexString"
	case TokenName:
		return "Name"
	case TokenKeyword:
		return "Keyword"
	case TokenArrayStart:
		return "ArrayStart"
	case TokenArrayEnd:
		return "ArrayEnd"
	case TokenDictStart:
		return "DictStart"
	case TokenDictEnd:
		return "DictEnd"
	case TokenArray:
		return "Array"
	default:
		return "Unknown"
	}
}

// Token is a single content stream token or, for arrays, an assembled operand.
type Token struct {
	Type  TokenType
	Num   float64
	Bytes []byte  // string, hex string, name or keyword
	Array []Token // elements when Type == TokenArray
}

// Keyword returns the keyword text or "" if t is not a keyword.
func (t Token) Keyword() string {
	if t.Type != TokenKeyword {
		return ""
	}
	return string(t.Bytes)
}

// IsString reports whether t is a literal or hex string.
func (t Token) IsString() bool {
	return t.Type == TokenString || t.Type == TokenHexString
}

// Lexer tokenizes PDF content streams
type Lexer struct {
	data []byte
	pos  int
	buf  []byte
}

// NewLexer creates a new content stream lexer
func NewLexer(data []byte) *Lexer {
	return &Lexer{data: data, buf: make([]byte, 0, 64)}
}

// Position returns the current offset in the stream
func (l *Lexer) Position() int {
	return l.pos
}

// NextToken returns the next token from the stream
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespaceAndComments()
	if l.pos >= len(l.data) {
		return Token{Type: TokenEOF}, nil
	}

	ch := l.data[l.pos]
	switch ch {
	case '[':
		l.pos++
		return Token{Type: TokenArrayStart}, nil
	case ']':
		l.pos++
		return Token{Type: TokenArrayEnd}, nil
	case '<':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
			l.pos += 2
			return Token{Type: TokenDictStart}, nil
		}
		l.pos++
		return l.readHexString()
	case '>':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '>' {
			l.pos += 2
			return Token{Type: TokenDictEnd}, nil
		}
		l.pos++
		return Token{}, fmt.Errorf("unexpected '>' at offset %d", l.pos-1)
	case '(':
		return l.readString()
	case '/':
		return l.readName()
	case '+', '-', '.', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return l.readNumber()
	case ')', '{', '}':
		// stray delimiters are returned as one-byte keywords and ignored by the parser
		l.pos++
		return Token{Type: TokenKeyword, Bytes: []byte{ch}}, nil
	default:
		return l.readKeyword(), nil
	}
}

// SkipInlineImage skips the binary data following an ID operator, up to and
// including the EI keyword.
func (l *Lexer) SkipInlineImage() error {
	// a single whitespace byte separates ID from the data
	if l.pos < len(l.data) && isWhitespace(l.data[l.pos]) {
		l.pos++
	}
	for i := l.pos; i+1 < len(l.data); i++ {
		if l.data[i] != 'E' || l.data[i+1] != 'I' {
			continue
		}
		before := i == l.pos || isWhitespace(l.data[i-1])
		after := i+2 == len(l.data) || isWhitespace(l.data[i+2]) || isDelimiter(l.data[i+2])
		if before && after {
			l.pos = i + 2
			return nil
		}
	}
	l.pos = len(l.data)
	return fmt.Errorf("inline image without EI")
}

func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.data) {
		ch := l.data[l.pos]
		if isWhitespace(ch) {
			l.pos++
			continue
		}
		if ch == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		return
	}
}

func (l *Lexer) readNumber() (Token, error) {
	start := l.pos
	for l.pos < len(l.data) {
		ch := l.data[l.pos]
		if ch == '+' || ch == '-' || ch == '.' || (ch >= '0' && ch <= '9') {
			l.pos++
			continue
		}
		break
	}
	str := string(l.data[start:l.pos])
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		// producers occasionally write things like "--1" or "1.2.3"; keep going with 0
		return Token{Type: TokenNumber}, nil
	}
	return Token{Type: TokenNumber, Num: f}, nil
}

// readString reads a literal string, resolving escape sequences
func (l *Lexer) readString() (Token, error) {
	l.buf = l.buf[:0]
	l.pos++ // consume (

	depth := 1
	for {
		if l.pos >= len(l.data) {
			return Token{}, fmt.Errorf("unterminated string")
		}
		ch := l.data[l.pos]
		l.pos++

		switch ch {
		case '\\':
			if l.pos >= len(l.data) {
				continue
			}
			esc := l.data[l.pos]
			l.pos++
			switch esc {
			case 'n':
				l.buf = append(l.buf, '\n')
			case 'r':
				l.buf = append(l.buf, '\r')
			case 't':
				l.buf = append(l.buf, '\t')
			case 'b':
				l.buf = append(l.buf, '\b')
			case 'f':
				l.buf = append(l.buf, '\f')
			case '\r':
				// line continuation
				if l.pos < len(l.data) && l.data[l.pos] == '\n' {
					l.pos++
				}
			case '\n':
			case '0', '1', '2', '3', '4', '5', '6', '7':
				val := int(esc - '0')
				for i := 0; i < 2 && l.pos < len(l.data); i++ {
					d := l.data[l.pos]
					if d < '0' || d > '7' {
						break
					}
					val = val*8 + int(d-'0')
					l.pos++
				}
				l.buf = append(l.buf, byte(val))
			default:
				l.buf = append(l.buf, esc)
			}
		case '(':
			depth++
			l.buf = append(l.buf, ch)
		case ')':
			depth--
			if depth == 0 {
				return Token{Type: TokenString, Bytes: append([]byte(nil), l.buf...)}, nil
			}
			l.buf = append(l.buf, ch)
		default:
			l.buf = append(l.buf, ch)
		}
	}
}

func (l *Lexer) readHexString() (Token, error) {
	l.buf = l.buf[:0]
	for {
		if l.pos >= len(l.data) {
			return Token{}, fmt.Errorf("unterminated hex string")
		}
		ch := l.data[l.pos]
		l.pos++
		if ch == '>' {
			break
		}
		if isHexDigit(ch) {
			l.buf = append(l.buf, ch)
		}
	}
	if len(l.buf)%2 != 0 {
		l.buf = append(l.buf, '0')
	}
	out := make([]byte, len(l.buf)/2)
	for i := range out {
		out[i] = hexValue(l.buf[2*i])<<4 | hexValue(l.buf[2*i+1])
	}
	return Token{Type: TokenHexString, Bytes: out}, nil
}

func (l *Lexer) readName() (Token, error) {
	l.buf = l.buf[:0]
	l.pos++ // consume /

	for l.pos < len(l.data) {
		ch := l.data[l.pos]
		if isDelimiter(ch) || isWhitespace(ch) {
			break
		}
		l.pos++
		if ch == '#' && l.pos+1 < len(l.data) && isHexDigit(l.data[l.pos]) && isHexDigit(l.data[l.pos+1]) {
			l.buf = append(l.buf, hexValue(l.data[l.pos])<<4|hexValue(l.data[l.pos+1]))
			l.pos += 2
			continue
		}
		l.buf = append(l.buf, ch)
	}
	return Token{Type: TokenName, Bytes: append([]byte(nil), l.buf...)}, nil
}

func (l *Lexer) readKeyword() Token {
	start := l.pos
	for l.pos < len(l.data) {
		ch := l.data[l.pos]
		if isDelimiter(ch) || isWhitespace(ch) {
			break
		}
		l.pos++
	}
	return Token{Type: TokenKeyword, Bytes: l.data[start:l.pos]}
}

// Helper functions
func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f' || ch == 0
}

func isDelimiter(ch byte) bool {
	return bytes.IndexByte([]byte("()<>[]{}/%"), ch) >= 0
}

func isHexDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'A' && ch <= 'F') || (ch >= 'a' && ch <= 'f')
}

func hexValue(ch byte) byte {
	switch {
	case ch >= '0' && ch <= '9':
		return ch - '0'
	case ch >= 'a' && ch <= 'f':
		return ch - 'a' + 10
	case ch >= 'A' && ch <= 'F':
		return ch - 'A' + 10
	}
	return 0
}
