package fullform

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokInt
	tokReal
	tokIdent
	tokLParen
	tokRParen
	tokComma
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokCaret
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokInt:
		return "integer"
	case tokReal:
		return "real"
	case tokIdent:
		return "identifier"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokComma:
		return "','"
	case tokPlus:
		return "'+'"
	case tokMinus:
		return "'-'"
	case tokStar:
		return "'*'"
	case tokSlash:
		return "'/'"
	case tokCaret:
		return "'^'"
	}
	return "token"
}

type token struct {
	kind   tokenKind
	text   string
	pos    int
	spaced bool // whitespace precedes the token
}

// lex splits bracket-substituted FullForm text into tokens. Reals accept
// the kernel's precision marks (1.5`20.) and exponent form (1.5*^-10);
// identifiers may carry context marks (Global`x).
func lex(src string) ([]token, error) {
	var toks []token
	spaced := false
	i := 0
	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		if unicode.IsSpace(r) {
			spaced = true
			i += size
			continue
		}
		start := i
		switch {
		case isDigit(r) || (r == '.' && i+1 < len(src) && isDigit(rune(src[i+1]))):
			tok, next, err := lexNumber(src, i)
			if err != nil {
				return nil, err
			}
			tok.spaced = spaced
			toks = append(toks, tok)
			i = next
		case unicode.IsLetter(r) || r == '$':
			i += size
			for i < len(src) {
				r, size = utf8.DecodeRuneInString(src[i:])
				if !unicode.IsLetter(r) && !isDigit(r) && r != '$' && r != '`' {
					break
				}
				i += size
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], pos: start, spaced: spaced})
		default:
			kind, ok := punct[r]
			if !ok {
				return nil, syntaxErr(src, i, "unexpected character %q", r)
			}
			i += size
			toks = append(toks, token{kind: kind, text: src[start:i], pos: start, spaced: spaced})
		}
		spaced = false
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src), spaced: spaced})
	return toks, nil
}

var punct = map[rune]tokenKind{
	'(': tokLParen,
	')': tokRParen,
	',': tokComma,
	'+': tokPlus,
	'-': tokMinus,
	'*': tokStar,
	'/': tokSlash,
	'^': tokCaret,
}

func lexNumber(src string, i int) (token, int, error) {
	start := i
	i = skipDigits(src, i)
	isReal := false
	if i < len(src) && src[i] == '.' {
		isReal = true
		i = skipDigits(src, i+1)
	}
	mant := src[start:i]

	if i < len(src) && src[i] == '`' {
		isReal = true
		for i < len(src) && (src[i] == '`' || src[i] == '.' || isDigit(rune(src[i]))) {
			i++
		}
	}

	exp := ""
	if strings.HasPrefix(src[i:], "*^") {
		j := i + 2
		if j < len(src) && (src[j] == '-' || src[j] == '+') {
			j++
		}
		k := skipDigits(src, j)
		if k == j {
			return token{}, 0, syntaxErr(src, i, "malformed exponent")
		}
		isReal = true
		exp = src[i+2 : k]
		i = k
	}

	if !isReal {
		return token{kind: tokInt, text: mant, pos: start}, i, nil
	}
	text := strings.TrimSuffix(mant, ".")
	if strings.HasPrefix(text, ".") {
		text = "0" + text
	}
	if exp != "" {
		text += "e" + exp
	}
	return token{kind: tokReal, text: text, pos: start}, i, nil
}

func skipDigits(src string, i int) int {
	for i < len(src) && isDigit(rune(src[i])) {
		i++
	}
	return i
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
