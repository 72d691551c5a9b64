package parser

import (
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenString
	tokenIdent
	tokenOperator // + - * / % < <= > >= == != && || !
	tokenLParen
	tokenRParen
	tokenComma
	tokenQuestion
	tokenColon
)

// token is one lexed unit with its source range
type token struct {
	kind tokenKind
	text string  // exact lexeme as it appears in source
	num  float64 // value for tokenNumber
	str  string  // unquoted value for tokenString
	rng  Range
}

// multi-byte operators must be matched before their single-byte prefixes
var multiByteOps = []string{"<=", ">=", "==", "!=", "&&", "||"}

const singleByteOps = "+-*/%<>!"

// tokenize splits source into tokens, tracking a position per token.
// It fails only on unterminated strings and bytes outside the grammar.
func tokenize(source string) ([]token, *ParseError) {
	var tokens []token
	pt := NewPositionTracker(source)

	for {
		// Skip whitespace
		for pt.offset < len(source) && isSpace(source[pt.offset]) {
			pt.AdvanceBytes(1)
		}
		if pt.offset >= len(source) {
			break
		}

		start := pt.Mark()
		c := source[pt.offset]

		switch {
		case c >= '0' && c <= '9':
			end := pt.offset
			for end < len(source) && (isDigit(source[end]) || source[end] == '.') {
				end++
			}
			text := source[start.Offset:end]
			num, err := strconv.ParseFloat(text, 64)
			if err != nil {
				pt.AdvanceBytes(end - pt.offset)
				return nil, NewParseError(ErrorKindSyntax, "invalid number literal").
					WithToken(text).
					WithRange(RangeFromPositions(start, pt.Mark())).
					WithUnderlying(err)
			}
			pt.AdvanceBytes(end - pt.offset)
			tokens = append(tokens, token{kind: tokenNumber, text: text, num: num, rng: RangeFromPositions(start, pt.Mark())})

		case c == '"':
			end := pt.offset + 1
			for end < len(source) && source[end] != '"' {
				if source[end] == '\\' && end+1 < len(source) {
					end++
				}
				end++
			}
			if end >= len(source) {
				pt.AdvanceBytes(len(source) - pt.offset)
				return nil, NewParseError(ErrorKindSyntax, "unterminated string literal").
					WithRange(RangeFromPositions(start, pt.Mark())).
					WithSuggestion(`close the string with "`)
			}
			text := source[start.Offset : end+1]
			value, err := strconv.Unquote(text)
			if err != nil {
				pt.AdvanceBytes(end + 1 - pt.offset)
				return nil, NewParseError(ErrorKindSyntax, "invalid string literal").
					WithToken(text).
					WithRange(RangeFromPositions(start, pt.Mark())).
					WithUnderlying(err)
			}
			pt.AdvanceBytes(end + 1 - pt.offset)
			tokens = append(tokens, token{kind: tokenString, text: text, str: value, rng: RangeFromPositions(start, pt.Mark())})

		case isIdentStart(c):
			end := pt.offset
			for end < len(source) && isIdentPart(source[end]) {
				end++
			}
			text := source[start.Offset:end]
			pt.AdvanceBytes(end - pt.offset)
			rng := RangeFromPositions(start, pt.Mark())
			// Word operators lex as operators so the parser treats
			// "and"/"or"/"not" uniformly with their symbolic spellings
			if text == "and" || text == "or" || text == "not" {
				tokens = append(tokens, token{kind: tokenOperator, text: text, rng: rng})
			} else {
				tokens = append(tokens, token{kind: tokenIdent, text: text, rng: rng})
			}

		case c == '(':
			pt.AdvanceBytes(1)
			tokens = append(tokens, token{kind: tokenLParen, text: "(", rng: RangeFromPositions(start, pt.Mark())})
		case c == ')':
			pt.AdvanceBytes(1)
			tokens = append(tokens, token{kind: tokenRParen, text: ")", rng: RangeFromPositions(start, pt.Mark())})
		case c == ',':
			pt.AdvanceBytes(1)
			tokens = append(tokens, token{kind: tokenComma, text: ",", rng: RangeFromPositions(start, pt.Mark())})
		case c == '?':
			pt.AdvanceBytes(1)
			tokens = append(tokens, token{kind: tokenQuestion, text: "?", rng: RangeFromPositions(start, pt.Mark())})
		case c == ':':
			pt.AdvanceBytes(1)
			tokens = append(tokens, token{kind: tokenColon, text: ":", rng: RangeFromPositions(start, pt.Mark())})

		default:
			if op, ok := matchOperator(source[pt.offset:]); ok {
				pt.AdvanceBytes(len(op))
				tokens = append(tokens, token{kind: tokenOperator, text: op, rng: RangeFromPositions(start, pt.Mark())})
				break
			}
			pt.AdvanceBytes(1)
			return nil, NewParseError(ErrorKindSyntax, "unexpected character").
				WithToken(string(c)).
				WithRange(RangeFromPositions(start, pt.Mark()))
		}
	}

	end := pt.Mark()
	tokens = append(tokens, token{kind: tokenEOF, rng: RangeFromPositions(end, end)})
	return tokens, nil
}

func matchOperator(rest string) (string, bool) {
	for _, op := range multiByteOps {
		if strings.HasPrefix(rest, op) {
			return op, true
		}
	}
	if len(rest) > 0 && strings.IndexByte(singleByteOps, rest[0]) >= 0 {
		return rest[:1], true
	}
	return "", false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
