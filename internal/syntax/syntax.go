// Package syntax adapts internal/corelx's lexer into the code editor's
// syntax-highlighting contract: token-range syntax colors and a function
// outline, computed from source text without ever invoking corelx's
// parser, semantic checker, or code generator. This package only needs
// lexical structure and top-level function declarations, so it stops at
// corelx.NewLexer.Tokenize plus a minimal top-level function scan.
package syntax

import (
	"tic-editor-core/internal/corelx"
)

// Color is a syntax class assigned to a run of source text. The editor maps
// these onto theme colors; this package only classifies.
type Color int

const (
	ColorDefault Color = iota
	ColorKeyword
	ColorString
	ColorNumber
	ColorComment
	ColorOperator
)

// Span is one colored run of source, as a half-open byte range.
type Span struct {
	Start, End int
	Color      Color
}

// OutlineEntry names one top-level function declaration, for the code
// editor's OUTLINE popup.
type OutlineEntry struct {
	Name string
	Line int
}

func tokenColor(t corelx.TokenType) Color {
	switch t {
	case corelx.TOKEN_FUNCTION, corelx.TOKEN_IF, corelx.TOKEN_ELSEIF, corelx.TOKEN_ELSE,
		corelx.TOKEN_WHILE, corelx.TOKEN_FOR, corelx.TOKEN_RETURN, corelx.TOKEN_TYPE,
		corelx.TOKEN_STRUCT, corelx.TOKEN_ASSET, corelx.TOKEN_TRUE, corelx.TOKEN_FALSE,
		corelx.TOKEN_AND, corelx.TOKEN_OR, corelx.TOKEN_NOT:
		return ColorKeyword
	case corelx.TOKEN_STRING:
		return ColorString
	case corelx.TOKEN_NUMBER:
		return ColorNumber
	case corelx.TOKEN_COMMENT:
		return ColorComment
	case corelx.TOKEN_ASSIGN, corelx.TOKEN_EQUAL, corelx.TOKEN_PLUS, corelx.TOKEN_MINUS,
		corelx.TOKEN_STAR, corelx.TOKEN_SLASH, corelx.TOKEN_PERCENT, corelx.TOKEN_EQUAL_EQUAL,
		corelx.TOKEN_BANG_EQUAL, corelx.TOKEN_LESS, corelx.TOKEN_LESS_EQUAL,
		corelx.TOKEN_GREATER, corelx.TOKEN_GREATER_EQUAL, corelx.TOKEN_AMPERSAND,
		corelx.TOKEN_PIPE, corelx.TOKEN_CARET, corelx.TOKEN_TILDE, corelx.TOKEN_LSHIFT,
		corelx.TOKEN_RSHIFT:
		return ColorOperator
	default:
		return ColorDefault
	}
}

// Parse tokenizes source and returns one Span per non-trivial token. On a
// lex error (e.g. an unterminated string) corelx's Tokenize returns no
// tokens, so Parse returns no spans at all; partial coloring of the text
// before the error is not produced.
func Parse(source string) []Span {
	lexer := corelx.NewLexer(source)
	tokens, err := lexer.Tokenize()
	if err != nil && len(tokens) == 0 {
		return nil
	}

	var spans []Span
	offset := 0
	for _, tok := range tokens {
		switch tok.Type {
		case corelx.TOKEN_EOF, corelx.TOKEN_NEWLINE, corelx.TOKEN_INDENT, corelx.TOKEN_DEDENT:
			continue
		}
		start := indexFrom(source, tok.Literal, offset)
		if start < 0 {
			continue
		}
		end := start + len(tok.Literal)
		spans = append(spans, Span{Start: start, End: end, Color: tokenColor(tok.Type)})
		offset = end
	}
	return spans
}

// indexFrom finds the next occurrence of needle in s at or after from,
// falling back to a scan from the start if the token's literal was
// re-synthesized by the lexer (e.g. a normalized string) and doesn't
// appear verbatim past the cursor.
func indexFrom(s, needle string, from int) int {
	if needle == "" {
		return -1
	}
	if from > len(s) {
		from = len(s)
	}
	for i := from; i+len(needle) <= len(s); i++ {
		if s[i:i+len(needle)] == needle {
			return i
		}
	}
	for i := 0; i+len(needle) <= len(s); i++ {
		if s[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

// GetOutline scans source for top-level "function NAME(" declarations and
// returns one OutlineEntry per match, in source order, for the code
// editor's OUTLINE popup.
func GetOutline(source string) []OutlineEntry {
	lexer := corelx.NewLexer(source)
	tokens, _ := lexer.Tokenize()

	var out []OutlineEntry
	for i := 0; i < len(tokens); i++ {
		if tokens[i].Type != corelx.TOKEN_FUNCTION {
			continue
		}
		if i+1 < len(tokens) && tokens[i+1].Type == corelx.TOKEN_IDENTIFIER {
			out = append(out, OutlineEntry{Name: tokens[i+1].Literal, Line: tokens[i].Line})
		}
	}
	return out
}
