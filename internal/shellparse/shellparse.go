// Package shellparse splits command lines into shell words and joins them back.
//
// Word boundaries follow POSIX shell rules: whitespace separates words, single
// and double quotes group, backslash escapes the next character (inside double
// quotes only before $ ` " \ and newline). Unquoted control operators (|, &&,
// ;, >, 2>&1, ...) are kept as separate operator tokens. Every token remembers
// the text it was read from, so Join reproduces untouched tokens byte for byte.
package shellparse

import (
	"errors"
	"fmt"
	"strings"

	"al.essio.dev/pkg/shellescape"
	"github.com/mattn/go-shellwords"
)

// ErrEmptyCommand is returned when the input holds no words.
var ErrEmptyCommand = errors.New("empty command")

var (
	errUnterminated = errors.New("unterminated quote or substitution")
	errTrailingEsc  = errors.New("trailing backslash")
)

// MalformedInputError reports input the shell could not split, usually
// unterminated quoting.
type MalformedInputError struct {
	Input string
	Err   error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed command %q: %v", e.Input, e.Err)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// Token is one shell word, or a control operator when Operator is set.
// Raw is the source text the token was read from; tokens built with Word
// have none and are quoted as literals by Join.
type Token struct {
	Value    string
	Operator bool
	Raw      string
}

// Word returns a literal word token.
func Word(s string) Token {
	return Token{Value: s}
}

// Tokenize splits raw into tokens.
func Tokenize(raw string) ([]Token, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyCommand
	}

	malformed := func(err error) error {
		return &MalformedInputError{Input: raw, Err: err}
	}

	r := []rune(raw)
	var tokens []Token
	for pos := 0; pos < len(r); {
		if isBlank(r[pos]) {
			pos++
			continue
		}

		if isOperator(r[pos]) {
			end := scanOperator(r, pos)
			tokens = append(tokens, operator(string(r[pos:end])))
			pos = end
			continue
		}

		end, err := scanWord(r, pos)
		if err != nil {
			return nil, malformed(err)
		}
		text := string(r[pos:end])

		// An all-digit word glued to a redirection is its descriptor.
		if end < len(r) && (r[end] == '>' || r[end] == '<') && allDigits(text) {
			opEnd := scanOperator(r, end)
			tokens = append(tokens, operator(string(r[pos:opEnd])))
			pos = opEnd
			continue
		}

		value, err := decode(text)
		if err != nil {
			return nil, malformed(err)
		}
		tokens = append(tokens, Token{Value: value, Raw: text})
		pos = end
	}

	if len(tokens) == 0 {
		return nil, ErrEmptyCommand
	}
	return tokens, nil
}

func operator(s string) Token {
	return Token{Value: s, Operator: true, Raw: s}
}

// scanWord returns the index just past the word starting at pos. Quoted,
// escaped and substituted text never ends a word.
func scanWord(r []rune, pos int) (int, error) {
	i := pos
	for i < len(r) {
		switch c := r[i]; {
		case isBlank(c) || isOperator(c):
			return i, nil
		case c == '\\':
			if i+1 >= len(r) {
				return 0, errTrailingEsc
			}
			i += 2
		case c == '\'':
			end := indexFrom(r, i+1, '\'')
			if end < 0 {
				return 0, errUnterminated
			}
			i = end + 1
		case c == '"':
			end, err := skipDoubleQuoted(r, i+1)
			if err != nil {
				return 0, err
			}
			i = end
		case c == '`':
			end := indexFrom(r, i+1, '`')
			if end < 0 {
				return 0, errUnterminated
			}
			i = end + 1
		case c == '$' && i+1 < len(r) && r[i+1] == '(':
			end, err := skipSubstitution(r, i+2)
			if err != nil {
				return 0, err
			}
			i = end
		default:
			i++
		}
	}
	return i, nil
}

// skipDoubleQuoted returns the index past the closing quote.
func skipDoubleQuoted(r []rune, i int) (int, error) {
	for i < len(r) {
		switch r[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1, nil
		default:
			i++
		}
	}
	return 0, errUnterminated
}

// skipSubstitution returns the index past the ")" closing a $( opened before i.
func skipSubstitution(r []rune, i int) (int, error) {
	depth := 1
	for i < len(r) {
		switch r[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1, nil
			}
		}
		i++
	}
	return 0, errUnterminated
}

// scanOperator reads an operator run such as "&&", ">>" or ">&2" starting at
// pos and returns the index just past it. It always consumes at least one rune.
func scanOperator(r []rune, pos int) int {
	end := pos
	for end < len(r) && isOperator(r[end]) {
		end++
	}
	if end-pos >= 2 && r[end-1] == '&' && (r[end-2] == '>' || r[end-2] == '<') {
		for end < len(r) && (isDigit(r[end]) || r[end] == '-') {
			end++
		}
	}
	if end == pos {
		end++
	}
	return end
}

// decode strips quoting from one word. shellwords escapes any character after
// a backslash, so backslashes that POSIX keeps literal inside double quotes
// are doubled first.
func decode(text string) (string, error) {
	words, err := shellwords.NewParser().Parse(posixDoubleQuotes(text))
	if err != nil {
		return "", err
	}
	if len(words) != 1 {
		return "", fmt.Errorf("word %q split into %d", text, len(words))
	}
	return words[0], nil
}

func posixDoubleQuotes(text string) string {
	var b strings.Builder
	r := []rune(text)
	var single, double bool
	for i := 0; i < len(r); i++ {
		c := r[i]
		switch {
		case c == '\\' && !single && i+1 < len(r):
			if double && !strings.ContainsRune("$`\"\\\n", r[i+1]) {
				b.WriteString(`\\`)
				continue
			}
			b.WriteRune(c)
			b.WriteRune(r[i+1])
			i++
			continue
		case c == '\'' && !double:
			single = !single
		case c == '"' && !single:
			double = !double
		}
		b.WriteRune(c)
	}
	return b.String()
}

func indexFrom(r []rune, from int, want rune) int {
	for i := from; i < len(r); i++ {
		if r[i] == want {
			return i
		}
	}
	return -1
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !isDigit(c) {
			return false
		}
	}
	return true
}

func isOperator(r rune) bool {
	return strings.ContainsRune(";&|<>", r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isBlank(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

// Join serializes tokens back into one command line. Tokens read by Tokenize
// are written as typed; literal words are quoted only when the shell would
// otherwise split, expand or reinterpret them.
func Join(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		switch {
		case t.Raw != "":
			parts[i] = t.Raw
		case t.Operator:
			parts[i] = t.Value
		default:
			parts[i] = shellescape.Quote(t.Value)
		}
	}
	return strings.Join(parts, " ")
}

// Words returns the values of all word tokens.
func Words(tokens []Token) []string {
	words := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !t.Operator {
			words = append(words, t.Value)
		}
	}
	return words
}
