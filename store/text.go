// Package store loads grammar rules from files and databases.
package store

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/syntpump/syntext/grammar"
)

// SyntaxError is a malformed line in a grammar file.
type SyntaxError struct {
	Filename string
	Line     int
	Err      error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Filename, e.Line, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Cause returns the underlying error, for github.com/pkg/errors.
func (e *SyntaxError) Cause() error { return e.Err }

// SyntaxErrors collects every malformed line of a file.
type SyntaxErrors []*SyntaxError

func (list SyntaxErrors) Error() string {
	msgs := make([]string, len(list))
	for i, e := range list {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

type itemKind int

const (
	itemSymbol itemKind = iota
	itemLiteral
	itemDefine
	itemBar
	itemSemi
)

type item struct {
	kind itemKind
	text string
}

// ParseText reads the line-oriented rule notation:
//
//	# comment
//	NP ::= ADJ NOUN ; full | ADJ NP
//	   | "," NP
//	S  ::= NP VP ; number
//
// Every alternative has exactly two symbols, optionally followed by an
// agreement after ';'. Quoted symbols match literal token text. A line that
// starts with '|' continues the previous production. All malformed lines
// are reported together as SyntaxErrors.
func ParseText(filename string, r io.Reader) ([]grammar.Rule, error) {
	rules, _, err := ParseTextLines(filename, r)
	return rules, err
}

// ParseTextLines is ParseText that also returns the 1-based line each rule
// was read from.
func ParseTextLines(filename string, r io.Reader) ([]grammar.Rule, []int, error) {
	var (
		rules   []grammar.Rule
		lines   []int
		errs    SyntaxErrors
		current string
		lineNo  int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		items, err := lexLine(scanner.Text())
		if err != nil {
			errs = append(errs, &SyntaxError{Filename: filename, Line: lineNo, Err: err})
			continue
		}
		if len(items) == 0 {
			continue
		}

		var alts []item
		switch {
		case len(items) >= 2 && items[1].kind == itemDefine:
			if items[0].kind != itemSymbol {
				errs = append(errs, &SyntaxError{Filename: filename, Line: lineNo,
					Err: errors.Errorf("left-hand side must be a category, got %q", items[0].text)})
				current = ""
				continue
			}
			current = items[0].text
			alts = items[2:]
		case items[0].kind == itemBar:
			if current == "" {
				errs = append(errs, &SyntaxError{Filename: filename, Line: lineNo,
					Err: errors.New("continuation line without a production")})
				continue
			}
			alts = items[1:]
		default:
			errs = append(errs, &SyntaxError{Filename: filename, Line: lineNo,
				Err: errors.New("expected '::='")})
			continue
		}

		for _, alt := range splitAlternatives(alts) {
			rule, err := parseAlternative(current, alt)
			if err != nil {
				errs = append(errs, &SyntaxError{Filename: filename, Line: lineNo, Err: err})
				continue
			}
			rules = append(rules, rule)
			lines = append(lines, lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, errors.Wrapf(err, "read %s", filename)
	}
	if len(errs) > 0 {
		return rules, lines, errs
	}
	return rules, lines, nil
}

func splitAlternatives(items []item) [][]item {
	alts := [][]item{{}}
	for _, it := range items {
		if it.kind == itemBar {
			alts = append(alts, []item{})
			continue
		}
		alts[len(alts)-1] = append(alts[len(alts)-1], it)
	}
	return alts
}

func parseAlternative(result string, alt []item) (grammar.Rule, error) {
	var symbols []item
	agreement := grammar.AgreementNone
	for i, it := range alt {
		if it.kind == itemSemi {
			rest := alt[i+1:]
			if len(rest) != 1 || rest[0].kind != itemSymbol {
				return grammar.Rule{}, errors.New("expected one agreement after ';'")
			}
			a, err := grammar.ParseAgreement(rest[0].text)
			if err != nil {
				return grammar.Rule{}, errors.Wrap(err, "agreement")
			}
			agreement = a
			break
		}
		if it.kind == itemDefine {
			return grammar.Rule{}, errors.New("unexpected '::='")
		}
		symbols = append(symbols, it)
	}
	if len(symbols) != 2 {
		return grammar.Rule{}, errors.Errorf("production %s needs exactly two symbols, got %d", result, len(symbols))
	}
	return grammar.Rule{
		Left:      symbols[0].text,
		Right:     symbols[1].text,
		Result:    result,
		Agreement: agreement,
	}, nil
}

func lexLine(line string) ([]item, error) {
	var items []item
	for i := 0; i < len(line); {
		r, size := utf8.DecodeRuneInString(line[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case r == '#':
			return items, nil
		case r == '|':
			items = append(items, item{kind: itemBar, text: "|"})
			i += size
		case r == ';':
			items = append(items, item{kind: itemSemi, text: ";"})
			i += size
		case strings.HasPrefix(line[i:], "::="):
			items = append(items, item{kind: itemDefine, text: "::="})
			i += 3
		case r == '"':
			lit, err := strconv.QuotedPrefix(line[i:])
			if err != nil {
				return nil, errors.Errorf("unterminated literal at column %d", i+1)
			}
			text, _ := strconv.Unquote(lit)
			if text == "" {
				return nil, errors.Errorf("empty literal at column %d", i+1)
			}
			items = append(items, item{kind: itemLiteral, text: text})
			i += len(lit)
		default:
			j := i
			for j < len(line) {
				r, size := utf8.DecodeRuneInString(line[j:])
				if unicode.IsSpace(r) || strings.ContainsRune("|;#\"", r) || strings.HasPrefix(line[j:], "::=") {
					break
				}
				j += size
			}
			items = append(items, item{kind: itemSymbol, text: line[i:j]})
			i = j
		}
	}
	return items, nil
}

// WriteText writes rules in the notation read by ParseText, one per line.
func WriteText(w io.Writer, rules []grammar.Rule) error {
	for _, r := range rules {
		if _, err := fmt.Fprintln(w, r.String()); err != nil {
			return err
		}
	}
	return nil
}
