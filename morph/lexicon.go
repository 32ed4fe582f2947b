package morph

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("syntext.morph")

type entry struct {
	category string
	features Features
}

// Lexicon is a dictionary tagger: every known word form maps to the first
// category and features it was seen with.
type Lexicon struct {
	entries        map[string]entry
	literalClasses []string
}

// LexiconOption configures a Lexicon.
type LexiconOption func(*Lexicon)

// WithLiteralClasses overrides DefaultLiteralClasses.
func WithLiteralClasses(classes ...string) LexiconOption {
	return func(l *Lexicon) {
		l.literalClasses = classes
	}
}

// NewLexicon creates an empty lexicon.
func NewLexicon(opts ...LexiconOption) *Lexicon {
	l := &Lexicon{
		entries:        make(map[string]entry),
		literalClasses: DefaultLiteralClasses,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadLexicon reads every CoNLL-U file in paths into a new lexicon.
func LoadLexicon(paths []string, opts ...LexiconOption) (*Lexicon, error) {
	l := NewLexicon(opts...)
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open lexicon: %w", err)
		}
		err = l.ReadCoNLLU(path, f)
		f.Close()
		if err != nil {
			return nil, err
		}
	}
	log.Infof("lexicon loaded: %d forms from %d files", l.Len(), len(paths))
	return l, nil
}

// Add registers a word form. Forms already present keep their first entry.
func (l *Lexicon) Add(form, category string, feats Features) bool {
	key := strings.ToLower(form)
	if _, ok := l.entries[key]; ok {
		return false
	}
	l.entries[key] = entry{category: category, features: feats}
	return true
}

// Len returns the number of known forms.
func (l *Lexicon) Len() int {
	return len(l.entries)
}

// ReadCoNLLU adds the FORM, UPOS and FEATS columns of every word line.
// Comment lines, multiword ranges (1-2) and empty nodes (1.1) are skipped.
func (l *Lexicon) ReadCoNLLU(filename string, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 6 {
			return fmt.Errorf("%s:%d: expected at least 6 columns, got %d", filename, lineNo, len(cols))
		}
		if strings.ContainsAny(cols[0], "-.") {
			continue
		}
		feats, err := ParseFeats(cols[5])
		if err != nil {
			return fmt.Errorf("%s:%d: %w", filename, lineNo, err)
		}
		upos := cols[3]
		if upos == "_" {
			upos = ""
		}
		l.Add(cols[1], upos, feats)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", filename, err)
	}
	return nil
}

// Lookup returns the token the lexicon would produce for a single word.
func (l *Lexicon) Lookup(word string) Token {
	if e, ok := l.entries[strings.ToLower(word)]; ok {
		return NewToken(word, e.category, e.features.Clone(), l.literalClasses)
	}
	return NewToken(word, guessCategory(word), nil, l.literalClasses)
}

// Tag tokenizes the sentence and looks every token up. Unknown words are
// returned untagged so the parser can report them.
func (l *Lexicon) Tag(sentence string) ([]Token, error) {
	words := Tokenize(sentence)
	tokens := make([]Token, len(words))
	for i, w := range words {
		tokens[i] = l.Lookup(w)
		if !tokens[i].IsTagged() {
			log.Debugf("unknown word %q", w)
		}
	}
	return tokens, nil
}

// guessCategory classifies words missing from the lexicon.
func guessCategory(word string) string {
	switch {
	case IsPunct(word):
		return "PUNCT"
	case IsSym(word):
		return "SYM"
	case IsNumber(word):
		return "NUM"
	case isLetters(word) && !IsUkrainian(word):
		return "X"
	default:
		return ""
	}
}
