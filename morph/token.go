// Package morph describes tagged tokens and the taggers that produce them.
package morph

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Feature names that take part in grammatical agreement.
const (
	FeatureGender = "Gender"
	FeatureNumber = "Number"
)

// DefaultLiteralClasses are the categories whose tokens are matched against
// the grammar by their exact text rather than by category.
var DefaultLiteralClasses = []string{"SYM", "X"}

// KeyKind tells how a token is matched against grammar rules.
type KeyKind int

const (
	// Abstract keys match by part-of-speech category.
	Abstract KeyKind = iota
	// Literal keys match by the token's exact text.
	Literal
)

func (k KeyKind) String() string {
	if k == Literal {
		return "literal"
	}
	return "abstract"
}

// CategoryKey is the value a token contributes to grammar lookups.
type CategoryKey struct {
	Kind  KeyKind
	Value string
}

func (k CategoryKey) String() string {
	if k.Kind == Literal {
		return fmt.Sprintf("%q", k.Value)
	}
	return k.Value
}

// KeyOf decides the category key of a token once, at the tagger boundary.
func KeyOf(text, category string, literalClasses []string) CategoryKey {
	if category != "" && slices.Contains(literalClasses, category) {
		return CategoryKey{Kind: Literal, Value: text}
	}
	return CategoryKey{Kind: Abstract, Value: category}
}

// Features holds morphological attributes such as Gender=Masc.
type Features map[string]string

// ParseFeats decodes a CoNLL-U FEATS column ("Gender=Masc|Number=Sing").
// An underscore or empty string yields nil.
func ParseFeats(s string) (Features, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "_" {
		return nil, nil
	}
	feats := make(Features)
	for _, pair := range strings.Split(s, "|") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" || value == "" {
			return nil, fmt.Errorf("malformed feature %q", pair)
		}
		feats[name] = value
	}
	return feats, nil
}

// Get returns the feature value and whether it is set to something non-empty.
func (f Features) Get(name string) (string, bool) {
	v, ok := f[name]
	return v, ok && v != ""
}

// Clone returns a copy of f, or nil if f is empty.
func (f Features) Clone() Features {
	if len(f) == 0 {
		return nil
	}
	out := make(Features, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// String encodes f in CoNLL-U FEATS form with keys sorted.
func (f Features) String() string {
	if len(f) == 0 {
		return "_"
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + f[k]
	}
	return strings.Join(parts, "|")
}

// Token is a word of a sentence with its category and features.
type Token struct {
	Text     string
	Category string
	Features Features
	Key      CategoryKey
}

// NewToken builds a token and decides its category key.
func NewToken(text, category string, feats Features, literalClasses []string) Token {
	return Token{
		Text:     text,
		Category: category,
		Features: feats,
		Key:      KeyOf(text, category, literalClasses),
	}
}

// CategoryKey returns the token's key, deriving it with
// DefaultLiteralClasses when the tagger left it unset.
func (t Token) CategoryKey() CategoryKey {
	if t.Key.Value != "" {
		return t.Key
	}
	return KeyOf(t.Text, t.Category, DefaultLiteralClasses)
}

// IsTagged reports whether the token carries a category.
func (t Token) IsTagged() bool {
	return t.Category != ""
}

func (t Token) String() string {
	return fmt.Sprintf("%s/%s", t.Text, t.Category)
}

// Tagger turns a sentence into tagged tokens.
type Tagger interface {
	Tag(sentence string) ([]Token, error)
}

// TaggerFunc adapts a function to the Tagger interface.
type TaggerFunc func(sentence string) ([]Token, error)

func (f TaggerFunc) Tag(sentence string) ([]Token, error) {
	return f(sentence)
}
