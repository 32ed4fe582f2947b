package morph

import (
	"regexp"
	"unicode"
)

const dashes = `\x{2012}-\x{2015}\-`

var (
	tokenPattern = regexp.MustCompile(
		`[\x{20A0}-\x{20CF}\x{00A2}-\x{00A5}$]\d+` +
			`|[\p{L}\p{N}_` + dashes + `'’]+` +
			`|[^\p{L}\p{N}_\s]`)
	punctPattern = regexp.MustCompile(`^[` + dashes +
		`\x{2026}\x{22EF}\x{1801}.~@?!&^*:;/\\|\x{00A6}\[\](){}` +
		`\x{2018}\x{2019}\x{201C}\x{201D}"\x{00AB}\x{00BB}]+$`)
	symPattern       = regexp.MustCompile(`^[!@#$%^&*(),.?"':{}|<>;\-…]+$`)
	ukrainianPattern = regexp.MustCompile(`^[А-ЩЬЮ-щьюяіїґєІЇҐЄ` + dashes + `'’]+$`)
)

// Tokenize splits a sentence into words, numbers and single symbols.
func Tokenize(sentence string) []string {
	return tokenPattern.FindAllString(sentence, -1)
}

// IsPunct reports whether the token consists only of punctuation: dashes,
// dots and ellipses, brackets, quotes, slashes and the marks ~@?!&^*:;.
// Commas are not punctuation here; they stay SYM and match by text.
func IsPunct(token string) bool {
	return punctPattern.MatchString(token)
}

// IsSym reports whether the token consists only of special characters.
func IsSym(token string) bool {
	return symPattern.MatchString(token)
}

// IsUkrainian reports whether every character of token belongs to the
// Ukrainian alphabet (dashes and apostrophes allowed).
func IsUkrainian(token string) bool {
	return ukrainianPattern.MatchString(token)
}

// IsNumber reports whether token is made of digits only.
func IsNumber(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isLetters(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
