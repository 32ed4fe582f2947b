package store

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/syntpump/syntext/config"
	"github.com/syntpump/syntext/grammar"
)

var log = commonlog.GetLogger("syntext.store")

// Format names a grammar source format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatEBNF Format = "ebnf"
	FormatSQL  Format = "sql"
)

// ParseFormat validates a format name. The empty string is returned as is
// so callers can fall back to DetectFormat.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatText, FormatJSON, FormatEBNF, FormatSQL:
		return f, nil
	}
	return "", fmt.Errorf("unknown grammar format %q", s)
}

// DetectFormat guesses the format of a grammar file from its extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonl", ".ndjson":
		return FormatJSON
	case ".ebnf":
		return FormatEBNF
	default:
		return FormatText
	}
}

// Parse reads rules in the given file format.
func Parse(format Format, filename string, r io.Reader) ([]grammar.Rule, error) {
	switch format {
	case FormatText, "":
		return ParseText(filename, r)
	case FormatJSON:
		return ParseJSON(filename, r)
	case FormatEBNF:
		return ParseEBNF(filename, r)
	}
	return nil, fmt.Errorf("format %q cannot be read from a file", format)
}

// ParseLines is Parse that also returns the line each rule starts on.
func ParseLines(format Format, filename string, r io.Reader) ([]grammar.Rule, []int, error) {
	switch format {
	case FormatText, "":
		return ParseTextLines(filename, r)
	case FormatJSON:
		return ParseJSONLines(filename, r)
	case FormatEBNF:
		return ParseEBNFLines(filename, r)
	}
	return nil, nil, fmt.Errorf("format %q cannot be read from a file", format)
}

// File is a rule store backed by a single file.
type File struct {
	Path   string
	Format Format
}

// LoadRules implements grammar.Store.
func (f File) LoadRules() ([]grammar.Rule, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read grammar: %w", err)
	}
	format := f.Format
	if format == "" {
		format = DetectFormat(f.Path)
	}
	rules, err := Parse(format, f.Path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	log.Debugf("read %d rules from %s (%s)", len(rules), f.Path, format)
	return rules, nil
}

// Open returns the store described by cfg. A DSN selects Postgres unless
// a file path is also given and the format is not sql. The returned closer
// releases any database handle and is never nil.
func Open(cfg config.Grammar) (grammar.Store, io.Closer, error) {
	format, err := ParseFormat(cfg.Format)
	if err != nil {
		return nil, nil, err
	}
	if format == FormatSQL || (format == "" && cfg.Path == "" && cfg.DSN != "") {
		if cfg.DSN == "" {
			return nil, nil, fmt.Errorf("sql grammar store needs a dsn")
		}
		s, err := OpenSQL(cfg.DSN, cfg.Table)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
	if cfg.Path == "" {
		return nil, nil, fmt.Errorf("no grammar configured")
	}
	return File{Path: cfg.Path, Format: format}, nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// LoadGrammar opens the configured store, loads it once and releases it.
func LoadGrammar(cfg config.Grammar) (*grammar.Grammar, error) {
	s, closer, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	g, err := grammar.Load(s)
	if err != nil {
		return nil, err
	}
	log.Infof("loaded grammar with %d rules", g.Len())
	return g, nil
}
