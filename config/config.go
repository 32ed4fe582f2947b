// Package config reads the syntext configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Environment variables that override the file.
const (
	EnvDSN     = "SYNTEXT_DSN"
	EnvGrammar = "SYNTEXT_GRAMMAR"
	EnvLexicon = "SYNTEXT_LEXICON"
)

// Grammar selects the rule store.
type Grammar struct {
	Path   string `json:"path,omitempty"`
	Format string `json:"format,omitempty"`
	DSN    string `json:"dsn,omitempty"`
	Table  string `json:"table,omitempty"`
}

// Lexicon lists the CoNLL-U files the tagger learns word forms from.
type Lexicon struct {
	Paths          []string `json:"paths,omitempty"`
	LiteralClasses []string `json:"literalClasses,omitempty"`
}

type Server struct {
	Addr           string   `json:"addr,omitempty"`
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`
	Workers        int      `json:"workers,omitempty"`
}

type Log struct {
	Verbosity int     `json:"verbosity,omitempty"`
	File      *string `json:"file,omitempty"`
}

type Config struct {
	Grammar Grammar `json:"grammar"`
	Lexicon Lexicon `json:"lexicon"`
	Server  Server  `json:"server"`
	Log     Log     `json:"log"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Grammar: Grammar{Table: "grammar_rules"},
		Lexicon: Lexicon{LiteralClasses: []string{"SYM", "X"}},
		Server:  Server{Addr: ":8080", Workers: 4},
	}
}

// Load reads the file at path on top of Default and applies environment
// overrides. An empty path skips the file. Relative grammar and lexicon
// paths are resolved against the directory of the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg.resolve(filepath.Dir(path))
	}
	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

func (c *Config) resolve(dir string) {
	if c.Grammar.Path != "" && !filepath.IsAbs(c.Grammar.Path) {
		c.Grammar.Path = filepath.Join(dir, c.Grammar.Path)
	}
	for i, p := range c.Lexicon.Paths {
		if !filepath.IsAbs(p) {
			c.Lexicon.Paths[i] = filepath.Join(dir, p)
		}
	}
	if c.Log.File != nil && *c.Log.File != "" && !filepath.IsAbs(*c.Log.File) {
		file := filepath.Join(dir, *c.Log.File)
		c.Log.File = &file
	}
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDSN); ok && v != "" {
		c.Grammar.DSN = v
	}
	if v, ok := lookup(EnvGrammar); ok && v != "" {
		c.Grammar.Path = v
	}
	if v, ok := lookup(EnvLexicon); ok && v != "" {
		c.Lexicon.Paths = filepath.SplitList(v)
	}
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	if c.Grammar.Path == "" && c.Grammar.DSN == "" {
		return fmt.Errorf("no grammar: set grammar.path, grammar.dsn or %s", EnvGrammar)
	}
	if c.Server.Workers < 0 {
		return fmt.Errorf("server.workers must not be negative")
	}
	for _, class := range c.Lexicon.LiteralClasses {
		if strings.TrimSpace(class) == "" {
			return fmt.Errorf("lexicon.literalClasses contains an empty class")
		}
	}
	return nil
}
