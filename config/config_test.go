package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvDSN, "")
	t.Setenv(EnvGrammar, "")
	t.Setenv(EnvLexicon, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoad_File(t *testing.T) {
	t.Setenv(EnvDSN, "")
	t.Setenv(EnvGrammar, "")
	t.Setenv(EnvLexicon, "")

	dir := t.TempDir()
	path := filepath.Join(dir, "syntext.json")
	data := `{
  "grammar": {"path": "rules.txt"},
  "lexicon": {"paths": ["uk.conllu", "/abs/extra.conllu"]},
  "server": {"addr": ":9000", "allowedOrigins": ["http://localhost:3000"]},
  "log": {"verbosity": 2, "file": "syntext.log"}
}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := filepath.Join(dir, "rules.txt"); cfg.Grammar.Path != want {
		t.Errorf("Grammar.Path = %q, want %q", cfg.Grammar.Path, want)
	}
	wantLex := []string{filepath.Join(dir, "uk.conllu"), "/abs/extra.conllu"}
	if !reflect.DeepEqual(cfg.Lexicon.Paths, wantLex) {
		t.Errorf("Lexicon.Paths = %v, want %v", cfg.Lexicon.Paths, wantLex)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.Workers != 4 {
		t.Errorf("Server.Workers = %d, want default 4", cfg.Server.Workers)
	}
	if cfg.Grammar.Table != "grammar_rules" {
		t.Errorf("Grammar.Table = %q, want default", cfg.Grammar.Table)
	}
	if cfg.Log.Verbosity != 2 {
		t.Errorf("Log.Verbosity = %d", cfg.Log.Verbosity)
	}
	if want := filepath.Join(dir, "syntext.log"); cfg.Log.File == nil || *cfg.Log.File != want {
		t.Errorf("Log.File = %v, want %q", cfg.Log.File, want)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv(EnvDSN, "postgres://localhost/syntext")
	t.Setenv(EnvGrammar, "/etc/syntext/rules.txt")
	t.Setenv(EnvLexicon, "a.conllu"+string(os.PathListSeparator)+"b.conllu")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Grammar.DSN != "postgres://localhost/syntext" {
		t.Errorf("DSN = %q", cfg.Grammar.DSN)
	}
	if cfg.Grammar.Path != "/etc/syntext/rules.txt" {
		t.Errorf("Path = %q", cfg.Grammar.Path)
	}
	if !reflect.DeepEqual(cfg.Lexicon.Paths, []string{"a.conllu", "b.conllu"}) {
		t.Errorf("Lexicon.Paths = %v", cfg.Lexicon.Paths)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file: expected error")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("bad json: expected error")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Error("no grammar: expected error")
	}
	cfg.Grammar.Path = "rules.txt"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	cfg.Lexicon.LiteralClasses = []string{"SYM", " "}
	if err := cfg.Validate(); err == nil {
		t.Error("empty literal class: expected error")
	}
}
