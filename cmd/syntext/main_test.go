package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/syntpump/syntext/batch"
	"github.com/syntpump/syntext/cyk"
)

func TestReadSentences(t *testing.T) {
	in := "Кіт спить.\n\n# comment\n  Пес біжить  \n"
	got, err := readSentences(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Кіт спить.", "Пес біжить"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("readSentences = %q, want %q", got, want)
	}
}

func TestWriteBatch(t *testing.T) {
	word := "так"
	res := &batch.Result{
		Items: []batch.Item{
			{Index: 0, Sentence: "так", Result: &cyk.Result{Tree: []cyk.ParseNode{{Tag: "PART", Word: &word}}}},
			{Index: 1, Sentence: "гарбуз", Err: errors.New("token 0 is not tagged")},
		},
	}

	var buf bytes.Buffer
	if err := writeBatch(&buf, res, "json"); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("json lines = %q", lines)
	}
	if !strings.Contains(lines[0], `"tag":"PART"`) || !strings.Contains(lines[1], `"error":"token 0 is not tagged"`) {
		t.Errorf("json lines = %q", lines)
	}

	buf.Reset()
	if err := writeBatch(&buf, res, "tree"); err != nil {
		t.Fatal(err)
	}
	if out := buf.String(); !strings.Contains(out, `PART "так"`) || !strings.Contains(out, "error: token 0") {
		t.Errorf("tree output = %q", out)
	}

	if err := writeBatch(&buf, res, "chart"); err == nil {
		t.Error("chart batch format: expected error")
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("SYNTEXT_GRAMMAR", "/env/rules.txt")
	t.Setenv("SYNTEXT_DSN", "")
	t.Setenv("SYNTEXT_LEXICON", "")

	o := globalOptions{}
	cfg, err := o.loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Grammar.Path != "/env/rules.txt" {
		t.Errorf("env path = %q", cfg.Grammar.Path)
	}

	o = globalOptions{grammarPath: "/flag/rules.ebnf", lexicon: []string{"a.conllu"}, grammarFormat: "ebnf"}
	cfg, err = o.loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Grammar.Path != "/flag/rules.ebnf" || cfg.Grammar.Format != "ebnf" {
		t.Errorf("flag grammar = %+v", cfg.Grammar)
	}
	if !reflect.DeepEqual(cfg.Lexicon.Paths, []string{"a.conllu"}) {
		t.Errorf("lexicon = %v", cfg.Lexicon.Paths)
	}
}

func TestLogSettings(t *testing.T) {
	t.Setenv("SYNTEXT_GRAMMAR", "")
	t.Setenv("SYNTEXT_DSN", "")
	t.Setenv("SYNTEXT_LEXICON", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "syntext.json")
	if err := os.WriteFile(path, []byte(`{"log": {"verbosity": 2, "file": "/var/log/syntext.log"}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	none := func(string) bool { return false }
	o := globalOptions{configPath: path, verbosity: 0}
	verbosity, file := o.logSettings(none)
	if verbosity != 2 || file == nil || *file != "/var/log/syntext.log" {
		t.Errorf("config log settings = %d, %v", verbosity, file)
	}

	all := func(string) bool { return true }
	o = globalOptions{configPath: path, verbosity: 1}
	verbosity, file = o.logSettings(all)
	if verbosity != 1 || file != nil {
		t.Errorf("flag log settings = %d, %v, want 1 and stderr", verbosity, file)
	}

	onlyVerbose := func(name string) bool { return name == "verbose" }
	o = globalOptions{configPath: path, verbosity: 3}
	verbosity, file = o.logSettings(onlyVerbose)
	if verbosity != 3 || file == nil || *file != "/var/log/syntext.log" {
		t.Errorf("mixed log settings = %d, %v", verbosity, file)
	}

	o = globalOptions{configPath: filepath.Join(dir, "missing.json")}
	if verbosity, file = o.logSettings(none); verbosity != 0 || file != nil {
		t.Errorf("missing config log settings = %d, %v", verbosity, file)
	}
}
