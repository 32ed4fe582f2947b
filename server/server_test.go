package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/syntpump/syntext/batch"
	"github.com/syntpump/syntext/cyk"
	"github.com/syntpump/syntext/grammar"
	"github.com/syntpump/syntext/morph"
)

const lexicon = `# sent_id = 1
1	великий	великий	ADJ	_	Case=Nom|Gender=Masc|Number=Sing	2	amod	_	_
2	кіт	кіт	NOUN	_	Animacy=Anim|Case=Nom|Gender=Masc|Number=Sing	3	nsubj	_	_
3	спить	спати	VERB	_	Number=Sing|Person=3	0	root	_	_
4	сплять	спати	VERB	_	Number=Plur|Person=3	0	root	_	_
`

func newTestServer(t *testing.T, withRunner bool) (*Server, *batch.Runner) {
	t.Helper()
	lex := morph.NewLexicon()
	if err := lex.ReadCoNLLU("test.conllu", strings.NewReader(lexicon)); err != nil {
		t.Fatal(err)
	}
	g, err := grammar.New([]grammar.Rule{
		{Left: "ADJ", Right: "NOUN", Result: "NP", Agreement: grammar.AgreementFull},
		{Left: "NP", Right: "VERB", Result: "S", Agreement: grammar.AgreementNumber},
	})
	if err != nil {
		t.Fatal(err)
	}
	p := cyk.NewParser(lex, g)
	var runner *batch.Runner
	if withRunner {
		runner = batch.New(p, 2)
		t.Cleanup(runner.Close)
	}
	return New(p, runner, Options{}), runner
}

func do(t *testing.T, s http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: decode: %v\n%s", method, path, err, rec.Body.String())
		}
	}
	return rec, out
}

func TestParse(t *testing.T) {
	s, _ := newTestServer(t, false)

	rec, out := do(t, s, "POST", "/api/parse", `{"sentence":"Великий кіт спить"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	tree := out["tree"].([]any)
	if len(tree) != 5 {
		t.Fatalf("tree has %d nodes", len(tree))
	}
	if tag := tree[0].(map[string]any)["tag"]; tag != "S" {
		t.Errorf("root tag = %v", tag)
	}
	if out["agrees"] != true {
		t.Errorf("agrees = %v", out["agrees"])
	}
}

func TestParse_Violations(t *testing.T) {
	s, _ := newTestServer(t, false)

	rec, out := do(t, s, "POST", "/api/parse", `{"sentence":"великий кіт сплять"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	violations := out["violations"].([]any)
	if len(violations) != 1 || violations[0].(map[string]any)["kind"] != "number-mismatch" {
		t.Errorf("violations = %v", violations)
	}
}

func TestParse_Errors(t *testing.T) {
	s, _ := newTestServer(t, false)

	tests := []struct {
		name   string
		body   string
		status int
		kind   string
	}{
		{"bad json", `{`, http.StatusBadRequest, ""},
		{"no sentence", `{"sentence":"  "}`, http.StatusBadRequest, ""},
		{"untagged", `{"sentence":"великий гарбуз"}`, http.StatusUnprocessableEntity, "untagged"},
		{"incomplete", `{"sentence":"кіт великий"}`, http.StatusUnprocessableEntity, "incomplete"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := do(t, s, "POST", "/api/parse", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			if tt.kind != "" && out["kind"] != tt.kind {
				t.Errorf("kind = %v, want %s", out["kind"], tt.kind)
			}
		})
	}

	_, out := do(t, s, "POST", "/api/parse", `{"sentence":"великий гарбуз"}`)
	if out["index"] != float64(1) || out["text"] != "гарбуз" {
		t.Errorf("untagged details = %v", out)
	}
	_, out = do(t, s, "POST", "/api/parse", `{"sentence":"кіт великий"}`)
	if _, ok := out["chart"].(map[string]any); !ok {
		t.Errorf("incomplete error has no chart: %v", out)
	}
}

func TestChart(t *testing.T) {
	s, _ := newTestServer(t, false)

	rec, out := do(t, s, "POST", "/api/chart", `{"sentence":"кіт великий"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if out["complete"] != false {
		t.Errorf("complete = %v", out["complete"])
	}
	if cells := out["cells"].([]any); len(cells) != 2 {
		t.Errorf("cells = %v", cells)
	}
}

func TestTag(t *testing.T) {
	s, _ := newTestServer(t, false)

	rec, out := do(t, s, "POST", "/api/tag", `{"sentence":"кіт, спить"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	tokens := out["tokens"].([]any)
	if len(tokens) != 3 {
		t.Fatalf("tokens = %v", tokens)
	}
	comma := tokens[1].(map[string]any)
	if comma["upos"] != "SYM" || comma["key"] != `","` {
		t.Errorf("comma = %v", comma)
	}
}

func TestGrammar(t *testing.T) {
	s, _ := newTestServer(t, false)

	rec, out := do(t, s, "GET", "/api/grammar", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	rules := out["rules"].([]any)
	if len(rules) != 2 || rules[0].(map[string]any)["agreement"] != "full" {
		t.Errorf("rules = %v", rules)
	}

	rec, _ = do(t, s, "GET", "/api/grammar?format=text", "")
	want := "NP ::= ADJ NOUN ; full\nS ::= NP VERB ; number\n"
	if rec.Body.String() != want {
		t.Errorf("text grammar = %q, want %q", rec.Body.String(), want)
	}
}

func TestBatches(t *testing.T) {
	s, runner := newTestServer(t, true)

	rec, out := do(t, s, "POST", "/api/batches", `{"sentences":["великий кіт спить","гарбуз"]}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	id, _ := out["id"].(string)
	if id == "" || rec.Header().Get("Location") != "/api/batches/"+id {
		t.Fatalf("id = %q, Location = %q", id, rec.Header().Get("Location"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := runner.Wait(ctx, id); err != nil {
		t.Fatal(err)
	}

	rec, out = do(t, s, "GET", "/api/batches/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if out["status"] != string(batch.StatusCompleted) || out["failed"] != float64(1) {
		t.Errorf("batch = %v", out)
	}
	items := out["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("items = %v", items)
	}
	if items[0].(map[string]any)["result"] == nil {
		t.Errorf("item 0 has no result: %v", items[0])
	}
	if items[1].(map[string]any)["error"] == nil {
		t.Errorf("item 1 has no error: %v", items[1])
	}

	_, out = do(t, s, "GET", "/api/batches", "")
	if list := out["batches"].([]any); len(list) != 1 {
		t.Errorf("batches = %v", list)
	}

	rec, _ = do(t, s, "GET", "/api/batches/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing batch status = %d", rec.Code)
	}
	rec, _ = do(t, s, "POST", "/api/batches", `{"sentences":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty batch status = %d", rec.Code)
	}
}

func TestBatches_Disabled(t *testing.T) {
	s, _ := newTestServer(t, false)
	rec, _ := do(t, s, "POST", "/api/batches", `{"sentences":["a"]}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	s, _ := newTestServer(t, false)
	req := httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}

	restricted := New(s.parser, nil, Options{AllowedOrigins: []string{"http://localhost:3000"}})
	req = httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	rec = httptest.NewRecorder()
	restricted.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disallowed origin got %q", got)
	}
}
