// Package server exposes the parser as a JSON HTTP API.
//
// Endpoints:
//
//	POST /api/parse         body: {"sentence":"..."}
//	POST /api/chart         body: {"sentence":"..."}
//	POST /api/tag           body: {"sentence":"..."}
//	POST /api/batches       body: {"sentences":["...", ...]}
//	GET  /api/batches
//	GET  /api/batches/{id}
//	GET  /api/grammar[?format=text]
//	GET  /healthz
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/cors"
	"github.com/tliron/commonlog"

	"github.com/syntpump/syntext/batch"
	"github.com/syntpump/syntext/cyk"
	"github.com/syntpump/syntext/format"
	"github.com/syntpump/syntext/grammar"
	"github.com/syntpump/syntext/store"
)

var log = commonlog.GetLogger("syntext.server")

const maxBody = 1 << 20

type Options struct {
	// AllowedOrigins lists the CORS origins; empty allows any origin for
	// simple GET and POST requests.
	AllowedOrigins []string
}

type Server struct {
	parser  *cyk.Parser
	runner  *batch.Runner
	mux     *http.ServeMux
	handler http.Handler
}

// New builds the API. runner may be nil, in which case the batch endpoints
// answer 503.
func New(parser *cyk.Parser, runner *batch.Runner, opts Options) *Server {
	s := &Server{
		parser: parser,
		runner: runner,
		mux:    http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /api/parse", s.handleParse)
	s.mux.HandleFunc("POST /api/chart", s.handleChart)
	s.mux.HandleFunc("POST /api/tag", s.handleTag)
	s.mux.HandleFunc("POST /api/batches", s.handleSubmitBatch)
	s.mux.HandleFunc("GET /api/batches", s.handleListBatches)
	s.mux.HandleFunc("GET /api/batches/{id}", s.handleGetBatch)
	s.mux.HandleFunc("GET /api/grammar", s.handleGrammar)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	var c *cors.Cors
	if len(opts.AllowedOrigins) == 0 {
		c = cors.Default()
	} else {
		c = cors.New(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type"},
		})
	}
	s.handler = c.Handler(logRequests(s.mux))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Infof("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
	})
}

type sentenceRequest struct {
	Sentence string `json:"sentence"`
}

type batchRequest struct {
	Sentences []string `json:"sentences"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Index *int   `json:"index,omitempty"`
	Text  string `json:"text,omitempty"`
	Chart any    `json:"chart,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

func (s *Server) decodeSentence(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req sentenceRequest
	if !decode(w, r, &req) {
		return "", false
	}
	if strings.TrimSpace(req.Sentence) == "" {
		writeError(w, http.StatusBadRequest, "sentence is required")
		return "", false
	}
	return req.Sentence, true
}

// writeParseError maps parser failures onto status codes. Sentences the
// grammar cannot handle are 422, everything else is a server error.
func writeParseError(w http.ResponseWriter, err error) {
	var (
		untagged   *cyk.UntaggedTokenError
		incomplete *cyk.IncompleteParseError
	)
	switch {
	case errors.As(err, &untagged):
		index := untagged.Index
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: err.Error(),
			Kind:  "untagged",
			Index: &index,
			Text:  untagged.Text,
		})
	case errors.As(err, &incomplete):
		resp := errorResponse{Error: err.Error(), Kind: "incomplete"}
		if incomplete.Chart != nil {
			resp.Chart = format.ChartData(incomplete.Chart, nil)
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	case errors.Is(err, cyk.ErrEmptySentence):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Kind: "empty"})
	default:
		log.Errorf("parse: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	sentence, ok := s.decodeSentence(w, r)
	if !ok {
		return
	}
	res, err := s.parser.Parse(sentence)
	if err != nil {
		writeParseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, format.ResultData(res))
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	sentence, ok := s.decodeSentence(w, r)
	if !ok {
		return
	}
	c, violations, err := s.parser.Chart(sentence)
	if err != nil {
		writeParseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, format.ChartData(c, violations))
}

func (s *Server) handleTag(w http.ResponseWriter, r *http.Request) {
	sentence, ok := s.decodeSentence(w, r)
	if !ok {
		return
	}
	tokens, err := s.parser.Tag(sentence)
	if err != nil {
		writeParseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tokens": format.TokensData(tokens)})
}

type ruleJSON struct {
	Result    string `json:"result"`
	Left      string `json:"left"`
	Right     string `json:"right"`
	Agreement string `json:"agreement"`
}

func (s *Server) handleGrammar(w http.ResponseWriter, r *http.Request) {
	rules := s.parser.Grammar().Rules()
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := store.WriteText(w, rules); err != nil {
			log.Errorf("write grammar: %v", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rules": rulesData(rules)})
}

func rulesData(rules []grammar.Rule) []ruleJSON {
	out := make([]ruleJSON, len(rules))
	for i, r := range rules {
		out[i] = ruleJSON{Result: r.Result, Left: r.Left, Right: r.Right, Agreement: r.Agreement.String()}
	}
	return out
}
