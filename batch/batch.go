// Package batch parses lists of sentences in the background.
package batch

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/syntpump/syntext/cyk"
)

var log = commonlog.GetLogger("syntext.batch")

var (
	ErrClosed     = errors.New("batch runner closed")
	ErrEmptyBatch = errors.New("batch has no sentences")
	ErrNotFound   = errors.New("batch not found")
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Parser is the part of cyk.Parser the runner needs.
type Parser interface {
	Parse(sentence string) (*cyk.Result, error)
}

type Request struct {
	ID        string
	Sentences []string
	CreatedAt time.Time
}

// Item is the outcome for one sentence. Exactly one of Result and Err is set.
type Item struct {
	Index    int
	Sentence string
	Result   *cyk.Result
	Err      error
}

// Result is a snapshot of a batch.
type Result struct {
	ID        string
	Status    Status
	Request   Request
	Items     []Item
	Error     string
	Failed    int
	StartedAt time.Time
	EndedAt   time.Time
	Progress  int
	Total     int

	done chan struct{}
}

func (r *Result) ProgressPercent() int {
	if r.Total == 0 {
		return 0
	}
	return (r.Progress * 100) / r.Total
}

func (r *Result) snapshot() *Result {
	c := *r
	c.Items = append([]Item(nil), r.Items...)
	c.Request.Sentences = append([]string(nil), r.Request.Sentences...)
	return &c
}

// Runner queues batches and parses the sentences of each batch on up to
// workers goroutines. Batches run one after another in submission order.
type Runner struct {
	parser  Parser
	workers int

	mu       sync.RWMutex
	batches  map[string]*Result
	requests chan Request
	done     chan struct{}
	closed   bool
	wg       sync.WaitGroup
}

// New starts a runner. workers below one means one.
func New(parser Parser, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	r := &Runner{
		parser:   parser,
		workers:  workers,
		batches:  make(map[string]*Result),
		requests: make(chan Request, 100),
		done:     make(chan struct{}),
	}
	r.wg.Add(1)
	go r.run()
	return r
}

func (r *Runner) run() {
	defer r.wg.Done()
	for {
		select {
		case req := <-r.requests:
			r.process(req)
		case <-r.done:
			return
		}
	}
}

func (r *Runner) process(req Request) {
	r.mu.Lock()
	result := r.batches[req.ID]
	result.Status = StatusInProgress
	result.StartedAt = time.Now()
	r.mu.Unlock()

	log.Infof("batch %s: parsing %d sentences", req.ID, len(req.Sentences))

	sem := make(chan struct{}, r.workers)
	var wg sync.WaitGroup
	for i, sentence := range req.Sentences {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, sentence string) {
			defer wg.Done()
			defer func() { <-sem }()

			item := Item{Index: i, Sentence: sentence}
			item.Result, item.Err = r.parser.Parse(sentence)
			if item.Err != nil {
				item.Result = nil
				log.Debugf("batch %s: sentence %d: %v", req.ID, i, item.Err)
			}

			r.mu.Lock()
			result.Items[i] = item
			result.Progress++
			if item.Err != nil {
				result.Failed++
			}
			r.mu.Unlock()
		}(i, sentence)
	}
	wg.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	result.EndedAt = time.Now()
	if result.Failed == result.Total {
		result.Status = StatusFailed
		result.Error = result.Items[0].Err.Error()
		log.Errorf("batch %s: every sentence failed: %s", req.ID, result.Error)
	} else {
		result.Status = StatusCompleted
		log.Infof("batch %s: completed, %d of %d failed", req.ID, result.Failed, result.Total)
	}
	close(result.done)
}

// Submit queues sentences for parsing and returns the batch id.
func (r *Runner) Submit(sentences []string) (string, error) {
	if len(sentences) == 0 {
		return "", ErrEmptyBatch
	}

	req := Request{
		ID:        uuid.NewString(),
		Sentences: append([]string(nil), sentences...),
		CreatedAt: time.Now(),
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return "", ErrClosed
	}
	r.batches[req.ID] = &Result{
		ID:      req.ID,
		Status:  StatusPending,
		Request: req,
		Items:   make([]Item, len(req.Sentences)),
		Total:   len(req.Sentences),
		done:    make(chan struct{}),
	}
	r.mu.Unlock()

	select {
	case r.requests <- req:
		return req.ID, nil
	case <-r.done:
		r.mu.Lock()
		delete(r.batches, req.ID)
		r.mu.Unlock()
		return "", ErrClosed
	}
}

// Get returns a snapshot of the batch.
func (r *Runner) Get(id string) (*Result, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result, ok := r.batches[id]
	if !ok {
		return nil, false
	}
	return result.snapshot(), true
}

// List returns snapshots of every batch, oldest first.
func (r *Runner) List() []*Result {
	r.mu.RLock()
	defer r.mu.RUnlock()
	results := make([]*Result, 0, len(r.batches))
	for _, b := range r.batches {
		results = append(results, b.snapshot())
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Request.CreatedAt.Before(results[j].Request.CreatedAt)
	})
	return results
}

// Wait blocks until the batch finishes or ctx is done.
func (r *Runner) Wait(ctx context.Context, id string) (*Result, error) {
	r.mu.RLock()
	result, ok := r.batches[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	select {
	case <-result.done:
		res, _ := r.Get(id)
		return res, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops accepting batches and waits for the one in progress.
// Queued batches that have not started stay pending.
func (r *Runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.done)
	r.mu.Unlock()
	r.wg.Wait()
}
