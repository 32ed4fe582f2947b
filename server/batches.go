package server

import (
	"net/http"
	"time"

	"github.com/syntpump/syntext/batch"
	"github.com/syntpump/syntext/format"
)

type batchSummary struct {
	ID        string       `json:"id"`
	Status    batch.Status `json:"status"`
	Total     int          `json:"total"`
	Progress  int          `json:"progress"`
	Percent   int          `json:"percent"`
	Failed    int          `json:"failed"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	StartedAt *time.Time   `json:"startedAt,omitempty"`
	EndedAt   *time.Time   `json:"endedAt,omitempty"`
}

type batchItem struct {
	Index    int    `json:"index"`
	Sentence string `json:"sentence"`
	Result   any    `json:"result,omitempty"`
	Error    string `json:"error,omitempty"`
}

type batchDetail struct {
	batchSummary
	Items []batchItem `json:"items"`
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func summarize(res *batch.Result) batchSummary {
	return batchSummary{
		ID:        res.ID,
		Status:    res.Status,
		Total:     res.Total,
		Progress:  res.Progress,
		Percent:   res.ProgressPercent(),
		Failed:    res.Failed,
		Error:     res.Error,
		CreatedAt: res.Request.CreatedAt,
		StartedAt: timePtr(res.StartedAt),
		EndedAt:   timePtr(res.EndedAt),
	}
}

func (s *Server) batchesEnabled(w http.ResponseWriter) bool {
	if s.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "batch processing is disabled")
		return false
	}
	return true
}

func (s *Server) handleSubmitBatch(w http.ResponseWriter, r *http.Request) {
	if !s.batchesEnabled(w) {
		return
	}
	var req batchRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := s.runner.Submit(req.Sentences)
	switch err {
	case nil:
	case batch.ErrEmptyBatch:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	default:
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	w.Header().Set("Location", "/api/batches/"+id)
	writeJSON(w, http.StatusAccepted, map[string]string{"id": id})
}

func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	if !s.batchesEnabled(w) {
		return
	}
	list := s.runner.List()
	out := make([]batchSummary, len(list))
	for i, res := range list {
		out[i] = summarize(res)
	}
	writeJSON(w, http.StatusOK, map[string]any{"batches": out})
}

func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	if !s.batchesEnabled(w) {
		return
	}
	id := r.PathValue("id")
	res, ok := s.runner.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "batch not found")
		return
	}

	out := batchDetail{batchSummary: summarize(res), Items: make([]batchItem, 0, len(res.Items))}
	for i, item := range res.Items {
		bi := batchItem{Index: i, Sentence: res.Request.Sentences[i]}
		switch {
		case item.Err != nil:
			bi.Error = item.Err.Error()
		case item.Result != nil:
			bi.Result = format.ResultData(item.Result)
		}
		out.Items = append(out.Items, bi)
	}
	writeJSON(w, http.StatusOK, out)
}
