package manager

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// batchRequest is one queued asynchronous generation.
type batchRequest struct {
	id     string
	model  string
	prompt string
	params GenerationParams
}

// SubmitBatch queues a generation and returns its request id immediately.
// The id is time-based with a sequence suffix so concurrent submissions in
// the same nanosecond stay unique. Results are fetched with GetBatchResult.
func (m *Manager) SubmitBatch(model, prompt string, p GenerationParams) (string, error) {
	if model == "" {
		return "", ErrInvalidArgument("model is required")
	}
	if strings.TrimSpace(prompt) == "" {
		return "", ErrInvalidArgument("prompt is required")
	}
	req := batchRequest{
		id:     fmt.Sprintf("batch_%d_%d", time.Now().UnixNano(), m.batchSeq.Add(1)),
		model:  model,
		prompt: prompt,
		params: p,
	}
	m.batchMu.Lock()
	if m.batchClosed {
		m.batchMu.Unlock()
		return "", fmt.Errorf("manager closed")
	}
	m.batchQueue = append(m.batchQueue, req)
	m.batchMu.Unlock()
	m.batchCond.Signal()

	m.publisher.Publish(Event{Name: EventBatchSubmitted, Model: model, Fields: map[string]any{
		"request_id": req.id,
	}})
	return req.id, nil
}

func (m *Manager) startBatchWorkers() {
	for i := 0; i < m.batchWorkers; i++ {
		m.batchWG.Add(1)
		go m.batchWorker()
	}
}

// batchWorker drains the queue one request at a time, running the same
// generation path as the synchronous API and recording the outcome, success
// or not, as a retrievable result. Workers keep draining after close until
// the queue is empty so accepted requests always produce a result.
func (m *Manager) batchWorker() {
	defer m.batchWG.Done()
	for {
		m.batchMu.Lock()
		for len(m.batchQueue) == 0 && !m.batchClosed {
			m.batchCond.Wait()
		}
		if len(m.batchQueue) == 0 {
			m.batchMu.Unlock()
			return
		}
		req := m.batchQueue[0]
		m.batchQueue = m.batchQueue[1:]
		m.batchMu.Unlock()

		res := BatchResult{RequestID: req.id}
		out, err := m.Generate(context.Background(), req.model, req.prompt, req.params)
		if err != nil {
			res.ErrorMessage = err.Error()
		} else {
			res.Success = true
			res.Response = out
		}
		res.CompletedAt = time.Now()

		m.batchMu.Lock()
		m.batchResults[req.id] = res
		m.batchMu.Unlock()
		m.publisher.Publish(Event{Name: EventBatchCompleted, Model: req.model, Fields: map[string]any{
			"request_id": req.id,
			"success":    res.Success,
		}})
	}
}

// GetBatchResult looks up a completed result by id. An id that has not
// completed, or never existed, yields a failure result with "Request not
// found"; callers poll until Success or a different message appears.
func (m *Manager) GetBatchResult(id string) BatchResult {
	m.batchMu.Lock()
	defer m.batchMu.Unlock()
	if res, ok := m.batchResults[id]; ok {
		return res
	}
	return BatchResult{RequestID: id, ErrorMessage: "Request not found"}
}

// GetAllBatchResults returns a snapshot of every completed result, oldest
// submission first.
func (m *Manager) GetAllBatchResults() []BatchResult {
	m.batchMu.Lock()
	out := make([]BatchResult, 0, len(m.batchResults))
	for _, res := range m.batchResults {
		out = append(out, res)
	}
	m.batchMu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].RequestID < out[j].RequestID })
	return out
}

// BatchResultCount returns the number of completed results held.
func (m *Manager) BatchResultCount() int {
	m.batchMu.Lock()
	defer m.batchMu.Unlock()
	return len(m.batchResults)
}

// stopBatchWorkers marks the queue closed and waits for the workers to drain
// what was already accepted.
func (m *Manager) stopBatchWorkers() {
	m.batchMu.Lock()
	m.batchClosed = true
	m.batchMu.Unlock()
	m.batchCond.Broadcast()
	m.batchWG.Wait()
}
