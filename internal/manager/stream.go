package manager

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"inferd/internal/llama"
)

// StreamingSession delivers one generation token by token. A dedicated worker
// goroutine owns the session's pool context until it finishes; the token
// channel is buffered for the whole budget so the worker never blocks on a
// slow consumer.
type StreamingSession struct {
	ID    string
	Model string

	lm     *loadedModel
	entry  *poolEntry
	tokens chan StreamToken
	stop   chan struct{}
	done   chan struct{}

	mu         sync.Mutex
	stopped    bool
	finishedAt time.Time
	final      StreamToken
}

func (s *StreamingSession) signalStop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		close(s.stop)
	}
	s.mu.Unlock()
}

func (s *StreamingSession) finished() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finishedAt, !s.finishedAt.IsZero()
}

// tokenProbability reads the sampled token's raw logit and squashes it to a
// probability estimate, clamped to 1. Approximate, not calibrated.
func tokenProbability(ctx llama.Context, tok llama.Token) float32 {
	logits := ctx.Logits()
	if logits == nil || int(tok) < 0 || int(tok) >= len(logits) {
		return 0
	}
	p := math.Exp(float64(logits[tok]))
	if p > 1 {
		p = 1
	}
	return float32(p)
}

// StartStream begins a token-streaming generation and returns the session id.
// The pool context is checked out here, synchronously, so capacity and
// not-found errors surface on start rather than mid-stream.
func (m *Manager) StartStream(ctx context.Context, name, prompt string, p GenerationParams) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrInvalidArgument("prompt is required")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	lm, entry, err := m.acquireContext(name)
	if err != nil {
		return "", err
	}
	m.metrics.recordRequest()

	maxTokens := p.maxTokens()
	s := &StreamingSession{
		ID:     "stream_" + uuid.NewString(),
		Model:  name,
		lm:     lm,
		entry:  entry,
		tokens: make(chan StreamToken, maxTokens+1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	m.streamMu.Lock()
	m.streams[s.ID] = s
	m.streamMu.Unlock()

	m.publisher.Publish(Event{Name: EventStreamStarted, Model: name, Fields: map[string]any{
		"session": s.ID,
	}})
	go m.runStream(s, prompt, maxTokens)
	return s.ID, nil
}

// runStream is the per-session worker. It mirrors runGeneration but parks
// each token in the session buffer with its probability, watches the stop
// channel between tokens, and always terminates the sequence with exactly one
// final token. The pool context goes back to its pool here, not in Stop.
func (m *Manager) runStream(s *StreamingSession, prompt string, maxTokens int) {
	start := time.Now()
	generated := 0
	mdl := s.lm.model
	final := StreamToken{ID: -1, Final: true}

	s.entry.smpl.Reset()
	tokens, err := tokenizePrompt(mdl, prompt, true)
	if err != nil {
		final.Err = err.Error()
	} else if err := s.entry.ctx.Decode(tokens); err != nil {
		final.Err = "decode prompt: " + err.Error()
	} else {
	loop:
		for i := 0; i < maxTokens; i++ {
			select {
			case <-s.stop:
				break loop
			default:
			}
			tok := s.entry.smpl.Sample(s.entry.ctx)
			if mdl.IsEOG(tok) {
				break
			}
			piece, perr := mdl.TokenToPiece(tok)
			if perr != nil {
				piece = "[UNK]"
			}
			s.tokens <- StreamToken{Text: piece, ID: tok, Probability: tokenProbability(s.entry.ctx, tok)}
			s.entry.smpl.Accept(tok)
			if err := s.entry.ctx.Decode([]llama.Token{tok}); err != nil {
				break
			}
			generated++
		}
	}

	s.mu.Lock()
	s.final = final
	s.finishedAt = time.Now()
	s.mu.Unlock()
	s.tokens <- final
	close(s.tokens)

	m.releaseContext(s.lm, s.entry)
	m.metrics.recordGeneration(generated, time.Since(start).Milliseconds())
	m.publisher.Publish(Event{Name: EventStreamFinished, Model: s.Model, Fields: map[string]any{
		"session": s.ID,
		"tokens":  generated,
	}})
	close(s.done)
}

// NextStreamToken blocks until the session's next token is ready or ctx is
// done. Once the final token has been delivered, further calls return it
// again so late or duplicate polls see the terminal state instead of hanging.
func (m *Manager) NextStreamToken(ctx context.Context, id string) (StreamToken, error) {
	m.streamMu.Lock()
	s := m.streams[id]
	m.streamMu.Unlock()
	if s == nil {
		return StreamToken{}, sessionNotFoundError{id: id}
	}
	select {
	case tok, ok := <-s.tokens:
		if ok {
			return tok, nil
		}
		s.mu.Lock()
		final := s.final
		s.mu.Unlock()
		return final, nil
	case <-ctx.Done():
		return StreamToken{}, ctx.Err()
	}
}

// StopStream cancels a session, waits for its worker to settle, and removes
// the session. The worker notices the stop between tokens, so this blocks for
// at most one token's generation time.
func (m *Manager) StopStream(id string) error {
	m.streamMu.Lock()
	s := m.streams[id]
	if s != nil {
		delete(m.streams, id)
	}
	m.streamMu.Unlock()
	if s == nil {
		return sessionNotFoundError{id: id}
	}
	s.signalStop()
	<-s.done
	m.publisher.Publish(Event{Name: EventStreamStopped, Model: s.Model, Fields: map[string]any{
		"session": s.ID,
	}})
	return nil
}

// StreamSessionCount returns the number of registered sessions, finished ones
// included until the retention sweep removes them.
func (m *Manager) StreamSessionCount() int {
	m.streamMu.Lock()
	defer m.streamMu.Unlock()
	return len(m.streams)
}

// stopAllStreams stops every session and waits for the workers. Used by
// Close.
func (m *Manager) stopAllStreams() {
	m.streamMu.Lock()
	sessions := make([]*StreamingSession, 0, len(m.streams))
	for _, s := range m.streams {
		sessions = append(sessions, s)
	}
	m.streams = make(map[string]*StreamingSession)
	m.streamMu.Unlock()
	for _, s := range sessions {
		s.signalStop()
		<-s.done
	}
}

// cleanupFinishedStreams removes sessions whose workers finished more than
// the retention window ago, so late pollers get a grace period but abandoned
// sessions do not pile up. Running sessions are never touched.
func (m *Manager) cleanupFinishedStreams(now time.Time) int {
	m.streamMu.Lock()
	defer m.streamMu.Unlock()
	removed := 0
	for id, s := range m.streams {
		if finishedAt, done := s.finished(); done && now.Sub(finishedAt) > m.streamRetention {
			delete(m.streams, id)
			removed++
		}
	}
	return removed
}
