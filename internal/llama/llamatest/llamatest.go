// Package llamatest provides an in-memory llama.Backend for tests. Tokens are
// interned words, generation is scripted per model, and native handles are
// counted so tests can assert nothing leaks.
package llamatest

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"inferd/internal/llama"
)

// eogToken is reserved at vocabulary slot 0 of every fake model.
const eogToken llama.Token = 0

// Backend implements llama.Backend without any native code.
type Backend struct {
	mu          sync.Mutex
	initialized bool
	models      []*Model

	// InitErr makes Init fail until cleared.
	InitErr error
	// LoadErr makes LoadModel fail until cleared.
	LoadErr error
	// DefaultPieces seeds the generation script of newly loaded models.
	DefaultPieces []string
	// ParamsForNewModels sets NParams of newly loaded models (default 1<<20).
	ParamsForNewModels uint64

	ContextsCreated atomic.Int64
	ContextsFreed   atomic.Int64
	SamplersCreated atomic.Int64
	SamplersFreed   atomic.Int64
	ModelsFreed     atomic.Int64
}

func New() *Backend { return &Backend{} }

func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.InitErr != nil {
		return b.InitErr
	}
	b.initialized = true
	return nil
}

func (b *Backend) Initialized() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.initialized
}

func (b *Backend) Free() {
	b.mu.Lock()
	b.initialized = false
	b.mu.Unlock()
}

func (b *Backend) LoadModel(path string, p llama.ModelParams) (llama.Model, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.LoadErr != nil {
		return nil, b.LoadErr
	}
	if !b.initialized {
		return nil, fmt.Errorf("fake backend not initialized")
	}
	params := b.ParamsForNewModels
	if params == 0 {
		params = 1 << 20
	}
	m := &Model{
		backend:     b,
		path:        path,
		modelParams: p,
		nParams:     params,
		nEmbd:       8,
		vocab:       []string{"</s>"},
		ids:         map[string]llama.Token{"</s>": eogToken},
	}
	pieces := b.DefaultPieces
	if len(pieces) == 0 {
		pieces = []string{"Hello", ",", " world", "!"}
	}
	m.SetPieces(pieces...)
	b.models = append(b.models, m)
	return m, nil
}

func (b *Backend) Devices() []llama.DeviceInfo {
	return []llama.DeviceInfo{{Name: "cpu", Description: "llamatest", GPU: false}}
}

// LiveContexts reports contexts created minus contexts freed.
func (b *Backend) LiveContexts() int64 {
	return b.ContextsCreated.Load() - b.ContextsFreed.Load()
}

// Models returns every model handed out by LoadModel, freed or not.
func (b *Backend) Models() []*Model {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Model, len(b.models))
	copy(out, b.models)
	return out
}

// ModelFor returns the most recent model loaded from path, or nil.
func (b *Backend) ModelFor(path string) *Model {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.models) - 1; i >= 0; i-- {
		if b.models[i].path == path {
			return b.models[i]
		}
	}
	return nil
}

// Model implements llama.Model. Every sampler created from it walks the
// model's scripted pieces in order and reaches EOG at the end.
type Model struct {
	backend     *Backend
	path        string
	modelParams llama.ModelParams
	nParams     uint64
	nEmbd       int

	mu     sync.Mutex
	vocab  []string
	ids    map[string]llama.Token
	script []llama.Token
	freed  bool

	// TokenizeNeedRetry makes the next Tokenize report a required size even
	// when the buffer fits, exercising the caller's grow-and-retry path.
	TokenizeNeedRetry bool
	// ContextErr makes NewContext fail until cleared.
	ContextErr error
	// DecodeErr makes Decode fail on every context of this model.
	DecodeErr error
	// DecodeDelay makes every Decode sleep, holding its context checked out
	// long enough for concurrency tests to observe pool exhaustion.
	DecodeDelay time.Duration
	// PieceErr marks tokens whose TokenToPiece call fails.
	PieceErr map[llama.Token]bool
}

// SetPieces replaces the generation script.
func (m *Model) SetPieces(pieces ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = m.script[:0]
	for _, p := range pieces {
		m.script = append(m.script, m.internLocked(p))
	}
}

func (m *Model) internLocked(piece string) llama.Token {
	if id, ok := m.ids[piece]; ok {
		return id
	}
	id := llama.Token(len(m.vocab))
	m.vocab = append(m.vocab, piece)
	m.ids[piece] = id
	return id
}

func (m *Model) scriptTokens() []llama.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llama.Token, len(m.script))
	copy(out, m.script)
	return out
}

func (m *Model) vocabSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.vocab)
}

// Freed reports whether Free has been called.
func (m *Model) Freed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.freed
}

func (m *Model) Path() string { return m.path }

func (m *Model) NewContext(p llama.ContextParams) (llama.Context, error) {
	m.mu.Lock()
	err := m.ContextErr
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	m.backend.ContextsCreated.Add(1)
	return &Context{model: m, embeddings: p.Embeddings}, nil
}

func (m *Model) NewSampler(p llama.SamplerParams) (llama.Sampler, error) {
	m.backend.SamplersCreated.Add(1)
	return &Sampler{model: m}, nil
}

func (m *Model) Tokenize(text string, buf []llama.Token, addSpecial, parseSpecial bool) int {
	words := strings.Fields(text)
	m.mu.Lock()
	toks := make([]llama.Token, 0, len(words))
	for _, w := range words {
		toks = append(toks, m.internLocked(w))
	}
	retry := m.TokenizeNeedRetry
	m.TokenizeNeedRetry = false
	m.mu.Unlock()

	if len(toks) == 0 {
		return 0
	}
	if retry && len(buf) != len(toks) {
		return -len(toks)
	}
	if len(buf) < len(toks) {
		return -len(toks)
	}
	copy(buf, toks)
	return len(toks)
}

func (m *Model) TokenToPiece(t llama.Token) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PieceErr[t] {
		return "", fmt.Errorf("token %d has no piece", t)
	}
	if t < 0 || int(t) >= len(m.vocab) {
		return "", fmt.Errorf("token %d out of vocabulary", t)
	}
	return m.vocab[t], nil
}

func (m *Model) IsEOG(t llama.Token) bool { return t == eogToken }

func (m *Model) NEmbd() int { return m.nEmbd }

func (m *Model) NParams() uint64 { return m.nParams }

func (m *Model) Free() {
	m.mu.Lock()
	already := m.freed
	m.freed = true
	m.mu.Unlock()
	if !already {
		m.backend.ModelsFreed.Add(1)
	}
}

// Context implements llama.Context over the fake model.
type Context struct {
	model      *Model
	embeddings bool

	mu      sync.Mutex
	history []llama.Token
	freed   bool
}

func (c *Context) Decode(tokens []llama.Token) error {
	c.model.mu.Lock()
	derr := c.model.DecodeErr
	delay := c.model.DecodeDelay
	c.model.mu.Unlock()
	if derr != nil {
		return derr
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	if len(tokens) == 0 {
		return fmt.Errorf("decode of empty token batch")
	}
	c.mu.Lock()
	c.history = append(c.history, tokens...)
	c.mu.Unlock()
	return nil
}

// Decoded returns every token decoded into this context, in order.
func (c *Context) Decoded() []llama.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]llama.Token, len(c.history))
	copy(out, c.history)
	return out
}

func (c *Context) Logits() []float32 {
	// Zero logits for the whole vocabulary: exp(0) = 1 for any token.
	return make([]float32, c.model.vocabSize())
}

func (c *Context) Embeddings() []float32 {
	if !c.embeddings {
		return nil
	}
	out := make([]float32, c.model.nEmbd)
	for i := range out {
		out[i] = float32(i+1) / float32(len(out))
	}
	return out
}

func (c *Context) Free() {
	c.mu.Lock()
	already := c.freed
	c.freed = true
	c.mu.Unlock()
	if !already {
		c.model.backend.ContextsFreed.Add(1)
	}
}

// Sampler implements llama.Sampler by walking the model script.
type Sampler struct {
	model *Model

	mu       sync.Mutex
	pos      int
	accepted []llama.Token
	resets   int
	freed    bool
}

func (s *Sampler) Sample(ctx llama.Context) llama.Token {
	script := s.model.scriptTokens()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos >= len(script) {
		return eogToken
	}
	return script[s.pos]
}

func (s *Sampler) Accept(t llama.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accepted = append(s.accepted, t)
	if t != eogToken {
		s.pos++
	}
}

func (s *Sampler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = 0
	s.resets++
}

// Resets reports how many times the chain has been reset.
func (s *Sampler) Resets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resets
}

func (s *Sampler) Free() {
	s.mu.Lock()
	already := s.freed
	s.freed = true
	s.mu.Unlock()
	if !already {
		s.model.backend.SamplersFreed.Add(1)
	}
}
