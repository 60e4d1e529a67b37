//go:build llama

package llama

// cgo link directives for the in-process llama runtime.
// - We set an rpath of $ORIGIN so the runtime loader finds libllama.so and
//   libggml*.so in the same directory as the built Go binary (./bin).
// - We add -L${SRCDIR}/../../bin so the linker finds libllama.so at link time
//   when building the 'llama' variant, and -I for llama.h shipped next to it.
// - No environment variables are required.

/*
#cgo CFLAGS: -I${SRCDIR}/../../bin/include
#cgo LDFLAGS: -Wl,-rpath,'$ORIGIN' -L${SRCDIR}/../../bin -lllama

#include <stdlib.h>
#include "llama.h"
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"
)

type cgoBackend struct {
	mu          sync.Mutex
	initialized bool
}

// NewBackend returns the in-process llama.cpp runtime.
func NewBackend() Backend { return &cgoBackend{} }

func (b *cgoBackend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initialized {
		return nil
	}
	C.llama_backend_init()
	b.initialized = true
	return nil
}

func (b *cgoBackend) Free() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return
	}
	C.llama_backend_free()
	b.initialized = false
}

func (b *cgoBackend) LoadModel(path string, p ModelParams) (Model, error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	mp := C.llama_model_default_params()
	mp.n_gpu_layers = C.int32_t(p.GPULayers)
	mp.use_mmap = C.bool(p.UseMmap)
	mp.use_mlock = C.bool(p.UseMlock)

	m := C.llama_model_load_from_file(cpath, mp)
	if m == nil {
		return nil, fmt.Errorf("load model from %s failed", path)
	}
	return &cgoModel{m: m, vocab: C.llama_model_get_vocab(m)}, nil
}

func (b *cgoBackend) Devices() []DeviceInfo {
	n := int(C.ggml_backend_dev_count())
	out := make([]DeviceInfo, 0, n)
	for i := 0; i < n; i++ {
		dev := C.ggml_backend_dev_get(C.size_t(i))
		var free, total C.size_t
		C.ggml_backend_dev_memory(dev, &free, &total)
		out = append(out, DeviceInfo{
			Name:          C.GoString(C.ggml_backend_dev_name(dev)),
			Description:   C.GoString(C.ggml_backend_dev_description(dev)),
			TotalMemoryMB: uint64(total) / (1024 * 1024),
			FreeMemoryMB:  uint64(free) / (1024 * 1024),
			GPU:           C.ggml_backend_dev_type(dev) == C.GGML_BACKEND_DEVICE_TYPE_GPU,
		})
	}
	return out
}

type cgoModel struct {
	m     *C.struct_llama_model
	vocab *C.struct_llama_vocab
}

func (m *cgoModel) NewContext(p ContextParams) (Context, error) {
	cp := C.llama_context_default_params()
	cp.n_ctx = C.uint32_t(p.NCtx)
	cp.n_batch = C.uint32_t(p.NBatch)
	cp.n_threads = C.int32_t(p.NThreads)
	cp.n_threads_batch = C.int32_t(p.NThreads)
	cp.embeddings = C.bool(p.Embeddings)

	ctx := C.llama_init_from_model(m.m, cp)
	if ctx == nil {
		return nil, fmt.Errorf("context init failed (n_ctx=%d)", p.NCtx)
	}
	return &cgoContext{
		c:      ctx,
		nVocab: int(C.llama_vocab_n_tokens(m.vocab)),
		nEmbd:  int(C.llama_model_n_embd(m.m)),
	}, nil
}

func (m *cgoModel) NewSampler(p SamplerParams) (Sampler, error) {
	chain := C.llama_sampler_chain_init(C.llama_sampler_chain_default_params())
	if chain == nil {
		return nil, fmt.Errorf("sampler chain init failed")
	}
	C.llama_sampler_chain_add(chain, C.llama_sampler_init_top_k(C.int32_t(p.TopK)))
	C.llama_sampler_chain_add(chain, C.llama_sampler_init_top_p(C.float(p.TopP), C.size_t(p.MinKeep)))
	C.llama_sampler_chain_add(chain, C.llama_sampler_init_temp(C.float(p.Temp)))
	C.llama_sampler_chain_add(chain, C.llama_sampler_init_dist(C.uint32_t(p.Seed)))
	return &cgoSampler{s: chain}, nil
}

func (m *cgoModel) Tokenize(text string, buf []Token, addSpecial, parseSpecial bool) int {
	ctext := C.CString(text)
	defer C.free(unsafe.Pointer(ctext))
	var p *C.llama_token
	if len(buf) > 0 {
		p = (*C.llama_token)(unsafe.Pointer(&buf[0]))
	}
	n := C.llama_tokenize(m.vocab, ctext, C.int32_t(len(text)),
		p, C.int32_t(len(buf)), C.bool(addSpecial), C.bool(parseSpecial))
	return int(n)
}

func (m *cgoModel) TokenToPiece(t Token) (string, error) {
	buf := make([]byte, 128)
	n := C.llama_token_to_piece(m.vocab, C.llama_token(t),
		(*C.char)(unsafe.Pointer(&buf[0])), C.int32_t(len(buf)), 0, true)
	if n < 0 {
		buf = make([]byte, -n)
		n = C.llama_token_to_piece(m.vocab, C.llama_token(t),
			(*C.char)(unsafe.Pointer(&buf[0])), C.int32_t(len(buf)), 0, true)
	}
	if n < 0 {
		return "", fmt.Errorf("token %d has no piece", t)
	}
	return string(buf[:n]), nil
}

func (m *cgoModel) IsEOG(t Token) bool {
	return bool(C.llama_vocab_is_eog(m.vocab, C.llama_token(t)))
}

func (m *cgoModel) NEmbd() int { return int(C.llama_model_n_embd(m.m)) }

func (m *cgoModel) NParams() uint64 { return uint64(C.llama_model_n_params(m.m)) }

func (m *cgoModel) Free() {
	if m.m != nil {
		C.llama_model_free(m.m)
		m.m = nil
	}
}

type cgoContext struct {
	c      *C.struct_llama_context
	nVocab int
	nEmbd  int
}

func (c *cgoContext) Decode(tokens []Token) error {
	if len(tokens) == 0 {
		return fmt.Errorf("decode of empty token batch")
	}
	batch := C.llama_batch_get_one((*C.llama_token)(unsafe.Pointer(&tokens[0])), C.int32_t(len(tokens)))
	rc := C.llama_decode(c.c, batch)
	switch {
	case rc == 0:
		return nil
	case rc > 0:
		return fmt.Errorf("decode: no kv cache slot for batch of %d", len(tokens))
	default:
		return fmt.Errorf("decode failed (rc=%d)", int(rc))
	}
}

func (c *cgoContext) Logits() []float32 {
	p := C.llama_get_logits(c.c)
	if p == nil {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(p)), c.nVocab)
}

func (c *cgoContext) Embeddings() []float32 {
	p := C.llama_get_embeddings(c.c)
	if p == nil {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(p)), c.nEmbd)
}

func (c *cgoContext) Free() {
	if c.c != nil {
		C.llama_free(c.c)
		c.c = nil
	}
}

type cgoSampler struct {
	s *C.struct_llama_sampler
}

func (s *cgoSampler) Sample(ctx Context) Token {
	cc := ctx.(*cgoContext)
	return Token(C.llama_sampler_sample(s.s, cc.c, -1))
}

func (s *cgoSampler) Accept(t Token) { C.llama_sampler_accept(s.s, C.llama_token(t)) }

func (s *cgoSampler) Reset() { C.llama_sampler_reset(s.s) }

func (s *cgoSampler) Free() {
	if s.s != nil {
		C.llama_sampler_free(s.s)
		s.s = nil
	}
}
