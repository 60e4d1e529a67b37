package manager

import (
	"fmt"
	"sync"
	"time"

	"inferd/internal/llama"
)

// poolEntry pairs one inference context with its sampling chain. Entries stay
// owned by their pool for their whole life; inUse marks a checkout.
type poolEntry struct {
	ctx      llama.Context
	smpl     llama.Sampler
	lastUsed time.Time
	inUse    bool
}

func (e *poolEntry) free() {
	e.smpl.Free()
	e.ctx.Free()
}

// contextPool hands out contexts over one model's weights. entries owns every
// live context, checked out or idle; available is the idle FIFO and always a
// subset of entries. len(entries) never exceeds max, counting checkouts.
type contextPool struct {
	name    string
	model   llama.Model
	cparams llama.ContextParams
	sparams llama.SamplerParams
	max     int
	ttl     time.Duration

	mu        sync.Mutex
	entries   []*poolEntry
	available []*poolEntry
	closed    bool
}

func newContextPool(name string, model llama.Model, cparams llama.ContextParams, max int, ttl time.Duration) *contextPool {
	return &contextPool{
		name:    name,
		model:   model,
		cparams: cparams,
		sparams: llama.SamplerParams{
			TopK:    samplerTopK,
			TopP:    samplerTopP,
			MinKeep: samplerMinKeep,
			Temp:    samplerTemp,
			Seed:    samplerSeed,
		},
		max: max,
		ttl: ttl,
	}
}

// acquire returns an idle entry, or creates one if the pool is under its cap.
// The second result reports whether a new context was created.
func (p *contextPool) acquire() (*poolEntry, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, false, ErrModelNotFound(p.name)
	}
	if len(p.available) > 0 {
		e := p.available[0]
		p.available = p.available[1:]
		e.inUse = true
		return e, false, nil
	}
	if len(p.entries) >= p.max {
		return nil, false, ErrNoCapacity(p.name)
	}
	ctx, err := p.model.NewContext(p.cparams)
	if err != nil {
		return nil, false, fmt.Errorf("new context for %s: %w", p.name, err)
	}
	smpl, err := p.model.NewSampler(p.sparams)
	if err != nil {
		ctx.Free()
		return nil, false, fmt.Errorf("new sampler for %s: %w", p.name, err)
	}
	e := &poolEntry{ctx: ctx, smpl: smpl, lastUsed: time.Now(), inUse: true}
	p.entries = append(p.entries, e)
	return e, true, nil
}

// release returns a checked-out entry to the idle queue.
func (p *contextPool) release(e *poolEntry) {
	p.mu.Lock()
	e.inUse = false
	e.lastUsed = time.Now()
	p.available = append(p.available, e)
	p.mu.Unlock()
}

// cleanupExpired frees idle entries older than the ttl and returns how many
// were freed. Checked-out entries are never touched.
func (p *contextPool) cleanupExpired(now time.Time) int {
	p.mu.Lock()
	var doomed []*poolEntry
	keep := p.available[:0]
	for _, e := range p.available {
		if now.Sub(e.lastUsed) > p.ttl {
			doomed = append(doomed, e)
		} else {
			keep = append(keep, e)
		}
	}
	p.available = keep
	if len(doomed) > 0 {
		kept := p.entries[:0]
		for _, e := range p.entries {
			expired := false
			for _, d := range doomed {
				if e == d {
					expired = true
					break
				}
			}
			if !expired {
				kept = append(kept, e)
			}
		}
		p.entries = kept
	}
	p.mu.Unlock()
	for _, e := range doomed {
		e.free()
	}
	return len(doomed)
}

// closeAll frees every entry and marks the pool closed. Callers must have
// drained all checkouts first.
func (p *contextPool) closeAll() int {
	p.mu.Lock()
	doomed := p.entries
	p.entries = nil
	p.available = nil
	p.closed = true
	p.mu.Unlock()
	for _, e := range doomed {
		e.free()
	}
	return len(doomed)
}

func (p *contextPool) stats() (size, available, inUse int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries), len(p.available), len(p.entries) - len(p.available)
}

func (p *contextPool) inUseCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries) - len(p.available)
}
