package manager

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inferd/internal/llama"
)

// tokenizePrompt runs the model tokenizer with a one-shot grow-and-retry when
// the first buffer guess is too small.
func tokenizePrompt(mdl llama.Model, prompt string, parseSpecial bool) ([]llama.Token, error) {
	buf := make([]llama.Token, len(prompt)+100)
	n := mdl.Tokenize(prompt, buf, true, parseSpecial)
	if n < 0 {
		buf = make([]llama.Token, -n)
		n = mdl.Tokenize(prompt, buf, true, parseSpecial)
	}
	if n < 0 {
		return nil, fmt.Errorf("tokenize failed (need %d)", -n)
	}
	if n == 0 {
		return nil, ErrInvalidArgument("prompt produced no tokens")
	}
	return buf[:n], nil
}

// runGeneration is the sampling loop shared by Generate, chat, and the batch
// workers: reset the chain, decode the prompt, then sample/accept/decode one
// token at a time until EOG, cancellation, or the token budget. A decode
// failure mid-stream ends generation with the text produced so far; tokens
// whose piece conversion fails are skipped. Returns the text and the number
// of tokens that completed the full sample/accept/decode cycle.
func runGeneration(ctx context.Context, mdl llama.Model, entry *poolEntry, prompt string, maxTokens int) (string, int, error) {
	entry.smpl.Reset()
	tokens, err := tokenizePrompt(mdl, prompt, true)
	if err != nil {
		return "", 0, err
	}
	if err := entry.ctx.Decode(tokens); err != nil {
		return "", 0, fmt.Errorf("decode prompt: %w", err)
	}

	var sb strings.Builder
	generated := 0
	for i := 0; i < maxTokens; i++ {
		if ctx.Err() != nil {
			break
		}
		tok := entry.smpl.Sample(entry.ctx)
		if mdl.IsEOG(tok) {
			break
		}
		if piece, err := mdl.TokenToPiece(tok); err == nil {
			sb.WriteString(piece)
		}
		entry.smpl.Accept(tok)
		if err := entry.ctx.Decode([]llama.Token{tok}); err != nil {
			break
		}
		generated++
	}
	return sb.String(), generated, nil
}

// Generate produces a completion for prompt on a loaded model, holding one
// pool context for the duration of the call.
func (m *Manager) Generate(ctx context.Context, name, prompt string, p GenerationParams) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrInvalidArgument("prompt is required")
	}
	lm, entry, err := m.acquireContext(name)
	if err != nil {
		return "", err
	}
	defer m.releaseContext(lm, entry)
	m.metrics.recordRequest()

	start := time.Now()
	out, generated, err := runGeneration(ctx, lm.model, entry, prompt, p.maxTokens())
	if err != nil {
		return "", err
	}
	m.metrics.recordGeneration(generated, time.Since(start).Milliseconds())
	return out, nil
}

// flattenChat folds messages into a single role-prefixed transcript ending
// with an open assistant turn.
func flattenChat(msgs []ChatMessage) string {
	var sb strings.Builder
	for _, msg := range msgs {
		switch strings.ToLower(msg.Role) {
		case "system":
			sb.WriteString("System: ")
		case "assistant":
			sb.WriteString("Assistant: ")
		default:
			sb.WriteString("User: ")
		}
		sb.WriteString(msg.Content)
		sb.WriteByte('\n')
	}
	sb.WriteString("Assistant: ")
	return sb.String()
}

// ChatCompletion renders msgs as a prompt and generates the next assistant
// turn.
func (m *Manager) ChatCompletion(ctx context.Context, name string, msgs []ChatMessage, p GenerationParams) (string, error) {
	if len(msgs) == 0 {
		return "", ErrInvalidArgument("at least one message is required")
	}
	return m.Generate(ctx, name, flattenChat(msgs), p)
}

// Embeddings computes the pooled embedding vector for text. The model must
// have been loaded with embeddings enabled. Performance counters track
// generation work only and are left alone here.
func (m *Manager) Embeddings(ctx context.Context, name, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrInvalidArgument("text is required")
	}
	lm, entry, err := m.acquireContext(name)
	if err != nil {
		return nil, err
	}
	defer m.releaseContext(lm, entry)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens, err := tokenizePrompt(lm.model, text, false)
	if err != nil {
		return nil, err
	}
	if err := entry.ctx.Decode(tokens); err != nil {
		return nil, fmt.Errorf("decode text: %w", err)
	}
	emb := entry.ctx.Embeddings()
	if emb == nil {
		return nil, ErrInvalidArgument("model was not loaded for embeddings: " + name)
	}
	out := make([]float32, len(emb))
	copy(out, emb)
	return out, nil
}
