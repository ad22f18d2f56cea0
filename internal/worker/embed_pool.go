package worker

import "context"

// EmbedFunc produces an embedding vector for one text.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// EmbedPool bounds how many embedding calls run at once. Model inference
// is synchronous and can be slow; without the bound one busy chat could
// occupy every connection and stall unrelated sessions.
type EmbedPool struct {
	slots chan struct{}
	embed EmbedFunc
}

func NewEmbedPool(workers int, embed EmbedFunc) *EmbedPool {
	if workers <= 0 {
		workers = 4
	}
	return &EmbedPool{
		slots: make(chan struct{}, workers),
		embed: embed,
	}
}

// Embed waits for a free slot, then runs the underlying embedding call.
// Waiting is interruptible; the call itself runs to completion once
// started.
func (p *EmbedPool) Embed(ctx context.Context, text string) ([]float32, error) {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-p.slots }()
	return p.embed(ctx, text)
}
