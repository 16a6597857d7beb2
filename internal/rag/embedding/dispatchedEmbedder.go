package embedding

import (
	"context"

	"github.com/akolanti/docvector/internal/domain/ragErrors"
)

// Runner executes tasks off the caller's goroutine.
type Runner interface {
	Submit(ctx context.Context, task func(ctx context.Context)) error
}

type dispatchedEmbedder struct {
	inner  Embedder
	runner Runner
}

// NewDispatchedEmbedder runs every Embed call as a task on runner, so model
// work is bounded by the pool size rather than by the number of open requests.
func NewDispatchedEmbedder(inner Embedder, runner Runner) Embedder {
	return &dispatchedEmbedder{inner: inner, runner: runner}
}

func (d *dispatchedEmbedder) Dimension() int    { return d.inner.Dimension() }
func (d *dispatchedEmbedder) ModelName() string { return d.inner.ModelName() }

type embedResult struct {
	vectors [][]float32
	err     error
}

func (d *dispatchedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resultChan := make(chan embedResult, 1)

	err := d.runner.Submit(ctx, func(taskCtx context.Context) {
		vectors, err := d.inner.Embed(taskCtx, texts)
		resultChan <- embedResult{vectors: vectors, err: err}
	})
	if err != nil {
		return nil, ragErrors.EnsureKind(ragErrors.KindEmbedderUnavailable, "embed", err)
	}

	select {
	case r := <-resultChan:
		return r.vectors, r.err
	case <-ctx.Done():
		return nil, ragErrors.Wrap(ragErrors.KindEmbedderUnavailable, "embed", ctx.Err())
	}
}
