package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestEmbedPoolBoundsConcurrency(t *testing.T) {
	const workers = 3
	var inFlight, peak int32

	pool := NewEmbedPool(workers, func(ctx context.Context, text string) ([]float32, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return []float32{1}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := pool.Embed(context.Background(), "text"); err != nil {
				t.Errorf("embed failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&peak); got > workers {
		t.Fatalf("observed %d concurrent calls, limit is %d", got, workers)
	}
}

func TestEmbedPoolWaitIsInterruptible(t *testing.T) {
	release := make(chan struct{})
	pool := NewEmbedPool(1, func(ctx context.Context, text string) ([]float32, error) {
		<-release
		return []float32{1}, nil
	})
	defer close(release)

	started := make(chan struct{})
	go func() {
		close(started)
		pool.Embed(context.Background(), "occupier")
	}()
	<-started
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := pool.Embed(ctx, "waiter"); err != context.Canceled {
		t.Fatalf("expected context.Canceled while waiting, got %v", err)
	}
}

func TestEmbedPoolDefaultsWorkerCount(t *testing.T) {
	pool := NewEmbedPool(0, func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1}, nil
	})
	if cap(pool.slots) != 4 {
		t.Fatalf("expected default of 4 slots, got %d", cap(pool.slots))
	}
}

func TestEmbedPoolPassesThroughResult(t *testing.T) {
	pool := NewEmbedPool(2, func(ctx context.Context, text string) ([]float32, error) {
		if text != "hello" {
			t.Errorf("unexpected text %q", text)
		}
		return []float32{0.1, 0.2}, nil
	})
	vec, err := pool.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(vec) != 2 || vec[0] != 0.1 || vec[1] != 0.2 {
		t.Fatalf("unexpected vector %v", vec)
	}
}
