package benchmark

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/vnykmshr/taskpool/pkg/queue"
)

// BenchmarkQueuePushPop measures an uncontended push followed by a pop.
func BenchmarkQueuePushPop(b *testing.B) {
	capacities := []int{1, 64, queue.Unbounded}

	for _, capacity := range capacities {
		b.Run(capacityLabel(capacity), func(b *testing.B) {
			q, err := queue.New[int](capacity)
			if err != nil {
				b.Fatalf("failed to create queue: %v", err)
			}
			ctx := context.Background()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = q.Push(ctx, i)
				_, _ = q.Pop(ctx)
			}
		})
	}
}

// BenchmarkQueueTryOperations measures the non-blocking paths.
func BenchmarkQueueTryOperations(b *testing.B) {
	q, err := queue.New[int](1024)
	if err != nil {
		b.Fatalf("failed to create queue: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.TryPush(i)
		q.TryPop()
	}
}

// BenchmarkQueueLockPolicies compares the lock policies with one goroutine.
func BenchmarkQueueLockPolicies(b *testing.B) {
	policies := []struct {
		name   string
		locker func() sync.Locker
	}{
		{"exclusive", queue.ExclusiveLock},
		{"shared", queue.SharedLock},
		{"none", queue.NoLock},
	}

	for _, p := range policies {
		b.Run(p.name, func(b *testing.B) {
			config := queue.DefaultConfig()
			config.Locker = p.locker()
			q, err := queue.NewWithConfig[int](config)
			if err != nil {
				b.Fatalf("failed to create queue: %v", err)
			}

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				q.TryPush(i)
				q.TryPop()
			}
		})
	}
}

// BenchmarkQueueContention measures throughput with several producers and
// consumers sharing one bounded queue.
func BenchmarkQueueContention(b *testing.B) {
	levels := []int{1, 4, 16}

	for _, level := range levels {
		b.Run(contentionLabel(level), func(b *testing.B) {
			q, err := queue.New[int](64)
			if err != nil {
				b.Fatalf("failed to create queue: %v", err)
			}
			ctx := context.Background()

			var consumers sync.WaitGroup
			for c := 0; c < level; c++ {
				consumers.Add(1)
				go func() {
					defer consumers.Done()
					for {
						if _, err := q.Pop(ctx); err != nil {
							return
						}
					}
				}()
			}

			b.ReportAllocs()
			b.ResetTimer()

			var producers sync.WaitGroup
			perProducer := b.N/level + 1
			for p := 0; p < level; p++ {
				producers.Add(1)
				go func() {
					defer producers.Done()
					for i := 0; i < perProducer; i++ {
						_ = q.Push(ctx, i)
					}
				}()
			}
			producers.Wait()

			q.Close()
			consumers.Wait()
		})
	}
}

func capacityLabel(capacity int) string {
	if capacity == queue.Unbounded {
		return "unbounded"
	}
	return fmt.Sprintf("cap%d", capacity)
}

func contentionLabel(level int) string {
	return fmt.Sprintf("goroutines%d", level)
}
