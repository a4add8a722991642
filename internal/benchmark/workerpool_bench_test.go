package benchmark

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/vnykmshr/taskpool/pkg/future"
	"github.com/vnykmshr/taskpool/pkg/workerpool"
)

// BenchmarkWorkerPoolSubmit measures task submission performance.
func BenchmarkWorkerPoolSubmit(b *testing.B) {
	workerCounts := []int{2, 4, 8}

	for _, workers := range workerCounts {
		b.Run(workerLabel(workers), func(b *testing.B) {
			pool, err := workerpool.New(workers, 1000)
			if err != nil {
				b.Fatalf("failed to create pool: %v", err)
			}
			defer func() { <-pool.Shutdown() }()

			fn := func(_ context.Context) (int, error) {
				return 0, nil
			}

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = workerpool.Submit(pool, fn)
			}
		})
	}
}

// BenchmarkWorkerPoolRoundTrip measures submit plus waiting for the result.
func BenchmarkWorkerPoolRoundTrip(b *testing.B) {
	pool, err := workerpool.New(4, 1000)
	if err != nil {
		b.Fatalf("failed to create pool: %v", err)
	}
	defer func() { <-pool.Shutdown() }()

	fn := func(_ context.Context) (int, error) {
		return 1, nil
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f, err := workerpool.Submit(pool, fn)
		if err != nil {
			b.Fatal(err)
		}
		_, _ = f.Get()
	}
}

// BenchmarkWorkerPoolThroughput submits a batch and waits for all of it.
func BenchmarkWorkerPoolThroughput(b *testing.B) {
	const batch = 1000

	pool, err := workerpool.New(4, 256)
	if err != nil {
		b.Fatalf("failed to create pool: %v", err)
	}
	defer func() { <-pool.Shutdown() }()

	fn := func(_ context.Context) (int, error) {
		return 1, nil
	}
	futures := make([]*future.Future[int], batch)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := range futures {
			futures[j], _ = workerpool.Submit(pool, fn)
		}
		for _, f := range futures {
			_, _ = f.Get()
		}
	}
}

// BenchmarkWorkerPoolContention measures submission from many goroutines.
func BenchmarkWorkerPoolContention(b *testing.B) {
	pool, err := workerpool.New(8, 1000)
	if err != nil {
		b.Fatalf("failed to create pool: %v", err)
	}
	defer func() { <-pool.Shutdown() }()

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = workerpool.Go(pool, func(_ context.Context) error {
				return nil
			})
		}
	})
}

// BenchmarkWorkerPoolScaling measures the effect of worker count and queue
// capacity on tasks that do a little work.
func BenchmarkWorkerPoolScaling(b *testing.B) {
	configs := []struct {
		workers int
		queue   int
	}{
		{1, 10},
		{2, 50},
		{4, 100},
		{8, 200},
	}

	for _, config := range configs {
		b.Run(scaleLabel(config.workers, config.queue), func(b *testing.B) {
			pool, err := workerpool.New(config.workers, config.queue)
			if err != nil {
				b.Fatalf("failed to create pool: %v", err)
			}
			defer func() { <-pool.Shutdown() }()

			fn := func(_ context.Context) (int, error) {
				sum := 0
				for i := 0; i < 1000; i++ {
					sum += i
				}
				return sum, nil
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = workerpool.Submit(pool, fn)
			}
		})
	}
}

// BenchmarkWorkerPoolShutdown measures pool creation plus graceful shutdown.
func BenchmarkWorkerPoolShutdown(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		pool, err := workerpool.New(4, 100)
		if err != nil {
			b.Fatalf("failed to create pool: %v", err)
		}
		for j := 0; j < 10; j++ {
			_, _ = workerpool.Go(pool, func(_ context.Context) error {
				time.Sleep(time.Microsecond)
				return nil
			})
		}
		<-pool.Shutdown()
	}
}

// workerLabel returns a readable label for worker counts.
func workerLabel(workers int) string {
	return fmt.Sprintf("workers%d", workers)
}

func scaleLabel(workers, queue int) string {
	return fmt.Sprintf("%s_q%d", workerLabel(workers), queue)
}
