package queue_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/vnykmshr/taskpool/pkg/queue"
)

// Example demonstrates a producer and consumer sharing a bounded queue.
func Example() {
	q, err := queue.New[int](2)
	if err != nil {
		fmt.Println(err)
		return
	}
	ctx := context.Background()

	go func() {
		for i := 1; i <= 5; i++ {
			_ = q.Push(ctx, i)
		}
		q.Close()
	}()

	sum := 0
	for {
		v, err := q.Pop(ctx)
		if errors.Is(err, queue.ErrClosed) {
			break
		}
		sum += v
	}
	fmt.Println("sum:", sum)
	fmt.Println("dispose:", q.Dispose())

	// Output:
	// sum: 15
	// dispose: <nil>
}

// Example_notDrained shows the error reported when a queue is disposed early.
func Example_notDrained() {
	q, _ := queue.NewWithConfig[string](queue.Config{Name: "emails", Capacity: 4})
	q.TryPush("welcome")

	err := q.Dispose()
	fmt.Println(err)
	fmt.Println(errors.Is(err, queue.ErrNotDrained))

	// Output:
	// queue "emails" disposed with 1 pending items
	// true
}
