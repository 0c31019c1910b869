package blockq_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/macropower/synckit/pkg/blockq"
)

// Basic FIFO handoff.
func Example() {
	q := blockq.New[int]()

	for i := 1; i <= 3; i++ {
		_ = q.Push(context.Background(), i)
	}

	q.Close()

	for {
		v, err := q.Pop(context.Background())
		if err != nil {
			break
		}

		fmt.Println(v)
	}
	// Output:
	// 1
	// 2
	// 3
}

// A bounded queue rejects non-blocking pushes at capacity.
func Example_bounded() {
	q := blockq.NewBounded[string](2)

	_ = q.TryPush("a")
	_ = q.TryPush("b")
	err := q.TryPush("c")

	fmt.Println(errors.Is(err, blockq.ErrFull))

	v, _ := q.TryPop()
	fmt.Println(v)
	// Output:
	// true
	// a
}

// Closing stops intake but accepted elements remain poppable.
func Example_drain() {
	q := blockq.New[string]()

	_ = q.Push(context.Background(), "x")
	_ = q.Push(context.Background(), "y")
	q.Close()

	for {
		v, ok := q.TryPop()
		if !ok {
			break
		}

		fmt.Println(v)
	}

	_, err := q.Pop(context.Background())
	fmt.Println(errors.Is(err, blockq.ErrClosed))
	// Output:
	// x
	// y
	// true
}

// A producer goroutine hands values to a consumer through a small bound.
func Example_handoff() {
	q := blockq.NewBounded[int](1)

	go func() {
		for i := range 3 {
			_ = q.Push(context.Background(), i)
		}

		q.Close()
	}()

	sum := 0

	for {
		v, err := q.Pop(context.Background())
		if err != nil {
			break
		}

		sum += v
	}

	fmt.Println(sum)
	// Output:
	// 3
}
