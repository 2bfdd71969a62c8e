package gate_test

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrymomot/handoff/pkg/gate"
	"github.com/dmitrymomot/handoff/pkg/perform"
)

func ExampleGate_PollOrRequest() {
	store := perform.NewMemoryStore[string]()
	g := gate.New(store)

	fetchGreeting := func(ctx context.Context) (string, error) {
		// Stands in for a network call completed off the loop.
		return "hello from the executor", nil
	}

	ctx := context.Background()

	// A cooperative update loop: one PollOrRequest per tick, never blocking.
	for {
		value, ok, err := g.PollOrRequest(ctx, fetchGreeting)
		if ok {
			if err != nil {
				fmt.Println("failed:", err)
				return
			}
			fmt.Println(value)
			return
		}
		// Not ready yet: yield until the next tick.
		time.Sleep(5 * time.Millisecond)
	}

	// Output: hello from the executor
}
