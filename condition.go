package activeexpr

import (
	"context"
	"sync"

	"activeexpr.dev/go/expr"
)

// CompletionResult is the terminal state delivered by ConditionAsync: a
// one-shot await of a boolean-valued expression becoming true, faulted, or
// cancelled (§4.6). Exactly one of Value/Fault is meaningful, and Cancelled
// is true only when ctx was done before either occurred.
type CompletionResult struct {
	Value     bool
	Fault     error
	Cancelled bool
}

// ConditionAsync compiles boolLambda and returns a channel that receives
// exactly one CompletionResult, then is closed (§4.6):
//   - if the expression is already true, the channel already holds a
//     completed result by the time ConditionAsync returns;
//   - if it is already faulted, the channel holds a completed-faulted
//     result the same way;
//   - otherwise ConditionAsync subscribes and completes on the first
//     transition to true, to a fault, or to ctx being done, unsubscribing
//     and releasing the underlying Handle exactly once in every case.
func ConditionAsync(ctx context.Context, boolLambda *expr.Lambda, args []any, opts *Options) <-chan CompletionResult {
	out := make(chan CompletionResult, 1)

	h, err := Create(boolLambda, args, opts)
	if err != nil {
		out <- CompletionResult{Fault: err}
		close(out)
		return out
	}

	var mu sync.Mutex
	var once sync.Once
	var unsubscribe func()
	done := make(chan struct{})
	complete := func(r CompletionResult) {
		once.Do(func() {
			mu.Lock()
			u := unsubscribe
			mu.Unlock()
			if u != nil {
				u()
			}
			h.Release()
			out <- r
			close(out)
			close(done)
		})
	}

	check := func() (done bool) {
		if fault := h.Fault(); fault != nil {
			complete(CompletionResult{Fault: fault})
			return true
		}
		if v, _ := h.Value().(bool); v {
			complete(CompletionResult{Value: true})
			return true
		}
		return false
	}

	if check() {
		return out
	}

	mu.Lock()
	unsubscribe = h.Subscribe(func() { check() })
	mu.Unlock()
	// A notification could have fired (and completed) between the
	// pre-subscribe check and the subscription taking effect; re-check once
	// more now that unsubscribe is safely published.
	check()

	if ctx != nil {
		go func() {
			select {
			case <-ctx.Done():
				complete(CompletionResult{Cancelled: true})
			case <-done:
			}
		}()
	}

	return out
}
