package processing

import (
	"context"
	"fmt"

	"github.com/melih/mapserver/internal/core/domain"
)

// Queue is a bounded FIFO of build requests that rejects work once full.
type Queue struct {
	items chan domain.BuildRequest
}

// NewQueue creates a queue holding at most capacity requests.
func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{items: make(chan domain.BuildRequest, capacity)}
}

// TryEnqueue appends req without blocking. It returns false when the queue is full.
func (q *Queue) TryEnqueue(req domain.BuildRequest) bool {
	select {
	case q.items <- req:
		return true
	default:
		return false
	}
}

// Enqueue is TryEnqueue reporting domain.ErrQueueFull on rejection.
func (q *Queue) Enqueue(req domain.BuildRequest) error {
	if !q.TryEnqueue(req) {
		return fmt.Errorf("enqueue %s: %w", req.Ref, domain.ErrQueueFull)
	}
	return nil
}

// Dequeue blocks until a request is available or ctx is done.
// A canceled wait does not consume a request.
func (q *Queue) Dequeue(ctx context.Context) (domain.BuildRequest, error) {
	// Prefer cancellation over a ready item.
	if err := ctx.Err(); err != nil {
		return domain.BuildRequest{}, err
	}

	select {
	case <-ctx.Done():
		return domain.BuildRequest{}, ctx.Err()
	case req := <-q.items:
		return req, nil
	}
}

// Drain removes and returns every queued request without blocking.
func (q *Queue) Drain() []domain.BuildRequest {
	var drained []domain.BuildRequest
	for {
		select {
		case req := <-q.items:
			drained = append(drained, req)
		default:
			return drained
		}
	}
}

// Depth returns the number of queued requests.
func (q *Queue) Depth() int {
	return len(q.items)
}

// Capacity returns the maximum number of queued requests.
func (q *Queue) Capacity() int {
	return cap(q.items)
}
