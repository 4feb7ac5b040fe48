// Package scheduler runs time-based order status tasks. The lifecycle state machine only
// sees Task and Scheduler, so the backing mechanism can be swapped.
package scheduler

import (
	"context"
	"time"

	"delivery-service/internal/domain"

	"github.com/google/uuid"
)

// Task asks for order OrderID to move from From to To once DueAt has passed.
type Task struct {
	ID      string             `json:"id"`
	OrderID string             `json:"orderId"`
	From    domain.OrderStatus `json:"from"`
	To      domain.OrderStatus `json:"to"`
	DueAt   time.Time          `json:"dueAt"`
}

func NewTask(orderID string, from, to domain.OrderStatus, dueAt time.Time) Task {
	return Task{
		ID:      uuid.NewString(),
		OrderID: orderID,
		From:    from,
		To:      to,
		DueAt:   dueAt,
	}
}

type Handler func(ctx context.Context, task Task)

type Scheduler interface {
	// Schedule registers a task. It does not block until the task is due.
	Schedule(ctx context.Context, task Task) error
	// Run delivers due tasks to h until ctx is cancelled.
	Run(ctx context.Context, h Handler) error
}
