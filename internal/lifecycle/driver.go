// Package lifecycle advances orders through pending -> in_transit -> delivered.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"delivery-service/internal/domain"
	rabbit "delivery-service/internal/infra/rabbitmq"
	"delivery-service/internal/logging"
	"delivery-service/internal/metrics"
	"delivery-service/internal/repository"
	"delivery-service/internal/scheduler"
)

type Delays struct {
	// Transit is measured from order creation, Delivery from the in_transit transition.
	Transit  time.Duration
	Delivery time.Duration
}

func (d Delays) after(to domain.OrderStatus) time.Duration {
	if to == domain.StatusDelivered {
		return d.Delivery
	}
	return d.Transit
}

type Driver struct {
	repo      repository.OrderRepository
	scheduler scheduler.Scheduler
	publisher rabbit.PublisherInterface
	metrics   *metrics.Metrics
	delays    Delays
	now       func() time.Time
}

func NewDriver(repo repository.OrderRepository, s scheduler.Scheduler, pub rabbit.PublisherInterface, m *metrics.Metrics, delays Delays) *Driver {
	return &Driver{
		repo:      repo,
		scheduler: s,
		publisher: pub,
		metrics:   m,
		delays:    delays,
		now:       time.Now,
	}
}

// Begin schedules the first transition of a freshly created order.
func (d *Driver) Begin(ctx context.Context, orderID string) error {
	return d.scheduleFrom(ctx, orderID, domain.StatusPending)
}

func (d *Driver) scheduleFrom(ctx context.Context, orderID string, from domain.OrderStatus) error {
	to, ok := from.Next()
	if !ok {
		return nil
	}
	task := scheduler.NewTask(orderID, from, to, d.now().Add(d.delays.after(to)))
	if err := d.scheduler.Schedule(ctx, task); err != nil {
		return fmt.Errorf("schedule %s for order %s: %w", to, orderID, err)
	}
	return nil
}

// Run feeds due tasks into Handle until ctx is cancelled.
func (d *Driver) Run(ctx context.Context) error {
	return d.scheduler.Run(ctx, d.Handle)
}

// Handle applies one transition. Any failure is logged and ends the order's progress.
func (d *Driver) Handle(ctx context.Context, task scheduler.Task) {
	to := string(task.To)

	order, err := d.repo.FindByID(ctx, task.OrderID)
	if err != nil {
		d.fail(task, "load order", err)
		return
	}
	if order == nil {
		d.skip(task, "order not found")
		return
	}
	if order.Status != task.From {
		d.skip(task, fmt.Sprintf("order is %s, expected %s", order.Status, task.From))
		return
	}

	changed, err := d.repo.UpdateStatus(ctx, order.ID, task.From, task.To)
	if err != nil {
		d.fail(task, "persist status", err)
		return
	}
	if !changed {
		d.skip(task, "status changed concurrently")
		return
	}

	d.metrics.Transition(to, "ok")
	logging.Log(logging.Fields{OrderID: task.OrderID, Step: "transition", Status: to})

	evt := domain.OrderStatusChangedEvent{
		OrderID:   task.OrderID,
		From:      task.From,
		To:        task.To,
		ChangedAt: d.now().UTC(),
	}
	if err := d.publisher.Publish(ctx, domain.EventOrderStatusChanged, evt); err != nil {
		logging.Log(logging.Fields{OrderID: task.OrderID, Step: "publish", Status: "failed", Err: err})
	}

	if err := d.scheduleFrom(ctx, task.OrderID, task.To); err != nil {
		d.fail(task, "schedule next", err)
	}
}

func (d *Driver) fail(task scheduler.Task, step string, err error) {
	d.metrics.Transition(string(task.To), "failed")
	logging.Log(logging.Fields{OrderID: task.OrderID, Step: step, Status: "failed", Err: err})
}

func (d *Driver) skip(task scheduler.Task, reason string) {
	d.metrics.Transition(string(task.To), "skipped")
	logging.Log(logging.Fields{OrderID: task.OrderID, Step: "transition", Status: "skipped", Message: reason})
}
