package scheduler

import (
	"context"
	"log"
	"sync"
	"time"
)

var _ Scheduler = (*TimerScheduler)(nil)

// TimerScheduler keeps tasks in process timers. Tasks are lost if the process exits.
type TimerScheduler struct {
	mu      sync.Mutex
	handler Handler
	ctx     context.Context
	early   []Task
	wg      sync.WaitGroup
}

func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{}
}

func (s *TimerScheduler) Schedule(_ context.Context, task Task) error {
	s.wg.Add(1)
	time.AfterFunc(time.Until(task.DueAt), func() {
		defer s.wg.Done()
		s.fire(task)
	})
	return nil
}

func (s *TimerScheduler) fire(task Task) {
	s.mu.Lock()
	h, ctx := s.handler, s.ctx
	if h == nil {
		// held until Run installs a handler
		s.early = append(s.early, task)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if ctx.Err() != nil {
		log.Printf("scheduler: task %s for order %s fired after shutdown, dropped", task.ID, task.OrderID)
		return
	}
	h(ctx, task)
}

// Run installs h, hands it any task that came due before Run was called, and blocks
// until ctx is done. Timers that fire afterwards are dropped.
func (s *TimerScheduler) Run(ctx context.Context, h Handler) error {
	s.mu.Lock()
	s.handler, s.ctx = h, ctx
	early := s.early
	s.early = nil
	s.mu.Unlock()

	for _, task := range early {
		if ctx.Err() != nil {
			break
		}
		h(ctx, task)
	}

	<-ctx.Done()
	return nil
}

// Wait blocks until every scheduled timer has fired.
func (s *TimerScheduler) Wait() {
	s.wg.Wait()
}
