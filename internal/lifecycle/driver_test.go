package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"delivery-service/internal/domain"
	"delivery-service/internal/metrics"
	"delivery-service/internal/mocks"
	"delivery-service/internal/scheduler"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memOrders is a minimal OrderRepository that records when each status was written.
type memOrders struct {
	mu        sync.Mutex
	orders    map[string]*domain.Order
	changedAt map[domain.OrderStatus]time.Time
	failOn    domain.OrderStatus
}

func newMemOrders(orders ...*domain.Order) *memOrders {
	m := &memOrders{orders: map[string]*domain.Order{}, changedAt: map[domain.OrderStatus]time.Time{}}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func (m *memOrders) Save(_ context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
	return nil
}

func (m *memOrders) FindByID(_ context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) FindAll(context.Context) ([]domain.Order, error) {
	return nil, nil
}

func (m *memOrders) UpdateStatus(_ context.Context, id string, from, to domain.OrderStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if to == m.failOn {
		return false, errors.New("connection reset")
	}
	o, ok := m.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	m.changedAt[to] = time.Now()
	return true, nil
}

func (m *memOrders) status(id string) domain.OrderStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[id].Status
}

func startDriver(t *testing.T, repo *memOrders, pub *mocks.MockPublisher, delays Delays) (*Driver, *scheduler.TimerScheduler, *metrics.Metrics) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	sched := scheduler.NewTimerScheduler()
	m := metrics.New(prometheus.NewRegistry())
	d := NewDriver(repo, sched, pub, m, delays)

	// tasks due before Run starts are held by the scheduler
	go func() { _ = d.Run(ctx) }()
	return d, sched, m
}

func TestDriver_FullLifecycle(t *testing.T) {
	order := &domain.Order{ID: "o-1", Status: domain.StatusPending}
	repo := newMemOrders(order)
	pub := new(mocks.MockPublisher)
	pub.On("Publish", mock.Anything, domain.EventOrderStatusChanged, mock.AnythingOfType("domain.OrderStatusChangedEvent")).Return(nil).Twice()

	delays := Delays{Transit: 40 * time.Millisecond, Delivery: 80 * time.Millisecond}
	d, sched, m := startDriver(t, repo, pub, delays)

	created := time.Now()
	require.NoError(t, d.Begin(context.Background(), "o-1"))
	assert.Equal(t, domain.StatusPending, repo.status("o-1"))

	require.Eventually(t, func() bool { return repo.status("o-1") == domain.StatusDelivered }, 2*time.Second, 5*time.Millisecond)
	sched.Wait()

	repo.mu.Lock()
	transitAt := repo.changedAt[domain.StatusInTransit]
	deliveredAt := repo.changedAt[domain.StatusDelivered]
	repo.mu.Unlock()

	assert.GreaterOrEqual(t, transitAt.Sub(created), delays.Transit)
	// the second delay is chained on the first transition
	assert.GreaterOrEqual(t, deliveredAt.Sub(transitAt), delays.Delivery)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("in_transit", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("delivered", "ok")))
	pub.AssertExpectations(t)
}

func TestDriver_PersistFailureAbandonsOrder(t *testing.T) {
	order := &domain.Order{ID: "o-2", Status: domain.StatusPending}
	repo := newMemOrders(order)
	repo.failOn = domain.StatusInTransit
	pub := new(mocks.MockPublisher)

	d, sched, m := startDriver(t, repo, pub, Delays{Transit: 10 * time.Millisecond, Delivery: 10 * time.Millisecond})
	require.NoError(t, d.Begin(context.Background(), "o-2"))

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.Transitions.WithLabelValues("in_transit", "failed")) == 1
	}, time.Second, 5*time.Millisecond)
	sched.Wait()

	assert.Equal(t, domain.StatusPending, repo.status("o-2"))
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestDriver_Handle(t *testing.T) {
	tests := []struct {
		name          string
		task          scheduler.Task
		setupMocks    func(*mocks.MockOrderRepository, *mocks.MockScheduler, *mocks.MockPublisher)
		expectOutcome string
	}{
		{
			name: "order missing",
			task: scheduler.Task{OrderID: "gone", From: domain.StatusPending, To: domain.StatusInTransit},
			setupMocks: func(repo *mocks.MockOrderRepository, _ *mocks.MockScheduler, _ *mocks.MockPublisher) {
				repo.On("FindByID", mock.Anything, "gone").Return(nil, nil)
			},
			expectOutcome: "skipped",
		},
		{
			name: "status already advanced",
			task: scheduler.Task{OrderID: "o-3", From: domain.StatusPending, To: domain.StatusInTransit},
			setupMocks: func(repo *mocks.MockOrderRepository, _ *mocks.MockScheduler, _ *mocks.MockPublisher) {
				repo.On("FindByID", mock.Anything, "o-3").Return(&domain.Order{ID: "o-3", Status: domain.StatusInTransit}, nil)
			},
			expectOutcome: "skipped",
		},
		{
			name: "load failure",
			task: scheduler.Task{OrderID: "o-4", From: domain.StatusPending, To: domain.StatusInTransit},
			setupMocks: func(repo *mocks.MockOrderRepository, _ *mocks.MockScheduler, _ *mocks.MockPublisher) {
				repo.On("FindByID", mock.Anything, "o-4").Return(nil, errors.New("database error"))
			},
			expectOutcome: "failed",
		},
		{
			name: "concurrent change",
			task: scheduler.Task{OrderID: "o-5", From: domain.StatusPending, To: domain.StatusInTransit},
			setupMocks: func(repo *mocks.MockOrderRepository, _ *mocks.MockScheduler, _ *mocks.MockPublisher) {
				repo.On("FindByID", mock.Anything, "o-5").Return(&domain.Order{ID: "o-5", Status: domain.StatusPending}, nil)
				repo.On("UpdateStatus", mock.Anything, "o-5", domain.StatusPending, domain.StatusInTransit).Return(false, nil)
			},
			expectOutcome: "skipped",
		},
		{
			name: "delivered is terminal",
			task: scheduler.Task{OrderID: "o-6", From: domain.StatusInTransit, To: domain.StatusDelivered},
			setupMocks: func(repo *mocks.MockOrderRepository, _ *mocks.MockScheduler, pub *mocks.MockPublisher) {
				repo.On("FindByID", mock.Anything, "o-6").Return(&domain.Order{ID: "o-6", Status: domain.StatusInTransit}, nil)
				repo.On("UpdateStatus", mock.Anything, "o-6", domain.StatusInTransit, domain.StatusDelivered).Return(true, nil)
				pub.On("Publish", mock.Anything, domain.EventOrderStatusChanged, mock.Anything).Return(nil)
			},
			expectOutcome: "ok",
		},
		{
			name: "publish failure still schedules next",
			task: scheduler.Task{OrderID: "o-7", From: domain.StatusPending, To: domain.StatusInTransit},
			setupMocks: func(repo *mocks.MockOrderRepository, s *mocks.MockScheduler, pub *mocks.MockPublisher) {
				repo.On("FindByID", mock.Anything, "o-7").Return(&domain.Order{ID: "o-7", Status: domain.StatusPending}, nil)
				repo.On("UpdateStatus", mock.Anything, "o-7", domain.StatusPending, domain.StatusInTransit).Return(true, nil)
				pub.On("Publish", mock.Anything, domain.EventOrderStatusChanged, mock.Anything).Return(errors.New("broker down"))
				s.On("Schedule", mock.Anything, mock.MatchedBy(func(task scheduler.Task) bool {
					return task.OrderID == "o-7" && task.From == domain.StatusInTransit && task.To == domain.StatusDelivered
				})).Return(nil)
			},
			expectOutcome: "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockOrderRepository)
			sched := new(mocks.MockScheduler)
			pub := new(mocks.MockPublisher)
			tt.setupMocks(repo, sched, pub)

			m := metrics.New(prometheus.NewRegistry())
			d := NewDriver(repo, sched, pub, m, Delays{Transit: time.Second, Delivery: time.Second})
			d.Handle(context.Background(), tt.task)

			assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues(string(tt.task.To), tt.expectOutcome)))
			repo.AssertExpectations(t)
			sched.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestDriver_BeginSchedulesTransit(t *testing.T) {
	sched := new(mocks.MockScheduler)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	sched.On("Schedule", mock.Anything, mock.MatchedBy(func(task scheduler.Task) bool {
		return task.OrderID == "o-1" &&
			task.From == domain.StatusPending &&
			task.To == domain.StatusInTransit &&
			task.DueAt.Equal(now.Add(30*time.Second))
	})).Return(nil)

	d := NewDriver(new(mocks.MockOrderRepository), sched, new(mocks.MockPublisher), nil, Delays{Transit: 30 * time.Second, Delivery: 45 * time.Second})
	d.now = func() time.Time { return now }

	require.NoError(t, d.Begin(context.Background(), "o-1"))
	sched.AssertExpectations(t)
}

func TestDriver_BeginScheduleError(t *testing.T) {
	sched := new(mocks.MockScheduler)
	sched.On("Schedule", mock.Anything, mock.Anything).Return(errors.New("redis unavailable"))

	d := NewDriver(new(mocks.MockOrderRepository), sched, new(mocks.MockPublisher), nil, Delays{})
	err := d.Begin(context.Background(), "o-1")
	assert.ErrorContains(t, err, "redis unavailable")
}
