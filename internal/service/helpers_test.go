package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/iliyamo/tenant-booking/internal/model"
	"github.com/iliyamo/tenant-booking/internal/queue"
	"github.com/iliyamo/tenant-booking/internal/repository/memory"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, ev queue.ReservationEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// day is the calendar day all fixtures book on.  The clock starts at 08:00.
var day = time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

const (
	tenantA = uint64(1)
	tenantB = uint64(2)
	spaceS  = uint64(10)
	spaceT  = uint64(11)
	tableX  = uint64(20)
	tableY  = uint64(21)
	userU   = uint64(100)
)

type fixture struct {
	store  *memory.Store
	clock  *fakeClock
	pub    *MockPublisher
	spaces *SpaceReservationService
	tables *TableReservationService
}

func newFixture() *fixture {
	store := memory.New()
	store.PutSpace(model.Space{ID: spaceS, TenantID: tenantA, Name: "Studio"})
	store.PutSpace(model.Space{ID: spaceT, TenantID: tenantB, Name: "Terrace"})
	store.PutTable(model.Table{ID: tableX, TenantID: tenantA, Label: "X1", Capacity: 4})
	store.PutTable(model.Table{ID: tableY, TenantID: tenantB, Label: "Y1", Capacity: 2})

	clock := &fakeClock{now: at(8, 0)}
	pub := &MockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil)
	log := zap.NewNop()
	return &fixture{
		store:  store,
		clock:  clock,
		pub:    pub,
		spaces: NewSpaceReservationService(store, clock, pub, log),
		tables: NewTableReservationService(store, clock, pub, log),
	}
}

func (f *fixture) space(start, end time.Time) CreateSpaceReservation {
	return CreateSpaceReservation{TenantID: tenantA, SpaceID: spaceS, UserID: userU, Start: start, End: end, TotalPriceCents: 1500}
}

func (f *fixture) table(requested, arrival time.Time) CreateTableReservation {
	return CreateTableReservation{TenantID: tenantA, TableID: tableX, CustomerID: userU, NumberOfPeople: 2, RequestedTime: requested, EstimatedArrivalTime: arrival}
}
