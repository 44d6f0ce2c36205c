package feed_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partnerfeed/internal/core/application/feed"
	"partnerfeed/internal/core/domain/model/kernel"
	"partnerfeed/internal/core/domain/model/order"
	"partnerfeed/internal/core/domain/model/partner"
	"partnerfeed/internal/core/ports"
)

type fakeOrderRepository struct {
	orders        map[kernel.UUID]*order.Order
	queryErr      error
	observeErr    error
	handlers      []func(ports.OrderEvent)
	releasedCount int
	queryCount    int
}

func newFakeOrderRepository() *fakeOrderRepository {
	return &fakeOrderRepository{orders: make(map[kernel.UUID]*order.Order)}
}

func (f *fakeOrderRepository) put(t *testing.T, owner string, status order.Status) *order.Order {
	t.Helper()
	destination, err := kernel.NewGeoPoint(12.90, 77.60)
	require.NoError(t, err)
	item, err := order.NewItem("Paneer Tikka", 0.4, 1)
	require.NoError(t, err)
	o, err := order.RestoreOrder(
		kernel.NewUUID(), destination, []order.Item{item}, 250, kernel.NewUUID(), owner, status)
	require.NoError(t, err)
	f.orders[o.ID()] = o
	return o
}

func (f *fakeOrderRepository) GetByOwner(_ context.Context, owner string) ([]*order.Order, error) {
	f.queryCount++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	var result []*order.Order
	for _, o := range f.orders {
		if o.Owner() == owner {
			result = append(result, o)
		}
	}
	return result, nil
}

func (f *fakeOrderRepository) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return o, nil
}

func (f *fakeOrderRepository) Save(_ context.Context, aggregate *order.Order) error {
	f.orders[aggregate.ID()] = aggregate
	return nil
}

func (f *fakeOrderRepository) Observe(handler func(ports.OrderEvent)) (ports.Subscription, error) {
	if f.observeErr != nil {
		return nil, f.observeErr
	}
	f.handlers = append(f.handlers, handler)
	return ports.SubscriptionFunc(func() { f.releasedCount++ }), nil
}

// notify fans a change event out to the currently registered handlers, the way
// the remote change stream would.
func (f *fakeOrderRepository) notify(event ports.OrderEvent) {
	handlers := make([]func(ports.OrderEvent), len(f.handlers))
	copy(handlers, f.handlers)
	for _, handler := range handlers {
		handler(event)
	}
}

func mustProfile(t *testing.T, subject, name string) *partner.Profile {
	t.Helper()
	profile, err := partner.NewProfile(subject, name)
	require.NoError(t, err)
	return &profile
}

func orderIDs(orders []*order.Order) []string {
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID().String())
	}
	return ids
}

func TestSynchronizerPublishesOwnedOpenOrders(t *testing.T) {
	repo := newFakeOrderRepository()
	mine := repo.put(t, "John", order.Pending)
	onTheWay := repo.put(t, "John", order.OnTheWay)
	repo.put(t, "John", order.Delivered)
	repo.put(t, "Jane", order.Pending)

	sync := feed.NewSynchronizer(repo, slog.Default())
	sync.SetProfile(context.Background(), mustProfile(t, "sub-1", "John"))

	snapshot := sync.Snapshot()
	require.Len(t, snapshot, 2, "only the partner's non-terminal orders belong in the feed")
	assert.ElementsMatch(t,
		orderIDs([]*order.Order{mine, onTheWay}), orderIDs(snapshot))
}

func TestSynchronizerEmptyWithoutProfile(t *testing.T) {
	repo := newFakeOrderRepository()
	repo.put(t, "John", order.Pending)

	sync := feed.NewSynchronizer(repo, slog.Default())
	assert.Empty(t, sync.Snapshot())

	sync.SetProfile(context.Background(), mustProfile(t, "sub-1", "John"))
	require.Len(t, sync.Snapshot(), 1)

	sync.SetProfile(context.Background(), nil)
	assert.Empty(t, sync.Snapshot(), "unresolving the profile empties the feed")
	assert.Equal(t, 1, repo.releasedCount, "unresolving releases the change subscription")
}

func TestSynchronizerRederivesOnChangeEvent(t *testing.T) {
	repo := newFakeOrderRepository()
	repo.put(t, "John", order.Pending)

	sync := feed.NewSynchronizer(repo, slog.Default())
	sync.SetProfile(context.Background(), mustProfile(t, "sub-1", "John"))
	require.Len(t, sync.Snapshot(), 1)

	added := repo.put(t, "John", order.Pending)
	repo.notify(ports.OrderEvent{Op: ports.OpInsert, OrderID: added.ID()})
	assert.Len(t, sync.Snapshot(), 2, "an insert event triggers a full re-derivation")

	// A delivered order drops out on the next change notification.
	require.NoError(t, added.Complete())
	repo.notify(ports.OrderEvent{Op: ports.OpUpdate, OrderID: added.ID()})
	assert.Len(t, sync.Snapshot(), 1)
}

func TestSynchronizerKeepsStaleSetOnQueryFailure(t *testing.T) {
	repo := newFakeOrderRepository()
	repo.put(t, "John", order.Pending)

	sync := feed.NewSynchronizer(repo, slog.Default())
	sync.SetProfile(context.Background(), mustProfile(t, "sub-1", "John"))
	require.Len(t, sync.Snapshot(), 1)

	repo.queryErr = errors.New("store unavailable")
	sync.Refresh(context.Background())
	assert.Len(t, sync.Snapshot(), 1, "a failed derivation keeps the previous set")

	repo.queryErr = nil
	repo.put(t, "John", order.Pending)
	sync.Refresh(context.Background())
	assert.Len(t, sync.Snapshot(), 2, "the next successful derivation recovers")
}

func TestSynchronizerSwitchReleasesOldSubscriptionFirst(t *testing.T) {
	repo := newFakeOrderRepository()
	repo.put(t, "John", order.Pending)
	repo.put(t, "Jane", order.Pending)
	repo.put(t, "Jane", order.OnTheWay)

	sync := feed.NewSynchronizer(repo, slog.Default())
	sync.SetProfile(context.Background(), mustProfile(t, "sub-1", "John"))
	require.Len(t, sync.Snapshot(), 1)

	sync.SetProfile(context.Background(), mustProfile(t, "sub-2", "Jane"))
	assert.Equal(t, 1, repo.releasedCount, "old change subscription released on switch")
	assert.Len(t, sync.Snapshot(), 2)
}

func TestSynchronizerSubscribeReplaysAndNotifies(t *testing.T) {
	repo := newFakeOrderRepository()
	repo.put(t, "John", order.Pending)

	sync := feed.NewSynchronizer(repo, slog.Default())
	sync.SetProfile(context.Background(), mustProfile(t, "sub-1", "John"))

	var published [][]*order.Order
	sub := sync.Subscribe(func(set []*order.Order) {
		published = append(published, set)
	})
	require.Len(t, published, 1, "subscription replays the current set")
	assert.Len(t, published[0], 1)

	added := repo.put(t, "John", order.Pending)
	repo.notify(ports.OrderEvent{Op: ports.OpInsert, OrderID: added.ID()})
	require.Len(t, published, 2)
	assert.Len(t, published[1], 2)

	sub.Unsubscribe()
	repo.notify(ports.OrderEvent{Op: ports.OpUpdate, OrderID: added.ID()})
	assert.Len(t, published, 2, "unsubscribed handler must not be notified")
}

func TestSynchronizerSurvivesObserveFailure(t *testing.T) {
	repo := newFakeOrderRepository()
	repo.put(t, "John", order.Pending)
	repo.observeErr = errors.New("stream unavailable")

	sync := feed.NewSynchronizer(repo, slog.Default())
	sync.SetProfile(context.Background(), mustProfile(t, "sub-1", "John"))

	assert.Len(t, sync.Snapshot(), 1, "the feed still derives without a change stream")
}

func TestSynchronizerStopReleasesSubscription(t *testing.T) {
	repo := newFakeOrderRepository()
	repo.put(t, "John", order.Pending)

	sync := feed.NewSynchronizer(repo, slog.Default())
	sync.SetProfile(context.Background(), mustProfile(t, "sub-1", "John"))

	sync.Stop()
	assert.Equal(t, 1, repo.releasedCount)
	assert.Len(t, sync.Snapshot(), 1, "the last published set stays readable after stop")
}
