package http_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpin "partnerfeed/internal/adapters/in/http"
	"partnerfeed/internal/adapters/out/envsession"
	"partnerfeed/internal/adapters/out/inmem"
	"partnerfeed/internal/adapters/out/weblauncher"
	"partnerfeed/internal/core/application/feed"
	"partnerfeed/internal/core/application/identity"
	"partnerfeed/internal/core/application/tracking"
	"partnerfeed/internal/core/application/usecases/commands"
	"partnerfeed/internal/core/application/usecases/queries"
	"partnerfeed/internal/core/domain/model/customer"
	"partnerfeed/internal/core/domain/model/kernel"
	"partnerfeed/internal/core/domain/model/order"
	"partnerfeed/internal/core/domain/model/partner"
	"partnerfeed/internal/core/domain/services"
	"partnerfeed/internal/core/ports"
)

const partnerGroup = "DeliveryPartners"

type scriptedPositionSource struct {
	handler func(kernel.PositionSample)
}

func (s *scriptedPositionSource) RequestPermission(context.Context) error {
	return nil
}

func (s *scriptedPositionSource) Watch(
	_ ports.WatchOptions, handler func(kernel.PositionSample),
) (ports.Subscription, error) {
	s.handler = handler
	return ports.SubscriptionFunc(nil), nil
}

func (s *scriptedPositionSource) emit(t *testing.T, lat, lon float64) {
	t.Helper()
	point, err := kernel.NewGeoPoint(lat, lon)
	require.NoError(t, err)
	sample, err := kernel.NewPositionSample(point, time.Now())
	require.NoError(t, err)
	s.handler(sample)
}

// clientFixture wires the real application components over the in-memory
// store, the way the composition root does for demo mode.
type clientFixture struct {
	echo     *echo.Echo
	store    *inmem.Store
	sessions *envsession.Provider
	source   *scriptedPositionSource
	resolver *identity.Resolver
	sync     *feed.Synchronizer
	tracker  *tracking.Tracker
	launched []string

	nearOrder *order.Order
	farOrder  *order.Order
}

func newClientFixture(t *testing.T) *clientFixture {
	t.Helper()
	logger := slog.Default()

	store := inmem.NewStore()
	profile, err := partner.NewProfile("sub-1", "John")
	require.NoError(t, err)
	require.NoError(t, store.SavePartner(profile))

	record, err := customer.NewCustomer(kernel.NewUUID(), "Priya", "+91-98765-43210", customer.Address{
		FlatNo: "14B", Street: "MG Road", Pincode: "560001",
	})
	require.NoError(t, err)
	require.NoError(t, store.SaveCustomer(record))

	near := seedOrder(t, store, 12.91, 77.61, record.ID())
	far := seedOrder(t, store, 12.95, 77.70, record.ID())

	sessions := envsession.NewProvider("sub-1", []string{partnerGroup}, true)
	source := &scriptedPositionSource{}

	resolver := identity.NewResolver(sessions, store, partnerGroup, logger)
	synchronizer := feed.NewSynchronizer(store, logger)
	tracker := tracking.NewTracker(source, ports.WatchOptions{}, logger)

	fixture := &clientFixture{
		echo:      echo.New(),
		store:     store,
		sessions:  sessions,
		source:    source,
		resolver:  resolver,
		sync:      synchronizer,
		tracker:   tracker,
		nearOrder: near,
		farOrder:  far,
	}

	resolver.Subscribe(func(p *partner.Profile) {
		synchronizer.SetProfile(context.Background(), p)
	})
	require.NoError(t, resolver.Start(context.Background()))
	require.NoError(t, tracker.Start(context.Background()))
	t.Cleanup(func() {
		tracker.Stop()
		synchronizer.Stop()
		resolver.Stop()
	})

	launcher := weblauncher.NewLauncher(func(launchURL string) error {
		fixture.launched = append(fixture.launched, launchURL)
		return nil
	}, logger)

	server := httpin.NewServer(
		resolver,
		synchronizer,
		tracker,
		services.NewGeoRanker(),
		sessions,
		commands.NewBeginTransitCommandHandler(store, launcher),
		func(confirmed bool) commands.CompleteOrderCommandHandler {
			return commands.NewCompleteOrderCommandHandler(store, staticConfirmer(confirmed))
		},
		queries.NewGetOrderDetailsQueryHandler(store, store.Customers(), logger),
	)
	server.MountRoutes(fixture.echo)

	return fixture
}

type staticConfirmer bool

func (c staticConfirmer) Confirm(context.Context, string) (bool, error) {
	return bool(c), nil
}

func seedOrder(t *testing.T, store *inmem.Store, lat, lon float64, customerID kernel.UUID) *order.Order {
	t.Helper()
	destination, err := kernel.NewGeoPoint(lat, lon)
	require.NoError(t, err)
	item, err := order.NewItem("Veg Thali", 0.6, 1)
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), destination, []order.Item{item}, 150, customerID, "John")
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), o))
	return o
}

func (f *clientFixture) request(t *testing.T, method, target string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)

	var body map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec.Code, body
}

func feedOrderIDs(t *testing.T, body map[string]any) []string {
	t.Helper()
	raw, ok := body["orders"].([]any)
	require.True(t, ok)
	ids := make([]string, 0, len(raw))
	for _, entry := range raw {
		ids = append(ids, entry.(map[string]any)["id"].(string))
	}
	return ids
}

func TestFeedRanksByDistanceFromLastFix(t *testing.T) {
	fixture := newClientFixture(t)

	// Without a position fix the feed is unranked but complete.
	code, body := fixture.request(t, http.MethodGet, "/api/v1/feed")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["ranked"])
	assert.Len(t, feedOrderIDs(t, body), 2)
	assert.Equal(t, "John", body["partner"].(map[string]any)["name"])

	fixture.source.emit(t, 12.90, 77.60)

	code, body = fixture.request(t, http.MethodGet, "/api/v1/feed")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["ranked"])
	assert.Equal(t,
		[]string{fixture.nearOrder.ID().String(), fixture.farOrder.ID().String()},
		feedOrderIDs(t, body),
		"closer order ranks first")
}

func TestOrderDetailsIncludesCustomerAndLaunchURLs(t *testing.T) {
	fixture := newClientFixture(t)

	code, body := fixture.request(t, http.MethodGet, "/api/v1/orders/"+fixture.nearOrder.ID().String())
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, "PENDING", body["status"])
	assert.Contains(t, body["directionsUrl"], "maps/dir")

	customerBody, ok := body["customer"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Priya", customerBody["name"])
	assert.Equal(t, "tel:+91-98765-43210", customerBody["dialUrl"])

	code, _ = fixture.request(t, http.MethodGet, "/api/v1/orders/"+kernel.NewUUID().String())
	assert.Equal(t, http.StatusNotFound, code)
}

func TestBeginTransitPersistsAndOpensNavigation(t *testing.T) {
	fixture := newClientFixture(t)
	target := "/api/v1/orders/" + fixture.nearOrder.ID().String() + "/transit"

	code, body := fixture.request(t, http.MethodPost, target)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ON_THE_WAY", body["status"])
	require.Len(t, fixture.launched, 1)
	assert.Contains(t, fixture.launched[0], "maps/dir")

	// Reopening navigation succeeds on an order already on the way.
	code, _ = fixture.request(t, http.MethodPost, target)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, fixture.launched, 2)
}

func TestCompleteOrderDropsItFromFeed(t *testing.T) {
	fixture := newClientFixture(t)
	target := "/api/v1/orders/" + fixture.nearOrder.ID().String() + "/complete"

	// A decline changes nothing.
	code, body := fixture.request(t, http.MethodPost, target)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["completed"])

	code, body = fixture.request(t, http.MethodGet, "/api/v1/feed")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, feedOrderIDs(t, body), 2)

	// Confirming delivers the order and it leaves the live feed.
	code, body = fixture.request(t, http.MethodPost, target+"?confirm=true")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["completed"])
	assert.Equal(t, "DELIVERED", body["status"])

	code, body = fixture.request(t, http.MethodGet, "/api/v1/feed")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{fixture.farOrder.ID().String()}, feedOrderIDs(t, body))

	// Delivered orders reject further transitions.
	code, _ = fixture.request(t, http.MethodPost,
		"/api/v1/orders/"+fixture.nearOrder.ID().String()+"/transit")
	assert.Equal(t, http.StatusConflict, code)
}

func TestSignOutEmptiesTheFeed(t *testing.T) {
	fixture := newClientFixture(t)

	code, _ := fixture.request(t, http.MethodPost, "/api/v1/session/signout")
	require.Equal(t, http.StatusNoContent, code)

	code, body := fixture.request(t, http.MethodGet, "/api/v1/feed")
	require.Equal(t, http.StatusOK, code)
	assert.Nil(t, body["partner"])
	assert.Empty(t, feedOrderIDs(t, body))

	code, _ = fixture.request(t, http.MethodPost, "/api/v1/session/signin")
	require.Equal(t, http.StatusNoContent, code)

	code, body = fixture.request(t, http.MethodGet, "/api/v1/feed")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, feedOrderIDs(t, body), 2, "signing back in restores the feed")
}
