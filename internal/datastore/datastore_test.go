package datastore

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/imaging"
	"warungpos/backend/internal/metrics"
	"warungpos/backend/internal/store"
	"warungpos/backend/internal/store/memory"
)

var errOffline = errors.New("connection refused")

// fakeRemote is a memory store that can be switched offline.
type fakeRemote struct {
	*memory.Store
	offline bool
	maxID   int64
	feed    chan domain.ChangeEvent
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{Store: memory.New(), feed: make(chan domain.ChangeEvent, 4)}
}

func (r *fakeRemote) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if r.offline {
		return nil, errOffline
	}
	return r.Store.ListProducts(ctx)
}

func (r *fakeRemote) GetShopDetails(ctx context.Context) (*domain.ShopDetails, error) {
	if r.offline {
		return nil, errOffline
	}
	return r.Store.GetShopDetails(ctx)
}

func (r *fakeRemote) SaveProduct(ctx context.Context, p domain.Product) error {
	if r.offline {
		return errOffline
	}
	return r.Store.SaveProduct(ctx, p)
}

func (r *fakeRemote) CommitOrder(ctx context.Context, order domain.Order, products []domain.Product) error {
	if r.offline {
		return errOffline
	}
	return r.Store.CommitOrder(ctx, order, products)
}

func (r *fakeRemote) MaxOrderID(context.Context) (int64, error) {
	if r.offline {
		return 0, errOffline
	}
	return r.maxID, nil
}

func (r *fakeRemote) Listen(context.Context) (<-chan domain.ChangeEvent, error) {
	if r.offline {
		return nil, errOffline
	}
	return r.feed, nil
}

// brokenLocal fails every product write.
type brokenLocal struct {
	*memory.Store
}

func (brokenLocal) SaveProduct(context.Context, domain.Product) error {
	return errors.New("disk full")
}

func newAdapter(local store.Local, remote store.Remote) (*Adapter, *metrics.Metrics) {
	m := metrics.New()
	return New(local, remote, imaging.NewCompressor(8, 70), m, zap.NewNop()), m
}

func sampleProduct(id string) domain.Product {
	return domain.Product{ID: id, Name: "Tea " + id, Price: decimal.NewFromInt(10), Stock: 5, Category: "Beverages"}
}

func TestWriteThroughBothStores(t *testing.T) {
	ctx := context.Background()
	local := memory.New()
	remote := newFakeRemote()
	a, _ := newAdapter(local, remote)

	_, err := a.SaveProduct(ctx, sampleProduct("p1"))
	require.NoError(t, err)

	fromLocal, err := local.ListProducts(ctx)
	require.NoError(t, err)
	fromRemote, err := remote.Store.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, fromLocal, 1)
	assert.Len(t, fromRemote, 1)
	assert.True(t, a.IsRemoteConfigured())
}

func TestRemoteWriteFailureIsAbsorbed(t *testing.T) {
	ctx := context.Background()
	local := memory.New()
	remote := newFakeRemote()
	remote.offline = true
	a, m := newAdapter(local, remote)

	_, err := a.SaveProduct(ctx, sampleProduct("p1"))

	require.NoError(t, err)
	products, _ := local.ListProducts(ctx)
	assert.Len(t, products, 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RemoteFailures().WithLabelValues("save", "products")))
}

func TestLocalWriteFailureIsFatal(t *testing.T) {
	a, _ := newAdapter(brokenLocal{memory.New()}, newFakeRemote())

	_, err := a.SaveProduct(context.Background(), sampleProduct("p1"))

	assert.ErrorContains(t, err, "disk full")
}

func TestReadsPreferRemoteAndFallBackToLocal(t *testing.T) {
	ctx := context.Background()
	local := memory.New()
	remote := newFakeRemote()
	require.NoError(t, local.SaveProduct(ctx, sampleProduct("local-only")))
	require.NoError(t, remote.Store.SaveProduct(ctx, sampleProduct("remote-a")))
	require.NoError(t, remote.Store.SaveProduct(ctx, sampleProduct("remote-b")))
	a, _ := newAdapter(local, remote)

	products, err := a.Products(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2)

	remote.offline = true
	products, err = a.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "local-only", products[0].ID)
}

func TestShopDetailsMissingRemotelyFallsBackQuietly(t *testing.T) {
	ctx := context.Background()
	local := memory.New()
	require.NoError(t, local.SaveShopDetails(ctx, domain.DefaultShopDetails()))
	a, m := newAdapter(local, newFakeRemote())

	details, err := a.ShopDetails(ctx)

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultShopDetails().Name, details.Name)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.RemoteFailures().WithLabelValues("read", "settings")))
}

func TestShopDetailsNotFoundAnywhere(t *testing.T) {
	a, _ := newAdapter(memory.New(), nil)

	_, err := a.ShopDetails(context.Background())

	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRemoteMaxOrderID(t *testing.T) {
	ctx := context.Background()

	localOnly, _ := newAdapter(memory.New(), nil)
	_, err := localOnly.RemoteMaxOrderID(ctx)
	assert.ErrorIs(t, err, store.ErrRemoteUnavailable)

	remote := newFakeRemote()
	remote.maxID = 41
	a, _ := newAdapter(memory.New(), remote)
	id, err := a.RemoteMaxOrderID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(41), id)

	remote.offline = true
	_, err = a.RemoteMaxOrderID(ctx)
	assert.ErrorIs(t, err, store.ErrRemoteUnavailable)
}

func TestCommitOrderWritesOrderAndStock(t *testing.T) {
	ctx := context.Background()
	local := memory.New()
	a, _ := newAdapter(local, nil)
	product := sampleProduct("p1")
	product.Stock = 3
	order := domain.Order{ID: "1", Date: time.Now().UTC(), Items: []domain.CartItem{{Product: sampleProduct("p1"), Qty: 2}}}

	require.NoError(t, a.CommitOrder(ctx, order, []domain.Product{product}))

	orders, _ := local.ListOrders(ctx)
	products, _ := local.ListProducts(ctx)
	require.Len(t, orders, 1)
	require.Len(t, products, 1)
	assert.Equal(t, 3, products[0].Stock)
}

func TestResetAllClearsShopDetails(t *testing.T) {
	ctx := context.Background()
	local := memory.NewSeeded()
	require.NoError(t, local.SaveShopDetails(ctx, domain.DefaultShopDetails()))
	a, _ := newAdapter(local, nil)

	require.NoError(t, a.ResetAll(ctx))

	products, _ := local.ListProducts(ctx)
	assert.Empty(t, products)
	_, err := local.GetShopDetails(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestProductImageIsDownscaled(t *testing.T) {
	ctx := context.Background()
	local := memory.New()
	a, _ := newAdapter(local, nil)
	product := sampleProduct("p1")
	product.Image = pngDataURL(t, 32, 16)

	stored, err := a.SaveProduct(ctx, product)
	require.NoError(t, err)

	products, _ := local.ListProducts(ctx)
	require.Len(t, products, 1)
	assert.Equal(t, stored.Image, products[0].Image)
	raw, err := imaging.Decode(products[0].Image)
	require.NoError(t, err)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Width)
}

func TestBrokenImageIsStoredAsIs(t *testing.T) {
	ctx := context.Background()
	local := memory.New()
	a, m := newAdapter(local, nil)
	product := sampleProduct("p1")
	product.Image = "data:image/png;base64,bm90IGFuIGltYWdl"

	_, err := a.SaveProduct(ctx, product)
	require.NoError(t, err)

	products, _ := local.ListProducts(ctx)
	assert.Equal(t, product.Image, products[0].Image)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ImageFailures()))
}

func TestSubscribeForwardsChangeEvents(t *testing.T) {
	remote := newFakeRemote()
	a, _ := newAdapter(memory.New(), remote)

	sub, err := a.Subscribe(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sub)

	remote.feed <- domain.ChangeEvent{Collection: domain.CollectionProducts}
	select {
	case ev := <-sub.Events():
		assert.Equal(t, domain.CollectionProducts, ev.Collection)
	case <-time.After(2 * time.Second):
		t.Fatal("change event not forwarded")
	}

	a.Unsubscribe(sub)
	_, open := <-sub.Events()
	assert.False(t, open)
}

func TestSubscribeWithoutRemote(t *testing.T) {
	a, _ := newAdapter(memory.New(), nil)

	sub, err := a.Subscribe(context.Background())

	assert.NoError(t, err)
	assert.Nil(t, sub)
	a.Unsubscribe(sub)
}

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}
