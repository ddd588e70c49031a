// Package ledger owns committed orders and order id allocation.
package ledger

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/store"
)

// Store is the slice of the data store adapter the ledger needs.
type Store interface {
	Orders(ctx context.Context) ([]domain.Order, error)
	LocalOrders(ctx context.Context) ([]domain.Order, error)
	RemoteMaxOrderID(ctx context.Context) (int64, error)
	SaveOrder(ctx context.Context, order domain.Order) error
	CommitOrder(ctx context.Context, order domain.Order, products []domain.Product) error
	RemoveOrder(ctx context.Context, id string, products []domain.Product) error
	ClearOrders(ctx context.Context) error
}

type Ledger struct {
	store Store
	log   *zap.Logger
}

func New(s Store, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{store: s, log: log.Named("ledger")}
}

// NextOrderID returns one more than the largest numeric id known locally or
// remotely. Non-numeric ids are ignored and an unreachable remote leaves the
// local maximum in charge.
func (l *Ledger) NextOrderID(ctx context.Context) (string, error) {
	orders, err := l.store.LocalOrders(ctx)
	if err != nil {
		return "", err
	}
	highest := MaxNumericID(orders)

	remote, err := l.store.RemoteMaxOrderID(ctx)
	switch {
	case err == nil:
		highest = max(highest, remote)
	case !errors.Is(err, store.ErrRemoteUnavailable):
		l.log.Warn("remote max order id", zap.Error(err))
	}

	return strconv.FormatInt(highest+1, 10), nil
}

// Save upserts an order without touching stock.
func (l *Ledger) Save(ctx context.Context, order domain.Order) error {
	return l.store.SaveOrder(ctx, order)
}

// Commit writes the order and the products whose stock it changed.
func (l *Ledger) Commit(ctx context.Context, order domain.Order, products []domain.Product) error {
	return l.store.CommitOrder(ctx, order, products)
}

// Remove deletes the order and writes the products whose stock the caller
// restored for it.
func (l *Ledger) Remove(ctx context.Context, id string, products []domain.Product) error {
	return l.store.RemoveOrder(ctx, id, products)
}

func (l *Ledger) List(ctx context.Context) ([]domain.Order, error) {
	return l.store.Orders(ctx)
}

// Get returns the locally committed version of the order. The remote copy
// may lag behind a commit whose remote write failed, so it is only consulted
// for orders this device does not hold.
func (l *Ledger) Get(ctx context.Context, id string) (domain.Order, error) {
	local, err := l.store.LocalOrders(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	if order, ok := find(local, id); ok {
		return order, nil
	}

	orders, err := l.store.Orders(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	if order, ok := find(orders, id); ok {
		return order, nil
	}
	return domain.Order{}, store.ErrNotFound
}

// Clear deletes every order. Stock is not restored.
func (l *Ledger) Clear(ctx context.Context) error {
	return l.store.ClearOrders(ctx)
}

func find(orders []domain.Order, id string) (domain.Order, bool) {
	idx := slices.IndexFunc(orders, func(o domain.Order) bool { return o.ID == id })
	if idx < 0 {
		return domain.Order{}, false
	}
	return orders[idx], true
}

// MaxNumericID returns the largest non-negative integer id, 0 when none.
func MaxNumericID(orders []domain.Order) int64 {
	var highest int64
	for _, o := range orders {
		n, err := strconv.ParseInt(strings.TrimSpace(o.ID), 10, 64)
		if err != nil || n < 0 {
			continue
		}
		highest = max(highest, n)
	}
	return highest
}

// Query narrows the order history. From and To are inclusive YYYY-MM-DD
// calendar days in Loc; empty means unbounded.
type Query struct {
	Search string
	From   string
	To     string
	Loc    *time.Location
}

// Filter keeps orders whose id, customer name or customer phone contains the
// search term (case-insensitive) and whose local day falls in range.
func Filter(orders []domain.Order, q Query) []domain.Order {
	loc := q.Loc
	if loc == nil {
		loc = time.Local
	}
	term := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if term != "" && !matches(o, term) {
			continue
		}
		day := LocalDay(o.Date, loc)
		if q.From != "" && day < q.From {
			continue
		}
		if q.To != "" && day > q.To {
			continue
		}
		out = append(out, o)
	}
	return out
}

// LocalDay formats t as the YYYY-MM-DD calendar day in loc.
func LocalDay(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.DateOnly)
}

func matches(o domain.Order, term string) bool {
	if strings.Contains(strings.ToLower(o.ID), term) {
		return true
	}
	if o.Customer == nil {
		return false
	}
	return strings.Contains(strings.ToLower(o.Customer.Name), term) ||
		strings.Contains(strings.ToLower(o.Customer.Phone), term)
}
