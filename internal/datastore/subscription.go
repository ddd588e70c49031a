package datastore

import (
	"context"
	"sync"

	"warungpos/backend/internal/domain"
)

// Subscription delivers remote change events until Unsubscribe is called or
// the remote feed ends. Events is closed in both cases.
type Subscription struct {
	events chan domain.ChangeEvent
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (s *Subscription) Events() <-chan domain.ChangeEvent {
	return s.events
}

// Subscribe opens the remote change feed. It returns a nil Subscription and
// a nil error when no remote store is configured.
func (a *Adapter) Subscribe(ctx context.Context) (*Subscription, error) {
	if a.remote == nil {
		return nil, nil
	}

	lctx, cancel := context.WithCancel(ctx)
	feed, err := a.remote.Listen(lctx)
	if err != nil {
		cancel()
		a.remoteFailed("listen", "", err)
		return nil, err
	}

	sub := &Subscription{
		events: make(chan domain.ChangeEvent, 16),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go a.forward(lctx, feed, sub)
	a.log.Info("subscribed to remote change feed")
	return sub, nil
}

// Unsubscribe stops the feed and waits for the forwarder to exit. A nil
// subscription is ignored.
func (a *Adapter) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	sub.once.Do(sub.cancel)
	<-sub.done
}

func (a *Adapter) forward(ctx context.Context, feed <-chan domain.ChangeEvent, sub *Subscription) {
	defer close(sub.done)
	defer close(sub.events)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-feed:
			if !ok {
				a.log.Warn("remote change feed closed")
				return
			}
			a.metrics.ChangeEvent(string(ev.Collection))
			select {
			case sub.events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}
