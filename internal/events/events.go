package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"threadmerge/internal/models"

	"github.com/google/uuid"
)

// ThreadMerged is emitted once a committed merge is durable.
type ThreadMerged struct {
	ID             uuid.UUID
	Actor          *models.User
	MergedPosts    []*models.Post
	Thread         *models.Thread
	DeletedThreads []*models.Thread
	MergedAt       time.Time
}

func NewThreadMerged(actor *models.User, mergedPosts []*models.Post, thread *models.Thread, deleted []*models.Thread) ThreadMerged {
	return ThreadMerged{
		ID:             uuid.New(),
		Actor:          actor,
		MergedPosts:    mergedPosts,
		Thread:         thread,
		DeletedThreads: deleted,
		MergedAt:       time.Now().UTC(),
	}
}

type Listener interface {
	HandleThreadMerged(ctx context.Context, event ThreadMerged) error
}

type ListenerFunc func(ctx context.Context, event ThreadMerged) error

func (f ListenerFunc) HandleThreadMerged(ctx context.Context, event ThreadMerged) error {
	return f(ctx, event)
}

// Dispatcher delivers events synchronously to every listener in subscription
// order. A failing listener does not stop delivery to the rest.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners []Listener
}

func NewDispatcher(listeners ...Listener) *Dispatcher {
	return &Dispatcher{listeners: listeners}
}

func (d *Dispatcher) Subscribe(l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, l)
}

func (d *Dispatcher) DispatchThreadMerged(ctx context.Context, event ThreadMerged) error {
	d.mu.RLock()
	listeners := make([]Listener, len(d.listeners))
	copy(listeners, d.listeners)
	d.mu.RUnlock()

	var errs []error
	for i, l := range listeners {
		if err := l.HandleThreadMerged(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("listener %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
