package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmehra2102/storefront/internal/cart/domain"
)

type entry struct {
	cart    domain.Cart
	touched time.Time
}

// Repository keeps session carts in process memory. Sessions idle for longer
// than ttl are treated as ended.
type Repository struct {
	log *slog.Logger
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]entry
}

func NewRepository(log *slog.Logger, ttl time.Duration) *Repository {
	return &Repository{
		log:      log,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]entry),
	}
}

func (r *Repository) Load(_ context.Context, sessionID string) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current(sessionID), nil
}

func (r *Repository) Update(_ context.Context, sessionID string, fn func(domain.Cart) (domain.Cart, error)) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := fn(r.current(sessionID))
	if err != nil {
		return domain.Cart{}, err
	}
	r.sessions[sessionID] = entry{cart: next, touched: r.now()}
	return next, nil
}

func (r *Repository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}

// current must be called with mu held.
func (r *Repository) current(sessionID string) domain.Cart {
	e, ok := r.sessions[sessionID]
	if !ok || r.expired(e) {
		delete(r.sessions, sessionID)
		return domain.New()
	}
	return e.cart
}

func (r *Repository) expired(e entry) bool {
	return r.ttl > 0 && r.now().Sub(e.touched) > r.ttl
}

// Sweep drops every expired session and returns how many were removed.
func (r *Repository) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, e := range r.sessions {
		if r.expired(e) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps expired sessions every interval until ctx is done.
func (r *Repository) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Sweep(); n > 0 {
				r.log.Info("expired cart sessions dropped", "count", n)
			}
		}
	}
}
