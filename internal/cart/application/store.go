package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmehra2102/storefront/internal/cart/domain"
)

// Store is the cart of a single session.
type Store interface {
	Snapshot(ctx context.Context) (domain.Cart, error)
	AddItem(ctx context.Context, in domain.NewItem) (domain.Item, error)
	RemoveItem(ctx context.Context, id string) error
	UpdateQuantity(ctx context.Context, id string, quantity int) error
	Clear(ctx context.Context) error
	// TakeAll empties the cart and returns what it held, in one step.
	TakeAll(ctx context.Context) (domain.Cart, error)
}

type Service struct {
	log  *slog.Logger
	repo Repository
}

func NewService(log *slog.Logger, repo Repository) *Service {
	return &Service{log: log, repo: repo}
}

// ForSession returns the cart store bound to sessionID.
func (s *Service) ForSession(sessionID string) Store {
	return &sessionStore{
		log:       s.log.With("session_id", sessionID),
		repo:      s.repo,
		sessionID: sessionID,
	}
}

// Discard drops the session's cart entirely.
func (s *Service) Discard(ctx context.Context, sessionID string) error {
	return s.repo.Delete(ctx, sessionID)
}

type sessionStore struct {
	log       *slog.Logger
	repo      Repository
	sessionID string
}

func (s *sessionStore) Snapshot(ctx context.Context) (domain.Cart, error) {
	c, err := s.repo.Load(ctx, s.sessionID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart: %w", err)
	}
	return c, nil
}

func (s *sessionStore) AddItem(ctx context.Context, in domain.NewItem) (domain.Item, error) {
	var added domain.Item
	_, err := s.repo.Update(ctx, s.sessionID, func(c domain.Cart) (domain.Cart, error) {
		next, item := c.Add(in)
		added = item
		return next, nil
	})
	if err != nil {
		s.log.Error("add item failed", "product_id", in.ProductID, "err", err)
		return domain.Item{}, fmt.Errorf("add item: %w", err)
	}
	s.log.Info("item added", "item_id", added.ID, "product_id", added.ProductID, "quantity", added.Quantity)
	return added, nil
}

func (s *sessionStore) RemoveItem(ctx context.Context, id string) error {
	_, err := s.repo.Update(ctx, s.sessionID, func(c domain.Cart) (domain.Cart, error) {
		return c.Remove(id), nil
	})
	if err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	return nil
}

func (s *sessionStore) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	_, err := s.repo.Update(ctx, s.sessionID, func(c domain.Cart) (domain.Cart, error) {
		return c.SetQuantity(id, quantity), nil
	})
	if err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}
	return nil
}

func (s *sessionStore) Clear(ctx context.Context) error {
	_, err := s.repo.Update(ctx, s.sessionID, func(c domain.Cart) (domain.Cart, error) {
		return c.Clear(), nil
	})
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *sessionStore) TakeAll(ctx context.Context) (domain.Cart, error) {
	var taken domain.Cart
	_, err := s.repo.Update(ctx, s.sessionID, func(c domain.Cart) (domain.Cart, error) {
		taken = c
		return c.Clear(), nil
	})
	if err != nil {
		return domain.Cart{}, fmt.Errorf("take cart: %w", err)
	}
	return taken, nil
}
