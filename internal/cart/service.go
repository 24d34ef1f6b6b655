package cart

import (
	"context"
	"errors"
	"time"

	"wellspring/internal/model"

	"github.com/rs/zerolog"
)

// Service is the session-level cart surface. Every method returns the cart as
// it stands after the operation; persistence failures are logged and never
// surface to the caller.
type Service interface {
	Get(ctx context.Context, session string) model.Cart
	Add(ctx context.Context, session string, item model.CartItem, quantity int) model.Cart
	UpdateQuantity(ctx context.Context, session, itemID string, quantity int) model.Cart
	Remove(ctx context.Context, session, itemID string) model.Cart
	Clear(ctx context.Context, session string) model.Cart
	Subscribe(session string) (<-chan model.CartResponse, func())
}

type service struct {
	store  Store
	hub    *Hub
	now    func() time.Time
	logger zerolog.Logger
}

// NewService creates a cart service over store, publishing changes to hub.
func NewService(store Store, hub *Hub, logger zerolog.Logger) Service {
	return &service{
		store:  store,
		hub:    hub,
		now:    time.Now,
		logger: logger.With().Str("service", "cart").Logger(),
	}
}

func (s *service) Get(ctx context.Context, session string) model.Cart {
	c, err := s.store.Load(ctx, session)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error().Err(err).Str("session", session).Msg("failed to load cart, using empty cart")
		}
		return Empty(s.now())
	}
	return *c
}

func (s *service) Add(ctx context.Context, session string, item model.CartItem, quantity int) model.Cart {
	c := AddItem(s.Get(ctx, session), item, quantity, s.now())
	s.persist(ctx, session, c)

	s.logger.Debug().
		Str("session", session).
		Str("item_id", item.ID).
		Str("item_type", string(item.Type)).
		Int("quantity", quantity).
		Msg("item added to cart")
	return c
}

func (s *service) UpdateQuantity(ctx context.Context, session, itemID string, quantity int) model.Cart {
	c := UpdateItemQuantity(s.Get(ctx, session), itemID, quantity, s.now())
	s.persist(ctx, session, c)
	return c
}

func (s *service) Remove(ctx context.Context, session, itemID string) model.Cart {
	c := RemoveItem(s.Get(ctx, session), itemID, s.now())
	s.persist(ctx, session, c)
	return c
}

func (s *service) Clear(ctx context.Context, session string) model.Cart {
	c := Clear(s.now())
	if err := s.store.Delete(ctx, session); err != nil {
		s.logger.Error().Err(err).Str("session", session).Msg("failed to delete cart")
	}
	s.hub.Publish(session, c)
	return c
}

func (s *service) Subscribe(session string) (<-chan model.CartResponse, func()) {
	return s.hub.Subscribe(session)
}

func (s *service) persist(ctx context.Context, session string, c model.Cart) {
	if err := s.store.Save(ctx, session, c); err != nil {
		s.logger.Error().Err(err).Str("session", session).Msg("failed to save cart")
	}
	s.hub.Publish(session, c)
}
