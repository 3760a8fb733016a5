package order

import (
	"context"

	"github.com/rs/zerolog"
)

type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log.With().Str("component", "order").Logger()}
}

// PlaceOrder validates the recipient and commits the user's cart as a new
// order. ErrValidation and ErrEmptyCart leave everything untouched.
func (s *Service) PlaceOrder(ctx context.Context, userID int64, rcpt Recipient) (*Order, error) {
	if err := rcpt.Validate(); err != nil {
		return nil, err
	}
	o, err := s.repo.Commit(ctx, userID, rcpt)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Int64("order_id", o.ID).
		Int64("user_id", userID).
		Int("items", len(o.Items)).
		Str("total", o.Total.StringFixed(2)).
		Msg("order placed")
	return o, nil
}

func (s *Service) Get(ctx context.Context, orderID, userID int64) (*Order, error) {
	return s.repo.GetForUser(ctx, orderID, userID)
}

func (s *Service) History(ctx context.Context, userID int64) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID)
}
