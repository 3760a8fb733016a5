package cart

import (
	"context"

	"github.com/shopspring/decimal"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Contents returns the user's cart and its total.
func (s *Service) Contents(ctx context.Context, userID int64) ([]Item, decimal.Decimal, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return items, Total(items), nil
}

func (s *Service) AddItem(ctx context.Context, userID, productID int64) error {
	return s.repo.Increment(ctx, userID, productID)
}

// SetQuantity sets the row's quantity; anything non-positive removes it.
func (s *Service) SetQuantity(ctx context.Context, userID, itemID int64, qty int) error {
	if qty <= 0 {
		return s.repo.Delete(ctx, userID, itemID)
	}
	return s.repo.SetQuantity(ctx, userID, itemID, qty)
}

func (s *Service) RemoveItem(ctx context.Context, userID, itemID int64) error {
	return s.repo.Delete(ctx, userID, itemID)
}
