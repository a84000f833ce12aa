package service

import (
	"context"

	"go.uber.org/zap"

	"submeter/backend/services/submeter-service/internal/storage"
)

// CalculatorService opens calculator sessions over a shared store.
type CalculatorService struct {
	store    storage.Store
	currency string
	logger   *zap.Logger
}

// NewCalculatorService builds service.
func NewCalculatorService(store storage.Store, currency string, logger *zap.Logger) *CalculatorService {
	return &CalculatorService{
		store:    store,
		currency: currency,
		logger:   logger,
	}
}

// OpenSession returns a fresh session with its previous reading seeded from the store.
func (s *CalculatorService) OpenSession(ctx context.Context) *BillCalculator {
	session := NewBillCalculator(s.store, s.currency, s.logger)
	session.Initialize(ctx)
	return session
}

// PreviousReading returns the persisted previous reading, if any.
func (s *CalculatorService) PreviousReading(ctx context.Context) (string, bool) {
	return LoadPreviousReading(ctx, s.store, s.logger)
}
