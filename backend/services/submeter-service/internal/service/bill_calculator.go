package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"submeter/backend/services/submeter-service/internal/calculator"
	"submeter/backend/services/submeter-service/internal/metrics"
	"submeter/backend/services/submeter-service/internal/models"
	"submeter/backend/services/submeter-service/internal/storage"
)

// Form copy shown with every state snapshot.
const (
	FormTitle       = "Submeter Calculator"
	FormDescription = "Calculate the amount to pay based on your current and previous meter readings."
)

// BillCalculator is one calculator form session: raw inputs, the last amount to pay and the
// errors of the last submission.
type BillCalculator struct {
	store    storage.Store
	currency string
	logger   *zap.Logger

	mu     sync.Mutex
	input  models.ReadingInput
	amount string
	errors models.FieldErrors
}

// NewBillCalculator builds a session in its initial state. Call Initialize to seed the
// previous reading from the store.
func NewBillCalculator(store storage.Store, currency string, logger *zap.Logger) *BillCalculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BillCalculator{
		store:    store,
		currency: currency,
		logger:   logger,
		amount:   models.DefaultAmount,
	}
}

// Initialize reads the persisted previous reading once and pre-fills the previous field
// with it. An absent or empty value leaves the field untouched. It returns the seed.
func (c *BillCalculator) Initialize(ctx context.Context) string {
	seed, ok := LoadPreviousReading(ctx, c.store, c.logger)
	if !ok {
		return ""
	}

	c.mu.Lock()
	c.input.Previous = seed
	c.mu.Unlock()
	return seed
}

// Edit stores a raw keystroke value without validating it.
func (c *BillCalculator) Edit(field models.Field, value string) bool {
	if !field.Valid() {
		return false
	}
	c.mu.Lock()
	c.input = c.input.With(field, value)
	c.mu.Unlock()
	return true
}

// Submit validates raw and either recomputes the amount to pay (persisting current as the
// next previous reading) or records the field errors, leaving the amount untouched.
func (c *BillCalculator) Submit(ctx context.Context, raw models.ReadingInput) models.Result {
	reading, amount, errs := calculator.Calculate(raw)

	c.mu.Lock()
	c.input = raw
	if len(errs) > 0 {
		c.errors = errs
		c.mu.Unlock()

		failed := make([]string, 0, len(errs))
		for _, f := range models.Fields {
			if errs.Has(f) {
				failed = append(failed, string(f))
			}
		}
		metrics.ObserveSubmission(metrics.OutcomeInvalid, failed...)
		c.logger.Debug("calculator submission rejected", zap.Strings("fields", failed))
		return models.Result{OK: false, Errors: errs.Clone()}
	}
	c.amount = amount
	c.errors = nil
	c.mu.Unlock()

	metrics.ObserveSubmission(metrics.OutcomeSuccess)
	c.persist(ctx, calculator.CanonicalReading(reading.Current))

	c.logger.Info("bill calculated",
		zap.Float64("current", reading.Current),
		zap.Float64("previous", reading.Previous),
		zap.Float64("rate", reading.Rate),
		zap.String("amount", amount),
	)
	return models.Result{OK: true, Amount: amount}
}

// SubmitCurrent submits the inputs accumulated through Edit.
func (c *BillCalculator) SubmitCurrent(ctx context.Context) models.Result {
	c.mu.Lock()
	raw := c.input
	c.mu.Unlock()
	return c.Submit(ctx, raw)
}

// Reset clears the inputs, the amount and the errors. The persisted reading is kept.
func (c *BillCalculator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = models.ReadingInput{}
	c.amount = models.DefaultAmount
	c.errors = nil
}

// State returns a snapshot of the session.
func (c *BillCalculator) State() models.FormState {
	c.mu.Lock()
	defer c.mu.Unlock()

	errs := c.errors.Clone()
	if errs == nil {
		errs = models.FieldErrors{}
	}
	return models.FormState{
		Title:       FormTitle,
		Description: FormDescription,
		Input:       c.input,
		AmountToPay: c.amount,
		Display:     calculator.DisplayAmount(c.currency, c.amount),
		Errors:      errs,
	}
}

func (c *BillCalculator) persist(ctx context.Context, current string) {
	if c.store == nil {
		return
	}
	if err := c.store.Set(ctx, storage.PreviousReadingKey, current); err != nil {
		metrics.ObserveStoreError("set")
		c.logger.Warn("failed to persist previous reading", zap.String("value", current), zap.Error(err))
	}
}

// LoadPreviousReading reads the persisted previous reading. Failures are logged and
// reported as absent.
func LoadPreviousReading(ctx context.Context, store storage.Store, logger *zap.Logger) (string, bool) {
	if store == nil {
		return "", false
	}
	v, ok, err := store.Get(ctx, storage.PreviousReadingKey)
	if err != nil {
		metrics.ObserveStoreError("get")
		if logger != nil {
			logger.Warn("failed to load previous reading", zap.Error(err))
		}
		return "", false
	}
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
