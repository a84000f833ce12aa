package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"submeter/backend/services/submeter-service/internal/calculator"
	"submeter/backend/services/submeter-service/internal/models"
	"submeter/backend/services/submeter-service/internal/storage"
)

type fakeStore struct {
	mu     sync.Mutex
	values map[string]string
	writes []string
	getErr error
	setErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeStore) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.values[key] = value
	f.writes = append(f.writes, value)
	return nil
}

func (f *fakeStore) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func input(current, previous, rate string) models.ReadingInput {
	return models.ReadingInput{Current: current, Previous: previous, Rate: rate}
}

func TestSubmitSuccessPersistsCurrent(t *testing.T) {
	store := newFakeStore()
	c := NewBillCalculator(store, "PHP", zaptest.NewLogger(t))

	res := c.Submit(context.Background(), input("1500", "1200", "12.5"))
	if !res.OK || res.Amount != "3750.00" || len(res.Errors) != 0 {
		t.Fatalf("result=%+v want ok 3750.00", res)
	}
	if got := store.values[storage.PreviousReadingKey]; got != "1500" {
		t.Fatalf("persisted=%q want 1500", got)
	}

	state := c.State()
	if state.AmountToPay != "3750.00" || state.Display != "PHP 3750.00" {
		t.Fatalf("state amount=%q display=%q", state.AmountToPay, state.Display)
	}
	if len(state.Errors) != 0 {
		t.Fatalf("state errors=%v want none", state.Errors)
	}
}

func TestSubmitFailureKeepsAmount(t *testing.T) {
	store := newFakeStore()
	c := NewBillCalculator(store, "PHP", zaptest.NewLogger(t))
	ctx := context.Background()

	if res := c.Submit(ctx, input("1500", "1200", "12.5")); !res.OK {
		t.Fatalf("first submit failed: %+v", res)
	}

	res := c.Submit(ctx, input("-5", "100", "10"))
	if res.OK {
		t.Fatalf("expected failure, got %+v", res)
	}
	if got := res.Errors[models.FieldCurrent]; got != calculator.MsgCurrent {
		t.Fatalf("current error=%q want %q", got, calculator.MsgCurrent)
	}
	if res.Errors.Has(models.FieldPrevious) || res.Errors.Has(models.FieldRate) {
		t.Fatalf("unexpected errors %v", res.Errors)
	}

	state := c.State()
	if state.AmountToPay != "3750.00" {
		t.Fatalf("amount=%q want unchanged 3750.00", state.AmountToPay)
	}
	if len(state.Errors) != 1 {
		t.Fatalf("state errors=%v want one", state.Errors)
	}
	if store.writeCount() != 1 {
		t.Fatalf("writes=%d want 1", store.writeCount())
	}

	if res := c.Submit(ctx, input("1600", "1500", "10")); !res.OK {
		t.Fatalf("recovery submit failed: %+v", res)
	}
	if state := c.State(); len(state.Errors) != 0 || state.AmountToPay != "1000.00" {
		t.Fatalf("state after success=%+v", state)
	}
}

func TestSubmitAllEmptyReportsEveryField(t *testing.T) {
	c := NewBillCalculator(newFakeStore(), "", zaptest.NewLogger(t))

	res := c.Submit(context.Background(), input("", "", ""))
	if res.OK {
		t.Fatalf("expected failure")
	}
	for _, f := range models.Fields {
		if got, want := res.Errors[f], calculator.Message(f); got != want {
			t.Fatalf("errors[%s]=%q want %q", f, got, want)
		}
	}
	if got := c.State().AmountToPay; got != models.DefaultAmount {
		t.Fatalf("amount=%q want %q", got, models.DefaultAmount)
	}
}

func TestSubmitNegativeAmountPassesThrough(t *testing.T) {
	c := NewBillCalculator(newFakeStore(), "", zaptest.NewLogger(t))
	res := c.Submit(context.Background(), input("100", "150", "10"))
	if !res.OK || res.Amount != "-500.00" {
		t.Fatalf("result=%+v want ok -500.00", res)
	}
}

func TestSubmitIsIdempotent(t *testing.T) {
	store := newFakeStore()
	c := NewBillCalculator(store, "", zaptest.NewLogger(t))
	ctx := context.Background()

	first := c.Submit(ctx, input("200.555", "100", "1"))
	second := c.Submit(ctx, input("200.555", "100", "1"))

	if first.Amount != "100.56" || second.Amount != first.Amount {
		t.Fatalf("amounts=%q,%q want 100.56 twice", first.Amount, second.Amount)
	}
	if len(store.writes) != 2 || store.writes[0] != store.writes[1] || store.writes[0] != "200.555" {
		t.Fatalf("writes=%v want [200.555 200.555]", store.writes)
	}
}

func TestSubmitSurvivesStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.setErr = errors.New("disk full")
	c := NewBillCalculator(store, "", zaptest.NewLogger(t))

	res := c.Submit(context.Background(), input("10", "5", "2"))
	if !res.OK || res.Amount != "10.00" {
		t.Fatalf("result=%+v want ok 10.00", res)
	}
}

func TestResetClearsEverythingButStore(t *testing.T) {
	store := newFakeStore()
	c := NewBillCalculator(store, "PHP", zaptest.NewLogger(t))
	ctx := context.Background()

	c.Submit(ctx, input("1500", "1200", "12.5"))
	c.Submit(ctx, input("x", "1200", "12.5"))
	c.Reset()

	state := c.State()
	if state.Input != (models.ReadingInput{}) {
		t.Fatalf("input=%+v want empty", state.Input)
	}
	if state.AmountToPay != "0" || state.Display != "PHP 0" {
		t.Fatalf("amount=%q display=%q", state.AmountToPay, state.Display)
	}
	if len(state.Errors) != 0 {
		t.Fatalf("errors=%v want none", state.Errors)
	}
	if got := store.values[storage.PreviousReadingKey]; got != "1500" {
		t.Fatalf("persisted=%q want 1500 kept", got)
	}
}

func TestInitializeSeedsPreviousFromLastSession(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	first := NewBillCalculator(store, "", zaptest.NewLogger(t))
	if seed := first.Initialize(ctx); seed != "" {
		t.Fatalf("seed=%q want empty on fresh store", seed)
	}
	if res := first.Submit(ctx, input("1500", "1200", "12.5")); !res.OK {
		t.Fatalf("submit failed: %+v", res)
	}

	next := NewBillCalculator(store, "", zaptest.NewLogger(t))
	if seed := next.Initialize(ctx); seed != "1500" {
		t.Fatalf("seed=%q want 1500", seed)
	}
	state := next.State()
	if state.Input.Previous != "1500" || state.Input.Current != "" || state.Input.Rate != "" {
		t.Fatalf("input=%+v want only previous seeded", state.Input)
	}
}

func TestInitializeIgnoresEmptyAndFailingStore(t *testing.T) {
	ctx := context.Background()

	empty := newFakeStore()
	empty.values[storage.PreviousReadingKey] = ""
	c := NewBillCalculator(empty, "", zaptest.NewLogger(t))
	if seed := c.Initialize(ctx); seed != "" || c.State().Input.Previous != "" {
		t.Fatalf("empty stored value should not seed, got %q", seed)
	}

	broken := newFakeStore()
	broken.getErr = errors.New("timeout")
	c = NewBillCalculator(broken, "", zaptest.NewLogger(t))
	if seed := c.Initialize(ctx); seed != "" {
		t.Fatalf("failing store should not seed, got %q", seed)
	}
}

func TestEditThenSubmitCurrent(t *testing.T) {
	c := NewBillCalculator(newFakeStore(), "", zaptest.NewLogger(t))

	if c.Edit(models.Field("kwh"), "1") {
		t.Fatalf("unknown field accepted")
	}
	c.Edit(models.FieldCurrent, "12")
	c.Edit(models.FieldPrevious, "2")
	c.Edit(models.FieldRate, "1.5")

	if got := c.State().AmountToPay; got != "0" {
		t.Fatalf("edit recomputed amount: %q", got)
	}

	res := c.SubmitCurrent(context.Background())
	if !res.OK || res.Amount != "15.00" {
		t.Fatalf("result=%+v want ok 15.00", res)
	}
}

func TestCalculatorServiceOpenSession(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()
	if err := store.Set(ctx, storage.PreviousReadingKey, "820.5"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	svc := NewCalculatorService(store, "PHP", zaptest.NewLogger(t))
	session := svc.OpenSession(ctx)
	if got := session.State().Input.Previous; got != "820.5" {
		t.Fatalf("previous=%q want 820.5", got)
	}
	if v, ok := svc.PreviousReading(ctx); !ok || v != "820.5" {
		t.Fatalf("PreviousReading=(%q,%v)", v, ok)
	}
}
