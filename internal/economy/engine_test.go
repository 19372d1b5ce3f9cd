package economy

import (
	"math"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"luxury-tycoon/internal/catalog"
	"luxury-tycoon/internal/errors"
	"luxury-tycoon/internal/models"
)

const testCatalog = `
instruments:
  - id: x
    name: Instrument X
    ticker: XXX
    price: "100"
  - id: y
    name: Instrument Y
    ticker: YYY
    price: "50"
items:
  - id: cheap
    name: Cheap Watch
    category: watches
    primary_price: "1000"
    premium_price: "10"
    unlocked: true
  - id: mid
    name: Mid Car
    category: cars
    primary_price: "15000"
    premium_price: "150"
  - id: luxe
    name: Luxe Yacht
    category: yachts
    primary_price: "100000"
    premium_price: "1000"
`

// seqRand replays a fixed sequence of draws.
type seqRand struct {
	vals []float64
	i    int
}

func (r *seqRand) Float64() float64 {
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cat, err := catalog.Parse([]byte(testCatalog))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	e, err := New(DefaultRules(), cat)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func TestEndToEndScenario(t *testing.T) {
	e := newTestEngine(t)
	s := e.Initial()

	if !s.Wallet.Primary.Equal(d("10000")) {
		t.Fatalf("starting primary = %s, want 10000", s.Wallet.Primary)
	}

	s = e.Apply(s, Buy{InstrumentID: "x", Shares: 10, UnitPrice: d("100")})
	if !s.Wallet.Primary.Equal(d("9000")) {
		t.Fatalf("primary after buy = %s, want 9000", s.Wallet.Primary)
	}
	h := s.Portfolio["x"]
	if h.Shares != 10 || !h.AverageCost.Equal(d("100")) {
		t.Fatalf("holding after buy = %+v, want {10, 100}", h)
	}

	// Two ticks worth of draws: instrument x gets mild-up 0.01, y the same.
	s = e.Apply(s, Tick{Rand: &seqRand{vals: []float64{0.1, 0.4}}})
	x, _ := s.Instrument("x")
	if !x.Price.Equal(d("101.10")) {
		t.Fatalf("price after tick = %s, want 101.10", x.Price)
	}
	if x.Trend != models.TrendUp {
		t.Errorf("trend after tick = %s, want up", x.Trend)
	}

	s = e.Apply(s, Sell{InstrumentID: "x", Shares: 10, UnitPrice: x.Price})
	if !s.Wallet.Primary.Equal(d("10011.00")) {
		t.Fatalf("primary after sell = %s, want 10011.00", s.Wallet.Primary)
	}
	if _, ok := s.Portfolio["x"]; ok {
		t.Fatalf("holding should be removed after selling every share")
	}
}

func TestAverageCost(t *testing.T) {
	e := newTestEngine(t)
	s := e.Initial()

	s = e.Apply(s, Buy{InstrumentID: "x", Shares: 10, UnitPrice: d("100")})
	s = e.Apply(s, Buy{InstrumentID: "x", Shares: 10, UnitPrice: d("200")})

	h := s.Portfolio["x"]
	if h.Shares != 20 {
		t.Errorf("shares = %d, want 20", h.Shares)
	}
	if !h.AverageCost.Equal(d("150")) {
		t.Errorf("average cost = %s, want 150", h.AverageCost)
	}
	if !s.Wallet.Primary.Equal(d("7000")) {
		t.Errorf("primary = %s, want 7000", s.Wallet.Primary)
	}
}

func TestPartialSellKeepsCostBasis(t *testing.T) {
	e := newTestEngine(t)
	s := e.Initial()

	s = e.Apply(s, Buy{InstrumentID: "y", Shares: 4, UnitPrice: d("50")})
	s = e.Apply(s, Sell{InstrumentID: "y", Shares: 1, UnitPrice: d("80")})

	h := s.Portfolio["y"]
	if h.Shares != 3 || !h.AverageCost.Equal(d("50")) {
		t.Fatalf("holding = %+v, want 3 shares at 50", h)
	}

	// Selling out and buying back starts a fresh cost basis.
	s = e.Apply(s, Sell{InstrumentID: "y", Shares: 3, UnitPrice: d("60")})
	s = e.Apply(s, Buy{InstrumentID: "y", Shares: 2, UnitPrice: d("70")})
	if h := s.Portfolio["y"]; h.Shares != 2 || !h.AverageCost.Equal(d("70")) {
		t.Fatalf("holding after rebuy = %+v, want 2 shares at 70", h)
	}
}

func TestHardRejectionsLeaveStateUnchanged(t *testing.T) {
	e := newTestEngine(t)
	base := e.Apply(e.Initial(), Buy{InstrumentID: "x", Shares: 5, UnitPrice: d("100")})
	base = e.Apply(base, ClaimDailyReward{})

	tests := []struct {
		desc   string
		action Action
		want   error
	}{
		{"buy zero shares", Buy{InstrumentID: "x", Shares: 0, UnitPrice: d("100")}, errors.ErrInvalidAmount},
		{"buy negative shares", Buy{InstrumentID: "x", Shares: -3, UnitPrice: d("100")}, errors.ErrInvalidAmount},
		{"buy unknown instrument", Buy{InstrumentID: "nope", Shares: 1, UnitPrice: d("1")}, errors.ErrInstrumentNotFound},
		{"buy beyond balance", Buy{InstrumentID: "x", Shares: 1000, UnitPrice: d("100")}, errors.ErrInsufficientFunds},
		{"sell more than held", Sell{InstrumentID: "x", Shares: 6, UnitPrice: d("100")}, errors.ErrInsufficientShares},
		{"sell without holding", Sell{InstrumentID: "y", Shares: 1, UnitPrice: d("50")}, errors.ErrInsufficientShares},
		{"sell zero", Sell{InstrumentID: "x", Shares: 0, UnitPrice: d("100")}, errors.ErrInvalidAmount},
		{"purchase locked item", PurchaseItem{ItemID: "luxe", Currency: models.CurrencyPrimary}, errors.ErrItemLocked},
		{"purchase unknown item", PurchaseItem{ItemID: "ghost", Currency: models.CurrencyPrimary}, errors.ErrItemNotFound},
		{"purchase bad currency", PurchaseItem{ItemID: "cheap", Currency: "gold"}, errors.ErrInvalidCurrency},
		{"purchase premium beyond balance", PurchaseItem{ItemID: "mid", Currency: models.CurrencyPremium}, errors.ErrInsufficientFunds},
		{"claim twice", ClaimDailyReward{}, errors.ErrRewardClaimed},
		{"add zero primary", AddPrimary{Amount: decimal.Zero}, errors.ErrInvalidAmount},
		{"add negative premium", AddPremium{Amount: d("-5")}, errors.ErrInvalidAmount},
		{"spend negative premium", SpendPremium{Amount: d("-5")}, errors.ErrInvalidAmount},
		{"tick without rng", Tick{}, errors.ErrMissingRandomSource},
		{"unlock unknown item", Unlock{ItemID: "ghost"}, errors.ErrItemNotFound},
		{"spin with negative prize", ResolveDailySpin{Currency: models.CurrencyPrimary, Amount: d("-1")}, errors.ErrInvalidAmount},
	}

	for _, test := range tests {
		snapshot := base.Clone()

		err := e.Check(base, test.action)
		if !errors.Is(err, test.want) {
			t.Errorf("Check(%s): got %v, want %v", test.desc, err, test.want)
		}
		var rej *errors.RejectionError
		if !errors.As(err, &rej) {
			t.Errorf("Check(%s): error %v is not a RejectionError", test.desc, err)
		}

		got := e.Apply(base, test.action)
		if !reflect.DeepEqual(got, snapshot) {
			t.Errorf("Apply(%s): state changed on rejection", test.desc)
		}
	}
}

func TestBuyRejectsShareOverflow(t *testing.T) {
	e := newTestEngine(t)
	s := e.Apply(e.Initial(), AddPrimary{Amount: d("1e30")})
	s = e.Apply(s, Buy{InstrumentID: "x", Shares: math.MaxInt64, UnitPrice: d("1")})
	if got := s.Portfolio["x"].Shares; got != math.MaxInt64 {
		t.Fatalf("shares after first buy: got %d, want %d", got, int64(math.MaxInt64))
	}

	snapshot := s.Clone()
	err := e.Check(s, Buy{InstrumentID: "x", Shares: 10, UnitPrice: d("1")})
	if !errors.Is(err, errors.ErrInvalidAmount) {
		t.Errorf("Check(overflowing buy): got %v, want %v", err, errors.ErrInvalidAmount)
	}

	got := e.Apply(s, Buy{InstrumentID: "x", Shares: 10, UnitPrice: d("1")})
	if !reflect.DeepEqual(got, snapshot) {
		t.Errorf("Apply(overflowing buy): state changed on rejection")
	}
	h := got.Portfolio["x"]
	if h.Shares < 0 || h.AverageCost.IsNegative() {
		t.Errorf("holding went negative: shares=%d avg=%s", h.Shares, h.AverageCost)
	}
}

func TestResolveDailySpinZeroPrize(t *testing.T) {
	e := newTestEngine(t)
	s := e.Initial()
	before := s.Wallet.Primary

	s = e.Apply(s, ResolveDailySpin{Currency: models.CurrencyPrimary, Amount: decimal.Zero, Date: "2026-10-15"})
	if !s.Wallet.Primary.Equal(before) {
		t.Errorf("primary: got %s, want %s", s.Wallet.Primary, before)
	}
	if !s.Flags.DailySpinUsed || s.Flags.LastSpinDate != "2026-10-15" {
		t.Errorf("empty prize did not consume the spin: %+v", s.Flags)
	}
}

func TestApplyNilAction(t *testing.T) {
	e := newTestEngine(t)
	s := e.Initial()
	if got := e.Apply(s, nil); !reflect.DeepEqual(got, s) {
		t.Errorf("Apply(nil) changed state")
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	e := newTestEngine(t)
	s := e.Apply(e.Initial(), Buy{InstrumentID: "x", Shares: 1, UnitPrice: d("100")})
	before := s.Clone()

	_ = e.Apply(s, Buy{InstrumentID: "x", Shares: 2, UnitPrice: d("100")})
	_ = e.Apply(s, Sell{InstrumentID: "x", Shares: 1, UnitPrice: d("100")})
	_ = e.Apply(s, Tick{Rand: &seqRand{vals: []float64{0.99, 0.99}}})
	_ = e.Apply(s, AddPrimary{Amount: d("100000")})

	if !reflect.DeepEqual(s, before) {
		t.Errorf("input state was mutated by Apply")
	}
}

func TestSpendPremiumClamps(t *testing.T) {
	e := newTestEngine(t)
	s := e.Initial()

	s = e.Apply(s, SpendPremium{Amount: d("10")})
	if !s.Wallet.Premium.Equal(d("15")) {
		t.Fatalf("premium = %s, want 15", s.Wallet.Premium)
	}

	s = e.Apply(s, SpendPremium{Amount: d("1000")})
	if !s.Wallet.Premium.IsZero() {
		t.Fatalf("premium = %s, want 0", s.Wallet.Premium)
	}

	// Spending from an empty balance is still accepted.
	before := s.Version
	s = e.Apply(s, SpendPremium{Amount: d("1")})
	if !s.Wallet.Premium.IsZero() || s.Version != before+1 {
		t.Fatalf("spend on empty balance: premium %s version %d", s.Wallet.Premium, s.Version)
	}
}

func TestDailyRewardIsIdempotent(t *testing.T) {
	e := newTestEngine(t)
	s := e.Initial()

	s = e.Apply(s, ClaimDailyReward{})
	s = e.Apply(s, ClaimDailyReward{})

	if !s.Wallet.Primary.Equal(d("11000")) {
		t.Errorf("primary = %s, want 11000", s.Wallet.Primary)
	}
	if !s.Flags.DailyRewardClaimed {
		t.Errorf("reward flag not set")
	}
	if s.Flags.LoginStreak != 2 {
		t.Errorf("login streak = %d, want 2", s.Flags.LoginStreak)
	}
}

func TestResolveDailySpin(t *testing.T) {
	e := newTestEngine(t)
	s := e.Initial()

	s = e.Apply(s, ResolveDailySpin{Currency: models.CurrencyPremium, Amount: d("5"), Date: "2026-10-15"})
	if !s.Wallet.Premium.Equal(d("30")) {
		t.Errorf("premium = %s, want 30", s.Wallet.Premium)
	}
	if !s.Flags.DailySpinUsed || s.Flags.LastSpinDate != "2026-10-15" {
		t.Errorf("flags = %+v", s.Flags)
	}
	if CanSpin(s, "2026-10-15") {
		t.Errorf("CanSpin on the same day should be false")
	}
	if !CanSpin(s, "2026-10-16") {
		t.Errorf("CanSpin on the next day should be true")
	}

	// The engine itself does not gate repeat spins.
	s = e.Apply(s, ResolveDailySpin{Currency: models.CurrencyPrimary, Amount: d("250"), Date: "2026-10-15"})
	if !s.Wallet.Primary.Equal(d("10250")) {
		t.Errorf("primary = %s, want 10250", s.Wallet.Primary)
	}
}

func TestPurchaseItem(t *testing.T) {
	e := newTestEngine(t)
	s := e.Initial()

	s = e.Apply(s, PurchaseItem{ItemID: "cheap", Currency: models.CurrencyPrimary})
	item := s.Items["cheap"]
	if !item.Owned {
		t.Fatalf("item not owned after purchase")
	}
	if !s.Wallet.Primary.Equal(d("9000")) {
		t.Errorf("primary = %s, want 9000", s.Wallet.Primary)
	}
	if StatusOf(item) != StatusOwned {
		t.Errorf("status = %s, want owned", StatusOf(item))
	}

	err := e.Check(s, PurchaseItem{ItemID: "cheap", Currency: models.CurrencyPremium})
	if !errors.Is(err, errors.ErrItemOwned) {
		t.Errorf("second purchase: got %v, want ErrItemOwned", err)
	}
}

func TestPurchaseItemWithPremium(t *testing.T) {
	e := newTestEngine(t)
	s := e.Initial()

	s = e.Apply(s, PurchaseItem{ItemID: "cheap", Currency: models.CurrencyPremium})
	if !s.Wallet.Premium.Equal(d("15")) {
		t.Errorf("premium = %s, want 15", s.Wallet.Premium)
	}
	if !s.Wallet.Primary.Equal(d("10000")) {
		t.Errorf("primary = %s, want 10000", s.Wallet.Primary)
	}
}

func TestUnlockAutoEvaluation(t *testing.T) {
	e := newTestEngine(t)
	s := e.Initial()

	if s.Items["mid"].Unlocked {
		t.Fatalf("mid should start locked")
	}

	// 10000 + 1 >= 0.5 × 15000
	s = e.Apply(s, AddPrimary{Amount: d("1")})
	if !s.Items["mid"].Unlocked {
		t.Fatalf("mid should unlock once primary reaches half its price")
	}
	if s.Items["luxe"].Unlocked {
		t.Fatalf("luxe should stay locked")
	}

	// Dropping below the threshold never relocks.
	s = e.Apply(s, Buy{InstrumentID: "x", Shares: 90, UnitPrice: d("100")})
	if !s.Items["mid"].Unlocked {
		t.Fatalf("mid relocked after spending")
	}

	// Premium credits are not a wealth trigger for primary thresholds.
	s = e.Apply(s, AddPremium{Amount: d("1000000")})
	if s.Items["luxe"].Unlocked {
		t.Fatalf("luxe unlocked by premium currency")
	}

	s = e.Apply(s, AddPrimary{Amount: d("49000")})
	if !s.Items["luxe"].Unlocked {
		t.Fatalf("luxe should unlock at 50000 primary")
	}
}

func TestUnlockActionIsIdempotent(t *testing.T) {
	e := newTestEngine(t)
	s := e.Initial()

	s = e.Apply(s, Unlock{ItemID: "luxe"})
	if !s.Items["luxe"].Unlocked {
		t.Fatalf("luxe not unlocked")
	}
	again := e.Apply(s, Unlock{ItemID: "luxe"})
	if !reflect.DeepEqual(again, s) {
		t.Errorf("second unlock changed state")
	}

	want := []string{"cheap", "luxe"}
	if got := UnlockedIDs(s); !reflect.DeepEqual(got, want) {
		t.Errorf("UnlockedIDs = %v, want %v", got, want)
	}
}

func TestCompleteTutorial(t *testing.T) {
	e := newTestEngine(t)
	s := e.Apply(e.Initial(), CompleteTutorial{})
	if !s.Flags.TutorialCompleted {
		t.Fatalf("tutorial flag not set")
	}
	if again := e.Apply(s, CompleteTutorial{}); again.Version != s.Version {
		t.Errorf("completing twice bumped version")
	}
}

func TestResetRestoresInitialState(t *testing.T) {
	e := newTestEngine(t)
	s := e.Initial()

	s = e.Apply(s, Buy{InstrumentID: "x", Shares: 10, UnitPrice: d("100")})
	s = e.Apply(s, ClaimDailyReward{})
	s = e.Apply(s, ResolveDailySpin{Currency: models.CurrencyPremium, Amount: d("5"), Date: "2026-10-15"})
	s = e.Apply(s, AddPrimary{Amount: d("90000")})
	s = e.Apply(s, PurchaseItem{ItemID: "mid", Currency: models.CurrencyPrimary})
	s = e.Apply(s, CompleteTutorial{})
	s = e.Apply(s, Tick{Rand: &seqRand{vals: []float64{0.97, 0.9}}})

	s = e.Apply(s, Reset{})

	want := e.Initial()
	want.Version = s.Version
	if !reflect.DeepEqual(s, want) {
		t.Errorf("reset state differs from initial state:\ngot  %+v\nwant %+v", s, want)
	}
}

func TestVersionAdvancesOnlyOnChange(t *testing.T) {
	e := newTestEngine(t)
	s := e.Initial()

	s = e.Apply(s, AddPrimary{Amount: d("1")})
	if s.Version != 1 {
		t.Errorf("version = %d, want 1", s.Version)
	}
	s = e.Apply(s, Buy{InstrumentID: "nope", Shares: 1, UnitPrice: d("1")})
	if s.Version != 1 {
		t.Errorf("version after rejection = %d, want 1", s.Version)
	}
}

func TestNewRejectsInvalidRules(t *testing.T) {
	cat, err := catalog.Parse([]byte(testCatalog))
	if err != nil {
		t.Fatal(err)
	}

	rules := DefaultRules()
	rules.UnlockThresholdFraction = d("1.5")
	if _, err := New(rules, cat); !errors.Is(err, errors.ErrConfigInvalid) {
		t.Errorf("New with fraction 1.5: got %v, want ErrConfigInvalid", err)
	}

	rules = DefaultRules()
	rules.HistoryLength = 1
	if _, err := New(rules, cat); err == nil {
		t.Errorf("New with history length 1 should fail")
	}

	if _, err := New(DefaultRules(), nil); !errors.Is(err, errors.ErrCatalogInvalid) {
		t.Errorf("New with nil catalog: got %v", err)
	}
}
