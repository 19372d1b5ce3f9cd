package cli

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"luxury-tycoon/internal/catalog"
	"luxury-tycoon/internal/economy"
	"luxury-tycoon/internal/errors"
	"luxury-tycoon/internal/models"
	"luxury-tycoon/internal/session"
	"luxury-tycoon/internal/store"
	"luxury-tycoon/pkg/utils"
)

// Simulation strategies.
const (
	StrategyIdle     = "idle"
	StrategyHold     = "hold"
	StrategyMomentum = "momentum"
)

// SimOptions controls a headless run.
type SimOptions struct {
	Ticks    int
	Strategy string
	// Daily claims the daily reward and spins before the first tick.
	Daily bool
	// Collect buys every unlocked item the primary balance can afford.
	Collect bool
}

// SimSummary is the outcome of a headless run.
type SimSummary struct {
	Session       string           `json:"session"`
	Seed          int64            `json:"seed"`
	Strategy      string           `json:"strategy"`
	Ticks         int              `json:"ticks"`
	Actions       int              `json:"actions"`
	Rejected      int              `json:"rejected"`
	StartNetWorth decimal.Decimal  `json:"start_net_worth"`
	NetWorth      decimal.Decimal  `json:"net_worth"`
	Change        decimal.Decimal  `json:"change_percent"`
	Primary       decimal.Decimal  `json:"primary"`
	Premium       decimal.Decimal  `json:"premium"`
	Portfolio     decimal.Decimal  `json:"portfolio"`
	Holdings      []models.Holding `json:"holdings"`
	Unlocked      []string         `json:"unlocked"`
	Owned         []string         `json:"owned"`
}

func (o SimOptions) validate() error {
	if o.Ticks <= 0 {
		return errors.NewValidationError("ticks", o.Ticks, "must be positive")
	}
	switch o.Strategy {
	case StrategyIdle, StrategyHold, StrategyMomentum:
		return nil
	}
	return errors.NewValidationError("strategy", o.Strategy, "must be idle, hold or momentum")
}

// simulator drives a session with a simple trading bot.
type simulator struct {
	sess     *session.Session
	opts     SimOptions
	actions  int
	rejected int
}

func (s *simulator) dispatch(ctx context.Context, a economy.Action) session.Result {
	res := s.sess.Dispatch(ctx, a)
	s.actions++
	if !res.Accepted {
		s.rejected++
	}
	return res
}

// RunSimulation advances sess opts.Ticks times, trading between ticks.
func RunSimulation(ctx context.Context, sess *session.Session, opts SimOptions) (SimSummary, error) {
	if err := opts.validate(); err != nil {
		return SimSummary{}, err
	}

	sim := &simulator{sess: sess, opts: opts}
	start := economy.NetWorth(sess.State())

	if opts.Daily {
		sim.dispatch(ctx, economy.ClaimDailyReward{})
		if _, err := sess.Spin(ctx); err == nil {
			sim.actions++
		}
	}
	if opts.Strategy == StrategyHold {
		sim.buyEqualWeight(ctx, sess.State())
	}

	for i := 0; i < opts.Ticks; i++ {
		if err := ctx.Err(); err != nil {
			return SimSummary{}, err
		}
		res := sim.dispatch(ctx, economy.Tick{})
		if !res.Accepted {
			return SimSummary{}, res.Err
		}
		if opts.Strategy == StrategyMomentum {
			sim.momentum(ctx, res.State)
		}
		if opts.Collect {
			sim.collect(ctx)
		}
	}

	return sim.summary(start), nil
}

// buyEqualWeight splits the primary balance evenly across instruments.
func (s *simulator) buyEqualWeight(ctx context.Context, state models.State) {
	if len(state.Instruments) == 0 {
		return
	}
	budget := state.Wallet.Primary.Div(decimal.NewFromInt(int64(len(state.Instruments))))
	s.buyBudget(ctx, state, state.Instruments, budget)
}

// buyBudget spends up to budget on each instrument, never more than the
// latest balance covers.
func (s *simulator) buyBudget(ctx context.Context, state models.State, insts []models.Instrument, budget decimal.Decimal) {
	for _, inst := range insts {
		shares := budget.Div(inst.Price).Floor().IntPart()
		if affordable := economy.MaxAffordableShares(state, inst.ID); shares > affordable {
			shares = affordable
		}
		if shares > 0 {
			state = s.dispatch(ctx, economy.Buy{InstrumentID: inst.ID, Shares: shares}).State
		}
	}
}

// momentum sells falling holdings and buys rising instruments it does
// not hold.
func (s *simulator) momentum(ctx context.Context, state models.State) {
	var rising []models.Instrument
	for _, inst := range state.Instruments {
		h, held := state.Portfolio[inst.ID]
		switch {
		case inst.Trend == models.TrendDown && held:
			state = s.dispatch(ctx, economy.Sell{InstrumentID: inst.ID, Shares: h.Shares}).State
		case inst.Trend == models.TrendUp && !held:
			rising = append(rising, inst)
		}
	}
	if len(rising) == 0 {
		return
	}

	budget := state.Wallet.Primary.Div(decimal.NewFromInt(int64(len(rising))))
	s.buyBudget(ctx, state, rising, budget)
}

// collect buys affordable unlocked items, cheapest first.
func (s *simulator) collect(ctx context.Context) {
	state := s.sess.State()
	for _, item := range catalog.SortedItems(state.Items) {
		if item.Owned || !item.Unlocked {
			continue
		}
		if state.Wallet.Primary.LessThan(item.PrimaryPrice) {
			break
		}
		state = s.dispatch(ctx, economy.PurchaseItem{ItemID: item.ID, Currency: models.CurrencyPrimary}).State
	}
}

func (s *simulator) summary(start decimal.Decimal) SimSummary {
	state := s.sess.State()
	portfolio, netWorth := economy.Valuation(state)

	change := decimal.Zero
	if start.IsPositive() {
		change = netWorth.Sub(start).Div(start).Mul(decimal.NewFromInt(100)).Round(2)
	}

	holdings := make([]models.Holding, 0, len(state.Portfolio))
	for _, h := range state.Portfolio {
		holdings = append(holdings, h)
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].InstrumentID < holdings[j].InstrumentID })

	var owned []string
	for _, item := range catalog.SortedItems(state.Items) {
		if item.Owned {
			owned = append(owned, item.ID)
		}
	}

	return SimSummary{
		Session:       s.sess.ID(),
		Seed:          s.sess.Seed(),
		Strategy:      s.opts.Strategy,
		Ticks:         s.opts.Ticks,
		Actions:       s.actions,
		Rejected:      s.rejected,
		StartNetWorth: start,
		NetWorth:      netWorth,
		Change:        change,
		Primary:       state.Wallet.Primary,
		Premium:       state.Wallet.Premium,
		Portfolio:     portfolio,
		Holdings:      holdings,
		Unlocked:      economy.UnlockedIDs(state),
		Owned:         owned,
	}
}

func newSimulateCmd(app *App) *cobra.Command {
	var opts SimOptions
	var seed int64
	var persist bool

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a headless game session",
		Long: `Simulate advances prices for a number of ticks with a simple trading bot
and prints the resulting wallet, holdings and collection.

Strategies:
  idle      only advance prices
  hold      buy an equal-weight basket once and hold it
  momentum  buy rising instruments, sell falling ones

The same seed and strategy always produce the same result.`,
		Example: "  tycoon simulate --ticks 500 --seed 42 --strategy momentum --collect",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config()
			if err != nil {
				return err
			}
			if err := opts.validate(); err != nil {
				return err
			}

			rtOpts := RuntimeOptions{Seed: seed}
			if !persist {
				rtOpts.Journal = store.NewMemoryJournal()
			}
			rt, err := NewRuntime(cmd.Context(), cfg, app.Logger, rtOpts)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = rt.Close(closeCtx)
			}()

			summary, err := RunSimulation(cmd.Context(), rt.Session, opts)
			if err != nil {
				return err
			}

			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(summary)
			}
			printSummary(output, rt, summary)
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.Ticks, "ticks", "n", 100, "number of price ticks")
	cmd.Flags().StringVarP(&opts.Strategy, "strategy", "s", StrategyMomentum, "trading strategy (idle, hold, momentum)")
	cmd.Flags().BoolVar(&opts.Daily, "daily", true, "claim the daily reward and spin first")
	cmd.Flags().BoolVar(&opts.Collect, "collect", false, "buy unlocked items when affordable")
	cmd.Flags().Int64Var(&seed, "seed", 0, "RNG seed (overrides economy.seed)")
	cmd.Flags().BoolVar(&persist, "persist", false, "write the run to the configured journal")
	return cmd
}

func printSummary(output *Output, rt *Runtime, s SimSummary) {
	rejected := utils.FormatQuantity(int64(s.Rejected)) + " rejected"
	if s.Rejected > 0 {
		rejected = output.Yellow(rejected)
	}
	output.Box("Simulation", []string{
		"Session:    " + s.Session,
		"Strategy:   " + s.Strategy,
		"Ticks:      " + utils.FormatQuantity(int64(s.Ticks)),
		"Actions:    " + utils.FormatQuantity(int64(s.Actions)) + " (" + rejected + ")",
		"Net worth:  " + utils.FormatCompact(s.NetWorth) + "  " + output.FormatPercent(s.Change),
		"Cash:       " + utils.FormatCurrency(s.Primary),
		"Gems:       " + utils.FormatGems(s.Premium),
		"Portfolio:  " + utils.FormatCurrency(s.Portfolio),
	})
	output.Dim("Seed %d", s.Seed)
	output.Println()

	state := rt.Session.State()
	output.Bold("Market")
	table := NewTable(output, "ID", "PRICE", "", "HISTORY", "HELD", "P&L")
	for _, inst := range state.Instruments {
		held, pnl := "", ""
		if h, ok := state.Portfolio[inst.ID]; ok {
			held = utils.FormatQuantity(h.Shares)
			pnl = output.FormatPnL(economy.HoldingPnL(state, inst.ID))
		}
		table.AddRow(inst.ID, utils.FormatCurrency(inst.Price), output.trendText(inst.Trend),
			Sparkline(inst.History), held, pnl)
	}
	table.Render()

	if len(s.Owned) > 0 {
		output.Println()
		output.Bold("Collection")
		for _, id := range s.Owned {
			output.Printf("  %s\n", state.Items[id].Name)
		}
	}
}
