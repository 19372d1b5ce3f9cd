package cli

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"luxury-tycoon/internal/catalog"
	"luxury-tycoon/internal/config"
	"luxury-tycoon/internal/economy"
	"luxury-tycoon/internal/logging"
	"luxury-tycoon/internal/models"
	"luxury-tycoon/internal/session"
	"luxury-tycoon/internal/store"
	"luxury-tycoon/internal/stream"
)

// Runtime is a fully wired game: engine, session, hub and journal.
type Runtime struct {
	Catalog *catalog.Catalog
	Engine  *economy.Engine
	Hub     *stream.Hub
	Journal store.Journal
	Session *session.Session

	logger  zerolog.Logger
	unlocks *stream.UnlockWatcher
}

// RuntimeOptions overrides parts of the configuration for one run.
type RuntimeOptions struct {
	// Seed overrides economy.seed when non-zero.
	Seed int64
	// Journal replaces the configured journal when non-nil.
	Journal store.Journal
}

// loadCatalog returns the configured catalog or the embedded one.
func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Economy.CatalogPath != "" {
		return catalog.Load(cfg.Economy.CatalogPath)
	}
	return catalog.Default()
}

// newWheel converts the configured prizes into a spin wheel.
func newWheel(prizes []config.SpinPrize) (*session.Wheel, error) {
	out := make([]session.Prize, 0, len(prizes))
	for _, p := range prizes {
		out = append(out, session.Prize{
			Currency: models.Currency(p.Currency),
			Amount:   decimal.NewFromFloat(p.Amount),
			Weight:   p.Weight,
		})
	}
	return session.NewWheel(out)
}

// openJournal opens the SQLite journal when enabled and the in-memory one
// otherwise.
func openJournal(cfg *config.Config) (store.Journal, error) {
	if !cfg.Store.Enabled {
		return store.NewMemoryJournal(), nil
	}
	return store.NewSQLiteJournal(cfg.Store.Path)
}

// NewRuntime wires a game from configuration and starts the hub.
func NewRuntime(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts RuntimeOptions) (*Runtime, error) {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}
	rules, err := cfg.Economy.Rules()
	if err != nil {
		return nil, err
	}
	eng, err := economy.New(rules, cat)
	if err != nil {
		return nil, err
	}
	wheel, err := newWheel(cfg.Spin.Prizes)
	if err != nil {
		return nil, err
	}

	journal := opts.Journal
	if journal == nil {
		if journal, err = openJournal(cfg); err != nil {
			return nil, err
		}
	}

	hub := stream.NewHub()
	hub.Start(ctx)

	seed := cfg.Economy.Seed
	if opts.Seed != 0 {
		seed = opts.Seed
	}

	sess, err := session.New(ctx, session.Options{
		Engine:         eng,
		Seed:           seed,
		Hub:            hub,
		Journal:        journal,
		Logger:         logger,
		Wheel:          wheel,
		ConversionRate: cfg.Economy.ConversionRate(),
	})
	if err != nil {
		hub.Stop()
		_ = journal.Close()
		return nil, err
	}

	rt := &Runtime{
		Catalog: cat,
		Engine:  eng,
		Hub:     hub,
		Journal: journal,
		Session: sess,
		logger:  logging.WithComponent(logger, "unlocks"),
	}
	rt.unlocks = stream.NewUnlockWatcher(sess.State(), rt.announceUnlock)
	hub.RegisterConsumer(rt.unlocks)
	return rt, nil
}

func (r *Runtime) announceUnlock(snap models.Snapshot, item models.CatalogItem) {
	logging.LogUnlock(logging.WithSession(r.logger, snap.SessionID), item.ID,
		item.PrimaryPrice.StringFixed(2), snap.NetWorth.StringFixed(2))
}

// Close flushes the session journal, stops the hub and closes the journal.
func (r *Runtime) Close(ctx context.Context) error {
	err := r.Session.Close(ctx)
	r.Hub.UnregisterConsumer(r.unlocks)
	r.Hub.Stop()
	if cerr := r.Journal.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
