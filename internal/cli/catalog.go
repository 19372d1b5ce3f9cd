package cli

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"luxury-tycoon/internal/catalog"
	"luxury-tycoon/internal/economy"
	"luxury-tycoon/internal/models"
	"luxury-tycoon/pkg/utils"
)

type catalogItemView struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Category        models.Category `json:"category"`
	PrimaryPrice    decimal.Decimal `json:"primary_price"`
	PremiumPrice    decimal.Decimal `json:"premium_price"`
	UnlockThreshold decimal.Decimal `json:"unlock_threshold"`
	Status          string          `json:"status"`
}

type catalogView struct {
	Instruments []models.Instrument `json:"instruments"`
	Items       []catalogItemView   `json:"items"`
}

func buildCatalogView(eng *economy.Engine) catalogView {
	state := eng.Initial()
	view := catalogView{Instruments: state.Instruments}
	for _, item := range catalog.SortedItems(state.Items) {
		view.Items = append(view.Items, catalogItemView{
			ID:              item.ID,
			Name:            item.Name,
			Category:        item.Category,
			PrimaryPrice:    item.PrimaryPrice,
			PremiumPrice:    item.PremiumPrice,
			UnlockThreshold: eng.UnlockThreshold(item),
			Status:          string(economy.StatusOf(item)),
		})
	}
	return view
}

func newCatalogCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List instruments and luxury items",
		Long:  "Show the seed catalog: tradable instruments with starting prices and luxury items with their unlock thresholds.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config()
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			rules, err := cfg.Economy.Rules()
			if err != nil {
				return err
			}
			eng, err := economy.New(rules, cat)
			if err != nil {
				return err
			}

			view := buildCatalogView(eng)
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(view)
			}

			output.Bold("Instruments")
			table := NewTable(output, "ID", "TICKER", "NAME", "PRICE")
			for _, inst := range view.Instruments {
				table.AddRow(inst.ID, inst.Ticker, inst.DisplayName, utils.FormatCurrency(inst.Price))
			}
			table.Render()
			output.Println()

			output.Bold("Luxury Items")
			table = NewTable(output, "ID", "NAME", "CATEGORY", "PRICE", "GEMS", "UNLOCKS AT", "STATUS")
			for _, item := range view.Items {
				table.AddRow(item.ID, item.Name, string(item.Category),
					utils.FormatCompact(item.PrimaryPrice), utils.FormatGems(item.PremiumPrice),
					utils.FormatCompact(item.UnlockThreshold), output.statusText(economy.ItemStatus(item.Status)))
			}
			table.Render()
			return nil
		},
	}
}
