package server

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luxury-tycoon/internal/economy"
	"luxury-tycoon/internal/errors"
	"luxury-tycoon/internal/models"
)

func TestDecodeAction(t *testing.T) {
	tests := []struct {
		body string
		want economy.Action
	}{
		{`{"type":"buy","instrument_id":"aurum","shares":3,"unit_price":"101.5"}`,
			economy.Buy{InstrumentID: "aurum", Shares: 3, UnitPrice: decimal.RequireFromString("101.5")}},
		{`{"type":"sell","instrument_id":"aurum","shares":2}`,
			economy.Sell{InstrumentID: "aurum", Shares: 2}},
		{`{"type":"tick"}`, economy.Tick{}},
		{`{"type":"purchase_item","item_id":"vintage-watch","currency":"premium"}`,
			economy.PurchaseItem{ItemID: "vintage-watch", Currency: models.CurrencyPremium}},
		{`{"type":"add_primary","amount":250}`, economy.AddPrimary{Amount: decimal.NewFromInt(250)}},
		{`{"type":"add_premium","amount":"5"}`, economy.AddPremium{Amount: decimal.NewFromInt(5)}},
		{`{"type":"spend_premium","amount":"7"}`, economy.SpendPremium{Amount: decimal.NewFromInt(7)}},
		{`{"type":"claim_daily_reward"}`, economy.ClaimDailyReward{}},
		{`{"type":"reset"}`, economy.Reset{}},
		{`{"type":"unlock","item_id":"yacht"}`, economy.Unlock{ItemID: "yacht"}},
		{`{"type":"complete_tutorial","extra":true}`, economy.CompleteTutorial{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.want.Kind()), func(t *testing.T) {
			got, err := DecodeAction([]byte(tt.body))
			require.NoError(t, err)
			require.Equal(t, tt.want.Kind(), got.Kind())

			switch want := tt.want.(type) {
			case economy.Buy:
				g := got.(economy.Buy)
				assert.Equal(t, want.InstrumentID, g.InstrumentID)
				assert.Equal(t, want.Shares, g.Shares)
				assert.True(t, want.UnitPrice.Equal(g.UnitPrice))
			case economy.Sell:
				g := got.(economy.Sell)
				assert.Equal(t, want.Shares, g.Shares)
				assert.True(t, g.UnitPrice.IsZero())
			case economy.AddPrimary:
				assert.True(t, want.Amount.Equal(got.(economy.AddPrimary).Amount))
			case economy.AddPremium:
				assert.True(t, want.Amount.Equal(got.(economy.AddPremium).Amount))
			case economy.SpendPremium:
				assert.True(t, want.Amount.Equal(got.(economy.SpendPremium).Amount))
			default:
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDecodeActionErrors(t *testing.T) {
	tests := []struct {
		body string
		want error
	}{
		{`[1,2]`, errors.ErrMalformedAction},
		{`{"shares":1}`, errors.ErrMalformedAction},
		{`{"type":"buy","shares":"x"}`, errors.ErrMalformedAction},
		{`{"type":"fly"}`, errors.ErrUnknownAction},
		{`{"type":"resolve_daily_spin","currency":"primary","amount":"1"}`, errors.ErrUnknownAction},
	}
	for _, tt := range tests {
		_, err := DecodeAction([]byte(tt.body))
		require.Error(t, err, tt.body)
		assert.True(t, errors.Is(err, tt.want), tt.body)
	}
}
